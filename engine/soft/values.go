// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package soft

import (
	"image/color"
	"strconv"
	"strings"

	"github.com/aymerick/douceur/css"
	"golang.org/x/net/html"
)

type display uint8

const (
	displayInline display = iota
	displayBlock
	displayNone
)

// computedStyle holds the properties the engine lays out and paints.
type computedStyle struct {
	display      display
	color        color.RGBA
	background   color.RGBA
	fontSize     float64
	fontFamily   []string
	marginTop    float64
	marginBottom float64
	paddingLeft  float64
	width        float64
}

// Elements laid out as blocks unless a stylesheet says otherwise.
var blockElements = map[string]bool{
	"html": true, "body": true, "div": true, "p": true, "section": true,
	"article": true, "header": true, "footer": true, "nav": true, "main": true,
	"aside": true, "blockquote": true, "pre": true, "ul": true, "ol": true,
	"li": true, "dl": true, "dt": true, "dd": true, "form": true, "table": true,
	"tr": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true,
	"h6": true, "hr": true, "figure": true, "address": true,
}

var hiddenElements = map[string]bool{
	"head": true, "script": true, "style": true, "title": true, "meta": true,
	"link": true, "template": true, "noscript": true,
}

// headingScale holds the default font-size of headings in em.
var headingScale = map[string]float64{
	"h1": 2, "h2": 1.5, "h3": 1.17, "h4": 1, "h5": 0.83, "h6": 0.67,
}

// initialStyle is the style of the root's parent.
func (e *Engine) initialStyle() computedStyle {
	return computedStyle{
		display:    displayBlock,
		color:      color.RGBA{A: 0xff},
		fontSize:   float64(e.defaultPx),
		fontFamily: []string{e.defaultFont},
	}
}

// computeStyle cascades the style of element n from its parent's style.
func (e *Engine) computeStyle(n *html.Node, parent computedStyle) computedStyle {
	st := computedStyle{
		color:      parent.color,
		fontSize:   parent.fontSize,
		fontFamily: parent.fontFamily,
	}
	switch {
	case hiddenElements[n.Data]:
		st.display = displayNone
	case blockElements[n.Data]:
		st.display = displayBlock
	}
	if scale, ok := headingScale[n.Data]; ok {
		st.fontSize = parent.fontSize * scale
		st.marginTop = st.fontSize * 0.67
		st.marginBottom = st.marginTop
	}
	if n.Data == "p" {
		st.marginTop, st.marginBottom = st.fontSize, st.fontSize
	}

	decls := e.sheet.declarations(n, e.media)
	// font-size first: em lengths of the other properties depend on it.
	for _, d := range decls {
		if strings.EqualFold(d.Property, "font-size") {
			if v, ok := e.length(d.Value, parent.fontSize); ok {
				st.fontSize = v
			}
		}
	}
	for _, d := range decls {
		e.applyDeclaration(&st, d, parent)
	}
	return st
}

func (e *Engine) applyDeclaration(st *computedStyle, d *css.Declaration, parent computedStyle) {
	v := strings.TrimSpace(d.Value)
	switch strings.ToLower(d.Property) {
	case "display":
		switch strings.ToLower(v) {
		case "none":
			st.display = displayNone
		case "inline", "inline-block":
			st.display = displayInline
		default:
			st.display = displayBlock
		}
	case "color":
		if c, ok := parseColor(v); ok {
			st.color = c
		}
	case "background-color", "background":
		if c, ok := parseColor(v); ok {
			st.background = c
		}
	case "font-family":
		var fams []string
		for _, f := range strings.Split(v, ",") {
			if f = strings.Trim(strings.TrimSpace(f), `"'`); f != "" {
				fams = append(fams, f)
			}
		}
		if len(fams) > 0 {
			st.fontFamily = append(fams, e.defaultFont)
		}
	case "margin-top":
		if l, ok := e.length(v, st.fontSize); ok {
			st.marginTop = l
		}
	case "margin-bottom":
		if l, ok := e.length(v, st.fontSize); ok {
			st.marginBottom = l
		}
	case "padding-left":
		if l, ok := e.length(v, st.fontSize); ok {
			st.paddingLeft = l
		}
	case "width":
		if l, ok := e.length(v, st.fontSize); ok {
			st.width = l
		}
	}
}

// length parses a CSS length in px, pt or em, where one em is em pixels.
// A bare number is accepted only when it is zero.
func (e *Engine) length(v string, em float64) (float64, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	unit := ""
	for _, u := range []string{"px", "pt", "em"} {
		if strings.HasSuffix(v, u) {
			unit = u
			v = strings.TrimSuffix(v, u)
			break
		}
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || f < 0 {
		return 0, false
	}
	switch unit {
	case "px":
		return f, true
	case "pt":
		return f / 72 * e.dpiY, true
	case "em":
		return f * em, true
	default:
		return 0, f == 0
	}
}

var namedColors = map[string]color.RGBA{
	"black":       rgb(0, 0, 0),
	"white":       rgb(0xff, 0xff, 0xff),
	"red":         rgb(0xff, 0, 0),
	"green":       rgb(0, 0x80, 0),
	"lime":        rgb(0, 0xff, 0),
	"blue":        rgb(0, 0, 0xff),
	"yellow":      rgb(0xff, 0xff, 0),
	"orange":      rgb(0xff, 0xa5, 0),
	"purple":      rgb(0x80, 0, 0x80),
	"gray":        rgb(0x80, 0x80, 0x80),
	"grey":        rgb(0x80, 0x80, 0x80),
	"silver":      rgb(0xc0, 0xc0, 0xc0),
	"maroon":      rgb(0x80, 0, 0),
	"navy":        rgb(0, 0, 0x80),
	"teal":        rgb(0, 0x80, 0x80),
	"transparent": {},
}

func rgb(r, g, b uint8) color.RGBA { return color.RGBA{R: r, G: g, B: b, A: 0xff} }

// parseColor parses #rgb, #rrggbb, #rrggbbaa, rgb(), rgba() and a few
// named colours.
func parseColor(v string) (color.RGBA, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	if c, ok := namedColors[v]; ok {
		return c, true
	}
	if strings.HasPrefix(v, "#") {
		return parseHexColor(v[1:])
	}
	for _, fn := range []string{"rgba(", "rgb("} {
		if strings.HasPrefix(v, fn) && strings.HasSuffix(v, ")") {
			return parseRGBFunc(v[len(fn) : len(v)-1])
		}
	}
	return color.RGBA{}, false
}

func parseHexColor(h string) (color.RGBA, bool) {
	switch len(h) {
	case 3:
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	case 6, 8:
	default:
		return color.RGBA{}, false
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	if len(h) == 6 {
		n = n<<8 | 0xff
	}
	return color.RGBA{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, true
}

func parseRGBFunc(args string) (color.RGBA, bool) {
	parts := strings.Split(args, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return color.RGBA{}, false
	}
	var ch [4]uint8
	ch[3] = 0xff
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return color.RGBA{}, false
		}
		if i == 3 {
			f *= 255
		}
		ch[i] = uint8(min(max(f, 0), 255))
	}
	return color.RGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, true
}
