// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package soft

import (
	"image"
	"image/color"
	"math"
	"strings"

	"golang.org/x/image/math/fixed"
	"golang.org/x/net/html"
)

type itemKind uint8

const (
	itemBox itemKind = iota
	itemText
)

// item is one thing to paint, in document coordinates.
type item struct {
	kind  itemKind
	rect  image.Rectangle
	color color.RGBA

	// Text items only.
	text     string
	font     *fontFile
	px       int
	baseline int
}

// word is a unit of inline content.
type word struct {
	text  string
	font  *fontFile
	px    int
	color color.RGBA
	br    bool
}

type placed struct {
	word
	x     fixed.Int26_6
	width fixed.Int26_6
}

// layoutState collects paint items during one layout pass.
type layoutState struct {
	e     *Engine
	items []item
	right float64
}

// layoutDocument lays the document out for a viewport width and stores the
// resulting paint list and content size.
func (e *Engine) layoutDocument(width int) {
	ls := &layoutState{e: e}
	height := 0.0
	if root := rootElement(e.doc); root != nil {
		st := e.computeStyle(root, e.initialStyle())
		if st.display != displayNone {
			height = ls.block(root, st, 0, 0, float64(width))
		}
	}

	e.items = ls.items
	e.contentW = max(width, int(math.Ceil(ls.right)))
	e.contentH = int(math.Ceil(height))
}

func rootElement(doc *html.Node) *html.Node {
	if doc == nil {
		return nil
	}
	for c := doc.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			return c
		}
	}
	return nil
}

// block lays out a block box at (x, y) in a container avail pixels wide
// and returns the height it used, margins included.
func (ls *layoutState) block(n *html.Node, st computedStyle, x, y, avail float64) float64 {
	top := y
	y += st.marginTop
	boxTop := y

	width := avail - st.paddingLeft
	if st.width > 0 {
		width = st.width
	}
	width = max(width, 0)
	cx := x + st.paddingLeft
	ls.right = max(ls.right, cx+width)

	box := -1
	if st.background.A != 0 {
		ls.items = append(ls.items, item{kind: itemBox, color: st.background})
		box = len(ls.items) - 1
	}

	var run []word
	flush := func() {
		y = ls.inline(run, cx, y, width)
		run = run[:0]
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			run = ls.words(run, c.Data, st)
		case html.ElementNode:
			cs := ls.e.computeStyle(c, st)
			switch {
			case cs.display == displayNone:
			case c.Data == "br":
				run = append(run, word{br: true, font: ls.e.fonts.resolve(st.fontFamily), px: fontPx(st)})
			case cs.display == displayBlock:
				flush()
				y += ls.block(c, cs, cx, y, width)
			default:
				run = ls.collectInline(run, c, cs)
			}
		}
	}
	flush()

	if box >= 0 {
		ls.items[box].rect = image.Rect(
			int(math.Floor(x)), int(math.Floor(boxTop)),
			int(math.Ceil(cx+width)), int(math.Ceil(y)),
		)
	}
	return y + st.marginBottom - top
}

// collectInline appends the words of an inline element and its inline
// descendants.
func (ls *layoutState) collectInline(run []word, n *html.Node, st computedStyle) []word {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			run = ls.words(run, c.Data, st)
		case html.ElementNode:
			cs := ls.e.computeStyle(c, st)
			switch {
			case cs.display == displayNone:
			case c.Data == "br":
				run = append(run, word{br: true, font: ls.e.fonts.resolve(st.fontFamily), px: fontPx(st)})
			default:
				run = ls.collectInline(run, c, cs)
			}
		}
	}
	return run
}

func fontPx(st computedStyle) int {
	return max(int(math.Round(st.fontSize)), 1)
}

func (ls *layoutState) words(run []word, text string, st computedStyle) []word {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return run
	}
	f := ls.e.fonts.resolve(st.fontFamily)
	px := fontPx(st)
	for _, w := range fields {
		run = append(run, word{text: w, font: f, px: px, color: st.color})
	}
	return run
}

// inline breaks words into lines of at most width pixels starting at
// (x, y) and returns the y below the last line. A word wider than the
// line gets a line of its own and overflows.
func (ls *layoutState) inline(run []word, x, y, width float64) float64 {
	if len(run) == 0 {
		return y
	}
	m := ls.e.measure
	limit := fixed.Int26_6(width * 64)

	var line []placed
	var pen fixed.Int26_6
	finish := func(br *word) {
		y = ls.emitLine(line, br, x, y)
		line = line[:0]
		pen = 0
	}

	for i := range run {
		w := run[i]
		if w.br {
			finish(&w)
			continue
		}
		adv := m.advance(w.font, w.px, w.text)
		if len(line) > 0 {
			space := m.advance(w.font, w.px, " ")
			if pen+space+adv > limit {
				finish(nil)
			} else {
				pen += space
			}
		}
		line = append(line, placed{word: w, x: pen, width: adv})
		pen += adv
	}
	if len(line) > 0 {
		finish(nil)
	}
	return y
}

// emitLine places one line box at y and returns the y below it. An empty
// line ended by br takes the height of the br's font.
func (ls *layoutState) emitLine(line []placed, br *word, x, y float64) float64 {
	var ascent, height fixed.Int26_6
	measureFont := func(f *fontFile, px int) {
		met := ls.e.fonts.face(f, px).Metrics()
		ascent = max(ascent, met.Ascent)
		height = max(height, met.Height)
	}
	for _, p := range line {
		measureFont(p.font, p.px)
	}
	if len(line) == 0 {
		if br == nil {
			return y
		}
		measureFont(br.font, br.px)
	}

	top := int(math.Round(y))
	baseline := top + ascent.Ceil()
	bottom := top + height.Ceil()
	for _, p := range line {
		left := x + float64(p.x)/64
		right := left + float64(p.width)/64
		ls.items = append(ls.items, item{
			kind:     itemText,
			rect:     image.Rect(int(math.Floor(left)), top, int(math.Ceil(right)), bottom),
			color:    p.color,
			text:     p.text,
			font:     p.font,
			px:       p.px,
			baseline: baseline,
		})
		ls.right = max(ls.right, right)
	}
	return float64(bottom)
}
