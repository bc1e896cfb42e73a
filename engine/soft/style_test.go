// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package soft

import (
	"image/color"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/gogpu/htmlview/engine"
)

func TestMediaMatches(t *testing.T) {
	tests := []struct {
		prelude string
		device  engine.MediaType
		want    bool
	}{
		{"", engine.MediaScreen, true},
		{"screen", engine.MediaScreen, true},
		{"print", engine.MediaScreen, false},
		{"print, screen", engine.MediaScreen, true},
		{"all", engine.MediaPrint, true},
		{"not print", engine.MediaScreen, true},
		{"not screen", engine.MediaScreen, false},
		{"only screen and (min-width: 100px)", engine.MediaScreen, true},
		{"(min-width: 100px)", engine.MediaTV, true},
		{"screen", engine.MediaNone, false},
		{"SCREEN", engine.MediaScreen, true},
	}
	for _, tt := range tests {
		if got := mediaMatches(tt.prelude, tt.device); got != tt.want {
			t.Errorf("mediaMatches(%q, %v) = %v, want %v", tt.prelude, tt.device, got, tt.want)
		}
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
		ok   bool
	}{
		{"red", color.RGBA{R: 0xff, A: 0xff}, true},
		{" Navy ", color.RGBA{B: 0x80, A: 0xff}, true},
		{"#0f0", color.RGBA{G: 0xff, A: 0xff}, true},
		{"#102030", color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff}, true},
		{"#10203080", color.RGBA{R: 0x10, G: 0x20, B: 0x30, A: 0x80}, true},
		{"rgb(1, 2, 3)", color.RGBA{R: 1, G: 2, B: 3, A: 0xff}, true},
		{"rgba(1,2,3,0)", color.RGBA{R: 1, G: 2, B: 3}, true},
		{"rgb(300, -5, 3)", color.RGBA{R: 0xff, B: 3, A: 0xff}, true},
		{"transparent", color.RGBA{}, true},
		{"#12", color.RGBA{}, false},
		{"#ggg", color.RGBA{}, false},
		{"rgb(1,2)", color.RGBA{}, false},
		{"chartreuse-ish", color.RGBA{}, false},
	}
	for _, tt := range tests {
		got, ok := parseColor(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseColor(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestLength(t *testing.T) {
	e := &Engine{dpiY: 96}
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"12px", 12, true},
		{"12pt", 16, true},
		{"1.5em", 15, true},
		{"0", 0, true},
		{"12", 0, false},
		{"-3px", 0, false},
		{"auto", 0, false},
	}
	for _, tt := range tests {
		got, ok := e.length(tt.in, 10)
		if ok != tt.ok || got != tt.want {
			t.Errorf("length(%q) = %v, %v, want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if f := findElement(c, tag); f != nil {
			return f
		}
	}
	return nil
}

func TestCascade(t *testing.T) {
	const css = `
p { color: red; font-size: 20px }
.note { color: blue }
#main { color: green }
p { color: yellow !important }
div p { margin-top: 2em }
@media print { p { font-size: 40px } }
`
	ss, err := parseStylesheet(css)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := html.Parse(strings.NewReader(`<div><p id="main" class="note" style="color: black; padding-left: 4px">x</p></div>`))
	if err != nil {
		t.Fatal(err)
	}
	p := findElement(doc, "p")

	var got []string
	for _, d := range ss.declarations(p, engine.MediaScreen) {
		got = append(got, d.Property+":"+d.Value)
	}
	want := []string{
		"color:red",
		"font-size:20px",
		"margin-top:2em",
		"color:blue",
		"color:green",
		"color:black",
		"padding-left:4px",
		"color:yellow",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("declarations mismatch (-want +got):\n%s", diff)
	}

	e := &Engine{dpiY: 96, defaultPx: 16, sheet: ss, media: engine.MediaScreen}
	st := e.computeStyle(p, e.initialStyle())
	if st.color != (color.RGBA{R: 0xff, G: 0xff, A: 0xff}) {
		t.Errorf("color = %v, want yellow", st.color)
	}
	if st.fontSize != 20 || st.marginTop != 40 || st.paddingLeft != 4 {
		t.Errorf("fontSize=%v marginTop=%v paddingLeft=%v, want 20, 40, 4", st.fontSize, st.marginTop, st.paddingLeft)
	}
}

func TestUnsupportedSelectorsSkipped(t *testing.T) {
	ss, err := parseStylesheet(`p::-moz-thing { color: red } p { color: blue }`)
	if err != nil {
		t.Fatal(err)
	}
	if ss.skipped != 1 || len(ss.rules) != 1 {
		t.Errorf("skipped=%d rules=%d, want 1 and 1", ss.skipped, len(ss.rules))
	}
}

func TestInlineStyleWithoutTerminator(t *testing.T) {
	tests := []struct {
		style string
		want  []string
	}{
		{"width:1200px", []string{"width:1200px"}},
		{"display: none", []string{"display:none"}},
		{"color: red; width: 10px", []string{"color:red", "width:10px"}},
		{"color: red; width: 10px;", []string{"color:red", "width:10px"}},
		{"  width: 3px ;  ", []string{"width:3px"}},
	}
	for _, tt := range tests {
		doc, err := html.Parse(strings.NewReader(`<div style="` + tt.style + `">x</div>`))
		if err != nil {
			t.Fatal(err)
		}
		var ss *stylesheet
		var got []string
		for _, d := range ss.declarations(findElement(doc, "div"), engine.MediaScreen) {
			got = append(got, d.Property+":"+d.Value)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("style %q mismatch (-want +got):\n%s", tt.style, diff)
		}
	}
}

func TestParseStylesheetValidity(t *testing.T) {
	tests := []struct {
		name  string
		css   string
		valid bool
	}{
		{"empty", "", true},
		{"comments only", "  /* nothing here */ ", true},
		{"rule", "p { color: red }", true},
		{"media only", "@media print { p { color: red } }", true},
		{"at-rule only", `@charset "utf-8";`, true},
		{"no selector", "{ color: red }", false},
		{"only unsupported selectors", "p::-moz-thing { color: red }", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseStylesheet(tt.css)
			if (err == nil) != tt.valid {
				t.Errorf("parseStylesheet(%q) error = %v, want valid=%v", tt.css, err, tt.valid)
			}
		})
	}
}
