// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package enginetest provides a recording engine.Engine for tests.
package enginetest

import (
	"image"
	"image/color"
	"math"

	"github.com/gogpu/htmlview/engine"
	"github.com/gogpu/htmlview/pixbuf"
)

// Fake is an engine.Engine that records every command it receives.
//
// Layout reports a content width of max(viewport width, MinContentWidth) and
// a content height of ContentHeightValue, or the viewport height when zero.
// Setting one of the Fail fields makes the matching command report that
// error through Err.
type Fake struct {
	DPIX, DPIY     float64
	ColorBits      int
	MonochromeBits int
	ColorIndex     int
	Media          engine.MediaType

	FontConfig     string
	FontDirs       []string
	DefaultFont    string
	DefaultFontPx  int
	MasterCSS      string
	Document       string
	Background     color.RGBA
	RejectConfig   bool
	RejectFontDirs bool

	MinContentWidth    int
	ContentHeightValue int

	FailStylesheet error
	FailDocument   error
	FailLayout     error
	FailPaint      error

	// Calls lists the command names in the order they arrived.
	Calls []string

	LayoutCalls   int
	PaintCalls    int
	DocumentCalls int
	DestroyCalls  int

	LastLayout image.Point
	LastPaint  image.Point

	contentW, contentH int
	err                error
}

var (
	_ engine.Engine        = (*Fake)(nil)
	_ engine.ErrorReporter = (*Fake)(nil)
)

// New returns a Fake that accepts everything.
func New() *Fake {
	return &Fake{}
}

// Factory returns an engine.Factory that hands out f.
func (f *Fake) Factory() engine.Factory {
	return func(pixbuf.Format) (engine.Engine, error) { return f, nil }
}

func (f *Fake) record(name string) {
	f.Calls = append(f.Calls, name)
	f.err = nil
}

// Err implements engine.ErrorReporter.
func (f *Fake) Err() error { return f.err }

func (f *Fake) SetDeviceDPI(x, y float64) {
	f.record("SetDeviceDPI")
	f.DPIX, f.DPIY = x, y
}

func (f *Fake) SetDeviceColorBits(bits int) {
	f.record("SetDeviceColorBits")
	f.ColorBits = bits
}

func (f *Fake) SetDeviceMonochromeBits(bits int) {
	f.record("SetDeviceMonochromeBits")
	f.MonochromeBits = bits
}

func (f *Fake) SetDeviceColorIndex(n int) {
	f.record("SetDeviceColorIndex")
	f.ColorIndex = n
}

func (f *Fake) SetDeviceMediaType(t engine.MediaType) {
	f.record("SetDeviceMediaType")
	f.Media = t
}

func (f *Fake) LoadFontConfig(text string, complain bool) bool {
	f.record("LoadFontConfig")
	if f.RejectConfig {
		return false
	}
	f.FontConfig = text
	return true
}

func (f *Fake) AddFontDir(path string) bool {
	f.record("AddFontDir")
	if f.RejectFontDirs {
		return false
	}
	f.FontDirs = append(f.FontDirs, path)
	return true
}

func (f *Fake) SetDefaultFont(name string, sizePx int) {
	f.record("SetDefaultFont")
	f.DefaultFont, f.DefaultFontPx = name, sizePx
}

// PointsToPixels uses the vertical DPI, or 96 when none was set.
func (f *Fake) PointsToPixels(pt float64) int {
	f.record("PointsToPixels")
	dpi := f.DPIY
	if dpi == 0 {
		dpi = 96
	}
	return int(math.Round(pt / 72 * dpi))
}

func (f *Fake) LoadMasterStylesheet(css string) {
	f.record("LoadMasterStylesheet")
	if f.FailStylesheet != nil {
		f.err = f.FailStylesheet
		return
	}
	f.MasterCSS = css
}

func (f *Fake) CreateDocumentFromUTF8(html string) {
	f.record("CreateDocumentFromUTF8")
	f.DocumentCalls++
	if f.FailDocument != nil {
		f.err = f.FailDocument
		return
	}
	f.Document = html
}

func (f *Fake) Layout(width, height int) int {
	f.record("Layout")
	f.LayoutCalls++
	f.LastLayout = image.Pt(width, height)
	if f.FailLayout != nil {
		f.err = f.FailLayout
		return 0
	}
	f.contentW = max(width, f.MinContentWidth)
	f.contentH = height
	if f.ContentHeightValue > 0 {
		f.contentH = f.ContentHeightValue
	}
	return f.contentW
}

func (f *Fake) ContentWidth() int  { return f.contentW }
func (f *Fake) ContentHeight() int { return f.contentH }

func (f *Fake) SetBackgroundColor(c color.RGBA) {
	f.record("SetBackgroundColor")
	f.Background = c
}

// Paint clears buf to the background colour.
func (f *Fake) Paint(buf *pixbuf.Buffer, scrollX, scrollY int) {
	f.record("Paint")
	f.PaintCalls++
	f.LastPaint = image.Pt(scrollX, scrollY)
	if f.FailPaint != nil {
		f.err = f.FailPaint
		return
	}
	buf.Clear(f.Background)
}

func (f *Fake) Destroy() {
	f.record("Destroy")
	f.DestroyCalls++
}

// Count returns how many times the named command was received.
func (f *Fake) Count(name string) int {
	n := 0
	for _, c := range f.Calls {
		if c == name {
			n++
		}
	}
	return n
}
