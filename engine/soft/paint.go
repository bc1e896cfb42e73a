// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package soft

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/htmlview/pixbuf"
)

// paintState remembers the last paint so a scroll of the same buffer can
// move the existing pixels and repaint only the exposed strips.
type paintState struct {
	buf     *pixbuf.Buffer
	gen     uint64
	scroll  image.Point
	size    image.Point
	version uint64
	bg      color.RGBA
	mono    int
}

// clipImage restricts drawing into a buffer to a rectangle.
type clipImage struct {
	*pixbuf.Buffer
	clip image.Rectangle
}

func (c clipImage) Bounds() image.Rectangle { return c.clip }

var _ draw.Image = clipImage{}

// paint renders into buf with the document point (sx, sy) at the origin.
func (e *Engine) paint(buf *pixbuf.Buffer, sx, sy int) {
	scroll := image.Pt(sx, sy)
	size := image.Pt(buf.Width(), buf.Height())
	last := e.last

	incremental := last.buf == buf &&
		last.gen == buf.Generation() &&
		last.size == size &&
		last.version == e.version &&
		last.bg == e.bg &&
		last.mono == e.monoBits

	d := scroll.Sub(last.scroll)
	if incremental && d != (image.Point{}) && abs(d.X) < size.X && abs(d.Y) < size.Y {
		buf.Scroll(-d.X, -d.Y)
		for _, r := range exposed(d, size) {
			e.paintRegion(buf, r, scroll)
		}
		e.stats.partial++
	} else {
		e.paintRegion(buf, buf.Bounds(), scroll)
		e.stats.full++
	}
	buf.Touch()

	e.last = paintState{
		buf:     buf,
		gen:     buf.Generation(),
		scroll:  scroll,
		size:    size,
		version: e.version,
		bg:      e.bg,
		mono:    e.monoBits,
	}
}

// exposed returns the strips a scroll by d leaves without content.
func exposed(d, size image.Point) []image.Rectangle {
	var out []image.Rectangle
	switch {
	case d.Y > 0:
		out = append(out, image.Rect(0, size.Y-d.Y, size.X, size.Y))
	case d.Y < 0:
		out = append(out, image.Rect(0, 0, size.X, -d.Y))
	}
	switch {
	case d.X > 0:
		out = append(out, image.Rect(size.X-d.X, 0, size.X, size.Y))
	case d.X < 0:
		out = append(out, image.Rect(0, 0, -d.X, size.Y))
	}
	return out
}

// paintRegion repaints clip, in buffer coordinates.
func (e *Engine) paintRegion(buf *pixbuf.Buffer, clip image.Rectangle, scroll image.Point) {
	clip = clip.Intersect(buf.Bounds())
	if clip.Empty() {
		return
	}
	buf.Fill(clip, e.tone(e.bg))

	dst := clipImage{Buffer: buf, clip: clip}
	for i := range e.items {
		it := &e.items[i]
		r := it.rect.Sub(scroll)
		ink := r
		if it.kind == itemText {
			// Glyph ink may overhang the line box.
			ink = r.Inset(-it.px)
		}
		if !ink.Overlaps(clip) {
			continue
		}
		switch it.kind {
		case itemBox:
			buf.Fill(r.Intersect(clip), e.tone(it.color))
		case itemText:
			d := font.Drawer{
				Dst:  dst,
				Src:  image.NewUniform(e.tone(it.color)),
				Face: e.fonts.face(it.font, it.px),
				Dot:  fixed.P(r.Min.X, it.baseline-scroll.Y),
			}
			d.DrawString(it.text)
		}
	}
}

// tone maps a straight-alpha CSS colour to the device, as grey levels
// when the device is monochrome.
func (e *Engine) tone(c color.RGBA) color.NRGBA {
	if e.monoBits <= 0 {
		return color.NRGBA(c)
	}
	y := (299*uint32(c.R) + 587*uint32(c.G) + 114*uint32(c.B)) / 1000
	if e.monoBits < 8 {
		levels := uint32(1)<<e.monoBits - 1
		y = (y*levels + 127) / 255 * 255 / levels
	}
	g := uint8(y)
	return color.NRGBA{R: g, G: g, B: g, A: c.A}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
