// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package soft

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"

	"golang.org/x/net/html"

	"github.com/gogpu/htmlview/engine"
	"github.com/gogpu/htmlview/internal/logging"
	"github.com/gogpu/htmlview/pixbuf"
)

// Registry name and priority of the software engine.
const (
	Name     = "soft"
	Priority = 10
)

// Errors reported through Err.
var (
	ErrNoDocument   = errors.New("soft: no document")
	ErrNotLaidOut   = errors.New("soft: paint before layout")
	ErrFormat       = errors.New("soft: buffer format does not match the engine")
	ErrInvalidSheet = errors.New("soft: invalid stylesheet")
)

// Register adds the software engine to r.
func Register(r *engine.Registry) {
	r.Register(engine.Backend{
		Name:     Name,
		Priority: Priority,
		Factory: func(format pixbuf.Format) (engine.Engine, error) {
			return New(format)
		},
		Load: func() error {
			_, err := builtinFont()
			return err
		},
	})
}

// Stats counts the engine's work.
type Stats struct {
	Layouts      int
	FullPaints   int
	ScrollPaints int
}

type stats struct {
	layouts, full, partial int
}

// Engine is a small software HTML/CSS engine.
//
// It lays out block and inline flow with word wrapping and paints
// backgrounds and text. It is a reference engine for htmlview, not a
// general browser engine.
//
// Engine is NOT safe for concurrent use.
type Engine struct {
	format pixbuf.Format

	dpiX, dpiY float64
	colorBits  int
	monoBits   int
	colorIndex int
	media      engine.MediaType

	fonts       *fontSet
	measure     *measurer
	defaultFont string
	defaultPx   int

	sheet *stylesheet
	doc   *html.Node
	bg    color.RGBA

	items    []item
	contentW int
	contentH int
	laidOut  bool
	version  uint64

	last  paintState
	stats stats
	err   error
}

var (
	_ engine.Engine        = (*Engine)(nil)
	_ engine.ErrorReporter = (*Engine)(nil)
)

// New creates an engine that paints into buffers of the given format.
func New(format pixbuf.Format) (*Engine, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("soft: %w", pixbuf.ErrInvalidFormat)
	}
	fallback, err := builtinFont()
	if err != nil {
		return nil, err
	}
	return &Engine{
		format:    format,
		dpiX:      96,
		dpiY:      96,
		colorBits: format.ColorBits(),
		media:     engine.MediaScreen,
		fonts:     newFontSet(fallback),
		measure:   newMeasurer(),
		defaultPx: 16,
		bg:        color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	}, nil
}

// Err implements engine.ErrorReporter.
func (e *Engine) Err() error { return e.err }

// Stats returns the work counters.
func (e *Engine) Stats() Stats {
	return Stats{Layouts: e.stats.layouts, FullPaints: e.stats.full, ScrollPaints: e.stats.partial}
}

// DefaultFont returns the default family and size in pixels.
func (e *Engine) DefaultFont() (string, int) { return e.defaultFont, e.defaultPx }

// Families returns the families of the loaded font files.
func (e *Engine) Families() []string {
	var out []string
	for _, f := range e.fonts.fonts[1:] {
		out = append(out, f.family)
	}
	return out
}

func (e *Engine) SetDeviceDPI(x, y float64) {
	e.dpiX, e.dpiY = x, y
}

func (e *Engine) SetDeviceColorBits(bits int)      { e.colorBits = bits }
func (e *Engine) SetDeviceMonochromeBits(bits int) { e.monoBits = bits }
func (e *Engine) SetDeviceColorIndex(n int)        { e.colorIndex = n }

func (e *Engine) SetDeviceMediaType(t engine.MediaType) {
	e.media = t
	e.version++
}

// LoadFontConfig reads font directories and family aliases from a
// fontconfig document.
func (e *Engine) LoadFontConfig(text string, complain bool) bool {
	cfg, err := parseFontConfig(text)
	if err != nil {
		if complain {
			logging.Logger().Warn("soft: font config rejected", "err", err)
		}
		return false
	}
	e.fonts.applyConfig(cfg)
	logging.Logger().Debug("soft: font config loaded", "dirs", len(cfg.Dirs), "aliases", len(cfg.Aliases))
	return true
}

// AddFontDir loads every TrueType and OpenType file in path.
func (e *Engine) AddFontDir(path string) bool {
	if err := e.fonts.addDir(path); err != nil {
		logging.Logger().Warn("soft: font dir", "path", path, "err", err)
		return false
	}
	return true
}

func (e *Engine) SetDefaultFont(name string, sizePx int) {
	e.defaultFont = name
	if sizePx > 0 {
		e.defaultPx = sizePx
	}
	e.version++
}

// PointsToPixels converts with the vertical DPI.
func (e *Engine) PointsToPixels(pt float64) int {
	return int(math.Round(pt / 72 * e.dpiY))
}

func (e *Engine) LoadMasterStylesheet(css string) {
	e.err = nil
	ss, err := parseStylesheet(css)
	if err != nil {
		e.err = fmt.Errorf("%w: %w", ErrInvalidSheet, err)
		return
	}
	e.sheet = ss
	e.version++
	logging.Logger().Debug("soft: stylesheet loaded", "rules", len(ss.rules), "skipped", ss.skipped)
}

func (e *Engine) CreateDocumentFromUTF8(src string) {
	e.err = nil
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		e.err = fmt.Errorf("soft: parse document: %w", err)
		return
	}
	e.doc = doc
	e.laidOut = false
	e.items = nil
	e.version++
}

// Layout lays the document out for a viewport and returns the content
// width.
func (e *Engine) Layout(width, height int) int {
	e.err = nil
	if e.doc == nil {
		e.err = ErrNoDocument
		return 0
	}
	e.layoutDocument(width)
	e.laidOut = true
	e.version++
	e.stats.layouts++
	logging.Logger().Debug("soft: layout", "width", width, "height", height,
		"contentWidth", e.contentW, "contentHeight", e.contentH, "items", len(e.items))
	return e.contentW
}

func (e *Engine) ContentWidth() int  { return e.contentW }
func (e *Engine) ContentHeight() int { return e.contentH }

func (e *Engine) SetBackgroundColor(c color.RGBA) { e.bg = c }

// Paint renders the laid-out document. Repainting the same buffer at a
// nearby scroll offset moves the pixels and paints only what was exposed.
func (e *Engine) Paint(buf *pixbuf.Buffer, scrollX, scrollY int) {
	e.err = nil
	switch {
	case e.doc == nil:
		e.err = ErrNoDocument
		return
	case !e.laidOut:
		e.err = ErrNotLaidOut
		return
	case buf.Format() != e.format:
		e.err = fmt.Errorf("%w: %v, want %v", ErrFormat, buf.Format(), e.format)
		return
	}
	e.paint(buf, scrollX, scrollY)
}

func (e *Engine) Destroy() {
	e.doc = nil
	e.items = nil
	e.sheet = nil
	e.last = paintState{}
	e.fonts.faces.Clear()
	e.measure.widths.Clear()
}
