package htmlview

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"

	"github.com/gogpu/htmlview/engine"
)

// Document is the single document loaded into an engine.
//
// The layout fields are outputs of the most recent layout pass. Layout
// reruns only when the viewport width changes; height-only changes reuse
// the cached content size.
type Document struct {
	source string

	layoutWidth, layoutHeight int
	contentWidth              int
	contentHeight             int
	laidOut                   bool
	layouts                   int
}

// CreateDocument loads UTF-8 markup into h. It can succeed at most once per
// handle; there is no reload.
func CreateDocument(h *engine.Handle, html string) (*Document, error) {
	if h.Documents() > 0 {
		return nil, ErrDocumentExists
	}
	if !utf8.ValidString(html) {
		return nil, &DocumentError{Kind: InvalidEncoding}
	}
	src, err := unicode.UTF8BOM.NewDecoder().String(html)
	if err != nil {
		return nil, &DocumentError{Kind: InvalidEncoding, Err: err}
	}
	if strings.TrimSpace(src) == "" {
		return nil, &DocumentError{Kind: EmptySource}
	}

	if err := h.CreateDocumentFromUTF8(src); err != nil {
		return nil, fmt.Errorf("htmlview: create document: %w", err)
	}
	Logger().Debug("htmlview: document created", "bytes", len(src))
	return &Document{source: src}, nil
}

// Source returns the markup as given to the engine.
func (d *Document) Source() string { return d.source }

// LayoutWidth returns the viewport width of the last layout pass. It is
// not the content width: a document wider than the viewport reports the
// viewport here and its natural width through ContentWidth.
func (d *Document) LayoutWidth() int { return d.layoutWidth }

// LayoutHeight returns the viewport height of the last layout pass.
func (d *Document) LayoutHeight() int { return d.layoutHeight }

// ContentWidth returns the laid-out document width.
func (d *Document) ContentWidth() int { return d.contentWidth }

// ContentHeight returns the laid-out document height.
func (d *Document) ContentHeight() int { return d.contentHeight }

// LaidOut reports whether a layout pass has completed.
func (d *Document) LaidOut() bool { return d.laidOut }

// Layout lays the document out for a width x height viewport and returns the
// content size, which can exceed the viewport. The engine is only called when
// width differs from the last pass. On failure the cached sizes are kept.
func (d *Document) Layout(h *engine.Handle, width, height int) (contentWidth, contentHeight int, err error) {
	if width <= 0 || height <= 0 {
		return 0, 0, ErrInvalidDimensions
	}
	if d.laidOut && width == d.layoutWidth {
		return d.contentWidth, d.contentHeight, nil
	}

	cw, ch, err := h.Layout(width, height)
	if err != nil {
		if errors.Is(err, engine.ErrHandleClosed) {
			return 0, 0, err
		}
		return 0, 0, &RenderError{Kind: EngineFailure, Op: "layout", Err: err}
	}

	d.layoutWidth, d.layoutHeight = width, height
	d.contentWidth, d.contentHeight = cw, ch
	d.laidOut = true
	d.layouts++
	Logger().Debug("htmlview: layout", "width", width, "height", height,
		"contentWidth", cw, "contentHeight", ch)
	return cw, ch, nil
}
