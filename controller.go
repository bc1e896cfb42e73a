package htmlview

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/htmlview/engine"
	"github.com/gogpu/htmlview/pixbuf"
)

// State is the lifecycle state of a Controller.
type State int

// Controller states. A controller only lays out and paints in StateReady.
const (
	StateUninitialized State = iota
	StateBootstrapped
	StateDocumentLoaded
	StateReady

	// StateFailed is terminal: initialization failed and nothing renders.
	StateFailed

	// StateClosed follows Close.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateBootstrapped:
		return "bootstrapped"
	case StateDocumentLoaded:
		return "document loaded"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Viewport is the surface geometry and scroll position of a Controller.
// Scroll values are never negative.
type Viewport struct {
	SurfaceWidth, SurfaceHeight int

	// ScrollX and ScrollY are the offsets of the last successful paint.
	ScrollX, ScrollY int

	// PendingScrollX and PendingScrollY are requested but not yet painted.
	PendingScrollX, PendingScrollY int

	LastPaintedWidth, LastPaintedHeight int
}

// dirty reports whether the next present must paint.
func (v Viewport) dirty() bool {
	return v.SurfaceWidth != v.LastPaintedWidth ||
		v.SurfaceHeight != v.LastPaintedHeight ||
		v.PendingScrollX != v.ScrollX ||
		v.PendingScrollY != v.ScrollY
}

// Stats counts the work a Controller has done.
type Stats struct {
	Layouts  int
	Paints   int
	Presents int

	// Skipped counts presents that returned the buffer without painting.
	Skipped int
}

// Controller decides when the engine lays out and paints a document into a
// resizable pixel buffer.
//
// Layout runs only when the surface width changes. Paint runs only when the
// surface size or the scroll offset differ from the last paint, or after
// Invalidate. Scroll and geometry events between two presents are
// coalesced: only the latest values are painted.
//
// Lifecycle:
//
//	c := htmlview.New(h)
//	err := c.Bootstrap(profile, fonts, css)  // Uninitialized -> Bootstrapped
//	err = c.LoadDocument(html)              // -> DocumentLoaded
//	err = c.Start()                          // -> Ready
//
// Events that arrive before Ready are kept and applied by Start.
//
// Controller is NOT safe for concurrent use. All methods must be called from
// the host's event thread.
type Controller struct {
	h    *engine.Handle
	opts options
	log  *slog.Logger

	state State
	err   error

	doc *Document
	buf *pixbuf.Buffer

	vp          Viewport
	hasGeometry bool
	invalidated bool

	// renderErr is a layout failure waiting to be reported by Present.
	renderErr error

	stats Stats
}

// New returns a Controller that owns h.
func New(h *engine.Handle, opts ...Option) *Controller {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger
	if log == nil {
		log = Logger()
	}
	return &Controller{h: h, opts: o, log: log}
}

// State returns the lifecycle state.
func (c *Controller) State() State { return c.state }

// Err returns the error that moved the controller to StateFailed.
func (c *Controller) Err() error { return c.err }

// Viewport returns the current geometry and scroll position.
func (c *Controller) Viewport() Viewport { return c.vp }

// ContentSize returns the document size of the last layout pass.
func (c *Controller) ContentSize() (width, height int) {
	if c.doc == nil {
		return 0, 0
	}
	return c.doc.ContentWidth(), c.doc.ContentHeight()
}

// Stats returns the work counters.
func (c *Controller) Stats() Stats {
	s := c.stats
	if c.doc != nil {
		s.Layouts = c.doc.layouts
	}
	return s
}

// Document returns the loaded document, or nil.
func (c *Controller) Document() *Document { return c.doc }

// Buffer returns the pixel buffer of the last paint, or nil.
func (c *Controller) Buffer() *pixbuf.Buffer { return c.buf }

func (c *Controller) expect(s State) error {
	switch c.state {
	case s:
		return nil
	case StateClosed:
		return ErrClosed
	case StateFailed:
		return c.err
	default:
		return fmt.Errorf("%w: %v, want %v", ErrInvalidState, c.state, s)
	}
}

func (c *Controller) failInit(err error) error {
	c.state = StateFailed
	c.err = err
	c.log.Warn("htmlview: initialization failed", "err", err)
	return err
}

// Bootstrap configures the engine. Any failure is terminal.
func (c *Controller) Bootstrap(p DeviceProfile, env FontEnvironment, masterCSS string) error {
	if err := c.expect(StateUninitialized); err != nil {
		return err
	}
	if err := Bootstrap(c.h, p, env, masterCSS); err != nil {
		return c.failInit(err)
	}
	c.state = StateBootstrapped
	return nil
}

// LoadDocument creates the document. On failure the controller stays
// Bootstrapped and LoadDocument may be called again.
func (c *Controller) LoadDocument(html string) error {
	if err := c.expect(StateBootstrapped); err != nil {
		return err
	}
	doc, err := CreateDocument(c.h, html)
	if err != nil {
		if errors.Is(err, engine.ErrHandleClosed) {
			return c.failInit(err)
		}
		return err
	}
	c.doc = doc
	c.state = StateDocumentLoaded
	return nil
}

// Start moves the controller to Ready and applies geometry received
// earlier.
func (c *Controller) Start() error {
	if err := c.expect(StateDocumentLoaded); err != nil {
		return err
	}
	c.state = StateReady
	c.log.Info("htmlview: controller ready",
		"width", c.vp.SurfaceWidth, "height", c.vp.SurfaceHeight)

	if c.hasGeometry {
		return c.layout(c.vp.SurfaceWidth, c.vp.SurfaceHeight)
	}
	return nil
}

// Resize reports a new surface size. In Ready it is the only trigger of
// layout, which runs when the width changed. A layout failure leaves the
// viewport unchanged and is also returned by the next Present.
func (c *Controller) Resize(width, height int) error {
	switch c.state {
	case StateClosed:
		return ErrClosed
	case StateFailed:
		return c.err
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	if c.state != StateReady {
		c.vp.SurfaceWidth, c.vp.SurfaceHeight = width, height
		c.hasGeometry = true
		return nil
	}
	return c.layout(width, height)
}

func (c *Controller) layout(width, height int) error {
	before := c.doc.layouts
	if _, _, err := c.doc.Layout(c.h, width, height); err != nil {
		if errors.Is(err, engine.ErrHandleClosed) {
			return err
		}
		c.renderErr = err
		if !c.doc.LaidOut() {
			c.hasGeometry = false
			c.vp.SurfaceWidth, c.vp.SurfaceHeight = 0, 0
		}
		c.log.Warn("htmlview: layout failed", "width", width, "height", height, "err", err)
		return err
	}
	c.vp.SurfaceWidth, c.vp.SurfaceHeight = width, height
	c.hasGeometry = true
	if c.doc.layouts != before {
		c.invalidated = true
	}
	return nil
}

// ScrollTo requests a scroll offset. Negative values are clamped to zero.
// Nothing is painted until the next Present.
func (c *Controller) ScrollTo(x, y int) error {
	switch c.state {
	case StateClosed:
		return ErrClosed
	case StateFailed:
		return c.err
	}
	c.vp.PendingScrollX = max(x, 0)
	c.vp.PendingScrollY = max(y, 0)
	return nil
}

// ScrollBy moves the requested scroll offset by (dx, dy).
func (c *Controller) ScrollBy(dx, dy int) error {
	return c.ScrollTo(c.vp.PendingScrollX+dx, c.vp.PendingScrollY+dy)
}

// Invalidate forces the next Present to paint.
func (c *Controller) Invalidate() {
	c.invalidated = true
}

// Present paints when the surface size or scroll offset changed since the
// last paint, and returns the buffer. Otherwise it returns the same buffer
// untouched. The buffer is owned by the controller; callers must not
// modify it.
//
// A failed paint leaves the viewport unchanged, so the next Present paints
// again.
func (c *Controller) Present() (*pixbuf.Buffer, error) {
	switch c.state {
	case StateReady:
	case StateClosed:
		return nil, ErrClosed
	case StateFailed:
		return nil, c.err
	default:
		return nil, ErrNotReady
	}
	if err := c.renderErr; err != nil {
		c.renderErr = nil
		return c.buf, err
	}
	if !c.hasGeometry {
		return nil, ErrNoGeometry
	}
	c.stats.Presents++

	if !c.invalidated && !c.vp.dirty() {
		c.stats.Skipped++
		return c.buf, nil
	}

	w, h := c.vp.SurfaceWidth, c.vp.SurfaceHeight
	if c.buf == nil {
		buf, err := pixbuf.New(w, h, c.h.Format())
		if err != nil {
			return nil, err
		}
		c.buf = buf
	} else if _, err := c.buf.Resize(w, h); err != nil {
		return c.buf, err
	}

	sx, sy := c.vp.PendingScrollX, c.vp.PendingScrollY
	if err := c.paint(sx, sy); err != nil {
		c.log.Warn("htmlview: paint failed", "err", err)
		return c.buf, err
	}

	c.vp.ScrollX, c.vp.ScrollY = sx, sy
	c.vp.LastPaintedWidth, c.vp.LastPaintedHeight = w, h
	c.invalidated = false
	c.stats.Paints++
	c.log.Debug("htmlview: paint", "width", w, "height", h, "scrollX", sx, "scrollY", sy)
	return c.buf, nil
}

func (c *Controller) paint(sx, sy int) error {
	err := c.h.SetBackgroundColor(c.opts.background)
	if err == nil {
		err = c.h.Paint(c.buf, sx, sy)
	}
	if err == nil || errors.Is(err, engine.ErrHandleClosed) {
		return err
	}
	return &RenderError{Kind: EngineFailure, Op: "paint", Err: err}
}

// Close destroys the engine handle. Close is idempotent.
func (c *Controller) Close() error {
	if c.state == StateClosed {
		return nil
	}
	c.state = StateClosed
	c.buf = nil
	c.log.Debug("htmlview: controller closed")
	return c.h.Close()
}
