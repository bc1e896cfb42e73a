// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpuhost

import (
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/htmlview"
	"github.com/gogpu/htmlview/internal/logging"
	"github.com/gogpu/htmlview/pixbuf"
)

// Common errors returned by Host operations.
var (
	// ErrHostClosed is returned when operations are attempted on a closed host.
	ErrHostClosed = errors.New("gpuhost: host is closed")

	// ErrNilController is returned when New is passed a nil controller.
	ErrNilController = errors.New("gpuhost: nil controller")

	// ErrNoTextureCreator is returned when the draw context cannot create
	// textures.
	ErrNoTextureCreator = errors.New("gpuhost: draw context has no texture creator")
)

// DefaultLineHeight is the scroll distance of one wheel line, in pixels.
const DefaultLineHeight = 40

// textureDestroyer matches the gogpu.Texture.Destroy signature.
type textureDestroyer interface {
	Destroy()
}

// Option configures a Host.
type Option func(*Host)

// WithLineHeight sets the pixels scrolled per wheel line.
func WithLineHeight(px int) Option {
	return func(h *Host) {
		if px > 0 {
			h.lineHeight = px
		}
	}
}

// Host presents a Controller's buffer in a window and feeds window events
// back to it.
type Host struct {
	ctrl       *htmlview.Controller
	win        gpucontext.WindowProvider
	texture    gpucontext.Texture
	oldTexture gpucontext.Texture // awaiting deferred destruction
	lastBuf    *pixbuf.Buffer
	lastGen    uint64
	lineHeight int
	uploads    int
	err        error
	closed     bool
}

// New returns a Host for ctrl. The host owns ctrl and closes it on Close.
func New(ctrl *htmlview.Controller, opts ...Option) (*Host, error) {
	if ctrl == nil {
		return nil, ErrNilController
	}
	h := &Host{ctrl: ctrl, lineHeight: DefaultLineHeight}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Controller returns the bound controller.
func (h *Host) Controller() *htmlview.Controller { return h.ctrl }

// Texture returns the current GPU texture, or nil before the first frame.
func (h *Host) Texture() gpucontext.Texture { return h.texture }

// Uploads returns the number of pixel uploads to the GPU.
func (h *Host) Uploads() int { return h.uploads }

// Err returns the last error raised while handling a window event.
func (h *Host) Err() error { return h.err }

// ProfileFor returns a device profile for win: the default screen profile
// with the DPI scaled by the window's scale factor.
func ProfileFor(win gpucontext.WindowProvider, format pixbuf.Format) htmlview.DeviceProfile {
	p := htmlview.DefaultDeviceProfile(format)
	if win == nil {
		return p
	}
	if sf := win.ScaleFactor(); sf > 0 && !math.IsInf(sf, 0) {
		p.DPIX = htmlview.DefaultDPI * sf
		p.DPIY = htmlview.DefaultDPI * sf
	}
	return p
}

// Attach subscribes to window events. Resize events resize the surface;
// scroll events move the scroll offset. Each handled event requests a
// redraw from win.
//
// When scroll is non-nil its events are used and the legacy
// OnScroll callback of events is ignored. Any argument may be nil.
func (h *Host) Attach(events gpucontext.EventSource, scroll gpucontext.ScrollEventSource, win gpucontext.WindowProvider) {
	h.win = win
	if win != nil {
		if w, ht := win.Size(); w > 0 && ht > 0 {
			h.handle(h.ctrl.Resize(w, ht))
		}
	}
	if events != nil {
		events.OnResize(func(width, height int) {
			h.handle(h.ctrl.Resize(width, height))
		})
		if scroll == nil {
			events.OnScroll(func(dx, dy float64) {
				h.scrollBy(dx*float64(h.lineHeight), dy*float64(h.lineHeight))
			})
		}
	}
	if scroll != nil {
		scroll.OnScrollEvent(h.onScrollEvent)
	}
}

func (h *Host) onScrollEvent(ev gpucontext.ScrollEvent) {
	var unit float64
	switch ev.DeltaMode {
	case gpucontext.ScrollDeltaLine:
		unit = float64(h.lineHeight)
	case gpucontext.ScrollDeltaPage:
		unit = float64(max(h.ctrl.Viewport().SurfaceHeight, 1))
	default:
		unit = 1
	}
	h.scrollBy(ev.DeltaX*unit, ev.DeltaY*unit)
}

func (h *Host) scrollBy(dx, dy float64) {
	h.handle(h.ctrl.ScrollBy(int(math.Round(dx)), int(math.Round(dy))))
}

func (h *Host) handle(err error) {
	if h.closed {
		return
	}
	if err != nil {
		h.err = err
		logging.Logger().Warn("gpuhost: event", "err", err)
	}
	if h.win != nil {
		h.win.RequestRedraw()
	}
}

// RenderTo presents the controller and draws its buffer at (0, 0).
//
// The buffer is uploaded only when the controller painted since the last
// frame. A size change recreates the texture; the old one is destroyed
// after the new one is created.
func (h *Host) RenderTo(dc gpucontext.TextureDrawer) error {
	return h.RenderToPosition(dc, 0, 0)
}

// RenderToPosition is RenderTo at (x, y).
func (h *Host) RenderToPosition(dc gpucontext.TextureDrawer, x, y float32) error {
	if h.closed {
		return ErrHostClosed
	}
	buf, err := h.ctrl.Present()
	if err != nil {
		if buf == nil || h.texture == nil {
			return err
		}
		// Keep showing the last good frame.
		logging.Logger().Warn("gpuhost: present", "err", err)
	} else if err := h.upload(dc, buf); err != nil {
		return err
	}
	if h.texture == nil {
		return nil
	}
	return dc.DrawTexture(h.texture, x, y)
}

func (h *Host) upload(dc gpucontext.TextureDrawer, buf *pixbuf.Buffer) error {
	if h.texture != nil && buf == h.lastBuf && buf.Generation() == h.lastGen {
		return nil
	}
	data := rgbaPixels(buf)
	w, ht := buf.Size()

	if h.texture != nil && (h.texture.Width() != w || h.texture.Height() != ht) {
		h.destroyOld()
		h.oldTexture = h.texture
		h.texture = nil
	}

	if h.texture == nil {
		creator := dc.TextureCreator()
		if creator == nil {
			return ErrNoTextureCreator
		}
		tex, err := creator.NewTextureFromRGBA(w, ht, data)
		if err != nil {
			return fmt.Errorf("gpuhost: NewTextureFromRGBA failed: %w", err)
		}
		h.texture = tex
		h.destroyOld()
		logging.Logger().Debug("gpuhost: texture created", "width", w, "height", ht)
	} else if updater, ok := h.texture.(gpucontext.TextureUpdater); ok {
		if err := updater.UpdateData(data); err != nil {
			return fmt.Errorf("gpuhost: texture update failed: %w", err)
		}
	}

	h.lastBuf = buf
	h.lastGen = buf.Generation()
	h.uploads++
	return nil
}

// rgbaPixels returns the buffer as tightly packed RGBA bytes.
func rgbaPixels(buf *pixbuf.Buffer) []byte {
	if buf.Format() == pixbuf.RGBA32 && buf.Stride() == buf.Width()*4 {
		return buf.Pix()
	}
	return buf.ToRGBA().Pix
}

func (h *Host) destroyOld() {
	if h.oldTexture == nil {
		return
	}
	if d, ok := h.oldTexture.(textureDestroyer); ok {
		d.Destroy()
	}
	h.oldTexture = nil
}

// Close destroys the textures and closes the controller. Close is
// idempotent.
func (h *Host) Close() error {
	if h.closed {
		return nil
	}
	h.closed = true
	h.destroyOld()
	if h.texture != nil {
		if d, ok := h.texture.(textureDestroyer); ok {
			d.Destroy()
		}
		h.texture = nil
	}
	h.lastBuf = nil
	h.win = nil
	return h.ctrl.Close()
}
