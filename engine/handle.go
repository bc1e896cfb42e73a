// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package engine

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/gogpu/htmlview/internal/logging"
	"github.com/gogpu/htmlview/pixbuf"
)

// Handle errors.
var (
	// ErrHandleClosed is returned by every Handle method after Close.
	ErrHandleClosed = errors.New("engine: handle is closed")

	// ErrNilEngine is returned when NewHandle is given a nil engine.
	ErrNilEngine = errors.New("engine: nil engine")
)

// Handle is the exclusive owner of one Engine instance.
//
// A Handle must not be copied; methods panic on a copied value. Close
// destroys the engine exactly once, and every later call fails with
// ErrHandleClosed instead of reaching the engine.
//
// Handle is NOT safe for concurrent use.
type Handle struct {
	// addr points to the Handle itself and detects copies by value.
	addr *Handle

	eng    Engine
	format pixbuf.Format
	name   string
	closed bool
	docs   int
}

// NewHandle takes ownership of e. format is the pixel format the engine
// was created for.
func NewHandle(e Engine, format pixbuf.Format) (*Handle, error) {
	if e == nil {
		return nil, ErrNilEngine
	}
	h := &Handle{eng: e, format: format, name: fmt.Sprintf("%T", e)}
	h.addr = h
	return h, nil
}

func (h *Handle) copyCheck() {
	if h.addr != h {
		panic("engine: Handle must not be copied by value")
	}
}

// use returns the engine, or ErrHandleClosed.
func (h *Handle) use() (Engine, error) {
	h.copyCheck()
	if h.closed {
		return nil, ErrHandleClosed
	}
	return h.eng, nil
}

// lastErr wraps the engine's reported failure of op, if any.
func (h *Handle) lastErr(op string) error {
	if r, ok := h.eng.(ErrorReporter); ok {
		if err := r.Err(); err != nil {
			return fmt.Errorf("engine: %s: %w", op, err)
		}
	}
	return nil
}

// Format returns the pixel format the engine was created for.
func (h *Handle) Format() pixbuf.Format { return h.format }

// Closed reports whether Close has been called.
func (h *Handle) Closed() bool {
	h.copyCheck()
	return h.closed
}

// SetDeviceDPI forwards to Engine.SetDeviceDPI.
func (h *Handle) SetDeviceDPI(x, y float64) error {
	e, err := h.use()
	if err != nil {
		return err
	}
	e.SetDeviceDPI(x, y)
	return nil
}

// SetDeviceColorBits forwards to Engine.SetDeviceColorBits.
func (h *Handle) SetDeviceColorBits(bits int) error {
	e, err := h.use()
	if err != nil {
		return err
	}
	e.SetDeviceColorBits(bits)
	return nil
}

// SetDeviceMonochromeBits forwards to Engine.SetDeviceMonochromeBits.
func (h *Handle) SetDeviceMonochromeBits(bits int) error {
	e, err := h.use()
	if err != nil {
		return err
	}
	e.SetDeviceMonochromeBits(bits)
	return nil
}

// SetDeviceColorIndex forwards to Engine.SetDeviceColorIndex.
func (h *Handle) SetDeviceColorIndex(n int) error {
	e, err := h.use()
	if err != nil {
		return err
	}
	e.SetDeviceColorIndex(n)
	return nil
}

// SetDeviceMediaType forwards to Engine.SetDeviceMediaType.
func (h *Handle) SetDeviceMediaType(t MediaType) error {
	e, err := h.use()
	if err != nil {
		return err
	}
	e.SetDeviceMediaType(t)
	return nil
}

// LoadFontConfig forwards to Engine.LoadFontConfig.
func (h *Handle) LoadFontConfig(text string, complain bool) (bool, error) {
	e, err := h.use()
	if err != nil {
		return false, err
	}
	return e.LoadFontConfig(text, complain), nil
}

// AddFontDir forwards to Engine.AddFontDir.
func (h *Handle) AddFontDir(path string) (bool, error) {
	e, err := h.use()
	if err != nil {
		return false, err
	}
	return e.AddFontDir(path), nil
}

// SetDefaultFont forwards to Engine.SetDefaultFont.
func (h *Handle) SetDefaultFont(name string, sizePx int) error {
	e, err := h.use()
	if err != nil {
		return err
	}
	e.SetDefaultFont(name, sizePx)
	return nil
}

// PointsToPixels forwards to Engine.PointsToPixels.
func (h *Handle) PointsToPixels(pt float64) (int, error) {
	e, err := h.use()
	if err != nil {
		return 0, err
	}
	return e.PointsToPixels(pt), nil
}

// LoadMasterStylesheet forwards to Engine.LoadMasterStylesheet.
func (h *Handle) LoadMasterStylesheet(css string) error {
	e, err := h.use()
	if err != nil {
		return err
	}
	e.LoadMasterStylesheet(css)
	return h.lastErr("load master stylesheet")
}

// CreateDocumentFromUTF8 forwards to Engine.CreateDocumentFromUTF8.
func (h *Handle) CreateDocumentFromUTF8(html string) error {
	e, err := h.use()
	if err != nil {
		return err
	}
	e.CreateDocumentFromUTF8(html)
	if err := h.lastErr("create document"); err != nil {
		return err
	}
	h.docs++
	return nil
}

// Documents returns how many documents were created successfully through h.
func (h *Handle) Documents() int {
	h.copyCheck()
	return h.docs
}

// Layout runs a layout pass and returns the content size it produced.
func (h *Handle) Layout(width, height int) (contentWidth, contentHeight int, err error) {
	e, err := h.use()
	if err != nil {
		return 0, 0, err
	}
	e.Layout(width, height)
	if err := h.lastErr("layout"); err != nil {
		return 0, 0, err
	}
	return e.ContentWidth(), e.ContentHeight(), nil
}

// ContentSize returns the engine-reported document size.
func (h *Handle) ContentSize() (width, height int, err error) {
	e, err := h.use()
	if err != nil {
		return 0, 0, err
	}
	return e.ContentWidth(), e.ContentHeight(), nil
}

// SetBackgroundColor forwards to Engine.SetBackgroundColor.
func (h *Handle) SetBackgroundColor(c color.RGBA) error {
	e, err := h.use()
	if err != nil {
		return err
	}
	e.SetBackgroundColor(c)
	return nil
}

// Paint forwards to Engine.Paint.
func (h *Handle) Paint(buf *pixbuf.Buffer, scrollX, scrollY int) error {
	e, err := h.use()
	if err != nil {
		return err
	}
	if buf.Format() != h.format {
		return fmt.Errorf("engine: paint: buffer format %v, engine created for %v", buf.Format(), h.format)
	}
	e.Paint(buf, scrollX, scrollY)
	return h.lastErr("paint")
}

// Close destroys the engine. Close is idempotent.
func (h *Handle) Close() error {
	h.copyCheck()
	if h.closed {
		return nil
	}
	h.closed = true
	h.eng.Destroy()
	h.eng = nil
	logging.Logger().Debug("engine destroyed", "engine", h.name)
	return nil
}
