// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpuhost

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/htmlview"
	"github.com/gogpu/htmlview/engine"
	"github.com/gogpu/htmlview/engine/enginetest"
	"github.com/gogpu/htmlview/pixbuf"
)

// mockTexture implements gpucontext.Texture and TextureUpdater.
type mockTexture struct {
	width     int
	height    int
	data      []byte
	updated   int
	destroyed bool
}

func (m *mockTexture) Width() int  { return m.width }
func (m *mockTexture) Height() int { return m.height }

func (m *mockTexture) UpdateData(data []byte) error {
	m.data = append(m.data[:0], data...)
	m.updated++
	return nil
}

func (m *mockTexture) Destroy() { m.destroyed = true }

// mockCreator implements gpucontext.TextureCreator.
type mockCreator struct {
	textures []*mockTexture
	failNext bool
}

func (m *mockCreator) NewTextureFromRGBA(width, height int, data []byte) (gpucontext.Texture, error) {
	if m.failNext {
		m.failNext = false
		return nil, errors.New("mock texture creation failed")
	}
	tex := &mockTexture{width: width, height: height, data: append([]byte(nil), data...)}
	m.textures = append(m.textures, tex)
	return tex, nil
}

// mockDrawer implements gpucontext.TextureDrawer.
type mockDrawer struct {
	creator   *mockCreator
	drawn     gpucontext.Texture
	drawCount int
	x, y      float32
}

func (m *mockDrawer) DrawTexture(tex gpucontext.Texture, x, y float32) error {
	m.drawn = tex
	m.x, m.y = x, y
	m.drawCount++
	return nil
}

func (m *mockDrawer) TextureCreator() gpucontext.TextureCreator {
	if m.creator == nil {
		return nil
	}
	return m.creator
}

// mockEvents records the resize and scroll callbacks.
type mockEvents struct {
	gpucontext.NullEventSource
	resize func(int, int)
	scroll func(float64, float64)
}

func (m *mockEvents) OnResize(fn func(int, int))         { m.resize = fn }
func (m *mockEvents) OnScroll(fn func(float64, float64)) { m.scroll = fn }

type mockScroll struct {
	fn func(gpucontext.ScrollEvent)
}

func (m *mockScroll) OnScrollEvent(fn func(gpucontext.ScrollEvent)) { m.fn = fn }

type mockWindow struct {
	w, h    int
	scale   float64
	redraws int
}

func (m *mockWindow) Size() (int, int)     { return m.w, m.h }
func (m *mockWindow) ScaleFactor() float64 { return m.scale }
func (m *mockWindow) RequestRedraw()       { m.redraws++ }

// newController returns a Ready controller over a fake engine.
func newController(t *testing.T, format pixbuf.Format) (*htmlview.Controller, *enginetest.Fake) {
	t.Helper()
	f := enginetest.New()
	h, err := engine.NewHandle(f, format)
	if err != nil {
		t.Fatalf("NewHandle: %v", err)
	}
	c := htmlview.New(h)
	fonts := htmlview.FontEnvironment{ConfigText: "<fontconfig/>", SearchDir: t.TempDir()}
	if err := c.Bootstrap(htmlview.DefaultDeviceProfile(format), fonts, "body { margin: 0 }"); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if err := c.LoadDocument("<p>hello</p>"); err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return c, f
}

func newHost(t *testing.T, format pixbuf.Format, opts ...Option) (*Host, *enginetest.Fake) {
	t.Helper()
	c, f := newController(t, format)
	h, err := New(c, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h, f
}

func TestNewNilController(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, ErrNilController) {
		t.Errorf("New(nil) error = %v, want ErrNilController", err)
	}
}

func TestRenderToWithoutGeometry(t *testing.T) {
	h, _ := newHost(t, pixbuf.RGBA32)
	dc := &mockDrawer{creator: &mockCreator{}}

	if err := h.RenderTo(dc); !errors.Is(err, htmlview.ErrNoGeometry) {
		t.Errorf("RenderTo error = %v, want ErrNoGeometry", err)
	}
	if h.Texture() != nil || dc.drawCount != 0 {
		t.Error("nothing should be uploaded or drawn without geometry")
	}
}

func TestRenderToUploadsOnlyAfterPaint(t *testing.T) {
	h, f := newHost(t, pixbuf.RGBA32)
	win := &mockWindow{w: 200, h: 100, scale: 1}
	h.Attach(nil, nil, win)

	creator := &mockCreator{}
	dc := &mockDrawer{creator: creator}

	if err := h.RenderTo(dc); err != nil {
		t.Fatalf("first RenderTo: %v", err)
	}
	if len(creator.textures) != 1 {
		t.Fatalf("textures created = %d, want 1", len(creator.textures))
	}
	tex := creator.textures[0]
	if tex.width != 200 || tex.height != 100 || len(tex.data) != 200*100*4 {
		t.Errorf("texture = %dx%d with %d bytes, want 200x100 RGBA", tex.width, tex.height, len(tex.data))
	}
	if dc.drawn != gpucontext.Texture(tex) {
		t.Error("drawn texture is not the created texture")
	}

	if err := h.RenderTo(dc); err != nil {
		t.Fatalf("second RenderTo: %v", err)
	}
	if h.Uploads() != 1 || tex.updated != 0 {
		t.Errorf("uploads = %d, updates = %d, want 1 and 0 for an unchanged frame", h.Uploads(), tex.updated)
	}
	if dc.drawCount != 2 {
		t.Errorf("drawCount = %d, want 2", dc.drawCount)
	}
	if f.PaintCalls != 1 {
		t.Errorf("PaintCalls = %d, want 1", f.PaintCalls)
	}
}

func TestScrollEventsRepaint(t *testing.T) {
	h, f := newHost(t, pixbuf.RGBA32)
	win := &mockWindow{w: 200, h: 100, scale: 1}
	scroll := &mockScroll{}
	events := &mockEvents{}
	h.Attach(events, scroll, win)

	if events.scroll != nil {
		t.Error("legacy OnScroll should not be used when a scroll source is given")
	}

	creator := &mockCreator{}
	dc := &mockDrawer{creator: creator}
	if err := h.RenderTo(dc); err != nil {
		t.Fatal(err)
	}

	redraws := win.redraws
	scroll.fn(gpucontext.ScrollEvent{DeltaY: 30, DeltaMode: gpucontext.ScrollDeltaPixel})
	if win.redraws != redraws+1 {
		t.Errorf("redraws = %d, want %d", win.redraws, redraws+1)
	}
	if err := h.RenderTo(dc); err != nil {
		t.Fatal(err)
	}
	if f.LastPaint.Y != 30 {
		t.Errorf("painted scroll y = %d, want 30", f.LastPaint.Y)
	}
	if len(creator.textures) != 1 || creator.textures[0].updated != 1 {
		t.Errorf("want one texture updated once, got %d textures", len(creator.textures))
	}
}

func TestScrollDeltaModes(t *testing.T) {
	tests := []struct {
		name  string
		ev    gpucontext.ScrollEvent
		wantX int
		wantY int
	}{
		{"pixel", gpucontext.ScrollEvent{DeltaX: 5, DeltaY: 7.4, DeltaMode: gpucontext.ScrollDeltaPixel}, 5, 7},
		{"line", gpucontext.ScrollEvent{DeltaY: 2, DeltaMode: gpucontext.ScrollDeltaLine}, 0, 2 * DefaultLineHeight},
		{"page", gpucontext.ScrollEvent{DeltaY: 1, DeltaMode: gpucontext.ScrollDeltaPage}, 0, 100},
		{"negative clamps", gpucontext.ScrollEvent{DeltaX: -10, DeltaY: -10}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newHost(t, pixbuf.RGBA32)
			scroll := &mockScroll{}
			h.Attach(nil, scroll, &mockWindow{w: 200, h: 100})

			scroll.fn(tt.ev)
			vp := h.Controller().Viewport()
			if vp.PendingScrollX != tt.wantX || vp.PendingScrollY != tt.wantY {
				t.Errorf("pending scroll = (%d, %d), want (%d, %d)",
					vp.PendingScrollX, vp.PendingScrollY, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestLegacyScrollUsesLineHeight(t *testing.T) {
	h, _ := newHost(t, pixbuf.RGBA32, WithLineHeight(10))
	events := &mockEvents{}
	h.Attach(events, nil, nil)
	if events.scroll == nil {
		t.Fatal("OnScroll not registered")
	}
	events.scroll(0, 3)
	if got := h.Controller().Viewport().PendingScrollY; got != 30 {
		t.Errorf("PendingScrollY = %d, want 30", got)
	}
}

func TestResizeRecreatesTexture(t *testing.T) {
	h, f := newHost(t, pixbuf.RGBA32)
	events := &mockEvents{}
	win := &mockWindow{w: 200, h: 100}
	h.Attach(events, nil, win)

	creator := &mockCreator{}
	dc := &mockDrawer{creator: creator}
	if err := h.RenderTo(dc); err != nil {
		t.Fatal(err)
	}

	events.resize(300, 120)
	if f.LastLayout.X != 300 {
		t.Errorf("layout width = %d, want 300", f.LastLayout.X)
	}
	if err := h.RenderTo(dc); err != nil {
		t.Fatal(err)
	}
	if len(creator.textures) != 2 {
		t.Fatalf("textures created = %d, want 2", len(creator.textures))
	}
	if !creator.textures[0].destroyed {
		t.Error("old texture not destroyed after recreation")
	}
	if creator.textures[1].destroyed {
		t.Error("new texture destroyed")
	}
	if got := h.Texture(); got.Width() != 300 || got.Height() != 120 {
		t.Errorf("texture size = %dx%d, want 300x120", got.Width(), got.Height())
	}
}

func TestResizeEventError(t *testing.T) {
	h, _ := newHost(t, pixbuf.RGBA32)
	events := &mockEvents{}
	win := &mockWindow{}
	h.Attach(events, nil, win)

	events.resize(0, 10)
	if !errors.Is(h.Err(), htmlview.ErrInvalidDimensions) {
		t.Errorf("Err() = %v, want ErrInvalidDimensions", h.Err())
	}
	if win.redraws != 1 {
		t.Errorf("redraws = %d, want 1", win.redraws)
	}
}

func TestRenderToTextureErrors(t *testing.T) {
	h, _ := newHost(t, pixbuf.RGBA32)
	h.Attach(nil, nil, &mockWindow{w: 20, h: 20})

	if err := h.RenderTo(&mockDrawer{}); !errors.Is(err, ErrNoTextureCreator) {
		t.Errorf("RenderTo without creator: %v, want ErrNoTextureCreator", err)
	}

	creator := &mockCreator{failNext: true}
	if err := h.RenderTo(&mockDrawer{creator: creator}); err == nil {
		t.Error("RenderTo with failing creator: want error")
	}
	// The controller already painted; the next frame still uploads.
	dc := &mockDrawer{creator: creator}
	if err := h.RenderTo(dc); err != nil {
		t.Fatalf("RenderTo after failure: %v", err)
	}
	if len(creator.textures) != 1 || dc.drawCount != 1 {
		t.Errorf("textures = %d, draws = %d, want 1 and 1", len(creator.textures), dc.drawCount)
	}
}

func TestRenderToConvertsFormat(t *testing.T) {
	h, _ := newHost(t, pixbuf.RGB565)
	h.Attach(nil, nil, &mockWindow{w: 8, h: 4})

	creator := &mockCreator{}
	if err := h.RenderTo(&mockDrawer{creator: creator}); err != nil {
		t.Fatal(err)
	}
	tex := creator.textures[0]
	if len(tex.data) != 8*4*4 {
		t.Fatalf("uploaded %d bytes, want %d", len(tex.data), 8*4*4)
	}
	// Opaque white survives RGB565 exactly.
	for i, b := range tex.data {
		if b != 0xff {
			t.Fatalf("byte %d = %#x, want 0xff", i, b)
		}
	}
}

func TestClose(t *testing.T) {
	h, f := newHost(t, pixbuf.RGBA32)
	h.Attach(nil, nil, &mockWindow{w: 20, h: 20})
	creator := &mockCreator{}
	if err := h.RenderTo(&mockDrawer{creator: creator}); err != nil {
		t.Fatal(err)
	}

	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if !creator.textures[0].destroyed {
		t.Error("texture not destroyed")
	}
	if h.Controller().State() != htmlview.StateClosed {
		t.Errorf("controller state = %v, want closed", h.Controller().State())
	}
	if f.DestroyCalls != 1 {
		t.Errorf("DestroyCalls = %d, want 1", f.DestroyCalls)
	}
	if err := h.RenderTo(&mockDrawer{creator: creator}); !errors.Is(err, ErrHostClosed) {
		t.Errorf("RenderTo after Close: %v, want ErrHostClosed", err)
	}
}

func TestProfileFor(t *testing.T) {
	tests := []struct {
		name string
		win  gpucontext.WindowProvider
		dpi  float64
	}{
		{"nil window", nil, 96},
		{"scale 1", gpucontext.NullWindowProvider{W: 10, H: 10, SF: 1}, 96},
		{"scale 2", &mockWindow{scale: 2}, 192},
		{"zero scale", &mockWindow{}, 96},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ProfileFor(tt.win, pixbuf.BGRA32)
			if p.DPIX != tt.dpi || p.DPIY != tt.dpi {
				t.Errorf("DPI = %v x %v, want %v", p.DPIX, p.DPIY, tt.dpi)
			}
			if p.ColorBits != 8 || p.MediaType != engine.MediaScreen {
				t.Errorf("profile = %+v", p)
			}
		})
	}
}
