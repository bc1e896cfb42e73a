package htmlview

import (
	"testing"

	"github.com/gogpu/htmlview/engine"
	"github.com/gogpu/htmlview/engine/enginetest"
	"github.com/gogpu/htmlview/pixbuf"
)

const (
	testFontConfig = `<?xml version="1.0"?><fontconfig><dir>fonts</dir></fontconfig>`
	testCSS        = "html { display: block }"
	testHTML       = "<html><body><p>Hello</p></body></html>"
)

func newTestHandle(t *testing.T, format pixbuf.Format) (*engine.Handle, *enginetest.Fake) {
	t.Helper()
	f := enginetest.New()
	h, err := engine.NewHandle(f, format)
	if err != nil {
		t.Fatalf("NewHandle: %v", err)
	}
	return h, f
}

func testFonts(t *testing.T) FontEnvironment {
	t.Helper()
	return FontEnvironment{ConfigText: testFontConfig, SearchDir: t.TempDir()}
}

// newReady returns a Ready controller over a fake engine.
func newReady(t *testing.T, opts ...Option) (*Controller, *enginetest.Fake) {
	t.Helper()
	h, f := newTestHandle(t, pixbuf.RGBA32)
	c := New(h, opts...)
	t.Cleanup(func() { _ = c.Close() })

	if err := c.Bootstrap(DefaultDeviceProfile(pixbuf.RGBA32), testFonts(t), testCSS); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if err := c.LoadDocument(testHTML); err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return c, f
}
