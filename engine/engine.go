// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package engine

import (
	"image/color"

	"github.com/gogpu/htmlview/pixbuf"
)

// Engine is the command interface of an HTML/CSS layout-and-paint engine.
//
// Implementations are driven from a single goroutine through a Handle and
// never need to be safe for concurrent use. Layout and Paint report no
// error; an engine that can fail implements ErrorReporter as well.
type Engine interface {
	// SetDeviceDPI sets the horizontal and vertical device resolution.
	SetDeviceDPI(x, y float64)
	SetDeviceColorBits(bits int)
	SetDeviceMonochromeBits(bits int)
	SetDeviceColorIndex(n int)
	SetDeviceMediaType(t MediaType)

	// LoadFontConfig parses a fontconfig document held in memory.
	// When complain is set the engine reports problems through its own
	// diagnostics. It returns false if the text was rejected.
	LoadFontConfig(text string, complain bool) bool

	// AddFontDir adds a directory to the font search path.
	AddFontDir(path string) bool

	SetDefaultFont(name string, sizePx int)

	// PointsToPixels converts a point size with the vertical DPI. The DPI
	// must already be set.
	PointsToPixels(pt float64) int

	LoadMasterStylesheet(css string)
	CreateDocumentFromUTF8(html string)

	// Layout lays the document out for a viewport and returns the best
	// width the engine found for it.
	Layout(width, height int) int

	// ContentWidth and ContentHeight report the size of the laid-out
	// document, which can exceed the viewport.
	ContentWidth() int
	ContentHeight() int

	SetBackgroundColor(c color.RGBA)

	// Paint rasterizes the laid-out document into buf with the document
	// point (scrollX, scrollY) at the buffer origin.
	Paint(buf *pixbuf.Buffer, scrollX, scrollY int)

	// Destroy releases the engine. It is called exactly once.
	Destroy()
}

// ErrorReporter is implemented by engines that can report a failure of the
// last command. Err returns nil when the last command succeeded.
type ErrorReporter interface {
	Err() error
}

// Factory creates an engine for buffers of the given pixel format.
type Factory func(format pixbuf.Format) (Engine, error)

// MediaType is the CSS media type the engine evaluates media queries against.
type MediaType int

// Media types, in the engine's numbering.
const (
	MediaNone MediaType = iota
	MediaAll
	MediaScreen
	MediaPrint
	MediaBraille
	MediaEmbossed
	MediaHandheld
	MediaProjection
	MediaSpeech
	MediaTTY
	MediaTV
)

var mediaNames = [...]string{
	MediaNone:       "none",
	MediaAll:        "all",
	MediaScreen:     "screen",
	MediaPrint:      "print",
	MediaBraille:    "braille",
	MediaEmbossed:   "embossed",
	MediaHandheld:   "handheld",
	MediaProjection: "projection",
	MediaSpeech:     "speech",
	MediaTTY:        "tty",
	MediaTV:         "tv",
}

func (t MediaType) String() string {
	if t >= 0 && int(t) < len(mediaNames) {
		return mediaNames[t]
	}
	return "unknown"
}

// ParseMediaType returns the media type with the given name.
func ParseMediaType(name string) (MediaType, bool) {
	for i, n := range mediaNames {
		if n == name {
			return MediaType(i), true
		}
	}
	return MediaNone, false
}
