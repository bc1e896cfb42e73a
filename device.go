package htmlview

import (
	"github.com/gogpu/htmlview/engine"
	"github.com/gogpu/htmlview/pixbuf"
)

// DefaultDPI is the resolution DefaultDeviceProfile reports.
const DefaultDPI = 96

// DeviceProfile describes the display to the engine. It is applied once,
// during bootstrap.
type DeviceProfile struct {
	DPIX, DPIY     float64
	MonochromeBits int
	ColorBits      int
	ColorIndex     int
	MediaType      engine.MediaType
}

// DefaultDeviceProfile returns a 96 DPI screen profile whose colour depth
// matches format.
func DefaultDeviceProfile(format pixbuf.Format) DeviceProfile {
	return DeviceProfile{
		DPIX:      DefaultDPI,
		DPIY:      DefaultDPI,
		ColorBits: format.ColorBits(),
		MediaType: engine.MediaScreen,
	}
}

// FontEnvironment locates fonts for the engine.
type FontEnvironment struct {
	// ConfigText is the fontconfig document. It must not be empty.
	ConfigText string

	// SearchDir is a directory of font files.
	SearchDir string

	// DefaultName is the default family. Empty means "Tinos".
	DefaultName string

	// DefaultSizePt is the default size in points. Zero means 10.
	DefaultSizePt float64
}

// Font defaults.
const (
	DefaultFontName   = "Tinos"
	DefaultFontSizePt = 10
)

func (env FontEnvironment) name() string {
	if env.DefaultName == "" {
		return DefaultFontName
	}
	return env.DefaultName
}

func (env FontEnvironment) sizePt() float64 {
	if env.DefaultSizePt <= 0 {
		return DefaultFontSizePt
	}
	return env.DefaultSizePt
}
