package htmlview

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gogpu/htmlview/engine"
)

type bootstrapStep int

const (
	stepDevice bootstrapStep = iota
	stepFonts
	stepStylesheet
	stepDone
	stepAborted
)

// Bootstrapper configures an engine in the one order the engine accepts:
// device metrics, then fonts, then the master stylesheet.
//
// Each stage is returned by the previous one, so the point-to-pixel
// conversion, which needs the vertical DPI, cannot be reached before the
// device profile has been applied:
//
//	dev, err := htmlview.NewBootstrapper(h).Device(profile)
//	if err != nil {
//	    return err
//	}
//	fonts, err := dev.Fonts(env)
//	if err != nil {
//	    return err
//	}
//	return fonts.Stylesheet(css)
//
// A Bootstrapper is single-shot. A failed step leaves the engine in an
// unusable configuration and every later step returns ErrBootstrapAborted.
type Bootstrapper struct {
	h    *engine.Handle
	step bootstrapStep
}

// NewBootstrapper returns a Bootstrapper for h.
func NewBootstrapper(h *engine.Handle) *Bootstrapper {
	return &Bootstrapper{h: h}
}

// Done reports whether every step completed.
func (b *Bootstrapper) Done() bool { return b.step == stepDone }

func (b *Bootstrapper) enter(step bootstrapStep) error {
	switch {
	case b.step == stepAborted:
		return ErrBootstrapAborted
	case b.step != step:
		return ErrAlreadyBootstrapped
	}
	return nil
}

func (b *Bootstrapper) fail(err error) error {
	b.step = stepAborted
	Logger().Warn("htmlview: bootstrap failed", "err", err)
	return err
}

// Device applies the device profile and returns the font stage.
func (b *Bootstrapper) Device(p DeviceProfile) (*DeviceStage, error) {
	if err := b.enter(stepDevice); err != nil {
		return nil, err
	}

	h := b.h
	err := errors.Join(
		h.SetDeviceDPI(p.DPIX, p.DPIY),
		h.SetDeviceColorBits(p.ColorBits),
		h.SetDeviceMonochromeBits(p.MonochromeBits),
		h.SetDeviceColorIndex(p.ColorIndex),
		h.SetDeviceMediaType(p.MediaType),
	)
	if err != nil {
		return nil, b.fail(fmt.Errorf("htmlview: bootstrap: device: %w", err))
	}

	b.step = stepFonts
	Logger().Debug("htmlview: device profile applied",
		"dpiX", p.DPIX, "dpiY", p.DPIY, "colorBits", p.ColorBits, "media", p.MediaType)
	return &DeviceStage{b: b}, nil
}

// DeviceStage is a Bootstrapper whose device profile has been applied.
type DeviceStage struct {
	b *Bootstrapper
}

// PointsToPixels converts a point size with the applied vertical DPI.
func (s *DeviceStage) PointsToPixels(pt float64) (int, error) {
	return s.b.h.PointsToPixels(pt)
}

// Fonts loads the font configuration, adds the font directory and sets the
// default font. It returns the stylesheet stage.
func (s *DeviceStage) Fonts(env FontEnvironment) (*FontStage, error) {
	b := s.b
	if err := b.enter(stepFonts); err != nil {
		return nil, err
	}

	if strings.TrimSpace(env.ConfigText) == "" {
		return nil, b.fail(&BootstrapError{Kind: FontConfigInvalid, Err: errors.New("empty font configuration")})
	}
	ok, err := b.h.LoadFontConfig(env.ConfigText, true)
	if err != nil {
		return nil, b.fail(fmt.Errorf("htmlview: bootstrap: %w", err))
	}
	if !ok {
		return nil, b.fail(&BootstrapError{Kind: FontConfigInvalid, Err: errors.New("rejected by engine")})
	}

	if err := checkDir(env.SearchDir); err != nil {
		return nil, b.fail(&BootstrapError{Kind: FontDirUnavailable, Err: err})
	}
	ok, err = b.h.AddFontDir(env.SearchDir)
	if err != nil {
		return nil, b.fail(fmt.Errorf("htmlview: bootstrap: %w", err))
	}
	if !ok {
		return nil, b.fail(&BootstrapError{Kind: FontDirUnavailable, Err: fmt.Errorf("%s: rejected by engine", env.SearchDir)})
	}

	px, err := s.PointsToPixels(env.sizePt())
	if err != nil {
		return nil, b.fail(fmt.Errorf("htmlview: bootstrap: %w", err))
	}
	if err := b.h.SetDefaultFont(env.name(), px); err != nil {
		return nil, b.fail(fmt.Errorf("htmlview: bootstrap: %w", err))
	}

	b.step = stepStylesheet
	Logger().Debug("htmlview: fonts configured", "dir", env.SearchDir, "font", env.name(), "px", px)
	return &FontStage{b: b}, nil
}

func checkDir(dir string) error {
	if dir == "" {
		return errors.New("no font directory")
	}
	fi, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s: not a directory", dir)
	}
	return nil
}

// FontStage is a Bootstrapper whose fonts have been configured.
type FontStage struct {
	b *Bootstrapper
}

// Stylesheet loads the master stylesheet and completes bootstrap.
func (s *FontStage) Stylesheet(css string) error {
	b := s.b
	if err := b.enter(stepStylesheet); err != nil {
		return err
	}

	if strings.TrimSpace(css) == "" {
		return b.fail(&BootstrapError{Kind: StylesheetInvalid, Err: errors.New("empty stylesheet")})
	}
	if err := b.h.LoadMasterStylesheet(css); err != nil {
		if errors.Is(err, engine.ErrHandleClosed) {
			return b.fail(fmt.Errorf("htmlview: bootstrap: %w", err))
		}
		return b.fail(&BootstrapError{Kind: StylesheetInvalid, Err: err})
	}

	b.step = stepDone
	return nil
}

// Bootstrap runs every configuration step on h.
func Bootstrap(h *engine.Handle, p DeviceProfile, env FontEnvironment, masterCSS string) error {
	dev, err := NewBootstrapper(h).Device(p)
	if err != nil {
		return err
	}
	fonts, err := dev.Fonts(env)
	if err != nil {
		return err
	}
	return fonts.Stylesheet(masterCSS)
}
