package htmlview

import (
	"context"
	"fmt"
	"io"

	"github.com/gogpu/htmlview/assets"
	"github.com/gogpu/htmlview/engine"
)

// Setup describes where a controller's assets come from.
type Setup struct {
	// ArchivePath is a zip holding the asset tree. It is ignored when
	// Archive is set.
	ArchivePath string

	// Archive and ArchiveSize give the zip in memory instead.
	Archive     io.ReaderAt
	ArchiveSize int64

	// TargetDir is the writable directory the assets are extracted into.
	TargetDir string

	// Profile overrides DefaultDeviceProfile for the handle's format.
	Profile *DeviceProfile

	// FontName and FontSizePt override the default font.
	FontName   string
	FontSizePt float64

	// Document is markup to load instead of the archive's test.html.
	Document string

	// Provisioner extracts the archive. Nil uses a Provisioner on the OS
	// filesystem.
	Provisioner *assets.Provisioner

	Options []Option
}

// Open provisions assets, bootstraps h, loads the document and starts a
// Controller. On failure it returns the error together with a controller
// in StateFailed, which renders nothing and reports the error from Present.
func Open(ctx context.Context, h *engine.Handle, s Setup) (*Controller, error) {
	c := New(h, s.Options...)
	if err := c.open(ctx, s); err != nil {
		if c.state != StateFailed {
			_ = c.failInit(err)
		}
		return c, err
	}
	return c, nil
}

func (c *Controller) open(ctx context.Context, s Setup) error {
	prov := s.Provisioner
	if prov == nil {
		prov = &assets.Provisioner{}
	}

	var (
		paths assets.Paths
		err   error
	)
	if s.Archive != nil {
		paths, err = prov.EnsureReader(ctx, s.Archive, s.ArchiveSize, s.TargetDir)
	} else {
		paths, err = prov.Ensure(ctx, s.ArchivePath, s.TargetDir)
	}
	if err != nil {
		return err
	}

	fontConf, err := assets.ReadText(prov.FS, paths.FontConfigFile())
	if err != nil {
		return fmt.Errorf("htmlview: read font config: %w", err)
	}
	css, err := assets.ReadText(prov.FS, paths.MasterStylesheet())
	if err != nil {
		return fmt.Errorf("htmlview: read master stylesheet: %w", err)
	}
	html := s.Document
	if html == "" {
		html, err = assets.ReadText(prov.FS, paths.DefaultDocument())
		if err != nil {
			return fmt.Errorf("htmlview: read document: %w", err)
		}
	}

	profile := DefaultDeviceProfile(c.h.Format())
	if s.Profile != nil {
		profile = *s.Profile
	}
	env := FontEnvironment{
		ConfigText:    fontConf,
		SearchDir:     paths.FontDir,
		DefaultName:   s.FontName,
		DefaultSizePt: s.FontSizePt,
	}

	if err := c.Bootstrap(profile, env, css); err != nil {
		return err
	}
	if err := c.LoadDocument(html); err != nil {
		return err
	}
	return c.Start()
}
