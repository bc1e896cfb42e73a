// Command htmlview renders an HTML document from an asset archive into an
// image file.
//
//	htmlview -archive assets.zip -width 1024 -height 768 -output page.png
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/gogpu/htmlview"
	"github.com/gogpu/htmlview/engine"
	"github.com/gogpu/htmlview/engine/soft"
	"github.com/gogpu/htmlview/pixbuf"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stderr)
	stop()
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "htmlview:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	htmlview.SetLogger(log)
	defer htmlview.SetLogger(nil)

	format, err := pixbuf.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	media, ok := engine.ParseMediaType(cfg.Media)
	if !ok {
		return fmt.Errorf("unknown media type %q", cfg.Media)
	}

	setup := htmlview.Setup{
		ArchivePath: cfg.Archive,
		TargetDir:   cfg.Target,
		FontName:    cfg.FontName,
		FontSizePt:  cfg.FontSizePt,
	}
	if setup.TargetDir == "" {
		dir, err := os.MkdirTemp("", "htmlview-assets-")
		if err != nil {
			return err
		}
		defer os.RemoveAll(dir)
		setup.TargetDir = dir
	}
	if cfg.Document != "" {
		data, err := os.ReadFile(cfg.Document)
		if err != nil {
			return err
		}
		setup.Document = string(data)
	}
	profile := htmlview.DefaultDeviceProfile(format)
	profile.DPIX, profile.DPIY = cfg.DPI, cfg.DPI
	profile.MediaType = media
	setup.Profile = &profile

	soft.Register(engine.Default())
	if err := engine.Init(); err != nil {
		return err
	}
	h, err := engine.NewBest(format)
	if err != nil {
		return err
	}

	ctrl, err := htmlview.Open(ctx, h, setup)
	defer ctrl.Close()
	if err != nil {
		return err
	}

	if err := ctrl.Resize(cfg.Width, cfg.Height); err != nil {
		return err
	}
	if err := ctrl.ScrollTo(cfg.ScrollX, cfg.ScrollY); err != nil {
		return err
	}
	buf, err := ctrl.Present()
	if err != nil {
		return err
	}

	if err := save(buf, cfg.Output); err != nil {
		return fmt.Errorf("failed to save: %w", err)
	}
	cw, ch := ctrl.ContentSize()
	log.Info("rendered", "output", cfg.Output, "width", cfg.Width, "height", cfg.Height,
		"contentWidth", cw, "contentHeight", ch)
	return nil
}

func save(buf *pixbuf.Buffer, path string) error {
	if !strings.EqualFold(filepath.Ext(path), ".ppm") {
		return buf.SavePNG(path)
	}
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	if err := buf.WritePPM(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
