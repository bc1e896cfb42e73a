package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// envPrefix prefixes every environment override, as in HTMLVIEW_WIDTH.
const envPrefix = "HTMLVIEW"

// config holds the renderer settings. Sources apply in order: defaults,
// the YAML file, the environment, then explicitly set flags.
type config struct {
	Archive  string `yaml:"archive" split_words:"true"`
	Target   string `yaml:"target" split_words:"true"`
	Document string `yaml:"document" split_words:"true"`
	Output   string `yaml:"output" split_words:"true"`
	Format   string `yaml:"format" split_words:"true"`

	Width   int `yaml:"width" split_words:"true"`
	Height  int `yaml:"height" split_words:"true"`
	ScrollX int `yaml:"scroll_x" split_words:"true"`
	ScrollY int `yaml:"scroll_y" split_words:"true"`

	DPI        float64 `yaml:"dpi" split_words:"true"`
	Media      string  `yaml:"media" split_words:"true"`
	FontName   string  `yaml:"font_name" split_words:"true"`
	FontSizePt float64 `yaml:"font_size_pt" split_words:"true"`

	Verbose bool `yaml:"verbose" split_words:"true"`
}

func defaultConfig() config {
	return config{
		Output: "htmlview.png",
		Format: "rgba32",
		Width:  800,
		Height: 600,
		DPI:    96,
		Media:  "screen",
	}
}

// loadFile overlays the YAML file at path onto cfg. Keys missing from the
// file keep their current values.
func loadFile(path string, cfg *config) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// loadEnv overlays HTMLVIEW_* variables onto cfg.
func loadEnv(cfg *config) error {
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return fmt.Errorf("failed to load environment: %w", err)
	}
	return nil
}

// flagValues are the command line flags. Only flags the user set override
// the other sources.
type flagValues struct {
	config string
	cfg    config
}

func newFlagSet(v *flagValues) *flag.FlagSet {
	fs := flag.NewFlagSet("htmlview", flag.ContinueOnError)
	d := defaultConfig()
	fs.StringVar(&v.config, "config", "", "YAML config file")
	fs.StringVar(&v.cfg.Archive, "archive", d.Archive, "asset archive (zip)")
	fs.StringVar(&v.cfg.Target, "target", d.Target, "directory the assets are extracted into")
	fs.StringVar(&v.cfg.Document, "document", d.Document, "HTML file to render instead of the archive's test.html")
	fs.StringVar(&v.cfg.Output, "output", d.Output, "output file (.png or .ppm)")
	fs.StringVar(&v.cfg.Format, "format", d.Format, "pixel format")
	fs.IntVar(&v.cfg.Width, "width", d.Width, "surface width")
	fs.IntVar(&v.cfg.Height, "height", d.Height, "surface height")
	fs.IntVar(&v.cfg.ScrollX, "scroll-x", d.ScrollX, "horizontal scroll offset")
	fs.IntVar(&v.cfg.ScrollY, "scroll-y", d.ScrollY, "vertical scroll offset")
	fs.Float64Var(&v.cfg.DPI, "dpi", d.DPI, "device resolution")
	fs.StringVar(&v.cfg.Media, "media", d.Media, "CSS media type")
	fs.StringVar(&v.cfg.FontName, "font", d.FontName, "default font family")
	fs.Float64Var(&v.cfg.FontSizePt, "font-size", d.FontSizePt, "default font size in points")
	fs.BoolVar(&v.cfg.Verbose, "v", d.Verbose, "verbose logging")
	return fs
}

// loadConfig resolves the configuration from args and the environment.
func loadConfig(args []string) (config, error) {
	var v flagValues
	fs := newFlagSet(&v)
	if err := fs.Parse(args); err != nil {
		return config{}, err
	}

	cfg := defaultConfig()
	if v.config != "" {
		if err := loadFile(v.config, &cfg); err != nil {
			return config{}, err
		}
	}
	if err := loadEnv(&cfg); err != nil {
		return config{}, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "archive":
			cfg.Archive = v.cfg.Archive
		case "target":
			cfg.Target = v.cfg.Target
		case "document":
			cfg.Document = v.cfg.Document
		case "output":
			cfg.Output = v.cfg.Output
		case "format":
			cfg.Format = v.cfg.Format
		case "width":
			cfg.Width = v.cfg.Width
		case "height":
			cfg.Height = v.cfg.Height
		case "scroll-x":
			cfg.ScrollX = v.cfg.ScrollX
		case "scroll-y":
			cfg.ScrollY = v.cfg.ScrollY
		case "dpi":
			cfg.DPI = v.cfg.DPI
		case "media":
			cfg.Media = v.cfg.Media
		case "font":
			cfg.FontName = v.cfg.FontName
		case "font-size":
			cfg.FontSizePt = v.cfg.FontSizePt
		case "v":
			cfg.Verbose = v.cfg.Verbose
		}
	})
	return cfg, cfg.validate()
}

var errMissingArchive = errors.New("an asset archive is required (-archive)")

func (c config) validate() error {
	switch {
	case c.Archive == "":
		return errMissingArchive
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("invalid size %dx%d", c.Width, c.Height)
	case c.DPI <= 0:
		return fmt.Errorf("invalid dpi %v", c.DPI)
	}
	return nil
}
