// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package soft

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gtfont "github.com/go-text/typesetting/font"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"

	"github.com/gogpu/htmlview/internal/cache"
	"github.com/gogpu/htmlview/internal/logging"
)

// fontFile is one parsed font file. The same bytes are parsed twice: by
// x/image for rasterization and metrics, and by go-text for shaping.
type fontFile struct {
	id     int
	path   string
	family string
	sfnt   *opentype.Font
	shaper *gtfont.Face
}

func parseFontFile(id int, path string, data []byte) (*fontFile, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("soft: failed to parse font %s: %w", path, err)
	}
	gt, err := gtfont.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("soft: failed to parse font %s: %w", path, err)
	}
	family, _ := f.Name(nil, sfnt.NameIDFamily)
	return &fontFile{id: id, path: path, family: family, sfnt: f, shaper: gt}, nil
}

// builtinFont is the Go Regular face used when no configured family
// matches. It is parsed once per process.
var builtinFont = sync.OnceValues(func() (*fontFile, error) {
	return parseFontFile(0, "builtin:goregular", goregular.TTF)
})

var fontExts = map[string]bool{".ttf": true, ".otf": true}

type faceKey struct {
	font int
	px   int
}

// fontSet resolves CSS font families to parsed fonts and caches sized faces.
type fontSet struct {
	fonts    []*fontFile
	byFamily map[string]*fontFile
	aliases  map[string][]string
	dirs     map[string]bool
	faces    *cache.Cache[faceKey, font.Face]
	fallback *fontFile
}

func newFontSet(fallback *fontFile) *fontSet {
	return &fontSet{
		fonts:    []*fontFile{fallback},
		byFamily: make(map[string]*fontFile),
		aliases:  make(map[string][]string),
		dirs:     make(map[string]bool),
		faces:    cache.New[faceKey, font.Face](64),
		fallback: fallback,
	}
}

// applyConfig records the aliases of cfg and scans its directories.
func (s *fontSet) applyConfig(cfg *fontConfig) {
	for _, a := range cfg.Aliases {
		name := gtfont.NormalizeFamily(strings.TrimSpace(a.Family))
		if name == "" {
			continue
		}
		s.aliases[name] = append(s.aliases[name], a.substitutes()...)
	}
	for _, dir := range cfg.Dirs {
		if fi, err := os.Stat(dir); err == nil && fi.IsDir() {
			_ = s.addDir(dir)
		}
	}
}

// addDir parses every font file in dir. Files that fail to parse are
// skipped. It fails only when dir cannot be read.
func (s *fontSet) addDir(dir string) error {
	if s.dirs[dir] {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	s.dirs[dir] = true

	log := logging.Logger()
	for _, e := range entries {
		if e.IsDir() || !fontExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path) //nolint:gosec // font directory is configured by the host
		if err != nil {
			log.Warn("soft: read font", "path", path, "err", err)
			continue
		}
		f, err := parseFontFile(len(s.fonts), path, data)
		if err != nil {
			log.Warn("soft: skip font", "path", path, "err", err)
			continue
		}
		s.fonts = append(s.fonts, f)
		key := gtfont.NormalizeFamily(f.family)
		if _, ok := s.byFamily[key]; !ok && key != "" {
			s.byFamily[key] = f
		}
		log.Debug("soft: font loaded", "family", f.family, "path", path)
	}
	return nil
}

// resolve returns the first font matching one of families, following
// aliases, or the fallback font.
func (s *fontSet) resolve(families []string) *fontFile {
	seen := make(map[string]bool)
	var lookup func(name string, depth int) *fontFile
	lookup = func(name string, depth int) *fontFile {
		key := gtfont.NormalizeFamily(strings.Trim(strings.TrimSpace(name), `"'`))
		if key == "" || seen[key] || depth > 8 {
			return nil
		}
		seen[key] = true
		if f, ok := s.byFamily[key]; ok {
			return f
		}
		for _, sub := range s.aliases[key] {
			if f := lookup(sub, depth+1); f != nil {
				return f
			}
		}
		return nil
	}
	for _, name := range families {
		if f := lookup(name, 0); f != nil {
			return f
		}
	}
	return s.fallback
}

// face returns f at px pixels per em.
func (s *fontSet) face(f *fontFile, px int) font.Face {
	return s.faces.GetOrCreate(faceKey{font: f.id, px: px}, func() font.Face {
		face, err := opentype.NewFace(f.sfnt, &opentype.FaceOptions{
			Size:    float64(px),
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			logging.Logger().Warn("soft: face", "family", f.family, "px", px, "err", err)
			face, _ = opentype.NewFace(s.fallback.sfnt, &opentype.FaceOptions{Size: float64(px), DPI: 72})
		}
		return face
	})
}
