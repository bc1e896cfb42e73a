// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package soft

import (
	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/htmlview/internal/cache"
)

// measureCacheSize bounds the number of cached word widths.
const measureCacheSize = 4096

type measureKey struct {
	font int
	px   int
	text string
}

// measurer shapes words with HarfBuzz and caches their advances, so a
// re-layout at a new width does not shape the document again.
type measurer struct {
	shaper shaping.HarfbuzzShaper
	widths *cache.Cache[measureKey, fixed.Int26_6]
	lang   language.Language
}

func newMeasurer() *measurer {
	return &measurer{
		widths: cache.New[measureKey, fixed.Int26_6](measureCacheSize),
		lang:   language.NewLanguage("en"),
	}
}

// advance returns the shaped width of text set in f at px pixels.
func (m *measurer) advance(f *fontFile, px int, text string) fixed.Int26_6 {
	if text == "" {
		return 0
	}
	key := measureKey{font: f.id, px: px, text: text}
	return m.widths.GetOrCreate(key, func() fixed.Int26_6 {
		runes := []rune(text)
		out := m.shaper.Shape(shaping.Input{
			Text:      runes,
			RunStart:  0,
			RunEnd:    len(runes),
			Direction: di.DirectionLTR,
			Face:      f.shaper,
			Size:      fixed.I(px),
			Script:    detectScript(runes),
			Language:  m.lang,
		})
		return out.Advance
	})
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}
