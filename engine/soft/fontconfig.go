// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package soft

import (
	"encoding/xml"
	"errors"
	"strings"
)

// fontConfig is the subset of a fontconfig document the engine reads:
// font directories and family aliases.
type fontConfig struct {
	XMLName xml.Name     `xml:"fontconfig"`
	Dirs    []string     `xml:"dir"`
	Aliases []fontAlias  `xml:"alias"`
	Matches []xmlElement `xml:"match"`
}

type fontAlias struct {
	Family  string   `xml:"family"`
	Prefer  []string `xml:"prefer>family"`
	Accept  []string `xml:"accept>family"`
	Default []string `xml:"default>family"`
}

// xmlElement swallows elements the engine does not interpret.
type xmlElement struct {
	Inner []byte `xml:",innerxml"`
}

var errEmptyConfig = errors.New("soft: empty font configuration")

func parseFontConfig(text string) (*fontConfig, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errEmptyConfig
	}
	var cfg fontConfig
	if err := xml.Unmarshal([]byte(text), &cfg); err != nil {
		return nil, err
	}
	for i := range cfg.Dirs {
		cfg.Dirs[i] = strings.TrimSpace(cfg.Dirs[i])
	}
	return &cfg, nil
}

// substitutes returns the families an alias resolves to, in order of
// preference.
func (a fontAlias) substitutes() []string {
	out := make([]string, 0, len(a.Prefer)+len(a.Accept)+len(a.Default))
	out = append(out, a.Prefer...)
	out = append(out, a.Accept...)
	out = append(out, a.Default...)
	for i := range out {
		out[i] = strings.TrimSpace(out[i])
	}
	return out
}
