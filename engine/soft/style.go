// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package soft

import (
	"errors"
	"sort"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"

	"github.com/gogpu/htmlview/engine"
)

// styleRule is one selector of a qualified rule, flattened out of any
// @media block.
type styleRule struct {
	sel   cascadia.Sel
	decls []*css.Declaration
	media string
	order int
}

// stylesheet is a parsed master stylesheet.
type stylesheet struct {
	rules   []styleRule
	skipped int
}

// errNoRules is returned for a non-empty stylesheet that yields nothing
// usable.
var errNoRules = errors.New("no usable rules")

// parseStylesheet parses text with douceur. Selectors cascadia cannot
// compile are skipped. Text that is not blank after removing comments
// must produce at least one rule.
func parseStylesheet(text string) (*stylesheet, error) {
	parsed, err := parser.Parse(text)
	if err != nil {
		return nil, err
	}
	ss := &stylesheet{}
	ss.add(parsed.Rules, "")
	if len(ss.rules) == 0 && !hasAtRule(parsed.Rules) && strings.TrimSpace(stripComments(text)) != "" {
		return nil, errNoRules
	}
	return ss, nil
}

func hasAtRule(rules []*css.Rule) bool {
	for _, r := range rules {
		if r.Kind == css.AtRule {
			return true
		}
	}
	return false
}

func stripComments(text string) string {
	var b strings.Builder
	for {
		i := strings.Index(text, "/*")
		if i < 0 {
			b.WriteString(text)
			return b.String()
		}
		b.WriteString(text[:i])
		j := strings.Index(text[i+2:], "*/")
		if j < 0 {
			return b.String()
		}
		text = text[i+2+j+2:]
	}
}

func (ss *stylesheet) add(rules []*css.Rule, media string) {
	for _, r := range rules {
		switch {
		case r.Kind == css.AtRule && r.Name == "@media":
			ss.add(r.Rules, r.Prelude)
		case r.Kind == css.QualifiedRule:
			for _, s := range r.Selectors {
				sel, err := cascadia.Parse(s)
				if err != nil {
					ss.skipped++
					continue
				}
				ss.rules = append(ss.rules, styleRule{
					sel:   sel,
					decls: r.Declarations,
					media: media,
					order: len(ss.rules),
				})
			}
		}
	}
}

// mediaMatches reports whether a media query list applies to the device
// media type. Media features are ignored.
func mediaMatches(prelude string, device engine.MediaType) bool {
	if strings.TrimSpace(prelude) == "" {
		return true
	}
	for _, q := range strings.Split(prelude, ",") {
		fields := strings.Fields(strings.ToLower(q))
		negate := false
		if len(fields) > 0 && (fields[0] == "not" || fields[0] == "only") {
			negate = fields[0] == "not"
			fields = fields[1:]
		}
		match := true
		if len(fields) > 0 && !strings.HasPrefix(fields[0], "(") {
			t := fields[0]
			match = t == "all" || (device != engine.MediaNone && t == device.String())
		}
		if match != negate {
			return true
		}
	}
	return false
}

type matchedDecl struct {
	decl        *css.Declaration
	specificity cascadia.Specificity
	order       int
	important   bool
}

// declarations returns the declarations that apply to n in cascade order,
// lowest priority first. Inline style wins over the stylesheet and
// !important wins over both.
func (ss *stylesheet) declarations(n *html.Node, device engine.MediaType) []*css.Declaration {
	var matched []matchedDecl
	if ss != nil {
		for _, r := range ss.rules {
			if !mediaMatches(r.media, device) || !r.sel.Match(n) {
				continue
			}
			for _, d := range r.decls {
				matched = append(matched, matchedDecl{decl: d, specificity: r.sel.Specificity(), order: r.order, important: d.Important})
			}
		}
	}
	if inline := attr(n, "style"); inline != "" {
		// A declaration list needs a terminator or its last value is lost.
		inline = strings.TrimSuffix(strings.TrimSpace(inline), ";") + ";"
		if decls, err := parser.ParseDeclarations(inline); err == nil {
			inlineSpec := cascadia.Specificity{1 << 16, 0, 0}
			for _, d := range decls {
				matched = append(matched, matchedDecl{decl: d, specificity: inlineSpec, order: 1 << 30, important: d.Important})
			}
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.important != b.important {
			return !a.important
		}
		if a.specificity != b.specificity {
			return a.specificity.Less(b.specificity)
		}
		return a.order < b.order
	})

	out := make([]*css.Declaration, len(matched))
	for i, m := range matched {
		out[i] = m.decl
	}
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
