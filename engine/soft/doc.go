// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package soft is a small software HTML/CSS engine implementing
// engine.Engine.
//
// Markup is parsed with golang.org/x/net/html. The master stylesheet is
// parsed with douceur and its selectors are matched with cascadia; inline
// style attributes take precedence. Fonts listed in a fontconfig document
// or added by directory are parsed with x/image/font/opentype, words are
// measured with go-text HarfBuzz shaping, and text is drawn with an
// x/image font.Drawer. Go Regular is the fallback face.
//
// Supported CSS: display, color, background-color, font-size (px, pt, em),
// font-family, margin-top, margin-bottom, padding-left and width. @media
// blocks apply when they name the device media type or all.
//
// Register the engine before engine.Init:
//
//	soft.Register(engine.Default())
package soft
