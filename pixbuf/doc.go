// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package pixbuf provides the packed pixel buffer that a surface paints
// into and hands to the host for presentation.
//
// A Buffer has a fixed Format chosen at creation. Seven layouts are
// supported (RGB565, RGB24, BGR24, RGBA32, BGRA32, ARGB32, ABGR32), which
// covers the native formats of common window systems and bitmap APIs.
//
// Resize reallocates only when the dimensions change, so a surface that is
// repainted at a constant size reuses the same memory on every frame.
// Generation lets consumers such as GPU uploaders skip work when nothing
// changed since the last frame.
package pixbuf
