// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pixbuf

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
)

// Format identifies the memory layout of one pixel.
//
// The names list channels in byte order: RGBA32 stores red first,
// ARGB32 stores alpha first. RGB565 is a little-endian 16-bit word with
// red in the high bits.
type Format uint8

const (
	// FormatInvalid is the zero Format and is rejected by New.
	FormatInvalid Format = iota
	RGB565
	RGB24
	BGR24
	RGBA32
	BGRA32
	ARGB32
	ABGR32
)

var formatNames = [...]string{
	FormatInvalid: "invalid",
	RGB565:        "rgb565",
	RGB24:         "rgb24",
	BGR24:         "bgr24",
	RGBA32:        "rgba32",
	BGRA32:        "bgra32",
	ARGB32:        "argb32",
	ABGR32:        "abgr32",
}

// String returns the lower-case format name.
func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// Valid reports whether f is one of the supported formats.
func (f Format) Valid() bool {
	return f > FormatInvalid && f <= ABGR32
}

// ParseFormat returns the Format with the given name (case-insensitive).
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range formatNames {
		if i != int(FormatInvalid) && n == name {
			return Format(i), nil
		}
	}
	return FormatInvalid, fmt.Errorf("%w: %q", ErrInvalidFormat, name)
}

// BytesPerPixel returns the size of one pixel in bytes.
func (f Format) BytesPerPixel() int {
	switch f {
	case RGB565:
		return 2
	case RGB24, BGR24:
		return 3
	case RGBA32, BGRA32, ARGB32, ABGR32:
		return 4
	default:
		return 0
	}
}

// ColorBits returns the bits per colour component reported to the engine
// as the device colour depth.
func (f Format) ColorBits() int {
	switch f {
	case RGB565:
		return 5
	case FormatInvalid:
		return 0
	default:
		if f.Valid() {
			return 8
		}
		return 0
	}
}

// HasAlpha reports whether the format stores an alpha channel.
func (f Format) HasAlpha() bool {
	return f.BytesPerPixel() == 4
}

// TextureFormat returns the GPU texture format with the same byte layout,
// or TextureFormatUndefined when the buffer needs converting before upload.
func (f Format) TextureFormat() gputypes.TextureFormat {
	switch f {
	case RGBA32:
		return gputypes.TextureFormatRGBA8Unorm
	case BGRA32:
		return gputypes.TextureFormatBGRA8Unorm
	default:
		return gputypes.TextureFormatUndefined
	}
}

// FormatForTexture is the inverse of Format.TextureFormat.
// It returns RGBA32 for texture formats without a direct equivalent.
func FormatForTexture(tf gputypes.TextureFormat) Format {
	if tf == gputypes.TextureFormatBGRA8Unorm {
		return BGRA32
	}
	return RGBA32
}

// channel offsets within a pixel; -1 means absent.
type layout struct{ r, g, b, a int }

func (f Format) layout() layout {
	switch f {
	case RGB24:
		return layout{0, 1, 2, -1}
	case BGR24:
		return layout{2, 1, 0, -1}
	case RGBA32:
		return layout{0, 1, 2, 3}
	case BGRA32:
		return layout{2, 1, 0, 3}
	case ARGB32:
		return layout{1, 2, 3, 0}
	case ABGR32:
		return layout{3, 2, 1, 0}
	default:
		return layout{-1, -1, -1, -1}
	}
}

func packRGB565(r, g, b uint8) (lo, hi byte) {
	v := uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
	return byte(v), byte(v >> 8)
}

func unpackRGB565(lo, hi byte) (r, g, b uint8) {
	v := uint16(lo) | uint16(hi)<<8
	r5 := uint8(v >> 11 & 0x1f)
	g6 := uint8(v >> 5 & 0x3f)
	b5 := uint8(v & 0x1f)
	return r5<<3 | r5>>2, g6<<2 | g6>>4, b5<<3 | b5>>2
}
