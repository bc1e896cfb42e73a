// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pixbuf

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/draw"
)

// Errors returned by Buffer constructors.
var (
	// ErrInvalidDimensions is returned when width or height is not positive.
	ErrInvalidDimensions = errors.New("pixbuf: invalid dimensions")

	// ErrInvalidFormat is returned for an unknown pixel format.
	ErrInvalidFormat = errors.New("pixbuf: invalid pixel format")
)

// Buffer is a mutable 2-D array of packed pixels with a fixed Format.
//
// Buffer implements draw.Image so engines can draw into it with the
// standard image/draw and golang.org/x/image/draw operations. Set and At
// work with straight (non-premultiplied) colours.
//
// Buffer is NOT safe for concurrent use.
type Buffer struct {
	width  int
	height int
	stride int
	format Format
	pix    []byte
	gen    uint64
}

// New allocates a Buffer. The pixels start zeroed.
func New(width, height int, format Format) (*Buffer, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFormat, format)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}
	stride := width * format.BytesPerPixel()
	return &Buffer{
		width:  width,
		height: height,
		stride: stride,
		format: format,
		pix:    make([]byte, stride*height),
		gen:    1,
	}, nil
}

// Width returns the width in pixels.
func (b *Buffer) Width() int { return b.width }

// Height returns the height in pixels.
func (b *Buffer) Height() int { return b.height }

// Size returns width and height.
func (b *Buffer) Size() (width, height int) { return b.width, b.height }

// Stride returns the number of bytes between vertically adjacent pixels.
func (b *Buffer) Stride() int { return b.stride }

// Format returns the pixel format.
func (b *Buffer) Format() Format { return b.format }

// Pix returns the raw pixel bytes. The slice aliases the buffer and is
// replaced by a reallocating Resize.
func (b *Buffer) Pix() []byte { return b.pix }

// Generation returns a counter that changes whenever the contents or the
// dimensions change through Resize, Clear, Scroll or Touch.
func (b *Buffer) Generation() uint64 { return b.gen }

// Touch records that the pixels were modified directly (through Set or Pix).
func (b *Buffer) Touch() { b.gen++ }

// Resize changes the dimensions. The backing store is reallocated if and
// only if (width, height) differs from the current size; otherwise the
// buffer is left untouched and Resize reports false.
func (b *Buffer) Resize(width, height int) (bool, error) {
	if width <= 0 || height <= 0 {
		return false, fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}
	if width == b.width && height == b.height {
		return false, nil
	}
	b.width = width
	b.height = height
	b.stride = width * b.format.BytesPerPixel()
	b.pix = make([]byte, b.stride*height)
	b.gen++
	return true, nil
}

// offset returns the byte offset of pixel (x, y).
func (b *Buffer) offset(x, y int) int {
	return y*b.stride + x*b.format.BytesPerPixel()
}

// put writes one straight-alpha pixel without bounds checks.
func (b *Buffer) put(i int, c color.NRGBA) {
	if b.format == RGB565 {
		b.pix[i], b.pix[i+1] = packRGB565(c.R, c.G, c.B)
		return
	}
	l := b.format.layout()
	b.pix[i+l.r] = c.R
	b.pix[i+l.g] = c.G
	b.pix[i+l.b] = c.B
	if l.a >= 0 {
		b.pix[i+l.a] = c.A
	}
}

// NRGBAAt returns the pixel at (x, y), or transparent black outside bounds.
func (b *Buffer) NRGBAAt(x, y int) color.NRGBA {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return color.NRGBA{}
	}
	i := b.offset(x, y)
	if b.format == RGB565 {
		r, g, bl := unpackRGB565(b.pix[i], b.pix[i+1])
		return color.NRGBA{R: r, G: g, B: bl, A: 0xff}
	}
	l := b.format.layout()
	c := color.NRGBA{R: b.pix[i+l.r], G: b.pix[i+l.g], B: b.pix[i+l.b], A: 0xff}
	if l.a >= 0 {
		c.A = b.pix[i+l.a]
	}
	return c
}

// At implements image.Image.
func (b *Buffer) At(x, y int) color.Color {
	return b.NRGBAAt(x, y)
}

// Set implements draw.Image. Points outside the buffer are ignored.
func (b *Buffer) Set(x, y int, c color.Color) {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return
	}
	b.put(b.offset(x, y), color.NRGBAModel.Convert(c).(color.NRGBA))
}

// Bounds implements image.Image.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.width, b.height)
}

// ColorModel implements image.Image.
func (b *Buffer) ColorModel() color.Model {
	return color.NRGBAModel
}

// Clear fills the whole buffer with c.
func (b *Buffer) Clear(c color.Color) {
	b.Fill(b.Bounds(), c)
	b.gen++
}

// Fill fills the part of r that lies inside the buffer with c.
func (b *Buffer) Fill(r image.Rectangle, c color.Color) {
	r = r.Intersect(b.Bounds())
	if r.Empty() {
		return
	}
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	bpp := b.format.BytesPerPixel()

	// Pack the first row, then replicate it.
	first := b.offset(r.Min.X, r.Min.Y)
	rowLen := r.Dx() * bpp
	for i := first; i < first+rowLen; i += bpp {
		b.put(i, nc)
	}
	row := b.pix[first : first+rowLen]
	for y := r.Min.Y + 1; y < r.Max.Y; y++ {
		off := b.offset(r.Min.X, y)
		copy(b.pix[off:off+rowLen], row)
	}
}

// Scroll moves the contents by (dx, dy) pixels. Pixels shifted out are
// lost; the exposed area keeps its previous bytes and is expected to be
// repainted by the caller.
func (b *Buffer) Scroll(dx, dy int) {
	if dx == 0 && dy == 0 {
		return
	}
	if abs(dx) >= b.width || abs(dy) >= b.height {
		return
	}
	bpp := b.format.BytesPerPixel()
	rowBytes := (b.width - abs(dx)) * bpp
	srcX, dstX := 0, dx
	if dx < 0 {
		srcX, dstX = -dx, 0
	}

	move := func(y int) {
		src := b.offset(srcX, y)
		dst := b.offset(dstX, y+dy)
		copy(b.pix[dst:dst+rowBytes], b.pix[src:src+rowBytes])
	}
	if dy > 0 {
		for y := b.height - 1 - dy; y >= 0; y-- {
			move(y)
		}
	} else {
		for y := -dy; y < b.height; y++ {
			move(y)
		}
	}
	b.gen++
}

// ToRGBA returns a copy of the buffer as an *image.RGBA.
func (b *Buffer) ToRGBA() *image.RGBA {
	img := image.NewRGBA(b.Bounds())
	if b.format == RGBA32 {
		// Straight alpha equals premultiplied only for opaque pixels; the
		// controller paints on an opaque background, so a raw copy is
		// exact for presented frames.
		copy(img.Pix, b.pix)
		return img
	}
	draw.Draw(img, img.Bounds(), b, image.Point{}, draw.Src)
	return img
}

// SavePNG writes the buffer to a PNG file.
func (b *Buffer) SavePNG(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	return png.Encode(f, b.ToRGBA())
}

// WritePPM writes the buffer as a binary PPM (P6) image. Alpha is dropped.
func (b *Buffer) WritePPM(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P6\n%d %d\n255\n", b.width, b.height); err != nil {
		return err
	}
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			c := b.NRGBAAt(x, y)
			if _, err := bw.Write([]byte{c.R, c.G, c.B}); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// Equal reports whether a and b have the same size, format and pixels.
func Equal(a, b *Buffer) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.width != b.width || a.height != b.height || a.format != b.format {
		return false
	}
	rowBytes := a.width * a.format.BytesPerPixel()
	for y := 0; y < a.height; y++ {
		ra := a.pix[y*a.stride : y*a.stride+rowBytes]
		rb := b.pix[y*b.stride : y*b.stride+rowBytes]
		if !bytes.Equal(ra, rb) {
			return false
		}
	}
	return true
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
