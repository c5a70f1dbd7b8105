// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package bc encodes and decodes the BC1 through BC7 block-compressed
// formats one 4x4 block at a time.
//
// Pixels are float32 RGBA in [0,1] (or [-1,1] for SNORM). sRGB variants
// store the same bits as their linear counterparts; the transfer function
// is the caller's concern.
package bc

import (
	"errors"
	"fmt"

	"github.com/gogpu/dxtex/dxgi"
)

// Errors returned by the block codecs.
var (
	ErrUnsupportedFormat = errors.New("bc: unsupported format")
	ErrShortBuffer       = errors.New("bc: buffer too small")
)

// Block holds the 16 pixels of a 4x4 block in row-major order, four
// float32 components per pixel.
type Block [64]float32

// Options tune the encoders.
type Options struct {
	// AlphaThreshold is the BC1 cutoff below which a pixel is stored as
	// transparent. Zero selects 0.5.
	AlphaThreshold float32

	// Uniform weights the color channels equally instead of by luminance.
	Uniform bool
}

func (o Options) threshold() float32 {
	if o.AlphaThreshold == 0 {
		return 0.5
	}
	return o.AlphaThreshold
}

func (o Options) weights() [3]float32 {
	if o.Uniform {
		return [3]float32{1, 1, 1}
	}
	return [3]float32{0.2125, 0.7154, 0.0721}
}

func family(f dxgi.Format) dxgi.Format {
	switch f {
	case dxgi.FormatBC1Typeless, dxgi.FormatBC1Unorm, dxgi.FormatBC1UnormSRGB:
		return dxgi.FormatBC1Unorm
	case dxgi.FormatBC2Typeless, dxgi.FormatBC2Unorm, dxgi.FormatBC2UnormSRGB:
		return dxgi.FormatBC2Unorm
	case dxgi.FormatBC3Typeless, dxgi.FormatBC3Unorm, dxgi.FormatBC3UnormSRGB:
		return dxgi.FormatBC3Unorm
	case dxgi.FormatBC4Typeless, dxgi.FormatBC4Unorm:
		return dxgi.FormatBC4Unorm
	case dxgi.FormatBC5Typeless, dxgi.FormatBC5Unorm:
		return dxgi.FormatBC5Unorm
	case dxgi.FormatBC7Typeless, dxgi.FormatBC7Unorm, dxgi.FormatBC7UnormSRGB:
		return dxgi.FormatBC7Unorm
	}
	return f
}

// CanDecode reports whether blocks of format f can be decoded.
func CanDecode(f dxgi.Format) bool {
	switch family(f) {
	case dxgi.FormatBC1Unorm, dxgi.FormatBC2Unorm, dxgi.FormatBC3Unorm,
		dxgi.FormatBC4Unorm, dxgi.FormatBC4Snorm, dxgi.FormatBC5Unorm,
		dxgi.FormatBC5Snorm, dxgi.FormatBC7Unorm:
		return true
	}
	return false
}

// CanEncode reports whether blocks of format f can be encoded. BC6H has
// no encoder.
func CanEncode(f dxgi.Format) bool {
	return CanDecode(f)
}

// DecodeBlock expands one compressed block of format f into b.
func DecodeBlock(f dxgi.Format, src []byte, b *Block) error {
	if !CanDecode(f) {
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
	}
	if len(src) < f.BlockBytes() {
		return ErrShortBuffer
	}
	switch family(f) {
	case dxgi.FormatBC1Unorm:
		decodeColor(src, b, true)
	case dxgi.FormatBC2Unorm:
		decodeColor(src[8:], b, false)
		decodeExplicitAlpha(src, b)
	case dxgi.FormatBC3Unorm:
		decodeColor(src[8:], b, false)
		decodeAlphaBlock(src, b, 3, false)
	case dxgi.FormatBC4Unorm, dxgi.FormatBC4Snorm:
		b.fill(0, 0, 0, 1)
		decodeAlphaBlock(src, b, 0, f == dxgi.FormatBC4Snorm)
	case dxgi.FormatBC5Unorm, dxgi.FormatBC5Snorm:
		b.fill(0, 0, 0, 1)
		decodeAlphaBlock(src, b, 0, f == dxgi.FormatBC5Snorm)
		decodeAlphaBlock(src[8:], b, 1, f == dxgi.FormatBC5Snorm)
	case dxgi.FormatBC7Unorm:
		decodeBC7(src, b)
	}
	return nil
}

// EncodeBlock compresses b into dst in format f.
func EncodeBlock(f dxgi.Format, b *Block, dst []byte, opts Options) error {
	if !CanEncode(f) {
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
	}
	if len(dst) < f.BlockBytes() {
		return ErrShortBuffer
	}
	switch family(f) {
	case dxgi.FormatBC1Unorm:
		encodeColor(b, dst, true, opts)
	case dxgi.FormatBC2Unorm:
		encodeExplicitAlpha(b, dst)
		encodeColor(b, dst[8:], false, opts)
	case dxgi.FormatBC3Unorm:
		encodeAlphaBlock(b, dst, 3, false)
		encodeColor(b, dst[8:], false, opts)
	case dxgi.FormatBC4Unorm, dxgi.FormatBC4Snorm:
		encodeAlphaBlock(b, dst, 0, f == dxgi.FormatBC4Snorm)
	case dxgi.FormatBC5Unorm, dxgi.FormatBC5Snorm:
		encodeAlphaBlock(b, dst, 0, f == dxgi.FormatBC5Snorm)
		encodeAlphaBlock(b, dst[8:], 1, f == dxgi.FormatBC5Snorm)
	case dxgi.FormatBC7Unorm:
		encodeBC7(b, dst)
	}
	return nil
}

func (b *Block) fill(r, g, bl, a float32) {
	for i := 0; i < 16; i++ {
		b[i*4], b[i*4+1], b[i*4+2], b[i*4+3] = r, g, bl, a
	}
}

// DecodeRow decodes one row of blocks from src into rows (1 to 4) scanlines
// of width RGBA pixels laid out back to back in dst.
func DecodeRow(f dxgi.Format, src []byte, width, rows int, dst []float32) error {
	bw := (width + 3) / 4
	bs := f.BlockBytes()
	if len(src) < bw*bs || len(dst) < width*rows*4 {
		return ErrShortBuffer
	}
	var b Block
	for bx := 0; bx < bw; bx++ {
		if err := DecodeBlock(f, src[bx*bs:], &b); err != nil {
			return err
		}
		for y := 0; y < rows && y < 4; y++ {
			for x := 0; x < 4; x++ {
				px := bx*4 + x
				if px >= width {
					break
				}
				copy(dst[(y*width+px)*4:(y*width+px)*4+4], b[(y*4+x)*4:(y*4+x)*4+4])
			}
		}
	}
	return nil
}

// EncodeRow compresses rows (1 to 4) scanlines of width RGBA pixels into one
// row of blocks. Partial blocks repeat the last valid row and column.
func EncodeRow(f dxgi.Format, src []float32, width, rows int, dst []byte, opts Options) error {
	bw := (width + 3) / 4
	bs := f.BlockBytes()
	if rows < 1 || len(dst) < bw*bs || len(src) < width*rows*4 {
		return ErrShortBuffer
	}
	var b Block
	for bx := 0; bx < bw; bx++ {
		for y := 0; y < 4; y++ {
			sy := min(y, rows-1)
			for x := 0; x < 4; x++ {
				sx := min(bx*4+x, width-1)
				copy(b[(y*4+x)*4:(y*4+x)*4+4], src[(sy*width+sx)*4:(sy*width+sx)*4+4])
			}
		}
		if err := EncodeBlock(f, &b, dst[bx*bs:], opts); err != nil {
			return err
		}
	}
	return nil
}

func clamp(v, lo, hi float32) float32 {
	if v != v {
		return 0
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func to8(v float32) uint32 {
	return uint32(clamp(v, 0, 1)*255 + 0.5)
}
