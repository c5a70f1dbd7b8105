// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dxgi

import (
	"errors"
	"math"
)

// ErrUnsupportedFormat is returned by pitch computations for formats with no
// defined memory layout.
var ErrUnsupportedFormat = errors.New("dxgi: unsupported format")

// ErrPitchOverflow is returned when a pitch does not fit in 32 bits.
var ErrPitchOverflow = errors.New("dxgi: pitch overflow")

// CPFlags adjust row alignment and override the pixel size used by
// ComputePitch.
type CPFlags uint32

const (
	// CPFlagsNone uses byte-aligned rows.
	CPFlagsNone CPFlags = 0

	// CPFlagsLegacyDWORD aligns rows to 4 bytes.
	CPFlagsLegacyDWORD CPFlags = 0x1

	// CPFlagsParagraph aligns rows to 16 bytes.
	CPFlagsParagraph CPFlags = 0x2

	// CPFlagsYMM aligns rows to 32 bytes.
	CPFlagsYMM CPFlags = 0x4

	// CPFlagsZMM aligns rows to 64 bytes.
	CPFlagsZMM CPFlags = 0x8

	// CPFlagsPage4K aligns rows to 4096 bytes.
	CPFlagsPage4K CPFlags = 0x200

	// CPFlagsBadDXTNTails ignores tail blocks smaller than 4x4 in mip chains.
	CPFlagsBadDXTNTails CPFlags = 0x1000

	// CPFlags24BPP overrides the pixel size with 24 bits.
	CPFlags24BPP CPFlags = 0x10000

	// CPFlags16BPP overrides the pixel size with 16 bits.
	CPFlags16BPP CPFlags = 0x20000

	// CPFlags8BPP overrides the pixel size with 8 bits.
	CPFlags8BPP CPFlags = 0x40000
)

// ComputePitch returns the row pitch and slice pitch in bytes for a
// width x height surface of format f.
func ComputePitch(f Format, width, height int, flags CPFlags) (rowPitch, slicePitch int, err error) {
	if width < 0 || height < 0 {
		return 0, 0, ErrUnsupportedFormat
	}

	var row, slice uint64
	w, h := uint64(width), uint64(height)

	switch {
	case f.IsCompressed():
		var nbw, nbh uint64
		if flags&CPFlagsBadDXTNTails != 0 {
			nbw, nbh = w>>2, h>>2
		} else {
			nbw, nbh = max(1, (w+3)/4), max(1, (h+3)/4)
		}
		row = nbw * uint64(f.BlockBytes())
		slice = row * nbh

	case f == FormatR8G8B8G8Unorm, f == FormatG8R8G8B8Unorm, f == FormatYUY2:
		row = ((w + 1) >> 1) * 4
		slice = row * h

	case f == FormatY210, f == FormatY216:
		row = ((w + 1) >> 1) * 8
		slice = row * h

	case f == FormatNV12, f == Format420Opaque:
		row = ((w + 1) >> 1) * 2
		slice = row * (h + ((h + 1) >> 1))

	case f == FormatP010, f == FormatP016:
		row = ((w + 1) >> 1) * 4
		slice = row * (h + ((h + 1) >> 1))

	case f == FormatNV11:
		row = ((w + 3) >> 2) * 4
		slice = row * h * 2

	case f == FormatP208:
		row = ((w + 1) >> 1) * 2
		slice = row * h * 2

	case f == FormatV208:
		row = w
		slice = row * (h + (((h + 1) >> 1) * 2))

	case f == FormatV408:
		row = w
		slice = row * (h + ((h >> 1) * 4))

	default:
		var bpp uint64
		switch {
		case flags&CPFlags24BPP != 0:
			bpp = 24
		case flags&CPFlags16BPP != 0:
			bpp = 16
		case flags&CPFlags8BPP != 0:
			bpp = 8
		default:
			bpp = uint64(f.BitsPerPixel())
		}
		if bpp == 0 {
			return 0, 0, ErrUnsupportedFormat
		}

		switch {
		case flags&(CPFlagsLegacyDWORD|CPFlagsParagraph|CPFlagsYMM|CPFlagsZMM|CPFlagsPage4K) == 0:
			row = (w*bpp + 7) / 8
		case flags&CPFlagsPage4K != 0:
			row = alignUp((w*bpp+7)/8, 4096)
		case flags&CPFlagsZMM != 0:
			row = alignUp((w*bpp+7)/8, 64)
		case flags&CPFlagsYMM != 0:
			row = alignUp((w*bpp+7)/8, 32)
		case flags&CPFlagsParagraph != 0:
			row = alignUp((w*bpp+7)/8, 16)
		default:
			row = ((w*bpp + 31) / 32) * 4
		}
		slice = row * h
	}

	if row > math.MaxUint32 || slice > math.MaxUint32 {
		return 0, 0, ErrPitchOverflow
	}
	return int(row), int(slice), nil
}

func alignUp(v, a uint64) uint64 {
	return (v + a - 1) &^ (a - 1)
}

// ComputeScanlines returns the number of rows of memory a surface of the
// given height occupies. Block-compressed formats count block rows and
// planar formats include their chroma planes.
func ComputeScanlines(f Format, height int) int {
	switch {
	case f.IsCompressed():
		return max(1, (height+3)/4)
	case f == FormatNV11, f == FormatP208:
		return height * 2
	case f == FormatV208:
		return height + ((height+1)>>1)*2
	case f == FormatV408:
		return height + (height>>1)*4
	case f == FormatNV12, f == FormatP010, f == FormatP016, f == Format420Opaque:
		return height + ((height + 1) >> 1)
	}
	return height
}
