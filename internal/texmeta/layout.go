// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texmeta

import (
	"errors"
	"fmt"

	"github.com/gogpu/dxtex/dxgi"
)

// ErrTooLarge is returned when a layout would exceed MaxArenaSize.
var ErrTooLarge = errors.New("texmeta: layout too large")

// MaxArenaSize bounds the bytes a single layout may describe.
const MaxArenaSize = 1 << 38

// Direct3D 11 resource limits, used by codecs to reject hostile headers.
const (
	MaxTextureDimension2D = 16384
	MaxTextureDimension3D = 2048
	MaxArraySize          = 2048
)

// CheckLimits reports an ErrUnsupported error when m exceeds the Direct3D
// 11 resource limits. Cube maps count their faces against MaxArraySize.
func CheckLimits(m Metadata) error {
	limit := MaxTextureDimension2D
	if m.Dimension == Texture3D {
		limit = MaxTextureDimension3D
	}
	if m.Width > limit || m.Height > limit || m.Depth > MaxTextureDimension3D || m.ArraySize > MaxArraySize {
		return fmt.Errorf("%w: %dx%dx%d array %d exceeds resource limits",
			ErrUnsupported, m.Width, m.Height, m.Depth, m.ArraySize)
	}
	return nil
}

// ErrUnsupported is returned for metadata that is well-formed but describes
// a layout the engine does not handle (palettized formats).
var ErrUnsupported = errors.New("texmeta: unsupported layout")

// Subresource locates one sub-image inside the arena.
type Subresource struct {
	Width      int
	Height     int
	RowPitch   int
	SlicePitch int
	Offset     int
}

// Surface is a plain description of one sub-image and its bytes, used to
// pass images into and out of codecs.
type Surface struct {
	Width      int
	Height     int
	RowPitch   int
	SlicePitch int
	Format     dxgi.Format
	Pixels     []byte
}

// Row returns the bytes of scanline y (one block row for compressed
// formats), or nil if y is out of range.
func (s *Surface) Row(y int) []byte {
	start := y * s.RowPitch
	if y < 0 || start+s.RowPitch > len(s.Pixels) {
		return nil
	}
	return s.Pixels[start : start+s.RowPitch]
}

// Normalize validates m and resolves MipLevels == 0 to a full chain.
func Normalize(m Metadata) (Metadata, error) {
	if !m.Format.IsValid() || m.Width <= 0 || m.Height <= 0 || m.ArraySize <= 0 || m.Depth <= 0 {
		return m, fmt.Errorf("%w: %dx%dx%d array %d format %v",
			ErrInvalidMetadata, m.Width, m.Height, m.Depth, m.ArraySize, m.Format)
	}
	if m.Format.IsPalettized() {
		return m, fmt.Errorf("%w: palettized format %v", ErrUnsupported, m.Format)
	}

	switch m.Dimension {
	case Texture1D:
		if m.Height != 1 || m.Depth != 1 || m.IsCubemap() {
			return m, fmt.Errorf("%w: 1D texture must be Nx1x1", ErrInvalidMetadata)
		}
		mips, err := resolveMips(m.MipLevels, CountMips(m.Width, 1))
		if err != nil {
			return m, err
		}
		m.MipLevels = mips

	case Texture2D:
		if m.Depth != 1 {
			return m, fmt.Errorf("%w: 2D texture depth %d", ErrInvalidMetadata, m.Depth)
		}
		if m.IsCubemap() && m.ArraySize%6 != 0 {
			return m, fmt.Errorf("%w: cube map array size %d", ErrInvalidMetadata, m.ArraySize)
		}
		mips, err := resolveMips(m.MipLevels, CountMips(m.Width, m.Height))
		if err != nil {
			return m, err
		}
		m.MipLevels = mips

	case Texture3D:
		if m.ArraySize != 1 || m.IsCubemap() {
			return m, fmt.Errorf("%w: volume textures have no array", ErrInvalidMetadata)
		}
		mips, err := resolveMips(m.MipLevels, CountMips3D(m.Width, m.Height, m.Depth))
		if err != nil {
			return m, err
		}
		m.MipLevels = mips

	default:
		return m, fmt.Errorf("%w: dimension %d", ErrInvalidMetadata, m.Dimension)
	}
	return m, nil
}

func resolveMips(requested, full int) (int, error) {
	switch {
	case requested == 0:
		return full, nil
	case requested < 0 || requested > full:
		return 0, fmt.Errorf("%w: %d mip levels, at most %d", ErrInvalidMetadata, requested, full)
	}
	return requested, nil
}

// Layout returns the descriptor table for m in mip-major order and the
// total arena size. m must already be normalized.
//
// 1D and 2D textures list, for each array item, every mip level. Volume
// textures list, for each mip level, every depth slice of that level.
func Layout(m Metadata, flags dxgi.CPFlags) ([]Subresource, int, error) {
	if _, err := ArenaSize(m, flags); err != nil {
		return nil, 0, err
	}
	var subs []Subresource
	offset := 0

	add := func(w, h int) error {
		row, slice, err := dxgi.ComputePitch(m.Format, w, h, flags)
		if err != nil {
			return fmt.Errorf("texmeta: layout %v %dx%d: %w", m.Format, w, h, err)
		}
		subs = append(subs, Subresource{
			Width:      w,
			Height:     h,
			RowPitch:   row,
			SlicePitch: slice,
			Offset:     offset,
		})
		offset += slice
		return nil
	}

	switch m.Dimension {
	case Texture1D, Texture2D:
		subs = make([]Subresource, 0, m.ArraySize*m.MipLevels)
		for item := 0; item < m.ArraySize; item++ {
			w, h := m.Width, m.Height
			for level := 0; level < m.MipLevels; level++ {
				if err := add(w, h); err != nil {
					return nil, 0, err
				}
				w, h = max(1, w>>1), max(1, h>>1)
			}
		}

	case Texture3D:
		w, h, d := m.Width, m.Height, m.Depth
		for level := 0; level < m.MipLevels; level++ {
			for slice := 0; slice < d; slice++ {
				if err := add(w, h); err != nil {
					return nil, 0, err
				}
			}
			w, h, d = max(1, w>>1), max(1, h>>1), max(1, d>>1)
		}

	default:
		return nil, 0, fmt.Errorf("%w: dimension %d", ErrInvalidMetadata, m.Dimension)
	}

	return subs, offset, nil
}

// ArenaSize returns the arena size Layout would report, computed without
// building the descriptor table. Sizes past MaxArenaSize fail with
// ErrTooLarge.
func ArenaSize(m Metadata, flags dxgi.CPFlags) (int, error) {
	var total uint64
	// add accounts for n sub-images of w x h.
	add := func(w, h, n int) error {
		_, slice, err := dxgi.ComputePitch(m.Format, w, h, flags)
		if err != nil {
			return fmt.Errorf("texmeta: layout %v %dx%d: %w", m.Format, w, h, err)
		}
		if slice > 0 && uint64(n) > (MaxArenaSize-total)/uint64(slice) {
			return fmt.Errorf("%w: %v %dx%d x %d images", ErrTooLarge, m.Format, w, h, n)
		}
		total += uint64(slice) * uint64(n)
		return nil
	}

	switch m.Dimension {
	case Texture1D, Texture2D:
		w, h := m.Width, m.Height
		for level := 0; level < m.MipLevels; level++ {
			if err := add(w, h, m.ArraySize); err != nil {
				return 0, err
			}
			w, h = max(1, w>>1), max(1, h>>1)
		}
	case Texture3D:
		w, h, d := m.Width, m.Height, m.Depth
		for level := 0; level < m.MipLevels; level++ {
			if err := add(w, h, d); err != nil {
				return 0, err
			}
			w, h, d = max(1, w>>1), max(1, h>>1), max(1, d>>1)
		}
	default:
		return 0, fmt.Errorf("%w: dimension %d", ErrInvalidMetadata, m.Dimension)
	}
	return int(total), nil
}

// ImageCount returns the number of sub-images m describes.
func ImageCount(m Metadata) int {
	if m.Dimension == Texture3D {
		n := 0
		d := m.Depth
		for level := 0; level < m.MipLevels; level++ {
			n += d
			d = max(1, d>>1)
		}
		return n
	}
	return m.ArraySize * m.MipLevels
}
