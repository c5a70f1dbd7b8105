// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package texmeta describes the shape of a texture: its metadata, the order
// of its sub-images and where each one lives inside a single pixel arena.
package texmeta

import (
	"errors"

	"github.com/gogpu/dxtex/dxgi"
	"github.com/gogpu/gputypes"
)

// Dimension is the texture dimensionality, using D3D resource dimension
// values.
type Dimension uint32

const (
	// Texture1D is a one-dimensional texture (height 1).
	Texture1D Dimension = 2

	// Texture2D is a two-dimensional texture, including cube maps.
	Texture2D Dimension = 3

	// Texture3D is a volume texture.
	Texture3D Dimension = 4
)

// String returns a short name for the dimension.
func (d Dimension) String() string {
	switch d {
	case Texture1D:
		return "1D"
	case Texture2D:
		return "2D"
	case Texture3D:
		return "3D"
	default:
		return "Unknown"
	}
}

// GPU returns the WebGPU texture dimension.
func (d Dimension) GPU() gputypes.TextureDimension {
	switch d {
	case Texture1D:
		return gputypes.TextureDimension1D
	case Texture3D:
		return gputypes.TextureDimension3D
	default:
		return gputypes.TextureDimension2D
	}
}

// MiscFlags are resource flags stored in MiscFlags.
type MiscFlags uint32

// MiscTextureCube marks a 2D texture array whose items form cube faces.
const MiscTextureCube MiscFlags = 0x4

// AlphaMode describes how the alpha channel is to be interpreted. It lives
// in the low bits of MiscFlags2.
type AlphaMode uint32

const (
	AlphaModeUnknown       AlphaMode = 0
	AlphaModeStraight      AlphaMode = 1
	AlphaModePremultiplied AlphaMode = 2
	AlphaModeOpaque        AlphaMode = 3
	AlphaModeCustom        AlphaMode = 4

	alphaModeMask = 0x7
)

// String returns the alpha mode name.
func (m AlphaMode) String() string {
	switch m {
	case AlphaModeStraight:
		return "straight"
	case AlphaModePremultiplied:
		return "premultiplied"
	case AlphaModeOpaque:
		return "opaque"
	case AlphaModeCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// ErrInvalidMetadata is returned when metadata describes no valid layout.
var ErrInvalidMetadata = errors.New("texmeta: invalid metadata")

// Metadata describes a texture.
type Metadata struct {
	Width      int
	Height     int
	Depth      int
	ArraySize  int
	MipLevels  int
	MiscFlags  MiscFlags
	MiscFlags2 uint32
	Format     dxgi.Format
	Dimension  Dimension
}

// IsCubemap reports whether the texture is a cube map or cube map array.
func (m Metadata) IsCubemap() bool {
	return m.MiscFlags&MiscTextureCube != 0
}

// IsVolumemap reports whether the texture is a 3D texture.
func (m Metadata) IsVolumemap() bool {
	return m.Dimension == Texture3D
}

// IsPMAlpha reports whether the alpha mode is premultiplied.
func (m Metadata) IsPMAlpha() bool {
	return m.AlphaMode() == AlphaModePremultiplied
}

// AlphaMode returns the alpha mode.
func (m Metadata) AlphaMode() AlphaMode {
	return AlphaMode(m.MiscFlags2 & alphaModeMask)
}

// SetAlphaMode replaces the alpha mode, keeping other MiscFlags2 bits.
func (m *Metadata) SetAlphaMode(mode AlphaMode) {
	m.MiscFlags2 = (m.MiscFlags2 &^ alphaModeMask) | uint32(mode)
}

// Equal reports whether m and o describe the same texture.
func (m Metadata) Equal(o Metadata) bool {
	return m == o
}

// ComputeIndex returns the position of sub-image (mip, item, slice) in the
// descriptor table. The second result is false if any index is out of range.
func (m Metadata) ComputeIndex(mip, item, slice int) (int, bool) {
	if mip < 0 || item < 0 || slice < 0 || mip >= m.MipLevels {
		return 0, false
	}

	switch m.Dimension {
	case Texture1D, Texture2D:
		if slice > 0 || item >= m.ArraySize {
			return 0, false
		}
		return item*m.MipLevels + mip, true

	case Texture3D:
		if item > 0 {
			return 0, false
		}
		index := 0
		d := m.Depth
		for level := 0; level < mip; level++ {
			index += d
			if d > 1 {
				d >>= 1
			}
		}
		if slice >= d {
			return 0, false
		}
		return index + slice, true
	}
	return 0, false
}

// CountMips returns the length of a full mip chain for a 2D surface.
func CountMips(width, height int) int {
	levels := 1
	for width > 1 || height > 1 {
		if width > 1 {
			width >>= 1
		}
		if height > 1 {
			height >>= 1
		}
		levels++
	}
	return levels
}

// CountMips3D returns the length of a full mip chain for a volume.
func CountMips3D(width, height, depth int) int {
	levels := 1
	for width > 1 || height > 1 || depth > 1 {
		if width > 1 {
			width >>= 1
		}
		if height > 1 {
			height >>= 1
		}
		if depth > 1 {
			depth >>= 1
		}
		levels++
	}
	return levels
}
