// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dxgi

// IsValid reports whether f is a defined, non-unknown format.
func (f Format) IsValid() bool {
	if f == FormatUnknown {
		return false
	}
	_, ok := formatNames[f]
	return ok
}

// IsCompressed reports whether f is a BC block-compressed format.
func (f Format) IsCompressed() bool {
	switch {
	case f >= FormatBC1Typeless && f <= FormatBC5Snorm:
		return true
	case f >= FormatBC6HTypeless && f <= FormatBC7UnormSRGB:
		return true
	}
	return false
}

// BlockBytes returns the size of one 4x4 block for compressed formats,
// or 0 for everything else.
func (f Format) BlockBytes() int {
	switch f {
	case FormatBC1Typeless, FormatBC1Unorm, FormatBC1UnormSRGB,
		FormatBC4Typeless, FormatBC4Unorm, FormatBC4Snorm:
		return 8
	}
	if f.IsCompressed() {
		return 16
	}
	return 0
}

// IsSRGB reports whether f stores color in the sRGB transfer function.
func (f Format) IsSRGB() bool {
	switch f {
	case FormatR8G8B8A8UnormSRGB, FormatBC1UnormSRGB, FormatBC2UnormSRGB,
		FormatBC3UnormSRGB, FormatB8G8R8A8UnormSRGB, FormatB8G8R8X8UnormSRGB,
		FormatBC7UnormSRGB:
		return true
	}
	return false
}

// HasAlpha reports whether f carries an alpha channel.
func (f Format) HasAlpha() bool {
	switch f {
	case FormatR32G32B32A32Typeless, FormatR32G32B32A32Float, FormatR32G32B32A32Uint, FormatR32G32B32A32Sint,
		FormatR16G16B16A16Typeless, FormatR16G16B16A16Float, FormatR16G16B16A16Unorm,
		FormatR16G16B16A16Uint, FormatR16G16B16A16Snorm, FormatR16G16B16A16Sint,
		FormatR10G10B10A2Typeless, FormatR10G10B10A2Unorm, FormatR10G10B10A2Uint,
		FormatR8G8B8A8Typeless, FormatR8G8B8A8Unorm, FormatR8G8B8A8UnormSRGB,
		FormatR8G8B8A8Uint, FormatR8G8B8A8Snorm, FormatR8G8B8A8Sint,
		FormatA8Unorm,
		FormatBC1Typeless, FormatBC1Unorm, FormatBC1UnormSRGB,
		FormatBC2Typeless, FormatBC2Unorm, FormatBC2UnormSRGB,
		FormatBC3Typeless, FormatBC3Unorm, FormatBC3UnormSRGB,
		FormatB5G5R5A1Unorm, FormatB8G8R8A8Unorm, FormatR10G10B10XRBiasA2Unorm,
		FormatB8G8R8A8Typeless, FormatB8G8R8A8UnormSRGB,
		FormatBC7Typeless, FormatBC7Unorm, FormatBC7UnormSRGB,
		FormatAYUV, FormatY410, FormatY416, FormatAI44, FormatIA44, FormatA8P8,
		FormatB4G4R4A4Unorm, FormatA4B4G4R4Unorm:
		return true
	}
	return false
}

// IsBGR reports whether f stores color channels in BGR order.
func (f Format) IsBGR() bool {
	switch f {
	case FormatB5G6R5Unorm, FormatB5G5R5A1Unorm, FormatB8G8R8A8Unorm, FormatB8G8R8X8Unorm,
		FormatB8G8R8A8Typeless, FormatB8G8R8A8UnormSRGB, FormatB8G8R8X8Typeless,
		FormatB8G8R8X8UnormSRGB, FormatB4G4R4A4Unorm:
		return true
	}
	return false
}

// IsDepthStencil reports whether f is a depth or depth/stencil format.
func (f Format) IsDepthStencil() bool {
	switch f {
	case FormatR32G8X24Typeless, FormatD32FloatS8X24Uint, FormatR32FloatX8X24Typeless,
		FormatX32TypelessG8X24Uint, FormatD32Float, FormatR24G8Typeless, FormatD24UnormS8Uint,
		FormatR24UnormX8Typeless, FormatX24TypelessG8Uint, FormatD16Unorm:
		return true
	}
	return false
}

// IsPacked reports whether f packs two pixels into one element (4:2:2).
func (f Format) IsPacked() bool {
	switch f {
	case FormatR8G8B8G8Unorm, FormatG8R8G8B8Unorm, FormatYUY2, FormatY210, FormatY216:
		return true
	}
	return false
}

// IsPalettized reports whether f indexes into a palette.
func (f Format) IsPalettized() bool {
	switch f {
	case FormatAI44, FormatIA44, FormatP8, FormatA8P8:
		return true
	}
	return false
}

// IsPlanar reports whether f stores its data in more than one plane.
func (f Format) IsPlanar() bool {
	switch f {
	case FormatNV12, FormatP010, FormatP016, Format420Opaque, FormatNV11,
		FormatP208, FormatV208, FormatV408,
		FormatR32G8X24Typeless, FormatD32FloatS8X24Uint, FormatR32FloatX8X24Typeless,
		FormatX32TypelessG8X24Uint, FormatR24G8Typeless, FormatD24UnormS8Uint,
		FormatR24UnormX8Typeless, FormatX24TypelessG8Uint:
		return true
	}
	return false
}

// IsVideo reports whether f is one of the YUV or palettized video formats.
func (f Format) IsVideo() bool {
	switch {
	case f >= FormatAYUV && f <= FormatA8P8:
		return true
	case f >= FormatP208 && f <= FormatV408:
		return true
	}
	return false
}

// IsTypeless reports whether f is typeless. When partial is true, formats
// with one typeless component (for example R32_FLOAT_X8X24_TYPELESS) count
// as typeless as well.
func (f Format) IsTypeless(partial bool) bool {
	switch f {
	case FormatR32G32B32A32Typeless, FormatR32G32B32Typeless, FormatR16G16B16A16Typeless,
		FormatR32G32Typeless, FormatR32G8X24Typeless, FormatR10G10B10A2Typeless,
		FormatR8G8B8A8Typeless, FormatR16G16Typeless, FormatR32Typeless, FormatR24G8Typeless,
		FormatR8G8Typeless, FormatR16Typeless, FormatR8Typeless, FormatBC1Typeless,
		FormatBC2Typeless, FormatBC3Typeless, FormatBC4Typeless, FormatBC5Typeless,
		FormatB8G8R8A8Typeless, FormatB8G8R8X8Typeless, FormatBC6HTypeless, FormatBC7Typeless:
		return true
	case FormatR32FloatX8X24Typeless, FormatX32TypelessG8X24Uint,
		FormatR24UnormX8Typeless, FormatX24TypelessG8Uint:
		return partial
	}
	return false
}

var srgbPairs = [...][2]Format{
	{FormatR8G8B8A8Unorm, FormatR8G8B8A8UnormSRGB},
	{FormatBC1Unorm, FormatBC1UnormSRGB},
	{FormatBC2Unorm, FormatBC2UnormSRGB},
	{FormatBC3Unorm, FormatBC3UnormSRGB},
	{FormatB8G8R8A8Unorm, FormatB8G8R8A8UnormSRGB},
	{FormatB8G8R8X8Unorm, FormatB8G8R8X8UnormSRGB},
	{FormatBC7Unorm, FormatBC7UnormSRGB},
}

// MakeSRGB returns the sRGB variant of f, or f when there is none.
func (f Format) MakeSRGB() Format {
	for _, p := range srgbPairs {
		if p[0] == f {
			return p[1]
		}
	}
	return f
}

// MakeLinear returns the non-sRGB variant of f, or f when it is not sRGB.
func (f Format) MakeLinear() Format {
	for _, p := range srgbPairs {
		if p[1] == f {
			return p[0]
		}
	}
	return f
}

// MakeTypeless returns the typeless format of f's family, or f when the
// family has no typeless member.
func (f Format) MakeTypeless() Format {
	switch {
	case f >= FormatR32G32B32A32Float && f <= FormatR32G32B32A32Sint:
		return FormatR32G32B32A32Typeless
	case f >= FormatR32G32B32Float && f <= FormatR32G32B32Sint:
		return FormatR32G32B32Typeless
	case f >= FormatR16G16B16A16Float && f <= FormatR16G16B16A16Sint:
		return FormatR16G16B16A16Typeless
	case f >= FormatR32G32Float && f <= FormatR32G32Sint:
		return FormatR32G32Typeless
	case f >= FormatR10G10B10A2Unorm && f <= FormatR10G10B10A2Uint:
		return FormatR10G10B10A2Typeless
	case f >= FormatR8G8B8A8Unorm && f <= FormatR8G8B8A8Sint:
		return FormatR8G8B8A8Typeless
	case f >= FormatR16G16Float && f <= FormatR16G16Sint:
		return FormatR16G16Typeless
	case f >= FormatD32Float && f <= FormatR32Sint:
		return FormatR32Typeless
	case f >= FormatR8G8Unorm && f <= FormatR8G8Sint:
		return FormatR8G8Typeless
	case f >= FormatR16Float && f <= FormatR16Sint:
		return FormatR16Typeless
	case f >= FormatR8Unorm && f <= FormatR8Sint:
		return FormatR8Typeless
	case f == FormatBC1Unorm || f == FormatBC1UnormSRGB:
		return FormatBC1Typeless
	case f == FormatBC2Unorm || f == FormatBC2UnormSRGB:
		return FormatBC2Typeless
	case f == FormatBC3Unorm || f == FormatBC3UnormSRGB:
		return FormatBC3Typeless
	case f == FormatBC4Unorm || f == FormatBC4Snorm:
		return FormatBC4Typeless
	case f == FormatBC5Unorm || f == FormatBC5Snorm:
		return FormatBC5Typeless
	case f == FormatB8G8R8A8Unorm || f == FormatB8G8R8A8UnormSRGB:
		return FormatB8G8R8A8Typeless
	case f == FormatB8G8R8X8Unorm || f == FormatB8G8R8X8UnormSRGB:
		return FormatB8G8R8X8Typeless
	case f == FormatBC6HUF16 || f == FormatBC6HSF16:
		return FormatBC6HTypeless
	case f == FormatBC7Unorm || f == FormatBC7UnormSRGB:
		return FormatBC7Typeless
	}
	return f
}

// MakeTypelessUNORM maps a typeless format to its UNORM member.
func (f Format) MakeTypelessUNORM() Format {
	switch f {
	case FormatR16G16B16A16Typeless:
		return FormatR16G16B16A16Unorm
	case FormatR10G10B10A2Typeless:
		return FormatR10G10B10A2Unorm
	case FormatR8G8B8A8Typeless:
		return FormatR8G8B8A8Unorm
	case FormatR16G16Typeless:
		return FormatR16G16Unorm
	case FormatR8G8Typeless:
		return FormatR8G8Unorm
	case FormatR16Typeless:
		return FormatR16Unorm
	case FormatR8Typeless:
		return FormatR8Unorm
	case FormatBC1Typeless:
		return FormatBC1Unorm
	case FormatBC2Typeless:
		return FormatBC2Unorm
	case FormatBC3Typeless:
		return FormatBC3Unorm
	case FormatBC7Typeless:
		return FormatBC7Unorm
	case FormatB8G8R8A8Typeless:
		return FormatB8G8R8A8Unorm
	case FormatB8G8R8X8Typeless:
		return FormatB8G8R8X8Unorm
	case FormatBC4Typeless:
		return FormatBC4Unorm
	case FormatBC5Typeless:
		return FormatBC5Unorm
	}
	return f
}

// MakeTypelessFLOAT maps a typeless format to its FLOAT member.
func (f Format) MakeTypelessFLOAT() Format {
	switch f {
	case FormatR32G32B32A32Typeless:
		return FormatR32G32B32A32Float
	case FormatR32G32B32Typeless:
		return FormatR32G32B32Float
	case FormatR16G16B16A16Typeless:
		return FormatR16G16B16A16Float
	case FormatR32G32Typeless:
		return FormatR32G32Float
	case FormatR16G16Typeless:
		return FormatR16G16Float
	case FormatR32Typeless:
		return FormatR32Float
	case FormatR16Typeless:
		return FormatR16Float
	}
	return f
}

// BitsPerPixel returns the storage size of one pixel in bits. Compressed
// formats report their average rate (4 or 8). Unknown formats report 0.
func (f Format) BitsPerPixel() int {
	switch f {
	case FormatR32G32B32A32Typeless, FormatR32G32B32A32Float, FormatR32G32B32A32Uint, FormatR32G32B32A32Sint:
		return 128

	case FormatR32G32B32Typeless, FormatR32G32B32Float, FormatR32G32B32Uint, FormatR32G32B32Sint:
		return 96

	case FormatR16G16B16A16Typeless, FormatR16G16B16A16Float, FormatR16G16B16A16Unorm,
		FormatR16G16B16A16Uint, FormatR16G16B16A16Snorm, FormatR16G16B16A16Sint,
		FormatR32G32Typeless, FormatR32G32Float, FormatR32G32Uint, FormatR32G32Sint,
		FormatR32G8X24Typeless, FormatD32FloatS8X24Uint, FormatR32FloatX8X24Typeless,
		FormatX32TypelessG8X24Uint, FormatY416, FormatY210, FormatY216:
		return 64

	case FormatR10G10B10A2Typeless, FormatR10G10B10A2Unorm, FormatR10G10B10A2Uint, FormatR11G11B10Float,
		FormatR8G8B8A8Typeless, FormatR8G8B8A8Unorm, FormatR8G8B8A8UnormSRGB, FormatR8G8B8A8Uint,
		FormatR8G8B8A8Snorm, FormatR8G8B8A8Sint, FormatR16G16Typeless, FormatR16G16Float,
		FormatR16G16Unorm, FormatR16G16Uint, FormatR16G16Snorm, FormatR16G16Sint,
		FormatR32Typeless, FormatD32Float, FormatR32Float, FormatR32Uint, FormatR32Sint,
		FormatR24G8Typeless, FormatD24UnormS8Uint, FormatR24UnormX8Typeless, FormatX24TypelessG8Uint,
		FormatR9G9B9E5SharedExp, FormatR8G8B8G8Unorm, FormatG8R8G8B8Unorm,
		FormatB8G8R8A8Unorm, FormatB8G8R8X8Unorm, FormatR10G10B10XRBiasA2Unorm,
		FormatB8G8R8A8Typeless, FormatB8G8R8A8UnormSRGB, FormatB8G8R8X8Typeless, FormatB8G8R8X8UnormSRGB,
		FormatAYUV, FormatY410, FormatYUY2:
		return 32

	case FormatP010, FormatP016, FormatV408:
		return 24

	case FormatR8G8Typeless, FormatR8G8Unorm, FormatR8G8Uint, FormatR8G8Snorm, FormatR8G8Sint,
		FormatR16Typeless, FormatR16Float, FormatD16Unorm, FormatR16Unorm, FormatR16Uint,
		FormatR16Snorm, FormatR16Sint, FormatB5G6R5Unorm, FormatB5G5R5A1Unorm, FormatA8P8,
		FormatB4G4R4A4Unorm, FormatP208, FormatV208, FormatA4B4G4R4Unorm:
		return 16

	case FormatNV12, Format420Opaque, FormatNV11:
		return 12

	case FormatR8Typeless, FormatR8Unorm, FormatR8Uint, FormatR8Snorm, FormatR8Sint, FormatA8Unorm,
		FormatAI44, FormatIA44, FormatP8,
		FormatBC2Typeless, FormatBC2Unorm, FormatBC2UnormSRGB,
		FormatBC3Typeless, FormatBC3Unorm, FormatBC3UnormSRGB,
		FormatBC5Typeless, FormatBC5Unorm, FormatBC5Snorm,
		FormatBC6HTypeless, FormatBC6HUF16, FormatBC6HSF16,
		FormatBC7Typeless, FormatBC7Unorm, FormatBC7UnormSRGB:
		return 8

	case FormatR1Unorm:
		return 1

	case FormatBC1Typeless, FormatBC1Unorm, FormatBC1UnormSRGB,
		FormatBC4Typeless, FormatBC4Unorm, FormatBC4Snorm:
		return 4
	}
	return 0
}

// BitsPerColor returns the precision of the widest color channel in bits,
// or 0 for unknown and typeless-only formats.
func (f Format) BitsPerColor() int {
	switch f {
	case FormatR32G32B32A32Typeless, FormatR32G32B32A32Float, FormatR32G32B32A32Uint, FormatR32G32B32A32Sint,
		FormatR32G32B32Typeless, FormatR32G32B32Float, FormatR32G32B32Uint, FormatR32G32B32Sint,
		FormatR32G32Typeless, FormatR32G32Float, FormatR32G32Uint, FormatR32G32Sint,
		FormatR32G8X24Typeless, FormatD32FloatS8X24Uint, FormatR32FloatX8X24Typeless,
		FormatR32Typeless, FormatD32Float, FormatR32Float, FormatR32Uint, FormatR32Sint:
		return 32

	case FormatR24G8Typeless, FormatD24UnormS8Uint, FormatR24UnormX8Typeless:
		return 24

	case FormatR16G16B16A16Typeless, FormatR16G16B16A16Float, FormatR16G16B16A16Unorm,
		FormatR16G16B16A16Uint, FormatR16G16B16A16Snorm, FormatR16G16B16A16Sint,
		FormatR16G16Typeless, FormatR16G16Float, FormatR16G16Unorm, FormatR16G16Uint,
		FormatR16G16Snorm, FormatR16G16Sint, FormatR16Typeless, FormatR16Float, FormatD16Unorm,
		FormatR16Unorm, FormatR16Uint, FormatR16Snorm, FormatR16Sint,
		FormatBC6HTypeless, FormatBC6HUF16, FormatBC6HSF16, FormatY416, FormatP016, FormatY216:
		return 16

	case FormatR9G9B9E5SharedExp:
		return 14

	case FormatR11G11B10Float:
		return 11

	case FormatR10G10B10A2Typeless, FormatR10G10B10A2Unorm, FormatR10G10B10A2Uint,
		FormatR10G10B10XRBiasA2Unorm, FormatY410, FormatP010, FormatY210:
		return 10

	case FormatR8G8B8A8Typeless, FormatR8G8B8A8Unorm, FormatR8G8B8A8UnormSRGB, FormatR8G8B8A8Uint,
		FormatR8G8B8A8Snorm, FormatR8G8B8A8Sint, FormatR8G8Typeless, FormatR8G8Unorm, FormatR8G8Uint,
		FormatR8G8Snorm, FormatR8G8Sint, FormatR8Typeless, FormatR8Unorm, FormatR8Uint, FormatR8Snorm,
		FormatR8Sint, FormatA8Unorm, FormatR8G8B8G8Unorm, FormatG8R8G8B8Unorm,
		FormatBC4Typeless, FormatBC4Unorm, FormatBC4Snorm, FormatBC5Typeless, FormatBC5Unorm,
		FormatBC5Snorm, FormatB8G8R8A8Unorm, FormatB8G8R8X8Unorm, FormatB8G8R8A8Typeless,
		FormatB8G8R8A8UnormSRGB, FormatB8G8R8X8Typeless, FormatB8G8R8X8UnormSRGB,
		FormatAYUV, FormatNV12, Format420Opaque, FormatYUY2, FormatNV11, FormatP208,
		FormatV208, FormatV408, FormatBC7Typeless, FormatBC7Unorm, FormatBC7UnormSRGB,
		FormatP8, FormatA8P8:
		return 8

	case FormatBC1Typeless, FormatBC1Unorm, FormatBC1UnormSRGB, FormatB5G6R5Unorm:
		return 6

	case FormatBC2Typeless, FormatBC2Unorm, FormatBC2UnormSRGB, FormatBC3Typeless,
		FormatBC3Unorm, FormatBC3UnormSRGB, FormatB5G5R5A1Unorm:
		return 5

	case FormatB4G4R4A4Unorm, FormatA4B4G4R4Unorm, FormatAI44, FormatIA44:
		return 4

	case FormatR1Unorm:
		return 1
	}
	return 0
}
