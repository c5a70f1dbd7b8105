// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package dds reads and writes DirectDraw Surface files, with the legacy
// pixel-format header and the DX10 extension header.
package dds

import (
	"encoding/binary"

	"github.com/gogpu/dxtex/dxgi"
)

// Flags control DDS reading and writing. Values match the root package's
// DDSFlags.
type Flags uint32

const (
	FlagsNone Flags = 0

	// FlagsLegacyDWORD assumes rows in the file are padded to 4 bytes.
	FlagsLegacyDWORD Flags = 0x1

	// FlagsBadDXTNTails reads mip tails of block formats the way some old
	// writers sized them (no block for levels smaller than 4x4).
	FlagsBadDXTNTails Flags = 0x40

	// FlagsAllowLargeFiles reads headers past the Direct3D 11 resource
	// limits. The payload must still hold every declared byte.
	FlagsAllowLargeFiles Flags = 0x1000

	// FlagsForceDX10Ext always writes the DX10 extension header.
	FlagsForceDX10Ext Flags = 0x10000

	// FlagsForceDX10ExtMisc2 writes the DX10 header including the alpha mode.
	FlagsForceDX10ExtMisc2 Flags = 0x20000

	// FlagsForceDX9Legacy fails rather than writing a DX10 header.
	FlagsForceDX9Legacy Flags = 0x40000
)

const (
	magic      = 0x20534444 // "DDS "
	headerSize = 124
	pfSize     = 32
	dx10Size   = 20

	// Offset of pixel data when there is no DX10 header.
	legacyDataOffset = 4 + headerSize
)

// Header flags.
const (
	hdrCaps        = 0x1
	hdrHeight      = 0x2
	hdrWidth       = 0x4
	hdrPitch       = 0x8
	hdrPixelFormat = 0x1000
	hdrMipCount    = 0x20000
	hdrLinearSize  = 0x80000
	hdrDepth       = 0x800000
)

// Pixel format flags.
const (
	pfAlphaPixels = 0x1
	pfAlpha       = 0x2
	pfFourCC      = 0x4
	pfRGB         = 0x40
	pfLuminance   = 0x20000
	pfBumpDUDV    = 0x80000
)

// Caps.
const (
	capsComplex = 0x8
	capsTexture = 0x1000
	capsMipmap  = 0x400000

	caps2Cubemap  = 0x200
	caps2AllFaces = 0xFC00
	caps2Volume   = 0x200000
)

// DX10 resource dimensions and misc flags.
const (
	dimTexture1D = 2
	dimTexture2D = 3
	dimTexture3D = 4

	dx10MiscCube = 0x4
)

type pixelFormat struct {
	Size        uint32
	Flags       uint32
	FourCC      uint32
	RGBBitCount uint32
	RBitMask    uint32
	GBitMask    uint32
	BBitMask    uint32
	ABitMask    uint32
}

type header struct {
	Size              uint32
	Flags             uint32
	Height            uint32
	Width             uint32
	PitchOrLinearSize uint32
	Depth             uint32
	MipMapCount       uint32
	Reserved1         [11]uint32
	PixelFormat       pixelFormat
	Caps              uint32
	Caps2             uint32
	Caps3             uint32
	Caps4             uint32
	Reserved2         uint32
}

type headerDX10 struct {
	Format     uint32
	Dimension  uint32
	MiscFlag   uint32
	ArraySize  uint32
	MiscFlags2 uint32
}

func fourCC(s string) uint32 {
	return uint32(s[0]) | uint32(s[1])<<8 | uint32(s[2])<<16 | uint32(s[3])<<24
}

// fourCCFormats maps FourCC codes to formats. premul marks the codes that
// carry premultiplied alpha.
var fourCCFormats = []struct {
	code   uint32
	format dxgi.Format
	premul bool
}{
	{fourCC("DXT1"), dxgi.FormatBC1Unorm, false},
	{fourCC("DXT2"), dxgi.FormatBC2Unorm, true},
	{fourCC("DXT3"), dxgi.FormatBC2Unorm, false},
	{fourCC("DXT4"), dxgi.FormatBC3Unorm, true},
	{fourCC("DXT5"), dxgi.FormatBC3Unorm, false},
	{fourCC("ATI1"), dxgi.FormatBC4Unorm, false},
	{fourCC("BC4U"), dxgi.FormatBC4Unorm, false},
	{fourCC("BC4S"), dxgi.FormatBC4Snorm, false},
	{fourCC("ATI2"), dxgi.FormatBC5Unorm, false},
	{fourCC("BC5U"), dxgi.FormatBC5Unorm, false},
	{fourCC("BC5S"), dxgi.FormatBC5Snorm, false},
	{fourCC("RGBG"), dxgi.FormatR8G8B8G8Unorm, false},
	{fourCC("GRGB"), dxgi.FormatG8R8G8B8Unorm, false},
	{fourCC("YUY2"), dxgi.FormatYUY2, false},

	// D3DFORMAT values stored in the FourCC field.
	{36, dxgi.FormatR16G16B16A16Unorm, false},
	{110, dxgi.FormatR16G16B16A16Snorm, false},
	{111, dxgi.FormatR16Float, false},
	{112, dxgi.FormatR16G16Float, false},
	{113, dxgi.FormatR16G16B16A16Float, false},
	{114, dxgi.FormatR32Float, false},
	{115, dxgi.FormatR32G32Float, false},
	{116, dxgi.FormatR32G32B32A32Float, false},
}

// maskFormat is a legacy pixel format described by channel masks.
type maskFormat struct {
	class      uint32 // pfRGB, pfLuminance or pfAlpha
	bits       uint32
	r, g, b, a uint32
	format     dxgi.Format
	expand24   bool // 24-bit BGR widened to RGBA8 on load
}

var maskFormats = []maskFormat{
	{pfRGB, 32, 0x000000ff, 0x0000ff00, 0x00ff0000, 0xff000000, dxgi.FormatR8G8B8A8Unorm, false},
	{pfRGB, 32, 0x00ff0000, 0x0000ff00, 0x000000ff, 0xff000000, dxgi.FormatB8G8R8A8Unorm, false},
	{pfRGB, 32, 0x00ff0000, 0x0000ff00, 0x000000ff, 0, dxgi.FormatB8G8R8X8Unorm, false},
	{pfRGB, 32, 0x000003ff, 0x000ffc00, 0x3ff00000, 0xc0000000, dxgi.FormatR10G10B10A2Unorm, false},
	{pfRGB, 32, 0x0000ffff, 0xffff0000, 0, 0, dxgi.FormatR16G16Unorm, false},
	{pfRGB, 32, 0xffffffff, 0, 0, 0, dxgi.FormatR32Float, false},
	{pfRGB, 24, 0x00ff0000, 0x0000ff00, 0x000000ff, 0, dxgi.FormatR8G8B8A8Unorm, true},
	{pfRGB, 16, 0xf800, 0x07e0, 0x001f, 0, dxgi.FormatB5G6R5Unorm, false},
	{pfRGB, 16, 0x7c00, 0x03e0, 0x001f, 0x8000, dxgi.FormatB5G5R5A1Unorm, false},
	{pfRGB, 16, 0x0f00, 0x00f0, 0x000f, 0xf000, dxgi.FormatB4G4R4A4Unorm, false},
	{pfRGB, 16, 0x00ff, 0xff00, 0, 0, dxgi.FormatR8G8Unorm, false},
	{pfLuminance, 8, 0xff, 0, 0, 0, dxgi.FormatR8Unorm, false},
	{pfLuminance, 16, 0xffff, 0, 0, 0, dxgi.FormatR16Unorm, false},
	{pfLuminance, 16, 0x00ff, 0, 0, 0xff00, dxgi.FormatR8G8Unorm, false},
	{pfAlpha, 8, 0, 0, 0, 0xff, dxgi.FormatA8Unorm, false},
}

// legacyFormat finds the format a legacy pixel format describes.
func legacyFormat(pf *pixelFormat) (f dxgi.Format, premul, expand24 bool) {
	if pf.Flags&pfFourCC != 0 {
		for _, e := range fourCCFormats {
			if e.code == pf.FourCC {
				return e.format, e.premul, false
			}
		}
		return dxgi.FormatUnknown, false, false
	}

	class := pf.Flags & (pfRGB | pfLuminance | pfAlpha)
	if pf.Flags&pfBumpDUDV != 0 {
		return dxgi.FormatUnknown, false, false
	}
	for _, m := range maskFormats {
		if m.class != class || m.bits != pf.RGBBitCount {
			continue
		}
		a := pf.ABitMask
		if m.class == pfRGB && pf.Flags&pfAlphaPixels == 0 {
			a = 0
		}
		if m.r == pf.RBitMask && m.g == pf.GBitMask && m.b == pf.BBitMask && m.a == a {
			return m.format, false, m.expand24
		}
	}
	return dxgi.FormatUnknown, false, false
}

// legacyPixelFormat returns the legacy header encoding of f, if it has
// one. 24-bit expansion entries are load-only.
func legacyPixelFormat(f dxgi.Format, premul bool) (pixelFormat, bool) {
	for _, e := range fourCCFormats {
		if e.format == f && e.premul == premul {
			return pixelFormat{Size: pfSize, Flags: pfFourCC, FourCC: e.code}, true
		}
	}
	if premul {
		return pixelFormat{}, false
	}
	for _, m := range maskFormats {
		if m.format != f || m.expand24 {
			continue
		}
		flags := m.class
		if m.a != 0 && m.class != pfAlpha {
			flags |= pfAlphaPixels
		}
		return pixelFormat{
			Size:        pfSize,
			Flags:       flags,
			RGBBitCount: m.bits,
			RBitMask:    m.r,
			GBitMask:    m.g,
			BBitMask:    m.b,
			ABitMask:    m.a,
		}, true
	}
	return pixelFormat{}, false
}

var le = binary.LittleEndian
