package dxtex

import (
	"github.com/gogpu/dxtex/dxgi"
	"github.com/gogpu/dxtex/internal/codec/dds"
	"github.com/gogpu/dxtex/internal/codec/tga"
	"github.com/gogpu/dxtex/internal/codec/wic"
	teximage "github.com/gogpu/dxtex/internal/image"
)

// CPFlags adjust pitch computation. See dxgi.CPFlags.
type CPFlags = dxgi.CPFlags

// TexThresholdDefault is the usual alpha cutoff for formats with one bit of
// alpha.
const TexThresholdDefault float32 = 0.5

// TexFilterFlags select the resampling filter, the edge addressing and the
// color space handling of Resize, Convert and GenerateMipMaps.
type TexFilterFlags uint32

const (
	TexFilterDefault TexFilterFlags = 0

	TexFilterWrapU   TexFilterFlags = 0x1
	TexFilterWrapV   TexFilterFlags = 0x2
	TexFilterWrapW   TexFilterFlags = 0x4
	TexFilterWrap    TexFilterFlags = TexFilterWrapU | TexFilterWrapV | TexFilterWrapW
	TexFilterMirrorU TexFilterFlags = 0x10
	TexFilterMirrorV TexFilterFlags = 0x20
	TexFilterMirrorW TexFilterFlags = 0x40
	TexFilterMirror  TexFilterFlags = TexFilterMirrorU | TexFilterMirrorV | TexFilterMirrorW

	// TexFilterSeparateAlpha resizes alpha without premultiplying color
	// by it first.
	TexFilterSeparateAlpha TexFilterFlags = 0x100

	TexFilterPoint    TexFilterFlags = 0x100000
	TexFilterLinear   TexFilterFlags = 0x200000
	TexFilterCubic    TexFilterFlags = 0x300000
	TexFilterBox      TexFilterFlags = 0x400000
	TexFilterFant     TexFilterFlags = 0x400000
	TexFilterTriangle TexFilterFlags = 0x500000

	TexFilterSRGBIn  TexFilterFlags = 0x1000000
	TexFilterSRGBOut TexFilterFlags = 0x2000000
	TexFilterSRGB    TexFilterFlags = TexFilterSRGBIn | TexFilterSRGBOut

	// TexFilterForceNonWIC and TexFilterForceWIC are accepted for
	// compatibility; every filter runs in this package.
	TexFilterForceNonWIC TexFilterFlags = 0x10000000
	TexFilterForceWIC    TexFilterFlags = 0x20000000

	texFilterModeMask TexFilterFlags = 0xF00000
)

// resampler maps the flags onto the engine's filter and addressing.
// Triangle is treated as linear.
func (f TexFilterFlags) resampler(shrinking bool) (teximage.Filter, teximage.AddressMode) {
	addr := teximage.AddressClamp
	switch {
	case f&TexFilterMirror != 0:
		addr = teximage.AddressMirror
	case f&TexFilterWrap != 0:
		addr = teximage.AddressWrap
	}

	switch f & texFilterModeMask {
	case TexFilterPoint:
		return teximage.FilterPoint, addr
	case TexFilterLinear, TexFilterTriangle:
		return teximage.FilterLinear, addr
	case TexFilterCubic:
		return teximage.FilterCubic, addr
	case TexFilterBox:
		return teximage.FilterBox, addr
	}
	if shrinking {
		return teximage.FilterBox, addr
	}
	return teximage.FilterLinear, addr
}

// TexCompressFlags tune block compression.
type TexCompressFlags uint32

const (
	TexCompressDefault TexCompressFlags = 0

	// Dithering and the BC7 mode search flags are accepted for
	// compatibility. The encoders are deterministic and do not dither, and
	// BC7 always encodes with mode 6.
	TexCompressRGBDither      TexCompressFlags = 0x10000
	TexCompressADither        TexCompressFlags = 0x20000
	TexCompressDither         TexCompressFlags = 0x30000
	TexCompressUniform        TexCompressFlags = 0x40000
	TexCompressBC7Use3Subsets TexCompressFlags = 0x80000
	TexCompressBC7Quick       TexCompressFlags = 0x100000

	TexCompressSRGBIn  TexCompressFlags = 0x1000000
	TexCompressSRGBOut TexCompressFlags = 0x2000000
	TexCompressSRGB    TexCompressFlags = TexCompressSRGBIn | TexCompressSRGBOut

	// TexCompressParallel spreads block rows across goroutines.
	TexCompressParallel TexCompressFlags = 0x10000000
)

// TexPMAlphaFlags control PremultiplyAlpha.
type TexPMAlphaFlags uint32

const (
	TexPMAlphaDefault TexPMAlphaFlags = 0

	// TexPMAlphaIgnoreSRGB multiplies the stored sRGB codes directly.
	TexPMAlphaIgnoreSRGB TexPMAlphaFlags = 0x1

	// TexPMAlphaReverse converts premultiplied alpha back to straight.
	TexPMAlphaReverse TexPMAlphaFlags = 0x2

	TexPMAlphaSRGBIn  TexPMAlphaFlags = 0x1000000
	TexPMAlphaSRGBOut TexPMAlphaFlags = 0x2000000
	TexPMAlphaSRGB    TexPMAlphaFlags = TexPMAlphaSRGBIn | TexPMAlphaSRGBOut
)

// TexFRFlags select a rotation and optional flips for FlipRotate. The flips
// apply after the rotation.
type TexFRFlags uint32

const (
	TexFRRotate0        TexFRFlags = 0x0
	TexFRRotate90       TexFRFlags = 0x1
	TexFRRotate180      TexFRFlags = 0x2
	TexFRRotate270      TexFRFlags = 0x3
	TexFRFlipHorizontal TexFRFlags = 0x08
	TexFRFlipVertical   TexFRFlags = 0x10
	texFRRotateMask     TexFRFlags = 0x3
)

func (f TexFRFlags) orientation() teximage.Orientation {
	return teximage.Orientation{
		Quarters: int(f & texFRRotateMask),
		FlipH:    f&TexFRFlipHorizontal != 0,
		FlipV:    f&TexFRFlipVertical != 0,
	}
}

// DDSFlags control DDS loading and saving.
type DDSFlags uint32

const (
	DDSFlagsNone DDSFlags = 0

	// DDSFlagsLegacyDWORD assumes rows are padded to 4 bytes, as some old
	// writers did.
	DDSFlagsLegacyDWORD DDSFlags = DDSFlags(dds.FlagsLegacyDWORD)

	// DDSFlagsBadDXTNTails accepts files whose small mips of block
	// compressed chains are truncated.
	DDSFlagsBadDXTNTails DDSFlags = DDSFlags(dds.FlagsBadDXTNTails)

	// DDSFlagsAllowLargeFiles reads textures larger than the Direct3D 11
	// limits of 16384 texels per side and 2048 array slices.
	DDSFlagsAllowLargeFiles DDSFlags = DDSFlags(dds.FlagsAllowLargeFiles)

	// DDSFlagsForceDX10Ext always writes the DX10 extension header.
	DDSFlagsForceDX10Ext DDSFlags = DDSFlags(dds.FlagsForceDX10Ext)

	// DDSFlagsForceDX10ExtMisc2 writes the DX10 header with the alpha mode.
	DDSFlagsForceDX10ExtMisc2 DDSFlags = DDSFlags(dds.FlagsForceDX10ExtMisc2)

	// DDSFlagsForceDX9Legacy fails rather than write a DX10 header.
	DDSFlagsForceDX9Legacy DDSFlags = DDSFlags(dds.FlagsForceDX9Legacy)
)

// TGAFlags control TGA loading.
type TGAFlags uint32

const (
	TGAFlagsNone TGAFlags = 0

	// TGAFlagsBGR loads 24 and 32 bit images as B8G8R8X8 or B8G8R8A8
	// instead of swizzling to R8G8B8A8.
	TGAFlagsBGR TGAFlags = TGAFlags(tga.FlagsBGR)

	// TGAFlagsAllowAllZeroAlpha keeps an all-zero alpha channel.
	TGAFlagsAllowAllZeroAlpha TGAFlags = TGAFlags(tga.FlagsAllowAllZeroAlpha)
)

// WICFlags control loading through the generic image codecs.
type WICFlags uint32

const (
	WICFlagsNone        WICFlags = 0
	WICFlagsNo16BPP     WICFlags = WICFlags(wic.FlagsNo16BPP)
	WICFlagsAllFrames   WICFlags = WICFlags(wic.FlagsAllFrames)
	WICFlagsIgnoreSRGB  WICFlags = WICFlags(wic.FlagsIgnoreSRGB)
	WICFlagsForceSRGB   WICFlags = WICFlags(wic.FlagsForceSRGB)
	WICFlagsForceLinear WICFlags = WICFlags(wic.FlagsForceLinear)
	WICFlagsDefaultSRGB WICFlags = WICFlags(wic.FlagsDefaultSRGB)
)

// WICCodec identifies a generic image container.
type WICCodec = wic.Codec

const (
	WICCodecBMP  = wic.CodecBMP
	WICCodecJPEG = wic.CodecJPEG
	WICCodecPNG  = wic.CodecPNG
	WICCodecTIFF = wic.CodecTIFF
	WICCodecGIF  = wic.CodecGIF
	WICCodecWMP  = wic.CodecWMP
	WICCodecICO  = wic.CodecICO
	WICCodecHEIF = wic.CodecHEIF
	WICCodecWEBP = wic.CodecWEBP
)

// WICCodecByExt returns the generic codec for a file extension, with or
// without the leading dot, ignoring case.
func WICCodecByExt(ext string) (WICCodec, bool) {
	return wic.ByExt(ext)
}
