// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dds

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/gogpu/dxtex/dxgi"
	"github.com/gogpu/dxtex/internal/codec"
	"github.com/gogpu/dxtex/internal/texmeta"
)

// parsed is a decoded header: the metadata plus how the payload is stored.
type parsed struct {
	meta     texmeta.Metadata
	offset   int  // start of pixel data
	expand24 bool // payload is 24-bit BGR
}

// Metadata reads only the headers of a DDS file. Textures past the
// Direct3D 11 resource limits are rejected unless flags has
// FlagsAllowLargeFiles.
func Metadata(data []byte, flags Flags) (texmeta.Metadata, error) {
	p, err := parse(data, flags)
	if err != nil {
		return texmeta.Metadata{}, err
	}
	return p.meta, nil
}

func parse(data []byte, flags Flags) (*parsed, error) {
	if len(data) < legacyDataOffset {
		return nil, fmt.Errorf("dds: %w: %d bytes", codec.ErrTruncated, len(data))
	}
	if le.Uint32(data) != magic {
		return nil, fmt.Errorf("dds: %w: missing magic", codec.ErrBadHeader)
	}

	var hdr header
	if err := binary.Read(bytes.NewReader(data[4:legacyDataOffset]), le, &hdr); err != nil {
		return nil, fmt.Errorf("dds: %w: %v", codec.ErrBadHeader, err)
	}
	if hdr.Size != headerSize || hdr.PixelFormat.Size != pfSize {
		return nil, fmt.Errorf("dds: %w: header size %d, pixel format size %d",
			codec.ErrBadHeader, hdr.Size, hdr.PixelFormat.Size)
	}

	p := &parsed{offset: legacyDataOffset}
	m := &p.meta
	m.MipLevels = max(1, int(hdr.MipMapCount))

	if hdr.PixelFormat.Flags&pfFourCC != 0 && hdr.PixelFormat.FourCC == fourCC("DX10") {
		if len(data) < legacyDataOffset+dx10Size {
			return nil, fmt.Errorf("dds: %w: DX10 header", codec.ErrTruncated)
		}
		var ext headerDX10
		if err := binary.Read(bytes.NewReader(data[legacyDataOffset:legacyDataOffset+dx10Size]), le, &ext); err != nil {
			return nil, fmt.Errorf("dds: %w: %v", codec.ErrBadHeader, err)
		}
		p.offset += dx10Size

		if ext.ArraySize == 0 {
			return nil, fmt.Errorf("dds: %w: zero array size", codec.ErrBadHeader)
		}
		m.Format = dxgi.Format(ext.Format)
		if !m.Format.IsValid() || m.Format.IsPalettized() {
			return nil, fmt.Errorf("dds: %w: format %v", codec.ErrUnsupported, m.Format)
		}
		m.ArraySize = int(ext.ArraySize)
		m.MiscFlags2 = ext.MiscFlags2

		switch ext.Dimension {
		case dimTexture1D:
			if hdr.Flags&hdrHeight != 0 && hdr.Height != 1 {
				return nil, fmt.Errorf("dds: %w: 1D texture height %d", codec.ErrBadHeader, hdr.Height)
			}
			m.Width, m.Height, m.Depth = int(hdr.Width), 1, 1
			m.Dimension = texmeta.Texture1D

		case dimTexture2D:
			if ext.MiscFlag&dx10MiscCube != 0 {
				m.MiscFlags |= texmeta.MiscTextureCube
				m.ArraySize *= 6
			}
			m.Width, m.Height, m.Depth = int(hdr.Width), int(hdr.Height), 1
			m.Dimension = texmeta.Texture2D

		case dimTexture3D:
			if hdr.Flags&hdrDepth == 0 {
				return nil, fmt.Errorf("dds: %w: volume without depth", codec.ErrBadHeader)
			}
			if m.ArraySize > 1 {
				return nil, fmt.Errorf("dds: %w: volume array", codec.ErrUnsupported)
			}
			m.Width, m.Height, m.Depth = int(hdr.Width), int(hdr.Height), int(hdr.Depth)
			m.Dimension = texmeta.Texture3D

		default:
			return nil, fmt.Errorf("dds: %w: resource dimension %d", codec.ErrBadHeader, ext.Dimension)
		}
	} else {
		f, premul, expand := legacyFormat(&hdr.PixelFormat)
		if f == dxgi.FormatUnknown {
			return nil, fmt.Errorf("dds: %w: legacy pixel format flags %#x fourcc %#x bits %d",
				codec.ErrUnsupported, hdr.PixelFormat.Flags, hdr.PixelFormat.FourCC, hdr.PixelFormat.RGBBitCount)
		}
		m.Format = f
		p.expand24 = expand
		if premul {
			m.SetAlphaMode(texmeta.AlphaModePremultiplied)
		}
		m.ArraySize = 1

		switch {
		case hdr.Flags&hdrDepth != 0 || hdr.Caps2&caps2Volume != 0:
			m.Width, m.Height, m.Depth = int(hdr.Width), int(hdr.Height), max(1, int(hdr.Depth))
			m.Dimension = texmeta.Texture3D

		case hdr.Caps2&caps2Cubemap != 0:
			if hdr.Caps2&caps2AllFaces != caps2AllFaces {
				return nil, fmt.Errorf("dds: %w: partial cube map", codec.ErrUnsupported)
			}
			m.Width, m.Height, m.Depth = int(hdr.Width), int(hdr.Height), 1
			m.ArraySize = 6
			m.MiscFlags |= texmeta.MiscTextureCube
			m.Dimension = texmeta.Texture2D

		default:
			m.Width, m.Height, m.Depth = int(hdr.Width), int(hdr.Height), 1
			m.Dimension = texmeta.Texture2D
		}
	}

	norm, err := texmeta.Normalize(p.meta)
	if err != nil {
		return nil, fmt.Errorf("dds: %w: %v", codec.ErrBadHeader, err)
	}
	if flags&FlagsAllowLargeFiles == 0 {
		if err := texmeta.CheckLimits(norm); err != nil {
			return nil, fmt.Errorf("dds: %w", err)
		}
	}
	p.meta = norm
	return p, nil
}

// Decode reads a DDS file. It returns the metadata and the pixel arena in
// texmeta.Layout order with tightly packed rows.
func Decode(data []byte, flags Flags) (texmeta.Metadata, []byte, error) {
	p, err := parse(data, flags)
	if err != nil {
		return texmeta.Metadata{}, nil, err
	}

	// The layout of the payload as stored in the file.
	srcMeta := p.meta
	var cp dxgi.CPFlags
	if p.expand24 {
		srcMeta.Format = dxgi.FormatB8G8R8X8Unorm
		cp |= dxgi.CPFlags24BPP
	}
	if flags&FlagsLegacyDWORD != 0 {
		cp |= dxgi.CPFlagsLegacyDWORD
	}
	if flags&FlagsBadDXTNTails != 0 {
		cp |= dxgi.CPFlagsBadDXTNTails
	}
	// Size the payload before building any table so a short file with a
	// huge header costs nothing.
	srcSize, err := texmeta.ArenaSize(srcMeta, cp)
	if err != nil {
		return texmeta.Metadata{}, nil, fmt.Errorf("dds: %w", err)
	}
	payload := data[p.offset:]
	if len(payload) < srcSize {
		return texmeta.Metadata{}, nil, fmt.Errorf("dds: %w: %d of %d pixel bytes",
			codec.ErrTruncated, len(payload), srcSize)
	}

	dstSubs, dstSize, err := texmeta.Layout(p.meta, dxgi.CPFlagsNone)
	if err != nil {
		return texmeta.Metadata{}, nil, fmt.Errorf("dds: %w", err)
	}
	srcSubs, _, err := texmeta.Layout(srcMeta, cp)
	if err != nil {
		return texmeta.Metadata{}, nil, fmt.Errorf("dds: %w", err)
	}

	if cp == dxgi.CPFlagsNone {
		out := make([]byte, dstSize)
		copy(out, payload[:dstSize])
		return p.meta, out, nil
	}

	out := make([]byte, dstSize)
	for i, d := range dstSubs {
		s := srcSubs[i]
		rows := dxgi.ComputeScanlines(p.meta.Format, d.Height)
		dst := out[d.Offset : d.Offset+d.SlicePitch]
		src := payload[s.Offset : s.Offset+s.SlicePitch]
		if p.expand24 {
			expandBGR24(dst, d.RowPitch, src, s.RowPitch, d.Width, rows)
			continue
		}
		if s.SlicePitch == 0 {
			continue
		}
		codec.CopyRows(dst, d.RowPitch, src, s.RowPitch, min(rows, s.SlicePitch/s.RowPitch))
	}
	return p.meta, out, nil
}

// expandBGR24 widens 24-bit BGR rows to RGBA8 with opaque alpha.
func expandBGR24(dst []byte, dstPitch int, src []byte, srcPitch, width, rows int) {
	for y := 0; y < rows; y++ {
		d := dst[y*dstPitch:]
		s := src[y*srcPitch:]
		for x := 0; x < width; x++ {
			d[x*4+0] = s[x*3+2]
			d[x*4+1] = s[x*3+1]
			d[x*4+2] = s[x*3+0]
			d[x*4+3] = 0xff
		}
	}
}
