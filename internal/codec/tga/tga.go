// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package tga reads and writes Truevision TGA images: uncompressed and RLE
// true-color and grayscale, in either vertical origin.
package tga

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/gogpu/dxtex/dxgi"
	"github.com/gogpu/dxtex/internal/codec"
	"github.com/gogpu/dxtex/internal/texmeta"
)

// Flags control TGA reading. Values match the root package's TGAFlags.
type Flags uint32

const (
	FlagsNone Flags = 0

	// FlagsBGR keeps 24 and 32 bit images in BGR order instead of swizzling
	// them to RGBA.
	FlagsBGR Flags = 0x1

	// FlagsAllowAllZeroAlpha keeps an alpha channel that is zero everywhere
	// instead of treating it as opaque.
	FlagsAllowAllZeroAlpha Flags = 0x2
)

const headerSize = 18

// TGA 2.0 extension area and footer.
const (
	extensionSize  = 495
	footerSize     = 26
	footerMagic    = "TRUEVISION-XFILE.\x00"
	attrOffset     = 494
	attrNone       = 0
	attrRetain     = 2
	attrAlpha      = 3
	attrPremultAlp = 4
)

// Image types.
const (
	typeTrueColor    = 2
	typeGray         = 3
	typeTrueColorRLE = 10
	typeGrayRLE      = 11
)

// Descriptor bits.
const (
	descAlphaBits  = 0x0f
	descRightLeft  = 0x10
	descTopOrigin  = 0x20
	descInterleave = 0xc0
)

type header struct {
	IDLength     uint8
	ColorMapType uint8
	ImageType    uint8
	ColorMap     [5]uint8
	XOrigin      uint16
	YOrigin      uint16
	Width        uint16
	Height       uint16
	BitsPerPixel uint8
	Descriptor   uint8
}

type parsed struct {
	hdr  header
	meta texmeta.Metadata
}

func parse(data []byte, flags Flags) (*parsed, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("tga: %w: %d bytes", codec.ErrTruncated, len(data))
	}
	p := &parsed{}
	h := &p.hdr
	h.IDLength = data[0]
	h.ColorMapType = data[1]
	h.ImageType = data[2]
	copy(h.ColorMap[:], data[3:8])
	h.XOrigin = binary.LittleEndian.Uint16(data[8:])
	h.YOrigin = binary.LittleEndian.Uint16(data[10:])
	h.Width = binary.LittleEndian.Uint16(data[12:])
	h.Height = binary.LittleEndian.Uint16(data[14:])
	h.BitsPerPixel = data[16]
	h.Descriptor = data[17]

	if h.ColorMapType != 0 {
		return nil, fmt.Errorf("tga: %w: color-mapped image", codec.ErrUnsupported)
	}
	if h.Descriptor&(descInterleave|descRightLeft) != 0 {
		return nil, fmt.Errorf("tga: %w: descriptor %#x", codec.ErrUnsupported, h.Descriptor)
	}
	if h.Width == 0 || h.Height == 0 {
		return nil, fmt.Errorf("tga: %w: %dx%d", codec.ErrBadHeader, h.Width, h.Height)
	}

	m := &p.meta
	m.Width, m.Height, m.Depth = int(h.Width), int(h.Height), 1
	m.ArraySize, m.MipLevels = 1, 1
	m.Dimension = texmeta.Texture2D

	switch h.ImageType {
	case typeTrueColor, typeTrueColorRLE:
		switch h.BitsPerPixel {
		case 16:
			m.Format = dxgi.FormatB5G5R5A1Unorm
		case 24:
			m.Format = dxgi.FormatR8G8B8A8Unorm
			if flags&FlagsBGR != 0 {
				m.Format = dxgi.FormatB8G8R8X8Unorm
			}
			m.SetAlphaMode(texmeta.AlphaModeOpaque)
		case 32:
			m.Format = dxgi.FormatR8G8B8A8Unorm
			if flags&FlagsBGR != 0 {
				m.Format = dxgi.FormatB8G8R8A8Unorm
			}
		default:
			return nil, fmt.Errorf("tga: %w: %d bit true-color", codec.ErrUnsupported, h.BitsPerPixel)
		}
	case typeGray, typeGrayRLE:
		if h.BitsPerPixel != 8 {
			return nil, fmt.Errorf("tga: %w: %d bit grayscale", codec.ErrUnsupported, h.BitsPerPixel)
		}
		m.Format = dxgi.FormatR8Unorm
	default:
		return nil, fmt.Errorf("tga: %w: image type %d", codec.ErrUnsupported, h.ImageType)
	}

	if m.Format != dxgi.FormatR8Unorm && h.BitsPerPixel != 24 {
		switch extensionAttributes(data) {
		case attrAlpha:
			m.SetAlphaMode(texmeta.AlphaModeStraight)
		case attrPremultAlp:
			m.SetAlphaMode(texmeta.AlphaModePremultiplied)
		}
	}
	return p, nil
}

// extensionAttributes returns the attributes type of a TGA 2.0 extension
// area, or -1 if the file has none.
func extensionAttributes(data []byte) int {
	if len(data) < headerSize+footerSize {
		return -1
	}
	footer := data[len(data)-footerSize:]
	if string(footer[8:]) != footerMagic {
		return -1
	}
	off := int(binary.LittleEndian.Uint32(footer))
	if off < headerSize || off+extensionSize > len(data)-footerSize ||
		binary.LittleEndian.Uint16(data[off:]) != extensionSize {
		return -1
	}
	return int(data[off+attrOffset])
}

// Metadata reads only the header and the TGA 2.0 extension area. The alpha
// mode comes from those alone: 24-bit images report opaque, an extension
// area may report straight or premultiplied alpha, everything else is
// unknown.
func Metadata(data []byte, flags Flags) (texmeta.Metadata, error) {
	p, err := parse(data, flags)
	if err != nil {
		return texmeta.Metadata{}, err
	}
	return p.meta, nil
}

// Decode reads a TGA image into a single tightly packed surface. Unlike
// Metadata it inspects the alpha channel: if every alpha value is 255 the
// image is reported opaque, and if every value is zero the channel is
// filled with 255 and reported opaque too (unless FlagsAllowAllZeroAlpha).
func Decode(data []byte, flags Flags) (texmeta.Metadata, []byte, error) {
	p, err := parse(data, flags)
	if err != nil {
		return texmeta.Metadata{}, nil, err
	}
	h := &p.hdr
	src := data[headerSize:]
	if len(src) < int(h.IDLength) {
		return texmeta.Metadata{}, nil, fmt.Errorf("tga: %w: image id", codec.ErrTruncated)
	}
	src = src[h.IDLength:]

	w, ht := int(h.Width), int(h.Height)
	bpp := int(h.BitsPerPixel) / 8
	rle := h.ImageType == typeTrueColorRLE || h.ImageType == typeGrayRLE
	if need := minPixelBytes(w*ht, bpp, rle); len(src) < need {
		return texmeta.Metadata{}, nil, fmt.Errorf("tga: %w: %d of at least %d pixel bytes",
			codec.ErrTruncated, len(src), need)
	}
	raw := make([]byte, w*ht*bpp)
	if rle {
		if err := unpackRLE(raw, src, bpp); err != nil {
			return texmeta.Metadata{}, nil, err
		}
	} else {
		copy(raw, src)
	}

	row, _, err := dxgi.ComputePitch(p.meta.Format, w, ht, dxgi.CPFlagsNone)
	if err != nil {
		return texmeta.Metadata{}, nil, fmt.Errorf("tga: %w", err)
	}
	out := make([]byte, row*ht)
	topDown := h.Descriptor&descTopOrigin != 0
	for y := 0; y < ht; y++ {
		sy := y
		if !topDown {
			sy = ht - 1 - y
		}
		s := raw[sy*w*bpp : (sy+1)*w*bpp]
		d := out[y*row : (y+1)*row]
		convertRow(d, s, w, bpp, flags)
	}

	if bpp == 4 || bpp == 2 {
		switch scanAlpha(out, p.meta.Format, w*ht) {
		case alphaAllOpaque:
			p.meta.SetAlphaMode(texmeta.AlphaModeOpaque)
		case alphaAllZero:
			if flags&FlagsAllowAllZeroAlpha == 0 {
				fillAlpha(out, p.meta.Format, w*ht)
				p.meta.SetAlphaMode(texmeta.AlphaModeOpaque)
			}
		}
	}
	return p.meta, out, nil
}

// minPixelBytes is the smallest encoding of n pixels. An RLE packet covers
// at most 128 pixels with one header byte and one pixel value.
func minPixelBytes(n, bpp int, rle bool) int {
	if !rle {
		return n * bpp
	}
	return (n + 127) / 128 * (1 + bpp)
}

func unpackRLE(dst, src []byte, bpp int) error {
	o, i := 0, 0
	for o < len(dst) {
		if i >= len(src) {
			return fmt.Errorf("tga: %w: RLE packets", codec.ErrTruncated)
		}
		packet := src[i]
		i++
		n := int(packet&0x7f) + 1
		if o+n*bpp > len(dst) {
			return fmt.Errorf("tga: %w: RLE run past end of image", codec.ErrBadHeader)
		}
		if packet&0x80 != 0 {
			if i+bpp > len(src) {
				return fmt.Errorf("tga: %w: RLE packets", codec.ErrTruncated)
			}
			px := src[i : i+bpp]
			i += bpp
			for k := 0; k < n; k++ {
				o += copy(dst[o:], px)
			}
			continue
		}
		if i+n*bpp > len(src) {
			return fmt.Errorf("tga: %w: RLE packets", codec.ErrTruncated)
		}
		o += copy(dst[o:o+n*bpp], src[i:i+n*bpp])
		i += n * bpp
	}
	return nil
}

// convertRow turns one row of file pixels (BGR order) into the loaded
// format.
func convertRow(dst, src []byte, width, bpp int, flags Flags) {
	switch bpp {
	case 1, 2:
		copy(dst, src)
	case 3:
		for x := 0; x < width; x++ {
			b, g, r := src[x*3], src[x*3+1], src[x*3+2]
			if flags&FlagsBGR != 0 {
				dst[x*4], dst[x*4+1], dst[x*4+2] = b, g, r
			} else {
				dst[x*4], dst[x*4+1], dst[x*4+2] = r, g, b
			}
			dst[x*4+3] = 0xff
		}
	case 4:
		if flags&FlagsBGR != 0 {
			copy(dst, src)
			return
		}
		for x := 0; x < width; x++ {
			dst[x*4], dst[x*4+1], dst[x*4+2], dst[x*4+3] = src[x*4+2], src[x*4+1], src[x*4], src[x*4+3]
		}
	}
}

type alphaScan int

const (
	alphaMixed alphaScan = iota
	alphaAllOpaque
	alphaAllZero
)

func alphaAt(pix []byte, f dxgi.Format, i int) (v, maxV uint8) {
	if f == dxgi.FormatB5G5R5A1Unorm {
		return pix[i*2+1] >> 7, 1
	}
	return pix[i*4+3], 0xff
}

func scanAlpha(pix []byte, f dxgi.Format, n int) alphaScan {
	opaque, zero := true, true
	for i := 0; i < n && (opaque || zero); i++ {
		a, maxA := alphaAt(pix, f, i)
		opaque = opaque && a == maxA
		zero = zero && a == 0
	}
	switch {
	case opaque:
		return alphaAllOpaque
	case zero:
		return alphaAllZero
	}
	return alphaMixed
}

func fillAlpha(pix []byte, f dxgi.Format, n int) {
	for i := 0; i < n; i++ {
		if f == dxgi.FormatB5G5R5A1Unorm {
			pix[i*2+1] |= 0x80
		} else {
			pix[i*4+3] = 0xff
		}
	}
}

// Encode writes s as an uncompressed top-down TGA. R8G8B8A8, B8G8R8A8,
// B8G8R8X8, B5G5R5A1 and R8 (or A8) surfaces are accepted; callers convert
// anything else first. A non-nil meta adds a TGA 2.0 extension area
// recording its alpha mode.
func Encode(w io.Writer, s *texmeta.Surface, meta *texmeta.Metadata) error {
	var bpp, imageType, desc uint8
	switch s.Format {
	case dxgi.FormatR8G8B8A8Unorm, dxgi.FormatR8G8B8A8UnormSRGB,
		dxgi.FormatB8G8R8A8Unorm, dxgi.FormatB8G8R8A8UnormSRGB:
		bpp, imageType, desc = 32, typeTrueColor, 8
	case dxgi.FormatB8G8R8X8Unorm, dxgi.FormatB8G8R8X8UnormSRGB:
		bpp, imageType = 24, typeTrueColor
	case dxgi.FormatB5G5R5A1Unorm:
		bpp, imageType, desc = 16, typeTrueColor, 1
	case dxgi.FormatR8Unorm, dxgi.FormatA8Unorm:
		bpp, imageType = 8, typeGray
	default:
		return fmt.Errorf("tga: %w: format %v", codec.ErrUnsupported, s.Format)
	}
	if s.Width <= 0 || s.Height <= 0 || s.Width > 0xffff || s.Height > 0xffff {
		return fmt.Errorf("tga: %w: %dx%d", codec.ErrInvalidImage, s.Width, s.Height)
	}
	pix, row, err := codec.Tight(s)
	if err != nil {
		return fmt.Errorf("tga: %w", err)
	}

	var hdr [headerSize]byte
	hdr[2] = imageType
	binary.LittleEndian.PutUint16(hdr[12:], uint16(s.Width))
	binary.LittleEndian.PutUint16(hdr[14:], uint16(s.Height))
	hdr[16] = bpp
	hdr[17] = desc | descTopOrigin

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(hdr[:]); err != nil {
		return err
	}
	line := make([]byte, s.Width*int(bpp/8))
	for y := 0; y < s.Height; y++ {
		src := pix[y*row : y*row+row]
		switch s.Format {
		case dxgi.FormatR8G8B8A8Unorm, dxgi.FormatR8G8B8A8UnormSRGB:
			for x := 0; x < s.Width; x++ {
				line[x*4], line[x*4+1], line[x*4+2], line[x*4+3] = src[x*4+2], src[x*4+1], src[x*4], src[x*4+3]
			}
		case dxgi.FormatB8G8R8X8Unorm, dxgi.FormatB8G8R8X8UnormSRGB:
			for x := 0; x < s.Width; x++ {
				copy(line[x*3:x*3+3], src[x*4:x*4+3])
			}
		default:
			copy(line, src)
		}
		if _, err := bw.Write(line); err != nil {
			return err
		}
	}
	if meta != nil {
		offset := headerSize + len(line)*s.Height
		if err := writeExtension(bw, offset, attributesFor(meta, bpp)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func attributesFor(meta *texmeta.Metadata, bpp uint8) byte {
	if bpp == 24 || bpp == 8 {
		return attrNone
	}
	switch meta.AlphaMode() {
	case texmeta.AlphaModeStraight:
		return attrAlpha
	case texmeta.AlphaModePremultiplied:
		return attrPremultAlp
	case texmeta.AlphaModeOpaque:
		return attrNone
	}
	return attrRetain
}

func writeExtension(w io.Writer, offset int, attr byte) error {
	var ext [extensionSize]byte
	binary.LittleEndian.PutUint16(ext[:], extensionSize)
	ext[attrOffset] = attr

	var footer [footerSize]byte
	binary.LittleEndian.PutUint32(footer[:], uint32(offset))
	copy(footer[8:], footerMagic)

	if _, err := w.Write(ext[:]); err != nil {
		return err
	}
	_, err := w.Write(footer[:])
	return err
}
