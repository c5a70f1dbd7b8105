// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package exr reads and writes single-part scanline OpenEXR images.
//
// Files are opened with github.com/mrjoshuak/go-openexr, which parses the
// header and offset table and provides the zlib and RLE codecs. Chunks
// compressed with NONE, RLE, ZIPS or ZIP are supported.
package exr

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/ajroetker/go-highway/hwy"
	"github.com/mrjoshuak/go-openexr/compression"
	openexr "github.com/mrjoshuak/go-openexr/exr"

	"github.com/gogpu/dxtex/dxgi"
	"github.com/gogpu/dxtex/internal/codec"
	"github.com/gogpu/dxtex/internal/texmeta"
)

// halfOne is 1.0 as an IEEE half.
const halfOne = 0x3c00

// channel is one file channel mapped to an RGBA slot.
type channel struct {
	slot int // 0-3 for R, G, B, A; 4 for luminance; -1 skipped
	typ  openexr.PixelType
	size int
}

type image struct {
	file     *openexr.File
	header   *openexr.Header
	meta     texmeta.Metadata
	channels []channel // file order
}

func open(data []byte) (*image, error) {
	f, err := openexr.OpenReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("exr: %w: %v", codec.ErrBadHeader, err)
	}
	v := f.VersionField()
	if f.NumParts() != 1 || f.IsMultiPart() || openexr.IsTiled(v) || openexr.IsDeep(v) {
		return nil, fmt.Errorf("exr: %w: only single-part scanline images", codec.ErrUnsupported)
	}
	h := f.Header(0)
	if h == nil {
		return nil, fmt.Errorf("exr: %w: missing header", codec.ErrBadHeader)
	}

	img := &image{file: f, header: h}
	dw := h.DataWindow()
	width, height := int(dw.Width()), int(dw.Height())
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("exr: %w: data window %dx%d", codec.ErrBadHeader, width, height)
	}
	if width > texmeta.MaxTextureDimension2D || height > texmeta.MaxTextureDimension2D {
		return nil, fmt.Errorf("exr: %w: data window %dx%d exceeds %d",
			codec.ErrUnsupported, width, height, texmeta.MaxTextureDimension2D)
	}

	allHalf := true
	hasColor, hasLum, hasAlpha := false, false, false
	list := h.Channels()
	if list == nil || list.Len() == 0 {
		return nil, fmt.Errorf("exr: %w: no channels", codec.ErrBadHeader)
	}
	for i := 0; i < list.Len(); i++ {
		ch := list.At(i)
		if ch.XSampling != 1 || ch.YSampling != 1 {
			return nil, fmt.Errorf("exr: %w: subsampled channel %q", codec.ErrUnsupported, ch.Name)
		}
		c := channel{slot: -1, typ: ch.Type, size: ch.Type.Size()}
		switch ch.Name {
		case "R":
			c.slot, hasColor = 0, true
		case "G":
			c.slot, hasColor = 1, true
		case "B":
			c.slot, hasColor = 2, true
		case "A":
			c.slot, hasAlpha = 3, true
		case "Y":
			c.slot, hasLum = 4, true
		}
		if c.slot >= 0 && ch.Type != openexr.PixelTypeHalf {
			allHalf = false
		}
		img.channels = append(img.channels, c)
	}
	if !hasColor && !hasLum && !hasAlpha {
		return nil, fmt.Errorf("exr: %w: no R, G, B, A or Y channel", codec.ErrUnsupported)
	}
	if hasColor && hasLum {
		// Color wins; luminance is ignored.
		for i := range img.channels {
			if img.channels[i].slot == 4 {
				img.channels[i].slot = -1
			}
		}
	}

	img.meta = texmeta.Metadata{
		Width:     width,
		Height:    height,
		Depth:     1,
		ArraySize: 1,
		MipLevels: 1,
		Format:    dxgi.FormatR32G32B32A32Float,
		Dimension: texmeta.Texture2D,
	}
	if allHalf {
		img.meta.Format = dxgi.FormatR16G16B16A16Float
	}
	if !hasAlpha {
		img.meta.SetAlphaMode(texmeta.AlphaModeOpaque)
	}
	return img, nil
}

// Metadata reads the header of an EXR file.
func Metadata(data []byte) (texmeta.Metadata, error) {
	img, err := open(data)
	if err != nil {
		return texmeta.Metadata{}, err
	}
	return img.meta, nil
}

// Decode reads an EXR file into tightly packed R16G16B16A16_FLOAT (all
// channels half) or R32G32B32A32_FLOAT pixels. Missing color channels
// load as 0 and a missing alpha as 1.
func Decode(data []byte) (texmeta.Metadata, []byte, error) {
	img, err := open(data)
	if err != nil {
		return texmeta.Metadata{}, nil, err
	}
	w, h := img.meta.Width, img.meta.Height
	half := img.meta.Format == dxgi.FormatR16G16B16A16Float
	pxSize := 16
	if half {
		pxSize = 8
	}

	lineBytes := 0
	for _, c := range img.channels {
		lineBytes += c.size * w
	}

	comp := img.header.Compression()
	lpc := comp.ScanlinesPerChunk()
	chunks := len(img.file.Offsets(0))
	if chunks != (h+lpc-1)/lpc {
		return texmeta.Metadata{}, nil, fmt.Errorf("exr: %w: %d chunks for %d lines", codec.ErrBadHeader, chunks, h)
	}
	need := 0
	for y0 := 0; y0 < h; y0 += lpc {
		need += chunkHeaderSize + minPacked(comp, lineBytes*min(lpc, h-y0))
	}
	if len(data) < need {
		return texmeta.Metadata{}, nil, fmt.Errorf("exr: %w: %d bytes cannot hold %dx%d pixels",
			codec.ErrTruncated, len(data), w, h)
	}

	out := make([]byte, w*h*pxSize)
	for i := 0; i < w*h; i++ {
		if half {
			binary.LittleEndian.PutUint16(out[i*8+6:], halfOne)
		} else {
			binary.LittleEndian.PutUint32(out[i*16+12:], math.Float32bits(1))
		}
	}

	for ci := 0; ci < chunks; ci++ {
		_, packed, err := img.file.ReadChunk(0, ci)
		if err != nil {
			return texmeta.Metadata{}, nil, fmt.Errorf("exr: %w: chunk %d: %v", codec.ErrTruncated, ci, err)
		}
		y0 := ci * lpc
		lines := min(lpc, h-y0)
		raw, err := uncompress(comp, packed, lineBytes*lines)
		if err != nil {
			return texmeta.Metadata{}, nil, fmt.Errorf("exr: chunk %d: %w", ci, err)
		}

		for ly := 0; ly < lines; ly++ {
			row := out[(y0+ly)*w*pxSize:]
			src := raw[ly*lineBytes:]
			for _, c := range img.channels {
				if c.slot >= 0 {
					storeChannel(row, src, w, c, half)
				}
				src = src[c.size*w:]
			}
		}
	}
	return img.meta, out, nil
}

// storeChannel writes one channel of a line into the RGBA row.
func storeChannel(row, src []byte, w int, c channel, half bool) {
	slots := []int{c.slot}
	if c.slot == 4 {
		slots = []int{0, 1, 2}
	}
	for x := 0; x < w; x++ {
		for _, s := range slots {
			if half {
				// Every mapped channel is half when the output is half.
				bits := binary.LittleEndian.Uint16(src[x*2:])
				binary.LittleEndian.PutUint16(row[x*8+s*2:], bits)
				continue
			}
			binary.LittleEndian.PutUint32(row[x*16+s*4:], math.Float32bits(sample(src, x, c.typ)))
		}
	}
}

func sample(src []byte, x int, t openexr.PixelType) float32 {
	switch t {
	case openexr.PixelTypeHalf:
		return hwy.Float16ToFloat32(hwy.Float16FromBits(binary.LittleEndian.Uint16(src[x*2:])))
	case openexr.PixelTypeFloat:
		return math.Float32frombits(binary.LittleEndian.Uint32(src[x*4:]))
	default:
		return float32(binary.LittleEndian.Uint32(src[x*4:]))
	}
}

// chunkHeaderSize is the line number and packed size preceding each chunk.
const chunkHeaderSize = 8

// maxDeflateRatio is the largest expansion a deflate stream can achieve.
const maxDeflateRatio = 1032

// minPacked returns the fewest bytes that can encode a chunk of size raw
// bytes with comp.
func minPacked(comp openexr.Compression, size int) int {
	switch comp {
	case openexr.CompressionRLE:
		// A run packet is a count byte and a value covering up to 128 bytes.
		return (size + 127) / 128 * 2
	case openexr.CompressionZIPS, openexr.CompressionZIP:
		return size / maxDeflateRatio
	default:
		return size
	}
}

func uncompress(comp openexr.Compression, packed []byte, size int) ([]byte, error) {
	if len(packed) == size {
		// Writers store a chunk raw when compression does not shrink it.
		return packed, nil
	}
	var (
		tmp []byte
		err error
	)
	switch comp {
	case openexr.CompressionNone:
		return nil, fmt.Errorf("%w: %d of %d bytes", codec.ErrTruncated, len(packed), size)
	case openexr.CompressionRLE:
		tmp, err = compression.RLEDecompress(packed, size)
	case openexr.CompressionZIPS, openexr.CompressionZIP:
		tmp, err = compression.ZIPDecompress(packed, size)
	default:
		return nil, fmt.Errorf("%w: compression %v", codec.ErrUnsupported, comp)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", codec.ErrBadHeader, err)
	}
	if len(tmp) != size {
		return nil, fmt.Errorf("%w: %d of %d bytes", codec.ErrTruncated, len(tmp), size)
	}
	predictDecode(tmp)
	return deinterleave(tmp), nil
}

// predictDecode undoes the byte delta predictor.
func predictDecode(b []byte) {
	for i := 1; i < len(b); i++ {
		b[i] = b[i-1] + b[i] - 128
	}
}

// predictEncode applies the byte delta predictor.
func predictEncode(b []byte) {
	if len(b) == 0 {
		return
	}
	p := b[0]
	for i := 1; i < len(b); i++ {
		d := b[i] - p + 128
		p = b[i]
		b[i] = d
	}
}

// deinterleave merges the two half-buffers a compressed chunk is split into.
func deinterleave(b []byte) []byte {
	out := make([]byte, len(b))
	first, second := b[:(len(b)+1)/2], b[(len(b)+1)/2:]
	for i := range out {
		if i%2 == 0 {
			out[i] = first[i/2]
		} else {
			out[i] = second[i/2]
		}
	}
	return out
}

// interleave splits even and odd bytes into two halves.
func interleave(b []byte) []byte {
	out := make([]byte, len(b))
	half := (len(b) + 1) / 2
	for i, v := range b {
		if i%2 == 0 {
			out[i/2] = v
		} else {
			out[half+i/2] = v
		}
	}
	return out
}
