// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package exr

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/mrjoshuak/go-openexr/compression"
	openexr "github.com/mrjoshuak/go-openexr/exr"

	"github.com/gogpu/dxtex/dxgi"
	"github.com/gogpu/dxtex/internal/codec"
	"github.com/gogpu/dxtex/internal/pixel"
	"github.com/gogpu/dxtex/internal/texmeta"
)

const (
	// Lines per chunk for ZIP compression.
	zipLines = 16
	zipLevel = 6

	compressionZIP = 3
	pixelTypeHalf  = 1
)

// Channels in file order, with their slot in an RGBA half pixel.
var writeChannels = [...]struct {
	name string
	slot int
}{{"A", 3}, {"B", 2}, {"G", 1}, {"R", 0}}

// Encode writes s as a scanline EXR with half R, G, B and A channels and
// ZIP compression. Any format the pixel package can load is accepted.
func Encode(w io.Writer, s *texmeta.Surface) error {
	if !pixel.Supported(s.Format) || s.Format.IsCompressed() {
		return fmt.Errorf("exr: %w: format %v", codec.ErrUnsupported, s.Format)
	}
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("exr: %w: %dx%d", codec.ErrInvalidImage, s.Width, s.Height)
	}

	width, height := s.Width, s.Height
	lineBytes := width * 2 * len(writeChannels)
	rgba := make([]float32, width*4)
	halves := make([]byte, width*8)

	nchunks := (height + zipLines - 1) / zipLines
	chunks := make([][]byte, nchunks)
	for ci := range chunks {
		y0 := ci * zipLines
		lines := min(zipLines, height-y0)
		raw := make([]byte, lineBytes*lines)
		for ly := 0; ly < lines; ly++ {
			row := s.Row(y0 + ly)
			if row == nil {
				return fmt.Errorf("exr: %w: row %d outside pixels", codec.ErrInvalidImage, y0+ly)
			}
			if err := pixel.LoadRow(rgba, row, width, s.Format); err != nil {
				return fmt.Errorf("exr: %w", err)
			}
			if err := pixel.StoreRow(halves, rgba, width, dxgi.FormatR16G16B16A16Float); err != nil {
				return fmt.Errorf("exr: %w", err)
			}
			line := raw[ly*lineBytes:]
			for c, ch := range writeChannels {
				dst := line[c*width*2:]
				for x := 0; x < width; x++ {
					copy(dst[x*2:x*2+2], halves[x*8+ch.slot*2:])
				}
			}
		}

		packed, err := compressChunk(raw)
		if err != nil {
			return fmt.Errorf("exr: %w", err)
		}
		chunk := make([]byte, 8+len(packed))
		binary.LittleEndian.PutUint32(chunk, uint32(y0))
		binary.LittleEndian.PutUint32(chunk[4:], uint32(len(packed)))
		copy(chunk[8:], packed)
		chunks[ci] = chunk
	}

	var buf bytes.Buffer
	buf.Write(openexr.MagicNumber)
	writeU32(&buf, 2)
	writeHeader(&buf, width, height)

	offset := uint64(buf.Len() + 8*nchunks)
	for _, c := range chunks {
		writeU64(&buf, offset)
		offset += uint64(len(c))
	}
	for _, c := range chunks {
		buf.Write(c)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// compressChunk applies the ZIP chunk transform. Chunks that do not shrink
// are stored raw.
func compressChunk(raw []byte) ([]byte, error) {
	tmp := interleave(raw)
	predictEncode(tmp)
	packed, err := compression.ZIPCompressLevel(tmp, zipLevel)
	if err != nil {
		return nil, err
	}
	if len(packed) >= len(raw) {
		return raw, nil
	}
	return packed, nil
}

func writeHeader(buf *bytes.Buffer, width, height int) {
	var chlist bytes.Buffer
	for _, ch := range writeChannels {
		chlist.WriteString(ch.name)
		chlist.WriteByte(0)
		writeU32(&chlist, pixelTypeHalf)
		chlist.Write([]byte{0, 0, 0, 0}) // pLinear and reserved
		writeU32(&chlist, 1)
		writeU32(&chlist, 1)
	}
	chlist.WriteByte(0)

	var window bytes.Buffer
	for _, v := range []int{0, 0, width - 1, height - 1} {
		writeU32(&window, uint32(v))
	}

	var one, zero2 bytes.Buffer
	writeU32(&one, math.Float32bits(1))
	zero2.Write(make([]byte, 8))

	attr := func(name, typ string, value []byte) {
		buf.WriteString(name)
		buf.WriteByte(0)
		buf.WriteString(typ)
		buf.WriteByte(0)
		writeU32(buf, uint32(len(value)))
		buf.Write(value)
	}
	attr("channels", "chlist", chlist.Bytes())
	attr("compression", "compression", []byte{compressionZIP})
	attr("dataWindow", "box2i", window.Bytes())
	attr("displayWindow", "box2i", window.Bytes())
	attr("lineOrder", "lineOrder", []byte{0})
	attr("pixelAspectRatio", "float", one.Bytes())
	attr("screenWindowCenter", "v2f", zero2.Bytes())
	attr("screenWindowWidth", "float", one.Bytes())
	buf.WriteByte(0)
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeU64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}
