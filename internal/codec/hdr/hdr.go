// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package hdr reads and writes Radiance RGBE (.hdr) images.
package hdr

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/gogpu/dxtex/dxgi"
	"github.com/gogpu/dxtex/internal/codec"
	"github.com/gogpu/dxtex/internal/pixel"
	"github.com/gogpu/dxtex/internal/texmeta"
)

const (
	magicRadiance = "#?RADIANCE"
	magicRGBE     = "#?RGBE"
	formatRGBE    = "32-bit_rle_rgbe"

	// New-style RLE applies to widths in this range.
	minRLEWidth = 8
	maxRLEWidth = 0x7fff

	// Shortest run worth encoding as a run.
	minRun = 4
)

type parsed struct {
	meta     texmeta.Metadata
	bottomUp bool
	offset   int
}

func parse(data []byte) (*parsed, error) {
	p := &parsed{}
	line, rest, ok := nextLine(data)
	if !ok {
		return nil, fmt.Errorf("hdr: %w: header", codec.ErrTruncated)
	}
	if line != magicRadiance && line != magicRGBE {
		return nil, fmt.Errorf("hdr: %w: magic %q", codec.ErrBadHeader, truncate(line))
	}

	for {
		line, rest, ok = nextLine(rest)
		if !ok {
			return nil, fmt.Errorf("hdr: %w: header", codec.ErrTruncated)
		}
		if line == "" {
			break
		}
		if v, found := strings.CutPrefix(line, "FORMAT="); found && v != formatRGBE {
			return nil, fmt.Errorf("hdr: %w: format %q", codec.ErrUnsupported, v)
		}
	}

	line, rest, ok = nextLine(rest)
	if !ok {
		return nil, fmt.Errorf("hdr: %w: resolution", codec.ErrTruncated)
	}
	fields := strings.Fields(line)
	if len(fields) != 4 || fields[2] != "+X" || (fields[0] != "-Y" && fields[0] != "+Y") {
		return nil, fmt.Errorf("hdr: %w: resolution %q", codec.ErrUnsupported, truncate(line))
	}
	h, errH := strconv.Atoi(fields[1])
	w, errW := strconv.Atoi(fields[3])
	if errH != nil || errW != nil || w <= 0 || h <= 0 {
		return nil, fmt.Errorf("hdr: %w: resolution %q", codec.ErrBadHeader, truncate(line))
	}
	if w > texmeta.MaxTextureDimension2D || h > texmeta.MaxTextureDimension2D {
		return nil, fmt.Errorf("hdr: %w: %dx%d exceeds %d", codec.ErrUnsupported, w, h, texmeta.MaxTextureDimension2D)
	}

	p.bottomUp = fields[0] == "+Y"
	p.offset = len(data) - len(rest)
	p.meta = texmeta.Metadata{
		Width:     w,
		Height:    h,
		Depth:     1,
		ArraySize: 1,
		MipLevels: 1,
		Format:    dxgi.FormatR32G32B32A32Float,
		Dimension: texmeta.Texture2D,
	}
	p.meta.SetAlphaMode(texmeta.AlphaModeOpaque)
	return p, nil
}

func nextLine(b []byte) (string, []byte, bool) {
	i := bytes.IndexByte(b, '\n')
	if i < 0 {
		return "", nil, false
	}
	return strings.TrimRight(string(b[:i]), "\r"), b[i+1:], true
}

func truncate(s string) string {
	if len(s) > 32 {
		return s[:32]
	}
	return s
}

// Metadata reads only the header.
func Metadata(data []byte) (texmeta.Metadata, error) {
	p, err := parse(data)
	if err != nil {
		return texmeta.Metadata{}, err
	}
	return p.meta, nil
}

// Decode reads an image as tightly packed R32G32B32A32_FLOAT with alpha 1.
func Decode(data []byte) (texmeta.Metadata, []byte, error) {
	p, err := parse(data)
	if err != nil {
		return texmeta.Metadata{}, nil, err
	}
	w, h := p.meta.Width, p.meta.Height
	src := data[p.offset:]
	if need := h * minScanline(w); len(src) < need {
		return texmeta.Metadata{}, nil, fmt.Errorf("hdr: %w: %d of at least %d pixel bytes",
			codec.ErrTruncated, len(src), need)
	}

	rgbe := make([]byte, w*4)
	out := make([]byte, w*h*16)
	for y := 0; y < h; y++ {
		src, err = readScanline(rgbe, src, w)
		if err != nil {
			return texmeta.Metadata{}, nil, fmt.Errorf("hdr: scanline %d: %w", y, err)
		}
		dy := y
		if p.bottomUp {
			dy = h - 1 - y
		}
		row := out[dy*w*16 : (dy+1)*w*16]
		for x := 0; x < w; x++ {
			r, g, b := fromRGBE(rgbe[x*4 : x*4+4])
			binary.LittleEndian.PutUint32(row[x*16:], math.Float32bits(r))
			binary.LittleEndian.PutUint32(row[x*16+4:], math.Float32bits(g))
			binary.LittleEndian.PutUint32(row[x*16+8:], math.Float32bits(b))
			binary.LittleEndian.PutUint32(row[x*16+12:], math.Float32bits(1))
		}
	}
	return p.meta, out, nil
}

// minScanline is the smallest encoding of a scanline: one flat pixel
// followed, for wider rows, by at least one repeat marker.
func minScanline(w int) int {
	if w == 1 {
		return 4
	}
	return 8
}

// readScanline decodes one scanline of w pixels into dst and returns the
// remaining input.
func readScanline(dst, src []byte, w int) ([]byte, error) {
	if w < minRLEWidth || w > maxRLEWidth || len(src) < 4 ||
		src[0] != 2 || src[1] != 2 || src[2]&0x80 != 0 {
		return readFlat(dst, src, w)
	}
	if int(src[2])<<8|int(src[3]) != w {
		return nil, fmt.Errorf("%w: scanline width", codec.ErrBadHeader)
	}
	src = src[4:]

	for ch := 0; ch < 4; ch++ {
		for x := 0; x < w; {
			if len(src) == 0 {
				return nil, codec.ErrTruncated
			}
			n := int(src[0])
			if n > 128 {
				n -= 128
				if n == 0 || x+n > w || len(src) < 2 {
					return nil, fmt.Errorf("%w: bad run", codec.ErrBadHeader)
				}
				for k := 0; k < n; k++ {
					dst[(x+k)*4+ch] = src[1]
				}
				src = src[2:]
			} else {
				if n == 0 || x+n > w {
					return nil, fmt.Errorf("%w: bad literal", codec.ErrBadHeader)
				}
				if len(src) < 1+n {
					return nil, codec.ErrTruncated
				}
				for k := 0; k < n; k++ {
					dst[(x+k)*4+ch] = src[1+k]
				}
				src = src[1+n:]
			}
			x += n
		}
	}
	return src, nil
}

// readFlat decodes uncompressed pixels, honoring old-style (1,1,1,n)
// repeat markers.
func readFlat(dst, src []byte, w int) ([]byte, error) {
	shift := 0
	for x := 0; x < w; {
		if len(src) < 4 {
			return nil, codec.ErrTruncated
		}
		px := src[:4]
		src = src[4:]
		if px[0] == 1 && px[1] == 1 && px[2] == 1 {
			if x == 0 {
				return nil, fmt.Errorf("%w: repeat at scanline start", codec.ErrBadHeader)
			}
			n := int(px[3]) << shift
			if x+n > w {
				return nil, fmt.Errorf("%w: bad repeat", codec.ErrBadHeader)
			}
			for k := 0; k < n; k++ {
				copy(dst[(x+k)*4:], dst[(x-1)*4:x*4])
			}
			x += n
			shift += 8
			continue
		}
		copy(dst[x*4:], px)
		x++
		shift = 0
	}
	return src, nil
}

func fromRGBE(p []byte) (r, g, b float32) {
	if p[3] == 0 {
		return 0, 0, 0
	}
	f := float32(math.Ldexp(1, int(p[3])-(128+8)))
	return float32(p[0]) * f, float32(p[1]) * f, float32(p[2]) * f
}

func toRGBE(dst []byte, r, g, b float32) {
	v := max(r, g, b)
	if !(v >= 1e-32) {
		dst[0], dst[1], dst[2], dst[3] = 0, 0, 0, 0
		return
	}
	m, e := math.Frexp(float64(v))
	scale := m * 256 / float64(v)
	dst[0] = byte(float64(max(r, 0)) * scale)
	dst[1] = byte(float64(max(g, 0)) * scale)
	dst[2] = byte(float64(max(b, 0)) * scale)
	dst[3] = byte(e + 128)
}

// Encode writes s as an RLE-compressed Radiance file. Any format the pixel
// package can load is accepted; alpha is dropped.
func Encode(w io.Writer, s *texmeta.Surface) error {
	if !pixel.Supported(s.Format) || s.Format.IsCompressed() {
		return fmt.Errorf("hdr: %w: format %v", codec.ErrUnsupported, s.Format)
	}
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("hdr: %w: %dx%d", codec.ErrInvalidImage, s.Width, s.Height)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\nFORMAT=%s\n\n-Y %d +X %d\n", magicRadiance, formatRGBE, s.Height, s.Width)

	rgba := make([]float32, s.Width*4)
	rgbe := make([]byte, s.Width*4)
	for y := 0; y < s.Height; y++ {
		row := s.Row(y)
		if row == nil {
			return fmt.Errorf("hdr: %w: row %d outside pixels", codec.ErrInvalidImage, y)
		}
		if err := pixel.LoadRow(rgba, row, s.Width, s.Format); err != nil {
			return fmt.Errorf("hdr: %w", err)
		}
		for x := 0; x < s.Width; x++ {
			toRGBE(rgbe[x*4:], rgba[x*4], rgba[x*4+1], rgba[x*4+2])
		}
		if err := writeScanline(bw, rgbe, s.Width); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeScanline(w *bufio.Writer, rgbe []byte, width int) error {
	if width < minRLEWidth || width > maxRLEWidth {
		_, err := w.Write(rgbe)
		return err
	}
	if _, err := w.Write([]byte{2, 2, byte(width >> 8), byte(width)}); err != nil {
		return err
	}
	plane := make([]byte, width)
	for ch := 0; ch < 4; ch++ {
		for x := range plane {
			plane[x] = rgbe[x*4+ch]
		}
		if err := writeRLE(w, plane); err != nil {
			return err
		}
	}
	return nil
}

// writeRLE encodes one channel plane with runs of at most 127 and
// literals of at most 128 bytes.
func writeRLE(w *bufio.Writer, b []byte) error {
	for i := 0; i < len(b); {
		// Find the next run of at least minRun equal bytes.
		runStart, runLen := len(b), 0
		for j := i; j < len(b); {
			k := j + 1
			for k < len(b) && b[k] == b[j] && k-j < 127 {
				k++
			}
			if k-j >= minRun {
				runStart, runLen = j, k-j
				break
			}
			j = k
		}

		for i < runStart {
			n := min(128, runStart-i)
			if err := w.WriteByte(byte(n)); err != nil {
				return err
			}
			if _, err := w.Write(b[i : i+n]); err != nil {
				return err
			}
			i += n
		}
		if runLen > 0 {
			if _, err := w.Write([]byte{byte(128 + runLen), b[runStart]}); err != nil {
				return err
			}
			i = runStart + runLen
		}
	}
	return nil
}
