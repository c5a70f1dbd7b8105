// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package bc

import (
	"errors"
	"math"
	"testing"

	"github.com/gogpu/dxtex/dxgi"
)

func flat(r, g, b, a float32) *Block {
	var blk Block
	blk.fill(r, g, b, a)
	return &blk
}

func ramp() *Block {
	var blk Block
	for i := 0; i < 16; i++ {
		v := float32(i) / 15
		blk[i*4], blk[i*4+1], blk[i*4+2], blk[i*4+3] = v, v, v, 1
	}
	return &blk
}

func roundTrip(t *testing.T, f dxgi.Format, in *Block) *Block {
	t.Helper()
	buf := make([]byte, f.BlockBytes())
	if err := EncodeBlock(f, in, buf, Options{}); err != nil {
		t.Fatalf("EncodeBlock(%v): %v", f, err)
	}
	var out Block
	if err := DecodeBlock(f, buf, &out); err != nil {
		t.Fatalf("DecodeBlock(%v): %v", f, err)
	}
	return &out
}

func maxDiff(a, b *Block, channels []int) float32 {
	var d float32
	for i := 0; i < 16; i++ {
		for _, c := range channels {
			d = max(d, float32(math.Abs(float64(a[i*4+c]-b[i*4+c]))))
		}
	}
	return d
}

var rgb = []int{0, 1, 2}

func TestFlatColors(t *testing.T) {
	tests := []struct {
		format   dxgi.Format
		in       *Block
		channels []int
	}{
		{dxgi.FormatBC1Unorm, flat(1, 0, 0, 1), []int{0, 1, 2, 3}},
		{dxgi.FormatBC2Unorm, flat(0, 1, 0, 1), []int{0, 1, 2, 3}},
		{dxgi.FormatBC3Unorm, flat(0, 0, 1, 0.2), []int{0, 1, 2, 3}},
		{dxgi.FormatBC4Unorm, flat(0.4, 0, 0, 1), []int{0}},
		{dxgi.FormatBC4Snorm, flat(-0.4, 0, 0, 1), []int{0}},
		{dxgi.FormatBC5Unorm, flat(0.2, 0.8, 0, 1), []int{0, 1}},
		{dxgi.FormatBC7Unorm, flat(100.0/255, 17.0/255, 250.0/255, 33.0/255), []int{0, 1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			out := roundTrip(t, tt.format, tt.in)
			if d := maxDiff(tt.in, out, tt.channels); d > 0.005 {
				t.Errorf("max error %v", d)
			}
		})
	}
}

func TestGradients(t *testing.T) {
	tests := []struct {
		format   dxgi.Format
		channels []int
		limit    float32
	}{
		// Four palette entries: a 16-step ramp is off by at most half a step.
		{dxgi.FormatBC1Unorm, rgb, 0.17},
		{dxgi.FormatBC3Unorm, rgb, 0.17},
		{dxgi.FormatBC4Unorm, []int{0}, 0.08},
		{dxgi.FormatBC7Unorm, rgb, 0.03},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			out := roundTrip(t, tt.format, ramp())
			if d := maxDiff(ramp(), out, tt.channels); d > tt.limit {
				t.Errorf("max error %v, limit %v", d, tt.limit)
			}
		})
	}
}

func TestBC1Transparency(t *testing.T) {
	in := flat(0.5, 0.5, 0.5, 1)
	in[3] = 0
	in[7] = 0.1
	out := roundTrip(t, dxgi.FormatBC1Unorm, in)
	if out[3] != 0 || out[7] != 0 {
		t.Errorf("transparent pixels decoded with alpha %v, %v", out[3], out[7])
	}
	if out[11] != 1 {
		t.Errorf("opaque pixel alpha = %v", out[11])
	}

	out = roundTrip(t, dxgi.FormatBC1Unorm, flat(1, 1, 1, 0))
	for i := 0; i < 16; i++ {
		if out[i*4+3] != 0 {
			t.Fatalf("pixel %d alpha = %v, want 0", i, out[i*4+3])
		}
	}
}

func TestBC7ReservedMode(t *testing.T) {
	var out Block
	if err := DecodeBlock(dxgi.FormatBC7UnormSRGB, make([]byte, 16), &out); err != nil {
		t.Fatal(err)
	}
	if out != (Block{}) {
		t.Error("reserved mode should decode to transparent black")
	}
}

func TestBC7Mode6Anchor(t *testing.T) {
	in := ramp()
	// Reverse the ramp so the first pixel sits at the bright end.
	for i := 0; i < 8; i++ {
		for c := 0; c < 4; c++ {
			in[i*4+c], in[(15-i)*4+c] = in[(15-i)*4+c], in[i*4+c]
		}
	}
	buf := make([]byte, 16)
	if err := EncodeBlock(dxgi.FormatBC7Unorm, in, buf, Options{}); err != nil {
		t.Fatal(err)
	}
	if buf[0]&0x7f != 0x40 {
		t.Errorf("mode bits = %#x, want mode 6", buf[0]&0x7f)
	}
	var out Block
	if err := DecodeBlock(dxgi.FormatBC7Unorm, buf, &out); err != nil {
		t.Fatal(err)
	}
	if d := maxDiff(in, &out, rgb); d > 0.03 {
		t.Errorf("max error %v", d)
	}
}

func TestRows(t *testing.T) {
	const width, rows = 6, 3
	src := make([]float32, width*rows*4)
	for i := 0; i < width*rows; i++ {
		src[i*4], src[i*4+1], src[i*4+2], src[i*4+3] = 0, 1, 0, 1
	}
	blocks := make([]byte, 2*8)
	if err := EncodeRow(dxgi.FormatBC1Unorm, src, width, rows, blocks, Options{}); err != nil {
		t.Fatal(err)
	}
	dst := make([]float32, len(src))
	if err := DecodeRow(dxgi.FormatBC1Unorm, blocks, width, rows, dst); err != nil {
		t.Fatal(err)
	}
	for i := range src {
		if dst[i] != src[i] {
			t.Fatalf("component %d = %v, want %v", i, dst[i], src[i])
		}
	}
	if err := EncodeRow(dxgi.FormatBC1Unorm, src, width, rows, blocks[:8], Options{}); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("short dst error = %v", err)
	}
}

func TestUnsupported(t *testing.T) {
	var b Block
	if err := DecodeBlock(dxgi.FormatBC6HUF16, make([]byte, 16), &b); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("BC6H decode error = %v", err)
	}
	if CanEncode(dxgi.FormatBC6HSF16) || !CanEncode(dxgi.FormatBC7Typeless) {
		t.Error("CanEncode mismatch")
	}
}

func TestPartitionAnchors(t *testing.T) {
	for shape := 0; shape < 64; shape++ {
		if subsetOf(2, shape, int(anchor2[shape])) != 1 {
			t.Errorf("two-subset shape %d: anchor not in subset 1", shape)
		}
		if subsetOf(3, shape, int(anchor3[0][shape])) != 1 || subsetOf(3, shape, int(anchor3[1][shape])) != 2 {
			t.Errorf("three-subset shape %d: anchors misplaced", shape)
		}
	}
}
