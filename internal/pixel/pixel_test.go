// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pixel

import (
	"errors"
	"math"
	"testing"

	"github.com/gogpu/dxtex/dxgi"
)

func near(a, b, eps float32) bool {
	return float32(math.Abs(float64(a-b))) <= eps
}

func TestRoundTrip(t *testing.T) {
	px := []float32{
		0, 0.25, 0.5, 1,
		1, 0.75, 0.125, 0,
	}
	tests := []struct {
		format dxgi.Format
		eps    float32
	}{
		{dxgi.FormatR8G8B8A8Unorm, 1.0 / 255},
		{dxgi.FormatR8G8B8A8Typeless, 1.0 / 255},
		{dxgi.FormatB8G8R8A8Unorm, 1.0 / 255},
		{dxgi.FormatR16G16B16A16Unorm, 1.0 / 65535},
		{dxgi.FormatR16G16B16A16Float, 1e-3},
		{dxgi.FormatR32G32B32A32Float, 0},
		{dxgi.FormatR10G10B10A2Unorm, 1.0 / 3},
		{dxgi.FormatB4G4R4A4Unorm, 1.0 / 15},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			buf := make([]byte, 2*tt.format.BitsPerPixel()/8)
			if err := StoreRow(buf, px, 2, tt.format); err != nil {
				t.Fatal(err)
			}
			got := make([]float32, 8)
			if err := LoadRow(got, buf, 2, tt.format); err != nil {
				t.Fatal(err)
			}
			for i := range px {
				if !near(got[i], px[i], tt.eps) {
					t.Errorf("component %d = %v, want %v", i, got[i], px[i])
				}
			}
		})
	}
}

func TestBGRByteOrder(t *testing.T) {
	buf := make([]byte, 4)
	if err := StoreRow(buf, []float32{1, 0, 0, 1}, 1, dxgi.FormatB8G8R8A8Unorm); err != nil {
		t.Fatal(err)
	}
	if buf[0] != 0 || buf[2] != 255 || buf[3] != 255 {
		t.Errorf("bytes = %v, want [0 0 255 255]", buf)
	}
}

func TestMissingChannels(t *testing.T) {
	got := make([]float32, 4)
	if err := LoadRow(got, []byte{128}, 1, dxgi.FormatR8Unorm); err != nil {
		t.Fatal(err)
	}
	if got[1] != 0 || got[2] != 0 || got[3] != 1 {
		t.Errorf("R8 load = %v", got)
	}
	if err := LoadRow(got, []byte{255}, 1, dxgi.FormatA8Unorm); err != nil {
		t.Fatal(err)
	}
	if got[0] != 0 || got[3] != 1 {
		t.Errorf("A8 load = %v", got)
	}
	if err := LoadRow(got, []byte{1, 2, 3, 0}, 1, dxgi.FormatB8G8R8X8Unorm); err != nil {
		t.Fatal(err)
	}
	if got[3] != 1 {
		t.Errorf("X8 alpha = %v, want 1", got[3])
	}
}

func TestSnormClamp(t *testing.T) {
	got := make([]float32, 4)
	if err := LoadRow(got, []byte{0x80, 0x81, 0x7f, 0}, 1, dxgi.FormatR8G8B8A8Snorm); err != nil {
		t.Fatal(err)
	}
	if got[0] != -1 || got[1] != -1 || got[2] != 1 {
		t.Errorf("snorm = %v", got)
	}
}

func TestSharedExponent(t *testing.T) {
	px := []float32{1, 0.5, 4, 1}
	buf := make([]byte, 4)
	if err := StoreRow(buf, px, 1, dxgi.FormatR9G9B9E5SharedExp); err != nil {
		t.Fatal(err)
	}
	got := make([]float32, 4)
	if err := LoadRow(got, buf, 1, dxgi.FormatR9G9B9E5SharedExp); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if !near(got[i], px[i], px[i]/256) {
			t.Errorf("component %d = %v, want %v", i, got[i], px[i])
		}
	}
}

func TestR11G11B10(t *testing.T) {
	px := []float32{1, 2.5, 0.25, 1}
	buf := make([]byte, 4)
	if err := StoreRow(buf, px, 1, dxgi.FormatR11G11B10Float); err != nil {
		t.Fatal(err)
	}
	got := make([]float32, 4)
	if err := LoadRow(got, buf, 1, dxgi.FormatR11G11B10Float); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if !near(got[i], px[i], px[i]/32) {
			t.Errorf("component %d = %v, want %v", i, got[i], px[i])
		}
	}
}

func TestErrors(t *testing.T) {
	if err := LoadRow(make([]float32, 4), make([]byte, 4), 1, dxgi.FormatBC1Unorm); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("BC1 error = %v", err)
	}
	if err := LoadRow(make([]float32, 8), make([]byte, 4), 2, dxgi.FormatR8G8B8A8Unorm); !errors.Is(err, ErrShortBuffer) {
		t.Errorf("short error = %v", err)
	}
	if Supported(dxgi.FormatNV12) || !Supported(dxgi.FormatR16Typeless) {
		t.Error("Supported mismatch")
	}
}
