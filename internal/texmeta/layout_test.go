// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texmeta

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/dxtex/dxgi"
)

func meta2D(w, h, array, mips int) Metadata {
	return Metadata{
		Width: w, Height: h, Depth: 1, ArraySize: array, MipLevels: mips,
		Format: dxgi.FormatR8G8B8A8Unorm, Dimension: Texture2D,
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		meta     Metadata
		wantMips int
		wantErr  error
	}{
		{"full chain", meta2D(32, 8, 1, 0), 6, nil},
		{"explicit", meta2D(32, 8, 1, 3), 3, nil},
		{"too many mips", meta2D(4, 4, 1, 4), 0, ErrInvalidMetadata},
		{"zero width", meta2D(0, 4, 1, 1), 0, ErrInvalidMetadata},
		{"zero array", meta2D(4, 4, 0, 1), 0, ErrInvalidMetadata},
		{"unknown format", Metadata{Width: 1, Height: 1, Depth: 1, ArraySize: 1, MipLevels: 1, Dimension: Texture2D}, 0, ErrInvalidMetadata},
		{"cube needs 6", Metadata{Width: 4, Height: 4, Depth: 1, ArraySize: 5, MipLevels: 1, MiscFlags: MiscTextureCube, Format: dxgi.FormatR8Unorm, Dimension: Texture2D}, 0, ErrInvalidMetadata},
		{"palettized", Metadata{Width: 4, Height: 4, Depth: 1, ArraySize: 1, MipLevels: 1, Format: dxgi.FormatP8, Dimension: Texture2D}, 0, ErrUnsupported},
		{"1D height", Metadata{Width: 4, Height: 2, Depth: 1, ArraySize: 1, MipLevels: 1, Format: dxgi.FormatR8Unorm, Dimension: Texture1D}, 0, ErrInvalidMetadata},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.meta)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Normalize() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && got.MipLevels != tt.wantMips {
				t.Errorf("MipLevels = %d, want %d", got.MipLevels, tt.wantMips)
			}
		})
	}
}

func TestLayout2DArray(t *testing.T) {
	m, err := Normalize(meta2D(4, 4, 2, 0))
	if err != nil {
		t.Fatal(err)
	}
	subs, size, err := Layout(m, dxgi.CPFlagsNone)
	if err != nil {
		t.Fatal(err)
	}
	// 3 mips per item: 4x4 (64) + 2x2 (16) + 1x1 (4) = 84 bytes per item.
	if size != 168 {
		t.Errorf("size = %d, want 168", size)
	}
	if len(subs) != 6 || ImageCount(m) != 6 {
		t.Fatalf("len(subs) = %d, ImageCount = %d, want 6", len(subs), ImageCount(m))
	}
	if subs[3].Offset != 84 || subs[3].Width != 4 {
		t.Errorf("item 1 mip 0 = %+v", subs[3])
	}
	for i, s := range subs {
		if s.Offset+s.SlicePitch > size {
			t.Errorf("sub %d exceeds arena: %+v", i, s)
		}
	}
}

func TestLayoutVolume(t *testing.T) {
	m := Metadata{Width: 4, Height: 4, Depth: 4, ArraySize: 1, Format: dxgi.FormatR8Unorm, Dimension: Texture3D}
	m, err := Normalize(m)
	if err != nil {
		t.Fatal(err)
	}
	subs, size, err := Layout(m, dxgi.CPFlagsNone)
	if err != nil {
		t.Fatal(err)
	}
	// mips: 4 slices of 16, 2 slices of 4, 1 slice of 1.
	if len(subs) != 7 || size != 4*16+2*4+1 {
		t.Errorf("len = %d size = %d", len(subs), size)
	}
	idx, ok := m.ComputeIndex(1, 0, 1)
	if !ok || idx != 5 {
		t.Errorf("ComputeIndex(1,0,1) = %d, %v, want 5", idx, ok)
	}
	if _, ok := m.ComputeIndex(1, 0, 2); ok {
		t.Error("slice 2 of mip 1 should be out of range")
	}
}

func TestComputeIndexOutOfRange(t *testing.T) {
	m := meta2D(8, 8, 3, 2)
	cases := [][3]int{{2, 0, 0}, {0, 3, 0}, {0, 0, 1}, {-1, 0, 0}}
	for _, c := range cases {
		if _, ok := m.ComputeIndex(c[0], c[1], c[2]); ok {
			t.Errorf("ComputeIndex%v should be out of range", c)
		}
	}
	if idx, ok := m.ComputeIndex(1, 2, 0); !ok || idx != 5 {
		t.Errorf("ComputeIndex(1,2,0) = %d, %v, want 5", idx, ok)
	}
}

func TestAlphaMode(t *testing.T) {
	m := meta2D(1, 1, 1, 1)
	m.MiscFlags2 = 0x10
	m.SetAlphaMode(AlphaModePremultiplied)
	if !m.IsPMAlpha() || m.MiscFlags2 != 0x12 {
		t.Errorf("MiscFlags2 = %#x", m.MiscFlags2)
	}
}

func TestArenaSizeMatchesLayout(t *testing.T) {
	for _, m := range []Metadata{
		meta2D(32, 8, 3, 0),
		{Width: 9, Height: 5, Depth: 7, ArraySize: 1, MipLevels: 0, Format: dxgi.FormatBC1Unorm, Dimension: Texture3D},
		{Width: 17, Height: 1, Depth: 1, ArraySize: 2, MipLevels: 0, Format: dxgi.FormatR16G16B16A16Float, Dimension: Texture1D},
	} {
		m, err := Normalize(m)
		if err != nil {
			t.Fatal(err)
		}
		for _, flags := range []dxgi.CPFlags{dxgi.CPFlagsNone, dxgi.CPFlagsLegacyDWORD} {
			_, want, err := Layout(m, flags)
			if err != nil {
				t.Fatal(err)
			}
			got, err := ArenaSize(m, flags)
			if err != nil || got != want {
				t.Errorf("ArenaSize(%v %dx%dx%d, %#x) = %d, %v; Layout says %d",
					m.Format, m.Width, m.Height, m.Depth, flags, got, err, want)
			}
		}
	}
}

func TestLayoutTooLarge(t *testing.T) {
	// 1 GiB per item times a billion items: rejected before any table is
	// built.
	m := Metadata{Width: 16384, Height: 16384, Depth: 1, ArraySize: 1 << 30, MipLevels: 1,
		Format: dxgi.FormatR8G8B8A8Unorm, Dimension: Texture2D}
	subs, _, err := Layout(m, dxgi.CPFlagsNone)
	if !errors.Is(err, ErrTooLarge) || subs != nil {
		t.Errorf("Layout = %d subs, %v; want ErrTooLarge", len(subs), err)
	}
}

func TestCheckLimits(t *testing.T) {
	tests := []struct {
		name string
		meta Metadata
		ok   bool
	}{
		{"max 2D", meta2D(MaxTextureDimension2D, MaxTextureDimension2D, 1, 1), true},
		{"wide 2D", meta2D(MaxTextureDimension2D+1, 4, 1, 1), false},
		{"max array", meta2D(4, 4, MaxArraySize, 1), true},
		{"long array", meta2D(4, 4, MaxArraySize+1, 1), false},
		{"deep volume", Metadata{Width: 4, Height: 4, Depth: MaxTextureDimension3D + 1, ArraySize: 1, MipLevels: 1,
			Format: dxgi.FormatR8Unorm, Dimension: Texture3D}, false},
		{"wide volume", Metadata{Width: MaxTextureDimension3D + 1, Height: 4, Depth: 4, ArraySize: 1, MipLevels: 1,
			Format: dxgi.FormatR8Unorm, Dimension: Texture3D}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckLimits(tt.meta)
			if tt.ok && err != nil {
				t.Errorf("CheckLimits = %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrUnsupported) {
				t.Errorf("CheckLimits = %v, want ErrUnsupported", err)
			}
		})
	}
}

func TestValueAccessors(t *testing.T) {
	m := meta2D(4, 4, 6, 1)
	m.MiscFlags = MiscTextureCube
	m.SetAlphaMode(AlphaModePremultiplied)
	// Accessors work on non-addressable values such as function results.
	get := func() Metadata { return m }
	if !get().IsCubemap() || get().IsVolumemap() || !get().IsPMAlpha() || get().AlphaMode() != AlphaModePremultiplied {
		t.Errorf("accessors on %+v", get())
	}
	if i, ok := get().ComputeIndex(0, 5, 0); !ok || i != 5 {
		t.Errorf("ComputeIndex = %d, %v", i, ok)
	}
	if !get().Equal(m) {
		t.Error("Equal on identical metadata")
	}
}

func TestDimensionGPU(t *testing.T) {
	tests := []struct {
		d    Dimension
		want gputypes.TextureDimension
	}{
		{Texture1D, gputypes.TextureDimension1D},
		{Texture2D, gputypes.TextureDimension2D},
		{Texture3D, gputypes.TextureDimension3D},
	}
	for _, tt := range tests {
		if got := tt.d.GPU(); got != tt.want {
			t.Errorf("%v.GPU() = %v, want %v", tt.d, got, tt.want)
		}
	}
}
