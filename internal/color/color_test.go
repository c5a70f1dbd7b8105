package color

import (
	"math"
	"testing"
)

func floatNear(a, b, eps float32) bool {
	return float32(math.Abs(float64(a-b))) <= eps
}

func TestSRGBToLinearEdgeCases(t *testing.T) {
	tests := []struct {
		name  string
		input float32
		want  float32
	}{
		{"black", 0.0, 0.0},
		{"white", 1.0, 1.0},
		{"threshold", 0.04045, 0.04045 / 12.92},
		{"mid gray", 0.5, float32(math.Pow((0.5+0.055)/1.055, 2.4))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SRGBToLinear(tt.input); !floatNear(got, tt.want, 1e-6) {
				t.Errorf("SRGBToLinear(%v) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for i := 0; i <= 100; i++ {
		v := float32(i) / 100
		if got := LinearToSRGB(SRGBToLinear(v)); !floatNear(got, v, 1e-4) {
			t.Errorf("round trip %v = %v", v, got)
		}
	}
}

func TestRowsKeepAlpha(t *testing.T) {
	px := []float32{0.5, 0.5, 0.5, 0.25, 1, 0, 1, 0.75}
	DecodeRow(px)
	if px[3] != 0.25 || px[7] != 0.75 {
		t.Errorf("alpha changed: %v", px)
	}
	if floatNear(px[0], 0.5, 1e-3) {
		t.Errorf("RGB not converted: %v", px[0])
	}
	EncodeRow(px)
	if !floatNear(px[0], 0.5, 1e-4) || px[3] != 0.25 {
		t.Errorf("EncodeRow did not restore: %v", px)
	}
}

func TestLUTAccuracy(t *testing.T) {
	for i := 0; i < 256; i++ {
		fast := SRGB8ToLinear(uint8(i))
		exact := SRGB8ToLinearExact(uint8(i))
		if !floatNear(fast, exact, 1e-4) {
			t.Errorf("sRGB %d: fast=%f exact=%f", i, fast, exact)
		}
		// 12-bit table precision: dark codes may land one step off.
		if back := int(LinearToSRGB8(exact)); back < i-1 || back > i+1 {
			t.Errorf("LinearToSRGB8(%f) = %d, want %d±1", exact, back, i)
		}
	}
}

func TestLinearToSRGB8Clamp(t *testing.T) {
	if LinearToSRGB8(-1) != 0 || LinearToSRGB8(2) != 255 {
		t.Error("LinearToSRGB8 does not clamp")
	}
	if LinearToSRGB8(float32(math.NaN())) != 0 {
		t.Error("NaN should map to 0")
	}
}
