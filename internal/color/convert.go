// Package color converts between the sRGB transfer function and linear
// light for scanlines of float32 RGBA pixels.
//
// Only the RGB components of each pixel are converted; alpha is always
// linear and passes through unchanged.
package color

import "math"

// SRGBToLinear converts an sRGB component to linear (EOTF).
// Formula: if s <= 0.04045: s/12.92; else: pow((s+0.055)/1.055, 2.4)
func SRGBToLinear(s float32) float32 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return float32(math.Pow(float64((s+0.055)/1.055), 2.4))
}

// LinearToSRGB converts a linear component to sRGB (OETF).
// Formula: if l <= 0.0031308: l*12.92; else: 1.055*pow(l, 1/2.4)-0.055
func LinearToSRGB(l float32) float32 {
	if l <= 0.0031308 {
		return l * 12.92
	}
	return 1.055*float32(math.Pow(float64(l), 1.0/2.4)) - 0.055
}

// DecodeRow converts the RGB components of every RGBA quad in px from sRGB
// to linear, in place.
func DecodeRow(px []float32) {
	for i := 0; i+3 < len(px); i += 4 {
		px[i] = SRGBToLinear(px[i])
		px[i+1] = SRGBToLinear(px[i+1])
		px[i+2] = SRGBToLinear(px[i+2])
	}
}

// EncodeRow converts the RGB components of every RGBA quad in px from
// linear to sRGB, in place. Values are clamped to [0,1] first.
func EncodeRow(px []float32) {
	for i := 0; i+3 < len(px); i += 4 {
		px[i] = LinearToSRGB(clamp01(px[i]))
		px[i+1] = LinearToSRGB(clamp01(px[i+1]))
		px[i+2] = LinearToSRGB(clamp01(px[i+2]))
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
