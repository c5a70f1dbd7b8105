package color

import "math"

// sRGBToLinearLUT maps an 8-bit sRGB code to linear light.
var sRGBToLinearLUT [256]float32

// linearToSRGBLUT maps 12-bit linear light to an 8-bit sRGB code.
var linearToSRGBLUT [4096]uint8

func init() {
	for i := 0; i < 256; i++ {
		sRGBToLinearLUT[i] = SRGBToLinear(float32(i) / 255.0)
	}

	for i := 0; i < 4096; i++ {
		s := float64(LinearToSRGB(float32(i) / 4095.0))
		v := int(s*255.0 + 0.5)
		v = min(max(v, 0), 255)
		//nolint:gosec // G115: v is clamped to [0,255]
		linearToSRGBLUT[i] = uint8(v)
	}
}

// SRGB8ToLinear converts an 8-bit sRGB code to linear light using a table.
func SRGB8ToLinear(s uint8) float32 {
	return sRGBToLinearLUT[s]
}

// LinearToSRGB8 converts linear light to an 8-bit sRGB code using a table.
// Input is clamped to [0,1].
func LinearToSRGB8(l float32) uint8 {
	if l <= 0 || l != l {
		return 0
	}
	if l >= 1 {
		return 255
	}
	return linearToSRGBLUT[int(l*4095.0+0.5)]
}

// SRGB8ToLinearExact is the math.Pow reference for SRGB8ToLinear.
func SRGB8ToLinearExact(s uint8) float32 {
	sf := float64(s) / 255.0
	if sf <= 0.04045 {
		return float32(sf / 12.92)
	}
	return float32(math.Pow((sf+0.055)/1.055, 2.4))
}
