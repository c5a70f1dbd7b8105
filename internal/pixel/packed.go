// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package pixel

import (
	"encoding/binary"
	"math"

	"github.com/ajroetker/go-highway/hwy"
)

func loadA8(dst []float32, src []byte, width int) {
	for x := 0; x < width; x++ {
		d := dst[x*4 : x*4+4]
		d[0], d[1], d[2], d[3] = 0, 0, 0, float32(src[x])/255
	}
}

func storeA8(dst []byte, src []float32, width int) {
	for x := 0; x < width; x++ {
		dst[x] = uint8(unorm(src[x*4+3], 255))
	}
}

func loadR10G10B10A2(dst []float32, src []byte, width int) {
	for x := 0; x < width; x++ {
		v := binary.LittleEndian.Uint32(src[x*4:])
		d := dst[x*4 : x*4+4]
		d[0] = float32(v&0x3ff) / 1023
		d[1] = float32((v>>10)&0x3ff) / 1023
		d[2] = float32((v>>20)&0x3ff) / 1023
		d[3] = float32(v>>30) / 3
	}
}

func storeR10G10B10A2(dst []byte, src []float32, width int) {
	for x := 0; x < width; x++ {
		s := src[x*4 : x*4+4]
		v := unorm(s[0], 1023) | unorm(s[1], 1023)<<10 | unorm(s[2], 1023)<<20 | unorm(s[3], 3)<<30
		binary.LittleEndian.PutUint32(dst[x*4:], v)
	}
}

// smallFloat decodes an unsigned float with a 5-bit exponent and mbits of
// mantissa, as used by R11G11B10.
func smallFloat(bits uint32, mbits uint) float32 {
	e := bits >> mbits
	m := bits & (1<<mbits - 1)
	switch e {
	case 0:
		return float32(m) / float32(uint32(1)<<mbits) * (1.0 / 16384)
	case 31:
		if m == 0 {
			return float32(math.Inf(1))
		}
		return float32(math.NaN())
	}
	return float32(math.Ldexp(1+float64(m)/float64(uint32(1)<<mbits), int(e)-15))
}

// toSmallFloat truncates a half float to the unsigned 5-bit exponent
// layout. Negative values become zero.
func toSmallFloat(v float32, mbits uint) uint32 {
	if !(v > 0) {
		if v != v {
			return 31<<mbits | 1
		}
		return 0
	}
	h := uint32(hwy.Float32ToFloat16(v).Bits())
	return (h >> (10 - mbits)) & (1<<(5+mbits) - 1)
}

func loadR11G11B10(dst []float32, src []byte, width int) {
	for x := 0; x < width; x++ {
		v := binary.LittleEndian.Uint32(src[x*4:])
		d := dst[x*4 : x*4+4]
		d[0] = smallFloat(v&0x7ff, 6)
		d[1] = smallFloat((v>>11)&0x7ff, 6)
		d[2] = smallFloat(v>>22, 5)
		d[3] = 1
	}
}

func storeR11G11B10(dst []byte, src []float32, width int) {
	for x := 0; x < width; x++ {
		s := src[x*4 : x*4+4]
		v := toSmallFloat(s[0], 6) | toSmallFloat(s[1], 6)<<11 | toSmallFloat(s[2], 5)<<22
		binary.LittleEndian.PutUint32(dst[x*4:], v)
	}
}

const maxRGB9E5 = 65408 // 511/512 * 2^16

func loadRGBE9995(dst []float32, src []byte, width int) {
	for x := 0; x < width; x++ {
		v := binary.LittleEndian.Uint32(src[x*4:])
		scale := float32(math.Ldexp(1, int(v>>27)-24))
		d := dst[x*4 : x*4+4]
		d[0] = float32(v&0x1ff) * scale
		d[1] = float32((v>>9)&0x1ff) * scale
		d[2] = float32((v>>18)&0x1ff) * scale
		d[3] = 1
	}
}

func storeRGBE9995(dst []byte, src []float32, width int) {
	for x := 0; x < width; x++ {
		s := src[x*4 : x*4+4]
		r := float64(clamp(s[0], 0, maxRGB9E5))
		g := float64(clamp(s[1], 0, maxRGB9E5))
		b := float64(clamp(s[2], 0, maxRGB9E5))
		maxc := max(r, g, b)

		exp := -16
		if maxc > 0 {
			exp = max(exp, int(math.Floor(math.Log2(maxc))))
		}
		exp += 16
		denom := math.Ldexp(1, exp-24)
		if math.Floor(maxc/denom+0.5) == 512 {
			denom *= 2
			exp++
		}
		rq := uint32(math.Floor(r/denom + 0.5))
		gq := uint32(math.Floor(g/denom + 0.5))
		bq := uint32(math.Floor(b/denom + 0.5))
		v := rq&0x1ff | (gq&0x1ff)<<9 | (bq&0x1ff)<<18 | uint32(exp)<<27
		binary.LittleEndian.PutUint32(dst[x*4:], v)
	}
}

func loadB5G6R5(dst []float32, src []byte, width int) {
	for x := 0; x < width; x++ {
		v := uint32(binary.LittleEndian.Uint16(src[x*2:]))
		d := dst[x*4 : x*4+4]
		d[0] = float32(v>>11) / 31
		d[1] = float32((v>>5)&0x3f) / 63
		d[2] = float32(v&0x1f) / 31
		d[3] = 1
	}
}

func storeB5G6R5(dst []byte, src []float32, width int) {
	for x := 0; x < width; x++ {
		s := src[x*4 : x*4+4]
		v := unorm(s[2], 31) | unorm(s[1], 63)<<5 | unorm(s[0], 31)<<11
		binary.LittleEndian.PutUint16(dst[x*2:], uint16(v))
	}
}

func loadB5G5R5A1(dst []float32, src []byte, width int) {
	for x := 0; x < width; x++ {
		v := uint32(binary.LittleEndian.Uint16(src[x*2:]))
		d := dst[x*4 : x*4+4]
		d[0] = float32((v>>10)&0x1f) / 31
		d[1] = float32((v>>5)&0x1f) / 31
		d[2] = float32(v&0x1f) / 31
		d[3] = float32(v >> 15)
	}
}

func storeB5G5R5A1(dst []byte, src []float32, width int) {
	for x := 0; x < width; x++ {
		s := src[x*4 : x*4+4]
		v := unorm(s[2], 31) | unorm(s[1], 31)<<5 | unorm(s[0], 31)<<10
		if s[3] >= 0.5 {
			v |= 1 << 15
		}
		binary.LittleEndian.PutUint16(dst[x*2:], uint16(v))
	}
}

func loadB4G4R4A4(dst []float32, src []byte, width int) {
	for x := 0; x < width; x++ {
		v := uint32(binary.LittleEndian.Uint16(src[x*2:]))
		d := dst[x*4 : x*4+4]
		d[0] = float32((v>>8)&0xf) / 15
		d[1] = float32((v>>4)&0xf) / 15
		d[2] = float32(v&0xf) / 15
		d[3] = float32(v>>12) / 15
	}
}

func storeB4G4R4A4(dst []byte, src []float32, width int) {
	for x := 0; x < width; x++ {
		s := src[x*4 : x*4+4]
		v := unorm(s[2], 15) | unorm(s[1], 15)<<4 | unorm(s[0], 15)<<8 | unorm(s[3], 15)<<12
		binary.LittleEndian.PutUint16(dst[x*2:], uint16(v))
	}
}
