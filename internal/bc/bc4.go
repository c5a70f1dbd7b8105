// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package bc

import (
	"encoding/binary"
	"math"
)

// Single-channel blocks: BC4, the two halves of BC5 and the alpha half of
// BC3 share this layout of two endpoints and 3-bit indices.

func alphaEndpoint(v byte, signed bool) float32 {
	if signed {
		return max(float32(int8(v))/127, -1)
	}
	return float32(v) / 255
}

func alphaPalette(a0, a1 byte, signed bool) (pal [8]float32) {
	f0, f1 := alphaEndpoint(a0, signed), alphaEndpoint(a1, signed)
	pal[0], pal[1] = f0, f1
	eightStep := a0 > a1
	if signed {
		eightStep = int8(a0) > int8(a1)
	}
	if eightStep {
		for i := 2; i < 8; i++ {
			pal[i] = (float32(8-i)*f0 + float32(i-1)*f1) / 7
		}
		return pal
	}
	for i := 2; i < 6; i++ {
		pal[i] = (float32(6-i)*f0 + float32(i-1)*f1) / 5
	}
	pal[6] = 0
	if signed {
		pal[6] = -1
	}
	pal[7] = 1
	return pal
}

func decodeAlphaBlock(src []byte, b *Block, ch int, signed bool) {
	pal := alphaPalette(src[0], src[1], signed)
	var bits uint64
	for i := 0; i < 6; i++ {
		bits |= uint64(src[2+i]) << (8 * i)
	}
	for i := 0; i < 16; i++ {
		b[i*4+ch] = pal[(bits>>(3*i))&7]
	}
}

func encodeAlphaBlock(b *Block, dst []byte, ch int, signed bool) {
	lo, hi := float32(math.MaxFloat32), float32(-math.MaxFloat32)
	minV := float32(0)
	if signed {
		minV = -1
	}
	for i := 0; i < 16; i++ {
		v := clamp(b[i*4+ch], minV, 1)
		lo = min(lo, v)
		hi = max(hi, v)
	}

	var a0, a1 byte
	if signed {
		a0 = byte(int8(roundf(hi * 127)))
		a1 = byte(int8(roundf(lo * 127)))
	} else {
		a0 = byte(roundf(hi * 255))
		a1 = byte(roundf(lo * 255))
	}

	pal := alphaPalette(a0, a1, signed)
	choices := 8
	if a0 == a1 {
		choices = 1
	}

	var bits uint64
	for i := 0; i < 16; i++ {
		v := clamp(b[i*4+ch], minV, 1)
		best, bestErr := 0, float32(math.MaxFloat32)
		for j := 0; j < choices; j++ {
			d := pal[j] - v
			if d*d < bestErr {
				best, bestErr = j, d*d
			}
		}
		bits |= uint64(best) << (3 * i)
	}

	dst[0], dst[1] = a0, a1
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], bits)
	copy(dst[2:8], tmp[:6])
}

func roundf(v float32) float32 {
	return float32(math.Round(float64(v)))
}
