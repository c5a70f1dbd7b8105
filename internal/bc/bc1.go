// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package bc

import (
	"encoding/binary"
	"math"
)

func unpack565(c uint16) [3]float32 {
	r := uint32(c>>11) & 0x1f
	g := uint32(c>>5) & 0x3f
	b := uint32(c) & 0x1f
	return [3]float32{
		float32(r<<3|r>>2) / 255,
		float32(g<<2|g>>4) / 255,
		float32(b<<3|b>>2) / 255,
	}
}

func pack565(c [3]float32) uint16 {
	r := uint16(clamp(c[0], 0, 1)*31 + 0.5)
	g := uint16(clamp(c[1], 0, 1)*63 + 0.5)
	b := uint16(clamp(c[2], 0, 1)*31 + 0.5)
	return r<<11 | g<<5 | b
}

// colorPalette expands the two endpoints of a color block. The fourth
// entry of the three-color mode is transparent black.
func colorPalette(c0, c1 uint16, threeColor bool) (pal [4][4]float32) {
	e0, e1 := unpack565(c0), unpack565(c1)
	for ch := 0; ch < 3; ch++ {
		pal[0][ch] = e0[ch]
		pal[1][ch] = e1[ch]
		if threeColor {
			pal[2][ch] = (e0[ch] + e1[ch]) / 2
		} else {
			pal[2][ch] = (2*e0[ch] + e1[ch]) / 3
			pal[3][ch] = (e0[ch] + 2*e1[ch]) / 3
		}
	}
	pal[0][3], pal[1][3], pal[2][3] = 1, 1, 1
	if !threeColor {
		pal[3][3] = 1
	}
	return pal
}

// decodeColor decodes an 8-byte color block. BC2 and BC3 always use the
// four-color mode.
func decodeColor(src []byte, b *Block, allowThree bool) {
	c0 := binary.LittleEndian.Uint16(src)
	c1 := binary.LittleEndian.Uint16(src[2:])
	idx := binary.LittleEndian.Uint32(src[4:])
	pal := colorPalette(c0, c1, allowThree && c0 <= c1)
	for i := 0; i < 16; i++ {
		p := pal[(idx>>(2*i))&3]
		b[i*4], b[i*4+1], b[i*4+2], b[i*4+3] = p[0], p[1], p[2], p[3]
	}
}

func encodeColor(b *Block, dst []byte, allowThree bool, opts Options) {
	w := opts.weights()
	thr := opts.threshold()

	var pts [][4]float32
	var transparent [16]bool
	for i := 0; i < 16; i++ {
		if allowThree && b[i*4+3] < thr {
			transparent[i] = true
			continue
		}
		pts = append(pts, [4]float32{
			clamp(b[i*4], 0, 1), clamp(b[i*4+1], 0, 1), clamp(b[i*4+2], 0, 1), 0,
		})
	}

	if len(pts) == 0 {
		// Three-color mode with every index selecting transparent black.
		binary.LittleEndian.PutUint16(dst, 0)
		binary.LittleEndian.PutUint16(dst[2:], 0)
		binary.LittleEndian.PutUint32(dst[4:], 0xffffffff)
		return
	}

	lo, hi := fitEndpoints(pts, 3)
	c0, c1 := pack565([3]float32(lo[:3])), pack565([3]float32(hi[:3]))

	threeColor := false
	for _, t := range transparent {
		threeColor = threeColor || t
	}
	if threeColor {
		if c0 > c1 {
			c0, c1 = c1, c0
		}
	} else if c0 < c1 {
		c0, c1 = c1, c0
	}

	pal := colorPalette(c0, c1, threeColor || (allowThree && c0 == c1))
	choices := 4
	if threeColor || (allowThree && c0 == c1) {
		choices = 3
	}

	var idx uint32
	k := 0
	for i := 0; i < 16; i++ {
		var sel uint32
		if transparent[i] {
			sel = 3
		} else {
			sel = nearest(pal[:choices], pts[k], w)
			k++
		}
		idx |= sel << (2 * i)
	}

	binary.LittleEndian.PutUint16(dst, c0)
	binary.LittleEndian.PutUint16(dst[2:], c1)
	binary.LittleEndian.PutUint32(dst[4:], idx)
}

func nearest(pal [][4]float32, p [4]float32, w [3]float32) uint32 {
	best, bestErr := uint32(0), float32(math.MaxFloat32)
	for j, c := range pal {
		var e float32
		for ch := 0; ch < 3; ch++ {
			d := (c[ch] - p[ch]) * w[ch]
			e += d * d
		}
		if e < bestErr {
			best, bestErr = uint32(j), e
		}
	}
	return best
}

// fitEndpoints projects pts onto their principal axis over the first dims
// components and returns the extreme points along it.
func fitEndpoints(pts [][4]float32, dims int) (lo, hi [4]float32) {
	var mean [4]float32
	for _, p := range pts {
		for c := 0; c < dims; c++ {
			mean[c] += p[c]
		}
	}
	n := float32(len(pts))
	for c := 0; c < dims; c++ {
		mean[c] /= n
	}

	var cov [4][4]float32
	for _, p := range pts {
		for i := 0; i < dims; i++ {
			for j := 0; j < dims; j++ {
				cov[i][j] += (p[i] - mean[i]) * (p[j] - mean[j])
			}
		}
	}

	axis := [4]float32{1, 1, 1, 1}
	for iter := 0; iter < 8; iter++ {
		var next [4]float32
		var norm float32
		for i := 0; i < dims; i++ {
			for j := 0; j < dims; j++ {
				next[i] += cov[i][j] * axis[j]
			}
			norm = max(norm, float32(math.Abs(float64(next[i]))))
		}
		if norm == 0 {
			break
		}
		for i := 0; i < dims; i++ {
			axis[i] = next[i] / norm
		}
	}

	var sq float32
	for i := 0; i < dims; i++ {
		sq += axis[i] * axis[i]
	}
	tmin, tmax := float32(0), float32(0)
	if sq > 0 {
		tmin, tmax = float32(math.MaxFloat32), float32(-math.MaxFloat32)
		for _, p := range pts {
			var t float32
			for i := 0; i < dims; i++ {
				t += (p[i] - mean[i]) * axis[i]
			}
			t /= sq
			tmin = min(tmin, t)
			tmax = max(tmax, t)
		}
	}

	for i := 0; i < dims; i++ {
		lo[i] = clamp(mean[i]+tmin*axis[i], 0, 1)
		hi[i] = clamp(mean[i]+tmax*axis[i], 0, 1)
	}
	return lo, hi
}

func decodeExplicitAlpha(src []byte, b *Block) {
	bits := binary.LittleEndian.Uint64(src)
	for i := 0; i < 16; i++ {
		b[i*4+3] = float32((bits>>(4*i))&0xf) / 15
	}
}

func encodeExplicitAlpha(b *Block, dst []byte) {
	var bits uint64
	for i := 0; i < 16; i++ {
		a := uint64(clamp(b[i*4+3], 0, 1)*15 + 0.5)
		bits |= a << (4 * i)
	}
	binary.LittleEndian.PutUint64(dst, bits)
}
