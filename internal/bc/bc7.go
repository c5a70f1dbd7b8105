// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package bc

import (
	"encoding/binary"
	"math"
)

type bitReader struct {
	lo, hi uint64
	pos    uint
}

func (r *bitReader) read(n int) uint32 {
	var v uint32
	for i := 0; i < n; i++ {
		var bit uint64
		if r.pos < 64 {
			bit = r.lo >> r.pos & 1
		} else {
			bit = r.hi >> (r.pos - 64) & 1
		}
		v |= uint32(bit) << i
		r.pos++
	}
	return v
}

type bitWriter struct {
	lo, hi uint64
	pos    uint
}

func (w *bitWriter) write(v uint32, n int) {
	for i := 0; i < n; i++ {
		bit := uint64(v>>i) & 1
		if w.pos < 64 {
			w.lo |= bit << w.pos
		} else {
			w.hi |= bit << (w.pos - 64)
		}
		w.pos++
	}
}

func unquantize(v uint32, bits int) uint32 {
	v <<= 8 - bits
	return v | v>>bits
}

func interpolate(e0, e1, index uint32, bits int) uint32 {
	var w uint32
	switch bits {
	case 2:
		w = weights2[index]
	case 3:
		w = weights3[index]
	default:
		w = weights4[index]
	}
	return ((64-w)*e0 + w*e1 + 32) >> 6
}

// decodeBC7 handles all eight modes. Reserved mode bytes decode to
// transparent black.
func decodeBC7(src []byte, b *Block) {
	r := bitReader{lo: binary.LittleEndian.Uint64(src), hi: binary.LittleEndian.Uint64(src[8:])}
	mode := 0
	for mode < 8 && r.read(1) == 0 {
		mode++
	}
	if mode == 8 {
		b.fill(0, 0, 0, 0)
		return
	}
	m := bc7Modes[mode]

	shape := int(r.read(m.partitionBits))
	rotation := r.read(m.rotationBits)
	selector := r.read(m.selectorBits)

	n := m.subsets * 2
	var ep [6][4]uint32
	for c := 0; c < 3; c++ {
		for i := 0; i < n; i++ {
			ep[i][c] = r.read(m.colorBits)
		}
	}
	if m.alphaBits > 0 {
		for i := 0; i < n; i++ {
			ep[i][3] = r.read(m.alphaBits)
		}
	}

	var pbits [6]uint32
	if m.endpointPBits > 0 {
		for i := 0; i < n; i++ {
			pbits[i] = r.read(1)
		}
	}
	if m.sharedPBits > 0 {
		for s := 0; s < m.subsets; s++ {
			p := r.read(1)
			pbits[2*s], pbits[2*s+1] = p, p
		}
	}
	hasP := m.endpointPBits+m.sharedPBits > 0

	for i := 0; i < n; i++ {
		for c := 0; c < 4; c++ {
			bits := m.colorBits
			if c == 3 {
				bits = m.alphaBits
			}
			if bits == 0 {
				ep[i][c] = 255
				continue
			}
			v := ep[i][c]
			if hasP {
				v = v<<1 | pbits[i]
				bits++
			}
			ep[i][c] = unquantize(v, bits)
		}
	}

	var idx1, idx2 [16]uint32
	for i := 0; i < 16; i++ {
		bits := m.indexBits
		if isAnchor(m.subsets, shape, i) {
			bits--
		}
		idx1[i] = r.read(bits)
	}
	if m.index2Bits > 0 {
		for i := 0; i < 16; i++ {
			bits := m.index2Bits
			if i == 0 {
				bits--
			}
			idx2[i] = r.read(bits)
		}
	}

	for i := 0; i < 16; i++ {
		s := subsetOf(m.subsets, shape, i)
		e0, e1 := ep[2*s], ep[2*s+1]
		var px [4]uint32
		if m.index2Bits == 0 {
			for c := 0; c < 4; c++ {
				px[c] = interpolate(e0[c], e1[c], idx1[i], m.indexBits)
			}
		} else {
			ci, cb, ai, ab := idx1[i], m.indexBits, idx2[i], m.index2Bits
			if selector == 1 {
				ci, cb, ai, ab = idx2[i], m.index2Bits, idx1[i], m.indexBits
			}
			for c := 0; c < 3; c++ {
				px[c] = interpolate(e0[c], e1[c], ci, cb)
			}
			px[3] = interpolate(e0[3], e1[3], ai, ab)
		}
		switch rotation {
		case 1:
			px[0], px[3] = px[3], px[0]
		case 2:
			px[1], px[3] = px[3], px[1]
		case 3:
			px[2], px[3] = px[3], px[2]
		}
		for c := 0; c < 4; c++ {
			b[i*4+c] = float32(px[c]) / 255
		}
	}
}

// quantizeMode6 picks 7-bit endpoint values and the p-bit that together
// land closest to the 8-bit target.
func quantizeMode6(v [4]float32) (q [4]uint32, p uint32) {
	bestErr := float32(math.MaxFloat32)
	for pb := uint32(0); pb < 2; pb++ {
		var cand [4]uint32
		var e float32
		for c := 0; c < 4; c++ {
			t := clamp(v[c], 0, 1) * 255
			qc := uint32(clamp(roundf((t-float32(pb))/2), 0, 127))
			d := float32(qc<<1|pb) - t
			e += d * d
			cand[c] = qc
		}
		if e < bestErr {
			q, p, bestErr = cand, pb, e
		}
	}
	return q, p
}

// encodeBC7 writes a mode 6 block: one subset, RGBA endpoints with
// per-endpoint p-bits and 4-bit indices.
func encodeBC7(b *Block, dst []byte) {
	pts := make([][4]float32, 16)
	for i := range pts {
		for c := 0; c < 4; c++ {
			pts[i][c] = clamp(b[i*4+c], 0, 1)
		}
	}
	lo, hi := fitEndpoints(pts, 4)
	q0, p0 := quantizeMode6(lo)
	q1, p1 := quantizeMode6(hi)

	var e0, e1 [4]uint32
	for c := 0; c < 4; c++ {
		e0[c] = q0[c]<<1 | p0
		e1[c] = q1[c]<<1 | p1
	}

	var idx [16]uint32
	for i := 0; i < 16; i++ {
		bestErr := float32(math.MaxFloat32)
		for j := uint32(0); j < 16; j++ {
			var e float32
			for c := 0; c < 4; c++ {
				d := float32(interpolate(e0[c], e1[c], j, 4)) - pts[i][c]*255
				e += d * d
			}
			if e < bestErr {
				idx[i], bestErr = j, e
			}
		}
	}

	// The anchor index drops its top bit; mirror the endpoints to clear it.
	if idx[0]&8 != 0 {
		q0, q1 = q1, q0
		p0, p1 = p1, p0
		for i := range idx {
			idx[i] = 15 - idx[i]
		}
	}

	var w bitWriter
	w.write(1<<6, 7)
	for c := 0; c < 4; c++ {
		w.write(q0[c], 7)
		w.write(q1[c], 7)
	}
	w.write(p0, 1)
	w.write(p1, 1)
	w.write(idx[0], 3)
	for i := 1; i < 16; i++ {
		w.write(idx[i], 4)
	}
	binary.LittleEndian.PutUint64(dst, w.lo)
	binary.LittleEndian.PutUint64(dst[8:], w.hi)
}
