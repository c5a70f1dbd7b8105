// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package pixel converts scanlines between packed DXGI pixel formats and
// float32 RGBA, four values per pixel.
//
// Channels missing from a format load as 0 for color and 1 for alpha.
// sRGB formats load their stored codes unchanged; callers apply the
// transfer function where it matters.
package pixel

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/ajroetker/go-highway/hwy"
	"github.com/gogpu/dxtex/dxgi"
)

// ErrUnsupportedFormat is returned for formats without a scanline codec.
var ErrUnsupportedFormat = errors.New("pixel: unsupported format")

// ErrShortBuffer is returned when a source or destination row is too small.
var ErrShortBuffer = errors.New("pixel: buffer too small")

type kind uint8

const (
	kindUnorm kind = iota
	kindSnorm
	kindUint
	kindSint
	kindFloat
)

// uniform describes formats whose channels all share one size and kind.
type uniform struct {
	channels int
	size     int // bytes per channel
	kind     kind
	bgr      bool // first and third channel swapped
	noAlpha  bool // fourth channel stored but ignored (X8)
}

type codec struct {
	bpp   int // bytes per pixel
	load  func(dst []float32, src []byte, width int)
	store func(dst []byte, src []float32, width int)
}

var codecs map[dxgi.Format]codec

func init() {
	codecs = make(map[dxgi.Format]codec)

	for f, u := range map[dxgi.Format]uniform{
		dxgi.FormatR32G32B32A32Float: {4, 4, kindFloat, false, false},
		dxgi.FormatR32G32B32A32Uint:  {4, 4, kindUint, false, false},
		dxgi.FormatR32G32B32A32Sint:  {4, 4, kindSint, false, false},
		dxgi.FormatR32G32B32Float:    {3, 4, kindFloat, false, false},
		dxgi.FormatR32G32B32Uint:     {3, 4, kindUint, false, false},
		dxgi.FormatR32G32B32Sint:     {3, 4, kindSint, false, false},
		dxgi.FormatR16G16B16A16Float: {4, 2, kindFloat, false, false},
		dxgi.FormatR16G16B16A16Unorm: {4, 2, kindUnorm, false, false},
		dxgi.FormatR16G16B16A16Uint:  {4, 2, kindUint, false, false},
		dxgi.FormatR16G16B16A16Snorm: {4, 2, kindSnorm, false, false},
		dxgi.FormatR16G16B16A16Sint:  {4, 2, kindSint, false, false},
		dxgi.FormatR32G32Float:       {2, 4, kindFloat, false, false},
		dxgi.FormatR32G32Uint:        {2, 4, kindUint, false, false},
		dxgi.FormatR32G32Sint:        {2, 4, kindSint, false, false},
		dxgi.FormatR8G8B8A8Unorm:     {4, 1, kindUnorm, false, false},
		dxgi.FormatR8G8B8A8UnormSRGB: {4, 1, kindUnorm, false, false},
		dxgi.FormatR8G8B8A8Uint:      {4, 1, kindUint, false, false},
		dxgi.FormatR8G8B8A8Snorm:     {4, 1, kindSnorm, false, false},
		dxgi.FormatR8G8B8A8Sint:      {4, 1, kindSint, false, false},
		dxgi.FormatR16G16Float:       {2, 2, kindFloat, false, false},
		dxgi.FormatR16G16Unorm:       {2, 2, kindUnorm, false, false},
		dxgi.FormatR16G16Uint:        {2, 2, kindUint, false, false},
		dxgi.FormatR16G16Snorm:       {2, 2, kindSnorm, false, false},
		dxgi.FormatR16G16Sint:        {2, 2, kindSint, false, false},
		dxgi.FormatD32Float:          {1, 4, kindFloat, false, false},
		dxgi.FormatR32Float:          {1, 4, kindFloat, false, false},
		dxgi.FormatR32Uint:           {1, 4, kindUint, false, false},
		dxgi.FormatR32Sint:           {1, 4, kindSint, false, false},
		dxgi.FormatR8G8Unorm:         {2, 1, kindUnorm, false, false},
		dxgi.FormatR8G8Uint:          {2, 1, kindUint, false, false},
		dxgi.FormatR8G8Snorm:         {2, 1, kindSnorm, false, false},
		dxgi.FormatR8G8Sint:          {2, 1, kindSint, false, false},
		dxgi.FormatR16Float:          {1, 2, kindFloat, false, false},
		dxgi.FormatD16Unorm:          {1, 2, kindUnorm, false, false},
		dxgi.FormatR16Unorm:          {1, 2, kindUnorm, false, false},
		dxgi.FormatR16Uint:           {1, 2, kindUint, false, false},
		dxgi.FormatR16Snorm:          {1, 2, kindSnorm, false, false},
		dxgi.FormatR16Sint:           {1, 2, kindSint, false, false},
		dxgi.FormatR8Unorm:           {1, 1, kindUnorm, false, false},
		dxgi.FormatR8Uint:            {1, 1, kindUint, false, false},
		dxgi.FormatR8Snorm:           {1, 1, kindSnorm, false, false},
		dxgi.FormatR8Sint:            {1, 1, kindSint, false, false},
		dxgi.FormatB8G8R8A8Unorm:     {4, 1, kindUnorm, true, false},
		dxgi.FormatB8G8R8A8UnormSRGB: {4, 1, kindUnorm, true, false},
		dxgi.FormatB8G8R8X8Unorm:     {4, 1, kindUnorm, true, true},
		dxgi.FormatB8G8R8X8UnormSRGB: {4, 1, kindUnorm, true, true},
	} {
		codecs[f] = uniformCodec(u)
	}

	codecs[dxgi.FormatA8Unorm] = codec{bpp: 1, load: loadA8, store: storeA8}
	codecs[dxgi.FormatR10G10B10A2Unorm] = codec{bpp: 4, load: loadR10G10B10A2, store: storeR10G10B10A2}
	codecs[dxgi.FormatR11G11B10Float] = codec{bpp: 4, load: loadR11G11B10, store: storeR11G11B10}
	codecs[dxgi.FormatR9G9B9E5SharedExp] = codec{bpp: 4, load: loadRGBE9995, store: storeRGBE9995}
	codecs[dxgi.FormatB5G6R5Unorm] = codec{bpp: 2, load: loadB5G6R5, store: storeB5G6R5}
	codecs[dxgi.FormatB5G5R5A1Unorm] = codec{bpp: 2, load: loadB5G5R5A1, store: storeB5G5R5A1}
	codecs[dxgi.FormatB4G4R4A4Unorm] = codec{bpp: 2, load: loadB4G4R4A4, store: storeB4G4R4A4}
}

// resolve maps typeless formats onto a concrete member.
func resolve(f dxgi.Format) dxgi.Format {
	if !f.IsTypeless(false) {
		return f
	}
	if u := f.MakeTypelessUNORM(); u != f {
		return u
	}
	return f.MakeTypelessFLOAT()
}

// Supported reports whether f has a scanline codec.
func Supported(f dxgi.Format) bool {
	_, ok := codecs[resolve(f)]
	return ok
}

// LoadRow unpacks width pixels of format f from src into dst, which must
// hold at least 4*width values.
func LoadRow(dst []float32, src []byte, width int, f dxgi.Format) error {
	c, ok := codecs[resolve(f)]
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
	}
	if len(src) < c.bpp*width || len(dst) < 4*width {
		return ErrShortBuffer
	}
	c.load(dst, src, width)
	return nil
}

// StoreRow packs width pixels from src into dst in format f.
func StoreRow(dst []byte, src []float32, width int, f dxgi.Format) error {
	c, ok := codecs[resolve(f)]
	if !ok {
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
	}
	if len(dst) < c.bpp*width || len(src) < 4*width {
		return ErrShortBuffer
	}
	c.store(dst, src, width)
	return nil
}

func uniformCodec(u uniform) codec {
	bpp := u.channels * u.size
	return codec{
		bpp: bpp,
		load: func(dst []float32, src []byte, width int) {
			for x := 0; x < width; x++ {
				p := src[x*bpp:]
				d := dst[x*4 : x*4+4]
				d[0], d[1], d[2], d[3] = 0, 0, 0, 1
				for c := 0; c < u.channels; c++ {
					d[c] = readChannel(p[c*u.size:], u.size, u.kind)
				}
				if u.bgr {
					d[0], d[2] = d[2], d[0]
				}
				if u.noAlpha {
					d[3] = 1
				}
			}
		},
		store: func(dst []byte, src []float32, width int) {
			for x := 0; x < width; x++ {
				p := dst[x*bpp:]
				s := [4]float32(src[x*4 : x*4+4])
				if u.bgr {
					s[0], s[2] = s[2], s[0]
				}
				if u.noAlpha {
					s[3] = 1
				}
				for c := 0; c < u.channels; c++ {
					writeChannel(p[c*u.size:], u.size, u.kind, s[c])
				}
			}
		},
	}
}

func readChannel(p []byte, size int, k kind) float32 {
	switch size {
	case 1:
		v := p[0]
		switch k {
		case kindUnorm:
			return float32(v) / 255
		case kindSnorm:
			return max(float32(int8(v))/127, -1)
		case kindUint:
			return float32(v)
		case kindSint:
			return float32(int8(v))
		}
	case 2:
		v := binary.LittleEndian.Uint16(p)
		switch k {
		case kindUnorm:
			return float32(v) / 65535
		case kindSnorm:
			return max(float32(int16(v))/32767, -1)
		case kindUint:
			return float32(v)
		case kindSint:
			return float32(int16(v))
		case kindFloat:
			return hwy.Float16ToFloat32(hwy.Float16FromBits(v))
		}
	case 4:
		v := binary.LittleEndian.Uint32(p)
		switch k {
		case kindUint:
			return float32(v)
		case kindSint:
			return float32(int32(v))
		case kindFloat:
			return math.Float32frombits(v)
		}
	}
	return 0
}

func writeChannel(p []byte, size int, k kind, v float32) {
	switch size {
	case 1:
		switch k {
		case kindUnorm:
			p[0] = uint8(clamp(v, 0, 1)*255 + 0.5)
		case kindSnorm:
			p[0] = uint8(int8(roundHalfAway(clamp(v, -1, 1) * 127)))
		case kindUint:
			p[0] = uint8(clamp(v, 0, 255))
		case kindSint:
			p[0] = uint8(int8(clamp(v, -128, 127)))
		}
	case 2:
		var u uint16
		switch k {
		case kindUnorm:
			u = uint16(clamp(v, 0, 1)*65535 + 0.5)
		case kindSnorm:
			u = uint16(int16(roundHalfAway(clamp(v, -1, 1) * 32767)))
		case kindUint:
			u = uint16(clamp(v, 0, 65535))
		case kindSint:
			u = uint16(int16(clamp(v, -32768, 32767)))
		case kindFloat:
			u = hwy.Float32ToFloat16(v).Bits()
		}
		binary.LittleEndian.PutUint16(p, u)
	case 4:
		var u uint32
		switch k {
		case kindUint:
			u = uint32(clamp(v, 0, math.MaxUint32))
		case kindSint:
			u = uint32(int32(clamp(v, math.MinInt32, math.MaxInt32)))
		case kindFloat:
			u = math.Float32bits(v)
		}
		binary.LittleEndian.PutUint32(p, u)
	}
}

func clamp(v, lo, hi float32) float32 {
	if v != v {
		return 0
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func roundHalfAway(v float32) float32 {
	if v < 0 {
		return v - 0.5
	}
	return v + 0.5
}

func unorm(v float32, maxCode uint32) uint32 {
	return uint32(clamp(v, 0, 1)*float32(maxCode) + 0.5)
}
