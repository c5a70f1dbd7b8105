// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wic reads and writes the general-purpose image containers (BMP,
// JPEG, PNG, TIFF, GIF, WEBP, HEIF) through a registry of Go image codecs.
//
// Decoded images load as R8G8B8A8_UNORM, or R16G16B16A16_UNORM for sources
// with 16 bits per channel. Windows Media Photo and icon files are
// recognized but have no codec.
package wic

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/gogpu/dxtex/dxgi"
	"github.com/gogpu/dxtex/internal/codec"
	teximage "github.com/gogpu/dxtex/internal/image"
	"github.com/gogpu/dxtex/internal/pixel"
	"github.com/gogpu/dxtex/internal/texmeta"
)

// Flags control loading.
type Flags uint32

const (
	FlagsNone Flags = 0

	// FlagsNo16BPP loads 16-bit sources as 8 bits per channel.
	FlagsNo16BPP Flags = 0x4

	// FlagsAllFrames loads every frame of a multi-frame file as an array
	// item.
	FlagsAllFrames Flags = 0x10

	// FlagsIgnoreSRGB and FlagsForceLinear keep the format linear.
	FlagsIgnoreSRGB  Flags = 0x20
	FlagsForceSRGB   Flags = 0x40
	FlagsForceLinear Flags = 0x80

	// FlagsDefaultSRGB treats 8-bit sources as sRGB.
	FlagsDefaultSRGB Flags = 0x100
)

func deepModel(m color.Model) bool {
	switch m {
	case color.RGBA64Model, color.NRGBA64Model, color.Gray16Model:
		return true
	}
	return false
}

func opaqueModel(m color.Model) bool {
	switch m {
	case color.YCbCrModel, color.GrayModel, color.Gray16Model, color.CMYKModel:
		return true
	}
	return false
}

func loadFormat(m color.Model, flags Flags) dxgi.Format {
	if deepModel(m) && flags&FlagsNo16BPP == 0 {
		return dxgi.FormatR16G16B16A16Unorm
	}
	f := dxgi.FormatR8G8B8A8Unorm
	if flags&(FlagsForceLinear|FlagsIgnoreSRGB) != 0 {
		return f
	}
	if flags&(FlagsForceSRGB|FlagsDefaultSRGB) != 0 {
		return f.MakeSRGB()
	}
	return f
}

func metadataFor(width, height, frames int, m color.Model, flags Flags) texmeta.Metadata {
	meta := texmeta.Metadata{
		Width:     width,
		Height:    height,
		Depth:     1,
		ArraySize: frames,
		MipLevels: 1,
		Format:    loadFormat(m, flags),
		Dimension: texmeta.Texture2D,
	}
	if opaqueModel(m) {
		meta.SetAlphaMode(texmeta.AlphaModeOpaque)
	}
	return meta
}

// Metadata identifies the container of data and reads its header. With
// FlagsAllFrames on a multi-frame codec the frames are decoded to count
// them.
func Metadata(data []byte, flags Flags) (texmeta.Metadata, error) {
	c, err := Detect(data)
	if err != nil {
		return texmeta.Metadata{}, err
	}
	e, err := lookup(c)
	if err != nil {
		return texmeta.Metadata{}, err
	}

	if flags&FlagsAllFrames != 0 && e.DecodeAll != nil {
		meta, _, err := decodeFrames(c, e, data, flags)
		return meta, err
	}
	cfg, err := config(c, e, data)
	if err != nil {
		return texmeta.Metadata{}, err
	}
	return metadataFor(cfg.Width, cfg.Height, 1, cfg.ColorModel, flags), nil
}

// config reads the header of data and rejects sizes outside the 2D texture
// limits, so callers can decode without trusting the header.
func config(c Codec, e Entry, data []byte) (image.Config, error) {
	cfg, err := e.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return cfg, fmt.Errorf("wic: %v: %w: %v", c, codec.ErrBadHeader, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return cfg, fmt.Errorf("wic: %v: %w: %dx%d", c, codec.ErrBadHeader, cfg.Width, cfg.Height)
	}
	if cfg.Width > texmeta.MaxTextureDimension2D || cfg.Height > texmeta.MaxTextureDimension2D {
		return cfg, fmt.Errorf("wic: %v: %w: %dx%d exceeds %d", c, codec.ErrUnsupported,
			cfg.Width, cfg.Height, texmeta.MaxTextureDimension2D)
	}
	return cfg, nil
}

// Decode reads data into a tightly packed arena of one 2D image per frame.
func Decode(data []byte, flags Flags) (texmeta.Metadata, []byte, error) {
	c, err := Detect(data)
	if err != nil {
		return texmeta.Metadata{}, nil, err
	}
	e, err := lookup(c)
	if err != nil {
		return texmeta.Metadata{}, nil, err
	}
	return decodeFrames(c, e, data, flags)
}

func decodeFrames(c Codec, e Entry, data []byte, flags Flags) (texmeta.Metadata, []byte, error) {
	if _, err := config(c, e, data); err != nil {
		return texmeta.Metadata{}, nil, err
	}
	var frames []image.Image
	if flags&FlagsAllFrames != 0 && e.DecodeAll != nil {
		all, err := e.DecodeAll(bytes.NewReader(data))
		if err != nil {
			return texmeta.Metadata{}, nil, fmt.Errorf("wic: %v: %w: %v", c, codec.ErrBadHeader, err)
		}
		frames = all
	} else {
		img, err := e.Decode(bytes.NewReader(data))
		if err != nil {
			return texmeta.Metadata{}, nil, fmt.Errorf("wic: %v: %w: %v", c, codec.ErrBadHeader, err)
		}
		frames = []image.Image{img}
	}

	if len(frames) == 0 {
		return texmeta.Metadata{}, nil, fmt.Errorf("wic: %v: %w: no frames", c, codec.ErrBadHeader)
	}
	if len(frames) > texmeta.MaxArraySize {
		return texmeta.Metadata{}, nil, fmt.Errorf("wic: %v: %w: %d frames exceeds %d",
			c, codec.ErrUnsupported, len(frames), texmeta.MaxArraySize)
	}
	first := frames[0].Bounds()
	meta := metadataFor(first.Dx(), first.Dy(), len(frames), frames[0].ColorModel(), flags)
	if meta.Width <= 0 || meta.Height <= 0 {
		return texmeta.Metadata{}, nil, fmt.Errorf("wic: %v: %w: empty image", c, codec.ErrBadHeader)
	}

	row, slice, err := dxgi.ComputePitch(meta.Format, meta.Width, meta.Height, dxgi.CPFlagsNone)
	if err != nil {
		return texmeta.Metadata{}, nil, err
	}
	out := make([]byte, slice*len(frames))
	for i, img := range frames {
		if img.Bounds().Size() != first.Size() {
			return texmeta.Metadata{}, nil, fmt.Errorf("wic: %v: %w: frame %d size differs", c, codec.ErrUnsupported, i)
		}
		plane := teximage.FromStdImage(img)
		if plane == nil {
			return texmeta.Metadata{}, nil, fmt.Errorf("wic: %v: %w: frame %d", c, codec.ErrBadHeader, i)
		}
		dst := out[i*slice:]
		for y := 0; y < meta.Height; y++ {
			if err := pixel.StoreRow(dst[y*row:(y+1)*row], plane.Row(y), meta.Width, meta.Format); err != nil {
				return texmeta.Metadata{}, nil, fmt.Errorf("wic: %w", err)
			}
		}
	}
	return meta, out, nil
}

// Encode writes s with codec c. Sources with more than 8 bits per channel
// keep 16 bits when the codec can store them.
func Encode(w io.Writer, c Codec, s *texmeta.Surface) error {
	e, err := lookup(c)
	if err != nil {
		return err
	}
	if e.Encode == nil {
		return fmt.Errorf("wic: %w: %v is decode-only", codec.ErrUnsupported, c)
	}
	if !pixel.Supported(s.Format) || s.Format.IsCompressed() {
		return fmt.Errorf("wic: %w: format %v", codec.ErrUnsupported, s.Format)
	}

	plane, err := teximage.NewPlane(s.Width, s.Height)
	if err != nil {
		return fmt.Errorf("wic: %w: %v", codec.ErrInvalidImage, err)
	}
	for y := 0; y < s.Height; y++ {
		row := s.Row(y)
		if row == nil {
			return fmt.Errorf("wic: %w: row %d outside pixels", codec.ErrInvalidImage, y)
		}
		if err := pixel.LoadRow(plane.Row(y), row, s.Width, s.Format); err != nil {
			return fmt.Errorf("wic: %w", err)
		}
	}

	img := plane.ToStdImage(e.Deep && s.Format.BitsPerColor() > 8)
	if err := e.Encode(w, img); err != nil {
		return fmt.Errorf("wic: %v: %w", c, err)
	}
	return nil
}
