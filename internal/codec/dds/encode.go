// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package dds

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/gogpu/dxtex/dxgi"
	"github.com/gogpu/dxtex/internal/codec"
	"github.com/gogpu/dxtex/internal/texmeta"
)

// Encode writes images as a DDS file. images must hold every sub-image of
// meta in texmeta.Layout order. Rows are written tightly packed, so the
// output depends only on meta, the pixels and flags.
func Encode(w io.Writer, meta texmeta.Metadata, images []texmeta.Surface, flags Flags) error {
	meta, err := texmeta.Normalize(meta)
	if err != nil {
		return fmt.Errorf("dds: %w: %v", codec.ErrInvalidImage, err)
	}
	if n := texmeta.ImageCount(meta); len(images) != n {
		return fmt.Errorf("dds: %w: %d images, metadata describes %d", codec.ErrInvalidImage, len(images), n)
	}

	hdr, ext, err := buildHeader(&meta, flags)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, le, uint32(magic)); err != nil {
		return err
	}
	if err := binary.Write(bw, le, &hdr); err != nil {
		return err
	}
	if ext != nil {
		if err := binary.Write(bw, le, ext); err != nil {
			return err
		}
	}

	subs, _, err := texmeta.Layout(meta, dxgi.CPFlagsNone)
	if err != nil {
		return fmt.Errorf("dds: %w", err)
	}
	for i := range images {
		img := &images[i]
		if img.Width != subs[i].Width || img.Height != subs[i].Height || img.Format != meta.Format {
			return fmt.Errorf("dds: %w: image %d is %dx%d %v, want %dx%d %v", codec.ErrInvalidImage,
				i, img.Width, img.Height, img.Format, subs[i].Width, subs[i].Height, meta.Format)
		}
		pix, _, err := codec.Tight(img)
		if err != nil {
			return fmt.Errorf("dds: %w", err)
		}
		if _, err := bw.Write(pix); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func buildHeader(meta *texmeta.Metadata, flags Flags) (header, *headerDX10, error) {
	hdr := header{
		Size:        headerSize,
		Flags:       hdrCaps | hdrHeight | hdrWidth | hdrPixelFormat,
		Width:       uint32(meta.Width),
		Height:      uint32(meta.Height),
		MipMapCount: uint32(meta.MipLevels),
		Caps:        capsTexture,
	}
	if meta.MipLevels > 1 {
		hdr.Flags |= hdrMipCount
		hdr.Caps |= capsComplex | capsMipmap
	}

	row, slice, err := dxgi.ComputePitch(meta.Format, meta.Width, meta.Height, dxgi.CPFlagsNone)
	if err != nil {
		return hdr, nil, fmt.Errorf("dds: %w: %v", codec.ErrUnsupported, err)
	}
	if meta.Format.IsCompressed() {
		hdr.Flags |= hdrLinearSize
		hdr.PitchOrLinearSize = uint32(slice)
	} else {
		hdr.Flags |= hdrPitch
		hdr.PitchOrLinearSize = uint32(row)
	}

	switch meta.Dimension {
	case texmeta.Texture3D:
		hdr.Flags |= hdrDepth
		hdr.Depth = uint32(meta.Depth)
		hdr.Caps |= capsComplex
		hdr.Caps2 |= caps2Volume
	case texmeta.Texture2D:
		if meta.IsCubemap() {
			hdr.Caps |= capsComplex
			hdr.Caps2 |= caps2Cubemap | caps2AllFaces
		}
	}

	premul := meta.IsPMAlpha()
	pf, legacy := legacyPixelFormat(meta.Format, premul)
	arrayed := meta.ArraySize > 1 && !(meta.IsCubemap() && meta.ArraySize == 6)
	if meta.Dimension == texmeta.Texture1D {
		arrayed = true
	}

	useDX10 := !legacy || arrayed || flags&(FlagsForceDX10Ext|FlagsForceDX10ExtMisc2) != 0
	if !useDX10 {
		hdr.PixelFormat = pf
		return hdr, nil, nil
	}
	if flags&FlagsForceDX9Legacy != 0 {
		return hdr, nil, fmt.Errorf("dds: %w: %v needs the DX10 header", codec.ErrUnsupported, meta.Format)
	}

	hdr.PixelFormat = pixelFormat{Size: pfSize, Flags: pfFourCC, FourCC: fourCC("DX10")}
	ext := &headerDX10{
		Format:    uint32(meta.Format),
		ArraySize: uint32(meta.ArraySize),
	}
	switch meta.Dimension {
	case texmeta.Texture1D:
		ext.Dimension = dimTexture1D
	case texmeta.Texture2D:
		ext.Dimension = dimTexture2D
		if meta.IsCubemap() {
			ext.MiscFlag |= dx10MiscCube
			ext.ArraySize /= 6
		}
	case texmeta.Texture3D:
		ext.Dimension = dimTexture3D
	}
	ext.MiscFlags2 = uint32(meta.AlphaMode())
	return hdr, ext, nil
}
