// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wic

import (
	"errors"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/deepteams/webp"
	"github.com/gen2brain/heic"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

const jpegQuality = 90

var errNoFrames = errors.New("gif: no frames")

func init() {
	Register(CodecBMP, Entry{
		Decode:       bmp.Decode,
		DecodeConfig: bmp.DecodeConfig,
		Encode:       bmp.Encode,
	})
	Register(CodecJPEG, Entry{
		Decode:       jpeg.Decode,
		DecodeConfig: jpeg.DecodeConfig,
		Encode: func(w io.Writer, img image.Image) error {
			return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
		},
	})
	Register(CodecPNG, Entry{
		Decode:       png.Decode,
		DecodeConfig: png.DecodeConfig,
		Encode:       png.Encode,
		Deep:         true,
	})
	Register(CodecTIFF, Entry{
		Decode:       tiff.Decode,
		DecodeConfig: tiff.DecodeConfig,
		Encode: func(w io.Writer, img image.Image) error {
			return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
		},
		Deep: true,
	})
	Register(CodecGIF, Entry{
		Decode: func(r io.Reader) (image.Image, error) {
			frames, err := decodeGIF(r)
			if err != nil {
				return nil, err
			}
			return frames[0], nil
		},
		DecodeConfig: gif.DecodeConfig,
		DecodeAll:    decodeGIF,
		Encode: func(w io.Writer, img image.Image) error {
			return gif.Encode(w, img, nil)
		},
	})
	Register(CodecWEBP, Entry{
		Decode:       webp.Decode,
		DecodeConfig: webp.DecodeConfig,
		Encode: func(w io.Writer, img image.Image) error {
			opts := webp.DefaultOptions()
			opts.Lossless = true
			opts.Exact = true
			return webp.Encode(w, img, opts)
		},
	})
	Register(CodecHEIF, Entry{
		Decode:       heic.Decode,
		DecodeConfig: heic.DecodeConfig,
	})
}

// decodeGIF composites every frame of an animation onto the logical
// screen, honoring the background and previous disposal methods.
func decodeGIF(r io.Reader) ([]image.Image, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, err
	}
	screen := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if screen.Empty() && len(g.Image) > 0 {
		screen = g.Image[0].Bounds()
	}

	canvas := image.NewNRGBA(screen)
	frames := make([]image.Image, 0, len(g.Image))
	for i, frame := range g.Image {
		var disposal byte
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		var saved []byte
		if disposal == gif.DisposalPrevious {
			saved = append([]byte(nil), canvas.Pix...)
		}

		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		out := image.NewNRGBA(screen)
		copy(out.Pix, canvas.Pix)
		frames = append(frames, out)

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			copy(canvas.Pix, saved)
		}
	}
	if len(frames) == 0 {
		return nil, errNoFrames
	}
	return frames, nil
}
