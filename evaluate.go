package dxtex

import (
	teximage "github.com/gogpu/dxtex/internal/image"
)

// Vec4 is one pixel as RGBA float32 components. Unorm formats map to
// [0,1], snorm formats to [-1,1]; float formats keep their values. sRGB
// formats present their encoded values.
type Vec4 [4]float32

// EvaluateFunc receives one scanline of pixels and its row index within
// the current sub-image.
type EvaluateFunc func(pixels []Vec4, y int)

// TransformFunc writes the transformed scanline in into out. out starts as
// a copy of in.
type TransformFunc func(out, in []Vec4, y int)

// EvaluateImages calls fn for every scanline of every sub-image, one
// scanline at a time, in increasing row order within each sub-image and in
// layout order across sub-images. The pixels slice is reused between
// calls and must not be retained. fn runs on the calling goroutine.
func EvaluateImages(images []Image, meta TexMetadata, fn EvaluateFunc) error {
	const op = "EvaluateImages"
	if fn == nil {
		return invalidArg(op, "nil callback")
	}
	if _, err := checkImages(op, images, meta); err != nil {
		return err
	}

	var row []Vec4
	for _, img := range images {
		p, err := loadPlane(img)
		if err != nil {
			return wrap(op, err)
		}
		row = growRow(row, img.width)
		for y := 0; y < img.height; y++ {
			readRow(row, p, y)
			fn(row, y)
		}
		releasePlane(p)
	}
	return nil
}

// TransformImages returns a copy of the images with every scanline passed
// through fn. Callback ordering is that of EvaluateImages.
func TransformImages(images []Image, meta TexMetadata, fn TransformFunc) (*ScratchImage, error) {
	const op = "TransformImages"
	if fn == nil {
		return nil, invalidArg(op, "nil callback")
	}
	meta, err := checkImages(op, images, meta)
	if err != nil {
		return nil, err
	}

	return build(op, meta, func(out *ScratchImage) error {
		dsts := out.Images()
		enc := &encoder{}
		var in, res []Vec4
		for i, img := range images {
			p, err := loadPlane(img)
			if err != nil {
				return err
			}
			in = growRow(in, img.width)
			res = growRow(res, img.width)
			for y := 0; y < img.height; y++ {
				readRow(in, p, y)
				copy(res, in)
				fn(res, in, y)
				writeRow(p, y, res)
			}
			err = enc.store(dsts[i], p)
			releasePlane(p)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func growRow(row []Vec4, width int) []Vec4 {
	if cap(row) < width {
		return make([]Vec4, width)
	}
	return row[:width]
}

func readRow(dst []Vec4, p *teximage.Plane, y int) {
	src := p.Row(y)
	for x := range dst {
		copy(dst[x][:], src[x*4:x*4+4])
	}
}

func writeRow(p *teximage.Plane, y int, src []Vec4) {
	dst := p.Row(y)
	for x := range src {
		copy(dst[x*4:x*4+4], src[x][:])
	}
}
