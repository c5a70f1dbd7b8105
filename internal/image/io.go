package image

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// FromStdImage converts img to a plane with straight (non-premultiplied)
// alpha.
func FromStdImage(img image.Image) *Plane {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	p, err := NewPlane(width, height)
	if err != nil {
		return nil
	}

	// Fast path for NRGBA images
	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := range height {
			src := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+width*4]
			dst := p.Row(y)
			for i, v := range src {
				dst[i] = float32(v) / 255
			}
		}
		return p
	}

	// Fast path for premultiplied RGBA images
	if rgba, ok := img.(*image.RGBA); ok {
		for y := range height {
			src := rgba.Pix[y*rgba.Stride : y*rgba.Stride+width*4]
			dst := p.Row(y)
			for i, v := range src {
				dst[i] = float32(v) / 255
			}
		}
		p.Demultiply()
		return p
	}

	// Generic path: normalize through 16-bit straight alpha.
	n64, ok := img.(*image.NRGBA64)
	if !ok {
		n64 = image.NewNRGBA64(image.Rect(0, 0, width, height))
		draw.Draw(n64, n64.Bounds(), img, bounds.Min, draw.Src)
	}
	for y := range height {
		src := n64.Pix[y*n64.Stride : y*n64.Stride+width*8]
		dst := p.Row(y)
		for i := range dst {
			dst[i] = float32(uint16(src[2*i])<<8|uint16(src[2*i+1])) / 65535
		}
	}
	return p
}

// ToStdImage converts the plane to *image.NRGBA, or *image.NRGBA64 when
// deep is set. Values are clamped to [0,1].
func (p *Plane) ToStdImage(deep bool) image.Image {
	rect := image.Rect(0, 0, p.width, p.height)
	if deep {
		img := image.NewNRGBA64(rect)
		for y := range p.height {
			row := p.Row(y)
			for x := range p.width {
				o := row[x*4 : x*4+4]
				img.SetNRGBA64(x, y, color.NRGBA64{
					R: to16(o[0]), G: to16(o[1]), B: to16(o[2]), A: to16(o[3]),
				})
			}
		}
		return img
	}

	img := image.NewNRGBA(rect)
	for y := range p.height {
		row := p.Row(y)
		dst := img.Pix[y*img.Stride : y*img.Stride+p.width*4]
		for i, v := range row {
			dst[i] = to8(v)
		}
	}
	return img
}

func to8(v float32) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}

func to16(v float32) uint16 {
	return uint16(clamp01(v)*65535 + 0.5)
}

func clamp01(v float32) float32 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
