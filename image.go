package dxtex

import (
	"github.com/gogpu/dxtex/dxgi"
	"github.com/gogpu/dxtex/internal/texmeta"
)

// Image is a read-only view of one sub-image (one mip level of one array
// item or depth slice) inside a ScratchImage. It does not own its pixels:
// it must not be used after the ScratchImage that produced it is released
// or overwritten.
//
// Images are only produced by ScratchImage.Image and ScratchImage.Images.
type Image struct {
	width      int
	height     int
	rowPitch   int
	slicePitch int
	format     dxgi.Format
	pixels     []byte
}

// Width returns the width in pixels.
func (img Image) Width() int { return img.width }

// Height returns the height in pixels.
func (img Image) Height() int { return img.height }

// RowPitch returns the bytes per scanline (per block row for compressed
// formats).
func (img Image) RowPitch() int { return img.rowPitch }

// SlicePitch returns the size of the image in bytes.
func (img Image) SlicePitch() int { return img.slicePitch }

// Format returns the pixel format.
func (img Image) Format() dxgi.Format { return img.format }

// Pixels returns exactly SlicePitch bytes of pixel data. The slice aliases
// the owning ScratchImage.
func (img Image) Pixels() []byte { return img.pixels }

func (img Image) surface() *texmeta.Surface {
	return &texmeta.Surface{
		Width:      img.width,
		Height:     img.height,
		RowPitch:   img.rowPitch,
		SlicePitch: img.slicePitch,
		Format:     img.format,
		Pixels:     img.pixels,
	}
}

func surfaces(images []Image) []texmeta.Surface {
	out := make([]texmeta.Surface, len(images))
	for i, img := range images {
		out[i] = *img.surface()
	}
	return out
}
