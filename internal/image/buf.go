// Package image holds the float32 working planes that texture operations
// run on: resampling, mip generation, orientation changes, alpha handling
// and the bridge to Go's image types.
package image

import (
	"errors"
)

// Common errors for plane operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("image: invalid dimensions")

	// ErrDataTooSmall is returned when provided data is smaller than required.
	ErrDataTooSmall = errors.New("image: data buffer too small")

	// ErrOutOfBounds is returned when pixel coordinates are outside the plane.
	ErrOutOfBounds = errors.New("image: coordinates out of bounds")
)

// Plane is a width x height grid of RGBA pixels, four float32 values per
// pixel in row-major order with no row padding.
//
// Thread safety: Plane is safe for concurrent reads. Writes to disjoint
// rows from different goroutines are safe; anything else needs external
// synchronization.
type Plane struct {
	pix    []float32
	width  int
	height int
}

// NewPlane allocates a zeroed plane.
func NewPlane(width, height int) (*Plane, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	return &Plane{
		pix:    make([]float32, width*height*4),
		width:  width,
		height: height,
	}, nil
}

// FromPixels wraps pix without copying. The caller keeps pix alive for the
// lifetime of the plane.
func FromPixels(pix []float32, width, height int) (*Plane, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if len(pix) < width*height*4 {
		return nil, ErrDataTooSmall
	}
	return &Plane{pix: pix[:width*height*4], width: width, height: height}, nil
}

// Clone returns a deep copy.
func (p *Plane) Clone() *Plane {
	pix := make([]float32, len(p.pix))
	copy(pix, p.pix)
	return &Plane{pix: pix, width: p.width, height: p.height}
}

// Width returns the plane width in pixels.
func (p *Plane) Width() int { return p.width }

// Height returns the plane height in pixels.
func (p *Plane) Height() int { return p.height }

// Bounds returns (width, height).
func (p *Plane) Bounds() (int, int) { return p.width, p.height }

// Pix returns the backing slice.
func (p *Plane) Pix() []float32 { return p.pix }

// Row returns the 4*width values of row y, or nil when y is out of range.
func (p *Plane) Row(y int) []float32 {
	if y < 0 || y >= p.height {
		return nil
	}
	start := y * p.width * 4
	return p.pix[start : start+p.width*4]
}

// At returns the pixel at (x, y). Out-of-range coordinates read as zero.
func (p *Plane) At(x, y int) [4]float32 {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return [4]float32{}
	}
	off := (y*p.width + x) * 4
	return [4]float32(p.pix[off : off+4])
}

// Set writes the pixel at (x, y).
func (p *Plane) Set(x, y int, c [4]float32) error {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return ErrOutOfBounds
	}
	off := (y*p.width + x) * 4
	copy(p.pix[off:off+4], c[:])
	return nil
}

// clampedAt reads (x, y) with coordinates clamped to the edges.
func (p *Plane) clampedAt(x, y int) [4]float32 {
	x = clamp(x, 0, p.width-1)
	y = clamp(y, 0, p.height-1)
	off := (y*p.width + x) * 4
	return [4]float32(p.pix[off : off+4])
}

// Clear zeroes every pixel.
func (p *Plane) Clear() {
	clear(p.pix)
}

// Fill sets every pixel to c.
func (p *Plane) Fill(c [4]float32) {
	for i := 0; i < len(p.pix); i += 4 {
		copy(p.pix[i:i+4], c[:])
	}
}

// Premultiply scales RGB by alpha in place.
func (p *Plane) Premultiply() {
	for i := 0; i < len(p.pix); i += 4 {
		a := p.pix[i+3]
		p.pix[i] *= a
		p.pix[i+1] *= a
		p.pix[i+2] *= a
	}
}

// Demultiply divides RGB by alpha in place. Fully transparent pixels keep
// zero color.
func (p *Plane) Demultiply() {
	for i := 0; i < len(p.pix); i += 4 {
		a := p.pix[i+3]
		if a <= 0 {
			p.pix[i], p.pix[i+1], p.pix[i+2] = 0, 0, 0
			continue
		}
		p.pix[i] /= a
		p.pix[i+1] /= a
		p.pix[i+2] /= a
	}
}

// IsOpaque reports whether every alpha value is at least threshold.
func (p *Plane) IsOpaque(threshold float32) bool {
	for i := 3; i < len(p.pix); i += 4 {
		if p.pix[i] < threshold {
			return false
		}
	}
	return true
}

// SetAlpha overwrites the alpha of every pixel.
func (p *Plane) SetAlpha(a float32) {
	for i := 3; i < len(p.pix); i += 4 {
		p.pix[i] = a
	}
}

func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}
