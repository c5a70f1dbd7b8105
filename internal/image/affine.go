package image

import (
	"math"
)

// Affine represents a 2D affine transformation matrix.
//
// The transformation is represented as a 3x3 matrix:
//
//	| a  b  c |
//	| d  e  f |
//	| 0  0  1 |
type Affine struct {
	a, b, c float64 // First row: x' = ax + by + c
	d, e, f float64 // Second row: y' = dx + ey + f
}

// Identity returns the identity transformation.
func Identity() Affine {
	return Affine{a: 1, e: 1}
}

// Translate returns a translation by (tx, ty).
func Translate(tx, ty float64) Affine {
	return Affine{a: 1, c: tx, e: 1, f: ty}
}

// Scale returns a scaling around the origin. Negative factors flip.
func Scale(sx, sy float64) Affine {
	return Affine{a: sx, e: sy}
}

// Rotate returns a rotation by angle radians around the origin. With y
// pointing down, positive angles turn clockwise on screen.
func Rotate(angle float64) Affine {
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	return Affine{
		a: cos, b: -sin,
		d: sin, e: cos,
	}
}

// Multiply returns a * other, which applies other first.
func (a Affine) Multiply(other Affine) Affine {
	return Affine{
		a: a.a*other.a + a.b*other.d,
		b: a.a*other.b + a.b*other.e,
		c: a.a*other.c + a.b*other.f + a.c,
		d: a.d*other.a + a.e*other.d,
		e: a.d*other.b + a.e*other.e,
		f: a.d*other.c + a.e*other.f + a.f,
	}
}

// Invert returns the inverse transformation, or false when singular.
func (a Affine) Invert() (Affine, bool) {
	det := a.a*a.e - a.b*a.d
	if math.Abs(det) < 1e-10 {
		return Affine{}, false
	}

	invDet := 1.0 / det

	return Affine{
		a: a.e * invDet,
		b: -a.b * invDet,
		c: (a.b*a.f - a.c*a.e) * invDet,
		d: -a.d * invDet,
		e: a.a * invDet,
		f: (a.c*a.d - a.a*a.f) * invDet,
	}, true
}

// TransformPoint applies the transformation to (x, y).
func (a Affine) TransformPoint(x, y float64) (float64, float64) {
	return a.a*x + a.b*y + a.c, a.d*x + a.e*y + a.f
}

// Orientation describes a lossless quarter-turn rotation followed by
// optional mirroring.
type Orientation struct {
	Quarters int  // clockwise quarter turns, taken modulo 4
	FlipH    bool // mirror left-right after rotating
	FlipV    bool // mirror top-bottom after rotating
}

// Size returns the destination extent for a source of w x h.
func (o Orientation) Size(w, h int) (int, int) {
	if o.quarters()%2 == 1 {
		return h, w
	}
	return w, h
}

func (o Orientation) quarters() int {
	return ((o.Quarters % 4) + 4) % 4
}

// Reorient applies o to src and returns a new plane.
func Reorient(src *Plane, o Orientation) (*Plane, error) {
	dw, dh := o.Size(src.width, src.height)
	dst, err := NewPlane(dw, dh)
	if err != nil {
		return nil, err
	}

	sx, sy := 1.0, 1.0
	if o.FlipH {
		sx = -1
	}
	if o.FlipV {
		sy = -1
	}
	fwd := Translate(float64(dw)/2, float64(dh)/2).
		Multiply(Scale(sx, sy)).
		Multiply(Rotate(float64(o.quarters()) * math.Pi / 2)).
		Multiply(Translate(-float64(src.width)/2, -float64(src.height)/2))
	inv, ok := fwd.Invert()
	if !ok {
		return nil, ErrInvalidDimensions
	}

	for y := 0; y < dh; y++ {
		row := dst.Row(y)
		for x := 0; x < dw; x++ {
			fx, fy := inv.TransformPoint(float64(x)+0.5, float64(y)+0.5)
			c := src.clampedAt(int(math.Floor(fx)), int(math.Floor(fy)))
			copy(row[x*4:x*4+4], c[:])
		}
	}
	return dst, nil
}
