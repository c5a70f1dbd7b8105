package image

import (
	"math"
	"testing"
)

func TestAffineInvert(t *testing.T) {
	m := Translate(3, -2).Multiply(Rotate(math.Pi / 3)).Multiply(Scale(2, 0.5))
	inv, ok := m.Invert()
	if !ok {
		t.Fatal("matrix should be invertible")
	}
	x, y := m.TransformPoint(1.5, -4)
	bx, by := inv.TransformPoint(x, y)
	if math.Abs(bx-1.5) > 1e-9 || math.Abs(by+4) > 1e-9 {
		t.Errorf("round trip = (%v, %v)", bx, by)
	}
	if _, ok := Scale(0, 1).Invert(); ok {
		t.Error("singular matrix inverted")
	}
	if got := Identity().Multiply(m); got != m {
		t.Errorf("identity product = %+v", got)
	}
}

func TestReorient(t *testing.T) {
	a := [4]float32{1, 0, 0, 1}
	b := [4]float32{0, 1, 0, 1}
	src, _ := NewPlane(2, 1)
	_ = src.Set(0, 0, a)
	_ = src.Set(1, 0, b)

	tests := []struct {
		name string
		o    Orientation
		w, h int
		want [][4]float32 // row-major
	}{
		{"identity", Orientation{}, 2, 1, [][4]float32{a, b}},
		{"rotate 90", Orientation{Quarters: 1}, 1, 2, [][4]float32{a, b}},
		{"rotate 180", Orientation{Quarters: 2}, 2, 1, [][4]float32{b, a}},
		{"rotate 270", Orientation{Quarters: 3}, 1, 2, [][4]float32{b, a}},
		{"flip horizontal", Orientation{FlipH: true}, 2, 1, [][4]float32{b, a}},
		{"flip vertical", Orientation{FlipV: true}, 2, 1, [][4]float32{a, b}},
		{"rotate 90 flip vertical", Orientation{Quarters: 1, FlipV: true}, 1, 2, [][4]float32{b, a}},
		{"negative quarters", Orientation{Quarters: -1}, 1, 2, [][4]float32{b, a}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Reorient(src, tt.o)
			if err != nil {
				t.Fatal(err)
			}
			if w, h := out.Bounds(); w != tt.w || h != tt.h {
				t.Fatalf("size = %dx%d, want %dx%d", w, h, tt.w, tt.h)
			}
			for i, want := range tt.want {
				if got := out.At(i%tt.w, i/tt.w); got != want {
					t.Errorf("pixel %d = %v, want %v", i, got, want)
				}
			}
		})
	}
}
