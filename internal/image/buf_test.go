package image

import (
	"errors"
	"testing"
)

func TestNewPlane(t *testing.T) {
	tests := []struct {
		name    string
		w, h    int
		wantErr error
	}{
		{"valid", 3, 2, nil},
		{"zero width", 0, 2, ErrInvalidDimensions},
		{"negative height", 3, -1, ErrInvalidDimensions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPlane(tt.w, tt.h)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewPlane() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && len(p.Pix()) != tt.w*tt.h*4 {
				t.Errorf("len(Pix) = %d", len(p.Pix()))
			}
		})
	}
}

func TestFromPixels(t *testing.T) {
	if _, err := FromPixels(make([]float32, 7), 2, 1); !errors.Is(err, ErrDataTooSmall) {
		t.Errorf("short data error = %v", err)
	}
	pix := make([]float32, 8)
	p, err := FromPixels(pix, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	_ = p.Set(1, 0, [4]float32{1, 2, 3, 4})
	if pix[4] != 1 || pix[7] != 4 {
		t.Error("FromPixels should not copy")
	}
}

func TestSetAt(t *testing.T) {
	p, _ := NewPlane(2, 2)
	c := [4]float32{0.1, 0.2, 0.3, 0.4}
	if err := p.Set(1, 1, c); err != nil {
		t.Fatal(err)
	}
	if got := p.At(1, 1); got != c {
		t.Errorf("At(1,1) = %v, want %v", got, c)
	}
	if err := p.Set(2, 0, c); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Set out of bounds error = %v", err)
	}
	if got := p.At(-1, 0); got != ([4]float32{}) {
		t.Errorf("At(-1,0) = %v", got)
	}
	if p.Row(2) != nil {
		t.Error("Row(2) should be nil")
	}
}

func TestClone(t *testing.T) {
	p, _ := NewPlane(1, 1)
	p.Fill([4]float32{1, 1, 1, 1})
	c := p.Clone()
	p.Clear()
	if c.At(0, 0)[0] != 1 {
		t.Error("clone shares storage")
	}
}

func TestPremultiply(t *testing.T) {
	p, _ := NewPlane(2, 1)
	_ = p.Set(0, 0, [4]float32{1, 0.5, 0.25, 0.5})
	_ = p.Set(1, 0, [4]float32{1, 1, 1, 0})
	p.Premultiply()
	if got := p.At(0, 0); got != ([4]float32{0.5, 0.25, 0.125, 0.5}) {
		t.Errorf("premultiplied = %v", got)
	}
	p.Demultiply()
	if got := p.At(0, 0); got != ([4]float32{1, 0.5, 0.25, 0.5}) {
		t.Errorf("demultiplied = %v", got)
	}
	if got := p.At(1, 0); got != ([4]float32{0, 0, 0, 0}) {
		t.Errorf("transparent pixel = %v", got)
	}
}

func TestIsOpaque(t *testing.T) {
	p, _ := NewPlane(2, 2)
	p.SetAlpha(1)
	if !p.IsOpaque(1) {
		t.Error("plane should be opaque")
	}
	_ = p.Set(1, 1, [4]float32{0, 0, 0, 0.5})
	if p.IsOpaque(1) {
		t.Error("plane should not be opaque")
	}
}
