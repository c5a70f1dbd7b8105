package image

import (
	"image"
	"image/color"
	"testing"
)

func TestFromStdImageNRGBA(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 0, B: 51, A: 128})
	p := FromStdImage(img)
	got := p.At(0, 0)
	if got[0] != 1 || got[1] != 0 || !near(got[2], 0.2) || !near(got[3], 128.0/255) {
		t.Errorf("pixel = %v", got)
	}
}

func TestFromStdImageRGBADemultiplies(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 100, G: 0, B: 0, A: 200})
	got := FromStdImage(img).At(0, 0)
	if !near(got[0], 0.5) {
		t.Errorf("red = %v, want 0.5", got[0])
	}
}

func TestFromStdImageGeneric(t *testing.T) {
	pal := color.Palette{color.NRGBA{A: 255}, color.NRGBA{R: 255, G: 255, B: 255, A: 255}}
	img := image.NewPaletted(image.Rect(5, 5, 7, 6), pal)
	img.SetColorIndex(6, 5, 1)
	p := FromStdImage(img)
	if w, h := p.Bounds(); w != 2 || h != 1 {
		t.Fatalf("size = %dx%d", w, h)
	}
	if got := p.At(1, 0); got != ([4]float32{1, 1, 1, 1}) {
		t.Errorf("white pixel = %v", got)
	}
	if got := p.At(0, 0); got != ([4]float32{0, 0, 0, 1}) {
		t.Errorf("black pixel = %v", got)
	}
}

func TestToStdImage(t *testing.T) {
	p, _ := NewPlane(1, 1)
	_ = p.Set(0, 0, [4]float32{1.5, 0.5, -1, 1})

	img8 := p.ToStdImage(false).(*image.NRGBA)
	if c := img8.NRGBAAt(0, 0); c != (color.NRGBA{R: 255, G: 128, B: 0, A: 255}) {
		t.Errorf("8-bit = %v", c)
	}
	img16 := p.ToStdImage(true).(*image.NRGBA64)
	if c := img16.NRGBA64At(0, 0); c.R != 65535 || c.G != 32768 || c.B != 0 {
		t.Errorf("16-bit = %v", c)
	}
}
