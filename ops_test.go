package dxtex

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/dxtex/dxgi"
)

// solidRGBA returns a w x h R8G8B8A8 image filled with one color.
func solidRGBA(t *testing.T, w, h int, c [4]byte) *ScratchImage {
	t.Helper()
	s := mustInit2D(t, dxgi.FormatR8G8B8A8Unorm, w, h, 1, 1)
	buf := s.Buffer()
	for i := 0; i < len(buf); i += 4 {
		copy(buf[i:i+4], c[:])
	}
	return s
}

// within reports whether every byte of got is within tol of want.
func within(got []byte, want [4]byte, tol int) bool {
	for i, v := range got {
		d := int(v) - int(want[i%4])
		if d < -tol || d > tol {
			return false
		}
	}
	return true
}

func pixelAt(img Image, x, y int) [4]byte {
	var p [4]byte
	copy(p[:], img.Pixels()[y*img.RowPitch()+x*4:])
	return p
}

func TestResize(t *testing.T) {
	red := [4]byte{255, 0, 0, 255}
	src := solidRGBA(t, 8, 8, red)

	for _, filter := range []TexFilterFlags{TexFilterDefault, TexFilterPoint, TexFilterLinear, TexFilterCubic, TexFilterBox} {
		out, err := src.Resize(4, 2, filter)
		if err != nil {
			t.Fatalf("Resize(filter %#x) = %v", uint32(filter), err)
		}
		meta := out.Metadata()
		if meta.Width != 4 || meta.Height != 2 || meta.MipLevels != 1 {
			t.Errorf("filter %#x: result %dx%d with %d mips", uint32(filter), meta.Width, meta.Height, meta.MipLevels)
		}
		if !within(out.Buffer(), red, 1) {
			t.Errorf("filter %#x: solid color changed", uint32(filter))
		}
		out.Release()
	}

	if _, err := src.Resize(0, 4, TexFilterDefault); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("zero width: err = %v", err)
	}
}

func TestResizeRejectsCompressed(t *testing.T) {
	s := mustInit2D(t, dxgi.FormatBC1Unorm, 8, 8, 1, 1)
	if _, err := s.Resize(4, 4, TexFilterDefault); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestGenerateMipMaps(t *testing.T) {
	src := mustInit2D(t, dxgi.FormatR8G8B8A8Unorm, 8, 8, 2, 1)
	pattern(src.Buffer())

	out, err := src.GenerateMipMaps(0, TexFilterDefault)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Release()

	meta := out.Metadata()
	if meta.MipLevels != 4 || out.NumImages() != 8 {
		t.Fatalf("got %d mips, %d images", meta.MipLevels, out.NumImages())
	}
	for item := 0; item < 2; item++ {
		want, _ := src.Image(0, item, 0)
		got, _ := out.Image(0, item, 0)
		if diff := cmp.Diff(want.Pixels(), got.Pixels()); diff != "" {
			t.Errorf("item %d level 0 changed (-want +got):\n%s", item, diff)
		}
		last, _ := out.Image(3, item, 0)
		if last.Width() != 1 || last.Height() != 1 {
			t.Errorf("item %d last level %dx%d", item, last.Width(), last.Height())
		}
	}

	for _, levels := range []int{-1, 5} {
		if _, err := src.GenerateMipMaps(levels, TexFilterDefault); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("levels %d: err = %v", levels, err)
		}
	}
}

func TestGenerateMipMapsSolid(t *testing.T) {
	c := [4]byte{10, 200, 30, 255}
	src := solidRGBA(t, 16, 4, c)
	out, err := src.GenerateMipMaps(3, TexFilterBox)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Release()
	for level := 1; level < 3; level++ {
		img, _ := out.Image(level, 0, 0)
		if !within(img.Pixels(), c, 1) {
			t.Errorf("level %d drifted: % x", level, img.Pixels()[:4])
		}
	}
}

func TestGenerateMipMapsVolume(t *testing.T) {
	src, err := Initialize3D(dxgi.FormatR8G8B8A8Unorm, 4, 4, 4, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer src.Release()
	for i := range src.Buffer() {
		src.Buffer()[i] = 0x40
	}
	out, err := src.GenerateMipMaps(0, TexFilterDefault)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Release()
	if out.Metadata().MipLevels != 3 || out.NumImages() != 7 {
		t.Fatalf("got %d mips, %d images", out.Metadata().MipLevels, out.NumImages())
	}
	img, _ := out.Image(2, 0, 0)
	if !within(img.Pixels(), [4]byte{0x40, 0x40, 0x40, 0x40}, 1) {
		t.Errorf("last level = % x", img.Pixels())
	}
}

func TestConvertRoundTrip(t *testing.T) {
	src := mustInit2D(t, dxgi.FormatR8G8B8A8Unorm, 5, 3, 1, 1)
	pattern(src.Buffer())

	wide, err := src.Convert(dxgi.FormatR32G32B32A32Float, TexFilterDefault, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer wide.Release()
	back, err := wide.Convert(dxgi.FormatR8G8B8A8Unorm, TexFilterDefault, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer back.Release()
	if diff := cmp.Diff(src.Buffer(), back.Buffer()); diff != "" {
		t.Errorf("round trip changed pixels (-want +got):\n%s", diff)
	}
}

func TestConvertSRGBRelabel(t *testing.T) {
	// Converting between the linear and sRGB variants re-encodes values.
	src := solidRGBA(t, 2, 2, [4]byte{128, 128, 128, 255})
	out, err := src.Convert(dxgi.FormatR8G8B8A8UnormSRGB, TexFilterDefault, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Release()
	if got := out.Buffer()[0]; got <= 128 {
		t.Errorf("linear 128 encoded as sRGB %d, want brighter", got)
	}
	if got := out.Buffer()[3]; got != 255 {
		t.Errorf("alpha = %d", got)
	}
}

func TestConvertInvalid(t *testing.T) {
	src := solidRGBA(t, 4, 4, [4]byte{1, 2, 3, 4})
	tests := []struct {
		name   string
		format dxgi.Format
	}{
		{"unknown", dxgi.FormatUnknown},
		{"compressed", dxgi.FormatBC1Unorm},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := src.Convert(tt.format, TexFilterDefault, 0); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("err = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestConvertDropsAlphaMode(t *testing.T) {
	src := solidRGBA(t, 4, 4, [4]byte{1, 2, 3, 255})
	meta := src.Metadata()
	meta.SetAlphaMode(TexAlphaModeStraight)
	out, err := Convert(src.Images(), meta, dxgi.FormatR8Unorm, TexFilterDefault, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Release()
	m := out.Metadata()
	if m.AlphaMode() != TexAlphaModeUnknown {
		t.Errorf("alpha mode = %v", m.AlphaMode())
	}
}

func TestCheckImagesRejectsMismatch(t *testing.T) {
	src := mustInit2D(t, dxgi.FormatR8G8B8A8Unorm, 8, 8, 1, 2)
	meta := src.Metadata()

	if _, err := Convert(src.Images()[:1], meta, dxgi.FormatR8Unorm, TexFilterDefault, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("missing image: err = %v", err)
	}
	meta.Width = 16
	if _, err := Convert(src.Images(), meta, dxgi.FormatR8Unorm, TexFilterDefault, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("wrong width: err = %v", err)
	}
	if _, err := Convert(nil, src.Metadata(), dxgi.FormatR8Unorm, TexFilterDefault, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("no images: err = %v", err)
	}
}

func TestCompressDecompress(t *testing.T) {
	red := [4]byte{255, 0, 0, 255}
	src := solidRGBA(t, 8, 8, red)

	for _, f := range []dxgi.Format{dxgi.FormatBC1Unorm, dxgi.FormatBC2Unorm, dxgi.FormatBC3Unorm} {
		t.Run(f.String(), func(t *testing.T) {
			bc, err := src.Compress(f, TexCompressDefault, TexThresholdDefault)
			if err != nil {
				t.Fatal(err)
			}
			defer bc.Release()
			if bc.Format() != f || !bc.IsCompressed() {
				t.Fatalf("format = %v", bc.Format())
			}
			if bc.BufferSize() != 4*f.BlockBytes() {
				t.Errorf("BufferSize() = %d", bc.BufferSize())
			}
			out, err := bc.Decompress(dxgi.FormatUnknown)
			if err != nil {
				t.Fatal(err)
			}
			defer out.Release()
			if out.Format() != dxgi.FormatR8G8B8A8Unorm {
				t.Errorf("decompressed to %v", out.Format())
			}
			if !within(out.Buffer(), red, 4) {
				t.Errorf("decoded % x", out.Buffer()[:8])
			}
		})
	}
}

func TestCompressParallelMatchesSerial(t *testing.T) {
	src := mustInit2D(t, dxgi.FormatR8G8B8A8Unorm, 32, 32, 1, 1)
	pattern(src.Buffer())
	serial, err := src.Compress(dxgi.FormatBC3Unorm, TexCompressDefault, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer serial.Release()
	par, err := src.Compress(dxgi.FormatBC3Unorm, TexCompressParallel, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer par.Release()
	if diff := cmp.Diff(serial.Buffer(), par.Buffer()); diff != "" {
		t.Errorf("parallel output differs (-serial +parallel):\n%s", diff)
	}
}

func TestCompressInvalid(t *testing.T) {
	src := solidRGBA(t, 4, 4, [4]byte{})
	if _, err := src.Compress(dxgi.FormatR8Unorm, TexCompressDefault, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("uncompressed target: err = %v", err)
	}
	var e *Error
	_, err := src.CompressWithDevice(nil, dxgi.FormatBC1Unorm, TexCompressDefault, 0)
	if !errors.As(err, &e) || e.Kind != KindDeviceUnavailable {
		t.Errorf("nil device: err = %v", err)
	}
}

func TestDecompressNaturalFormats(t *testing.T) {
	tests := []struct {
		src, want dxgi.Format
	}{
		{dxgi.FormatBC1UnormSRGB, dxgi.FormatR8G8B8A8UnormSRGB},
		{dxgi.FormatBC4Unorm, dxgi.FormatR8Unorm},
		{dxgi.FormatBC5Snorm, dxgi.FormatR8G8Snorm},
		{dxgi.FormatBC7Unorm, dxgi.FormatR8G8B8A8Unorm},
	}
	for _, tt := range tests {
		t.Run(tt.src.String(), func(t *testing.T) {
			s := mustInit2D(t, tt.src, 4, 4, 1, 1)
			out, err := s.Decompress(dxgi.FormatUnknown)
			if err != nil {
				t.Fatal(err)
			}
			defer out.Release()
			if out.Format() != tt.want {
				t.Errorf("Format() = %v, want %v", out.Format(), tt.want)
			}
		})
	}

	plain := solidRGBA(t, 4, 4, [4]byte{})
	if _, err := plain.Decompress(dxgi.FormatUnknown); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("uncompressed source: err = %v", err)
	}
}

func TestPremultiplyAlpha(t *testing.T) {
	src := solidRGBA(t, 2, 2, [4]byte{255, 255, 255, 128})

	pm, err := src.PremultiplyAlpha(TexPMAlphaDefault)
	if err != nil {
		t.Fatal(err)
	}
	defer pm.Release()
	meta := pm.Metadata()
	if !meta.IsPMAlpha() {
		t.Errorf("alpha mode = %v", meta.AlphaMode())
	}
	if !within(pm.Buffer(), [4]byte{128, 128, 128, 128}, 1) {
		t.Errorf("premultiplied = % x", pm.Buffer()[:4])
	}

	if _, err := pm.PremultiplyAlpha(TexPMAlphaDefault); !errors.Is(err, ErrOperation) {
		t.Errorf("premultiplying twice: err = %v", err)
	}
	if _, err := src.PremultiplyAlpha(TexPMAlphaReverse); !errors.Is(err, ErrOperation) {
		t.Errorf("reversing straight alpha: err = %v", err)
	}

	back, err := pm.PremultiplyAlpha(TexPMAlphaReverse)
	if err != nil {
		t.Fatal(err)
	}
	defer back.Release()
	m := back.Metadata()
	if m.AlphaMode() != TexAlphaModeStraight {
		t.Errorf("alpha mode = %v", m.AlphaMode())
	}
	if !within(back.Buffer(), [4]byte{255, 255, 255, 128}, 2) {
		t.Errorf("restored = % x", back.Buffer()[:4])
	}

	gray := mustInit2D(t, dxgi.FormatR8Unorm, 2, 2, 1, 1)
	if _, err := gray.PremultiplyAlpha(TexPMAlphaDefault); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("no alpha: err = %v", err)
	}
}

func TestFlipRotate(t *testing.T) {
	src := mustInit2D(t, dxgi.FormatR8G8B8A8Unorm, 2, 2, 1, 1)
	px := [][4]byte{{1, 0, 0, 255}, {2, 0, 0, 255}, {3, 0, 0, 255}, {4, 0, 0, 255}}
	for i, p := range px {
		copy(src.Buffer()[i*4:], p[:])
	}

	tests := []struct {
		name  string
		flags TexFRFlags
		want  [4]byte // red channel at (0,0), (1,0), (0,1), (1,1)
	}{
		{"identity", TexFRRotate0, [4]byte{1, 2, 3, 4}},
		{"flip horizontal", TexFRFlipHorizontal, [4]byte{2, 1, 4, 3}},
		{"flip vertical", TexFRFlipVertical, [4]byte{3, 4, 1, 2}},
		{"rotate 180", TexFRRotate180, [4]byte{4, 3, 2, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := src.FlipRotate(tt.flags)
			if err != nil {
				t.Fatal(err)
			}
			defer out.Release()
			img, _ := out.Image0()
			got := [4]byte{pixelAt(img, 0, 0)[0], pixelAt(img, 1, 0)[0], pixelAt(img, 0, 1)[0], pixelAt(img, 1, 1)[0]}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFlipRotateShape(t *testing.T) {
	src := mustInit2D(t, dxgi.FormatR8G8B8A8Unorm, 8, 2, 1, 2)
	out, err := src.FlipRotate(TexFRRotate90 | TexFRFlipVertical)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Release()
	meta := out.Metadata()
	if meta.Width != 2 || meta.Height != 8 || meta.MipLevels != 2 {
		t.Errorf("got %dx%d with %d mips", meta.Width, meta.Height, meta.MipLevels)
	}

	if _, err := src.FlipRotate(0x4); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("unknown flag: err = %v", err)
	}

	line, err := Initialize1D(dxgi.FormatR8G8B8A8Unorm, 8, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer line.Release()
	if _, err := line.FlipRotate(TexFRRotate90); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("1D quarter turn: err = %v", err)
	}
	if out, err := line.FlipRotate(TexFRFlipHorizontal); err != nil {
		t.Errorf("1D flip: %v", err)
	} else {
		out.Release()
	}

	vol, err := Initialize3D(dxgi.FormatR8G8B8A8Unorm, 4, 4, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	defer vol.Release()
	if _, err := vol.FlipRotate(TexFRFlipHorizontal); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("volume: err = %v", err)
	}
}

func TestStepIntoFormat(t *testing.T) {
	tests := []struct {
		from, to dxgi.Format
		maxSteps int
	}{
		{dxgi.FormatR8G8B8A8Unorm, dxgi.FormatR8G8B8A8Unorm, 0},
		{dxgi.FormatR8G8B8A8Unorm, dxgi.FormatR32G32B32A32Float, 1},
		{dxgi.FormatR8G8B8A8Unorm, dxgi.FormatBC3Unorm, 1},
		{dxgi.FormatBC1Unorm, dxgi.FormatR8G8B8A8Unorm, 1},
		{dxgi.FormatBC1Unorm, dxgi.FormatBC3Unorm, 2},
		{dxgi.FormatBC4Unorm, dxgi.FormatR32G32B32A32Float, 2},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			s, err := Initialize2D(tt.from, 8, 8, 1, 1)
			if err != nil {
				t.Fatal(err)
			}
			steps := 0
			for s.Format() != tt.to {
				if steps == 3 {
					t.Fatalf("no convergence after 3 steps, at %v", s.Format())
				}
				next, err := s.StepIntoFormat(tt.to)
				if err != nil {
					t.Fatal(err)
				}
				if !s.IsEmpty() {
					t.Error("step did not release its receiver")
				}
				s = next
				steps++
			}
			defer s.Release()
			if steps > tt.maxSteps {
				t.Errorf("%d steps, want at most %d", steps, tt.maxSteps)
			}

			same, err := s.StepIntoFormat(tt.to)
			if err != nil || same != s {
				t.Errorf("step at target = %p, %v; want receiver", same, err)
			}
		})
	}
}

func TestIntoFormat(t *testing.T) {
	s, err := Initialize2D(dxgi.FormatBC1Unorm, 8, 8, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	out, err := s.IntoFormat(dxgi.FormatBC3Unorm)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Release()
	if out.Format() != dxgi.FormatBC3Unorm || !s.IsEmpty() {
		t.Errorf("format %v, receiver empty %v", out.Format(), s.IsEmpty())
	}

	keep := solidRGBA(t, 4, 4, [4]byte{})
	if _, err := keep.IntoFormat(dxgi.FormatUnknown); err == nil {
		t.Fatal("IntoFormat(unknown) succeeded")
	}
	if keep.IsEmpty() {
		t.Error("failed IntoFormat released its receiver")
	}
}

func TestIntoConverted(t *testing.T) {
	s := solidRGBA(t, 4, 4, [4]byte{9, 9, 9, 9})
	out, err := s.IntoConverted(dxgi.FormatR32G32B32A32Float, TexFilterPoint)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Release()
	if out.Format() != dxgi.FormatR32G32B32A32Float || !s.IsEmpty() {
		t.Errorf("format %v, receiver empty %v", out.Format(), s.IsEmpty())
	}
	same, err := out.MaybeDecompress()
	if err != nil || same != out {
		t.Errorf("MaybeDecompress on uncompressed = %p, %v", same, err)
	}
}

func TestEvaluateOrder(t *testing.T) {
	src := mustInit2D(t, dxgi.FormatR8G8B8A8Unorm, 4, 4, 2, 0)
	// Tag every row with its sub-image and row index in the red channel.
	for i, img := range src.Images() {
		for y := 0; y < img.Height(); y++ {
			for x := 0; x < img.Width(); x++ {
				img.Pixels()[y*img.RowPitch()+x*4] = byte(i*16 + y)
			}
		}
	}

	type call struct{ tag, y, width int }
	var got []call
	err := src.Evaluate(func(px []Vec4, y int) {
		got = append(got, call{int(px[0][0]*255 + 0.5), y, len(px)})
	})
	if err != nil {
		t.Fatal(err)
	}

	var want []call
	for i, img := range src.Images() {
		for y := 0; y < img.Height(); y++ {
			want = append(want, call{i*16 + y, y, img.Width()})
		}
	}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(call{})); diff != "" {
		t.Errorf("callback order (-want +got):\n%s", diff)
	}

	if err := src.Evaluate(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("nil callback: err = %v", err)
	}
}

func TestTransform(t *testing.T) {
	src := solidRGBA(t, 4, 2, [4]byte{0, 64, 255, 255})
	out, err := src.Transform(func(dst, in []Vec4, y int) {
		for x := range dst {
			dst[x][0], dst[x][2] = in[x][2], in[x][0]
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	defer out.Release()
	if !within(out.Buffer(), [4]byte{255, 64, 0, 255}, 0) {
		t.Errorf("transformed = % x", out.Buffer()[:4])
	}
	if !within(src.Buffer(), [4]byte{0, 64, 255, 255}, 0) {
		t.Error("Transform modified its input")
	}
}

func TestCompressTextureArena(t *testing.T) {
	data := pattern(make([]byte, 8*8*4))
	blocks, err := CompressTexture(dxgi.FormatR8G8B8A8Unorm, dxgi.FormatBC1Unorm, 8, 8, 1, 4, data, TexCompressDefault)
	if err != nil {
		t.Fatal(err)
	}
	// 8x8, 4x4, 2x2 and 1x1 are 4, 1, 1 and 1 blocks.
	if len(blocks) != 7*8 {
		t.Fatalf("len = %d, want 56", len(blocks))
	}
	raw, err := DecompressTexture(dxgi.FormatBC1Unorm, 8, 8, 1, 4, blocks)
	if err != nil {
		t.Fatal(err)
	}
	if want := (64 + 16 + 4 + 1) * 4; len(raw) != want {
		t.Errorf("decompressed len = %d, want %d", len(raw), want)
	}

	if _, err := CompressTexture(dxgi.FormatR8G8B8A8Unorm, dxgi.FormatBC1Unorm, 8, 8, 1, 1, data[:10], TexCompressDefault); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("short data: err = %v", err)
	}
}
