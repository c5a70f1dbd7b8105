package dxtex

import (
	"fmt"
	"sync"

	"github.com/ajroetker/go-highway/hwy/contrib/workerpool"

	"github.com/gogpu/dxtex/dxgi"
	"github.com/gogpu/dxtex/internal/bc"
	"github.com/gogpu/dxtex/internal/color"
	teximage "github.com/gogpu/dxtex/internal/image"
	"github.com/gogpu/dxtex/internal/pixel"
	"github.com/gogpu/dxtex/internal/texmeta"
)

// checkImages validates that images is the complete sub-image set of meta
// in layout order and returns the normalized metadata.
func checkImages(op string, images []Image, meta TexMetadata) (TexMetadata, error) {
	if len(images) == 0 {
		return meta, invalidArg(op, "no images")
	}
	meta, err := texmeta.Normalize(meta)
	if err != nil {
		return meta, wrap(op, err)
	}
	subs, _, err := texmeta.Layout(meta, dxgi.CPFlagsNone)
	if err != nil {
		return meta, wrap(op, err)
	}
	if len(images) != len(subs) {
		return meta, invalidArg(op, "%d images, metadata describes %d", len(images), len(subs))
	}
	for i, img := range images {
		sub := subs[i]
		if img.width != sub.Width || img.height != sub.Height || img.format != meta.Format {
			return meta, invalidArg(op, "image %d is %dx%d %v, want %dx%d %v",
				i, img.width, img.height, img.format, sub.Width, sub.Height, meta.Format)
		}
		if img.rowPitch < sub.RowPitch || len(img.pixels) < dxgi.ComputeScanlines(img.format, img.height)*img.rowPitch {
			return meta, invalidArg(op, "image %d pitch %d with %d bytes", i, img.rowPitch, len(img.pixels))
		}
	}
	return meta, nil
}

// loadPlane unpacks img into a pooled float32 plane, decoding blocks for
// compressed formats. The caller returns the plane with releasePlane.
func loadPlane(img Image) (*teximage.Plane, error) {
	p := teximage.GetFromDefault(img.width, img.height)
	if p == nil {
		return nil, fmt.Errorf("%w: %dx%d", teximage.ErrInvalidDimensions, img.width, img.height)
	}
	w, h := img.width, img.height

	if img.format.IsCompressed() {
		if !bc.CanDecode(img.format) {
			releasePlane(p)
			return nil, fmt.Errorf("%w: no decoder for %v", bc.ErrUnsupportedFormat, img.format)
		}
		pix := p.Pix()
		for by := 0; by*4 < h; by++ {
			rows := min(4, h-by*4)
			if err := bc.DecodeRow(img.format, img.pixels[by*img.rowPitch:], w, rows, pix[by*4*w*4:]); err != nil {
				releasePlane(p)
				return nil, err
			}
		}
		return p, nil
	}

	for y := 0; y < h; y++ {
		if err := pixel.LoadRow(p.Row(y), img.pixels[y*img.rowPitch:], w, img.format); err != nil {
			releasePlane(p)
			return nil, err
		}
	}
	return p, nil
}

func releasePlane(p *teximage.Plane) {
	teximage.PutToDefault(p)
}

// encoder packs planes into a destination format.
type encoder struct {
	bc        bc.Options
	threshold float32
	pool      *workerpool.Pool
}

// store packs p into dst, which has the same extent. Block rows of
// compressed formats are spread across the pool when one is set.
func (e *encoder) store(dst Image, p *teximage.Plane) error {
	w, h := dst.width, dst.height
	if p.Width() != w || p.Height() != h {
		return fmt.Errorf("%w: plane %dx%d for %dx%d image", teximage.ErrInvalidDimensions, p.Width(), p.Height(), w, h)
	}

	if !dst.format.IsCompressed() {
		oneBit := dst.format == dxgi.FormatB5G5R5A1Unorm
		for y := 0; y < h; y++ {
			row := p.Row(y)
			if oneBit {
				cutAlpha(row, e.alphaCutoff())
			}
			if err := pixel.StoreRow(dst.pixels[y*dst.rowPitch:], row, w, dst.format); err != nil {
				return err
			}
		}
		return nil
	}

	if !bc.CanEncode(dst.format) {
		return fmt.Errorf("%w: no encoder for %v", bc.ErrUnsupportedFormat, dst.format)
	}
	opts := e.bc
	opts.AlphaThreshold = e.alphaCutoff()
	pix := p.Pix()
	blockRows := (h + 3) / 4

	var (
		errOnce  sync.Once
		firstErr error
	)
	encode := func(start, end int) {
		for by := start; by < end; by++ {
			rows := min(4, h-by*4)
			err := bc.EncodeRow(dst.format, pix[by*4*w*4:], w, rows, dst.pixels[by*dst.rowPitch:], opts)
			if err != nil {
				errOnce.Do(func() { firstErr = err })
				return
			}
		}
	}
	if e.pool != nil && blockRows > 1 {
		e.pool.ParallelFor(blockRows, encode)
	} else {
		encode(0, blockRows)
	}
	return firstErr
}

func (e *encoder) alphaCutoff() float32 {
	if e.threshold <= 0 {
		return TexThresholdDefault
	}
	return e.threshold
}

func cutAlpha(row []float32, cutoff float32) {
	for i := 3; i < len(row); i += 4 {
		if row[i] >= cutoff {
			row[i] = 1
		} else {
			row[i] = 0
		}
	}
}

// transfer converts between sRGB-encoded and linear values around a
// pipeline step.
type transfer struct {
	decode bool // source values are sRGB encoded
	encode bool // destination expects sRGB encoded values
}

// transferFor returns the transfer between two encodings. Matching
// encodings pass values through untouched.
func transferFor(srcSRGB, dstSRGB bool) transfer {
	if srcSRGB == dstSRGB {
		return transfer{}
	}
	return transfer{decode: srcSRGB, encode: dstSRGB}
}

func (t transfer) toLinear(p *teximage.Plane) {
	if !t.decode {
		return
	}
	for y := 0; y < p.Height(); y++ {
		color.DecodeRow(p.Row(y))
	}
}

func (t transfer) fromLinear(p *teximage.Plane) {
	if !t.encode {
		return
	}
	for y := 0; y < p.Height(); y++ {
		color.EncodeRow(p.Row(y))
	}
}

// convertImages runs every source image through load, transfer and store
// into the sub-image at the same position of out.
func convertImages(images []Image, out *ScratchImage, t transfer, enc *encoder) error {
	dsts := out.Images()
	if len(dsts) != len(images) {
		return fmt.Errorf("%w: %d destination images for %d sources", texmeta.ErrInvalidMetadata, len(dsts), len(images))
	}
	for i, img := range images {
		p, err := loadPlane(img)
		if err != nil {
			return err
		}
		t.toLinear(p)
		t.fromLinear(p)
		err = enc.store(dsts[i], p)
		releasePlane(p)
		if err != nil {
			return err
		}
	}
	return nil
}

// decompressedFormat returns the format a block format expands to when no
// target is given.
func decompressedFormat(f dxgi.Format) dxgi.Format {
	switch f {
	case dxgi.FormatBC1UnormSRGB, dxgi.FormatBC2UnormSRGB, dxgi.FormatBC3UnormSRGB, dxgi.FormatBC7UnormSRGB:
		return dxgi.FormatR8G8B8A8UnormSRGB
	case dxgi.FormatBC4Unorm, dxgi.FormatBC4Typeless:
		return dxgi.FormatR8Unorm
	case dxgi.FormatBC4Snorm:
		return dxgi.FormatR8Snorm
	case dxgi.FormatBC5Unorm, dxgi.FormatBC5Typeless:
		return dxgi.FormatR8G8Unorm
	case dxgi.FormatBC5Snorm:
		return dxgi.FormatR8G8Snorm
	case dxgi.FormatBC6HTypeless, dxgi.FormatBC6HUF16, dxgi.FormatBC6HSF16:
		return dxgi.FormatR16G16B16A16Float
	default:
		return dxgi.FormatR8G8B8A8Unorm
	}
}

func withFormat(meta TexMetadata, f dxgi.Format) TexMetadata {
	meta.Format = f
	return meta
}
