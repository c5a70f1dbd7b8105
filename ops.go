package dxtex

import (
	"fmt"

	"github.com/ajroetker/go-highway/hwy/contrib/workerpool"

	"github.com/gogpu/dxtex/dxgi"
	"github.com/gogpu/dxtex/internal/bc"
	teximage "github.com/gogpu/dxtex/internal/image"
	"github.com/gogpu/dxtex/internal/pixel"
	"github.com/gogpu/dxtex/internal/texmeta"
)

// Every operation below reads a complete sub-image set (as returned by
// ScratchImage.Images together with its metadata) and returns a new
// ScratchImage. Inputs are never modified. On failure nothing is returned
// and the partially built output is released.

// build allocates the output for meta and runs fill over it.
func build(op string, meta TexMetadata, fill func(out *ScratchImage) error) (*ScratchImage, error) {
	out, err := initialize(meta, dxgi.CPFlagsNone)
	if err != nil {
		return nil, wrap(op, err)
	}
	if err := fill(out); err != nil {
		out.Release()
		return nil, wrap(op, err)
	}
	return out, nil
}

// slot addresses one top-level surface: an array item of a 1D or 2D
// texture, or a depth slice of a volume.
type slot struct{ item, slice int }

func baseSlots(meta TexMetadata) []slot {
	if meta.IsVolumemap() {
		out := make([]slot, meta.Depth)
		for z := range out {
			out[z] = slot{slice: z}
		}
		return out
	}
	out := make([]slot, meta.ArraySize)
	for i := range out {
		out[i] = slot{item: i}
	}
	return out
}

func imageAt(images []Image, meta TexMetadata, mip int, s slot) Image {
	i, ok := meta.ComputeIndex(mip, s.item, s.slice)
	if !ok {
		panic(fmt.Sprintf("dxtex: sub-image (%d, %d, %d) outside validated layout", mip, s.item, s.slice))
	}
	return images[i]
}

func srgbTransfer(f dxgi.Format, in, out bool) transfer {
	return transfer{decode: f.IsSRGB() || in, encode: f.IsSRGB() || out}
}

// filtersAlpha reports whether resampling should premultiply color first.
func filtersAlpha(meta TexMetadata, filter TexFilterFlags) bool {
	return meta.Format.HasAlpha() &&
		filter&TexFilterSeparateAlpha == 0 &&
		meta.AlphaMode() != texmeta.AlphaModePremultiplied &&
		meta.AlphaMode() != texmeta.AlphaModeOpaque
}

func requireUncompressed(op string, f dxgi.Format) error {
	if f.IsCompressed() {
		return invalidArg(op, "block-compressed format %v", f)
	}
	if !pixel.Supported(f) {
		return wrap(op, fmt.Errorf("%w: %v", pixel.ErrUnsupportedFormat, f))
	}
	return nil
}

// Resize resamples the top mip level of every item (every depth slice of a
// volume) to width x height. The result has a single mip level.
func Resize(images []Image, meta TexMetadata, width, height int, filter TexFilterFlags) (*ScratchImage, error) {
	const op = "Resize"
	meta, err := checkImages(op, images, meta)
	if err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, invalidArg(op, "size %dx%d", width, height)
	}
	if meta.Dimension == texmeta.Texture1D && height != 1 {
		return nil, invalidArg(op, "1D texture resized to height %d", height)
	}
	if err := requireUncompressed(op, meta.Format); err != nil {
		return nil, err
	}

	outMeta := meta
	outMeta.Width, outMeta.Height, outMeta.MipLevels = width, height, 1

	f, addr := filter.resampler(width < meta.Width || height < meta.Height)
	t := srgbTransfer(meta.Format, filter&TexFilterSRGBIn != 0, filter&TexFilterSRGBOut != 0)
	premul := filtersAlpha(meta, filter)
	enc := &encoder{}

	Logger().Debug("dxtex: resize", "from", fmt.Sprintf("%dx%d", meta.Width, meta.Height),
		"to", fmt.Sprintf("%dx%d", width, height), "filter", f)

	return build(op, outMeta, func(out *ScratchImage) error {
		for _, s := range baseSlots(meta) {
			p, err := loadPlane(imageAt(images, meta, 0, s))
			if err != nil {
				return err
			}
			t.toLinear(p)
			if premul {
				p.Premultiply()
			}
			r, err := teximage.Resize(p, width, height, f, addr)
			releasePlane(p)
			if err != nil {
				return err
			}
			if premul {
				r.Demultiply()
			}
			t.fromLinear(r)
			err = enc.store(imageAt(out.Images(), outMeta, 0, s), r)
			releasePlane(r)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// GenerateMipMaps builds a chain of levels mip levels from the top level of
// every item. Zero levels means the full chain. Volumes halve their depth
// at each level. Level 0 is copied unchanged.
func GenerateMipMaps(images []Image, meta TexMetadata, levels int, filter TexFilterFlags) (*ScratchImage, error) {
	const op = "GenerateMipMaps"
	meta, err := checkImages(op, images, meta)
	if err != nil {
		return nil, err
	}
	if err := requireUncompressed(op, meta.Format); err != nil {
		return nil, err
	}

	full := texmeta.CountMips(meta.Width, meta.Height)
	if meta.IsVolumemap() {
		full = texmeta.CountMips3D(meta.Width, meta.Height, meta.Depth)
	}
	if levels < 0 || levels > full {
		return nil, invalidArg(op, "%d mip levels, at most %d", levels, full)
	}
	if levels == 0 {
		levels = full
	}

	outMeta := meta
	outMeta.MipLevels = levels

	f, addr := filter.resampler(true)
	g := mipGen{
		t:      srgbTransfer(meta.Format, filter&TexFilterSRGBIn != 0, filter&TexFilterSRGBOut != 0),
		premul: filtersAlpha(meta, filter),
		f:      f,
		addr:   addr,
	}

	Logger().Debug("dxtex: generate mips", "levels", levels, "filter", f, "volume", meta.IsVolumemap())

	return build(op, outMeta, func(out *ScratchImage) error {
		dsts := out.Images()
		for _, s := range baseSlots(meta) {
			src := imageAt(images, meta, 0, s)
			copy(imageAt(dsts, outMeta, 0, s).pixels, src.pixels)
		}
		if levels == 1 {
			return nil
		}
		if meta.IsVolumemap() {
			return g.volume(images, meta, dsts, outMeta)
		}
		return g.surfaces(images, meta, dsts, outMeta)
	})
}

type mipGen struct {
	t      transfer
	premul bool
	f      teximage.Filter
	addr   teximage.AddressMode
}

func (g *mipGen) load(img Image) (*teximage.Plane, error) {
	p, err := loadPlane(img)
	if err != nil {
		return nil, err
	}
	g.t.toLinear(p)
	if g.premul {
		p.Premultiply()
	}
	return p, nil
}

// store writes a working plane without disturbing it.
func (g *mipGen) store(dst Image, p *teximage.Plane) error {
	tmp := teximage.GetFromDefault(p.Width(), p.Height())
	defer releasePlane(tmp)
	copy(tmp.Pix(), p.Pix())
	if g.premul {
		tmp.Demultiply()
	}
	g.t.fromLinear(tmp)
	return (&encoder{}).store(dst, tmp)
}

func (g *mipGen) surfaces(images []Image, meta TexMetadata, dsts []Image, outMeta TexMetadata) error {
	for _, s := range baseSlots(meta) {
		p, err := g.load(imageAt(images, meta, 0, s))
		if err != nil {
			return err
		}
		chain, err := teximage.GenerateMipmaps(p, outMeta.MipLevels, g.f, g.addr)
		if err != nil {
			releasePlane(p)
			return err
		}
		for level := 1; level < len(chain) && err == nil; level++ {
			err = g.store(imageAt(dsts, outMeta, level, s), chain[level])
		}
		teximage.ReleaseMipmaps(chain)
		releasePlane(p)
		if err != nil {
			return err
		}
	}
	return nil
}

func (g *mipGen) volume(images []Image, meta TexMetadata, dsts []Image, outMeta TexMetadata) error {
	cur := make([]*teximage.Plane, 0, meta.Depth)
	release := func() {
		for _, p := range cur {
			releasePlane(p)
		}
		cur = cur[:0]
	}
	defer func() { release() }()

	for _, s := range baseSlots(meta) {
		p, err := g.load(imageAt(images, meta, 0, s))
		if err != nil {
			return err
		}
		cur = append(cur, p)
	}

	for level := 1; level < outMeta.MipLevels; level++ {
		next, err := teximage.DownsampleVolume(cur, g.f, g.addr)
		if err != nil {
			return err
		}
		release()
		cur = next
		for z, p := range cur {
			if err := g.store(imageAt(dsts, outMeta, level, slot{slice: z}), p); err != nil {
				return err
			}
		}
	}
	return nil
}

// Convert changes the pixel format of every sub-image. Neither format may
// be block compressed. threshold is the alpha cutoff for one-bit alpha
// formats; zero selects TexThresholdDefault.
func Convert(images []Image, meta TexMetadata, format dxgi.Format, filter TexFilterFlags, threshold float32) (*ScratchImage, error) {
	const op = "Convert"
	meta, err := checkImages(op, images, meta)
	if err != nil {
		return nil, err
	}
	if !format.IsValid() {
		return nil, invalidArg(op, "format %v", format)
	}
	if err := requireUncompressed(op, meta.Format); err != nil {
		return nil, err
	}
	if err := requireUncompressed(op, format); err != nil {
		return nil, err
	}

	outMeta := withFormat(meta, format)
	if !format.HasAlpha() {
		outMeta.SetAlphaMode(texmeta.AlphaModeUnknown)
	}
	t := transferFor(meta.Format.IsSRGB() || filter&TexFilterSRGBIn != 0,
		format.IsSRGB() || filter&TexFilterSRGBOut != 0)
	enc := &encoder{threshold: threshold}

	Logger().Debug("dxtex: convert", "from", meta.Format, "to", format)
	return build(op, outMeta, func(out *ScratchImage) error {
		return convertImages(images, out, t, enc)
	})
}

// Compress block-compresses every sub-image into format. Formats for which
// ShouldAccel reports true run on the process device from HWDevice; if it
// cannot be created Compress fails with ErrDeviceUnavailable and does not
// fall back to the software path.
func Compress(images []Image, meta TexMetadata, format dxgi.Format, flags TexCompressFlags, threshold float32) (*ScratchImage, error) {
	const op = "Compress"
	if ShouldAccel(format) {
		dev, err := HWDevice()
		if err != nil {
			return nil, newError(op, KindDeviceUnavailable, DXGIErrorUnsupported, err)
		}
		Logger().Debug("dxtex: accelerated compression", "format", format, "device", dev.ID())
		return compressWithDevice(op, dev, images, meta, format, flags, threshold)
	}

	var pool *workerpool.Pool
	if flags&TexCompressParallel != 0 {
		pool = workerpool.New(0)
		defer pool.Close()
	}
	Logger().Debug("dxtex: software compression", "format", format, "parallel", pool != nil)
	return compress(op, images, meta, format, flags, threshold, pool)
}

// CompressWithDevice block-compresses on dev. It fails with
// ErrDeviceUnavailable if dev is nil or closed.
func CompressWithDevice(dev *Device, images []Image, meta TexMetadata, format dxgi.Format, flags TexCompressFlags, threshold float32) (*ScratchImage, error) {
	return compressWithDevice("CompressWithDevice", dev, images, meta, format, flags, threshold)
}

func compressWithDevice(op string, dev *Device, images []Image, meta TexMetadata, format dxgi.Format, flags TexCompressFlags, threshold float32) (*ScratchImage, error) {
	release, err := dev.acquire(op)
	if err != nil {
		return nil, err
	}
	defer release()
	dev.logger().Debug("dxtex: device compress", "id", dev.ID(), "format", format, "images", len(images))
	return compress(op, images, meta, format, flags, threshold, dev.pool)
}

func compress(op string, images []Image, meta TexMetadata, format dxgi.Format, flags TexCompressFlags, threshold float32, pool *workerpool.Pool) (*ScratchImage, error) {
	meta, err := checkImages(op, images, meta)
	if err != nil {
		return nil, err
	}
	if !format.IsCompressed() {
		return nil, invalidArg(op, "%v is not block compressed", format)
	}
	if err := requireUncompressed(op, meta.Format); err != nil {
		return nil, err
	}
	if !bc.CanEncode(format) {
		return nil, newError(op, KindOperation, ENotSupported, fmt.Errorf("%w: no encoder for %v", bc.ErrUnsupportedFormat, format))
	}

	t := transferFor(meta.Format.IsSRGB() || flags&TexCompressSRGBIn != 0,
		format.IsSRGB() || flags&TexCompressSRGBOut != 0)
	enc := &encoder{
		bc:        bc.Options{Uniform: flags&TexCompressUniform != 0},
		threshold: threshold,
		pool:      pool,
	}
	return build(op, withFormat(meta, format), func(out *ScratchImage) error {
		return convertImages(images, out, t, enc)
	})
}

// Decompress expands block-compressed images into format. FormatUnknown
// picks the natural format: RGBA8 (sRGB kept), R8 for BC4, R8G8 for BC5.
func Decompress(images []Image, meta TexMetadata, format dxgi.Format) (*ScratchImage, error) {
	const op = "Decompress"
	meta, err := checkImages(op, images, meta)
	if err != nil {
		return nil, err
	}
	if !meta.Format.IsCompressed() {
		return nil, invalidArg(op, "%v is not block compressed", meta.Format)
	}
	if format == dxgi.FormatUnknown {
		format = decompressedFormat(meta.Format)
	}
	if err := requireUncompressed(op, format); err != nil {
		return nil, err
	}
	if !bc.CanDecode(meta.Format) {
		return nil, newError(op, KindOperation, ENotSupported, fmt.Errorf("%w: no decoder for %v", bc.ErrUnsupportedFormat, meta.Format))
	}

	t := transferFor(meta.Format.IsSRGB(), format.IsSRGB())
	return build(op, withFormat(meta, format), func(out *ScratchImage) error {
		return convertImages(images, out, t, &encoder{})
	})
}

// PremultiplyAlpha scales color by alpha, or with TexPMAlphaReverse divides
// it back out. The source alpha mode must match the direction: forward
// requires straight (or unknown) alpha, reverse requires premultiplied.
func PremultiplyAlpha(images []Image, meta TexMetadata, flags TexPMAlphaFlags) (*ScratchImage, error) {
	const op = "PremultiplyAlpha"
	meta, err := checkImages(op, images, meta)
	if err != nil {
		return nil, err
	}
	if err := requireUncompressed(op, meta.Format); err != nil {
		return nil, err
	}
	if !meta.Format.HasAlpha() {
		return nil, invalidArg(op, "%v has no alpha", meta.Format)
	}
	reverse := flags&TexPMAlphaReverse != 0
	if meta.IsPMAlpha() != reverse {
		return nil, newError(op, KindOperation, EFail, fmt.Errorf("alpha mode is %v", meta.AlphaMode()))
	}

	var t transfer
	if flags&TexPMAlphaIgnoreSRGB == 0 {
		t = srgbTransfer(meta.Format, flags&TexPMAlphaSRGBIn != 0, flags&TexPMAlphaSRGBOut != 0)
	}
	outMeta := meta
	if reverse {
		outMeta.SetAlphaMode(texmeta.AlphaModeStraight)
	} else {
		outMeta.SetAlphaMode(texmeta.AlphaModePremultiplied)
	}

	return build(op, outMeta, func(out *ScratchImage) error {
		dsts := out.Images()
		enc := &encoder{}
		for i, img := range images {
			p, err := loadPlane(img)
			if err != nil {
				return err
			}
			t.toLinear(p)
			if reverse {
				p.Demultiply()
			} else {
				p.Premultiply()
			}
			t.fromLinear(p)
			err = enc.store(dsts[i], p)
			releasePlane(p)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// FlipRotate rotates every sub-image by quarter turns and then mirrors it.
// Quarter and three-quarter turns swap width and height. Volumes and
// compressed formats are rejected.
func FlipRotate(images []Image, meta TexMetadata, flags TexFRFlags) (*ScratchImage, error) {
	const op = "FlipRotate"
	meta, err := checkImages(op, images, meta)
	if err != nil {
		return nil, err
	}
	if flags&^(texFRRotateMask|TexFRFlipHorizontal|TexFRFlipVertical) != 0 {
		return nil, invalidArg(op, "flags %#x", uint32(flags))
	}
	if meta.IsVolumemap() {
		return nil, invalidArg(op, "volume texture")
	}
	if err := requireUncompressed(op, meta.Format); err != nil {
		return nil, err
	}
	o := flags.orientation()
	outMeta := meta
	outMeta.Width, outMeta.Height = o.Size(meta.Width, meta.Height)
	if meta.Dimension == texmeta.Texture1D && outMeta.Height != 1 {
		return nil, invalidArg(op, "1D texture rotated by a quarter turn")
	}

	return build(op, outMeta, func(out *ScratchImage) error {
		dsts := out.Images()
		enc := &encoder{}
		for i, img := range images {
			p, err := loadPlane(img)
			if err != nil {
				return err
			}
			r, err := teximage.Reorient(p, o)
			releasePlane(p)
			if err != nil {
				return err
			}
			err = enc.store(dsts[i], r)
			releasePlane(r)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// CompressTexture compresses raw 2D texture data of srcFormat, holding
// only the top mip level of each item, into dstFormat and returns the
// resulting arena. When mipLevels is greater than 1 the chain is generated
// before compression.
func CompressTexture(srcFormat, dstFormat dxgi.Format, width, height, arraySize, mipLevels int, data []byte, flags TexCompressFlags) ([]byte, error) {
	src, err := Initialize2D(srcFormat, width, height, arraySize, 1)
	if err != nil {
		return nil, err
	}
	defer src.Release()
	if err := src.CopyFrom(data); err != nil {
		return nil, err
	}

	if mipLevels > 1 {
		mips, err := src.GenerateMipMaps(mipLevels, TexFilterDefault)
		if err != nil {
			return nil, err
		}
		defer mips.Release()
		src = mips
	}

	out, err := src.Compress(dstFormat, flags, TexThresholdDefault)
	if err != nil {
		return nil, err
	}
	return out.Buffer(), nil
}

// DecompressTexture expands a raw block-compressed 2D texture arena into
// its natural uncompressed format and returns the resulting arena.
func DecompressTexture(format dxgi.Format, width, height, arraySize, mipLevels int, data []byte) ([]byte, error) {
	src, err := Initialize2D(format, width, height, arraySize, mipLevels)
	if err != nil {
		return nil, err
	}
	defer src.Release()
	if err := src.CopyFrom(data); err != nil {
		return nil, err
	}
	out, err := src.Decompress(dxgi.FormatUnknown)
	if err != nil {
		return nil, err
	}
	return out.Buffer(), nil
}
