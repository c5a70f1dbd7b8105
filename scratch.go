package dxtex

import (
	"fmt"

	"github.com/gogpu/dxtex/dxgi"
	"github.com/gogpu/dxtex/internal/texmeta"
)

// TexMetadata describes the shape and format of a texture.
type TexMetadata = texmeta.Metadata

// TexDimension is the texture dimensionality stored in TexMetadata.
type TexDimension = texmeta.Dimension

// TexAlphaMode is the alpha interpretation stored in TexMetadata.MiscFlags2.
type TexAlphaMode = texmeta.AlphaMode

const (
	TexDimensionTexture1D = texmeta.Texture1D
	TexDimensionTexture2D = texmeta.Texture2D
	TexDimensionTexture3D = texmeta.Texture3D

	TexMiscTextureCube = texmeta.MiscTextureCube

	TexAlphaModeUnknown       = texmeta.AlphaModeUnknown
	TexAlphaModeStraight      = texmeta.AlphaModeStraight
	TexAlphaModePremultiplied = texmeta.AlphaModePremultiplied
	TexAlphaModeOpaque        = texmeta.AlphaModeOpaque
	TexAlphaModeCustom        = texmeta.AlphaModeCustom
)

// maxArenaSize bounds a single allocation.
const maxArenaSize = texmeta.MaxArenaSize

// noCopy makes go vet's copylocks check flag copies of a ScratchImage.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// ScratchImage owns one contiguous pixel arena and the table of sub-images
// laid out in it: for 1D and 2D textures every mip level of each array item
// in turn, for volumes every depth slice of each mip level in turn.
//
// A ScratchImage is either empty (no arena, no sub-images) or fully
// initialized. It is always handled through a pointer and is not safe for
// concurrent mutation.
type ScratchImage struct {
	_     noCopy
	meta  TexMetadata
	subs  []texmeta.Subresource
	arena []byte
}

// Initialize allocates a texture for meta. MipLevels of 0 allocates a full
// chain. Pitches follow flags.
func Initialize(meta TexMetadata, flags CPFlags) (*ScratchImage, error) {
	s, err := initialize(meta, flags)
	if err != nil {
		return nil, wrap("Initialize", err)
	}
	return s, nil
}

func initialize(meta TexMetadata, flags CPFlags) (*ScratchImage, error) {
	meta, err := texmeta.Normalize(meta)
	if err != nil {
		return nil, err
	}
	subs, size, err := texmeta.Layout(meta, flags)
	if err != nil {
		return nil, err
	}
	if size <= 0 || size > maxArenaSize {
		return nil, newError("Initialize", KindAllocation, EOutOfMemory,
			fmt.Errorf("arena of %d bytes", size))
	}
	Logger().Debug("dxtex: allocate arena",
		"format", meta.Format, "width", meta.Width, "height", meta.Height,
		"images", len(subs), "bytes", size)
	return &ScratchImage{meta: meta, subs: subs, arena: make([]byte, size)}, nil
}

// adopt wraps an arena produced by a codec or pipeline step. The arena must
// match the tight layout of meta exactly.
func adopt(meta TexMetadata, arena []byte) (*ScratchImage, error) {
	meta, err := texmeta.Normalize(meta)
	if err != nil {
		return nil, err
	}
	subs, size, err := texmeta.Layout(meta, dxgi.CPFlagsNone)
	if err != nil {
		return nil, err
	}
	if len(arena) != size {
		return nil, fmt.Errorf("%w: arena is %d bytes, layout needs %d", texmeta.ErrInvalidMetadata, len(arena), size)
	}
	return &ScratchImage{meta: meta, subs: subs, arena: arena}, nil
}

// Initialize1D allocates a 1D texture or texture array.
func Initialize1D(format dxgi.Format, length, arraySize, mipLevels int) (*ScratchImage, error) {
	return Initialize(TexMetadata{
		Width: length, Height: 1, Depth: 1,
		ArraySize: arraySize, MipLevels: mipLevels,
		Format: format, Dimension: texmeta.Texture1D,
	}, dxgi.CPFlagsNone)
}

// Initialize2D allocates a 2D texture or texture array.
func Initialize2D(format dxgi.Format, width, height, arraySize, mipLevels int) (*ScratchImage, error) {
	return Initialize(TexMetadata{
		Width: width, Height: height, Depth: 1,
		ArraySize: arraySize, MipLevels: mipLevels,
		Format: format, Dimension: texmeta.Texture2D,
	}, dxgi.CPFlagsNone)
}

// Initialize3D allocates a volume texture.
func Initialize3D(format dxgi.Format, width, height, depth, mipLevels int) (*ScratchImage, error) {
	return Initialize(TexMetadata{
		Width: width, Height: height, Depth: depth,
		ArraySize: 1, MipLevels: mipLevels,
		Format: format, Dimension: texmeta.Texture3D,
	}, dxgi.CPFlagsNone)
}

// InitializeCube allocates nCubes cube maps of six faces each.
func InitializeCube(format dxgi.Format, width, height, nCubes, mipLevels int) (*ScratchImage, error) {
	if nCubes <= 0 {
		return nil, invalidArg("InitializeCube", "%d cubes", nCubes)
	}
	return Initialize(TexMetadata{
		Width: width, Height: height, Depth: 1,
		ArraySize: 6 * nCubes, MipLevels: mipLevels,
		MiscFlags: texmeta.MiscTextureCube,
		Format:    format, Dimension: texmeta.Texture2D,
	}, dxgi.CPFlagsNone)
}

// NewScratchImage allocates a texture: 2D when height > 1, otherwise 1D.
// Use Initialize2D for a 2D texture of height 1.
func NewScratchImage(format dxgi.Format, width, height, arraySize, mipLevels int) (*ScratchImage, error) {
	if height > 1 {
		return Initialize2D(format, width, height, arraySize, mipLevels)
	}
	return Initialize1D(format, width, arraySize, mipLevels)
}

// FromBytes allocates a texture as NewScratchImage does and fills it with
// src, which must be exactly as long as the arena.
func FromBytes(format dxgi.Format, width, height, arraySize, mipLevels int, src []byte) (*ScratchImage, error) {
	size, err := ExpectedBuffer(format, width, height, arraySize, mipLevels)
	if err != nil {
		return nil, err
	}
	if len(src) != size {
		return nil, invalidArg("FromBytes", "source is %d bytes, arena is %d", len(src), size)
	}
	s, err := NewScratchImage(format, width, height, arraySize, mipLevels)
	if err != nil {
		return nil, err
	}
	copy(s.arena, src)
	return s, nil
}

// ExpectedBuffer returns the arena size NewScratchImage would allocate.
func ExpectedBuffer(format dxgi.Format, width, height, arraySize, mipLevels int) (int, error) {
	dim := texmeta.Texture1D
	if height > 1 {
		dim = texmeta.Texture2D
	}
	meta, err := texmeta.Normalize(TexMetadata{
		Width: width, Height: max(height, 1), Depth: 1,
		ArraySize: arraySize, MipLevels: mipLevels,
		Format: format, Dimension: dim,
	})
	if err != nil {
		return 0, wrap("ExpectedBuffer", err)
	}
	_, size, err := texmeta.Layout(meta, dxgi.CPFlagsNone)
	if err != nil {
		return 0, wrap("ExpectedBuffer", err)
	}
	return size, nil
}

// IsEmpty reports whether s holds no arena, either because it was released
// or because it is the zero value.
func (s *ScratchImage) IsEmpty() bool {
	return s == nil || s.arena == nil
}

// Metadata returns the texture description.
func (s *ScratchImage) Metadata() TexMetadata {
	if s.IsEmpty() {
		return TexMetadata{}
	}
	return s.meta
}

// NumImages returns the number of sub-images.
func (s *ScratchImage) NumImages() int {
	if s.IsEmpty() {
		return 0
	}
	return len(s.subs)
}

// Image returns the view of sub-image (mip, item, slice). The second result
// is false when any index is out of range or s is empty.
func (s *ScratchImage) Image(mip, item, slice int) (Image, bool) {
	if s.IsEmpty() {
		return Image{}, false
	}
	i, ok := s.meta.ComputeIndex(mip, item, slice)
	if !ok {
		return Image{}, false
	}
	return s.view(i), true
}

// Image0 returns the first sub-image: the top mip of item 0, slice 0.
func (s *ScratchImage) Image0() (Image, bool) {
	return s.Image(0, 0, 0)
}

// Images returns every sub-image in arena order.
func (s *ScratchImage) Images() []Image {
	if s.IsEmpty() {
		return nil
	}
	out := make([]Image, len(s.subs))
	for i := range s.subs {
		out[i] = s.view(i)
	}
	return out
}

func (s *ScratchImage) view(i int) Image {
	sub := s.subs[i]
	end := sub.Offset + sub.SlicePitch
	if sub.Offset < 0 || end > len(s.arena) {
		panic(fmt.Sprintf("dxtex: sub-image %d [%d:%d] outside arena of %d bytes", i, sub.Offset, end, len(s.arena)))
	}
	return Image{
		width:      sub.Width,
		height:     sub.Height,
		rowPitch:   sub.RowPitch,
		slicePitch: sub.SlicePitch,
		format:     s.meta.Format,
		pixels:     s.arena[sub.Offset:end:end],
	}
}

// Buffer returns the whole arena. Writes through it change the image. It
// panics if s is empty.
func (s *ScratchImage) Buffer() []byte {
	if s.IsEmpty() {
		panic("dxtex: Buffer on empty ScratchImage")
	}
	return s.arena
}

// BufferMut is Buffer under the name callers use when they intend to write.
func (s *ScratchImage) BufferMut() []byte {
	return s.Buffer()
}

// BufferSize returns the arena size in bytes, 0 when empty.
func (s *ScratchImage) BufferSize() int {
	if s.IsEmpty() {
		return 0
	}
	return len(s.arena)
}

// CopyFrom overwrites the arena with src, which must be exactly as long.
// On a length mismatch the arena is left untouched.
func (s *ScratchImage) CopyFrom(src []byte) error {
	if s.IsEmpty() {
		return invalidArg("CopyFrom", "empty ScratchImage")
	}
	if len(src) != len(s.arena) {
		return invalidArg("CopyFrom", "source is %d bytes, arena is %d", len(src), len(s.arena))
	}
	copy(s.arena, src)
	return nil
}

// OverrideFormat relabels the pixels as f without converting them. It
// fails unless f lays out every sub-image with the same pitches.
func (s *ScratchImage) OverrideFormat(f dxgi.Format) error {
	const op = "OverrideFormat"
	if s.IsEmpty() {
		return invalidArg(op, "empty ScratchImage")
	}
	if !f.IsValid() {
		return invalidArg(op, "format %v", f)
	}
	meta := s.meta
	meta.Format = f
	subs, size, err := texmeta.Layout(meta, dxgi.CPFlagsNone)
	if err != nil {
		return wrap(op, err)
	}
	if size != len(s.arena) || len(subs) != len(s.subs) {
		return invalidArg(op, "%v does not share the layout of %v", f, s.meta.Format)
	}
	for i := range subs {
		if subs[i] != s.subs[i] {
			return invalidArg(op, "%v does not share the layout of %v", f, s.meta.Format)
		}
	}
	s.meta.Format = f
	return nil
}

// Clone returns an independent copy. Cloning a valid ScratchImage cannot
// fail, so an allocation failure panics.
func (s *ScratchImage) Clone() *ScratchImage {
	if s.IsEmpty() {
		return &ScratchImage{}
	}
	c, err := initialize(s.meta, dxgi.CPFlagsNone)
	if err != nil {
		panic(fmt.Sprintf("dxtex: clone of valid image failed: %v", err))
	}
	if len(c.arena) != len(s.arena) {
		// Layouts built with other pitch flags keep their own table.
		c.subs = append([]texmeta.Subresource(nil), s.subs...)
		c.arena = make([]byte, len(s.arena))
	}
	copy(c.arena, s.arena)
	return c
}

// Release drops the arena and the sub-image table. Views obtained earlier
// must not be used afterwards. Releasing twice does nothing.
func (s *ScratchImage) Release() {
	if s == nil {
		return
	}
	s.arena = nil
	s.subs = nil
	s.meta = TexMetadata{}
}

// IsAlphaAllOpaque reports whether every pixel has full alpha. Formats
// without alpha are always opaque. Compressed images are decoded.
func (s *ScratchImage) IsAlphaAllOpaque() (bool, error) {
	if s.IsEmpty() {
		return false, invalidArg("IsAlphaAllOpaque", "empty ScratchImage")
	}
	if !s.meta.Format.HasAlpha() {
		return true, nil
	}
	for _, img := range s.Images() {
		plane, err := loadPlane(img)
		if err != nil {
			return false, wrap("IsAlphaAllOpaque", err)
		}
		opaque := plane.IsOpaque(1)
		releasePlane(plane)
		if !opaque {
			return false, nil
		}
	}
	return true, nil
}
