package dxtex

import (
	"github.com/gogpu/dxtex/dxgi"
)

// Format returns the pixel format, FormatUnknown when empty.
func (s *ScratchImage) Format() dxgi.Format {
	return s.Metadata().Format
}

// IsCompressed reports whether the pixels are block compressed.
func (s *ScratchImage) IsCompressed() bool {
	return s.Format().IsCompressed()
}

// ImageSize returns the slice pitch of sub-image (mip, item, slice).
func (s *ScratchImage) ImageSize(mip, item, slice int) (int, bool) {
	img, ok := s.Image(mip, item, slice)
	if !ok {
		return 0, false
	}
	return img.slicePitch, true
}

// ImageBuffer returns the bytes of sub-image (mip, item, slice). Writes
// through the slice change the image.
func (s *ScratchImage) ImageBuffer(mip, item, slice int) ([]byte, bool) {
	img, ok := s.Image(mip, item, slice)
	if !ok {
		return nil, false
	}
	return img.pixels, true
}

// Resize is the method form of Resize.
func (s *ScratchImage) Resize(width, height int, filter TexFilterFlags) (*ScratchImage, error) {
	return Resize(s.Images(), s.Metadata(), width, height, filter)
}

// GenerateMipMaps is the method form of GenerateMipMaps.
func (s *ScratchImage) GenerateMipMaps(levels int, filter TexFilterFlags) (*ScratchImage, error) {
	return GenerateMipMaps(s.Images(), s.Metadata(), levels, filter)
}

// Convert is the method form of Convert.
func (s *ScratchImage) Convert(format dxgi.Format, filter TexFilterFlags, threshold float32) (*ScratchImage, error) {
	return Convert(s.Images(), s.Metadata(), format, filter, threshold)
}

// Compress is the method form of Compress.
func (s *ScratchImage) Compress(format dxgi.Format, flags TexCompressFlags, threshold float32) (*ScratchImage, error) {
	return Compress(s.Images(), s.Metadata(), format, flags, threshold)
}

// CompressWithDevice is the method form of CompressWithDevice.
func (s *ScratchImage) CompressWithDevice(dev *Device, format dxgi.Format, flags TexCompressFlags, threshold float32) (*ScratchImage, error) {
	return CompressWithDevice(dev, s.Images(), s.Metadata(), format, flags, threshold)
}

// Decompress is the method form of Decompress.
func (s *ScratchImage) Decompress(format dxgi.Format) (*ScratchImage, error) {
	return Decompress(s.Images(), s.Metadata(), format)
}

// PremultiplyAlpha is the method form of PremultiplyAlpha.
func (s *ScratchImage) PremultiplyAlpha(flags TexPMAlphaFlags) (*ScratchImage, error) {
	return PremultiplyAlpha(s.Images(), s.Metadata(), flags)
}

// FlipRotate is the method form of FlipRotate.
func (s *ScratchImage) FlipRotate(flags TexFRFlags) (*ScratchImage, error) {
	return FlipRotate(s.Images(), s.Metadata(), flags)
}

// Evaluate is the method form of EvaluateImages.
func (s *ScratchImage) Evaluate(fn EvaluateFunc) error {
	return EvaluateImages(s.Images(), s.Metadata(), fn)
}

// Transform is the method form of TransformImages.
func (s *ScratchImage) Transform(fn TransformFunc) (*ScratchImage, error) {
	return TransformImages(s.Images(), s.Metadata(), fn)
}

// The Into methods consume their receiver: when they return a different
// ScratchImage the receiver has been released. On error the receiver is
// left intact.

// StepIntoFormat takes one step toward format f: decompress when the
// pixels are compressed, otherwise compress when f is compressed,
// otherwise convert. It returns s itself when it already has format f.
// Repeating it reaches f in at most three steps.
func (s *ScratchImage) StepIntoFormat(f dxgi.Format) (*ScratchImage, error) {
	switch cur := s.Format(); {
	case s.IsEmpty():
		return nil, invalidArg("StepIntoFormat", "empty ScratchImage")
	case cur == f:
		return s, nil
	case cur.IsCompressed():
		return s.replace(s.Decompress(dxgi.FormatUnknown))
	case f.IsCompressed():
		return s.replace(s.Compress(f, TexCompressDefault, TexThresholdDefault))
	default:
		return s.replace(s.Convert(f, TexFilterDefault, TexThresholdDefault))
	}
}

// MaybeDecompress decompresses compressed pixels into their natural
// format and returns s unchanged otherwise.
func (s *ScratchImage) MaybeDecompress() (*ScratchImage, error) {
	if !s.IsCompressed() {
		return s, nil
	}
	return s.replace(s.Decompress(dxgi.FormatUnknown))
}

// ConvertOrCompress reaches format f from uncompressed pixels in a single
// step.
func (s *ScratchImage) ConvertOrCompress(f dxgi.Format) (*ScratchImage, error) {
	switch {
	case s.Format() == f:
		return s, nil
	case f.IsCompressed():
		return s.replace(s.Compress(f, TexCompressDefault, TexThresholdDefault))
	default:
		return s.replace(s.Convert(f, TexFilterDefault, TexThresholdDefault))
	}
}

// IntoFormat reaches format f, decompressing first if needed.
func (s *ScratchImage) IntoFormat(f dxgi.Format) (*ScratchImage, error) {
	if !s.IsCompressed() {
		return s.ConvertOrCompress(f)
	}
	d, err := s.Decompress(dxgi.FormatUnknown)
	if err != nil {
		return nil, err
	}
	out, err := d.ConvertOrCompress(f)
	if err != nil {
		d.Release()
		return nil, err
	}
	s.Release()
	return out, nil
}

// IntoConverted converts to format f with the given filter flags unless
// already there.
func (s *ScratchImage) IntoConverted(f dxgi.Format, filter TexFilterFlags) (*ScratchImage, error) {
	if s.Format() == f {
		return s, nil
	}
	return s.replace(s.Convert(f, filter, TexThresholdDefault))
}

func (s *ScratchImage) replace(next *ScratchImage, err error) (*ScratchImage, error) {
	if err != nil {
		return nil, err
	}
	s.Release()
	return next, nil
}
