package dxtex

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/dxtex/dxgi"
	"github.com/gogpu/dxtex/internal/codec/wic"
	"github.com/gogpu/dxtex/internal/texmeta"
)

// container identifies a codec family.
type container int

const (
	containerDDS container = iota + 1
	containerTGA
	containerHDR
	containerEXR
	containerWIC
)

func (c container) String() string {
	switch c {
	case containerDDS:
		return "DDS"
	case containerTGA:
		return "TGA"
	case containerHDR:
		return "HDR"
	case containerEXR:
		return "EXR"
	case containerWIC:
		return "WIC"
	}
	return "unknown"
}

// containerByExt maps a file extension to a codec family. Anything that
// is not DDS, TGA, HDR or EXR must be known to the generic codec table.
func containerByExt(path string) (container, WICCodec, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "dds":
		return containerDDS, 0, true
	case "tga":
		return containerTGA, 0, true
	case "hdr":
		return containerHDR, 0, true
	case "exr":
		return containerEXR, 0, true
	}
	if c, ok := wic.ByExt(ext); ok {
		return containerWIC, c, true
	}
	return 0, 0, false
}

// sniff identifies the container of an in-memory file from its contents.
// TGA has no signature and is tried last.
func sniff(data []byte) container {
	switch {
	case bytes.HasPrefix(data, []byte("DDS ")):
		return containerDDS
	case bytes.HasPrefix(data, []byte("#?RADIANCE")), bytes.HasPrefix(data, []byte("#?RGBE")):
		return containerHDR
	case bytes.HasPrefix(data, []byte{0x76, 0x2f, 0x31, 0x01}):
		return containerEXR
	}
	if _, err := wic.Detect(data); err == nil {
		return containerWIC
	}
	return containerTGA
}

// MetadataFromFile reads the metadata of a file, choosing the codec by
// extension: dds, tga, hdr and exr have their own codecs, every other
// extension the generic codec table knows goes there, and anything else
// fails with ErrInvalidArgument.
func MetadataFromFile(path string) (TexMetadata, error) {
	const op = "MetadataFromFile"
	c, _, ok := containerByExt(path)
	if !ok {
		return TexMetadata{}, invalidArg(op, "unknown extension %q", filepath.Ext(path))
	}
	switch c {
	case containerDDS:
		return MetadataFromDDSFile(path, DDSFlagsNone)
	case containerTGA:
		return MetadataFromTGAFile(path, TGAFlagsNone)
	case containerHDR:
		return MetadataFromHDRFile(path)
	case containerEXR:
		return MetadataFromEXRFile(path)
	default:
		return MetadataFromWICFile(path, WICFlagsNone)
	}
}

// LoadFromFile loads a file, choosing the codec as MetadataFromFile does.
func LoadFromFile(path string) (*ScratchImage, error) {
	const op = "LoadFromFile"
	c, _, ok := containerByExt(path)
	if !ok {
		return nil, invalidArg(op, "unknown extension %q", filepath.Ext(path))
	}
	switch c {
	case containerDDS:
		return LoadFromDDSFile(path, DDSFlagsNone)
	case containerTGA:
		return LoadFromTGAFile(path, TGAFlagsNone)
	case containerHDR:
		return LoadFromHDRFile(path)
	case containerEXR:
		return LoadFromEXRFile(path)
	default:
		return LoadFromWICFile(path, WICFlagsNone)
	}
}

// MetadataFromMemory reads the metadata of an in-memory file, identifying
// the container by its signature.
func MetadataFromMemory(data []byte) (TexMetadata, error) {
	c := sniff(data)
	Logger().Debug("dxtex: sniffed container", "container", c, "bytes", len(data))
	switch c {
	case containerDDS:
		return MetadataFromDDSMemory(data, DDSFlagsNone)
	case containerHDR:
		return MetadataFromHDRMemory(data)
	case containerEXR:
		return metadataFromEXRMemory("MetadataFromMemory", data)
	case containerWIC:
		return MetadataFromWICMemory(data, WICFlagsNone)
	default:
		return MetadataFromTGAMemory(data, TGAFlagsNone)
	}
}

// LoadFromMemory loads an in-memory file, identifying the container by its
// signature.
func LoadFromMemory(data []byte) (*ScratchImage, error) {
	c := sniff(data)
	Logger().Debug("dxtex: sniffed container", "container", c, "bytes", len(data))
	switch c {
	case containerDDS:
		return LoadFromDDSMemory(data, DDSFlagsNone)
	case containerHDR:
		return LoadFromHDRMemory(data)
	case containerEXR:
		return loadFromEXRMemory("LoadFromMemory", data)
	case containerWIC:
		return LoadFromWICMemory(data, WICFlagsNone)
	default:
		return LoadFromTGAMemory(data, TGAFlagsNone)
	}
}

// SaveToFile writes one image, choosing the codec by extension. DDS files
// receive just this image. meta supplies the TGA alpha mode.
func SaveToFile(path string, img Image, meta TexMetadata) error {
	const op = "SaveToFile"
	c, wc, ok := containerByExt(path)
	if !ok {
		return invalidArg(op, "unknown extension %q", filepath.Ext(path))
	}
	switch c {
	case containerDDS:
		return SaveToDDSFile([]Image{img}, singleMetadata(img, meta), DDSFlagsNone, path)
	case containerTGA:
		return SaveToTGAFile(img, &meta, path)
	case containerHDR:
		return SaveToHDRFile(img, path)
	case containerEXR:
		return SaveToEXRFile(img, path)
	default:
		return SaveToWICFile(img, wc, path)
	}
}

// singleMetadata describes img as a one-image 2D texture, keeping the
// alpha mode of meta.
func singleMetadata(img Image, meta TexMetadata) TexMetadata {
	out := TexMetadata{
		Width: img.width, Height: img.height, Depth: 1,
		ArraySize: 1, MipLevels: 1,
		Format: img.format, Dimension: texmeta.Texture2D,
	}
	out.SetAlphaMode(meta.AlphaMode())
	return out
}

// readFile reads a whole file after validating its path.
func readFile(op, path string) ([]byte, error) {
	p, err := widePath(op, path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, wrap(op, err)
	}
	return data, nil
}

// writeFile creates path and streams encode into it. A failed encode
// removes the partial file.
func writeFile(op, path string, encode func(w io.Writer) error) error {
	p, err := widePath(op, path)
	if err != nil {
		return err
	}
	f, err := os.Create(p)
	if err != nil {
		return wrap(op, err)
	}
	bw := bufio.NewWriter(f)
	err = encode(bw)
	if err == nil {
		err = bw.Flush()
	}
	if err != nil {
		if cerr := f.Close(); cerr != nil {
			Logger().Warn("dxtex: close after failed save", "path", p, "error", cerr)
		}
		if rerr := os.Remove(p); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
			Logger().Warn("dxtex: remove partial file", "path", p, "error", rerr)
		}
		return wrap(op, err)
	}
	if err := f.Close(); err != nil {
		return wrap(op, err)
	}
	return nil
}

// encodeToBlob runs encode into memory.
func encodeToBlob(op string, encode func(w io.Writer) error) (*Blob, error) {
	var buf bytes.Buffer
	if err := encode(&buf); err != nil {
		return nil, wrap(op, err)
	}
	return newBlob(buf.Bytes()), nil
}

// loadArena wraps a decoded arena into a ScratchImage.
func loadArena(op string, meta TexMetadata, arena []byte, err error) (*ScratchImage, error) {
	if err != nil {
		return nil, wrap(op, err)
	}
	s, err := adopt(meta, arena)
	if err != nil {
		return nil, wrap(op, err)
	}
	Logger().Debug("dxtex: loaded", "op", op, "format", meta.Format,
		"width", meta.Width, "height", meta.Height, "images", s.NumImages())
	return s, nil
}

var errNoImage = errors.New("conversion produced no image")

// reformat returns img in format f when accept rejects its format. The
// returned release func frees any temporary copy.
func reformat(op string, img Image, accept func(dxgi.Format) bool, f dxgi.Format) (Image, func(), error) {
	if accept(img.format) {
		return img, func() {}, nil
	}
	meta := singleMetadata(img, TexMetadata{})
	if img.format.IsSRGB() {
		f = f.MakeSRGB()
	}

	var (
		tmp *ScratchImage
		err error
	)
	if img.format.IsCompressed() {
		tmp, err = Decompress([]Image{img}, meta, f)
	} else {
		tmp, err = Convert([]Image{img}, meta, f, TexFilterDefault, TexThresholdDefault)
	}
	if err != nil {
		return Image{}, nil, wrapOp(op, err)
	}
	Logger().Debug("dxtex: converted for save", "op", op, "from", img.format, "to", f)
	out, ok := tmp.Image0()
	if !ok {
		tmp.Release()
		return Image{}, nil, newError(op, KindOperation, EFail, errNoImage)
	}
	return out, tmp.Release, nil
}

// wrapOp renames the operation of an *Error produced by a helper call.
func wrapOp(op string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		c := *e
		c.Op = fmt.Sprintf("%s: %s", op, e.Op)
		return &c
	}
	return wrap(op, err)
}
