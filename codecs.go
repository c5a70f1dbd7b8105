package dxtex

import (
	"io"

	"github.com/gogpu/dxtex/dxgi"
	"github.com/gogpu/dxtex/internal/codec/dds"
	"github.com/gogpu/dxtex/internal/codec/exr"
	"github.com/gogpu/dxtex/internal/codec/hdr"
	"github.com/gogpu/dxtex/internal/codec/tga"
	"github.com/gogpu/dxtex/internal/codec/wic"
	"github.com/gogpu/dxtex/internal/pixel"
)

// DDS

// MetadataFromDDSMemory reads the header of an in-memory DDS file.
// DDSFlagsAllowLargeFiles admits textures past the Direct3D 11 limits.
func MetadataFromDDSMemory(data []byte, flags DDSFlags) (TexMetadata, error) {
	meta, err := dds.Metadata(data, dds.Flags(flags))
	return meta, wrap("MetadataFromDDSMemory", err)
}

// MetadataFromDDSFile reads the header of a DDS file.
func MetadataFromDDSFile(path string, flags DDSFlags) (TexMetadata, error) {
	const op = "MetadataFromDDSFile"
	data, err := readFile(op, path)
	if err != nil {
		return TexMetadata{}, err
	}
	meta, err := dds.Metadata(data, dds.Flags(flags))
	return meta, wrap(op, err)
}

// LoadFromDDSMemory decodes an in-memory DDS file.
func LoadFromDDSMemory(data []byte, flags DDSFlags) (*ScratchImage, error) {
	meta, arena, err := dds.Decode(data, dds.Flags(flags))
	return loadArena("LoadFromDDSMemory", meta, arena, err)
}

// LoadFromDDSFile decodes a DDS file.
func LoadFromDDSFile(path string, flags DDSFlags) (*ScratchImage, error) {
	const op = "LoadFromDDSFile"
	data, err := readFile(op, path)
	if err != nil {
		return nil, err
	}
	meta, arena, err := dds.Decode(data, dds.Flags(flags))
	return loadArena(op, meta, arena, err)
}

func encodeDDS(images []Image, meta TexMetadata, flags DDSFlags) func(io.Writer) error {
	return func(w io.Writer) error {
		return dds.Encode(w, meta, surfaces(images), dds.Flags(flags))
	}
}

// SaveToDDSMemory encodes a complete sub-image set as a DDS file.
func SaveToDDSMemory(images []Image, meta TexMetadata, flags DDSFlags) (*Blob, error) {
	const op = "SaveToDDSMemory"
	if _, err := checkImages(op, images, meta); err != nil {
		return nil, err
	}
	return encodeToBlob(op, encodeDDS(images, meta, flags))
}

// SaveToDDSFile writes a complete sub-image set as a DDS file.
func SaveToDDSFile(images []Image, meta TexMetadata, flags DDSFlags, path string) error {
	const op = "SaveToDDSFile"
	if _, err := checkImages(op, images, meta); err != nil {
		return err
	}
	return writeFile(op, path, encodeDDS(images, meta, flags))
}

// SaveImageToDDSMemory encodes a single image, such as one mip or one
// volume slice, as a 2D DDS file.
func SaveImageToDDSMemory(img Image, flags DDSFlags) (*Blob, error) {
	meta := singleMetadata(img, TexMetadata{})
	return SaveToDDSMemory([]Image{img}, meta, flags)
}

// SaveImageToDDSFile writes a single image as a 2D DDS file.
func SaveImageToDDSFile(img Image, flags DDSFlags, path string) error {
	meta := singleMetadata(img, TexMetadata{})
	return SaveToDDSFile([]Image{img}, meta, flags, path)
}

// TGA

// MetadataFromTGAMemory reads the header of an in-memory TGA file. The
// alpha mode reflects the header and extension area only; LoadFromTGAMemory
// also inspects the alpha values and may report a different mode.
func MetadataFromTGAMemory(data []byte, flags TGAFlags) (TexMetadata, error) {
	meta, err := tga.Metadata(data, tga.Flags(flags))
	return meta, wrap("MetadataFromTGAMemory", err)
}

// MetadataFromTGAFile reads the header of a TGA file. See
// MetadataFromTGAMemory for how its alpha mode differs from a full load.
func MetadataFromTGAFile(path string, flags TGAFlags) (TexMetadata, error) {
	const op = "MetadataFromTGAFile"
	data, err := readFile(op, path)
	if err != nil {
		return TexMetadata{}, err
	}
	meta, err := tga.Metadata(data, tga.Flags(flags))
	return meta, wrap(op, err)
}

// LoadFromTGAMemory decodes an in-memory TGA file.
func LoadFromTGAMemory(data []byte, flags TGAFlags) (*ScratchImage, error) {
	meta, arena, err := tga.Decode(data, tga.Flags(flags))
	return loadArena("LoadFromTGAMemory", meta, arena, err)
}

// LoadFromTGAFile decodes a TGA file.
func LoadFromTGAFile(path string, flags TGAFlags) (*ScratchImage, error) {
	const op = "LoadFromTGAFile"
	data, err := readFile(op, path)
	if err != nil {
		return nil, err
	}
	meta, arena, err := tga.Decode(data, tga.Flags(flags))
	return loadArena(op, meta, arena, err)
}

func tgaWritable(f dxgi.Format) bool {
	switch f {
	case dxgi.FormatR8G8B8A8Unorm, dxgi.FormatR8G8B8A8UnormSRGB,
		dxgi.FormatB8G8R8A8Unorm, dxgi.FormatB8G8R8A8UnormSRGB,
		dxgi.FormatB8G8R8X8Unorm, dxgi.FormatB8G8R8X8UnormSRGB,
		dxgi.FormatB5G5R5A1Unorm, dxgi.FormatR8Unorm, dxgi.FormatA8Unorm:
		return true
	}
	return false
}

// saveTGA converts img to RGBA8 when TGA cannot store it and encodes it.
// A non-nil meta records its alpha mode in the extension area.
func saveTGA(op string, img Image, meta *TexMetadata, sink func(func(io.Writer) error) error) error {
	img, release, err := reformat(op, img, tgaWritable, dxgi.FormatR8G8B8A8Unorm)
	if err != nil {
		return err
	}
	defer release()
	return sink(func(w io.Writer) error {
		return tga.Encode(w, img.surface(), meta)
	})
}

// SaveToTGAMemory encodes img as an uncompressed TGA file. Formats TGA
// cannot store are converted to R8G8B8A8 first. A non-nil meta adds a TGA
// 2.0 extension area recording its alpha mode.
func SaveToTGAMemory(img Image, meta *TexMetadata) (*Blob, error) {
	const op = "SaveToTGAMemory"
	var blob *Blob
	err := saveTGA(op, img, meta, func(encode func(io.Writer) error) error {
		var err error
		blob, err = encodeToBlob(op, encode)
		return err
	})
	return blob, err
}

// SaveToTGAFile writes img as an uncompressed TGA file.
func SaveToTGAFile(img Image, meta *TexMetadata, path string) error {
	const op = "SaveToTGAFile"
	return saveTGA(op, img, meta, func(encode func(io.Writer) error) error {
		return writeFile(op, path, encode)
	})
}

// HDR

// MetadataFromHDRMemory reads the header of an in-memory Radiance file.
func MetadataFromHDRMemory(data []byte) (TexMetadata, error) {
	meta, err := hdr.Metadata(data)
	return meta, wrap("MetadataFromHDRMemory", err)
}

// MetadataFromHDRFile reads the header of a Radiance file.
func MetadataFromHDRFile(path string) (TexMetadata, error) {
	const op = "MetadataFromHDRFile"
	data, err := readFile(op, path)
	if err != nil {
		return TexMetadata{}, err
	}
	meta, err := hdr.Metadata(data)
	return meta, wrap(op, err)
}

// LoadFromHDRMemory decodes an in-memory Radiance file as
// R32G32B32A32_FLOAT.
func LoadFromHDRMemory(data []byte) (*ScratchImage, error) {
	meta, arena, err := hdr.Decode(data)
	return loadArena("LoadFromHDRMemory", meta, arena, err)
}

// LoadFromHDRFile decodes a Radiance file as R32G32B32A32_FLOAT.
func LoadFromHDRFile(path string) (*ScratchImage, error) {
	const op = "LoadFromHDRFile"
	data, err := readFile(op, path)
	if err != nil {
		return nil, err
	}
	meta, arena, err := hdr.Decode(data)
	return loadArena(op, meta, arena, err)
}

func floatWritable(f dxgi.Format) bool {
	return !f.IsCompressed() && pixel.Supported(f)
}

func saveFloat(op string, img Image, enc func(io.Writer, Image) error, sink func(func(io.Writer) error) error) error {
	img, release, err := reformat(op, img, floatWritable, dxgi.FormatR32G32B32A32Float)
	if err != nil {
		return err
	}
	defer release()
	return sink(func(w io.Writer) error { return enc(w, img) })
}

func encodeHDR(w io.Writer, img Image) error { return hdr.Encode(w, img.surface()) }

func encodeEXR(w io.Writer, img Image) error { return exr.Encode(w, img.surface()) }

// SaveToHDRMemory encodes img as an RLE Radiance file. Alpha is dropped.
func SaveToHDRMemory(img Image) (*Blob, error) {
	const op = "SaveToHDRMemory"
	var blob *Blob
	err := saveFloat(op, img, encodeHDR, func(encode func(io.Writer) error) error {
		var err error
		blob, err = encodeToBlob(op, encode)
		return err
	})
	return blob, err
}

// SaveToHDRFile writes img as an RLE Radiance file.
func SaveToHDRFile(img Image, path string) error {
	const op = "SaveToHDRFile"
	return saveFloat(op, img, encodeHDR, func(encode func(io.Writer) error) error {
		return writeFile(op, path, encode)
	})
}

// EXR

func metadataFromEXRMemory(op string, data []byte) (TexMetadata, error) {
	meta, err := exr.Metadata(data)
	return meta, wrap(op, err)
}

func loadFromEXRMemory(op string, data []byte) (*ScratchImage, error) {
	meta, arena, err := exr.Decode(data)
	return loadArena(op, meta, arena, err)
}

// MetadataFromEXRFile reads the header of an OpenEXR file.
func MetadataFromEXRFile(path string) (TexMetadata, error) {
	const op = "MetadataFromEXRFile"
	data, err := readFile(op, path)
	if err != nil {
		return TexMetadata{}, err
	}
	return metadataFromEXRMemory(op, data)
}

// LoadFromEXRFile decodes the first part of an OpenEXR file as
// R16G16B16A16_FLOAT or R32G32B32A32_FLOAT, following its channel types.
func LoadFromEXRFile(path string) (*ScratchImage, error) {
	const op = "LoadFromEXRFile"
	data, err := readFile(op, path)
	if err != nil {
		return nil, err
	}
	return loadFromEXRMemory(op, data)
}

// SaveToEXRFile writes img as a ZIP-compressed OpenEXR file with half
// channels.
func SaveToEXRFile(img Image, path string) error {
	const op = "SaveToEXRFile"
	return saveFloat(op, img, encodeEXR, func(encode func(io.Writer) error) error {
		return writeFile(op, path, encode)
	})
}

// Generic codecs

// MetadataFromWICMemory reads the metadata of an in-memory BMP, JPEG, PNG,
// TIFF, GIF, WEBP or HEIF file.
func MetadataFromWICMemory(data []byte, flags WICFlags) (TexMetadata, error) {
	meta, err := wic.Metadata(data, wic.Flags(flags))
	return meta, wrap("MetadataFromWICMemory", err)
}

// MetadataFromWICFile reads the metadata of a generic image file.
func MetadataFromWICFile(path string, flags WICFlags) (TexMetadata, error) {
	const op = "MetadataFromWICFile"
	data, err := readFile(op, path)
	if err != nil {
		return TexMetadata{}, err
	}
	meta, err := wic.Metadata(data, wic.Flags(flags))
	return meta, wrap(op, err)
}

// LoadFromWICMemory decodes an in-memory generic image file. With
// WICFlagsAllFrames every frame becomes an array item.
func LoadFromWICMemory(data []byte, flags WICFlags) (*ScratchImage, error) {
	meta, arena, err := wic.Decode(data, wic.Flags(flags))
	return loadArena("LoadFromWICMemory", meta, arena, err)
}

// LoadFromWICFile decodes a generic image file.
func LoadFromWICFile(path string, flags WICFlags) (*ScratchImage, error) {
	const op = "LoadFromWICFile"
	data, err := readFile(op, path)
	if err != nil {
		return nil, err
	}
	meta, arena, err := wic.Decode(data, wic.Flags(flags))
	return loadArena(op, meta, arena, err)
}

func saveWIC(op string, img Image, c WICCodec, sink func(func(io.Writer) error) error) error {
	img, release, err := reformat(op, img, floatWritable, dxgi.FormatR8G8B8A8Unorm)
	if err != nil {
		return err
	}
	defer release()
	return sink(func(w io.Writer) error {
		return wic.Encode(w, c, img.surface())
	})
}

// SaveToWICMemory encodes img with codec c. Compressed images are
// decompressed first. HEIF, WMP and ICO cannot be written.
func SaveToWICMemory(img Image, c WICCodec) (*Blob, error) {
	const op = "SaveToWICMemory"
	var blob *Blob
	err := saveWIC(op, img, c, func(encode func(io.Writer) error) error {
		var err error
		blob, err = encodeToBlob(op, encode)
		return err
	})
	return blob, err
}

// SaveToWICFile writes img with codec c.
func SaveToWICFile(img Image, c WICCodec, path string) error {
	const op = "SaveToWICFile"
	return saveWIC(op, img, c, func(encode func(io.Writer) error) error {
		return writeFile(op, path, encode)
	})
}
