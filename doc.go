// Package dxtex loads, processes and saves GPU textures.
//
// # Overview
//
// dxtex is a Pure Go texture processing library in the GoGPU ecosystem. It
// keeps every sub-image of a texture (mip levels, array items, cube faces and
// volume slices) in one contiguous arena owned by a ScratchImage, and offers
// the usual asset pipeline operations on it: resizing, mipmap generation,
// pixel format conversion, block compression and decompression, alpha
// premultiplication and flip/rotate.
//
// # Quick Start
//
//	import "github.com/gogpu/dxtex"
//
//	img, err := dxtex.LoadFromFile("albedo.png")
//	if err != nil {
//	    return err
//	}
//	defer img.Release()
//
//	mips, err := img.GenerateMipMaps(0, dxtex.TexFilterDefault)
//	if err != nil {
//	    return err
//	}
//	bc7, err := mips.IntoFormat(dxgi.FormatBC7UnormSRGB)
//	if err != nil {
//	    return err
//	}
//	defer bc7.Release()
//	return bc7.SaveDDS("albedo.dds", dxtex.DDSFlagsNone)
//
// # Containers
//
// DDS holds a complete texture with every sub-image. TGA, HDR (Radiance),
// EXR and the generic codecs (BMP, JPEG, PNG, TIFF, GIF, WEBP, HEIF) hold a
// single 2D image; GIF and TIFF frames can be loaded as array items with
// WICFlagsAllFrames. LoadFromFile and SaveToFile choose the codec by
// extension, LoadFromMemory by signature.
//
// # Compression
//
// BC1 through BC5 and BC7 are encoded and decoded in software. BC6H and BC7
// compression go through a process-wide Device (see HWDevice) that spreads
// work over a worker pool; a Device can also be created explicitly with
// NewDevice and passed to CompressWithDevice.
//
// # Ownership
//
// Image values are views into a ScratchImage and are invalid once it is
// released. Operations never modify their inputs; the Into methods consume
// their receiver and release it when they return a new ScratchImage.
//
// # Errors
//
// Every operation returns *Error, which carries an HRESULT status code and
// matches one of ErrOperation, ErrInvalidArgument, ErrDecode, ErrAllocation
// or ErrDeviceUnavailable with errors.Is.
package dxtex

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0-alpha.1"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0

	// VersionPrerelease is the prerelease identifier
	VersionPrerelease = "alpha.1"
)
