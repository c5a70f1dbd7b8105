// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wic

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/gogpu/dxtex/internal/codec"
)

// Codec identifies a container format handled by this package.
type Codec int

// Codec values. WEBP has no counterpart in the Windows codec list and comes
// after it.
const (
	CodecBMP Codec = iota + 1
	CodecJPEG
	CodecPNG
	CodecTIFF
	CodecGIF
	CodecWMP
	CodecICO
	CodecHEIF
	CodecWEBP
)

var codecNames = map[Codec]string{
	CodecBMP:  "BMP",
	CodecJPEG: "JPEG",
	CodecPNG:  "PNG",
	CodecTIFF: "TIFF",
	CodecGIF:  "GIF",
	CodecWMP:  "WMP",
	CodecICO:  "ICO",
	CodecHEIF: "HEIF",
	CodecWEBP: "WEBP",
}

func (c Codec) String() string {
	if name, ok := codecNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Codec(%d)", int(c))
}

// Entry is the set of functions backing one codec. Decode and DecodeConfig
// are required. DecodeAll is set for codecs that can hold several frames,
// and Encode is nil for decode-only codecs.
type Entry struct {
	Decode       func(io.Reader) (image.Image, error)
	DecodeConfig func(io.Reader) (image.Config, error)
	DecodeAll    func(io.Reader) ([]image.Image, error)
	Encode       func(io.Writer, image.Image) error

	// Deep reports that Encode keeps 16 bits per channel.
	Deep bool
}

var (
	registryMu sync.RWMutex
	entries    = make(map[Codec]Entry)
)

// Register installs e as the implementation of c, replacing any previous
// one. Built-in codecs register themselves from init.
func Register(c Codec, e Entry) {
	registryMu.Lock()
	defer registryMu.Unlock()
	entries[c] = e
}

// Unregister removes the implementation of c.
// This is useful for testing.
func Unregister(c Codec) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(entries, c)
}

// Available returns the registered codecs in ascending order.
func Available() []Codec {
	registryMu.RLock()
	defer registryMu.RUnlock()

	list := make([]Codec, 0, len(entries))
	for c := range entries {
		list = append(list, c)
	}
	slices.Sort(list)
	return list
}

// IsRegistered reports whether c has an implementation.
func IsRegistered(c Codec) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := entries[c]
	return ok
}

func lookup(c Codec) (Entry, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	e, ok := entries[c]
	if !ok {
		return Entry{}, fmt.Errorf("wic: %w: codec %v", codec.ErrUnsupported, c)
	}
	return e, nil
}

var extensions = map[string]Codec{
	"bmp":  CodecBMP,
	"jpg":  CodecJPEG,
	"jpeg": CodecJPEG,
	"png":  CodecPNG,
	"tif":  CodecTIFF,
	"tiff": CodecTIFF,
	"gif":  CodecGIF,
	"jxr":  CodecWMP,
	"wdp":  CodecWMP,
	"hdp":  CodecWMP,
	"ico":  CodecICO,
	"heic": CodecHEIF,
	"heif": CodecHEIF,
	"webp": CodecWEBP,
}

// ByExt returns the codec for a file extension, with or without the leading
// dot, ignoring case.
func ByExt(ext string) (Codec, bool) {
	c, ok := extensions[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return c, ok
}

// signature matches the leading bytes of a file.
type signature struct {
	codec Codec
	match func([]byte) bool
}

func prefix(p string) func([]byte) bool {
	return func(b []byte) bool { return bytes.HasPrefix(b, []byte(p)) }
}

var signatures = []signature{
	{CodecPNG, prefix("\x89PNG\r\n\x1a\n")},
	{CodecJPEG, prefix("\xff\xd8\xff")},
	{CodecGIF, prefix("GIF8")},
	{CodecBMP, prefix("BM")},
	{CodecWMP, prefix("II\xbc")},
	{CodecTIFF, func(b []byte) bool {
		return bytes.HasPrefix(b, []byte("II*\x00")) || bytes.HasPrefix(b, []byte("MM\x00*"))
	}},
	{CodecWEBP, func(b []byte) bool {
		return len(b) >= 12 && string(b[:4]) == "RIFF" && string(b[8:12]) == "WEBP"
	}},
	{CodecHEIF, func(b []byte) bool {
		if len(b) < 12 || string(b[4:8]) != "ftyp" {
			return false
		}
		switch string(b[8:12]) {
		case "heic", "heix", "heim", "heis", "hevc", "hevx", "mif1", "msf1":
			return true
		}
		return false
	}},
	{CodecICO, prefix("\x00\x00\x01\x00")},
}

// Detect identifies the container of an encoded file from its first bytes.
func Detect(data []byte) (Codec, error) {
	for _, s := range signatures {
		if s.match(data) {
			return s.codec, nil
		}
	}
	return 0, fmt.Errorf("wic: %w: unknown container", codec.ErrBadHeader)
}
