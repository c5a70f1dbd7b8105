// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package codec holds what the container codecs share: the error values the
// root package classifies and a few scanline helpers.
package codec

import (
	"errors"

	"github.com/gogpu/dxtex/dxgi"
	"github.com/gogpu/dxtex/internal/texmeta"
)

var (
	// ErrBadHeader reports a malformed or unrecognized file header.
	ErrBadHeader = errors.New("bad header")

	// ErrTruncated reports a file that ends before its pixel data does.
	ErrTruncated = errors.New("truncated data")

	// ErrUnsupported reports a well-formed file or request using a feature
	// the codec does not implement.
	ErrUnsupported = errors.New("unsupported")

	// ErrInvalidImage reports a source image that cannot be written by the
	// codec (wrong count, mismatched size).
	ErrInvalidImage = errors.New("invalid image")
)

// CopyRows copies the rows of src into dst, which may use a different row
// pitch. Each row copies min(len) bytes.
func CopyRows(dst []byte, dstPitch int, src []byte, srcPitch, rows int) {
	n := min(dstPitch, srcPitch)
	for y := 0; y < rows; y++ {
		copy(dst[y*dstPitch:y*dstPitch+n], src[y*srcPitch:y*srcPitch+n])
	}
}

// Tight returns a copy of s whose rows are packed at the format's natural
// pitch. It returns s.Pixels unchanged when the pitch already matches.
func Tight(s *texmeta.Surface) ([]byte, int, error) {
	row, slice, err := dxgi.ComputePitch(s.Format, s.Width, s.Height, dxgi.CPFlagsNone)
	if err != nil {
		return nil, 0, err
	}
	if row == s.RowPitch && len(s.Pixels) >= slice {
		return s.Pixels[:slice], row, nil
	}
	out := make([]byte, slice)
	CopyRows(out, row, s.Pixels, s.RowPitch, slice/row)
	return out, row, nil
}
