package dxtex

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"

	"github.com/gogpu/dxtex/dxgi"
	"github.com/gogpu/dxtex/internal/codec"
	"github.com/gogpu/dxtex/internal/texmeta"
)

func TestWrapClassification(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		kind     Kind
		code     HRESULT
		sentinel error
	}{
		{"bad header", fmt.Errorf("dds: %w", codec.ErrBadHeader), KindDecode, WINCODECErrBadHeader, ErrDecode},
		{"truncated", fmt.Errorf("tga: %w", codec.ErrTruncated), KindDecode, EHandleEOF, ErrDecode},
		{"pitch overflow", dxgi.ErrPitchOverflow, KindAllocation, EArithmeticOverflow, ErrAllocation},
		{"too large", fmt.Errorf("layout: %w", texmeta.ErrTooLarge), KindAllocation, EOutOfMemory, ErrAllocation},
		{"bad metadata", texmeta.ErrInvalidMetadata, KindInvalidArgument, EInvalidArg, ErrInvalidArgument},
		{"unsupported", fmt.Errorf("wic: %w", codec.ErrUnsupported), KindOperation, ENotSupported, ErrOperation},
		{"missing file", fmt.Errorf("open: %w", fs.ErrNotExist), KindOperation, EFileNotFound, ErrOperation},
		{"other", errors.New("boom"), KindOperation, EFail, ErrOperation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := wrap("Op", tt.err)
			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("wrap returned %T", err)
			}
			if e.Kind != tt.kind || e.Code != tt.code {
				t.Errorf("got %v/%#x, want %v/%#x", e.Kind, uint32(e.Code), tt.kind, uint32(tt.code))
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.sentinel)
			}
			if !errors.Is(err, tt.err) {
				t.Error("cause not reachable through Unwrap")
			}
		})
	}

	if wrap("Op", nil) != nil {
		t.Error("wrap(nil) != nil")
	}
}

func TestWrapKeepsError(t *testing.T) {
	orig := newError("Inner", KindDeviceUnavailable, DXGIErrorUnsupported, nil)
	if got := wrap("Outer", orig); got != orig {
		t.Errorf("wrap replaced an *Error: %v", got)
	}
	renamed := wrapOp("Outer", orig)
	var e *Error
	if !errors.As(renamed, &e) || e.Op != "Outer: Inner" || e.Code != DXGIErrorUnsupported {
		t.Errorf("wrapOp = %v", renamed)
	}
	if orig.Op != "Inner" {
		t.Error("wrapOp modified its input")
	}
}

func TestErrorString(t *testing.T) {
	err := invalidArg("Resize", "size %dx%d", 0, 4)
	got := err.Error()
	for _, want := range []string{"Resize", "0x80070057", "size 0x4"} {
		if !strings.Contains(got, want) {
			t.Errorf("Error() = %q, missing %q", got, want)
		}
	}
	if !errors.Is(err, ErrInvalidArgument) || errors.Is(err, ErrDecode) {
		t.Error("sentinel matching wrong")
	}
}

func TestKindString(t *testing.T) {
	for k, want := range map[Kind]string{
		KindOperation:         "operation failure",
		KindInvalidArgument:   "invalid argument",
		KindDecode:            "decode error",
		KindAllocation:        "allocation failure",
		KindDeviceUnavailable: "device unavailable",
		Kind(42):              "Kind(42)",
	} {
		if got := k.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(k), got, want)
		}
	}
}
