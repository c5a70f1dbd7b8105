package dxtex

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/gogpu/dxtex/dxgi"
	"github.com/gogpu/dxtex/internal/bc"
	"github.com/gogpu/dxtex/internal/codec"
	teximage "github.com/gogpu/dxtex/internal/image"
	"github.com/gogpu/dxtex/internal/pixel"
	"github.com/gogpu/dxtex/internal/texmeta"
)

// HRESULT is a Windows-style status code. Every *Error carries one.
type HRESULT uint32

// Status codes reported by this package.
const (
	EFail                HRESULT = 0x80004005
	EInvalidArg          HRESULT = 0x80070057
	EOutOfMemory         HRESULT = 0x8007000E
	EFileNotFound        HRESULT = 0x80070002 // HRESULT_FROM_WIN32(ERROR_FILE_NOT_FOUND)
	EHandleEOF           HRESULT = 0x80070026 // HRESULT_FROM_WIN32(ERROR_HANDLE_EOF)
	ENotSupported        HRESULT = 0x80070032 // HRESULT_FROM_WIN32(ERROR_NOT_SUPPORTED)
	EArithmeticOverflow  HRESULT = 0x80070216 // HRESULT_FROM_WIN32(ERROR_ARITHMETIC_OVERFLOW)
	WINCODECErrBadHeader HRESULT = 0x88982F61
	DXGIErrorUnsupported HRESULT = 0x887A0004
)

// Kind classifies an *Error.
type Kind int

const (
	// KindOperation is a pipeline or I/O step that failed.
	KindOperation Kind = iota
	// KindInvalidArgument is bad input: wrong buffer length, unterminated
	// string, unsupported dimension combination.
	KindInvalidArgument
	// KindDecode is a codec rejecting its input as malformed.
	KindDecode
	// KindAllocation is an arena that could not be allocated.
	KindAllocation
	// KindDeviceUnavailable is a compression device that could not be
	// created or has been closed.
	KindDeviceUnavailable
)

// Sentinel errors. An *Error matches the sentinel of its Kind with
// errors.Is.
var (
	ErrOperation         = errors.New("dxtex: operation failed")
	ErrInvalidArgument   = errors.New("dxtex: invalid argument")
	ErrDecode            = errors.New("dxtex: decode failed")
	ErrAllocation        = errors.New("dxtex: allocation failed")
	ErrDeviceUnavailable = errors.New("dxtex: device unavailable")
)

func (k Kind) String() string {
	switch k {
	case KindOperation:
		return "operation failure"
	case KindInvalidArgument:
		return "invalid argument"
	case KindDecode:
		return "decode error"
	case KindAllocation:
		return "allocation failure"
	case KindDeviceUnavailable:
		return "device unavailable"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidArgument:
		return ErrInvalidArgument
	case KindDecode:
		return ErrDecode
	case KindAllocation:
		return ErrAllocation
	case KindDeviceUnavailable:
		return ErrDeviceUnavailable
	}
	return ErrOperation
}

// Error is the error type returned by every operation in this package.
type Error struct {
	Code HRESULT
	Kind Kind
	Op   string // operation name, e.g. "Compress" or "LoadFromDDSFile"
	Err  error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("dxtex: %s: Error code 0x%08x", e.Op, uint32(e.Code))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of e's Kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

func newError(op string, kind Kind, code HRESULT, err error) *Error {
	return &Error{Code: code, Kind: kind, Op: op, Err: err}
}

func invalidArg(op, format string, args ...any) *Error {
	return newError(op, KindInvalidArgument, EInvalidArg, fmt.Errorf(format, args...))
}

// wrap classifies an error from the engine into an *Error for op. It
// returns nil for nil and passes *Error values through with their code
// intact.
func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}

	kind, code := KindOperation, EFail
	switch {
	case errors.Is(err, codec.ErrBadHeader):
		kind, code = KindDecode, WINCODECErrBadHeader
	case errors.Is(err, codec.ErrTruncated):
		kind, code = KindDecode, EHandleEOF
	case errors.Is(err, dxgi.ErrPitchOverflow):
		kind, code = KindAllocation, EArithmeticOverflow
	case errors.Is(err, texmeta.ErrTooLarge):
		kind, code = KindAllocation, EOutOfMemory
	case errors.Is(err, texmeta.ErrInvalidMetadata),
		errors.Is(err, codec.ErrInvalidImage),
		errors.Is(err, teximage.ErrInvalidDimensions),
		errors.Is(err, pixel.ErrShortBuffer),
		errors.Is(err, bc.ErrShortBuffer):
		kind, code = KindInvalidArgument, EInvalidArg
	case errors.Is(err, codec.ErrUnsupported),
		errors.Is(err, texmeta.ErrUnsupported),
		errors.Is(err, dxgi.ErrUnsupportedFormat),
		errors.Is(err, pixel.ErrUnsupportedFormat),
		errors.Is(err, bc.ErrUnsupportedFormat):
		code = ENotSupported
	case errors.Is(err, fs.ErrNotExist):
		code = EFileNotFound
	}
	return newError(op, kind, code, err)
}
