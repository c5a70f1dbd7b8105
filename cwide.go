package dxtex

import (
	"encoding/binary"
	"errors"
	"slices"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// CWide is a NUL-terminated UTF-16 string, the form Windows file APIs take
// paths in. Every file operation in this package passes its path through
// CWide, so a path that cannot be represented (one containing NUL) fails
// with ErrInvalidArgument before any file is touched.
type CWide struct {
	u16 []uint16
	str string
}

// NewCWide encodes s and appends the terminator.
func NewCWide(s string) (CWide, error) {
	const op = "NewCWide"
	if strings.IndexByte(s, 0) >= 0 {
		return CWide{}, invalidArg(op, "string contains NUL")
	}
	b, err := utf16LE.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return CWide{}, newError(op, KindInvalidArgument, EInvalidArg, err)
	}
	u := make([]uint16, len(b)/2+1)
	for i := range len(b) / 2 {
		u[i] = binary.LittleEndian.Uint16(b[i*2:])
	}
	return CWide{u16: u, str: s}, nil
}

// CWideFromUTF16 adopts an already encoded string. The last element must be
// the NUL terminator; an unterminated buffer is rejected rather than
// extended or truncated.
func CWideFromUTF16(u []uint16) (CWide, error) {
	const op = "CWideFromUTF16"
	if len(u) == 0 || u[len(u)-1] != 0 {
		return CWide{}, invalidArg(op, "missing NUL terminator")
	}
	body := u[:len(u)-1]
	if slices.Contains(body, 0) {
		return CWide{}, invalidArg(op, "embedded NUL")
	}
	b := make([]byte, len(body)*2)
	for i, c := range body {
		binary.LittleEndian.PutUint16(b[i*2:], c)
	}
	s, err := utf16LE.NewDecoder().Bytes(b)
	if err != nil {
		return CWide{}, newError(op, KindInvalidArgument, EInvalidArg, err)
	}
	return CWide{u16: slices.Clone(u), str: string(s)}, nil
}

// UTF16 returns the code units including the terminator.
func (c CWide) UTF16() []uint16 { return c.u16 }

// Len returns the number of code units before the terminator.
func (c CWide) Len() int { return max(len(c.u16)-1, 0) }

func (c CWide) String() string { return c.str }

// widePath validates a path for a file operation.
func widePath(op, path string) (string, error) {
	if path == "" {
		return "", invalidArg(op, "empty path")
	}
	w, err := NewCWide(path)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			e.Op = op
		}
		return "", err
	}
	return w.String(), nil
}
