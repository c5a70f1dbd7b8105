package dxtex

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewCWide(t *testing.T) {
	tests := []struct {
		in   string
		want []uint16
	}{
		{"", []uint16{0}},
		{"a.dds", []uint16{'a', '.', 'd', 'd', 's', 0}},
		{"é", []uint16{0xe9, 0}},
		{"\U0001F600", []uint16{0xd83d, 0xde00, 0}},
	}
	for _, tt := range tests {
		w, err := NewCWide(tt.in)
		if err != nil {
			t.Fatalf("NewCWide(%q) = %v", tt.in, err)
		}
		if diff := cmp.Diff(tt.want, w.UTF16()); diff != "" {
			t.Errorf("NewCWide(%q) (-want +got):\n%s", tt.in, diff)
		}
		if w.Len() != len(tt.want)-1 || w.String() != tt.in {
			t.Errorf("NewCWide(%q): Len %d, String %q", tt.in, w.Len(), w.String())
		}
	}

	if _, err := NewCWide("a\x00b"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("embedded NUL: err = %v", err)
	}
}

func TestCWideFromUTF16(t *testing.T) {
	w, err := CWideFromUTF16([]uint16{'t', 'e', 'x', 0})
	if err != nil {
		t.Fatal(err)
	}
	if w.String() != "tex" || w.Len() != 3 {
		t.Errorf("got %q, len %d", w.String(), w.Len())
	}

	tests := []struct {
		name string
		in   []uint16
	}{
		{"empty", nil},
		{"unterminated", []uint16{'a', 'b'}},
		{"embedded NUL", []uint16{'a', 0, 'b', 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CWideFromUTF16(tt.in); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("err = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

func TestCWideDoesNotAlias(t *testing.T) {
	buf := []uint16{'x', 0}
	w, err := CWideFromUTF16(buf)
	if err != nil {
		t.Fatal(err)
	}
	buf[0] = 'y'
	if w.UTF16()[0] != 'x' {
		t.Error("CWide aliases its input")
	}
}

func TestWidePathOp(t *testing.T) {
	_, err := widePath("LoadFromDDSFile", "a\x00")
	var e *Error
	if !errors.As(err, &e) || e.Op != "LoadFromDDSFile" {
		t.Errorf("err = %v", err)
	}
}
