package dxtex

// Blob owns an encoded file produced by one of the SaveTo...Memory
// functions.
type Blob struct {
	buf []byte
}

func newBlob(b []byte) *Blob {
	return &Blob{buf: b}
}

// Bytes returns the contents. The slice stays valid until Release.
func (b *Blob) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.buf
}

// Len returns the size in bytes.
func (b *Blob) Len() int {
	if b == nil {
		return 0
	}
	return len(b.buf)
}

// Release drops the contents. Calling it again, or on nil, does nothing.
func (b *Blob) Release() {
	if b != nil {
		b.buf = nil
	}
}
