package codec

import "encoding/binary"

const (
	// MaxString is the longest payload a 16-bit prefix can describe.
	MaxString = 0xFFFF

	// MaxShortString is the longest payload an 8-bit prefix can describe.
	MaxShortString = 0xFF
)

// Writer appends little-endian primitives to a growing buffer.
type Writer struct {
	buf []byte
}

// NewWriter returns a writer with room for size bytes.
func NewWriter(size int) *Writer {
	return &Writer{buf: make([]byte, 0, size)}
}

// PutU8 appends one byte.
func (w *Writer) PutU8(v uint8) {
	w.buf = append(w.buf, v)
}

// PutU16 appends a little-endian uint16.
func (w *Writer) PutU16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

// PutU32 appends a little-endian uint32.
func (w *Writer) PutU32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// PutBytes appends raw bytes with no prefix.
func (w *Writer) PutBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// PutString appends s with a 16-bit length prefix, truncated to MaxString.
func (w *Writer) PutString(s string) {
	if len(s) > MaxString {
		s = s[:MaxString]
	}
	w.PutU16(uint16(len(s)))
	w.buf = append(w.buf, s...)
}

// PutShortString appends s with an 8-bit length prefix, truncated to
// MaxShortString.
func (w *Writer) PutShortString(s string) {
	if len(s) > MaxShortString {
		s = s[:MaxShortString]
	}
	w.PutU8(uint8(len(s)))
	w.buf = append(w.buf, s...)
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the encoded buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}
