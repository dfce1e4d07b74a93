// Package codec provides the bounds-checked little-endian primitives shared by
// every binary asset reader and writer.
//
// All multi-byte integers are little-endian. Strings are length-prefixed byte
// runs: a 16-bit prefix for ordinary fields and an 8-bit prefix for the
// legacy reading key. A Cursor never reads past the end of its buffer; a
// failed read leaves the cursor where it was.
package codec

import (
	"encoding/binary"
	"errors"
)

// ErrShortBuffer is returned when a read would run past the end of the buffer.
var ErrShortBuffer = errors.New("codec: short buffer")

// Cursor reads primitives from a byte slice.
type Cursor struct {
	buf []byte
	off int
}

// NewCursor returns a cursor positioned at the start of buf.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Offset returns the current read position.
func (c *Cursor) Offset() int {
	return c.off
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.off
}

// Seek moves the cursor to an absolute offset within the buffer.
func (c *Cursor) Seek(off int) error {
	if off < 0 || off > len(c.buf) {
		return ErrShortBuffer
	}
	c.off = off
	return nil
}

// ReadU8 reads one byte.
func (c *Cursor) ReadU8() (uint8, error) {
	if c.Remaining() < 1 {
		return 0, ErrShortBuffer
	}
	v := c.buf[c.off]
	c.off++
	return v, nil
}

// ReadU16 reads a little-endian uint16.
func (c *Cursor) ReadU16() (uint16, error) {
	if c.Remaining() < 2 {
		return 0, ErrShortBuffer
	}
	v := binary.LittleEndian.Uint16(c.buf[c.off:])
	c.off += 2
	return v, nil
}

// ReadU32 reads a little-endian uint32.
func (c *Cursor) ReadU32() (uint32, error) {
	if c.Remaining() < 4 {
		return 0, ErrShortBuffer
	}
	v := binary.LittleEndian.Uint32(c.buf[c.off:])
	c.off += 4
	return v, nil
}

// ReadBytes returns the next n bytes without copying. The returned slice
// aliases the cursor's buffer.
func (c *Cursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 || c.Remaining() < n {
		return nil, ErrShortBuffer
	}
	b := c.buf[c.off : c.off+n : c.off+n]
	c.off += n
	return b, nil
}

// ReadString reads a string with a 16-bit length prefix.
// If the claimed length overruns the buffer, nothing is consumed.
func (c *Cursor) ReadString() ([]byte, error) {
	start := c.off
	n, err := c.ReadU16()
	if err != nil {
		return nil, err
	}
	b, err := c.ReadBytes(int(n))
	if err != nil {
		c.off = start
		return nil, err
	}
	return b, nil
}

// ReadShortString reads a string with an 8-bit length prefix.
func (c *Cursor) ReadShortString() ([]byte, error) {
	start := c.off
	n, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	b, err := c.ReadBytes(int(n))
	if err != nil {
		c.off = start
		return nil, err
	}
	return b, nil
}

// Skip advances past n strings with 16-bit prefixes without copying them.
// On failure the cursor is left at its starting position.
func (c *Cursor) Skip(n int) error {
	start := c.off
	for i := 0; i < n; i++ {
		if _, err := c.ReadString(); err != nil {
			c.off = start
			return err
		}
	}
	return nil
}

// SkipShort advances past n strings with 8-bit prefixes.
func (c *Cursor) SkipShort(n int) error {
	start := c.off
	for i := 0; i < n; i++ {
		if _, err := c.ReadShortString(); err != nil {
			c.off = start
			return err
		}
	}
	return nil
}

// CopyTruncated copies at most len(dst)-1 bytes of src into dst and writes a
// NUL terminator after them. It returns the number of bytes copied, not
// counting the terminator. An empty dst receives nothing.
func CopyTruncated(dst, src []byte) int {
	if len(dst) == 0 {
		return 0
	}
	n := copy(dst[:len(dst)-1], src)
	dst[n] = 0
	return n
}
