// Package collection reads the small liturgical and devotional blobs:
// missal, devotional, rosary and confession.
//
// Each blob is a magic and version header followed by sections. A section
// is either a u16 record count and that many records of length-prefixed
// strings, or one standalone string. Loaders read the whole blob, prove
// every length field in bounds once, and then serve record K of section S
// by skipping the sections before S and the K records before the target.
package collection

import (
	"fmt"

	"github.com/Aman-CERP/pocketbible/internal/codec"
	bberrors "github.com/Aman-CERP/pocketbible/internal/errors"
	"github.com/Aman-CERP/pocketbible/internal/storage"
)

// FormatVersion is the only blob version understood.
const FormatVersion uint16 = 1

// MaxBlobBytes bounds a collection blob.
const MaxBlobBytes = 4 << 20

const headerSize = 6

type field int

const (
	str   field = iota // u16 length prefix
	short              // u8 length prefix
)

// section describes one part of a blob.
type section struct {
	name   string
	fields []field

	// single marks a standalone string with no count.
	single bool
}

type layout []section

func records(name string, fields ...field) section {
	return section{name: name, fields: fields}
}

func single(name string) section {
	return section{name: name, fields: []field{str}, single: true}
}

// blob is a validated collection buffer.
type blob struct {
	name   string
	data   []byte
	layout layout
	counts []int
}

func load(store storage.ByteStore, name string, magic uint32, l layout) (*blob, error) {
	data, err := storage.ReadLimited(store, name, MaxBlobBytes)
	if err != nil {
		return nil, err
	}
	return parse(name, data, magic, l)
}

func parse(name string, data []byte, magic uint32, l layout) (*blob, error) {
	c := codec.NewCursor(data)
	m, err1 := c.ReadU32()
	v, err2 := c.ReadU16()
	if err1 != nil || err2 != nil {
		return nil, bberrors.FormatInvalid(name, "truncated header")
	}
	if m != magic {
		return nil, bberrors.FormatInvalid(name, fmt.Sprintf("invalid magic 0x%08X", m))
	}
	if v != FormatVersion {
		return nil, bberrors.FormatInvalid(name,
			fmt.Sprintf("unsupported version %d (expected %d)", v, FormatVersion))
	}

	b := &blob{name: name, data: data, layout: l, counts: make([]int, len(l))}
	for i, s := range l {
		n, err := skipSection(c, s)
		if err != nil {
			return nil, bberrors.BoundsViolation(name, fmt.Sprintf("section %s overruns blob", s.name))
		}
		b.counts[i] = n
	}
	return b, nil
}

// skipSection advances past one section and returns its record count.
func skipSection(c *codec.Cursor, s section) (int, error) {
	if s.single {
		return 1, c.Skip(1)
	}
	n, err := c.ReadU16()
	if err != nil {
		return 0, err
	}
	for i := 0; i < int(n); i++ {
		if err := skipRecord(c, s.fields); err != nil {
			return 0, err
		}
	}
	return int(n), nil
}

func skipRecord(c *codec.Cursor, fields []field) error {
	for _, f := range fields {
		var err error
		if f == short {
			err = c.SkipShort(1)
		} else {
			err = c.Skip(1)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// count returns the number of records in section si.
func (b *blob) count(si int) int {
	return b.counts[si]
}

// record decodes record k of section si with a positional skip-scan.
func (b *blob) record(si, k int) ([]string, error) {
	s := b.layout[si]
	if k < 0 || k >= b.counts[si] {
		return nil, bberrors.Newf(bberrors.ErrCodeInvalidReference,
			"%s: %s index %d out of range (%d records)", b.name, s.name, k, b.counts[si])
	}

	c := codec.NewCursor(b.data)
	if err := c.Seek(headerSize); err != nil {
		return nil, b.overrun(s)
	}
	for _, prev := range b.layout[:si] {
		if _, err := skipSection(c, prev); err != nil {
			return nil, b.overrun(prev)
		}
	}
	if !s.single {
		if _, err := c.ReadU16(); err != nil {
			return nil, b.overrun(s)
		}
		for i := 0; i < k; i++ {
			if err := skipRecord(c, s.fields); err != nil {
				return nil, b.overrun(s)
			}
		}
	}

	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		var v []byte
		var err error
		if f == short {
			v, err = c.ReadShortString()
		} else {
			v, err = c.ReadString()
		}
		if err != nil {
			return nil, b.overrun(s)
		}
		out[i] = string(v)
	}
	return out, nil
}

// text returns a standalone string section.
func (b *blob) text(si int) string {
	v, err := b.record(si, 0)
	if err != nil {
		return ""
	}
	return v[0]
}

func (b *blob) overrun(s section) error {
	return bberrors.BoundsViolation(b.name, fmt.Sprintf("section %s overruns blob", s.name))
}

// encoder writes blobs in the layout the loaders read.
type encoder struct {
	w *codec.Writer
}

func newEncoder(magic uint32) *encoder {
	w := codec.NewWriter(256)
	w.PutU32(magic)
	w.PutU16(FormatVersion)
	return &encoder{w: w}
}

func (e *encoder) count(n int) {
	e.w.PutU16(uint16(n))
}

func (e *encoder) str(s string) {
	e.w.PutString(s)
}

func (e *encoder) short(s string) {
	e.w.PutShortString(s)
}

func (e *encoder) bytes() []byte {
	return e.w.Bytes()
}
