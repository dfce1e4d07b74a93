package verse

import (
	"fmt"

	"github.com/Aman-CERP/pocketbible/internal/assets"
	"github.com/Aman-CERP/pocketbible/internal/codec"
	bberrors "github.com/Aman-CERP/pocketbible/internal/errors"
)

// Index file layout.
const (
	Magic      uint32 = 0x56494458 // "VIDX"
	Version    uint8  = 1
	HeaderSize        = 9
	RecordSize        = 12
)

// Record locates one verse inside the text blob.
type Record struct {
	TextOffset uint32
	TextLen    uint16
	Book       uint8
	Chapter    uint16
	Verse      uint16
}

// EncodeIndex serializes records behind a VIDX header.
func EncodeIndex(records []Record) []byte {
	w := codec.NewWriter(HeaderSize + len(records)*RecordSize)
	w.PutU32(Magic)
	w.PutU8(Version)
	w.PutU32(uint32(len(records)))
	for _, r := range records {
		w.PutU32(r.TextOffset)
		w.PutU16(r.TextLen)
		w.PutU8(r.Book)
		w.PutU16(r.Chapter)
		w.PutU16(r.Verse)
		w.PutU8(0)
	}
	return w.Bytes()
}

// DecodeIndex validates the header and returns every record. The record
// array must fit in data; trailing bytes are ignored.
func DecodeIndex(data []byte) ([]Record, error) {
	c := codec.NewCursor(data)

	magic, err := c.ReadU32()
	if err != nil {
		return nil, bberrors.FormatInvalid(assets.IndexFile, "truncated header")
	}
	if magic != Magic {
		return nil, bberrors.FormatInvalid(assets.IndexFile, fmt.Sprintf("invalid magic 0x%08X", magic))
	}
	version, err := c.ReadU8()
	if err != nil {
		return nil, bberrors.FormatInvalid(assets.IndexFile, "truncated header")
	}
	if version != Version {
		return nil, bberrors.FormatInvalid(assets.IndexFile,
			fmt.Sprintf("unsupported version %d (expected %d)", version, Version))
	}
	total, err := c.ReadU32()
	if err != nil {
		return nil, bberrors.FormatInvalid(assets.IndexFile, "truncated header")
	}

	if uint64(total)*RecordSize > uint64(c.Remaining()) {
		return nil, bberrors.BoundsViolation(assets.IndexFile,
			fmt.Sprintf("header claims %d records but only %d bytes follow", total, c.Remaining()))
	}

	records := make([]Record, total)
	for i := range records {
		// Lengths were checked above; these reads cannot fail.
		r := &records[i]
		r.TextOffset, _ = c.ReadU32()
		r.TextLen, _ = c.ReadU16()
		r.Book, _ = c.ReadU8()
		r.Chapter, _ = c.ReadU16()
		r.Verse, _ = c.ReadU16()
		_, _ = c.ReadU8()
	}
	return records, nil
}
