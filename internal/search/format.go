package search

import (
	"fmt"

	"github.com/Aman-CERP/pocketbible/internal/assets"
	"github.com/Aman-CERP/pocketbible/internal/codec"
	bberrors "github.com/Aman-CERP/pocketbible/internal/errors"
)

// On-disk layout shared by the shard map and every shard.
const (
	Magic   uint32 = 0x53494458 // "SIDX"
	Version uint16 = 1

	// PrefixChars is the alphabet size of a prefix position.
	PrefixChars = 26

	// MapEntries is the number of two-letter prefixes.
	MapEntries = PrefixChars * PrefixChars

	// NoShard marks a prefix with no indexed tokens.
	NoShard uint16 = 0xFFFF

	// MinTokenLen and MaxTokenLen bound indexed tokens and queries.
	MinTokenLen = 2
	MaxTokenLen = 32

	// MaxRefs is the largest posting list a shard entry can carry.
	MaxRefs = 0xFFFF

	shardHeaderSize = 10
)

// ShardMap maps each prefix key to a shard id or NoShard.
type ShardMap [MapEntries]uint16

// Entry is one token and its posting list.
type Entry struct {
	Token string
	IDs   []uint32
}

// EncodeShardMap serializes m.
func EncodeShardMap(m *ShardMap) []byte {
	w := codec.NewWriter(8 + 2*MapEntries)
	w.PutU32(Magic)
	w.PutU16(Version)
	w.PutU16(MapEntries)
	for _, id := range m {
		w.PutU16(id)
	}
	return w.Bytes()
}

// DecodeShardMap validates and decodes a shard map blob.
func DecodeShardMap(data []byte) (*ShardMap, error) {
	c := codec.NewCursor(data)
	magic, err1 := c.ReadU32()
	version, err2 := c.ReadU16()
	count, err3 := c.ReadU16()
	if err1 != nil || err2 != nil || err3 != nil {
		return nil, bberrors.FormatInvalid(assets.ShardMapFile, "truncated header")
	}
	if magic != Magic {
		return nil, bberrors.FormatInvalid(assets.ShardMapFile, fmt.Sprintf("invalid magic 0x%08X", magic))
	}
	if version != Version {
		return nil, bberrors.FormatInvalid(assets.ShardMapFile,
			fmt.Sprintf("unsupported version %d (expected %d)", version, Version))
	}
	if count != MapEntries {
		return nil, bberrors.FormatInvalid(assets.ShardMapFile,
			fmt.Sprintf("entry count %d (expected %d)", count, MapEntries))
	}
	if c.Remaining() < 2*MapEntries {
		return nil, bberrors.BoundsViolation(assets.ShardMapFile,
			fmt.Sprintf("%d entries need %d bytes, %d present", MapEntries, 2*MapEntries, c.Remaining()))
	}

	m := new(ShardMap)
	for i := range m {
		m[i], _ = c.ReadU16()
	}
	return m, nil
}

// EncodeShard serializes entries, which must already be sorted by token.
// Tokens are cut to MaxTokenLen bytes and posting lists to MaxRefs ids.
func EncodeShard(entries []Entry) []byte {
	w := codec.NewWriter(shardHeaderSize)
	w.PutU32(Magic)
	w.PutU16(Version)
	w.PutU32(uint32(len(entries)))
	for _, e := range entries {
		tok := e.Token
		if len(tok) > MaxTokenLen {
			tok = tok[:MaxTokenLen]
		}
		ids := e.IDs
		if len(ids) > MaxRefs {
			ids = ids[:MaxRefs]
		}
		w.PutShortString(tok)
		w.PutU16(uint16(len(ids)))
		for _, id := range ids {
			w.PutU32(id)
		}
	}
	return w.Bytes()
}

// ValidateShard checks the header and walks every entry, proving that each
// token and posting list lies inside data. It returns the token count.
func ValidateShard(name string, data []byte) (int, error) {
	c := codec.NewCursor(data)
	magic, err1 := c.ReadU32()
	version, err2 := c.ReadU16()
	count, err3 := c.ReadU32()
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, bberrors.FormatInvalid(name, "truncated header")
	}
	if magic != Magic {
		return 0, bberrors.FormatInvalid(name, fmt.Sprintf("invalid magic 0x%08X", magic))
	}
	if version != Version {
		return 0, bberrors.FormatInvalid(name,
			fmt.Sprintf("unsupported version %d (expected %d)", version, Version))
	}

	for i := uint32(0); i < count; i++ {
		if _, err := c.ReadShortString(); err != nil {
			return 0, bberrors.BoundsViolation(name, fmt.Sprintf("token %d overruns blob", i))
		}
		refs, err := c.ReadU16()
		if err != nil {
			return 0, bberrors.BoundsViolation(name, fmt.Sprintf("token %d ref count overruns blob", i))
		}
		if _, err := c.ReadBytes(int(refs) * 4); err != nil {
			return 0, bberrors.BoundsViolation(name, fmt.Sprintf("token %d ref list overruns blob", i))
		}
	}
	return int(count), nil
}

// DecodeShard returns every entry of a shard. Used by inspection tools;
// lookups scan the raw buffer instead.
func DecodeShard(name string, data []byte) ([]Entry, error) {
	n, err := ValidateShard(name, data)
	if err != nil {
		return nil, err
	}
	c := codec.NewCursor(data[shardHeaderSize:])
	entries := make([]Entry, 0, n)
	for i := 0; i < n; i++ {
		tok, _ := c.ReadShortString()
		refs, _ := c.ReadU16()
		ids := make([]uint32, refs)
		for j := range ids {
			ids[j], _ = c.ReadU32()
		}
		entries = append(entries, Entry{Token: string(tok), IDs: ids})
	}
	return entries, nil
}

// Normalize extracts the query token: leading non-letters are skipped, then
// ASCII letters are lowercased and collected up to the first non-letter or
// MaxTokenLen bytes.
func Normalize(query string) string {
	var buf [MaxTokenLen]byte
	n := 0
	for i := 0; i < len(query) && n < MaxTokenLen; i++ {
		ch := lower(query[i])
		if ch >= 'a' && ch <= 'z' {
			buf[n] = ch
			n++
		} else if n > 0 {
			break
		}
	}
	return string(buf[:n])
}

// PrefixKey returns the shard map slot for a normalized token of at least
// two letters.
func PrefixKey(token string) int {
	return int(token[0]-'a')*PrefixChars + int(token[1]-'a')
}

// PrefixOf returns the two-letter prefix for a map slot.
func PrefixOf(key int) string {
	return string([]byte{byte('a' + key/PrefixChars), byte('a' + key%PrefixChars)})
}

func lower(ch byte) byte {
	if ch >= 'A' && ch <= 'Z' {
		return ch + ('a' - 'A')
	}
	return ch
}
