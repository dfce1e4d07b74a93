// Package search looks up verse ids in the sharded inverted index.
//
// The shard map (search_shard_map.bin) sends each two-letter prefix to one
// shard file. Shards are loaded on demand into a small LRU cache; with the
// default size of one, loading a shard evicts the previous one. A shard is
// validated in full before it enters the cache, so a corrupt shard never
// displaces a good one. An Index is not safe for concurrent use.
package search

import (
	"encoding/binary"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Aman-CERP/pocketbible/internal/assets"
	"github.com/Aman-CERP/pocketbible/internal/codec"
	bberrors "github.com/Aman-CERP/pocketbible/internal/errors"
	"github.com/Aman-CERP/pocketbible/internal/storage"
)

// Defaults for Options.
const (
	DefaultMaxResults    = 64
	DefaultCacheSize     = 1
	DefaultMaxShardBytes = 512 * 1024
)

// Options configures an Index.
type Options struct {
	// MaxResults caps a lookup when the caller passes limit <= 0.
	MaxResults int

	// CacheSize is the number of shards kept resident.
	CacheSize int

	// MaxShardBytes rejects larger shard files before reading them.
	MaxShardBytes int64

	Logger *slog.Logger
}

// DefaultOptions returns the single-shard configuration.
func DefaultOptions() Options {
	return Options{
		MaxResults:    DefaultMaxResults,
		CacheSize:     DefaultCacheSize,
		MaxShardBytes: DefaultMaxShardBytes,
	}
}

// Stats counts shard traffic since the index was opened.
type Stats struct {
	Loads     int
	Hits      int
	Evictions int
	Rejected  int
}

type shard struct {
	data   []byte
	tokens int
}

// Index answers prefix lookups.
type Index struct {
	store    storage.ByteStore
	shardMap *ShardMap
	cache    *lru.Cache[uint16, *shard]
	opts     Options
	err      error
	stats    Stats
	logger   *slog.Logger
}

// Open loads the shard map from store. A missing or malformed map yields an
// index that is not Available and returns no results; the cause is kept in
// Err.
func Open(store storage.ByteStore, opts Options) *Index {
	if opts.MaxResults <= 0 {
		opts.MaxResults = DefaultMaxResults
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.MaxShardBytes <= 0 {
		opts.MaxShardBytes = DefaultMaxShardBytes
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	x := &Index{store: store, opts: opts, logger: logger}
	x.cache, _ = lru.NewWithEvict[uint16, *shard](opts.CacheSize, func(id uint16, _ *shard) {
		x.stats.Evictions++
		x.logger.Debug("search shard evicted", slog.Int("shard", int(id)))
	})

	if store == nil {
		x.err = bberrors.NotFound(assets.ShardMapFile, nil)
		return x
	}
	data, err := store.ReadFile(assets.ShardMapFile)
	if err != nil {
		x.err = err
		x.logger.Debug("search index unavailable", bberrors.LogAttr(err))
		return x
	}
	m, err := DecodeShardMap(data)
	if err != nil {
		x.err = err
		x.logger.Warn("search shard map rejected", bberrors.LogAttr(err))
		return x
	}
	x.shardMap = m
	return x
}

// Available reports whether the shard map loaded. A missing or corrupt
// shard does not change it.
func (x *Index) Available() bool {
	return x.shardMap != nil
}

// Err returns why Open failed, or else the failure from the most recent
// Lookup. A Lookup that reaches its shard, or needs none, clears it.
func (x *Index) Err() error {
	return x.err
}

// Stats returns shard traffic counters.
func (x *Index) Stats() Stats {
	return x.stats
}

// Resident returns the ids of shards currently held, oldest first.
func (x *Index) Resident() []uint16 {
	return x.cache.Keys()
}

// Lookup returns up to limit verse ids whose tokens start with the
// normalized query, in shard order. limit <= 0 uses Options.MaxResults.
// Queries with fewer than two letters return nil without touching any shard.
func (x *Index) Lookup(query string, limit int) []uint32 {
	if !x.Available() {
		return nil
	}
	x.err = nil
	if limit <= 0 {
		limit = x.opts.MaxResults
	}
	token := Normalize(query)
	if len(token) < MinTokenLen {
		return nil
	}
	id := x.shardMap[PrefixKey(token)]
	if id == NoShard {
		return nil
	}
	sh := x.load(id)
	if sh == nil {
		return nil
	}
	return scan(sh.data, []byte(token), limit)
}

// Close drops every resident shard and the shard map.
func (x *Index) Close() error {
	x.cache.Purge()
	x.shardMap = nil
	return nil
}

func (x *Index) load(id uint16) *shard {
	if sh, ok := x.cache.Get(id); ok {
		x.stats.Hits++
		return sh
	}

	name := assets.ShardFile(int(id))
	data, err := storage.ReadLimited(x.store, name, x.opts.MaxShardBytes)
	if err != nil {
		x.err = err
		if bberrors.IsNotFound(err) {
			x.logger.Debug("search shard missing", slog.String("shard", name))
		} else {
			x.stats.Rejected++
			x.logger.Warn("search shard unreadable", slog.String("shard", name), bberrors.LogAttr(err))
		}
		return nil
	}
	tokens, err := ValidateShard(name, data)
	if err != nil {
		x.err = err
		x.stats.Rejected++
		x.logger.Warn("search shard rejected", slog.String("shard", name), bberrors.LogAttr(err))
		return nil
	}

	sh := &shard{data: data, tokens: tokens}
	x.cache.Add(id, sh)
	x.stats.Loads++
	x.logger.Debug("search shard loaded",
		slog.String("shard", name),
		slog.Int("bytes", len(data)),
		slog.Int("tokens", tokens))
	return sh
}

// scan walks a validated shard. Stored tokens are sorted, so the walk stops
// at the first token that sorts after the query on their common prefix.
func scan(data, query []byte, limit int) []uint32 {
	c := codec.NewCursor(data)
	_ = c.Seek(6)
	count, _ := c.ReadU32()

	var out []uint32
	for i := uint32(0); i < count && len(out) < limit; i++ {
		tok, _ := c.ReadShortString()
		refs, _ := c.ReadU16()
		ids, _ := c.ReadBytes(4 * int(refs))

		k := min(len(tok), len(query))
		cmp := compareFold(tok[:k], query[:k])
		if cmp > 0 {
			break
		}
		if cmp == 0 && len(tok) >= len(query) {
			for r := 0; r < int(refs) && len(out) < limit; r++ {
				out = append(out, binary.LittleEndian.Uint32(ids[4*r:]))
			}
		}
	}
	return out
}

// compareFold compares a stored token against a lowercase query of the same
// length, lowercasing the stored bytes.
func compareFold(tok, query []byte) int {
	for i := range tok {
		if c := lower(tok[i]); c != query[i] {
			if c > query[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}
