package builder

import (
	"context"
	"log/slog"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/pocketbible/internal/assets"
	"github.com/Aman-CERP/pocketbible/internal/search"
)

// wordRegex matches runs of ASCII letters.
var wordRegex = regexp.MustCompile(`[a-zA-Z]+`)

// Tokenize splits verse text into index tokens: footnote asterisks act as
// separators, words are ASCII letter runs, lowercased, and kept when 2 to 32
// bytes long.
func Tokenize(text string) []string {
	text = strings.ReplaceAll(text, "*", " ")
	words := wordRegex.FindAllString(text, -1)

	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) < search.MinTokenLen || len(w) > search.MaxTokenLen {
			continue
		}
		tokens = append(tokens, strings.ToLower(w))
	}
	return tokens
}

// InvertedIndex maps each token to the sorted, unique verse ids containing it.
func InvertedIndex(verses []Verse) map[string][]uint32 {
	inv := make(map[string][]uint32)
	for id, v := range verses {
		for _, tok := range Tokenize(v.Text) {
			ids := inv[tok]
			// Ids arrive in ascending order, so a repeat is always the tail.
			if n := len(ids); n > 0 && ids[n-1] == uint32(id) {
				continue
			}
			inv[tok] = append(ids, uint32(id))
		}
	}
	return inv
}

// Shards groups an inverted index by two-letter prefix. The result is in
// prefix order (aa, ab, ... zz), each shard's entries sorted by token; a
// shard's position in the slice is its shard id.
func Shards(inv map[string][]uint32) ([]string, [][]search.Entry) {
	byPrefix := make(map[string][]search.Entry)
	for tok, ids := range inv {
		p := tok[:2]
		byPrefix[p] = append(byPrefix[p], search.Entry{Token: tok, IDs: ids})
	}

	var prefixes []string
	var shards [][]search.Entry
	for key := 0; key < search.MapEntries; key++ {
		p := search.PrefixOf(key)
		entries, ok := byPrefix[p]
		if !ok {
			continue
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Token < entries[j].Token })
		prefixes = append(prefixes, p)
		shards = append(shards, entries)
	}
	return prefixes, shards
}

// BuildSearch writes search_shard_map.bin and one shard file per prefix
// that has tokens. Shard files are written concurrently.
func (b *Builder) BuildSearch(ctx context.Context, verses []Verse) error {
	prefixes, shards := Shards(InvertedIndex(verses))

	m := new(search.ShardMap)
	for i := range m {
		m[i] = search.NoShard
	}
	for id, p := range prefixes {
		m[search.PrefixKey(p)] = uint16(id)
	}

	var oversized atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for id, entries := range shards {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data := search.EncodeShard(entries)
			if int64(len(data)) > b.maxShardBytes {
				oversized.Add(1)
				b.logger.Warn("search shard exceeds reader limit, prefix will not be searchable",
					slog.String("shard", assets.ShardFile(id)),
					slog.String("prefix", prefixes[id]),
					slog.Int("bytes", len(data)),
					slog.Int64("limit", b.maxShardBytes))
			}
			return b.writeFile(assets.ShardFile(id), data)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	// The map goes last so a reader never sees it pointing at absent shards.
	if err := b.writeFile(assets.ShardMapFile, search.EncodeShardMap(m)); err != nil {
		return err
	}
	b.logger.Info("search index written",
		slog.Int("shards", len(shards)),
		slog.Int("oversized", int(oversized.Load())))
	return nil
}
