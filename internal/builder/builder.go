// Package builder generates every binary asset the reader consumes from
// JSON (optionally xz-compressed) or SQLite sources.
//
// A Builder owns one output directory. It holds an exclusive file lock on
// the directory while building, writes each file atomically, and finishes
// with a BLAKE3 manifest of everything it wrote.
package builder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"unicode/utf8"

	"github.com/gofrs/flock"

	"github.com/Aman-CERP/pocketbible/internal/assets"
	bberrors "github.com/Aman-CERP/pocketbible/internal/errors"
	"github.com/Aman-CERP/pocketbible/internal/search"
)

// String limits applied by the collection builders.
const (
	MaxString          = 2047
	MaxDevotionalTitle = 1023
	MaxDevotionalText  = 8191
	MaxReadingKey      = 64
)

const lockFile = ".build.lock"

// Sources names the inputs for a full build. Empty fields are skipped.
type Sources struct {
	Bible      string
	Missal     string
	Devotional string
	Rosary     string
	Confession string
}

// Builder writes assets into one directory.
type Builder struct {
	outDir        string
	lock          *flock.Flock
	logger        *slog.Logger
	maxShardBytes int64

	mu      sync.Mutex
	written map[string]struct{}
}

// New creates a builder for outDir.
func New(outDir string) *Builder {
	return &Builder{
		outDir:        outDir,
		lock:          flock.New(filepath.Join(outDir, lockFile)),
		logger:        slog.Default(),
		maxShardBytes: search.DefaultMaxShardBytes,
		written:       make(map[string]struct{}),
	}
}

// WithMaxShardBytes sets the shard size readers accept. Larger shards are
// still written but logged, since lookups on their prefix will fail.
func (b *Builder) WithMaxShardBytes(n int64) *Builder {
	if n > 0 {
		b.maxShardBytes = n
	}
	return b
}

// WithLogger sets the progress logger.
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	if logger != nil {
		b.logger = logger
	}
	return b
}

// OutDir returns the output directory.
func (b *Builder) OutDir() string {
	return b.outDir
}

// Lock creates the output directory and takes the build lock without
// blocking. It fails if another build holds the directory.
func (b *Builder) Lock() error {
	if err := os.MkdirAll(b.outDir, 0o755); err != nil {
		return bberrors.IOFailure("create", b.outDir, err)
	}
	ok, err := b.lock.TryLock()
	if err != nil {
		return bberrors.IOFailure("lock", b.outDir, err)
	}
	if !ok {
		return bberrors.New(bberrors.ErrCodeAssetLocked,
			fmt.Sprintf("output directory %s is locked by another build", b.outDir), nil).
			WithSuggestion("Wait for the other build to finish or choose another --output")
	}
	return nil
}

// Unlock releases the build lock. Safe to call when not locked.
func (b *Builder) Unlock() error {
	if !b.lock.Locked() {
		return nil
	}
	if err := b.lock.Unlock(); err != nil {
		return bberrors.IOFailure("unlock", b.outDir, err)
	}
	return nil
}

// Written returns the slash paths written so far, sorted.
func (b *Builder) Written() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.written))
	for name := range b.written {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// All runs every builder with a source, then writes the manifest.
func (b *Builder) All(ctx context.Context, src Sources) (*assets.Manifest, error) {
	if err := b.Lock(); err != nil {
		return nil, err
	}
	defer b.Unlock()

	if src.Bible != "" {
		verses, err := LoadVerses(ctx, src.Bible)
		if err != nil {
			return nil, err
		}
		if err := b.BuildBible(verses); err != nil {
			return nil, err
		}
		if err := b.BuildSearch(ctx, verses); err != nil {
			return nil, err
		}
	}

	steps := []struct {
		path string
		run  func(string) error
	}{
		{src.Missal, b.BuildMissal},
		{src.Devotional, b.BuildDevotional},
		{src.Rosary, b.BuildRosary},
		{src.Confession, b.BuildConfession},
	}
	for _, s := range steps {
		if s.path == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.run(s.path); err != nil {
			return nil, err
		}
	}

	return b.WriteManifest()
}

// WriteManifest digests every file written so far into manifest.json.
func (b *Builder) WriteManifest() (*assets.Manifest, error) {
	m, err := assets.WriteManifest(b.outDir, b.Written())
	if err != nil {
		return nil, err
	}
	b.logger.Info("manifest written", slog.Int("files", len(m.Files)))
	return m, nil
}

// writeFile writes data to a slash path under outDir via a temp file and
// rename.
func (b *Builder) writeFile(name string, data []byte) error {
	path := filepath.Join(b.outDir, filepath.FromSlash(name))
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return bberrors.IOFailure("create", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".build-*")
	if err != nil {
		return bberrors.IOFailure("create", name, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return bberrors.IOFailure("write", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return bberrors.IOFailure("close", name, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return bberrors.IOFailure("rename", name, err)
	}

	b.mu.Lock()
	b.written[name] = struct{}{}
	b.mu.Unlock()

	b.logger.Debug("asset written", slog.String("file", name), slog.Int("bytes", len(data)))
	return nil
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
