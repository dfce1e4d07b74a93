package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bberrors "github.com/Aman-CERP/pocketbible/internal/errors"
)

func fastOptions(polling bool) Options {
	return Options{
		DebounceWindow: 50 * time.Millisecond,
		PollInterval:   20 * time.Millisecond,
		ForcePolling:   polling,
	}
}

func startRoots(t *testing.T, roots []string, opts Options) *RootWatcher {
	t.Helper()
	w, err := NewRootWatcher(roots, opts)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		_ = w.Stop()
	})
	go func() { _ = w.Start(ctx) }()
	time.Sleep(100 * time.Millisecond)
	return w
}

func nextBatch(t *testing.T, w *RootWatcher) []FileEvent {
	t.Helper()
	select {
	case batch, ok := <-w.Changes():
		require.True(t, ok, "changes channel closed")
		return batch
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for change batch")
		return nil
	}
}

func TestNewRootWatcher_NoRoots(t *testing.T) {
	_, err := NewRootWatcher([]string{"", ""}, DefaultOptions())

	assert.Equal(t, bberrors.ErrCodeConfigInvalid, bberrors.GetCode(err))
}

func TestNewRootWatcher_DeduplicatesAndAbsolutizes(t *testing.T) {
	dir := t.TempDir()

	w, err := NewRootWatcher([]string{dir, "", dir}, fastOptions(true))
	require.NoError(t, err)
	defer w.Stop()

	assert.Equal(t, []string{dir}, w.Roots())
	assert.Equal(t, "polling", w.Mode())
}

func TestRootWatcher_Relevant(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "bible")
	w, err := NewRootWatcher([]string{root}, fastOptions(true))
	require.NoError(t, err)
	defer w.Stop()

	assert.True(t, w.relevant(root))
	assert.True(t, w.relevant(filepath.Join(root, "verse_index.bin")))
	assert.True(t, w.relevant(filepath.Join(root, "search_shards", "shard_000.bin")))
	assert.False(t, w.relevant(filepath.Join(parent, "bible2")))
	assert.False(t, w.relevant(filepath.Join(parent, "other.txt")))
	assert.False(t, w.relevant(parent))
}

func TestRootWatcher_WatchDirs(t *testing.T) {
	w, err := NewRootWatcher([]string{"/mnt/a/bible", "/mnt/a/assets"}, fastOptions(true))
	require.NoError(t, err)
	defer w.Stop()

	assert.Equal(t, []string{
		"/mnt/a",
		"/mnt/a/bible",
		"/mnt/a/bible/search_shards",
		"/mnt/a/assets",
		"/mnt/a/assets/search_shards",
	}, w.watchDirs())
}

func TestRootWatcher_Polling_RootMountedLater(t *testing.T) {
	// Given: a watched root that does not exist yet and an unrelated sibling
	parent := t.TempDir()
	root := filepath.Join(parent, "bible")
	w := startRoots(t, []string{root}, fastOptions(true))

	// When: the sibling changes, then the root appears with assets
	require.NoError(t, os.WriteFile(filepath.Join(parent, "unrelated.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "verse_index.bin"), []byte("VIDX"), 0o644))

	// Then: the batch names only paths under the root
	seen := map[string]bool{}
	deadline := time.After(2 * time.Second)
	for !seen[filepath.Join(root, "verse_index.bin")] {
		select {
		case batch := <-w.Changes():
			for _, e := range batch {
				seen[e.Path] = true
			}
		case <-deadline:
			t.Fatalf("root file never reported, saw %v", seen)
		}
	}
	assert.False(t, seen[filepath.Join(parent, "unrelated.txt")])
}

func TestRootWatcher_Fsnotify_FileWrite(t *testing.T) {
	// Given: an existing root watched through fsnotify
	root := t.TempDir()
	w := startRoots(t, []string{root}, fastOptions(false))
	if w.Mode() != "fsnotify" {
		t.Skip("fsnotify unavailable")
	}

	// When: an asset is written
	path := filepath.Join(root, "devotional.bin")
	require.NoError(t, os.WriteFile(path, []byte("DEVO"), 0o644))

	// Then: a debounced batch reports it
	batch := nextBatch(t, w)
	require.NotEmpty(t, batch)
	assert.Equal(t, path, batch[0].Path)
	assert.Equal(t, OpCreate, batch[0].Operation)
}

func TestRootWatcher_StopClosesChannels(t *testing.T) {
	w, err := NewRootWatcher([]string{t.TempDir()}, fastOptions(false))
	require.NoError(t, err)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())

	_, ok := <-w.Changes()
	assert.False(t, ok)
	_, ok = <-w.Errors()
	assert.False(t, ok)
}
