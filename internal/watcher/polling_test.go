package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startPoller(t *testing.T, dirs ...string) *PollingWatcher {
	t.Helper()
	w := NewPollingWatcher(20*time.Millisecond, dirs)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = w.Start(ctx) }()
	// Let the baseline listing happen.
	time.Sleep(60 * time.Millisecond)
	return w
}

func nextEvent(t *testing.T, w *PollingWatcher) FileEvent {
	t.Helper()
	select {
	case e := <-w.Events():
		return e
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for poll event")
		return FileEvent{}
	}
}

func TestPollingWatcher_DetectsCreation(t *testing.T) {
	// Given: a polled directory
	dir := t.TempDir()
	w := startPoller(t, dir)
	defer w.Stop()

	// When: a file appears
	path := filepath.Join(dir, "verse_index.bin")
	require.NoError(t, os.WriteFile(path, []byte("VIDX"), 0o644))

	// Then: a CREATE with the absolute path is seen
	e := nextEvent(t, w)
	assert.Equal(t, OpCreate, e.Operation)
	assert.Equal(t, path, e.Path)
}

func TestPollingWatcher_DetectsModification(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bible_text.bin")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))
	w := startPoller(t, dir)
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte("longer text"), 0o644))

	e := nextEvent(t, w)
	assert.Equal(t, OpModify, e.Operation)
	assert.Equal(t, path, e.Path)
}

func TestPollingWatcher_DetectsDeletion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "missal.bin")
	require.NoError(t, os.WriteFile(path, []byte("MISS"), 0o644))
	w := startPoller(t, dir)
	defer w.Stop()

	require.NoError(t, os.Remove(path))

	e := nextEvent(t, w)
	assert.Equal(t, OpDelete, e.Operation)
	assert.Equal(t, path, e.Path)
}

func TestPollingWatcher_MissingDirectoryAppearsLater(t *testing.T) {
	// Given: a poller over a directory that does not exist yet
	parent := t.TempDir()
	root := filepath.Join(parent, "bible")
	w := startPoller(t, root)
	defer w.Stop()

	// When: the directory and a file inside it are created
	require.NoError(t, os.Mkdir(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "rosary.bin"), []byte("ROSA"), 0o644))

	// Then: the file is reported
	e := nextEvent(t, w)
	assert.Equal(t, filepath.Join(root, "rosary.bin"), e.Path)
}

func TestPollingWatcher_StopIsIdempotent(t *testing.T) {
	w := NewPollingWatcher(time.Second, nil)

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())

	_, ok := <-w.Events()
	assert.False(t, ok)
}
