package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, d *Debouncer, timeout time.Duration) []FileEvent {
	t.Helper()
	select {
	case events := <-d.Output():
		return events
	case <-time.After(timeout):
		t.Fatal("timeout waiting for debounced batch")
		return nil
	}
}

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		prev     Operation
		next     Operation
		wantOp   Operation
		wantKeep bool
	}{
		{"create then modify stays create", OpCreate, OpModify, OpCreate, true},
		{"create then delete cancels", OpCreate, OpDelete, 0, false},
		{"delete then create is a replace", OpDelete, OpCreate, OpModify, true},
		{"modify then delete", OpModify, OpDelete, OpDelete, true},
		{"modify then modify", OpModify, OpModify, OpModify, true},
		{"rename then create", OpRename, OpCreate, OpCreate, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, keep := merge(tt.prev, tt.next)
			assert.Equal(t, tt.wantKeep, keep)
			if keep {
				assert.Equal(t, tt.wantOp, op)
			}
		})
	}
}

func TestDebouncer_SingleEvent_PassesThrough(t *testing.T) {
	// Given: a debouncer with short window
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	// When: a single event is added
	d.Add(FileEvent{Path: "/a/verse_index.bin", Operation: OpCreate, Timestamp: time.Now()})

	// Then: it passes through after the window
	events := receive(t, d, 500*time.Millisecond)
	require.Len(t, events, 1)
	assert.Equal(t, "/a/verse_index.bin", events[0].Path)
	assert.Equal(t, OpCreate, events[0].Operation)
}

func TestDebouncer_BurstOnSameFile_Coalesces(t *testing.T) {
	// Given: a debouncer
	d := NewDebouncer(100 * time.Millisecond)
	defer d.Stop()

	// When: a file is rewritten several times in quick succession
	for i := 0; i < 5; i++ {
		d.Add(FileEvent{Path: "/a/bible_text.bin", Operation: OpModify, Timestamp: time.Now()})
		time.Sleep(10 * time.Millisecond)
	}

	// Then: one event comes out
	events := receive(t, d, time.Second)
	require.Len(t, events, 1)
	assert.Equal(t, OpModify, events[0].Operation)
}

func TestDebouncer_CreateThenDelete_NoBatch(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	d.Add(FileEvent{Path: "/a/.build-123", Operation: OpCreate})
	d.Add(FileEvent{Path: "/a/.build-123", Operation: OpDelete})

	select {
	case events := <-d.Output():
		t.Fatalf("expected no batch, got %v", events)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestDebouncer_DifferentFiles_SortedBatch(t *testing.T) {
	// Given: a debouncer
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	// When: a build touches several files
	d.Add(FileEvent{Path: "/a/search_shards/shard_001.bin", Operation: OpCreate})
	d.Add(FileEvent{Path: "/a/manifest.json", Operation: OpModify})
	d.Add(FileEvent{Path: "/a/bible_text.bin", Operation: OpDelete})

	// Then: one batch, sorted by path
	events := receive(t, d, 500*time.Millisecond)
	require.Len(t, events, 3)
	assert.Equal(t, "/a/bible_text.bin", events[0].Path)
	assert.Equal(t, "/a/manifest.json", events[1].Path)
	assert.Equal(t, "/a/search_shards/shard_001.bin", events[2].Path)
}

func TestDebouncer_Stop_ClosesOutputAndIgnoresAdds(t *testing.T) {
	// Given: a stopped debouncer
	d := NewDebouncer(10 * time.Millisecond)
	d.Stop()
	d.Stop()

	// When: adding after stop
	d.Add(FileEvent{Path: "/a/x"})

	// Then: output is closed and nothing is emitted
	_, ok := <-d.Output()
	assert.False(t, ok, "channel should be closed")
}
