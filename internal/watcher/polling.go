package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// PollingWatcher detects changes by listing a fixed set of directories on
// every tick. Listings are shallow; a directory that does not exist lists
// as empty, so a root that appears later is picked up without re-arming.
type PollingWatcher struct {
	interval time.Duration
	dirs     []string

	mu      sync.Mutex
	state   map[string]fileSnapshot
	events  chan FileEvent
	stopCh  chan struct{}
	stopped bool
}

type fileSnapshot struct {
	modTime time.Time
	size    int64
	isDir   bool
}

// NewPollingWatcher creates a poller over dirs.
func NewPollingWatcher(interval time.Duration, dirs []string) *PollingWatcher {
	return &PollingWatcher{
		interval: interval,
		dirs:     dirs,
		state:    make(map[string]fileSnapshot),
		events:   make(chan FileEvent, 100),
		stopCh:   make(chan struct{}),
	}
}

// Start takes a baseline listing and then polls until ctx is done or Stop
// is called.
func (p *PollingWatcher) Start(ctx context.Context) error {
	p.mu.Lock()
	p.state = p.list()
	p.mu.Unlock()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = p.Stop()
			return ctx.Err()
		case <-p.stopCh:
			return nil
		case <-ticker.C:
			p.detectChanges()
		}
	}
}

// Stop stops polling and closes the events channel.
func (p *PollingWatcher) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return nil
	}
	p.stopped = true
	close(p.stopCh)
	close(p.events)
	return nil
}

// Events returns the channel of file events.
func (p *PollingWatcher) Events() <-chan FileEvent {
	return p.events
}

// list snapshots the direct entries of every directory.
func (p *PollingWatcher) list() map[string]fileSnapshot {
	out := make(map[string]fileSnapshot)
	for _, dir := range p.dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, e := range entries {
			info, err := e.Info()
			if err != nil {
				continue
			}
			out[filepath.Join(dir, e.Name())] = fileSnapshot{
				modTime: info.ModTime(),
				size:    info.Size(),
				isDir:   e.IsDir(),
			}
		}
	}
	return out
}

// detectChanges diffs a fresh listing against the last one.
func (p *PollingWatcher) detectChanges() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}

	now := time.Now()
	current := p.list()
	for path, snap := range current {
		prev, ok := p.state[path]
		switch {
		case !ok:
			p.emit(FileEvent{Path: path, Operation: OpCreate, IsDir: snap.isDir, Timestamp: now})
		case !snap.isDir && (prev.modTime != snap.modTime || prev.size != snap.size):
			p.emit(FileEvent{Path: path, Operation: OpModify, Timestamp: now})
		}
	}
	for path, snap := range p.state {
		if _, ok := current[path]; !ok {
			p.emit(FileEvent{Path: path, Operation: OpDelete, IsDir: snap.isDir, Timestamp: now})
		}
	}
	p.state = current
}

// emit sends without blocking. Must be called with the lock held.
func (p *PollingWatcher) emit(event FileEvent) {
	select {
	case p.events <- event:
	default:
		slog.Warn("polling watcher buffer full, dropping event",
			slog.String("path", event.Path),
			slog.String("op", event.Operation.String()))
	}
}
