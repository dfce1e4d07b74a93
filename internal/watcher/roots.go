package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	bberrors "github.com/Aman-CERP/pocketbible/internal/errors"
)

// nestedDirs are subdirectories of a root that hold assets.
var nestedDirs = []string{"search_shards"}

// RootWatcher reports debounced changes to a set of asset roots.
type RootWatcher struct {
	roots  []string
	opts   Options
	logger *slog.Logger

	fsw       *fsnotify.Watcher
	poller    *PollingWatcher
	debouncer *Debouncer

	changes chan []FileEvent
	errors  chan error
	stopCh  chan struct{}

	mu             sync.RWMutex
	stopped        bool
	droppedBatches atomic.Uint64
}

// NewRootWatcher watches roots. Empty entries are ignored; relative roots
// are made absolute. It falls back to polling when fsnotify is unavailable
// or opts.ForcePolling is set.
func NewRootWatcher(roots []string, opts Options) (*RootWatcher, error) {
	opts = opts.WithDefaults()

	var abs []string
	for _, r := range roots {
		if r == "" {
			continue
		}
		a, err := filepath.Abs(r)
		if err != nil {
			return nil, bberrors.IOFailure("resolve", r, err)
		}
		if !slices.Contains(abs, a) {
			abs = append(abs, a)
		}
	}
	if len(abs) == 0 {
		return nil, bberrors.ConfigError("no asset roots to watch", nil)
	}

	w := &RootWatcher{
		roots:     abs,
		opts:      opts,
		logger:    slog.Default(),
		debouncer: NewDebouncer(opts.DebounceWindow),
		changes:   make(chan []FileEvent, opts.EventBufferSize),
		errors:    make(chan error, 10),
		stopCh:    make(chan struct{}),
	}

	if !opts.ForcePolling {
		if fsw, err := fsnotify.NewWatcher(); err == nil {
			w.fsw = fsw
		} else {
			w.logger.Warn("fsnotify unavailable, polling instead", slog.String("error", err.Error()))
		}
	}
	if w.fsw == nil {
		w.poller = NewPollingWatcher(opts.PollInterval, w.watchDirs())
	}
	return w, nil
}

// WithLogger sets the logger.
func (w *RootWatcher) WithLogger(logger *slog.Logger) *RootWatcher {
	if logger != nil {
		w.logger = logger
	}
	return w
}

// Roots returns the absolute roots being watched.
func (w *RootWatcher) Roots() []string {
	return slices.Clone(w.roots)
}

// Mode returns "fsnotify" or "polling".
func (w *RootWatcher) Mode() string {
	if w.fsw != nil {
		return "fsnotify"
	}
	return "polling"
}

// watchDirs lists every directory whose entries matter: each root's parent,
// the root, and the root's asset subdirectories.
func (w *RootWatcher) watchDirs() []string {
	var dirs []string
	add := func(d string) {
		if !slices.Contains(dirs, d) {
			dirs = append(dirs, d)
		}
	}
	for _, r := range w.roots {
		add(filepath.Dir(r))
		add(r)
		for _, n := range nestedDirs {
			add(filepath.Join(r, n))
		}
	}
	return dirs
}

// Start watches until ctx is done or Stop is called.
func (w *RootWatcher) Start(ctx context.Context) error {
	go w.forward(ctx)

	if w.poller != nil {
		go w.pump(ctx)
		return w.poller.Start(ctx)
	}

	for _, d := range w.watchDirs() {
		w.tryAdd(d)
	}

	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.emitError(bberrors.IOFailure("watch", strings.Join(w.roots, ","), err))
		}
	}
}

// tryAdd watches dir if it exists.
func (w *RootWatcher) tryAdd(dir string) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.fsw.Add(dir); err != nil {
		w.logger.Debug("watch add failed", slog.String("dir", dir), slog.String("error", err.Error()))
	}
}

func (w *RootWatcher) handle(event fsnotify.Event) {
	if !w.relevant(event.Name) {
		return
	}

	var op Operation
	switch {
	case event.Op&fsnotify.Create != 0:
		op = OpCreate
	case event.Op&fsnotify.Write != 0:
		op = OpModify
	case event.Op&fsnotify.Remove != 0:
		op = OpDelete
	case event.Op&fsnotify.Rename != 0:
		op = OpRename
	default:
		return
	}

	isDir := false
	if info, err := os.Stat(event.Name); err == nil {
		isDir = info.IsDir()
	}
	// A root or asset subdirectory that appears needs its own watch.
	if op == OpCreate && isDir && slices.Contains(w.watchDirs(), event.Name) {
		w.tryAdd(event.Name)
		for _, n := range nestedDirs {
			w.tryAdd(filepath.Join(event.Name, n))
		}
	}

	w.debouncer.Add(FileEvent{Path: event.Name, Operation: op, IsDir: isDir, Timestamp: time.Now()})
}

// pump forwards poller events through the relevance filter.
func (w *RootWatcher) pump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.poller.Events():
			if !ok {
				return
			}
			if w.relevant(event.Path) {
				w.debouncer.Add(event)
			}
		}
	}
}

// relevant reports whether path is a root or lies inside one. Siblings of
// a root in its parent directory are not.
func (w *RootWatcher) relevant(path string) bool {
	for _, r := range w.roots {
		if path == r {
			return true
		}
		rel, err := filepath.Rel(r, path)
		if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *RootWatcher) forward(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case batch, ok := <-w.debouncer.Output():
			if !ok {
				return
			}
			w.emit(batch)
		}
	}
}

func (w *RootWatcher) emit(batch []FileEvent) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.stopped {
		return
	}
	select {
	case w.changes <- batch:
	default:
		count := w.droppedBatches.Add(1)
		w.logger.Warn("change buffer full, dropping batch",
			slog.Int("batch_size", len(batch)),
			slog.Uint64("total_dropped_batches", count))
	}
}

func (w *RootWatcher) emitError(err error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.stopped {
		return
	}
	select {
	case w.errors <- err:
	default:
	}
}

// DroppedBatches returns how many batches were dropped on a full buffer.
func (w *RootWatcher) DroppedBatches() uint64 {
	return w.droppedBatches.Load()
}

// Changes returns the channel of debounced batches. It is closed by Stop.
func (w *RootWatcher) Changes() <-chan []FileEvent {
	return w.changes
}

// Errors returns non-fatal watch errors. It is closed by Stop.
func (w *RootWatcher) Errors() <-chan error {
	return w.errors
}

// Stop releases the watcher. Safe to call multiple times.
func (w *RootWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true
	close(w.stopCh)

	w.debouncer.Stop()
	if w.fsw != nil {
		_ = w.fsw.Close()
	}
	if w.poller != nil {
		_ = w.poller.Stop()
	}

	close(w.changes)
	close(w.errors)
	return nil
}
