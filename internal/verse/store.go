// Package verse reads verse text through a fixed-record offset index.
//
// The index (verse_index.bin) is loaded once, on first use, and held for
// the Store's lifetime. Each text query scans the index linearly and then
// seeks into bible_text.bin for just that verse. A Store is not safe for
// concurrent use.
package verse

import (
	"fmt"
	"log/slog"

	"github.com/Aman-CERP/pocketbible/internal/assets"
	"github.com/Aman-CERP/pocketbible/internal/books"
	"github.com/Aman-CERP/pocketbible/internal/codec"
	bberrors "github.com/Aman-CERP/pocketbible/internal/errors"
	"github.com/Aman-CERP/pocketbible/internal/storage"
)

// State is the Store's load progress.
type State int

const (
	StateUninitialized State = iota
	StateLocated
	StateIndexLoaded
	StateReady
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateLocated:
		return "located"
	case StateIndexLoaded:
		return "index_loaded"
	case StateReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// Store answers verse queries against one resolved asset root.
type Store struct {
	store    storage.ByteStore
	records  []Record
	textSize int64
	state    State
	lastErr  error
	logger   *slog.Logger
}

// New creates a store over a resolution. A resolution without a root yields
// a store that answers every query with zero and reports NotFound.
func New(res assets.Resolution) *Store {
	s := &Store{logger: slog.Default()}
	if !res.Found() {
		s.lastErr = bberrors.New(bberrors.ErrCodeAssetNotFound, "assets not found: "+res.Diagnostic, nil).
			WithSuggestion("Copy the built assets to the external root or build them with 'pocketbible build'")
		return s
	}
	s.store = res.Store
	s.state = StateLocated
	return s
}

// WithLogger sets the logger for load diagnostics.
func (s *Store) WithLogger(logger *slog.Logger) *Store {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// State returns the current load state.
func (s *Store) State() State {
	return s.state
}

// LastError returns the most recent failure, or nil if none occurred.
// Successful calls do not clear it.
func (s *Store) LastError() error {
	return s.lastErr
}

// LastErrorMessage returns LastError as a string, or "".
func (s *Store) LastErrorMessage() string {
	if s.lastErr == nil {
		return ""
	}
	return s.lastErr.Error()
}

// Load reads the index and stats the text blob. It is a no-op once the
// store is Ready. A failed load leaves no index cached.
func (s *Store) Load() error {
	switch s.state {
	case StateUninitialized:
		return s.lastErr
	case StateReady:
		return nil
	}

	if s.records == nil {
		data, err := s.store.ReadFile(assets.IndexFile)
		if err != nil {
			return s.fail(err)
		}
		records, err := DecodeIndex(data)
		if err != nil {
			s.logger.Warn("verse index rejected",
				slog.String("root", s.store.Root()),
				bberrors.LogAttr(err))
			return s.fail(err)
		}
		s.records = records
		s.state = StateIndexLoaded
		s.logger.Debug("verse index loaded",
			slog.String("root", s.store.Root()),
			slog.Int("records", len(records)))
	}

	size, err := s.store.Size(assets.TextFile)
	if err != nil {
		return s.fail(err)
	}
	s.textSize = size
	s.state = StateReady
	return nil
}

// TotalVerses returns the number of indexed verses, loading on demand.
func (s *Store) TotalVerses() int {
	if s.Load() != nil && s.records == nil {
		return 0
	}
	return len(s.records)
}

// VerseCount returns how many records match (book, chapter). Load failures
// yield 0 and are kept as the last error.
func (s *Store) VerseCount(book uint8, chapter uint16) int {
	if s.Load() != nil && s.records == nil {
		return 0
	}
	n := 0
	for i := range s.records {
		if s.records[i].Book == book && s.records[i].Chapter == chapter {
			n++
		}
	}
	return n
}

// VerseText copies the verse into buf, truncated to len(buf)-1 bytes and
// NUL-terminated, and returns the number of text bytes written. It returns
// 0 on a miss or any failure; see LastError.
func (s *Store) VerseText(book uint8, chapter, verse uint16, buf []byte) int {
	if len(buf) == 0 {
		s.lastErr = bberrors.Newf(bberrors.ErrCodeInvalidReference, "empty destination buffer")
		return 0
	}
	rec, err := s.find(book, chapter, verse)
	if err != nil {
		s.lastErr = err
		return 0
	}

	n := int(rec.TextLen)
	if n > len(buf)-1 {
		n = len(buf) - 1
	}
	data, err := s.read(rec, n)
	if err != nil {
		s.lastErr = err
		return 0
	}
	return codec.CopyTruncated(buf, data)
}

// Text returns the full verse text.
func (s *Store) Text(book uint8, chapter, verse uint16) (string, error) {
	rec, err := s.find(book, chapter, verse)
	if err != nil {
		s.lastErr = err
		return "", err
	}
	data, err := s.read(rec, int(rec.TextLen))
	if err != nil {
		s.lastErr = err
		return "", err
	}
	return string(data), nil
}

// RefFromVerseID maps a search hit (0-based record position) back to its
// reference.
func (s *Store) RefFromVerseID(id uint32) (books.Ref, bool) {
	if s.Load() != nil && s.records == nil {
		return books.Ref{}, false
	}
	if uint64(id) >= uint64(len(s.records)) {
		return books.Ref{}, false
	}
	r := s.records[id]
	return books.Ref{Book: r.Book, Chapter: r.Chapter, Verse: r.Verse}, true
}

// Close releases the cached index. The store can be loaded again.
func (s *Store) Close() error {
	s.records = nil
	s.textSize = 0
	if s.state != StateUninitialized {
		s.state = StateLocated
	}
	return nil
}

func (s *Store) find(book uint8, chapter, verse uint16) (Record, error) {
	if err := s.Load(); err != nil {
		return Record{}, err
	}
	for i := range s.records {
		r := s.records[i]
		if r.Book == book && r.Chapter == chapter && r.Verse == verse {
			return r, nil
		}
	}
	ref := books.Ref{Book: book, Chapter: chapter, Verse: verse}
	return Record{}, bberrors.New(bberrors.ErrCodeAssetNotFound,
		fmt.Sprintf("verse not found in index: %s", ref), nil)
}

// read fetches the first n bytes of rec's text after checking the record
// against the blob size.
func (s *Store) read(rec Record, n int) ([]byte, error) {
	end := int64(rec.TextOffset) + int64(rec.TextLen)
	if end > s.textSize {
		return nil, bberrors.BoundsViolation(assets.TextFile,
			fmt.Sprintf("record [%d,%d) exceeds blob size %d", rec.TextOffset, end, s.textSize))
	}
	if n == 0 {
		return []byte{}, nil
	}
	return storage.ReadAt(s.store, assets.TextFile, int64(rec.TextOffset), n)
}

func (s *Store) fail(err error) error {
	s.lastErr = err
	return err
}
