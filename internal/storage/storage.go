// Package storage provides read-only access to named byte blobs under an
// asset root. Names are slash-separated and relative to the root.
package storage

import (
	"errors"
	"io"
	"io/fs"
	"os"

	bberrors "github.com/Aman-CERP/pocketbible/internal/errors"
)

// File is an open blob supporting absolute seeks.
type File interface {
	io.ReadSeekCloser
}

// ByteStore is the storage API the asset readers consume.
type ByteStore interface {
	// Open opens a blob for reading.
	Open(name string) (File, error)

	// ReadFile reads a whole blob.
	ReadFile(name string) ([]byte, error)

	// Exists reports whether a blob can be opened for reading.
	Exists(name string) bool

	// Size returns the blob size in bytes.
	Size(name string) (int64, error)

	// Root returns a human-readable location for diagnostics.
	Root() string
}

// FSStore implements ByteStore over an fs.FS.
type FSStore struct {
	fsys fs.FS
	root string
}

var _ ByteStore = (*FSStore)(nil)

// NewDir returns a store rooted at a directory on disk.
func NewDir(root string) *FSStore {
	return &FSStore{fsys: os.DirFS(root), root: root}
}

// NewFS returns a store over an arbitrary filesystem. The label is used in
// diagnostics only.
func NewFS(fsys fs.FS, label string) *FSStore {
	return &FSStore{fsys: fsys, root: label}
}

// Root returns the store's location label.
func (s *FSStore) Root() string {
	return s.root
}

// Open opens a blob for reading. The underlying file must support Seek.
func (s *FSStore) Open(name string) (File, error) {
	if !fs.ValidPath(name) {
		return nil, bberrors.IOFailure("open", name, fs.ErrInvalid)
	}
	f, err := s.fsys.Open(name)
	if err != nil {
		return nil, classify("open", name, err)
	}
	rs, ok := f.(File)
	if !ok {
		f.Close()
		return nil, bberrors.IOFailure("seek", name, errors.ErrUnsupported)
	}
	return rs, nil
}

// ReadFile reads a whole blob.
func (s *FSStore) ReadFile(name string) ([]byte, error) {
	if !fs.ValidPath(name) {
		return nil, bberrors.IOFailure("read", name, fs.ErrInvalid)
	}
	data, err := fs.ReadFile(s.fsys, name)
	if err != nil {
		return nil, classify("read", name, err)
	}
	return data, nil
}

// Exists reports whether name opens for reading. Directories do not count.
func (s *FSStore) Exists(name string) bool {
	if !fs.ValidPath(name) {
		return false
	}
	f, err := s.fsys.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()
	info, err := f.Stat()
	return err == nil && !info.IsDir()
}

// Size returns the blob size in bytes.
func (s *FSStore) Size(name string) (int64, error) {
	if !fs.ValidPath(name) {
		return 0, bberrors.IOFailure("stat", name, fs.ErrInvalid)
	}
	info, err := fs.Stat(s.fsys, name)
	if err != nil {
		return 0, classify("stat", name, err)
	}
	return info.Size(), nil
}

// ReadLimited reads a whole blob after checking its size against limit.
// A zero-length blob is a format error; one larger than limit is an
// allocation failure and is never read.
func ReadLimited(s ByteStore, name string, limit int64) ([]byte, error) {
	size, err := s.Size(name)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, bberrors.FormatInvalid(name, "empty file")
	}
	if limit > 0 && size > limit {
		return nil, bberrors.AllocationFailure(name, size, limit)
	}
	return s.ReadFile(name)
}

// ReadAt opens name, seeks to off and reads exactly n bytes.
func ReadAt(s ByteStore, name string, off int64, n int) ([]byte, error) {
	f, err := s.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if _, err := f.Seek(off, io.SeekStart); err != nil {
		return nil, bberrors.IOFailure("seek", name, err)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(f, buf); err != nil {
		return nil, bberrors.IOFailure("read", name, err)
	}
	return buf, nil
}

func classify(op, name string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return bberrors.NotFound(name, err)
	}
	return bberrors.IOFailure(op, name, err)
}
