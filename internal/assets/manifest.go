package assets

import (
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/zeebo/blake3"

	bberrors "github.com/Aman-CERP/pocketbible/internal/errors"
	"github.com/Aman-CERP/pocketbible/internal/storage"
)

// ManifestVersion is the manifest schema version.
const ManifestVersion = 1

// ManifestEntry records one built file.
type ManifestEntry struct {
	Path   string `json:"path"`
	Size   int64  `json:"size"`
	BLAKE3 string `json:"blake3"`
}

// Manifest lists the files a build produced with their digests.
type Manifest struct {
	Version   int             `json:"version"`
	Generated time.Time       `json:"generated"`
	Files     []ManifestEntry `json:"files"`
}

// VerifyReport is the outcome of checking a root against its manifest.
type VerifyReport struct {
	Checked    int      `json:"checked"`
	Missing    []string `json:"missing,omitempty"`
	Mismatched []string `json:"mismatched,omitempty"`
}

// OK reports whether every listed file is present and matches.
func (r *VerifyReport) OK() bool {
	return len(r.Missing) == 0 && len(r.Mismatched) == 0
}

// Digest returns the hex BLAKE3-256 digest of r.
func Digest(r io.Reader) (string, int64, error) {
	h := blake3.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return "", n, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// DigestBytes returns the hex BLAKE3-256 digest of data.
func DigestBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// WriteManifest digests files (slash paths relative to dir) and writes
// manifest.json atomically into dir.
func WriteManifest(dir string, files []string) (*Manifest, error) {
	m := &Manifest{
		Version:   ManifestVersion,
		Generated: time.Now().UTC(),
	}

	sorted := append([]string(nil), files...)
	sort.Strings(sorted)

	for _, name := range sorted {
		f, err := os.Open(filepath.Join(dir, filepath.FromSlash(name)))
		if err != nil {
			return nil, bberrors.IOFailure("open", name, err)
		}
		sum, size, err := Digest(f)
		f.Close()
		if err != nil {
			return nil, bberrors.IOFailure("read", name, err)
		}
		m.Files = append(m.Files, ManifestEntry{Path: name, Size: size, BLAKE3: sum})
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, bberrors.InternalError("failed to encode manifest", err)
	}
	if err := writeAtomic(filepath.Join(dir, ManifestFile), data); err != nil {
		return nil, err
	}
	return m, nil
}

// ReadManifest loads manifest.json from a store.
func ReadManifest(s storage.ByteStore) (*Manifest, error) {
	data, err := s.ReadFile(ManifestFile)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, bberrors.FormatInvalid(ManifestFile, err.Error())
	}
	if m.Version != ManifestVersion {
		return nil, bberrors.Newf(bberrors.ErrCodeFormatInvalid,
			"%s: unsupported version %d (expected %d)", ManifestFile, m.Version, ManifestVersion)
	}
	return &m, nil
}

// VerifyManifest re-digests every file the manifest lists.
func VerifyManifest(s storage.ByteStore) (*VerifyReport, error) {
	m, err := ReadManifest(s)
	if err != nil {
		return nil, err
	}

	report := &VerifyReport{}
	for _, e := range m.Files {
		report.Checked++
		f, err := s.Open(e.Path)
		if err != nil {
			report.Missing = append(report.Missing, e.Path)
			continue
		}
		sum, size, err := Digest(f)
		f.Close()
		if err != nil || size != e.Size || sum != e.BLAKE3 {
			report.Mismatched = append(report.Mismatched, e.Path)
		}
	}
	return report, nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".manifest-*")
	if err != nil {
		return bberrors.IOFailure("create", path, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return bberrors.IOFailure("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return bberrors.IOFailure("close", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return bberrors.IOFailure("rename", path, err)
	}
	return nil
}
