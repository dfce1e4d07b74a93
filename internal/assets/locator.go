package assets

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Aman-CERP/pocketbible/internal/storage"
)

// Origin identifies which candidate root a resolution selected.
type Origin int

const (
	// OriginNotFound means neither root holds the required files.
	OriginNotFound Origin = iota
	// OriginExternal is the writable removable-media root.
	OriginExternal
	// OriginBundled is the read-only root shipped with the application.
	OriginBundled
)

// String returns the origin name.
func (o Origin) String() string {
	switch o {
	case OriginExternal:
		return "external"
	case OriginBundled:
		return "bundled"
	default:
		return "not_found"
	}
}

// Resolution is the immutable result of one Resolve call.
type Resolution struct {
	Origin Origin

	// Store reads from the selected root. Nil when Origin is OriginNotFound.
	Store storage.ByteStore

	// Root is the selected root's location label.
	Root string

	// Diagnostic names the first missing file per probed root when a root
	// was skipped.
	Diagnostic string
}

// Found reports whether a root was selected.
func (r Resolution) Found() bool {
	return r.Origin != OriginNotFound
}

// Locator probes the external root, then the bundled root.
type Locator struct {
	external storage.ByteStore
	bundled  storage.ByteStore
	logger   *slog.Logger
}

// NewLocator creates a locator. Either store may be nil to skip that root.
func NewLocator(external, bundled storage.ByteStore) *Locator {
	return &Locator{
		external: external,
		bundled:  bundled,
		logger:   slog.Default(),
	}
}

// NewDirLocator creates a locator over two directories. An empty path skips
// that root.
func NewDirLocator(externalRoot, bundledRoot string) *Locator {
	var ext, bun storage.ByteStore
	if externalRoot != "" {
		ext = storage.NewDir(externalRoot)
	}
	if bundledRoot != "" {
		bun = storage.NewDir(bundledRoot)
	}
	return NewLocator(ext, bun)
}

// WithLogger sets the logger used for probe diagnostics.
func (l *Locator) WithLogger(logger *slog.Logger) *Locator {
	if logger != nil {
		l.logger = logger
	}
	return l
}

// Resolve selects the first root where every required file opens for read.
// It does no retries; call it again after media changes.
func (l *Locator) Resolve() Resolution {
	var diag []string

	candidates := []struct {
		origin Origin
		store  storage.ByteStore
	}{
		{OriginExternal, l.external},
		{OriginBundled, l.bundled},
	}

	for _, c := range candidates {
		if c.store == nil {
			continue
		}
		missing := firstMissing(c.store)
		if missing == "" {
			l.logger.Debug("assets resolved",
				slog.String("origin", c.origin.String()),
				slog.String("root", c.store.Root()))
			return Resolution{
				Origin:     c.origin,
				Store:      c.store,
				Root:       c.store.Root(),
				Diagnostic: strings.Join(diag, "; "),
			}
		}
		diag = append(diag, fmt.Sprintf("%s root %s: missing %s", c.origin, c.store.Root(), missing))
	}

	if len(diag) == 0 {
		diag = append(diag, "no asset roots configured")
	}
	res := Resolution{Origin: OriginNotFound, Diagnostic: strings.Join(diag, "; ")}
	l.logger.Warn("assets not found", slog.String("diagnostic", res.Diagnostic))
	return res
}

func firstMissing(s storage.ByteStore) string {
	for _, name := range Required {
		if !s.Exists(name) {
			return name
		}
	}
	return ""
}
