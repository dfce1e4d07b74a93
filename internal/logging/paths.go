package logging

import (
	"os"
	"path/filepath"

	bberrors "github.com/Aman-CERP/pocketbible/internal/errors"
)

// DefaultLogDir returns the default log directory (~/.pocketbible/logs/).
// Falls back to the temp directory if home is unavailable.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".pocketbible", "logs")
	}
	return filepath.Join(home, ".pocketbible", "logs")
}

// DefaultLogPath returns the default JSON log path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "pocketbible.log")
}

// FindLogFile returns explicit if it exists, otherwise the default log path
// if that exists.
func FindLogFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", bberrors.NotFound(explicit, err)
		}
		return explicit, nil
	}

	path := DefaultLogPath()
	if _, err := os.Stat(path); err != nil {
		return "", bberrors.NotFound(path, err).
			WithSuggestion("Run any command with --debug to start file logging")
	}
	return path, nil
}
