package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	bberrors "github.com/Aman-CERP/pocketbible/internal/errors"
)

const (
	// MaxBackups is the maximum number of config backups to keep
	MaxBackups = 3

	// BackupSuffix is the file extension for backup files
	BackupSuffix = ".bak"

	// maxBackupAttempts bounds the counter appended to same-millisecond names.
	maxBackupAttempts = 100
)

// BackupUserConfig copies the user config file to a timestamped backup and
// returns the backup path. With no user config it returns "" and nil.
func BackupUserConfig() (string, error) {
	configPath := GetUserConfigPath()
	if !UserConfigExists() {
		return "", nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", bberrors.IOFailure("read", configPath, err)
	}

	backupPath, err := writeNewBackup(configPath, data)
	if err != nil {
		return "", err
	}

	// Pruning is best effort; the backup itself succeeded.
	_ = pruneBackups()

	return backupPath, nil
}

// writeNewBackup writes data to a backup name that does not exist yet.
// Names created within the same millisecond get a zero-padded counter so
// they still sort chronologically.
func writeNewBackup(configPath string, data []byte) (string, error) {
	base := fmt.Sprintf("%s%s.%s", configPath, BackupSuffix, time.Now().Format("20060102-150405.000"))
	for i := 0; i < maxBackupAttempts; i++ {
		backupPath := base
		if i > 0 {
			backupPath = fmt.Sprintf("%s-%02d", base, i)
		}
		f, err := os.OpenFile(backupPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", bberrors.IOFailure("write", backupPath, err)
		}
		if _, err := f.Write(data); err != nil {
			_ = f.Close()
			_ = os.Remove(backupPath)
			return "", bberrors.IOFailure("write", backupPath, err)
		}
		if err := f.Close(); err != nil {
			_ = os.Remove(backupPath)
			return "", bberrors.IOFailure("write", backupPath, err)
		}
		return backupPath, nil
	}
	return "", bberrors.Newf(bberrors.ErrCodeInternal, "no free backup name for %s", base)
}

// ListUserConfigBackups returns all backup files for the user config,
// newest first.
func ListUserConfigBackups() ([]string, error) {
	configPath := GetUserConfigPath()
	configDir := filepath.Dir(configPath)

	entries, err := os.ReadDir(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, bberrors.IOFailure("list", configDir, err)
	}

	var backups []string
	prefix := filepath.Base(configPath) + BackupSuffix + "."
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), prefix) {
			backups = append(backups, filepath.Join(configDir, entry.Name()))
		}
	}

	// Timestamped names sort chronologically.
	sort.Sort(sort.Reverse(sort.StringSlice(backups)))
	return backups, nil
}

// pruneBackups removes backups beyond MaxBackups, keeping the newest.
func pruneBackups() error {
	backups, err := ListUserConfigBackups()
	if err != nil {
		return err
	}
	if len(backups) <= MaxBackups {
		return nil
	}
	for _, backup := range backups[MaxBackups:] {
		_ = os.Remove(backup)
	}
	return nil
}

// RestoreUserConfig restores the user config from a backup file. The
// backup is read before the current config, if any, is backed up, so
// neither a new backup nor pruning can replace what is being restored.
func RestoreUserConfig(backupPath string) error {
	data, err := os.ReadFile(backupPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return bberrors.New(bberrors.ErrCodeConfigNotFound, "backup file not found: "+backupPath, err)
		}
		return bberrors.IOFailure("read", backupPath, err)
	}

	if UserConfigExists() {
		if _, err := BackupUserConfig(); err != nil {
			return err
		}
	}

	configDir := GetUserConfigDir()
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return bberrors.IOFailure("create", configDir, err)
	}

	configPath := GetUserConfigPath()
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return bberrors.IOFailure("write", configPath, err)
	}
	return nil
}
