package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	bberrors "github.com/Aman-CERP/pocketbible/internal/errors"
)

// ProjectFile is the per-directory configuration file name.
const ProjectFile = ".pocketbible.yaml"

// Config represents the complete pocketbible configuration.
type Config struct {
	Version int           `yaml:"version" json:"version"`
	Assets  AssetsConfig  `yaml:"assets" json:"assets"`
	Search  SearchConfig  `yaml:"search" json:"search"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Watch   WatchConfig   `yaml:"watch" json:"watch"`
}

// AssetsConfig names the two asset roots. The external root is tried first;
// an empty root is skipped.
type AssetsConfig struct {
	ExternalRoot string `yaml:"external_root" json:"external_root"`
	BundledRoot  string `yaml:"bundled_root" json:"bundled_root"`
}

// SearchConfig tunes the sharded search index.
type SearchConfig struct {
	// MaxResults caps verse ids returned per lookup.
	MaxResults int `yaml:"max_results" json:"max_results"`

	// ShardCacheSize is how many shards stay resident at once.
	ShardCacheSize int `yaml:"shard_cache_size" json:"shard_cache_size"`

	// MaxShardBytes rejects shard files larger than this.
	MaxShardBytes int64 `yaml:"max_shard_bytes" json:"max_shard_bytes"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	// File enables JSON file logging at this path. Empty disables it unless
	// --debug is given, which uses the default log directory.
	File string `yaml:"file" json:"file"`
}

// WatchConfig configures the root watcher.
type WatchConfig struct {
	Debounce string `yaml:"debounce" json:"debounce"`
}

// Defaults.
const (
	DefaultExternalRoot   = "/apps_data/bible"
	DefaultBundledRoot    = "./assets"
	DefaultMaxResults     = 64
	DefaultShardCacheSize = 1
	DefaultMaxShardBytes  = 512 * 1024
	DefaultLogLevel       = "info"
	DefaultWatchDebounce  = "500ms"
)

// NewConfig creates a new Config with defaults.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Assets: AssetsConfig{
			ExternalRoot: DefaultExternalRoot,
			BundledRoot:  DefaultBundledRoot,
		},
		Search: SearchConfig{
			MaxResults:     DefaultMaxResults,
			ShardCacheSize: DefaultShardCacheSize,
			MaxShardBytes:  DefaultMaxShardBytes,
		},
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
		},
		Watch: WatchConfig{
			Debounce: DefaultWatchDebounce,
		},
	}
}

// GetUserConfigPath returns the path to the user configuration file:
//   - $XDG_CONFIG_HOME/pocketbible/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/pocketbible/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pocketbible", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "pocketbible", "config.yaml")
	}
	return filepath.Join(home, ".config", "pocketbible", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// LoadUserConfig loads the user configuration file.
// Returns nil config and nil error if the file doesn't exist.
func LoadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()
	if !fileExists(configPath) {
		return nil, nil
	}

	cfg := NewConfig()
	if err := cfg.loadYAML(configPath); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load loads configuration for dir. Precedence, lowest first:
//  1. Hardcoded defaults
//  2. User config (~/.config/pocketbible/config.yaml)
//  3. Project config (.pocketbible.yaml in dir)
//  4. Environment variables (POCKETBIBLE_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if userCfg, err := LoadUserConfig(); err != nil {
		return nil, err
	} else if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromFile loads .pocketbible.yaml or .pocketbible.yml from dir.
func (c *Config) loadFromFile(dir string) error {
	yamlPath := filepath.Join(dir, ProjectFile)
	if fileExists(yamlPath) {
		return c.loadYAML(yamlPath)
	}

	ymlPath := filepath.Join(dir, ".pocketbible.yml")
	if fileExists(ymlPath) {
		return c.loadYAML(ymlPath)
	}

	return nil
}

// loadYAML parses path and merges its non-zero values.
func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return bberrors.New(bberrors.ErrCodeConfigPermission,
			"failed to read config file "+path, err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return bberrors.ConfigError("failed to parse config file "+path, err).
			WithDetail("path", path)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Assets.ExternalRoot != "" {
		c.Assets.ExternalRoot = other.Assets.ExternalRoot
	}
	if other.Assets.BundledRoot != "" {
		c.Assets.BundledRoot = other.Assets.BundledRoot
	}

	if other.Search.MaxResults != 0 {
		c.Search.MaxResults = other.Search.MaxResults
	}
	if other.Search.ShardCacheSize != 0 {
		c.Search.ShardCacheSize = other.Search.ShardCacheSize
	}
	if other.Search.MaxShardBytes != 0 {
		c.Search.MaxShardBytes = other.Search.MaxShardBytes
	}

	if other.Logging.Level != "" {
		c.Logging.Level = other.Logging.Level
	}
	if other.Logging.File != "" {
		c.Logging.File = other.Logging.File
	}

	if other.Watch.Debounce != "" {
		c.Watch.Debounce = other.Watch.Debounce
	}
}

// applyEnvOverrides applies POCKETBIBLE_* environment variable overrides.
// Unparseable numbers are ignored.
func (c *Config) applyEnvOverrides() {
	// "-" disables a root; yaml cannot express that since empty means unset.
	if v := os.Getenv("POCKETBIBLE_EXTERNAL_ROOT"); v != "" {
		c.Assets.ExternalRoot = disabled(v)
	}
	if v := os.Getenv("POCKETBIBLE_BUNDLED_ROOT"); v != "" {
		c.Assets.BundledRoot = disabled(v)
	}
	if v := os.Getenv("POCKETBIBLE_MAX_RESULTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Search.MaxResults = n
		}
	}
	if v := os.Getenv("POCKETBIBLE_SHARD_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Search.ShardCacheSize = n
		}
	}
	if v := os.Getenv("POCKETBIBLE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func disabled(v string) string {
	if v == "-" {
		return ""
	}
	return v
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Search.MaxResults <= 0 {
		return invalid("search.max_results must be positive, got %d", c.Search.MaxResults)
	}
	if c.Search.ShardCacheSize <= 0 {
		return invalid("search.shard_cache_size must be positive, got %d", c.Search.ShardCacheSize)
	}
	if c.Search.MaxShardBytes <= 0 {
		return invalid("search.max_shard_bytes must be positive, got %d", c.Search.MaxShardBytes)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return invalid("logging.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Logging.Level)
	}

	if _, err := c.WatchDebounce(); err != nil {
		return invalid("watch.debounce must be a positive duration, got %q", c.Watch.Debounce)
	}

	if c.Assets.ExternalRoot == "" && c.Assets.BundledRoot == "" {
		return bberrors.ConfigError("no asset roots configured", nil).
			WithSuggestion("Set assets.bundled_root or POCKETBIBLE_BUNDLED_ROOT")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return bberrors.ConfigError(fmt.Sprintf(format, args...), nil).
		WithSuggestion("Check " + ProjectFile + " and POCKETBIBLE_* variables")
}

// WatchDebounce parses Watch.Debounce.
func (c *Config) WatchDebounce() (time.Duration, error) {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("non-positive duration %s", d)
	}
	return d, nil
}

// WriteYAML writes the configuration to a YAML file, creating its directory.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return bberrors.InternalError("failed to marshal config", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return bberrors.IOFailure("create", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return bberrors.IOFailure("write", path, err)
	}
	return nil
}

// FindProjectRoot walks up from startDir to the first directory holding a
// project config file or a .git directory. It returns the absolute
// startDir when neither is found.
func FindProjectRoot(startDir string) (string, error) {
	absDir, err := filepath.Abs(startDir)
	if err != nil {
		return "", bberrors.IOFailure("resolve", startDir, err)
	}

	currentDir := absDir
	for {
		if fileExists(filepath.Join(currentDir, ProjectFile)) ||
			fileExists(filepath.Join(currentDir, ".pocketbible.yml")) ||
			dirExists(filepath.Join(currentDir, ".git")) {
			return currentDir, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return absDir, nil
		}
		currentDir = parentDir
	}
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// dirExists checks if a directory exists.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
