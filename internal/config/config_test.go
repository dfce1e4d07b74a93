package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bberrors "github.com/Aman-CERP/pocketbible/internal/errors"
)

// isolate points the user config at an empty directory and returns it.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func writeUserConfig(t *testing.T, xdg, content string) {
	t.Helper()
	dir := filepath.Join(xdg, "pocketbible")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
}

func writeProjectConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// =============================================================================
// Defaults
// =============================================================================

func TestNewConfig_ReturnsDefaults(t *testing.T) {
	// Given: no configuration file exists
	cfg := NewConfig()

	// Then: all defaults should be applied
	require.NotNil(t, cfg)
	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "/apps_data/bible", cfg.Assets.ExternalRoot)
	assert.Equal(t, "./assets", cfg.Assets.BundledRoot)
	assert.Equal(t, 64, cfg.Search.MaxResults)
	assert.Equal(t, 1, cfg.Search.ShardCacheSize)
	assert.Equal(t, int64(512*1024), cfg.Search.MaxShardBytes)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Empty(t, cfg.Logging.File)
	assert.Equal(t, "500ms", cfg.Watch.Debounce)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_WatchDebounce(t *testing.T) {
	cfg := NewConfig()
	d, err := cfg.WatchDebounce()
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, d)

	cfg.Watch.Debounce = "-1s"
	_, err = cfg.WatchDebounce()
	assert.Error(t, err)
}

// =============================================================================
// File layering
// =============================================================================

func TestLoad_NoConfigFile_ReturnsDefaults(t *testing.T) {
	// Given: a directory with no .pocketbible.yaml
	isolate(t)
	tmpDir := t.TempDir()

	// When: loading configuration
	cfg, err := Load(tmpDir)

	// Then: defaults are returned without error
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxResults, cfg.Search.MaxResults)
}

func TestLoad_YamlFile_OverridesDefaults(t *testing.T) {
	// Given: a directory with .pocketbible.yaml
	isolate(t)
	tmpDir := t.TempDir()
	writeProjectConfig(t, tmpDir, ".pocketbible.yaml", `
version: 1
assets:
  external_root: /sdcard/bible
search:
  max_results: 20
  shard_cache_size: 4
logging:
  level: debug
watch:
  debounce: 2s
`)

	// When: loading configuration
	cfg, err := Load(tmpDir)

	// Then: overrides are applied and untouched fields keep defaults
	require.NoError(t, err)
	assert.Equal(t, "/sdcard/bible", cfg.Assets.ExternalRoot)
	assert.Equal(t, "./assets", cfg.Assets.BundledRoot)
	assert.Equal(t, 20, cfg.Search.MaxResults)
	assert.Equal(t, 4, cfg.Search.ShardCacheSize)
	assert.Equal(t, int64(DefaultMaxShardBytes), cfg.Search.MaxShardBytes)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "2s", cfg.Watch.Debounce)
}

func TestLoad_YmlExtension_IsRecognized(t *testing.T) {
	// Given: only .pocketbible.yml
	isolate(t)
	tmpDir := t.TempDir()
	writeProjectConfig(t, tmpDir, ".pocketbible.yml", "search:\n  max_results: 7\n")

	// When: loading configuration
	cfg, err := Load(tmpDir)

	// Then: .yml file is recognized
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Search.MaxResults)
}

func TestLoad_YamlPreferredOverYml(t *testing.T) {
	// Given: both .yaml and .yml exist
	isolate(t)
	tmpDir := t.TempDir()
	writeProjectConfig(t, tmpDir, ".pocketbible.yaml", "search:\n  max_results: 7\n")
	writeProjectConfig(t, tmpDir, ".pocketbible.yml", "search:\n  max_results: 9\n")

	// When: loading configuration
	cfg, err := Load(tmpDir)

	// Then: .yaml takes precedence
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Search.MaxResults)
}

func TestLoad_InvalidYaml_ReturnsConfigError(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "search:\n  max_results: [oops\n"},
		{"field type", "search:\n  max_results: \"many\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Given: a broken project file
			isolate(t)
			tmpDir := t.TempDir()
			writeProjectConfig(t, tmpDir, ProjectFile, tt.content)

			// When: loading configuration
			cfg, err := Load(tmpDir)

			// Then: a config error is returned
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Equal(t, bberrors.CategoryConfig, bberrors.GetCategory(err))
			assert.Contains(t, err.Error(), "parse")
		})
	}
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"negative results", "search:\n  max_results: -1\n", "max_results"},
		{"negative cache size", "search:\n  shard_cache_size: -3\n", "shard_cache_size"},
		{"bad level", "logging:\n  level: verbose\n", "logging.level"},
		{"bad debounce", "watch:\n  debounce: soon\n", "watch.debounce"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			tmpDir := t.TempDir()
			writeProjectConfig(t, tmpDir, ProjectFile, tt.content)

			_, err := Load(tmpDir)

			require.Error(t, err)
			assert.Equal(t, bberrors.ErrCodeConfigInvalid, bberrors.GetCode(err))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

// =============================================================================
// Environment overrides
// =============================================================================

func TestLoad_EnvVarOverrides(t *testing.T) {
	// Given: every supported variable
	isolate(t)
	t.Setenv("POCKETBIBLE_EXTERNAL_ROOT", "/mnt/ext")
	t.Setenv("POCKETBIBLE_BUNDLED_ROOT", "/opt/bible")
	t.Setenv("POCKETBIBLE_MAX_RESULTS", "5")
	t.Setenv("POCKETBIBLE_SHARD_CACHE_SIZE", "3")
	t.Setenv("POCKETBIBLE_LOG_LEVEL", "warn")

	// When: loading configuration
	cfg, err := Load(t.TempDir())

	// Then: env wins
	require.NoError(t, err)
	assert.Equal(t, "/mnt/ext", cfg.Assets.ExternalRoot)
	assert.Equal(t, "/opt/bible", cfg.Assets.BundledRoot)
	assert.Equal(t, 5, cfg.Search.MaxResults)
	assert.Equal(t, 3, cfg.Search.ShardCacheSize)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_EnvVarDashDisablesRoot(t *testing.T) {
	isolate(t)
	t.Setenv("POCKETBIBLE_EXTERNAL_ROOT", "-")

	cfg, err := Load(t.TempDir())

	require.NoError(t, err)
	assert.Empty(t, cfg.Assets.ExternalRoot)
	assert.Equal(t, DefaultBundledRoot, cfg.Assets.BundledRoot)
}

func TestLoad_BothRootsDisabled_ReturnsError(t *testing.T) {
	isolate(t)
	t.Setenv("POCKETBIBLE_EXTERNAL_ROOT", "-")
	t.Setenv("POCKETBIBLE_BUNDLED_ROOT", "-")

	_, err := Load(t.TempDir())

	assert.Equal(t, bberrors.CategoryConfig, bberrors.GetCategory(err))
}

func TestLoad_EnvVarUnparseable_Ignored(t *testing.T) {
	isolate(t)
	t.Setenv("POCKETBIBLE_MAX_RESULTS", "lots")
	t.Setenv("POCKETBIBLE_SHARD_CACHE_SIZE", "0")

	cfg, err := Load(t.TempDir())

	require.NoError(t, err)
	assert.Equal(t, DefaultMaxResults, cfg.Search.MaxResults)
	assert.Equal(t, DefaultShardCacheSize, cfg.Search.ShardCacheSize)
}

// =============================================================================
// User config
// =============================================================================

func TestGetUserConfigPath_RespectsXDGConfigHome(t *testing.T) {
	xdg := isolate(t)
	assert.Equal(t, filepath.Join(xdg, "pocketbible", "config.yaml"), GetUserConfigPath())
	assert.Equal(t, filepath.Join(xdg, "pocketbible"), GetUserConfigDir())
}

func TestGetUserConfigPath_DefaultsToHomeConfig(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".config", "pocketbible", "config.yaml"), GetUserConfigPath())
}

func TestUserConfigExists(t *testing.T) {
	xdg := isolate(t)
	assert.False(t, UserConfigExists())

	writeUserConfig(t, xdg, "version: 1\n")
	assert.True(t, UserConfigExists())
}

func TestLoad_Precedence_UserThenProjectThenEnv(t *testing.T) {
	// Given: all three sources set overlapping fields
	xdg := isolate(t)
	projectDir := t.TempDir()
	writeUserConfig(t, xdg, `
search:
  max_results: 10
  shard_cache_size: 2
logging:
  level: debug
`)
	writeProjectConfig(t, projectDir, ProjectFile, `
search:
  max_results: 20
`)
	t.Setenv("POCKETBIBLE_LOG_LEVEL", "error")

	// When: loading configuration
	cfg, err := Load(projectDir)

	// Then: each field comes from the highest source that sets it
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Search.MaxResults)
	assert.Equal(t, 2, cfg.Search.ShardCacheSize)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestLoad_InvalidUserConfig_ReturnsError(t *testing.T) {
	xdg := isolate(t)
	writeUserConfig(t, xdg, "search: [nope\n")

	cfg, err := Load(t.TempDir())

	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config.yaml")
}

// =============================================================================
// Project root discovery
// =============================================================================

func TestFindProjectRoot_GitDirectory_ReturnsGitRoot(t *testing.T) {
	// Given: a nested directory in a git repo
	tmpDir := t.TempDir()
	nestedDir := filepath.Join(tmpDir, "src", "internal")
	require.NoError(t, os.Mkdir(filepath.Join(tmpDir, ".git"), 0o755))
	require.NoError(t, os.MkdirAll(nestedDir, 0o755))

	// When: finding project root from nested directory
	root, err := FindProjectRoot(nestedDir)

	// Then: git root is returned
	require.NoError(t, err)
	assert.Equal(t, tmpDir, root)
}

func TestFindProjectRoot_ConfigFile_ReturnsConfigLocation(t *testing.T) {
	tmpDir := t.TempDir()
	nestedDir := filepath.Join(tmpDir, "a", "b")
	require.NoError(t, os.MkdirAll(nestedDir, 0o755))
	writeProjectConfig(t, tmpDir, ProjectFile, "version: 1")

	root, err := FindProjectRoot(nestedDir)

	require.NoError(t, err)
	assert.Equal(t, tmpDir, root)
}
