package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for Config System:
// - Default() returns valid configuration with all expected defaults
// - Load() uses defaults when no config file exists
// - Load() loads from .classtools/config.yml and .classtools/config.yaml
// - Load() merges config file with defaults
// - Environment variables override config file values and defaults
// - Load() returns error for malformed YAML and invalid values
// - NewFileLoader() reads an explicit file and fails when it is missing
// - Validate() rejects bad patterns, cache settings, log settings, empty database
// - Validate() reports every invalid field at once

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()

	configDir := filepath.Join(dir, DirName)
	require.NoError(t, os.MkdirAll(configDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(configDir, name), []byte(content), 0644))
}

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	cfg := Default()

	require.NotNil(t, cfg)
	assert.Equal(t, []string{"**/*.php"}, cfg.Paths.Include)
	assert.Contains(t, cfg.Paths.Ignore, "vendor/**")
	assert.Equal(t, ".classtools/index.db", cfg.Storage.Database)
	assert.Equal(t, 1024, cfg.Cache.MaxEntries)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)

	assert.NoError(t, Validate(cfg))
}

func TestLoadConfig_UsesDefaultsWhenNoConfigFile(t *testing.T) {
	tempDir := t.TempDir()

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}

func TestLoadConfig_LoadsFromConfigYml(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", `
paths:
  include:
    - "src/**/*.php"
  ignore:
    - "tests/**"

storage:
  database: /var/lib/classtools/index.db

cache:
  max_entries: 64
  ttl: 30s

log:
  level: debug
  format: json
`)

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"src/**/*.php"}, cfg.Paths.Include)
	assert.Equal(t, []string{"tests/**"}, cfg.Paths.Ignore)
	assert.Equal(t, "/var/lib/classtools/index.db", cfg.Storage.Database)
	assert.Equal(t, 64, cfg.Cache.MaxEntries)
	assert.Equal(t, 30*time.Second, cfg.Cache.TTL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfig_LoadsFromConfigYaml(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yaml", `
log:
  level: warn
`)

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadConfig_MergesConfigWithDefaults(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", `
cache:
  max_entries: 8
`)

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	defaults := Default()
	assert.Equal(t, 8, cfg.Cache.MaxEntries)
	assert.Equal(t, defaults.Cache.TTL, cfg.Cache.TTL)
	assert.Equal(t, defaults.Paths.Include, cfg.Paths.Include)
	assert.Equal(t, defaults.Storage.Database, cfg.Storage.Database)
}

func TestLoadConfig_EnvironmentVariablesOverrideConfigFile(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", `
storage:
  database: from-file.db
log:
  level: debug
`)

	t.Setenv("CLASSTOOLS_STORAGE_DATABASE", "from-env.db")
	t.Setenv("CLASSTOOLS_LOG_LEVEL", "error")

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	assert.Equal(t, "from-env.db", cfg.Storage.Database)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoadConfig_EnvironmentVariablesOverrideDefaults(t *testing.T) {
	// Note: Cannot use t.Parallel() with t.Setenv()
	tempDir := t.TempDir()

	t.Setenv("CLASSTOOLS_CACHE_MAX_ENTRIES", "16")
	t.Setenv("CLASSTOOLS_CACHE_TTL", "1h")
	t.Setenv("CLASSTOOLS_LOG_FORMAT", "json")

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.Cache.MaxEntries)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadConfig_ReturnsErrorForMalformedYaml(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", "paths: [unclosed\n")

	_, err := NewLoader(tempDir).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_ReturnsErrorForInvalidValues(t *testing.T) {
	tempDir := t.TempDir()
	writeConfig(t, tempDir, "config.yml", `
cache:
  max_entries: 0
`)

	_, err := NewLoader(tempDir).Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCacheSettings)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestFileLoader(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: trace\n"), 0644))

	cfg, err := NewFileLoader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, "trace", cfg.Log.Level)

	_, err = NewFileLoader(filepath.Join(tempDir, "missing.yaml")).Load()
	assert.Error(t, err)
}

func TestValidate_RejectsInvalidPattern(t *testing.T) {
	cfg := Default()
	cfg.Paths.Ignore = []string{"[unclosed"}

	assert.ErrorIs(t, Validate(cfg), ErrInvalidPattern)
}

func TestValidate_RejectsEmptyInclude(t *testing.T) {
	cfg := Default()
	cfg.Paths.Include = nil

	assert.ErrorIs(t, Validate(cfg), ErrEmptyInclude)
}

func TestValidate_RejectsEmptyDatabase(t *testing.T) {
	cfg := Default()
	cfg.Storage.Database = "  "

	assert.ErrorIs(t, Validate(cfg), ErrEmptyDatabase)
}

func TestValidate_RejectsNegativeTTL(t *testing.T) {
	cfg := Default()
	cfg.Cache.TTL = -time.Second

	assert.ErrorIs(t, Validate(cfg), ErrInvalidCacheSettings)
}

func TestValidate_AcceptsZeroTTL(t *testing.T) {
	cfg := Default()
	cfg.Cache.TTL = 0

	assert.NoError(t, Validate(cfg))
}

func TestValidate_RejectsLogSettings(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = "loud"
	cfg.Log.Format = "xml"

	err := Validate(cfg)
	assert.ErrorIs(t, err, ErrInvalidLogLevel)
	assert.ErrorIs(t, err, ErrInvalidLogFormat)
}

func TestValidate_ReturnsMultipleErrors(t *testing.T) {
	cfg := Default()
	cfg.Storage.Database = ""
	cfg.Cache.MaxEntries = -1
	cfg.Log.Level = ""

	err := Validate(cfg)
	require.Error(t, err)

	assert.Contains(t, err.Error(), "validation failed")
	assert.ErrorIs(t, err, ErrEmptyDatabase)
	assert.ErrorIs(t, err, ErrInvalidCacheSettings)
	assert.ErrorIs(t, err, ErrInvalidLogLevel)
}
