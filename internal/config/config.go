// Package config loads classtools configuration from .classtools/config.yml
// with CLASSTOOLS_* environment overrides.
package config

import "time"

// DirName is the per-project directory holding config and the index database.
const DirName = ".classtools"

// Config represents the complete classtools configuration.
type Config struct {
	Paths   PathsConfig   `yaml:"paths" mapstructure:"paths"`
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`
	Cache   CacheConfig   `yaml:"cache" mapstructure:"cache"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// PathsConfig defines which files are scanned for definitions.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for PHP files
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to skip
}

// StorageConfig configures the definition index.
type StorageConfig struct {
	Database string `yaml:"database" mapstructure:"database"` // relative to the scanned root unless absolute
}

// CacheConfig bounds the in-memory extractor cache used while scanning.
type CacheConfig struct {
	MaxEntries int           `yaml:"max_entries" mapstructure:"max_entries"`
	TTL        time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// LogConfig configures the CLI logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // zerolog level name
	Format string `yaml:"format" mapstructure:"format"` // "console" or "json"
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Include: []string{
				"**/*.php",
			},
			Ignore: []string{
				"vendor/**",
				"node_modules/**",
				".git/**",
			},
		},
		Storage: StorageConfig{
			Database: DirName + "/index.db",
		},
		Cache: CacheConfig{
			MaxEntries: 1024,
			TTL:        10 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
