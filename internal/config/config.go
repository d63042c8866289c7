package config

import (
	"path/filepath"
	"time"
)

// Config holds runtime settings for the Lockbox CLI.
//
// Fields:
//   - DataDir: directory holding the vault database.
//   - DatabaseFile: sqlite file name inside DataDir.
//   - ChunkThreshold: sealed payloads larger than this (bytes) are chunked.
//   - CompressionFloor: entropy-dense payloads larger than this (bytes)
//     skip the compression pass.
//   - SealWorkers: concurrent sealing goroutines for batch imports.
//   - OpenRetryInterval / OpenRetryMax: backoff when the schema is locked
//     by a concurrent upgrade at open time.
type Config struct {
	DataDir           string
	DatabaseFile      string
	ChunkThreshold    int64
	CompressionFloor  int64
	SealWorkers       int
	OpenRetryInterval time.Duration
	OpenRetryMax      uint64
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DataDir = ".lockbox"
	c.DatabaseFile = "lockbox.db"
	c.ChunkThreshold = 4 << 20
	c.CompressionFloor = 1 << 20
	c.SealWorkers = 4
	c.OpenRetryInterval = 100 * time.Millisecond
	c.OpenRetryMax = 5
}

// DatabasePath returns the full path of the sqlite file.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, c.DatabaseFile)
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
