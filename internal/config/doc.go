// Package config loads runtime configuration for the Lockbox CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string   data directory holding the vault database
//	-t int      chunk threshold (MiB)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "100ms" or integer nanoseconds:
//
//	{
//	  "data_dir": ".lockbox",
//	  "database_file": "lockbox.db",
//	  "chunk_threshold": 4194304,
//	  "compression_floor": 1048576,
//	  "seal_workers": 4,
//	  "open_retry_interval": "100ms",
//	  "open_retry_max": 5
//	}
//
// Primary API
//
//   - type Config                     — runtime settings of the vault engine
//   - func LoadConfig() *Config       — builds Config by applying defaults, JSON, then flags
//   - func (*Config) LoadDefaults()   — sets sensible defaults
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
