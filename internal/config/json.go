package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/lockbox/internal/flagx"
	"github.com/dmitrijs2005/lockbox/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "100ms" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	DataDir           string         `json:"data_dir"`
	DatabaseFile      string         `json:"database_file"`
	ChunkThreshold    int64          `json:"chunk_threshold"`
	CompressionFloor  int64          `json:"compression_floor"`
	SealWorkers       int            `json:"seal_workers"`
	OpenRetryInterval timex.Duration `json:"open_retry_interval"`
	OpenRetryMax      uint64         `json:"open_retry_max"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// Lookup order for the JSON file path:
//  1. Command-line flags (-c or -config) via flagx.JsonConfigFlags().
//  2. If empty, no JSON is loaded and the function returns.
//
// Only fields actually present (non-zero after unmarshalling) override the
// current value, so a partial JSON file is fine.
//
// Panics on read or unmarshal errors (caller should recover if desired).
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DataDir != "" {
		cfg.DataDir = jc.DataDir
	}
	if jc.DatabaseFile != "" {
		cfg.DatabaseFile = jc.DatabaseFile
	}
	if jc.ChunkThreshold > 0 {
		cfg.ChunkThreshold = jc.ChunkThreshold
	}
	if jc.CompressionFloor > 0 {
		cfg.CompressionFloor = jc.CompressionFloor
	}
	if jc.SealWorkers > 0 {
		cfg.SealWorkers = jc.SealWorkers
	}
	if jc.OpenRetryInterval.Duration > 0 {
		cfg.OpenRetryInterval = time.Duration(jc.OpenRetryInterval.Duration)
	}
	if jc.OpenRetryMax > 0 {
		cfg.OpenRetryMax = jc.OpenRetryMax
	}
}
