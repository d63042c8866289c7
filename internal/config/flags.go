package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/lockbox/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   data directory holding the vault database (default from Config)
//	-t int      chunk threshold in MiB (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory holding the vault database")
	chunkThresholdMiB := fs.Int64("t", cfg.ChunkThreshold>>20, "chunk threshold (in MiB)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	if *chunkThresholdMiB > 0 {
		cfg.ChunkThreshold = *chunkThresholdMiB << 20
	}
}
