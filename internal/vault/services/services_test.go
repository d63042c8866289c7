package services

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/lockbox/internal/logging"
	"github.com/dmitrijs2005/lockbox/internal/vault/store"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "vault.db")
	st := store.New(dsn, store.DefaultOptions(), testLogger())
	require.NoError(t, st.Open(context.Background()))
	t.Cleanup(func() { _ = st.Close() })
	return st
}

// testLimits keeps thresholds small so chunking and the compression floor
// are reachable with kilobyte-sized fixtures.
func testLimits() Limits {
	return Limits{
		ChunkThreshold:   1 << 10,
		CompressionFloor: 256,
		SealWorkers:      2,
	}
}
