// Package store owns the single durable-store handle of the vault engine:
// opening the sqlite database, running goose migrations, mapping driver
// errors onto the engine's error taxonomy, and the explicit
// Closed → Opening → Open → Invalidated lifecycle.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/lockbox/internal/common"
	"github.com/dmitrijs2005/lockbox/internal/logging"
	"github.com/dmitrijs2005/lockbox/internal/vault/migrations"
)

// State is the lifecycle state of the store handle.
type State string

const (
	StateClosed      State = "closed"
	StateOpening     State = "opening"
	StateOpen        State = "open"
	StateInvalidated State = "invalidated"
)

// Options tunes the open path.
type Options struct {
	// OpenRetryInterval is the initial backoff when another process holds
	// the schema lock during Open. Doubles per attempt.
	OpenRetryInterval time.Duration
	// OpenRetryMax bounds the number of backoff retries.
	OpenRetryMax uint64
}

// DefaultOptions returns the open-path defaults.
func DefaultOptions() Options {
	return Options{
		OpenRetryInterval: 100 * time.Millisecond,
		OpenRetryMax:      5,
	}
}

// Store is the lazily-opened, long-lived handle to the durable engine.
// All vault operations share one Store; it must be explicitly reopened
// after Invalidate signals that the underlying medium changed out from
// under the process.
type Store struct {
	mu    sync.Mutex
	dsn   string
	opts  Options
	log   logging.Logger
	db    *sql.DB
	state State
}

// New returns a closed Store bound to the given sqlite DSN.
func New(dsn string, opts Options, log logging.Logger) *Store {
	return &Store{dsn: dsn, opts: opts, log: log, state: StateClosed}
}

// State reports the current lifecycle state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Open transitions Closed/Invalidated → Opening → Open: it opens the
// database and brings the schema up to date. If a concurrent schema
// upgrade holds the lock, the migration step is retried with bounded
// exponential backoff before giving up with ErrStoreBlocked. Open on an
// already-open store is a no-op.
func (s *Store) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateOpen {
		return nil
	}
	s.state = StateOpening

	db, err := sql.Open("sqlite", s.dsn)
	if err != nil {
		s.state = StateClosed
		return fmt.Errorf("open database: %w", err)
	}

	backoff := retry.WithMaxRetries(s.opts.OpenRetryMax, retry.NewExponential(s.opts.OpenRetryInterval))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if merr := s.runMigrations(ctx, db); merr != nil {
			if errors.Is(MapError(merr), common.ErrStoreBlocked) {
				s.log.Warn(ctx, "schema locked by concurrent upgrade, retrying", "error", merr)
				return retry.RetryableError(merr)
			}
			return merr
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		s.state = StateClosed
		return fmt.Errorf("migrate database: %w", MapError(err))
	}

	s.db = db
	s.state = StateOpen
	s.log.Info(ctx, "store opened", "dsn", s.dsn)
	return nil
}

func (s *Store) runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return goose.UpContext(ctx, db, ".")
}

// DB returns the open database handle, or an error describing why it is
// unavailable.
func (s *Store) DB() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateOpen:
		return s.db, nil
	case StateInvalidated:
		return nil, common.ErrStoreInvalidated
	default:
		return nil, common.ErrStoreClosed
	}
}

// Invalidate marks the handle unusable after the underlying medium
// signalled a version/schema change. The connection is closed; callers
// must Open again before further use.
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		_ = s.db.Close()
		s.db = nil
	}
	s.state = StateInvalidated
}

// Close releases the handle and returns the store to Closed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.db != nil {
		err = s.db.Close()
		s.db = nil
	}
	s.state = StateClosed
	return err
}
