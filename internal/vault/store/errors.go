package store

import (
	"database/sql"
	"errors"
	"fmt"

	sqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/dmitrijs2005/lockbox/internal/common"
)

// MapError translates driver-level failures onto the engine's error
// taxonomy: quota exhaustion becomes ErrStorageFull, a schema lock held
// by a concurrent upgrade becomes ErrStoreBlocked, and absent rows become
// ErrNotFound. Anything else passes through unchanged.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %w", common.ErrNotFound, err)
	}

	var serr *sqlite.Error
	if errors.As(err, &serr) {
		switch serr.Code() {
		case sqlite3.SQLITE_FULL:
			return fmt.Errorf("%w: %w", common.ErrStorageFull, err)
		case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED:
			return fmt.Errorf("%w: %w", common.ErrStoreBlocked, err)
		}
	}

	return err
}
