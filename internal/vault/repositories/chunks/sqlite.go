// Package chunks persists chunk payload records, the chunks partition of
// the store. Chunks are only ever written and deleted alongside their
// parent object, inside the parent's transaction.
package chunks

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/lockbox/internal/common"
	"github.com/dmitrijs2005/lockbox/internal/dbx"
	"github.com/dmitrijs2005/lockbox/internal/vault/models"
)

// Repository defines the chunk partition operations.
type Repository interface {
	Create(ctx context.Context, c *models.Chunk) error
	CreateOrUpdate(ctx context.Context, c *models.Chunk) error
	GetByID(ctx context.Context, id string) (*models.Chunk, error)
	DeleteByID(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Create inserts a chunk payload.
func (r *SQLiteRepository) Create(ctx context.Context, c *models.Chunk) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO chunks (id, payload) values (?, ?)`, c.ID, c.Payload)
	if err != nil {
		return fmt.Errorf("failed to insert chunk: %w", err)
	}
	return nil
}

// CreateOrUpdate upserts a chunk by id; used by backup import.
func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, c *models.Chunk) error {
	query := `INSERT INTO chunks (id, payload) values (?, ?)
			ON CONFLICT(id) DO UPDATE SET payload = excluded.payload`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.Payload)
	if err != nil {
		return fmt.Errorf("failed to upsert chunk: %w", err)
	}
	return nil
}

// GetByID returns a single chunk payload.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Chunk, error) {
	row := r.db.QueryRowContext(ctx, `select id, payload from chunks where id=?`, id)

	c := &models.Chunk{}
	if err := row.Scan(&c.ID, &c.Payload); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("chunk %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return c, nil
}

// DeleteByID removes a chunk payload. It expects exactly one row to be
// affected.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `delete from chunks where id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete chunk: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("chunk %s: %w", id, common.ErrNotFound)
	}
	return nil
}
