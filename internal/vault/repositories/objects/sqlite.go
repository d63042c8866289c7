// Package objects persists StoredObject metadata records, the objects
// partition of the store. The partition carries a non-unique secondary
// index on vault_id; ListByVault is the indexed range scan.
package objects

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/lockbox/internal/common"
	"github.com/dmitrijs2005/lockbox/internal/dbx"
	"github.com/dmitrijs2005/lockbox/internal/vault/models"
)

// Repository defines the object partition operations.
type Repository interface {
	Create(ctx context.Context, o *models.StoredObject) error
	CreateOrUpdate(ctx context.Context, o *models.StoredObject) error
	GetByID(ctx context.Context, id string) (*models.StoredObject, error)
	// ListByVault returns every object owned by the vault, in unspecified
	// order. Callers sort as needed.
	ListByVault(ctx context.Context, vaultID string) ([]*models.StoredObject, error)
	GetAll(ctx context.Context) ([]*models.StoredObject, error)
	UpdateDisplayName(ctx context.Context, id string, displayName string) error
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

const objectColumns = `id, vault_id, display_name, kind, content_type, original_size, stored_size, compressed, nonce, salt, chunked, inline_ciphertext, chunk_ids, created_at`

// Chunk ids are an ordered list; JSON keeps the order in a single TEXT
// column.
func encodeChunkIDs(ids []string) (any, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chunk ids: %w", err)
	}
	return string(b), nil
}

func decodeChunkIDs(raw sql.NullString) ([]string, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw.String), &ids); err != nil {
		return nil, fmt.Errorf("failed to decode chunk ids: %w", err)
	}
	return ids, nil
}

func (r *SQLiteRepository) execPut(ctx context.Context, query string, o *models.StoredObject) error {
	if err := o.Validate(); err != nil {
		return err
	}

	chunkIDs, err := encodeChunkIDs(o.ChunkIDs)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		o.ID, o.VaultID, o.DisplayName, string(o.Kind), o.ContentType,
		o.OriginalSize, o.StoredSize, o.Compressed,
		o.Nonce, o.Salt, o.Chunked, o.InlineCiphertext, chunkIDs, o.CreatedAt)
	return err
}

// Create inserts a new object record.
func (r *SQLiteRepository) Create(ctx context.Context, o *models.StoredObject) error {
	query := `INSERT INTO objects (` + objectColumns + `)
			values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if err := r.execPut(ctx, query, o); err != nil {
		return fmt.Errorf("failed to insert object: %w", err)
	}
	return nil
}

// CreateOrUpdate upserts an object by id; used by backup import.
func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, o *models.StoredObject) error {
	query := `INSERT INTO objects (` + objectColumns + `)
			values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET vault_id = excluded.vault_id,
				display_name = excluded.display_name,
				kind = excluded.kind,
				content_type = excluded.content_type,
				original_size = excluded.original_size,
				stored_size = excluded.stored_size,
				compressed = excluded.compressed,
				nonce = excluded.nonce,
				salt = excluded.salt,
				chunked = excluded.chunked,
				inline_ciphertext = excluded.inline_ciphertext,
				chunk_ids = excluded.chunk_ids,
				created_at = excluded.created_at
	`
	if err := r.execPut(ctx, query, o); err != nil {
		return fmt.Errorf("failed to upsert object: %w", err)
	}
	return nil
}

func scanObject(scan func(dest ...any) error) (*models.StoredObject, error) {
	o := &models.StoredObject{}
	var kind string
	var chunkIDs sql.NullString
	err := scan(&o.ID, &o.VaultID, &o.DisplayName, &kind, &o.ContentType,
		&o.OriginalSize, &o.StoredSize, &o.Compressed,
		&o.Nonce, &o.Salt, &o.Chunked, &o.InlineCiphertext, &chunkIDs, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	o.Kind = models.Kind(kind)
	o.ChunkIDs, err = decodeChunkIDs(chunkIDs)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// GetByID returns a single object record.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.StoredObject, error) {
	query := `select ` + objectColumns + ` from objects where id=?`
	row := r.db.QueryRowContext(ctx, query, id)

	o, err := scanObject(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("object %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return o, nil
}

func (r *SQLiteRepository) selectMany(ctx context.Context, query string, args ...any) ([]*models.StoredObject, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select objects: %w", err)
	}
	defer rows.Close()

	var result []*models.StoredObject
	for rows.Next() {
		o, err := scanObject(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListByVault scans the vault_id index.
func (r *SQLiteRepository) ListByVault(ctx context.Context, vaultID string) ([]*models.StoredObject, error) {
	return r.selectMany(ctx, `select `+objectColumns+` from objects where vault_id=?`, vaultID)
}

// GetAll lists every object record; used by backup export.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]*models.StoredObject, error) {
	return r.selectMany(ctx, `select `+objectColumns+` from objects`)
}

// UpdateDisplayName renames an object. DisplayName is the only mutable
// field; ciphertext is immutable once written.
func (r *SQLiteRepository) UpdateDisplayName(ctx context.Context, id string, displayName string) error {
	res, err := r.db.ExecContext(ctx, `update objects set display_name=? where id=?`, displayName, id)
	if err != nil {
		return fmt.Errorf("failed to rename object: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("object %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// DeleteByID removes an object record. It expects exactly one row to be
// affected.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `delete from objects where id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("object %s: %w", id, common.ErrNotFound)
	}
	return nil
}
