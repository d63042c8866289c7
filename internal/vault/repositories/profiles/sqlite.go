// Package profiles persists Profile records, the profiles partition of
// the store.
package profiles

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/lockbox/internal/common"
	"github.com/dmitrijs2005/lockbox/internal/dbx"
	"github.com/dmitrijs2005/lockbox/internal/vault/models"
)

// Repository defines the profile partition operations.
type Repository interface {
	Create(ctx context.Context, p *models.Profile) error
	CreateOrUpdate(ctx context.Context, p *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.Profile, error)
	// GetAllByName returns every profile carrying the given display name,
	// oldest first. Names are not unique; callers disambiguate by
	// attempted decryption.
	GetAllByName(ctx context.Context, name string) ([]*models.Profile, error)
	GetAll(ctx context.Context) ([]*models.Profile, error)
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

const profileColumns = `id, name, avatar_tag, verification_ciphertext, verification_nonce, verification_salt, created_at`

// Create inserts a new profile.
func (r *SQLiteRepository) Create(ctx context.Context, p *models.Profile) error {
	query := `INSERT INTO profiles (` + profileColumns + `)
			values (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.AvatarTag,
		p.Verification.Ciphertext, p.Verification.Nonce, p.Verification.Salt,
		p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

// CreateOrUpdate upserts a profile by id; used by backup import.
func (r *SQLiteRepository) CreateOrUpdate(ctx context.Context, p *models.Profile) error {
	query := `INSERT INTO profiles (` + profileColumns + `)
			values (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name,
				avatar_tag = excluded.avatar_tag,
				verification_ciphertext = excluded.verification_ciphertext,
				verification_nonce = excluded.verification_nonce,
				verification_salt = excluded.verification_salt,
				created_at = excluded.created_at
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.AvatarTag,
		p.Verification.Ciphertext, p.Verification.Nonce, p.Verification.Salt,
		p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}
	return nil
}

func scanProfile(scan func(dest ...any) error) (*models.Profile, error) {
	p := &models.Profile{}
	err := scan(&p.ID, &p.Name, &p.AvatarTag,
		&p.Verification.Ciphertext, &p.Verification.Nonce, &p.Verification.Salt,
		&p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetByID returns a single profile.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Profile, error) {
	query := `select ` + profileColumns + ` from profiles where id=?`
	row := r.db.QueryRowContext(ctx, query, id)

	p, err := scanProfile(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("profile %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return p, nil
}

// GetAllByName lists same-named profiles, oldest first.
func (r *SQLiteRepository) GetAllByName(ctx context.Context, name string) ([]*models.Profile, error) {
	query := `select ` + profileColumns + ` from profiles where name=? order by created_at`
	rows, err := r.db.QueryContext(ctx, query, name)
	if err != nil {
		return nil, fmt.Errorf("failed to select profiles: %w", err)
	}
	defer rows.Close()

	var result []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetAll lists every profile; used by backup export.
func (r *SQLiteRepository) GetAll(ctx context.Context) ([]*models.Profile, error) {
	query := `select ` + profileColumns + ` from profiles order by created_at`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select profiles: %w", err)
	}
	defer rows.Close()

	var result []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteByID removes a profile. It expects exactly one row to be affected.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `delete from profiles where id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("profile %s: %w", id, common.ErrNotFound)
	}
	return nil
}
