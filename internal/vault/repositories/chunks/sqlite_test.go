package chunks

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/lockbox/internal/common"
	"github.com/dmitrijs2005/lockbox/internal/vault/models"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE chunks (
  id TEXT PRIMARY KEY,
  payload BLOB NOT NULL
);
`)
	require.NoError(t, err)
	return db
}

func TestCreateAndGetByID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, &models.Chunk{ID: "c1", Payload: []byte{1, 2, 3}}))

	got, err := r.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got.Payload)

	_, err = r.GetByID(ctx, "nope")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestCreateOrUpdate_Upserts(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.CreateOrUpdate(ctx, &models.Chunk{ID: "c1", Payload: []byte{1}}))
	require.NoError(t, r.CreateOrUpdate(ctx, &models.Chunk{ID: "c1", Payload: []byte{2}}))

	got, err := r.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []byte{2}, got.Payload)
}

func TestDeleteByID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, &models.Chunk{ID: "c1", Payload: []byte{1}}))
	require.NoError(t, r.DeleteByID(ctx, "c1"))

	_, err := r.GetByID(ctx, "c1")
	require.ErrorIs(t, err, common.ErrNotFound)

	require.ErrorIs(t, r.DeleteByID(ctx, "c1"), common.ErrNotFound)
}
