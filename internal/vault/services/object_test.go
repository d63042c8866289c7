package services

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/lockbox/internal/common"
	"github.com/dmitrijs2005/lockbox/internal/vault/models"
)

func registeredVault(t *testing.T, auth AuthService) (string, []byte) {
	t.Helper()
	ctx := context.Background()

	p, err := auth.Register(ctx, "alice", "cat", []byte("1234"))
	require.NoError(t, err)
	_, key, err := auth.Authenticate(ctx, "alice", []byte("1234"))
	require.NoError(t, err)
	t.Cleanup(func() { common.WipeByteArray(key) })
	return p.ID, key
}

func TestStoreAndRetrieve_Inline(t *testing.T) {
	st := newTestStore(t)
	auth := NewAuthService(st, testLogger())
	svc := NewObjectService(st, testLimits(), testLogger())
	ctx := context.Background()

	vaultID, key := registeredVault(t, auth)

	payload := []byte("the quick brown fox")
	o, err := svc.Store(ctx, vaultID, key, payload, ObjectMeta{DisplayName: "note.txt", ContentType: "text/plain"})
	require.NoError(t, err)

	assert.False(t, o.Chunked)
	assert.True(t, o.Compressed)
	assert.Equal(t, models.KindDocument, o.Kind)
	assert.Equal(t, int64(len(payload)), o.OriginalSize)
	assert.NotContains(t, string(o.InlineCiphertext), "quick brown")

	got, err := svc.Retrieve(ctx, vaultID, key, o.ID)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestStoreAndRetrieve_Chunked(t *testing.T) {
	st := newTestStore(t)
	auth := NewAuthService(st, testLogger())
	limits := testLimits()
	svc := NewObjectService(st, limits, testLogger())
	ctx := context.Background()

	vaultID, key := registeredVault(t, auth)

	// random payload several times the chunk threshold; incompressible, so
	// the sealed size stays above the threshold
	payload := common.GenerateRandByteArray(int(limits.ChunkThreshold) * 5)
	o, err := svc.Store(ctx, vaultID, key, payload, ObjectMeta{DisplayName: "movie.mp4", ContentType: "video/mp4"})
	require.NoError(t, err)

	assert.True(t, o.Chunked)
	assert.Empty(t, o.InlineCiphertext)
	assert.GreaterOrEqual(t, len(o.ChunkIDs), 5)
	assert.Equal(t, models.KindVideo, o.Kind)

	got, err := svc.Retrieve(ctx, vaultID, key, o.ID)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestStore_SkipsCompressionForDensePayloads(t *testing.T) {
	st := newTestStore(t)
	auth := NewAuthService(st, testLogger())
	limits := testLimits()
	svc := NewObjectService(st, limits, testLogger())
	ctx := context.Background()

	vaultID, key := registeredVault(t, auth)

	dense := common.GenerateRandByteArray(int(limits.CompressionFloor) * 4)
	o, err := svc.Store(ctx, vaultID, key, dense, ObjectMeta{DisplayName: "photo.jpg", ContentType: "image/jpeg"})
	require.NoError(t, err)
	assert.False(t, o.Compressed)

	// same content type below the floor still gets the compression pass
	small := []byte("tiny")
	o2, err := svc.Store(ctx, vaultID, key, small, ObjectMeta{DisplayName: "icon.jpg", ContentType: "image/jpeg"})
	require.NoError(t, err)
	assert.True(t, o2.Compressed)

	got, err := svc.Retrieve(ctx, vaultID, key, o.ID)
	require.NoError(t, err)
	assert.Equal(t, dense, got)
}

func TestStore_CompressibleTextShrinks(t *testing.T) {
	st := newTestStore(t)
	auth := NewAuthService(st, testLogger())
	svc := NewObjectService(st, testLimits(), testLogger())
	ctx := context.Background()

	vaultID, key := registeredVault(t, auth)

	payload := bytes.Repeat([]byte("lorem ipsum dolor sit amet "), 200)
	o, err := svc.Store(ctx, vaultID, key, payload, ObjectMeta{DisplayName: "lorem.txt", ContentType: "text/plain"})
	require.NoError(t, err)

	assert.True(t, o.Compressed)
	assert.Less(t, o.StoredSize, o.OriginalSize)

	got, err := svc.Retrieve(ctx, vaultID, key, o.ID)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestRetrieve_WrongVault(t *testing.T) {
	st := newTestStore(t)
	auth := NewAuthService(st, testLogger())
	svc := NewObjectService(st, testLimits(), testLogger())
	ctx := context.Background()

	vaultID, key := registeredVault(t, auth)

	o, err := svc.Store(ctx, vaultID, key, []byte("secret"), ObjectMeta{DisplayName: "note", ContentType: "text/plain"})
	require.NoError(t, err)

	_, err = svc.Retrieve(ctx, "other-vault", key, o.ID)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestRetrieve_WrongKey(t *testing.T) {
	st := newTestStore(t)
	auth := NewAuthService(st, testLogger())
	svc := NewObjectService(st, testLimits(), testLogger())
	ctx := context.Background()

	vaultID, key := registeredVault(t, auth)

	o, err := svc.Store(ctx, vaultID, key, []byte("secret"), ObjectMeta{DisplayName: "note", ContentType: "text/plain"})
	require.NoError(t, err)

	wrongKey := common.GenerateRandByteArray(len(key))
	_, err = svc.Retrieve(ctx, vaultID, wrongKey, o.ID)
	require.ErrorIs(t, err, common.ErrVerificationFailed)
}

func TestRetrieve_MissingChunkIsVerificationFailure(t *testing.T) {
	st := newTestStore(t)
	auth := NewAuthService(st, testLogger())
	limits := testLimits()
	svc := NewObjectService(st, limits, testLogger())
	ctx := context.Background()

	vaultID, key := registeredVault(t, auth)

	payload := common.GenerateRandByteArray(int(limits.ChunkThreshold) * 3)
	o, err := svc.Store(ctx, vaultID, key, payload, ObjectMeta{DisplayName: "blob", ContentType: "application/octet-stream"})
	require.NoError(t, err)
	require.True(t, o.Chunked)

	db, err := st.DB()
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "DELETE FROM chunks WHERE id = ?", o.ChunkIDs[1])
	require.NoError(t, err)

	_, err = svc.Retrieve(ctx, vaultID, key, o.ID)
	require.ErrorIs(t, err, common.ErrVerificationFailed)
}

func TestStoreBatch(t *testing.T) {
	st := newTestStore(t)
	auth := NewAuthService(st, testLogger())
	limits := testLimits()
	svc := NewObjectService(st, limits, testLogger())
	ctx := context.Background()

	vaultID, key := registeredVault(t, auth)

	items := make([]BatchItem, 10)
	for i := range items {
		items[i] = BatchItem{
			Data: []byte(fmt.Sprintf("payload %d", i)),
			Meta: ObjectMeta{DisplayName: fmt.Sprintf("note-%d.txt", i), ContentType: "text/plain"},
		}
	}
	// one oversized item to exercise chunking inside the batch
	items[7].Data = common.GenerateRandByteArray(int(limits.ChunkThreshold) * 2)

	stored, err := svc.StoreBatch(ctx, vaultID, key, items)
	require.NoError(t, err)
	require.Len(t, stored, len(items))

	for i, o := range stored {
		got, err := svc.Retrieve(ctx, vaultID, key, o.ID)
		require.NoError(t, err)
		assert.Equal(t, items[i].Data, got)
	}

	listed, err := svc.List(ctx, vaultID)
	require.NoError(t, err)
	assert.Len(t, listed, len(items))
}

func TestList_MetadataOnly(t *testing.T) {
	st := newTestStore(t)
	auth := NewAuthService(st, testLogger())
	svc := NewObjectService(st, testLimits(), testLogger())
	ctx := context.Background()

	vaultID, key := registeredVault(t, auth)

	_, err := svc.Store(ctx, vaultID, key, []byte("one"), ObjectMeta{DisplayName: "a", ContentType: "text/plain"})
	require.NoError(t, err)
	_, err = svc.Store(ctx, vaultID, key, []byte("two"), ObjectMeta{DisplayName: "b", ContentType: "text/plain"})
	require.NoError(t, err)

	listed, err := svc.List(ctx, vaultID)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	empty, err := svc.List(ctx, "no-such-vault")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRename(t *testing.T) {
	st := newTestStore(t)
	auth := NewAuthService(st, testLogger())
	svc := NewObjectService(st, testLimits(), testLogger())
	ctx := context.Background()

	vaultID, key := registeredVault(t, auth)

	o, err := svc.Store(ctx, vaultID, key, []byte("x"), ObjectMeta{DisplayName: "old", ContentType: "text/plain"})
	require.NoError(t, err)

	require.NoError(t, svc.Rename(ctx, o.ID, "new"))

	listed, err := svc.List(ctx, vaultID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "new", listed[0].DisplayName)

	require.ErrorIs(t, svc.Rename(ctx, "no-such-object", "x"), common.ErrNotFound)
}

func TestDelete_RemovesChunks(t *testing.T) {
	st := newTestStore(t)
	auth := NewAuthService(st, testLogger())
	limits := testLimits()
	svc := NewObjectService(st, limits, testLogger())
	ctx := context.Background()

	vaultID, key := registeredVault(t, auth)

	o, err := svc.Store(ctx, vaultID, key, common.GenerateRandByteArray(int(limits.ChunkThreshold)*3), ObjectMeta{DisplayName: "blob", ContentType: "application/octet-stream"})
	require.NoError(t, err)
	require.True(t, o.Chunked)

	require.NoError(t, svc.Delete(ctx, o.ID))

	_, err = svc.Retrieve(ctx, vaultID, key, o.ID)
	require.ErrorIs(t, err, common.ErrNotFound)

	db, err := st.DB()
	require.NoError(t, err)
	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n))
	assert.Zero(t, n)

	require.ErrorIs(t, svc.Delete(ctx, o.ID), common.ErrNotFound)
}

func TestOperations_ClosedStore(t *testing.T) {
	st := newTestStore(t)
	auth := NewAuthService(st, testLogger())
	svc := NewObjectService(st, testLimits(), testLogger())
	ctx := context.Background()

	vaultID, key := registeredVault(t, auth)
	require.NoError(t, st.Close())

	_, err := svc.Store(ctx, vaultID, key, []byte("x"), ObjectMeta{DisplayName: "a", ContentType: "text/plain"})
	require.ErrorIs(t, err, common.ErrStoreClosed)

	st.Invalidate()
	_, err = svc.List(ctx, vaultID)
	require.ErrorIs(t, err, common.ErrStoreInvalidated)
}
