package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/lockbox/internal/chunkx"
	"github.com/dmitrijs2005/lockbox/internal/common"
	"github.com/dmitrijs2005/lockbox/internal/cryptox"
	"github.com/dmitrijs2005/lockbox/internal/dbx"
	"github.com/dmitrijs2005/lockbox/internal/logging"
	"github.com/dmitrijs2005/lockbox/internal/vault/models"
	"github.com/dmitrijs2005/lockbox/internal/vault/repositories/chunks"
	"github.com/dmitrijs2005/lockbox/internal/vault/repositories/objects"
	"github.com/dmitrijs2005/lockbox/internal/vault/store"
)

// ObjectMeta describes an incoming payload.
type ObjectMeta struct {
	DisplayName string
	ContentType string
}

// BatchItem pairs a payload with its metadata for StoreBatch.
type BatchItem struct {
	Data []byte
	Meta ObjectMeta
}

// Limits tunes the storage path.
type Limits struct {
	// ChunkThreshold: sealed ciphertext larger than this is cut into
	// pieces of at most this size instead of being stored inline.
	ChunkThreshold int64
	// CompressionFloor: entropy-dense payloads larger than this skip the
	// compression pass.
	CompressionFloor int64
	// SealWorkers bounds concurrent sealing in StoreBatch.
	SealWorkers int
}

// DefaultLimits returns the storage-path defaults.
func DefaultLimits() Limits {
	return Limits{
		ChunkThreshold:   4 << 20,
		CompressionFloor: 1 << 20,
		SealWorkers:      4,
	}
}

// ObjectService defines stored-object operations. Master keys are
// obtained from AuthService.Authenticate and belong to the caller.
type ObjectService interface {
	Store(ctx context.Context, vaultID string, masterKey []byte, data []byte, meta ObjectMeta) (*models.StoredObject, error)
	StoreBatch(ctx context.Context, vaultID string, masterKey []byte, items []BatchItem) ([]*models.StoredObject, error)
	Retrieve(ctx context.Context, vaultID string, masterKey []byte, objectID string) ([]byte, error)
	List(ctx context.Context, vaultID string) ([]*models.StoredObject, error)
	Rename(ctx context.Context, objectID string, displayName string) error
	Delete(ctx context.Context, objectID string) error
}

type objectService struct {
	store  *store.Store
	limits Limits
	log    logging.Logger
}

// NewObjectService constructs an ObjectService bound to the given store
// handle.
func NewObjectService(st *store.Store, limits Limits, log logging.Logger) ObjectService {
	return &objectService{store: st, limits: limits, log: log}
}

// Media containers and archives arrive already entropy-dense; above the
// floor a compression pass wastes CPU and memory for nothing.
var denseContentTypePrefixes = []string{"image/", "video/", "audio/"}

var denseContentTypes = map[string]struct{}{
	"application/zip":              {},
	"application/gzip":             {},
	"application/zstd":             {},
	"application/x-7z-compressed":  {},
	"application/x-rar-compressed": {},
}

func (s *objectService) shouldSkipCompression(contentType string, size int64) bool {
	if size <= s.limits.CompressionFloor {
		return false
	}
	ct := strings.ToLower(contentType)
	for _, prefix := range denseContentTypePrefixes {
		if strings.HasPrefix(ct, prefix) {
			return true
		}
	}
	_, dense := denseContentTypes[ct]
	return dense
}

// seal derives the per-object subkey, seals the payload and shapes the
// result into a StoredObject plus its chunk records, without touching the
// store.
func (s *objectService) seal(vaultID string, masterKey []byte, data []byte, meta ObjectMeta) (*models.StoredObject, []*models.Chunk, error) {
	salt := common.GenerateRandByteArray(cryptox.SaltSize)
	objectKey, err := cryptox.DeriveObjectKey(masterKey, salt)
	if err != nil {
		return nil, nil, fmt.Errorf("derive object key: %w", err)
	}
	defer common.WipeByteArray(objectKey)

	skip := s.shouldSkipCompression(meta.ContentType, int64(len(data)))
	env, err := cryptox.Seal(data, objectKey, skip)
	if err != nil {
		return nil, nil, fmt.Errorf("seal object: %w", err)
	}

	o := &models.StoredObject{
		ID:           uuid.NewString(),
		VaultID:      vaultID,
		DisplayName:  meta.DisplayName,
		Kind:         models.KindFromContentType(meta.ContentType),
		ContentType:  meta.ContentType,
		OriginalSize: int64(len(data)),
		StoredSize:   env.StoredSize(),
		Compressed:   env.Compressed,
		Nonce:        env.Nonce,
		Salt:         salt,
		CreatedAt:    time.Now().UTC(),
	}

	if env.StoredSize() <= s.limits.ChunkThreshold {
		o.InlineCiphertext = env.Ciphertext
		return o, nil, nil
	}

	pieces, err := chunkx.Split(env.Ciphertext, int(s.limits.ChunkThreshold))
	if err != nil {
		return nil, nil, fmt.Errorf("split ciphertext: %w", err)
	}

	chunkRecords := make([]*models.Chunk, 0, len(pieces))
	o.Chunked = true
	o.ChunkIDs = make([]string, 0, len(pieces))
	for _, piece := range pieces {
		c := &models.Chunk{ID: uuid.NewString(), Payload: piece}
		chunkRecords = append(chunkRecords, c)
		o.ChunkIDs = append(o.ChunkIDs, c.ID)
	}
	return o, chunkRecords, nil
}

// persist writes an object and its chunks in one transaction.
func (s *objectService) persist(ctx context.Context, o *models.StoredObject, chunkRecords []*models.Chunk) error {
	db, err := s.store.DB()
	if err != nil {
		return err
	}

	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		chunkRepo := chunks.NewSQLiteRepository(tx)
		for _, c := range chunkRecords {
			if err := chunkRepo.Create(ctx, c); err != nil {
				return err
			}
		}
		return objects.NewSQLiteRepository(tx).Create(ctx, o)
	})
	return store.MapError(err)
}

// Store seals one payload and persists it, chunked when the sealed
// ciphertext exceeds the chunk threshold, inline otherwise.
func (s *objectService) Store(ctx context.Context, vaultID string, masterKey []byte, data []byte, meta ObjectMeta) (*models.StoredObject, error) {
	o, chunkRecords, err := s.seal(vaultID, masterKey, data, meta)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, o, chunkRecords); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "object stored",
		"object_id", o.ID, "vault_id", vaultID,
		"chunked", o.Chunked, "compressed", o.Compressed, "stored_size", o.StoredSize)
	return o, nil
}

// StoreBatch seals many payloads with bounded concurrency, then commits
// them serially, one transaction per object. Bounding the sealing stage
// keeps a large upload batch from holding every buffer in memory at once.
func (s *objectService) StoreBatch(ctx context.Context, vaultID string, masterKey []byte, items []BatchItem) ([]*models.StoredObject, error) {
	type sealedItem struct {
		object       *models.StoredObject
		chunkRecords []*models.Chunk
	}
	prepared := make([]sealedItem, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limits.SealWorkers)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			o, chunkRecords, err := s.seal(vaultID, masterKey, item.Data, item.Meta)
			if err != nil {
				return err
			}
			prepared[i] = sealedItem{object: o, chunkRecords: chunkRecords}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make([]*models.StoredObject, 0, len(prepared))
	for _, item := range prepared {
		if err := s.persist(ctx, item.object, item.chunkRecords); err != nil {
			return result, err
		}
		result = append(result, item.object)
	}
	return result, nil
}

// Retrieve loads an object visible under the given vault, reassembles its
// chunk payloads in order when chunked, and opens the envelope with the
// per-object subkey. A missing chunk row means a torn store and surfaces
// as a verification failure, the same as any other corruption.
func (s *objectService) Retrieve(ctx context.Context, vaultID string, masterKey []byte, objectID string) ([]byte, error) {
	db, err := s.store.DB()
	if err != nil {
		return nil, err
	}

	o, err := objects.NewSQLiteRepository(db).GetByID(ctx, objectID)
	if err != nil {
		return nil, store.MapError(err)
	}
	if o.VaultID != vaultID {
		return nil, fmt.Errorf("object %s: %w", objectID, common.ErrNotFound)
	}

	ciphertext := o.InlineCiphertext
	if o.Chunked {
		chunkRepo := chunks.NewSQLiteRepository(db)
		pieces := make([][]byte, 0, len(o.ChunkIDs))
		for _, chunkID := range o.ChunkIDs {
			c, err := chunkRepo.GetByID(ctx, chunkID)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					return nil, common.ErrVerificationFailed
				}
				return nil, store.MapError(err)
			}
			pieces = append(pieces, c.Payload)
		}
		ciphertext = chunkx.Join(pieces)
	}

	objectKey, err := cryptox.DeriveObjectKey(masterKey, o.Salt)
	if err != nil {
		return nil, fmt.Errorf("derive object key: %w", err)
	}
	defer common.WipeByteArray(objectKey)

	return cryptox.Open(ciphertext, objectKey, o.Nonce, o.Compressed)
}

// List returns the metadata of every object owned by the vault, in
// unspecified order.
func (s *objectService) List(ctx context.Context, vaultID string) ([]*models.StoredObject, error) {
	db, err := s.store.DB()
	if err != nil {
		return nil, err
	}

	result, err := objects.NewSQLiteRepository(db).ListByVault(ctx, vaultID)
	if err != nil {
		return nil, store.MapError(err)
	}
	return result, nil
}

// Rename updates an object's display name.
func (s *objectService) Rename(ctx context.Context, objectID string, displayName string) error {
	db, err := s.store.DB()
	if err != nil {
		return err
	}
	return store.MapError(objects.NewSQLiteRepository(db).UpdateDisplayName(ctx, objectID, displayName))
}

// Delete removes the object record and, when chunked, every referenced
// chunk record as one transaction.
func (s *objectService) Delete(ctx context.Context, objectID string) error {
	db, err := s.store.DB()
	if err != nil {
		return err
	}

	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		objectRepo := objects.NewSQLiteRepository(tx)
		o, err := objectRepo.GetByID(ctx, objectID)
		if err != nil {
			return err
		}

		chunkRepo := chunks.NewSQLiteRepository(tx)
		for _, chunkID := range o.ChunkIDs {
			if err := chunkRepo.DeleteByID(ctx, chunkID); err != nil {
				return err
			}
		}
		return objectRepo.DeleteByID(ctx, objectID)
	})
	if err != nil {
		return store.MapError(err)
	}

	s.log.Info(ctx, "object deleted", "object_id", objectID)
	return nil
}
