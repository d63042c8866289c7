package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/lockbox/internal/dbx"
	"github.com/dmitrijs2005/lockbox/internal/logging"
	"github.com/dmitrijs2005/lockbox/internal/vault/models"
	"github.com/dmitrijs2005/lockbox/internal/vault/repositories/chunks"
	"github.com/dmitrijs2005/lockbox/internal/vault/repositories/objects"
	"github.com/dmitrijs2005/lockbox/internal/vault/repositories/profiles"
	"github.com/dmitrijs2005/lockbox/internal/vault/store"
)

// ErrUnsupportedBackupVersion reports a backup aggregate newer than this
// engine understands.
var ErrUnsupportedBackupVersion = errors.New("unsupported backup format version")

// BackupService snapshots and restores the whole store. The aggregate is
// produced and consumed in memory; writing it anywhere is the caller's
// concern.
type BackupService interface {
	Export(ctx context.Context) (*models.Backup, error)
	Import(ctx context.Context, b *models.Backup) error
}

type backupService struct {
	store *store.Store
	log   logging.Logger
}

// NewBackupService constructs a BackupService bound to the given store
// handle.
func NewBackupService(st *store.Store, log logging.Logger) BackupService {
	return &backupService{store: st, log: log}
}

// Export snapshots every profile and object record, plus the chunk
// payloads of chunked objects, inside one read transaction so the
// aggregate is internally consistent.
func (s *backupService) Export(ctx context.Context) (*models.Backup, error) {
	db, err := s.store.DB()
	if err != nil {
		return nil, err
	}

	b := &models.Backup{
		FormatVersion: models.BackupFormatVersion,
		ExportedAt:    time.Now().UTC(),
	}

	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		profileRecords, err := profiles.NewSQLiteRepository(tx).GetAll(ctx)
		if err != nil {
			return err
		}
		for _, p := range profileRecords {
			b.Profiles = append(b.Profiles, *p)
		}

		objectRecords, err := objects.NewSQLiteRepository(tx).GetAll(ctx)
		if err != nil {
			return err
		}
		chunkRepo := chunks.NewSQLiteRepository(tx)
		for _, o := range objectRecords {
			b.Objects = append(b.Objects, *o)
			for _, chunkID := range o.ChunkIDs {
				c, err := chunkRepo.GetByID(ctx, chunkID)
				if err != nil {
					return err
				}
				b.Chunks = append(b.Chunks, *c)
			}
		}
		return nil
	})
	if err != nil {
		return nil, store.MapError(err)
	}

	s.log.Info(ctx, "backup exported",
		"profiles", len(b.Profiles), "objects", len(b.Objects), "chunks", len(b.Chunks))
	return b, nil
}

// Import upserts every record of the backup in one transaction. Upserting
// by id makes the operation idempotent: importing the same backup twice
// yields the same final state as importing it once.
func (s *backupService) Import(ctx context.Context, b *models.Backup) error {
	if b.FormatVersion < 1 || b.FormatVersion > models.BackupFormatVersion {
		return fmt.Errorf("%w: %d", ErrUnsupportedBackupVersion, b.FormatVersion)
	}

	db, err := s.store.DB()
	if err != nil {
		return err
	}

	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		profileRepo := profiles.NewSQLiteRepository(tx)
		for i := range b.Profiles {
			if err := profileRepo.CreateOrUpdate(ctx, &b.Profiles[i]); err != nil {
				return err
			}
		}

		objectRepo := objects.NewSQLiteRepository(tx)
		for i := range b.Objects {
			if err := objectRepo.CreateOrUpdate(ctx, &b.Objects[i]); err != nil {
				return err
			}
		}

		chunkRepo := chunks.NewSQLiteRepository(tx)
		for i := range b.Chunks {
			if err := chunkRepo.CreateOrUpdate(ctx, &b.Chunks[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return store.MapError(err)
	}

	s.log.Info(ctx, "backup imported",
		"profiles", len(b.Profiles), "objects", len(b.Objects), "chunks", len(b.Chunks))
	return nil
}
