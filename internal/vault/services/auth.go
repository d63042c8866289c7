// Package services contains the application services of the vault engine:
// credential registration and authentication, object storage and
// retrieval, cascading vault deletion, and full-store backup.
package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/lockbox/internal/common"
	"github.com/dmitrijs2005/lockbox/internal/cryptox"
	"github.com/dmitrijs2005/lockbox/internal/dbx"
	"github.com/dmitrijs2005/lockbox/internal/logging"
	"github.com/dmitrijs2005/lockbox/internal/vault/models"
	"github.com/dmitrijs2005/lockbox/internal/vault/repositories/chunks"
	"github.com/dmitrijs2005/lockbox/internal/vault/repositories/objects"
	"github.com/dmitrijs2005/lockbox/internal/vault/repositories/profiles"
	"github.com/dmitrijs2005/lockbox/internal/vault/store"
)

// verificationPlaintext is the fixed constant sealed into every profile's
// verification record. Proving a credential means opening this envelope;
// it is the same primitive used for real object decryption, so the system
// has exactly one trust check.
var verificationPlaintext = []byte("VERIFIED")

// AuthService defines vault identity operations.
//
// Contract:
//   - Register: create a profile; no duplicate-name check, several
//     profiles may share a display name.
//   - Authenticate: resolve a credential to a profile and master key by
//     attempted decryption across all same-named candidates.
//   - DeleteVault: cascading removal of a profile and everything it owns.
//
// All methods honor context cancellation/timeouts.
type AuthService interface {
	Register(ctx context.Context, name string, avatarTag string, secret []byte) (*models.Profile, error)
	Authenticate(ctx context.Context, name string, secret []byte) (*models.Profile, []byte, error)
	DeleteVault(ctx context.Context, vaultID string) error
}

type authService struct {
	store *store.Store
	log   logging.Logger
}

// NewAuthService constructs an AuthService bound to the given store handle.
func NewAuthService(st *store.Store, log logging.Logger) AuthService {
	return &authService{store: st, log: log}
}

// Register generates a random salt, derives a key from the chosen secret,
// seals the verification constant under a fresh nonce and persists the
// resulting profile. Neither the secret nor the derived key is stored.
func (s *authService) Register(ctx context.Context, name string, avatarTag string, secret []byte) (*models.Profile, error) {
	db, err := s.store.DB()
	if err != nil {
		return nil, err
	}

	salt := common.GenerateRandByteArray(cryptox.SaltSize)
	key, err := cryptox.DeriveMasterKey(secret, salt)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	defer common.WipeByteArray(key)

	// the constant is tiny and incompressible in any useful sense
	env, err := cryptox.Seal(verificationPlaintext, key, true)
	if err != nil {
		return nil, fmt.Errorf("seal verification: %w", err)
	}

	p := &models.Profile{
		ID:        uuid.NewString(),
		Name:      name,
		AvatarTag: avatarTag,
		Verification: models.Verification{
			Ciphertext: env.Ciphertext,
			Nonce:      env.Nonce,
			Salt:       salt,
		},
		CreatedAt: time.Now().UTC(),
	}

	if err := profiles.NewSQLiteRepository(db).Create(ctx, p); err != nil {
		return nil, store.MapError(err)
	}

	s.log.Info(ctx, "profile registered", "profile_id", p.ID)
	return p, nil
}

// Authenticate walks every profile carrying the supplied name, oldest
// first, derives a candidate key from the supplied secret and that
// profile's stored salt, and accepts the first candidate whose
// verification envelope opens to the fixed constant. The returned master
// key belongs to the caller, which should wipe it after use.
//
// Exhausting all candidates — including the case of no candidates at
// all — yields ErrAuthenticationFailed; unknown name and wrong secret are
// deliberately indistinguishable.
func (s *authService) Authenticate(ctx context.Context, name string, secret []byte) (*models.Profile, []byte, error) {
	db, err := s.store.DB()
	if err != nil {
		return nil, nil, err
	}

	candidates, err := profiles.NewSQLiteRepository(db).GetAllByName(ctx, name)
	if err != nil {
		return nil, nil, store.MapError(err)
	}

	for _, p := range candidates {
		key, err := cryptox.DeriveMasterKey(secret, p.Verification.Salt)
		if err != nil {
			return nil, nil, fmt.Errorf("derive key: %w", err)
		}

		plain, err := cryptox.Open(p.Verification.Ciphertext, key, p.Verification.Nonce, false)
		if err == nil && bytes.Equal(plain, verificationPlaintext) {
			return p, key, nil
		}
		common.WipeByteArray(key)
	}

	return nil, nil, common.ErrAuthenticationFailed
}

// DeleteVault removes the profile and every object (and chunk) whose
// vault id matches, as one transaction. Objects of other vaults are
// untouched; an interrupted delete leaves no orphans because nothing is
// visible until commit.
func (s *authService) DeleteVault(ctx context.Context, vaultID string) error {
	db, err := s.store.DB()
	if err != nil {
		return err
	}

	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		profileRepo := profiles.NewSQLiteRepository(tx)
		objectRepo := objects.NewSQLiteRepository(tx)
		chunkRepo := chunks.NewSQLiteRepository(tx)

		owned, err := objectRepo.ListByVault(ctx, vaultID)
		if err != nil {
			return err
		}
		for _, o := range owned {
			for _, chunkID := range o.ChunkIDs {
				if err := chunkRepo.DeleteByID(ctx, chunkID); err != nil {
					return err
				}
			}
			if err := objectRepo.DeleteByID(ctx, o.ID); err != nil {
				return err
			}
		}

		return profileRepo.DeleteByID(ctx, vaultID)
	})
	if err != nil {
		return store.MapError(err)
	}

	s.log.Info(ctx, "vault deleted", "vault_id", vaultID)
	return nil
}
