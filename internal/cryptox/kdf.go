// Package cryptox implements the key derivation and the authenticated
// encryption envelope used by the vault engine: PBKDF2 credential
// stretching, HKDF per-object subkeys, and AES-256-GCM sealing with an
// optional zstd compression pass.
package cryptox

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the symmetric key length in bytes (AES-256).
	KeySize = 32
	// SaltSize is the length of credential and per-object salts.
	SaltSize = 16
	// Iterations is the fixed PBKDF2 iteration count. Changing it changes
	// the store format version; existing stores keep their keys.
	Iterations = 310_000
)

// DeriveMasterKey stretches a credential secret into a symmetric key using
// PBKDF2-SHA256 with the fixed iteration count. Same (secret, salt) pair
// always yields the same key; different salts yield unlinkable keys.
func DeriveMasterKey(secret []byte, salt []byte) ([]byte, error) {
	if len(secret) == 0 {
		return nil, errors.New("secret is required")
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("salt must be %d bytes", SaltSize)
	}
	return pbkdf2.Key(secret, salt, Iterations, KeySize, sha256.New), nil
}

// DeriveObjectKey derives an independent per-object subkey from the master
// key and the object's own salt using HKDF-SHA256. The subkey is what the
// envelope codec seals and opens object payloads with, so every stored
// object is encrypted under key material unlinkable to any other object.
func DeriveObjectKey(masterKey []byte, salt []byte) ([]byte, error) {
	if len(masterKey) != KeySize {
		return nil, fmt.Errorf("master key must be %d bytes", KeySize)
	}
	if len(salt) != SaltSize {
		return nil, fmt.Errorf("salt must be %d bytes", SaltSize)
	}

	key := make([]byte, KeySize)
	r := hkdf.New(sha256.New, masterKey, salt, []byte("lockbox/object"))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("hkdf expand: %w", err)
	}
	return key, nil
}
