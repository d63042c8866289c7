// Package common defines shared constants and sentinel errors used across
// the lockbox engine and its callers. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Authentication failed: either no profile carries the supplied name or
	// no candidate's verification record opened under the derived key. The
	// two causes are deliberately not distinguished.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// Decryption, tag authentication or decompression failed: wrong key,
	// wrong nonce or corrupted ciphertext. The stages are deliberately not
	// distinguished.
	ErrVerificationFailed = errors.New("verification failed")

	// Durable-store errors.
	ErrStorageFull  = errors.New("storage quota exceeded")
	ErrStoreBlocked = errors.New("store blocked by concurrent schema upgrade")

	// Store handle lifecycle errors.
	ErrStoreClosed      = errors.New("store is closed")
	ErrStoreInvalidated = errors.New("store handle invalidated")
)
