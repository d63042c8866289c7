// Package models defines the persisted record types of the vault store:
// profiles, stored objects, chunks, and the transient backup aggregate.
package models

import "time"

// Verification is the zero-knowledge credential proof persisted with a
// profile: a fixed known plaintext sealed under the key derived from the
// registration credential and Salt. The credential itself never persists;
// authenticity is proven only by successfully opening Ciphertext.
type Verification struct {
	Ciphertext []byte `json:"ciphertext"`
	Nonce      []byte `json:"nonce"`
	Salt       []byte `json:"salt"`
}

// Profile is one registered vault identity. Name is a display label and is
// not unique at the storage layer; authentication resolves same-named
// profiles by attempted decryption. Profiles are never mutated after
// creation and are destroyed together with all owned objects.
type Profile struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	AvatarTag    string       `json:"avatar_tag"`
	Verification Verification `json:"verification"`
	CreatedAt    time.Time    `json:"created_at"`
}
