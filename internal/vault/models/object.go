package models

import (
	"errors"
	"strings"
	"time"
)

// Kind classifies a stored object. It is derived once from the content
// type at creation and never re-derived.
type Kind string

const (
	KindImage    Kind = "image"
	KindVideo    Kind = "video"
	KindDocument Kind = "document"
	KindOther    Kind = "other"
)

// KindFromContentType maps a MIME content type to a Kind.
func KindFromContentType(contentType string) Kind {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case strings.HasPrefix(ct, "image/"):
		return KindImage
	case strings.HasPrefix(ct, "video/"):
		return KindVideo
	case strings.HasPrefix(ct, "text/"),
		ct == "application/pdf",
		ct == "application/msword",
		strings.HasPrefix(ct, "application/vnd.openxmlformats-officedocument"):
		return KindDocument
	default:
		return KindOther
	}
}

// ErrInvalidPayloadShape reports a StoredObject violating the inline-xor-
// chunked invariant.
var ErrInvalidPayloadShape = errors.New("exactly one of inline ciphertext or chunk ids must be set")

// StoredObject is the metadata record for one stored payload. Exactly one
// of InlineCiphertext or ChunkIDs is populated. Nonce and Salt are
// per-object and independent of every other object and of the profile's
// verification salt. Ciphertext and chunk payloads are immutable once
// written; only DisplayName may change.
type StoredObject struct {
	ID               string    `json:"id"`
	VaultID          string    `json:"vault_id"`
	DisplayName      string    `json:"display_name"`
	Kind             Kind      `json:"kind"`
	ContentType      string    `json:"content_type"`
	OriginalSize     int64     `json:"original_size"`
	StoredSize       int64     `json:"stored_size"`
	Compressed       bool      `json:"compressed"`
	Nonce            []byte    `json:"nonce"`
	Salt             []byte    `json:"salt"`
	Chunked          bool      `json:"chunked"`
	InlineCiphertext []byte    `json:"inline_ciphertext,omitempty"`
	ChunkIDs         []string  `json:"chunk_ids,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// Validate checks the inline-xor-chunked invariant.
func (o *StoredObject) Validate() error {
	hasInline := len(o.InlineCiphertext) > 0
	hasChunks := len(o.ChunkIDs) > 0
	if hasInline == hasChunks || o.Chunked != hasChunks {
		return ErrInvalidPayloadShape
	}
	return nil
}

// Chunk is one piece of a chunked StoredObject's sealed ciphertext. The
// whole object is sealed once, then cut; a chunk carries the per-object
// nonce only implicitly through its parent. Chunks are never addressable
// by a client and live and die with their parent object.
type Chunk struct {
	ID      string `json:"id"`
	Payload []byte `json:"payload"`
}
