package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/dmitrijs2005/lockbox/internal/common"
)

// NonceSize is the AES-GCM nonce length in bytes.
const NonceSize = 12

// Envelope is the result of sealing a plaintext buffer: the ciphertext,
// the random nonce it was sealed under, and the compression flag that was
// actually applied. The flag must be passed back verbatim to Open.
type Envelope struct {
	Ciphertext []byte
	Nonce      []byte
	Compressed bool
}

// StoredSize returns the number of ciphertext bytes actually persisted.
func (e *Envelope) StoredSize() int64 {
	return int64(len(e.Ciphertext))
}

// One encoder/decoder pair reused for all calls; EncodeAll/DecodeAll are
// safe for concurrent use.
var (
	zstdEncoder, _ = zstd.NewWriter(nil)
	zstdDecoder, _ = zstd.NewReader(nil)
)

// Seal optionally compresses plaintext with zstd, generates a fresh random
// nonce and encrypts with AES-256-GCM. The codec executes whatever
// skipCompression flag it is given and records the outcome in the returned
// Envelope; the skip policy itself belongs to the caller.
func Seal(plaintext []byte, key []byte, skipCompression bool) (*Envelope, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("key must be %d bytes", KeySize)
	}

	data := plaintext
	compressed := false
	if !skipCompression {
		data = zstdEncoder.EncodeAll(plaintext, nil)
		compressed = true
	}

	nonce := common.GenerateRandByteArray(NonceSize)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	ciphertext := aesgcm.Seal(nil, nonce, data, nil)

	return &Envelope{Ciphertext: ciphertext, Nonce: nonce, Compressed: compressed}, nil
}

// Open decrypts and authenticates ciphertext, then decompresses if the
// envelope was sealed with compression. Both a failed tag check (wrong
// key, wrong nonce, corrupted ciphertext) and a failed decompression
// surface as common.ErrVerificationFailed; the stages are deliberately
// not distinguished to the caller.
func Open(ciphertext []byte, key []byte, nonce []byte, compressed bool) ([]byte, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("key must be %d bytes", KeySize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, common.ErrVerificationFailed
	}

	if compressed {
		plaintext, err = zstdDecoder.DecodeAll(plaintext, []byte{})
		if err != nil {
			return nil, common.ErrVerificationFailed
		}
	}

	// Zero-length plaintext comes back as an empty, non-nil slice so
	// open(seal(p)) returns exactly p.
	if plaintext == nil {
		plaintext = []byte{}
	}

	return plaintext, nil
}
