package common

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateRandByteArray returns size cryptographically random bytes.
// Used for salts and nonces.
func GenerateRandByteArray(size int) []byte {
	buf := make([]byte, size)
	// crypto/rand.Read never returns an error on supported platforms;
	// it panics internally if the kernel CSPRNG is unavailable.
	_, _ = rand.Read(buf)
	return buf
}

// MakeRandHexString returns a hex string encoding size random bytes
// (so the result is 2*size characters long).
func MakeRandHexString(size int) (string, error) {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// WipeByteArray zeroes the buffer in place. Call it on secrets and derived
// keys as soon as they are no longer needed. Safe on nil.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
