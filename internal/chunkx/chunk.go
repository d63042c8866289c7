// Package chunkx splits byte buffers into bounded-size pieces and joins
// them back together. The vault engine runs it over sealed ciphertext, so
// a single authentication tag covers the whole object and corruption is
// detected on reassembly-then-open rather than per piece.
package chunkx

import (
	"errors"
	"fmt"
)

// ErrInvalidPieceSize is returned when maxPieceSize is not positive.
var ErrInvalidPieceSize = errors.New("max piece size must be positive")

// Split cuts data into ordered pieces of at most maxPieceSize bytes.
// Concatenating the pieces in order reconstructs data exactly. Each piece
// is a copy, safe to retain after the input buffer is reused. Empty input
// yields no pieces.
func Split(data []byte, maxPieceSize int) ([][]byte, error) {
	if maxPieceSize <= 0 {
		return nil, fmt.Errorf("split: %w", ErrInvalidPieceSize)
	}

	if len(data) == 0 {
		return nil, nil
	}

	pieces := make([][]byte, 0, (len(data)+maxPieceSize-1)/maxPieceSize)
	for start := 0; start < len(data); start += maxPieceSize {
		end := start + maxPieceSize
		if end > len(data) {
			end = len(data)
		}
		piece := make([]byte, end-start)
		copy(piece, data[start:end])
		pieces = append(pieces, piece)
	}
	return pieces, nil
}

// Join concatenates pieces in order, inverting Split.
func Join(pieces [][]byte) []byte {
	total := 0
	for _, p := range pieces {
		total += len(p)
	}

	data := make([]byte, 0, total)
	for _, p := range pieces {
		data = append(data, p...)
	}
	return data
}
