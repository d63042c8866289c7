package chunkx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/lockbox/internal/common"
)

func TestSplitJoin_RoundTrip(t *testing.T) {
	tests := []struct {
		name         string
		dataLen      int
		maxPieceSize int
		wantPieces   int
	}{
		{name: "exact multiple", dataLen: 100, maxPieceSize: 10, wantPieces: 10},
		{name: "remainder", dataLen: 105, maxPieceSize: 10, wantPieces: 11},
		{name: "single piece", dataLen: 5, maxPieceSize: 10, wantPieces: 1},
		{name: "piece size one", dataLen: 7, maxPieceSize: 1, wantPieces: 7},
		{name: "empty", dataLen: 0, maxPieceSize: 10, wantPieces: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := common.GenerateRandByteArray(tt.dataLen)

			pieces, err := Split(data, tt.maxPieceSize)
			require.NoError(t, err)
			assert.Len(t, pieces, tt.wantPieces)

			for _, p := range pieces {
				assert.LessOrEqual(t, len(p), tt.maxPieceSize)
			}

			assert.True(t, bytes.Equal(data, Join(pieces)))
		})
	}
}

func TestSplit_InvalidPieceSize(t *testing.T) {
	_, err := Split([]byte("abc"), 0)
	require.ErrorIs(t, err, ErrInvalidPieceSize)

	_, err = Split([]byte("abc"), -1)
	require.ErrorIs(t, err, ErrInvalidPieceSize)
}

func TestSplit_PiecesAreCopies(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	pieces, err := Split(data, 2)
	require.NoError(t, err)

	data[0] = 99
	assert.Equal(t, byte(1), pieces[0][0])
}

func TestJoin_Empty(t *testing.T) {
	assert.Empty(t, Join(nil))
	assert.Empty(t, Join([][]byte{}))
}
