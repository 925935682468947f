package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalStates(t *testing.T) {
	tests := []struct {
		name         string
		fen          string
		checkmate    bool
		stalemate    bool
		insufficient bool
	}{
		// back rank mate, black to move
		{"back rank mate", "R6k/6pp/8/8/8/8/8/K7 b - - 0 1", true, false, false},
		// king can take the rook
		{"not mate", "6Rk/8/8/8/8/8/8/K7 b - - 0 1", false, false, false},
		{"queen stalemate", "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", false, true, false},
		{"bare kings", "8/8/4k3/8/8/3K4/8/8 w - - 0 1", false, false, true},
		{"king and knight", "8/8/4k3/8/8/3K4/6N1/8 w - - 0 1", false, false, true},
		{"same colour bishops", "8/8/4k3/2b5/8/3K4/7B/8 w - - 0 1", false, false, true},
		{"opposite colour bishops", "8/8/4k3/3b4/8/3K4/7B/8 w - - 0 1", false, false, false},
		{"two knights", "8/8/4k3/8/8/3K4/5NN1/8 w - - 0 1", false, false, false},
		{"start", StartFEN, false, false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen)
			require.NoError(t, err)

			assert.Equal(t, tc.checkmate, pos.IsCheckmate(), "checkmate")
			assert.Equal(t, tc.stalemate, pos.IsStalemate(), "stalemate")
			assert.Equal(t, tc.insufficient, pos.IsInsufficientMaterial(), "insufficient material")
			assert.Equal(t, tc.checkmate || tc.stalemate || tc.insufficient, pos.IsGameOver())
		})
	}
}

func TestMateInOneLeadsToCheckmate(t *testing.T) {
	pos, err := ParseFEN("6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
	require.NoError(t, err)

	m, err := pos.ParseMove("a1a8")
	require.NoError(t, err)
	require.NoError(t, pos.Push(m))
	t.Log(pos)

	assert.True(t, pos.IsCheckmate())
	assert.True(t, pos.InCheck())
	assert.Empty(t, pos.LegalMoves())
}
