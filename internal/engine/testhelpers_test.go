package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hailam/mychess/internal/board"
)

const (
	kiwipeteFEN  = "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1"
	mateInOneFEN = "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1"
	stalemateFEN = "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"
)

func mustFEN(t *testing.T, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	require.NoError(t, err)
	return pos
}

func mustMove(t *testing.T, pos *board.Position, s string) board.Move {
	t.Helper()
	m, err := pos.ParseMove(s)
	require.NoError(t, err)
	return m
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	eng, err := NewEngine(Options{Seed: 1, HashMB: 1})
	require.NoError(t, err)
	return eng
}
