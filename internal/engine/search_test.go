package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuiescenceStaysInWindow(t *testing.T) {
	fens := []string{
		kiwipeteFEN,
		"4k3/1p6/8/3q4/4P3/8/8/1Q2K3 w - - 0 1",
		"r1bqkbnr/pppp1ppp/2n5/4p3/3PP3/5N2/PPP2PPP/RNBQKB1R b KQkq - 0 3",
	}
	windows := [][2]int{{-Infinity, Infinity}, {-50, 50}, {0, 1}, {-2000, -1000}, {1000, 2000}}

	s := NewSearcher(NewTranspositionTable(1))
	for _, fen := range fens {
		pos := mustFEN(t, fen)
		for _, w := range windows {
			score := s.Quiescence(pos, w[0], w[1])
			assert.GreaterOrEqual(t, score, w[0], "%s %v", fen, w)
			assert.LessOrEqual(t, score, w[1], "%s %v", fen, w)
		}
		assert.Equal(t, fen, pos.FEN(), "position restored")
	}
}

func TestQuiescenceSeesWinningCapture(t *testing.T) {
	// Stand pat is roughly even, but the pawn wins the queen.
	pos := mustFEN(t, "4k3/8/8/3q4/4P3/8/8/3QK3 w - - 0 1")
	s := NewSearcher(NewTranspositionTable(1))

	standPat := Evaluate(pos)
	score := s.Quiescence(pos, -Infinity, Infinity)
	assert.Greater(t, score, standPat+QueenValue/2)
}

func TestSearchFindsMateInOne(t *testing.T) {
	pos := mustFEN(t, mateInOneFEN)
	s := NewSearcher(NewTranspositionTable(1))

	score := s.Search(pos, 2, -Infinity, Infinity, true)
	assert.True(t, IsMateScore(score))
	assert.Positive(t, score)
	assert.Equal(t, mateInOneFEN, pos.FEN())
}

func TestSearchPrefersFasterMate(t *testing.T) {
	pos := mustFEN(t, mateInOneFEN)
	s := NewSearcher(NewTranspositionTable(1))

	m := mustMove(t, pos, "a1a8")
	require.NoError(t, pos.Push(m))
	mateNow := s.Search(pos, 2, -Infinity, Infinity, false)
	pos.Pop()

	assert.Equal(t, MateScore+2, mateNow, "mate found with plies to spare scores higher")
}

func TestSearchStoppedReturnsQuickly(t *testing.T) {
	pos := mustFEN(t, kiwipeteFEN)
	s := NewSearcher(NewTranspositionTable(1))
	s.Stop()

	assert.Equal(t, 0, s.Search(pos, 6, -Infinity, Infinity, true))
	assert.EqualValues(t, 1, s.Nodes())
	assert.Equal(t, 0, s.tt.Len(), "stopped results are not cached")

	s.Reset()
	assert.False(t, s.IsStopped())
	assert.Zero(t, s.Nodes())
}

func TestSearchUsesCache(t *testing.T) {
	pos := mustFEN(t, kiwipeteFEN)
	tt := NewTranspositionTable(1)
	s := NewSearcher(tt)

	first := s.Search(pos, 2, -Infinity, Infinity, true)
	cold := s.Nodes()

	s.Reset()
	second := s.Search(pos, 2, -Infinity, Infinity, true)

	assert.Equal(t, first, second)
	assert.Less(t, s.Nodes(), cold)
	assert.Positive(t, tt.Len())
}
