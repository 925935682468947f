package engine

import (
	"sync/atomic"

	"github.com/hailam/mychess/internal/board"
)

// Infinity bounds every reachable score, mates included.
const Infinity = 1 << 30

// Searcher runs the recursive search over one position at a time. The
// position is mutated with Push/Pop during the search and restored on
// return.
type Searcher struct {
	tt       *TranspositionTable
	nodes    uint64
	stopFlag atomic.Bool
}

// NewSearcher creates a searcher backed by tt.
func NewSearcher(tt *TranspositionTable) *Searcher {
	return &Searcher{tt: tt}
}

// Stop asks a running search to unwind. Safe to call from any goroutine.
func (s *Searcher) Stop() {
	s.stopFlag.Store(true)
}

// Reset clears the stop flag and node counter for a new search.
func (s *Searcher) Reset() {
	s.stopFlag.Store(false)
	s.nodes = 0
}

// Nodes returns the number of nodes visited since Reset.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// IsStopped returns true if the search has been stopped.
func (s *Searcher) IsStopped() bool {
	return s.stopFlag.Load()
}

// Search is a depth-limited minimax search with alpha-beta pruning over
// White-positive scores. maximizing is true when White is to move.
// Results are memoised in the transposition table under
// (position key, depth, maximizing).
func (s *Searcher) Search(pos Position, depth, alpha, beta int, maximizing bool) int {
	s.nodes++
	if s.IsStopped() {
		return 0
	}

	key := TTKey{Hash: pos.Key(), Depth: depth, Maximizing: maximizing}
	if e, ok := s.tt.Probe(key); ok && e.usable(alpha, beta) {
		return int(e.Score)
	}

	if depth <= 0 || isGameOver(pos) {
		score, flag := s.leaf(pos, depth, alpha, beta)
		if !s.IsStopped() {
			s.tt.Store(key, score, flag)
		}
		return score
	}

	origAlpha, origBeta := alpha, beta
	moves := orderMoves(pos, pos.LegalMoves())

	var best int
	if maximizing {
		best = -Infinity
		for _, m := range moves {
			score, ok := withMove(pos, m, func() int {
				return s.Search(pos, depth-1, alpha, beta, false)
			})
			if !ok {
				continue
			}
			if s.IsStopped() {
				break
			}
			best = max(best, score)
			alpha = max(alpha, best)
			if beta <= alpha {
				break
			}
		}
	} else {
		best = Infinity
		for _, m := range moves {
			score, ok := withMove(pos, m, func() int {
				return s.Search(pos, depth-1, alpha, beta, true)
			})
			if !ok {
				continue
			}
			if s.IsStopped() {
				break
			}
			best = min(best, score)
			beta = min(beta, best)
			if beta <= alpha {
				break
			}
		}
	}

	if !s.IsStopped() {
		s.tt.Store(key, best, boundFlag(best, origAlpha, origBeta))
	}
	return best
}

// leaf resolves a horizon or game-over node. A mate found with depth still
// in hand outranks one found later, so the engine plays the quickest mate.
func (s *Searcher) leaf(pos Position, depth, alpha, beta int) (int, TTFlag) {
	if pos.IsCheckmate() {
		if pos.SideToMove() == board.White {
			return -(MateScore + depth), TTExact
		}
		return MateScore + depth, TTExact
	}

	var score int
	if pos.SideToMove() == board.White {
		score = s.Quiescence(pos, alpha, beta)
	} else {
		score = -s.Quiescence(pos, -beta, -alpha)
	}
	return score, boundFlag(score, alpha, beta)
}

// Quiescence extends the search along captures only, so the horizon never
// falls in the middle of an exchange. Scores are from the side to move's
// point of view (negamax) and always lie within [alpha, beta].
func (s *Searcher) Quiescence(pos Position, alpha, beta int) int {
	s.nodes++

	standPat := pos.SideToMove().Sign() * Evaluate(pos)
	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}
	if s.IsStopped() {
		return alpha
	}

	for _, m := range captures(pos) {
		score, ok := withMove(pos, m, func() int {
			return -s.Quiescence(pos, -beta, -alpha)
		})
		if !ok {
			continue
		}
		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}
	return alpha
}
