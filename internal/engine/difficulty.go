package engine

import (
	"errors"
	"fmt"
	"slices"

	"github.com/hailam/mychess/internal/board"
)

// ErrInvalidDepthTable is returned for depth tables the controller cannot use.
var ErrInvalidDepthTable = errors.New("invalid depth table")

// RandomLevel plays a uniformly random legal move without searching.
const RandomLevel = 1

// DepthTable maps a difficulty level to a search depth in plies. Level 1
// is always a random mover and never appears in the table.
type DepthTable map[int]int

// DefaultDepthTable is the stock difficulty policy.
var DefaultDepthTable = DepthTable{
	2: 2,
	3: 3,
	4: 5,
	5: 6,
}

// Depth resolves a level to a depth. 0 means "play randomly". Levels above
// the largest key use the largest key's depth; levels between keys use the
// nearest lower key; levels below the smallest key use the smallest key.
func (t DepthTable) Depth(level int) int {
	if level <= RandomLevel || len(t) == 0 {
		return 0
	}
	levels := t.Levels()
	i, found := slices.BinarySearch(levels, level)
	switch {
	case found:
		return t[levels[i]]
	case i == 0:
		return t[levels[0]]
	}
	return t[levels[i-1]]
}

// Levels returns the configured levels in increasing order.
func (t DepthTable) Levels() []int {
	levels := make([]int, 0, len(t))
	for l := range t {
		levels = append(levels, l)
	}
	slices.Sort(levels)
	return levels
}

// MaxLevel is the highest configured level, or RandomLevel for an empty table.
func (t DepthTable) MaxLevel() int {
	levels := t.Levels()
	if len(levels) == 0 {
		return RandomLevel
	}
	return levels[len(levels)-1]
}

// Validate checks that every level is above the random level, every depth
// is positive, and depth never decreases as the level rises.
func (t DepthTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidDepthTable)
	}
	prev := 0
	for _, l := range t.Levels() {
		d := t[l]
		if l <= RandomLevel {
			return fmt.Errorf("%w: level %d is reserved for random play", ErrInvalidDepthTable, l)
		}
		if d < 1 {
			return fmt.Errorf("%w: level %d has depth %d", ErrInvalidDepthTable, l, d)
		}
		if d < prev {
			return fmt.Errorf("%w: level %d depth %d is below the previous level's %d", ErrInvalidDepthTable, l, d, prev)
		}
		prev = d
	}
	return nil
}

// Clone returns a copy safe to modify.
func (t DepthTable) Clone() DepthTable {
	c := make(DepthTable, len(t))
	for l, d := range t {
		c[l] = d
	}
	return c
}

// think picks the move for the side to move at the given level. It is the
// single root driver used by both the blocking and the asynchronous API.
func (e *Engine) think(pos Position, level int) Result {
	e.tt.NewSearch()

	moves := pos.LegalMoves()
	if len(moves) == 0 {
		return Result{Move: board.NoMove, Level: level}
	}

	depth := e.depths.Depth(level)
	if depth == 0 {
		return Result{Move: moves[e.rng.Intn(len(moves))], Level: level}
	}

	// Shuffle so equal scores do not always resolve to the same move, then
	// pull captures to the front.
	e.rng.Shuffle(len(moves), func(i, j int) {
		moves[i], moves[j] = moves[j], moves[i]
	})
	orderMoves(pos, moves)

	maximizing := pos.SideToMove() == board.White
	best := board.NoMove
	bestScore := Infinity
	if maximizing {
		bestScore = -Infinity
	}

	for _, m := range moves {
		alpha, beta := -Infinity, Infinity
		if best != board.NoMove {
			if maximizing {
				alpha = bestScore
			} else {
				beta = bestScore
			}
		}

		score, ok := withMove(pos, m, func() int {
			return e.searcher.Search(pos, depth-1, alpha, beta, !maximizing)
		})
		if e.searcher.IsStopped() {
			break
		}
		if !ok {
			continue
		}

		if (maximizing && score > bestScore) || (!maximizing && score < bestScore) {
			best, bestScore = m, score
		}

		if e.OnInfo != nil {
			e.OnInfo(SearchInfo{
				Depth:    depth,
				Move:     m,
				Score:    score,
				BestMove: best,
				Nodes:    e.searcher.Nodes(),
				HashFull: e.tt.HashFull(),
			})
		}
	}

	res := Result{
		Move:    best,
		Score:   bestScore,
		Depth:   depth,
		Level:   level,
		Stopped: e.searcher.IsStopped(),
	}
	if best == board.NoMove {
		res.Move = moves[e.rng.Intn(len(moves))]
		res.Score = 0
	}
	return res
}
