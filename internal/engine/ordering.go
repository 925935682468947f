package engine

import (
	"slices"

	"github.com/hailam/mychess/internal/board"
)

// CaptureBase lifts every capture above every quiet move.
const CaptureBase = 10000

// scoreMove is the ordering key of m: 0 for quiet moves, and for captures
// CaptureBase + victim - aggressor (most valuable victim, least valuable
// aggressor first).
func scoreMove(pos Position, m board.Move) int {
	if !pos.IsCapture(m) {
		return 0
	}

	victim := pos.CapturedPiece(m).Type()
	aggressor := pos.PieceAt(m.From()).Type()

	return CaptureBase + pieceValues[victim] - pieceValues[aggressor]
}

// orderMoves sorts moves in place, best first. The sort is stable so moves
// with equal keys keep their incoming (possibly shuffled) order.
func orderMoves(pos Position, moves []board.Move) []board.Move {
	type scored struct {
		move  board.Move
		score int
	}
	list := make([]scored, len(moves))
	for i, m := range moves {
		list[i] = scored{m, scoreMove(pos, m)}
	}
	slices.SortStableFunc(list, func(a, b scored) int {
		return b.score - a.score
	})
	for i := range list {
		moves[i] = list[i].move
	}
	return moves
}

// captures returns the capturing moves of pos, ordered.
func captures(pos Position) []board.Move {
	moves := pos.LegalMoves()
	n := 0
	for _, m := range moves {
		if pos.IsCapture(m) {
			moves[n] = m
			n++
		}
	}
	return orderMoves(pos, moves[:n])
}
