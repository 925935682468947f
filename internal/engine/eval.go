// Package engine implements the computer opponent: a material and
// piece-square evaluator, MVV-LVA move ordering, quiescence search and a
// memoised alpha-beta search driven by a difficulty level.
package engine

import (
	"strconv"

	"github.com/hailam/mychess/internal/board"
)

// Evaluation constants
const (
	PawnValue   = 100
	KnightValue = 320
	BishopValue = 330
	RookValue   = 500
	QueenValue  = 900
	KingValue   = 20000

	// MateScore is the magnitude of a checkmate. Any score at least this
	// large denotes a forced mate rather than material.
	MateScore = 99999
)

// Piece values indexed by board.PieceType.
var pieceValues = [7]int{PawnValue, KnightValue, BishopValue, RookValue, QueenValue, KingValue, 0}

// Piece-square tables, laid out as seen from White with rank 8 on the
// first row. White reads table[sq.Mirror()], Black reads table[sq].

var pawnPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	50, 50, 50, 50, 50, 50, 50, 50,
	10, 10, 20, 30, 30, 20, 10, 10,
	5, 5, 10, 25, 25, 10, 5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, -5, -10, 0, 0, -10, -5, 5,
	5, 10, 10, -20, -20, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightPST = [64]int{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

var bishopPST = [64]int{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

var rookPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, 10, 10, 10, 10, 5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	0, 0, 0, 5, 5, 0, 0, 0,
}

var queenPST = [64]int{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-5, 0, 5, 5, 5, 5, 0, -5,
	0, 0, 5, 5, 5, 5, 0, -5,
	-10, 5, 5, 5, 5, 5, 0, -10,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

// King shelter behind the pawns while there is material to attack it.
var kingMidgamePST = [64]int{
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	20, 20, 0, 0, 0, 0, 20, 20,
	20, 30, 10, 0, 0, 10, 30, 20,
}

// Centralised king once the heavy pieces are gone.
var kingEndgamePST = [64]int{
	-50, -40, -30, -20, -20, -30, -40, -50,
	-30, -20, -10, 0, 0, -10, -20, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -30, 0, 0, 0, 0, -30, -30,
	-50, -30, -30, -30, -30, -30, -30, -50,
}

var psts = [5]*[64]int{&pawnPST, &knightPST, &bishopPST, &rookPST, &queenPST}

// Evaluate scores pos from White's point of view. Checkmate is ±MateScore
// (negative when White is the side mated), stalemate and insufficient
// material are exactly 0, anything else is material plus piece-square
// bonuses. It has no side effects.
func Evaluate(pos Position) int {
	if pos.IsCheckmate() {
		if pos.SideToMove() == board.White {
			return -MateScore
		}
		return MateScore
	}
	if pos.IsStalemate() || pos.IsInsufficientMaterial() {
		return 0
	}

	endgame := IsEndgame(pos)
	score := 0
	for sq := board.A1; sq <= board.H8; sq++ {
		piece := pos.PieceAt(sq)
		if piece == board.NoPiece {
			continue
		}
		c := piece.Color()
		score += c.Sign() * (pieceValues[piece.Type()] + pstBonus(piece.Type(), c, sq, endgame))
	}
	return score
}

// pstBonus looks up the piece-square bonus for a piece of colour c on sq.
func pstBonus(pt board.PieceType, c board.Color, sq board.Square, endgame bool) int {
	idx := sq
	if c == board.White {
		idx = sq.Mirror()
	}
	if pt == board.King {
		if endgame {
			return kingEndgamePST[idx]
		}
		return kingMidgamePST[idx]
	}
	return psts[pt][idx]
}

// IsEndgame reports the phase used to pick the king table: no queens on the
// board, or queens with at most one rook or minor piece left in total.
func IsEndgame(pos Position) bool {
	queens, others := 0, 0
	for sq := board.A1; sq <= board.H8; sq++ {
		pt := pos.PieceAt(sq).Type()
		switch {
		case pt == board.Queen:
			queens++
		case pt == board.Rook || pt.IsMinor():
			others++
		}
	}
	return queens == 0 || others <= 1
}

// IsMateScore reports whether score encodes a forced mate.
func IsMateScore(score int) bool {
	return score >= MateScore || score <= -MateScore
}

// ScoreToString formats a White-positive score for display: pawns with two
// decimals, or "Mate" / "Mated" for mate scores.
func ScoreToString(score int) string {
	if score >= MateScore {
		return "Mate"
	}
	if score <= -MateScore {
		return "Mated"
	}

	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	cents := strconv.Itoa(score % 100)
	if len(cents) < 2 {
		cents = "0" + cents
	}
	return sign + strconv.Itoa(score/100) + "." + cents
}
