package engine

import "github.com/hailam/mychess/internal/board"

// Position is everything the engine needs from the rules collaborator.
// *board.Position implements it.
type Position interface {
	LegalMoves() []board.Move
	Push(m board.Move) error
	Pop()

	SideToMove() board.Color
	PieceAt(sq board.Square) board.Piece
	IsCapture(m board.Move) bool
	CapturedPiece(m board.Move) board.Piece // en passant yields the pawn taken

	IsCheckmate() bool
	IsStalemate() bool
	IsInsufficientMaterial() bool

	// Key must be equal for identical positions (placement, side to move,
	// castling and en passant rights).
	Key() uint64
}

var _ Position = (*board.Position)(nil)

func isGameOver(pos Position) bool {
	return pos.IsCheckmate() || pos.IsStalemate() || pos.IsInsufficientMaterial()
}

// withMove plays m, runs fn and always takes the move back, even if fn
// panics. ok is false when the collaborator refused the move.
func withMove(pos Position, m board.Move, fn func() int) (score int, ok bool) {
	if err := pos.Push(m); err != nil {
		return 0, false
	}
	defer pos.Pop()
	return fn(), true
}
