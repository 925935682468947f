package board

import "github.com/notnil/chess"

// Conversions between this package's compact types and notnil/chess.

var fromChessPieceType = map[chess.PieceType]PieceType{
	chess.Pawn:   Pawn,
	chess.Knight: Knight,
	chess.Bishop: Bishop,
	chess.Rook:   Rook,
	chess.Queen:  Queen,
	chess.King:   King,
}

func fromChessColor(c chess.Color) Color {
	switch c {
	case chess.White:
		return White
	case chess.Black:
		return Black
	}
	return NoColor
}

func fromChessPiece(p chess.Piece) Piece {
	if p == chess.NoPiece {
		return NoPiece
	}
	pt, ok := fromChessPieceType[p.Type()]
	if !ok {
		return NoPiece
	}
	return NewPiece(pt, fromChessColor(p.Color()))
}

func fromChessSquare(sq chess.Square) Square {
	if sq < chess.A1 || sq > chess.H8 {
		return NoSquare
	}
	return Square(sq)
}

func fromChessMove(m *chess.Move) Move {
	from, to := fromChessSquare(m.S1()), fromChessSquare(m.S2())
	if promo, ok := fromChessPieceType[m.Promo()]; ok {
		return NewPromotion(from, to, promo)
	}
	return NewMove(from, to)
}

func castlingMask(cr chess.CastleRights) uint8 {
	var mask uint8
	if cr.CanCastle(chess.White, chess.KingSide) {
		mask |= castleWhiteKing
	}
	if cr.CanCastle(chess.White, chess.QueenSide) {
		mask |= castleWhiteQueen
	}
	if cr.CanCastle(chess.Black, chess.KingSide) {
		mask |= castleBlackKing
	}
	if cr.CanCastle(chess.Black, chess.QueenSide) {
		mask |= castleBlackQueen
	}
	return mask
}

// castlingString renders a mask as the FEN castling field.
func castlingString(mask uint8) string {
	s := ""
	if mask&castleWhiteKing != 0 {
		s += "K"
	}
	if mask&castleWhiteQueen != 0 {
		s += "Q"
	}
	if mask&castleBlackKing != 0 {
		s += "k"
	}
	if mask&castleBlackQueen != 0 {
		s += "q"
	}
	if s == "" {
		return "-"
	}
	return s
}
