package board

import (
	"errors"
	"fmt"
)

// ErrIllegalMove is returned when a move is not in the position's legal list.
var ErrIllegalMove = errors.New("illegal move")

// Move is an immutable from/to pair with an optional promotion, packed into
// 16 bits:
// bits 0-5:   from square
// bits 6-11:  to square
// bits 12-14: promotion (0=none, 1=knight, 2=bishop, 3=rook, 4=queen)
type Move uint16

// NoMove is the zero move (a1a1), never legal.
const NoMove Move = 0

// NewMove creates a move without promotion.
func NewMove(from, to Square) Move {
	return Move(from) | Move(to)<<6
}

// NewPromotion creates a promoting move.
func NewPromotion(from, to Square, promo PieceType) Move {
	if promo < Knight || promo > Queen {
		return NewMove(from, to)
	}
	return NewMove(from, to) | Move(promo)<<12
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x3F)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

// Promotion returns the promotion piece, or NoPieceType.
func (m Move) Promotion() PieceType {
	p := PieceType((m >> 12) & 7)
	if p == Pawn {
		return NoPieceType
	}
	return p
}

// IsPromotion reports whether the move promotes a pawn.
func (m Move) IsPromotion() bool {
	return m.Promotion() != NoPieceType
}

// String returns the move in UCI notation ("e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string(m.Promotion().Char())
	}
	return s
}

// parseUCI decodes UCI notation without checking legality.
func parseUCI(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NoMove, fmt.Errorf("invalid move string %q", s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}
	if len(s) == 4 {
		return NewMove(from, to), nil
	}
	switch s[4] {
	case 'n':
		return NewPromotion(from, to, Knight), nil
	case 'b':
		return NewPromotion(from, to, Bishop), nil
	case 'r':
		return NewPromotion(from, to, Rook), nil
	case 'q':
		return NewPromotion(from, to, Queen), nil
	}
	return NoMove, fmt.Errorf("invalid promotion in %q", s)
}
