package board

// Color is the side a piece belongs to.
type Color uint8

const (
	White Color = iota
	Black
	NoColor
)

// Other returns the opposing side.
func (c Color) Other() Color {
	return c ^ 1
}

// Sign is +1 for White and -1 for Black, the factor that turns a
// White-positive score into the side's own point of view.
func (c Color) Sign() int {
	if c == Black {
		return -1
	}
	return 1
}

func (c Color) String() string {
	switch c {
	case White:
		return "White"
	case Black:
		return "Black"
	}
	return "NoColor"
}

// PieceType is the kind of a piece regardless of colour.
type PieceType uint8

const (
	Pawn PieceType = iota
	Knight
	Bishop
	Rook
	Queen
	King
	NoPieceType
)

var pieceTypeNames = [...]string{"Pawn", "Knight", "Bishop", "Rook", "Queen", "King", "None"}

func (pt PieceType) String() string {
	if pt > NoPieceType {
		return "None"
	}
	return pieceTypeNames[pt]
}

// Char is the lowercase FEN letter of the piece type.
func (pt PieceType) Char() byte {
	if pt >= NoPieceType {
		return ' '
	}
	return "pnbrqk"[pt]
}

// IsMinor reports knights and bishops.
func (pt PieceType) IsMinor() bool {
	return pt == Knight || pt == Bishop
}

// Piece packs a type and a colour: type + colour*6.
type Piece uint8

const NoPiece Piece = 12

// NewPiece combines a type and a colour.
func NewPiece(pt PieceType, c Color) Piece {
	if pt >= NoPieceType || c >= NoColor {
		return NoPiece
	}
	return Piece(pt) + Piece(c)*6
}

// Type returns the piece's kind.
func (p Piece) Type() PieceType {
	if p >= NoPiece {
		return NoPieceType
	}
	return PieceType(p % 6)
}

// Color returns the piece's side.
func (p Piece) Color() Color {
	if p >= NoPiece {
		return NoColor
	}
	return Color(p / 6)
}

// Flip keeps the type and swaps the colour.
func (p Piece) Flip() Piece {
	if p >= NoPiece {
		return NoPiece
	}
	return NewPiece(p.Type(), p.Color().Other())
}

// String is the FEN letter, uppercase for White.
func (p Piece) String() string {
	if p >= NoPiece {
		return "."
	}
	return string("PNBRQKpnbrqk"[p])
}

// materialPoints are the conventional pawn-unit values used when the game
// reports how much material a player has left.
var materialPoints = [7]int{1, 3, 3, 5, 9, 0, 0}
