package board

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// frame is one immutable node of the make/unmake stack.
type frame struct {
	pos     *chess.Position
	move    Move // move that produced this frame; NoMove at the root
	squares [64]Piece
	key     uint64

	// Filled on first use.
	generated bool
	valid     []*chess.Move
	legal     []Move

	checkKnown bool
	inCheck    bool
}

func newFrame(cp *chess.Position, move Move) *frame {
	f := &frame{pos: cp, move: move}
	for i := range f.squares {
		f.squares[i] = NoPiece
	}
	for sq, p := range cp.Board().SquareMap() {
		if s := fromChessSquare(sq); s < NoSquare {
			f.squares[s] = fromChessPiece(p)
		}
	}
	f.key = computeKey(&f.squares, fromChessColor(cp.Turn()),
		castlingMask(cp.CastleRights()), fromChessSquare(cp.EnPassantSquare()))
	return f
}

func (f *frame) generate() {
	if f.generated {
		return
	}
	f.generated = true
	f.valid = f.pos.ValidMoves()
	f.legal = make([]Move, len(f.valid))
	for i, cm := range f.valid {
		f.legal[i] = fromChessMove(cm)
	}
}

func (f *frame) find(m Move) *chess.Move {
	f.generate()
	for i, lm := range f.legal {
		if lm == m {
			return f.valid[i]
		}
	}
	return nil
}

// Position is a chess position with a make/unmake stack. Each Push stores
// the successor as a new immutable frame, so Pop restores the previous
// state exactly (placement, side to move, castling and en passant rights).
// A Position is not safe for concurrent use; Clone it per goroutine.
type Position struct {
	frames []*frame
}

// NewPosition returns the standard starting position.
func NewPosition() *Position {
	return &Position{frames: []*frame{newFrame(chess.NewGame().Position(), NoMove)}}
}

// Clone returns an independent copy of the current position. Move history
// is not carried over.
func (p *Position) Clone() *Position {
	c, err := ParseFEN(p.FEN())
	if err != nil {
		// FEN produced by the library always parses back.
		return &Position{frames: []*frame{newFrame(p.top().pos, NoMove)}}
	}
	return c
}

func (p *Position) top() *frame {
	return p.frames[len(p.frames)-1]
}

// LegalMoves returns a fresh slice of every legal move; callers may reorder it.
func (p *Position) LegalMoves() []Move {
	f := p.top()
	f.generate()
	out := make([]Move, len(f.legal))
	copy(out, f.legal)
	return out
}

// IsLegal reports whether m is one of the current legal moves.
func (p *Position) IsLegal(m Move) bool {
	return p.top().find(m) != nil
}

// Push plays m. Moves outside the legal list are rejected and the position
// is left untouched.
func (p *Position) Push(m Move) error {
	cm := p.top().find(m)
	if cm == nil {
		return fmt.Errorf("push %s: %w", m, ErrIllegalMove)
	}
	f := newFrame(p.top().pos.Update(cm), m)
	f.checkKnown, f.inCheck = true, cm.HasTag(chess.Check)
	p.frames = append(p.frames, f)
	return nil
}

// Pop takes back the last pushed move. It is a no-op at the root.
func (p *Position) Pop() {
	if len(p.frames) > 1 {
		p.frames[len(p.frames)-1] = nil
		p.frames = p.frames[:len(p.frames)-1]
	}
}

// Ply is the number of moves pushed since the position was created.
func (p *Position) Ply() int {
	return len(p.frames) - 1
}

// LastMove returns the most recently pushed move, or NoMove.
func (p *Position) LastMove() Move {
	return p.top().move
}

// SideToMove returns the colour whose turn it is.
func (p *Position) SideToMove() Color {
	return fromChessColor(p.top().pos.Turn())
}

// PieceAt returns the piece on sq, or NoPiece.
func (p *Position) PieceAt(sq Square) Piece {
	if sq >= NoSquare {
		return NoPiece
	}
	return p.top().squares[sq]
}

// IsCapture reports whether m takes a piece, en passant included.
func (p *Position) IsCapture(m Move) bool {
	f := p.top()
	if f.squares[m.To()] != NoPiece {
		return true
	}
	mover := f.squares[m.From()]
	return mover.Type() == Pawn && m.From().File() != m.To().File()
}

// CapturedPiece returns the piece m removes from the board, or NoPiece.
func (p *Position) CapturedPiece(m Move) Piece {
	f := p.top()
	if victim := f.squares[m.To()]; victim != NoPiece {
		return victim
	}
	if p.IsCapture(m) {
		return NewPiece(Pawn, f.squares[m.From()].Color().Other())
	}
	return NoPiece
}

// Key is the Zobrist key of the current position.
func (p *Position) Key() uint64 {
	return p.top().key
}

// InCheck reports whether the side to move is in check. After a Push the
// answer is the check tag of the move played; for a position set up from
// FEN it is derived once and cached.
func (p *Position) InCheck() bool {
	f := p.top()
	if !f.checkKnown {
		f.checkKnown, f.inCheck = true, rootInCheck(f)
	}
	return f.inCheck
}

// rootInCheck asks the collaborator whether the other side, if it were its
// turn, could capture the king. The other side's own king is lifted off the
// board first so a pinned checker still counts.
func rootInCheck(f *frame) bool {
	side := fromChessColor(f.pos.Turn())
	squares := f.squares
	king := NoSquare
	for sq, pc := range squares {
		switch pc {
		case NewPiece(King, side):
			king = Square(sq)
		case NewPiece(King, side.Other()):
			squares[sq] = NoPiece
		}
	}
	if king == NoSquare {
		return false
	}

	opt, err := chess.FEN(buildFEN(&squares, side.Other(), "-", NoSquare))
	if err != nil {
		return false
	}
	for _, m := range chess.NewGame(opt).Position().ValidMoves() {
		if fromChessSquare(m.S2()) == king {
			return true
		}
	}
	return false
}

// IsCheckmate reports whether the side to move is mated.
func (p *Position) IsCheckmate() bool {
	return p.top().pos.Status() == chess.Checkmate
}

// IsStalemate reports whether the side to move has no legal move and is
// not in check.
func (p *Position) IsStalemate() bool {
	return p.top().pos.Status() == chess.Stalemate
}

// IsGameOver reports checkmate, stalemate or insufficient material.
func (p *Position) IsGameOver() bool {
	return p.IsCheckmate() || p.IsStalemate() || p.IsInsufficientMaterial()
}

// FEN returns the Forsyth-Edwards description of the position.
func (p *Position) FEN() string {
	return p.top().pos.String()
}

// SAN renders a legal move in standard algebraic notation.
func (p *Position) SAN(m Move) (string, error) {
	f := p.top()
	cm := f.find(m)
	if cm == nil {
		return "", fmt.Errorf("san %s: %w", m, ErrIllegalMove)
	}
	return chess.AlgebraicNotation{}.Encode(f.pos, cm), nil
}

// ParseMove resolves a move given in UCI ("g1f3") or SAN ("Nf3") notation
// against the legal moves of the position.
func (p *Position) ParseMove(s string) (Move, error) {
	if m, err := parseUCI(s); err == nil {
		if p.IsLegal(m) {
			return m, nil
		}
		return NoMove, fmt.Errorf("parse %q: %w", s, ErrIllegalMove)
	}
	f := p.top()
	cm, err := chess.AlgebraicNotation{}.Decode(f.pos, s)
	if err != nil {
		return NoMove, fmt.Errorf("parse %q: %w", s, ErrIllegalMove)
	}
	m := fromChessMove(cm)
	if !p.IsLegal(m) {
		return NoMove, fmt.Errorf("parse %q: %w", s, ErrIllegalMove)
	}
	return m, nil
}

// Mirror returns the colour-reversed position: the board reflected
// vertically, colours swapped and the other side to move. Evaluations of a
// position and its mirror are negatives of each other.
func (p *Position) Mirror() *Position {
	f := p.top()
	var squares [64]Piece
	for sq := A1; sq <= H8; sq++ {
		squares[sq.Mirror()] = f.squares[sq].Flip()
	}
	mask := castlingMask(f.pos.CastleRights())
	mirrored := (mask&(castleWhiteKing|castleWhiteQueen))<<2 | (mask&(castleBlackKing|castleBlackQueen))>>2
	ep := fromChessSquare(f.pos.EnPassantSquare())
	if ep < NoSquare {
		ep = ep.Mirror()
	}
	fen := buildFEN(&squares, p.SideToMove().Other(), castlingString(mirrored), ep)
	mp, err := ParseFEN(fen)
	if err != nil {
		return p.Clone()
	}
	return mp
}

// Material sums pawn-unit material for one side (pawn 1, minor 3, rook 5,
// queen 9; kings excluded).
func (p *Position) Material(c Color) int {
	total := 0
	for _, pc := range p.top().squares {
		if pc != NoPiece && pc.Color() == c {
			total += materialPoints[pc.Type()]
		}
	}
	return total
}

// String draws the board from White's side.
func (p *Position) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			sb.WriteString(p.PieceAt(NewSquare(file, rank)).String())
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", p.SideToMove())
	fmt.Fprintf(&sb, "FEN: %s\n", p.FEN())
	fmt.Fprintf(&sb, "Key: %016x\n", p.Key())
	return sb.String()
}
