package board

// Zobrist keys. Generated from a fixed seed so keys are stable across runs.
var (
	zobristPiece      [12][64]uint64
	zobristEnPassant  [8]uint64
	zobristCastling   [16]uint64
	zobristSideToMove uint64
)

func init() {
	initZobrist()
}

// xorshift64*
type prng struct {
	state uint64
}

func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := &prng{state: 0x98F107A2BEEF1234}

	for p := range zobristPiece {
		for sq := range zobristPiece[p] {
			zobristPiece[p][sq] = rng.next()
		}
	}
	for f := range zobristEnPassant {
		zobristEnPassant[f] = rng.next()
	}
	for i := range zobristCastling {
		zobristCastling[i] = rng.next()
	}
	zobristSideToMove = rng.next()
}

// Castling right bits folded into the key.
const (
	castleWhiteKing uint8 = 1 << iota
	castleWhiteQueen
	castleBlackKing
	castleBlackQueen
)

// computeKey hashes a full placement plus side, castling and en passant.
func computeKey(squares *[64]Piece, side Color, castling uint8, ep Square) uint64 {
	var key uint64
	for sq, p := range squares {
		if p != NoPiece {
			key ^= zobristPiece[p][sq]
		}
	}
	if side == Black {
		key ^= zobristSideToMove
	}
	key ^= zobristCastling[castling&15]
	if ep < NoSquare {
		key ^= zobristEnPassant[ep.File()]
	}
	return key
}
