package board

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/notnil/chess"
)

// ErrInvalidFEN is returned for malformed or impossible FEN strings.
var ErrInvalidFEN = errors.New("invalid FEN")

// ParseFEN builds a Position from a FEN string. The half-move and full-move
// counters are optional.
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return nil, fmt.Errorf("%w: need at least 4 fields, got %d", ErrInvalidFEN, len(parts))
	}
	if len(parts) == 4 {
		parts = append(parts, "0", "1")
	} else if len(parts) == 5 {
		parts = append(parts, "1")
	}

	// notnil/chess assumes one king per side, so check placement first.
	if err := checkPlacement(parts[0]); err != nil {
		return nil, err
	}

	opt, err := chess.FEN(strings.Join(parts, " "))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	f := newFrame(chess.NewGame(opt).Position(), NoMove)

	return &Position{frames: []*frame{f}}, nil
}

// checkPlacement validates the piece placement field: eight ranks, exactly
// one king per side and no pawns on the first or last rank.
func checkPlacement(placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("%w: need 8 ranks, got %d", ErrInvalidFEN, len(ranks))
	}
	var whiteKings, blackKings int
	for i, rank := range ranks {
		for _, ch := range rank {
			switch ch {
			case 'K':
				whiteKings++
			case 'k':
				blackKings++
			case 'P', 'p':
				if i == 0 || i == 7 {
					return fmt.Errorf("%w: pawn on rank %d", ErrInvalidFEN, 8-i)
				}
			}
		}
	}
	if whiteKings != 1 || blackKings != 1 {
		return fmt.Errorf("%w: each side needs exactly one king", ErrInvalidFEN)
	}
	return nil
}

// buildFEN renders a placement and state fields as FEN with fresh counters.
func buildFEN(squares *[64]Piece, side Color, castling string, ep Square) string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			pc := squares[NewSquare(file, rank)]
			if pc == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(pc.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	stm := "w"
	if side == Black {
		stm = "b"
	}
	return fmt.Sprintf("%s %s %s %s 0 1", sb.String(), stm, castling, ep)
}
