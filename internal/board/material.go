package board

// IsInsufficientMaterial reports whether neither side can possibly mate:
// no pawns, rooks or queens, and at most a lone minor piece or only bishops
// that all stand on squares of one colour.
func (p *Position) IsInsufficientMaterial() bool {
	var minors [2]int
	var knights int
	bishopsOnLight, bishopsOnDark := 0, 0

	for sq, pc := range p.top().squares {
		switch pc.Type() {
		case Pawn, Rook, Queen:
			return false
		case Knight:
			minors[pc.Color()]++
			knights++
		case Bishop:
			minors[pc.Color()]++
			if Square(sq).IsLight() {
				bishopsOnLight++
			} else {
				bishopsOnDark++
			}
		}
	}

	// K vs K, K+minor vs K
	if minors[White]+minors[Black] <= 1 {
		return true
	}

	// Bishops only, all on one square colour.
	if knights == 0 && (bishopsOnLight == 0 || bishopsOnDark == 0) {
		return true
	}

	return false
}
