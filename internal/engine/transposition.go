package engine

// TTFlag tells how a stored score relates to the true value of the node.
type TTFlag uint8

const (
	TTExact      TTFlag = iota + 1 // Exact score
	TTLowerBound                   // Failed high (beta cutoff)
	TTUpperBound                   // Failed low
)

// TTKey identifies a search node: the position, the remaining depth and
// whether White (the maximizing side) was to move.
type TTKey struct {
	Hash       uint64
	Depth      int
	Maximizing bool
}

// TTEntry is one slot of the transposition table.
type TTEntry struct {
	Hash       uint64
	Score      int32
	Depth      int8
	Maximizing bool
	Flag       TTFlag // zero means the slot is empty
	Age        uint8
}

const ttEntrySize = 24 // bytes per TTEntry, padding included

// TranspositionTable is a fixed-capacity cache of search results. A slot
// is overwritten when it holds an entry from an older search or one at
// most as deep as the incoming result, so memory stays bounded for the
// life of the process. It is not safe for concurrent use; the Engine runs
// one search at a time.
type TranspositionTable struct {
	entries []TTEntry
	mask    uint64
	age     uint8
	used    int

	hits   uint64
	probes uint64
}

// NewTranspositionTable creates a table of roughly sizeMB megabytes.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	if sizeMB < 1 {
		sizeMB = 1
	}
	n := roundDownToPowerOf2(uint64(sizeMB) * 1024 * 1024 / ttEntrySize)
	return &TranspositionTable{
		entries: make([]TTEntry, n),
		mask:    n - 1,
	}
}

// roundDownToPowerOf2 rounds n down to the nearest power of 2.
func roundDownToPowerOf2(n uint64) uint64 {
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

func (tt *TranspositionTable) index(k TTKey) uint64 {
	h := k.Hash ^ uint64(k.Depth)*0x9E3779B97F4A7C15
	if k.Maximizing {
		h ^= 0xD6E8FEB86659FD93
	}
	return h & tt.mask
}

// Probe returns the entry stored for k, if any.
func (tt *TranspositionTable) Probe(k TTKey) (TTEntry, bool) {
	tt.probes++
	e := tt.entries[tt.index(k)]
	if e.Flag == 0 || e.Hash != k.Hash || int(e.Depth) != k.Depth || e.Maximizing != k.Maximizing {
		return TTEntry{}, false
	}
	tt.hits++
	return e, true
}

// Store records a resolved node.
func (tt *TranspositionTable) Store(k TTKey, score int, flag TTFlag) {
	e := &tt.entries[tt.index(k)]
	if e.Flag != 0 && e.Age == tt.age && int(e.Depth) > k.Depth {
		return
	}
	if e.Flag == 0 {
		tt.used++
	}
	*e = TTEntry{
		Hash:       k.Hash,
		Score:      int32(score),
		Depth:      int8(k.Depth),
		Maximizing: k.Maximizing,
		Flag:       flag,
		Age:        tt.age,
	}
}

// NewSearch starts a new generation; entries from earlier generations
// become the first to be replaced.
func (tt *TranspositionTable) NewSearch() {
	tt.age++
}

// Clear empties the table.
func (tt *TranspositionTable) Clear() {
	clear(tt.entries)
	tt.age = 0
	tt.used = 0
	tt.hits = 0
	tt.probes = 0
}

// Len returns the number of occupied slots.
func (tt *TranspositionTable) Len() int {
	return tt.used
}

// Size returns the number of slots.
func (tt *TranspositionTable) Size() int {
	return len(tt.entries)
}

// HashFull returns the permille of slots in use.
func (tt *TranspositionTable) HashFull() int {
	return tt.used * 1000 / len(tt.entries)
}

// HitRate returns the cache hit rate as a percentage.
func (tt *TranspositionTable) HitRate() float64 {
	if tt.probes == 0 {
		return 0
	}
	return float64(tt.hits) / float64(tt.probes) * 100
}

// usable reports whether a stored entry settles the node for the window
// [alpha, beta] without searching it again.
func (e TTEntry) usable(alpha, beta int) bool {
	score := int(e.Score)
	switch e.Flag {
	case TTExact:
		return true
	case TTLowerBound:
		return score >= beta
	case TTUpperBound:
		return score <= alpha
	}
	return false
}

// boundFlag classifies a result against the window it was searched with.
func boundFlag(score, alpha, beta int) TTFlag {
	switch {
	case score <= alpha:
		return TTUpperBound
	case score >= beta:
		return TTLowerBound
	}
	return TTExact
}
