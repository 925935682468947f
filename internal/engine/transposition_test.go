package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranspositionTableSize(t *testing.T) {
	tt := NewTranspositionTable(1)
	size := tt.Size()
	assert.Equal(t, 0, size&(size-1), "size %d is not a power of two", size)
	assert.LessOrEqual(t, size*ttEntrySize, 1024*1024)
	assert.Equal(t, 0, tt.Len())
	assert.Equal(t, 0, tt.HashFull())
}

func TestTranspositionTableStoreProbe(t *testing.T) {
	tt := NewTranspositionTable(1)
	k := TTKey{Hash: 0xDEADBEEF, Depth: 3, Maximizing: true}

	_, ok := tt.Probe(k)
	assert.False(t, ok)

	tt.Store(k, 150, TTExact)
	e, ok := tt.Probe(k)
	require.True(t, ok)
	assert.EqualValues(t, 150, e.Score)
	assert.Equal(t, TTExact, e.Flag)
	assert.Equal(t, 1, tt.Len())

	// Same position, different depth or side: distinct nodes.
	_, ok = tt.Probe(TTKey{Hash: k.Hash, Depth: 2, Maximizing: true})
	assert.False(t, ok)
	_, ok = tt.Probe(TTKey{Hash: k.Hash, Depth: 3, Maximizing: false})
	assert.False(t, ok)

	tt.Store(k, -40, TTUpperBound)
	e, ok = tt.Probe(k)
	require.True(t, ok)
	assert.EqualValues(t, -40, e.Score)
	assert.Equal(t, 1, tt.Len(), "overwrite does not grow the table")

	assert.Greater(t, tt.HitRate(), 0.0)
}

// collidingKey finds a key with a different hash that maps to k's slot.
func collidingKey(tt *TranspositionTable, k TTKey, depth int) TTKey {
	for h := k.Hash + 1; ; h++ {
		c := TTKey{Hash: h, Depth: depth, Maximizing: k.Maximizing}
		if tt.index(c) == tt.index(k) {
			return c
		}
	}
}

func TestTranspositionTableReplacement(t *testing.T) {
	tt := NewTranspositionTable(1)
	deep := TTKey{Hash: 42, Depth: 5}
	shallow := collidingKey(tt, deep, 1)

	tt.Store(deep, 10, TTExact)
	tt.Store(shallow, 20, TTExact)
	_, ok := tt.Probe(deep)
	assert.True(t, ok, "a shallower result must not evict a deeper one from the same search")
	_, ok = tt.Probe(shallow)
	assert.False(t, ok)

	tt.NewSearch()
	tt.Store(shallow, 20, TTExact)
	_, ok = tt.Probe(shallow)
	assert.True(t, ok, "entries from an older search are replaceable")
	_, ok = tt.Probe(deep)
	assert.False(t, ok)
	assert.Equal(t, 1, tt.Len())
}

func TestTranspositionTableClear(t *testing.T) {
	tt := NewTranspositionTable(1)
	k := TTKey{Hash: 7, Depth: 1}
	tt.Store(k, 1, TTExact)
	tt.Clear()

	_, ok := tt.Probe(k)
	assert.False(t, ok)
	assert.Equal(t, 0, tt.Len())
}

func TestBoundFlags(t *testing.T) {
	assert.Equal(t, TTUpperBound, boundFlag(-10, -10, 10))
	assert.Equal(t, TTLowerBound, boundFlag(10, -10, 10))
	assert.Equal(t, TTExact, boundFlag(0, -10, 10))

	exact := TTEntry{Score: 5, Flag: TTExact}
	lower := TTEntry{Score: 50, Flag: TTLowerBound}
	upper := TTEntry{Score: -50, Flag: TTUpperBound}

	assert.True(t, exact.usable(-Infinity, Infinity))
	assert.True(t, lower.usable(0, 40))
	assert.False(t, lower.usable(0, 60))
	assert.True(t, upper.usable(-40, 0))
	assert.False(t, upper.usable(-60, 0))
	assert.False(t, TTEntry{}.usable(-Infinity, Infinity))
}

func TestRoundDownToPowerOf2(t *testing.T) {
	assert.EqualValues(t, 1, roundDownToPowerOf2(1))
	assert.EqualValues(t, 32, roundDownToPowerOf2(33))
	assert.EqualValues(t, 64, roundDownToPowerOf2(64))
	assert.EqualValues(t, 32768, roundDownToPowerOf2(43690))
}
