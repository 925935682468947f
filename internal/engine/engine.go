package engine

import (
	"context"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"github.com/hailam/mychess/internal/board"
)

// DefaultHashMB is the transposition table size used when none is given.
const DefaultHashMB = 16

// SearchInfo reports progress after each root move is resolved.
type SearchInfo struct {
	Depth    int
	Move     board.Move // root move just searched
	Score    int        // its White-positive score
	BestMove board.Move // best root move so far
	Nodes    uint64
	HashFull int // Permille of hash table used
}

// SearchLimits constrains an asynchronous search.
type SearchLimits struct {
	MoveTime time.Duration // 0 = no limit
}

// Result is the outcome of a move search.
type Result struct {
	Move    board.Move // NoMove when the side to move has no legal move
	Score   int        // White-positive; 0 for random or fallback moves
	Depth   int        // 0 for random play
	Level   int
	Nodes   uint64
	Elapsed time.Duration
	Stopped bool // the search was cut short by cancellation or time
}

// Options configures an Engine. Zero values select defaults.
type Options struct {
	HashMB     int
	DepthTable DepthTable
	Seed       uint64 // 0 seeds from the clock
	Logger     *zerolog.Logger
}

// Engine is the computer opponent. It owns its transposition table and
// random source and runs at most one search at a time.
type Engine struct {
	mu       sync.Mutex
	searcher *Searcher
	tt       *TranspositionTable
	depths   DepthTable
	rng      *rand.Rand
	logger   zerolog.Logger

	// Cancel funcs of searches started by Go and not yet finished, so Stop
	// reaches a search that has not taken mu yet.
	pendingMu sync.Mutex
	pending   map[uint64]context.CancelFunc
	nextID    uint64

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates an engine from opts.
func NewEngine(opts Options) (*Engine, error) {
	depths := opts.DepthTable
	if depths == nil {
		depths = DefaultDepthTable
	}
	if err := depths.Validate(); err != nil {
		return nil, err
	}

	hashMB := opts.HashMB
	if hashMB <= 0 {
		hashMB = DefaultHashMB
	}

	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	tt := NewTranspositionTable(hashMB)
	return &Engine{
		searcher: NewSearcher(tt),
		tt:       tt,
		depths:   depths.Clone(),
		rng:      rand.New(rand.NewSource(seed)),
		logger:   logger.With().Str("component", "engine").Logger(),
		pending:  make(map[uint64]context.CancelFunc),
	}, nil
}

// ComputeBestMove returns the move to play at the given difficulty level,
// or board.NoMove when there is no legal move. It blocks until the search
// completes. pos is restored before returning.
func (e *Engine) ComputeBestMove(pos Position, level int) board.Move {
	return e.Think(pos, level).Move
}

// Hint suggests a move for the player, searched exactly like the
// engine's own moves.
func (e *Engine) Hint(pos Position, level int) board.Move {
	return e.ComputeBestMove(pos, level)
}

// Think is ComputeBestMove with the full search result.
func (e *Engine) Think(pos Position, level int) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.searcher.Reset()
	return e.run(pos, level)
}

// Go runs the search on its own goroutine and delivers the result on the
// returned channel. Cancelling ctx or exceeding limits.MoveTime stops the
// search early; the result then carries the best move found so far. pos
// belongs to the search until the result arrives.
func (e *Engine) Go(ctx context.Context, pos Position, level int, limits SearchLimits) <-chan Result {
	ctx, cancel := context.WithCancel(ctx)
	id := e.track(cancel)

	out := make(chan Result, 1)
	go func() {
		defer close(out)
		defer e.untrack(id)
		defer cancel()

		e.mu.Lock()
		defer e.mu.Unlock()

		if limits.MoveTime > 0 {
			var cancelTimeout context.CancelFunc
			ctx, cancelTimeout = context.WithTimeout(ctx, limits.MoveTime)
			defer cancelTimeout()
		}
		e.searcher.Reset()
		stop := context.AfterFunc(ctx, e.searcher.Stop)
		defer stop()
		if ctx.Err() != nil {
			e.searcher.Stop()
		}

		out <- e.run(pos, level)
	}()
	return out
}

// Stop interrupts the running search, and any search started by Go that is
// still waiting to run.
func (e *Engine) Stop() {
	e.pendingMu.Lock()
	for _, cancel := range e.pending {
		cancel()
	}
	e.pendingMu.Unlock()
	e.searcher.Stop()
}

func (e *Engine) track(cancel context.CancelFunc) uint64 {
	e.pendingMu.Lock()
	defer e.pendingMu.Unlock()
	e.nextID++
	e.pending[e.nextID] = cancel
	return e.nextID
}

func (e *Engine) untrack(id uint64) {
	e.pendingMu.Lock()
	delete(e.pending, id)
	e.pendingMu.Unlock()
}

func (e *Engine) run(pos Position, level int) Result {
	start := time.Now()
	res := e.think(pos, level)
	res.Nodes = e.searcher.Nodes()
	res.Elapsed = time.Since(start)

	e.logger.Debug().
		Int("level", res.Level).
		Int("depth", res.Depth).
		Str("move", res.Move.String()).
		Str("score", ScoreToString(res.Score)).
		Str("nodes", humanize.Comma(int64(res.Nodes))).
		Dur("elapsed", res.Elapsed).
		Bool("stopped", res.Stopped).
		Msg("search finished")
	return res
}

// Evaluate returns the static evaluation of a position.
func (e *Engine) Evaluate(pos Position) int {
	return Evaluate(pos)
}

// SetDepthTable replaces the difficulty policy.
func (e *Engine) SetDepthTable(t DepthTable) error {
	if err := t.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	e.depths = t.Clone()
	e.mu.Unlock()
	return nil
}

// DepthTable returns a copy of the difficulty policy in use.
func (e *Engine) DepthTable() DepthTable {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.depths.Clone()
}

// Clear empties the transposition table.
func (e *Engine) Clear() {
	e.mu.Lock()
	e.tt.Clear()
	e.mu.Unlock()
}

// HashFull returns the permille of the transposition table in use.
func (e *Engine) HashFull() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tt.HashFull()
}
