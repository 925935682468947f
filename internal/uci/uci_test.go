package uci

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hailam/mychess/internal/board"
	"github.com/hailam/mychess/internal/engine"
	"github.com/hailam/mychess/internal/storage"
)

func newTestUCI(t *testing.T, cfg Config) (*UCI, *bytes.Buffer) {
	t.Helper()
	eng, err := engine.NewEngine(engine.Options{Seed: 1, HashMB: 1})
	require.NoError(t, err)
	var out bytes.Buffer
	return New(eng, &out, cfg), &out
}

func run(t *testing.T, u *UCI, script ...string) {
	t.Helper()
	require.NoError(t, u.Run(strings.NewReader(strings.Join(script, "\n")+"\n")))
}

func bestMove(t *testing.T, out string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if rest, ok := strings.CutPrefix(line, "bestmove "); ok {
			return rest
		}
	}
	t.Fatalf("no bestmove in output:\n%s", out)
	return ""
}

func TestHandshake(t *testing.T) {
	u, out := newTestUCI(t, Config{})
	run(t, u, "uci", "isready")

	assert.Contains(t, out.String(), "id name MyChess")
	assert.Contains(t, out.String(), "option name Difficulty type spin default 2 min 1 max 5")
	assert.Contains(t, out.String(), "uciok")
	assert.True(t, strings.HasSuffix(out.String(), "readyok\n"))
}

func TestPositionCommands(t *testing.T) {
	u, _ := newTestUCI(t, Config{})

	run(t, u, "position startpos moves e2e4 e7e5 Nf3")
	assert.Equal(t, "rnbqkbnr/pppp1ppp/8/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R b KQkq - 1 2", u.position.FEN())

	run(t, u, "position fen 6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
	assert.Equal(t, "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1", u.position.FEN())

	// An illegal move stops the move list; the legal prefix is kept.
	run(t, u, "position startpos moves e2e4 e2e4 d7d5")
	assert.Equal(t, board.Black, u.position.SideToMove())
	assert.Equal(t, 1, u.position.Ply())

	before := u.position.FEN()
	run(t, u, "position fen not a fen")
	assert.Equal(t, before, u.position.FEN(), "bad fen leaves the position alone")
}

func TestGoFindsMate(t *testing.T) {
	u, out := newTestUCI(t, Config{})
	run(t, u, "position fen 6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1", "go difficulty 2")

	assert.Equal(t, "a1a8", bestMove(t, out.String()))
	assert.Contains(t, out.String(), "score mate 1")
	assert.Contains(t, out.String(), "currmove a1a8")
}

func TestGoWithoutLegalMoves(t *testing.T) {
	u, out := newTestUCI(t, Config{})
	run(t, u, "position fen 7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", "go")

	assert.Equal(t, "(none)", bestMove(t, out.String()))
}

func TestGoRandomLevelIsLegal(t *testing.T) {
	u, out := newTestUCI(t, Config{})
	run(t, u, "position startpos", "go difficulty 1")

	m, err := board.NewPosition().ParseMove(bestMove(t, out.String()))
	require.NoError(t, err)
	assert.True(t, board.NewPosition().IsLegal(m))
}

func TestStopAndMoveTime(t *testing.T) {
	u, out := newTestUCI(t, Config{})
	run(t, u, "position startpos", "go difficulty 5 movetime 50", "stop")

	m, err := board.NewPosition().ParseMove(bestMove(t, out.String()))
	require.NoError(t, err)
	assert.True(t, board.NewPosition().IsLegal(m))
	assert.Equal(t, 1, strings.Count(out.String(), "bestmove"))
}

func TestGoArgumentTokens(t *testing.T) {
	u, out := newTestUCI(t, Config{})
	run(t, u, "position fen 6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1", "go depth 3 difficulty 2")
	assert.Equal(t, "a1a8", bestMove(t, out.String()), "depth takes its value without hiding difficulty")
	assert.Contains(t, out.String(), "info string level 2 ")

	u, out = newTestUCI(t, Config{})
	start := time.Now()
	run(t, u, "position startpos", "go infinite movetime 50 difficulty 5")
	assert.Less(t, time.Since(start), 10*time.Second, "movetime after infinite is honoured")
	assert.Contains(t, out.String(), "info string level 5 ")

	m, err := board.NewPosition().ParseMove(bestMove(t, out.String()))
	require.NoError(t, err)
	assert.True(t, board.NewPosition().IsLegal(m))
}

func TestEvalAndScore(t *testing.T) {
	u, out := newTestUCI(t, Config{})
	run(t, u, "position startpos", "eval", "score")
	assert.Contains(t, out.String(), "eval 0 (0.00)")
	assert.Contains(t, out.String(), "score white 39 black 39")

	out.Reset()
	run(t, u, "position fen 4k3/8/8/8/8/8/8/3QK3 w - - 0 1", "score")
	assert.Contains(t, out.String(), "score white 9 black 0")
}

func TestHint(t *testing.T) {
	u, out := newTestUCI(t, Config{})
	run(t, u, "position fen 6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1", "hint")
	assert.Contains(t, out.String(), "hint a1a8 Ra8#")
}

func TestDisplay(t *testing.T) {
	color.NoColor = true
	u, out := newTestUCI(t, Config{})
	run(t, u, "position startpos", "d")

	assert.Contains(t, out.String(), "8 r n b q k b n r")
	assert.Contains(t, out.String(), "1 R N B Q K B N R")
	assert.Contains(t, out.String(), "Fen: "+board.StartFEN)
	assert.Contains(t, out.String(), "Side to move: White")
	assert.Contains(t, out.String(), "In check: false")
	assert.Contains(t, out.String(), "Last move: 0000 (ply 0)")

	out.Reset()
	run(t, u, "position startpos moves f2f3 e7e5 g2g4 d8h4", "d")
	assert.Contains(t, out.String(), "In check: true")
	assert.Contains(t, out.String(), "Last move: d8h4 (ply 4)")
}

func TestSetOptionDifficulty(t *testing.T) {
	u, _ := newTestUCI(t, Config{})
	assert.Equal(t, storage.DefaultDifficulty, u.Difficulty())

	run(t, u, "setoption name Difficulty value 4")
	assert.Equal(t, 4, u.Difficulty())

	run(t, u, "setoption name Difficulty value 0", "setoption name Difficulty value x")
	assert.Equal(t, 4, u.Difficulty(), "invalid values are ignored")
}

func TestSetOptionPersists(t *testing.T) {
	store, err := storage.OpenInMemory()
	require.NoError(t, err)
	defer store.Close()

	prefs, err := store.LoadPreferences()
	require.NoError(t, err)

	u, _ := newTestUCI(t, Config{Difficulty: prefs.Difficulty, Store: store, Prefs: prefs})
	run(t, u, "setoption name Difficulty value 3")

	got, err := store.LoadPreferences()
	require.NoError(t, err)
	assert.Equal(t, 3, got.Difficulty)
}

func TestQuitStopsReading(t *testing.T) {
	u, out := newTestUCI(t, Config{})
	run(t, u, "quit", "isready")
	assert.NotContains(t, out.String(), "readyok")
}

func TestMateMoves(t *testing.T) {
	assert.Equal(t, 1, mateMoves(engine.MateScore+1, 2))
	assert.Equal(t, 2, mateMoves(engine.MateScore+2, 5))
	assert.Equal(t, -1, mateMoves(-(engine.MateScore + 1), 3))
}
