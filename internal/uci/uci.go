// Package uci drives the engine over a line-oriented text protocol modelled
// on the Universal Chess Interface, with a few extra commands for play at a
// terminal (eval, score, hint, d).
package uci

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hailam/mychess/internal/board"
	"github.com/hailam/mychess/internal/engine"
	"github.com/hailam/mychess/internal/storage"
)

// Config configures a protocol handler.
type Config struct {
	Difficulty int // initial level; 0 selects storage.DefaultDifficulty

	// Store and Prefs are optional. When both are set, option changes are
	// written back to the store.
	Store *storage.Storage
	Prefs *storage.Preferences

	Logger *zerolog.Logger
}

// UCI implements the protocol loop.
type UCI struct {
	engine     *engine.Engine
	position   *board.Position
	difficulty int

	store  *storage.Storage
	prefs  *storage.Preferences
	logger zerolog.Logger

	outMu sync.Mutex
	out   io.Writer

	// Search state
	cancel     context.CancelFunc
	searchDone chan struct{}
	searchSide board.Color
}

// New creates a protocol handler writing its replies to out.
func New(eng *engine.Engine, out io.Writer, cfg Config) *UCI {
	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}
	difficulty := cfg.Difficulty
	if difficulty < engine.RandomLevel {
		difficulty = storage.DefaultDifficulty
	}

	u := &UCI{
		engine:     eng,
		position:   board.NewPosition(),
		difficulty: difficulty,
		store:      cfg.Store,
		prefs:      cfg.Prefs,
		logger:     logger.With().Str("component", "uci").Logger(),
		out:        out,
	}
	eng.OnInfo = u.sendInfo
	return u
}

// Difficulty returns the level the next search will use.
func (u *UCI) Difficulty() int {
	return u.difficulty
}

// Run reads commands from in until "quit" or end of input. A search still
// running at end of input is allowed to finish.
func (u *UCI) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			u.println("readyok")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "quit":
			u.handleStop()
			return nil
		case "setoption":
			u.handleSetOption(args)
		case "eval":
			u.handleEval()
		case "score":
			u.handleScore()
		case "hint":
			u.handleHint(args)
		case "d":
			u.handleDisplay()
		default:
			u.logger.Warn().Str("command", cmd).Msg("unknown command")
		}
	}

	u.wait()
	return scanner.Err()
}

func (u *UCI) println(a ...any) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintln(u.out, a...)
}

func (u *UCI) printf(format string, a ...any) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintf(u.out, format, a...)
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.println("id name MyChess")
	u.println("id author MyChess Team")
	u.println()
	u.printf("option name Difficulty type spin default %d min %d max %d\n",
		storage.DefaultDifficulty, engine.RandomLevel, u.engine.DepthTable().MaxLevel())
	u.println("option name Clear Hash type button")
	u.println("uciok")
}

// handleNewGame resets the engine for a new game.
func (u *UCI) handleNewGame() {
	u.handleStop()
	u.engine.Clear()
	u.position = board.NewPosition()
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
//
// Moves may be given in UCI or SAN. The position is left unchanged if the
// FEN is bad; moves are applied up to the first illegal one.
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	setupEnd, moveStart := len(args), len(args)
	for i, arg := range args {
		if arg == "moves" {
			setupEnd, moveStart = i, i+1
			break
		}
	}

	var pos *board.Position
	switch args[0] {
	case "startpos":
		pos = board.NewPosition()
	case "fen":
		var err error
		pos, err = board.ParseFEN(strings.Join(args[1:setupEnd], " "))
		if err != nil {
			u.logger.Warn().Err(err).Msg("invalid position")
			u.printf("info string invalid fen: %v\n", err)
			return
		}
	default:
		u.logger.Warn().Str("setup", args[0]).Msg("invalid position")
		return
	}

	for _, s := range args[moveStart:] {
		m, err := pos.ParseMove(s)
		if err == nil {
			err = pos.Push(m)
		}
		if err != nil {
			u.logger.Warn().Err(err).Str("move", s).Msg("invalid move")
			u.printf("info string invalid move: %s\n", s)
			break
		}
	}
	u.position = pos
}

// handleGo starts a search. Arguments:
//   - difficulty N: level for this search only
//   - movetime MS: stop after MS milliseconds with the best move so far
//   - infinite: accepted; the search runs until its depth or "stop"
//   - depth N: ignored, depth follows the difficulty level
func (u *UCI) handleGo(args []string) {
	if u.searchDone != nil {
		select {
		case <-u.searchDone:
		default:
			u.logger.Warn().Msg("search already running")
			return
		}
	}

	level := u.difficulty
	var limits engine.SearchLimits
	for i := 0; i < len(args); i++ {
		key := args[i]
		switch key {
		case "infinite":
			continue
		case "difficulty", "movetime", "depth":
		default:
			u.logger.Warn().Str("arg", key).Msg("unknown go argument")
			continue
		}

		if i+1 >= len(args) {
			u.logger.Warn().Str("arg", key).Msg("missing go argument value")
			break
		}
		i++
		n, err := strconv.Atoi(args[i])
		if err != nil {
			u.logger.Warn().Str("arg", key).Str("value", args[i]).Msg("invalid go argument")
			continue
		}
		switch key {
		case "difficulty":
			if n >= engine.RandomLevel {
				level = n
			}
		case "movetime":
			limits.MoveTime = time.Duration(n) * time.Millisecond
		case "depth":
			// Depth follows from the difficulty level.
			u.logger.Warn().Int("depth", n).Int("level", level).Msg("go depth ignored")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	u.cancel = cancel
	u.searchSide = u.position.SideToMove()
	done := make(chan struct{})
	u.searchDone = done
	results := u.engine.Go(ctx, u.position.Clone(), level, limits)

	go func() {
		defer close(done)
		defer cancel()

		res := <-results
		u.printf("info string level %d depth %d nodes %s time %dms\n",
			res.Level, res.Depth, humanize.Comma(int64(res.Nodes)), res.Elapsed.Milliseconds())
		if res.Move == board.NoMove {
			u.println("bestmove (none)")
			return
		}
		u.printf("bestmove %s\n", res.Move)
	}()
}

// sendInfo outputs search info in UCI format. Scores are reported from the
// side to move's point of view.
func (u *UCI) sendInfo(info engine.SearchInfo) {
	score := info.Score
	if u.searchSide == board.Black {
		score = -score
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("depth %d", info.Depth))
	parts = append(parts, "currmove "+info.Move.String())
	if engine.IsMateScore(score) {
		parts = append(parts, fmt.Sprintf("score mate %d", mateMoves(score, info.Depth)))
	} else {
		parts = append(parts, fmt.Sprintf("score cp %d", score))
	}
	parts = append(parts, fmt.Sprintf("nodes %d", info.Nodes))
	if info.HashFull > 0 {
		parts = append(parts, fmt.Sprintf("hashfull %d", info.HashFull))
	}
	parts = append(parts, "pv "+info.BestMove.String())

	u.printf("info %s\n", strings.Join(parts, " "))
}

// mateMoves converts a root mate score into moves to mate, negative when
// the side to move is the one being mated. Mate scores carry the remaining
// depth at which the mate was seen.
func mateMoves(score, depth int) int {
	sign := 1
	if score < 0 {
		sign, score = -1, -score
	}
	plies := depth - (score - engine.MateScore)
	if plies < 1 {
		plies = 1
	}
	return sign * (plies + 1) / 2
}

// handleStop stops the current search and waits for its bestmove.
func (u *UCI) handleStop() {
	if u.cancel != nil {
		u.cancel()
	}
	u.wait()
}

func (u *UCI) wait() {
	if u.searchDone != nil {
		<-u.searchDone
	}
}

// handleSetOption processes "setoption" commands.
func (u *UCI) handleSetOption(args []string) {
	// Format: setoption name <name> value <value>
	var name, value string
	readingName := false
	readingValue := false

	for _, arg := range args {
		switch arg {
		case "name":
			readingName = true
			readingValue = false
		case "value":
			readingName = false
			readingValue = true
		default:
			if readingName {
				if name != "" {
					name += " "
				}
				name += arg
			} else if readingValue {
				if value != "" {
					value += " "
				}
				value += arg
			}
		}
	}

	switch strings.ToLower(name) {
	case "difficulty":
		level, err := strconv.Atoi(value)
		if err != nil || level < engine.RandomLevel {
			u.logger.Warn().Str("value", value).Msg("invalid difficulty")
			return
		}
		u.difficulty = level
		u.persist(func(p *storage.Preferences) { p.Difficulty = level })
	case "clear hash":
		u.handleStop()
		u.engine.Clear()
	default:
		u.logger.Warn().Str("option", name).Msg("unknown option")
	}
}

// persist applies change to the stored preferences, if a store is attached.
func (u *UCI) persist(change func(*storage.Preferences)) {
	if u.store == nil || u.prefs == nil {
		return
	}
	change(u.prefs)
	if err := u.store.SavePreferences(u.prefs); err != nil {
		u.logger.Warn().Err(err).Msg("could not save preferences")
	}
}

// handleEval prints the static evaluation, White-positive.
func (u *UCI) handleEval() {
	score := u.engine.Evaluate(u.position)
	u.printf("eval %d (%s)\n", score, engine.ScoreToString(score))
}

// handleScore prints the material count of each side.
func (u *UCI) handleScore() {
	u.printf("score white %d black %d\n", u.position.Material(board.White), u.position.Material(board.Black))
}

// handleHint suggests a move for the side to move at the current (or given)
// difficulty.
func (u *UCI) handleHint(args []string) {
	level := u.difficulty
	if len(args) == 2 && args[0] == "difficulty" {
		if n, err := strconv.Atoi(args[1]); err == nil && n >= engine.RandomLevel {
			level = n
		}
	}
	u.handleStop()
	u.searchSide = u.position.SideToMove()

	pos := u.position.Clone()
	m := u.engine.Hint(pos, level)
	if m == board.NoMove {
		u.println("hint (none)")
		return
	}
	san, err := pos.SAN(m)
	if err != nil {
		san = m.String()
	}
	u.printf("hint %s %s\n", m, san)
}

var (
	whitePiece = color.New(color.FgHiWhite, color.Bold)
	blackPiece = color.New(color.FgRed, color.Bold)
	emptySq    = color.New(color.FgHiBlack)
)

// handleDisplay prints the board, White at the bottom.
func (u *UCI) handleDisplay() {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d ", rank+1)
		for file := 0; file < 8; file++ {
			p := u.position.PieceAt(board.NewSquare(file, rank))
			switch p.Color() {
			case board.White:
				sb.WriteString(whitePiece.Sprint(p.String()))
			case board.Black:
				sb.WriteString(blackPiece.Sprint(p.String()))
			default:
				sb.WriteString(emptySq.Sprint("."))
			}
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Fen: %s\n", u.position.FEN())
	fmt.Fprintf(&sb, "Key: %016X\n", u.position.Key())
	fmt.Fprintf(&sb, "Side to move: %s\n", u.position.SideToMove())
	fmt.Fprintf(&sb, "In check: %t\n", u.position.InCheck())
	fmt.Fprintf(&sb, "Last move: %s (ply %d)\n", u.position.LastMove(), u.position.Ply())

	u.printf("%s", sb.String())
}
