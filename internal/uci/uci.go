// Package uci speaks the Universal Chess Interface over the powerchess
// engine, so the AI can be driven by standard chess GUIs and test harnesses.
package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hailam/powerchess/internal/board"
	"github.com/hailam/powerchess/internal/engine"
	"github.com/hailam/powerchess/internal/obslog"
)

// UCI implements the Universal Chess Interface protocol.
type UCI struct {
	engine   *engine.Engine
	opts     engine.Options
	position *board.Position

	// Position history for repetition detection
	positionHashes []uint64

	out   io.Writer
	outMu sync.Mutex

	// Search state
	cancel     context.CancelFunc
	infinite   bool
	searchDone chan struct{}
}

// New creates a UCI handler writing responses to out.
func New(opts engine.Options, out io.Writer) *UCI {
	pos := board.NewPosition()
	return &UCI{
		engine:         engine.New(opts),
		opts:           opts,
		position:       pos,
		positionHashes: []uint64{pos.Hash},
		out:            out,
	}
}

func (u *UCI) send(format string, args ...any) {
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintf(u.out, format+"\n", args...)
}

// Run reads commands from in until "quit" or end of input.
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
			u.send("readyok")
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
		// Debug commands
		case "d":
			u.send("%s", u.position.String())
			u.send("Fen: %s", u.position.ToFEN())
		case "eval":
			u.send("Eval: %s", engine.ScoreToString(u.engine.Evaluate(u.position)))
		case "perft":
			u.handlePerft(args)
		default:
			obslog.L().Debug("unknown uci command", zap.String("cmd", cmd))
		}
	}
	// End of input: let a bounded search finish and print its move.
	if u.infinite {
		u.handleStop()
	}
	u.waitSearch()
	return scanner.Err()
}

// handleUCI responds to the "uci" command.
func (u *UCI) handleUCI() {
	u.send("id name powerchess")
	u.send("id author powerchess")
	u.send("")
	u.send("option name Hash type spin default %d min 1 max 4096", u.opts.TTSizeMB)
	u.send("option name Threads type spin default %d min 1 max 64", u.opts.Workers)
	u.send("option name Debug type check default false")
	u.send("uciok")
}

// handleNewGame resets the engine for a new game.
func (u *UCI) handleNewGame() {
	u.handleStop()
	u.engine.Clear()
	u.position = board.NewPosition()
	u.positionHashes = []uint64{u.position.Hash}
}

// handlePosition parses and sets up a position.
// Formats:
//   - position startpos
//   - position startpos moves e2e4 e7e5
//   - position fen <fen>
//   - position fen <fen> moves e2e4
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}
	u.handleStop()

	fenEnd, moveStart := len(args), len(args)
	for i, arg := range args {
		if arg == "moves" {
			fenEnd, moveStart = i, i+1
			break
		}
	}

	var pos *board.Position
	switch args[0] {
	case "startpos":
		pos = board.NewPosition()
	case "fen":
		var err error
		pos, err = board.ParseFEN(strings.Join(args[1:fenEnd], " "))
		if err != nil {
			u.send("info string Invalid FEN: %v", err)
			return
		}
	default:
		return
	}

	hashes := []uint64{pos.Hash}
	for _, moveStr := range args[moveStart:] {
		move, err := board.ParseMove(moveStr, pos)
		if err == nil {
			pos, err = board.Apply(pos, move)
		}
		if err != nil {
			u.send("info string Invalid move %s: %v", moveStr, err)
			return
		}
		hashes = append(hashes, pos.Hash)
	}

	u.position = pos
	u.positionHashes = hashes
	if board.DebugMoveValidation {
		u.send("info string position hash=%016x inCheck=%v", pos.Hash, pos.InCheck())
	}
}

// handleGo starts a search with the given parameters.
func (u *UCI) handleGo(args []string) {
	u.handleStop()
	limits := ParseGo(args)

	pos := u.position.Copy()
	history := append([]uint64(nil), u.positionHashes...)
	ply := len(history) - 1

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if budget := engine.MoveBudget(limits, pos.SideToMove, ply); budget > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), budget)
		u.send("info string time_allocated=%dms", budget.Milliseconds())
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	u.cancel = cancel
	u.infinite = limits.Infinite
	u.searchDone = make(chan struct{})

	// Configure info callback
	u.engine.OnInfo = func(info engine.SearchInfo) {
		u.sendInfo(pos, info)
	}

	done := u.searchDone
	go func() {
		defer close(done)
		defer cancel()

		res, err := u.engine.Search(ctx, pos, engine.DepthForLimits(limits), history)
		if errors.Is(err, engine.ErrNoLegalMove) {
			// Only send 0000 for checkmate/stalemate (no legal moves)
			u.send("bestmove 0000")
			return
		}
		if err != nil {
			obslog.L().Error("search failed", zap.Error(err))
			u.send("bestmove 0000")
			return
		}
		if limits.Infinite {
			// UCI requires infinite searches to wait for "stop".
			<-ctx.Done()
		}
		u.send("bestmove %s", res.Move)
	}()
}

// ParseGo parses "go" command arguments.
func ParseGo(args []string) engine.UCILimits {
	var limits engine.UCILimits

	millis := func(i int) time.Duration {
		if i+1 >= len(args) {
			return 0
		}
		ms, _ := strconv.Atoi(args[i+1])
		return time.Duration(ms) * time.Millisecond
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if i+1 < len(args) {
				limits.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "movetime":
			limits.MoveTime = millis(i)
			i++
		case "infinite":
			limits.Infinite = true
		case "wtime":
			limits.Time[board.White] = millis(i)
			i++
		case "btime":
			limits.Time[board.Black] = millis(i)
			i++
		case "winc":
			limits.Inc[board.White] = millis(i)
			i++
		case "binc":
			limits.Inc[board.Black] = millis(i)
			i++
		case "movestogo":
			if i+1 < len(args) {
				limits.MovesToGo, _ = strconv.Atoi(args[i+1])
				i++
			}
		}
	}

	return limits
}

// sendInfo outputs search info in UCI format.
func (u *UCI) sendInfo(pos *board.Position, info engine.SearchInfo) {
	var parts []string

	parts = append(parts, fmt.Sprintf("depth %d", info.Depth))

	// Score
	if engine.IsMateScore(info.Score) {
		parts = append(parts, fmt.Sprintf("score mate %d", engine.MateIn(info.Score)))
	} else {
		parts = append(parts, fmt.Sprintf("score cp %d", info.Score))
	}

	parts = append(parts, fmt.Sprintf("nodes %d", info.Nodes))
	parts = append(parts, fmt.Sprintf("time %d", info.Time.Milliseconds()))

	// NPS
	if info.Time > 0 {
		nps := uint64(float64(info.Nodes) / info.Time.Seconds())
		parts = append(parts, fmt.Sprintf("nps %d", nps))
	}

	// Hash fullness
	if info.HashFull > 0 {
		parts = append(parts, fmt.Sprintf("hashfull %d", info.HashFull))
	}

	// PV - stop at the first move that is not legal in the line
	if len(info.PV) > 0 {
		validPV := make([]string, 0, len(info.PV))
		testPos := pos
		for _, move := range info.PV {
			next, err := board.Apply(testPos, move)
			if err != nil {
				break
			}
			validPV = append(validPV, move.String())
			testPos = next
		}
		if len(validPV) > 0 {
			parts = append(parts, "pv "+strings.Join(validPV, " "))
		}
	}

	u.send("info %s", strings.Join(parts, " "))
}

// handleStop stops the current search and waits for its bestmove.
func (u *UCI) handleStop() {
	if u.cancel != nil {
		u.cancel()
	}
	u.waitSearch()
}

func (u *UCI) waitSearch() {
	if u.searchDone != nil {
		<-u.searchDone
		u.searchDone = nil
		u.cancel = nil
		u.infinite = false
	}
}

// handleSetOption processes "setoption" commands.
func (u *UCI) handleSetOption(args []string) {
	// Format: setoption name <name> value <value>
	var name, value []string
	var target *[]string
	for _, arg := range args {
		switch arg {
		case "name":
			target = &name
		case "value":
			target = &value
		default:
			if target != nil {
				*target = append(*target, arg)
			}
		}
	}
	val := strings.Join(value, " ")

	switch strings.ToLower(strings.Join(name, " ")) {
	case "hash":
		if mb, err := strconv.Atoi(val); err == nil && mb >= 1 {
			u.rebuild(func(o *engine.Options) { o.TTSizeMB = mb })
		}
	case "threads":
		if n, err := strconv.Atoi(val); err == nil && n >= 1 {
			u.rebuild(func(o *engine.Options) { o.Workers = n })
		}
	case "debug":
		enabled := strings.EqualFold(val, "true")
		board.DebugMoveValidation = enabled
		if enabled {
			u.send("info string Debug mode enabled")
		}
	}
}

// rebuild replaces the engine with one using the changed options.
func (u *UCI) rebuild(change func(*engine.Options)) {
	u.handleStop()
	change(&u.opts)
	u.engine = engine.New(u.opts)
}

// handlePerft runs a perft test.
func (u *UCI) handlePerft(args []string) {
	depth := 5
	if len(args) > 0 {
		depth, _ = strconv.Atoi(args[0])
	}

	start := time.Now()
	nodes := u.engine.Perft(u.position, depth)
	elapsed := time.Since(start)

	u.send("Nodes: %d", nodes)
	u.send("Time: %v", elapsed)
	if elapsed > 0 {
		nps := float64(nodes) / elapsed.Seconds()
		u.send("NPS: %.0f", nps)
	}
}
