package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hailam/powerchess/internal/board"
)

// ErrNoLegalMove is returned when the AI is asked to move in a position with
// no legal moves.
var ErrNoLegalMove = errors.New("engine: no legal move")

// SearchInfo contains information about a completed iteration.
type SearchInfo struct {
	Depth    int
	Score    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int // Permille of hash table used
}

// Result is the outcome of a search.
type Result struct {
	Move  board.Move
	Score int
	Depth int // deepest fully completed iteration
	Nodes uint64
	PV    []board.Move
}

// Difficulty represents the AI difficulty level.
type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
	VeryHard
)

var difficultyNames = [...]string{"easy", "medium", "hard", "very_hard"}

func (d Difficulty) String() string {
	if d < Easy || d > VeryHard {
		return "Difficulty(" + strconv.Itoa(int(d)) + ")"
	}
	return difficultyNames[d]
}

// ParseDifficulty parses "easy", "medium", "hard" or "very_hard".
func ParseDifficulty(s string) (Difficulty, error) {
	for i, name := range difficultyNames {
		if strings.EqualFold(s, name) {
			return Difficulty(i), nil
		}
	}
	return Easy, fmt.Errorf("engine: unknown difficulty %q", s)
}

// DepthFor returns the search depth in plies for a difficulty preset.
func DepthFor(d Difficulty) int {
	switch {
	case d <= Easy:
		return 1
	case d >= VeryHard:
		return 4
	}
	return int(d) + 1
}

// Options configures an Engine.
type Options struct {
	// Workers > 1 searches root moves concurrently.
	Workers  int
	TTSizeMB int
	Weights  Weights
}

// DefaultOptions returns a single-threaded engine with a 16MB table.
func DefaultOptions() Options {
	return Options{Workers: 1, TTSizeMB: 16, Weights: DefaultWeights()}
}

// Engine is the chess AI. Searches on one Engine are serialized; separate
// engines share nothing.
type Engine struct {
	mu       sync.Mutex
	tt       *TranspositionTable
	opts     Options
	stopFlag atomic.Pointer[atomic.Bool]

	// Callbacks
	OnInfo func(SearchInfo)
}

// New creates an engine.
func New(opts Options) *Engine {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.TTSizeMB < 1 {
		opts.TTSizeMB = 1
	}
	return &Engine{
		tt:   NewTranspositionTable(opts.TTSizeMB),
		opts: opts,
	}
}

// Weights returns the evaluation weights in use.
func (e *Engine) Weights() Weights {
	return e.opts.Weights
}

// ChooseMove returns the best move for the side to move, searching at most
// depthLimit plies. If ctx ends early the move of the last completed
// iteration is returned; the first iteration always completes.
func (e *Engine) ChooseMove(ctx context.Context, pos *board.Position, depthLimit int) (board.Move, error) {
	res, err := e.Search(ctx, pos, depthLimit, nil)
	if err != nil {
		return board.NoMove, err
	}
	return res.Move, nil
}

// Search runs iterative deepening up to depthLimit. history holds the
// Zobrist hashes of earlier game positions; a position repeated from it is
// scored as a draw.
func (e *Engine) Search(ctx context.Context, pos *board.Position, depthLimit int, history []uint64) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	moves := pos.GenerateLegalMoves().Slice()
	if len(moves) == 0 {
		return Result{}, fmt.Errorf("%w: %s", ErrNoLegalMove, pos.ToFEN())
	}
	if depthLimit < 1 {
		depthLimit = 1
	}
	if depthLimit > MaxPly {
		depthLimit = MaxPly
	}

	// Fresh flag per search; a late AfterFunc only touches its own.
	stopFlag := new(atomic.Bool)
	e.stopFlag.Store(stopFlag)
	stop := context.AfterFunc(ctx, func() { stopFlag.Store(true) })
	defer stop()
	if ctx.Err() != nil {
		stopFlag.Store(true)
	}
	e.tt.NewSearch()

	s := &Searcher{
		tt:       e.tt,
		weights:  e.opts.Weights,
		workers:  e.opts.Workers,
		stopFlag: stopFlag,
		history:  history,
	}

	startTime := time.Now()
	var res Result
	for depth := 1; depth <= depthLimit; depth++ {
		if depth > 1 && stopFlag.Load() {
			break
		}
		rr, ok := s.searchRoot(ctx, pos, moves, depth, res.Move)
		if !ok {
			break
		}
		res.Move = rr.move
		res.Score = rr.score
		res.Depth = depth
		res.Nodes += rr.nodes
		res.PV = s.principalVariation(pos, rr.move, depth)

		if e.OnInfo != nil {
			e.OnInfo(SearchInfo{
				Depth:    depth,
				Score:    rr.score,
				Nodes:    res.Nodes,
				Time:     time.Since(startTime),
				PV:       res.PV,
				HashFull: e.tt.HashFull(),
			})
		}

		// A forced mate will not change with more depth.
		if IsMateScore(rr.score) {
			break
		}
	}
	return res, nil
}

// Stop stops the current search. The move of the last completed iteration
// is still returned.
func (e *Engine) Stop() {
	if f := e.stopFlag.Load(); f != nil {
		f.Store(true)
	}
}

// Clear clears the transposition table.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tt.Clear()
}

// ChooseStrikeTarget picks the enemy piece a chopper controlled by side
// should remove: the most valuable non-king piece, lowest square first.
func (e *Engine) ChooseStrikeTarget(pos *board.Position, side board.Color) (board.Square, bool) {
	enemy := side.Other()
	best := board.NoSquare
	bestValue := -1
	for pt := board.Pawn; pt <= board.Queen; pt++ {
		bb := pos.Pieces[enemy][pt]
		for bb != 0 {
			sq := bb.PopLSB()
			v := e.opts.Weights.PieceValues[pt]
			if v > bestValue || (v == bestValue && sq < best) {
				best, bestValue = sq, v
			}
		}
	}
	return best, best != board.NoSquare
}

// Perft counts leaf nodes of the legal move tree (for debugging move
// generation).
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return uint64(moves.Len())
	}

	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		move := moves.Get(i)
		undo := pos.MakeMove(move)
		nodes += e.Perft(pos, depth-1)
		pos.UnmakeMove(move, undo)
	}

	return nodes
}

// Evaluate returns the static evaluation of a position.
func (e *Engine) Evaluate(pos *board.Position) int {
	return e.opts.Weights.Evaluate(pos)
}

// IsMateScore reports whether score announces a forced mate.
func IsMateScore(score int) bool {
	return abs(score) > MateScore-MaxPly
}

// MateIn returns the number of moves to mate for a mate score, negative when
// the side to move is being mated.
func MateIn(score int) int {
	if score > 0 {
		return (MateScore - score + 1) / 2
	}
	return -(MateScore + score + 1) / 2
}

// ScoreToString converts a score to a human-readable string.
func ScoreToString(score int) string {
	if IsMateScore(score) {
		n := MateIn(score)
		if n > 0 {
			return "Mate in " + strconv.Itoa(n)
		}
		return "Mated in " + strconv.Itoa(-n)
	}

	// Convert centipawns to pawns
	sign := ""
	if score < 0 {
		sign = "-"
		score = -score
	}
	return fmt.Sprintf("%s%d.%02d", sign, score/100, score%100)
}
