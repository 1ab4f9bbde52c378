package engine

import (
	"sync/atomic"

	"github.com/hailam/powerchess/internal/board"
)

// Worker runs negamax on its own copy of the position. Workers share the
// transposition table and the stop flag; everything else is private, so
// several workers can search sibling root moves at once.
type Worker struct {
	id int

	// Per-worker position copy
	pos *board.Position

	weights Weights
	nodes   uint64

	// Hashes of the game history followed by the current search path.
	path []uint64

	tt       *TranspositionTable
	stopFlag *atomic.Bool

	// stoppable is false while the first iteration runs.
	stoppable bool
}

// NewWorker creates a search worker over a private copy of pos.
func NewWorker(id int, pos *board.Position, tt *TranspositionTable, weights Weights, stopFlag *atomic.Bool, history []uint64) *Worker {
	path := make([]uint64, len(history), len(history)+MaxPly)
	copy(path, history)
	return &Worker{
		id:       id,
		pos:      pos.Copy(),
		weights:  weights,
		path:     path,
		tt:       tt,
		stopFlag: stopFlag,
	}
}

// Nodes returns the number of nodes searched by this worker.
func (w *Worker) Nodes() uint64 {
	return w.nodes
}

func (w *Worker) stopped() bool {
	return w.stoppable && w.stopFlag.Load()
}

// isRepetition reports whether the current position already occurred in the
// game or earlier on the search path.
func (w *Worker) isRepetition() bool {
	h := w.pos.Hash
	// The last entry is the current position itself.
	for i := len(w.path) - 2; i >= 0; i-- {
		if w.path[i] == h {
			return true
		}
	}
	return false
}

// searchMove plays m at the root and returns its score from the root side's
// perspective, searched to depth-1 plies with window (alpha, beta).
func (w *Worker) searchMove(m board.Move, depth, alpha, beta int) int {
	undo := w.pos.MakeMove(m)
	w.path = append(w.path, w.pos.Hash)
	score := -w.negamax(depth-1, 1, -beta, -alpha)
	w.path = w.path[:len(w.path)-1]
	w.pos.UnmakeMove(m, undo)
	return score
}

// negamax returns the fail-hard alpha-beta value of the current position
// from the side to move's perspective.
func (w *Worker) negamax(depth, ply, alpha, beta int) int {
	if w.nodes&1023 == 0 && w.stopped() {
		return 0
	}
	w.nodes++

	moves := w.pos.GenerateLegalMoves()
	if moves.Len() == 0 {
		if w.pos.InCheck() {
			return -MateScore + ply
		}
		return 0
	}
	if w.pos.HalfMoveClock >= 100 || w.pos.IsInsufficientMaterial() || w.isRepetition() {
		return 0
	}
	if depth <= 0 || ply >= MaxPly {
		return w.weights.Evaluate(w.pos)
	}

	var ttMove board.Move
	if entry, ok := w.tt.Probe(w.pos.Hash); ok {
		ttMove = entry.BestMove
	}

	bestMove := board.NoMove
	for _, m := range orderMoves(w.pos, moves.Slice(), ttMove) {
		undo := w.pos.MakeMove(m)
		w.path = append(w.path, w.pos.Hash)
		score := -w.negamax(depth-1, ply+1, -beta, -alpha)
		w.path = w.path[:len(w.path)-1]
		w.pos.UnmakeMove(m, undo)

		if w.stopped() {
			return 0
		}
		if score >= beta {
			w.tt.Store(w.pos.Hash, depth, m)
			return beta
		}
		if score > alpha {
			alpha = score
			bestMove = m
		}
	}

	if bestMove != board.NoMove {
		w.tt.Store(w.pos.Hash, depth, bestMove)
	}
	return alpha
}
