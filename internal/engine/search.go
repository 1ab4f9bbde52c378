package engine

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/hailam/powerchess/internal/board"
)

// Search constants
const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 64
)

// rootResult is the outcome of one completed iteration.
type rootResult struct {
	move  board.Move
	score int
	index int
	nodes uint64
}

// Searcher performs one root search at a fixed depth.
type Searcher struct {
	tt       *TranspositionTable
	weights  Weights
	workers  int
	stopFlag *atomic.Bool
	history  []uint64
}

// searchRoot searches every root move to depth and returns the best one.
// Ties go to the move that comes first in generator order.
func (s *Searcher) searchRoot(ctx context.Context, pos *board.Position, moves []board.Move, depth int, prevBest board.Move) (rootResult, bool) {
	if s.workers > 1 && depth > 1 {
		return s.searchRootParallel(ctx, pos, moves, depth)
	}

	w := NewWorker(0, pos, s.tt, s.weights, s.stopFlag, s.rootPath(pos))
	w.stoppable = depth > 1

	index := make(map[board.Move]int, len(moves))
	for i, m := range moves {
		index[m] = i
	}

	best := rootResult{move: board.NoMove, score: -Infinity, index: len(moves)}
	for _, m := range orderMoves(pos, moves, prevBest) {
		i := index[m]
		// A lower generator index wins ties, so it only needs to reach
		// the best score, not beat it.
		alpha := best.score
		if i < best.index && alpha > -Infinity {
			alpha--
		}
		score := w.searchMove(m, depth, alpha, Infinity)
		if w.stopped() {
			return rootResult{}, false
		}
		if score > best.score || (score == best.score && i < best.index) || best.move == board.NoMove {
			best = rootResult{move: m, score: score, index: i}
		}
	}

	best.nodes = w.Nodes()
	s.tt.Store(pos.Hash, depth, best.move)
	return best, true
}

// searchRootParallel gives every root move its own worker and a full
// window, then picks the maximum with the same tie-break as the sequential
// search.
func (s *Searcher) searchRootParallel(ctx context.Context, pos *board.Position, moves []board.Move, depth int) (rootResult, bool) {
	scores := make([]int, len(moves))
	nodes := make([]uint64, len(moves))
	path := s.rootPath(pos)

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, m := range moves {
		g.Go(func() error {
			w := NewWorker(i, pos, s.tt, s.weights, s.stopFlag, path)
			w.stoppable = true
			scores[i] = w.searchMove(m, depth, -Infinity, Infinity)
			nodes[i] = w.Nodes()
			return nil
		})
	}
	_ = g.Wait()
	if s.stopFlag.Load() {
		return rootResult{}, false
	}

	best := rootResult{move: moves[0], score: scores[0], index: 0}
	for i := 1; i < len(moves); i++ {
		if scores[i] > best.score {
			best = rootResult{move: moves[i], score: scores[i], index: i}
		}
	}
	for _, n := range nodes {
		best.nodes += n
	}
	s.tt.Store(pos.Hash, depth, best.move)
	return best, true
}

func (s *Searcher) rootPath(pos *board.Position) []uint64 {
	path := make([]uint64, 0, len(s.history)+1)
	path = append(path, s.history...)
	if len(path) == 0 || path[len(path)-1] != pos.Hash {
		path = append(path, pos.Hash)
	}
	return path
}

// principalVariation follows TT hints from pos, stopping at the first
// missing, illegal or repeated entry.
func (s *Searcher) principalVariation(pos *board.Position, first board.Move, depth int) []board.Move {
	pv := []board.Move{first}
	p := pos.Copy()
	p.MakeMove(first)
	seen := map[uint64]bool{pos.Hash: true}
	for len(pv) < depth {
		if seen[p.Hash] {
			break
		}
		seen[p.Hash] = true
		entry, ok := s.tt.Probe(p.Hash)
		if !ok || !p.IsLegal(entry.BestMove) {
			break
		}
		pv = append(pv, entry.BestMove)
		p.MakeMove(entry.BestMove)
	}
	return pv
}

// abs returns the absolute value of an integer.
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
