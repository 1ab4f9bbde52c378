package engine

import (
	"golang.org/x/exp/slices"

	"github.com/hailam/powerchess/internal/board"
)

// Move ordering priorities
const (
	ttMoveScore  = 1 << 20
	captureBase  = 1 << 16
	checkScore   = 1 << 12
	quietScore   = 0
	promoBonus   = 1 << 10
	mvvLvaVictim = 10
)

// MVV-LVA (Most Valuable Victim - Least Valuable Attacker) scores.
// Higher score = search first.
var mvvLva = [6][6]int{
	//       P    N    B    R    Q    K  (attacker)
	/* P */ {15, 14, 14, 13, 12, 11},
	/* N */ {25, 24, 24, 23, 22, 21},
	/* B */ {35, 34, 34, 33, 32, 31},
	/* R */ {45, 44, 44, 43, 42, 41},
	/* Q */ {55, 54, 54, 53, 52, 51},
	/* K */ {0, 0, 0, 0, 0, 0},
}

type scoredMove struct {
	move  board.Move
	score int
}

// orderMoves returns moves in search order: the TT hint, captures by
// MVV-LVA, checking moves, then quiet moves. Within a band the generator
// order is kept, so the result is a pure function of its inputs.
func orderMoves(pos *board.Position, moves []board.Move, ttMove board.Move) []board.Move {
	scored := make([]scoredMove, len(moves))
	scratch := pos.Copy()
	for i, m := range moves {
		scored[i] = scoredMove{move: m, score: scoreMove(scratch, m, ttMove)}
	}
	slices.SortStableFunc(scored, func(a, b scoredMove) int {
		return b.score - a.score
	})

	out := make([]board.Move, len(scored))
	for i, s := range scored {
		out[i] = s.move
	}
	return out
}

// scoreMove ranks a single move. scratch is restored before returning.
func scoreMove(scratch *board.Position, m, ttMove board.Move) int {
	if m == ttMove {
		return ttMoveScore
	}
	score := quietScore
	if victim := m.CapturedPiece(scratch); victim != board.NoPiece {
		attacker := scratch.PieceAt(m.From()).Type()
		score = captureBase + mvvLva[victim.Type()][attacker]*mvvLvaVictim
	}
	if m.IsPromotion() {
		score += promoBonus + board.PieceValue[m.Promotion()]
	}
	if score == quietScore {
		undo := scratch.MakeMove(m)
		if scratch.InCheck() {
			score = checkScore
		}
		scratch.UnmakeMove(m, undo)
	}
	return score
}
