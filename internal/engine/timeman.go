package engine

import (
	"time"

	"github.com/hailam/powerchess/internal/board"
)

// UCILimits contains UCI time control parameters.
type UCILimits struct {
	Time      [2]time.Duration // wtime, btime (remaining time for each color)
	Inc       [2]time.Duration // winc, binc (increment per move)
	MovesToGo int              // moves until next time control (0 = sudden death)
	MoveTime  time.Duration    // fixed time per move (overrides other time controls)
	Depth     int              // maximum search depth
	Infinite  bool             // search until stopped
}

// MoveBudget returns how long a search for side us may run, or zero when
// the limits carry no clock. ply is the current game ply.
func MoveBudget(limits UCILimits, us board.Color, ply int) time.Duration {
	if limits.MoveTime > 0 {
		return limits.MoveTime
	}
	timeLeft := limits.Time[us]
	if limits.Infinite || timeLeft <= 0 {
		return 0
	}

	// Sudden death: expect fewer remaining moves as the game goes on.
	mtg := limits.MovesToGo
	if mtg == 0 {
		mtg = min(max(50-ply/4, 10), 50)
	}

	budget := timeLeft/time.Duration(mtg) + limits.Inc[us]*9/10
	if ply < 8 {
		budget = budget * 85 / 100
	}

	// Never use more than 80% of what is left.
	budget = min(budget, timeLeft*8/10)
	return max(budget, 10*time.Millisecond)
}

// DepthForLimits returns the iterative deepening limit for a UCI search.
// Without an explicit depth the budget or a stop command ends the search.
func DepthForLimits(limits UCILimits) int {
	if limits.Depth > 0 {
		return min(limits.Depth, MaxPly)
	}
	return MaxPly
}
