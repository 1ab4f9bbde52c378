package rules

import "github.com/hailam/powerchess/internal/board"

// FiftyMoveLimit is the half-move clock value at which the game is drawn.
const FiftyMoveLimit = 100

// RepetitionLimit is the number of occurrences that draws by repetition.
const RepetitionLimit = 3

// Classify determines the outcome of pos. history holds the keys of every
// position reached in the game so far, the current one included.
//
// A position without legal moves is checkmate or stalemate regardless of the
// draw counters; otherwise repetition, the fifty-move rule and insufficient
// material are tried in that order before Check or Ongoing.
func Classify(pos *board.Position, history []board.Key) Outcome {
	us := pos.SideToMove
	inCheck := pos.InCheck()

	if !pos.HasLegalMoves() {
		if inCheck {
			return Outcome{Kind: Checkmate, Side: us.Other()}
		}
		return Outcome{Kind: Stalemate, Side: board.NoColor}
	}

	if Repetitions(pos.Key(), history) >= RepetitionLimit {
		return Outcome{Kind: DrawRepetition, Side: board.NoColor}
	}
	if pos.HalfMoveClock >= FiftyMoveLimit {
		return Outcome{Kind: DrawFiftyMove, Side: board.NoColor}
	}
	if pos.IsInsufficientMaterial() {
		return Outcome{Kind: DrawInsufficientMaterial, Side: board.NoColor}
	}

	if inCheck {
		return Outcome{Kind: Check, Side: us}
	}
	return Outcome{Kind: Ongoing, Side: board.NoColor}
}

// Repetitions counts the occurrences of key in history.
func Repetitions(key board.Key, history []board.Key) int {
	n := 0
	for _, k := range history {
		if k == key {
			n++
		}
	}
	return n
}
