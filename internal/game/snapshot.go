package game

import (
	"github.com/hailam/powerchess/internal/board"
	"github.com/hailam/powerchess/internal/powerup"
	"github.com/hailam/powerchess/internal/rules"
)

// Phase is the controller state a session is in.
type Phase uint8

const (
	AwaitingMove Phase = iota
	PowerupActive
	GameOver
)

func (p Phase) String() string {
	switch p {
	case AwaitingMove:
		return "awaiting_move"
	case PowerupActive:
		return "powerup_active"
	case GameOver:
		return "game_over"
	}
	return "unknown"
}

// Snapshot is everything an outer layer needs to draw the game and decide
// what intents are allowed. It shares no memory with the session.
type Snapshot struct {
	ID       string
	FEN      string
	Position *board.Position

	// LegalMoves is empty while a powerup session runs or the game is over.
	LegalMoves []board.Move
	Moves      []string
	Outcome    rules.Outcome

	Meters powerup.Meters
	// CanActivate is true when the side to move has a full meter.
	CanActivate bool

	Phase      Phase
	SideToMove board.Color
	AISide     board.Color

	// Chopper is set while a chopper gunner session runs.
	Chopper *powerup.ChopperSession
	// Log has one entry per history step: SAN for moves, "kind@targets" for
	// powerups.
	Log []string
}
