package game

import "errors"

var (
	// ErrGameOver is returned for any intent after a terminal outcome.
	ErrGameOver = errors.New("game is over")
	// ErrSessionNotFound is returned for an unknown or closed handle.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrPowerupActive is returned when an intent conflicts with a running
	// chopper gunner session.
	ErrPowerupActive = errors.New("powerup session in progress")
	// ErrNotYourTurn is returned when the acting side is not to move.
	ErrNotYourTurn = errors.New("not your turn")
	// ErrNoChopper is returned by chopper intents when no session runs.
	ErrNoChopper = errors.New("no chopper gunner session")
	// ErrNothingToUndo is returned by Undo at the start of the game.
	ErrNothingToUndo = errors.New("no moves available to undo")
	// ErrNoStore is returned by Save and Resume when the manager has no store.
	ErrNoStore = errors.New("no game store configured")
)
