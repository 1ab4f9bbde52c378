package powerup

import (
	"errors"
	"fmt"

	"github.com/hailam/powerchess/internal/board"
)

var (
	// ErrActivationRejected is returned when a side activates a powerup
	// without a full meter.
	ErrActivationRejected = errors.New("powerup: activation rejected")
	// ErrInvalidTarget is returned when an effect's targets are off the
	// board, hit a king, or would leave the activator in check.
	ErrInvalidTarget = errors.New("powerup: invalid target")
)

// InvalidTargetError describes a rejected effect target.
type InvalidTargetError struct {
	Kind   Kind
	Square board.Square
	Reason string
}

func (e *InvalidTargetError) Error() string {
	if e.Square == board.NoSquare {
		return fmt.Sprintf("powerup: invalid %s target: %s", e.Kind, e.Reason)
	}
	return fmt.Sprintf("powerup: invalid %s target %s: %s", e.Kind, e.Square, e.Reason)
}

func (e *InvalidTargetError) Unwrap() error { return ErrInvalidTarget }

func invalidTarget(kind Kind, sq board.Square, reason string) error {
	return &InvalidTargetError{Kind: kind, Square: sq, Reason: reason}
}
