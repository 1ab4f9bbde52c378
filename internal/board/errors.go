package board

import (
	"errors"
	"fmt"
)

var (
	// ErrIllegalMove is returned when a move is not legal in the position.
	ErrIllegalMove = errors.New("illegal move")
	// ErrMalformedPosition is returned for FEN that does not describe a
	// playable position.
	ErrMalformedPosition = errors.New("malformed position")
)

// IllegalMoveError carries the rejected move and the position it was tried in.
type IllegalMoveError struct {
	Move Move
	FEN  string
}

func (e *IllegalMoveError) Error() string {
	return fmt.Sprintf("illegal move %s in %s", e.Move, e.FEN)
}

func (e *IllegalMoveError) Unwrap() error { return ErrIllegalMove }

// MalformedPositionError describes why a FEN string was rejected.
type MalformedPositionError struct {
	FEN    string
	Reason string
}

func (e *MalformedPositionError) Error() string {
	return fmt.Sprintf("malformed position %q: %s", e.FEN, e.Reason)
}

func (e *MalformedPositionError) Unwrap() error { return ErrMalformedPosition }
