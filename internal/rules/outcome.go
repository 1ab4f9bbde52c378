// Package rules classifies positions into ongoing, check and the terminal
// results of a game.
package rules

import (
	"fmt"

	"github.com/hailam/powerchess/internal/board"
)

// Kind is the classification of a position.
type Kind uint8

const (
	Ongoing Kind = iota
	Check
	Checkmate
	Stalemate
	DrawRepetition
	DrawFiftyMove
	DrawInsufficientMaterial
)

var kindNames = [...]string{
	Ongoing:                  "ongoing",
	Check:                    "check",
	Checkmate:                "checkmate",
	Stalemate:                "stalemate",
	DrawRepetition:           "draw_repetition",
	DrawFiftyMove:            "draw_fifty_move",
	DrawInsufficientMaterial: "draw_insufficient_material",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Outcome is the result of classifying a position. Side is the checked side
// for Check, the winner for Checkmate and NoColor otherwise.
type Outcome struct {
	Kind Kind
	Side board.Color
}

// IsTerminal reports whether the game is over. Terminal outcomes are
// absorbing: no further moves are accepted.
func (o Outcome) IsTerminal() bool {
	return o.Kind >= Checkmate
}

// IsDraw reports whether the outcome is a drawn result.
func (o Outcome) IsDraw() bool {
	return o.Kind == Stalemate || o.Kind >= DrawRepetition
}

// Result returns the PGN result token.
func (o Outcome) Result() string {
	switch {
	case o.Kind == Checkmate && o.Side == board.White:
		return "1-0"
	case o.Kind == Checkmate:
		return "0-1"
	case o.IsDraw():
		return "1/2-1/2"
	default:
		return "*"
	}
}

func (o Outcome) String() string {
	switch o.Kind {
	case Check:
		return fmt.Sprintf("%s in check", o.Side)
	case Checkmate:
		return fmt.Sprintf("checkmate, %s wins", o.Side)
	default:
		return o.Kind.String()
	}
}
