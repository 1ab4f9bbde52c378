// Package powerup implements the charge meters and the board effects that
// act outside normal move rules.
package powerup

import (
	"fmt"
	"strings"

	"github.com/hailam/powerchess/internal/board"
)

// Kind identifies a powerup.
type Kind uint8

const (
	Airstrike Kind = iota
	ChopperGunner
	Gun
	Paratroopers
	Nuke
	kindCount
)

var kindNames = [...]string{"airstrike", "chopper_gunner", "gun", "paratroopers", "nuke"}

func (k Kind) String() string {
	if k >= kindCount {
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
	return kindNames[k]
}

// ParseKind parses a powerup name such as "airstrike" or "chopper_gunner".
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if strings.EqualFold(s, name) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("powerup: unknown kind %q", s)
}

// MaxParatroopers is the number of pawns a paratrooper drop can place.
const MaxParatroopers = 3

// Effect is a board mutation produced by a successful activation. The
// concrete types are AirstrikeEffect, ChopperEffect, GunEffect,
// ParatroopersEffect and NukeEffect.
type Effect interface {
	Kind() Kind
	// Side is the activating side.
	Side() board.Color
	isEffect()
}

// AirstrikeEffect removes every non-king enemy piece on Targets.
type AirstrikeEffect struct {
	By      board.Color
	Targets []board.Square
}

// ChopperEffect starts a chopper gunner session.
type ChopperEffect struct {
	Session ChopperSession
}

// GunEffect has Shooter remove the enemy piece on Target.
type GunEffect struct {
	By      board.Color
	Shooter board.Square
	Target  board.Square
}

// ParatroopersEffect drops a pawn of the activating side on each square.
type ParatroopersEffect struct {
	By    board.Color
	Drops []board.Square
}

// NukeEffect removes every piece except the kings.
type NukeEffect struct {
	By board.Color
}

func (AirstrikeEffect) Kind() Kind    { return Airstrike }
func (ChopperEffect) Kind() Kind      { return ChopperGunner }
func (GunEffect) Kind() Kind          { return Gun }
func (ParatroopersEffect) Kind() Kind { return Paratroopers }
func (NukeEffect) Kind() Kind         { return Nuke }

func (e AirstrikeEffect) Side() board.Color    { return e.By }
func (e ChopperEffect) Side() board.Color      { return e.Session.Side }
func (e GunEffect) Side() board.Color          { return e.By }
func (e ParatroopersEffect) Side() board.Color { return e.By }
func (e NukeEffect) Side() board.Color         { return e.By }

func (AirstrikeEffect) isEffect()    {}
func (ChopperEffect) isEffect()      {}
func (GunEffect) isEffect()          {}
func (ParatroopersEffect) isEffect() {}
func (NukeEffect) isEffect()         {}

// NewEffect builds the effect for kind from the squares supplied by the
// caller:
//
//	airstrike      every square to strike (see AirstrikePattern)
//	chopper_gunner none
//	gun            shooter, target
//	paratroopers   1 to 3 drop squares
//	nuke           none
func NewEffect(side board.Color, kind Kind, targets []board.Square, chopperPlies int) (Effect, error) {
	switch kind {
	case Airstrike:
		if len(targets) == 0 {
			return nil, invalidTarget(kind, board.NoSquare, "no target squares")
		}
		return AirstrikeEffect{By: side, Targets: append([]board.Square(nil), targets...)}, nil
	case ChopperGunner:
		return ChopperEffect{Session: ChopperSession{Side: side, Remaining: chopperPlies}}, nil
	case Gun:
		if len(targets) != 2 {
			return nil, invalidTarget(kind, board.NoSquare, "want shooter and target squares")
		}
		return GunEffect{By: side, Shooter: targets[0], Target: targets[1]}, nil
	case Paratroopers:
		if len(targets) == 0 || len(targets) > MaxParatroopers {
			return nil, invalidTarget(kind, board.NoSquare, fmt.Sprintf("want 1 to %d drop squares", MaxParatroopers))
		}
		return ParatroopersEffect{By: side, Drops: append([]board.Square(nil), targets...)}, nil
	case Nuke:
		return NukeEffect{By: side}, nil
	}
	return nil, fmt.Errorf("powerup: unknown kind %v", kind)
}

// AirstrikePattern returns the 3x3 block centred on center, clipped to the
// board, in square order.
func AirstrikePattern(center board.Square) []board.Square {
	if !center.IsValid() {
		return nil
	}
	var out []board.Square
	for dr := -1; dr <= 1; dr++ {
		for df := -1; df <= 1; df++ {
			if sq := board.SquareAt(center.File()+df, center.Rank()+dr); sq != board.NoSquare {
				out = append(out, sq)
			}
		}
	}
	return out
}
