package powerup

import (
	"fmt"

	"github.com/hailam/powerchess/internal/board"
)

// ApplyEffect returns the position after effect. pos is never modified, and
// on error nothing is returned.
//
// Instant effects (airstrike, gun, paratroopers, nuke) use up the
// activator's turn. A chopper effect only checks that a session may start;
// strikes go through Strike.
func ApplyEffect(pos *board.Position, effect Effect) (*board.Position, error) {
	side := effect.Side()
	if side != pos.SideToMove {
		return nil, invalidTarget(effect.Kind(), board.NoSquare, fmt.Sprintf("%s is not to move", side))
	}

	next := pos.Copy()
	var changed bool
	var err error
	switch e := effect.(type) {
	case AirstrikeEffect:
		changed, err = applyAirstrike(next, e)
	case GunEffect:
		changed, err = applyGun(next, e)
	case ParatroopersEffect:
		changed, err = applyParatroopers(next, e)
	case NukeEffect:
		changed = applyNuke(next)
	case ChopperEffect:
		if pos.InCheck() {
			return nil, invalidTarget(ChopperGunner, board.NoSquare, "activator is in check")
		}
		if e.Session.Remaining < 1 {
			return nil, invalidTarget(ChopperGunner, board.NoSquare, "session has no strikes")
		}
		return next, nil
	default:
		return nil, fmt.Errorf("powerup: unsupported effect %T", effect)
	}
	if err != nil {
		return nil, err
	}

	if next.InCheck() {
		return nil, invalidTarget(effect.Kind(), board.NoSquare, "activator left in check")
	}
	next.PassTurn(changed)
	return next, nil
}

// removeEnemy takes the enemy piece off sq. Kings are never removed.
func removeEnemy(pos *board.Position, kind Kind, side board.Color, sq board.Square) (bool, error) {
	if !sq.IsValid() {
		return false, invalidTarget(kind, sq, "off the board")
	}
	piece := pos.PieceAt(sq)
	if piece == board.NoPiece || piece.Color() == side {
		return false, nil
	}
	if piece.Type() == board.King {
		return false, invalidTarget(kind, sq, "cannot remove a king")
	}
	pos.RemovePiece(sq)
	return true, nil
}

func applyAirstrike(pos *board.Position, e AirstrikeEffect) (bool, error) {
	// Validate every square first so a bad target anywhere rejects the whole
	// strike.
	for _, sq := range e.Targets {
		if !sq.IsValid() {
			return false, invalidTarget(Airstrike, sq, "off the board")
		}
		if sq == pos.KingSquare[e.By.Other()] {
			return false, invalidTarget(Airstrike, sq, "enemy king square")
		}
	}
	removed := false
	for _, sq := range e.Targets {
		ok, err := removeEnemy(pos, Airstrike, e.By, sq)
		if err != nil {
			return false, err
		}
		removed = removed || ok
	}
	return removed, nil
}

func applyGun(pos *board.Position, e GunEffect) (bool, error) {
	if !e.Shooter.IsValid() {
		return false, invalidTarget(Gun, e.Shooter, "shooter off the board")
	}
	if shooter := pos.PieceAt(e.Shooter); shooter == board.NoPiece || shooter.Color() != e.By {
		return false, invalidTarget(Gun, e.Shooter, "no shooter of the activating side")
	}
	if !e.Target.IsValid() {
		return false, invalidTarget(Gun, e.Target, "off the board")
	}
	target := pos.PieceAt(e.Target)
	if target == board.NoPiece || target.Color() == e.By {
		return false, invalidTarget(Gun, e.Target, "no enemy piece")
	}
	if target.Type() == board.King {
		return false, invalidTarget(Gun, e.Target, "cannot remove a king")
	}

	inRange := false
	for _, m := range pos.GenerateLegalMoves().Slice() {
		if m.From() == e.Shooter && m.To() == e.Target {
			inRange = true
			break
		}
	}
	if !inRange {
		return false, invalidTarget(Gun, e.Target, "out of the shooter's range")
	}
	pos.RemovePiece(e.Target)
	return true, nil
}

func applyParatroopers(pos *board.Position, e ParatroopersEffect) (bool, error) {
	pawn := board.NewPiece(board.Pawn, e.By)
	for i, sq := range e.Drops {
		if !sq.IsValid() {
			return false, invalidTarget(Paratroopers, sq, "off the board")
		}
		if r := sq.Rank(); r == 0 || r == 7 {
			return false, invalidTarget(Paratroopers, sq, "pawns cannot land on a back rank")
		}
		if !pos.IsEmpty(sq) {
			return false, invalidTarget(Paratroopers, sq, "square is occupied")
		}
		if err := pos.PlacePiece(pawn, sq); err != nil {
			return false, fmt.Errorf("paratrooper %d: %w", i, err)
		}
	}
	return true, nil
}

func applyNuke(pos *board.Position) bool {
	removed := false
	for sq := board.A1; sq <= board.H8; sq++ {
		if p := pos.PieceAt(sq); p != board.NoPiece && p.Type() != board.King {
			pos.RemovePiece(sq)
			removed = true
		}
	}
	return removed
}
