package powerup

import "github.com/hailam/powerchess/internal/board"

// ChopperSession is the state of an active chopper gunner. While it runs
// the controlling side removes enemy pieces instead of moving.
type ChopperSession struct {
	Side      board.Color
	Remaining int
	Struck    []board.Square
}

// Active reports whether strikes remain.
func (s ChopperSession) Active() bool {
	return s.Remaining > 0
}

// Strike removes the enemy piece on sq and uses up one strike. When the
// last strike is spent the turn passes to the controller's opponent. pos is
// never modified.
func Strike(pos *board.Position, session ChopperSession, sq board.Square) (*board.Position, ChopperSession, error) {
	if !session.Active() {
		return nil, session, invalidTarget(ChopperGunner, sq, "session is over")
	}
	if pos.SideToMove != session.Side {
		return nil, session, invalidTarget(ChopperGunner, sq, "controller is not to move")
	}
	if !sq.IsValid() {
		return nil, session, invalidTarget(ChopperGunner, sq, "off the board")
	}
	piece := pos.PieceAt(sq)
	switch {
	case piece == board.NoPiece:
		return nil, session, invalidTarget(ChopperGunner, sq, "empty square")
	case piece.Color() == session.Side:
		return nil, session, invalidTarget(ChopperGunner, sq, "own piece")
	case piece.Type() == board.King:
		return nil, session, invalidTarget(ChopperGunner, sq, "cannot remove a king")
	}

	next := pos.Copy()
	next.RemovePiece(sq)

	out := ChopperSession{
		Side:      session.Side,
		Remaining: session.Remaining - 1,
		Struck:    append(append([]board.Square(nil), session.Struck...), sq),
	}
	if !out.Active() {
		next.PassTurn(true)
	}
	return next, out, nil
}

// EndChopper finishes a session early and passes the turn to the
// controller's opponent.
func EndChopper(pos *board.Position, session ChopperSession) (*board.Position, ChopperSession) {
	next := pos.Copy()
	next.PassTurn(len(session.Struck) > 0)
	return next, ChopperSession{Side: session.Side, Struck: session.Struck}
}
