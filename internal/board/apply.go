package board

// Apply returns the position after playing move in pos. The move must be one
// of pos.GenerateLegalMoves(); anything else fails with *IllegalMoveError.
// pos itself is never modified.
func Apply(pos *Position, move Move) (*Position, error) {
	legal := pos.GenerateLegalMoves()
	if !legal.Contains(move) {
		return nil, &IllegalMoveError{Move: move, FEN: pos.ToFEN()}
	}
	next := pos.Copy()
	next.MakeMove(move)
	return next, nil
}
