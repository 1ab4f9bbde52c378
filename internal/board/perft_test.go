package board

import "testing"

// perft counts the leaf nodes at the given depth.
func perft(p *Position, depth int) int64 {
	if depth == 0 {
		return 1
	}

	moves := p.GenerateLegalMoves()
	if depth == 1 {
		return int64(moves.Len())
	}

	var nodes int64
	for _, m := range moves.Slice() {
		undo := p.MakeMove(m)
		nodes += perft(p, depth-1)
		p.UnmakeMove(m, undo)
	}
	return nodes
}

func TestPerft(t *testing.T) {
	tests := []struct {
		name   string
		fen    string
		counts []int64 // counts[i] is perft(i+1)
	}{
		{"start", StartFEN, []int64{20, 400, 8902, 197281}},
		{"kiwipete", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -", []int64{48, 2039, 97862}},
		{"position3", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -", []int64{14, 191, 2812, 43238}},
		{"position4", "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1", []int64{6, 264, 9467}},
		{"position5", "rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8", []int64{44, 1486, 62379}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen)
			if err != nil {
				t.Fatalf("ParseFEN: %v", err)
			}
			before := pos.Copy()
			for i, want := range tc.counts {
				if got := perft(pos, i+1); got != want {
					t.Errorf("perft(%d) = %d, want %d", i+1, got, want)
				}
			}
			if *pos != *before {
				t.Errorf("position changed after perft:\n%s\nwant\n%s", pos, before)
			}
		})
	}
}

// The en passant capture on d3 would expose the black king on a4 to the
// rook on h4.
func TestPerftEnPassantPin(t *testing.T) {
	pos, err := ParseFEN("8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}

	for _, m := range pos.GenerateLegalMoves().Slice() {
		if m.IsEnPassant() {
			t.Errorf("en passant move %v should be illegal (horizontal pin)", m)
		}
	}

	if got := perft(pos, 1); got != 6 {
		t.Errorf("perft(1) = %d, want 6", got)
	}
	if got := perft(pos, 2); got != 94 {
		t.Errorf("perft(2) = %d, want 94", got)
	}
}

func TestMakeUnmakeKeepsHash(t *testing.T) {
	pos, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -")
	if err != nil {
		t.Fatalf("ParseFEN: %v", err)
	}
	for _, m := range pos.GenerateLegalMoves().Slice() {
		undo := pos.MakeMove(m)
		if pos.Hash != pos.ComputeHash() {
			t.Errorf("%v: incremental hash %016x, recomputed %016x", m, pos.Hash, pos.ComputeHash())
		}
		pos.UnmakeMove(m, undo)
	}
}
