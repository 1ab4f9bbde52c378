package board

import "testing"

func TestTerminalPositions(t *testing.T) {
	tests := []struct {
		name      string
		fen       string
		checkmate bool
		stalemate bool
	}{
		// Back rank: the g7/h7 pawns box in the black king.
		{"back rank mate", "R6k/6pp/8/8/8/8/8/K7 b - - 0 1", true, false},
		// The black king simply takes the rook.
		{"king takes checker", "6Rk/8/8/8/8/8/8/K7 b - - 0 1", false, false},
		{"corner stalemate", "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", false, true},
		{"fools mate", "rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3", true, false},
		{"start", StartFEN, false, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos, err := ParseFEN(tc.fen)
			if err != nil {
				t.Fatalf("ParseFEN: %v", err)
			}
			if got := pos.IsCheckmate(); got != tc.checkmate {
				t.Errorf("IsCheckmate() = %v, want %v\n%s", got, tc.checkmate, pos)
			}
			if got := pos.IsStalemate(); got != tc.stalemate {
				t.Errorf("IsStalemate() = %v, want %v\n%s", got, tc.stalemate, pos)
			}
			if tc.checkmate && pos.GenerateLegalMoves().Len() != 0 {
				t.Errorf("mated side has moves: %v", pos.GenerateLegalMoves().Strings())
			}
		})
	}
}

func TestInsufficientMaterial(t *testing.T) {
	tests := []struct {
		fen  string
		want bool
	}{
		{"8/8/8/4k3/8/8/8/4K3 w - - 0 1", true},
		{"8/8/8/4k3/8/8/8/4KN2 w - - 0 1", true},
		{"8/8/8/4k3/8/8/2b5/4K3 w - - 0 1", true},
		{"8/8/8/4k3/8/8/8/3NKN2 w - - 0 1", false},
		{"8/8/8/4k3/8/8/2b5/4KB2 w - - 0 1", false},
		{"8/8/8/4k3/8/8/4P3/4K3 w - - 0 1", false},
		{"8/8/8/4k3/8/8/8/4KR2 w - - 0 1", false},
	}
	for _, tc := range tests {
		pos, err := ParseFEN(tc.fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", tc.fen, err)
		}
		if got := pos.IsInsufficientMaterial(); got != tc.want {
			t.Errorf("IsInsufficientMaterial(%q) = %v, want %v", tc.fen, got, tc.want)
		}
	}
}
