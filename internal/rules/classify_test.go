package rules

import (
	"testing"

	"github.com/hailam/powerchess/internal/board"
)

func mustFEN(t *testing.T, fen string) *board.Position {
	t.Helper()
	pos, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return pos
}

func play(t *testing.T, pos *board.Position, uci string) *board.Position {
	t.Helper()
	m, err := board.ParseMove(uci, pos)
	if err != nil {
		t.Fatalf("ParseMove(%s): %v", uci, err)
	}
	next, err := board.Apply(pos, m)
	if err != nil {
		t.Fatalf("Apply(%s): %v", uci, err)
	}
	return next
}

func TestClassifyPositions(t *testing.T) {
	tests := []struct {
		name string
		fen  string
		want Outcome
	}{
		{"start", board.StartFEN, Outcome{Kind: Ongoing, Side: board.NoColor}},
		{"back rank mate", "R6k/6pp/8/8/8/8/8/K7 b - - 0 1", Outcome{Kind: Checkmate, Side: board.White}},
		{"check", "4k3/8/8/8/8/8/8/4R1K1 b - - 0 1", Outcome{Kind: Check, Side: board.Black}},
		{"stalemate", "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", Outcome{Kind: Stalemate, Side: board.NoColor}},
		{"fifty", "4k3/8/8/8/8/8/8/R3K3 w - - 100 80", Outcome{Kind: DrawFiftyMove, Side: board.NoColor}},
		{"fifty beats check", "4k3/8/8/8/8/8/8/4R1K1 b - - 100 80", Outcome{Kind: DrawFiftyMove, Side: board.NoColor}},
		{"mate beats fifty", "R6k/6pp/8/8/8/8/8/K7 b - - 100 80", Outcome{Kind: Checkmate, Side: board.White}},
		{"bare kings", "8/8/8/4k3/8/8/8/4K3 w - - 0 1", Outcome{Kind: DrawInsufficientMaterial, Side: board.NoColor}},
		{"king and knight", "8/8/8/4k3/8/8/8/4KN2 b - - 0 1", Outcome{Kind: DrawInsufficientMaterial, Side: board.NoColor}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pos := mustFEN(t, tc.fen)
			got := Classify(pos, []board.Key{pos.Key()})
			if got != tc.want {
				t.Errorf("Classify() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCheckmateHasNoMoves(t *testing.T) {
	pos := mustFEN(t, "R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	out := Classify(pos, nil)
	if out.Kind != Checkmate || out.Side != board.White || !out.IsTerminal() {
		t.Fatalf("Classify() = %v, want checkmate for white", out)
	}
	if n := pos.GenerateLegalMoves().Len(); n != 0 {
		t.Errorf("mated side has %d legal moves", n)
	}
	if out.Result() != "1-0" {
		t.Errorf("Result() = %q, want 1-0", out.Result())
	}
}

func TestThreefoldRepetition(t *testing.T) {
	pos := board.NewPosition()
	history := []board.Key{pos.Key()}
	shuffle := []string{"g1f3", "g8f6", "f3g1", "f6g8"}

	for round := 1; round <= 2; round++ {
		for _, uci := range shuffle {
			pos = play(t, pos, uci)
			history = append(history, pos.Key())
		}
		got := Classify(pos, history)
		switch round {
		case 1:
			if got.Kind != Ongoing {
				t.Fatalf("after one cycle: %v, want ongoing", got)
			}
		case 2:
			if got.Kind != DrawRepetition || !got.IsTerminal() || got.Result() != "1/2-1/2" {
				t.Fatalf("after two cycles: %v, want draw by repetition", got)
			}
		}
	}
}

// kingTour lists the white king's squares from a1: along the first rank,
// snaking up through the sixth, then onto a7, b7, a8, b8. Fifty squares,
// no two the same.
func kingTour() []string {
	tour := []string{"b1", "c1", "d1", "e1", "f1", "g1"}
	for rank := '2'; rank <= '6'; rank++ {
		for i := 0; i < 8; i++ {
			file := 'a' + rune(i)
			if rank%2 == 0 {
				file = 'h' - rune(i)
			}
			tour = append(tour, string(file)+string(rank))
		}
	}
	return append(tour, "a7", "b7", "a8", "b8")
}

// The white king never revisits a square while the black king shuttles
// between e8 and d8, so no position repeats and the hundredth quiet ply
// is a fifty-move draw.
func TestFiftyMoveRule(t *testing.T) {
	pos := mustFEN(t, "4k3/8/8/8/8/8/8/K6R w - - 0 1")
	history := []board.Key{pos.Key()}

	tour := kingTour()
	if len(tour) != FiftyMoveLimit/2 {
		t.Fatalf("tour has %d squares, want %d", len(tour), FiftyMoveLimit/2)
	}
	from := "a1"
	for i, to := range tour {
		black := "e8d8"
		if i%2 == 1 {
			black = "d8e8"
		}
		for j, uci := range []string{from + to, black} {
			pos = play(t, pos, uci)
			history = append(history, pos.Key())

			ply := 2*i + j + 1
			got := Classify(pos, history)
			if ply < FiftyMoveLimit && got.IsTerminal() {
				t.Fatalf("ply %d (%s): terminal too early: %v", ply, uci, got)
			}
			if ply == FiftyMoveLimit && got.Kind != DrawFiftyMove {
				t.Fatalf("ply %d (%s): %v, want fifty-move draw", ply, uci, got)
			}
		}
		from = to
	}
	if pos.HalfMoveClock != FiftyMoveLimit {
		t.Errorf("half-move clock = %d, want %d", pos.HalfMoveClock, FiftyMoveLimit)
	}
	for _, k := range history {
		if n := Repetitions(k, history); n != 1 {
			t.Fatalf("position seen %d times", n)
		}
	}
}

func TestOutcomeStrings(t *testing.T) {
	tests := []struct {
		out    Outcome
		str    string
		result string
	}{
		{Outcome{Kind: Ongoing, Side: board.NoColor}, "ongoing", "*"},
		{Outcome{Kind: Check, Side: board.White}, "white in check", "*"},
		{Outcome{Kind: Checkmate, Side: board.Black}, "checkmate, black wins", "0-1"},
		{Outcome{Kind: Stalemate, Side: board.NoColor}, "stalemate", "1/2-1/2"},
		{Outcome{Kind: DrawInsufficientMaterial, Side: board.NoColor}, "draw_insufficient_material", "1/2-1/2"},
	}
	for _, tc := range tests {
		if got := tc.out.String(); got != tc.str {
			t.Errorf("String() = %q, want %q", got, tc.str)
		}
		if got := tc.out.Result(); got != tc.result {
			t.Errorf("%v Result() = %q, want %q", tc.out, got, tc.result)
		}
	}
}
