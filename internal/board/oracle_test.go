package board

import (
	"testing"

	nchess "github.com/corentings/chess/v2"
	"github.com/dylhunn/dragontoothmg"
)

// TestLegalMoveCountsAgainstReference plays deterministic lines and compares
// the number of legal moves at every ply with an independent rules library.
func TestLegalMoveCountsAgainstReference(t *testing.T) {
	starts := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	}
	strides := []int{3, 5, 11}

	for _, fen := range starts {
		for _, stride := range strides {
			pos, err := ParseFEN(fen)
			if err != nil {
				t.Fatalf("ParseFEN: %v", err)
			}
			opt, err := nchess.FEN(fen)
			if err != nil {
				t.Fatalf("reference FEN: %v", err)
			}
			ref := nchess.NewGame(opt)

			for ply := 0; ply < 120 && ref.Outcome() == nchess.NoOutcome; ply++ {
				ours := pos.GenerateLegalMoves()
				theirs := len(ref.ValidMoves())
				if ours.Len() != theirs {
					t.Fatalf("%q stride %d ply %d: %d legal moves, reference has %d\n%s",
						fen, stride, ply, ours.Len(), theirs, pos)
				}
				if ours.Len() == 0 {
					break
				}

				m := ours.Get((ply * stride) % ours.Len())
				if err := ref.PushNotationMove(m.String(), nchess.UCINotation{}, nil); err != nil {
					t.Fatalf("reference rejected %v: %v", m, err)
				}
				if pos, err = Apply(pos, m); err != nil {
					t.Fatalf("Apply(%v): %v", m, err)
				}
			}
		}
	}
}

// TestPerftAgainstDragontooth compares node counts with a second,
// bitboard-based move generator on positions rich in special moves.
func TestPerftAgainstDragontooth(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1",
	}
	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}
		ref := dragontoothmg.ParseFen(fen)
		for depth := 1; depth <= 3; depth++ {
			want := dragontoothPerft(&ref, depth)
			if got := perft(pos, depth); uint64(got) != want {
				t.Errorf("%q depth %d: %d nodes, reference has %d", fen, depth, got, want)
			}
		}
	}
}

func dragontoothPerft(b *dragontoothmg.Board, depth int) uint64 {
	moves := b.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		undo := b.Apply(m)
		nodes += dragontoothPerft(b, depth-1)
		undo()
	}
	return nodes
}
