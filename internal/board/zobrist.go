package board

// Zobrist keys, generated once from a fixed seed so hashes are stable across
// runs and processes.
var (
	zobristPiece     [2][6][64]uint64
	zobristEnPassant [8]uint64
	zobristCastling  [16]uint64
	zobristBlack     uint64
)

// splitmix64 is enough for key generation; quality only matters for
// collision rate in the transposition table.
type splitmix64 uint64

func (s *splitmix64) next() uint64 {
	*s += 0x9E3779B97F4A7C15
	z := uint64(*s)
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

func init() {
	rng := splitmix64(0x5EED_C4E5_5B0A_4D00)

	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			for sq := A1; sq <= H8; sq++ {
				zobristPiece[c][pt][sq] = rng.next()
			}
		}
	}
	for f := range zobristEnPassant {
		zobristEnPassant[f] = rng.next()
	}
	for i := range zobristCastling {
		zobristCastling[i] = rng.next()
	}
	zobristBlack = rng.next()
}

// ComputeHash derives the Zobrist hash from scratch. MakeMove maintains the
// same value incrementally.
func (p *Position) ComputeHash() uint64 {
	var h uint64
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			bb := p.Pieces[c][pt]
			for bb != 0 {
				h ^= zobristPiece[c][pt][bb.PopLSB()]
			}
		}
	}
	if p.EnPassant != NoSquare {
		h ^= zobristEnPassant[p.EnPassant.File()]
	}
	h ^= zobristCastling[p.CastlingRights]
	if p.SideToMove == Black {
		h ^= zobristBlack
	}
	return h
}
