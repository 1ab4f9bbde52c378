package board

// Ray directions. Positive directions grow square indices, so the first
// blocker along them is the LSB of the masked ray; negative directions use
// the MSB.
const (
	dirNorth = iota
	dirNorthEast
	dirEast
	dirSouthEast
	dirSouth
	dirSouthWest
	dirWest
	dirNorthWest
)

var rayStep = [8][2]int{
	dirNorth:     {0, 1},
	dirNorthEast: {1, 1},
	dirEast:      {1, 0},
	dirSouthEast: {1, -1},
	dirSouth:     {0, -1},
	dirSouthWest: {-1, -1},
	dirWest:      {-1, 0},
	dirNorthWest: {-1, 1},
}

var (
	knightAttacks [64]Bitboard
	kingAttacks   [64]Bitboard
	pawnAttacks   [2][64]Bitboard
	rays          [8][64]Bitboard
	betweenBB     [64][64]Bitboard
	lineBB        [64][64]Bitboard
)

func init() {
	knightJumps := [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}

	for sq := A1; sq <= H8; sq++ {
		f, r := sq.File(), sq.Rank()

		for _, j := range knightJumps {
			if to := SquareAt(f+j[0], r+j[1]); to != NoSquare {
				knightAttacks[sq] |= SquareBB(to)
			}
		}

		bb := SquareBB(sq)
		kingAttacks[sq] = bb.North() | bb.South() | bb.East() | bb.West() |
			bb.NorthEast() | bb.NorthWest() | bb.SouthEast() | bb.SouthWest()
		pawnAttacks[White][sq] = bb.NorthEast() | bb.NorthWest()
		pawnAttacks[Black][sq] = bb.SouthEast() | bb.SouthWest()

		for dir, step := range rayStep {
			for to := SquareAt(f+step[0], r+step[1]); to != NoSquare; to = SquareAt(to.File()+step[0], to.Rank()+step[1]) {
				rays[dir][sq] |= SquareBB(to)
			}
		}
	}

	for from := A1; from <= H8; from++ {
		for dir := range rayStep {
			ray := rays[dir][from]
			opposite := rays[(dir+4)%8][from]
			walk := ray
			for walk != 0 {
				to := walk.PopLSB()
				betweenBB[from][to] = ray &^ rays[dir][to] &^ SquareBB(to)
				lineBB[from][to] = ray | opposite | SquareBB(from)
			}
		}
	}
}

// slide returns the attacks along one ray, stopping at (and including) the
// first occupied square.
func slide(dir int, sq Square, occupied Bitboard) Bitboard {
	ray := rays[dir][sq]
	blockers := ray & occupied
	if blockers == 0 {
		return ray
	}
	var first Square
	if dir == dirSouth || dir == dirSouthWest || dir == dirWest || dir == dirSouthEast {
		first = blockers.MSB()
	} else {
		first = blockers.LSB()
	}
	return ray &^ rays[dir][first]
}

func KnightAttacks(sq Square) Bitboard { return knightAttacks[sq] }

func KingAttacks(sq Square) Bitboard { return kingAttacks[sq] }

// PawnAttacks returns the squares a pawn of color c on sq captures on.
func PawnAttacks(sq Square, c Color) Bitboard { return pawnAttacks[c][sq] }

// BishopAttacks returns diagonal attacks from sq given the occupancy.
func BishopAttacks(sq Square, occupied Bitboard) Bitboard {
	return slide(dirNorthEast, sq, occupied) | slide(dirSouthEast, sq, occupied) |
		slide(dirSouthWest, sq, occupied) | slide(dirNorthWest, sq, occupied)
}

// RookAttacks returns orthogonal attacks from sq given the occupancy.
func RookAttacks(sq Square, occupied Bitboard) Bitboard {
	return slide(dirNorth, sq, occupied) | slide(dirEast, sq, occupied) |
		slide(dirSouth, sq, occupied) | slide(dirWest, sq, occupied)
}

func QueenAttacks(sq Square, occupied Bitboard) Bitboard {
	return BishopAttacks(sq, occupied) | RookAttacks(sq, occupied)
}

// Between returns the squares strictly between two aligned squares, or
// Empty when they share no rank, file or diagonal.
func Between(a, b Square) Bitboard { return betweenBB[a][b] }

// Aligned reports whether c lies on the line through a and b.
func Aligned(a, b, c Square) bool { return lineBB[a][b]&SquareBB(c) != 0 }

// AttackersByColor returns the pieces of color c attacking sq under the
// given occupancy.
func (p *Position) AttackersByColor(sq Square, c Color, occupied Bitboard) Bitboard {
	diag := p.Pieces[c][Bishop] | p.Pieces[c][Queen]
	orth := p.Pieces[c][Rook] | p.Pieces[c][Queen]
	return (pawnAttacks[c.Other()][sq] & p.Pieces[c][Pawn]) |
		(knightAttacks[sq] & p.Pieces[c][Knight]) |
		(kingAttacks[sq] & p.Pieces[c][King]) |
		(BishopAttacks(sq, occupied) & diag) |
		(RookAttacks(sq, occupied) & orth)
}

// IsSquareAttacked reports whether any piece of byColor attacks sq.
func (p *Position) IsSquareAttacked(sq Square, byColor Color) bool {
	return p.AttackersByColor(sq, byColor, p.AllOccupied) != 0
}

// AttackedSquares returns every square attacked by color c.
func (p *Position) AttackedSquares(c Color) Bitboard {
	var att Bitboard
	occ := p.AllOccupied
	for pt := Pawn; pt <= King; pt++ {
		pieces := p.Pieces[c][pt]
		for pieces != 0 {
			sq := pieces.PopLSB()
			switch pt {
			case Pawn:
				att |= pawnAttacks[c][sq]
			case Knight:
				att |= knightAttacks[sq]
			case Bishop:
				att |= BishopAttacks(sq, occ)
			case Rook:
				att |= RookAttacks(sq, occ)
			case Queen:
				att |= QueenAttacks(sq, occ)
			case King:
				att |= kingAttacks[sq]
			}
		}
	}
	return att
}

// UpdateCheckers recomputes the pieces giving check to the side to move.
func (p *Position) UpdateCheckers() {
	us := p.SideToMove
	kings := p.Pieces[us][King]
	if kings == 0 {
		p.Checkers = 0
		return
	}
	p.Checkers = p.AttackersByColor(kings.LSB(), us.Other(), p.AllOccupied)
}
