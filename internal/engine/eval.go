// Package engine implements the chess AI: a depth-bounded negamax search
// with alpha-beta pruning over a configurable static evaluation.
package engine

import "github.com/hailam/powerchess/internal/board"

// Weights parameterize the static evaluation. All values are centipawns or
// centipawns per unit.
type Weights struct {
	// PieceValues indexed by board.PieceType; the king entry is ignored.
	PieceValues [6]int `yaml:"piece_values"`
	// CenterControl is awarded per attack on d4/e4/d5/e5 (doubled) and on
	// the surrounding c3-f6 block.
	CenterControl int `yaml:"center_control"`
	// KingSafety is charged per enemy attack landing next to the king.
	KingSafety int `yaml:"king_safety"`
	// Mobility is awarded per safe square a minor or major piece reaches.
	Mobility int `yaml:"mobility"`
	// PieceSquare enables the piece-square tables.
	PieceSquare bool `yaml:"piece_square"`
	Tempo       int  `yaml:"tempo"`
}

// DefaultWeights returns the standard evaluation weights.
func DefaultWeights() Weights {
	return Weights{
		PieceValues:   [6]int{100, 320, 330, 500, 900, 0},
		CenterControl: 4,
		KingSafety:    8,
		Mobility:      3,
		PieceSquare:   true,
		Tempo:         10,
	}
}

// Piece-square tables, White's view with a8 first; Black mirrors them.

var pawnPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	50, 50, 50, 50, 50, 50, 50, 50,
	10, 10, 20, 30, 30, 20, 10, 10,
	5, 5, 10, 25, 25, 10, 5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, -5, -10, 0, 0, -10, -5, 5,
	5, 10, 10, -20, -20, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightPST = [64]int{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

var bishopPST = [64]int{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

var rookPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, 10, 10, 10, 10, 5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	0, 0, 0, 5, 5, 0, 0, 0,
}

var queenPST = [64]int{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-5, 0, 5, 5, 5, 5, 0, -5,
	0, 0, 5, 5, 5, 5, 0, -5,
	-10, 5, 5, 5, 5, 5, 0, -10,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

var kingMidgamePST = [64]int{
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	20, 20, 0, 0, 0, 0, 20, 20,
	20, 30, 10, 0, 0, 10, 30, 20,
}

var kingEndgamePST = [64]int{
	-50, -40, -30, -20, -20, -30, -40, -50,
	-30, -20, -10, 0, 0, -10, -20, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -30, 0, 0, 0, 0, -30, -30,
	-50, -30, -30, -30, -30, -30, -30, -50,
}

var psts = [...]*[64]int{&pawnPST, &knightPST, &bishopPST, &rookPST, &queenPST}

// pstIndex maps a square to the table layout above.
func pstIndex(sq board.Square, c board.Color) int {
	if c == board.White {
		return int(sq.Mirror())
	}
	return int(sq)
}

// phase weights per piece type; 24 is a full middlegame.
var phaseWeight = [6]int{0, 1, 1, 2, 4, 0}

const maxPhase = 24

// Evaluate returns the static evaluation with default weights, from the
// side to move's perspective.
func Evaluate(pos *board.Position) int {
	return DefaultWeights().Evaluate(pos)
}

// Evaluate scores pos from the side to move's perspective.
func (w Weights) Evaluate(pos *board.Position) int {
	var score, kingMg, kingEg, phase int

	for c := board.White; c <= board.Black; c++ {
		sign := 1
		if c == board.Black {
			sign = -1
		}
		for pt := board.Pawn; pt <= board.King; pt++ {
			bb := pos.Pieces[c][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				score += sign * w.PieceValues[pt]
				phase += phaseWeight[pt]
				if !w.PieceSquare {
					continue
				}
				idx := pstIndex(sq, c)
				if pt == board.King {
					kingMg += sign * kingMidgamePST[idx]
					kingEg += sign * kingEndgamePST[idx]
				} else {
					score += sign * psts[pt][idx]
				}
			}
		}
	}

	if phase > maxPhase {
		phase = maxPhase
	}
	score += (kingMg*phase + kingEg*(maxPhase-phase)) / maxPhase
	score += w.activity(pos, board.White) - w.activity(pos, board.Black)

	if pos.SideToMove == board.Black {
		score = -score
	}
	return score + w.Tempo
}

// activity sums centre control, mobility and king pressure for side c.
func (w Weights) activity(pos *board.Position, c board.Color) int {
	enemy := c.Other()
	occupied := pos.AllOccupied

	var enemyPawnAttacks board.Bitboard
	pawns := pos.Pieces[enemy][board.Pawn]
	for pawns != 0 {
		enemyPawnAttacks |= board.PawnAttacks(pawns.PopLSB(), enemy)
	}
	blocked := enemyPawnAttacks | pos.Occupied[c]

	var enemyZone board.Bitboard
	if ksq := pos.KingSquare[enemy]; ksq != board.NoSquare {
		enemyZone = board.KingAttacks(ksq)
	}

	var attacks board.Bitboard
	score := 0
	for pt := board.Pawn; pt <= board.Queen; pt++ {
		bb := pos.Pieces[c][pt]
		for bb != 0 {
			sq := bb.PopLSB()
			var att board.Bitboard
			switch pt {
			case board.Pawn:
				att = board.PawnAttacks(sq, c)
			case board.Knight:
				att = board.KnightAttacks(sq)
			case board.Bishop:
				att = board.BishopAttacks(sq, occupied)
			case board.Rook:
				att = board.RookAttacks(sq, occupied)
			case board.Queen:
				att = board.QueenAttacks(sq, occupied)
			}
			attacks |= att
			if pt != board.Pawn {
				score += w.Mobility * (att &^ blocked).PopCount()
			}
			score += w.KingSafety * (att & enemyZone).PopCount()
		}
	}

	score += w.CenterControl * (2*(attacks&board.Center).PopCount() + (attacks & board.BigCenter).PopCount())
	return score
}
