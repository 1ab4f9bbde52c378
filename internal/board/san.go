package board

import "strings"

// ToSAN converts a legal move to Standard Algebraic Notation.
func (m Move) ToSAN(pos *Position) string {
	if m == NoMove {
		return "-"
	}

	from, to := m.From(), m.To()
	piece := pos.PieceAt(from)
	if piece == NoPiece {
		return m.String()
	}

	var sb strings.Builder

	switch {
	case m.IsKingSideCastle():
		sb.WriteString("O-O")
	case m.IsQueenSideCastle():
		sb.WriteString("O-O-O")
	default:
		pt := piece.Type()
		if pt != Pawn {
			sb.WriteByte("PNBRQK"[pt])
			sb.WriteString(disambiguation(pos, m, pt))
		}
		if m.IsCapture(pos) {
			if pt == Pawn {
				sb.WriteByte('a' + byte(from.File()))
			}
			sb.WriteByte('x')
		}
		sb.WriteString(to.String())
		if m.IsPromotion() {
			sb.WriteByte('=')
			sb.WriteByte("PNBRQK"[m.Promotion()])
		}
	}

	next := pos.Copy()
	next.MakeMove(m)
	if next.InCheck() {
		if next.HasLegalMoves() {
			sb.WriteByte('+')
		} else {
			sb.WriteByte('#')
		}
	}
	return sb.String()
}

// disambiguation returns the origin file, rank or square needed when another
// piece of the same type can reach the same destination.
func disambiguation(pos *Position, m Move, pt PieceType) string {
	from, to := m.From(), m.To()
	pieces := pos.Pieces[pos.SideToMove][pt]

	ambiguous, sameFile, sameRank := false, false, false
	for _, other := range pos.GenerateLegalMoves().Slice() {
		if other.To() != to || other.From() == from || !pieces.IsSet(other.From()) {
			continue
		}
		ambiguous = true
		sameFile = sameFile || other.From().File() == from.File()
		sameRank = sameRank || other.From().Rank() == from.Rank()
	}

	switch {
	case !ambiguous:
		return ""
	case !sameFile:
		return string(rune('a' + from.File()))
	case !sameRank:
		return string(rune('1' + from.Rank()))
	default:
		return from.String()
	}
}
