package board

import "log"

// DebugMoveValidation logs inconsistent positions seen by the generator and
// MakeMove. Off by default.
var DebugMoveValidation = false

// GenerateLegalMoves returns every legal move in canonical order (see
// MoveList.Sort). A pseudo-legal move is kept only if, simulated on a scratch
// copy, it does not leave the mover's king attacked.
func (p *Position) GenerateLegalMoves() *MoveList {
	return p.filterLegalMoves(p.GeneratePseudoLegalMoves())
}

// GeneratePseudoLegalMoves generates moves per piece movement rules without
// the king-safety filter, in canonical order.
func (p *Position) GeneratePseudoLegalMoves() *MoveList {
	ml := NewMoveList()
	p.generateAllMoves(ml)
	ml.Sort()
	return ml
}

// GenerateCaptures returns the legal captures and promotions, in canonical
// order.
func (p *Position) GenerateCaptures() *MoveList {
	all := p.GenerateLegalMoves()
	ml := NewMoveList()
	for _, m := range all.Slice() {
		if m.IsCapture(p) || m.IsPromotion() {
			ml.Add(m)
		}
	}
	return ml
}

// generateAllMoves generates all pseudo-legal moves in generation order.
func (p *Position) generateAllMoves(ml *MoveList) {
	us := p.SideToMove
	occupied := p.AllOccupied
	targets := ^p.Occupied[us]

	if DebugMoveValidation && p.Pieces[us][King] == 0 {
		log.Printf("MOVEGEN: %v has no king fen=%s", us, p.ToFEN())
	}

	p.generatePawnMoves(ml, us, p.Occupied[us.Other()], occupied)

	for pt := Knight; pt <= King; pt++ {
		pieces := p.Pieces[us][pt]
		for pieces != 0 {
			from := pieces.PopLSB()
			var attacks Bitboard
			switch pt {
			case Knight:
				attacks = KnightAttacks(from)
			case Bishop:
				attacks = BishopAttacks(from, occupied)
			case Rook:
				attacks = RookAttacks(from, occupied)
			case Queen:
				attacks = QueenAttacks(from, occupied)
			case King:
				attacks = KingAttacks(from)
			}
			attacks &= targets
			for attacks != 0 {
				ml.Add(NewMove(from, attacks.PopLSB()))
			}
		}
	}

	p.generateCastlingMoves(ml, us)
}

// generatePawnMoves generates pushes, captures, promotions and en passant.
func (p *Position) generatePawnMoves(ml *MoveList, us Color, enemies, occupied Bitboard) {
	pawns := p.Pieces[us][Pawn]
	empty := ^occupied

	var push1, push2, attackW, attackE, promotionRank Bitboard
	var pushDir int

	if us == White {
		push1 = pawns.North() & empty
		push2 = (push1 & Rank3).North() & empty
		attackW = pawns.NorthWest() & enemies
		attackE = pawns.NorthEast() & enemies
		promotionRank = Rank8
		pushDir = 8
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & Rank6).South() & empty
		attackW = pawns.SouthWest() & enemies
		attackE = pawns.SouthEast() & enemies
		promotionRank = Rank1
		pushDir = -8
	}

	addPawn := func(targets Bitboard, delta int) {
		for targets != 0 {
			to := targets.PopLSB()
			from := Square(int(to) - delta)
			if SquareBB(to)&promotionRank != 0 {
				addPromotions(ml, from, to)
			} else {
				ml.Add(NewMove(from, to))
			}
		}
	}

	addPawn(push1, pushDir)
	addPawn(push2, 2*pushDir)
	addPawn(attackW, pushDir-1)
	addPawn(attackE, pushDir+1)

	if p.EnPassant != NoSquare {
		attackers := PawnAttacks(p.EnPassant, us.Other()) & pawns
		for attackers != 0 {
			ml.Add(NewEnPassant(attackers.PopLSB(), p.EnPassant))
		}
	}
}

// addPromotions adds all four promotion moves.
func addPromotions(ml *MoveList, from, to Square) {
	ml.Add(NewPromotion(from, to, Queen))
	ml.Add(NewPromotion(from, to, Rook))
	ml.Add(NewPromotion(from, to, Bishop))
	ml.Add(NewPromotion(from, to, Knight))
}

// castlePath lists, per side and wing, the squares that must be empty and
// the squares the king crosses (start and landing included).
var castlePath = [2][2]struct {
	empty      Bitboard
	kingPath   [3]Square
	kingTo     Square
	rookHome   Square
	rookTarget Square
}{
	White: {
		{SquareBB(F1) | SquareBB(G1), [3]Square{E1, F1, G1}, G1, H1, F1},
		{SquareBB(B1) | SquareBB(C1) | SquareBB(D1), [3]Square{E1, D1, C1}, C1, A1, D1},
	},
	Black: {
		{SquareBB(F8) | SquareBB(G8), [3]Square{E8, F8, G8}, G8, H8, F8},
		{SquareBB(B8) | SquareBB(C8) | SquareBB(D8), [3]Square{E8, D8, C8}, C8, A8, D8},
	},
}

// generateCastlingMoves adds castling when the right is held, the path is
// empty and the king is not in, through or into check.
func (p *Position) generateCastlingMoves(ml *MoveList, us Color) {
	them := us.Other()
	for wing, kingSide := range [2]bool{true, false} {
		if !p.CastlingRights.CanCastle(us, kingSide) {
			continue
		}
		path := castlePath[us][wing]
		if p.AllOccupied&path.empty != 0 {
			continue
		}
		safe := true
		for _, sq := range path.kingPath {
			if p.IsSquareAttacked(sq, them) {
				safe = false
				break
			}
		}
		if safe {
			ml.Add(NewCastling(path.kingPath[0], path.kingTo))
		}
	}
}

// filterLegalMoves keeps the moves that do not leave the mover in check.
// Order is preserved.
func (p *Position) filterLegalMoves(ml *MoveList) *MoveList {
	result := NewMoveList()
	scratch := p.Copy()
	for _, m := range ml.Slice() {
		if scratch.legalOnScratch(m) {
			result.Add(m)
		}
	}
	return result
}

// legalOnScratch plays m, checks the mover's king and takes m back.
func (p *Position) legalOnScratch(m Move) bool {
	us := p.SideToMove
	undo := p.MakeMove(m)
	ksq := p.KingSquare[us]
	legal := ksq == NoSquare || !p.IsSquareAttacked(ksq, us.Other())
	p.UnmakeMove(m, undo)
	return legal
}

// IsLegal reports whether m is legal in the position.
func (p *Position) IsLegal(m Move) bool {
	piece := p.PieceAt(m.From())
	if piece == NoPiece || piece.Color() != p.SideToMove {
		return false
	}
	return p.GeneratePseudoLegalMoves().Contains(m) && p.Copy().legalOnScratch(m)
}

// MakeMove applies a pseudo-legal move in place and returns what is needed
// to take it back with UnmakeMove.
func (p *Position) MakeMove(m Move) UndoInfo {
	undo := UndoInfo{
		SideToMove:     p.SideToMove,
		CapturedPiece:  NoPiece,
		CastlingRights: p.CastlingRights,
		EnPassant:      p.EnPassant,
		HalfMoveClock:  p.HalfMoveClock,
		FullMoveNumber: p.FullMoveNumber,
		Hash:           p.Hash,
		Checkers:       p.Checkers,
		KingSquare:     p.KingSquare,
		Pieces:         p.Pieces,
		Occupied:       p.Occupied,
		AllOccupied:    p.AllOccupied,
	}

	us := p.SideToMove
	them := us.Other()
	from, to := m.From(), m.To()
	piece := p.PieceAt(from)

	if piece == NoPiece || piece.Color() != us {
		if DebugMoveValidation {
			log.Printf("MAKEMOVE: %v cannot move %v from %v fen=%s", us, piece, from, p.ToFEN())
		}
		return undo
	}
	pt := piece.Type()

	p.setEnPassant(NoSquare)

	if m.IsEnPassant() {
		capturedSq := to - 8
		if us == Black {
			capturedSq = to + 8
		}
		undo.CapturedPiece = p.removePiece(capturedSq)
		p.Hash ^= zobristPiece[them][Pawn][capturedSq]
	} else if captured := p.PieceAt(to); captured != NoPiece && !m.IsCastling() {
		if DebugMoveValidation && captured.Type() == King {
			log.Printf("MAKEMOVE: %v captures a king on %v", us, to)
		}
		undo.CapturedPiece = p.removePiece(to)
		p.Hash ^= zobristPiece[them][captured.Type()][to]
	}

	p.movePiece(from, to)
	p.Hash ^= zobristPiece[us][pt][from] ^ zobristPiece[us][pt][to]

	if m.IsPromotion() {
		promo := m.Promotion()
		p.Pieces[us][Pawn] &^= SquareBB(to)
		p.Pieces[us][promo] |= SquareBB(to)
		p.Hash ^= zobristPiece[us][Pawn][to] ^ zobristPiece[us][promo][to]
	}

	if m.IsCastling() {
		path := castlePath[us][0]
		if m.IsQueenSideCastle() {
			path = castlePath[us][1]
		}
		p.movePiece(path.rookHome, path.rookTarget)
		p.Hash ^= zobristPiece[us][Rook][path.rookHome] ^ zobristPiece[us][Rook][path.rookTarget]
	}

	p.setCastlingRights(p.CastlingRights & castleMask[from] & castleMask[to])

	// The en-passant target is only recorded when an enemy pawn could
	// actually take, so repeated positions compare equal.
	if pt == Pawn && (to-from == 16 || from-to == 16) {
		epSquare := Square((int(from) + int(to)) / 2)
		if PawnAttacks(epSquare, us)&p.Pieces[them][Pawn] != 0 {
			p.setEnPassant(epSquare)
		}
	}

	if pt == Pawn || undo.CapturedPiece != NoPiece {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}
	if us == Black {
		p.FullMoveNumber++
	}

	p.SideToMove = them
	p.Hash ^= zobristBlack
	p.UpdateCheckers()

	return undo
}

// UnmakeMove restores the position saved in undo.
func (p *Position) UnmakeMove(_ Move, undo UndoInfo) {
	p.CastlingRights = undo.CastlingRights
	p.EnPassant = undo.EnPassant
	p.HalfMoveClock = undo.HalfMoveClock
	p.FullMoveNumber = undo.FullMoveNumber
	p.Hash = undo.Hash
	p.Checkers = undo.Checkers
	p.KingSquare = undo.KingSquare
	p.Pieces = undo.Pieces
	p.Occupied = undo.Occupied
	p.AllOccupied = undo.AllOccupied
	p.SideToMove = undo.SideToMove
}

// HasLegalMoves returns true if the side to move has any legal moves.
func (p *Position) HasLegalMoves() bool {
	ml := NewMoveList()
	p.generateAllMoves(ml)
	scratch := p.Copy()
	for _, m := range ml.Slice() {
		if scratch.legalOnScratch(m) {
			return true
		}
	}
	return false
}

// IsCheckmate returns true if the position is checkmate.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate returns true if the position is stalemate.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}

// IsInsufficientMaterial reports K vs K and K+minor vs K.
func (p *Position) IsInsufficientMaterial() bool {
	if p.Pieces[White][Pawn]|p.Pieces[Black][Pawn] != 0 ||
		p.Pieces[White][Rook]|p.Pieces[Black][Rook] != 0 ||
		p.Pieces[White][Queen]|p.Pieces[Black][Queen] != 0 {
		return false
	}

	white := p.Pieces[White][Knight].PopCount() + p.Pieces[White][Bishop].PopCount()
	black := p.Pieces[Black][Knight].PopCount() + p.Pieces[Black][Bishop].PopCount()
	return white+black <= 1
}
