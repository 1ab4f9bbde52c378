package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a FEN string and returns a Position. The half-move clock
// and full-move number are optional and default to 0 and 1. The result is
// validated; any failure is a *MalformedPositionError.
func ParseFEN(fen string) (*Position, error) {
	malformed := func(format string, args ...any) error {
		return &MalformedPositionError{FEN: fen, Reason: fmt.Sprintf(format, args...)}
	}

	parts := strings.Fields(fen)
	if len(parts) < 4 || len(parts) > 6 {
		return nil, malformed("need 4 to 6 fields, got %d", len(parts))
	}

	pos := &Position{
		EnPassant:      NoSquare,
		FullMoveNumber: 1,
	}

	if err := parsePiecePlacement(pos, parts[0]); err != nil {
		return nil, malformed("%v", err)
	}

	switch parts[1] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
	default:
		return nil, malformed("invalid side to move %q", parts[1])
	}

	if err := parseCastlingRights(pos, parts[2]); err != nil {
		return nil, malformed("%v", err)
	}

	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			return nil, malformed("invalid en passant square %q", parts[3])
		}
		pos.EnPassant = sq
	}

	if len(parts) > 4 {
		hmc, err := strconv.Atoi(parts[4])
		if err != nil || hmc < 0 {
			return nil, malformed("invalid half-move clock %q", parts[4])
		}
		pos.HalfMoveClock = hmc
	}
	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil || fmn < 1 {
			return nil, malformed("invalid full-move number %q", parts[5])
		}
		pos.FullMoveNumber = fmn
	}

	pos.updateOccupied()
	if reason := pos.validate(); reason != "" {
		return nil, malformed("%s", reason)
	}
	// Keep the target only when a pawn can take, as MakeMove does.
	if ep := pos.EnPassant; ep != NoSquare {
		us := pos.SideToMove
		if PawnAttacks(ep, us.Other())&pos.Pieces[us][Pawn] == 0 {
			pos.EnPassant = NoSquare
		}
	}
	pos.Hash = pos.ComputeHash()
	pos.UpdateCheckers()

	return pos, nil
}

// parsePiecePlacement parses the piece placement section of a FEN string.
func parsePiecePlacement(pos *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("need 8 ranks, got %d", len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		lastDigit := false

		for _, c := range rankStr {
			if file > 7 {
				return fmt.Errorf("too many squares in rank %d", rank+1)
			}
			if c >= '1' && c <= '8' {
				if lastDigit {
					return fmt.Errorf("consecutive digits in rank %d", rank+1)
				}
				file += int(c - '0')
				lastDigit = true
				continue
			}
			piece := PieceFromChar(byte(c))
			if piece == NoPiece || c > 'z' {
				return fmt.Errorf("invalid piece character %q", c)
			}
			pos.setPiece(piece, NewSquare(file, rank))
			file++
			lastDigit = false
		}

		if file != 8 {
			return fmt.Errorf("rank %d has %d squares", rank+1, file)
		}
	}
	return nil
}

// parseCastlingRights parses the castling rights section of a FEN string.
func parseCastlingRights(pos *Position, castling string) error {
	if castling == "-" {
		return nil
	}
	for _, c := range castling {
		var right CastlingRights
		switch c {
		case 'K':
			right = WhiteKingSideCastle
		case 'Q':
			right = WhiteQueenSideCastle
		case 'k':
			right = BlackKingSideCastle
		case 'q':
			right = BlackQueenSideCastle
		default:
			return fmt.Errorf("invalid castling character %q", c)
		}
		if pos.CastlingRights&right != 0 {
			return fmt.Errorf("duplicate castling character %q", c)
		}
		pos.CastlingRights |= right
	}
	return nil
}

// validate returns a non-empty reason when the position cannot arise in
// play. Occupancy must already be derived.
func (p *Position) validate() string {
	if p.Pieces[White][King].PopCount() != 1 {
		return "white must have exactly one king"
	}
	if p.Pieces[Black][King].PopCount() != 1 {
		return "black must have exactly one king"
	}
	if (p.Pieces[White][Pawn]|p.Pieces[Black][Pawn])&(Rank1|Rank8) != 0 {
		return "pawns cannot be on rank 1 or 8"
	}

	homes := [4]struct {
		right      CastlingRights
		king, rook Piece
		ksq, rsq   Square
	}{
		{WhiteKingSideCastle, WhiteKing, WhiteRook, E1, H1},
		{WhiteQueenSideCastle, WhiteKing, WhiteRook, E1, A1},
		{BlackKingSideCastle, BlackKing, BlackRook, E8, H8},
		{BlackQueenSideCastle, BlackKing, BlackRook, E8, A8},
	}
	for _, h := range homes {
		if p.CastlingRights&h.right != 0 && (p.PieceAt(h.ksq) != h.king || p.PieceAt(h.rsq) != h.rook) {
			return fmt.Sprintf("castling right %s without king and rook at home", h.right)
		}
	}

	if p.EnPassant != NoSquare {
		// The target sits behind a pawn of the side that just moved.
		wantRank, pawn, behind := 5, BlackPawn, p.EnPassant-8
		if p.SideToMove == Black {
			wantRank, pawn, behind = 2, WhitePawn, p.EnPassant+8
		}
		if p.EnPassant.Rank() != wantRank {
			return fmt.Sprintf("en passant square %s on wrong rank", p.EnPassant)
		}
		if p.PieceAt(behind) != pawn || !p.IsEmpty(p.EnPassant) {
			return fmt.Sprintf("en passant square %s without a double-pushed pawn", p.EnPassant)
		}
	}

	them := p.SideToMove.Other()
	if p.IsSquareAttacked(p.KingSquare[them], p.SideToMove) {
		return "side not to move is in check"
	}
	return ""
}

// ToFEN returns the FEN representation of the position.
func (p *Position) ToFEN() string {
	var sb strings.Builder

	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			piece := p.PieceAt(NewSquare(file, rank))
			if piece == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if p.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}
	sb.WriteByte(' ')
	sb.WriteString(p.CastlingRights.String())
	sb.WriteByte(' ')
	sb.WriteString(p.EnPassant.String())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.HalfMoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(p.FullMoveNumber))

	return sb.String()
}
