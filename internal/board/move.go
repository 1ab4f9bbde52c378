package board

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// Move encodes a chess move in 16 bits:
// bits 0-5:   from square (0-63)
// bits 6-11:  to square (0-63)
// bits 12-13: promotion piece (0=Knight, 1=Bishop, 2=Rook, 3=Queen)
// bits 14-15: flags (0=normal, 1=promotion, 2=en passant, 3=castling)
type Move uint16

// Move flags
const (
	FlagNormal    uint16 = 0 << 14
	FlagPromotion uint16 = 1 << 14
	FlagEnPassant uint16 = 2 << 14
	FlagCastling  uint16 = 3 << 14
)

// NoMove represents an invalid or null move.
const NoMove Move = 0

// NewMove creates a normal move.
func NewMove(from, to Square) Move {
	return Move(from) | Move(to)<<6
}

// NewPromotion creates a promotion move.
func NewPromotion(from, to Square, promo PieceType) Move {
	return Move(from) | Move(to)<<6 | Move(promo-Knight)<<12 | Move(FlagPromotion)
}

// NewEnPassant creates an en passant capture move.
func NewEnPassant(from, to Square) Move {
	return Move(from) | Move(to)<<6 | Move(FlagEnPassant)
}

// NewCastling creates a castling move, encoded as the king's movement.
func NewCastling(from, to Square) Move {
	return Move(from) | Move(to)<<6 | Move(FlagCastling)
}

func (m Move) From() Square {
	return Square(m & 0x3F)
}

func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

func (m Move) Flag() uint16 {
	return uint16(m) & 0xC000
}

// Promotion returns the promotion piece type, or NoPieceType for a move
// that does not promote.
func (m Move) Promotion() PieceType {
	if !m.IsPromotion() {
		return NoPieceType
	}
	return PieceType((m>>12)&3) + Knight
}

func (m Move) IsPromotion() bool {
	return m.Flag() == FlagPromotion
}

func (m Move) IsCastling() bool {
	return m.Flag() == FlagCastling
}

func (m Move) IsKingSideCastle() bool {
	return m.IsCastling() && m.To() > m.From()
}

func (m Move) IsQueenSideCastle() bool {
	return m.IsCastling() && m.To() < m.From()
}

func (m Move) IsEnPassant() bool {
	return m.Flag() == FlagEnPassant
}

// IsCapture returns true if this move captures a piece in pos.
func (m Move) IsCapture(pos *Position) bool {
	if m.IsEnPassant() {
		return true
	}
	return !m.IsCastling() && !pos.IsEmpty(m.To())
}

// IsDoublePush reports whether m is a pawn's two-square advance in pos.
func (m Move) IsDoublePush(pos *Position) bool {
	if pos.PieceAt(m.From()).Type() != Pawn {
		return false
	}
	d := int(m.To()) - int(m.From())
	return d == 16 || d == -16
}

// CapturedPiece returns the piece m removes from pos, or NoPiece.
func (m Move) CapturedPiece(pos *Position) Piece {
	if m.IsEnPassant() {
		return NewPiece(Pawn, pos.SideToMove.Other())
	}
	if m.IsCastling() {
		return NoPiece
	}
	return pos.PieceAt(m.To())
}

// IsQuiet returns true if this is not a capture or promotion.
func (m Move) IsQuiet(pos *Position) bool {
	return !m.IsCapture(pos) && !m.IsPromotion()
}

// String returns the UCI format of the move (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string(m.Promotion().Char())
	}
	return s
}

// compareMoves orders moves by origin, then destination, then promotion
// piece with the queen first.
func compareMoves(a, b Move) int {
	if a.From() != b.From() {
		return int(a.From()) - int(b.From())
	}
	if a.To() != b.To() {
		return int(a.To()) - int(b.To())
	}
	return int(b.Promotion()) - int(a.Promotion())
}

// ParseMove parses a UCI move and resolves it against the legal moves of
// pos, so the returned move carries the right flags.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) < 4 || len(s) > 5 {
		return NoMove, fmt.Errorf("invalid move string %q", s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}
	promo := NoPieceType
	if len(s) == 5 {
		promo = ParsePieceType(s[4])
		if promo < Knight || promo > Queen {
			return NoMove, fmt.Errorf("invalid promotion piece %q", s[4])
		}
	}

	legal := pos.GenerateLegalMoves()
	if m, ok := legal.Find(from, to, promo); ok {
		return m, nil
	}
	return NoMove, &IllegalMoveError{Move: NewMove(from, to), FEN: pos.ToFEN()}
}

// MoveList is a fixed-size list of moves to avoid allocations.
type MoveList struct {
	moves [256]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

func (ml *MoveList) Len() int {
	return ml.count
}

func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	return slices.Contains(ml.Slice(), m)
}

// Find looks up the move from->to with the given promotion piece
// (NoPieceType for none).
func (ml *MoveList) Find(from, to Square, promo PieceType) (Move, bool) {
	for _, m := range ml.Slice() {
		if m.From() == from && m.To() == to && m.Promotion() == promo {
			return m, true
		}
	}
	return NoMove, false
}

// Sort puts the list in canonical order: origin square, destination square,
// then promotion piece (queen, rook, bishop, knight).
func (ml *MoveList) Sort() {
	slices.SortFunc(ml.Slice(), compareMoves)
}

// Slice returns the moves as a slice backed by the list.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// Strings returns the UCI form of every move, in list order.
func (ml *MoveList) Strings() []string {
	out := make([]string, ml.count)
	for i, m := range ml.Slice() {
		out[i] = m.String()
	}
	return out
}

// UndoInfo stores everything MakeMove changed so UnmakeMove can restore the
// position exactly.
type UndoInfo struct {
	SideToMove     Color
	CapturedPiece  Piece
	CastlingRights CastlingRights
	EnPassant      Square
	HalfMoveClock  int
	FullMoveNumber int
	Hash           uint64
	Checkers       Bitboard
	KingSquare     [2]Square
	Pieces         [2][6]Bitboard
	Occupied       [2]Bitboard
	AllOccupied    Bitboard
}
