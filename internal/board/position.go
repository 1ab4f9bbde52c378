package board

import (
	"fmt"
	"strings"
)

// CastlingRights represents the available castling options.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling rights string.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	var sb strings.Builder
	for i, c := range "KQkq" {
		if cr&(1<<i) != 0 {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// CanCastle returns true if the given side can castle in the given direction.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	return cr&castleRight(c, kingSide) != 0
}

func castleRight(c Color, kingSide bool) CastlingRights {
	if c == White {
		if kingSide {
			return WhiteKingSideCastle
		}
		return WhiteQueenSideCastle
	}
	if kingSide {
		return BlackKingSideCastle
	}
	return BlackQueenSideCastle
}

// castleMask[sq] is and-ed into the rights whenever a piece leaves or lands
// on sq, so moving a king or rook, or capturing a rook at home, drops the
// matching rights.
var castleMask [64]CastlingRights

func init() {
	for sq := range castleMask {
		castleMask[sq] = AllCastling
	}
	castleMask[E1] &^= WhiteKingSideCastle | WhiteQueenSideCastle
	castleMask[H1] &^= WhiteKingSideCastle
	castleMask[A1] &^= WhiteQueenSideCastle
	castleMask[E8] &^= BlackKingSideCastle | BlackQueenSideCastle
	castleMask[H8] &^= BlackKingSideCastle
	castleMask[A8] &^= BlackQueenSideCastle
}

// Position represents a complete chess position.
type Position struct {
	// Piece bitboards: [Color][PieceType]
	Pieces [2][6]Bitboard

	// Occupancy bitboards, derived from Pieces
	Occupied    [2]Bitboard
	AllOccupied Bitboard

	SideToMove     Color
	CastlingRights CastlingRights
	EnPassant      Square // NoSquare if none
	HalfMoveClock  int
	FullMoveNumber int

	Hash uint64

	// KingSquare is NoSquare for a side without a king.
	KingSquare [2]Square

	// Checkers holds the pieces giving check to the side to move.
	Checkers Bitboard
}

// Key identifies a position for repetition purposes: placement, side to
// move, castling rights and en-passant target. Two positions with equal keys
// are the same position regardless of their move counters.
type Key struct {
	Pieces    [2][6]Bitboard
	Side      Color
	Castling  CastlingRights
	EnPassant Square
}

// NewPosition creates the starting position.
func NewPosition() *Position {
	pos, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return pos
}

// Copy creates a deep copy of the position.
func (p *Position) Copy() *Position {
	newPos := *p
	return &newPos
}

// Key returns the repetition key of the position.
func (p *Position) Key() Key {
	return Key{
		Pieces:    p.Pieces,
		Side:      p.SideToMove,
		Castling:  p.CastlingRights,
		EnPassant: p.EnPassant,
	}
}

// Equal reports whether two positions describe the same game state,
// counters included.
func (p *Position) Equal(o *Position) bool {
	if p == nil || o == nil {
		return p == o
	}
	return p.Key() == o.Key() &&
		p.HalfMoveClock == o.HalfMoveClock &&
		p.FullMoveNumber == o.FullMoveNumber
}

// PieceAt returns the piece at the given square, or NoPiece if empty.
func (p *Position) PieceAt(sq Square) Piece {
	if !sq.IsValid() {
		return NoPiece
	}
	bb := SquareBB(sq)
	if p.AllOccupied&bb == 0 {
		return NoPiece
	}

	c := White
	if p.Occupied[Black]&bb != 0 {
		c = Black
	}
	for pt := Pawn; pt <= King; pt++ {
		if p.Pieces[c][pt]&bb != 0 {
			return NewPiece(pt, c)
		}
	}
	return NoPiece
}

// IsEmpty returns true if the square is empty.
func (p *Position) IsEmpty(sq Square) bool {
	return p.AllOccupied&SquareBB(sq) == 0
}

// PieceCount returns the number of pieces of the given type and color.
func (p *Position) PieceCount(c Color, pt PieceType) int {
	return p.Pieces[c][pt].PopCount()
}

// setPiece places a piece on a square (does not update hash).
func (p *Position) setPiece(piece Piece, sq Square) {
	c, pt := piece.Color(), piece.Type()
	bb := SquareBB(sq)
	p.Pieces[c][pt] |= bb
	p.Occupied[c] |= bb
	p.AllOccupied |= bb
	if pt == King {
		p.KingSquare[c] = sq
	}
}

// removePiece removes a piece from a square (does not update hash).
func (p *Position) removePiece(sq Square) Piece {
	piece := p.PieceAt(sq)
	if piece == NoPiece {
		return NoPiece
	}
	c, pt := piece.Color(), piece.Type()
	bb := SquareBB(sq)
	p.Pieces[c][pt] &^= bb
	p.Occupied[c] &^= bb
	p.AllOccupied &^= bb
	if pt == King && p.Pieces[c][King] == 0 {
		p.KingSquare[c] = NoSquare
	}
	return piece
}

// movePiece moves a piece from one square to another (does not update hash).
func (p *Position) movePiece(from, to Square) {
	piece := p.PieceAt(from)
	if piece == NoPiece {
		return
	}
	c, pt := piece.Color(), piece.Type()
	moveBB := SquareBB(from) | SquareBB(to)
	p.Pieces[c][pt] ^= moveBB
	p.Occupied[c] ^= moveBB
	p.AllOccupied ^= moveBB
	if pt == King {
		p.KingSquare[c] = to
	}
}

func (p *Position) setCastlingRights(cr CastlingRights) {
	p.Hash ^= zobristCastling[p.CastlingRights] ^ zobristCastling[cr]
	p.CastlingRights = cr
}

func (p *Position) setEnPassant(sq Square) {
	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}
	p.EnPassant = sq
	if sq != NoSquare {
		p.Hash ^= zobristEnPassant[sq.File()]
	}
}

// RemovePiece takes the piece off sq outside of normal move semantics and
// returns it, or NoPiece if the square was empty. Hash, occupancy and
// castling rights stay consistent: removing a king or a rook from its home
// square drops the rights that depended on it.
func (p *Position) RemovePiece(sq Square) Piece {
	piece := p.removePiece(sq)
	if piece == NoPiece {
		return NoPiece
	}
	p.Hash ^= zobristPiece[piece.Color()][piece.Type()][sq]
	p.setCastlingRights(p.CastlingRights & castleMask[sq])
	p.UpdateCheckers()
	return piece
}

// PlacePiece puts piece on an empty square outside of normal move semantics.
func (p *Position) PlacePiece(piece Piece, sq Square) error {
	if piece >= NoPiece || !sq.IsValid() {
		return fmt.Errorf("cannot place %v on %v", piece, sq)
	}
	if !p.IsEmpty(sq) {
		return fmt.Errorf("square %s is occupied", sq)
	}
	p.setPiece(piece, sq)
	p.Hash ^= zobristPiece[piece.Color()][piece.Type()][sq]
	p.UpdateCheckers()
	return nil
}

// PassTurn hands the move to the other side without a board move: the
// en-passant target is cleared, the half-move clock is reset or advanced and
// the full-move number advances after Black.
func (p *Position) PassTurn(resetClock bool) {
	p.setEnPassant(NoSquare)
	if resetClock {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}
	if p.SideToMove == Black {
		p.FullMoveNumber++
	}
	p.SideToMove = p.SideToMove.Other()
	p.Hash ^= zobristBlack
	p.UpdateCheckers()
}

// updateOccupied recalculates occupancy bitboards from piece bitboards.
func (p *Position) updateOccupied() {
	p.Occupied = [2]Bitboard{}
	for pt := Pawn; pt <= King; pt++ {
		p.Occupied[White] |= p.Pieces[White][pt]
		p.Occupied[Black] |= p.Pieces[Black][pt]
	}
	p.AllOccupied = p.Occupied[White] | p.Occupied[Black]
	p.KingSquare[White] = p.Pieces[White][King].LSB()
	p.KingSquare[Black] = p.Pieces[Black][King].LSB()
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteByte('\n')
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%d  ", rank+1)
		for file := 0; file < 8; file++ {
			piece := p.PieceAt(NewSquare(file, rank))
			if piece == NoPiece {
				sb.WriteString(". ")
			} else {
				sb.WriteString(piece.String() + " ")
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "FEN: %s\n", p.ToFEN())
	fmt.Fprintf(&sb, "Hash: %016x\n", p.Hash)
	return sb.String()
}

// InCheck returns true if the side to move is in check.
func (p *Position) InCheck() bool {
	return p.Checkers != 0
}

// Material returns the material balance (positive favors white).
func (p *Position) Material() int {
	score := 0
	for pt := Pawn; pt < King; pt++ {
		score += p.Pieces[White][pt].PopCount() * PieceValue[pt]
		score -= p.Pieces[Black][pt].PopCount() * PieceValue[pt]
	}
	return score
}

// HasNonPawnMaterial reports whether side c has a knight, bishop, rook or queen.
func (p *Position) HasNonPawnMaterial(c Color) bool {
	return p.Pieces[c][Knight]|p.Pieces[c][Bishop]|p.Pieces[c][Rook]|p.Pieces[c][Queen] != 0
}
