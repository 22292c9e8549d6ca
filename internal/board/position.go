package board

import (
	"errors"
	"fmt"
	"strings"
)

// Structural errors from move application. Both mean the caller supplied a
// move or undo record that does not belong to the current position.
var (
	ErrSourceEmpty      = errors.New("source square is empty")
	ErrDestinationEmpty = errors.New("destination square is empty")
)

// CastleRights holds the remaining castling options for one color.
// Rights are only ever cleared by DoMove, never granted back.
type CastleRights struct {
	Short bool
	Long  bool
}

// Position represents a complete chess position.
//
// Occupancy and type boards are stored separately: every occupied square is
// set in exactly one of Occupied and exactly one of Pieces.
type Position struct {
	// Occupancy bitboards by color
	Occupied [2]Bitboard

	// Piece bitboards by type, both colors
	Pieces [6]Bitboard

	// Game state
	SideToMove Color
	EnPassant  Square // destination of the last double pawn push, NoSquare if none
	Castling   [2]CastleRights
}

var backRank = [8]PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// EmptyPosition creates an empty board with White to move and no castling rights.
func EmptyPosition() *Position {
	return &Position{
		SideToMove: White,
		EnPassant:  NoSquare,
	}
}

// NewPosition creates the starting position.
func NewPosition() *Position {
	p := EmptyPosition()
	for file := 0; file < 8; file++ {
		p.SetPiece(NewSquare(file, 0), NewPiece(backRank[file], White))
		p.SetPiece(NewSquare(file, 1), NewPiece(Pawn, White))
		p.SetPiece(NewSquare(file, 6), NewPiece(Pawn, Black))
		p.SetPiece(NewSquare(file, 7), NewPiece(backRank[file], Black))
	}
	p.Castling[White] = CastleRights{Short: true, Long: true}
	p.Castling[Black] = CastleRights{Short: true, Long: true}
	return p
}

// Copy creates a deep copy of the position.
func (p *Position) Copy() *Position {
	newPos := *p
	return &newPos
}

// AllOccupied returns every occupied square.
func (p *Position) AllOccupied() Bitboard {
	return p.Occupied[White].Union(p.Occupied[Black])
}

// KingCount returns the number of kings on the board, both colors.
func (p *Position) KingCount() int {
	return p.Pieces[King].Count()
}

// HasKing reports whether c still has a king on the board.
func (p *Position) HasKing(c Color) bool {
	return p.Pieces[King].Intersect(p.Occupied[c]) != Empty
}

// PieceBB returns the squares holding pieces of the given type and color.
func (p *Position) PieceBB(pt PieceType, c Color) Bitboard {
	return p.Pieces[pt].Intersect(p.Occupied[c])
}

// PieceAt returns the piece at the given square, or NoPiece if empty.
func (p *Position) PieceAt(sq Square) Piece {
	if !p.AllOccupied().Get(sq) {
		return NoPiece
	}

	c := Black
	if p.Occupied[White].Get(sq) {
		c = White
	}

	for pt := Pawn; pt <= King; pt++ {
		if p.Pieces[pt].Get(sq) {
			return NewPiece(pt, c)
		}
	}

	return NoPiece
}

// IsEmpty returns true if the square is empty.
func (p *Position) IsEmpty(sq Square) bool {
	return !p.AllOccupied().Get(sq)
}

// RemovePiece clears the square on every bitboard.
func (p *Position) RemovePiece(sq Square) {
	p.Occupied[White].Set(sq, false)
	p.Occupied[Black].Set(sq, false)
	for pt := Pawn; pt <= King; pt++ {
		p.Pieces[pt].Set(sq, false)
	}
}

// SetPiece replaces whatever occupies the square with piece.
// Passing NoPiece empties the square.
func (p *Position) SetPiece(sq Square, piece Piece) {
	p.RemovePiece(sq)
	if piece.IsNone() {
		return
	}
	p.Pieces[piece.Type].Set(sq, true)
	p.Occupied[piece.Color].Set(sq, true)
}

// DoNullMove passes the turn without moving.
func (p *Position) DoNullMove() {
	p.SideToMove = p.SideToMove.Other()
}

// UndoNullMove reverses DoNullMove.
func (p *Position) UndoNullMove() {
	p.SideToMove = p.SideToMove.Other()
}

// isEnPassant reports whether a pawn moving from -> to with the given target
// takes the pawn on the target square instead of whatever is on to.
func isEnPassant(from, to, target Square) bool {
	return target.IsValid() && from.Rank == target.Rank && to.File == target.File
}

// DoMove applies m and returns the record that undoes it.
// Every DoMove must be paired with exactly one UndoMove, in LIFO order.
func (p *Position) DoMove(m Move) (UndoInfo, error) {
	piece := p.PieceAt(m.From)
	if piece.IsNone() {
		return UndoInfo{}, fmt.Errorf("do %s: %w: %s", m, ErrSourceEmpty, m.From)
	}

	captured := p.PieceAt(m.To)
	p.RemovePiece(m.From)

	if m.IsPromotion() {
		piece.Type = m.Promotion
	}

	p.SetPiece(m.To, piece)

	// The pawn taken en passant sits on the target square, not on m.To.
	if piece.Type == Pawn && isEnPassant(m.From, m.To, p.EnPassant) {
		if victim := p.PieceAt(p.EnPassant); !victim.IsNone() && victim.Color != piece.Color {
			captured = victim
			p.RemovePiece(p.EnPassant)
		}
	}

	undo := UndoInfo{
		Move:      m,
		Captured:  captured,
		EnPassant: p.EnPassant,
		Castling:  p.Castling,
	}

	if piece.Type == Pawn && abs8(m.From.Rank-m.To.Rank) == 2 {
		p.EnPassant = m.To
	} else {
		p.EnPassant = NoSquare
	}

	rights := &p.Castling[piece.Color]
	switch piece.Type {
	case King:
		rights.Short = false
		rights.Long = false
	case Rook:
		if m.From.File == 0 {
			rights.Long = false
		} else if m.From.File == 7 {
			rights.Short = false
		}
	}

	if piece.Type == King && abs8(m.From.File-m.To.File) == 2 {
		rook := NewPiece(Rook, piece.Color)
		if m.To.File > m.From.File {
			p.RemovePiece(NewSquare(7, int(m.From.Rank)))
			p.SetPiece(NewSquare(5, int(m.From.Rank)), rook)
		} else {
			p.RemovePiece(NewSquare(0, int(m.From.Rank)))
			p.SetPiece(NewSquare(3, int(m.From.Rank)), rook)
		}
	}

	p.SideToMove = p.SideToMove.Other()
	return undo, nil
}

// UndoMove reverses the DoMove that produced u. The record must come from the
// most recent unreverted DoMove on this position.
func (p *Position) UndoMove(u UndoInfo) error {
	m := u.Move
	piece := p.PieceAt(m.To)
	if piece.IsNone() {
		return fmt.Errorf("undo %s: %w: %s", m, ErrDestinationEmpty, m.To)
	}

	if m.IsPromotion() {
		piece.Type = Pawn
	}
	p.SetPiece(m.From, piece)

	// After an en passant capture the target square is left empty; in every
	// other case with the same geometry it is still occupied.
	capturedSq := m.To
	if piece.Type == Pawn && isEnPassant(m.From, m.To, u.EnPassant) && p.IsEmpty(u.EnPassant) {
		p.RemovePiece(m.To)
		capturedSq = u.EnPassant
	}

	if piece.Type == King && abs8(m.From.File-m.To.File) == 2 {
		rook := NewPiece(Rook, piece.Color)
		if m.To.File > m.From.File {
			p.RemovePiece(NewSquare(5, int(m.From.Rank)))
			p.SetPiece(NewSquare(7, int(m.From.Rank)), rook)
		} else {
			p.RemovePiece(NewSquare(3, int(m.From.Rank)))
			p.SetPiece(NewSquare(0, int(m.From.Rank)), rook)
		}
	}

	p.SetPiece(capturedSq, u.Captured)
	p.EnPassant = u.EnPassant
	p.Castling = u.Castling
	p.SideToMove = p.SideToMove.Other()
	return nil
}

// ApplyMoves parses and plays a sequence of moves in UCI notation.
// Moves are not checked for legality; on error the position has been
// advanced through the moves preceding the bad one.
func (p *Position) ApplyMoves(moves []string) error {
	for _, s := range moves {
		m, err := ParseMove(s)
		if err != nil {
			return err
		}
		if _, err := p.DoMove(m); err != nil {
			return err
		}
	}
	return nil
}

// String returns a visual representation of the position.
func (p *Position) String() string {
	var sb strings.Builder
	sb.WriteByte('\n')
	for rank := 7; rank >= 0; rank-- {
		fmt.Fprintf(&sb, "%c  ", RankNames[rank])
		for file := 0; file < 8; file++ {
			piece := p.PieceAt(NewSquare(file, rank))
			if piece.IsNone() {
				sb.WriteString(". ")
			} else {
				sb.WriteString(piece.String() + " ")
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("\n   a b c d e f g h\n\n")
	fmt.Fprintf(&sb, "Side to move: %s\n", p.SideToMove)
	fmt.Fprintf(&sb, "Castling: %s\n", p.castlingString())
	fmt.Fprintf(&sb, "En passant: %s\n", p.EnPassant)
	return sb.String()
}

func abs8(x int8) int8 {
	if x < 0 {
		return -x
	}
	return x
}
