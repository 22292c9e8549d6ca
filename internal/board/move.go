package board

import "fmt"

// Move is a source/destination pair with an optional promotion piece type.
// A Move carries intent only; it says nothing about legality.
type Move struct {
	From      Square
	To        Square
	Promotion PieceType // NoPieceType when the move does not promote
}

// NoMove represents the absence of a move.
var NoMove = Move{From: NoSquare, To: NoSquare, Promotion: NoPieceType}

// NewMove creates a non-promoting move.
func NewMove(from, to Square) Move {
	return Move{From: from, To: to, Promotion: NoPieceType}
}

// NewPromotion creates a promotion move.
func NewPromotion(from, to Square, promo PieceType) Move {
	return Move{From: from, To: to, Promotion: promo}
}

// IsPromotion returns true if this is a promotion move.
func (m Move) IsPromotion() bool {
	return m.Promotion < NoPieceType
}

// String returns the UCI format of the move (e.g., "e2e4", "e7e8q").
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From.String() + m.To.String()
	if m.IsPromotion() {
		s += string(m.Promotion.Char())
	}
	return s
}

// ParseMove parses a move in <src><dest>[promotion] notation, exactly 4 or 5
// characters long, with the promotion letter one of q, r, b, n.
func ParseMove(s string) (Move, error) {
	if len(s) != 4 && len(s) != 5 {
		return NoMove, fmt.Errorf("invalid move %q: need 4 or 5 characters", s)
	}

	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, fmt.Errorf("invalid move %q: %w", s, err)
	}

	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, fmt.Errorf("invalid move %q: %w", s, err)
	}

	if len(s) == 4 {
		return NewMove(from, to), nil
	}

	var promo PieceType
	switch s[4] {
	case 'q':
		promo = Queen
	case 'r':
		promo = Rook
	case 'b':
		promo = Bishop
	case 'n':
		promo = Knight
	default:
		return NoMove, fmt.Errorf("invalid move %q: promotion piece %q not in q, r, b, n", s, s[4])
	}
	return NewPromotion(from, to, promo), nil
}

// MoveList is a growable, reusable move buffer. Generators append to a
// caller-supplied list; Clear keeps the backing array for the next use.
type MoveList struct {
	moves []Move
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{moves: make([]Move, 0, 64)}
}

// Add adds a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves = append(ml.moves, m)
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return len(ml.moves)
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Set sets the move at index i.
func (ml *MoveList) Set(i int, m Move) {
	ml.moves[i] = m
}

// Truncate drops every move from index n onward.
func (ml *MoveList) Truncate(n int) {
	ml.moves = ml.moves[:n]
}

// Clear clears the list.
func (ml *MoveList) Clear() {
	ml.moves = ml.moves[:0]
}

// Contains returns true if the list contains the move.
func (ml *MoveList) Contains(m Move) bool {
	for _, mv := range ml.moves {
		if mv == m {
			return true
		}
	}
	return false
}

// Slice returns the moves as a slice. The slice aliases the list's storage.
func (ml *MoveList) Slice() []Move {
	return ml.moves
}

// UndoInfo stores the information needed to reverse a move exactly.
// Captured is the piece actually removed, which for en passant sits on the
// old en passant target rather than on the destination square.
type UndoInfo struct {
	Move      Move
	Captured  Piece
	EnPassant Square // en passant target before the move
	Castling  [2]CastleRights
}
