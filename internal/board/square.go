// Package board implements chess board representation using bitboards.
package board

import "fmt"

// RankNames and FileNames map coordinates to algebraic characters.
const (
	RankNames = "12345678"
	FileNames = "abcdefgh"
)

// Square is a rank/file pair. Both coordinates are 0-indexed; a square with
// either coordinate outside [0,8) is invalid. Arithmetic via Add may produce
// invalid squares, which every consumer treats as "off the board".
type Square struct {
	Rank int8
	File int8
}

// NoSquare is the invalid sentinel used for "no en passant target".
var NoSquare = Square{Rank: -1, File: -1}

// NewSquare creates a square from file and rank (0-indexed).
func NewSquare(file, rank int) Square {
	return Square{Rank: int8(rank), File: int8(file)}
}

// IsValid returns true if both coordinates are on the board.
func (sq Square) IsValid() bool {
	return sq.Rank >= 0 && sq.Rank < 8 && sq.File >= 0 && sq.File < 8
}

// Add offsets the square by the given number of ranks and files.
func (sq Square) Add(ranks, files int8) Square {
	return Square{Rank: sq.Rank + ranks, File: sq.File + files}
}

// index is the file-major bit index used by Bitboard.
func (sq Square) index() uint {
	return uint(sq.File)*8 + uint(sq.Rank)
}

// String returns the algebraic notation for the square (e.g., "e4").
func (sq Square) String() string {
	if !sq.IsValid() {
		return "-"
	}
	return string([]byte{FileNames[sq.File], RankNames[sq.Rank]})
}

// ParseSquare parses algebraic notation (e.g., "e4") into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return NoSquare, fmt.Errorf("invalid square %q: need 2 characters", s)
	}

	file := int(s[0]) - 'a'
	rank := int(s[1]) - '1'

	if file < 0 || file > 7 {
		return NoSquare, fmt.Errorf("invalid square %q: file %q not in a-h", s, s[0])
	}
	if rank < 0 || rank > 7 {
		return NoSquare, fmt.Errorf("invalid square %q: rank %q not in 1-8", s, s[1])
	}

	return NewSquare(file, rank), nil
}

// MustParseSquare is like ParseSquare but panics on error.
// Intended for constant squares in tests and tables.
func MustParseSquare(s string) Square {
	sq, err := ParseSquare(s)
	if err != nil {
		panic(err)
	}
	return sq
}
