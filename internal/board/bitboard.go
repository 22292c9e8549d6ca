package board

import (
	"iter"
	"math/bits"
	"strings"
)

// Bitboard represents a 64-bit board where each bit corresponds to a square.
// Bits are file-major: bit index = file*8 + rank, so bit 0 = a1, bit 7 = a8,
// bit 8 = b1 and bit 63 = h8. A whole file is therefore one contiguous byte.
type Bitboard uint64

// Empty is the bitboard with no squares set.
const Empty Bitboard = 0

// SquareBB returns a bitboard with only the given square set.
// Invalid squares yield Empty.
func SquareBB(sq Square) Bitboard {
	var b Bitboard
	b.Set(sq, true)
	return b
}

// FileMask returns all squares on the given file (0-7). Out-of-range files
// yield Empty.
func FileMask(file int) Bitboard {
	if file < 0 || file > 7 {
		return Empty
	}
	return Bitboard(0xFF) << (uint(file) * 8)
}

// RankMask returns all squares on the given rank (0-7). Out-of-range ranks
// yield Empty.
func RankMask(rank int) Bitboard {
	if rank < 0 || rank > 7 {
		return Empty
	}
	return Bitboard(0x0101010101010101) << uint(rank)
}

// Get returns true if the bit at the given square is set.
func (b Bitboard) Get(sq Square) bool {
	if !sq.IsValid() {
		return false
	}
	return b&(1<<sq.index()) != 0
}

// Set sets or clears the bit at the given square. Invalid squares are ignored.
func (b *Bitboard) Set(sq Square, value bool) {
	if !sq.IsValid() {
		return
	}
	mask := Bitboard(1) << sq.index()
	if value {
		*b |= mask
	} else {
		*b &^= mask
	}
}

// Union returns the squares set in either bitboard.
func (b Bitboard) Union(other Bitboard) Bitboard {
	return b | other
}

// Intersect returns the squares set in both bitboards.
func (b Bitboard) Intersect(other Bitboard) Bitboard {
	return b & other
}

// Invert returns the complement of the bitboard.
func (b Bitboard) Invert() Bitboard {
	return ^b
}

// Count returns the number of set bits (population count).
func (b Bitboard) Count() int {
	return bits.OnesCount64(uint64(b))
}

// PopLSB removes and returns the lowest set square.
// Returns NoSquare when the bitboard is empty.
func (b *Bitboard) PopLSB() Square {
	if *b == 0 {
		return NoSquare
	}
	idx := bits.TrailingZeros64(uint64(*b))
	*b &= *b - 1
	return Square{Rank: int8(idx % 8), File: int8(idx / 8)}
}

// All iterates the set squares in increasing bit index order.
// The pattern is captured when iteration starts, so the same bitboard
// may be ranged over any number of times.
func (b Bitboard) All() iter.Seq[Square] {
	return func(yield func(Square) bool) {
		for bb := b; bb != 0; {
			if !yield(bb.PopLSB()) {
				return
			}
		}
	}
}

// Squares returns a slice of all squares that are set.
func (b Bitboard) Squares() []Square {
	squares := make([]Square, 0, b.Count())
	for sq := range b.All() {
		squares = append(squares, sq)
	}
	return squares
}

// String returns a visual representation of the bitboard.
func (b Bitboard) String() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		sb.WriteByte(RankNames[rank])
		sb.WriteString("  ")
		for file := 0; file < 8; file++ {
			if b.Get(NewSquare(file, rank)) {
				sb.WriteString(" X")
			} else {
				sb.WriteString(" .")
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("\n   ")
	for file := 0; file < 8; file++ {
		sb.WriteByte(' ')
		sb.WriteByte(FileNames[file])
	}
	return sb.String()
}
