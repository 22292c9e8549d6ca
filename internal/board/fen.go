package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN parses a FEN string and returns a Position.
//
// The en passant field names the square the pawn skipped, as FEN does; it is
// converted to the square the pawn landed on, which is what Position tracks.
// Move counters are accepted and ignored.
func ParseFEN(fen string) (*Position, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return nil, fmt.Errorf("invalid FEN: need at least 4 fields, got %d", len(parts))
	}

	pos := EmptyPosition()

	// Parse piece placement (field 0)
	if err := parsePiecePlacement(pos, parts[0]); err != nil {
		return nil, err
	}

	// Parse side to move (field 1)
	switch parts[1] {
	case "w":
		pos.SideToMove = White
	case "b":
		pos.SideToMove = Black
	default:
		return nil, fmt.Errorf("invalid side to move: %s", parts[1])
	}

	// Parse castling rights (field 2)
	if err := parseCastlingRights(pos, parts[2]); err != nil {
		return nil, err
	}

	// Parse en passant square (field 3)
	if parts[3] != "-" {
		sq, err := ParseSquare(parts[3])
		if err != nil {
			return nil, fmt.Errorf("invalid en passant square: %s", parts[3])
		}
		switch sq.Rank {
		case 2:
			pos.EnPassant = sq.Add(1, 0)
		case 5:
			pos.EnPassant = sq.Add(-1, 0)
		default:
			return nil, fmt.Errorf("invalid en passant square: %s", parts[3])
		}
	}

	for i, field := range parts[4:] {
		if _, err := strconv.Atoi(field); err != nil {
			return nil, fmt.Errorf("invalid move counter in field %d: %s", i+5, field)
		}
	}

	return pos, nil
}

// parsePiecePlacement parses the piece placement section of a FEN string.
func parsePiecePlacement(pos *Position, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("invalid piece placement: need 8 ranks, got %d", len(ranks))
	}

	for i, rankStr := range ranks {
		rank := 7 - i // FEN starts from rank 8
		file := 0

		for _, c := range rankStr {
			if file > 7 {
				return fmt.Errorf("too many squares in rank %d", rank+1)
			}

			if c >= '1' && c <= '8' {
				file += int(c - '0')
				continue
			}

			piece := PieceFromChar(byte(c))
			if piece.IsNone() {
				return fmt.Errorf("invalid piece character: %c", c)
			}
			pos.SetPiece(NewSquare(file, rank), piece)
			file++
		}

		if file != 8 {
			return fmt.Errorf("invalid number of squares in rank %d: got %d", rank+1, file)
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
		switch c {
		case 'K':
			pos.Castling[White].Short = true
		case 'Q':
			pos.Castling[White].Long = true
		case 'k':
			pos.Castling[Black].Short = true
		case 'q':
			pos.Castling[Black].Long = true
		default:
			return fmt.Errorf("invalid castling character: %c", c)
		}
	}

	return nil
}

// castlingString returns the FEN castling rights field.
func (p *Position) castlingString() string {
	s := ""
	if p.Castling[White].Short {
		s += "K"
	}
	if p.Castling[White].Long {
		s += "Q"
	}
	if p.Castling[Black].Short {
		s += "k"
	}
	if p.Castling[Black].Long {
		s += "q"
	}
	if s == "" {
		return "-"
	}
	return s
}

// ToFEN returns the FEN representation of the position.
// Move counters are not tracked and are always written as "0 1".
func (p *Position) ToFEN() string {
	var sb strings.Builder

	// Piece placement
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			piece := p.PieceAt(NewSquare(file, rank))
			if piece.IsNone() {
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

	// Side to move
	sb.WriteByte(' ')
	if p.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(p.castlingString())

	// En passant, as the skipped square
	sb.WriteByte(' ')
	if p.EnPassant.IsValid() {
		skipped := p.EnPassant.Add(-1, 0)
		if p.EnPassant.Rank == 4 {
			skipped = p.EnPassant.Add(1, 0)
		}
		sb.WriteString(skipped.String())
	} else {
		sb.WriteByte('-')
	}

	sb.WriteString(" 0 1")
	return sb.String()
}
