package board

import (
	"strings"
)

// ToSAN converts a move to Standard Algebraic Notation.
// pos is the position the move is played from; it is restored before
// returning.
func (m Move) ToSAN(pos *Position) (string, error) {
	if m == NoMove {
		return "-", nil
	}

	from, to := m.From, m.To
	piece := pos.PieceAt(from)
	if piece.IsNone() {
		return m.String(), nil // Fallback to UCI
	}
	pt := piece.Type

	legal, err := pos.LegalMoves()
	if err != nil {
		return "", err
	}

	var sb strings.Builder

	// Castling
	if pt == King && abs8(to.File-from.File) == 2 {
		if to.File > from.File {
			sb.WriteString("O-O") // Kingside
		} else {
			sb.WriteString("O-O-O") // Queenside
		}
	} else {
		// Piece letter (not for pawns)
		if pt != Pawn {
			sb.WriteByte("PNBRQK"[pt])
			sb.WriteString(disambiguation(pos, legal, m, pt))
		}

		// Capture marker; a pawn changing file always captures
		if !pos.IsEmpty(to) || (pt == Pawn && from.File != to.File) {
			if pt == Pawn {
				// Pawn captures include the file of origin
				sb.WriteByte(FileNames[from.File])
			}
			sb.WriteByte('x')
		}

		// Destination square
		sb.WriteString(to.String())

		// Promotion
		if m.IsPromotion() {
			sb.WriteByte('=')
			sb.WriteByte("PNBRQK"[m.Promotion])
		}
	}

	// Check/checkmate marker
	undo, err := pos.DoMove(m)
	if err != nil {
		return "", err
	}
	legal.Clear()
	check, err := pos.InCheck(legal)
	if err == nil && check {
		err = pos.GenerateLegalMoves(legal)
	}
	if uerr := pos.UndoMove(undo); uerr != nil && err == nil {
		err = uerr
	}
	if err != nil {
		return "", err
	}
	if check {
		if legal.Len() == 0 {
			sb.WriteByte('#')
		} else {
			sb.WriteByte('+')
		}
	}

	return sb.String(), nil
}

// disambiguation returns the origin file, rank or square needed to tell m
// apart from other legal moves of the same piece type to the same square.
func disambiguation(pos *Position, legal *MoveList, m Move, pt PieceType) string {
	from, to := m.From, m.To
	pieces := pos.PieceBB(pt, pos.SideToMove)

	sameFile, sameRank, ambiguous := false, false, false
	for _, other := range legal.Slice() {
		if other.To != to || other.From == from || !pieces.Get(other.From) {
			continue
		}
		ambiguous = true
		if other.From.File == from.File {
			sameFile = true
		}
		if other.From.Rank == from.Rank {
			sameRank = true
		}
	}

	switch {
	case !ambiguous:
		return ""
	case !sameFile:
		// File is sufficient
		return string(FileNames[from.File])
	case !sameRank:
		// Rank is sufficient
		return string(RankNames[from.Rank])
	}
	// Need both file and rank
	return from.String()
}

// MovesToSAN converts a line of moves played from pos to SAN notation.
// pos is not modified.
func MovesToSAN(pos *Position, moves []Move) ([]string, error) {
	result := make([]string, len(moves))
	p := pos.Copy()

	for i, m := range moves {
		san, err := m.ToSAN(p)
		if err != nil {
			return nil, err
		}
		result[i] = san
		if _, err := p.DoMove(m); err != nil {
			return nil, err
		}
	}

	return result, nil
}
