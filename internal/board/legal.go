package board

// InCheck reports whether the side to move is in check.
//
// There are no attack tables. The opponent is given the move with a null
// move, and each of its pseudo-legal captures is played and taken back; if
// any of them leaves fewer than two kings on the board, our king was
// capturable. This costs one capture generation plus up to one make/unmake
// per capture, and it runs once per candidate move in GenerateLegalMoves,
// which makes it the dominant cost of legal move generation.
//
// The probe moves are appended to scratch past its current length and
// removed again before returning, so callers can pass the list they are
// generating into. A nil scratch allocates a temporary list.
func (p *Position) InCheck(scratch *MoveList) (bool, error) {
	if scratch == nil {
		scratch = NewMoveList()
	}
	start := scratch.Len()

	p.DoNullMove()
	p.GenerateMoves(scratch, true)

	check := false
	for i := start; i < scratch.Len(); i++ {
		undo, err := p.DoMove(scratch.Get(i))
		if err != nil {
			p.UndoNullMove()
			scratch.Truncate(start)
			return false, err
		}
		kings := p.KingCount()
		if err := p.UndoMove(undo); err != nil {
			p.UndoNullMove()
			scratch.Truncate(start)
			return false, err
		}
		if kings < 2 {
			check = true
			break
		}
	}

	p.UndoNullMove()
	scratch.Truncate(start)
	return check, nil
}

// GenerateLegalMoves appends the side to move's legal moves to ml.
// Pseudo-legal moves are generated in place and filtered: a move is kept
// when, after playing it, the mover's king is not capturable.
func (p *Position) GenerateLegalMoves(ml *MoveList) error {
	start := ml.Len()
	p.GenerateMoves(ml, true)
	p.GenerateMoves(ml, false)
	end := ml.Len()

	kept := start
	for i := start; i < end; i++ {
		m := ml.Get(i)
		undo, err := p.DoMove(m)
		if err != nil {
			ml.Truncate(start)
			return err
		}

		// Hand the move back to the mover so InCheck asks about its king.
		p.DoNullMove()
		check, err := p.InCheck(ml)
		p.UndoNullMove()

		if uerr := p.UndoMove(undo); uerr != nil && err == nil {
			err = uerr
		}
		if err != nil {
			ml.Truncate(start)
			return err
		}

		if !check {
			ml.Set(kept, m)
			kept++
		}
	}
	ml.Truncate(kept)
	return nil
}

// LegalMoves returns a fresh list of the side to move's legal moves.
func (p *Position) LegalMoves() (*MoveList, error) {
	ml := NewMoveList()
	if err := p.GenerateLegalMoves(ml); err != nil {
		return nil, err
	}
	return ml, nil
}

// IsLegal reports whether m is one of the side to move's legal moves.
func (p *Position) IsLegal(m Move) (bool, error) {
	ml, err := p.LegalMoves()
	if err != nil {
		return false, err
	}
	return ml.Contains(m), nil
}
