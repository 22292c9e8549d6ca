package board

// Knight and king offsets as (ranks, files).
var (
	knightOffsets = [8][2]int8{{2, 1}, {2, -1}, {-2, 1}, {-2, -1}, {1, 2}, {-1, 2}, {1, -2}, {-1, -2}}
	kingOffsets   = [8][2]int8{{0, 1}, {0, -1}, {1, 0}, {-1, 0}, {1, 1}, {-1, -1}, {1, -1}, {-1, 1}}

	rookDirections   = [4][2]int8{{0, 1}, {0, -1}, {1, 0}, {-1, 0}}
	bishopDirections = [4][2]int8{{1, 1}, {-1, -1}, {-1, 1}, {1, -1}}
)

var promotionTypes = [4]PieceType{Queen, Rook, Bishop, Knight}

// GenerateMoves appends the side to move's pseudo-legal moves to ml: captures
// when capture is true, quiet moves otherwise. Pieces are visited in the order
// queen, knight, rook, bishop, pawn, king, each group by increasing bit index.
//
// With fewer than two kings on the board nothing is generated. The check
// oracle relies on this: once a probe has removed a king, the position
// produces no further moves.
func (p *Position) GenerateMoves(ml *MoveList, capture bool) {
	if p.KingCount() < 2 {
		return
	}

	us := p.Occupied[p.SideToMove]

	for from := range p.Pieces[Queen].Intersect(us).All() {
		p.generateSliderMoves(ml, from, rookDirections[:], capture)
		p.generateSliderMoves(ml, from, bishopDirections[:], capture)
	}
	for from := range p.Pieces[Knight].Intersect(us).All() {
		p.generateLeaperMoves(ml, from, knightOffsets[:], capture)
	}
	for from := range p.Pieces[Rook].Intersect(us).All() {
		p.generateSliderMoves(ml, from, rookDirections[:], capture)
	}
	for from := range p.Pieces[Bishop].Intersect(us).All() {
		p.generateSliderMoves(ml, from, bishopDirections[:], capture)
	}
	for from := range p.Pieces[Pawn].Intersect(us).All() {
		p.generatePawnMoves(ml, from, capture)
	}
	for from := range p.Pieces[King].Intersect(us).All() {
		p.generateLeaperMoves(ml, from, kingOffsets[:], capture)
		if !capture {
			p.generateCastlingMoves(ml, from)
		}
	}
}

// tryMove emits from->to if it matches the capture mode and reports whether
// a ray through to may continue (the square was empty).
func (p *Position) tryMove(ml *MoveList, from, to Square, capture bool) bool {
	if !to.IsValid() {
		return false
	}
	if !p.AllOccupied().Get(to) {
		if !capture {
			ml.Add(NewMove(from, to))
		}
		return true
	}
	if capture && p.Occupied[p.SideToMove.Other()].Get(to) {
		ml.Add(NewMove(from, to))
	}
	return false
}

// generateSliderMoves casts one ray per direction, stopping at the first
// occupied square.
func (p *Position) generateSliderMoves(ml *MoveList, from Square, dirs [][2]int8, capture bool) {
	for _, d := range dirs {
		to := from.Add(d[0], d[1])
		for p.tryMove(ml, from, to, capture) {
			to = to.Add(d[0], d[1])
		}
	}
}

func (p *Position) generateLeaperMoves(ml *MoveList, from Square, offsets [][2]int8, capture bool) {
	for _, o := range offsets {
		p.tryMove(ml, from, from.Add(o[0], o[1]), capture)
	}
}

// generatePawnMoves handles pushes, diagonal captures, promotions and en passant.
func (p *Position) generatePawnMoves(ml *MoveList, from Square, capture bool) {
	us := p.SideToMove
	dir := int8(1)
	lastRank := int8(7)
	if us == Black {
		dir = -1
		lastRank = 0
	}

	if capture {
		enemies := p.Occupied[us.Other()]
		for _, df := range [2]int8{1, -1} {
			to := from.Add(dir, df)
			if !enemies.Get(to) {
				continue
			}
			if to.Rank == lastRank {
				addPromotions(ml, from, to)
			} else {
				ml.Add(NewMove(from, to))
			}
		}

		// The target is the square of the pawn that just advanced two ranks;
		// the capturing pawn lands behind it.
		target := p.EnPassant
		if target.IsValid() && target.Rank == from.Rank && abs8(target.File-from.File) == 1 {
			if victim := p.PieceAt(target); !victim.IsNone() && victim.Color != us {
				ml.Add(NewMove(from, target.Add(dir, 0)))
			}
		}
		return
	}

	to := from.Add(dir, 0)
	if !to.IsValid() || !p.IsEmpty(to) {
		return
	}
	if to.Rank == lastRank {
		addPromotions(ml, from, to)
		return
	}
	ml.Add(NewMove(from, to))

	if from.Rank == 1 || from.Rank == 6 {
		if double := to.Add(dir, 0); double.IsValid() && p.IsEmpty(double) {
			ml.Add(NewMove(from, double))
		}
	}
}

// addPromotions adds all four promotion moves.
func addPromotions(ml *MoveList, from, to Square) {
	for _, pt := range promotionTypes {
		ml.Add(NewPromotion(from, to, pt))
	}
}

// generateCastlingMoves emits castling for a king standing on e1.
//
// Only the castling rights, the rook on its corner and the emptiness of the
// squares between king and rook are checked. Whether the king starts in,
// passes through or lands on an attacked square is not examined here; the
// landing square is covered later by the legality filter, the others are not.
func (p *Position) generateCastlingMoves(ml *MoveList, from Square) {
	if from.Rank != 0 || from.File != 4 {
		return
	}

	color := White
	if p.Occupied[Black].Get(from) {
		color = Black
	}
	for _, short := range [2]bool{true, false} {
		if p.castlePathClear(color, from, short) {
			ml.Add(NewMove(from, castleTarget(from, short)))
		}
	}
}

func castleTarget(from Square, short bool) Square {
	if short {
		return from.Add(0, 2)
	}
	return from.Add(0, -2)
}

// castlePathClear reports whether color keeps the right to castle to the
// given side from the king square from, the rook is on its corner and the
// squares between them are empty.
func (p *Position) castlePathClear(color Color, from Square, short bool) bool {
	rights := p.Castling[color]
	occupied := p.AllOccupied()

	dir, between := int8(1), int8(2)
	if !short {
		dir, between = -1, 3
	}
	if (short && !rights.Short) || (!short && !rights.Long) {
		return false
	}
	for i := int8(1); i <= between; i++ {
		if occupied.Get(from.Add(0, dir*i)) {
			return false
		}
	}
	return p.PieceAt(from.Add(0, dir*(between+1))) == NewPiece(Rook, color)
}

// IsCastling reports whether m castles the side to move's king from its home
// square on its own back rank, with the right still held and the path clear.
// Generation only castles from e1; this accepts castling supplied from
// outside, such as a black castle in a game record.
func (p *Position) IsCastling(m Move) bool {
	us := p.SideToMove
	homeRank := int8(0)
	if us == Black {
		homeRank = 7
	}
	if m.From.Rank != homeRank || m.From.File != 4 || m.To.Rank != homeRank || m.IsPromotion() {
		return false
	}
	if p.PieceAt(m.From) != NewPiece(King, us) {
		return false
	}
	switch m.To.File {
	case 6:
		return p.castlePathClear(us, m.From, true)
	case 2:
		return p.castlePathClear(us, m.From, false)
	}
	return false
}
