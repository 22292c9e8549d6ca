// Package engine implements the chess AI search engine.
package engine

import (
	"math"

	"github.com/hailam/nullmove/internal/board"
)

// Evaluator scores a position for the side to move.
//
// Implementations must be zero-sum: flipping the side to move and changing
// nothing else negates the score. The move list is scratch space; anything
// appended to it must be truncated away before returning.
type Evaluator interface {
	Evaluate(pos *board.Position, ml *board.MoveList) float64
}

// Evaluation constants, in pawns.
const (
	PawnValue   = 1.0
	KnightValue = 3.0
	BishopValue = 3.0
	RookValue   = 5.0
	QueenValue  = 9.0
	KingValue   = 200.0

	DoubledPawnPenalty  = 0.25
	IsolatedPawnPenalty = 0.5
	MobilityWeight      = 0.1
)

// Piece values array for quick lookup
var pieceValues = [6]float64{PawnValue, KnightValue, BishopValue, RookValue, QueenValue, KingValue}

// MaterialEvaluator is the default evaluator: material, pawn structure and
// quiet-move mobility, each taken as own minus opponent's.
type MaterialEvaluator struct{}

// Evaluate returns the static evaluation from the side to move's view.
// A side without a king has lost: -Inf if it is the side to move, +Inf if
// it is the opponent.
func (MaterialEvaluator) Evaluate(pos *board.Position, ml *board.MoveList) float64 {
	us := pos.SideToMove
	them := us.Other()

	if !pos.HasKing(us) {
		return math.Inf(-1)
	}
	if !pos.HasKing(them) {
		return math.Inf(1)
	}

	score := material(pos, us) - material(pos, them)
	score -= pawnStructure(pos, us) - pawnStructure(pos, them)

	// Mobility: quiet moves only, ours then theirs via a null move.
	start := ml.Len()
	pos.GenerateMoves(ml, false)
	own := ml.Len() - start
	ml.Truncate(start)

	pos.DoNullMove()
	pos.GenerateMoves(ml, false)
	theirs := ml.Len() - start
	ml.Truncate(start)
	pos.UndoNullMove()

	score += MobilityWeight * float64(own-theirs)
	return score
}

// material sums the piece values of color c.
func material(pos *board.Position, c board.Color) float64 {
	var total float64
	for pt := board.Pawn; pt <= board.King; pt++ {
		total += pieceValues[pt] * float64(pos.PieceBB(pt, c).Count())
	}
	return total
}

// pawnStructure returns the doubled and isolated pawn penalties for color c
// as a positive number.
func pawnStructure(pos *board.Position, c board.Color) float64 {
	pawns := pos.PieceBB(board.Pawn, c)

	var perFile [8]int
	for sq := range pawns.All() {
		perFile[sq.File]++
	}

	var penalty float64
	for file, n := range perFile {
		if n == 0 {
			continue
		}
		// Doubled pawns: every pawn sharing its file with another
		if n > 1 {
			penalty += DoubledPawnPenalty * float64(n)
		}
		// Isolated pawns: no friendly pawns on adjacent files
		left := file > 0 && perFile[file-1] > 0
		right := file < 7 && perFile[file+1] > 0
		if !left && !right {
			penalty += IsolatedPawnPenalty * float64(n)
		}
	}
	return penalty
}
