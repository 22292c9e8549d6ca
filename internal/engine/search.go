package engine

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/hailam/nullmove/internal/board"
)

// Search constants
const (
	MaxPly   = 64
	MaxDepth = MaxPly - 1
)

// PVTable stores the principal variation.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

// update makes m followed by the child's line the variation at ply.
func (pv *PVTable) update(ply int, m board.Move) {
	pv.moves[ply][0] = m
	n := 0
	if ply+1 < MaxPly {
		n = pv.length[ply+1]
		copy(pv.moves[ply][1:], pv.moves[ply+1][:n])
	}
	pv.length[ply] = n + 1
}

// line returns a copy of the variation found at the root.
func (pv *PVTable) line() []board.Move {
	out := make([]board.Move, pv.length[0])
	copy(out, pv.moves[0][:pv.length[0]])
	return out
}

// movePool is a freelist of move buffers, one borrowed per search node.
type movePool struct {
	free []*board.MoveList
}

func (mp *movePool) get() *board.MoveList {
	n := len(mp.free)
	if n == 0 {
		return board.NewMoveList()
	}
	ml := mp.free[n-1]
	mp.free = mp.free[:n-1]
	ml.Clear()
	return ml
}

func (mp *movePool) put(ml *board.MoveList) {
	mp.free = append(mp.free, ml)
}

// Searcher performs the alpha-beta search.
// It is not safe for concurrent use; Engine serializes access to it.
type Searcher struct {
	eval     Evaluator
	pool     movePool
	pv       PVTable
	nodes    uint64
	stopFlag atomic.Bool
}

// NewSearcher creates a new searcher using eval at the leaves.
func NewSearcher(eval Evaluator) *Searcher {
	if eval == nil {
		eval = MaterialEvaluator{}
	}
	return &Searcher{eval: eval}
}

// Stop signals the search to stop.
func (s *Searcher) Stop() {
	s.stopFlag.Store(true)
}

// IsStopped returns true if the search has been stopped.
func (s *Searcher) IsStopped() bool {
	return s.stopFlag.Load()
}

// Reset resets the searcher for a new search.
// The move buffer pool is kept.
func (s *Searcher) Reset() {
	s.stopFlag.Store(false)
	s.nodes = 0
}

// Nodes returns the number of nodes searched.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// PV returns the principal variation from the last search.
func (s *Searcher) PV() []board.Move {
	return s.pv.line()
}

// Search searches pos to the given depth with a full window and returns the
// score for the side to move. When the stop flag is raised mid-search the
// score is -Inf and must not be used. pos is restored before returning.
func (s *Searcher) Search(pos *board.Position, depth int) (float64, error) {
	if depth > MaxDepth {
		depth = MaxDepth
	}
	return s.negamax(pos, depth, 0, math.Inf(-1), math.Inf(1))
}

// negamax is fail-soft alpha-beta in negamax form. Only the root filters
// for legality; below it an illegal move shows up as a lost king one ply
// later, which scores -Inf for the side that made it.
func (s *Searcher) negamax(pos *board.Position, depth, ply int, alpha, beta float64) (float64, error) {
	s.nodes++
	s.pv.length[ply] = 0

	if !pos.HasKing(pos.SideToMove) {
		return math.Inf(-1), nil
	}

	ml := s.pool.get()
	defer s.pool.put(ml)

	if depth <= 0 {
		return s.eval.Evaluate(pos, ml), nil
	}

	if ply == 0 {
		if err := pos.GenerateLegalMoves(ml); err != nil {
			return 0, err
		}
	} else {
		pos.GenerateMoves(ml, true)
		pos.GenerateMoves(ml, false)
	}

	if ml.Len() == 0 {
		check, err := pos.InCheck(ml)
		if err != nil {
			return 0, err
		}
		if check {
			return math.Inf(-1), nil
		}
		return 0, nil
	}

	best := math.Inf(-1)
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		undo, err := pos.DoMove(m)
		if err != nil {
			return 0, fmt.Errorf("search ply %d: %w", ply, err)
		}
		score, err := s.negamax(pos, depth-1, ply+1, -beta, -alpha)
		score = -score
		if uerr := pos.UndoMove(undo); uerr != nil && err == nil {
			err = fmt.Errorf("search ply %d: %w", ply, uerr)
		}
		if err != nil {
			return 0, err
		}

		if s.stopFlag.Load() {
			return math.Inf(-1), nil
		}

		if score > best {
			best = score
			s.pv.update(ply, m)
			if score > alpha {
				alpha = score
			}
			if alpha >= beta {
				break
			}
		}
	}

	// Every pseudo-legal move lost the king. With no legal move either this
	// is mate or stalemate, not a forced loss.
	if ply > 0 && math.IsInf(best, -1) {
		ml.Clear()
		if err := pos.GenerateLegalMoves(ml); err != nil {
			return 0, err
		}
		if ml.Len() == 0 {
			check, err := pos.InCheck(ml)
			if err != nil {
				return 0, err
			}
			if !check {
				return 0, nil
			}
		}
	}

	// Every root move loses the king: still answer with a legal move.
	if ply == 0 && s.pv.length[0] == 0 {
		s.pv.moves[0][0] = ml.Get(0)
		s.pv.length[0] = 1
	}

	return best, nil
}
