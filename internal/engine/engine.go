package engine

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hailam/nullmove/internal/board"
)

// SearchInfo contains information about one completed depth.
type SearchInfo struct {
	Depth int
	Score float64
	Nodes uint64
	Time  time.Duration
	PV    []board.Move
}

// Limits specifies constraints on the search.
type Limits struct {
	MoveTime time.Duration // Deadline for this move (0 = until stopped)
	Depth    int           // Maximum depth (0 = no limit)
}

// Result is the outcome of a search.
type Result struct {
	BestMove board.Move
	Score    float64
	Depth    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
}

// Engine is the chess AI engine.
//
// It owns a single search context. Search calls are serialized on it, so
// the searcher and its move buffers are reused from one search to the next.
type Engine struct {
	mu       sync.Mutex
	searcher *Searcher

	cancelMu sync.Mutex
	cancel   context.CancelFunc

	// Callbacks
	OnInfo func(SearchInfo)
}

// NewEngine creates a new chess engine. A nil evaluator selects
// MaterialEvaluator.
func NewEngine(eval Evaluator) *Engine {
	return &Engine{
		searcher: NewSearcher(eval),
	}
}

// Search finds the best move for pos within limits.
//
// Iterative deepening runs on a worker goroutine and reports each completed
// depth over a channel. The calling goroutine keeps the latest report until
// the deadline passes, ctx is done, or Stop is called, then raises the stop
// flag. If not even depth 1 has finished by then, it waits for it, so a
// position with legal moves always yields a move. OnInfo is called from the
// calling goroutine once per reported depth.
//
// With no legal moves the result holds board.NoMove and a score of -Inf
// (checkmate) or 0 (stalemate). pos is not modified.
func (e *Engine) Search(ctx context.Context, pos *board.Position, limits Limits) (Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	e.setCancel(cancel)
	defer e.setCancel(nil)

	start := time.Now()
	root := pos.Copy()

	legal, err := root.LegalMoves()
	if err != nil {
		return Result{}, fmt.Errorf("root moves: %w", err)
	}
	if legal.Len() == 0 {
		check, err := root.InCheck(legal)
		if err != nil {
			return Result{}, fmt.Errorf("root check: %w", err)
		}
		res := Result{BestMove: board.NoMove, Time: time.Since(start)}
		if check {
			res.Score = math.Inf(-1)
		}
		log.Debug().Bool("check", check).Msg("no-legal-moves")
		return res, nil
	}

	s := e.searcher
	s.Reset()
	results := make(chan SearchInfo, 1)

	g := errgroup.Group{}
	g.Go(func() error {
		defer close(results)
		return e.iterate(root, limits, start, results)
	})

	last, ok := e.control(ctx, limits, results)

	// Cooperative stop: the worker notices at its next move boundary.
	s.Stop()
	for range results {
	}
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("search-failed")
		return Result{}, err
	}

	res := Result{Time: time.Since(start)}
	if ok && len(last.PV) > 0 {
		res.BestMove = last.PV[0]
		res.Score = last.Score
		res.Depth = last.Depth
		res.Nodes = last.Nodes
		res.PV = last.PV
	} else {
		res.BestMove = legal.Get(0)
	}

	log.Debug().
		Int("depth", res.Depth).
		Uint64("nodes", res.Nodes).
		Dur("elapsed", res.Time).
		Str("bestmove", res.BestMove.String()).
		Msg("search-finished")
	return res, nil
}

// iterate is the worker: search depth 1, 2, 3... and publish each depth
// that finished without being stopped.
func (e *Engine) iterate(pos *board.Position, limits Limits, start time.Time, results chan<- SearchInfo) error {
	s := e.searcher

	maxDepth := MaxDepth
	if limits.Depth > 0 && limits.Depth < maxDepth {
		maxDepth = limits.Depth
	}

	for depth := 1; depth <= maxDepth; depth++ {
		s.nodes = 0
		score, err := s.Search(pos, depth)
		if err != nil {
			return fmt.Errorf("depth %d: %w", depth, err)
		}
		if s.IsStopped() {
			return nil
		}

		pv := s.PV()
		if len(pv) == 0 {
			return nil
		}
		results <- SearchInfo{
			Depth: depth,
			Score: score,
			Nodes: s.Nodes(),
			Time:  time.Since(start),
			PV:    pv,
		}

		// Early termination: a forced king capture either way will not
		// change with more depth.
		if math.IsInf(score, 0) {
			return nil
		}
	}
	return nil
}

// control is the controller side of Search. It returns the last report
// received and whether there was one.
func (e *Engine) control(ctx context.Context, limits Limits, results <-chan SearchInfo) (SearchInfo, bool) {
	var deadline <-chan time.Time
	if limits.MoveTime > 0 {
		timer := time.NewTimer(limits.MoveTime)
		defer timer.Stop()
		deadline = timer.C
	}

	var last SearchInfo
	have := false
	receive := func(info SearchInfo) {
		last, have = info, true
		if e.OnInfo != nil {
			e.OnInfo(info)
		}
	}

wait:
	for {
		select {
		case info, open := <-results:
			if !open {
				return last, have
			}
			receive(info)
		case <-deadline:
			break wait
		case <-ctx.Done():
			break wait
		}
	}

	if !have {
		log.Debug().Msg("deadline-before-depth-1")
		if info, open := <-results; open {
			receive(info)
		}
	}
	return last, have
}

func (e *Engine) setCancel(cancel context.CancelFunc) {
	e.cancelMu.Lock()
	e.cancel = cancel
	e.cancelMu.Unlock()
}

// Stop ends the running search, if any, as if its deadline had passed.
func (e *Engine) Stop() {
	e.cancelMu.Lock()
	defer e.cancelMu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
}

// Perft performs a perft test (for debugging move generation).
func (e *Engine) Perft(pos *board.Position, depth int) (uint64, error) {
	if depth == 0 {
		return 1, nil
	}

	moves, err := pos.LegalMoves()
	if err != nil {
		return 0, err
	}
	if depth == 1 {
		return uint64(moves.Len()), nil
	}

	var nodes uint64
	for i := 0; i < moves.Len(); i++ {
		move := moves.Get(i)
		undo, err := pos.DoMove(move)
		if err != nil {
			return 0, err
		}
		n, err := e.Perft(pos, depth-1)
		if err != nil {
			return 0, err
		}
		nodes += n
		if err := pos.UndoMove(undo); err != nil {
			return 0, err
		}
	}

	return nodes, nil
}

// Evaluate returns the static evaluation of a position.
func (e *Engine) Evaluate(pos *board.Position) float64 {
	return e.searcher.eval.Evaluate(pos, board.NewMoveList())
}
