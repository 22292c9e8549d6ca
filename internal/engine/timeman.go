package engine

import (
	"time"

	"github.com/hailam/nullmove/internal/board"
)

// UCILimits contains UCI time control parameters.
type UCILimits struct {
	Time      [2]time.Duration // wtime, btime (remaining time for each color)
	Inc       [2]time.Duration // winc, binc (increment per move)
	MovesToGo int              // moves until next time control (0 = sudden death)
	MoveTime  time.Duration    // fixed time per move (overrides other time controls)
	Depth     int              // maximum search depth
	Infinite  bool             // search until stopped
}

// HasClock reports whether the limits set any time at all.
func (l UCILimits) HasClock() bool {
	return l.MoveTime > 0 || l.Time[board.White] > 0 || l.Time[board.Black] > 0
}

// AllocateTime turns UCI time controls into search limits for side us.
// ply is the current game ply (half-move number).
//
// A fixed move time is used as is. Infinite searches, and searches with no
// clock for us, get no deadline; the depth limit is passed through.
func AllocateTime(limits UCILimits, us board.Color, ply int) Limits {
	out := Limits{Depth: limits.Depth}

	// Fixed move time mode
	if limits.MoveTime > 0 {
		out.MoveTime = limits.MoveTime
		return out
	}

	// Infinite or depth-limited mode
	if limits.Infinite || limits.Time[us] == 0 {
		return out
	}

	// Calculate time allocation based on remaining time and increment
	timeLeft := limits.Time[us]
	inc := limits.Inc[us]

	// Estimate moves to go
	mtg := limits.MovesToGo
	if mtg == 0 {
		// Sudden death: fewer moves expected as the game goes on
		mtg = 50 - ply/4
		if mtg < 10 {
			mtg = 10
		}
		if mtg > 50 {
			mtg = 50
		}
	}

	// Base time per move plus most of the increment
	optimum := timeLeft/time.Duration(mtg) + inc*9/10

	// Slight reduction for very early moves (give some buffer)
	if ply < 8 {
		optimum = optimum * 85 / 100
	}

	// Never plan to use more than 80% of what is left
	if maxTime := timeLeft * 8 / 10; optimum > maxTime {
		optimum = maxTime
	}

	// Minimum time
	if optimum < 10*time.Millisecond {
		optimum = 10 * time.Millisecond
	}

	out.MoveTime = optimum
	return out
}
