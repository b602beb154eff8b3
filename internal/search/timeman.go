package search

import (
	"time"

	"github.com/chesscore/chesscore/internal/board"
)

// Limits mirrors the UCI `go` command's time-control parameters.
type Limits struct {
	Time      [2]time.Duration
	Inc       [2]time.Duration
	MovesToGo int
	MoveTime  time.Duration
	Depth     int
	Nodes     uint64
	Infinite  bool

	// SoftNodes changes how Nodes is enforced: when true, it is only
	// checked between iterative-deepening iterations (the search may
	// overshoot mid-iteration), matching engines that expose a
	// "UseSoftNodes" option for smoother node-limited play; when false,
	// Nodes is polled inside the search and stops it immediately.
	SoftNodes bool
}

// TimeManager computes soft/hard move-time budgets and adjusts the soft
// budget as the search reports best-move stability, score swings, and
// the fraction of total nodes spent on the current best move.
type TimeManager struct {
	optimum   time.Duration
	maximum   time.Duration
	startTime time.Time
}

// NewTimeManager returns a zeroed manager; call Init before a search.
func NewTimeManager() *TimeManager {
	return &TimeManager{}
}

// Init allocates optimum/maximum time budgets for the side to move us at
// game ply.
func (tm *TimeManager) Init(limits Limits, us board.Color, ply int) {
	tm.startTime = time.Now()

	if limits.MoveTime > 0 {
		tm.optimum = limits.MoveTime
		tm.maximum = limits.MoveTime
		return
	}

	if limits.Infinite || limits.Time[us] == 0 {
		tm.optimum = time.Hour
		tm.maximum = time.Hour
		return
	}

	timeLeft := limits.Time[us]
	inc := limits.Inc[us]

	mtg := limits.MovesToGo
	if mtg == 0 {
		mtg = 50 - ply/4
		if mtg < 10 {
			mtg = 10
		}
		if mtg > 50 {
			mtg = 50
		}
	}

	base := timeLeft / time.Duration(mtg)
	base += inc * 9 / 10

	tm.optimum = base
	if ply < 8 {
		tm.optimum = base * 85 / 100
	}

	maxFromOptimum := tm.optimum * 5
	maxFromRemaining := timeLeft * 8 / 10
	if maxFromOptimum < maxFromRemaining {
		tm.maximum = maxFromOptimum
	} else {
		tm.maximum = maxFromRemaining
	}

	safety := timeLeft * 95 / 100
	if tm.maximum > safety {
		tm.maximum = safety
	}

	if tm.optimum < 10*time.Millisecond {
		tm.optimum = 10 * time.Millisecond
	}
	if tm.maximum < 50*time.Millisecond {
		tm.maximum = 50 * time.Millisecond
	}
}

// Elapsed reports time since Init.
func (tm *TimeManager) Elapsed() time.Duration { return time.Since(tm.startTime) }

// ShouldStopHard reports whether the hard wall-clock limit has passed.
func (tm *TimeManager) ShouldStopHard() bool { return tm.Elapsed() >= tm.maximum }

// ShouldStopSoft reports whether the (possibly adjusted) soft limit has
// passed; checked only between iterative-deepening iterations.
func (tm *TimeManager) ShouldStopSoft() bool { return tm.Elapsed() >= tm.optimum }

// AdjustForStability scales the soft limit down as the best move holds
// across consecutive completed depths.
func (tm *TimeManager) AdjustForStability(stability int) {
	switch {
	case stability >= 6:
		tm.optimum = tm.optimum * 40 / 100
	case stability >= 4:
		tm.optimum = tm.optimum * 60 / 100
	case stability >= 2:
		tm.optimum = tm.optimum * 80 / 100
	}
}

// AdjustForInstability scales the soft limit up as the best move keeps
// changing, capped at the hard maximum.
func (tm *TimeManager) AdjustForInstability(changes int) {
	switch {
	case changes >= 4:
		tm.optimum = tm.optimum * 200 / 100
	case changes >= 2:
		tm.optimum = tm.optimum * 150 / 100
	}
	if tm.optimum > tm.maximum {
		tm.optimum = tm.maximum
	}
}

// AdjustForNodeFraction scales the soft limit by how concentrated the
// search was on the best root move: a best move that absorbed most of
// the node budget is unlikely to change, so less additional time is
// needed; a close race between root moves earns more time.
func (tm *TimeManager) AdjustForNodeFraction(bestMoveNodes, totalNodes uint64) {
	if totalNodes == 0 {
		return
	}
	fraction := float64(bestMoveNodes) / float64(totalNodes)
	scale := 1.5 - fraction
	if scale < 0.5 {
		scale = 0.5
	}
	if scale > 1.5 {
		scale = 1.5
	}
	tm.optimum = time.Duration(float64(tm.optimum) * scale)
	if tm.optimum > tm.maximum {
		tm.optimum = tm.maximum
	}
}
