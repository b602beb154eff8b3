package history

import "math"

// LMRTable holds precomputed late-move-reduction amounts indexed by
// [depth][moveNumber], following the standard log(depth)*log(moveNumber)
// reduction formula, hoisted into a table so both the main search and the
// move picker's pruning margins can share one computation.
type LMRTable struct {
	reduction [64][64]int
}

// NewLMRTable precomputes reductions for depth/moveNumber in [0,63].
func NewLMRTable() *LMRTable {
	t := &LMRTable{}
	for d := 1; d < 64; d++ {
		for m := 1; m < 64; m++ {
			r := 0.0
			if d >= 3 && m >= 2 {
				r = 0.5 + math.Log(float64(d))*math.Log(float64(m))/2.5
			}
			t.reduction[d][m] = int(r)
		}
	}
	return t
}

// Reduction returns the base reduction for a move searched at depth as
// the moveNumber'th move generated at this node (1-indexed), clamped to
// the table's bounds.
func (t *LMRTable) Reduction(depth, moveNumber int) int {
	if depth < 0 {
		depth = 0
	}
	if depth > 63 {
		depth = 63
	}
	if moveNumber < 0 {
		moveNumber = 0
	}
	if moveNumber > 63 {
		moveNumber = 63
	}
	return t.reduction[depth][moveNumber]
}
