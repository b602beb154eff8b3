// Package history implements the search's heuristic tables: quiet/capture/
// continuation history, killer slots, correction histories, and the LMR
// reduction table.
package history

import "github.com/chesscore/chesscore/internal/board"

// MaxPly mirrors internal/search.MaxPly; duplicated here to avoid an
// import cycle (search depends on history, not the reverse).
const MaxPly = 128

const quietMax = 16384
const captureMax = 16384
const continuationMax = 16384

// gravity applies a saturating "move toward bonus" update:
// new = old + bonus - old*|bonus|/MAX, clamped to +-max.
func gravity(old, bonus, max int32) int32 {
	if bonus > max {
		bonus = max
	} else if bonus < -max {
		bonus = -max
	}
	abs := bonus
	if abs < 0 {
		abs = -abs
	}
	newVal := old + bonus - old*abs/max
	if newVal > max {
		newVal = max
	} else if newVal < -max {
		newVal = -max
	}
	return newVal
}

// Tables bundles every per-worker heuristic table: history tables,
// correction histories, and killers.
type Tables struct {
	Quiet        [2][2][2][64][64]int32 // [stm][fromAttacked][toAttacked][from][to]
	Capture      [2][12][64][6]int32    // [stm][attackerPiece][to][capturedType]
	Continuation [12][64][12][64]int32  // [prevPiece][prevTo][piece][to]
	Killers      [MaxPly][2]board.Move
	Correction   Correction
}

// NewTables returns a zeroed table set.
func NewTables() *Tables {
	return &Tables{}
}

// Clear resets killers and halves every history table between searches.
func (t *Tables) Clear() {
	for i := range t.Killers {
		t.Killers[i][0] = board.NoMove
		t.Killers[i][1] = board.NoMove
	}
	for a := range t.Quiet {
		for b2 := range t.Quiet[a] {
			for c := range t.Quiet[a][b2] {
				for d := range t.Quiet[a][b2][c] {
					for e := range t.Quiet[a][b2][c][d] {
						t.Quiet[a][b2][c][d][e] /= 2
					}
				}
			}
		}
	}
	for a := range t.Capture {
		for b2 := range t.Capture[a] {
			for c := range t.Capture[a][b2] {
				for d := range t.Capture[a][b2][c] {
					t.Capture[a][b2][c][d] /= 2
				}
			}
		}
	}
	for a := range t.Continuation {
		for b2 := range t.Continuation[a] {
			for c := range t.Continuation[a][b2] {
				for d := range t.Continuation[a][b2][c] {
					t.Continuation[a][b2][c][d] /= 2
				}
			}
		}
	}
}

// QuietScore reads the quiet-history entry.
func (t *Tables) QuietScore(stm board.Color, fromAttacked, toAttacked bool, from, to board.Square) int32 {
	return t.Quiet[stm][boolIdx(fromAttacked)][boolIdx(toAttacked)][from][to]
}

// UpdateQuiet applies a gravity-formula bonus/malus to a quiet move.
func (t *Tables) UpdateQuiet(stm board.Color, fromAttacked, toAttacked bool, from, to board.Square, bonus int32) {
	p := &t.Quiet[stm][boolIdx(fromAttacked)][boolIdx(toAttacked)][from][to]
	*p = gravity(*p, bonus, quietMax)
}

// CaptureScore reads the capture-history entry.
func (t *Tables) CaptureScore(stm board.Color, attacker board.Piece, to board.Square, captured board.PieceType) int32 {
	return t.Capture[stm][attacker][to][captured]
}

// UpdateCapture applies a gravity-formula bonus/malus to a capture.
func (t *Tables) UpdateCapture(stm board.Color, attacker board.Piece, to board.Square, captured board.PieceType, bonus int32) {
	p := &t.Capture[stm][attacker][to][captured]
	*p = gravity(*p, bonus, captureMax)
}

// ContinuationScore reads the (prev-piece, prev-to, piece, to) entry.
func (t *Tables) ContinuationScore(prevPiece board.Piece, prevTo board.Square, piece board.Piece, to board.Square) int32 {
	return t.Continuation[prevPiece][prevTo][piece][to]
}

// UpdateContinuation applies a gravity-formula bonus/malus to a
// continuation entry.
func (t *Tables) UpdateContinuation(prevPiece board.Piece, prevTo board.Square, piece board.Piece, to board.Square, bonus int32) {
	p := &t.Continuation[prevPiece][prevTo][piece][to]
	*p = gravity(*p, bonus, continuationMax)
}

func boolIdx(b bool) int {
	if b {
		return 1
	}
	return 0
}

// UpdateKillers installs m as the first killer at ply, demoting the
// existing first killer to second.
func (t *Tables) UpdateKillers(ply int, m board.Move) {
	if ply >= MaxPly || t.Killers[ply][0] == m {
		return
	}
	t.Killers[ply][1] = t.Killers[ply][0]
	t.Killers[ply][0] = m
}

// IsKiller reports whether m is a killer at ply, and which slot.
func (t *Tables) IsKiller(ply int, m board.Move) (slot int, ok bool) {
	if t.Killers[ply][0] == m {
		return 0, true
	}
	if t.Killers[ply][1] == m {
		return 1, true
	}
	return 0, false
}

// HistoryBonus is the standard depth-scaled bonus applied on a cutoff move.
func HistoryBonus(depth int) int32 {
	b := int32(depth * depth * 4)
	if b > 1200 {
		b = 1200
	}
	return b
}
