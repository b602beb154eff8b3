package tt

import (
	"testing"

	"github.com/chesscore/chesscore/internal/board"
)

func TestStoreThenProbe(t *testing.T) {
	table := New(16)
	hash := uint64(0x1234567890ABCDEF)
	bestMove := board.NewMove(board.A1, board.B1)

	table.Store(hash, bestMove, 100, -10000, 5, 0, FlagExact, true)

	if _, _, _, _, _, _, found := table.Probe(0x0987654321FEDCBA); found {
		t.Fatalf("expected probe miss for an unrelated hash")
	}

	move, score, staticEval, depth, flag, pv, found := table.Probe(hash)
	if !found {
		t.Fatalf("expected probe hit for stored hash")
	}
	if move != bestMove {
		t.Errorf("move = %v, want %v", move, bestMove)
	}
	if score != 100 {
		t.Errorf("score = %d, want 100", score)
	}
	if staticEval != -10000 {
		t.Errorf("staticEval = %d, want -10000", staticEval)
	}
	if depth != 5 {
		t.Errorf("depth = %d, want 5", depth)
	}
	if flag != FlagExact {
		t.Errorf("flag = %v, want FlagExact", flag)
	}
	if !pv {
		t.Errorf("expected pv flag to round-trip true")
	}
}

func TestGatedReplacementKeepsDeeperEntry(t *testing.T) {
	table := New(1)
	hash := uint64(0xAAAABBBBCCCCDDDD)
	m1 := board.NewMove(board.E2, board.E4)
	m2 := board.NewMove(board.D2, board.D4)

	table.Store(hash, m1, 50, 0, 10, 0, FlagUpper, false)
	// A shallower, non-exact store for the same key should not overwrite a
	// much deeper entry still from the current generation.
	table.Store(hash, m2, 60, 0, 2, 0, FlagUpper, false)

	move, _, _, depth, _, _, found := table.Probe(hash)
	if !found {
		t.Fatalf("expected entry still present")
	}
	if move != m1 || depth != 10 {
		t.Fatalf("expected deeper entry to survive, got move=%v depth=%d", move, depth)
	}
}

func TestExactAlwaysReplaces(t *testing.T) {
	table := New(1)
	hash := uint64(0x1111222233334444)
	m1 := board.NewMove(board.E2, board.E4)
	m2 := board.NewMove(board.G1, board.F3)

	table.Store(hash, m1, 50, 0, 10, 0, FlagUpper, false)
	table.Store(hash, m2, 60, 0, 2, 0, FlagExact, false)

	move, _, _, depth, flag, _, found := table.Probe(hash)
	if !found {
		t.Fatalf("expected entry present")
	}
	if move != m2 || depth != 2 || flag != FlagExact {
		t.Fatalf("expected exact store to replace, got move=%v depth=%d flag=%v", move, depth, flag)
	}
}

func TestClearRemovesEntries(t *testing.T) {
	table := New(1)
	hash := uint64(0x5555666677778888)
	table.Store(hash, board.NewMove(board.A2, board.A4), 10, 0, 3, 0, FlagExact, false)
	table.Clear()
	if _, _, _, _, _, _, found := table.Probe(hash); found {
		t.Fatalf("expected no entries after Clear")
	}
}

func TestBirthdayAgesOutStaleEntries(t *testing.T) {
	table := New(1)
	hash := uint64(0x9999AAAABBBBCCCC)
	m1 := board.NewMove(board.E2, board.E4)
	m2 := board.NewMove(board.D2, board.D4)

	table.Store(hash, m1, 50, 0, 10, 0, FlagUpper, false)
	table.Birthday()
	// Even a shallow non-exact store should replace once the stored entry
	// belongs to a previous generation.
	table.Store(hash, m2, 60, 0, 1, 0, FlagUpper, false)

	move, _, _, depth, _, _, found := table.Probe(hash)
	if !found {
		t.Fatalf("expected entry present")
	}
	if move != m2 || depth != 1 {
		t.Fatalf("expected new-generation shallow store to replace stale entry, got move=%v depth=%d", move, depth)
	}
}
