package history

import (
	"testing"

	"github.com/chesscore/chesscore/internal/board"
)

func TestQuietHistoryGravityConverges(t *testing.T) {
	tbl := NewTables()
	from, to := board.E2, board.E4

	for i := 0; i < 50; i++ {
		tbl.UpdateQuiet(board.White, false, false, from, to, HistoryBonus(6))
	}
	score := tbl.QuietScore(board.White, false, false, from, to)
	if score <= 0 {
		t.Fatalf("expected positive quiet history after repeated positive bonus, got %d", score)
	}
	if score > quietMax {
		t.Fatalf("quiet history %d exceeds clamp %d", score, quietMax)
	}

	for i := 0; i < 50; i++ {
		tbl.UpdateQuiet(board.White, false, false, from, to, -HistoryBonus(6))
	}
	score = tbl.QuietScore(board.White, false, false, from, to)
	if score >= 0 {
		t.Fatalf("expected history to swing negative after repeated negative bonus, got %d", score)
	}
}

func TestClearHalvesHistory(t *testing.T) {
	tbl := NewTables()
	tbl.UpdateCapture(board.White, board.WhiteKnight, board.E5, board.Pawn, 1000)
	before := tbl.CaptureScore(board.White, board.WhiteKnight, board.E5, board.Pawn)
	tbl.Clear()
	after := tbl.CaptureScore(board.White, board.WhiteKnight, board.E5, board.Pawn)
	if after != before/2 {
		t.Fatalf("expected Clear to halve capture history: before=%d after=%d", before, after)
	}
}

func TestClearResetsKillers(t *testing.T) {
	tbl := NewTables()
	tbl.UpdateKillers(3, board.NewMove(board.G1, board.F3))
	tbl.Clear()
	if _, ok := tbl.IsKiller(3, board.NewMove(board.G1, board.F3)); ok {
		t.Fatalf("expected killers cleared after Clear")
	}
}

func TestKillerSlotPromotion(t *testing.T) {
	tbl := NewTables()
	m1 := board.NewMove(board.G1, board.F3)
	m2 := board.NewMove(board.B1, board.C3)

	tbl.UpdateKillers(0, m1)
	tbl.UpdateKillers(0, m2)

	if slot, ok := tbl.IsKiller(0, m2); !ok || slot != 0 {
		t.Fatalf("expected m2 to be primary killer, got slot=%d ok=%v", slot, ok)
	}
	if slot, ok := tbl.IsKiller(0, m1); !ok || slot != 1 {
		t.Fatalf("expected m1 demoted to secondary killer, got slot=%d ok=%v", slot, ok)
	}
}

func TestCorrectionAppliesAndUpdates(t *testing.T) {
	b, err := board.FromFEN(board.StartFEN)
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	var c Correction

	raw := 25
	corrected := c.Apply(b, board.White, raw, board.NoPiece, board.NoSquare, board.NoPiece, board.NoSquare)
	if corrected != raw {
		t.Fatalf("expected no correction before any Update, got %d want %d", corrected, raw)
	}

	for i := 0; i < 20; i++ {
		c.Update(b, board.White, raw+80, raw, 8, board.NoPiece, board.NoSquare, board.NoPiece, board.NoSquare)
	}
	corrected = c.Apply(b, board.White, raw, board.NoPiece, board.NoSquare, board.NoPiece, board.NoSquare)
	if corrected <= raw {
		t.Fatalf("expected correction to push eval toward search score, got %d want > %d", corrected, raw)
	}
}

func TestLMRTableMonotonicInDepthAndMoveNumber(t *testing.T) {
	lmr := NewLMRTable()
	if r := lmr.Reduction(2, 10); r != 0 {
		t.Fatalf("expected no reduction below depth 3, got %d", r)
	}
	shallow := lmr.Reduction(4, 10)
	deep := lmr.Reduction(20, 10)
	if deep < shallow {
		t.Fatalf("expected reduction to grow with depth: depth4=%d depth20=%d", shallow, deep)
	}
	early := lmr.Reduction(10, 2)
	late := lmr.Reduction(10, 40)
	if late < early {
		t.Fatalf("expected reduction to grow with move number: early=%d late=%d", early, late)
	}
}
