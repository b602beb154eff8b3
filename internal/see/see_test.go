package see

import (
	"testing"

	"github.com/chesscore/chesscore/internal/board"
)

func findMove(t *testing.T, b *board.Board, uci string) board.Move {
	t.Helper()
	var ml board.MoveList
	b.GenLegalMoves(&ml)
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		if m.UCI(b) == uci {
			return m
		}
	}
	t.Fatalf("move %s not found among legal moves", uci)
	return board.NoMove
}

func TestSeeWinningPawnTakesQueen(t *testing.T) {
	// Black queen on e5 hangs to the d4 pawn with nothing defending it.
	b, err := board.FromFEN("4k3/8/8/4q3/3P4/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	m := findMove(t, b, "d4e5")
	if !Eval(b, m, 0, Pruning) {
		t.Fatalf("expected pawn takes undefended queen to pass SEE(0)")
	}
	if !Eval(b, m, 800, Pruning) {
		t.Fatalf("expected pawn takes queen to clear an 800 threshold")
	}
}

func TestSeeLosingQueenTakesDefendedPawn(t *testing.T) {
	// White queen takes a pawn defended by a rook: loses the queen for a pawn and a rook.
	b, err := board.FromFEN("4k3/8/8/3r4/8/8/8/3QK3 w - - 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	b2, err := board.FromFEN("3rk3/8/3p4/8/8/8/8/3QK3 w - - 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	_ = b
	m := findMove(t, b2, "d1d6")
	if Eval(b2, m, 0, Pruning) {
		t.Fatalf("expected queen takes rook-defended pawn to fail SEE(0)")
	}
}

func TestSeeEqualTradeMeetsZeroThreshold(t *testing.T) {
	b, err := board.FromFEN("4k3/8/8/3n4/4P3/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	m := findMove(t, b, "e4d5")
	if !Eval(b, m, 0, Pruning) {
		t.Fatalf("expected pawn takes undefended knight to pass threshold 0")
	}
	if Eval(b, m, 400, Pruning) {
		t.Fatalf("pawn for knight should not clear a 400 threshold")
	}
}

func TestSeeOrderingAndPruningTablesDiffer(t *testing.T) {
	if Value(board.Bishop, Pruning) == Value(board.Bishop, Ordering) &&
		Value(board.Knight, Pruning) == Value(board.Knight, Ordering) {
		t.Fatalf("expected pruning and ordering value tables to differ for at least one minor piece")
	}
}
