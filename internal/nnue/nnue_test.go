package nnue

import (
	"testing"

	"github.com/chesscore/chesscore/internal/board"
)

func TestFeatureIndexUniqueAndInRange(t *testing.T) {
	seen := make(map[int]bool)
	for pt := board.Pawn; pt < board.King; pt++ {
		for c := board.White; c <= board.Black; c++ {
			for sq := board.Square(0); sq < 64; sq++ {
				idx := FeatureIndex(pt, c, sq)
				if idx < 0 || idx >= FeatureCount {
					t.Fatalf("FeatureIndex(%v,%v,%v) = %d out of range [0,%d)", pt, c, sq, idx, FeatureCount)
				}
				if seen[idx] {
					t.Fatalf("FeatureIndex(%v,%v,%v) = %d collides with an earlier feature", pt, c, sq, idx)
				}
				seen[idx] = true
			}
		}
	}
}

func TestShouldMirrorSplitsFilesAtCenter(t *testing.T) {
	for file := 0; file < 4; file++ {
		sq := board.NewSquare(file, 0)
		if ShouldMirror(sq) {
			t.Errorf("file %d should not require mirroring", file)
		}
	}
	for file := 4; file < 8; file++ {
		sq := board.NewSquare(file, 0)
		if !ShouldMirror(sq) {
			t.Errorf("file %d should require mirroring", file)
		}
	}
}

func TestMirrorSquareIsSelfInverse(t *testing.T) {
	for sq := board.Square(0); sq < 64; sq++ {
		if got := MirrorSquare(MirrorSquare(sq)); got != sq {
			t.Errorf("MirrorSquare(MirrorSquare(%v)) = %v, want %v", sq, got, sq)
		}
		if MirrorSquare(sq).Rank() != sq.Rank() {
			t.Errorf("MirrorSquare(%v) changed rank", sq)
		}
	}
}

func TestKingBucketSymmetricAcrossMirror(t *testing.T) {
	for file := 0; file < 4; file++ {
		for rank := 0; rank < 8; rank++ {
			sq := board.NewSquare(file, rank)
			mirrored := board.NewSquare(7-file, rank)
			if KingBucket(sq) != KingBucket(mirrored) {
				t.Errorf("KingBucket(%v)=%d != KingBucket(%v)=%d, buckets should match across the mirror line",
					sq, KingBucket(sq), mirrored, KingBucket(mirrored))
			}
		}
	}
}

// TestDotClippedReLUSquaresTheActivation pins down the SCReLU (squared
// clipped-ReLU) contract: each lane contributes clipped(v)^2 * weight, not
// a plain clipped(v) * weight. A saturated activation (v >= QA) must
// contribute QA*QA*weight, not QA*weight.
func TestDotClippedReLUSquaresTheActivation(t *testing.T) {
	acc := make([]int16, HiddenSize)
	weights := make([]int16, HiddenSize)
	acc[0] = QA
	weights[0] = 2

	got := dotClippedReLU(acc, weights)
	want := int32(QA) * int32(QA) * 2
	if got != want {
		t.Errorf("dotClippedReLU = %d, want %d (clipped(v)^2 * weight)", got, want)
	}
}

// TestZeroNetworkEvaluatesToZero checks that an untrained, zero-initialized
// network (the fallback used when no weight file is supplied) produces a
// constant zero evaluation regardless of position, since every weight and
// bias is zero.
func TestZeroNetworkEvaluatesToZero(t *testing.T) {
	net := NewNetwork()
	ev := NewEvaluator(net)

	b, err := board.FromFEN(board.StartFEN)
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	ev.Activate(b)
	if got := ev.Evaluate(b, 0); got != 0 {
		t.Errorf("Evaluate on zero-initialized network = %d, want 0", got)
	}
}

// capturedTypeForTest and captureSquareForTest mirror the search package's
// logic for deriving the captured piece and square Evaluator.Update needs,
// since that logic lives alongside move ordering rather than on Board or
// Move themselves.
func capturedTypeForTest(b *board.Board, m board.Move) board.PieceType {
	if m.IsEnPassant() {
		return board.Pawn
	}
	p := b.PieceAt(m.To())
	if p == board.NoPiece {
		return board.NoPieceType
	}
	return p.Type()
}

func captureSquareForTest(b *board.Board, m board.Move) board.Square {
	if m.IsEnPassant() {
		if b.SideToMove == board.White {
			return board.Square(int(m.To()) - 8)
		}
		return board.Square(int(m.To()) + 8)
	}
	return m.To()
}

func newTestNetwork() *Network {
	net := NewNetwork()
	for i := range net.FeatureBias {
		net.FeatureBias[i] = int16(i%23 - 11)
	}
	for bucket := range net.FeatureWeights {
		w := net.FeatureWeights[bucket]
		for i := range w {
			w[i] = int16((i*7+bucket)%41 - 20)
		}
	}
	for i := range net.OutputWeights[0] {
		net.OutputWeights[0][i] = int16(i%13 - 6)
		net.OutputWeights[1][i] = int16(i%17 - 8)
	}
	return net
}

// checkIncrementalMatchesFresh builds up an accumulator across a move
// sequence using Push/Update, then checks it against an Evaluator that
// Activate()s directly on the resulting position. A divergence means the
// incremental path has drifted from a from-scratch recompute, the core
// correctness property NNUE engines must hold.
func checkIncrementalMatchesFresh(t *testing.T, net *Network, moves []string) {
	t.Helper()

	b, err := board.FromFEN(board.StartFEN)
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}

	incremental := NewEvaluator(net)
	incremental.Activate(b)

	for _, s := range moves {
		m, err := board.ParseMove(s, b)
		if err != nil {
			t.Fatalf("ParseMove(%s): %v", s, err)
		}
		if !b.IsLegal(m) {
			t.Fatalf("move %s is not legal in this sequence", s)
		}
		movingColor := b.SideToMove
		movingPT := b.PieceAt(m.From()).Type()
		captured := capturedTypeForTest(b, m)
		capSq := captureSquareForTest(b, m)

		incremental.Push()
		b.Make(m)
		incremental.Update(b, m, movingColor, movingPT, m.From(), m.To(), captured, capSq)
	}

	fresh := NewEvaluator(net)
	fresh.Activate(b)

	gotInc := incremental.Evaluate(b, 0)
	gotFresh := fresh.Evaluate(b, 0)
	if gotInc != gotFresh {
		t.Errorf("incremental evaluation %d diverged from full-refresh evaluation %d after moves %v", gotInc, gotFresh, moves)
	}
}

// TestIncrementalUpdateMatchesFullRefresh covers a quiet opening sequence
// with no king move, where the accumulator only ever sees ApplyDelta for
// non-king pieces.
func TestIncrementalUpdateMatchesFullRefresh(t *testing.T) {
	net := newTestNetwork()
	checkIncrementalMatchesFresh(t, net, []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1b5"})
}

// TestIncrementalUpdateMatchesFullRefreshOnKingMove covers a plain king
// move (no castling). The king is a feature like any other piece, so a
// from-scratch refresh triggered by the king's bucket/mirror change must
// place the same king-feature weights an incremental update would.
func TestIncrementalUpdateMatchesFullRefreshOnKingMove(t *testing.T) {
	net := newTestNetwork()
	checkIncrementalMatchesFresh(t, net, []string{"e2e4", "e7e5", "e1e2"})
}

// TestIncrementalUpdateMatchesFullRefreshOnCastle covers kingside castling,
// which moves both the king and the rook in one Make call; MoveDelta emits
// add/sub pairs for both, and ActiveFeatures must include the king for a
// triggered refresh to agree with it.
func TestIncrementalUpdateMatchesFullRefreshOnCastle(t *testing.T) {
	net := newTestNetwork()
	checkIncrementalMatchesFresh(t, net, []string{
		"e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "f8c5", "e1g1",
	})
}
