package board

import "testing"

// isMated reports whether the side to move has no legal moves while in check.
func isMated(b *Board) bool {
	if !b.InCheck() {
		return false
	}
	var moves MoveList
	b.GenLegalMoves(&moves)
	return moves.Len() == 0
}

// isStalemate reports whether the side to move has no legal moves and is
// not in check.
func isStalemate(b *Board) bool {
	if b.InCheck() {
		return false
	}
	var moves MoveList
	b.GenLegalMoves(&moves)
	return moves.Len() == 0
}

// TestFoolsMate plays the shortest possible mate and checks that the final
// position is recognized as checkmate, not merely check.
func TestFoolsMate(t *testing.T) {
	b, err := FromFEN(StartFEN)
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}

	moves := []string{"f2f3", "e7e5", "g2g4", "d8h4"}
	for _, s := range moves {
		m, err := ParseMove(s, b)
		if err != nil {
			t.Fatalf("ParseMove(%s): %v", s, err)
		}
		if !b.IsLegal(m) {
			t.Fatalf("move %s not legal", s)
		}
		b.Make(m)
	}

	if !isMated(b) {
		t.Fatalf("expected checkmate after Fool's Mate, got InCheck=%v", b.InCheck())
	}
}

// TestStalemate sets up a known stalemate (white king a1, black king a3,
// black queen b3) where white to move has no legal moves but is not in check.
func TestStalemate(t *testing.T) {
	b, err := FromFEN("8/8/8/8/8/kq6/8/K7 w - - 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}

	if !isStalemate(b) {
		t.Fatalf("expected stalemate, got InCheck=%v", b.InCheck())
	}
	if isMated(b) {
		t.Fatalf("stalemate position misclassified as checkmate")
	}
}

// TestEnPassantLegalityRespectsCheck verifies that an en passant capture
// which would leave the capturing side's own king in check is excluded
// from the legal move list, using the same position as the perft pin test
// but asserting specifically against the capture move rather than the
// aggregate node count.
func TestEnPassantLegalityRespectsCheck(t *testing.T) {
	b, err := FromFEN("8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}

	m, err := ParseMove("e4d3", b)
	if err != nil {
		t.Fatalf("ParseMove(e4d3): %v", err)
	}
	if !m.IsEnPassant() {
		t.Fatalf("expected e4d3 to be parsed as an en passant capture")
	}
	if b.IsLegal(m) {
		t.Errorf("e4d3 should be illegal: it exposes the black king to the rook on h4")
	}
}

// TestEnPassantLegalWhenSafe checks the same pawn structure without the
// pinning rook, confirming the capture is legal once nothing attacks
// through the vacated square.
func TestEnPassantLegalWhenSafe(t *testing.T) {
	b, err := FromFEN("8/8/8/8/k2Pp3/8/8/4K3 b - d3 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}

	m, err := ParseMove("e4d3", b)
	if err != nil {
		t.Fatalf("ParseMove(e4d3): %v", err)
	}
	if !b.IsLegal(m) {
		t.Errorf("e4d3 should be legal with no rank pin present")
	}
}

// TestFRCCastlingKingRookSquareOverlap exercises the Chess960 rule that the
// king's destination square may coincide with its own rook's starting
// square during castling. King on f1, kingside rook on g1: castling moves
// the king onto the rook's own origin square (g1) while the rook lands on
// the king's origin square (f1).
// FEN: r4kr1/pppppppp/8/8/8/8/PPPPPPPP/R4KR1 w GAga - 0 1
func TestFRCCastlingKingRookSquareOverlap(t *testing.T) {
	b, err := FromFEN("r4kr1/pppppppp/8/8/8/8/PPPPPPPP/R4KR1 w GAga - 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	if !b.Chess960 {
		t.Fatalf("expected Shredder-FEN castling letters to set Chess960")
	}

	m, err := ParseMove("f1g1", b)
	if err != nil {
		t.Fatalf("ParseMove(f1g1): %v", err)
	}
	if !m.IsCastle() {
		t.Fatalf("expected f1g1 to be parsed as a castling move")
	}
	if !b.IsLegal(m) {
		t.Fatalf("kingside castle should be legal: king and rook unmoved, path clear")
	}

	b.Make(m)
	if b.PieceAt(G1) != WhiteKing {
		t.Errorf("expected white king on g1 after castling, got %v", b.PieceAt(G1))
	}
	if b.PieceAt(F1) != WhiteRook {
		t.Errorf("expected white rook on f1 after castling, got %v", b.PieceAt(F1))
	}
}

// TestFRCCastlingBlockedByOccupiedTravelSquare checks that castling is
// refused when a piece occupies a square the king or rook must cross, even
// when neither the king's start nor end square is itself attacked. The
// bishop on d1 sits between the queenside rook (a1) and the king's
// queenside destination (c1).
// FEN: r2bk2r/pppppppp/8/8/8/8/PPPPPPPP/R2BK2R w HAha - 0 1
func TestFRCCastlingBlockedByOccupiedTravelSquare(t *testing.T) {
	b, err := FromFEN("r2bk2r/pppppppp/8/8/8/8/PPPPPPPP/R2BK2R w HAha - 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	if !b.Chess960 {
		t.Fatalf("expected Shredder-FEN castling letters to set Chess960")
	}

	var moves MoveList
	b.GenLegalMoves(&moves)
	for i := 0; i < moves.Len(); i++ {
		if m := moves.Get(i); m.IsCastle() && !m.IsKingSideCastle() {
			t.Errorf("queenside castle %v should be illegal with the d1 bishop blocking the path", m)
		}
	}
}
