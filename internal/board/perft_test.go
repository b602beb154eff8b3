package board

import "testing"

// perft counts the leaf nodes reachable in exactly depth plies, the
// standard move-generation correctness check. Recursion clones the board
// at each node since Board has no unmake.
func perft(b *Board, depth int) int64 {
	if depth == 0 {
		return 1
	}

	var moves MoveList
	b.GenLegalMoves(&moves)
	if depth == 1 {
		return int64(moves.Len())
	}

	var nodes int64
	for i := 0; i < moves.Len(); i++ {
		child := b.Clone()
		child.Make(moves.Get(i))
		nodes += perft(child, depth-1)
	}
	return nodes
}

func TestPerftStartingPosition(t *testing.T) {
	pos, err := FromFEN(StartFEN)
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}

	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 20},
		{2, 400},
		{3, 8902},
		{4, 197281},
		// Depth 5 takes longer, enable for thorough testing:
		// {5, 4865609},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := perft(pos, tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

// TestPerftKiwipete exercises castling, en passant, and promotion all at
// once. FEN: r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -
func TestPerftKiwipete(t *testing.T) {
	pos, err := FromFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}

	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 48},
		{2, 2039},
		{3, 97862},
		// {4, 4085603}, // Takes ~1s, enable for thorough testing
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := perft(pos, tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

// TestPerftPosition3 exercises en passant edge cases.
// FEN: 8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -
func TestPerftPosition3(t *testing.T) {
	pos, err := FromFEN("8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}

	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 14},
		{2, 191},
		{3, 2812},
		{4, 43238},
		// {5, 674624}, // Enable for thorough testing
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := perft(pos, tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

// TestPerftEnPassantPin covers the horizontal-pin en passant edge case:
// the black pawn on e4 can capture en passant on d3, but doing so would
// expose the black king on a4 to the white rook on h4 along the rank.
// FEN: 8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1
func TestPerftEnPassantPin(t *testing.T) {
	pos, err := FromFEN("8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}

	var moves MoveList
	pos.GenLegalMoves(&moves)
	for i := 0; i < moves.Len(); i++ {
		if m := moves.Get(i); m.IsEnPassant() {
			t.Errorf("en passant move %v should be illegal (horizontal pin)", m)
		}
	}

	// Depth 1: Ka3, Ka5, Kb3, Kb4, Kb5, e3 = 6 moves
	// Depth 2: after e4e3 (14), after each of the 5 king moves (16 each) = 14 + 80 = 94
	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 6},
		{2, 94},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := perft(pos, tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

// TestPerftChess960StartingPosition checks a Shredder-FEN starting
// position (knights in the corners, so castling is initially blocked by
// the bishops/queen between king and rooks). Opening mobility is 16 pawn
// moves plus 1 knight move per corner knight (a1-b3 and h1-g3; the c2 and
// f2 pawns block the other knight target), 18 in all.
// FEN: nrkbbqrn/pppppppp/8/8/8/8/PPPPPPPP/NRKBBQRN w GBgb - 0 1
func TestPerftChess960StartingPosition(t *testing.T) {
	pos, err := FromFEN("nrkbbqrn/pppppppp/8/8/8/8/PPPPPPPP/NRKBBQRN w GBgb - 0 1")
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	if !pos.Chess960 {
		t.Fatalf("expected Shredder-FEN castling letters to set Chess960")
	}

	if got := perft(pos, 1); got != 18 {
		t.Errorf("perft(1) = %d, want 18", got)
	}

	// No castling move should be legal yet: the bishops and queen still
	// sit between the king and both rooks.
	var moves MoveList
	pos.GenLegalMoves(&moves)
	for i := 0; i < moves.Len(); i++ {
		if m := moves.Get(i); m.IsCastle() {
			t.Errorf("castle move %v should not be legal from the starting position", m)
		}
	}
}
