// Package scharnagl derives Chess960/DFRC starting positions from their
// numbering-scheme index, producing a Shredder-FEN string that board.FromFEN
// can parse directly rather than building a Board by hand.
package scharnagl

import "fmt"

// knightPairs lists the ten ways to place the two knights among the five
// files still empty after the bishops and queen, indexed by n4.
var knightPairs = [10][2]int{
	{0, 1}, {0, 2}, {0, 3}, {0, 4},
	{1, 2}, {1, 3}, {1, 4},
	{2, 3}, {2, 4},
	{3, 4},
}

// backrank computes the 8-file piece arrangement for a Scharnagl index in
// [0, 960), following the direct-derivation formula: place the bishops on
// opposite-colored squares first, then the queen, then the knight pair into
// whichever two empty files remain, then rooks and king into the last three.
func backrank(n int) [8]byte {
	var rank [8]byte

	n2, b1 := n/4, n%4
	darkBishopFiles := [4]int{1, 3, 5, 7}
	rank[darkBishopFiles[b1]] = 'B'

	n3, b2 := n2/4, n2%4
	lightBishopFiles := [4]int{0, 2, 4, 6}
	rank[lightBishopFiles[b2]] = 'B'

	n4, q := n3/6, n3%6
	empties := emptyFiles(rank)
	rank[empties[q]] = 'Q'

	empties = emptyFiles(rank)
	pair := knightPairs[n4]
	rank[empties[pair[0]]] = 'N'
	rank[empties[pair[1]]] = 'N'

	empties = emptyFiles(rank)
	rank[empties[0]] = 'R'
	rank[empties[1]] = 'K'
	rank[empties[2]] = 'R'

	return rank
}

func emptyFiles(rank [8]byte) []int {
	files := make([]int, 0, 8)
	for i, c := range rank {
		if c == 0 {
			files = append(files, i)
		}
	}
	return files
}

// FEN renders the Shredder-FEN starting position for Scharnagl index n
// (both sides share the same backrank). n must be in [0, 960).
func FEN(n int) (string, error) {
	if n < 0 || n >= 960 {
		return "", fmt.Errorf("scharnagl index must be in [0, 960), got %d", n)
	}
	return buildFEN(backrank(n), backrank(n)), nil
}

// DoubleFEN renders the Shredder-FEN starting position for a double (DFRC)
// Scharnagl index n, where white's backrank is derived from n%960 and
// black's from n/960. n must be in [0, 921600).
func DoubleFEN(n int) (string, error) {
	if n < 0 || n >= 960*960 {
		return "", fmt.Errorf("double scharnagl index must be in [0, 921600), got %d", n)
	}
	return buildFEN(backrank(n%960), backrank(n/960)), nil
}

func buildFEN(white, black [8]byte) string {
	whiteRank := make([]byte, 8)
	blackRank := make([]byte, 8)
	for i := 0; i < 8; i++ {
		whiteRank[i] = white[i]
		blackRank[i] = black[i] + ('a' - 'A')
	}

	// Castling rights are the two rook files per side (Shredder-FEN file
	// letters), king-side (higher file) before queen-side.
	wRooks := fileIndices(white, 'R')
	bRooks := fileIndices(black, 'R')
	wq, wk := 'A'+byte(wRooks[0]), 'A'+byte(wRooks[1])
	bq, bk := 'a'+byte(bRooks[0]), 'a'+byte(bRooks[1])

	return fmt.Sprintf("%s/pppppppp/8/8/8/8/PPPPPPPP/%s w %c%c%c%c - 0 1",
		string(blackRank), string(whiteRank), wk, wq, bk, bq)
}

func fileIndices(rank [8]byte, piece byte) [2]int {
	var out [2]int
	n := 0
	for i, c := range rank {
		if c == piece {
			out[n] = i
			n++
		}
	}
	return out
}
