package nnue

import "github.com/chesscore/chesscore/internal/board"

// FeatureIndex computes the feature index for a (piece, square) pair as
// seen from a perspective whose king sits on kingSq (already known to be
// mirrored or not by the caller, which mirrors pieceSq accordingly before
// calling). Layout: piece type (6) * color (2) * square (64).
func FeatureIndex(pt board.PieceType, c board.Color, sq board.Square) int {
	return (int(pt)*NumColors+int(c))*NumSquares + int(sq)
}

// perspectiveSquare returns the square a piece is seen at from a given
// perspective: mirrored horizontally if that perspective's king sits on
// the E-H files.
func perspectiveSquare(sq board.Square, mirror bool) board.Square {
	if mirror {
		return MirrorSquare(sq)
	}
	return sq
}

// ActiveFeatures returns every (bucket-relative) feature index active for
// one perspective of b, including both kings: the king whose square picks
// this perspective's bucket/mirror is still a feature like any other piece
// (MoveDelta emits add/sub pairs for it on king moves and castling, so the
// refresh path must match).
func ActiveFeatures(b *board.Board, perspective board.Color, mirror bool) []int {
	features := make([]int, 0, 32)
	for c := board.White; c <= board.Black; c++ {
		for pt := board.Pawn; pt <= board.King; pt++ {
			bb := b.Pieces[c][pt]
			for bb != 0 {
				sq := bb.PopLSB()
				psq := perspectiveSquare(sq, mirror)
				features = append(features, FeatureIndex(pt, c, psq))
			}
		}
	}
	return features
}

// FeatureDelta describes the additions/removals needed to update one
// perspective's accumulator after a move,
// "Delta update by move kind".
type FeatureDelta struct {
	Add [2]int
	Sub [2]int
	N   int // number of valid (Add[i], Sub[i]) pairs; always equal additions/removals
}

// MoveDelta computes the feature delta for one perspective given the move
// just made on b (post-Make state), the piece that moved (pre-promotion
// type), the captured piece type (NoPieceType if none) and its square.
// For a castle, m's destination is the rook's starting square and to is the
// king's landing square; Evaluator.Update passes castles in that form.
// Returns the feature indices to add and to subtract; it never signals a
// refresh (a king move crossing the mirror/bucket boundary is handled by
// the caller before reaching here).
func MoveDelta(m board.Move, movingColor board.Color, movingPT board.PieceType, from, to board.Square, captured board.PieceType, capturedSq board.Square, perspective board.Color, mirror bool) ([]int, []int) {
	var adds, subs []int

	fromSq := perspectiveSquare(from, mirror)
	subs = append(subs, FeatureIndex(movingPT, movingColor, fromSq))

	destPT := movingPT
	if m.IsPromotion() {
		destPT = m.Promotion()
	}
	toSq := perspectiveSquare(to, mirror)
	adds = append(adds, FeatureIndex(destPT, movingColor, toSq))

	if captured != board.NoPieceType {
		capPerspSq := perspectiveSquare(capturedSq, mirror)
		subs = append(subs, FeatureIndex(captured, movingColor.Other(), capPerspSq))
	}

	if m.IsCastle() {
		kingSide := m.IsKingSideCastle()
		rookFrom := m.To()
		rookTo := board.CastlingRookDest(movingColor, kingSide)
		// The king's own add/sub was already appended above with
		// movingPT == King; now append the rook's.
		rookFromSq := perspectiveSquare(rookFrom, mirror)
		rookToSq := perspectiveSquare(rookTo, mirror)
		subs = append(subs, FeatureIndex(board.Rook, movingColor, rookFromSq))
		adds = append(adds, FeatureIndex(board.Rook, movingColor, rookToSq))
	}

	_ = perspective
	return adds, subs
}
