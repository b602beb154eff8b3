package nnue

import "github.com/chesscore/chesscore/internal/board"

// Evaluator ties a loaded Network to one search worker's accumulator stack
// and refresh cache. Not safe for concurrent use; each Lazy-SMP worker owns
// its own Evaluator.
type Evaluator struct {
	net   *Network
	stack *AccumulatorStack
	cache *RefreshCache
}

// NewEvaluator builds an evaluator around an already-loaded network.
func NewEvaluator(net *Network) *Evaluator {
	return &Evaluator{
		net:   net,
		stack: NewAccumulatorStack(),
		cache: NewRefreshCache(),
	}
}

// Activate fills the root accumulator from scratch.
func (e *Evaluator) Activate(b *board.Board) {
	e.stack.Activate(b, e.net, e.cache)
}

// Push advances the accumulator stack one ply (call before Board.Make).
func (e *Evaluator) Push() { e.stack.Push() }

// Pop returns the accumulator stack to the previous ply.
func (e *Evaluator) Pop() { e.stack.Pop() }

// Update applies an incremental delta after Board.Make(m) has been called,
// given the piece that moved (pre-promotion type), its color, the move's
// from/to squares, and the captured piece type/square (NoPieceType/NoSquare
// if none). If the king crossed the mirror line or a bucket boundary for a
// perspective, that perspective is fully refreshed instead. A castle is
// first rewritten so MoveDelta sees the king's landing square as to and the
// rook's starting square as the move's destination, with no capture.
func (e *Evaluator) Update(b *board.Board, m board.Move, movingColor board.Color, movingPT board.PieceType, from, to board.Square, captured board.PieceType, capturedSq board.Square) {
	acc := e.stack.Current()

	if m.IsCastle() {
		kingSide := m.IsKingSideCastle()
		rookFrom := m.To()
		if !b.Chess960 {
			rookFile := 0
			if kingSide {
				rookFile = 7
			}
			rookFrom = board.NewSquare(rookFile, from.Rank())
		}
		m = board.NewCastle(from, rookFrom, kingSide)
		to = board.CastlingKingDest(movingColor, kingSide)
		captured = board.NoPieceType
	}

	for _, perspective := range [2]board.Color{board.White, board.Black} {
		if movingPT == board.King && movingColor == perspective {
			kingSq := b.KingSquare(perspective)
			newMirror := ShouldMirror(kingSq)
			newBucket := KingBucket(kingSq)
			if newMirror != acc.Mirror[perspective] || newBucket != acc.Bucket[perspective] {
				refreshPerspective(acc, b, e.net, e.cache, perspective)
				continue
			}
		}
		mirror := acc.Mirror[perspective]
		adds, subs := MoveDelta(m, movingColor, movingPT, from, to, captured, capturedSq, perspective, mirror)
		e.stack.ApplyDelta(perspective, adds, subs, e.net)
	}
}

// Evaluate returns the evaluation in centipawns from the side to move's
// perspective, applying material-phase scaling and the 50-move fade.
func (e *Evaluator) Evaluate(b *board.Board, materialPhase int) int {
	acc := e.stack.Current()
	us, them := board.White, board.Black
	if b.SideToMove == board.Black {
		us, them = board.Black, board.White
	}
	return e.net.Forward(&acc.Values[us], &acc.Values[them], materialPhase, b.HalfmoveClock)
}
