package history

import "github.com/chesscore/chesscore/internal/board"

// Correction history scales raw static eval toward the eval the search
// actually found, keyed by slow-changing position hashes so the signal
// survives across many different exact positions. Split into seven
// variants: pawn structure, non-pawn material per side, major pieces,
// minor pieces, and the countermove/followup move pair.
const (
	corrTableBits = 14
	corrTableSize = 1 << corrTableBits // 16384
	corrTableMask = corrTableSize - 1

	moveCorrBits = 12
	moveCorrSize = 1 << moveCorrBits // 4096
	moveCorrMask = moveCorrSize - 1

	corrMax   = 256
	corrScale = 256
	corrGrain = 1024 // correction values are applied to eval divided by this
)

type Correction struct {
	Pawn       [2][corrTableSize]int32 // indexed by side to move, then PawnHash
	NonPawn    [2][2][corrTableSize]int32
	Major      [2][corrTableSize]int32
	Minor      [2][corrTableSize]int32
	Countermove [moveCorrSize]int32 // indexed by (prevPiece*64+prevTo)
	Followup    [moveCorrSize]int32 // indexed by (piece*64+to) two plies back
}

func corrUpdate(old int32, searchScore, staticEval, depth int) int32 {
	// Stored values are in corrGrain units (Apply divides by corrGrain), so
	// the target is scaled the same way before clamping.
	wide := int64(searchScore-staticEval) * int64(depth) * corrGrain
	if wide > corrMax*corrGrain {
		wide = corrMax * corrGrain
	} else if wide < -corrMax*corrGrain {
		wide = -corrMax * corrGrain
	}
	bonus := int32(wide)
	updated := old + (bonus-old)/corrScale
	if updated > corrMax*corrGrain {
		updated = corrMax * corrGrain
	} else if updated < -corrMax*corrGrain {
		updated = -corrMax * corrGrain
	}
	return updated
}

// Apply folds every correction term into a raw static eval.
func (c *Correction) Apply(b *board.Board, stm board.Color, raw int, prevPiece board.Piece, prevTo board.Square, followPiece board.Piece, followTo board.Square) int {
	total := int32(raw) * corrGrain
	total += c.Pawn[stm][b.PawnHash&corrTableMask]
	total += c.NonPawn[stm][0][b.NonPawnHash[board.White]&corrTableMask]
	total += c.NonPawn[stm][1][b.NonPawnHash[board.Black]&corrTableMask]
	total += c.Major[stm][b.MajorHash&corrTableMask]
	total += c.Minor[stm][b.MinorHash&corrTableMask]
	if prevPiece != board.NoPiece {
		total += c.Countermove[moveCorrIndex(prevPiece, prevTo)]
	}
	if followPiece != board.NoPiece {
		total += c.Followup[moveCorrIndex(followPiece, followTo)]
	}
	return int(total / corrGrain)
}

// Update applies the gravity-style update to every correction table that
// participated in Apply, after a search completes at depth and finds
// searchScore against the raw static eval used at that node.
func (c *Correction) Update(b *board.Board, stm board.Color, searchScore, staticEval, depth int, prevPiece board.Piece, prevTo board.Square, followPiece board.Piece, followTo board.Square) {
	pi := &c.Pawn[stm][b.PawnHash&corrTableMask]
	*pi = corrUpdate(*pi, searchScore, staticEval, depth)

	npw := &c.NonPawn[stm][0][b.NonPawnHash[board.White]&corrTableMask]
	*npw = corrUpdate(*npw, searchScore, staticEval, depth)

	npb := &c.NonPawn[stm][1][b.NonPawnHash[board.Black]&corrTableMask]
	*npb = corrUpdate(*npb, searchScore, staticEval, depth)

	maj := &c.Major[stm][b.MajorHash&corrTableMask]
	*maj = corrUpdate(*maj, searchScore, staticEval, depth)

	min := &c.Minor[stm][b.MinorHash&corrTableMask]
	*min = corrUpdate(*min, searchScore, staticEval, depth)

	if prevPiece != board.NoPiece {
		p := &c.Countermove[moveCorrIndex(prevPiece, prevTo)]
		*p = corrUpdate(*p, searchScore, staticEval, depth)
	}
	if followPiece != board.NoPiece {
		p := &c.Followup[moveCorrIndex(followPiece, followTo)]
		*p = corrUpdate(*p, searchScore, staticEval, depth)
	}
}

// Clear zeroes every correction table, used on ucinewgame.
func (c *Correction) Clear() {
	*c = Correction{}
}

func moveCorrIndex(p board.Piece, sq board.Square) uint32 {
	return (uint32(p)*64 + uint32(sq)) & moveCorrMask
}
