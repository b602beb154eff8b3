// Package see implements static exchange evaluation: a threshold test for
// whether a capture sequence on a square nets at least a given amount of
// material, without playing the sequence on the board. Keeps two tuned
// piece-value tables rather than one, since pruning and move-ordering
// decisions want different tradeoffs between speed and accuracy.
package see

import "github.com/chesscore/chesscore/internal/board"

// Kind selects which of the two tuned value tables an evaluation uses.
// The tables are deliberately different: Pruning approximates true
// material value for safe skip decisions, while Ordering is biased to
// favor trades involving specific pieces so the move picker sorts them
// well even when the "true" SEE verdict would be closer.
type Kind int

const (
	Pruning Kind = iota
	Ordering
)

var pruningValues = [6]int{100, 300, 300, 500, 900, 0}
var orderingValues = [6]int{100, 310, 320, 500, 950, 0}

// Value returns the tuned value of pt under kind.
func Value(pt board.PieceType, kind Kind) int {
	if kind == Ordering {
		return orderingValues[pt]
	}
	return pruningValues[pt]
}

// Eval performs the static exchange evaluation for m played on b, returning
// true iff the resulting exchange sequence nets at least threshold material
// under the given value table.
func Eval(b *board.Board, m board.Move, threshold int, kind Kind) bool {
	from, to := m.From(), m.To()

	nextVictim := b.PieceAt(from).Type()
	if m.IsPromotion() {
		nextVictim = m.Promotion()
	}

	balance := moveValue(b, m, kind) - threshold
	if balance < 0 {
		return false
	}
	balance -= Value(nextVictim, kind)
	if balance >= 0 {
		return true
	}

	occ := b.AllOccupied
	occ = occ.Clear(from)
	occ = occ.Clear(to)
	if m.IsEnPassant() {
		capSq := epCaptureSquare(b, to)
		occ = occ.Clear(capSq)
	}

	attackers := attackersTo(b, to, occ) & occ
	diagonal := b.Pieces[board.White][board.Bishop] | b.Pieces[board.Black][board.Bishop] |
		b.Pieces[board.White][board.Queen] | b.Pieces[board.Black][board.Queen]
	orthogonal := b.Pieces[board.White][board.Rook] | b.Pieces[board.Black][board.Rook] |
		b.Pieces[board.White][board.Queen] | b.Pieces[board.Black][board.Queen]

	whitePinned := b.Pinned[board.White]
	blackPinned := b.Pinned[board.Black]
	pinned := whitePinned | blackPinned
	attackers &= ^pinned |
		(whitePinned & board.Extending(b.KingSquare(board.White), to)) |
		(blackPinned & board.Extending(b.KingSquare(board.Black), to))

	stm := b.SideToMove.Other()

	for {
		ourAttackers := attackers & colorOcc(b, stm, occ)
		if ourAttackers == board.Empty {
			break
		}

		attacker, sq := leastValuableAttacker(b, ourAttackers)

		if attacker == board.King && attackers&colorOcc(b, stm.Other(), occ) != board.Empty {
			break
		}

		occ = occ.Clear(sq)
		stm = stm.Other()

		balance = -balance - 1 - Value(attacker, kind)
		if balance >= 0 {
			break
		}

		if attacker == board.Pawn || attacker == board.Bishop || attacker == board.Queen {
			attackers |= board.BishopAttacks(to, occ) & diagonal
		}
		if attacker == board.Rook || attacker == board.Queen {
			attackers |= board.RookAttacks(to, occ) & orthogonal
		}
		attackers &= occ
	}

	return stm != b.SideToMove
}

func moveValue(b *board.Board, m board.Move, kind Kind) int {
	value := 0
	if captured := b.PieceAt(m.To()); captured != board.NoPiece {
		value = Value(captured.Type(), kind)
	}
	if m.IsPromotion() {
		value += Value(m.Promotion(), kind)
	} else if m.IsEnPassant() {
		value = Value(board.Pawn, kind)
	}
	return value
}

func leastValuableAttacker(b *board.Board, attackers board.Bitboard) (board.PieceType, board.Square) {
	for pt := board.Pawn; pt <= board.King; pt++ {
		set := attackers & (b.Pieces[board.White][pt] | b.Pieces[board.Black][pt])
		if set != board.Empty {
			return pt, set.LSB()
		}
	}
	panic("see: no attackers found")
}

func attackersTo(b *board.Board, sq board.Square, occ board.Bitboard) board.Bitboard {
	diagonals := b.Pieces[board.White][board.Bishop] | b.Pieces[board.Black][board.Bishop] |
		b.Pieces[board.White][board.Queen] | b.Pieces[board.Black][board.Queen]
	orthogonals := b.Pieces[board.White][board.Rook] | b.Pieces[board.Black][board.Rook] |
		b.Pieces[board.White][board.Queen] | b.Pieces[board.Black][board.Queen]

	whitePawnAttacks := board.PawnAttacks(sq, board.Black) & b.Pieces[board.White][board.Pawn]
	blackPawnAttacks := board.PawnAttacks(sq, board.White) & b.Pieces[board.Black][board.Pawn]
	knightAttacks := board.KnightAttacks(sq) & (b.Pieces[board.White][board.Knight] | b.Pieces[board.Black][board.Knight])
	diagonalAttacks := board.BishopAttacks(sq, occ) & diagonals
	orthogonalAttacks := board.RookAttacks(sq, occ) & orthogonals
	kingAttacks := board.KingAttacks(sq) & (b.Pieces[board.White][board.King] | b.Pieces[board.Black][board.King])

	return whitePawnAttacks | blackPawnAttacks | knightAttacks | diagonalAttacks | orthogonalAttacks | kingAttacks
}

func colorOcc(b *board.Board, c board.Color, occ board.Bitboard) board.Bitboard {
	return b.Occupied[c] & occ
}

func epCaptureSquare(b *board.Board, to board.Square) board.Square {
	if b.SideToMove == board.White {
		return board.Square(int(to) - 8)
	}
	return board.Square(int(to) + 8)
}
