package board

// GenFilter selects which move categories gen_moves produces.
type GenFilter int

const (
	All GenFilter = iota
	Quiets
	Noisies
	Captures
)

// GenMoves appends pseudo-legal moves matching filter into ml. King moves
// are always generated first so a double-check can short-circuit the rest.
func (b *Board) GenMoves(filter GenFilter, ml *MoveList) {
	us := b.SideToMove
	them := us.Other()
	notUs := ^b.Occupied[us]

	b.genKingMoves(us, them, filter, notUs, ml)

	if b.Checkers.PopCount() >= 2 {
		return
	}

	b.genPawnMoves(us, them, filter, ml)

	if filter == All || filter == Quiets {
		b.genCastleMoves(us, ml)
	}

	b.genPieceMoves(Knight, us, filter, notUs, ml)
	b.genPieceMoves(Bishop, us, filter, notUs, ml)
	b.genPieceMoves(Rook, us, filter, notUs, ml)
	b.genPieceMoves(Queen, us, filter, notUs, ml)
}

// GenLegalMoves generates all pseudo-legal moves and retains only legal ones.
func (b *Board) GenLegalMoves(ml *MoveList) {
	var pseudo MoveList
	b.GenMoves(All, &pseudo)
	for i := 0; i < pseudo.Len(); i++ {
		m := pseudo.Get(i)
		if b.IsLegal(m) {
			ml.Add(m)
		}
	}
}

func filterMask(filter GenFilter, enemyOcc, emptyOcc Bitboard) Bitboard {
	switch filter {
	case Quiets:
		return emptyOcc
	case Noisies, Captures:
		return enemyOcc
	default:
		return enemyOcc | emptyOcc
	}
}

func (b *Board) genKingMoves(us, them Color, filter GenFilter, notUs Bitboard, ml *MoveList) {
	kingSq := b.KingSquare(us)
	if kingSq == NoSquare {
		return
	}
	targets := kingAttacks[kingSq] & notUs & filterMask(filter, b.Occupied[them], ^b.AllOccupied)
	for targets != 0 {
		to := targets.PopLSB()
		ml.Add(NewMove(kingSq, to))
	}
}

func (b *Board) genPieceMoves(pt PieceType, us Color, filter GenFilter, notUs Bitboard, ml *MoveList) {
	them := us.Other()
	mask := filterMask(filter, b.Occupied[them], ^b.AllOccupied)
	pieces := b.Pieces[us][pt]
	for pieces != 0 {
		from := pieces.PopLSB()
		var attacks Bitboard
		switch pt {
		case Knight:
			attacks = knightAttacks[from]
		case Bishop:
			attacks = BishopAttacks(from, b.AllOccupied)
		case Rook:
			attacks = RookAttacks(from, b.AllOccupied)
		case Queen:
			attacks = BishopAttacks(from, b.AllOccupied) | RookAttacks(from, b.AllOccupied)
		}
		targets := attacks & notUs & mask
		for targets != 0 {
			to := targets.PopLSB()
			ml.Add(NewMove(from, to))
		}
	}
}

func (b *Board) genPawnMoves(us, them Color, filter GenFilter, ml *MoveList) {
	pawns := b.Pieces[us][Pawn]
	empty := ^b.AllOccupied
	enemy := b.Occupied[them]

	lastRank := 7
	startRank := 1
	dir := 1
	if us == Black {
		lastRank = 0
		startRank = 6
		dir = -1
	}

	wantQuiets := filter == All || filter == Quiets
	wantNoisies := filter == All || filter == Noisies || filter == Captures

	p := pawns
	for p != 0 {
		from := p.PopLSB()
		to1 := Square(int(from) + 8*dir)
		promoting := to1.Rank() == lastRank

		if !promoting {
			if wantQuiets && empty.IsSet(to1) {
				ml.Add(NewMove(from, to1))
			}
			if wantQuiets && from.Rank() == startRank && empty.IsSet(to1) {
				to2 := Square(int(from) + 16*dir)
				if empty.IsSet(to2) {
					ml.Add(NewDoublePush(from, to2))
				}
			}
		} else if wantNoisies && empty.IsSet(to1) {
			addPromotions(ml, from, to1)
		}

		if !wantNoisies && !promoting {
			continue
		}
		for _, df := range []int{-1, 1} {
			file := from.File() + df
			if file < 0 || file > 7 {
				continue
			}
			to := NewSquare(file, from.Rank()+dir)
			if enemy.IsSet(to) {
				if promoting {
					addPromotions(ml, from, to)
				} else if wantNoisies {
					ml.Add(NewMove(from, to))
				}
			} else if to == b.EnPassant && wantNoisies {
				ml.Add(NewEnPassant(from, to))
			}
		}
	}
}

func addPromotions(ml *MoveList, from, to Square) {
	ml.Add(NewPromotion(from, to, Queen))
	ml.Add(NewPromotion(from, to, Rook))
	ml.Add(NewPromotion(from, to, Bishop))
	ml.Add(NewPromotion(from, to, Knight))
}

func (b *Board) genCastleMoves(us Color, ml *MoveList) {
	if b.Checkers != 0 {
		return
	}
	kingSq := b.KingSquare(us)
	for _, kingSide := range [2]bool{true, false} {
		if !b.Rights.CanCastle(us, kingSide) {
			continue
		}
		if !b.castleTravelAndSafetyClear(us, kingSide) {
			continue
		}
		var dest Square
		if b.Chess960 {
			dest = NewSquare(b.Rights.RookFile(us, kingSide), kingSq.Rank())
		} else {
			dest = CastlingKingDest(us, kingSide)
		}
		ml.Add(NewCastle(kingSq, dest, kingSide))
	}
}
