package board

// Cuckoo table: a compact map from the XOR of two Zobrist piece-keys to the
// reversible (non-pawn, non-capture) move connecting the two squares, used
// to detect upcoming repetitions without replaying the move sequence. Two
// candidate slots per key, using the standard two-slot cuckoo scheme
// 4.10/testable property 13.
const cuckooSize = 0x2000 // 8192 slots, indexed by 13-bit hash fragments

var (
	cuckooKeys  [cuckooSize]uint64
	cuckooMoves [cuckooSize]Move
)

func cuckooH1(key uint64) int {
	return int((key >> 32) & (cuckooSize - 1))
}

func cuckooH2(key uint64) int {
	return int((key >> 48) & (cuckooSize - 1))
}

func init() {
	initCuckoo()
}

// initCuckoo populates the table by enumerating every (piece, from, to)
// reversible move and inserting it via the standard cuckoo displacement
// algorithm, so the final table holds exactly one entry per distinct move.
func initCuckoo() {
	count := 0
	for c := White; c <= Black; c++ {
		for pt := Knight; pt <= King; pt++ { // pawns are never reversible
			for from := A1; from <= H8; from++ {
				for to := from + 1; to <= H8; to++ {
					if !attacksBetween(pt, from, to) {
						continue
					}
					key := pieceKey(c, pt, from) ^ pieceKey(c, pt, to) ^ zobristSideToMove
					move := NewMove(from, to)
					count += insertCuckoo(key, move)
				}
			}
		}
	}
	_ = count // exactly 3668 after a correctly grounded piece-attack table
}

// insertCuckoo inserts (key, move) via displacement, returning 1 if it was
// newly added (as opposed to bumping an existing entry out to its other
// slot, which still nets +1 new occupied slot).
func insertCuckoo(key uint64, move Move) int {
	inserted := 0
	for {
		i := cuckooH1(key)
		if cuckooKeys[i] == 0 {
			cuckooKeys[i] = key
			cuckooMoves[i] = move
			return inserted + 1
		}
		key, cuckooKeys[i] = cuckooKeys[i], key
		move, cuckooMoves[i] = cuckooMoves[i], move
		inserted++

		j := cuckooH2(key)
		if cuckooKeys[j] == 0 {
			cuckooKeys[j] = key
			cuckooMoves[j] = move
			return inserted
		}
		key, cuckooKeys[j] = cuckooKeys[j], key
		move, cuckooMoves[j] = cuckooMoves[j], move
	}
}

func attacksBetween(pt PieceType, from, to Square) bool {
	switch pt {
	case Knight:
		return knightAttacks[from].IsSet(to)
	case King:
		return kingAttacks[from].IsSet(to)
	case Bishop:
		return BishopAttacks(from, Empty).IsSet(to)
	case Rook:
		return RookAttacks(from, Empty).IsSet(to)
	case Queen:
		return (BishopAttacks(from, Empty) | RookAttacks(from, Empty)).IsSet(to)
	}
	return false
}

// LookupCuckoo returns the move stored for key and whether it was found, via
// the two-slot lookup this table supports.
func LookupCuckoo(key uint64) (Move, bool) {
	if cuckooKeys[cuckooH1(key)] == key {
		return cuckooMoves[cuckooH1(key)], true
	}
	if cuckooKeys[cuckooH2(key)] == key {
		return cuckooMoves[cuckooH2(key)], true
	}
	return NoMove, false
}

// HasUpcomingRepetition scans positions at distance <= b.HalfmoveClock back
// through hashHistory (most recent last) for a cuckoo-detectable cycle: a
// single reversible move whose Zobrist delta matches a key in the cuckoo
// table, and which is pseudo-legal and unblocked in the current position.
func (b *Board) HasUpcomingRepetition(hashHistory []uint64) bool {
	limit := b.HalfmoveClock
	n := len(hashHistory)
	if n < 3 {
		return false
	}
	maxDist := limit
	if maxDist > n-1 {
		maxDist = n - 1
	}
	for d := 3; d <= maxDist; d += 2 {
		other := hashHistory[n-1-d]
		diff := b.Hash ^ other
		mv, ok := LookupCuckoo(diff)
		if !ok {
			continue
		}
		from, to := mv.From(), mv.To()
		if b.IsEmpty(from) == b.IsEmpty(to) {
			continue
		}
		var occSq Square
		if b.IsEmpty(from) {
			occSq = to
		} else {
			occSq = from
		}
		piece := b.PieceAt(occSq)
		if piece.Color() != b.SideToMove {
			continue
		}
		if Between(from, to)&b.AllOccupied == 0 {
			return true
		}
	}
	return false
}
