package board

import "fmt"

// Move encodes a chess move in 16 bits:
//
//	bits 0-5:   from square (0-63)
//	bits 6-11:  to square (0-63)
//	bits 12-15: flag
//
// The all-zero encoding (from=a1, to=a1, flag=Standard) is the null move.
// Castling destinations: in standard chess, the king's
// final square; in Chess960/FRC, the rook's starting square (disambiguating
// a king move from a move onto a friendly rook).
type Move uint16

// Move flags (bits 12-15).
const (
	FlagStandard   uint16 = 0
	FlagDoublePush uint16 = 1
	FlagEnPassant  uint16 = 2
	FlagCastleK    uint16 = 3
	FlagCastleQ    uint16 = 4
	FlagPromoQ     uint16 = 5
	FlagPromoR     uint16 = 6
	FlagPromoB     uint16 = 7
	FlagPromoN     uint16 = 8
)

// NoMove is the null move.
const NoMove Move = 0

func pack(from, to Square, flag uint16) Move {
	return Move(from) | Move(to)<<6 | Move(flag)<<12
}

// NewMove creates a standard (non-special) move.
func NewMove(from, to Square) Move {
	return pack(from, to, FlagStandard)
}

// NewDoublePush creates a double pawn push move.
func NewDoublePush(from, to Square) Move {
	return pack(from, to, FlagDoublePush)
}

// NewEnPassant creates an en passant capture move.
func NewEnPassant(from, to Square) Move {
	return pack(from, to, FlagEnPassant)
}

// NewCastle creates a castling move. dest is the encoded destination:
// king's final square in classical mode, rook's starting square in FRC
// mode. Callers determine dest via CastlingKingDest or Rights.RookFile.
func NewCastle(kingFrom, dest Square, kingSide bool) Move {
	if kingSide {
		return pack(kingFrom, dest, FlagCastleK)
	}
	return pack(kingFrom, dest, FlagCastleQ)
}

// NewPromotion creates a promotion move.
func NewPromotion(from, to Square, promo PieceType) Move {
	var flag uint16
	switch promo {
	case Queen:
		flag = FlagPromoQ
	case Rook:
		flag = FlagPromoR
	case Bishop:
		flag = FlagPromoB
	case Knight:
		flag = FlagPromoN
	default:
		flag = FlagPromoQ
	}
	return pack(from, to, flag)
}

// From returns the origin square.
func (m Move) From() Square {
	return Square(m & 0x3F)
}

// To returns the raw destination bits (see CastlingKingDest/Rights.RookFile
// for castling moves, where this is not simply the king's landing square).
func (m Move) To() Square {
	return Square((m >> 6) & 0x3F)
}

// Flag returns the move's flag nibble.
func (m Move) Flag() uint16 {
	return uint16(m>>12) & 0xF
}

// IsPromotion reports whether this move promotes a pawn.
func (m Move) IsPromotion() bool {
	f := m.Flag()
	return f == FlagPromoQ || f == FlagPromoR || f == FlagPromoB || f == FlagPromoN
}

// Promotion returns the promotion piece type (only meaningful if IsPromotion).
func (m Move) Promotion() PieceType {
	switch m.Flag() {
	case FlagPromoQ:
		return Queen
	case FlagPromoR:
		return Rook
	case FlagPromoB:
		return Bishop
	case FlagPromoN:
		return Knight
	default:
		return NoPieceType
	}
}

// IsCastle reports whether this move is a castling move.
func (m Move) IsCastle() bool {
	f := m.Flag()
	return f == FlagCastleK || f == FlagCastleQ
}

// IsKingSideCastle reports whether this is a kingside castle.
func (m Move) IsKingSideCastle() bool {
	return m.Flag() == FlagCastleK
}

// IsEnPassant reports whether this move is an en passant capture.
func (m Move) IsEnPassant() bool {
	return m.Flag() == FlagEnPassant
}

// IsDoublePush reports whether this move is a two-square pawn push.
func (m Move) IsDoublePush() bool {
	return m.Flag() == FlagDoublePush
}

// String returns the move's UCI text: 4 characters plus an optional
// promotion suffix, or the rook-starting-square form for FRC castling
// handled by the caller (board.Move.UCI below resolves that correctly).
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		promoChars := map[PieceType]byte{Queen: 'q', Rook: 'r', Bishop: 'b', Knight: 'n'}
		s += string(promoChars[m.Promotion()])
	}
	return s
}

// MoveList is a fixed-capacity move buffer avoiding per-call allocation.
type MoveList struct {
	moves [256]Move
	count int
}

// Add appends a move.
func (ml *MoveList) Add(m Move) { ml.moves[ml.count] = m; ml.count++ }

// Len returns the number of moves.
func (ml *MoveList) Len() int { return ml.count }

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move { return ml.moves[i] }

// Set overwrites the move at index i.
func (ml *MoveList) Set(i int, m Move) { ml.moves[i] = m }

// Swap exchanges the moves at i and j.
func (ml *MoveList) Swap(i, j int) { ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i] }

// Clear empties the list.
func (ml *MoveList) Clear() { ml.count = 0 }

// Contains reports whether m is present in the list.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the populated moves.
func (ml *MoveList) Slice() []Move { return ml.moves[:ml.count] }

// ParseMove parses a UCI move string against the current board (needed to
// disambiguate castling/en-passant/promotion encodings).
func ParseMove(s string, b *Board) (Move, error) {
	if len(s) < 4 {
		return NoMove, fmt.Errorf("invalid move string: %s", s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}
	piece := b.PieceAt(from)
	if piece == NoPiece {
		return NoMove, fmt.Errorf("no piece at %s", from)
	}
	pt := piece.Type()

	if len(s) == 5 {
		var promo PieceType
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
		return NewPromotion(from, to, promo), nil
	}

	if pt == King {
		// Castling is expressed as king-takes-own-rook in FRC UCI notation,
		// and as a 2-file king hop in classical notation.
		if b.Chess960 {
			if to.IsValid() && b.IsEmpty(to) == false && b.PieceAt(to).Type() == Rook && b.PieceAt(to).Color() == piece.Color() {
				kingSide := to.File() > from.File()
				return NewCastle(from, to, kingSide), nil
			}
		}
		if abs(int(to)-int(from)) == 2 {
			kingSide := to.File() > from.File()
			dest := to
			if b.Chess960 {
				dest = NewSquare(b.Rights.RookFile(piece.Color(), kingSide), from.Rank())
			}
			return NewCastle(from, dest, kingSide), nil
		}
	}

	if pt == Pawn {
		if to == b.EnPassant && to.File() != from.File() {
			return NewEnPassant(from, to), nil
		}
		if abs(int(to)-int(from)) == 16 {
			return NewDoublePush(from, to), nil
		}
	}

	return NewMove(from, to), nil
}

// UCI renders m in UCI notation for the given board, resolving the FRC
// castling encoding (rook-starting-square) back to a king-destination or
// king-takes-rook string as the protocol requires.
func (m Move) UCI(b *Board) string {
	if m == NoMove {
		return "0000"
	}
	if m.IsCastle() {
		from := m.From()
		us := b.PieceAt(from).Color()
		kingSide := m.IsKingSideCastle()
		if b.Chess960 {
			rookFrom := NewSquare(b.Rights.RookFile(us, kingSide), from.Rank())
			return from.String() + rookFrom.String()
		}
		dest := CastlingKingDest(us, kingSide)
		return from.String() + dest.String()
	}
	return m.String()
}
