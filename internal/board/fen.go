package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the classical starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// FromFEN parses a FEN string into a new Board. Accepts the six classical
// fields and tolerates a missing halfmove/fullmove pair (defaulting to 0/1).
// Castling rights accept classical letters (KQkq) or Shredder-FEN file
// letters (A-H/a-h); the presence of any file letter sets Chess960.
func FromFEN(fen string) (*Board, error) {
	fields := strings.Fields(strings.TrimSpace(fen))
	if len(fields) < 4 {
		return nil, fmt.Errorf("invalid FEN: need at least 4 fields, got %d", len(fields))
	}

	b := &Board{EnPassant: NoSquare}
	if err := parsePlacement(b, fields[0]); err != nil {
		return nil, err
	}

	switch fields[1] {
	case "w":
		b.SideToMove = White
	case "b":
		b.SideToMove = Black
	default:
		return nil, fmt.Errorf("invalid side to move: %s", fields[1])
	}

	rights, frc, err := parseCastling(b, fields[2])
	if err != nil {
		return nil, err
	}
	b.Rights = rights
	b.Chess960 = frc

	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return nil, fmt.Errorf("invalid en passant square: %s", fields[3])
		}
		b.EnPassant = sq
	}

	b.HalfmoveClock = 0
	b.FullmoveNum = 1
	if len(fields) >= 5 {
		if n, err := strconv.Atoi(fields[4]); err == nil {
			b.HalfmoveClock = n
		}
	}
	if len(fields) >= 6 {
		if n, err := strconv.Atoi(fields[5]); err == nil {
			b.FullmoveNum = n
		}
	}

	b.recomputeHashes()
	b.recomputeAttackInfo()
	return b, nil
}

func parsePlacement(b *Board, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fmt.Errorf("invalid piece placement: expected 8 ranks, got %d", len(ranks))
	}
	for i := 0; i < 64; i++ {
		b.PieceAtSq[i] = NoPiece
	}
	for i, rankStr := range ranks {
		rank := 7 - i
		file := 0
		for _, ch := range rankStr {
			if ch >= '1' && ch <= '8' {
				file += int(ch - '0')
				continue
			}
			piece := PieceFromChar(byte(ch))
			if piece == NoPiece {
				return fmt.Errorf("invalid piece character: %c", ch)
			}
			if file > 7 {
				return fmt.Errorf("rank %d overflows board width", rank+1)
			}
			sq := NewSquare(file, rank)
			bb := SquareBB(sq)
			b.Pieces[piece.Color()][piece.Type()] |= bb
			b.Occupied[piece.Color()] |= bb
			b.AllOccupied |= bb
			b.PieceAtSq[sq] = piece
			file++
		}
	}
	return nil
}

func parseCastling(b *Board, s string) (Rights, bool, error) {
	if s == "-" {
		return NoRights, false, nil
	}

	wkFile, wqFile, bkFile, bqFile := 7, 0, 7, 0
	var wk, wq, bk, bq bool
	frc := false

	wkSq := b.Pieces[White][King].LSB()
	bkSq := b.Pieces[Black][King].LSB()

	for _, ch := range s {
		switch {
		case ch == 'K':
			wk = true
		case ch == 'Q':
			wq = true
		case ch == 'k':
			bk = true
		case ch == 'q':
			bq = true
		case ch >= 'A' && ch <= 'H':
			frc = true
			file := int(ch - 'A')
			if wkSq != NoSquare && file > wkSq.File() {
				wkFile, wk = file, true
			} else {
				wqFile, wq = file, true
			}
		case ch >= 'a' && ch <= 'h':
			frc = true
			file := int(ch - 'a')
			if bkSq != NoSquare && file > bkSq.File() {
				bkFile, bk = file, true
			} else {
				bqFile, bq = file, true
			}
		default:
			return NoRights, false, fmt.Errorf("invalid castling character: %c", ch)
		}
	}

	return NewRights(wkFile, wqFile, bkFile, bqFile, wk, wq, bk, bq), frc, nil
}

// ToFEN renders b as a FEN string, using Shredder-FEN castling letters when
// b.Chess960 is set.
func (b *Board) ToFEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			sq := NewSquare(file, rank)
			p := b.PieceAtSq[sq]
			if p == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(p.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}
	sb.WriteByte(' ')
	if b.SideToMove == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}
	sb.WriteByte(' ')
	sb.WriteString(b.Rights.String())
	sb.WriteByte(' ')
	sb.WriteString(b.EnPassant.String())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(b.HalfmoveClock))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(b.FullmoveNum))
	return sb.String()
}
