package search

import (
	"github.com/chesscore/chesscore/internal/board"
	"github.com/chesscore/chesscore/internal/history"
	"github.com/chesscore/chesscore/internal/see"
)

// Stage identifies which generation phase produced a move, since the
// search applies different bonuses/updates to quiet vs noisy cutoffs.
type Stage int

const (
	StageTT Stage = iota
	StageGoodNoisy
	StageQuiet
	StageBadNoisy
	StageDone
)

const seePruningMargin = -1 // noisy moves whose SEE meets this threshold go to the good-noisy stage

type scoredMove struct {
	move  board.Move
	score int32
}

// Picker implements the staged, lazily-sorted move generator: TTMove,
// then good noisies, then quiets (skippable), then bad noisies. Each
// stage is selection-sorted on demand rather than fully sorted up front.
type Picker struct {
	b      *board.Board
	tables *history.Tables

	ttMove board.Move
	ply    int

	prevMove  board.Move
	prevPiece board.Piece
	prevTo    board.Square

	prevPrevMove  board.Move
	prevPrevPiece board.Piece
	prevPrevTo    board.Square

	skipQuiets bool
	stage      Stage

	good  []scoredMove
	bad   []scoredMove
	quiet []scoredMove

	goodIdx  int
	badIdx   int
	quietIdx int

	ttMoveEmitted bool
}

// NewPicker builds a picker for the current node. prevMove/prevPiece is
// the move made to reach this node (NoMove/NoPiece at the root);
// prevPrevMove/prevPrevPiece is the move two plies back, consulted for
// continuation history.
func NewPicker(b *board.Board, tables *history.Tables, ttMove board.Move, ply int,
	prevMove board.Move, prevPiece board.Piece,
	prevPrevMove board.Move, prevPrevPiece board.Piece) *Picker {
	p := &Picker{
		b:             b,
		tables:        tables,
		ttMove:        ttMove,
		ply:           ply,
		prevMove:      prevMove,
		prevPiece:     prevPiece,
		prevPrevMove:  prevPrevMove,
		prevPrevPiece: prevPrevPiece,
		stage:         StageTT,
	}
	if prevMove != board.NoMove {
		p.prevTo = prevMove.To()
	}
	if prevPrevMove != board.NoMove {
		p.prevPrevTo = prevPrevMove.To()
	}
	if ttMove == board.NoMove || !b.IsPseudoLegal(ttMove) {
		p.ttMoveEmitted = true // nothing to emit in the TT stage
		p.stage = StageGoodNoisy
	}
	return p
}

// SkipQuiets tells the picker to skip straight from good noisies to bad
// noisies, used once the search decides no quiet move at this node is
// worth trying (e.g. after late-move pruning).
func (p *Picker) SkipQuiets() {
	p.skipQuiets = true
}

// Next returns the next move to try along with the stage that produced
// it, or (NoMove, StageDone, false) when exhausted.
func (p *Picker) Next() (board.Move, Stage, bool) {
	for {
		switch p.stage {
		case StageTT:
			p.stage = StageGoodNoisy
			if !p.ttMoveEmitted {
				p.ttMoveEmitted = true
				return p.ttMove, StageTT, true
			}
		case StageGoodNoisy:
			if len(p.good) == 0 && p.bad == nil {
				p.generateNoisies()
			}
			if m, ok := p.pickBest(p.good, &p.goodIdx); ok {
				return m, StageGoodNoisy, true
			}
			if p.skipQuiets {
				p.stage = StageBadNoisy
			} else {
				p.stage = StageQuiet
			}
		case StageQuiet:
			if p.quiet == nil {
				p.generateQuiets()
			}
			if !p.skipQuiets {
				if m, ok := p.pickBest(p.quiet, &p.quietIdx); ok {
					return m, StageQuiet, true
				}
			}
			p.stage = StageBadNoisy
		case StageBadNoisy:
			if m, ok := p.pickBest(p.bad, &p.badIdx); ok {
				return m, StageBadNoisy, true
			}
			p.stage = StageDone
		case StageDone:
			return board.NoMove, StageDone, false
		}
	}
}

func (p *Picker) pickBest(list []scoredMove, idx *int) (board.Move, bool) {
	if *idx >= len(list) {
		return board.NoMove, false
	}
	best := *idx
	for j := *idx + 1; j < len(list); j++ {
		if list[j].score > list[best].score {
			best = j
		}
	}
	list[*idx], list[best] = list[best], list[*idx]
	m := list[*idx].move
	*idx++
	return m, true
}

func (p *Picker) generateNoisies() {
	var ml board.MoveList
	p.b.GenMoves(board.Noisies, &ml)

	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		if m == p.ttMove {
			continue
		}
		if !p.b.IsLegal(m) {
			continue
		}
		score := p.scoreNoisy(m)
		sm := scoredMove{move: m, score: score}
		if m.IsPromotion() && (m.Promotion() == board.Queen || m.Promotion() == board.Knight) {
			p.good = append(p.good, sm)
			continue
		}
		if see.Eval(p.b, m, seePruningMargin, see.Pruning) {
			p.good = append(p.good, sm)
		} else {
			p.bad = append(p.bad, sm)
		}
	}
	if p.good == nil {
		p.good = []scoredMove{}
	}
	if p.bad == nil {
		p.bad = []scoredMove{}
	}
}

func (p *Picker) scoreNoisy(m board.Move) int32 {
	attacker := p.b.PieceAt(m.From())
	var score int32
	if m.IsEnPassant() {
		score = int32(board.PieceValue[board.Pawn]) * 16
		score += p.tables.CaptureScore(p.b.SideToMove, attacker, m.To(), board.Pawn)
	} else if captured := p.b.PieceAt(m.To()); captured != board.NoPiece {
		score = int32(board.PieceValue[captured.Type()]) * 16
		score += p.tables.CaptureScore(p.b.SideToMove, attacker, m.To(), captured.Type())
	}
	if m.IsPromotion() {
		score += int32(board.PieceValue[m.Promotion()]) * 16
	}
	if p.prevMove != board.NoMove && p.prevTo == m.To() {
		score += 2048 // recapture bonus
	}
	return score
}

func (p *Picker) generateQuiets() {
	var ml board.MoveList
	p.b.GenMoves(board.Quiets, &ml)

	p.quiet = make([]scoredMove, 0, ml.Len())
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		if m == p.ttMove {
			continue
		}
		if !p.b.IsLegal(m) {
			continue
		}
		p.quiet = append(p.quiet, scoredMove{move: m, score: p.scoreQuiet(m)})
	}
}

func (p *Picker) scoreQuiet(m board.Move) int32 {
	if slot, ok := p.tables.IsKiller(p.ply, m); ok {
		if slot == 0 {
			return 1 << 26
		}
		return 1 << 25
	}

	from, to := m.From(), m.To()
	fromAttacked := p.b.Threats.IsSet(from)
	toAttacked := p.b.Threats.IsSet(to)
	score := p.tables.QuietScore(p.b.SideToMove, fromAttacked, toAttacked, from, to)

	piece := p.b.PieceAt(from)
	if p.prevPiece != board.NoPiece {
		score += p.tables.ContinuationScore(p.prevPiece, p.prevTo, piece, to) / 2
	}
	if p.prevPrevPiece != board.NoPiece {
		score += p.tables.ContinuationScore(p.prevPrevPiece, p.prevPrevTo, piece, to) / 4
	}
	return score
}
