// Package search implements the engine's alpha-beta/PVS search: iterative
// deepening with aspiration windows, a staged move picker, the standard
// pruning/reduction/extension suite, and history/correction-history
// bookkeeping. Recursion clones the board at each node rather than
// make/unmake, since Board has no unmake.
package search

import (
	"sync/atomic"
	"time"

	"github.com/chesscore/chesscore/internal/board"
	"github.com/chesscore/chesscore/internal/history"
	"github.com/chesscore/chesscore/internal/nnue"
	"github.com/chesscore/chesscore/internal/see"
	"github.com/chesscore/chesscore/internal/tt"
)

const (
	nmpVerifyDepth   = 12
	singularMinDepth = 6
	rfpMaxDepth      = 8
	razorMaxDepth    = 4
)

// Tunable search parameters, exposed as UCI spin options under the
// "tunable" build tag (see internal/uci/tunable_enabled.go) for SPSA-style
// local tuning. Without that tag they stay package variables at these
// defaults.
var (
	LateMovePruneBase  int32 = 3
	RFPMargin          int32 = 75
	RazorMargin        int32 = 300
	SeeQuietDepthScale int32 = -60
	SeeNoisyDepthScale int32 = -90
)

// Reporter receives periodic iteration reports during SearchRoot. All
// methods may be nil-checked away by passing a zero Reporter.
type Reporter func(depth, seldepth, score int, nodes uint64, elapsed time.Duration, pv []board.Move, hashfull int)

// Worker holds everything one Lazy-SMP thread owns exclusively: its own
// history tables, NNUE evaluator/accumulator stack, PV table, and search
// stacks. The transposition table and stop flag are shared across workers.
type Worker struct {
	TT       *tt.Table
	Tables   *history.Tables
	LMR      *history.LMRTable
	Eval     *nnue.Evaluator
	StopFlag *atomic.Bool

	nodes    uint64
	seldepth int
	pv       PVTable

	rootKeys  []uint64 // game-history hashes before the search root
	pathHash  [MaxPly + 8]uint64
	evalStack [MaxPly + 8]int
	reduction [MaxPly + 8]int

	timeMan       *TimeManager
	hardNodeLimit uint64
	softNodes     bool
	depthLimit    int

	rootMoveNodes map[board.Move]uint64
}

// NewWorker builds a worker around shared TT/LMR-table and an owned
// history/NNUE pair.
func NewWorker(t *tt.Table, lmr *history.LMRTable, stopFlag *atomic.Bool, net *nnue.Network) *Worker {
	return &Worker{
		TT:       t,
		Tables:   history.NewTables(),
		LMR:      lmr,
		Eval:     nnue.NewEvaluator(net),
		StopFlag: stopFlag,
	}
}

// Reset clears per-search node/seldepth counters; history tables persist
// across searches (zeroed by engine.Pool.NewGame on ucinewgame, not here).
func (w *Worker) Reset() {
	w.nodes = 0
	w.seldepth = 0
}

func isCapture(b *board.Board, m board.Move) bool {
	if m.IsCastle() {
		return false
	}
	return m.IsEnPassant() || b.PieceAt(m.To()) != board.NoPiece
}

// SearchRoot drives iterative deepening with aspiration windows from
// depth 1 to MaxPly, reporting each completed iteration via report (may
// be nil), and returns the best move and its score once the time manager
// or depth/node limit says to stop.
func (w *Worker) SearchRoot(b *board.Board, rootKeys []uint64, limits Limits, report Reporter) (board.Move, int) {
	w.Reset()
	w.rootKeys = rootKeys
	w.rootMoveNodes = make(map[board.Move]uint64)
	w.Eval.Activate(b)

	w.timeMan = NewTimeManager()
	w.timeMan.Init(limits, b.SideToMove, len(rootKeys))
	w.depthLimit = limits.Depth
	if w.depthLimit <= 0 || w.depthLimit > MaxPly {
		w.depthLimit = MaxPly
	}
	w.hardNodeLimit = limits.Nodes
	w.softNodes = limits.SoftNodes

	var bestMove board.Move
	bestScore := 0
	stability := 0
	changes := 0
	lastBest := board.NoMove

	const initialDelta = 16
	for depth := 1; depth <= w.depthLimit; depth++ {
		alpha, beta := -Infinity, Infinity
		delta := initialDelta
		if depth >= 5 {
			alpha = bestScore - delta
			beta = bestScore + delta
		}

		var score int
		for {
			score = w.alphaBeta(b, depth, 0, alpha, beta, board.NoMove, board.NoPiece, board.NoMove, board.NoPiece, false, true)

			if w.StopFlag.Load() {
				break
			}
			if score <= alpha {
				beta = (alpha + beta) / 2
				alpha = score - delta
				if alpha < -Infinity {
					alpha = -Infinity
				}
			} else if score >= beta {
				alpha = (alpha + beta) / 2
				beta = score + delta
				if beta > Infinity {
					beta = Infinity
				}
			} else {
				break
			}
			delta += delta / 2
		}

		if w.StopFlag.Load() && depth > 1 {
			break
		}

		bestScore = score
		if w.pv.length[0] > 0 {
			bestMove = w.pv.moves[0][0]
		}

		if bestMove == lastBest {
			stability++
			changes = 0
		} else {
			stability = 0
			changes++
			lastBest = bestMove
		}

		if report != nil {
			report(depth, w.seldepth, bestScore, w.nodes, w.timeMan.Elapsed(), w.pv.Line(), w.TT.Fill())
		}

		if w.hardNodeLimit > 0 && w.nodes >= w.hardNodeLimit {
			break
		}
		if !limits.Infinite && limits.MoveTime == 0 && limits.Depth == 0 {
			w.timeMan.AdjustForStability(stability)
			w.timeMan.AdjustForInstability(changes)
			w.timeMan.AdjustForNodeFraction(w.rootMoveNodes[bestMove], w.nodes)
			if w.timeMan.ShouldStopSoft() {
				break
			}
		}
		if w.StopFlag.Load() {
			break
		}
	}

	return bestMove, bestScore
}

// isDraw reports 50-move, insufficient-material, repetition, and
// upcoming-repetition (cuckoo) draws at ply > 0.
func (w *Worker) isDraw(b *board.Board, ply int) bool {
	if b.HalfmoveClock >= 100 {
		return true
	}
	if isInsufficientMaterial(b) {
		return true
	}

	count := 0
	limit := b.HalfmoveClock
	for i := ply - 1; i >= 0 && limit > 0; i, limit = i-1, limit-1 {
		if w.pathHash[i] == b.Hash {
			count++
			if count >= 1 {
				return true
			}
		}
	}
	for i := len(w.rootKeys) - 1; i >= 0 && limit > 0; i, limit = i-1, limit-1 {
		if w.rootKeys[i] == b.Hash {
			return true
		}
	}

	allHistory := make([]uint64, 0, len(w.rootKeys)+ply)
	allHistory = append(allHistory, w.rootKeys...)
	allHistory = append(allHistory, w.pathHash[:ply]...)
	if b.HasUpcomingRepetition(allHistory) {
		return true
	}
	return false
}

func isInsufficientMaterial(b *board.Board) bool {
	if b.Pieces[board.White][board.Pawn] != 0 || b.Pieces[board.Black][board.Pawn] != 0 {
		return false
	}
	if b.Pieces[board.White][board.Rook] != 0 || b.Pieces[board.Black][board.Rook] != 0 {
		return false
	}
	if b.Pieces[board.White][board.Queen] != 0 || b.Pieces[board.Black][board.Queen] != 0 {
		return false
	}
	minorCount := b.Pieces[board.White][board.Knight].PopCount() + b.Pieces[board.White][board.Bishop].PopCount() +
		b.Pieces[board.Black][board.Knight].PopCount() + b.Pieces[board.Black][board.Bishop].PopCount()
	return minorCount <= 1
}

// alphaBeta implements PVS with the standard pruning/reduction/extension
// suite. prevMove/prevPiece is the move made to reach this node;
// prevPrevMove/prevPrevPiece is two plies back (both NoMove/NoPiece when
// unavailable). allowNull disables null-move pruning while inside an NMP
// verification subtree.
func (w *Worker) alphaBeta(b *board.Board, depth, ply, alpha, beta int, prevMove board.Move, prevPiece board.Piece, prevPrevMove board.Move, prevPrevPiece board.Piece, cutNode bool, allowNull bool) int {
	pvNode := beta-alpha > 1

	if ply >= MaxPly {
		return w.evaluate(b)
	}

	if w.nodes&2047 == 0 {
		if w.StopFlag.Load() {
			return 0
		}
		if w.hardNodeLimit > 0 && !w.softNodes && w.nodes >= w.hardNodeLimit {
			w.StopFlag.Store(true)
			return 0
		}
		if w.timeMan != nil && w.timeMan.ShouldStopHard() {
			w.StopFlag.Store(true)
			return 0
		}
	}

	w.nodes++
	w.pv.init(ply)
	if ply > w.seldepth {
		w.seldepth = ply
	}
	w.pathHash[ply] = b.Hash

	if ply > 0 && w.isDraw(b, ply) {
		return DrawScore
	}

	inCheck := b.InCheck()
	if depth <= 0 && !inCheck {
		return w.qsearch(b, ply, alpha, beta)
	}
	if depth < 0 {
		depth = 0
	}
	if depth > MaxPly {
		depth = MaxPly
	}

	var ttMove board.Move
	ttPv := false
	ttMoveVal, ttScoreTT, ttStaticEval, ttDepth, ttFlag, ttPvStored, found := w.TT.Probe(b.Hash)
	if found {
		ttMove = ttMoveVal
		ttPv = ttPvStored
		if ttMove != board.NoMove && !b.IsPseudoLegal(ttMove) {
			ttMove = board.NoMove
		}
		if ttDepth >= depth && !pvNode {
			score := tt.AdjustScoreFromTT(ttScoreTT, ply)
			switch ttFlag {
			case tt.FlagExact:
				return score
			case tt.FlagLower:
				if score > alpha {
					alpha = score
				}
			case tt.FlagUpper:
				if score < beta {
					beta = score
				}
			}
			if alpha >= beta {
				return score
			}
		}
		_ = ttStaticEval
	}

	var rawEval int
	var staticEval int
	if inCheck {
		staticEval = -Infinity
	} else {
		rawEval = w.evaluate(b)
		correction := w.Tables.Correction.Apply(b, b.SideToMove, rawEval, prevPiece, moveToSquare(prevMove), prevPrevPiece, moveToSquare(prevPrevMove))
		staticEval = correction
	}
	w.evalStack[ply] = staticEval

	improving := false
	if !inCheck && ply >= 2 && w.evalStack[ply-2] != -Infinity {
		improving = staticEval > w.evalStack[ply-2]
	}

	if !inCheck && !pvNode && ply > 0 {
		if depth <= rfpMaxDepth {
			margin := int(RFPMargin) * depth
			if improving {
				margin -= 20
			}
			if staticEval-margin >= beta {
				return staticEval
			}
		}
		if depth <= razorMaxDepth && staticEval+int(RazorMargin)*depth <= alpha {
			score := w.qsearch(b, ply, alpha, beta)
			if score <= alpha {
				return score
			}
		}
	}

	if allowNull && !inCheck && !pvNode && ply > 0 && depth >= 3 && staticEval >= beta && b.NonPawnMaterial(b.SideToMove) {
		r := 3 + depth/4
		if staticEval-beta > 200 {
			r++
		}
		reducedDepth := depth - 1 - r
		if reducedDepth < 0 {
			reducedDepth = 0
		}
		child := b.Clone()
		child.MakeNullMove()
		nullScore := -w.alphaBeta(child, reducedDepth, ply+1, -beta, -beta+1, board.NoMove, board.NoPiece, prevMove, prevPiece, !cutNode, true)

		if nullScore >= beta {
			if nullScore >= MateScore-MaxPly {
				nullScore = beta
			}
			if depth > nmpVerifyDepth {
				verify := w.alphaBeta(b, depth-1-r, ply, beta-1, beta, prevMove, prevPiece, prevPrevMove, prevPrevPiece, cutNode, false)
				if verify >= beta {
					return nullScore
				}
			} else {
				return nullScore
			}
		}
	}

	singularExtension := 0
	if !pvNode && depth >= singularMinDepth && ttMove != board.NoMove && found && ttDepth >= depth-3 &&
		(ttFlag == tt.FlagLower || ttFlag == tt.FlagExact) {
		ttValue := tt.AdjustScoreFromTT(ttScoreTT, ply)
		margin := 2 * depth
		singularBeta := ttValue - margin
		singularDepth := (depth - 1) / 2
		score := w.alphaBetaExcluding(b, singularDepth, ply, singularBeta-1, singularBeta, prevMove, prevPiece, prevPrevMove, prevPrevPiece, cutNode, ttMove)
		if score < singularBeta {
			singularExtension = 1
		}
	}

	picker := NewPicker(b, w.Tables, ttMove, ply, prevMove, prevPiece, prevPrevMove, prevPrevPiece)

	bestScore := -Infinity
	bestMove := board.NoMove
	flag := tt.FlagUpper
	movesSearched := 0

	var triedQuiets []board.Move
	var triedNoisies []board.Move

	pruneQuiets := false
	if !inCheck && !pvNode && depth <= 5 {
		margin := []int{0, 150, 250, 400, 600, 850}[depth]
		if staticEval+margin <= alpha {
			pruneQuiets = true
		}
	}

	for {
		m, stage, ok := picker.Next()
		if !ok {
			break
		}

		capture := isCapture(b, m)
		quiet := !capture && !m.IsPromotion()

		if ply > 0 && bestMove != board.NoMove {
			if quiet && movesSearched >= int(LateMovePruneBase)+depth*depth {
				picker.SkipQuiets()
				continue
			}
			if pruneQuiets && quiet && stage == StageQuiet {
				continue
			}
			if !inCheck && movesSearched > 0 {
				threshold := int(SeeQuietDepthScale) * depth
				kind := see.Pruning
				if capture {
					threshold = int(SeeNoisyDepthScale) * depth * depth / 8
				}
				if !see.Eval(b, m, threshold, kind) {
					continue
				}
			}
		}

		child := b.Clone()
		child.Make(m)
		w.Eval.Push()
		w.Eval.Update(child, m, b.SideToMove, b.PieceAt(m.From()).Type(), m.From(), m.To(), capturedType(b, m), captureSquare(b, m))
		nodesBefore := w.nodes

		extension := 0
		if inCheck {
			extension = 1
		} else if m == ttMove {
			extension = singularExtension
		}

		movedPiece := b.PieceAt(m.From())
		newDepth := depth - 1 + extension

		var score int
		if movesSearched == 0 {
			score = -w.alphaBeta(child, newDepth, ply+1, -beta, -alpha, m, movedPiece, prevMove, prevPiece, false, true)
		} else {
			reduction := 0
			if depth >= 3 && movesSearched >= 2 && quiet {
				reduction = w.LMR.Reduction(depth, movesSearched+1)
				if !improving {
					reduction++
				}
				if cutNode {
					reduction++
				}
				hist := w.Tables.QuietScore(b.SideToMove, b.Threats.IsSet(m.From()), b.Threats.IsSet(m.To()), m.From(), m.To())
				if hist > 0 {
					reduction -= int(hist) / 4096
				} else {
					reduction += int(-hist) / 4096
				}
				if reduction < 0 {
					reduction = 0
				}
				if reduction > newDepth-1 {
					reduction = newDepth - 1
				}
			}
			w.reduction[ply] = reduction

			score = -w.alphaBeta(child, newDepth-reduction, ply+1, -alpha-1, -alpha, m, movedPiece, prevMove, prevPiece, true, true)
			if score > alpha && reduction > 0 {
				score = -w.alphaBeta(child, newDepth, ply+1, -alpha-1, -alpha, m, movedPiece, prevMove, prevPiece, !cutNode, true)
			}
			if score > alpha && pvNode {
				score = -w.alphaBeta(child, newDepth, ply+1, -beta, -alpha, m, movedPiece, prevMove, prevPiece, false, true)
			}
		}

		w.Eval.Pop()

		if ply == 0 {
			w.rootMoveNodes[m] += w.nodes - nodesBefore
		}

		movesSearched++
		if quiet {
			triedQuiets = append(triedQuiets, m)
		} else {
			triedNoisies = append(triedNoisies, m)
		}

		if w.StopFlag.Load() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = m
			if score > alpha {
				alpha = score
				flag = tt.FlagExact
				w.pv.update(ply, m)
			}
		}

		if score >= beta {
			flag = tt.FlagLower
			bestScore = score
			bestMove = m
			break
		}
	}

	if movesSearched == 0 {
		if inCheck {
			return -MateScore + ply
		}
		return DrawScore
	}

	if flag == tt.FlagLower {
		w.applyHistoryUpdates(b, bestMove, depth, ply, triedQuiets, triedNoisies, prevMove, prevPiece, prevPrevMove, prevPrevPiece)
	}

	if !inCheck {
		w.Tables.Correction.Update(b, b.SideToMove, bestScore, rawEval, depth, prevPiece, moveToSquare(prevMove), prevPrevPiece, moveToSquare(prevPrevMove))
	}

	if ply > 0 {
		w.TT.Store(b.Hash, bestMove, bestScore, staticEval, depth, ply, flag, pvNode || ttPv)
	}

	return bestScore
}

// alphaBetaExcluding reruns alphaBeta with excludeMove removed from the
// move picker, used by the singular-extension probe.
func (w *Worker) alphaBetaExcluding(b *board.Board, depth, ply, alpha, beta int, prevMove board.Move, prevPiece board.Piece, prevPrevMove board.Move, prevPrevPiece board.Piece, cutNode bool, excludeMove board.Move) int {
	picker := NewPicker(b, w.Tables, board.NoMove, ply, prevMove, prevPiece, prevPrevMove, prevPrevPiece)
	bestScore := -Infinity
	for {
		m, _, ok := picker.Next()
		if !ok {
			break
		}
		if m == excludeMove {
			continue
		}
		child := b.Clone()
		child.Make(m)
		w.Eval.Push()
		w.Eval.Update(child, m, b.SideToMove, b.PieceAt(m.From()).Type(), m.From(), m.To(), capturedType(b, m), captureSquare(b, m))
		score := -w.alphaBeta(child, depth, ply+1, -beta, -alpha, m, b.PieceAt(m.From()), prevMove, prevPiece, !cutNode, true)
		w.Eval.Pop()
		if score > bestScore {
			bestScore = score
		}
		if score >= beta {
			return score
		}
	}
	return bestScore
}

func (w *Worker) applyHistoryUpdates(b *board.Board, cutoffMove board.Move, depth, ply int, triedQuiets, triedNoisies []board.Move, prevMove board.Move, prevPiece board.Piece, prevPrevMove board.Move, prevPrevPiece board.Piece) {
	bonus := history.HistoryBonus(depth)
	cutoffIsQuiet := !isCapture(b, cutoffMove) && !cutoffMove.IsPromotion()

	if cutoffIsQuiet {
		w.Tables.UpdateKillers(ply, cutoffMove)
		from, to := cutoffMove.From(), cutoffMove.To()
		w.Tables.UpdateQuiet(b.SideToMove, b.Threats.IsSet(from), b.Threats.IsSet(to), from, to, bonus)
		piece := b.PieceAt(from)
		if prevPiece != board.NoPiece {
			w.Tables.UpdateContinuation(prevPiece, prevMove.To(), piece, to, bonus)
		}
		if prevPrevPiece != board.NoPiece {
			w.Tables.UpdateContinuation(prevPrevPiece, prevPrevMove.To(), piece, to, bonus)
		}
		for _, m := range triedQuiets {
			if m == cutoffMove {
				continue
			}
			f, t := m.From(), m.To()
			w.Tables.UpdateQuiet(b.SideToMove, b.Threats.IsSet(f), b.Threats.IsSet(t), f, t, -bonus)
		}
	} else {
		attacker := b.PieceAt(cutoffMove.From())
		victim := capturedType(b, cutoffMove)
		w.Tables.UpdateCapture(b.SideToMove, attacker, cutoffMove.To(), victim, bonus)
	}

	for _, m := range triedNoisies {
		if m == cutoffMove {
			continue
		}
		attacker := b.PieceAt(m.From())
		victim := capturedType(b, m)
		w.Tables.UpdateCapture(b.SideToMove, attacker, m.To(), victim, -bonus)
	}
}

func capturedType(b *board.Board, m board.Move) board.PieceType {
	if m.IsEnPassant() {
		return board.Pawn
	}
	p := b.PieceAt(m.To())
	if p == board.NoPiece {
		return board.NoPieceType
	}
	return p.Type()
}

func captureSquare(b *board.Board, m board.Move) board.Square {
	if m.IsEnPassant() {
		if b.SideToMove == board.White {
			return board.Square(int(m.To()) - 8)
		}
		return board.Square(int(m.To()) + 8)
	}
	return m.To()
}

func moveToSquare(m board.Move) board.Square {
	if m == board.NoMove {
		return board.NoSquare
	}
	return m.To()
}

// evaluate returns the NNUE evaluation for the side to move, scaled by
// material phase and the 50-move clock.
func (w *Worker) evaluate(b *board.Board) int {
	return w.Eval.Evaluate(b, b.MaterialPhase())
}

// qsearch stands pat at the static eval, then searches captures (and
// evasions if in check), pruning captures that fail SEE.
func (w *Worker) qsearch(b *board.Board, ply, alpha, beta int) int {
	if w.nodes&2047 == 0 && w.StopFlag.Load() {
		return 0
	}
	w.nodes++
	if ply > w.seldepth {
		w.seldepth = ply
	}
	if ply >= MaxPly {
		return w.evaluate(b)
	}

	inCheck := b.InCheck()
	var standPat int
	if !inCheck {
		standPat = w.evaluate(b)
		if standPat >= beta {
			return standPat
		}
		if standPat > alpha {
			alpha = standPat
		}
	} else {
		standPat = -Infinity
	}

	filter := board.Noisies
	if inCheck {
		filter = board.All
	}
	var ml board.MoveList
	b.GenMoves(filter, &ml)

	best := standPat
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		if !b.IsLegal(m) {
			continue
		}
		if !inCheck && !isCapture(b, m) && !m.IsPromotion() {
			continue
		}
		if !inCheck && !see.Eval(b, m, 0, see.Pruning) {
			continue
		}

		child := b.Clone()
		child.Make(m)
		w.Eval.Push()
		w.Eval.Update(child, m, b.SideToMove, b.PieceAt(m.From()).Type(), m.From(), m.To(), capturedType(b, m), captureSquare(b, m))
		score := -w.qsearch(child, ply+1, -beta, -alpha)
		w.Eval.Pop()

		if score > best {
			best = score
			if score > alpha {
				alpha = score
			}
		}
		if score >= beta {
			return score
		}
	}

	if inCheck && ml.Len() == 0 {
		return -MateScore + ply
	}
	return best
}
