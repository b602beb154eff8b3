// Package engine coordinates a Lazy-SMP pool of search.Worker goroutines
// sharing one transposition table, with the main thread's result
// authoritative and helper threads diversifying the shared hash table.
package engine

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chesscore/chesscore/internal/board"
	"github.com/chesscore/chesscore/internal/history"
	"github.com/chesscore/chesscore/internal/nnue"
	"github.com/chesscore/chesscore/internal/search"
	"github.com/chesscore/chesscore/internal/tt"
)

// NumWorkers is the number of parallel search threads a new Pool starts
// with (GOMAXPROCS); SetThreads changes a pool's own thread count.
var NumWorkers = runtime.GOMAXPROCS(0)

// Info mirrors one reported iteration, forwarded to the UCI layer.
type Info struct {
	Depth    int
	SelDepth int
	Score    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int
}

// Pool owns a shared transposition table and LMR table, and one
// search.Worker per thread (each with its own history tables and NNUE
// accumulator stack).
type Pool struct {
	tt       *tt.Table
	lmr      *history.LMRTable
	net      *nnue.Network
	workers  []*search.Worker
	stopFlag atomic.Bool

	nodes []uint64

	OnInfo func(Info)
}

// NewPool builds a pool with ttMiB megabytes of shared hash and the given
// (already loaded) NNUE network, sized to GOMAXPROCS threads.
func NewPool(ttMiB int, net *nnue.Network) *Pool {
	p := &Pool{
		tt:  tt.New(ttMiB),
		lmr: history.NewLMRTable(),
		net: net,
	}
	p.SetThreads(NumWorkers)
	return p
}

// SetThreads resizes the worker pool, discarding per-thread history state.
func (p *Pool) SetThreads(n int) {
	if n < 1 {
		n = 1
	}
	p.workers = make([]*search.Worker, n)
	p.nodes = make([]uint64, n)
	for i := range p.workers {
		p.workers[i] = search.NewWorker(p.tt, p.lmr, &p.stopFlag, p.net)
	}
}

// ResizeHash replaces the shared transposition table.
func (p *Pool) ResizeHash(mib int) {
	p.tt.Resize(mib)
}

// NewGame clears the transposition table and every thread's history state
// for a fresh game.
func (p *Pool) NewGame() {
	p.tt.Clear()
	for _, w := range p.workers {
		*w.Tables = history.Tables{}
	}
}

// Stop requests the current search to halt as soon as each worker polls.
func (p *Pool) Stop() {
	p.stopFlag.Store(true)
}

// Search runs Lazy-SMP iterative deepening: the main thread (worker 0)
// drives the reported PV/score and its result is authoritative; helper
// threads search the same position with independent move-ordering noise
// from their own history tables purely to diversify the shared
// transposition table. Their results are discarded once the main thread
// finishes and the stop flag has been raised.
func (p *Pool) Search(b *board.Board, rootKeys []uint64, limits search.Limits) board.Move {
	p.stopFlag.Store(false)
	p.tt.Birthday()
	start := time.Now()

	var wg sync.WaitGroup
	for i := 1; i < len(p.workers); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p.workers[i].SearchRoot(b.Clone(), rootKeys, limits, func(d, seldepth, s int, nodes uint64, elapsed time.Duration, pv []board.Move, hashfull int) {
				atomic.StoreUint64(&p.nodes[i], nodes)
			})
		}(i)
	}

	move, _ := p.workers[0].SearchRoot(b.Clone(), rootKeys, limits, func(d, seldepth, s int, nodes uint64, elapsed time.Duration, pv []board.Move, hashfull int) {
		atomic.StoreUint64(&p.nodes[0], nodes)
		if p.OnInfo != nil {
			p.OnInfo(Info{
				Depth:    d,
				SelDepth: seldepth,
				Score:    s,
				Nodes:    p.totalNodes(),
				Time:     time.Since(start),
				PV:       pv,
				HashFull: hashfull,
			})
		}
	})

	p.stopFlag.Store(true)
	wg.Wait()
	return move
}

func (p *Pool) totalNodes() uint64 {
	var total uint64
	for i := range p.nodes {
		total += atomic.LoadUint64(&p.nodes[i])
	}
	return total
}

// HashFull reports the shared transposition table's occupancy in permille.
func (p *Pool) HashFull() int { return p.tt.Fill() }
