// Package uci implements the Universal Chess Interface protocol over
// stdin/stdout, translating between UCI text commands and the
// internal/engine search pool.
package uci

import (
	"bufio"
	"fmt"
	"os"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/chesscore/chesscore/internal/board"
	"github.com/chesscore/chesscore/internal/engine"
	"github.com/chesscore/chesscore/internal/scharnagl"
	"github.com/chesscore/chesscore/internal/search"
	"github.com/chesscore/chesscore/internal/xlog"
)

const engineName = "chesscore"
const engineAuthor = "chesscore contributors"

// UCI drives the protocol loop: it owns the current position, the game's
// hash history for repetition detection, and the search pool.
type UCI struct {
	pool *engine.Pool
	b    *board.Board

	gameHashes []uint64

	chess960     bool
	minimal      bool
	useSoftNodes bool

	searching  bool
	searchDone chan struct{}

	profileFile *os.File
}

// New creates a protocol handler around an already-constructed pool.
func New(pool *engine.Pool) *UCI {
	b, _ := board.FromFEN(board.StartFEN)
	return &UCI{
		pool:       pool,
		b:          b,
		gameHashes: []uint64{b.Hash},
	}
}

// Run reads commands from stdin until "quit" or EOF.
func (u *UCI) Run() {
	u.pool.OnInfo = u.sendInfo

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "uci":
			u.handleUCI()
		case "isready":
			fmt.Println("readyok")
		case "ucinewgame":
			u.handleNewGame()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "quit":
			u.handleQuit()
			return
		case "setoption":
			u.handleSetOption(args)
		case "d":
			fmt.Println(u.b.ToFEN())
		case "perft":
			u.handlePerft(args)
		}
	}
}

func (u *UCI) handleUCI() {
	fmt.Printf("id name %s\n", engineName)
	fmt.Printf("id author %s\n", engineAuthor)
	fmt.Println("option name Hash type spin default 64 min 1 max 65536")
	fmt.Println("option name UCI_Chess960 type check default false")
	fmt.Println("option name Minimal type check default false")
	fmt.Println("option name UseSoftNodes type check default false")
	fmt.Println("option name Threads type spin default 1 min 1 max 256")
	printTunableOptions()
	fmt.Println("uciok")
}

func (u *UCI) handleNewGame() {
	u.pool.NewGame()
	b, _ := board.FromFEN(board.StartFEN)
	u.b = b
	u.gameHashes = []uint64{b.Hash}
}

// handlePosition parses:
//
//	position startpos [moves ...]
//	position fen <fen> [moves ...]
//	position frc <index> [moves ...]
//	position dfrc <index> [moves ...]
func (u *UCI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	moveStart := len(args)
	for i, a := range args {
		if a == "moves" {
			moveStart = i + 1
			break
		}
	}

	var b *board.Board
	var err error
	switch args[0] {
	case "startpos":
		b, err = board.FromFEN(board.StartFEN)
	case "fen":
		fenEnd := len(args)
		if moveStart < len(args) {
			fenEnd = moveStart - 1
		}
		b, err = board.FromFEN(strings.Join(args[1:fenEnd], " "))
	case "frc":
		if len(args) < 2 {
			return
		}
		n, perr := strconv.Atoi(args[1])
		if perr != nil {
			return
		}
		fen, ferr := scharnagl.FEN(n)
		if ferr != nil {
			xlog.Warningf("position frc: %v", ferr)
			return
		}
		b, err = board.FromFEN(fen)
	case "dfrc":
		if len(args) < 2 {
			return
		}
		n, perr := strconv.Atoi(args[1])
		if perr != nil {
			return
		}
		fen, ferr := scharnagl.DoubleFEN(n)
		if ferr != nil {
			xlog.Warningf("position dfrc: %v", ferr)
			return
		}
		b, err = board.FromFEN(fen)
	default:
		return
	}
	if err != nil {
		xlog.Warningf("invalid position: %v", err)
		return
	}
	if u.chess960 {
		b.Chess960 = true
	}

	hashes := []uint64{b.Hash}
	if moveStart < len(args) {
		for _, moveStr := range args[moveStart:] {
			m, perr := board.ParseMove(moveStr, b)
			if perr != nil || m == board.NoMove || !b.IsLegal(m) {
				xlog.Warningf("invalid move in position command: %s", moveStr)
				return
			}
			b.Make(m)
			hashes = append(hashes, b.Hash)
		}
	}

	u.b = b
	u.gameHashes = hashes
}

type goOptions struct {
	depth     int
	nodes     uint64
	moveTime  time.Duration
	infinite  bool
	time      [2]time.Duration
	inc       [2]time.Duration
	movesToGo int
}

func (u *UCI) handleGo(args []string) {
	opts := parseGoOptions(args)

	limits := search.Limits{
		Depth:     opts.depth,
		Nodes:     opts.nodes,
		MoveTime:  opts.moveTime,
		Infinite:  opts.infinite,
		Time:      opts.time,
		Inc:       opts.inc,
		MovesToGo: opts.movesToGo,
		SoftNodes: u.useSoftNodes,
	}

	u.searching = true
	u.searchDone = make(chan struct{})
	b := u.b.Clone()
	rootKeys := append([]uint64(nil), u.gameHashes...)

	go func() {
		defer close(u.searchDone)
		move := u.pool.Search(b, rootKeys, limits)
		u.searching = false
		if move == board.NoMove {
			fmt.Println("bestmove 0000")
			return
		}
		fmt.Printf("bestmove %s\n", move.UCI(b))
	}()
}

func parseGoOptions(args []string) goOptions {
	var o goOptions
	for i := 0; i < len(args); i++ {
		next := func() string {
			if i+1 < len(args) {
				i++
				return args[i]
			}
			return ""
		}
		switch args[i] {
		case "depth":
			o.depth, _ = strconv.Atoi(next())
		case "nodes":
			n, _ := strconv.ParseUint(next(), 10, 64)
			o.nodes = n
		case "movetime":
			ms, _ := strconv.Atoi(next())
			o.moveTime = time.Duration(ms) * time.Millisecond
		case "infinite":
			o.infinite = true
		case "wtime":
			ms, _ := strconv.Atoi(next())
			o.time[board.White] = time.Duration(ms) * time.Millisecond
		case "btime":
			ms, _ := strconv.Atoi(next())
			o.time[board.Black] = time.Duration(ms) * time.Millisecond
		case "winc":
			ms, _ := strconv.Atoi(next())
			o.inc[board.White] = time.Duration(ms) * time.Millisecond
		case "binc":
			ms, _ := strconv.Atoi(next())
			o.inc[board.Black] = time.Duration(ms) * time.Millisecond
		case "movestogo":
			o.movesToGo, _ = strconv.Atoi(next())
		}
	}
	return o
}

// sendInfo renders one iteration's report in UCI "info" format. In Minimal
// mode, seldepth and hashfull are omitted.
func (u *UCI) sendInfo(info engine.Info) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "info depth %d", info.Depth)
	if !u.minimal {
		fmt.Fprintf(&sb, " seldepth %d", info.SelDepth)
	}

	if search.IsMateScore(info.Score) {
		fmt.Fprintf(&sb, " score mate %d", search.MateIn(info.Score))
	} else {
		fmt.Fprintf(&sb, " score cp %d", info.Score)
	}

	fmt.Fprintf(&sb, " nodes %d time %d", info.Nodes, info.Time.Milliseconds())
	if info.Time > 0 {
		nps := uint64(float64(info.Nodes) / info.Time.Seconds())
		fmt.Fprintf(&sb, " nps %d", nps)
	}
	if !u.minimal {
		fmt.Fprintf(&sb, " hashfull %d", info.HashFull)
	}

	if len(info.PV) > 0 {
		fmt.Fprint(&sb, " pv")
		b := u.b.Clone()
		for _, m := range info.PV {
			fmt.Fprintf(&sb, " %s", m.UCI(b))
			b.Make(m)
		}
	}

	fmt.Println(sb.String())
}

func (u *UCI) handleStop() {
	if u.searching {
		u.pool.Stop()
		<-u.searchDone
	}
}

func (u *UCI) handleQuit() {
	u.handleStop()
	if u.profileFile != nil {
		pprof.StopCPUProfile()
		u.profileFile.Close()
	}
}

func (u *UCI) handleSetOption(args []string) {
	var name, value string
	reading := ""
	for _, a := range args {
		switch a {
		case "name":
			reading = "name"
		case "value":
			reading = "value"
		default:
			switch reading {
			case "name":
				name = appendWord(name, a)
			case "value":
				value = appendWord(value, a)
			}
		}
	}

	switch strings.ToLower(name) {
	case "hash":
		mib, err := strconv.Atoi(value)
		if err == nil && mib > 0 {
			u.pool.ResizeHash(mib)
		}
	case "threads":
		n, err := strconv.Atoi(value)
		if err == nil && n > 0 {
			u.pool.SetThreads(n)
		}
	case "uci_chess960":
		u.chess960 = strings.EqualFold(value, "true")
	case "minimal":
		u.minimal = strings.EqualFold(value, "true")
	case "usesoftnodes":
		u.useSoftNodes = strings.EqualFold(value, "true")
	case "debug":
		xlog.SetDebug(strings.EqualFold(value, "true"))
	case "cpuprofile":
		u.setCPUProfile(value)
	default:
		setTunableOption(name, value)
	}
}

func appendWord(s, word string) string {
	if s == "" {
		return word
	}
	return s + " " + word
}

func (u *UCI) setCPUProfile(value string) {
	if u.profileFile != nil {
		pprof.StopCPUProfile()
		u.profileFile.Close()
		u.profileFile = nil
	}
	if value == "" || value == "stop" {
		return
	}
	f, err := os.Create(value)
	if err != nil {
		xlog.Warningf("cpuprofile: %v", err)
		return
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		xlog.Warningf("cpuprofile: %v", err)
		return
	}
	u.profileFile = f
}

func (u *UCI) handlePerft(args []string) {
	depth := 5
	if len(args) > 0 {
		if d, err := strconv.Atoi(args[0]); err == nil {
			depth = d
		}
	}
	start := time.Now()
	nodes := perft(u.b.Clone(), depth)
	elapsed := time.Since(start)
	fmt.Printf("Nodes: %d\n", nodes)
	fmt.Printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		fmt.Printf("NPS: %.0f\n", float64(nodes)/elapsed.Seconds())
	}
}

func perft(b *board.Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	var ml board.MoveList
	b.GenLegalMoves(&ml)
	if depth == 1 {
		return uint64(ml.Len())
	}
	var total uint64
	for i := 0; i < ml.Len(); i++ {
		child := b.Clone()
		child.Make(ml.Get(i))
		total += perft(child, depth-1)
	}
	return total
}
