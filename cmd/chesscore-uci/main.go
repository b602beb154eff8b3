// Command chesscore-uci is the engine's UCI entrypoint: it builds a search
// pool, optionally loads an NNUE weight file, and runs the protocol loop
// against stdin/stdout.
package main

import (
	"flag"
	"os"

	"github.com/chesscore/chesscore/internal/engine"
	"github.com/chesscore/chesscore/internal/nnue"
	"github.com/chesscore/chesscore/internal/uci"
	"github.com/chesscore/chesscore/internal/xlog"
)

var (
	hashMiB  = flag.Int("hash", 64, "transposition table size in MiB")
	evalFile = flag.String("evalfile", "", "path to an NNUE weight file (uses a zero-initialized network if omitted)")
)

func main() {
	flag.Parse()

	net := nnue.NewNetwork()
	if path := *evalFile; path != "" {
		if err := loadNetwork(net, path); err != nil {
			xlog.Warningf("evalfile %s: %v (continuing with an untrained network)", path, err)
		} else {
			xlog.Infof("loaded NNUE weights from %s", path)
		}
	} else {
		xlog.Warningf("no evalfile given, running with an untrained network")
	}

	pool := engine.NewPool(*hashMiB, net)
	uci.New(pool).Run()
}

func loadNetwork(net *nnue.Network, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return net.LoadWeights(f)
}
