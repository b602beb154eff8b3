//go:build tunable

package uci

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chesscore/chesscore/internal/search"
)

type tunableParam struct {
	name       string
	value      *int32
	min, max   int32
}

var tunableParams = []tunableParam{
	{"LateMovePruneBase", &search.LateMovePruneBase, 1, 10},
	{"RFPMargin", &search.RFPMargin, 10, 200},
	{"RazorMargin", &search.RazorMargin, 50, 800},
	{"SeeQuietDepthScale", &search.SeeQuietDepthScale, -200, -10},
	{"SeeNoisyDepthScale", &search.SeeNoisyDepthScale, -300, -10},
}

func printTunableOptions() {
	for _, p := range tunableParams {
		fmt.Printf("option name %s type spin default %d min %d max %d\n", p.name, *p.value, p.min, p.max)
	}
}

func setTunableOption(name, value string) {
	for _, p := range tunableParams {
		if !strings.EqualFold(p.name, name) {
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return
		}
		if int32(n) < p.min {
			n = int(p.min)
		}
		if int32(n) > p.max {
			n = int(p.max)
		}
		*p.value = int32(n)
		return
	}
}
