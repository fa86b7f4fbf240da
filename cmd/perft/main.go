// perft is a move-generator debugging tool: it counts the number of distinct
// move sequences from the initial position to each depth up to a given one
// and prints one line per depth. It does not check the counts itself.
package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/sochima/shashki/pkg/board"
)

var (
	depth  = flag.Int("depth", 6, "Search depth")
	divide = flag.Bool("divide", false, "Divide counts by initial move, at the deepest depth")
)

func main() {
	flag.Parse()

	zt := board.NewZobristTable(42)

	for d := 1; d <= *depth; d++ {
		b := board.NewBoard(zt, board.NewInitialPosition(), board.White)

		start := time.Now()
		nodes := perft(b, d, *divide && d == *depth)
		elapsed := time.Since(start)

		fmt.Printf("perft,%v,%v,%v\n", d, nodes, elapsed)
	}
}

func perft(b *board.Board, depth int, divide bool) uint64 {
	if depth == 0 {
		return 1
	}
	moves := board.GenerateAllMoves(b.Position(), b.Turn())
	if depth == 1 && !divide {
		return uint64(len(moves))
	}

	var nodes uint64
	for _, mv := range moves {
		m := mv
		board.Do(b, &m)
		count := perft(b, depth-1, false)
		board.Undo(b, &m)

		if divide {
			fmt.Printf("  %v: %v\n", m, count)
		}
		nodes += count
	}
	return nodes
}
