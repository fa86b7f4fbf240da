package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/seekerror/logw"
	"github.com/sochima/shashki/pkg/engine"
	"github.com/sochima/shashki/pkg/engine/console"
	"github.com/sochima/shashki/pkg/engine/hostproto"
	"github.com/sochima/shashki/pkg/eval"
	"github.com/sochima/shashki/pkg/search"
)

var (
	depth = flag.Uint("depth", 0, "Search depth limit (zero for no limit)")
	hash  = flag.Uint("hash", 64, "Transposition table size in MB (zero disables it)")
	noise = flag.Uint("noise", 10, "Evaluation noise in centipawns (zero if deterministic)")
)

func init() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `usage: shashki [options]

shashki is a Russian draughts engine.
Options:
`)
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	ctx := context.Background()

	s := search.Negamax{Eval: eval.Heuristic{}}
	e := engine.New(ctx, "shashki", "sochima", s, engine.WithOptions(engine.Options{
		Depth: *depth,
		Hash:  *hash,
		Noise: *noise,
	}), engine.WithZobrist(time.Now().UnixNano()))

	in := engine.ReadStdinLines(ctx)
	switch <-in {
	case hostproto.ProtocolName:
		driver, out := hostproto.NewDriver(ctx, e, in)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	case console.ProtocolName:
		driver, out := console.NewDriver(ctx, e, in)
		go engine.WriteStdoutLines(ctx, out)

		<-driver.Closed()

	default:
		flag.Usage()
		logw.Exitf(ctx, "Protocol not supported")
	}
}
