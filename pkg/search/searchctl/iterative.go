// Package searchctl implements the iterative-deepening harness built on
// top of a fixed-depth search.Search: aspiration windows, time control, and
// cancellation, launched against an exclusively-owned board.
package searchctl

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/seekerror/stdlib/pkg/util/contextx"
	"github.com/seekerror/stdlib/pkg/util/iox"
	"github.com/sochima/shashki/pkg/board"
	"github.com/sochima/shashki/pkg/eval"
	"github.com/sochima/shashki/pkg/search"
)

// Options hold dynamic options for one iterative-deepening search launch.
type Options struct {
	// DepthLimit, if set, stops iterative deepening at the given ply depth.
	DepthLimit lang.Optional[uint]
	// TimeControl, if set, bounds the search by wall-clock time.
	TimeControl lang.Optional[TimeControl]
}

func (o Options) String() string {
	var parts []string
	if v, ok := o.DepthLimit.V(); ok {
		parts = append(parts, fmt.Sprintf("depth=%v", v))
	}
	if v, ok := o.TimeControl.V(); ok {
		parts = append(parts, fmt.Sprintf("time=%v", v))
	}
	return fmt.Sprintf("[%v]", strings.Join(parts, ", "))
}

// Launcher starts an iterative-deepening search and streams a PV per
// completed depth.
type Launcher interface {
	// Launch a new search from the given position. It expects an exclusive
	// (forked) board and returns a PV channel for iteratively deeper
	// searches. If the search is exhausted, the channel is closed. The
	// search can be stopped at any time via the returned Handle.
	Launch(ctx context.Context, b *board.Board, tt search.TranspositionTable, noise eval.Random, opt Options) (Handle, <-chan search.PV)
}

// Handle lets the engine manage an in-flight search. The engine spins off
// searches against forked boards and halts/abandons them when no longer
// needed.
type Handle interface {
	// Halt halts the search, if running, and returns the last completed PV. Idempotent.
	Halt() search.PV
}

// aspirationHalfWidth is the initial aspiration window half-width: +-10*MATE
// is wide enough to never fail on the very first depth.
const aspirationHalfWidth = 10 * eval.Mate

// narrowMargin is how far past a successful search's score the next depth's
// aspiration window is set.
const narrowMargin = 100

// phase1HalfWidth is the first widening step after an aspiration miss, per
// a failed aspiration window.
const phase1HalfWidth = 2100

// Iterative is the iterative-deepening search harness: it drives Root at
// increasing depths, widening and re-centering an aspiration window around
// the previous depth's score, until cancelled, time runs out, a forced
// result is found within the search horizon, or only one legal move exists.
type Iterative struct {
	Root search.Search
}

func (i *Iterative) Launch(ctx context.Context, b *board.Board, tt search.TranspositionTable, noise eval.Random, opt Options) (Handle, <-chan search.PV) {
	out := make(chan search.PV, 1)
	h := &handle{
		init: iox.NewAsyncCloser(),
		quit: iox.NewAsyncCloser(),
	}
	go h.process(ctx, i.Root, b, tt, noise, opt, out)

	return h, out
}

type handle struct {
	init, quit iox.AsyncCloser

	pv search.PV
	mu sync.Mutex
}

func (h *handle) process(ctx context.Context, root search.Search, b *board.Board, tt search.TranspositionTable, noise eval.Random, opt Options, out chan search.PV) {
	defer h.init.Close()
	defer close(out)

	soft, useSoft := EnforceTimeControl(ctx, h, opt.TimeControl, b.Turn())

	wctx, cancel := contextx.WithQuitCancel(ctx, h.quit.Closed())
	defer cancel()

	legal := len(board.GenerateAllMoves(b.Position(), b.Turn()))

	var ev eval.Evaluator
	if noise.Limit() > 0 {
		ev = noise
	}

	alpha, beta := -aspirationHalfWidth, aspirationHalfWidth

	depth := 1
	for !h.quit.IsClosed() {
		start := time.Now()

		sctx := &search.Context{Alpha: alpha, Beta: beta, TT: tt, Eval: ev}
		nodes, score, moves, err := root.Search(wctx, sctx, b, depth)
		if err != nil {
			if err == search.ErrHalted {
				return // Halt was called.
			}
			logw.Errorf(ctx, "Search failed on %v at depth=%v: %v", b, depth, err)
			return
		}

		if score <= alpha || score >= beta {
			// Aspiration window missed: widen and re-search at the same
			// depth rather than advancing.
			if alpha > -phase1HalfWidth || beta < phase1HalfWidth {
				alpha, beta = -phase1HalfWidth, phase1HalfWidth
			} else {
				alpha, beta = eval.NegInf, eval.Inf
			}
			continue
		}

		pv := search.PV{
			Depth: depth,
			Nodes: nodes,
			Score: score,
			Moves: moves,
			Time:  time.Since(start),
		}
		if tt != nil {
			pv.Hash = tt.Used()
		}
		logw.Debugf(ctx, "Searched %v: %v", b.Position(), pv)

		// Narrow the window around this depth's score for the next
		// iteration.
		alpha, beta = score-narrowMargin, score+narrowMargin

		_, losingMate := eval.MateDistance(score)
		losingMate = losingMate && score < 0
		if !losingMate {
			// Don't let a newly discovered forced loss replace an
			// already-reported, less pessimistic PV.
			h.mu.Lock()
			h.pv = pv
			h.mu.Unlock()

			select {
			case <-out:
			default:
			}
			out <- pv
		}

		h.init.Close()

		if limit, ok := opt.DepthLimit.V(); ok && uint(depth) == limit {
			return // halt: reached max depth
		}
		if md, ok := eval.MateDistance(score); ok && md <= depth {
			return // halt: forced result (win or loss) found within full-width search
		}
		if legal == 1 {
			return // halt: no choice to deliberate over
		}
		if useSoft && soft < time.Since(start) {
			return // halt: exceeded soft time limit; do not start a new depth
		}
		depth++
	}
}

func (h *handle) Halt() search.PV {
	<-h.init.Closed()
	h.quit.Close()

	h.mu.Lock()
	defer h.mu.Unlock()

	return h.pv
}
