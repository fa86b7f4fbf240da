// Package search contains the negamax/PVS search driver, its supporting
// move-ordering heuristics, the two-tier transposition table, and the
// iterative-deepening harness built on top of them (pkg/search/searchctl).
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sochima/shashki/pkg/board"
	"github.com/sochima/shashki/pkg/eval"
)

// ErrHalted indicates a search was cancelled via its context before finishing.
var ErrHalted = errors.New("search halted")

// Context carries the per-call parameters a Search implementation reads: the
// aspiration window in effect, the transposition table to consult, and the
// evaluator to call at horizon leaves. Rebuilt fresh for every depth by the
// iterative deepener so that window widening never leaks from one depth into
// the next. Eval is optional -- a Search implementation falls back to
// whatever evaluator it was constructed with if Eval is nil, which lets most
// callers (tests, perft-adjacent tools) omit it entirely.
type Context struct {
	Alpha, Beta eval.Score
	TT          TranspositionTable
	Eval        eval.Evaluator
}

// Search runs a single fixed-depth search from the given board and returns
// the node count, score, and principal variation (best move first).
type Search interface {
	Search(ctx context.Context, sctx *Context, b *board.Board, depth int) (nodes uint64, score eval.Score, pv []board.Move, err error)
}

// PV represents the principal variation found at some search depth.
type PV struct {
	Depth int
	Moves []board.Move
	Score eval.Score
	Nodes uint64
	Time  time.Duration
	Hash  float64 // transposition table utilization, [0;1]
}

func (p PV) String() string {
	return fmt.Sprintf("depth=%v score=%v nodes=%v time=%v pv=%v", p.Depth, p.Score, p.Nodes, p.Time, board.PrintMoves(p.Moves))
}

// Options, Launcher and Handle -- the iterative-deepening harness built on
// top of a Search implementation -- live in pkg/search/searchctl, not here:
// this package only defines the single fixed-depth Search contract and its
// supporting types (PV, Context).
