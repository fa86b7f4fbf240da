package search

import (
	"context"

	"github.com/sochima/shashki/pkg/board"
	"github.com/sochima/shashki/pkg/eval"
)

// Move-ordering bonuses, highest priority first: a transposition-table hint
// outranks a promotion, which outranks the counter-move reply, which
// outranks the two killer slots, with the history table breaking remaining
// ties.
const (
	ttMoveBonus          = 888888
	promotionBonus       = 888880
	counterMoveBonus     = 777777
	primaryKillerBonus   = 77777
	secondaryKillerBonus = 66666
)

// lmrMinRemaining is the remaining depth a node must exceed before its third
// and later moves are searched at a reduced depth ahead of a possible
// re-search (late move reduction); internal iterative deepening uses the
// same threshold.
const lmrMinRemaining = 3

// Negamax is a fixed-depth search driver: negamax with principal variation search,
// late move reductions, internal iterative deepening, and killer/history/
// counter-move ordering backed by a two-tier transposition table. One
// Negamax value is stateless and reusable; Search allocates a fresh
// Heuristics set (and therefore a fresh killer/history/counter-move table)
// per call, matching the "owned exclusively by one search call" lifetime
// this implementation specifies.
type Negamax struct {
	Eval eval.Evaluator
}

// Search runs one fixed-depth negamax search from b's current position,
// rooted at b.Turn(). b is mutated in place via board.Do/board.Undo during
// the search and is restored to its original value before Search returns
// (including on cancellation).
func (n Negamax) Search(ctx context.Context, sctx *Context, b *board.Board, depth int) (uint64, eval.Score, []board.Move, error) {
	ev := n.Eval
	if sctx.Eval != nil {
		ev = sctx.Eval
	}
	r := &runNegamax{
		ctx:  ctx,
		eval: ev,
		tt:   sctx.TT,
		h:    NewHeuristics(),
		quit: ctx.Done(),
	}

	score, pv := r.search(b, depth, 0, sctx.Alpha, sctx.Beta, true)
	if isClosed(r.quit) {
		return r.nodes, 0, nil, ErrHalted
	}
	return r.nodes, score, pv, nil
}

func isClosed(quit <-chan struct{}) bool {
	select {
	case <-quit:
		return true
	default:
		return false
	}
}

// runNegamax holds the per-call state a single top-level Search invocation
// owns: node counter, move-ordering heuristics, and the shared transposition
// table (safe for concurrent use by other searches; everything else here is
// not).
type runNegamax struct {
	ctx   context.Context
	eval  eval.Evaluator
	tt    TranspositionTable
	h     *Heuristics
	nodes uint64
	quit  <-chan struct{}
}

// search returns the score of the position from the perspective of the side
// to move (negamax convention), plus the principal variation from this node
// (best move first). remaining is the depth still to search; ply is the
// distance from the root, used to index the killer table and to bias mate
// scores by distance. iid gates internal iterative deepening so the
// hint-populating pre-search doesn't trigger IID again inside itself.
func (r *runNegamax) search(b *board.Board, remaining, ply int, alpha, beta eval.Score, iid bool) (eval.Score, []board.Move) {
	if isClosed(r.quit) {
		return 0, nil
	}
	r.nodes++

	moves := board.GenerateAllMoves(b.Position(), b.Turn())
	if len(moves) == 0 {
		// No legal move: the side to move has lost. Offset by remaining,
		// the convention "-MATE + remaining": a mate found closer to the
		// root (larger remaining) scores slightly less negative than one
		// found deeper in the tree.
		return -eval.Mate + eval.Score(remaining), nil
	}

	if remaining <= 0 {
		if moves[0].IsCapture() {
			// Quiescence-via-extension: resolve a forced capture sequence
			// past the nominal horizon rather than evaluating mid-exchange.
			remaining = 1
		} else {
			turn := b.Turn()
			score := eval.Unit(turn) * r.eval.Evaluate(r.ctx, b.Position(), turn)
			return score, nil
		}
	}

	var hint Hint
	if remaining > 1 {
		score, a, bt, h, cutoff := r.tt.Probe(b.Hash(), b.Turn(), ply, remaining, alpha, beta)
		if cutoff && ply > 0 {
			// Never cut off at the root: the caller needs a move, not just
			// a score.
			return score, nil
		}
		alpha, beta, hint = a, bt, h
	}

	if !hint.Valid && iid && len(moves) > 1 && remaining > lmrMinRemaining {
		// Internal iterative deepening: a shallow search exists only to
		// populate a transposition-table hint for move ordering below: its
		// own score and PV are discarded.
		r.search(b, remaining-3, ply, alpha, beta, false)
		if _, _, _, h, _ := r.tt.Probe(b.Hash(), b.Turn(), ply, maxDepth+1, alpha, beta); h.Valid {
			hint = h
		}
	}

	list := r.orderMoves(b, moves, hint, ply)

	origAlpha := alpha
	bestScore := eval.NegInf
	var bestMove board.Move
	var pv []board.Move
	cutoff := false

	for i := 0; ; i++ {
		m, ok := list.Next()
		if !ok {
			break
		}

		board.Do(b, &m)
		var score eval.Score
		var childPV []board.Move
		if i == 0 {
			score, childPV = r.search(b, remaining-1, ply+1, -beta, -alpha, iid)
			score = -score
		} else {
			score = alpha + 1
			if i > 1 && remaining > lmrMinRemaining && beta-alpha <= 1 {
				// Late move reduction: probe a late move at a reduced depth
				// first; only pay for a full-depth search if the reduced
				// probe beats alpha.
				score, _ = r.search(b, remaining-2, ply+1, -alpha-1, -alpha, iid)
				score = -score
			}
			if score > alpha {
				score, _ = r.search(b, remaining-1, ply+1, -alpha-1, -alpha, iid)
				score = -score
				if alpha < score && score < beta {
					score, childPV = r.search(b, remaining-1, ply+1, -beta, -alpha, iid)
					score = -score
				}
			}
		}
		board.Undo(b, &m)

		if isClosed(r.quit) {
			return bestScore, pv
		}

		if score > bestScore {
			bestScore = score
			bestMove = m
			pv = append([]board.Move{m}, childPV...)
		}
		if bestScore >= beta {
			r.h.AddKiller(ply, m)
			cutoff = true
			break
		}
		if score > alpha {
			alpha = score
			r.h.AddKiller(ply, m)
			r.h.AddHistory(remaining, m.From, m.To, false)
		}
	}

	r.h.AddHistory(remaining, bestMove.From, bestMove.To, true)
	prevFrom, prevTo := b.PrevMove()
	r.h.SetCounterMove(b.Turn(), prevFrom, prevTo, bestMove)

	bound := ExactBound
	switch {
	case cutoff:
		bound = LowerBound
	case bestScore <= origAlpha:
		bound = UpperBound
	}
	r.tt.Store(b.Hash(), b.Turn(), ply, remaining, bound, bestScore, bestMove)

	return bestScore, pv
}

// orderMoves scores every move by move-ordering heuristics and returns them as a
// priority queue (highest priority first via Next), backed by MoveList's
// heap.
func (r *runNegamax) orderMoves(b *board.Board, moves []board.Move, hint Hint, ply int) *MoveList {
	turn := b.Turn()
	prevFrom, prevTo := b.PrevMove()
	counter, hasCounter := r.h.CounterMove(turn, prevFrom, prevTo)
	primary, secondary, hasPrimary, hasSecondary := r.h.Killers(ply)

	return NewMoveList(moves, func(m board.Move) Priority {
		var p Priority
		if hint.Valid && hint.From == m.From && hint.To == m.To {
			p += ttMoveBonus
		}
		if m.Promotes(b.Position(), turn) {
			p += promotionBonus
		}
		if hasCounter && counter.From == m.From && counter.To == m.To {
			p += counterMoveBonus
		}
		if hasPrimary && primary.From == m.From && primary.To == m.To {
			p += primaryKillerBonus
		} else if hasSecondary && secondary.From == m.From && secondary.To == m.To {
			p += secondaryKillerBonus
		}
		p += Priority(r.h.History(m.From, m.To))
		return p
	})
}
