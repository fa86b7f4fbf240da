package eval_test

import (
	"context"
	"testing"

	"github.com/sochima/shashki/pkg/board"
	"github.com/sochima/shashki/pkg/eval"
	"github.com/stretchr/testify/assert"
)

// TestHeuristicSymmetry checks evaluate(S, white) == -evaluate(mirror(S), black)
// for a handful of positions, including the initial one -- the defining
// correctness property of an absolute, color-blind evaluator.
func TestHeuristicSymmetry(t *testing.T) {
	h := eval.Heuristic{}
	ctx := context.Background()

	positions := []*board.Position{
		board.NewInitialPosition(),
		lopsided(),
		withKings(),
	}

	for _, pos := range positions {
		mirrored := pos.Mirror()
		white := h.Evaluate(ctx, pos, board.White)
		black := h.Evaluate(ctx, mirrored, board.Black)
		assert.Equal(t, white, -black)
	}
}

func lopsided() *board.Position {
	pos := board.NewEmptyPosition()
	pos.Set(0, board.WhiteMan)
	pos.Set(1, board.WhiteMan)
	pos.Set(5, board.WhiteMan)
	pos.Set(30, board.BlackMan)
	return pos
}

func withKings() *board.Position {
	pos := board.NewEmptyPosition()
	pos.Set(13, board.WhiteMan)
	pos.Set(9, board.WhiteMan)
	pos.Set(0, board.WhiteKing)
	pos.Set(18, board.BlackMan)
	pos.Set(22, board.BlackMan)
	return pos
}

func TestMaterialEvaluator(t *testing.T) {
	m := eval.Material{}
	ctx := context.Background()
	pos := board.NewInitialPosition()

	assert.Equal(t, eval.Score(0), m.Evaluate(ctx, pos, board.White))

	pos.Set(0, board.Empty)
	assert.Equal(t, eval.Score(-1), m.Evaluate(ctx, pos, board.White))
}

func TestHeuristicFavorsMaterialAdvantage(t *testing.T) {
	h := eval.Heuristic{}
	ctx := context.Background()

	pos := board.NewEmptyPosition()
	pos.Set(0, board.WhiteKing)
	pos.Set(31, board.BlackMan)

	assert.True(t, h.Evaluate(ctx, pos, board.White) > 0)
}

func TestRandomEvaluatorZeroLimitIsDeterministic(t *testing.T) {
	base := eval.Material{}
	r := eval.NewRandom(base, 0, 1)
	ctx := context.Background()
	pos := board.NewInitialPosition()

	assert.Equal(t, base.Evaluate(ctx, pos, board.White), r.Evaluate(ctx, pos, board.White))
}
