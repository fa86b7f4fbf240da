package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sochima/shashki/pkg/board"
	"github.com/sochima/shashki/pkg/eval"
	"github.com/sochima/shashki/pkg/search"
)

func TestHostBoardRoundTrip(t *testing.T) {
	pos := board.NewInitialPosition()

	hb := fromPosition(pos)
	got := toPosition(hb)

	for s := board.ZeroSquare; s < board.NumSquares; s++ {
		assert.Equal(t, pos.At(s), got.At(s), "square %v", s)
	}
}

func TestIsLegalMatchesGenerator(t *testing.T) {
	ctx := context.Background()
	s := search.Negamax{Eval: eval.Heuristic{}}
	e := New(ctx, "test", "suite", s)

	hb := fromPosition(board.NewInitialPosition())

	moves := board.GenerateAllMoves(board.NewInitialPosition(), board.White)
	require.NotEmpty(t, moves)

	m := moves[0]
	hm, ok := e.IsLegal(hb, board.White, m.From.Notation(), m.To.Notation())
	assert.True(t, ok)
	assert.Equal(t, m.From.Notation(), hm.From)
	assert.Equal(t, m.To.Notation(), hm.To)

	// A pair whose destination is its own origin can never be legal.
	_, ok = e.IsLegal(hb, board.White, m.From.Notation(), m.From.Notation())
	assert.False(t, ok)
}

func TestGetMoveReturnsALegalMove(t *testing.T) {
	ctx := context.Background()
	s := search.Negamax{Eval: eval.Heuristic{}}
	e := New(ctx, "test", "suite", s, WithOptions(Options{Depth: 2}))

	hb := fromPosition(board.NewInitialPosition())

	hm, progress, result, err := e.GetMove(ctx, hb, board.White, 2*time.Second, nil)
	require.NoError(t, err)
	assert.NotEmpty(t, progress)
	assert.Equal(t, board.Unknown, result)

	_, ok := e.IsLegal(fromPosition(board.NewInitialPosition()), board.White, hm.From, hm.To)
	assert.True(t, ok)
}
