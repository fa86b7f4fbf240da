package board_test

import (
	"testing"

	"github.com/sochima/shashki/pkg/board"
	"github.com/stretchr/testify/assert"
)

func newTestBoard(pos *board.Position, turn board.Color) *board.Board {
	zt := board.NewZobristTable(7)
	return board.NewBoard(zt, pos, turn)
}

// TestDoUndoQuietMove checks that applying and undoing a quiet move restores
// the board bit-identically: position, key, side to move and prev-move.
func TestDoUndoQuietMove(t *testing.T) {
	pos := board.NewInitialPosition()
	b := newTestBoard(pos, board.White)

	beforeKey := b.Hash()
	beforePos := pos.Clone()

	m := &board.Move{Kind: board.Quiet, From: 9, To: 13}
	board.Do(b, m)

	assert.Equal(t, board.Black, b.Turn())
	assert.NotEqual(t, beforeKey, b.Hash())
	assert.True(t, pos.IsEmpty(9))
	assert.Equal(t, board.WhiteMan, pos.At(13))

	board.Undo(b, m)

	assert.Equal(t, board.White, b.Turn())
	assert.Equal(t, beforeKey, b.Hash())
	assert.Equal(t, *beforePos, *pos)
}

// TestDoUndoQuietPromotion checks a man crowned by a quiet move demotes back
// on undo.
func TestDoUndoQuietPromotion(t *testing.T) {
	pos := board.NewEmptyPosition()
	pos.Set(24, board.WhiteMan)
	b := newTestBoard(pos, board.White)
	beforePos := pos.Clone()

	m := &board.Move{Kind: board.Quiet, From: 24, To: 28}
	board.Do(b, m)
	assert.Equal(t, board.WhiteKing, pos.At(28))

	board.Undo(b, m)
	assert.Equal(t, *beforePos, *pos)
	assert.Equal(t, board.WhiteMan, pos.At(24))
}

// TestDoUndoCaptureChain checks a multi-jump capture chain, including mid-
// chain promotion, fully restores on undo.
func TestDoUndoCaptureChain(t *testing.T) {
	pos := board.NewEmptyPosition()
	pos.Set(9, board.WhiteMan)
	pos.Set(13, board.BlackMan)
	pos.Set(21, board.BlackMan)
	b := newTestBoard(pos, board.White)
	beforePos := pos.Clone()
	beforeKey := b.Hash()

	// 9 x 16 (SW over 13), then 16 x 25 (SE over 21) -- a two-jump chain
	// changing direction partway, without promotion.
	m := &board.Move{
		Kind: board.CaptureChain,
		From: 9,
		To:   25,
		Jumps: []board.Jump{
			{From: 9, Captured: 13, To: 16},
			{From: 16, Captured: 21, To: 25},
		},
	}
	board.Do(b, m)

	assert.True(t, pos.IsEmpty(9))
	assert.True(t, pos.IsEmpty(13))
	assert.True(t, pos.IsEmpty(21))
	assert.Equal(t, board.WhiteMan, pos.At(25))
	assert.Equal(t, board.Black, b.Turn())

	board.Undo(b, m)

	assert.Equal(t, *beforePos, *pos)
	assert.Equal(t, board.White, b.Turn())
	assert.Equal(t, beforeKey, b.Hash())
}

// TestDoUndoPrevMoveRestored checks that the (prev_from, prev_to) pair used
// by the counter-move heuristic is restored across Undo.
func TestDoUndoPrevMoveRestored(t *testing.T) {
	pos := board.NewInitialPosition()
	b := newTestBoard(pos, board.White)

	first := &board.Move{Kind: board.Quiet, From: 9, To: 13}
	board.Do(b, first)
	from1, to1 := b.PrevMove()

	second := &board.Move{Kind: board.Quiet, From: 20, To: 16}
	board.Do(b, second)

	board.Undo(b, second)
	from2, to2 := b.PrevMove()
	assert.Equal(t, from1, from2)
	assert.Equal(t, to1, to2)
}
