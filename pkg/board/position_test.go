package board_test

import (
	"testing"

	"github.com/sochima/shashki/pkg/board"
	"github.com/stretchr/testify/assert"
)

func TestNewInitialPositionMaterial(t *testing.T) {
	pos := board.NewInitialPosition()

	wMen, wKings := pos.Material(board.White)
	assert.Equal(t, 12, wMen)
	assert.Equal(t, 0, wKings)

	bMen, bKings := pos.Material(board.Black)
	assert.Equal(t, 12, bMen)
	assert.Equal(t, 0, bKings)

	assert.True(t, pos.HasAnyPieces(board.White))
	assert.True(t, pos.HasAnyPieces(board.Black))
}

func TestPositionCloneIsIndependent(t *testing.T) {
	pos := board.NewInitialPosition()
	clone := pos.Clone()

	clone.Set(0, board.Empty)
	assert.Equal(t, board.WhiteMan, pos.At(0))
	assert.True(t, clone.IsEmpty(0))
}

// TestPositionMirrorIsInvolution checks mirroring twice returns the original
// position -- required for the evaluator's symmetry property to compose.
func TestPositionMirrorIsInvolution(t *testing.T) {
	pos := board.NewInitialPosition()
	twice := pos.Mirror().Mirror()

	for s := board.ZeroSquare; s < board.NumSquares; s++ {
		assert.Equal(t, pos.At(s), twice.At(s))
	}
}

// TestPositionMirrorSwapsColorAndSide checks the mirror reflects squares
// end-to-end and swaps piece color, so white's material at s equals black's
// material at the mirrored square.
func TestPositionMirrorSwapsColorAndSide(t *testing.T) {
	pos := board.NewEmptyPosition()
	pos.Set(0, board.WhiteKing)
	mirrored := pos.Mirror()

	assert.Equal(t, board.BlackKing, mirrored.At(board.NumSquares-1))
	assert.True(t, mirrored.IsEmpty(0))
}

func TestHasAnyPiecesFalseOnEmptySide(t *testing.T) {
	pos := board.NewEmptyPosition()
	pos.Set(0, board.WhiteMan)

	assert.True(t, pos.HasAnyPieces(board.White))
	assert.False(t, pos.HasAnyPieces(board.Black))
}
