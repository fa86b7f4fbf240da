package board_test

import (
	"testing"

	"github.com/sochima/shashki/pkg/board"
	"github.com/stretchr/testify/assert"
)

func sq(t *testing.T, row, col int) board.Square {
	t.Helper()
	s, ok := board.SquareAt(row, col)
	assert.True(t, ok, "expected a dark square at (%d,%d)", row, col)
	return s
}

func TestInitialPositionQuietMoves(t *testing.T) {
	pos := board.NewInitialPosition()

	// From the initial position black has no capture and exactly the men on
	// the row adjacent to the empty middle can step forward.
	moves := board.GenerateAllMoves(pos, board.Black)
	assert.Len(t, moves, 7)
	for _, m := range moves {
		assert.False(t, m.IsCapture())
	}

	white := board.GenerateAllMoves(pos, board.White)
	assert.Len(t, white, 7)
}

// TestQuietMoveIllegalWhenBlocked checks that a quiet move onto an occupied
// square, or one requiring backward motion for a man, is never generated.
func TestQuietMoveIllegalWhenBlocked(t *testing.T) {
	pos := board.NewInitialPosition()
	moves := board.GenerateQuietMoves(pos, board.White)

	for _, m := range moves {
		assert.True(t, pos.At(m.From).Color() == board.White)
		assert.True(t, pos.IsEmpty(m.To))
	}
}

// TestManCaptureMandatoryOverQuiet is Property 4: a position with both a
// capture and a quiet move available must only generate the capture.
func TestManCaptureMandatoryOverQuiet(t *testing.T) {
	pos := board.NewEmptyPosition()
	from := sq(t, 2, 3)
	captured := sq(t, 3, 4)
	landing := sq(t, 4, 5)
	pos.Set(from, board.WhiteMan)
	pos.Set(captured, board.BlackMan)
	// An unrelated quiet move is also available elsewhere on the board.
	elsewhere := sq(t, 2, 1)
	pos.Set(elsewhere, board.WhiteMan)

	moves := board.GenerateAllMoves(pos, board.White)
	assert.Len(t, moves, 1)
	assert.True(t, moves[0].IsCapture())
	assert.Equal(t, from, moves[0].From)
	assert.Equal(t, landing, moves[0].To)
}

// TestManSingleCaptureTerminates verifies a lone capture with no further
// targets is returned as a length-1 chain and nothing beyond it.
func TestManSingleCaptureTerminates(t *testing.T) {
	pos := board.NewEmptyPosition()
	from := sq(t, 2, 3)
	enemy := sq(t, 3, 4)
	landing := sq(t, 4, 5)
	pos.Set(from, board.WhiteMan)
	pos.Set(enemy, board.BlackMan)

	moves := board.GenerateCaptures(pos, board.White)
	assert.Len(t, moves, 1)
	assert.Equal(t, landing, moves[0].To)
	assert.Equal(t, 1, moves[0].Len())
}

// TestManCaptureCannotRecaptureSameJustVacatedPiece checks that a chain
// cannot be extended back over the piece it just captured: once a piece is
// removed from the board it is not a legal recapture target, even along the
// same diagonal the chain arrived from.
func TestManCaptureCannotRecaptureSameJustVacatedPiece(t *testing.T) {
	pos := board.NewEmptyPosition()
	from := sq(t, 2, 3)
	enemy := sq(t, 3, 4)
	pos.Set(from, board.WhiteMan)
	pos.Set(enemy, board.BlackMan)

	moves := board.GenerateCaptures(pos, board.White)
	assert.Len(t, moves, 1)
	for _, m := range moves {
		for _, j := range m.Jumps {
			assert.NotEqual(t, enemy, j.From, "chain must not revisit the already-captured square")
		}
	}
}

// TestKingCaptureCannotReverseThroughVacatedSquare is the king-side
// counterpart of TestManCaptureCannotRecaptureSameJustVacatedPiece: a
// square the chain has already departed must terminate a ray scan even
// though it is empty on the working board. White king on 14, black men on
// 18 and 9: after 14 x 23 (over 18) the ray back from 23 runs through the
// vacated origin 14 straight to the man on 9; a king may not reverse
// through its own trail to take it. Every chain here must therefore stop
// after a single jump, and no chain may capture a piece that was only
// reachable across a vacated square.
func TestKingCaptureCannotReverseThroughVacatedSquare(t *testing.T) {
	pos := board.NewEmptyPosition()
	pos.Set(14, board.WhiteKing)
	pos.Set(18, board.BlackMan)
	pos.Set(9, board.BlackMan)

	moves := board.GenerateCaptures(pos, board.White)
	// Two landings past each of the two capturable men: 14x23 and 14x27
	// over 18, 14x5 and 14x0 over 9.
	assert.Len(t, moves, 4)

	for _, m := range moves {
		assert.Equal(t, 1, m.Len(), "chain %v extends back across the king's own trail", m)

		vacated := map[board.Square]bool{}
		for _, j := range m.Jumps {
			assert.False(t, vacated[j.Captured], "chain %v captures on already-vacated square %v", m, j.Captured)
			vacated[j.From] = true
		}
	}
}

// TestManChainMidChainPromotion verifies a man crossing the opponent's back
// rank mid-chain is crowned and continues capturing under king rules for the
// remainder of the chain (mid-chain promotion). The chain
// is: man jumps NW twice along one diagonal (no promotion after the first
// jump), the second jump lands in white's back rank / black's promotion zone
// (squares 0..3) and crowns the piece, which then continues as a king along
// the other diagonal through its landing square, taking a piece two squares
// away that a man could not reach.
func TestManChainMidChainPromotion(t *testing.T) {
	pos := board.NewEmptyPosition()
	start := sq(t, 4, 7)  // black man
	enemy1 := sq(t, 3, 6) // white piece, captured first
	mid1 := sq(t, 2, 5)   // landing after jump 1 -- not a promotion square
	enemy2 := sq(t, 1, 4) // white piece, captured second
	land2 := sq(t, 0, 3)  // promotion-zone landing -- square 1, triggers crowning
	enemy3 := sq(t, 2, 1) // white piece, captured third (as a flying king, different ray)
	land3 := sq(t, 3, 0)

	pos.Set(start, board.BlackMan)
	pos.Set(enemy1, board.WhiteMan)
	pos.Set(enemy2, board.WhiteMan)
	pos.Set(enemy3, board.WhiteMan)

	moves := board.GenerateCaptures(pos, board.Black)
	assert.NotEmpty(t, moves)

	found := false
	for _, m := range moves {
		if m.Len() == 3 {
			found = true
			assert.Equal(t, start, m.From)
			assert.Equal(t, mid1, m.Jumps[0].To)
			assert.Equal(t, land2, m.Jumps[1].To)
			assert.Equal(t, land3, m.Jumps[2].To)
			assert.Equal(t, enemy3, m.Jumps[2].Captured)
		}
	}
	assert.True(t, found, "expected a three-jump chain promoting at %v and continuing to capture %v", land2, enemy3)
}

// TestFlyingKingCapturesAtDistance verifies a king can capture a piece many
// squares away and land on any empty square beyond it, then continue into a
// second capture along the same ray (king
// capturing two pieces in sequence with free choice of landing square).
func TestFlyingKingCapturesAtDistance(t *testing.T) {
	pos := board.NewEmptyPosition()
	kingSq := sq(t, 0, 1)
	enemy1 := sq(t, 2, 3)
	land1 := sq(t, 3, 4)
	enemy2 := sq(t, 4, 5)

	pos.Set(kingSq, board.WhiteKing)
	pos.Set(enemy1, board.BlackMan)
	pos.Set(enemy2, board.BlackMan)

	moves := board.GenerateCaptures(pos, board.White)
	assert.NotEmpty(t, moves)

	// Every generated chain must start at kingSq, capture enemy1 at land1,
	// then continue past enemy2 onto one of its open landings.
	sawChain := false
	for _, m := range moves {
		if m.Len() < 2 {
			continue
		}
		if m.From == kingSq && m.Jumps[0].Captured == enemy1 && m.Jumps[0].To == land1 {
			sawChain = true
			assert.Equal(t, enemy2, m.Jumps[1].Captured)
		}
	}
	assert.True(t, sawChain)
}

// TestCaptureMaximality is Property 3: no move returned by GenerateCaptures
// can be extended by a further sub-jump from its terminal square.
func TestCaptureMaximality(t *testing.T) {
	pos := board.NewEmptyPosition()
	from := sq(t, 2, 3)
	enemy1 := sq(t, 3, 4)
	enemy2 := sq(t, 5, 6)
	land2 := sq(t, 6, 7)

	pos.Set(from, board.WhiteMan)
	pos.Set(enemy1, board.BlackMan)
	pos.Set(enemy2, board.BlackMan)

	moves := board.GenerateCaptures(pos, board.White)
	assert.NotEmpty(t, moves)
	for _, m := range moves {
		if m.Len() == 2 {
			assert.Equal(t, land2, m.To)
		}
	}

	for _, m := range moves {
		work := pos.Clone()
		for _, j := range m.Jumps {
			work.Set(j.From, board.Empty)
			work.Set(j.Captured, board.Empty)
			piece := board.NewPiece(board.White, j.To.IsPromotionFor(board.White))
			work.Set(j.To, piece)
		}
		further := board.GenerateCaptures(work, board.White)
		for _, f := range further {
			assert.NotEqual(t, m.To, f.From, "chain %v extendable by %v", m, f)
		}
	}
}
