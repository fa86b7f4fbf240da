// Package eval contains position evaluation logic and utilities.
package eval

import (
	"context"

	"github.com/sochima/shashki/pkg/board"
)

// Evaluator is a static position evaluator. It returns a score in the
// absolute (white-favoring) convention: positive is good for white,
// regardless of whose turn it is. Mate detection is the search driver's
// responsibility, not the evaluator's -- Evaluate never special-cases a
// material wipeout or a position with no legal moves.
type Evaluator interface {
	Evaluate(ctx context.Context, pos *board.Position, turn board.Color) Score
}

// Material is the nominal material balance: men worth 1, kings worth 3 (the
// conventional draughts ratio, distinct from the full Heuristic's 200/500 scale).
type Material struct{}

func (Material) Evaluate(ctx context.Context, pos *board.Position, turn board.Color) Score {
	wMen, wKings := pos.Material(board.White)
	bMen, bKings := pos.Material(board.Black)
	return Score((wMen - bMen) + 3*(wKings-bKings))
}

// centerSquares are the four squares at the heart of the board each side's
// men fight over: rows three and four from each side's own back rank, where
// a man both supports its own advance and denies the opponent's.
var (
	whiteCenter = [4]board.Square{9, 10, 13, 14}
	blackCenter = [4]board.Square{17, 18, 21, 22}
)

// edgeSquares are the left/right file squares where a man's mobility is
// permanently halved (no diagonal neighbor off one side of the board).
var edgeSquares = [6]board.Square{4, 11, 12, 19, 20, 27}

// backRankTable maps a 4-bit occupancy code of a side's own back rank (MSB
// is the rank's first square, LSB its last; a bit is set iff the square
// still holds a man) to a structural integrity bonus. The table rewards
// keeping the "golden checker" squares occupied over the outer ones.
var backRankTable = [16]Score{0, -1, 1, 0, 3, 3, 3, 3, 1, 1, 2, 2, 4, 4, 9, 8}

// Heuristic is the full positional evaluator: material, favorable-exchange
// pressure, tempo, side-to-side balance, king asymmetry, back-rank
// integrity, center control, edge-man penalties and four named anchor
// squares (c5/f6/e5/d6 in draughts notation). Every term is mirror-paired
// by color and square under Position.Mirror's s -> 31-s reflection, so
// evaluate(S, white) == -evaluate(mirror(S), black) holds exactly.
type Heuristic struct{}

func (Heuristic) Evaluate(ctx context.Context, pos *board.Position, turn board.Color) Score {
	wMen, wKings := pos.Material(board.White)
	bMen, bKings := pos.Material(board.Black)

	v1 := 200*wMen + 500*wKings
	v2 := 200*bMen + 500*bKings

	score := Score(v1 - v2)
	if v1+v2 > 0 {
		score += Score(400*(v1-v2)) / Score(v1+v2)
	}

	// Tempo: the side to move gets a small bonus.
	score += Score(turn.Unit()) * 3

	// Side-to-side balance: a side that concentrates men on one half of the
	// board is penalized relative to one that's split evenly.
	wLeft, wRight := sideSplit(pos, board.White)
	bLeft, bRight := sideSplit(pos, board.Black)
	score -= Score(abs(wLeft-wRight)) * 2
	score += Score(abs(bLeft-bRight)) * 2

	// King asymmetry: having the only king(s) on the board is a large swing.
	switch {
	case wKings > 0 && bKings == 0:
		score += 500
	case bKings > 0 && wKings == 0:
		score -= 500
	}

	score += 3 * backRankBalance(pos)

	for _, s := range whiteCenter {
		if pos.At(s) == board.WhiteMan {
			score += 2
		}
	}
	for _, s := range blackCenter {
		if pos.At(s) == board.BlackMan {
			score -= 2
		}
	}

	for _, s := range edgeSquares {
		switch pos.At(s) {
		case board.WhiteMan:
			score -= 2
		case board.BlackMan:
			score += 2
		}
	}

	score += anchorSquareBonus(pos)

	return score
}

// sideSplit counts color c's men on the board's left half (columns 0-3) and
// right half (columns 4-7).
func sideSplit(pos *board.Position, c board.Color) (left, right int) {
	for s := board.ZeroSquare; s < board.NumSquares; s++ {
		p := pos.At(s)
		if p != board.NewPiece(c, false) {
			continue
		}
		if s.Col() < 4 {
			left++
		} else {
			right++
		}
	}
	return
}

// backRankBalance scores the structural integrity of each side's own back
// rank (squares 0..3 for white, 28..31 for black), then nets white's rank
// against black's. A man of either color counts, but in practice only the
// owner's men can sit on a back rank un-crowned -- an opponent man landing
// there is promoted to a king on arrival.
func backRankBalance(pos *board.Position) Score {
	white := rankOccupancy(pos, 0, 1, 2, 3)
	black := rankOccupancy(pos, 31, 30, 29, 28)
	return backRankTable[white] - backRankTable[black]
}

// rankOccupancy reads the 4-bit mask MSB first: the first square listed is
// the high bit.
func rankOccupancy(pos *board.Position, msbToLsb ...board.Square) int {
	code := 0
	for i, s := range msbToLsb {
		if pos.At(s).IsMan() {
			code |= 1 << uint(len(msbToLsb)-1-i)
		}
	}
	return code
}

// anchorSquareBonus scores the four named anchor squares, c5/d6/e5/f6 in
// draughts board notation, each expressed as a mirror pair of square
// indices (13<->18, 9<->22, 17<->14, 10<->21 under s -> 31-s) so the term
// stays color-symmetric. The premiums reward a man holding an advanced
// anchor past the midline; the e5 pair flips sign once total material
// drops below a midgame threshold.
func anchorSquareBonus(pos *board.Position) Score {
	var score Score

	// c5 pair (square 18 for white, square 13 for black), with a deduction
	// when the next dark square along the anchor's own row (19 / 12) is
	// left open.
	if pos.At(18) == board.WhiteMan {
		score += 9
		if pos.IsEmpty(19) {
			score -= 5
		}
	}
	if pos.At(13) == board.BlackMan {
		score -= 9
		if pos.IsEmpty(12) {
			score += 5
		}
	}

	// f6 pair (square 21 / square 10).
	if pos.At(21) == board.WhiteMan {
		score += 7
	}
	if pos.At(10) == board.BlackMan {
		score -= 7
	}

	// e5 pair (square 17 / square 14) -- a liability in the opening, an
	// asset once the board empties out.
	total := 0
	for s := board.ZeroSquare; s < board.NumSquares; s++ {
		if !pos.IsEmpty(s) {
			total++
		}
	}
	if pos.At(17) == board.WhiteMan {
		if total > 16 {
			score -= 3
		} else {
			score += 3
		}
	}
	if pos.At(14) == board.BlackMan {
		if total > 16 {
			score += 3
		} else {
			score -= 3
		}
	}

	// d6 pair (square 22 / square 9).
	if pos.At(22) == board.WhiteMan {
		score += 7
	}
	if pos.At(9) == board.BlackMan {
		score -= 7
	}

	return score
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
