package eval

import (
	"context"
	"math/rand"

	"github.com/sochima/shashki/pkg/board"
)

// Random adds a small amount of noise to another evaluator's scores, useful
// for playing non-deterministically against itself without a full opening
// book. limit bounds the noise to [-limit/2;limit/2]; with a non-positive
// limit no noise is added and the wrapped evaluator's score is returned
// unchanged.
type Random struct {
	next  Evaluator
	rand  *rand.Rand
	limit int
}

func NewRandom(next Evaluator, limit int, seed int64) Random {
	return Random{
		next:  next,
		limit: limit,
		rand:  rand.New(rand.NewSource(seed)),
	}
}

// Limit returns the configured noise bound (see Random's doc comment).
func (n Random) Limit() int {
	return n.limit
}

func (n Random) Evaluate(ctx context.Context, pos *board.Position, turn board.Color) Score {
	var base Score
	if n.next != nil {
		base = n.next.Evaluate(ctx, pos, turn)
	}
	if n.limit <= 0 {
		return base
	}
	return base + Score(n.rand.Intn(n.limit)-n.limit/2)
}
