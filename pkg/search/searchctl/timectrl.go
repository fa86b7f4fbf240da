package searchctl

import (
	"context"
	"fmt"
	"time"

	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/sochima/shashki/pkg/board"
)

// TimeControl represents time control information for one side of a game.
type TimeControl struct {
	White, Black time.Duration
	Moves        int // 0 == rest of game
}

// Limits returns a soft and hard limit for making a move with the given
// color to move. The iterative deepener does not start a new depth once the
// depth it just finished took longer than the soft limit; the hard limit is
// an absolute cutoff enforced by a timer firing Halt.
func (t TimeControl) Limits(c board.Color) (soft, hard time.Duration) {
	remainder := t.White
	if c == board.Black {
		remainder = t.Black
	}

	// Assume 40 moves to end the game if nothing else is known. Let
	// B = T/80 be the soft timeout and the hard timeout be 3B.
	moves := time.Duration(40)
	if t.Moves > 0 {
		moves = time.Duration(t.Moves) + 1
	}

	soft = remainder / (2 * moves)
	hard = 3 * soft
	return soft, hard
}

func (t TimeControl) String() string {
	if t.Moves == 0 {
		return fmt.Sprintf("%.1f<>%.1f", t.White.Seconds(), t.Black.Seconds())
	}
	return fmt.Sprintf("%.1f<>%.1f[moves=%v]", t.White.Seconds(), t.Black.Seconds(), t.Moves)
}

// EnforceTimeControl arms the hard-limit timer (which calls h.Halt once it
// fires) and returns the soft limit the iterative deepener itself checks
// between depths, if a time control is set.
func EnforceTimeControl(ctx context.Context, h Handle, tc lang.Optional[TimeControl], turn board.Color) (time.Duration, bool) {
	c, ok := tc.V()
	if !ok {
		return 0, false
	}

	soft, hard := c.Limits(turn)
	timer := time.AfterFunc(hard, func() {
		h.Halt()
	})
	go func() {
		<-ctx.Done()
		timer.Stop()
	}()

	logw.Debugf(ctx, "Time control limits for %v: [%v; %v]", c, soft, hard)
	return soft, true
}
