package eval

import (
	"fmt"

	"github.com/sochima/shashki/pkg/board"
)

// Score is a signed position or move score in centipawn-like units, positive
// favoring white, on a plain integer scale with a Mate constant well above
// any material total.
type Score int32

const (
	NegInf         = MinScore - 1
	MinScore Score = -1000000
	MaxScore Score = 1000000
	Inf            = MaxScore + 1

	// Mate is the base magnitude of a forced-mate score. A position that is
	// mate in d plies scores Mate-d (for the winning side) so that shorter
	// mates sort ahead of longer ones.
	Mate Score = 5000
)

func (s Score) String() string {
	return fmt.Sprintf("%d", int32(s))
}

// Unit returns the signed unit for the color: 1 for White and -1 for Black.
func Unit(c board.Color) Score {
	return Score(c.Unit())
}

// Crop clamps a score into [MinScore;MaxScore].
func Crop(s Score) Score {
	switch {
	case s > MaxScore:
		return MaxScore
	case s < MinScore:
		return MinScore
	default:
		return s
	}
}

// Max returns the largest of the given scores.
func Max(a, b Score) Score {
	if a < b {
		return b
	}
	return a
}

// Min returns the smallest of the given scores.
func Min(a, b Score) Score {
	if a < b {
		return a
	}
	return b
}

// MateIn returns the score for delivering mate in d plies from the current
// node (positive, favoring the side to move).
func MateIn(d int) Score {
	return Mate - Score(d)
}

// MatedIn returns the score for being mated in d plies from the current node
// (negative, disfavoring the side to move).
func MatedIn(d int) Score {
	return -Mate + Score(d)
}

// IsMateScore reports whether s represents a forced mate rather than a
// material/positional evaluation: its magnitude lies within 1000 of Mate.
// MateDistance builds on it.
func IsMateScore(s Score) bool {
	return s > Mate-1000 || s < -Mate+1000
}

// MateDistance returns the number of plies to a forced mate carried by s, if
// s is a mate score. The iterative deepener uses this to stop early once a
// mate has been found within the current search horizon.
func MateDistance(s Score) (int, bool) {
	if !IsMateScore(s) {
		return 0, false
	}
	if s > 0 {
		return int(Mate - s), true
	}
	return int(Mate + s), true
}
