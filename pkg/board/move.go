package board

import (
	"fmt"
	"strings"
)

// MoveKind distinguishes a single quiet step from a capture chain.
type MoveKind uint8

const (
	Quiet MoveKind = iota
	CaptureChain
)

// Jump is a single sub-jump within a capture chain: a piece leaves From,
// removes the opponent piece on Captured, and lands on To.
type Jump struct {
	From, Captured, To Square
}

// Move is either a quiet move (From->To) or a capture chain (an ordered list
// of Jumps, 1..10 long). A Move additionally carries undo state populated by
// the mutator on Do and consumed by Undo: the captured piece encodings (so
// they can be restored), whether the moving piece was promoted, and the
// previous Zobrist key and (prev_from, prev_to) pair. A Move is therefore
// stateful between Do and Undo and must not be shared across goroutines or
// reused without being re-generated.
type Move struct {
	Kind     MoveKind
	From, To Square
	Jumps    []Jump

	captured         []Piece
	promoted         bool
	promotedAt       int // index into Jumps where the man was crowned, if promoted
	prevKey          ZobristHash
	prevFrom, prevTo Square
}

// IsCapture reports whether the move is a capture chain.
func (m Move) IsCapture() bool {
	return m.Kind == CaptureChain
}

// Len returns the number of sub-jumps in a capture chain (0 for a quiet move).
func (m Move) Len() int {
	return len(m.Jumps)
}

// Promotes reports whether applying m to pos (with turn to move) would crown
// a man, either by a quiet step onto the opponent's back rank or by any
// sub-jump of a capture chain landing there -- the rule that matters for
// move ordering, where a promoting move is worth preferring regardless of
// whether the chain continues past the crowning square as a king afterward.
func (m Move) Promotes(pos *Position, turn Color) bool {
	if !pos.At(m.From).IsMan() {
		return false
	}
	if m.Kind == Quiet {
		return m.To.IsPromotionFor(turn)
	}
	for _, j := range m.Jumps {
		if j.To.IsPromotionFor(turn) {
			return true
		}
	}
	return false
}

// Equals compares two moves by their visible (non-undo-state) fields.
func (m Move) Equals(o Move) bool {
	if m.Kind != o.Kind || m.From != o.From || m.To != o.To || len(m.Jumps) != len(o.Jumps) {
		return false
	}
	for i := range m.Jumps {
		if m.Jumps[i] != o.Jumps[i] {
			return false
		}
	}
	return true
}

// String formats the move in the host notation: "<from> - <to>" for a quiet
// move, "<s0> x <s1> x <s2> ..." for a capture chain (1-based square numbers).
func (m Move) String() string {
	if m.Kind == Quiet {
		return fmt.Sprintf("%v - %v", m.From, m.To)
	}

	var sb strings.Builder
	sb.WriteString(m.From.String())
	for _, j := range m.Jumps {
		sb.WriteString(" x ")
		sb.WriteString(j.To.String())
	}
	return sb.String()
}

// PrintMoves formats a sequence of moves space-separated, e.g. for a principal variation.
func PrintMoves(moves []Move) string {
	parts := make([]string, len(moves))
	for i, m := range moves {
		parts[i] = m.String()
	}
	return strings.Join(parts, " ")
}
