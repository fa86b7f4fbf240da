package search

import "github.com/sochima/shashki/pkg/board"

// maxPly bounds the killer table: no search in this engine runs deeper than
// this many plies from the root (iterative deepening and extensions both
// stay well inside it).
const maxPly = 128

// Once a limit-checked history update (see AddHistory) would push its entry
// past historyLimit, every entry is scaled down by historyDecay to keep scores bounded and stop a stale dominant
// move from crowding out fresher ones.
const (
	historyLimit = 86475
	historyDecay = 16.4
)

type killerPair struct {
	primary, secondary board.Move
	hasPrimary         bool
	hasSecondary       bool
}

type counterKey struct {
	color    board.Color
	from, to board.Square
}

// Heuristics holds the move-ordering tables a single search populates as it
// runs: killer moves per ply, the history table, and the counter-move table
// keyed by (side to move, previous move). Not thread-safe -- owned
// exclusively by one search call, per the concurrency model.
type Heuristics struct {
	killers [maxPly]killerPair
	history [board.NumSquares][board.NumSquares]int32
	counter map[counterKey]board.Move
}

// NewHeuristics returns an empty heuristics set.
func NewHeuristics() *Heuristics {
	return &Heuristics{counter: make(map[counterKey]board.Move)}
}

// Killers returns the primary and secondary killer moves recorded for ply,
// if any.
func (h *Heuristics) Killers(ply int) (primary, secondary board.Move, hasPrimary, hasSecondary bool) {
	if ply < 0 || ply >= maxPly {
		return board.Move{}, board.Move{}, false, false
	}
	k := h.killers[ply]
	return k.primary, k.secondary, k.hasPrimary, k.hasSecondary
}

// AddKiller records m as a killer at ply: if it differs from the current
// primary, the primary is demoted to secondary and m becomes the new
// primary.
func (h *Heuristics) AddKiller(ply int, m board.Move) {
	if ply < 0 || ply >= maxPly {
		return
	}
	k := &h.killers[ply]
	if k.hasPrimary && k.primary.From == m.From && k.primary.To == m.To {
		return
	}
	k.secondary, k.hasSecondary = k.primary, k.hasPrimary
	k.primary, k.hasPrimary = m, true
}

// History returns the accumulated history score for a (from, to) pair.
func (h *Heuristics) History(from, to board.Square) int32 {
	return h.history[from][to]
}

// AddHistory adds depth^2 to the (from, to) history entry. When limit is set
// and the new value exceeds historyLimit, every entry in the table is
// decayed by historyDecay.
func (h *Heuristics) AddHistory(depth int, from, to board.Square, limit bool) {
	v := h.history[from][to] + int32(depth*depth)
	if limit && v > historyLimit {
		for i := range h.history {
			for j := range h.history[i] {
				h.history[i][j] = int32(float64(h.history[i][j]) / historyDecay)
			}
		}
		v = int32(float64(v) / historyDecay)
	}
	h.history[from][to] = v
}

// CounterMove returns the move previously found to refute (color, prevFrom,
// prevTo), if one has been recorded.
func (h *Heuristics) CounterMove(color board.Color, prevFrom, prevTo board.Square) (board.Move, bool) {
	m, ok := h.counter[counterKey{color, prevFrom, prevTo}]
	return m, ok
}

// SetCounterMove records best as the refutation of (color, prevFrom, prevTo).
func (h *Heuristics) SetCounterMove(color board.Color, prevFrom, prevTo board.Square, best board.Move) {
	h.counter[counterKey{color, prevFrom, prevTo}] = best
}
