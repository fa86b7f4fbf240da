package search

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/seekerror/logw"
	"github.com/sochima/shashki/pkg/board"
	"github.com/sochima/shashki/pkg/eval"
	"go.uber.org/atomic"
)

// TranspositionTableFactory constructs a transposition table sized to
// sizeBytes, the shape the engine package's hash-size configuration wires
// through to a fresh table on every reset.
type TranspositionTableFactory func(ctx context.Context, sizeBytes uint64) TranspositionTable

// NewDefaultTranspositionTable builds a two-tier table per
// NewTranspositionTable, backing the always-replace tier with ristretto
// whenever a table is requested at all.
func NewDefaultTranspositionTable(ctx context.Context, sizeBytes uint64) TranspositionTable {
	return NewTranspositionTable(ctx, sizeBytes, true)
}

// Bound represents the bound of a -- possibly inexact -- search score.
type Bound uint8

const (
	ExactBound Bound = iota
	LowerBound
	UpperBound
)

func (b Bound) String() string {
	switch b {
	case ExactBound:
		return "Exact"
	case LowerBound:
		return "Lower"
	case UpperBound:
		return "Upper"
	default:
		return "?"
	}
}

// Hint is what a transposition table probe returns even on a miss: a
// best-move suggestion for move ordering, salvaged from whichever tier held a
// matching entry.
type Hint struct {
	From, To board.Square
	Valid    bool
}

// TranspositionTable caches search results keyed by Zobrist hash across two
// tiers (deep-preferred and always-replace, per the store policy below).
// Must be thread-safe: a single table is shared by every node in one search.
type TranspositionTable interface {
	// Probe looks up hash for a node at the given ply searched to depth, with
	// the window (alpha, beta) currently in effect and color to move. It
	// returns a usable cutoff score when a stored bound resolves the window;
	// otherwise the returned window is the caller's, possibly narrowed by a
	// stored bound that fell inside it. A move Hint (valid or not) is always
	// returned for ordering.
	Probe(hash board.ZobristHash, color board.Color, ply, depth int, alpha, beta eval.Score) (score, newAlpha, newBeta eval.Score, hint Hint, cutoff bool)

	// Store records a search result, subject to the tiering policy: shallow
	// results (depth <= 1) are never stored.
	Store(hash board.ZobristHash, color board.Color, ply, depth int, bound Bound, score eval.Score, best board.Move)

	// Size returns the combined capacity of both tiers, in entries.
	Size() uint64
	// Used returns the deep tier's utilization as a fraction [0;1]. The
	// always-replace tier has no stable utilization figure by design.
	Used() float64
}

// entry is a transposition table slot packed into a single 64-bit word so it
// can be read and written with one atomic op, trading a full stored key for
// a 30-bit lock (the remaining collision check) to fit score, bound, depth,
// color and a best-move hint into one word:
//
//	to(5) from(5) occupied(1) color(1) depth(6) bound(2) eval(14) lock(30)
//
// The eval field is 14 bits rather than the minimal 13 so that mate scores
// (magnitude up to eval.Mate) round-trip without clamping.
type entry uint64

const (
	toBits    = 5
	fromBits  = 5
	occBits   = 1
	colorBits = 1
	depthBits = 6
	boundBits = 2
	evalBits  = 14
	lockBits  = 30

	toShift    = 0
	fromShift  = toShift + toBits
	occShift   = fromShift + fromBits
	colorShift = occShift + occBits
	depthShift = colorShift + colorBits
	boundShift = depthShift + depthBits
	evalShift  = boundShift + boundBits
	lockShift  = evalShift + evalBits

	toMask    = entry(1)<<toBits - 1
	fromMask  = entry(1)<<fromBits - 1
	occMask   = entry(1)<<occBits - 1
	colorMask = entry(1)<<colorBits - 1
	depthMask = entry(1)<<depthBits - 1
	boundMask = entry(1)<<boundBits - 1
	evalMask  = entry(1)<<evalBits - 1
	lockMask  = entry(1)<<lockBits - 1

	maxDepth   = int(depthMask)
	evalClampN = eval.Score(1 << (evalBits - 1))
)

func lockOf(hash board.ZobristHash) entry {
	return entry(hash>>34) & lockMask
}

func packEntry(hash board.ZobristHash, color board.Color, depth int, bound Bound, score eval.Score, from, to board.Square) entry {
	if depth > maxDepth {
		depth = maxDepth
	}
	clamped := score
	if clamped >= evalClampN {
		clamped = evalClampN - 1
	} else if clamped < -evalClampN {
		clamped = -evalClampN
	}

	var e entry
	e |= lockOf(hash) << lockShift
	e |= (entry(clamped) & evalMask) << evalShift
	e |= entry(bound) << boundShift
	e |= entry(depth) << depthShift
	e |= entry(color) << colorShift
	e |= entry(1) << occShift
	e |= entry(from) << fromShift
	e |= entry(to) << toShift
	return e
}

func (e entry) occupied() bool {
	return (e>>occShift)&occMask == 1
}

func (e entry) lock() entry {
	return (e >> lockShift) & lockMask
}

func (e entry) matches(hash board.ZobristHash) bool {
	return e.occupied() && e.lock() == lockOf(hash)
}

func (e entry) color() board.Color {
	return board.Color((e >> colorShift) & colorMask)
}

func (e entry) depth() int {
	return int((e >> depthShift) & depthMask)
}

func (e entry) bound() Bound {
	return Bound((e >> boundShift) & boundMask)
}

func (e entry) score() eval.Score {
	raw := int32((e >> evalShift) & evalMask)
	if raw >= int32(evalClampN) {
		raw -= 2 * int32(evalClampN)
	}
	return eval.Score(raw)
}

func (e entry) from() board.Square {
	return board.Square((e >> fromShift) & fromMask)
}

func (e entry) to() board.Square {
	return board.Square((e >> toShift) & toMask)
}

func (e entry) hint() Hint {
	if !e.occupied() {
		return Hint{}
	}
	return Hint{From: e.from(), To: e.to(), Valid: true}
}

// adjustMateOnProbe re-services a near-mate score stored at one ply against
// a probe at another ply: the score is nudged by one towards zero so mate
// distance stays correct relative to where it's re-served from, not
// where it was stored.
func adjustMateOnProbe(s eval.Score) eval.Score {
	switch {
	case s > eval.Mate-1000:
		return s - 1
	case s < -eval.Mate+1000:
		return s + 1
	default:
		return s
	}
}

// arrayTier is a lock-free, fixed-size, prime-capacity array of packed
// entries. Used for the deep-preferred tier always, and for the
// always-replace tier when no ristretto-backed cache is configured.
type arrayTier struct {
	slots []atomic.Uint64
	cap   uint64
}

func newArrayTier(entries uint64) *arrayTier {
	n := largestPrimeAtMost(entries)
	if n == 0 {
		n = 1
	}
	return &arrayTier{slots: make([]atomic.Uint64, n), cap: n}
}

func (t *arrayTier) index(hash board.ZobristHash) uint64 {
	return uint64(hash) % t.cap
}

func (t *arrayTier) read(hash board.ZobristHash) entry {
	return entry(t.slots[t.index(hash)].Load())
}

// writeDeep overwrites the deep slot only if it's empty or the new result was
// searched at least as deep as what's stored; reports whether it wrote.
func (t *arrayTier) writeDeep(hash board.ZobristHash, e entry) bool {
	idx := t.index(hash)
	cur := entry(t.slots[idx].Load())
	if cur.occupied() && e.depth() < cur.depth() {
		return false
	}
	t.slots[idx].Store(uint64(e))
	return true
}

func (t *arrayTier) writeAlways(hash board.ZobristHash, e entry) {
	t.slots[t.index(hash)].Store(uint64(e))
}

func (t *arrayTier) used() float64 {
	var n uint64
	for i := range t.slots {
		if entry(t.slots[i].Load()).occupied() {
			n++
		}
	}
	return float64(n) / float64(len(t.slots))
}

// ristrettoTier is the always-replace tier's high-throughput alternative,
// wired in by NewDefaultTranspositionTable for every table it builds,
// whatever the hash budget: ristretto's own
// admission/eviction policy stands in for a fixed-size always-replace array,
// trading deterministic slot ownership for better hit rates under memory
// pressure (the deep-preferred tier keeps exact replacement semantics
// regardless, since that tier is where PV-critical deep results live).
type ristrettoTier struct {
	cache *ristretto.Cache[uint64, uint64]
	cap   uint64
}

func newRistrettoTier(entries uint64) (*ristrettoTier, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[uint64, uint64]{
		NumCounters: int64(entries) * 10,
		MaxCost:     int64(entries),
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &ristrettoTier{cache: cache, cap: entries}, nil
}

func (t *ristrettoTier) read(hash board.ZobristHash) entry {
	v, ok := t.cache.Get(uint64(hash))
	if !ok {
		return 0
	}
	return entry(v)
}

func (t *ristrettoTier) writeAlways(hash board.ZobristHash, e entry) {
	t.cache.Set(uint64(hash), uint64(e), 1)
}

func (t *ristrettoTier) used() float64 {
	return 0 // ristretto doesn't expose occupancy; the deep tier's figure stands in.
}

// bigTier is the always-replace tier's storage, backed by either an
// arrayTier or a ristrettoTier.
type bigTier interface {
	read(hash board.ZobristHash) entry
	writeAlways(hash board.ZobristHash, e entry)
	used() float64
}

// twoTierTable is a deep-preferred array plus an always-replace tier, split
// 40/60 from a megabyte budget. Array-backed tiers are rounded down to the
// largest prime entry count that fits; a ristretto-backed tier is not.
type twoTierTable struct {
	deep *arrayTier
	big  bigTier
}

// NewTranspositionTable builds a two-tier table sized to sizeBytes total,
// split 40% deep-preferred / 60% always-replace. useRistretto selects the
// always-replace tier's backing store; when it fails to construct (or is
// false) the always-replace tier falls back to the same lock-free array the
// deep tier uses.
func NewTranspositionTable(ctx context.Context, sizeBytes uint64, useRistretto bool) TranspositionTable {
	const bytesPerEntry = 8
	deepEntries := (sizeBytes * 40 / 100) / bytesPerEntry
	bigEntries := (sizeBytes * 60 / 100) / bytesPerEntry

	deep := newArrayTier(deepEntries)

	var big bigTier
	if useRistretto {
		if r, err := newRistrettoTier(bigEntries); err == nil {
			big = r
		} else {
			logw.Infof(ctx, "ristretto always-replace tier unavailable (%v), falling back to array", err)
		}
	}
	if big == nil {
		big = newArrayTier(bigEntries)
	}

	logw.Infof(ctx, "Allocating TT: deep=%v entries, always-replace=%v entries", deep.cap, bigEntries)
	return &twoTierTable{deep: deep, big: big}
}

func (t *twoTierTable) Size() uint64 {
	n := t.deep.cap
	if a, ok := t.big.(*arrayTier); ok {
		n += a.cap
	} else if r, ok := t.big.(*ristrettoTier); ok {
		n += r.cap
	}
	return n
}

func (t *twoTierTable) Used() float64 {
	return t.deep.used()
}

func (t *twoTierTable) Probe(hash board.ZobristHash, color board.Color, ply, depth int, alpha, beta eval.Score) (eval.Score, eval.Score, eval.Score, Hint, bool) {
	deepE := t.deep.read(hash)
	bigE := t.big.read(hash)

	deepHit := deepE.matches(hash)
	bigHit := bigE.matches(hash)
	if !deepHit && !bigHit {
		return 0, alpha, beta, Hint{}, false
	}

	var hint Hint
	if deepHit {
		hint = deepE.hint()
	} else {
		hint = bigE.hint()
	}

	for _, e := range [2]entry{deepE, bigE} {
		if !e.matches(hash) || e.color() != color || e.depth() < depth {
			continue
		}
		score := adjustMateOnProbe(e.score())
		switch e.bound() {
		case ExactBound:
			return score, alpha, beta, hint, true
		case LowerBound:
			if score >= beta {
				return score, alpha, beta, hint, true
			}
			if score > alpha {
				alpha = score
			}
		case UpperBound:
			if score <= alpha {
				return score, alpha, beta, hint, true
			}
			if score < beta {
				beta = score
			}
		}
	}
	return 0, alpha, beta, hint, false
}

func (t *twoTierTable) Store(hash board.ZobristHash, color board.Color, ply, depth int, bound Bound, score eval.Score, best board.Move) {
	if depth <= 1 {
		return
	}
	e := packEntry(hash, color, depth, bound, score, best.From, best.To)
	if t.deep.writeDeep(hash, e) {
		return
	}
	t.big.writeAlways(hash, e)
}

func (t *twoTierTable) String() string {
	return fmt.Sprintf("TT[%v entries @ %v%% deep]", t.Size(), int(100*t.Used()))
}

// NoTranspositionTable is a no-op implementation, useful for perft and other
// callers that want move generation and search machinery without caching.
type NoTranspositionTable struct{}

func (NoTranspositionTable) Probe(hash board.ZobristHash, color board.Color, ply, depth int, alpha, beta eval.Score) (eval.Score, eval.Score, eval.Score, Hint, bool) {
	return 0, alpha, beta, Hint{}, false
}

func (NoTranspositionTable) Store(board.ZobristHash, board.Color, int, int, Bound, eval.Score, board.Move) {
}

func (NoTranspositionTable) Size() uint64 { return 0 }
func (NoTranspositionTable) Used() float64 { return 0 }

// isPrime reports whether n is prime, by trial division -- adequate at the
// entry counts a hash-size configuration produces (never more than a few
// hundred million).
func isPrime(n uint64) bool {
	if n < 2 {
		return false
	}
	if n%2 == 0 {
		return n == 2
	}
	for d := uint64(3); d*d <= n; d += 2 {
		if n%d == 0 {
			return false
		}
	}
	return true
}

// largestPrimeAtMost returns the largest prime not exceeding n, used to
// size both TT tiers so that power-of-two-aligned Zobrist XOR patterns
// don't collide pathologically.
func largestPrimeAtMost(n uint64) uint64 {
	if n < 2 {
		return 0
	}
	for c := n; c >= 2; c-- {
		if isPrime(c) {
			return c
		}
	}
	return 0
}
