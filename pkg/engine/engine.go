// Package engine wires the board, evaluator, transposition table and search
// harness into the three host-facing operations (GetMove, IsLegal, Command)
// the host-facing interface names, plus the lifecycle methods (Reset/Move/TakeBack/Analyze/
// Halt) a protocol driver needs to build on top of them.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/seekerror/build"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/sochima/shashki/pkg/board"
	"github.com/sochima/shashki/pkg/eval"
	"github.com/sochima/shashki/pkg/search"
	"github.com/sochima/shashki/pkg/search/searchctl"
)

var version = build.NewVersion(0, 1, 0)

// Options are engine creation/runtime options.
type Options struct {
	// Depth is the search depth limit. If zero, there is no limit. Overridden by search
	// options if provided.
	Depth uint
	// Hash is the transposition table size in MB. If zero, the engine will not use
	// a transposition table.
	Hash uint
	// Noise adds some centipawn randomness to the leaf evaluations.
	Noise uint
}

func (o Options) String() string {
	return fmt.Sprintf("{depth=%v, hash=%v, noise=%v}", o.Depth, o.Hash, o.Noise)
}

// Engine encapsulates game-playing logic, search and evaluation: board state
// plus its Zobrist table, transposition table, noise evaluator and the
// iterative-deepening launcher. Not safe for concurrent use by more than one
// goroutine besides the internally-managed search -- every exported method
// takes the engine's own mutex.
type Engine struct {
	name, author string

	launcher searchctl.Launcher
	factory  search.TranspositionTableFactory
	zt       *board.ZobristTable
	seed     int64
	opts     Options

	b      *board.Board
	undo   []*board.Move
	tt     search.TranspositionTable
	noise  eval.Random
	active searchctl.Handle
	mu     sync.Mutex

	legalMu    sync.Mutex
	legalCache map[uint64]legalEntry
}

// Option is an engine creation option.
type Option func(*Engine)

// WithTable configures the engine to use the given transposition table factory.
func WithTable(factory search.TranspositionTableFactory) Option {
	return func(e *Engine) {
		e.factory = factory
	}
}

// WithOptions sets default runtime options.
func WithOptions(opts Options) Option {
	return func(e *Engine) {
		e.opts = opts
	}
}

// WithZobrist configures the engine to use the given random seed instead of
// the default seed of zero. The Zobrist table is process-wide and built
// exactly once, at construction -- see board.ZobristTable's own doc comment.
func WithZobrist(seed int64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

// New constructs an engine around root (the fixed-depth search driver,
// typically a search.Negamax) and resets it to the standard starting position.
func New(ctx context.Context, name, author string, root search.Search, opts ...Option) *Engine {
	e := &Engine{
		name:     name,
		author:   author,
		launcher: &searchctl.Iterative{Root: root},
		factory:  search.NewDefaultTranspositionTable,
	}
	for _, fn := range opts {
		fn(e)
	}
	e.zt = board.NewZobristTable(e.seed)

	e.reset(ctx, board.NewInitialPosition(), board.White)

	logw.Infof(ctx, "Initialized engine: %v, options=%v", e.Name(), e.opts)
	return e
}

// Name returns the engine name and version.
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", e.name, version)
}

// Author returns the author/credit string.
func (e *Engine) Author() string {
	return e.author
}

func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.opts
}

func (e *Engine) SetDepth(depth uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Depth = depth
}

// SetHash records the requested TT size (MB) for the next Reset; it does not
// itself rebuild the transposition table.
func (e *Engine) SetHash(size uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Hash = size
}

// ResizeHash rebuilds the transposition table in place at sizeMB, discarding
// whatever it held, without disturbing the current board or move history.
// Used by the engine_command "set hashsize" handler (command.go).
func (e *Engine) ResizeHash(ctx context.Context, sizeMB uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Hash = sizeMB
	e.tt = search.NoTranspositionTable{}
	if sizeMB > 0 {
		e.tt = e.factory(ctx, uint64(sizeMB)<<20)
	}

	logw.Infof(ctx, "Resized TT to %vMB", sizeMB)
}

// TableSize returns the transposition table's combined entry capacity and
// per-entry size in bytes, for the engine_command "get hashsize" reply.
func (e *Engine) TableSize() (entries uint64, bytesPerEntry uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.tt.Size(), 8
}

func (e *Engine) SetNoise(centipawns uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Noise = centipawns
}

// Board returns a forked, independently mutable copy of the current board.
func (e *Engine) Board() *board.Board {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.b.Fork()
}

// Reset resets the engine to the given position and side to move.
func (e *Engine) Reset(ctx context.Context, pos *board.Position, turn board.Color) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.reset(ctx, pos, turn)
}

func (e *Engine) reset(ctx context.Context, pos *board.Position, turn board.Color) {
	logw.Infof(ctx, "Reset %v to move, depth=%v, TT=%vMB, noise=%vcp", turn, e.opts.Depth, e.opts.Hash, e.opts.Noise)

	_, _ = e.haltSearchIfActive(ctx)

	e.b = board.NewBoard(e.zt, pos, turn)
	e.undo = nil

	e.tt = search.NoTranspositionTable{}
	if e.opts.Hash > 0 {
		e.tt = e.factory(ctx, uint64(e.opts.Hash)<<20)
	}
	e.noise = eval.Random{}
	if e.opts.Noise > 0 {
		e.noise = eval.NewRandom(eval.Heuristic{}, int(e.opts.Noise), e.seed)
	}

	e.legalMu.Lock()
	e.legalCache = nil
	e.legalMu.Unlock()

	logw.Infof(ctx, "New board:\n%v", e.b)
}

// Move applies candidate (by its visible from/to/jump fields) if it matches
// one of the legal moves in the current position; usually an opponent move
// relayed by the host.
func (e *Engine) Move(ctx context.Context, candidate board.Move) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, _ = e.haltSearchIfActive(ctx)

	for _, m := range board.GenerateAllMoves(e.b.Position(), e.b.Turn()) {
		if !candidate.Equals(m) {
			continue
		}

		mv := m
		board.Do(e.b, &mv)
		e.undo = append(e.undo, &mv)

		logw.Infof(ctx, "Move %v:\n%v", mv, e.b)
		return nil
	}
	return fmt.Errorf("illegal move: %v", candidate)
}

// TakeBack undoes the latest move.
func (e *Engine) TakeBack(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, _ = e.haltSearchIfActive(ctx)

	if len(e.undo) == 0 {
		return fmt.Errorf("no move to take back")
	}

	m := e.undo[len(e.undo)-1]
	e.undo = e.undo[:len(e.undo)-1]
	board.Undo(e.b, m)

	logw.Infof(ctx, "Takeback %v", m)
	return nil
}

// Analyze launches an iterative-deepening search of the current position.
func (e *Engine) Analyze(ctx context.Context, opt searchctl.Options) (<-chan search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := opt.DepthLimit.V(); !ok && e.opts.Depth > 0 {
		opt.DepthLimit = lang.Some(e.opts.Depth)
	}

	logw.Infof(ctx, "Analyze %v, opt=%v", e.b, opt)

	if e.active != nil {
		return nil, fmt.Errorf("search already active")
	}

	handle, out := e.launcher.Launch(ctx, e.b.Fork(), e.tt, e.noise, opt)
	e.active = handle
	return out, nil
}

// Halt halts the active search and returns the principal variation, if any.
func (e *Engine) Halt(ctx context.Context) (search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Halt")

	pv, ok := e.haltSearchIfActive(ctx)
	if !ok {
		return search.PV{}, fmt.Errorf("no active search")
	}
	return pv, nil
}

func (e *Engine) haltSearchIfActive(ctx context.Context) (search.PV, bool) {
	if e.active != nil {
		pv := e.active.Halt()
		logw.Infof(ctx, "Search halted: %v", pv)

		e.active = nil
		return pv, true
	}
	return search.PV{}, false
}
