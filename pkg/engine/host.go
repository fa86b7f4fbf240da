package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/sochima/shashki/pkg/board"
	"github.com/sochima/shashki/pkg/eval"
	"github.com/sochima/shashki/pkg/search"
	"github.com/sochima/shashki/pkg/search/searchctl"
	"github.com/seekerror/stdlib/pkg/lang"
)

// HostBoard is an 8x8 board in the host's own encoding: zero means empty,
// and a non-zero value is a (color|rank) bitmask per the hostWhite/hostBlack
// and hostMan/hostKing flags below. Only dark squares (row+col odd) are
// ever inspected; the light squares of a host board are ignored.
type HostBoard [8][8]int

const (
	hostWhite = 1
	hostBlack = 2
	hostMan   = 4
	hostKing  = 8
)

func hostValue(c board.Color, king bool) int {
	v := hostMan
	if king {
		v = hostKing
	}
	if c == board.White {
		return v | hostWhite
	}
	return v | hostBlack
}

// toPosition translates a host 8x8 board into the engine's 32-dark-square
// position, using a fixed mapping (dark squares, row-major,
// numbering from the upper-left dark square).
func toPosition(hb HostBoard) *board.Position {
	pos := board.NewEmptyPosition()
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			v := hb[row][col]
			if v == 0 {
				continue
			}
			sq, ok := board.SquareAt(row, col)
			if !ok {
				continue // light square; host value is meaningless here
			}

			c := board.White
			if v&hostBlack != 0 {
				c = board.Black
			}
			pos.Set(sq, board.NewPiece(c, v&hostKing != 0))
		}
	}
	return pos
}

// fromPosition translates a position back to a host board, the inverse of
// toPosition. Used only for round-trip tests; the host never needs this
// direction on the live path.
func fromPosition(pos *board.Position) HostBoard {
	var hb HostBoard
	for s := board.ZeroSquare; s < board.NumSquares; s++ {
		p := pos.At(s)
		if p.IsEmpty() {
			continue
		}
		hb[s.Row()][s.Col()] = hostValue(p.Color(), p.IsKing())
	}
	return hb
}

// hostChecksum fingerprints a host board so repeated is_legal calls against
// an unchanged position can skip re-translating it. GetMove does not use it.
func hostChecksum(hb HostBoard) uint64 {
	var buf [64]byte
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			buf[row*8+col] = byte(hb[row][col])
		}
	}
	return xxhash.Sum64(buf[:])
}

// HostMove is a move expressed in the host's 1-based square notation, the
// shape get_move and is_legal hand back to the caller.
type HostMove struct {
	From, To int
	Capture  bool
	Via      []int // intermediate landing squares of a capture chain, if any
}

func toHostMove(m board.Move) HostMove {
	if !m.IsCapture() {
		return HostMove{From: m.From.Notation(), To: m.To.Notation()}
	}
	hm := HostMove{From: m.From.Notation(), To: m.Jumps[len(m.Jumps)-1].To.Notation(), Capture: true}
	for _, j := range m.Jumps[:len(m.Jumps)-1] {
		hm.Via = append(hm.Via, j.To.Notation())
	}
	return hm
}

// GetMove computes the best move for side in the position hb. budget is
// handed to the iterative deepener as side's remaining clock time with no
// move count, so the search stops starting new depths once a depth takes
// longer than budget/80 and is halted outright after 3*budget/80; it does
// not run for the whole budget. It returns the move (in host
// notation), a progress string describing the final reported iteration, and
// the game result code from side's perspective. cancel returns true to
// abort the search early, mirroring the host's cancel_flag_in_out.
func (e *Engine) GetMove(ctx context.Context, hb HostBoard, side board.Color, budget time.Duration, cancel func() bool) (HostMove, string, board.GameResult, error) {
	pos := toPosition(hb)
	e.Reset(ctx, pos, side)

	if len(board.GenerateAllMoves(pos, side)) == 0 {
		return HostMove{}, "no legal move", board.Loss, nil
	}

	wctx, stop := context.WithCancel(ctx)
	defer stop()
	if cancel != nil {
		go func() {
			t := time.NewTicker(50 * time.Millisecond)
			defer t.Stop()
			for {
				select {
				case <-wctx.Done():
					return
				case <-t.C:
					if cancel() {
						stop()
						return
					}
				}
			}
		}()
	}

	opt := searchctl.Options{TimeControl: lang.Some(searchctl.TimeControl{White: budget, Black: budget})}
	out, err := e.Analyze(wctx, opt)
	if err != nil {
		return HostMove{}, "", board.Unknown, err
	}

	var last search.PV
	for pv := range out {
		last = pv
	}
	_, _ = e.Halt(ctx) // no-op if the search already finished on its own

	if len(last.Moves) == 0 {
		return HostMove{}, "", board.Unknown, fmt.Errorf("search produced no move")
	}

	best := last.Moves[0]
	if err := e.Move(ctx, best); err != nil {
		return HostMove{}, "", board.Unknown, err
	}

	// The PV score is relative to side (the mover), so its sign alone
	// decides the result code.
	result := board.Unknown
	if _, ok := eval.MateDistance(last.Score); ok {
		if last.Score > 0 {
			result = board.Win
		} else {
			result = board.Loss
		}
	}

	return toHostMove(best), progressString(best, last), result, nil
}

// progressString formats one get_move progress line, in a fixed
// layout: "... [<move-notation>] [depth <d>] [eval <centipawns>] [<secs>s]
// [<nodes> nodes]".
func progressString(m board.Move, pv search.PV) string {
	return fmt.Sprintf("... [%v] [depth %d] [eval %d] [%.2fs] [%d nodes]",
		m, pv.Depth, int32(pv.Score), pv.Time.Seconds(), pv.Nodes)
}

// legalEntry caches the captures/quiet moves generated for one host
// position+side pair, keyed by hostChecksum, so a host that probes several
// from/to candidates against the same unchanged board only pays for
// translation and move generation once.
type legalEntry struct {
	side            board.Color
	captures, quiet []board.Move
}

// IsLegal reports whether the 1-based from/to square pair names a legal move
// in hb for side: captures are checked first (a
// capture chain matches by its first and last square only), then quiet
// moves. On success it also returns the matched move.
func (e *Engine) IsLegal(hb HostBoard, side board.Color, from, to int) (HostMove, bool) {
	fromSq, err1 := board.ParseNotation(from)
	toSq, err2 := board.ParseNotation(to)
	if err1 != nil || err2 != nil {
		return HostMove{}, false
	}

	entry, ok := e.lookupLegalEntry(hb, side)
	if !ok {
		pos := toPosition(hb)
		moves := board.GenerateAllMoves(pos, side)

		for _, m := range moves {
			if m.IsCapture() {
				entry.captures = append(entry.captures, m)
			} else {
				entry.quiet = append(entry.quiet, m)
			}
		}
		entry.side = side
		e.storeLegalEntry(hb, entry)
	}
	captures, quiet := entry.captures, entry.quiet

	if len(captures) > 0 {
		for _, m := range captures {
			if m.From == fromSq && m.Jumps[len(m.Jumps)-1].To == toSq {
				return toHostMove(m), true
			}
		}
		return HostMove{}, false
	}

	for _, m := range quiet {
		if m.From == fromSq && m.To == toSq {
			return toHostMove(m), true
		}
	}
	return HostMove{}, false
}

func (e *Engine) lookupLegalEntry(hb HostBoard, side board.Color) (legalEntry, bool) {
	key := hostChecksum(hb)

	e.legalMu.Lock()
	defer e.legalMu.Unlock()

	entry, ok := e.legalCache[key]
	if !ok || entry.side != side {
		return legalEntry{}, false
	}
	return entry, true
}

func (e *Engine) storeLegalEntry(hb HostBoard, entry legalEntry) {
	key := hostChecksum(hb)

	e.legalMu.Lock()
	defer e.legalMu.Unlock()

	if e.legalCache == nil {
		e.legalCache = make(map[uint64]legalEntry)
	}
	e.legalCache[key] = entry
}
