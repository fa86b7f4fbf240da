// Package console implements an interactive line-based debug driver:
// print the board, accept moves in host notation, and run the deepener.
package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/seekerror/stdlib/pkg/util/iox"
	"github.com/sochima/shashki/pkg/board"
	"github.com/sochima/shashki/pkg/engine"
	"github.com/sochima/shashki/pkg/search"
	"github.com/sochima/shashki/pkg/search/searchctl"
)

const ProtocolName = "console"

// Driver implements a console driver for debugging.
type Driver struct {
	iox.AsyncCloser

	e *engine.Engine

	out chan<- string

	active atomic.Bool // user is waiting for engine to move
}

func NewDriver(ctx context.Context, e *engine.Engine, in <-chan string) (*Driver, <-chan string) {
	out := make(chan string, 100)
	d := &Driver{
		AsyncCloser: iox.NewAsyncCloser(),
		e:           e,
		out:         out,
	}
	go d.process(ctx, in)

	return d, out
}

func (d *Driver) process(ctx context.Context, in <-chan string) {
	defer d.Close()
	defer close(d.out)

	logw.Infof(ctx, "Console protocol initialized")

	d.out <- fmt.Sprintf("engine %v (%v)", d.e.Name(), d.e.Author())
	d.printBoard(ctx)

	for {
		select {
		case line, ok := <-in:
			if !ok {
				logw.Infof(ctx, "Input stream broken. Exiting")
				return
			}

			parts := strings.Fields(strings.TrimSpace(line))
			if len(parts) == 0 {
				break
			}

			cmd := parts[0]
			args := parts[1:]

			switch strings.ToLower(cmd) {
			case "reset", "r":
				d.ensureInactive(ctx)

				d.e.Reset(ctx, board.NewInitialPosition(), board.White)
				d.printBoard(ctx)

			case "undo", "u":
				d.ensureInactive(ctx)

				if err := d.e.TakeBack(ctx); err != nil {
					logw.Errorf(ctx, "Takeback failed: %v", err)
				}
				d.printBoard(ctx)

			case "print", "p":
				d.printBoard(ctx)

			case "analyze", "a":
				d.ensureInactive(ctx)

				var opt searchctl.Options
				if len(args) > 0 {
					depth, _ := strconv.Atoi(args[0])
					opt.DepthLimit = lang.Some(uint(depth))
				}

				out, err := d.e.Analyze(ctx, opt)
				if err != nil {
					logw.Errorf(ctx, "Analyze failed: %v", err)
					break
				}
				d.active.Store(true)

				go func() {
					var last search.PV
					for pv := range out {
						last = pv
						d.out <- describePV(pv)
					}
					d.searchCompleted(last)
				}()

			case "depth", "d":
				if len(args) > 0 {
					depth, _ := strconv.Atoi(args[0])
					d.e.SetDepth(uint(depth))
				}

			case "hash": // size in MB
				if len(args) > 0 {
					hash, _ := strconv.Atoi(args[0])
					d.e.SetHash(uint(hash))
				}

			case "nohash":
				d.e.SetHash(0)

			case "noise": // evaluation randomness in centipawns
				if len(args) > 0 {
					noise, _ := strconv.Atoi(args[0])
					d.e.SetNoise(uint(noise))
				}

			case "nonoise":
				d.e.SetNoise(0)

			case "halt", "stop":
				pv, err := d.e.Halt(ctx)
				if err == nil {
					d.searchCompleted(pv)
				}

			case "quit", "exit", "q":
				d.ensureInactive(ctx)
				return

			case "":
				// ignore empty command

			default:
				// Assume move if not a recognized command.

				d.ensureInactive(ctx)
				if err := d.applyMove(ctx, cmd); err != nil {
					d.out <- fmt.Sprintf("invalid move: '%v': %v", cmd, err)
				} else {
					d.printBoard(ctx)
				}
			}

		case <-d.Closed():
			d.ensureInactive(ctx)

			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

// describePV renders a PV line with a throughput figure when the iteration
// ran long enough to make one meaningful.
func describePV(pv search.PV) string {
	if pv.Time <= 0 {
		return pv.String()
	}
	rate := int64(float64(pv.Nodes) / pv.Time.Seconds())
	return fmt.Sprintf("%v [%v nodes/s]", pv, humanize.Comma(rate))
}

func (d *Driver) ensureInactive(ctx context.Context) {
	d.active.Store(false)
	_, _ = d.e.Halt(ctx)
}

func (d *Driver) searchCompleted(pv search.PV) {
	if d.active.CompareAndSwap(true, false) {
		if len(pv.Moves) > 0 {
			d.out <- fmt.Sprintf("bestmove %v", pv.Moves[0])
		}
	} // else: stale or duplicate result
}

// applyMove parses text as host-notation move ("12-16" or "12x19x26") and
// applies it, matching against the currently legal moves.
func (d *Driver) applyMove(ctx context.Context, text string) error {
	b := d.e.Board()

	m, ok := parseMove(b, text)
	if !ok {
		return fmt.Errorf("no legal move matches '%v'", text)
	}
	return d.e.Move(ctx, m)
}

// parseMove looks up the generated legal move whose first and last squares
// match the from/to pair encoded in text, the same matching rule
// is_legal uses.
func parseMove(b *board.Board, text string) (board.Move, bool) {
	tokens := strings.FieldsFunc(text, func(r rune) bool { return r == '-' || r == 'x' || r == 'X' })
	if len(tokens) < 2 {
		return board.Move{}, false
	}

	nums := make([]int, len(tokens))
	for i, t := range tokens {
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return board.Move{}, false
		}
		nums[i] = n
	}

	from, err := board.ParseNotation(nums[0])
	if err != nil {
		return board.Move{}, false
	}
	to, err := board.ParseNotation(nums[len(nums)-1])
	if err != nil {
		return board.Move{}, false
	}

	for _, m := range board.GenerateAllMoves(b.Position(), b.Turn()) {
		if m.From != from {
			continue
		}
		if m.IsCapture() {
			if m.Jumps[len(m.Jumps)-1].To == to {
				return m, true
			}
		} else if m.To == to {
			return m, true
		}
	}
	return board.Move{}, false
}

const (
	files      = "    a   b   c   d   e   f   g   h"
	horizontal = "  ---------------------------------"
	vertical   = " | "
)

func (d *Driver) printBoard(ctx context.Context) {
	b := d.e.Board()
	p := b.Position()

	d.out <- ""
	d.out <- files
	d.out <- horizontal
	var sb strings.Builder
	for row := 0; row < 8; row++ {
		sb.Reset()
		sb.WriteString(strconv.Itoa(8-row) + vertical)
		for col := 0; col < 8; col++ {
			if sq, ok := board.SquareAt(row, col); ok {
				sb.WriteString(p.At(sq).String())
			} else {
				sb.WriteString(" ")
			}
			sb.WriteString(vertical)
		}
		d.out <- sb.String()
		d.out <- horizontal
	}
	d.out <- files
	d.out <- ""
	d.out <- fmt.Sprintf("turn: %v, result: %v, hash: 0x%x", b.Turn(), b.Result(), b.Hash())
	d.out <- ""
}
