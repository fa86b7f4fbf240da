// Package hostproto contains a line-based driver for the host-application
// boundary: the three host operations (get_move, is_legal and the
// engine_command surface) over stdin/stdout, with the 8x8 host board
// marshalled as 64 space-separated integers in row-major order.
package hostproto

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/util/iox"
	"github.com/sochima/shashki/pkg/board"
	"github.com/sochima/shashki/pkg/engine"
	"go.uber.org/atomic"
)

const ProtocolName = "host"

// Driver implements the host protocol for an engine. It is activated if
// sent "host".
type Driver struct {
	iox.AsyncCloser

	e *engine.Engine

	out chan<- string

	// playNow is the host's cancellation flag: set by a "play_now" line at
	// any time, polled by the in-flight get_move.
	playNow atomic.Bool
	active  atomic.Bool
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

	logw.Infof(ctx, "Host protocol initialized")

	for {
		select {
		case line, ok := <-in:
			if !ok {
				logw.Infof(ctx, "Input stream broken. Exiting")
				return
			}

			fields := strings.Fields(strings.TrimSpace(line))
			if len(fields) == 0 {
				break
			}

			switch strings.ToLower(fields[0]) {
			case "get_move":
				d.getMove(ctx, fields[1:])

			case "is_legal":
				d.isLegal(fields[1:])

			case "play_now":
				d.playNow.Store(true)
				_, _ = d.e.Halt(ctx)

			case "quit", "exit":
				return

			default:
				// Everything else is an engine_command line.
				reply, ok := d.e.Command(ctx, line)
				if !ok {
					d.out <- "?"
					break
				}
				d.out <- reply
			}

		case <-d.Closed():
			_, _ = d.e.Halt(ctx)

			logw.Infof(ctx, "Driver closed")
			return
		}
	}
}

// getMove handles "get_move <w|b> <budget-ms> <64 board values>". The search
// runs asynchronously so that a "play_now" line can interrupt it; replies
// are "progress ...", then "move <notation>" and "result <code>".
func (d *Driver) getMove(ctx context.Context, args []string) {
	if len(args) < 2+64 {
		d.out <- "?"
		return
	}
	side, ok := parseSide(args[0])
	if !ok {
		d.out <- "?"
		return
	}
	ms, err := strconv.Atoi(args[1])
	if err != nil || ms <= 0 {
		d.out <- "?"
		return
	}
	hb, ok := parseBoard(args[2:])
	if !ok {
		d.out <- "?"
		return
	}

	if !d.active.CompareAndSwap(false, true) {
		d.out <- "?" // a search is already running
		return
	}
	d.playNow.Store(false)

	go func() {
		defer d.active.Store(false)

		hm, progress, result, err := d.e.GetMove(ctx, hb, side, time.Duration(ms)*time.Millisecond, d.playNow.Load)
		if err != nil {
			logw.Errorf(ctx, "get_move failed: %v", err)
			d.out <- "?"
			return
		}

		d.out <- fmt.Sprintf("progress %v", progress)
		d.out <- fmt.Sprintf("move %v", formatHostMove(hm))
		d.out <- fmt.Sprintf("result %v", result)
	}()
}

// isLegal handles "is_legal <w|b> <from> <to> <64 board values>" and replies
// "legal <notation>" or "illegal".
func (d *Driver) isLegal(args []string) {
	if len(args) < 3+64 {
		d.out <- "?"
		return
	}
	side, ok := parseSide(args[0])
	if !ok {
		d.out <- "?"
		return
	}
	from, err1 := strconv.Atoi(args[1])
	to, err2 := strconv.Atoi(args[2])
	if err1 != nil || err2 != nil {
		d.out <- "?"
		return
	}
	hb, ok := parseBoard(args[3:])
	if !ok {
		d.out <- "?"
		return
	}

	if hm, ok := d.e.IsLegal(hb, side, from, to); ok {
		d.out <- fmt.Sprintf("legal %v", formatHostMove(hm))
		return
	}
	d.out <- "illegal"
}

func parseSide(s string) (board.Color, bool) {
	switch strings.ToLower(s) {
	case "w", "white":
		return board.White, true
	case "b", "black":
		return board.Black, true
	default:
		return board.White, false
	}
}

func parseBoard(fields []string) (engine.HostBoard, bool) {
	var hb engine.HostBoard
	if len(fields) < 64 {
		return hb, false
	}
	for i := 0; i < 64; i++ {
		v, err := strconv.Atoi(fields[i])
		if err != nil {
			return hb, false
		}
		hb[i/8][i%8] = v
	}
	return hb, true
}

// formatHostMove renders a host move in the host notation: "<from> - <to>"
// for a quiet move, "<s0> x <s1> x ..." for a capture chain.
func formatHostMove(hm engine.HostMove) string {
	if len(hm.Via) == 0 && !hm.Capture {
		return fmt.Sprintf("%v - %v", hm.From, hm.To)
	}

	var sb strings.Builder
	sb.WriteString(strconv.Itoa(hm.From))
	for _, via := range hm.Via {
		sb.WriteString(" x ")
		sb.WriteString(strconv.Itoa(via))
	}
	sb.WriteString(" x ")
	sb.WriteString(strconv.Itoa(hm.To))
	return sb.String()
}
