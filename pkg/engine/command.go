package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// protocolVersion and gameType are the engine_command constants the host protocol
// fixes: "2" (protocol version) and "25" (the host's numeric identifier for
// Russian draughts).
const (
	protocolVersion = "2"
	gameType        = "25"

	// The "set hashsize" request is adjusted before use: 2MB is reserved as
	// bookkeeping overhead, and the result is capped at 128MB regardless of
	// what was asked for.
	hashOverheadMB = 2
	maxHashMB      = 128
)

// Command dispatches one engine_command line
// and returns the reply text and whether the command was recognized.
func (e *Engine) Command(ctx context.Context, line string) (string, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "?", false
	}

	switch strings.ToLower(fields[0]) {
	case "name":
		return e.Name(), true

	case "about":
		return fmt.Sprintf("%v\n%v\n\n%v", e.Name(), e.Author(), "Russian draughts engine"), true

	case "get":
		if len(fields) < 2 {
			return "?", false
		}
		return e.commandGet(fields[1])

	case "set":
		if len(fields) < 3 {
			return "?", false
		}
		return e.commandSet(ctx, fields[1], fields[2])
	}

	return "?", false
}

func (e *Engine) commandGet(param string) (string, bool) {
	switch strings.ToLower(param) {
	case "protocolversion":
		return protocolVersion, true

	case "gametype":
		return gameType, true

	case "book":
		return "?", false // no opening book is supported

	case "hashsize":
		entries, bytesPerEntry := e.TableSize()
		return fmt.Sprintf("hash size => %v (%v entries)", humanize.Bytes(entries*bytesPerEntry), entries), true
	}
	return "?", false
}

func (e *Engine) commandSet(ctx context.Context, param, value string) (string, bool) {
	if strings.ToLower(param) != "hashsize" {
		return "?", false
	}

	requested, err := strconv.Atoi(value)
	if err != nil {
		return "?", false
	}

	mb := requested - hashOverheadMB
	if mb < 1 {
		return "?", false // out-of-range configuration leaves state unchanged
	}
	if mb > maxHashMB {
		mb = maxHashMB
	}

	e.ResizeHash(ctx, uint(mb))
	entries, bytesPerEntry := e.TableSize()
	return fmt.Sprintf("hash size => %v (%v entries)", humanize.Bytes(entries*bytesPerEntry), entries), true
}
