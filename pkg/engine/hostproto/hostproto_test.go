package hostproto_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sochima/shashki/pkg/engine"
	"github.com/sochima/shashki/pkg/engine/hostproto"
	"github.com/sochima/shashki/pkg/eval"
	"github.com/sochima/shashki/pkg/search"
)

// initialBoardFields returns the standard starting position as the 64
// row-major host values: men on the dark squares of the top three rows for
// white and the bottom three for black.
func initialBoardFields() []string {
	fields := make([]string, 64)
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			v := 0
			if (row+col)%2 == 1 {
				switch {
				case row < 3:
					v = 1 | 4 // white man
				case row > 4:
					v = 2 | 4 // black man
				}
			}
			fields[row*8+col] = strconv.Itoa(v)
		}
	}
	return fields
}

func runDriver(t *testing.T, lines ...string) []string {
	t.Helper()

	ctx := context.Background()
	e := engine.New(ctx, "test", "suite", search.Negamax{Eval: eval.Heuristic{}})

	in := make(chan string, len(lines))
	for _, line := range lines {
		in <- line
	}
	close(in)

	_, out := hostproto.NewDriver(ctx, e, in)

	var replies []string
	for line := range out {
		replies = append(replies, line)
	}
	return replies
}

func TestDriverIsLegal(t *testing.T) {
	fields := initialBoardFields()

	legal := append([]string{"is_legal", "w", "9", "13"}, fields...)
	illegal := append([]string{"is_legal", "w", "1", "32"}, fields...)

	replies := runDriver(t, join(legal), join(illegal))
	require.Len(t, replies, 2)
	assert.Equal(t, "legal 9 - 13", replies[0])
	assert.Equal(t, "illegal", replies[1])
}

func TestDriverEngineCommandPassthrough(t *testing.T) {
	replies := runDriver(t, "get protocolversion", "get gametype", "get book")
	require.Len(t, replies, 3)
	assert.Equal(t, "2", replies[0])
	assert.Equal(t, "25", replies[1])
	assert.Equal(t, "?", replies[2])
}

func TestDriverRejectsMalformedInput(t *testing.T) {
	replies := runDriver(t, "is_legal w 9", "get_move w")
	require.Len(t, replies, 2)
	assert.Equal(t, "?", replies[0])
	assert.Equal(t, "?", replies[1])
}

func join(fields []string) string {
	out := fields[0]
	for _, f := range fields[1:] {
		out += " " + f
	}
	return out
}
