package engine_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sochima/shashki/pkg/engine"
	"github.com/sochima/shashki/pkg/eval"
	"github.com/sochima/shashki/pkg/search"
)

func TestCommandNameAndAbout(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	name, ok := e.Command(ctx, "name")
	assert.True(t, ok)
	assert.Contains(t, name, "test")

	about, ok := e.Command(ctx, "about")
	assert.True(t, ok)
	assert.True(t, strings.Contains(about, "test"))
}

func TestCommandGetProtocolAndGameType(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t)

	reply, ok := e.Command(ctx, "get protocolversion")
	assert.True(t, ok)
	assert.Equal(t, "2", reply)

	reply, ok = e.Command(ctx, "get gametype")
	assert.True(t, ok)
	assert.Equal(t, "25", reply)

	_, ok = e.Command(ctx, "get book")
	assert.False(t, ok)

	_, ok = e.Command(ctx, "bogus")
	assert.False(t, ok)
}

func TestCommandSetHashsize(t *testing.T) {
	ctx := context.Background()
	s := search.Negamax{Eval: eval.Heuristic{}}
	e := engine.New(ctx, "test", "suite", s)

	reply, ok := e.Command(ctx, "set hashsize 10")
	assert.True(t, ok)
	assert.Contains(t, reply, "entries")

	// Below the fixed overhead, the request is rejected and state is unchanged.
	_, ok = e.Command(ctx, "set hashsize 1")
	assert.False(t, ok)

	_, ok = e.Command(ctx, "get hashsize")
	assert.True(t, ok)
}
