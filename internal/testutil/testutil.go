// Package testutil carries the shared test scaffolding: a context with a
// development logger attached, and a spread of sample cells covering every
// tag.
package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.brendoncarroll.net/stdctx/logctx"
	"go.uber.org/zap"

	"github.com/immergo/immergo/cell"
)

func Context(t testing.TB) context.Context {
	ctx := context.Background()
	ctx, cf := context.WithCancel(ctx)
	t.Cleanup(cf)
	l, err := zap.NewDevelopment()
	require.NoError(t, err)
	ctx = logctx.NewContext(ctx, l)
	return ctx
}

// Cells returns sample values of every tag, pairwise unequal under
// cell.Equal.
func Cells() []cell.Cell {
	return []cell.Cell{
		cell.Nil(),
		cell.Bool(false),
		cell.Bool(true),
		cell.Number(0),
		cell.Number(1),
		cell.Number(-1),
		cell.Number(3.25),
		cell.String(""),
		cell.String("a"),
		cell.String("hello world"),
		cell.Object(cell.NewHandle(struct{ name string }{"opaque"})),
		cell.Object(cell.NewHandle([]any{1.0, 2.0})),
	}
}
