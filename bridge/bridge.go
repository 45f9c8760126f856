// Package bridge converts between host values and Cells, and carries the
// factory surface that language-binding layers call. A Bridge is an explicit
// handle: the engine keeps no process-wide state, and callers that want
// isolated intern caches simply construct more than one.
//
// Host values are plain Go values: nil, bool, numeric kinds, string, with
// []any as the array shape and map[string]any as the object shape. Anything
// else is wrapped as an opaque object reference, except funcs and channels,
// which have no value representation and degrade to Nil.
package bridge

import (
	"context"
	"fmt"
	"reflect"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"go.brendoncarroll.net/stdctx/logctx"
	"go.uber.org/zap"

	"github.com/immergo/immergo/cell"
)

// DefaultInternSize is the intern cache capacity used when New is given a
// non-positive size.
const DefaultInternSize = 1024

// Bridge converts host values to Cells and back. Like the transients it
// serves, a Bridge is single-owner: the intern cache is not synchronized.
type Bridge struct {
	strings *simplelru.LRU[string, *string]
}

func New(internSize int) *Bridge {
	if internSize <= 0 {
		internSize = DefaultInternSize
	}
	strs, err := simplelru.NewLRU[string, *string](internSize, nil)
	if err != nil {
		panic(err)
	}
	return &Bridge{strings: strs}
}

// intern returns a shared payload for s, so repeated conversions of the
// same host string produce Cells sharing one allocation.
func (b *Bridge) intern(s string) *string {
	if p, ok := b.strings.Get(s); ok {
		return p
	}
	p := &s
	b.strings.Add(s, p)
	return p
}

// Convert turns a host value into a Cell. Funcs and channels have no value
// representation; they degrade to Nil with a logged warning, a documented
// lossy path.
func (b *Bridge) Convert(ctx context.Context, v any) cell.Cell {
	switch x := v.(type) {
	case nil:
		return cell.Nil()
	case cell.Cell:
		return x
	case bool:
		return cell.Bool(x)
	case float64:
		return cell.Number(x)
	case float32:
		return cell.Number(float64(x))
	case int:
		return cell.Number(float64(x))
	case int32:
		return cell.Number(float64(x))
	case int64:
		return cell.Number(float64(x))
	case uint:
		return cell.Number(float64(x))
	case uint32:
		return cell.Number(float64(x))
	case uint64:
		return cell.Number(float64(x))
	case string:
		return cell.SharedString(b.intern(x))
	case *cell.Handle:
		return cell.Object(x)
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Func, reflect.Chan:
		logctx.Warn(ctx, "no value representation for host kind, storing nil",
			zap.String("type", fmt.Sprintf("%T", v)))
		return cell.Nil()
	}
	return cell.Object(cell.NewHandle(v))
}

// Reconstruct is the inverse of Convert for all tags.
func (b *Bridge) Reconstruct(c cell.Cell) any {
	switch c.Tag() {
	case cell.TagBool:
		return c.AsBool()
	case cell.TagNumber:
		return c.AsNumber()
	case cell.TagString:
		return c.AsString()
	case cell.TagObject:
		return c.AsObject().Value()
	}
	return nil
}
