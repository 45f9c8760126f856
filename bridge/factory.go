package bridge

import (
	"context"
	"slices"
	"strconv"

	"go.brendoncarroll.net/exp/slices2"
	"golang.org/x/exp/maps"

	"github.com/immergo/immergo"
	"github.com/immergo/immergo/cell"
	"github.com/immergo/immergo/pmap"
	"github.com/immergo/immergo/pvec"
)

// VectorFrom builds a vector with one Cell per element of the host array,
// staged through a single transient commit.
func (b *Bridge) VectorFrom(ctx context.Context, arr []any) *pvec.Vector {
	t := pvec.Empty().Transient()
	for _, x := range arr {
		_ = t.Conj(b.Convert(ctx, x))
	}
	v, _ := t.Persistent()
	return v
}

// MapFrom builds a map from a string-keyed host object. Keys are inserted
// in sorted order so the resulting structure is deterministic.
func (b *Bridge) MapFrom(ctx context.Context, obj map[string]any) *pmap.Map {
	t := pmap.Empty().Transient()
	keys := maps.Keys(obj)
	slices.Sort(keys)
	for _, k := range keys {
		_ = t.Assoc(b.Convert(ctx, k), b.Convert(ctx, obj[k]))
	}
	m, _ := t.Persistent()
	return m
}

// FromHost dispatches on the host value's shape: arrays become vectors,
// string-keyed objects become maps, and anything else is a type mismatch.
func (b *Bridge) FromHost(ctx context.Context, v any) (any, error) {
	switch x := v.(type) {
	case []any:
		return b.VectorFrom(ctx, x), nil
	case map[string]any:
		return b.MapFrom(ctx, x), nil
	}
	return nil, immergo.ErrTypeMismatch{Op: "bridge.FromHost", Want: "array or object", Got: v}
}

// ToArray materializes a dense host array snapshot of the vector.
func (b *Bridge) ToArray(v *pvec.Vector) []any {
	return slices2.Map(v.ToSlice(), b.Reconstruct)
}

// ToObject materializes a host object view of the map. Only string-tagged
// keys are representable; entries with other key kinds are omitted. This is
// a lossy projection, not an error.
func (b *Bridge) ToObject(m *pmap.Map) map[string]any {
	out := make(map[string]any, m.Len())
	for k, v := range m.All() {
		if k.Tag() != cell.TagString {
			continue
		}
		out[k.AsString()] = b.Reconstruct(v)
	}
	return out
}

// Entries materializes the map's entries as host [key, value] pairs.
func (b *Bridge) Entries(m *pmap.Map) [][2]any {
	return slices2.Map(m.Entries(), func(e pmap.Entry) [2]any {
		return [2]any{b.Reconstruct(e.Key), b.Reconstruct(e.Val)}
	})
}

// BatchAssoc applies a host object of index-to-value updates through one
// transient commit. Keys that do not parse as non-negative integers, and
// indexes at or beyond the vector's count, are skipped silently; the batch
// path is deliberately lenient where the single-operation Assoc is strict.
func (b *Bridge) BatchAssoc(ctx context.Context, v *pvec.Vector, updates map[string]any) *pvec.Vector {
	conv := make(map[int]cell.Cell, len(updates))
	for k, val := range updates {
		i, err := strconv.Atoi(k)
		if err != nil || i < 0 {
			continue
		}
		conv[i] = b.Convert(ctx, val)
	}
	return v.BatchAssoc(conv)
}

// ReduceVector validates operands before delegating to the vector's fold.
func (b *Bridge) ReduceVector(v *pvec.Vector, fn pvec.ReduceFunc, init cell.Cell) (cell.Cell, error) {
	if v == nil {
		return cell.Nil(), immergo.ErrInvalidArgument{Op: "bridge.ReduceVector", Msg: "missing vector"}
	}
	if fn == nil {
		return cell.Nil(), immergo.ErrInvalidArgument{Op: "bridge.ReduceVector", Msg: "missing reducer"}
	}
	return v.Reduce(fn, init), nil
}

// ReduceMap validates operands before delegating to the map's fold.
func (b *Bridge) ReduceMap(m *pmap.Map, fn pmap.ReduceFunc, init cell.Cell) (cell.Cell, error) {
	if m == nil {
		return cell.Nil(), immergo.ErrInvalidArgument{Op: "bridge.ReduceMap", Msg: "missing map"}
	}
	if fn == nil {
		return cell.Nil(), immergo.ErrInvalidArgument{Op: "bridge.ReduceMap", Msg: "missing reducer"}
	}
	return m.Reduce(fn, init), nil
}
