package pmap_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/immergo/immergo/cell"
	"github.com/immergo/immergo/pmap"
)

func TestEmpty(t *testing.T) {
	t.Parallel()
	m := pmap.Empty()
	require.Zero(t, m.Len())
	require.True(t, m.IsEmpty())
	_, ok := m.Get(cell.String("missing"))
	require.False(t, ok)
	require.Equal(t, "{}", m.String())
}

func TestMapLaws(t *testing.T) {
	t.Parallel()
	k := cell.String("k")
	x := cell.Number(42)
	m := pmap.Empty().Assoc(cell.String("other"), cell.Number(1))

	got, ok := m.Assoc(k, x).Get(k)
	require.True(t, ok)
	require.True(t, cell.Equal(x, got))

	require.False(t, m.Assoc(k, x).Dissoc(k).Has(k))

	// Removing an absent key yields an equivalent map.
	require.True(t, m.Dissoc(cell.String("absent")).Equiv(m))
}

func TestAssocReplaces(t *testing.T) {
	t.Parallel()
	k := cell.String("k")
	m := pmap.Empty().Assoc(k, cell.Number(1)).Assoc(k, cell.Number(2))
	require.Equal(t, 1, m.Len())
	got, ok := m.Get(k)
	require.True(t, ok)
	require.Equal(t, 2.0, got.AsNumber())
}

func TestPersistence(t *testing.T) {
	t.Parallel()
	m := pmap.Empty().
		Assoc(cell.String("a"), cell.Number(1)).
		Assoc(cell.String("b"), cell.Number(2))

	_ = m.Assoc(cell.String("c"), cell.Number(3))
	_ = m.Dissoc(cell.String("a"))

	require.Equal(t, 2, m.Len())
	require.True(t, m.Has(cell.String("a")))
	require.False(t, m.Has(cell.String("c")))
}

func TestManyKeys(t *testing.T) {
	t.Parallel()
	const n = 1000
	m := pmap.Empty()
	for i := 0; i < n; i++ {
		m = m.Assoc(cell.Number(float64(i)), cell.String(strconv.Itoa(i)))
	}
	require.Equal(t, n, m.Len())
	for i := 0; i < n; i++ {
		got, ok := m.Get(cell.Number(float64(i)))
		require.True(t, ok, "key %d", i)
		require.Equal(t, strconv.Itoa(i), got.AsString())
	}
	for i := 0; i < n; i += 2 {
		m = m.Dissoc(cell.Number(float64(i)))
	}
	require.Equal(t, n/2, m.Len())
	for i := 0; i < n; i++ {
		require.Equal(t, i%2 == 1, m.Has(cell.Number(float64(i))), "key %d", i)
	}
}

func TestMixedKeyKinds(t *testing.T) {
	t.Parallel()
	m := pmap.Empty().
		Assoc(cell.Nil(), cell.String("nil key")).
		Assoc(cell.Bool(true), cell.String("bool key")).
		Assoc(cell.Number(1), cell.String("number key")).
		Assoc(cell.String("1"), cell.String("string key"))
	require.Equal(t, 4, m.Len())
	got, ok := m.Get(cell.Number(1))
	require.True(t, ok)
	require.Equal(t, "number key", got.AsString())
	got, ok = m.Get(cell.String("1"))
	require.True(t, ok)
	require.Equal(t, "string key", got.AsString())
}

func TestEquiv(t *testing.T) {
	t.Parallel()
	a := pmap.Empty().
		Assoc(cell.String("x"), cell.Number(1)).
		Assoc(cell.String("y"), cell.Number(2))
	// Same content, different insertion order.
	b := pmap.Empty().
		Assoc(cell.String("y"), cell.Number(2)).
		Assoc(cell.String("x"), cell.Number(1))
	require.True(t, a.Equiv(b))
	require.True(t, b.Equiv(a))

	require.False(t, a.Equiv(a.Assoc(cell.String("z"), cell.Number(3))))
	require.False(t, a.Equiv(a.Assoc(cell.String("x"), cell.Number(9))))
	require.False(t, a.Equiv("not a map"))
	require.False(t, a.Equiv(nil))
}

// TestReduceSeeding checks the fold's seeding convention: one call with a
// nil entry before any entries, even when the map is empty.
func TestReduceSeeding(t *testing.T) {
	t.Parallel()
	var calls, seedCalls int
	out := pmap.Empty().Reduce(func(acc cell.Cell, ent *pmap.Entry) (cell.Cell, bool) {
		calls++
		if ent == nil {
			seedCalls++
		}
		return acc, false
	}, cell.Number(5))
	require.Equal(t, 1, calls)
	require.Equal(t, 1, seedCalls)
	require.Equal(t, 5.0, out.AsNumber())

	m := pmap.Empty().
		Assoc(cell.String("a"), cell.Number(1)).
		Assoc(cell.String("b"), cell.Number(2))
	calls, seedCalls = 0, 0
	out = m.Reduce(func(acc cell.Cell, ent *pmap.Entry) (cell.Cell, bool) {
		calls++
		if ent == nil {
			seedCalls++
			return acc, false
		}
		return cell.Number(acc.AsNumber() + ent.Val.AsNumber()), false
	}, cell.Number(0))
	require.Equal(t, 3, calls)
	require.Equal(t, 1, seedCalls)
	require.Equal(t, 3.0, out.AsNumber())
}

func TestReduceShortCircuit(t *testing.T) {
	t.Parallel()
	m := pmap.Empty()
	for i := 0; i < 100; i++ {
		m = m.Assoc(cell.Number(float64(i)), cell.Bool(true))
	}
	calls := 0
	m.Reduce(func(acc cell.Cell, ent *pmap.Entry) (cell.Cell, bool) {
		calls++
		return acc, calls == 4
	}, cell.Nil())
	require.Equal(t, 4, calls)
}

type keyword struct {
	name string
}

func (k *keyword) Equiv(other any) bool {
	o, ok := other.(*keyword)
	return ok && o.name == k.name
}

// TestObjectKeys covers the equivalence scan fallback: keyword-like keys
// with distinct identities but a matching capability must behave as one key.
func TestObjectKeys(t *testing.T) {
	t.Parallel()
	k1 := cell.Object(cell.NewHandle(&keyword{name: "status"}))
	k2 := cell.Object(cell.NewHandle(&keyword{name: "status"}))
	other := cell.Object(cell.NewHandle(&keyword{name: "other"}))

	m := pmap.Empty().Assoc(k1, cell.Number(1))
	require.True(t, m.Has(k2))

	// Equivalent key replaces, cardinality does not grow.
	m2 := m.Assoc(k2, cell.Number(2))
	require.Equal(t, 1, m2.Len())
	got, ok := m2.Get(k1)
	require.True(t, ok)
	require.Equal(t, 2.0, got.AsNumber())

	require.False(t, m2.Has(other))
	require.Zero(t, m2.Dissoc(k2).Len())

	// Opaque keys without the capability stay identity-keyed.
	o1 := cell.Object(cell.NewHandle("blob"))
	o2 := cell.Object(cell.NewHandle("blob"))
	m3 := pmap.Empty().Assoc(o1, cell.Number(1)).Assoc(o2, cell.Number(2))
	require.Equal(t, 2, m3.Len())
}

func TestMaterializations(t *testing.T) {
	t.Parallel()
	m := pmap.Empty()
	for i := 0; i < 50; i++ {
		m = m.Assoc(cell.Number(float64(i)), cell.Number(float64(i*10)))
	}
	require.Len(t, m.Keys(), 50)
	require.Len(t, m.Values(), 50)
	require.Len(t, m.Entries(), 50)

	// Order is unspecified but stable for a single instance.
	assert.Equal(t, m.Keys(), m.Keys())
	assert.Equal(t, m.Entries(), m.Entries())

	for _, e := range m.Entries() {
		require.Equal(t, e.Key.AsNumber()*10, e.Val.AsNumber())
	}
}
