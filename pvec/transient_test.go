package pvec_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/immergo/immergo"
	"github.com/immergo/immergo/cell"
	"github.com/immergo/immergo/pvec"
)

func TestTransientBuild(t *testing.T) {
	t.Parallel()
	tr := pvec.Empty().Transient()
	for i := 0; i < 100; i++ {
		require.NoError(t, tr.Conj(cell.Number(float64(i))))
	}
	require.Equal(t, 100, tr.Count())
	require.NoError(t, tr.Assoc(50, cell.String("edited")))

	v, err := tr.Persistent()
	require.NoError(t, err)
	require.Equal(t, 100, v.Count())
	got, err := v.Nth(50)
	require.NoError(t, err)
	require.Equal(t, "edited", got.AsString())
}

// TestTransientIsolation checks that mutating a transient never disturbs
// the vector it came from, including deep in the shared trie.
func TestTransientIsolation(t *testing.T) {
	t.Parallel()
	src := pvec.New(numRange(200)...)
	snapshot := src.ToSlice()

	tr := src.Transient()
	for i := 0; i < 200; i += 7 {
		require.NoError(t, tr.Assoc(i, cell.String("mutated")))
	}
	for i := 0; i < 50; i++ {
		require.NoError(t, tr.Conj(cell.Bool(true)))
	}
	out, err := tr.Persistent()
	require.NoError(t, err)

	require.Equal(t, snapshot, src.ToSlice())
	require.Equal(t, 250, out.Count())
	got, err := out.Nth(7)
	require.NoError(t, err)
	require.Equal(t, "mutated", got.AsString())
}

func TestTransientUseAfterFreeze(t *testing.T) {
	t.Parallel()
	tr := pvec.New(numRange(3)...).Transient()
	_, err := tr.Persistent()
	require.NoError(t, err)

	var frozen immergo.ErrUseAfterFreeze
	require.ErrorAs(t, tr.Conj(cell.Number(1)), &frozen)
	require.ErrorAs(t, tr.Assoc(0, cell.Number(1)), &frozen)
	_, err = tr.Persistent()
	require.ErrorAs(t, err, &frozen)
}

func TestTransientAssocRange(t *testing.T) {
	t.Parallel()
	tr := pvec.New(numRange(3)...).Transient()
	var oor immergo.ErrIndexOutOfRange
	require.ErrorAs(t, tr.Assoc(3, cell.Nil()), &oor)
	require.ErrorAs(t, tr.Assoc(-1, cell.Nil()), &oor)
}
