package gram

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tally/dataset"
	"github.com/arloliu/tally/errs"
	"github.com/arloliu/tally/format"
)

// uniformSet holds every two-label sequence over Gx and Gy with identical
// counts, so its Gram matrix has rank 1.
func uniformSet(t *testing.T) *dataset.DataSet {
	t.Helper()

	ds, err := dataset.New([]string{"plus", "minus"})
	require.NoError(t, err)
	for _, labels := range [][]string{{"Gx", "Gx"}, {"Gx", "Gy"}, {"Gy", "Gx"}, {"Gy", "Gy"}} {
		require.NoError(t, ds.InsertPair(dataset.NewKey(labels...), 40, 60))
	}
	require.NoError(t, ds.Finalize())

	return ds
}

func requireBasis(t *testing.T, basis []dataset.Key, want ...string) {
	t.Helper()

	got := make([]string, len(basis))
	for i, key := range basis {
		got[i] = key.String()
	}
	require.Equal(t, want, got)
}

func TestMaxBasis(t *testing.T) {
	basis := MaxBasis(uniformSet(t), []string{"Gx", "Gy"}, 0)
	requireBasis(t, basis, "Gx", "Gy")
}

func TestMaxBasis_LongerKeysRejected(t *testing.T) {
	ds, err := dataset.New([]string{"plus", "minus"})
	require.NoError(t, err)
	for _, labels := range [][]string{{"Gx", "Gx"}, {"Gx", "Gy"}, {"Gy", "Gx"}, {"Gy", "Gy"}} {
		require.NoError(t, ds.InsertPair(dataset.NewKey(labels...), 40, 60))
	}
	require.NoError(t, ds.InsertPair(dataset.NewKey("Gx", "Gx", "Gx", "Gx"), 20, 80))
	require.NoError(t, ds.Finalize())

	// Gx Gx concatenates with itself into a stored key, but not with the
	// shorter basis keys admitted before it.
	basis := MaxBasis(ds, []string{"Gx", "Gy"}, 0)
	requireBasis(t, basis, "Gx", "Gy")
}

func TestMaxBasis_MaxLen(t *testing.T) {
	ds, err := dataset.New([]string{"plus", "minus"})
	require.NoError(t, err)
	require.NoError(t, ds.InsertPair(dataset.NewKey("Gx", "Gx"), 30, 70))
	require.NoError(t, ds.InsertPair(dataset.NewKey("Gx", "Gx", "Gx"), 20, 80))
	require.NoError(t, ds.InsertPair(dataset.NewKey("Gx", "Gx", "Gx", "Gx"), 10, 90))
	require.NoError(t, ds.Finalize())

	requireBasis(t, MaxBasis(ds, []string{"Gx"}, 0), "Gx", "Gx Gx")
	requireBasis(t, MaxBasis(ds, []string{"Gx"}, 1), "Gx")
}

func TestMaxBasis_ForeignLabelsSkipped(t *testing.T) {
	ds := uniformSet(t).MutableCopy()
	require.NoError(t, ds.InsertPair(dataset.NewKey("Gz", "Gz"), 50, 50))
	require.NoError(t, ds.Finalize())

	basis := MaxBasis(ds, []string{"Gx", "Gy"}, 0)
	requireBasis(t, basis, "Gx", "Gy")
}

func TestMaxBasis_TaggedKeysSkipped(t *testing.T) {
	ds, err := dataset.New([]string{"plus", "minus"},
		dataset.WithCollisionPolicy(format.CollisionKeepSeparate))
	require.NoError(t, err)
	for _, labels := range [][]string{{"Gx", "Gx"}, {"Gx", "Gy"}, {"Gy", "Gx"}, {"Gy", "Gy"}} {
		require.NoError(t, ds.InsertPair(dataset.NewKey(labels...), 40, 60))
	}
	require.NoError(t, ds.InsertPair(dataset.NewKey("Gx", "Gx"), 40, 60))
	require.NoError(t, ds.Finalize())

	basis := MaxBasis(ds, []string{"Gx", "Gy"}, 0)
	requireBasis(t, basis, "Gx", "Gy")
}

func TestMaxBasis_NoViableCandidate(t *testing.T) {
	ds, err := dataset.New([]string{"plus", "minus"})
	require.NoError(t, err)
	require.NoError(t, ds.InsertPair(dataset.NewKey("Gx"), 10, 90))
	require.NoError(t, ds.Finalize())

	require.Empty(t, MaxBasis(ds, []string{"Gx"}, 0))
}

func TestMatrix(t *testing.T) {
	ds := uniformSet(t)
	basis := []dataset.Key{dataset.NewKey("Gx"), dataset.NewKey("Gy")}

	m, err := Matrix(ds, basis, "plus")
	require.NoError(t, err)

	rows, cols := m.Dims()
	require.Equal(t, 2, rows)
	require.Equal(t, 2, cols)
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			require.InDelta(t, 0.4, m.At(i, j), 1e-15)
		}
	}
}

func TestMatrix_Errors(t *testing.T) {
	t.Run("empty basis", func(t *testing.T) {
		_, err := Matrix(uniformSet(t), nil, "plus")
		require.Error(t, err)
	})

	t.Run("missing product key", func(t *testing.T) {
		ds, err := dataset.New([]string{"plus", "minus"})
		require.NoError(t, err)
		require.NoError(t, ds.InsertPair(dataset.NewKey("Gx", "Gy"), 40, 60))
		require.NoError(t, ds.Finalize())

		_, err = Matrix(ds, []dataset.Key{dataset.NewKey("Gx")}, "plus")
		require.ErrorIs(t, err, errs.ErrKeyNotFound)
	})

	t.Run("unknown outcome", func(t *testing.T) {
		_, err := Matrix(uniformSet(t), []dataset.Key{dataset.NewKey("Gx")}, "up")
		require.ErrorIs(t, err, errs.ErrUnknownOutcome)
	})

	t.Run("zero total row", func(t *testing.T) {
		ds, err := dataset.New([]string{"plus", "minus"})
		require.NoError(t, err)
		require.NoError(t, ds.InsertPair(dataset.NewKey("Gx", "Gx"), 0, 0))
		require.NoError(t, ds.Finalize())

		_, err = Matrix(ds, []dataset.Key{dataset.NewKey("Gx")}, "plus")
		require.ErrorIs(t, err, errs.ErrZeroTotal)
	})
}
