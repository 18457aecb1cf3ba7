package gram

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tally/dataset"
	"github.com/arloliu/tally/errs"
)

// tiltedSet has a full-rank Gram matrix: [[0.5, 0.2], [0.2, 0.4]].
func tiltedSet(t *testing.T) *dataset.DataSet {
	t.Helper()

	ds, err := dataset.New([]string{"plus", "minus"})
	require.NoError(t, err)
	require.NoError(t, ds.InsertPair(dataset.NewKey("Gx", "Gx"), 50, 50))
	require.NoError(t, ds.InsertPair(dataset.NewKey("Gx", "Gy"), 20, 80))
	require.NoError(t, ds.InsertPair(dataset.NewKey("Gy", "Gx"), 20, 80))
	require.NoError(t, ds.InsertPair(dataset.NewKey("Gy", "Gy"), 40, 60))
	require.NoError(t, ds.Finalize())

	return ds
}

func TestAnalyze(t *testing.T) {
	result, err := Analyze(uniformSet(t), []string{"Gx", "Gy"})
	require.NoError(t, err)

	requireBasis(t, result.Basis, "Gx", "Gy")
	require.Equal(t, "plus", result.Outcome)
	require.Equal(t, 1, result.Rank)
	require.Len(t, result.Singular, 2)
	require.InDelta(t, 0.8, result.Singular[0], 1e-12)
	require.Less(t, result.Singular[1], 1e-12)
	require.Contains(t, result.String(), "Rank: 1")
}

func TestAnalyze_FullRank(t *testing.T) {
	result, err := Analyze(tiltedSet(t), []string{"Gx", "Gy"})
	require.NoError(t, err)
	require.Equal(t, 2, result.Rank)
	require.InDelta(t, 0.5, result.Matrix.At(0, 0), 1e-15)
	require.InDelta(t, 0.2, result.Matrix.At(0, 1), 1e-15)
	require.InDelta(t, 0.4, result.Matrix.At(1, 1), 1e-15)
}

func TestAnalyze_DerivesLabels(t *testing.T) {
	explicit, err := Analyze(uniformSet(t), []string{"Gx", "Gy"})
	require.NoError(t, err)

	derived, err := Analyze(uniformSet(t), nil)
	require.NoError(t, err)

	require.Equal(t, explicit.Rank, derived.Rank)
	require.Equal(t, len(explicit.Basis), len(derived.Basis))
	for i := range explicit.Basis {
		require.True(t, explicit.Basis[i].Equal(derived.Basis[i]))
	}
}

func TestAnalyze_WithOutcome(t *testing.T) {
	result, err := Analyze(uniformSet(t), nil, WithOutcome("minus"))
	require.NoError(t, err)
	require.Equal(t, "minus", result.Outcome)
	require.Equal(t, 1, result.Rank)
	require.InDelta(t, 0.6, result.Matrix.At(0, 0), 1e-15)

	_, err = Analyze(uniformSet(t), nil, WithOutcome("up"))
	require.ErrorIs(t, err, errs.ErrUnknownOutcome)
}

func TestAnalyze_WithTolerance(t *testing.T) {
	// The tilted spectrum is roughly {0.66, 0.24}; a coarse relative cutoff
	// hides the smaller value.
	coarse, err := Analyze(tiltedSet(t), nil, WithTolerance(0.5))
	require.NoError(t, err)
	require.Equal(t, 1, coarse.Rank)

	fine, err := Analyze(tiltedSet(t), nil)
	require.NoError(t, err)
	require.Equal(t, 2, fine.Rank)

	_, err = Analyze(tiltedSet(t), nil, WithTolerance(0))
	require.Error(t, err)
}

func TestAnalyze_WithMaxBasisLength(t *testing.T) {
	ds, err := dataset.New([]string{"plus", "minus"})
	require.NoError(t, err)
	require.NoError(t, ds.InsertPair(dataset.NewKey("Gx", "Gx"), 30, 70))
	require.NoError(t, ds.InsertPair(dataset.NewKey("Gx", "Gx", "Gx"), 20, 80))
	require.NoError(t, ds.InsertPair(dataset.NewKey("Gx", "Gx", "Gx", "Gx"), 10, 90))
	require.NoError(t, ds.Finalize())

	full, err := Analyze(ds, nil)
	require.NoError(t, err)
	require.Len(t, full.Basis, 2)
	require.Equal(t, 2, full.Rank)

	capped, err := Analyze(ds, nil, WithMaxBasisLength(1))
	require.NoError(t, err)
	requireBasis(t, capped.Basis, "Gx")
	require.Equal(t, 1, capped.Rank)
}

func TestAnalyze_Errors(t *testing.T) {
	t.Run("empty dataset", func(t *testing.T) {
		ds, err := dataset.New([]string{"plus", "minus"})
		require.NoError(t, err)
		require.NoError(t, ds.Finalize())

		_, err = Analyze(ds, nil)
		require.Error(t, err)
	})

	t.Run("no viable basis", func(t *testing.T) {
		ds, err := dataset.New([]string{"plus", "minus"})
		require.NoError(t, err)
		require.NoError(t, ds.InsertPair(dataset.NewKey("Gx"), 10, 90))
		require.NoError(t, ds.Finalize())

		_, err = Analyze(ds, nil)
		require.Error(t, err)
	})
}
