package dataset

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tally/errs"
)

func TestNewOutcomeIndex(t *testing.T) {
	idx, err := NewOutcomeIndex([]string{"plus", "minus"})
	require.NoError(t, err)
	require.Equal(t, 2, idx.Len())
	require.Equal(t, []string{"plus", "minus"}, idx.Labels())

	pos, ok := idx.PositionOf("minus")
	require.True(t, ok)
	require.Equal(t, 1, pos)
	require.True(t, idx.Contains("plus"))
	require.False(t, idx.Contains("up"))

	label, ok := idx.LabelAt(0)
	require.True(t, ok)
	require.Equal(t, "plus", label)

	_, ok = idx.LabelAt(2)
	require.False(t, ok)
}

func TestNewOutcomeIndex_Invalid(t *testing.T) {
	_, err := NewOutcomeIndex(nil)
	require.ErrorIs(t, err, errs.ErrEmptyOutcomes)

	_, err = NewOutcomeIndex([]string{})
	require.ErrorIs(t, err, errs.ErrEmptyOutcomes)

	_, err = NewOutcomeIndex([]string{"plus", "plus"})
	require.ErrorIs(t, err, errs.ErrDuplicateOutcome)
	require.ErrorIs(t, err, errs.ErrSchema)

	_, err = NewOutcomeIndex([]string{"plus", ""})
	require.ErrorIs(t, err, errs.ErrEmptyLabel)
}

func TestOutcomeIndex_Equal(t *testing.T) {
	a, err := NewOutcomeIndex([]string{"plus", "minus"})
	require.NoError(t, err)
	b, err := NewOutcomeIndex([]string{"plus", "minus"})
	require.NoError(t, err)
	reordered, err := NewOutcomeIndex([]string{"minus", "plus"})
	require.NoError(t, err)
	wider, err := NewOutcomeIndex([]string{"plus", "minus", "null"})
	require.NoError(t, err)

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(reordered))
	require.False(t, a.Equal(wider))
}

func TestOutcomeIndex_LabelsIsCopy(t *testing.T) {
	idx, err := NewOutcomeIndex([]string{"plus", "minus"})
	require.NoError(t, err)

	labels := idx.Labels()
	labels[0] = "mutated"

	fresh := idx.Labels()
	require.Equal(t, "plus", fresh[0])
}
