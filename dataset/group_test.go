package dataset

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tally/errs"
)

// newFrozenSample returns the four-row sample dataset, finalized.
func newFrozenSample(t *testing.T) *DataSet {
	t.Helper()

	ds := newSampleSet(t)
	require.NoError(t, ds.Finalize())

	return ds
}

func TestNewGroup(t *testing.T) {
	group, err := NewGroup([]string{"plus", "minus"})
	require.NoError(t, err)
	require.Equal(t, 0, group.Len())
	require.Empty(t, group.Names())
	require.Nil(t, group.Keys())
	require.Equal(t, []string{"plus", "minus"}, group.Outcomes())

	_, err = NewGroup(nil)
	require.ErrorIs(t, err, errs.ErrEmptyOutcomes)
}

func TestGroup_Admit(t *testing.T) {
	group, err := NewGroup([]string{"plus", "minus"})
	require.NoError(t, err)

	ds0 := newFrozenSample(t)
	require.NoError(t, group.Admit("DS0", ds0))
	require.Equal(t, 1, group.Len())
	require.True(t, group.Contains("DS0"))

	// The first member fixes the shared key list.
	keys := group.Keys()
	require.Len(t, keys, 4)
	require.Equal(t, "{}", keys[0].String())

	ds1 := newFrozenSample(t)
	require.NoError(t, group.Admit("DS1", ds1))
	require.Equal(t, []string{"DS0", "DS1"}, group.Names())

	member, err := group.Member("DS0")
	require.NoError(t, err)
	require.Same(t, ds0, member)

	_, err = group.Member("DS9")
	require.ErrorIs(t, err, errs.ErrMemberNotFound)
	require.ErrorIs(t, err, errs.ErrGroup)
}

func TestGroup_Admit_Violations(t *testing.T) {
	group, err := NewGroup([]string{"plus", "minus"})
	require.NoError(t, err)
	require.NoError(t, group.Admit("DS0", newFrozenSample(t)))

	t.Run("duplicate name", func(t *testing.T) {
		err := group.Admit("DS0", newFrozenSample(t))
		require.ErrorIs(t, err, errs.ErrMemberExists)
	})

	t.Run("member not frozen", func(t *testing.T) {
		err := group.Admit("DS1", newSampleSet(t))
		require.ErrorIs(t, err, errs.ErrMemberNotFrozen)
	})

	t.Run("outcome schema disagrees", func(t *testing.T) {
		other, err := New([]string{"up", "down"})
		require.NoError(t, err)
		require.NoError(t, other.Finalize())
		err = group.Admit("DS1", other)
		require.ErrorIs(t, err, errs.ErrSchemaMismatch)
	})

	t.Run("key set disagrees", func(t *testing.T) {
		other, err := New([]string{"plus", "minus"})
		require.NoError(t, err)
		require.NoError(t, other.InsertCounts(NewKey("Gz"), map[string]float64{"plus": 1, "minus": 1}))
		require.NoError(t, other.Finalize())
		err = group.Admit("DS1", other)
		require.ErrorIs(t, err, errs.ErrMisaligned)
	})

	t.Run("key order disagrees", func(t *testing.T) {
		reordered, err := NewStatic([]string{"plus", "minus"},
			[]Key{NewKey("Gx"), Key{}, NewKey("Gx", "Gy"), NewKey("Gx", "Gx", "Gx", "Gx")},
			[]float64{10, 90, 0, 100, 40, 60, 20, 80})
		require.NoError(t, err)
		err = group.Admit("DS1", reordered)
		require.ErrorIs(t, err, errs.ErrMisaligned)
	})

	// Failed admissions never altered the group.
	require.Equal(t, 1, group.Len())
	require.Equal(t, []string{"DS0"}, group.Names())
}

func TestGroup_Admit_StaticMember(t *testing.T) {
	group, err := NewGroup([]string{"plus", "minus"})
	require.NoError(t, err)

	static, err := NewStatic([]string{"plus", "minus"}, []Key{NewKey("Gx")}, []float64{10, 90})
	require.NoError(t, err)
	require.NoError(t, group.Admit("DS0", static))
	require.Equal(t, 1, group.Len())
}

func TestGroup_Iteration(t *testing.T) {
	group, err := NewGroup([]string{"plus", "minus"})
	require.NoError(t, err)
	require.NoError(t, group.Admit("B", newFrozenSample(t)))
	require.NoError(t, group.Admit("A", newFrozenSample(t)))
	require.NoError(t, group.Admit("C", newFrozenSample(t)))

	// Admission order, not lexical order.
	var names []string
	for name, member := range group.All() {
		names = append(names, name)
		require.NotNil(t, member)
	}
	require.Equal(t, []string{"B", "A", "C"}, names)

	count := 0
	for member := range group.Members() {
		require.Equal(t, 4, member.Len())
		count++
	}
	require.Equal(t, 3, count)
}

func TestGroup_Sum(t *testing.T) {
	group, err := NewGroup([]string{"plus", "minus"})
	require.NoError(t, err)
	require.NoError(t, group.Admit("DS0", newFrozenSample(t)))
	require.NoError(t, group.Admit("DS1", newFrozenSample(t)))

	sum, err := group.Sum("DS0", "DS1")
	require.NoError(t, err)
	require.True(t, sum.IsStatic())
	require.True(t, sum.IsFrozen())
	require.Equal(t, 4, sum.Len())

	row, err := sum.Lookup(NewKey("Gx"))
	require.NoError(t, err)
	require.Equal(t, 20.0, row.Count("plus"))
	require.Equal(t, 180.0, row.Count("minus"))

	row, err = sum.Lookup(Key{})
	require.NoError(t, err)
	require.Equal(t, 0.0, row.Count("plus"))
	require.Equal(t, 200.0, row.Count("minus"))
}

func TestGroup_Sum_DefaultsToAllMembers(t *testing.T) {
	group, err := NewGroup([]string{"plus", "minus"})
	require.NoError(t, err)
	require.NoError(t, group.Admit("DS0", newFrozenSample(t)))
	require.NoError(t, group.Admit("DS1", newFrozenSample(t)))
	require.NoError(t, group.Admit("DS2", newFrozenSample(t)))

	sum, err := group.Sum()
	require.NoError(t, err)

	row, err := sum.Lookup(NewKey("Gx", "Gy"))
	require.NoError(t, err)
	require.Equal(t, 120.0, row.Count("plus"))

	subset, err := group.Sum("DS0")
	require.NoError(t, err)
	row, err = subset.Lookup(NewKey("Gx", "Gy"))
	require.NoError(t, err)
	require.Equal(t, 40.0, row.Count("plus"))
}

func TestGroup_Sum_Errors(t *testing.T) {
	group, err := NewGroup([]string{"plus", "minus"})
	require.NoError(t, err)

	_, err = group.Sum()
	require.ErrorIs(t, err, errs.ErrMemberNotFound)

	require.NoError(t, group.Admit("DS0", newFrozenSample(t)))
	_, err = group.Sum("DS0", "DS9")
	require.ErrorIs(t, err, errs.ErrMemberNotFound)
}

func TestGroup_AddCounts(t *testing.T) {
	group, err := NewGroup([]string{"plus", "minus"})
	require.NoError(t, err)

	// Without an established key list there is nothing to shape against.
	err = group.AddCounts("DS0", []float64{1, 2})
	require.ErrorIs(t, err, errs.ErrCountShape)

	require.NoError(t, group.Admit("DS0", newFrozenSample(t)))
	require.NoError(t, group.AddCounts("DS1", []float64{0, 100, 10, 90, 40, 60, 20, 80}))
	require.Equal(t, 2, group.Len())

	member, err := group.Member("DS1")
	require.NoError(t, err)
	require.True(t, member.IsStatic())

	row, err := member.Lookup(NewKey("Gx"))
	require.NoError(t, err)
	require.Equal(t, 10.0, row.Count("plus"))

	err = group.AddCounts("DS2", []float64{1, 2})
	require.ErrorIs(t, err, errs.ErrCountShape)
}

func TestGroup_Copy(t *testing.T) {
	group, err := NewGroup([]string{"plus", "minus"})
	require.NoError(t, err)
	require.NoError(t, group.Admit("DS0", newFrozenSample(t)))

	clone := group.Copy()
	require.Equal(t, group.Names(), clone.Names())

	// Members are deep copies, so mutating a clone member's mutable copy
	// chain never reaches the original. Verify independence directly.
	original, err := group.Member("DS0")
	require.NoError(t, err)
	cloned, err := clone.Member("DS0")
	require.NoError(t, err)
	require.NotSame(t, original, cloned)
	require.True(t, original.Equal(cloned))

	require.NoError(t, clone.Admit("DS1", newFrozenSample(t)))
	require.Equal(t, 1, group.Len())
	require.Equal(t, 2, clone.Len())
}

func TestGroup_Sum_FrequencyDerivedMember(t *testing.T) {
	// DS1's counts arrive as frequency × total and must sum identically
	// with DS0's raw counts.
	group, err := NewGroup([]string{"plus", "minus"})
	require.NoError(t, err)
	require.NoError(t, group.Admit("DS0", newFrozenSample(t)))

	totals := []float64{100, 100, 100, 100}
	freqs := []float64{0, 0.1, 0.4, 0.2}
	flat := make([]float64, 0, 8)
	for i, f := range freqs {
		plus := f * totals[i]
		flat = append(flat, plus, totals[i]-plus)
	}
	require.NoError(t, group.AddCounts("DS1", flat))

	sum, err := group.Sum("DS0", "DS1")
	require.NoError(t, err)

	row, err := sum.Lookup(NewKey("Gx"))
	require.NoError(t, err)
	require.Equal(t, 20.0, row.Count("plus"))
	require.Equal(t, 180.0, row.Count("minus"))
}
