package codec

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tally/dataset"
	"github.com/arloliu/tally/errs"
)

func sampleGroup(t *testing.T) *dataset.Group {
	t.Helper()

	group, err := dataset.NewGroup([]string{"plus", "minus"})
	require.NoError(t, err)
	require.NoError(t, group.Admit("DS0", frozenSampleSet(t)))
	require.NoError(t, group.Admit("DS1", frozenSampleSet(t)))

	return group
}

func TestWriteGroupText_Golden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteGroupText(&buf, sampleGroup(t)))

	newGoldie(t).Assert(t, "group_text", buf.Bytes())
}

func TestWriteGroupText_EmptyGroup(t *testing.T) {
	group, err := dataset.NewGroup([]string{"plus", "minus"})
	require.NoError(t, err)

	err = WriteGroupText(&bytes.Buffer{}, group)
	require.ErrorIs(t, err, errs.ErrMemberNotFound)
}

func TestReadGroupText(t *testing.T) {
	input := "## Columns = DS0 plus count, DS0 minus count, DS1 plus count, DS1 minus count\n" +
		"{} 0 100 0 100\n" +
		"Gx 10 90 10 90\n" +
		"Gx Gy 40 60 40 60\n" +
		"Gx Gx Gx Gx 20 80 20 80\n"

	group, err := ReadGroupText(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, []string{"DS0", "DS1"}, group.Names())

	want := frozenSampleSet(t)
	for _, name := range group.Names() {
		member, err := group.Member(name)
		require.NoError(t, err)
		require.True(t, member.IsFrozen())
		require.True(t, member.Equal(want))
	}

	sum, err := group.Sum("DS0", "DS1")
	require.NoError(t, err)
	require.True(t, sum.IsStatic())
	require.True(t, sum.IsFrozen())

	row, err := sum.Lookup(dataset.NewKey("Gx"))
	require.NoError(t, err)
	require.Equal(t, 20.0, row.Count("plus"))
	require.Equal(t, 180.0, row.Count("minus"))
}

func TestReadGroupText_MemberOrder(t *testing.T) {
	input := "## Columns = B plus count, B minus count, A plus count, A minus count\n" +
		"Gx 1 2 3 4\n"

	group, err := ReadGroupText(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, []string{"B", "A"}, group.Names())

	a, err := group.Member("A")
	require.NoError(t, err)
	row, err := a.Lookup(dataset.NewKey("Gx"))
	require.NoError(t, err)
	require.Equal(t, 3.0, row.Count("plus"))
}

func TestReadGroupText_Errors(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		sentinel error
	}{
		{
			name:     "missing header",
			input:    "Gx 10 90\n",
			sentinel: errs.ErrHeaderSyntax,
		},
		{
			name:     "empty input",
			input:    "",
			sentinel: errs.ErrHeaderSyntax,
		},
		{
			name:     "descriptor not member-qualified",
			input:    "## Columns = plus count, minus count\nGx 10 90\n",
			sentinel: errs.ErrColumnSyntax,
		},
		{
			name:     "member shapes differ",
			input:    "## Columns = DS0 plus count, DS0 minus count, DS1 plus count\nGx 1 2 3\n",
			sentinel: errs.ErrColumnSyntax,
		},
		{
			name:     "header after data",
			input:    "## Columns = DS0 plus count, DS0 minus count\nGx 1 2\n## Columns = DS0 plus count, DS0 minus count\n",
			sentinel: errs.ErrHeaderSyntax,
		},
		{
			name:     "short data line",
			input:    "## Columns = DS0 plus count, DS0 minus count\nGx 1\n",
			sentinel: errs.ErrDataSyntax,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadGroupText(strings.NewReader(tc.input))
			require.ErrorIs(t, err, tc.sentinel)
		})
	}
}

func TestGroupTextRoundTrip(t *testing.T) {
	source := sampleGroup(t)

	var buf bytes.Buffer
	require.NoError(t, WriteGroupText(&buf, source))

	loaded, err := ReadGroupText(&buf)
	require.NoError(t, err)
	require.Equal(t, source.Names(), loaded.Names())

	for _, name := range source.Names() {
		want, err := source.Member(name)
		require.NoError(t, err)
		got, err := loaded.Member(name)
		require.NoError(t, err)
		require.True(t, got.Equal(want))
	}
}

func TestGroupTextFileRoundTrip(t *testing.T) {
	source := sampleGroup(t)
	path := filepath.Join(t.TempDir(), "group.txt.gz")
	require.NoError(t, WriteGroupTextFile(path, source))

	loaded, err := ReadGroupTextFile(path)
	require.NoError(t, err)
	require.Equal(t, source.Names(), loaded.Names())

	sum, err := loaded.Sum()
	require.NoError(t, err)
	row, err := sum.Lookup(dataset.NewKey("Gx", "Gy"))
	require.NoError(t, err)
	require.Equal(t, 80.0, row.Count("plus"))
}
