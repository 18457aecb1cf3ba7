package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tally/dataset"
	"github.com/arloliu/tally/endian"
	"github.com/arloliu/tally/errs"
	"github.com/arloliu/tally/format"
	"github.com/arloliu/tally/section"
)

// legacySnapshot hand-assembles a v1 snapshot: 16-byte header, key table
// and outcome table without fingerprints, raw little-endian counts.
func legacySnapshot(t *testing.T, static bool, policy format.CollisionPolicy, keys [][]string, outcomes []string, counts []float64) []byte {
	t.Helper()

	engine := endian.GetLittleEndianEngine()

	options := uint16(section.MagicSnapshotV1Opt)
	if static {
		options |= section.StaticMask
	}

	buf := make([]byte, section.LegacyHeaderSize)
	buf[0] = byte(options)
	buf[1] = byte(options >> 8)
	buf[2] = byte(policy)
	engine.PutUint32(buf[4:8], uint32(len(keys)))
	engine.PutUint32(buf[8:12], uint32(len(outcomes)))

	for _, labels := range keys {
		buf = engine.AppendUint16(buf, uint16(len(labels)))
		for _, label := range labels {
			buf = engine.AppendUint16(buf, uint16(len(label)))
			buf = append(buf, label...)
		}
	}

	buf = engine.AppendUint16(buf, uint16(len(outcomes)))
	for _, label := range outcomes {
		buf = engine.AppendUint16(buf, uint16(len(label)))
		buf = append(buf, label...)
	}

	return append(buf, section.EncodeCounts(counts, engine)...)
}

func TestReadBinary_LegacyDynamic(t *testing.T) {
	data := legacySnapshot(t, false, format.CollisionOverwrite,
		[][]string{nil, {"Gx"}, {"Gx", "Gy"}},
		[]string{"plus", "minus"},
		[]float64{0, 100, 10, 90, 40, 60})

	ds, err := ReadBinary(bytes.NewReader(data))
	require.NoError(t, err)
	require.True(t, ds.IsFrozen())
	require.False(t, ds.IsStatic())
	require.Equal(t, format.CollisionOverwrite, ds.CollisionPolicy())
	require.Equal(t, 3, ds.Len())

	row, err := ds.Lookup(dataset.Key{})
	require.NoError(t, err)
	require.Equal(t, 100.0, row.Count("minus"))

	row, err = ds.Lookup(dataset.NewKey("Gx", "Gy"))
	require.NoError(t, err)
	require.Equal(t, 40.0, row.Count("plus"))
}

func TestReadBinary_LegacyStatic(t *testing.T) {
	data := legacySnapshot(t, true, format.CollisionOverwrite,
		[][]string{{"Gx"}, {"Gy"}},
		[]string{"plus", "minus"},
		[]float64{10, 90, 25, 75})

	ds, err := ReadBinary(bytes.NewReader(data))
	require.NoError(t, err)
	require.True(t, ds.IsStatic())
	require.True(t, ds.IsFrozen())

	row, err := ds.Lookup(dataset.NewKey("Gy"))
	require.NoError(t, err)
	require.Equal(t, 25.0, row.Count("plus"))
}

func TestReadBinary_LegacyKeepSeparate(t *testing.T) {
	data := legacySnapshot(t, false, format.CollisionKeepSeparate,
		[][]string{{"Gx"}, {"Gx", "#1"}},
		[]string{"plus", "minus"},
		[]float64{1, 2, 3, 4})

	ds, err := ReadBinary(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, format.CollisionKeepSeparate, ds.CollisionPolicy())
	require.True(t, ds.Contains(dataset.NewKey("Gx")))
	require.True(t, ds.Contains(dataset.NewKey("Gx", "#1")))
	require.True(t, ds.IsFrozen())
}

func TestReadGroupBinary_LegacyRejected(t *testing.T) {
	data := legacySnapshot(t, false, format.CollisionOverwrite,
		[][]string{{"Gx"}}, []string{"plus", "minus"}, []float64{1, 2})

	_, err := ReadGroupBinary(bytes.NewReader(data))
	require.ErrorIs(t, err, errs.ErrSnapshotKind)
}

func TestReadBinary_LegacyCorrupt(t *testing.T) {
	pristine := legacySnapshot(t, false, format.CollisionOverwrite,
		[][]string{{"Gx"}, {"Gy"}},
		[]string{"plus", "minus"},
		[]float64{10, 90, 25, 75})

	t.Run("truncated counts", func(t *testing.T) {
		_, err := ReadBinary(bytes.NewReader(pristine[:len(pristine)-8]))
		require.ErrorIs(t, err, errs.ErrSnapshotCorrupt)
	})

	t.Run("trailing garbage", func(t *testing.T) {
		data := append(bytes.Clone(pristine), 0xEE)

		_, err := ReadBinary(bytes.NewReader(data))
		require.ErrorIs(t, err, errs.ErrSnapshotCorrupt)
	})

	t.Run("bad policy byte", func(t *testing.T) {
		data := bytes.Clone(pristine)
		data[2] = 0x7F

		_, err := ReadBinary(bytes.NewReader(data))
		require.ErrorIs(t, err, errs.ErrBadPolicy)
	})

	t.Run("truncated header", func(t *testing.T) {
		_, err := ReadBinary(bytes.NewReader(pristine[:8]))
		require.ErrorIs(t, err, errs.ErrSnapshotCorrupt)
	})
}
