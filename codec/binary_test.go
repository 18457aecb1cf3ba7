package codec

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tally/dataset"
	"github.com/arloliu/tally/endian"
	"github.com/arloliu/tally/errs"
	"github.com/arloliu/tally/format"
)

func snapshotBytes(t *testing.T, ds *dataset.DataSet, opts ...Option) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, WriteBinary(&buf, ds, opts...))

	return buf.Bytes()
}

func TestBinaryRoundTrip(t *testing.T) {
	t.Run("frozen dynamic", func(t *testing.T) {
		source := frozenSampleSet(t)

		loaded, err := ReadBinary(bytes.NewReader(snapshotBytes(t, source)))
		require.NoError(t, err)
		require.True(t, loaded.IsFrozen())
		require.False(t, loaded.IsStatic())
		require.Equal(t, format.CollisionOverwrite, loaded.CollisionPolicy())
		require.True(t, loaded.Equal(source))
	})

	t.Run("building dataset stays mutable", func(t *testing.T) {
		source := sampleSet(t)

		loaded, err := ReadBinary(bytes.NewReader(snapshotBytes(t, source)))
		require.NoError(t, err)
		require.False(t, loaded.IsFrozen())
		require.True(t, loaded.Equal(source))

		require.NoError(t, loaded.InsertPair(dataset.NewKey("Gy"), 5, 95))
		require.NoError(t, loaded.Finalize())
		require.Equal(t, 5, loaded.Len())
	})

	t.Run("static", func(t *testing.T) {
		source, err := dataset.NewStatic([]string{"plus", "minus"},
			[]dataset.Key{dataset.NewKey("Gx"), dataset.NewKey("Gy")},
			[]float64{10, 90, 25, 75})
		require.NoError(t, err)

		loaded, err := ReadBinary(bytes.NewReader(snapshotBytes(t, source)))
		require.NoError(t, err)
		require.True(t, loaded.IsStatic())
		require.True(t, loaded.IsFrozen())
		require.True(t, loaded.Equal(source))
	})

	t.Run("keep separate continues tagging", func(t *testing.T) {
		source, err := dataset.New([]string{"plus", "minus"},
			dataset.WithCollisionPolicy(format.CollisionKeepSeparate))
		require.NoError(t, err)
		require.NoError(t, source.InsertPair(dataset.NewKey("Gx"), 1, 2))
		require.NoError(t, source.InsertPair(dataset.NewKey("Gx"), 3, 4))

		loaded, err := ReadBinary(bytes.NewReader(snapshotBytes(t, source)))
		require.NoError(t, err)
		require.Equal(t, format.CollisionKeepSeparate, loaded.CollisionPolicy())
		require.True(t, loaded.Equal(source))
		require.True(t, loaded.Contains(dataset.NewKey("Gx", "#1")))

		require.NoError(t, loaded.InsertPair(dataset.NewKey("Gx"), 5, 6))
		require.True(t, loaded.Contains(dataset.NewKey("Gx", "#2")))
	})

	t.Run("empty dataset", func(t *testing.T) {
		source, err := dataset.New([]string{"plus", "minus"})
		require.NoError(t, err)
		require.NoError(t, source.Finalize())

		loaded, err := ReadBinary(bytes.NewReader(snapshotBytes(t, source)))
		require.NoError(t, err)
		require.Equal(t, 0, loaded.Len())
		require.True(t, loaded.IsFrozen())
		require.Equal(t, []string{"plus", "minus"}, loaded.Outcomes())
	})
}

func TestBinaryRoundTrip_Compression(t *testing.T) {
	source := frozenSampleSet(t)

	compressions := []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
		format.CompressionGzip,
	}

	for _, compression := range compressions {
		t.Run(compression.String(), func(t *testing.T) {
			data := snapshotBytes(t, source, WithCompression(compression))

			loaded, err := ReadBinary(bytes.NewReader(data))
			require.NoError(t, err)
			require.True(t, loaded.Equal(source))
		})
	}
}

func TestBinaryRoundTrip_BigEndian(t *testing.T) {
	source := frozenSampleSet(t)
	data := snapshotBytes(t, source, WithBigEndian())

	loaded, err := ReadBinary(bytes.NewReader(data))
	require.NoError(t, err)
	require.True(t, loaded.Equal(source))
}

func TestBinaryGroupRoundTrip(t *testing.T) {
	source := sampleGroup(t)

	var buf bytes.Buffer
	require.NoError(t, WriteGroupBinary(&buf, source, WithCompression(format.CompressionS2)))

	loaded, err := ReadGroupBinary(&buf)
	require.NoError(t, err)
	require.Equal(t, []string{"DS0", "DS1"}, loaded.Names())

	for _, name := range loaded.Names() {
		want, err := source.Member(name)
		require.NoError(t, err)
		got, err := loaded.Member(name)
		require.NoError(t, err)
		require.True(t, got.IsStatic())
		require.True(t, got.IsFrozen())
		require.True(t, got.Equal(want))
	}

	sum, err := loaded.Sum()
	require.NoError(t, err)
	row, err := sum.Lookup(dataset.NewKey("Gx"))
	require.NoError(t, err)
	require.Equal(t, 20.0, row.Count("plus"))
	require.Equal(t, 180.0, row.Count("minus"))
}

func TestReadBinary_KindMismatch(t *testing.T) {
	t.Run("group snapshot into ReadBinary", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteGroupBinary(&buf, sampleGroup(t)))

		_, err := ReadBinary(&buf)
		require.ErrorIs(t, err, errs.ErrSnapshotKind)
	})

	t.Run("dataset snapshot into ReadGroupBinary", func(t *testing.T) {
		data := snapshotBytes(t, frozenSampleSet(t))

		_, err := ReadGroupBinary(bytes.NewReader(data))
		require.ErrorIs(t, err, errs.ErrSnapshotKind)
	})
}

func TestReadBinary_Corrupt(t *testing.T) {
	pristine := snapshotBytes(t, frozenSampleSet(t))

	corrupted := func(mutate func(data []byte)) []byte {
		data := bytes.Clone(pristine)
		mutate(data)

		return data
	}

	t.Run("too short for a snapshot", func(t *testing.T) {
		_, err := ReadBinary(bytes.NewReader(pristine[:1]))
		require.ErrorIs(t, err, errs.ErrSnapshotCorrupt)
	})

	t.Run("truncated header", func(t *testing.T) {
		_, err := ReadBinary(bytes.NewReader(pristine[:16]))
		require.ErrorIs(t, err, errs.ErrSnapshotCorrupt)
	})

	t.Run("unknown magic", func(t *testing.T) {
		data := corrupted(func(data []byte) { data[1] ^= 0xFF })

		_, err := ReadBinary(bytes.NewReader(data))
		require.ErrorIs(t, err, errs.ErrSnapshotMagic)
	})

	t.Run("flipped key table byte", func(t *testing.T) {
		data := corrupted(func(data []byte) {
			idx := bytes.Index(data, []byte("Gx"))
			require.Positive(t, idx)
			data[idx] ^= 0x01
		})

		_, err := ReadBinary(bytes.NewReader(data))
		require.ErrorIs(t, err, errs.ErrFingerprintMismatch)
	})

	t.Run("flipped outcome table byte", func(t *testing.T) {
		data := corrupted(func(data []byte) {
			idx := bytes.Index(data, []byte("plus"))
			require.Positive(t, idx)
			data[idx] ^= 0x01
		})

		_, err := ReadBinary(bytes.NewReader(data))
		require.ErrorIs(t, err, errs.ErrFingerprintMismatch)
	})

	t.Run("payload size disagrees", func(t *testing.T) {
		engine := endian.GetLittleEndianEngine()
		data := corrupted(func(data []byte) {
			engine.PutUint32(data[28:32], engine.Uint32(data[28:32])+8)
		})

		_, err := ReadBinary(bytes.NewReader(data))
		require.ErrorIs(t, err, errs.ErrSnapshotCorrupt)
	})

	t.Run("truncated payload", func(t *testing.T) {
		_, err := ReadBinary(bytes.NewReader(pristine[:len(pristine)-4]))
		require.ErrorIs(t, err, errs.ErrSnapshotCorrupt)
	})
}

func TestBinaryFileRoundTrip(t *testing.T) {
	source := frozenSampleSet(t)

	t.Run("plain path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dataset.bin")
		require.NoError(t, WriteBinaryFile(path, source))

		loaded, err := ReadBinaryFile(path)
		require.NoError(t, err)
		require.True(t, loaded.Equal(source))
	})

	t.Run("zstd suffix with payload compression", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dataset.bin.zst")
		require.NoError(t, WriteBinaryFile(path, source, WithCompression(format.CompressionLZ4)))

		loaded, err := ReadBinaryFile(path)
		require.NoError(t, err)
		require.True(t, loaded.Equal(source))
	})
}

func TestGroupBinaryFileRoundTrip(t *testing.T) {
	source := sampleGroup(t)
	path := filepath.Join(t.TempDir(), "group.bin")
	require.NoError(t, WriteGroupBinaryFile(path, source))

	loaded, err := ReadGroupBinaryFile(path)
	require.NoError(t, err)
	require.Equal(t, source.Names(), loaded.Names())
	require.Equal(t, source.Keys(), loaded.Keys())
}
