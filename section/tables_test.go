package section

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tally/endian"
	"github.com/arloliu/tally/errs"
)

func TestKeyTable_RoundTrip(t *testing.T) {
	keys := [][]string{
		{},
		{"Gx"},
		{"Gx", "Gy"},
		{"Gx", "Gy", "Gx", "Gx"},
		{"Gfiducial.0", "Ggerm#2"},
	}

	for _, engine := range []endian.EndianEngine{
		endian.GetLittleEndianEngine(),
		endian.GetBigEndianEngine(),
	} {
		encoded, err := EncodeKeyTable(keys, engine)
		require.NoError(t, err)

		decoded, consumed, err := DecodeKeyTable(encoded, uint32(len(keys)), engine)
		require.NoError(t, err)
		require.Equal(t, len(encoded), consumed)
		require.Equal(t, keys, decoded)
	}
}

func TestKeyTable_RoundTrip_TrailingData(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	keys := [][]string{{"Gx"}, {"Gy"}}

	encoded, err := EncodeKeyTable(keys, engine)
	require.NoError(t, err)

	trailing := append(encoded, 0xAA, 0xBB, 0xCC)
	decoded, consumed, err := DecodeKeyTable(trailing, 2, engine)
	require.NoError(t, err)
	require.Equal(t, len(encoded), consumed)
	require.Equal(t, keys, decoded)
}

func TestEncodeKeyTable_LabelTooLong(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	long := strings.Repeat("G", MaxLabelLength+1)

	_, err := EncodeKeyTable([][]string{{long}}, engine)
	require.ErrorIs(t, err, errs.ErrSnapshotCorrupt)
}

func TestDecodeKeyTable_Invalid(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	keys := [][]string{{"Gx", "Gy"}, {"Gz"}}

	encoded, err := EncodeKeyTable(keys, engine)
	require.NoError(t, err)

	t.Run("count mismatch", func(t *testing.T) {
		_, _, err := DecodeKeyTable(encoded, 5, engine)
		require.ErrorIs(t, err, errs.ErrSnapshotCorrupt)
	})

	t.Run("short prefix", func(t *testing.T) {
		_, _, err := DecodeKeyTable(encoded[:3], 2, engine)
		require.ErrorIs(t, err, errs.ErrSnapshotCorrupt)
	})

	t.Run("truncated entry", func(t *testing.T) {
		_, _, err := DecodeKeyTable(encoded[:len(encoded)-4], 2, engine)
		require.ErrorIs(t, err, errs.ErrSnapshotCorrupt)
	})

	t.Run("corrupted label bytes", func(t *testing.T) {
		corrupt := make([]byte, len(encoded))
		copy(corrupt, encoded)
		// First label byte lives after the u32 count and u16 label count
		// and u16 length prefix.
		corrupt[8] ^= 0xFF

		_, _, err := DecodeKeyTable(corrupt, 2, engine)
		require.ErrorIs(t, err, errs.ErrFingerprintMismatch)
	})
}

func TestLabelTable_RoundTrip(t *testing.T) {
	cases := [][]string{
		{"plus", "minus"},
		{"0", "1", "00", "01", "10", "11"},
		{"up"},
	}

	for _, labels := range cases {
		for _, engine := range []endian.EndianEngine{
			endian.GetLittleEndianEngine(),
			endian.GetBigEndianEngine(),
		} {
			encoded, err := EncodeLabelTable(labels, engine)
			require.NoError(t, err)

			decoded, consumed, err := DecodeLabelTable(encoded, engine)
			require.NoError(t, err)
			require.Equal(t, len(encoded), consumed)
			require.Equal(t, labels, decoded)
		}
	}
}

func TestDecodeLabelTable_Invalid(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	encoded, err := EncodeLabelTable([]string{"plus", "minus"}, engine)
	require.NoError(t, err)

	t.Run("short data", func(t *testing.T) {
		_, _, err := DecodeLabelTable(encoded[:1], engine)
		require.ErrorIs(t, err, errs.ErrSnapshotCorrupt)
	})

	t.Run("missing fingerprint", func(t *testing.T) {
		_, _, err := DecodeLabelTable(encoded[:len(encoded)-TableFingerprintSize], engine)
		require.ErrorIs(t, err, errs.ErrSnapshotCorrupt)
	})

	t.Run("corrupted label bytes", func(t *testing.T) {
		corrupt := make([]byte, len(encoded))
		copy(corrupt, encoded)
		corrupt[4] ^= 0xFF

		_, _, err := DecodeLabelTable(corrupt, engine)
		require.ErrorIs(t, err, errs.ErrFingerprintMismatch)
	})
}

func TestDecodeLegacyKeyTable(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	keys := [][]string{{"Gx"}, {"Gx", "Gy"}, {}}

	// v1 key tables carry no count prefix and no fingerprints.
	var buf []byte
	for _, labels := range keys {
		buf = engine.AppendUint16(buf, uint16(len(labels)))
		for _, label := range labels {
			buf = engine.AppendUint16(buf, uint16(len(label)))
			buf = append(buf, label...)
		}
	}

	decoded, consumed, err := DecodeLegacyKeyTable(buf, uint32(len(keys)), engine)
	require.NoError(t, err)
	require.Equal(t, len(buf), consumed)
	require.Equal(t, keys, decoded)

	t.Run("truncated", func(t *testing.T) {
		_, _, err := DecodeLegacyKeyTable(buf[:len(buf)-1], uint32(len(keys)), engine)
		require.ErrorIs(t, err, errs.ErrSnapshotCorrupt)
	})
}

func TestDecodeLegacyLabelTable(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	labels := []string{"plus", "minus"}

	var buf []byte
	buf = engine.AppendUint16(buf, uint16(len(labels)))
	for _, label := range labels {
		buf = engine.AppendUint16(buf, uint16(len(label)))
		buf = append(buf, label...)
	}

	decoded, consumed, err := DecodeLegacyLabelTable(buf, engine)
	require.NoError(t, err)
	require.Equal(t, len(buf), consumed)
	require.Equal(t, labels, decoded)
}
