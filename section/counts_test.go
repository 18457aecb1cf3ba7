package section

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/tally/endian"
	"github.com/arloliu/tally/errs"
)

func TestCounts_RoundTrip(t *testing.T) {
	counts := []float64{0, 10, 90, 52.5, 47.5, math.MaxFloat64, 0.0001}

	for _, engine := range []endian.EndianEngine{
		endian.GetLittleEndianEngine(),
		endian.GetBigEndianEngine(),
	} {
		encoded := EncodeCounts(counts, engine)
		require.Len(t, encoded, len(counts)*8)

		decoded, err := DecodeCounts(encoded, len(counts), engine)
		require.NoError(t, err)
		require.Equal(t, counts, decoded)
	}
}

func TestCounts_EnginesProduceDifferentBytes(t *testing.T) {
	counts := []float64{100}

	le := EncodeCounts(counts, endian.GetLittleEndianEngine())
	be := EncodeCounts(counts, endian.GetBigEndianEngine())
	require.NotEqual(t, le, be)

	// Cross-decoding with the wrong engine yields garbage, not an error.
	decoded, err := DecodeCounts(le, 1, endian.GetBigEndianEngine())
	require.NoError(t, err)
	require.NotEqual(t, counts, decoded)
}

func TestEncodeCounts_Empty(t *testing.T) {
	require.Nil(t, EncodeCounts(nil, endian.GetLittleEndianEngine()))
	require.Nil(t, EncodeCounts([]float64{}, endian.GetLittleEndianEngine()))

	decoded, err := DecodeCounts(nil, 0, endian.GetLittleEndianEngine())
	require.NoError(t, err)
	require.Empty(t, decoded)
}

func TestDecodeCounts_LengthMismatch(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	encoded := EncodeCounts([]float64{1, 2, 3}, engine)

	_, err := DecodeCounts(encoded, 4, engine)
	require.ErrorIs(t, err, errs.ErrSnapshotCorrupt)

	_, err = DecodeCounts(encoded[:10], 3, engine)
	require.ErrorIs(t, err, errs.ErrSnapshotCorrupt)
}
