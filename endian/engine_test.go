package endian

import (
	"encoding/binary"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestCheckEndianness(t *testing.T) {
	require := require.New(t)

	result := CheckEndianness()

	var probe uint16 = 0x0102
	probeBytes := (*[2]byte)(unsafe.Pointer(&probe))

	switch probeBytes[0] {
	case 0x01:
		require.Equal(binary.BigEndian, result)
	case 0x02:
		require.Equal(binary.LittleEndian, result)
	default:
		require.Failf("unexpected byte value", "got: %v", probeBytes[0])
	}

	// Must be stable across calls.
	for range 10 {
		require.Equal(result, CheckEndianness())
	}
}

func TestIsNativeEndiannessInverse(t *testing.T) {
	little := IsNativeLittleEndian()
	big := IsNativeBigEndian()

	require.NotEqual(t, little, big)
	require.True(t, little || big)
}

func TestCompareNativeEndian(t *testing.T) {
	if IsNativeLittleEndian() {
		require.True(t, CompareNativeEndian(GetLittleEndianEngine()))
		require.False(t, CompareNativeEndian(GetBigEndianEngine()))
	} else {
		require.False(t, CompareNativeEndian(GetLittleEndianEngine()))
		require.True(t, CompareNativeEndian(GetBigEndianEngine()))
	}
}

func TestEndianEngines_RoundTrip(t *testing.T) {
	littleEngine := GetLittleEndianEngine()
	bigEngine := GetBigEndianEngine()

	require.Implements(t, (*EndianEngine)(nil), littleEngine)
	require.Implements(t, (*EndianEngine)(nil), bigEngine)

	var value32 uint32 = 0x01020304
	littleBuf := make([]byte, 4)
	bigBuf := make([]byte, 4)

	littleEngine.PutUint32(littleBuf, value32)
	bigEngine.PutUint32(bigBuf, value32)

	require.Equal(t, byte(0x04), littleBuf[0])
	require.Equal(t, byte(0x01), bigBuf[0])
	require.Equal(t, value32, littleEngine.Uint32(littleBuf))
	require.Equal(t, value32, bigEngine.Uint32(bigBuf))

	var value64 uint64 = 0x0102030405060708
	require.Equal(t, value64, littleEngine.Uint64(littleEngine.AppendUint64(nil, value64)))
	require.Equal(t, value64, bigEngine.Uint64(bigEngine.AppendUint64(nil, value64)))
}
