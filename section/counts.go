package section

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/arloliu/tally/endian"
	"github.com/arloliu/tally/errs"
)

// EncodeCounts serializes a flat count array as fixed-width float64 values.
// When the engine matches the host byte order the floats are copied wholesale
// instead of element by element.
func EncodeCounts(counts []float64, engine endian.EndianEngine) []byte {
	if len(counts) == 0 {
		return nil
	}

	if endian.CompareNativeEndian(engine) {
		buf := make([]byte, len(counts)*8)
		src := unsafe.Slice((*byte)(unsafe.Pointer(&counts[0])), len(counts)*8)
		copy(buf, src)

		return buf
	}

	buf := make([]byte, 0, len(counts)*8)
	for _, v := range counts {
		buf = engine.AppendUint64(buf, math.Float64bits(v))
	}

	return buf
}

// DecodeCounts deserializes a counts payload into a freshly allocated flat
// array of the expected length.
func DecodeCounts(data []byte, expected int, engine endian.EndianEngine) ([]float64, error) {
	if len(data) != expected*8 {
		return nil, fmt.Errorf("%w: counts payload is %d bytes, want %d", errs.ErrSnapshotCorrupt, len(data), expected*8)
	}

	counts := make([]float64, expected)
	if expected == 0 {
		return counts, nil
	}

	if endian.CompareNativeEndian(engine) {
		dst := unsafe.Slice((*byte)(unsafe.Pointer(&counts[0])), expected*8)
		copy(dst, data)

		return counts, nil
	}

	for i := range counts {
		counts[i] = math.Float64frombits(engine.Uint64(data[i*8:]))
	}

	return counts, nil
}
