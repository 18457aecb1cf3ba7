package section

import (
	"fmt"

	"github.com/arloliu/tally/endian"
	"github.com/arloliu/tally/errs"
	"github.com/arloliu/tally/format"
)

// LegacyHeader is the fixed-size header of a v1 snapshot. The v1 format is
// read-only: it carries no fingerprints, never compresses the counts
// payload, and has no group or building state, so v1 dynamic snapshots
// always load as frozen.
type LegacyHeader struct {
	// Options is packed like the v2 field: bit 0 static, bit 1 endianness,
	// bits 4-15 magic 0xDA10. Bits 2-3 were reserved and must be zero.
	Options uint16 // byte offset 0-1
	// Policy is the collision policy the dataset was built with.
	Policy uint8 // byte offset 2, offset 3 reserved
	// KeyCount is the number of keys stored in the snapshot.
	KeyCount uint32 // byte offset 4-7
	// OutcomeCount is the number of outcome labels in the schema.
	OutcomeCount uint32 // byte offset 8-11, offsets 12-15 reserved
}

// IsStatic returns whether the snapshot holds a static dataset.
func (h LegacyHeader) IsStatic() bool {
	return (h.Options & StaticMask) != 0
}

// IsLittleEndian returns whether the snapshot body is little-endian.
func (h LegacyHeader) IsLittleEndian() bool {
	return (h.Options & EndiannessMask) == 0
}

// CollisionPolicy returns the collision policy recorded in the header.
func (h LegacyHeader) CollisionPolicy() format.CollisionPolicy {
	return format.CollisionPolicy(h.Policy)
}

// GetEndianEngine returns the endian engine matching the endianness bit.
func (h LegacyHeader) GetEndianEngine() endian.EndianEngine {
	if h.IsLittleEndian() {
		return endian.GetLittleEndianEngine()
	}

	return endian.GetBigEndianEngine()
}

// ParseLegacyHeader parses a v1 header from the front of data.
func ParseLegacyHeader(data []byte) (LegacyHeader, error) {
	if len(data) < LegacyHeaderSize {
		return LegacyHeader{}, fmt.Errorf("%w: %d bytes is too short for a v1 snapshot header", errs.ErrSnapshotCorrupt, len(data))
	}

	h := LegacyHeader{}
	h.Options = uint16(data[0]) | (uint16(data[1]) << 8)
	h.Policy = data[2]

	if h.Options&MagicNumberMask != MagicSnapshotV1Opt {
		return LegacyHeader{}, fmt.Errorf("%w: magic 0x%04X is not a v1 snapshot", errs.ErrSnapshotMagic, h.Options&MagicNumberMask)
	}

	if !format.CollisionPolicy(h.Policy).Valid() {
		return LegacyHeader{}, errs.ErrBadPolicy
	}

	engine := h.GetEndianEngine()
	h.KeyCount = engine.Uint32(data[4:8])
	h.OutcomeCount = engine.Uint32(data[8:12])

	return h, nil
}
