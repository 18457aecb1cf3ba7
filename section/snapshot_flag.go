package section

import (
	"github.com/arloliu/tally/endian"
	"github.com/arloliu/tally/errs"
	"github.com/arloliu/tally/format"
)

// SnapshotFlag represents the packed option fields of the snapshot header.
type SnapshotFlag struct {
	// Options is a packed field for various options.
	// Bit 0 is the storage mode flag, 0 means dynamic, 1 means static.
	// Bit 1 is the endianness flag, 0 means little-endian, 1 means big-endian.
	// Bit 2 is the group flag, set when the snapshot holds a dataset group.
	// Bit 3 is the building flag, set when the dataset was not yet finalized.
	// Bits 4-15 are the magic number identifying the snapshot format:
	//   - 0xDA10: snapshot format v1 (legacy)
	//   - 0xDA20: snapshot format v2 (current)
	Options uint16

	// CompressionType is the compression applied to the counts payload.
	CompressionType uint8
	// Policy is the collision policy the dataset was built with.
	Policy uint8
}

var validCompressions = map[uint8]struct{}{
	uint8(format.CompressionNone): {},
	uint8(format.CompressionZstd): {},
	uint8(format.CompressionS2):   {},
	uint8(format.CompressionLZ4):  {},
	uint8(format.CompressionGzip): {},
}

// NewSnapshotFlag creates a flag with default settings: v2 magic,
// little-endian, dynamic frozen single dataset, uncompressed counts,
// overwrite collision policy.
func NewSnapshotFlag() SnapshotFlag {
	flag := SnapshotFlag{
		Options:         MagicSnapshotV2Opt,
		CompressionType: uint8(format.CompressionNone),
		Policy:          uint8(format.CollisionOverwrite),
	}
	flag.WithLittleEndian()

	return flag
}

// IsStatic returns whether the snapshot holds a static dataset.
func (f SnapshotFlag) IsStatic() bool {
	return (f.Options & StaticMask) != 0
}

// SetStatic sets or clears the static storage bit.
func (f *SnapshotFlag) SetStatic(static bool) {
	if static {
		f.Options |= StaticMask
	} else {
		f.Options &^= StaticMask
	}
}

// IsLittleEndian returns whether the snapshot body is little-endian.
func (f SnapshotFlag) IsLittleEndian() bool {
	return (f.Options & EndiannessMask) == 0
}

// IsBigEndian returns whether the snapshot body is big-endian.
func (f SnapshotFlag) IsBigEndian() bool {
	return (f.Options & EndiannessMask) != 0
}

// WithLittleEndian sets little-endian byte order.
func (f *SnapshotFlag) WithLittleEndian() {
	f.Options &= ^uint16(EndiannessMask)
}

// WithBigEndian sets big-endian byte order.
func (f *SnapshotFlag) WithBigEndian() {
	f.Options |= EndiannessMask
}

// IsGroup returns whether the snapshot holds a dataset group.
func (f SnapshotFlag) IsGroup() bool {
	return (f.Options & GroupMask) != 0
}

// SetGroup sets or clears the group bit.
func (f *SnapshotFlag) SetGroup(group bool) {
	if group {
		f.Options |= GroupMask
	} else {
		f.Options &^= GroupMask
	}
}

// IsBuilding returns whether the dataset was snapshotted before finalize.
func (f SnapshotFlag) IsBuilding() bool {
	return (f.Options & BuildingMask) != 0
}

// SetBuilding sets or clears the building bit.
func (f *SnapshotFlag) SetBuilding(building bool) {
	if building {
		f.Options |= BuildingMask
	} else {
		f.Options &^= BuildingMask
	}
}

// GetMagicNumber returns the magic number from the Options field.
func (f SnapshotFlag) GetMagicNumber() uint16 {
	return f.Options & MagicNumberMask
}

// Compression returns the counts payload compression type.
func (f SnapshotFlag) Compression() format.CompressionType {
	return format.CompressionType(f.CompressionType)
}

// SetCompression sets the counts payload compression type.
func (f *SnapshotFlag) SetCompression(compression format.CompressionType) {
	f.CompressionType = uint8(compression)
}

// CollisionPolicy returns the collision policy recorded in the flag.
func (f SnapshotFlag) CollisionPolicy() format.CollisionPolicy {
	return format.CollisionPolicy(f.Policy)
}

// SetCollisionPolicy records the collision policy in the flag.
func (f *SnapshotFlag) SetCollisionPolicy(policy format.CollisionPolicy) {
	f.Policy = uint8(policy)
}

// IsValidMagicNumber checks whether the magic number is the current format's.
func (f SnapshotFlag) IsValidMagicNumber() bool {
	return f.GetMagicNumber() == MagicSnapshotV2Opt
}

// IsValidCompression checks whether the compression type is recognized.
func (f SnapshotFlag) IsValidCompression() bool {
	_, ok := validCompressions[f.CompressionType]
	return ok
}

// Validate checks whether the flag contains valid values for the current
// snapshot format.
func (f SnapshotFlag) Validate() error {
	if !f.IsValidMagicNumber() {
		return errs.ErrSnapshotMagic
	}

	if !f.IsValidCompression() {
		return errs.ErrUnsupportedCompression
	}

	if !format.CollisionPolicy(f.Policy).Valid() {
		return errs.ErrBadPolicy
	}

	return nil
}

// GetEndianEngine returns the endian engine matching the endianness bit.
func (f SnapshotFlag) GetEndianEngine() endian.EndianEngine {
	if f.IsLittleEndian() {
		return endian.GetLittleEndianEngine()
	}

	return endian.GetBigEndianEngine()
}
