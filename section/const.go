package section

import "math"

const (
	// Bit masks for the packed Options field
	StaticMask      = 0x0001 // Mask for storage mode bit (bit 0): 0=dynamic, 1=static
	EndiannessMask  = 0x0002 // Mask for endianness bit (bit 1): 0=little, 1=big
	GroupMask       = 0x0004 // Mask for group snapshot bit (bit 2)
	BuildingMask    = 0x0008 // Mask for building state bit (bit 3): 0=frozen, 1=building
	MagicNumberMask = 0xFFF0 // Mask for magic number (bits 4-15)

	// Magic numbers (bits 4-15)
	MagicSnapshotV1Opt = 0xDA10 // Version 1 snapshot format (legacy, read-only)
	MagicSnapshotV2Opt = 0xDA20 // Version 2 snapshot format (current)

	// All snapshot versions share the 0xDA family byte; the low nibble of
	// the magic encodes the version.
	MagicFamilyMask = 0xFF00
	MagicFamilyOpt  = 0xDA00

	// Snapshot format versions derived from the magic numbers
	SnapshotVersion1 = 1
	SnapshotVersion2 = 2
)

// Offsets and section sizes in the snapshot file
const (
	HeaderSize           = 32             // fixed v2 header size in bytes
	LegacyHeaderSize     = 16             // fixed v1 header size in bytes
	KeyFingerprintSize   = 8              // xxHash64 fingerprint per key entry
	TableFingerprintSize = 8              // xxHash64 fingerprint per label table
	MaxLabelLength       = math.MaxUint16 // maximum byte length of a single label
	MaxLabelsPerKey      = math.MaxUint16 // maximum labels in one key
	MaxTableLabels       = math.MaxUint16 // maximum entries in a label table
)
