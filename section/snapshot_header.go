package section

import (
	"fmt"

	"github.com/arloliu/tally/errs"
)

// SnapshotHeader is the fixed-size header at the start of a v2 snapshot.
//
// The Options field is always little-endian so the magic number and the
// endianness bit can be read before the body's byte order is known; all
// remaining fields use the byte order the endianness bit selects.
type SnapshotHeader struct {
	// KeyCount is the number of keys stored in the snapshot. For a group
	// snapshot this is the shared key count of all members.
	KeyCount uint32 // byte offset 4-7
	// OutcomeCount is the number of outcome labels in the schema.
	OutcomeCount uint32 // byte offset 8-11
	// MemberCount is the number of group members; 0 for a single dataset.
	MemberCount uint32 // byte offset 12-15
	// KeyTableOffset is the byte offset to the start of the key table.
	KeyTableOffset uint32 // byte offset 16-19
	// OutcomeTableOffset is the byte offset to the start of the outcome
	// label table. The member name table, when present, follows it directly.
	OutcomeTableOffset uint32 // byte offset 20-23
	// CountsPayloadOffset is the byte offset to the start of the
	// (possibly compressed) counts payload.
	CountsPayloadOffset uint32 // byte offset 24-27
	// CountsPayloadSize is the stored size of the counts payload in bytes.
	CountsPayloadSize uint32 // byte offset 28-31

	// Flag is the packed options field.
	Flag SnapshotFlag // byte offset 0-3
}

// NewSnapshotHeader creates a header with default flags. Counts and offsets
// are filled in by the writer once the tables are encoded.
func NewSnapshotHeader() *SnapshotHeader {
	return &SnapshotHeader{
		Flag:           NewSnapshotFlag(),
		KeyTableOffset: HeaderSize,
	}
}

// Parse parses the header from a byte slice of exactly HeaderSize bytes.
func (h *SnapshotHeader) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return fmt.Errorf("%w: header is %d bytes, want %d", errs.ErrSnapshotCorrupt, len(data), HeaderSize)
	}

	// The Options field is read little-endian to recover the endianness bit.
	h.Flag.Options = uint16(data[0]) | (uint16(data[1]) << 8)
	h.Flag.CompressionType = data[2]
	h.Flag.Policy = data[3]

	engine := h.Flag.GetEndianEngine()

	h.KeyCount = engine.Uint32(data[4:8])
	h.OutcomeCount = engine.Uint32(data[8:12])
	h.MemberCount = engine.Uint32(data[12:16])
	h.KeyTableOffset = engine.Uint32(data[16:20])
	h.OutcomeTableOffset = engine.Uint32(data[20:24])
	h.CountsPayloadOffset = engine.Uint32(data[24:28])
	h.CountsPayloadSize = engine.Uint32(data[28:32])

	return h.Flag.Validate()
}

// Bytes serializes the header into a byte slice of HeaderSize bytes.
func (h *SnapshotHeader) Bytes() []byte {
	b := make([]byte, HeaderSize)

	// The Options field is written little-endian regardless of body order.
	b[0] = byte(h.Flag.Options)
	b[1] = byte(h.Flag.Options >> 8)
	b[2] = h.Flag.CompressionType
	b[3] = h.Flag.Policy

	engine := h.Flag.GetEndianEngine()

	engine.PutUint32(b[4:8], h.KeyCount)
	engine.PutUint32(b[8:12], h.OutcomeCount)
	engine.PutUint32(b[12:16], h.MemberCount)
	engine.PutUint32(b[16:20], h.KeyTableOffset)
	engine.PutUint32(b[20:24], h.OutcomeTableOffset)
	engine.PutUint32(b[24:28], h.CountsPayloadOffset)
	engine.PutUint32(b[28:32], h.CountsPayloadSize)

	return b
}

// ParseSnapshotHeader parses a SnapshotHeader from the front of data.
func ParseSnapshotHeader(data []byte) (SnapshotHeader, error) {
	if len(data) < HeaderSize {
		return SnapshotHeader{}, fmt.Errorf("%w: %d bytes is too short for a snapshot header", errs.ErrSnapshotCorrupt, len(data))
	}

	h := SnapshotHeader{}
	if err := h.Parse(data[:HeaderSize]); err != nil {
		return SnapshotHeader{}, err
	}

	return h, nil
}

// PeekVersion inspects the magic number at the front of data and reports the
// snapshot format version without validating the rest of the header.
//
// A magic number in the snapshot family whose version this library does not
// know is ErrSnapshotVersion; anything outside the family is
// ErrSnapshotMagic.
func PeekVersion(data []byte) (int, error) {
	if len(data) < 2 {
		return 0, fmt.Errorf("%w: %d bytes is too short for a snapshot", errs.ErrSnapshotCorrupt, len(data))
	}

	options := uint16(data[0]) | (uint16(data[1]) << 8)
	magic := options & MagicNumberMask
	switch magic {
	case MagicSnapshotV2Opt:
		return SnapshotVersion2, nil
	case MagicSnapshotV1Opt:
		return SnapshotVersion1, nil
	}

	if magic&MagicFamilyMask == MagicFamilyOpt {
		return 0, fmt.Errorf("%w: magic 0x%04X", errs.ErrSnapshotVersion, magic)
	}

	return 0, fmt.Errorf("%w: magic 0x%04X", errs.ErrSnapshotMagic, magic)
}
