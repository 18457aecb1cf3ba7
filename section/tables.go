package section

import (
	"fmt"
	"math"

	"github.com/arloliu/tally/endian"
	"github.com/arloliu/tally/errs"
	"github.com/arloliu/tally/internal/hash"
)

// EncodeKeyTable encodes keys as label-list entries with per-key fingerprints.
//
// Format, repeated KeyCount times after a uint32 count prefix:
//
//	[LabelCount: uint16] [Len: uint16][Label: UTF-8]... [Fingerprint: uint64]
//
// The fingerprint is the xxHash64 of the entry's encoded label block and is
// verified on decode, so a corrupted key surfaces as an error rather than a
// silently renamed row.
func EncodeKeyTable(keys [][]string, engine endian.EndianEngine) ([]byte, error) {
	if uint64(len(keys)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: key count %d exceeds maximum %d", errs.ErrSnapshotCorrupt, len(keys), uint32(math.MaxUint32))
	}

	buf := make([]byte, 0, 4+len(keys)*16)
	buf = engine.AppendUint32(buf, uint32(len(keys)))

	for i, labels := range keys {
		if len(labels) > MaxLabelsPerKey {
			return nil, fmt.Errorf("%w: key %d has %d labels, maximum is %d", errs.ErrSnapshotCorrupt, i, len(labels), MaxLabelsPerKey)
		}

		entryStart := len(buf)
		buf = engine.AppendUint16(buf, uint16(len(labels)))
		for _, label := range labels {
			if len(label) > MaxLabelLength {
				return nil, fmt.Errorf("%w: label in key %d exceeds maximum length %d bytes", errs.ErrSnapshotCorrupt, i, MaxLabelLength)
			}
			buf = engine.AppendUint16(buf, uint16(len(label)))
			buf = append(buf, label...)
		}

		buf = engine.AppendUint64(buf, hash.FingerprintBytes(buf[entryStart:]))
	}

	return buf, nil
}

// DecodeKeyTable decodes a key table and verifies every entry fingerprint.
// It returns the decoded label lists and the number of bytes consumed.
func DecodeKeyTable(data []byte, expected uint32, engine endian.EndianEngine) ([][]string, int, error) {
	offset := 0

	if len(data) < offset+4 {
		return nil, 0, fmt.Errorf("%w: cannot read key table count (need 4 bytes, have %d)", errs.ErrSnapshotCorrupt, len(data))
	}
	count := engine.Uint32(data[offset:])
	offset += 4

	if count != expected {
		return nil, 0, fmt.Errorf("%w: key table holds %d keys, header claims %d", errs.ErrSnapshotCorrupt, count, expected)
	}

	keys := make([][]string, count)
	for i := range keys {
		entryStart := offset

		if len(data) < offset+2 {
			return nil, 0, fmt.Errorf("%w: cannot read label count for key %d at offset %d", errs.ErrSnapshotCorrupt, i, offset)
		}
		labelCount := engine.Uint16(data[offset:])
		offset += 2

		labels := make([]string, labelCount)
		for j := range labels {
			if len(data) < offset+2 {
				return nil, 0, fmt.Errorf("%w: cannot read length for label %d of key %d at offset %d", errs.ErrSnapshotCorrupt, j, i, offset)
			}
			labelLen := int(engine.Uint16(data[offset:]))
			offset += 2

			if len(data) < offset+labelLen {
				return nil, 0, fmt.Errorf("%w: cannot read label %d of key %d (need %d bytes at offset %d, have %d total)",
					errs.ErrSnapshotCorrupt, j, i, labelLen, offset, len(data))
			}
			labels[j] = string(data[offset : offset+labelLen])
			offset += labelLen
		}

		if len(data) < offset+KeyFingerprintSize {
			return nil, 0, fmt.Errorf("%w: cannot read fingerprint for key %d at offset %d", errs.ErrSnapshotCorrupt, i, offset)
		}
		stored := engine.Uint64(data[offset:])
		computed := hash.FingerprintBytes(data[entryStart:offset])
		offset += KeyFingerprintSize

		if stored != computed {
			return nil, 0, fmt.Errorf("%w: key %d: stored 0x%016x, computed 0x%016x", errs.ErrFingerprintMismatch, i, stored, computed)
		}

		keys[i] = labels
	}

	return keys, offset, nil
}

// EncodeLabelTable encodes a flat list of labels (outcome labels or member
// names) with a trailing fingerprint over the encoded table bytes.
//
// Format: [Count: uint16] [Len: uint16][Label: UTF-8]... [Fingerprint: uint64]
func EncodeLabelTable(labels []string, engine endian.EndianEngine) ([]byte, error) {
	if len(labels) > MaxTableLabels {
		return nil, fmt.Errorf("%w: label count %d exceeds maximum %d", errs.ErrSnapshotCorrupt, len(labels), MaxTableLabels)
	}

	buf := make([]byte, 0, 2+len(labels)*8)
	buf = engine.AppendUint16(buf, uint16(len(labels)))

	for _, label := range labels {
		if len(label) > MaxLabelLength {
			return nil, fmt.Errorf("%w: label %q exceeds maximum length %d bytes", errs.ErrSnapshotCorrupt, label, MaxLabelLength)
		}
		buf = engine.AppendUint16(buf, uint16(len(label)))
		buf = append(buf, label...)
	}

	buf = engine.AppendUint64(buf, hash.FingerprintBytes(buf))

	return buf, nil
}

// DecodeLabelTable decodes a label table, verifies its fingerprint, and
// returns the labels plus the number of bytes consumed.
func DecodeLabelTable(data []byte, engine endian.EndianEngine) ([]string, int, error) {
	labels, offset, err := decodeLabelList(data, engine)
	if err != nil {
		return nil, 0, err
	}

	if len(data) < offset+TableFingerprintSize {
		return nil, 0, fmt.Errorf("%w: cannot read label table fingerprint at offset %d", errs.ErrSnapshotCorrupt, offset)
	}
	stored := engine.Uint64(data[offset:])
	computed := hash.FingerprintBytes(data[:offset])
	offset += TableFingerprintSize

	if stored != computed {
		return nil, 0, fmt.Errorf("%w: label table: stored 0x%016x, computed 0x%016x", errs.ErrFingerprintMismatch, stored, computed)
	}

	return labels, offset, nil
}

// decodeLabelList decodes the count-prefixed label list shared by the v1 and
// v2 table formats, without fingerprint handling.
func decodeLabelList(data []byte, engine endian.EndianEngine) ([]string, int, error) {
	offset := 0

	if len(data) < offset+2 {
		return nil, 0, fmt.Errorf("%w: cannot read label count (need 2 bytes, have %d)", errs.ErrSnapshotCorrupt, len(data))
	}
	count := engine.Uint16(data[offset:])
	offset += 2

	labels := make([]string, count)
	for i := range labels {
		if len(data) < offset+2 {
			return nil, 0, fmt.Errorf("%w: cannot read length for label %d at offset %d", errs.ErrSnapshotCorrupt, i, offset)
		}
		labelLen := int(engine.Uint16(data[offset:]))
		offset += 2

		if len(data) < offset+labelLen {
			return nil, 0, fmt.Errorf("%w: cannot read label %d (need %d bytes at offset %d, have %d total)",
				errs.ErrSnapshotCorrupt, i, labelLen, offset, len(data))
		}
		labels[i] = string(data[offset : offset+labelLen])
		offset += labelLen
	}

	return labels, offset, nil
}

// DecodeLegacyKeyTable decodes a v1 key table: KeyCount entries of
// [LabelCount: uint16][Len: uint16][Label]..., with no count prefix and no
// fingerprints.
func DecodeLegacyKeyTable(data []byte, expected uint32, engine endian.EndianEngine) ([][]string, int, error) {
	offset := 0
	keys := make([][]string, expected)

	for i := range keys {
		if len(data) < offset+2 {
			return nil, 0, fmt.Errorf("%w: cannot read label count for key %d at offset %d", errs.ErrSnapshotCorrupt, i, offset)
		}
		labelCount := engine.Uint16(data[offset:])
		offset += 2

		labels := make([]string, labelCount)
		for j := range labels {
			if len(data) < offset+2 {
				return nil, 0, fmt.Errorf("%w: cannot read length for label %d of key %d at offset %d", errs.ErrSnapshotCorrupt, j, i, offset)
			}
			labelLen := int(engine.Uint16(data[offset:]))
			offset += 2

			if len(data) < offset+labelLen {
				return nil, 0, fmt.Errorf("%w: cannot read label %d of key %d (need %d bytes at offset %d, have %d total)",
					errs.ErrSnapshotCorrupt, j, i, labelLen, offset, len(data))
			}
			labels[j] = string(data[offset : offset+labelLen])
			offset += labelLen
		}

		keys[i] = labels
	}

	return keys, offset, nil
}

// DecodeLegacyLabelTable decodes a v1 label table, which is the plain
// count-prefixed list without a fingerprint.
func DecodeLegacyLabelTable(data []byte, engine endian.EndianEngine) ([]string, int, error) {
	return decodeLabelList(data, engine)
}
