package codec

import (
	"fmt"
	"io"
	"math"

	"github.com/arloliu/tally/compress"
	"github.com/arloliu/tally/dataset"
	"github.com/arloliu/tally/errs"
	"github.com/arloliu/tally/section"
)

// ReadBinary reads a binary snapshot holding a single dataset. Version 2
// snapshots restore storage mode, building state, and collision policy
// exactly; version 1 snapshots load through the legacy reader and always
// come back frozen.
//
// Returns:
//   - *dataset.DataSet: The restored dataset
//   - error: errs.ErrSnapshotMagic, errs.ErrSnapshotCorrupt,
//     errs.ErrFingerprintMismatch, or errs.ErrSnapshotKind when the
//     snapshot holds a group; I/O errors unchanged
func ReadBinary(r io.Reader, opts ...Option) (*dataset.DataSet, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	version, err := section.PeekVersion(data)
	if err != nil {
		return nil, err
	}
	if version == section.SnapshotVersion1 {
		return readLegacy(data, cfg)
	}

	snap, err := parseSnapshot(data)
	if err != nil {
		return nil, err
	}
	if snap.header.Flag.IsGroup() {
		return nil, fmt.Errorf("%w: snapshot holds a dataset group, want a single dataset", errs.ErrSnapshotKind)
	}

	ds, err := snap.dataset()
	if err != nil {
		return nil, err
	}

	cfg.logger.Debug("binary dataset loaded", "version", version, "rows", ds.Len(),
		"outcomes", ds.NumOutcomes(), "mode", ds.Mode().String())

	return ds, nil
}

// ReadBinaryFile reads a binary snapshot from path, decompressing
// transparently when the path carries a recognized compression suffix.
func ReadBinaryFile(path string, opts ...Option) (*dataset.DataSet, error) {
	var ds *dataset.DataSet
	err := readFile(path, func(r io.Reader) error {
		var err error
		ds, err = ReadBinary(r, opts...)

		return err
	})
	if err != nil {
		return nil, err
	}

	return ds, nil
}

// ReadGroupBinary reads a binary snapshot holding a dataset group. Members
// restore as static frozen datasets admitted in their stored order.
func ReadGroupBinary(r io.Reader, opts ...Option) (*dataset.Group, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	version, err := section.PeekVersion(data)
	if err != nil {
		return nil, err
	}
	if version == section.SnapshotVersion1 {
		return nil, fmt.Errorf("%w: version 1 snapshots never hold groups", errs.ErrSnapshotKind)
	}

	snap, err := parseSnapshot(data)
	if err != nil {
		return nil, err
	}
	if !snap.header.Flag.IsGroup() {
		return nil, fmt.Errorf("%w: snapshot holds a single dataset, want a group", errs.ErrSnapshotKind)
	}

	group, err := snap.group()
	if err != nil {
		return nil, err
	}

	cfg.logger.Debug("binary group loaded", "version", version,
		"members", group.Len(), "rows", len(group.Keys()))

	return group, nil
}

// ReadGroupBinaryFile reads a group snapshot from path with suffix-chosen
// transparent decompression.
func ReadGroupBinaryFile(path string, opts ...Option) (*dataset.Group, error) {
	var group *dataset.Group
	err := readFile(path, func(r io.Reader) error {
		var err error
		group, err = ReadGroupBinary(r, opts...)

		return err
	})
	if err != nil {
		return nil, err
	}

	return group, nil
}

// snapshot holds the decoded sections of a version 2 snapshot before they
// are assembled into a dataset or group value.
type snapshot struct {
	header   section.SnapshotHeader
	keys     []dataset.Key
	outcomes []string
	names    []string
	counts   []float64
}

// parseSnapshot decodes and validates every section of a version 2
// snapshot: header, key table, outcome table, member table for groups, and
// the counts payload. Section boundaries must match the header offsets
// exactly.
func parseSnapshot(data []byte) (*snapshot, error) {
	header, err := section.ParseSnapshotHeader(data)
	if err != nil {
		return nil, err
	}
	engine := header.Flag.GetEndianEngine()

	size := uint64(len(data))
	keyStart := uint64(header.KeyTableOffset)
	outcomeStart := uint64(header.OutcomeTableOffset)
	payloadStart := uint64(header.CountsPayloadOffset)
	payloadEnd := payloadStart + uint64(header.CountsPayloadSize)

	if keyStart != section.HeaderSize {
		return nil, fmt.Errorf("%w: key table offset %d, want %d", errs.ErrSnapshotCorrupt, keyStart, section.HeaderSize)
	}
	if outcomeStart < keyStart || payloadStart < outcomeStart || payloadEnd != size {
		return nil, fmt.Errorf("%w: section offsets %d/%d/%d+%d disagree with snapshot size %d",
			errs.ErrSnapshotCorrupt, keyStart, outcomeStart, payloadStart, header.CountsPayloadSize, size)
	}
	if uint64(header.KeyCount)*2 > size || uint64(header.OutcomeCount)*2 > size || uint64(header.MemberCount)*2 > size {
		return nil, fmt.Errorf("%w: table counts %d/%d/%d implausible for a %d-byte snapshot",
			errs.ErrSnapshotCorrupt, header.KeyCount, header.OutcomeCount, header.MemberCount, size)
	}

	keyLists, keyBytes, err := section.DecodeKeyTable(data[keyStart:outcomeStart], header.KeyCount, engine)
	if err != nil {
		return nil, err
	}
	if keyStart+uint64(keyBytes) != outcomeStart {
		return nil, fmt.Errorf("%w: key table ends at %d, outcome table starts at %d",
			errs.ErrSnapshotCorrupt, keyStart+uint64(keyBytes), outcomeStart)
	}

	outcomes, outcomeBytes, err := section.DecodeLabelTable(data[outcomeStart:payloadStart], engine)
	if err != nil {
		return nil, err
	}
	if len(outcomes) != int(header.OutcomeCount) {
		return nil, fmt.Errorf("%w: outcome table holds %d labels, header claims %d",
			errs.ErrSnapshotCorrupt, len(outcomes), header.OutcomeCount)
	}

	memberStart := outcomeStart + uint64(outcomeBytes)
	var names []string
	if header.Flag.IsGroup() {
		var memberBytes int
		names, memberBytes, err = section.DecodeLabelTable(data[memberStart:payloadStart], engine)
		if err != nil {
			return nil, err
		}
		if len(names) != int(header.MemberCount) {
			return nil, fmt.Errorf("%w: member table holds %d names, header claims %d",
				errs.ErrSnapshotCorrupt, len(names), header.MemberCount)
		}
		memberStart += uint64(memberBytes)
	}
	if memberStart != payloadStart {
		return nil, fmt.Errorf("%w: tables end at %d, counts payload starts at %d",
			errs.ErrSnapshotCorrupt, memberStart, payloadStart)
	}

	payloadCodec, err := compress.GetCodec(header.Flag.Compression())
	if err != nil {
		return nil, err
	}
	raw, err := payloadCodec.Decompress(data[payloadStart:payloadEnd])
	if err != nil {
		return nil, fmt.Errorf("%w: counts payload: %w", errs.ErrSnapshotCorrupt, err)
	}

	expected, err := countsVolume(header.KeyCount, header.OutcomeCount, header.MemberCount, header.Flag.IsGroup())
	if err != nil {
		return nil, err
	}
	counts, err := section.DecodeCounts(raw, expected, engine)
	if err != nil {
		return nil, err
	}

	keys, err := keysFromLabelLists(keyLists)
	if err != nil {
		return nil, err
	}

	return &snapshot{
		header:   header,
		keys:     keys,
		outcomes: outcomes,
		names:    names,
		counts:   counts,
	}, nil
}

// countsVolume computes the expected flat count length, guarding against
// implausible header products.
func countsVolume(keyCount, outcomeCount, memberCount uint32, group bool) (int, error) {
	volume := uint64(keyCount) * uint64(outcomeCount)
	if group {
		volume *= uint64(memberCount)
	}
	if volume > math.MaxInt32 {
		return 0, fmt.Errorf("%w: counts volume %d implausible", errs.ErrSnapshotCorrupt, volume)
	}

	return int(volume), nil
}

// keysFromLabelLists rebuilds keys from decoded label lists, rejecting
// duplicates: the writer can never produce two rows under one key, so a
// duplicate means the table is corrupt.
func keysFromLabelLists(keyLists [][]string) ([]dataset.Key, error) {
	keys := make([]dataset.Key, len(keyLists))
	seen := make(map[string]struct{}, len(keyLists))
	for i, labels := range keyLists {
		key := dataset.NewKey(labels...)
		canon := key.Canon()
		if _, dup := seen[canon]; dup {
			return nil, fmt.Errorf("%w: duplicate key %s in key table", errs.ErrSnapshotCorrupt, key)
		}
		seen[canon] = struct{}{}
		keys[i] = key
	}

	return keys, nil
}

// dataset assembles a single-dataset snapshot into its restored value.
func (s *snapshot) dataset() (*dataset.DataSet, error) {
	flag := s.header.Flag
	policy := flag.CollisionPolicy()

	if flag.IsStatic() {
		if flag.IsBuilding() {
			return nil, fmt.Errorf("%w: static snapshot marked building", errs.ErrSnapshotCorrupt)
		}

		return dataset.NewStatic(s.outcomes, s.keys, s.counts, dataset.WithCollisionPolicy(policy))
	}

	ds, err := dataset.New(s.outcomes, dataset.WithCollisionPolicy(policy))
	if err != nil {
		return nil, err
	}
	width := len(s.outcomes)
	for i, key := range s.keys {
		if err := ds.InsertCountList(key, s.counts[i*width:(i+1)*width]); err != nil {
			return nil, err
		}
	}
	if !flag.IsBuilding() {
		if err := ds.Finalize(); err != nil {
			return nil, err
		}
	}

	return ds, nil
}

// group assembles a group snapshot: one static frozen member per stored
// name, admitted in table order over the shared key list.
func (s *snapshot) group() (*dataset.Group, error) {
	group, err := dataset.NewGroup(s.outcomes)
	if err != nil {
		return nil, err
	}

	memberVolume := len(s.keys) * len(s.outcomes)
	for m, name := range s.names {
		member, err := dataset.NewStatic(s.outcomes, s.keys, s.counts[m*memberVolume:(m+1)*memberVolume])
		if err != nil {
			return nil, err
		}
		if err := group.Admit(name, member); err != nil {
			return nil, err
		}
	}

	return group, nil
}
