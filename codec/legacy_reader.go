package codec

import (
	"fmt"

	"github.com/arloliu/tally/dataset"
	"github.com/arloliu/tally/errs"
	"github.com/arloliu/tally/section"
)

// readLegacy restores a dataset from a version 1 snapshot. The v1 layout is
// a 16-byte header, a key table and an outcome table without fingerprints,
// and an uncompressed counts block. The format recorded no building state,
// so dynamic v1 snapshots always load as frozen.
func readLegacy(data []byte, cfg *config) (*dataset.DataSet, error) {
	header, err := section.ParseLegacyHeader(data)
	if err != nil {
		return nil, err
	}
	engine := header.GetEndianEngine()

	if uint64(header.KeyCount)*2 > uint64(len(data)) || uint64(header.OutcomeCount)*2 > uint64(len(data)) {
		return nil, fmt.Errorf("%w: table counts %d/%d implausible for a %d-byte snapshot",
			errs.ErrSnapshotCorrupt, header.KeyCount, header.OutcomeCount, len(data))
	}

	offset := section.LegacyHeaderSize
	keyLists, keyBytes, err := section.DecodeLegacyKeyTable(data[offset:], header.KeyCount, engine)
	if err != nil {
		return nil, err
	}
	offset += keyBytes

	outcomes, outcomeBytes, err := section.DecodeLegacyLabelTable(data[offset:], engine)
	if err != nil {
		return nil, err
	}
	if len(outcomes) != int(header.OutcomeCount) {
		return nil, fmt.Errorf("%w: outcome table holds %d labels, header claims %d",
			errs.ErrSnapshotCorrupt, len(outcomes), header.OutcomeCount)
	}
	offset += outcomeBytes

	expected, err := countsVolume(header.KeyCount, header.OutcomeCount, 0, false)
	if err != nil {
		return nil, err
	}
	counts, err := section.DecodeCounts(data[offset:], expected, engine)
	if err != nil {
		return nil, err
	}

	keys, err := keysFromLabelLists(keyLists)
	if err != nil {
		return nil, err
	}

	policy := header.CollisionPolicy()
	var ds *dataset.DataSet
	if header.IsStatic() {
		ds, err = dataset.NewStatic(outcomes, keys, counts, dataset.WithCollisionPolicy(policy))
		if err != nil {
			return nil, err
		}
	} else {
		ds, err = dataset.New(outcomes, dataset.WithCollisionPolicy(policy))
		if err != nil {
			return nil, err
		}
		width := len(outcomes)
		for i, key := range keys {
			if err := ds.InsertCountList(key, counts[i*width:(i+1)*width]); err != nil {
				return nil, err
			}
		}
		if err := ds.Finalize(); err != nil {
			return nil, err
		}
	}

	cfg.logger.Debug("legacy snapshot loaded", "version", section.SnapshotVersion1,
		"rows", ds.Len(), "outcomes", ds.NumOutcomes(), "mode", ds.Mode().String())

	return ds, nil
}
