package codec

import (
	"fmt"
	"io"
	"math"

	"github.com/arloliu/tally/compress"
	"github.com/arloliu/tally/dataset"
	"github.com/arloliu/tally/endian"
	"github.com/arloliu/tally/errs"
	"github.com/arloliu/tally/format"
	"github.com/arloliu/tally/internal/pool"
	"github.com/arloliu/tally/section"
)

// WriteBinary serializes ds as a version 2 binary snapshot. The snapshot
// captures the full value: storage mode, building state, collision policy,
// keys, outcome labels, and counts, so reading it back restores an
// equivalent dataset exactly.
//
// WithCompression compresses the counts payload; WithBigEndian selects the
// body byte order. The default is an uncompressed little-endian snapshot.
func WriteBinary(w io.Writer, ds *dataset.DataSet, opts ...Option) error {
	cfg, err := newConfig(opts...)
	if err != nil {
		return err
	}
	engine := cfg.engine()

	flag := section.NewSnapshotFlag()
	if cfg.bigEndian {
		flag.WithBigEndian()
	}
	flag.SetStatic(ds.IsStatic())
	flag.SetBuilding(!ds.IsFrozen())
	flag.SetCompression(cfg.compression)
	flag.SetCollisionPolicy(ds.CollisionPolicy())

	keyTable, err := section.EncodeKeyTable(keyLabelLists(ds.KeyList(false)), engine)
	if err != nil {
		return err
	}
	outcomeTable, err := section.EncodeLabelTable(ds.Outcomes(), engine)
	if err != nil {
		return err
	}
	payload, stats, err := compressCounts(flattenCounts(ds), cfg.compression, engine)
	if err != nil {
		return err
	}

	header := &section.SnapshotHeader{
		Flag:         flag,
		KeyCount:     uint32(ds.Len()),
		OutcomeCount: uint32(ds.NumOutcomes()),
	}
	if err := layoutOffsets(header, len(keyTable), len(outcomeTable), 0, len(payload)); err != nil {
		return err
	}

	cfg.logger.Debug("binary dataset written",
		"rows", ds.Len(), "outcomes", ds.NumOutcomes(),
		"compression", stats.Algorithm.String(), "payload_bytes", stats.CompressedSize,
		"ratio", stats.CompressionRatio())

	return writeSnapshot(w, header, keyTable, outcomeTable, nil, payload)
}

// WriteBinaryFile writes a binary snapshot to path. A recognized compression
// suffix on the path compresses the whole file transparently, independent of
// the payload compression WithCompression selects.
func WriteBinaryFile(path string, ds *dataset.DataSet, opts ...Option) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteBinary(w, ds, opts...)
	})
}

// WriteGroupBinary serializes a dataset group as a version 2 binary
// snapshot: the shared key and outcome tables, a member-name table, and all
// members' counts concatenated into one payload in admission order. Members
// restore as static frozen datasets.
func WriteGroupBinary(w io.Writer, group *dataset.Group, opts ...Option) error {
	cfg, err := newConfig(opts...)
	if err != nil {
		return err
	}
	engine := cfg.engine()

	flag := section.NewSnapshotFlag()
	if cfg.bigEndian {
		flag.WithBigEndian()
	}
	flag.SetStatic(true)
	flag.SetGroup(true)
	flag.SetCompression(cfg.compression)

	keys := group.Keys()
	names := group.Names()

	keyTable, err := section.EncodeKeyTable(keyLabelLists(keys), engine)
	if err != nil {
		return err
	}
	outcomeTable, err := section.EncodeLabelTable(group.Outcomes(), engine)
	if err != nil {
		return err
	}
	memberTable, err := section.EncodeLabelTable(names, engine)
	if err != nil {
		return err
	}

	flat := make([]float64, 0, len(names)*len(keys)*len(group.Outcomes()))
	for member := range group.Members() {
		flat = append(flat, flattenCounts(member)...)
	}
	payload, stats, err := compressCounts(flat, cfg.compression, engine)
	if err != nil {
		return err
	}

	header := &section.SnapshotHeader{
		Flag:         flag,
		KeyCount:     uint32(len(keys)),
		OutcomeCount: uint32(len(group.Outcomes())),
		MemberCount:  uint32(len(names)),
	}
	if err := layoutOffsets(header, len(keyTable), len(outcomeTable), len(memberTable), len(payload)); err != nil {
		return err
	}

	cfg.logger.Debug("binary group written",
		"members", len(names), "rows", len(keys),
		"compression", stats.Algorithm.String(), "payload_bytes", stats.CompressedSize,
		"ratio", stats.CompressionRatio())

	return writeSnapshot(w, header, keyTable, outcomeTable, memberTable, payload)
}

// WriteGroupBinaryFile writes a group snapshot to path with suffix-chosen
// whole-file compression.
func WriteGroupBinaryFile(path string, group *dataset.Group, opts ...Option) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteGroupBinary(w, group, opts...)
	})
}

// keyLabelLists converts keys to the label-list form the key table encodes.
func keyLabelLists(keys []dataset.Key) [][]string {
	lists := make([][]string, len(keys))
	for i, key := range keys {
		lists[i] = key.Labels()
	}

	return lists
}

// flattenCounts collects a dataset's counts into one flat array in row
// order, one float64 per outcome per row.
func flattenCounts(ds *dataset.DataSet) []float64 {
	flat := make([]float64, 0, ds.Len()*ds.NumOutcomes())
	for row := range ds.Rows() {
		flat = append(flat, row.CountList()...)
	}

	return flat
}

// compressCounts encodes a flat count array with the given engine and
// compresses it with the selected codec.
func compressCounts(flat []float64, compression format.CompressionType, engine endian.EndianEngine) ([]byte, compress.CompressionStats, error) {
	raw := section.EncodeCounts(flat, engine)
	payloadCodec, err := compress.GetCodec(compression)
	if err != nil {
		return nil, compress.CompressionStats{}, err
	}
	payload, err := payloadCodec.Compress(raw)
	if err != nil {
		return nil, compress.CompressionStats{}, err
	}

	stats := compress.CompressionStats{
		Algorithm:      compression,
		OriginalSize:   int64(len(raw)),
		CompressedSize: int64(len(payload)),
	}

	return payload, stats, nil
}

// layoutOffsets fills in the header's section offsets and sizes, rejecting
// snapshots that exceed the format's 4 GiB offset space. The member table,
// when present, sits directly after the outcome table.
func layoutOffsets(header *section.SnapshotHeader, keyTable, outcomeTable, memberTable, payload int) error {
	total := uint64(section.HeaderSize) + uint64(keyTable) + uint64(outcomeTable) + uint64(memberTable) + uint64(payload)
	if total > math.MaxUint32 {
		return fmt.Errorf("%w: snapshot size %d exceeds the 4 GiB format limit", errs.ErrSnapshotCorrupt, total)
	}

	header.KeyTableOffset = section.HeaderSize
	header.OutcomeTableOffset = header.KeyTableOffset + uint32(keyTable)
	header.CountsPayloadOffset = header.OutcomeTableOffset + uint32(outcomeTable) + uint32(memberTable)
	header.CountsPayloadSize = uint32(payload)

	return nil
}

// writeSnapshot assembles the snapshot sections into a pooled buffer and
// writes it to w in one call.
func writeSnapshot(w io.Writer, header *section.SnapshotHeader, keyTable, outcomeTable, memberTable, payload []byte) error {
	bb := pool.GetSnapshotBuffer()
	defer pool.PutSnapshotBuffer(bb)

	bb.B = append(bb.B, header.Bytes()...)
	bb.B = append(bb.B, keyTable...)
	bb.B = append(bb.B, outcomeTable...)
	bb.B = append(bb.B, memberTable...)
	bb.B = append(bb.B, payload...)

	_, err := bb.WriteTo(w)

	return err
}
