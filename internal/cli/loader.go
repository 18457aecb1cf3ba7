package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/arloliu/tally/codec"
	"github.com/arloliu/tally/compress"
	"github.com/arloliu/tally/dataset"
	"github.com/arloliu/tally/section"
)

// LoadedFile is a measurement-count file pulled into memory and decoded
// according to its detected kind.
type LoadedFile struct {
	// Kind reports which format and payload the file held.
	Kind codec.Kind
	// DataSet holds the payload for dataset kinds, nil otherwise.
	DataSet *dataset.DataSet
	// Group holds the payload for group kinds, nil otherwise.
	Group *dataset.Group
	// Version is the snapshot format version for binary kinds, 0 for text.
	Version int
	// Payload describes the counts-payload compression of a version 2
	// snapshot; zero for text files and legacy snapshots.
	Payload compress.CompressionStats
	// Size is the serialized size in bytes, after undoing any whole-file
	// compression named by the filename suffix.
	Size int64
}

// ReadContents returns the raw bytes of path, transparently undoing
// whole-file compression named by the filename suffix.
func ReadContents(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := compress.WrapReader(f, compress.TypeForPath(path))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	return io.ReadAll(zr)
}

// LoadFile reads and decodes a measurement-count file of any kind. A
// non-zero forced kind overrides text-format detection; binary snapshots
// self-describe and ignore it.
func LoadFile(path string, forced codec.Kind, opts ...codec.Option) (*LoadedFile, error) {
	data, err := ReadContents(path)
	if err != nil {
		return nil, err
	}

	kind, err := codec.DetectKind(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if forced != 0 && !kind.IsBinary() {
		kind = forced
	}

	loaded := &LoadedFile{Kind: kind, Size: int64(len(data))}
	if kind.IsBinary() {
		if err := loaded.describeSnapshot(data); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	switch kind {
	case codec.KindTextDataSet:
		loaded.DataSet, err = codec.ReadText(bytes.NewReader(data), opts...)
	case codec.KindTextGroup:
		loaded.Group, err = codec.ReadGroupText(bytes.NewReader(data), opts...)
	case codec.KindBinaryDataSet:
		loaded.DataSet, err = codec.ReadBinary(bytes.NewReader(data), opts...)
	case codec.KindBinaryGroup:
		loaded.Group, err = codec.ReadGroupBinary(bytes.NewReader(data), opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return loaded, nil
}

// describeSnapshot fills in the snapshot metadata the inspect command
// reports on top of the decoded payload.
func (l *LoadedFile) describeSnapshot(data []byte) error {
	version, err := section.PeekVersion(data)
	if err != nil {
		return err
	}

	l.Version = version
	if version != section.SnapshotVersion2 {
		return nil
	}

	header, err := section.ParseSnapshotHeader(data)
	if err != nil {
		return err
	}

	rows := int64(header.KeyCount) * int64(header.OutcomeCount)
	if header.MemberCount > 0 {
		rows *= int64(header.MemberCount)
	}
	l.Payload = compress.CompressionStats{
		Algorithm:      header.Flag.Compression(),
		OriginalSize:   rows * 8,
		CompressedSize: int64(header.CountsPayloadSize),
	}

	return nil
}

// parseKindOverride maps the --as flag onto a forced text kind. Binary
// files self-describe, so the override only matters for text input.
func parseKindOverride(name string) (codec.Kind, error) {
	switch name {
	case "auto":
		return 0, nil
	case "dataset":
		return codec.KindTextDataSet, nil
	case "group":
		return codec.KindTextGroup, nil
	default:
		return 0, fmt.Errorf("invalid kind %q: must be auto, dataset or group", name)
	}
}
