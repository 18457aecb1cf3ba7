package codec

import (
	"bytes"
	"errors"
	"strings"

	"github.com/arloliu/tally/errs"
	"github.com/arloliu/tally/section"
)

// Kind identifies what serialized bytes hold and which reader decodes them.
type Kind int

const (
	// KindTextDataSet is a single dataset in the tabular text format.
	KindTextDataSet Kind = iota + 1
	// KindTextGroup is a dataset group in the member-qualified text format.
	KindTextGroup
	// KindBinaryDataSet is a single dataset in the binary snapshot format.
	KindBinaryDataSet
	// KindBinaryGroup is a dataset group in the binary snapshot format.
	KindBinaryGroup
)

func (k Kind) String() string {
	switch k {
	case KindTextDataSet:
		return "text dataset"
	case KindTextGroup:
		return "text group"
	case KindBinaryDataSet:
		return "binary dataset"
	case KindBinaryGroup:
		return "binary group"
	default:
		return "unknown"
	}
}

// IsBinary reports whether the kind is one of the snapshot formats.
func (k Kind) IsBinary() bool {
	return k == KindBinaryDataSet || k == KindBinaryGroup
}

// IsGroup reports whether the kind holds a dataset group.
func (k Kind) IsGroup() bool {
	return k == KindTextGroup || k == KindBinaryGroup
}

// DetectKind sniffs serialized bytes and reports which reader decodes them.
//
// Binary snapshots are recognized by their magic number and self-describe
// whether they hold a group. Text input is decided by its column header: a
// header whose descriptors all carry a member qualifier means a group,
// anything else a single dataset. A dataset whose outcome labels happen to
// be two words is indistinguishable from a group header, so callers that
// know better should pick the reader directly.
//
// The only error is ErrSnapshotVersion, for snapshots written by a newer
// version of this library. Bytes that are not a snapshot are reported as
// text; malformed text surfaces from the reader, not from detection.
func DetectKind(data []byte) (Kind, error) {
	version, err := section.PeekVersion(data)
	switch {
	case err == nil:
	case errors.Is(err, errs.ErrSnapshotVersion):
		return 0, err
	default:
		return detectTextKind(data), nil
	}

	if version == section.SnapshotVersion1 {
		// Version 1 snapshots only ever hold single datasets.
		return KindBinaryDataSet, nil
	}

	flag := section.SnapshotFlag{Options: uint16(data[0]) | uint16(data[1])<<8}
	if flag.IsGroup() {
		return KindBinaryGroup, nil
	}

	return KindBinaryDataSet, nil
}

// detectTextKind decides between the two text formats by the first column
// header. Header-less text can only be a single dataset, as can text whose
// data starts before any header.
func detectTextKind(data []byte) Kind {
	scanner := newTextScanner(bytes.NewReader(data))
	for {
		line, directive, ok := scanner.next()
		if !ok || !directive {
			return KindTextDataSet
		}

		name, value, assigned := parseDirective(line)
		if !assigned || name != "Columns" {
			continue
		}

		for _, part := range strings.Split(value, ",") {
			if len(strings.Fields(part)) < 3 {
				return KindTextDataSet
			}
		}

		return KindTextGroup
	}
}
