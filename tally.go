// Package tally stores and serializes observed-outcome counts keyed by
// operation sequences.
//
// A dataset maps keys (ordered sequences of operation labels such as
// "Gx Gy") to per-outcome counts over a fixed outcome schema ("plus",
// "minus", "00", "01", ...). Datasets are built dynamically row by row and
// frozen once complete, or created static from flat count arrays.
//
// # Core Features
//
//   - Insertion-ordered key interning with O(1) lookup
//   - Dynamic (growable) and static (flat-array) storage behind one API
//   - Overwrite or keep-separate handling of repeated keys, the latter
//     tagging repeats with occurrence labels ("#1", "#2", ...)
//   - A human-readable text format with declarative column headers
//     (counts, frequencies, totals)
//   - A binary snapshot format with xxHash64-fingerprinted tables and
//     optional counts-payload compression (Zstd, S2, LZ4, Gzip)
//   - Dataset groups: aligned multi-dataset collections with key-wise sums
//   - Gram-matrix rank diagnostics over stored counts
//
// # Basic Usage
//
// Building, freezing and saving a dataset:
//
//	import "github.com/arloliu/tally"
//
//	ds, _ := tally.New([]string{"plus", "minus"})
//	ds.InsertCounts(tally.ParseKey("Gx"), map[string]float64{"plus": 10, "minus": 90})
//	ds.InsertCounts(tally.ParseKey("Gx Gy"), map[string]float64{"plus": 40, "minus": 60})
//	ds.Finalize()
//
//	_ = tally.WriteSnapshotFile("counts.bin", ds)
//
// Loading it back:
//
//	ds, _ = tally.ReadSnapshotFile("counts.bin")
//	row, _ := ds.Lookup(tally.ParseKey("Gx"))
//	fmt.Println(row.Fraction("plus"))
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the dataset,
// codec and gram packages, simplifying the most common use cases. For
// fine-grained control (streaming codecs, column layouts, manual Gram
// bases), use those packages directly.
package tally

import (
	"github.com/arloliu/tally/codec"
	"github.com/arloliu/tally/dataset"
	"github.com/arloliu/tally/format"
	"github.com/arloliu/tally/gram"
)

var defaultSnapshotOptions = []codec.Option{
	codec.WithLittleEndian(),
	codec.WithCompression(format.CompressionZstd),
}

// New creates an empty dynamic dataset over the given outcome labels.
//
// The dataset starts in the building state: insert rows with InsertCounts,
// InsertCountList or InsertPair, then call Finalize exactly once to freeze
// it. Repeated keys follow the overwrite policy unless
// dataset.WithCollisionPolicy says otherwise.
//
// Parameters:
//   - outcomes: The outcome label schema, fixed for the dataset's lifetime.
//   - opts: Optional configuration (see dataset.Option).
//
// Returns:
//   - *dataset.DataSet: The created dataset, in building state.
//   - error: An error if the schema or options are invalid.
//
// Example:
//
//	ds, err := tally.New([]string{"plus", "minus"})
//	if err != nil {
//	    log.Fatal(err)
//	}
func New(outcomes []string, opts ...dataset.Option) (*dataset.DataSet, error) {
	return dataset.New(outcomes, opts...)
}

// NewKeepSeparate creates a dynamic dataset that keeps repeated keys as
// separate rows.
//
// Reinserting a key appends an occurrence tag ("#1", "#2", ...) instead of
// overwriting the earlier row, preserving every measurement run. Use this
// when repeats carry information, such as interleaved experiment passes.
//
// Parameters:
//   - outcomes: The outcome label schema.
//   - opts: Optional configuration; a later dataset.WithCollisionPolicy
//     overrides the keep-separate default.
//
// Returns:
//   - *dataset.DataSet: The created dataset, in building state.
//   - error: An error if the schema or options are invalid.
func NewKeepSeparate(outcomes []string, opts ...dataset.Option) (*dataset.DataSet, error) {
	allOpts := append([]dataset.Option{
		dataset.WithCollisionPolicy(format.CollisionKeepSeparate),
	}, opts...)

	return dataset.New(outcomes, allOpts...)
}

// NewStatic creates a frozen static dataset from a flat count array.
//
// Static datasets are frozen from birth: counts may be read but never
// modified, and rows can never be added. The flat array holds one row per
// key in order, each row one count per outcome label.
//
// Parameters:
//   - outcomes: The outcome label schema.
//   - keys: The row keys, in storage order, without duplicates.
//   - flat: len(keys) x len(outcomes) counts in row-major order.
//   - opts: Optional configuration (see dataset.Option).
//
// Returns:
//   - *dataset.DataSet: The created dataset, frozen and static.
//   - error: An error if the shape or options are invalid.
//
// Example:
//
//	ds, err := tally.NewStatic(
//	    []string{"plus", "minus"},
//	    []dataset.Key{tally.ParseKey("Gx"), tally.ParseKey("Gy")},
//	    []float64{10, 90, 40, 60},
//	)
func NewStatic(outcomes []string, keys []dataset.Key, flat []float64, opts ...dataset.Option) (*dataset.DataSet, error) {
	return dataset.NewStatic(outcomes, keys, flat, opts...)
}

// NewGroup creates an empty dataset group over the given outcome labels.
//
// Members are admitted by name and must be frozen, share the group's
// outcome schema, and agree on the key list with every earlier member.
// Group.Sum adds members' counts key by key into a static dataset.
//
// Parameters:
//   - outcomes: The outcome label schema every member must match.
//   - opts: Optional configuration (see dataset.GroupOption).
//
// Returns:
//   - *dataset.Group: The created empty group.
//   - error: An error if the schema or options are invalid.
func NewGroup(outcomes []string, opts ...dataset.GroupOption) (*dataset.Group, error) {
	return dataset.NewGroup(outcomes, opts...)
}

// ParseKey parses a whitespace-separated sequence of operation labels into
// a key.
//
// The literal token "{}" denotes the empty key. Keys render back through
// Key.String in the same form, so ParseKey(k.String()) reproduces k.
//
// Example:
//
//	key := tally.ParseKey("Gx Gy Gx")
//	empty := tally.ParseKey("{}")
func ParseKey(s string) dataset.Key {
	return dataset.ParseKey(s)
}

// ReadTextFile loads a dataset from a text-format file.
//
// The text format is line oriented: an optional "## Columns = ..." header
// declares how data columns map onto outcome counts, and each following
// line holds a key and its column values. Loading always produces a frozen
// dynamic dataset. A compression suffix on the path (".gz", ".zst",
// ".lz4", ".s2") is decompressed transparently.
//
// Parameters:
//   - path: The file to read.
//   - opts: Optional configuration (see codec.Option); in particular
//     codec.WithCollisionPolicy controls repeated-key handling.
//
// Returns:
//   - *dataset.DataSet: The loaded dataset, frozen.
//   - error: An error if the file cannot be read or parsed.
func ReadTextFile(path string, opts ...codec.Option) (*dataset.DataSet, error) {
	return codec.ReadTextFile(path, opts...)
}

// WriteTextFile writes a dataset to a text-format file.
//
// Columns follow the dataset's column annotation when it has one (set via
// dataset.WithColumns or inherited from a loaded file's header), or
// codec.WithColumns, or default to one count column per outcome label. A
// compression suffix on the path compresses the whole file.
//
// Parameters:
//   - path: The file to create or truncate.
//   - ds: The dataset to write.
//   - opts: Optional configuration (see codec.Option).
//
// Returns:
//   - error: An error if a column layout is invalid or the write fails.
func WriteTextFile(path string, ds *dataset.DataSet, opts ...codec.Option) error {
	return codec.WriteTextFile(path, ds, opts...)
}

// ReadSnapshotFile loads a dataset from a binary snapshot file.
//
// Snapshots restore exactly what was written: storage mode, building
// state, collision policy, keys, outcome labels and counts. Version 1
// legacy snapshots load as frozen datasets. A compression suffix on the
// path is decompressed transparently, independent of the counts-payload
// compression recorded inside the snapshot.
//
// Parameters:
//   - path: The file to read.
//   - opts: Optional configuration (see codec.Option).
//
// Returns:
//   - *dataset.DataSet: The restored dataset.
//   - error: An error if the snapshot is corrupt, truncated or holds a
//     group instead of a single dataset.
func ReadSnapshotFile(path string, opts ...codec.Option) (*dataset.DataSet, error) {
	return codec.ReadBinaryFile(path, opts...)
}

// WriteSnapshotFile writes a dataset to a binary snapshot file with
// recommended default settings.
//
// Defaults: little-endian byte order and Zstd compression of the counts
// payload. Later options override them, so passing
// codec.WithCompression(format.CompressionNone) turns compression back
// off. Use codec.WriteBinaryFile directly to start from the codec's own
// uncompressed defaults.
//
// Parameters:
//   - path: The file to create or truncate.
//   - ds: The dataset to write; building datasets are allowed and restore
//     as building.
//   - opts: Optional configuration (see codec.Option).
//
// Returns:
//   - error: An error if the options are invalid or the write fails.
//
// Example:
//
//	err := tally.WriteSnapshotFile("counts.bin", ds)
func WriteSnapshotFile(path string, ds *dataset.DataSet, opts ...codec.Option) error {
	allOpts := append(append([]codec.Option{}, defaultSnapshotOptions...), opts...)

	return codec.WriteBinaryFile(path, ds, allOpts...)
}

// ReadGroupTextFile loads a dataset group from a member-qualified text
// file.
//
// Group text files qualify every column descriptor with a member name
// ("DS0 plus count"); the header is mandatory and members appear in
// first-appearance order, each loading as a frozen dynamic dataset.
//
// Parameters:
//   - path: The file to read.
//   - opts: Optional configuration (see codec.Option).
//
// Returns:
//   - *dataset.Group: The loaded group.
//   - error: An error if the file cannot be read or parsed.
func ReadGroupTextFile(path string, opts ...codec.Option) (*dataset.Group, error) {
	return codec.ReadGroupTextFile(path, opts...)
}

// WriteGroupTextFile writes a dataset group to a member-qualified text
// file.
func WriteGroupTextFile(path string, group *dataset.Group, opts ...codec.Option) error {
	return codec.WriteGroupTextFile(path, group, opts...)
}

// ReadGroupSnapshotFile loads a dataset group from a binary snapshot file.
//
// Members restore as frozen static datasets sharing the group's key and
// outcome tables.
func ReadGroupSnapshotFile(path string, opts ...codec.Option) (*dataset.Group, error) {
	return codec.ReadGroupBinaryFile(path, opts...)
}

// WriteGroupSnapshotFile writes a dataset group to a binary snapshot file
// with the same recommended defaults as WriteSnapshotFile.
func WriteGroupSnapshotFile(path string, group *dataset.Group, opts ...codec.Option) error {
	allOpts := append(append([]codec.Option{}, defaultSnapshotOptions...), opts...)

	return codec.WriteGroupBinaryFile(path, group, allOpts...)
}

// AnalyzeGram computes the Gram matrix of a dataset and its singular
// spectrum and numeric rank.
//
// The Gram matrix G[i][j] is the observed fraction of a designated outcome
// for the concatenated key basis[i] + basis[j], over a basis of key
// sequences chosen so every pairwise product is present in the dataset. A
// full-rank Gram matrix indicates the stored sequences are informationally
// complete for the outcome; rank deficiency pinpoints redundancy.
//
// Parameters:
//   - ds: The dataset to analyze.
//   - labels: The operation labels to build basis candidates from; nil
//     derives them from the dataset's keys.
//   - opts: Optional configuration (see gram.Option): outcome selection,
//     basis length cap, rank tolerance.
//
// Returns:
//   - *gram.Result: The basis, matrix, singular values and rank.
//   - error: An error if the dataset is empty or no viable basis exists.
//
// Example:
//
//	result, err := tally.AnalyzeGram(ds, []string{"Gx", "Gy"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Rank)
func AnalyzeGram(ds *dataset.DataSet, labels []string, opts ...gram.Option) (*gram.Result, error) {
	return gram.Analyze(ds, labels, opts...)
}
