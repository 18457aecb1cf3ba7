package dataset

import (
	"fmt"
	"iter"
	"log/slog"
	"strconv"
	"strings"

	"github.com/arloliu/tally/errs"
	"github.com/arloliu/tally/format"
	"github.com/arloliu/tally/internal/occur"
	"github.com/arloliu/tally/internal/options"
)

// DataSet is an ordered collection of key → outcome-count rows sharing one
// fixed outcome-label schema.
//
// A DataSet is either dynamic or static. A dynamic dataset starts in the
// building state, accepts inserts, and transitions to frozen exactly once
// via Finalize. A static dataset is built from a complete flat count array,
// is frozen from birth, and never accepts writes; MutableCopy is the only
// bridge back to a writable value.
//
// A DataSet is not safe for concurrent mutation. Once frozen or static it
// is safe for concurrent reads.
//
// Example:
//
//	ds, err := dataset.New([]string{"plus", "minus"})
//	if err != nil {
//	    return err
//	}
//	err = ds.InsertCounts(dataset.NewKey("Gx"), map[string]float64{"plus": 10, "minus": 90})
//	err = ds.Finalize()
type DataSet struct {
	keys     *KeyIndex
	outcomes *OutcomeIndex
	store    countStore
	dyn      *dynamicStore // non-nil only for dynamic storage
	tracker  *occur.Tracker
	logger   *slog.Logger
	columns  []format.Column
	policy   format.CollisionPolicy
	frozen   bool
}

// New creates an empty dynamic dataset in the building state.
//
// Parameters:
//   - outcomes: Outcome labels shared by every row, fixed for the dataset's
//     lifetime. Must be non-empty and duplicate-free.
//   - opts: Optional configuration (collision policy, logger, columns).
//
// Returns:
//   - *DataSet: New dataset ready for inserts
//   - error: errs.ErrEmptyOutcomes, errs.ErrDuplicateOutcome,
//     errs.ErrEmptyLabel, or errs.ErrBadPolicy on invalid options
func New(outcomes []string, opts ...Option) (*DataSet, error) {
	outcomeIdx, err := NewOutcomeIndex(outcomes)
	if err != nil {
		return nil, err
	}

	dyn := newDynamicStore(outcomeIdx.Len())
	d := &DataSet{
		keys:     NewKeyIndex(),
		outcomes: outcomeIdx,
		store:    dyn,
		dyn:      dyn,
		logger:   discardLogger,
		policy:   format.CollisionOverwrite,
	}
	if err := options.Apply(d, opts...); err != nil {
		return nil, err
	}
	if d.policy == format.CollisionKeepSeparate {
		d.tracker = occur.NewTracker()
	}

	return d, nil
}

// NewFromCounts creates a dynamic dataset and bulk-loads the given rows in
// order, applying the collision policy per row. The result is still in the
// building state; the caller finalizes it or keeps inserting.
//
// keys and rows are parallel slices; a length mismatch is
// errs.ErrCountShape.
func NewFromCounts(outcomes []string, keys []Key, rows []map[string]float64, opts ...Option) (*DataSet, error) {
	if len(keys) != len(rows) {
		return nil, fmt.Errorf("%w: %d keys for %d rows", errs.ErrCountShape, len(keys), len(rows))
	}

	d, err := New(outcomes, opts...)
	if err != nil {
		return nil, err
	}
	for i, key := range keys {
		if err := d.InsertCounts(key, rows[i]); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// NewStatic creates a frozen static dataset over a complete flat count
// array, row r occupying flat[r*len(outcomes) : (r+1)*len(outcomes)]. The
// array and keys are copied.
//
// Returns:
//   - *DataSet: New static dataset, immediately usable
//   - error: errs.ErrCountShape when len(flat) ≠ len(keys)×len(outcomes),
//     errs.ErrDuplicateKey on repeated keys, errs.ErrNegativeCount on
//     negative counts, or any construction error New reports
func NewStatic(outcomes []string, keys []Key, flat []float64, opts ...Option) (*DataSet, error) {
	outcomeIdx, err := NewOutcomeIndex(outcomes)
	if err != nil {
		return nil, err
	}

	width := outcomeIdx.Len()
	if len(flat) != len(keys)*width {
		return nil, fmt.Errorf("%w: %d counts for %d keys of %d outcomes",
			errs.ErrCountShape, len(flat), len(keys), width)
	}
	for _, v := range flat {
		if v < 0 {
			return nil, fmt.Errorf("%w: %v", errs.ErrNegativeCount, v)
		}
	}

	keyIdx := newKeyIndexSized(len(keys))
	for _, key := range keys {
		if keyIdx.Contains(key) {
			return nil, fmt.Errorf("%w: %s", errs.ErrDuplicateKey, key)
		}
		keyIdx.Intern(key)
	}

	owned := make([]float64, len(flat))
	copy(owned, flat)

	d := &DataSet{
		keys:     keyIdx,
		outcomes: outcomeIdx,
		store:    newStaticStore(owned, width),
		logger:   discardLogger,
		policy:   format.CollisionOverwrite,
		frozen:   true,
	}
	if err := options.Apply(d, opts...); err != nil {
		return nil, err
	}

	return d, nil
}

// newStaticLike builds a frozen static dataset reusing d's schema and
// configuration. The key index and flat array are owned by the result.
func newStaticLike(d *DataSet, keys *KeyIndex, flat []float64) *DataSet {
	return &DataSet{
		keys:     keys,
		outcomes: d.outcomes,
		store:    newStaticStore(flat, d.outcomes.Len()),
		logger:   d.logger,
		columns:  cloneColumns(d.columns),
		policy:   d.policy,
		frozen:   true,
	}
}

// newDynamicLike builds a building dynamic dataset reusing d's schema and
// configuration. The key index and row storage are owned by the result;
// the occurrence tracker is rebuilt from the keys it holds.
func newDynamicLike(d *DataSet, keys *KeyIndex, dyn *dynamicStore) *DataSet {
	result := &DataSet{
		keys:     keys,
		outcomes: d.outcomes,
		store:    dyn,
		dyn:      dyn,
		logger:   d.logger,
		columns:  cloneColumns(d.columns),
		policy:   d.policy,
	}
	if result.policy == format.CollisionKeepSeparate {
		result.tracker = deriveTracker(keys)
	}

	return result
}

// deriveTracker seeds an occurrence tracker from the tagged keys already
// present in an index, so later duplicates continue the numbering.
func deriveTracker(keys *KeyIndex) *occur.Tracker {
	tracker := occur.NewTracker()
	for key := range keys.Keys() {
		if n := key.Occurrence(); n > 0 {
			tracker.Observe(key.StripOccurrence().Canon(), n)
		}
	}

	return tracker
}

func cloneColumns(columns []format.Column) []format.Column {
	if len(columns) == 0 {
		return nil
	}

	clone := make([]format.Column, len(columns))
	copy(clone, columns)

	return clone
}

// writable reports why the dataset cannot accept inserts, or nil while it
// is a building dynamic one.
func (d *DataSet) writable() error {
	if d.dyn == nil {
		return errs.ErrStatic
	}
	if d.frozen {
		return errs.ErrFrozen
	}

	return nil
}

// mutableRow returns the writable count vector at pos.
func (d *DataSet) mutableRow(pos int) ([]float64, error) {
	if err := d.writable(); err != nil {
		return nil, err
	}
	if pos < 0 || pos >= d.keys.Len() {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", errs.ErrPositionRange, pos, d.keys.Len())
	}

	return d.dyn.row(pos), nil
}

// InsertCounts inserts or updates a row from a label → count map. The map
// must cover exactly the registered outcome labels: an unregistered label
// is errs.ErrUnknownOutcome and a missing one errs.ErrOutcomeCount.
// Valid only while building; the collision policy governs repeated keys.
func (d *DataSet) InsertCounts(key Key, counts map[string]float64) error {
	if err := d.writable(); err != nil {
		return err
	}

	vec, err := d.vectorFromMap(counts)
	if err != nil {
		return err
	}
	d.insertVector(key, vec)

	return nil
}

// InsertCountList inserts or updates a row from counts in outcome-position
// order. len(counts) must equal NumOutcomes.
func (d *DataSet) InsertCountList(key Key, counts []float64) error {
	if err := d.writable(); err != nil {
		return err
	}

	vec, err := d.vectorFromList(counts)
	if err != nil {
		return err
	}
	d.insertVector(key, vec)

	return nil
}

// InsertPair inserts or updates a row from two counts mapped onto the first
// two registered outcome labels. It requires a two-outcome schema, the
// common binary-outcome (plus/minus) case.
func (d *DataSet) InsertPair(key Key, first, second float64) error {
	if err := d.writable(); err != nil {
		return err
	}
	if d.outcomes.Len() != 2 {
		return fmt.Errorf("%w: pair insert needs a two-outcome schema, have %d", errs.ErrOutcomeCount, d.outcomes.Len())
	}

	return d.InsertCountList(key, []float64{first, second})
}

// MergeCountsFrom inserts every row of other into this dataset under this
// dataset's collision policy: overwrite replaces rows for repeated keys,
// keep-separate tags them. The outcome schemas must hold the same label
// set; the check runs before any row is written, so a failure leaves this
// dataset unchanged.
func (d *DataSet) MergeCountsFrom(other *DataSet) error {
	if err := d.writable(); err != nil {
		return err
	}

	remap, err := d.outcomeRemap(other)
	if err != nil {
		return err
	}

	// Snapshot the length so merging a dataset into itself visits only the
	// rows that existed at the start.
	n := other.keys.Len()
	for pos := 0; pos < n; pos++ {
		key, _ := other.keys.KeyAt(pos)
		src := other.store.row(pos)
		vec := make([]float64, d.outcomes.Len())
		for i, v := range src {
			vec[remap[i]] = v
		}
		d.insertVector(key, vec)
	}

	d.logger.Debug("merged counts", "rows", n, "policy", d.policy.String())

	return nil
}

// outcomeRemap maps other's outcome positions onto d's. Both schemas must
// hold the same label set; order may differ.
func (d *DataSet) outcomeRemap(other *DataSet) ([]int, error) {
	remap := make([]int, other.outcomes.Len())
	for i, label := range other.outcomes.labels {
		pos, ok := d.outcomes.PositionOf(label)
		if !ok {
			return nil, fmt.Errorf("%w: %q", errs.ErrUnknownOutcome, label)
		}
		remap[i] = pos
	}
	if other.outcomes.Len() != d.outcomes.Len() {
		for _, label := range d.outcomes.labels {
			if !other.outcomes.Contains(label) {
				return nil, fmt.Errorf("%w: missing outcome label %q", errs.ErrOutcomeCount, label)
			}
		}
	}

	return remap, nil
}

// vectorFromMap validates a label → count map against the schema and
// converts it to a positional vector.
func (d *DataSet) vectorFromMap(counts map[string]float64) ([]float64, error) {
	vec := make([]float64, d.outcomes.Len())
	for i, label := range d.outcomes.labels {
		v, ok := counts[label]
		if !ok {
			return nil, fmt.Errorf("%w: missing outcome label %q", errs.ErrOutcomeCount, label)
		}
		if v < 0 {
			return nil, fmt.Errorf("%w: %s = %v", errs.ErrNegativeCount, label, v)
		}
		vec[i] = v
	}
	if len(counts) != d.outcomes.Len() {
		for label := range counts {
			if !d.outcomes.Contains(label) {
				return nil, fmt.Errorf("%w: %q", errs.ErrUnknownOutcome, label)
			}
		}
	}

	return vec, nil
}

// vectorFromList validates a positional count list against the schema.
func (d *DataSet) vectorFromList(counts []float64) ([]float64, error) {
	if len(counts) != d.outcomes.Len() {
		return nil, fmt.Errorf("%w: %d counts for %d outcomes", errs.ErrOutcomeCount, len(counts), d.outcomes.Len())
	}

	vec := make([]float64, len(counts))
	for i, v := range counts {
		if v < 0 {
			label, _ := d.outcomes.LabelAt(i)
			return nil, fmt.Errorf("%w: %s = %v", errs.ErrNegativeCount, label, v)
		}
		vec[i] = v
	}

	return vec, nil
}

// insertVector stores a validated count vector under key, applying the
// collision policy. The vector is owned by the dataset afterward.
// Callers have already checked writable.
func (d *DataSet) insertVector(key Key, vec []float64) {
	pos, exists := d.keys.PositionOf(key)
	if !exists {
		d.keys.Intern(key)
		d.dyn.appendRow(vec)

		return
	}

	switch d.policy {
	case format.CollisionKeepSeparate:
		base := key.StripOccurrence()
		tagged := base.WithOccurrence(d.tracker.Next(base.Canon()))
		// A manually inserted tagged key may already occupy the slot.
		for d.keys.Contains(tagged) {
			tagged = base.WithOccurrence(d.tracker.Next(base.Canon()))
		}
		d.keys.Intern(tagged)
		d.dyn.appendRow(vec)
	default:
		d.dyn.setRow(pos, vec)
	}
}

// Finalize transitions a building dynamic dataset to frozen. The
// transition happens exactly once; finalizing an already frozen or static
// dataset is errs.ErrFrozen.
func (d *DataSet) Finalize() error {
	if d.frozen {
		return errs.ErrFrozen
	}
	d.frozen = true
	d.logger.Debug("dataset finalized", "rows", d.keys.Len(), "outcomes", d.outcomes.Len())

	return nil
}

// IsFrozen reports whether the dataset rejects mutation. Static datasets
// are frozen from birth.
func (d *DataSet) IsFrozen() bool {
	return d.frozen
}

// IsStatic reports whether the dataset uses flat static storage.
func (d *DataSet) IsStatic() bool {
	return d.dyn == nil
}

// Mode reports the storage representation.
func (d *DataSet) Mode() format.StorageMode {
	return d.store.mode()
}

// CollisionPolicy returns the policy applied to repeated key insertions.
func (d *DataSet) CollisionPolicy() format.CollisionPolicy {
	return d.policy
}

// Len returns the number of rows.
func (d *DataSet) Len() int {
	return d.keys.Len()
}

// NumOutcomes returns the number of registered outcome labels.
func (d *DataSet) NumOutcomes() int {
	return d.outcomes.Len()
}

// Outcomes returns a copy of the registered outcome labels in positional
// order.
func (d *DataSet) Outcomes() []string {
	return d.outcomes.Labels()
}

// Columns returns a copy of the column annotation, or nil when the dataset
// carries none (plain count columns named after the outcome labels).
func (d *DataSet) Columns() []format.Column {
	return cloneColumns(d.columns)
}

func (d *DataSet) setColumns(columns []format.Column) {
	d.columns = cloneColumns(columns)
}

// Contains reports whether the key holds a row.
func (d *DataSet) Contains(key Key) bool {
	return d.keys.Contains(key)
}

// Lookup returns the row stored under key.
// An absent key is errs.ErrKeyNotFound.
func (d *DataSet) Lookup(key Key) (Row, error) {
	pos, ok := d.keys.PositionOf(key)
	if !ok {
		return Row{}, fmt.Errorf("%w: %s", errs.ErrKeyNotFound, key)
	}

	return Row{ds: d, pos: pos}, nil
}

// RowAt returns the row at the given insertion position.
// An out-of-range position is errs.ErrPositionRange.
func (d *DataSet) RowAt(pos int) (Row, error) {
	if pos < 0 || pos >= d.keys.Len() {
		return Row{}, fmt.Errorf("%w: %d not in [0, %d)", errs.ErrPositionRange, pos, d.keys.Len())
	}

	return Row{ds: d, pos: pos}, nil
}

// All iterates (key, row) pairs in insertion order. Re-iterating yields the
// same order.
func (d *DataSet) All() iter.Seq2[Key, Row] {
	return func(yield func(Key, Row) bool) {
		for pos := 0; pos < d.keys.Len(); pos++ {
			key, _ := d.keys.KeyAt(pos)
			if !yield(key, Row{ds: d, pos: pos}) {
				return
			}
		}
	}
}

// Keys iterates keys in insertion order.
func (d *DataSet) Keys() iter.Seq[Key] {
	return d.keys.Keys()
}

// Rows iterates rows in insertion order.
func (d *DataSet) Rows() iter.Seq[Row] {
	return func(yield func(Row) bool) {
		for pos := 0; pos < d.keys.Len(); pos++ {
			if !yield(Row{ds: d, pos: pos}) {
				return
			}
		}
	}
}

// OperationLabels returns the distinct operation labels appearing in the
// stored keys, in first-appearance order. Occurrence tags are not operation
// labels and are skipped.
func (d *DataSet) OperationLabels() []string {
	var labels []string
	seen := make(map[string]struct{})
	for key := range d.keys.Keys() {
		for i := 0; i < key.Len(); i++ {
			label, _ := key.At(i)
			if parseOccurrenceTag(label) > 0 {
				continue
			}
			if _, dup := seen[label]; dup {
				continue
			}
			seen[label] = struct{}{}
			labels = append(labels, label)
		}
	}

	return labels
}

// KeyList returns the keys in insertion order, one entry per row. With
// strip set, trailing occurrence tags are removed in place, so rows that
// collided under the keep-separate policy render as their shared base key
// while keeping their listing slots.
func (d *DataSet) KeyList(strip bool) []Key {
	keys := make([]Key, 0, d.keys.Len())
	for key := range d.keys.Keys() {
		if strip {
			key = key.StripOccurrence()
		}
		keys = append(keys, key)
	}

	return keys
}

// String renders a human-readable table: a summary line, then one line per
// key with its counts in outcome order.
func (d *DataSet) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "DataSet(%d keys, outcomes [%s], %s, %s)\n",
		d.Len(), strings.Join(d.outcomes.labels, " "), d.Mode(), d.policy)
	for key, row := range d.All() {
		sb.WriteString(key.String())
		sb.WriteString(" : [")
		for i, v := range row.ds.store.row(row.pos) {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		}
		sb.WriteString("]\n")
	}

	return sb.String()
}
