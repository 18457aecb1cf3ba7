package dataset

import (
	"fmt"

	"github.com/arloliu/tally/errs"
)

// Row is a lightweight view of one dataset entry, bound to a storage
// position. It reads through to the dataset's backing memory, so it is
// cheap to create and reflects later mutations of a building dataset.
// Rows must not be used across Truncate or MergeCountsFrom calls on the
// owning dataset under the keep-separate policy, which can reindex rows.
//
// Example:
//
//	row, err := ds.Lookup(dataset.NewKey("Gx"))
//	if err != nil {
//	    return err
//	}
//	plus := row.Count("plus")
//	frac, err := row.Fraction("plus")
type Row struct {
	ds  *DataSet
	pos int
}

// Key returns the key this row is stored under.
func (r Row) Key() Key {
	key, _ := r.ds.keys.KeyAt(r.pos)
	return key
}

// Position returns the row's storage position in [0, ds.Len()).
func (r Row) Position() int {
	return r.pos
}

// Count returns the count for the given outcome label.
// Returns 0 if the label is not registered; use CountOK to distinguish a
// genuine zero from an unknown label.
func (r Row) Count(label string) float64 {
	v, _ := r.CountOK(label)
	return v
}

// CountOK returns the count for the given outcome label.
// Returns (0, false) if the label is not registered.
func (r Row) CountOK(label string) (float64, bool) {
	pos, ok := r.ds.outcomes.PositionOf(label)
	if !ok {
		return 0, false
	}

	return r.ds.store.row(r.pos)[pos], true
}

// CountAt returns the count at the given outcome position.
// Returns (0, false) if the position is out of range.
func (r Row) CountAt(pos int) (float64, bool) {
	if pos < 0 || pos >= r.ds.outcomes.Len() {
		return 0, false
	}

	return r.ds.store.row(r.pos)[pos], true
}

// SetCount sets the count for the given outcome label. Valid only while the
// owning dataset is a building dynamic one; a static or frozen dataset
// rejects the write.
func (r Row) SetCount(label string, value float64) error {
	vec, err := r.ds.mutableRow(r.pos)
	if err != nil {
		return err
	}

	pos, ok := r.ds.outcomes.PositionOf(label)
	if !ok {
		return fmt.Errorf("%w: %q", errs.ErrUnknownOutcome, label)
	}
	if value < 0 {
		return fmt.Errorf("%w: %s = %v", errs.ErrNegativeCount, label, value)
	}

	vec[pos] = value

	return nil
}

// Add increments the count for the given outcome label. The increment must
// be non-negative; the same state rules as SetCount apply.
func (r Row) Add(label string, delta float64) error {
	vec, err := r.ds.mutableRow(r.pos)
	if err != nil {
		return err
	}

	pos, ok := r.ds.outcomes.PositionOf(label)
	if !ok {
		return fmt.Errorf("%w: %q", errs.ErrUnknownOutcome, label)
	}
	if delta < 0 {
		return fmt.Errorf("%w: increment %s by %v", errs.ErrNegativeCount, label, delta)
	}

	vec[pos] += delta

	return nil
}

// Total returns the sum of all counts in the row.
func (r Row) Total() float64 {
	var total float64
	for _, v := range r.ds.store.row(r.pos) {
		total += v
	}

	return total
}

// Fraction returns count(label) / Total().
// A zero total is a reported failure (errs.ErrZeroTotal), never a silent 0,
// and an unregistered label is errs.ErrUnknownOutcome.
func (r Row) Fraction(label string) (float64, error) {
	pos, ok := r.ds.outcomes.PositionOf(label)
	if !ok {
		return 0, fmt.Errorf("%w: %q", errs.ErrUnknownOutcome, label)
	}

	total := r.Total()
	if total == 0 {
		return 0, fmt.Errorf("%w: key %s", errs.ErrZeroTotal, r.Key())
	}

	return r.ds.store.row(r.pos)[pos] / total, nil
}

// Counts returns the row as a label → count map. The map is a copy.
func (r Row) Counts() map[string]float64 {
	vec := r.ds.store.row(r.pos)
	counts := make(map[string]float64, len(vec))
	for i, v := range vec {
		label, _ := r.ds.outcomes.LabelAt(i)
		counts[label] = v
	}

	return counts
}

// CountList returns the row's counts in outcome-position order. The slice
// is a copy.
func (r Row) CountList() []float64 {
	vec := r.ds.store.row(r.pos)
	counts := make([]float64, len(vec))
	copy(counts, vec)

	return counts
}

// Outcomes returns the registered outcome labels in positional order.
func (r Row) Outcomes() []string {
	return r.ds.outcomes.Labels()
}
