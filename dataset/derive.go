package dataset

import (
	"fmt"

	"github.com/arloliu/tally/errs"
)

// MissingMode selects how Truncate treats requested keys the source
// dataset does not hold.
type MissingMode uint8

const (
	// MissingError fails the truncation on the first absent key, producing
	// no partial result.
	MissingError MissingMode = 0x1

	// MissingSkip silently omits absent keys.
	MissingSkip MissingMode = 0x2
)

// String returns the mode name.
func (m MissingMode) String() string {
	switch m {
	case MissingError:
		return "error"
	case MissingSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// Copy returns an independent dataset with identical contents, preserving
// the storage mode and state: a building dynamic source yields a building
// dynamic copy, a frozen one a frozen copy, a static one a static copy.
func (d *DataSet) Copy() *DataSet {
	clone := &DataSet{
		keys:     d.keys.Clone(),
		outcomes: d.outcomes,
		store:    d.store.clone(),
		logger:   d.logger,
		columns:  cloneColumns(d.columns),
		policy:   d.policy,
		frozen:   d.frozen,
	}
	if dyn, ok := clone.store.(*dynamicStore); ok {
		clone.dyn = dyn
	}
	if d.tracker != nil {
		clone.tracker = d.tracker.Clone()
	}

	return clone
}

// MutableCopy returns a new dynamic dataset in the building state holding
// the same (key, row) contents, regardless of the source's mode. This is
// the only sanctioned way to grow or mutate the data of a static or frozen
// dataset; the source is unaffected.
func (d *DataSet) MutableCopy() *DataSet {
	dyn := newDynamicStore(d.outcomes.Len())
	dyn.rows = make([][]float64, 0, d.keys.Len())
	for pos := 0; pos < d.keys.Len(); pos++ {
		src := d.store.row(pos)
		row := make([]float64, len(src))
		copy(row, src)
		dyn.appendRow(row)
	}

	return newDynamicLike(d, d.keys.Clone(), dyn)
}

// Truncate builds a new dataset restricted to the requested keys, in the
// requested order. Repeated requests for the same key keep the first.
//
// The result's mode mirrors the source's: a static source yields a static
// frozen result, a dynamic source a building dynamic result that can keep
// growing.
//
// Parameters:
//   - requested: Keys to keep, in result order
//   - missing: MissingError fails on the first absent key with
//     errs.ErrKeyNotFound and no partial result; MissingSkip drops absent
//     keys silently
func (d *DataSet) Truncate(requested []Key, missing MissingMode) (*DataSet, error) {
	switch missing {
	case MissingError, MissingSkip:
	default:
		return nil, fmt.Errorf("%w: unrecognized missing-key mode %d", errs.ErrState, uint8(missing))
	}

	positions := make([]int, 0, len(requested))
	seen := make(map[string]struct{}, len(requested))
	for _, key := range requested {
		if _, dup := seen[key.Canon()]; dup {
			continue
		}
		seen[key.Canon()] = struct{}{}

		pos, ok := d.keys.PositionOf(key)
		if !ok {
			if missing == MissingSkip {
				continue
			}

			return nil, fmt.Errorf("%w: %s", errs.ErrKeyNotFound, key)
		}
		positions = append(positions, pos)
	}

	keyIdx := newKeyIndexSized(len(positions))
	for _, pos := range positions {
		key, _ := d.keys.KeyAt(pos)
		keyIdx.Intern(key)
	}

	var result *DataSet
	if d.IsStatic() {
		width := d.outcomes.Len()
		flat := make([]float64, 0, len(positions)*width)
		for _, pos := range positions {
			flat = append(flat, d.store.row(pos)...)
		}
		result = newStaticLike(d, keyIdx, flat)
	} else {
		dyn := newDynamicStore(d.outcomes.Len())
		dyn.rows = make([][]float64, 0, len(positions))
		for _, pos := range positions {
			src := d.store.row(pos)
			row := make([]float64, len(src))
			copy(row, src)
			dyn.appendRow(row)
		}
		result = newDynamicLike(d, keyIdx, dyn)
	}

	d.logger.Debug("dataset truncated", "requested", len(requested), "kept", result.Len(), "mode", result.Mode().String())

	return result, nil
}

// Equal reports content equality: the same outcome labels in the same
// order, the same keys in the same insertion order, and exactly equal
// counts. Storage mode, frozen state, collision policy, and column
// annotations do not participate.
func (d *DataSet) Equal(other *DataSet) bool {
	if d == other {
		return true
	}
	if other == nil {
		return false
	}
	if !d.outcomes.Equal(other.outcomes) {
		return false
	}
	if d.keys.Len() != other.keys.Len() {
		return false
	}

	for pos := 0; pos < d.keys.Len(); pos++ {
		key, _ := d.keys.KeyAt(pos)
		otherKey, _ := other.keys.KeyAt(pos)
		if !key.Equal(otherKey) {
			return false
		}

		row := d.store.row(pos)
		otherRow := other.store.row(pos)
		for i, v := range row {
			if otherRow[i] != v {
				return false
			}
		}
	}

	return true
}
