package dataset

import (
	"fmt"

	"github.com/arloliu/tally/errs"
)

// OutcomeIndex is the fixed mapping from outcome labels to count-vector
// positions. The label set is established once at dataset construction and
// shared by every row; it never grows or shrinks afterward.
type OutcomeIndex struct {
	positions map[string]int
	labels    []string
}

// NewOutcomeIndex builds the index from the given labels, preserving their
// order. The set must be non-empty, free of duplicates, and free of empty
// labels.
func NewOutcomeIndex(labels []string) (*OutcomeIndex, error) {
	if len(labels) == 0 {
		return nil, errs.ErrEmptyOutcomes
	}

	idx := &OutcomeIndex{
		positions: make(map[string]int, len(labels)),
		labels:    make([]string, len(labels)),
	}
	for i, label := range labels {
		if label == "" {
			return nil, fmt.Errorf("%w: outcome label at position %d", errs.ErrEmptyLabel, i)
		}
		if _, exists := idx.positions[label]; exists {
			return nil, fmt.Errorf("%w: %q", errs.ErrDuplicateOutcome, label)
		}
		idx.positions[label] = i
		idx.labels[i] = label
	}

	return idx, nil
}

// PositionOf returns the count-vector position of the label.
// Returns (0, false) if the label is not registered.
func (x *OutcomeIndex) PositionOf(label string) (int, bool) {
	pos, ok := x.positions[label]
	return pos, ok
}

// Contains reports whether the label is registered.
func (x *OutcomeIndex) Contains(label string) bool {
	_, ok := x.positions[label]
	return ok
}

// LabelAt returns the label at the given position.
// Returns ("", false) if the position is out of range.
func (x *OutcomeIndex) LabelAt(pos int) (string, bool) {
	if pos < 0 || pos >= len(x.labels) {
		return "", false
	}

	return x.labels[pos], true
}

// Labels returns a copy of the registered labels in positional order.
func (x *OutcomeIndex) Labels() []string {
	labels := make([]string, len(x.labels))
	copy(labels, x.labels)

	return labels
}

// Len returns the number of registered labels.
func (x *OutcomeIndex) Len() int {
	return len(x.labels)
}

// Equal reports whether both indexes register the same labels in the same
// order.
func (x *OutcomeIndex) Equal(other *OutcomeIndex) bool {
	if len(x.labels) != len(other.labels) {
		return false
	}
	for i, label := range x.labels {
		if other.labels[i] != label {
			return false
		}
	}

	return true
}
