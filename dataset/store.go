package dataset

import "github.com/arloliu/tally/format"

// countStore is the read capability shared by the two storage
// representations. Write operations exist only on dynamicStore, so a static
// dataset cannot be mutated through any code path the type system admits.
type countStore interface {
	// row returns the count vector at pos, borrowed from the store's
	// backing memory. Callers must not retain or mutate it.
	row(pos int) []float64

	// numRows returns the number of stored rows.
	numRows() int

	// width returns the number of counts per row.
	width() int

	// mode reports the storage representation.
	mode() format.StorageMode

	// clone returns an independent copy with the same representation.
	clone() countStore
}

// dynamicStore keeps one growable count vector per row.
type dynamicStore struct {
	rows     [][]float64
	rowWidth int
}

func newDynamicStore(rowWidth int) *dynamicStore {
	return &dynamicStore{rowWidth: rowWidth}
}

func (s *dynamicStore) row(pos int) []float64 {
	return s.rows[pos]
}

func (s *dynamicStore) numRows() int {
	return len(s.rows)
}

func (s *dynamicStore) width() int {
	return s.rowWidth
}

func (s *dynamicStore) mode() format.StorageMode {
	return format.StorageDynamic
}

func (s *dynamicStore) clone() countStore {
	clone := &dynamicStore{
		rows:     make([][]float64, len(s.rows)),
		rowWidth: s.rowWidth,
	}
	for i, row := range s.rows {
		clone.rows[i] = make([]float64, len(row))
		copy(clone.rows[i], row)
	}

	return clone
}

// appendRow adds a row, taking ownership of vec.
func (s *dynamicStore) appendRow(vec []float64) {
	s.rows = append(s.rows, vec)
}

// setRow replaces the row at pos, taking ownership of vec.
func (s *dynamicStore) setRow(pos int, vec []float64) {
	s.rows[pos] = vec
}

// staticStore keeps all rows in one flat rectangular array. It is
// constructed complete and never written again.
type staticStore struct {
	flat     []float64
	rowWidth int
}

func newStaticStore(flat []float64, rowWidth int) *staticStore {
	return &staticStore{flat: flat, rowWidth: rowWidth}
}

func (s *staticStore) row(pos int) []float64 {
	start := pos * s.rowWidth
	return s.flat[start : start+s.rowWidth : start+s.rowWidth]
}

func (s *staticStore) numRows() int {
	if s.rowWidth == 0 {
		return 0
	}

	return len(s.flat) / s.rowWidth
}

func (s *staticStore) width() int {
	return s.rowWidth
}

func (s *staticStore) mode() format.StorageMode {
	return format.StorageStatic
}

func (s *staticStore) clone() countStore {
	flat := make([]float64, len(s.flat))
	copy(flat, s.flat)

	return newStaticStore(flat, s.rowWidth)
}
