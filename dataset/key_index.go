package dataset

import "iter"

// KeyIndex is an insertion-ordered interning table from keys to row
// positions. Positions form a bijection onto [0, Len): the first interned
// key gets position 0, the next 1, and so on. There is no removal;
// Truncate builds a fresh index over the surviving keys.
//
// Not safe for concurrent mutation. Read-only use after the owning dataset
// freezes is safe from any number of goroutines.
type KeyIndex struct {
	positions map[string]int // canonical key → position
	keys      []Key          // position → key
}

// NewKeyIndex creates an empty key index.
func NewKeyIndex() *KeyIndex {
	return &KeyIndex{
		positions: make(map[string]int),
	}
}

// newKeyIndexSized creates an empty key index with capacity hints.
func newKeyIndexSized(n int) *KeyIndex {
	return &KeyIndex{
		positions: make(map[string]int, n),
		keys:      make([]Key, 0, n),
	}
}

// Intern returns the position of the key, assigning the next free position
// when the key is unseen. Interning the same key contents twice returns the
// same position.
func (x *KeyIndex) Intern(key Key) int {
	canon := key.Canon()
	if pos, ok := x.positions[canon]; ok {
		return pos
	}

	pos := len(x.keys)
	x.positions[canon] = pos
	x.keys = append(x.keys, key)

	return pos
}

// PositionOf returns the position of the key.
// Returns (0, false) if the key has not been interned.
func (x *KeyIndex) PositionOf(key Key) (int, bool) {
	pos, ok := x.positions[key.Canon()]
	return pos, ok
}

// Contains reports whether the key has been interned.
func (x *KeyIndex) Contains(key Key) bool {
	_, ok := x.positions[key.Canon()]
	return ok
}

// KeyAt returns the key at the given position.
// Returns (Key{}, false) if the position is out of range.
func (x *KeyIndex) KeyAt(pos int) (Key, bool) {
	if pos < 0 || pos >= len(x.keys) {
		return Key{}, false
	}

	return x.keys[pos], true
}

// Len returns the number of interned keys.
func (x *KeyIndex) Len() int {
	return len(x.keys)
}

// Keys iterates the interned keys in insertion order.
func (x *KeyIndex) Keys() iter.Seq[Key] {
	return func(yield func(Key) bool) {
		for _, key := range x.keys {
			if !yield(key) {
				return
			}
		}
	}
}

// Clone returns an independent copy of the index.
func (x *KeyIndex) Clone() *KeyIndex {
	clone := &KeyIndex{
		positions: make(map[string]int, len(x.positions)),
		keys:      make([]Key, len(x.keys)),
	}
	for canon, pos := range x.positions {
		clone.positions[canon] = pos
	}
	copy(clone.keys, x.keys)

	return clone
}
