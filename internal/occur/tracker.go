// Package occur assigns occurrence numbers to repeated key insertions
// under the keep-separate collision policy.
package occur

// Tracker hands out occurrence numbers per canonical key string.
// The first duplicate of a key receives occurrence 1, the next 2, and so on.
// The base (first) insertion of a key never consults the tracker.
type Tracker struct {
	seen map[string]int // canonical key → occurrences handed out so far
}

// NewTracker creates a new occurrence tracker.
func NewTracker() *Tracker {
	return &Tracker{
		seen: make(map[string]int),
	}
}

// Next returns the next occurrence number for the given canonical key and
// advances the internal counter. Callers that find the numbered slot
// already taken (a manually inserted tagged key) simply call Next again.
func (t *Tracker) Next(canon string) int {
	t.seen[canon]++
	return t.seen[canon]
}

// Seen returns how many occurrence numbers have been handed out for the
// given canonical key.
func (t *Tracker) Seen(canon string) int {
	return t.seen[canon]
}

// Count returns the number of distinct keys that have received occurrence
// numbers.
func (t *Tracker) Count() int {
	return len(t.seen)
}

// Observe records that a tagged occurrence of canon exists with the given
// number, so later Next calls start above it. Used when rebuilding a
// dataset from a snapshot that already contains tagged keys.
func (t *Tracker) Observe(canon string, n int) {
	if n > t.seen[canon] {
		t.seen[canon] = n
	}
}

// Clone returns an independent tracker with the same counters.
func (t *Tracker) Clone() *Tracker {
	clone := &Tracker{
		seen: make(map[string]int, len(t.seen)),
	}
	for k, n := range t.seen {
		clone.seen[k] = n
	}

	return clone
}

// Reset clears all tracked keys.
func (t *Tracker) Reset() {
	// Clear the map but preserve capacity to avoid allocations.
	for k := range t.seen {
		delete(t.seen, k)
	}
}
