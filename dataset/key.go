package dataset

import (
	"strconv"
	"strings"
)

// EmptyKeyToken is the textual rendering of the zero-length key. The text
// codec reads and writes this token wherever an empty key appears, since a
// truly empty field cannot survive whitespace-delimited parsing.
const EmptyKeyToken = "{}"

// canonSep joins labels in the canonical identity string. It is a control
// character so ordinary operation labels never contain it; labels holding
// U+001F are not supported.
const canonSep = "\x1f"

// Label is an atomic identifier for one operation in a key sequence, such
// as "Gx", or an occurrence tag such as "#2". Labels used with the text
// codec must be non-empty and free of whitespace.
type Label = string

// Key is an immutable ordered sequence of labels identifying one
// experimental sequence. Two keys with identical label sequences are the
// same key regardless of how they were constructed.
//
// The zero value is the empty key, rendered as "{}".
//
// Example:
//
//	key := dataset.NewKey("Gx", "Gy")
//	key.String()  // "Gx Gy"
//	key.Len()     // 2
type Key struct {
	labels []Label
	canon  string
}

// NewKey creates a key from the given labels. The labels are copied, so the
// caller may reuse the backing slice.
func NewKey(labels ...Label) Key {
	if len(labels) == 0 {
		return Key{}
	}

	owned := make([]Label, len(labels))
	copy(owned, labels)

	return Key{labels: owned, canon: canonOf(owned)}
}

// ParseKey parses the textual form of a key: whitespace-separated labels,
// or the literal token "{}" for the empty key.
func ParseKey(s string) Key {
	s = strings.TrimSpace(s)
	if s == "" || s == EmptyKeyToken {
		return Key{}
	}

	return NewKey(strings.Fields(s)...)
}

// canonOf builds the canonical identity string: the label count, then the
// labels joined by the canonical separator. The count prefix keeps a key
// holding one empty label distinct from the empty key.
func canonOf(labels []Label) string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(len(labels)))
	for _, label := range labels {
		sb.WriteString(canonSep)
		sb.WriteString(label)
	}

	return sb.String()
}

// Canon returns the canonical identity string used by KeyIndex and the
// occurrence tracker. It is stable across construction paths but not meant
// for display; use String for that.
func (k Key) Canon() string {
	if len(k.labels) == 0 {
		return "0"
	}

	return k.canon
}

// String renders the key as space-joined labels, or "{}" for the empty key.
func (k Key) String() string {
	if len(k.labels) == 0 {
		return EmptyKeyToken
	}

	return strings.Join(k.labels, " ")
}

// Len returns the number of labels in the key.
func (k Key) Len() int {
	return len(k.labels)
}

// At returns the label at position i.
// Returns ("", false) if i is out of range.
func (k Key) At(i int) (Label, bool) {
	if i < 0 || i >= len(k.labels) {
		return "", false
	}

	return k.labels[i], true
}

// Labels returns a copy of the key's label sequence.
func (k Key) Labels() []Label {
	if len(k.labels) == 0 {
		return nil
	}

	labels := make([]Label, len(k.labels))
	copy(labels, k.labels)

	return labels
}

// Equal reports whether both keys hold the same label sequence.
func (k Key) Equal(other Key) bool {
	return k.Canon() == other.Canon()
}

// IsEmpty reports whether the key has no labels.
func (k Key) IsEmpty() bool {
	return len(k.labels) == 0
}

// Concat returns the key formed by this key's labels followed by other's.
func (k Key) Concat(other Key) Key {
	if other.Len() == 0 {
		return k
	}
	if k.Len() == 0 {
		return other
	}

	labels := make([]Label, 0, len(k.labels)+len(other.labels))
	labels = append(labels, k.labels...)
	labels = append(labels, other.labels...)

	return Key{labels: labels, canon: canonOf(labels)}
}

// WithOccurrence returns the key with the occurrence tag "#n" appended.
// Occurrence numbers start at 1; n below 1 returns the key unchanged.
func (k Key) WithOccurrence(n int) Key {
	if n < 1 {
		return k
	}

	labels := make([]Label, 0, len(k.labels)+1)
	labels = append(labels, k.labels...)
	labels = append(labels, "#"+strconv.Itoa(n))

	return Key{labels: labels, canon: canonOf(labels)}
}

// Occurrence returns the trailing occurrence tag number, or 0 when the key
// carries no tag. Only the last label can be a tag.
func (k Key) Occurrence() int {
	if len(k.labels) == 0 {
		return 0
	}

	return parseOccurrenceTag(k.labels[len(k.labels)-1])
}

// StripOccurrence returns the key without its trailing occurrence tag.
// Keys without a tag are returned unchanged.
func (k Key) StripOccurrence() Key {
	if k.Occurrence() == 0 {
		return k
	}

	return NewKey(k.labels[:len(k.labels)-1]...)
}

// parseOccurrenceTag returns the occurrence number of a "#n" label, or 0
// when the label is not a tag.
func parseOccurrenceTag(label Label) int {
	if len(label) < 2 || label[0] != '#' {
		return 0
	}

	n, err := strconv.Atoi(label[1:])
	if err != nil || n < 1 {
		return 0
	}

	return n
}
