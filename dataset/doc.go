// Package dataset implements the measurement-count store: ordered
// collections of key → outcome-count rows with a fixed outcome schema,
// collision-aware insertion, and grouped aggregation.
//
// # Storage modes
//
// A DataSet is dynamic or static. Dynamic datasets grow row by row while
// building and freeze exactly once via Finalize; static datasets wrap one
// flat rectangular count array, are frozen from birth, and reject every
// write. MutableCopy bridges either mode back to a fresh building dataset.
//
// # Collision policies
//
// Re-inserting an existing key either replaces its counts (overwrite, the
// default) or allocates a new row under the key tagged with an occurrence
// number: "Gx" again becomes "Gx #1", then "Gx #2" (keep-separate).
// KeyList(true) lists every row under its tag-stripped key.
//
// # Groups
//
// Group collects frozen datasets that share one outcome schema and one key
// list, admits them by name, and sums any subset of members elementwise
// into a new static dataset.
//
// The serialization codecs for these types live in the codec package.
package dataset
