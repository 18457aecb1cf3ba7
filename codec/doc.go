// Package codec serializes datasets and dataset groups.
//
// Two interoperable representations are supported:
//
//   - A line-oriented text format with a "## Columns = ..." header declaring
//     how each data column maps onto outcome counts (raw counts, frequencies
//     paired with a total, or the total itself). Text files are
//     human-readable and diff-friendly; loading one always produces a frozen
//     dynamic dataset.
//   - A binary snapshot format that captures the full value: storage mode,
//     building state, collision policy, key and outcome tables, and the
//     count payload, optionally compressed. Snapshots restore exactly what
//     was written. The current format is version 2; version 1 snapshots
//     remain readable.
//
// The File variants of every operation apply transparent whole-file
// compression chosen by the path suffix (".gz", ".zst", ".lz4", ".s2");
// the stream variants work on any reader or writer. DetectKind sniffs bytes
// whose representation the caller does not know.
package codec
