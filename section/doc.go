// Package section defines the low-level binary structures of the snapshot format.
//
// It handles byte-level serialization of snapshot headers, flags, and the
// key/label tables, keeping the physical layout in one place so the codec
// package can work in terms of whole sections.
//
// # Snapshot structure (v2)
//
// A snapshot consists of a fixed-size header followed by variable-size
// sections:
//
//	┌─────────────────────────────────────────────────────────┐
//	│ Header (32 bytes, fixed)                                │
//	│  - Flag (4 bytes): options, compression, policy         │
//	│  - KeyCount, OutcomeCount, MemberCount (12 bytes)       │
//	│  - Offsets and counts payload size (16 bytes)           │
//	├─────────────────────────────────────────────────────────┤
//	│ Key Table (variable)                                    │
//	│  - Count-prefixed label-list entries                    │
//	│  - Per-key xxHash64 fingerprint                         │
//	├─────────────────────────────────────────────────────────┤
//	│ Outcome Label Table (variable)                          │
//	│  - Length-prefixed strings + table fingerprint          │
//	├─────────────────────────────────────────────────────────┤
//	│ Member Name Table (variable, group snapshots only)      │
//	│  - Same layout as the outcome label table               │
//	├─────────────────────────────────────────────────────────┤
//	│ Counts Payload (variable)                               │
//	│  - float64 rows in key order, one value per outcome     │
//	│  - Group snapshots concatenate all members' rows        │
//	│  - Compressed as one block per the flag's compression   │
//	└─────────────────────────────────────────────────────────┘
//
// The Options field of the header is always little-endian so readers can
// recover the endianness bit and the magic number before anything else; the
// rest of the snapshot uses the byte order that bit selects.
//
// Fingerprints make corruption visible at load time: a flipped bit in a key
// entry fails its fingerprint check instead of silently renaming a row.
//
// # Legacy v1
//
// The v1 format (magic 0xDA10) has a 16-byte header, no fingerprints, and
// an uncompressed counts payload. It is supported for reading only; the
// Decode*Legacy* functions handle its tables.
//
// All offsets are uint32, which caps a snapshot at 4GiB. Count tables of
// that size would hold billions of rows, far past what a single dataset is
// meant to carry.
package section
