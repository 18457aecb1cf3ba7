// Package errs defines the sentinel errors returned by the tally library.
//
// Errors are organized into five categories, each with its own category
// sentinel: schema, state, key, group, and format. Every specific sentinel
// wraps its category, so callers can match at either level:
//
//	row, err := ds.Lookup(key)
//	if errors.Is(err, errs.ErrKeyNotFound) { ... } // specific
//	if errors.Is(err, errs.ErrKey) { ... }         // whole category
//
// Call sites attach detail by wrapping a sentinel with fmt.Errorf and %w,
// so the sentinel remains matchable through the chain.
package errs

import (
	"errors"
	"fmt"
)

// Category sentinels. Every error produced by the library wraps exactly one
// of these.
var (
	// ErrSchema covers violations of the outcome-label schema: unknown
	// labels, malformed count shapes, invalid construction input.
	ErrSchema = errors.New("schema violation")

	// ErrState covers operations invoked in the wrong storage state, such
	// as mutating a frozen or static dataset.
	ErrState = errors.New("state violation")

	// ErrKey covers key-level failures: lookups and truncations that
	// reference keys the dataset does not hold.
	ErrKey = errors.New("key violation")

	// ErrGroup covers dataset-group membership and alignment failures.
	ErrGroup = errors.New("group violation")

	// ErrFormat covers malformed text input and corrupt or unsupported
	// binary snapshots.
	ErrFormat = errors.New("format violation")
)

// Schema errors.
var (
	ErrUnknownOutcome   = fmt.Errorf("%w: unknown outcome label", ErrSchema)
	ErrOutcomeCount     = fmt.Errorf("%w: outcome count mismatch", ErrSchema)
	ErrNegativeCount    = fmt.Errorf("%w: negative count", ErrSchema)
	ErrEmptyOutcomes    = fmt.Errorf("%w: empty outcome label set", ErrSchema)
	ErrDuplicateOutcome = fmt.Errorf("%w: duplicate outcome label", ErrSchema)
	ErrCountShape       = fmt.Errorf("%w: count data shape mismatch", ErrSchema)
)

// State errors.
var (
	ErrFrozen    = fmt.Errorf("%w: dataset is frozen", ErrState)
	ErrStatic    = fmt.Errorf("%w: dataset is static", ErrState)
	ErrBadPolicy = fmt.Errorf("%w: unrecognized collision policy", ErrState)
)

// Key errors.
var (
	ErrKeyNotFound   = fmt.Errorf("%w: key not found", ErrKey)
	ErrPositionRange = fmt.Errorf("%w: row position out of range", ErrKey)
	ErrDuplicateKey  = fmt.Errorf("%w: duplicate key", ErrKey)
	ErrEmptyLabel    = fmt.Errorf("%w: empty label", ErrKey)
	ErrZeroTotal     = fmt.Errorf("%w: zero total count", ErrKey)
)

// Group errors.
var (
	ErrMemberExists    = fmt.Errorf("%w: member already admitted", ErrGroup)
	ErrMemberNotFound  = fmt.Errorf("%w: member not found", ErrGroup)
	ErrMemberNotFrozen = fmt.Errorf("%w: member is not frozen", ErrGroup)
	ErrMisaligned      = fmt.Errorf("%w: member keys disagree with group", ErrGroup)
	ErrSchemaMismatch  = fmt.Errorf("%w: member outcome labels disagree with group", ErrGroup)
)

// Format errors.
var (
	ErrHeaderSyntax           = fmt.Errorf("%w: malformed column header", ErrFormat)
	ErrColumnSyntax           = fmt.Errorf("%w: malformed column descriptor", ErrFormat)
	ErrDataSyntax             = fmt.Errorf("%w: malformed data line", ErrFormat)
	ErrSnapshotMagic          = fmt.Errorf("%w: invalid snapshot magic number", ErrFormat)
	ErrSnapshotVersion        = fmt.Errorf("%w: unsupported snapshot version", ErrFormat)
	ErrSnapshotCorrupt        = fmt.Errorf("%w: corrupt snapshot", ErrFormat)
	ErrSnapshotKind           = fmt.Errorf("%w: snapshot kind mismatch", ErrFormat)
	ErrFingerprintMismatch    = fmt.Errorf("%w: key fingerprint mismatch", ErrFormat)
	ErrUnsupportedCompression = fmt.Errorf("%w: unsupported compression type", ErrFormat)
)
