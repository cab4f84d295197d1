package jsop

import "errors"

// Sentinel errors forming the error taxonomy. Callers should use
// errors.Is against these, since concrete errors are wrapped with
// context (the offending address or key) via fmt.Errorf("%w: ...").
var (
	// ErrMissingRecord is returned when a record store operation targets
	// an address that has no record.
	ErrMissingRecord = errors.New("jsop: missing record")

	// ErrMissingKey is returned when a map operation targets a key that
	// is not present.
	ErrMissingKey = errors.New("jsop: missing key")

	// ErrOutOfRange is returned by list operations given an index outside
	// [-len, len).
	ErrOutOfRange = errors.New("jsop: index out of range")

	// ErrNotFound is returned when a value-based lookup (list Index,
	// Remove) finds no matching element.
	ErrNotFound = errors.New("jsop: value not found")

	// ErrEmptyContainer is returned by operations that require at least
	// one element (Pop, PopItem) on an empty map or list.
	ErrEmptyContainer = errors.New("jsop: container is empty")

	// ErrNotWritable is returned when a mutation is attempted on a
	// read-only session.
	ErrNotWritable = errors.New("jsop: session is read-only")

	// ErrCorrupt is returned when format metadata is missing/unreadable,
	// or an on-disk invariant is violated.
	ErrCorrupt = errors.New("jsop: corrupt database")

	// ErrUnsupportedFormat is returned when format metadata is present
	// but names an incompatible format name/version.
	ErrUnsupportedFormat = errors.New("jsop: unsupported format")

	// ErrInvalidAddress is returned when an address cannot be encoded
	// (a component contains the reserved separator byte) or otherwise
	// does not name a legal record.
	ErrInvalidAddress = errors.New("jsop: invalid address")
)
