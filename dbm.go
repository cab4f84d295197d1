package jsop

// OpenMode selects how the backing store is opened.
type OpenMode int

const (
	// CreateNew truncates or creates the backing file.
	CreateNew OpenMode = iota
	// ReadWrite opens an existing file for reading and writing.
	ReadWrite
	// ReadOnly opens an existing file; writes fail with ErrNotWritable.
	ReadOnly
)

// DBM is the external collaborator contract: an embedded key/value
// store mapping opaque byte keys to opaque byte values. jsop lays the
// JSON document out as a flat collection of DBM records; it never
// requires ordered iteration, range scans, or transactions from this
// interface, so any embedded KV engine exposing these five operations
// can back a Session.
type DBM interface {
	// Get returns the value stored at key, or found == false if there
	// is none.
	Get(key []byte) (value []byte, found bool, err error)

	// Put writes value at key, creating or overwriting the record.
	Put(key, value []byte) error

	// Delete removes the record at key, reporting whether it existed.
	Delete(key []byte) (found bool, err error)

	// ForEach visits every key currently in the store. Order is
	// unspecified. Used only by diagnostics and tests that need to
	// enumerate the raw key space (e.g. to verify subtree destruction);
	// no core operation in §4 depends on it.
	ForEach(fn func(key []byte) error) error

	// Close releases the underlying store handle. Must be safe to call
	// on every exit path.
	Close() error
}

// DBMOpener opens (or creates) a DBM at path under the given mode.
type DBMOpener func(path string, mode OpenMode) (DBM, error)
