package jsop

import (
	"fmt"

	lane "github.com/jimsnab/go-lane"
)

const (
	formatName     = "JSOP"
	formatMajor    = 1
	supportedMinor = 0
)

func formatNameAddr() Address  { return Address{compMeta, "format-name"} }
func formatMajorAddr() Address { return Address{compMeta, "format-version-major"} }
func formatMinorAddr() Address { return Address{compMeta, "format-version-minor"} }

// Session is the scope during which a jsop file is open, per
// SPEC_FULL.md §4.6: it validates format metadata, exposes the root
// handle, and releases the backing store on every exit path.
type Session struct {
	dbm      DBM
	rs       *recordStore
	d        *dereferencer
	path     string
	readOnly bool
	l        lane.Lane
	closed   bool
}

type sessionConfig struct {
	opener DBMOpener
	lane   lane.Lane
}

// OpenOption configures Open/Init.
type OpenOption func(*sessionConfig)

// WithOpener overrides the DBM implementation used to open the file.
// The default is OpenBBolt.
func WithOpener(opener DBMOpener) OpenOption {
	return func(c *sessionConfig) { c.opener = opener }
}

// WithLane attaches a go-lane logger; open, close and init events are
// traced through it. With no lane, the session is silent.
func WithLane(l lane.Lane) OpenOption {
	return func(c *sessionConfig) { c.lane = l }
}

func defaultConfig() *sessionConfig {
	return &sessionConfig{opener: OpenBBolt}
}

func applyOptions(opts []OpenOption) *sessionConfig {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Open opens an existing jsop file. Format metadata is read under a
// throwaway read-only handle and validated before the file is reopened
// in the requested mode, matching §4.6's two-phase open.
func Open(path string, readOnly bool, opts ...OpenOption) (*Session, error) {
	cfg := applyOptions(opts)

	checkDBM, err := cfg.opener(path, ReadOnly)
	if err != nil {
		return nil, err
	}
	if err := validateFormat(checkDBM); err != nil {
		checkDBM.Close()
		return nil, err
	}
	if err := checkDBM.Close(); err != nil {
		return nil, err
	}

	mode := ReadWrite
	if readOnly {
		mode = ReadOnly
	}
	dbm, err := cfg.opener(path, mode)
	if err != nil {
		return nil, err
	}

	rs := newRecordStore(dbm, readOnly)
	s := &Session{
		dbm:      dbm,
		rs:       rs,
		d:        &dereferencer{rs: rs},
		path:     path,
		readOnly: readOnly,
		l:        cfg.lane,
	}
	s.logf("jsop: opened %s (readOnly=%v)", path, readOnly)
	return s, nil
}

func validateFormat(dbm DBM) error {
	rs := newRecordStore(dbm, true)

	nameV, err := rs.get(formatNameAddr())
	if err != nil {
		return fmt.Errorf("%w: reading format name: %s", ErrCorrupt, err)
	}
	majorV, err := rs.get(formatMajorAddr())
	if err != nil {
		return fmt.Errorf("%w: reading format major version: %s", ErrCorrupt, err)
	}
	minorV, err := rs.get(formatMinorAddr())
	if err != nil {
		return fmt.Errorf("%w: reading format minor version: %s", ErrCorrupt, err)
	}

	name, _ := nameV.(string)
	major, majorOK := majorV.(float64)
	minor, minorOK := minorV.(float64)
	if !majorOK || !minorOK {
		return fmt.Errorf("%w: format version fields are not numeric", ErrCorrupt)
	}

	if name != formatName || int(major) != formatMajor {
		return fmt.Errorf("%w: %s-%d.%d", ErrUnsupportedFormat, name, int(major), int(minor))
	}
	if int(minor) > supportedMinor {
		return fmt.Errorf("%w: %s-%d.%d (supports up to minor %d)", ErrUnsupportedFormat, name, int(major), int(minor), supportedMinor)
	}
	return nil
}

// Init creates a fresh jsop file at path and stores value as its root.
// With value == nil, the root is initialized to an empty map, matching
// the original jsop.py's `def init(self, obj = {})` default.
func Init(path string, value any, opts ...OpenOption) error {
	cfg := applyOptions(opts)

	dbm, err := cfg.opener(path, CreateNew)
	if err != nil {
		return err
	}
	defer dbm.Close()

	rs := newRecordStore(dbm, false)
	if err := rs.put(formatNameAddr(), formatName); err != nil {
		return err
	}
	if err := rs.put(formatMajorAddr(), float64(formatMajor)); err != nil {
		return err
	}
	if err := rs.put(formatMinorAddr(), float64(supportedMinor)); err != nil {
		return err
	}

	if value == nil {
		value = Object{}
	}
	d := &dereferencer{rs: rs}
	if cfg.lane != nil {
		cfg.lane.Tracef("jsop: initializing %s", path)
	}
	return d.assign(Address{}, value)
}

// Export opens path read-only and returns an in-memory snapshot of its
// root.
func Export(path string, opts ...OpenOption) (any, error) {
	s, err := Open(path, true, opts...)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Export()
}

// Root returns the root node handle.
func (s *Session) Root() (Ref, error) { return s.d.fetch(Address{}) }

// Export returns an in-memory snapshot of the root.
func (s *Session) Export() (any, error) {
	root, err := s.Root()
	if err != nil {
		return nil, err
	}
	return root.export()
}

// Close releases the underlying store handle. Safe to call more than
// once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.logf("jsop: closing %s", s.path)
	return s.dbm.Close()
}

func (s *Session) logf(format string, args ...any) {
	if s.l != nil {
		s.l.Tracef(format, args...)
	}
}
