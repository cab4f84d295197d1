package jsop

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"
)

// recordStore is the record store adapter of SPEC_FULL.md §2: it
// translates between Address/any and the DBM's byte keys/byte values,
// and memoizes decoded records for the life of a session.
type recordStore struct {
	mu       sync.Mutex
	dbm      DBM
	readOnly bool
	cache    map[string]any
}

func newRecordStore(dbm DBM, readOnly bool) *recordStore {
	return &recordStore{
		dbm:      dbm,
		readOnly: readOnly,
		cache:    make(map[string]any),
	}
}

func (rs *recordStore) encode(addr Address) (cacheKey string, raw []byte, err error) {
	raw, err = addr.encode()
	if err != nil {
		return "", nil, err
	}
	return string(raw), raw, nil
}

// get reads and JSON-decodes the record at addr, consulting the cache
// first. Returns ErrMissingRecord if there is no record there.
func (rs *recordStore) get(addr Address) (any, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	key, raw, err := rs.encode(addr)
	if err != nil {
		return nil, err
	}
	if v, ok := rs.cache[key]; ok {
		return v, nil
	}

	data, found, err := rs.dbm.Get(raw)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrMissingRecord, addr)
	}

	v, err := decodeOrdered(json.NewDecoder(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: record at %s: %s", ErrCorrupt, addr, err)
	}
	rs.cache[key] = v
	return v, nil
}

// put JSON-encodes value and writes it at addr, echoing it into the
// cache.
func (rs *recordStore) put(addr Address, value any) error {
	if rs.readOnly {
		return fmt.Errorf("%w: put %s", ErrNotWritable, addr)
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	key, raw, err := rs.encode(addr)
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: encoding value for %s: %s", ErrCorrupt, addr, err)
	}
	if err := rs.dbm.Put(raw, data); err != nil {
		return err
	}
	rs.cache[key] = value
	return nil
}

// delete removes the record at addr, invalidating the cache entry.
// Returns ErrMissingRecord if there was no record there.
func (rs *recordStore) delete(addr Address) error {
	if rs.readOnly {
		return fmt.Errorf("%w: delete %s", ErrNotWritable, addr)
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()

	key, raw, err := rs.encode(addr)
	if err != nil {
		return err
	}

	found, err := rs.dbm.Delete(raw)
	if err != nil {
		return err
	}
	delete(rs.cache, key)
	if !found {
		return fmt.Errorf("%w: %s", ErrMissingRecord, addr)
	}
	return nil
}

// contains reports whether a record exists at addr, without decoding it.
func (rs *recordStore) contains(addr Address) (bool, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	key, raw, err := rs.encode(addr)
	if err != nil {
		return false, err
	}
	if _, ok := rs.cache[key]; ok {
		return true, nil
	}

	_, found, err := rs.dbm.Get(raw)
	return found, err
}

// iterateKeys enumerates every raw key currently in the store, decoded
// back into Addresses. It is not used by any core operation (see
// dbm.go's ForEach doc); it exists for diagnostics and for tests that
// assert subtree destruction left no orphaned records.
func (rs *recordStore) iterateKeys() ([]Address, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	var addrs []Address
	err := rs.dbm.ForEach(func(raw []byte) error {
		addrs = append(addrs, splitAddress(raw))
		return nil
	})
	return addrs, err
}

func splitAddress(raw []byte) Address {
	if len(raw) == 0 {
		return Address{}
	}
	var parts Address
	start := 0
	for i, b := range raw {
		if b == separator {
			parts = append(parts, string(raw[start:i]))
			start = i + 1
		}
	}
	parts = append(parts, string(raw[start:]))
	return parts
}
