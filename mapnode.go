package jsop

import "fmt"

// MapNode is the insertion-ordered associative container of
// SPEC_FULL.md §4.3: a head/tail/size triple at the node's root address
// plus one prev/next/value triple per entry.
type MapNode struct {
	d    *dereferencer
	addr Address
}

// MapEntry is one (key, value) pair returned by Items.
type MapEntry struct {
	Key   string
	Value Ref
}

func (m *MapNode) headAddr() Address { return m.addr.Child(compNext) }
func (m *MapNode) tailAddr() Address { return m.addr.Child(compPrev) }
func (m *MapNode) sizeAddr() Address { return m.addr.Child(compSize) }

func (m *MapNode) entryPrevAddr(key string) Address { return m.addr.Child(compKey, key, compPrev) }
func (m *MapNode) entryNextAddr(key string) Address { return m.addr.Child(compKey, key, compNext) }
func (m *MapNode) entryValueAddr(key string) Address { return m.addr.Child(compKey, key, compValue) }

// initLinks writes the empty head/tail/size records for a freshly
// created map node. Called only right after the {} marker is written.
func (m *MapNode) initLinks() error {
	if err := m.d.rs.put(m.headAddr(), nil); err != nil {
		return err
	}
	if err := m.d.rs.put(m.tailAddr(), nil); err != nil {
		return err
	}
	return m.d.rs.put(m.sizeAddr(), float64(0))
}

func readPointer(d *dereferencer, addr Address) (key string, has bool, err error) {
	v, err := d.rs.get(addr)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", false, fmt.Errorf("%w: pointer at %s is not a string or null", ErrCorrupt, addr)
	}
	return s, true, nil
}

func writePointer(d *dereferencer, addr Address, key string, has bool) error {
	if !has {
		return d.rs.put(addr, nil)
	}
	return d.rs.put(addr, key)
}

// Len returns the number of entries in the map, O(1) against the store.
func (m *MapNode) Len() (int, error) {
	v, err := m.d.rs.get(m.sizeAddr())
	if err != nil {
		return 0, err
	}
	n, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: size record at %s is not a number", ErrCorrupt, m.addr)
	}
	return int(n), nil
}

func (m *MapNode) adjustSize(delta int) error {
	n, err := m.Len()
	if err != nil {
		return err
	}
	return m.d.rs.put(m.sizeAddr(), float64(n+delta))
}

// Contains reports whether key is present.
func (m *MapNode) Contains(key string) (bool, error) {
	return m.d.exists(m.entryValueAddr(key))
}

// Get fetches the value ref for key. Returns ErrMissingKey if absent.
func (m *MapNode) Get(key string) (Ref, error) {
	ok, err := m.Contains(key)
	if err != nil {
		return Ref{}, err
	}
	if !ok {
		return Ref{}, fmt.Errorf("%w: %q", ErrMissingKey, key)
	}
	return m.d.fetch(m.entryValueAddr(key))
}

// GetDefault returns an in-memory snapshot of key's value, or def if key
// is absent.
func (m *MapNode) GetDefault(key string, def any) (any, error) {
	ok, err := m.Contains(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return def, nil
	}
	ref, err := m.d.fetch(m.entryValueAddr(key))
	if err != nil {
		return nil, err
	}
	return ref.export()
}

// Put inserts or overwrites key with value. A new key is linked as the
// new tail; an existing key keeps its position and only its value
// (and any subtree it held) is replaced.
func (m *MapNode) Put(key string, value any) error {
	exists, err := m.Contains(key)
	if err != nil {
		return err
	}
	if !exists {
		if err := m.linkNewTail(key); err != nil {
			return err
		}
	}
	return m.d.assign(m.entryValueAddr(key), value)
}

// linkNewTail splices key in as the new tail of the entry linked list.
func (m *MapNode) linkNewTail(key string) error {
	tailKey, hasTail, err := readPointer(m.d, m.tailAddr())
	if err != nil {
		return err
	}

	if err := writePointer(m.d, m.entryPrevAddr(key), tailKey, hasTail); err != nil {
		return err
	}
	if err := writePointer(m.d, m.entryNextAddr(key), "", false); err != nil {
		return err
	}

	if hasTail {
		if err := writePointer(m.d, m.entryNextAddr(tailKey), key, true); err != nil {
			return err
		}
	} else {
		if err := writePointer(m.d, m.headAddr(), key, true); err != nil {
			return err
		}
	}
	if err := writePointer(m.d, m.tailAddr(), key, true); err != nil {
		return err
	}
	return m.adjustSize(1)
}

// Delete removes key, unlinking it from the entry list and destroying
// any subtree its value held. Returns ErrMissingKey if absent.
func (m *MapNode) Delete(key string) error {
	exists, err := m.Contains(key)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %q", ErrMissingKey, key)
	}

	prevKey, hasPrev, err := readPointer(m.d, m.entryPrevAddr(key))
	if err != nil {
		return err
	}
	nextKey, hasNext, err := readPointer(m.d, m.entryNextAddr(key))
	if err != nil {
		return err
	}

	if err := m.d.remove(m.entryValueAddr(key)); err != nil {
		return err
	}
	if err := m.d.rs.delete(m.entryPrevAddr(key)); err != nil {
		return err
	}
	if err := m.d.rs.delete(m.entryNextAddr(key)); err != nil {
		return err
	}

	if hasPrev {
		if err := writePointer(m.d, m.entryNextAddr(prevKey), nextKey, hasNext); err != nil {
			return err
		}
	} else {
		if err := writePointer(m.d, m.headAddr(), nextKey, hasNext); err != nil {
			return err
		}
	}
	if hasNext {
		if err := writePointer(m.d, m.entryPrevAddr(nextKey), prevKey, hasPrev); err != nil {
			return err
		}
	} else {
		if err := writePointer(m.d, m.tailAddr(), prevKey, hasPrev); err != nil {
			return err
		}
	}

	return m.adjustSize(-1)
}

// Pop removes and returns key's value. Returns ErrMissingKey if absent.
func (m *MapNode) Pop(key string) (any, error) {
	ref, err := m.Get(key)
	if err != nil {
		return nil, err
	}
	v, err := ref.export()
	if err != nil {
		return nil, err
	}
	if err := m.Delete(key); err != nil {
		return nil, err
	}
	return v, nil
}

// PopDefault removes and returns key's value, or returns def without
// error if key is absent.
func (m *MapNode) PopDefault(key string, def any) (any, error) {
	ok, err := m.Contains(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return def, nil
	}
	return m.Pop(key)
}

// PopItem removes and returns the head entry. Returns ErrEmptyContainer
// if the map has no entries.
func (m *MapNode) PopItem() (key string, value any, err error) {
	headKey, has, err := readPointer(m.d, m.headAddr())
	if err != nil {
		return "", nil, err
	}
	if !has {
		return "", nil, fmt.Errorf("%w: popitem on empty map", ErrEmptyContainer)
	}
	v, err := m.Pop(headKey)
	if err != nil {
		return "", nil, err
	}
	return headKey, v, nil
}

// SetDefault returns key's current value if present, otherwise sets it
// to def and returns def.
func (m *MapNode) SetDefault(key string, def any) (any, error) {
	ok, err := m.Contains(key)
	if err != nil {
		return nil, err
	}
	if ok {
		ref, err := m.Get(key)
		if err != nil {
			return nil, err
		}
		return ref.export()
	}
	if err := m.Put(key, def); err != nil {
		return nil, err
	}
	return def, nil
}

// Update overwrites/creates each key of other in m, preserving m's
// existing key order for keys that already exist and appending new keys
// in other's order.
func (m *MapNode) Update(other Object) error {
	for _, kv := range other {
		if err := m.Put(kv.Key, kv.Value); err != nil {
			return err
		}
	}
	return nil
}

// ForEach walks entries in insertion order, reading the successor
// before invoking fn so that fn may delete the key it was just given
// without corrupting the walk (per the liveness rule in §4.3). Deleting
// an unvisited key simply makes it not appear. If fn deletes both the
// key it was given and that key's successor, the walk fails with
// ErrMissingRecord. Returning an error from fn stops the walk and
// propagates the error.
func (m *MapNode) ForEach(fn func(key string, value Ref) error) error {
	key, has, err := readPointer(m.d, m.headAddr())
	if err != nil {
		return err
	}
	for has {
		nextKey, hasNext, err := readPointer(m.d, m.entryNextAddr(key))
		if err != nil {
			return err
		}
		ref, err := m.d.fetch(m.entryValueAddr(key))
		if err != nil {
			return err
		}
		if err := fn(key, ref); err != nil {
			return err
		}
		if hasNext {
			// fn may have deleted the successor read above; key's own next
			// pointer has then been relinked past it.
			nextLive, err := m.Contains(nextKey)
			if err != nil {
				return err
			}
			if !nextLive {
				nextKey, hasNext, err = readPointer(m.d, m.entryNextAddr(key))
				if err != nil {
					return err
				}
			}
		}
		key, has = nextKey, hasNext
	}
	return nil
}

// Keys returns every key in insertion order. O(size).
func (m *MapNode) Keys() ([]string, error) {
	var keys []string
	err := m.ForEach(func(key string, _ Ref) error {
		keys = append(keys, key)
		return nil
	})
	return keys, err
}

// Values returns every value, in key insertion order.
func (m *MapNode) Values() ([]any, error) {
	var values []any
	err := m.ForEach(func(_ string, ref Ref) error {
		v, err := ref.export()
		if err != nil {
			return err
		}
		values = append(values, v)
		return nil
	})
	return values, err
}

// Items returns every (key, value ref) pair in insertion order.
func (m *MapNode) Items() ([]MapEntry, error) {
	var items []MapEntry
	err := m.ForEach(func(key string, ref Ref) error {
		items = append(items, MapEntry{Key: key, Value: ref})
		return nil
	})
	return items, err
}

// Clear removes every entry, leaving the map node itself (its marker
// and head/tail/size records) in place and empty.
func (m *MapNode) Clear() error {
	for {
		headKey, has, err := readPointer(m.d, m.headAddr())
		if err != nil {
			return err
		}
		if !has {
			return nil
		}
		if err := m.Delete(headKey); err != nil {
			return err
		}
	}
}

// Copy returns an in-memory snapshot identical to Export.
func (m *MapNode) Copy() (Object, error) { return m.Export() }

// Export returns a depth-first in-memory snapshot of the map, in
// insertion order.
func (m *MapNode) Export() (Object, error) {
	out := Object{}
	err := m.ForEach(func(key string, ref Ref) error {
		v, err := ref.export()
		if err != nil {
			return err
		}
		out = append(out, KV{Key: key, Value: v})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// destroy clears every entry (recursively destroying any subtrees) and
// then deletes the node's own head/tail/size records. The {} marker at
// addr itself is deleted by the caller (dereferencer.remove), which is
// what keeps the marker-presence invariant (§3 invariant 4) intact
// during the operation.
func (m *MapNode) destroy() error {
	if err := m.Clear(); err != nil {
		return err
	}
	if err := m.d.rs.delete(m.headAddr()); err != nil {
		return err
	}
	if err := m.d.rs.delete(m.tailAddr()); err != nil {
		return err
	}
	return m.d.rs.delete(m.sizeAddr())
}
