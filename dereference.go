package jsop

import "fmt"

// Ref is the result of dereferencing an address: exactly one of Scalar
// (with IsContainer() == false), Map, or List is meaningful: a scalar
// value or a live handle to a container.
type Ref struct {
	Scalar any
	Map    *MapNode
	List   *ListNode
}

// IsMap reports whether the address holds a map container.
func (r Ref) IsMap() bool { return r.Map != nil }

// IsList reports whether the address holds a list container.
func (r Ref) IsList() bool { return r.List != nil }

// IsContainer reports whether the address holds a map or list.
func (r Ref) IsContainer() bool { return r.Map != nil || r.List != nil }

// export produces the in-memory snapshot of whatever the ref points to,
// recursing into containers.
func (r Ref) export() (any, error) {
	switch {
	case r.Map != nil:
		return r.Map.Export()
	case r.List != nil:
		return r.List.Export()
	default:
		return r.Scalar, nil
	}
}

// dereferencer is the address dereferencer of SPEC_FULL.md §4.2. It
// presents the record store as a value-oriented map from address to
// JSON value, transparently wrapping containers in handles.
type dereferencer struct {
	rs *recordStore
}

// fetch reads the record at addr and classifies it: a container marker
// yields a live handle, anything else is returned as a scalar.
func (d *dereferencer) fetch(addr Address) (Ref, error) {
	v, err := d.rs.get(addr)
	if err != nil {
		return Ref{}, err
	}

	switch t := v.(type) {
	case Object:
		if len(t) != 0 {
			return Ref{}, fmt.Errorf("%w: non-empty map marker at %s", ErrCorrupt, addr)
		}
		return Ref{Map: &MapNode{d: d, addr: addr}}, nil
	case []any:
		if len(t) != 0 {
			return Ref{}, fmt.Errorf("%w: non-empty list marker at %s", ErrCorrupt, addr)
		}
		return Ref{List: &ListNode{m: &MapNode{d: d, addr: addr}}}, nil
	default:
		return Ref{Scalar: t}, nil
	}
}

// exists reports whether addr names a live record, without fetching it.
func (d *dereferencer) exists(addr Address) (bool, error) {
	return d.rs.contains(addr)
}

// remove destroys whatever lives at addr: if it is a container, its
// subtree is destroyed first (so no record is ever orphaned), then the
// record itself is deleted.
func (d *dereferencer) remove(addr Address) error {
	ref, err := d.fetch(addr)
	if err != nil {
		return err
	}
	switch {
	case ref.Map != nil:
		if err := ref.Map.destroy(); err != nil {
			return err
		}
	case ref.List != nil:
		if err := ref.List.destroy(); err != nil {
			return err
		}
	}
	return d.rs.delete(addr)
}

// assign implements the two-phase write of SPEC_FULL.md §4.2: the
// incoming value (which may be a live handle aliasing data anywhere in
// the store, including a descendant of addr) is normalized into an
// in-memory snapshot first; only then is any existing record at addr
// destroyed and the snapshot written in its place.
func (d *dereferencer) assign(addr Address, value any) error {
	norm, err := normalize(value)
	if err != nil {
		return err
	}

	if exists, err := d.rs.contains(addr); err != nil {
		return err
	} else if exists {
		if err := d.remove(addr); err != nil {
			return err
		}
	}

	switch t := norm.(type) {
	case Object:
		if err := d.rs.put(addr, Object{}); err != nil {
			return err
		}
		mn := &MapNode{d: d, addr: addr}
		if err := mn.initLinks(); err != nil {
			return err
		}
		for _, kv := range t {
			if err := mn.Put(kv.Key, kv.Value); err != nil {
				return err
			}
		}
		return nil

	case []any:
		if err := d.rs.put(addr, []any{}); err != nil {
			return err
		}
		ln := &ListNode{m: &MapNode{d: d, addr: addr}}
		if err := ln.m.initLinks(); err != nil {
			return err
		}
		for _, item := range t {
			if err := ln.Append(item); err != nil {
				return err
			}
		}
		return nil

	default:
		return d.rs.put(addr, t)
	}
}
