package jsop

import (
	"fmt"
	"sort"
	"strconv"
)

// ListNode is a sequence view layered over a MapNode whose keys are the
// string forms of the integer indices 0..n-1, per SPEC_FULL.md §4.4.
type ListNode struct {
	m *MapNode
}

// Len returns the number of elements.
func (l *ListNode) Len() (int, error) { return l.m.Len() }

func normalizeIndex(i, n int) (int, error) {
	orig := i
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("%w: index %d for length %d", ErrOutOfRange, orig, n)
	}
	return i, nil
}

// Get returns the element at index i (negative indices count from the
// end). Returns ErrOutOfRange if i is out of bounds.
func (l *ListNode) Get(i int) (Ref, error) {
	n, err := l.Len()
	if err != nil {
		return Ref{}, err
	}
	idx, err := normalizeIndex(i, n)
	if err != nil {
		return Ref{}, err
	}
	return l.m.Get(strconv.Itoa(idx))
}

// Put replaces the element at index i, destroying any subtree it
// previously held.
func (l *ListNode) Put(i int, value any) error {
	n, err := l.Len()
	if err != nil {
		return err
	}
	idx, err := normalizeIndex(i, n)
	if err != nil {
		return err
	}
	return l.m.Put(strconv.Itoa(idx), value)
}

// Append adds value as the new last element.
func (l *ListNode) Append(value any) error {
	n, err := l.Len()
	if err != nil {
		return err
	}
	return l.m.Put(strconv.Itoa(n), value)
}

// Pop removes and returns the last element. Returns ErrEmptyContainer
// if the list is empty.
func (l *ListNode) Pop() (any, error) {
	n, err := l.Len()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: pop on empty list", ErrEmptyContainer)
	}
	return l.m.Pop(strconv.Itoa(n - 1))
}

// Insert places value at index i, shifting later elements up by one.
// i is clamped: i >= len appends, i < -len prepends at 0, otherwise
// negative indices count from the end.
func (l *ListNode) Insert(i int, value any) error {
	n, err := l.Len()
	if err != nil {
		return err
	}

	idx := i
	if idx >= n {
		return l.Append(value)
	}
	if idx < -n {
		idx = 0
	} else if idx < 0 {
		idx += n
	}

	// Append a placeholder to grow the list by one, then shift
	// [idx, n-1] up by one position, then overwrite idx.
	if err := l.Append(nil); err != nil {
		return err
	}
	for j := n; j > idx; j-- {
		prev, err := l.m.Get(strconv.Itoa(j - 1))
		if err != nil {
			return err
		}
		v, err := prev.export()
		if err != nil {
			return err
		}
		if err := l.m.Put(strconv.Itoa(j), v); err != nil {
			return err
		}
	}
	return l.m.Put(strconv.Itoa(idx), value)
}

// Delete removes the element at index i, shifting later elements down
// by one.
func (l *ListNode) Delete(i int) error {
	n, err := l.Len()
	if err != nil {
		return err
	}
	idx, err := normalizeIndex(i, n)
	if err != nil {
		return err
	}
	for j := idx; j < n-1; j++ {
		next, err := l.m.Get(strconv.Itoa(j + 1))
		if err != nil {
			return err
		}
		v, err := next.export()
		if err != nil {
			return err
		}
		if err := l.m.Put(strconv.Itoa(j), v); err != nil {
			return err
		}
	}
	_, err = l.m.Pop(strconv.Itoa(n - 1))
	return err
}

// Contains reports whether x deep-equals any element.
func (l *ListNode) Contains(x any) (bool, error) {
	_, found, err := l.indexOf(x, 0, -1)
	return found, err
}

// Index returns the index of the first element deep-equal to x within
// [start, stop). stop < 0 means "to the end". Returns ErrNotFound if
// there is no match.
func (l *ListNode) Index(x any, start, stop int) (int, error) {
	idx, found, err := l.indexOf(x, start, stop)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, fmt.Errorf("%w: value not present in list", ErrNotFound)
	}
	return idx, nil
}

func (l *ListNode) indexOf(x any, start, stop int) (int, bool, error) {
	n, err := l.Len()
	if err != nil {
		return 0, false, err
	}
	if stop < 0 || stop > n {
		stop = n
	}
	if start < 0 {
		start = 0
	}
	nx, err := normalize(x)
	if err != nil {
		return 0, false, err
	}
	for i := start; i < stop; i++ {
		ref, err := l.m.Get(strconv.Itoa(i))
		if err != nil {
			return 0, false, err
		}
		v, err := ref.export()
		if err != nil {
			return 0, false, err
		}
		if deepEqual(nx, v) {
			return i, true, nil
		}
	}
	return 0, false, nil
}

// Count returns the number of elements deep-equal to x.
func (l *ListNode) Count(x any) (int, error) {
	n, err := l.Len()
	if err != nil {
		return 0, err
	}
	nx, err := normalize(x)
	if err != nil {
		return 0, err
	}
	count := 0
	for i := 0; i < n; i++ {
		ref, err := l.m.Get(strconv.Itoa(i))
		if err != nil {
			return 0, err
		}
		v, err := ref.export()
		if err != nil {
			return 0, err
		}
		if deepEqual(nx, v) {
			count++
		}
	}
	return count, nil
}

// Remove deletes the first element deep-equal to x. Returns
// ErrNotFound if there is no match.
func (l *ListNode) Remove(x any) error {
	idx, found, err := l.indexOf(x, 0, -1)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: value not present in list", ErrNotFound)
	}
	return l.Delete(idx)
}

// Iter calls fn with each element ref in index order, stopping early if
// fn returns an error.
func (l *ListNode) Iter(fn func(i int, ref Ref) error) error {
	n, err := l.Len()
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		ref, err := l.m.Get(strconv.Itoa(i))
		if err != nil {
			return err
		}
		if err := fn(i, ref); err != nil {
			return err
		}
	}
	return nil
}

// ReversedIter calls fn with each element ref in reverse index order.
func (l *ListNode) ReversedIter(fn func(i int, ref Ref) error) error {
	n, err := l.Len()
	if err != nil {
		return err
	}
	for i := n - 1; i >= 0; i-- {
		ref, err := l.m.Get(strconv.Itoa(i))
		if err != nil {
			return err
		}
		if err := fn(i, ref); err != nil {
			return err
		}
	}
	return nil
}

// Extend appends every element of other, in order.
func (l *ListNode) Extend(other any) error {
	items, err := toItemSlice(other)
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := l.Append(item); err != nil {
			return err
		}
	}
	return nil
}

func toItemSlice(v any) ([]any, error) {
	norm, err := normalize(v)
	if err != nil {
		return nil, err
	}
	arr, ok := norm.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: not a list value", ErrInvalidAddress)
	}
	return arr, nil
}

// Add returns a fresh in-memory snapshot of self followed by other's
// elements (non-mutating, like Python's list.__add__).
func (l *ListNode) Add(other any) ([]any, error) {
	self, err := l.Export()
	if err != nil {
		return nil, err
	}
	items, err := toItemSlice(other)
	if err != nil {
		return nil, err
	}
	return append(append([]any{}, self...), items...), nil
}

// Radd returns a fresh snapshot of other's elements followed by self's
// (non-mutating).
func (l *ListNode) Radd(other any) ([]any, error) {
	items, err := toItemSlice(other)
	if err != nil {
		return nil, err
	}
	self, err := l.Export()
	if err != nil {
		return nil, err
	}
	return append(append([]any{}, items...), self...), nil
}

// Mul returns a fresh snapshot of self repeated n times.
func (l *ListNode) Mul(n int) ([]any, error) {
	self, err := l.Export()
	if err != nil {
		return nil, err
	}
	return repeat(self, n), nil
}

// Rmul is Mul; list repetition is commutative in count.
func (l *ListNode) Rmul(n int) ([]any, error) { return l.Mul(n) }

func repeat(items []any, n int) []any {
	if n <= 0 {
		return []any{}
	}
	out := make([]any, 0, len(items)*n)
	for i := 0; i < n; i++ {
		out = append(out, items...)
	}
	return out
}

// IAdd extends self in place with other's elements.
func (l *ListNode) IAdd(other any) error { return l.Extend(other) }

// IMul repeatedly extends self with its own original elements so that
// the final length is n times the original length.
func (l *ListNode) IMul(n int) error {
	if n <= 0 {
		return l.Clear()
	}
	self, err := l.Export()
	if err != nil {
		return err
	}
	for i := 1; i < n; i++ {
		if err := l.Extend(self); err != nil {
			return err
		}
	}
	return nil
}

// Clear removes every element.
func (l *ListNode) Clear() error { return l.m.Clear() }

// Copy returns an in-memory snapshot identical to Export.
func (l *ListNode) Copy() ([]any, error) { return l.Export() }

// Export returns a depth-first in-memory snapshot, in index order.
func (l *ListNode) Export() ([]any, error) {
	n, err := l.Len()
	if err != nil {
		return nil, err
	}
	out := make([]any, 0, n)
	err = l.Iter(func(_ int, ref Ref) error {
		v, err := ref.export()
		if err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Sort rearranges elements in place using kindRank/compareValues
// ordering. §4.4 leaves behavior on heterogeneous element kinds
// undefined; this implementation orders by kind first (nil, bool,
// number, string, list, map) so it never panics on mixed input, and by
// value within a kind.
func (l *ListNode) Sort() error {
	items, err := l.Export()
	if err != nil {
		return err
	}
	sort.SliceStable(items, func(i, j int) bool {
		return compareValues(items[i], items[j]) < 0
	})
	if err := l.Clear(); err != nil {
		return err
	}
	return l.Extend(items)
}

// Reverse reverses element order in place.
func (l *ListNode) Reverse() error {
	items, err := l.Export()
	if err != nil {
		return err
	}
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	if err := l.Clear(); err != nil {
		return err
	}
	return l.Extend(items)
}

func kindRank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case float64:
		return 2
	case string:
		return 3
	case []any:
		return 4
	case Object:
		return 5
	default:
		return 6
	}
}

func compareValues(a, b any) int {
	ra, rb := kindRank(a), kindRank(b)
	if ra != rb {
		return ra - rb
	}
	switch av := a.(type) {
	case float64:
		bv := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case string:
		bv := b.(string)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		default:
			return 0
		}
	case bool:
		bv := b.(bool)
		if av == bv {
			return 0
		}
		if !av {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// Cell is a handle to a single list entry identified by its frozen map
// key, independent of its current index. It is the only API that lets
// a caller keep referring to the same element across a Remove of some
// other element earlier in the same iteration.
type Cell struct {
	m   *MapNode
	key string
}

// Value returns the cell's current element.
func (c Cell) Value() (Ref, error) { return c.m.Get(c.key) }

// Put replaces the cell's element.
func (c Cell) Put(value any) error { return c.m.Put(c.key, value) }

// Remove deletes the cell's underlying map entry by its raw key, without
// shifting the other entries' keys. This is safe mid-walk (ForEach reads
// the successor key before invoking fn, so the walk itself never trips
// over the gap), but it leaves the index sequence non-dense; Cells
// restores density once the walk completes.
func (c Cell) Remove() error { return c.m.Delete(c.key) }

// Cells calls fn with a Cell for every element, in insertion order, then
// renumbers the remaining entries back to the dense "0".."len-1" key
// sequence §4.4 requires of every completed list operation. Compaction
// only happens after the walk returns successfully; a Cells call that
// removes entries is a complete operation in its own right, not an
// intermediate step some other call will clean up after.
func (l *ListNode) Cells(fn func(c Cell) error) error {
	if err := l.m.ForEach(func(key string, _ Ref) error {
		return fn(Cell{m: l.m, key: key})
	}); err != nil {
		return err
	}
	return l.compact()
}

// compact rebuilds the list from a depth-first snapshot, the same
// export/clear/extend approach Sort and Reverse use, so that the key
// sequence is dense and in order regardless of which raw keys Cells left
// behind.
func (l *ListNode) compact() error {
	items, err := l.Export()
	if err != nil {
		return err
	}
	if err := l.Clear(); err != nil {
		return err
	}
	return l.Extend(items)
}

func (l *ListNode) destroy() error { return l.m.destroy() }
