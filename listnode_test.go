package jsop

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rootList(t *testing.T, s *Session) *ListNode {
	t.Helper()
	root, err := s.Root()
	require.NoError(t, err)
	require.True(t, root.IsList())
	return root.List
}

func TestListAppendGetPop(t *testing.T) {
	s := initTestSession(t, []any{})
	l := rootList(t, s)

	require.NoError(t, l.Append(float64(1)))
	require.NoError(t, l.Append(float64(2)))
	require.NoError(t, l.Append(float64(3)))

	n, err := l.Len()
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	ref, err := l.Get(-1)
	require.NoError(t, err)
	assert.Equal(t, float64(3), ref.Scalar)

	v, err := l.Pop()
	require.NoError(t, err)
	assert.Equal(t, float64(3), v)

	n, err = l.Len()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestListGetOutOfRange(t *testing.T) {
	s := initTestSession(t, []any{float64(1)})
	l := rootList(t, s)

	_, err := l.Get(5)
	assert.True(t, errors.Is(err, ErrOutOfRange))

	_, err = l.Get(-5)
	assert.True(t, errors.Is(err, ErrOutOfRange))
}

func TestListPopOnEmptyIsError(t *testing.T) {
	s := initTestSession(t, []any{})
	l := rootList(t, s)

	_, err := l.Pop()
	assert.True(t, errors.Is(err, ErrEmptyContainer))
}

func TestListInsertShiftsAndKeepsDenseIndices(t *testing.T) {
	s := initTestSession(t, []any{float64(1), float64(2), float64(3)})
	l := rootList(t, s)

	require.NoError(t, l.Insert(1, float64(99)))

	out, err := l.Export()
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), float64(99), float64(2), float64(3)}, out)
}

func TestListInsertPrependAndAppendClamping(t *testing.T) {
	s := initTestSession(t, []any{float64(1), float64(2)})
	l := rootList(t, s)

	require.NoError(t, l.Insert(-100, "front"))
	require.NoError(t, l.Insert(100, "back"))

	out, err := l.Export()
	require.NoError(t, err)
	assert.Equal(t, []any{"front", float64(1), float64(2), "back"}, out)
}

func TestListDeleteShiftsDown(t *testing.T) {
	s := initTestSession(t, []any{float64(1), float64(2), float64(3)})
	l := rootList(t, s)

	require.NoError(t, l.Delete(0))

	out, err := l.Export()
	require.NoError(t, err)
	assert.Equal(t, []any{float64(2), float64(3)}, out)
}

func TestListContainsIndexCount(t *testing.T) {
	s := initTestSession(t, []any{float64(1), "two", float64(1)})
	l := rootList(t, s)

	ok, err := l.Contains("two")
	require.NoError(t, err)
	assert.True(t, ok)

	idx, err := l.Index(float64(1), 0, -1)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)

	count, err := l.Count(float64(1))
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = l.Index("missing", 0, -1)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListRemoveFirstMatch(t *testing.T) {
	s := initTestSession(t, []any{float64(1), float64(2), float64(1)})
	l := rootList(t, s)

	require.NoError(t, l.Remove(float64(1)))
	out, err := l.Export()
	require.NoError(t, err)
	assert.Equal(t, []any{float64(2), float64(1)}, out)

	err = l.Remove("nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListExtendAddMulIAdd(t *testing.T) {
	s := initTestSession(t, []any{float64(1), float64(2)})
	l := rootList(t, s)

	sum, err := l.Add([]any{float64(3)})
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), float64(2), float64(3)}, sum)

	// Add is non-mutating
	out, err := l.Export()
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), float64(2)}, out)

	rep, err := l.Mul(2)
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), float64(2), float64(1), float64(2)}, rep)

	require.NoError(t, l.IAdd([]any{float64(9)}))
	out, err = l.Export()
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), float64(2), float64(9)}, out)
}

func TestListIMul(t *testing.T) {
	s := initTestSession(t, []any{float64(1), float64(2)})
	l := rootList(t, s)

	require.NoError(t, l.IMul(3))
	out, err := l.Export()
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), float64(2), float64(1), float64(2), float64(1), float64(2)}, out)
}

func TestListIMulZeroClears(t *testing.T) {
	s := initTestSession(t, []any{float64(1), float64(2)})
	l := rootList(t, s)

	require.NoError(t, l.IMul(0))
	n, err := l.Len()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestListSortHandlesHeterogeneousKindsWithoutPanicking(t *testing.T) {
	s := initTestSession(t, []any{"b", float64(2), nil, true, "a", float64(1)})
	l := rootList(t, s)

	require.NoError(t, l.Sort())

	out, err := l.Export()
	require.NoError(t, err)
	assert.Equal(t, []any{nil, true, float64(1), float64(2), "a", "b"}, out)
}

func TestListSortNumbers(t *testing.T) {
	s := initTestSession(t, []any{float64(3), float64(1), float64(2)})
	l := rootList(t, s)

	require.NoError(t, l.Sort())
	out, err := l.Export()
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), float64(2), float64(3)}, out)
}

func TestListReverse(t *testing.T) {
	s := initTestSession(t, []any{float64(1), float64(2), float64(3)})
	l := rootList(t, s)

	require.NoError(t, l.Reverse())
	out, err := l.Export()
	require.NoError(t, err)
	assert.Equal(t, []any{float64(3), float64(2), float64(1)}, out)
}

func TestListCellsSurviveRemovalOfOtherCells(t *testing.T) {
	s := initTestSession(t, []any{"a", "b", "c"})
	l := rootList(t, s)

	var values []any
	err := l.Cells(func(c Cell) error {
		v, err := c.Value()
		require.NoError(t, err)
		if v.Scalar == "a" {
			// removing "a" must not disturb the cell for "b"/"c" mid-walk
			return c.Remove()
		}
		values = append(values, v.Scalar)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"b", "c"}, values)
}

func TestListCellsRestoresDenseIndicesAfterRemove(t *testing.T) {
	s := initTestSession(t, []any{"a", "b", "c"})
	l := rootList(t, s)

	require.NoError(t, l.Cells(func(c Cell) error {
		v, err := c.Value()
		require.NoError(t, err)
		if v.Scalar == "a" {
			return c.Remove()
		}
		return nil
	}))

	keys, err := l.m.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1"}, keys)

	out, err := l.Export()
	require.NoError(t, err)
	assert.Equal(t, []any{"b", "c"}, out)

	ref, err := l.Get(0)
	require.NoError(t, err)
	assert.Equal(t, "b", ref.Scalar)
}

func TestListPutDestroysNestedSubtree(t *testing.T) {
	s := initTestSession(t, []any{Object{{Key: "uniquekey", Value: float64(1)}}})
	l := rootList(t, s)

	require.NoError(t, l.Put(0, "scalar now"))

	addrs, err := s.rs.iterateKeys()
	require.NoError(t, err)
	for _, a := range addrs {
		for _, comp := range a {
			assert.NotEqual(t, "uniquekey", comp)
		}
	}
}
