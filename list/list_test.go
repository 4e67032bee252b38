package list_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/jnavia/gccl/list"
)

func intCompare(a, b int32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// TestSortMembership is the §8.2.1 end-to-end scenario.
func TestSortMembership(t *testing.T) {
	l := list.New[int32](intCompare)
	for _, v := range []int32{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5} {
		_, err := l.Add(v)
		require.NoError(t, err)
	}
	require.NoError(t, l.Sort())
	require.Equal(t, 11, l.Size())

	want := []int32{1, 1, 2, 3, 3, 4, 5, 5, 5, 6, 9}
	var got []int32
	it := l.NewIterator()
	for v, ok := it.First(); ok; v, ok = it.Next() {
		got = append(got, v)
	}
	require.NoError(t, it.Err())
	require.Equal(t, want, got)
}

func TestPushPop(t *testing.T) {
	l := list.New[int32](intCompare)
	_, err := l.PushFront(2)
	require.NoError(t, err)
	_, err = l.PushFront(1)
	require.NoError(t, err)
	_, err = l.Add(3)
	require.NoError(t, err)

	v, err := l.PopFront()
	require.NoError(t, err)
	require.Equal(t, int32(1), v)

	v, err = l.PopBack()
	require.NoError(t, err)
	require.Equal(t, int32(3), v)

	require.Equal(t, 1, l.Size())
}

func TestIteratorInvalidation(t *testing.T) {
	l := list.New[int32](intCompare)
	_, _ = l.Add(1)
	_, _ = l.Add(2)
	it := l.NewIterator()
	_, ok := it.First()
	require.True(t, ok)
	_, _ = l.Add(3)
	_, ok = it.Next()
	require.False(t, ok)
	require.Error(t, it.Err())
}

func TestRotate(t *testing.T) {
	l := list.New[int32](intCompare)
	for _, v := range []int32{1, 2, 3, 4, 5} {
		_, _ = l.Add(v)
	}
	l.RotateLeft(2)
	var got []int32
	l.Each(func(v int32) bool { got = append(got, v); return true })
	require.Equal(t, []int32{3, 4, 5, 1, 2}, got)

	l.RotateRight(2)
	got = nil
	l.Each(func(v int32) bool { got = append(got, v); return true })
	require.Equal(t, []int32{1, 2, 3, 4, 5}, got)
}

func TestSplitAfterAndAppend(t *testing.T) {
	l := list.New[int32](intCompare)
	for _, v := range []int32{1, 2, 3, 4} {
		_, _ = l.Add(v)
	}
	h := l.FirstElement()
	h = l.NextElement(h) // points at 2
	tail, err := l.SplitAfter(h)
	require.NoError(t, err)
	require.Equal(t, 2, l.Size())
	require.Equal(t, 2, tail.Size())

	require.NoError(t, l.Append(tail))
	require.Equal(t, 4, l.Size())
	require.Equal(t, 0, tail.Size())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	l := list.New[int32](intCompare)
	for _, v := range []int32{10, 20, 30} {
		_, _ = l.Add(v)
	}
	var buf bytes.Buffer
	require.NoError(t, l.Save(&buf, nil))

	loaded, err := list.Load[int32](&buf, intCompare, nil)
	require.NoError(t, err)
	require.True(t, l.Equal(loaded))
}

func TestCopyIndependence(t *testing.T) {
	l := list.New[int32](intCompare)
	_, _ = l.Add(1)
	_, _ = l.Add(2)
	c := l.Copy()
	_, _ = c.Add(3)
	require.Equal(t, 2, l.Size())
	require.Equal(t, 3, c.Size())
}

// TestSizeAccounting is the §8.1 invariant 1 property: size tracks
// adds/inserts/push minus erases/pops across any operation sequence.
func TestSizeAccounting(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		l := list.New[int32](intCompare)
		want := 0
		ops := rapid.SliceOfN(rapid.IntRange(0, 3), 1, 50).Draw(t, "ops")
		for _, op := range ops {
			switch op {
			case 0:
				_, _ = l.Add(1)
				want++
			case 1:
				_, _ = l.PushFront(1)
				want++
			case 2:
				if _, err := l.PopFront(); err == nil {
					want--
				}
			case 3:
				if _, err := l.PopBack(); err == nil {
					want--
				}
			}
		}
		require.Equal(t, want, l.Size())
	})
}
