package scapegoat_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jnavia/gccl/scapegoat"
)

func intCompare(a, b int) int { return a - b }

// TestRebuildBoundsDepth is the §8.2.5 end-to-end scenario: inserting
// 1..1024 in order keeps the maximum leaf depth within
// ⌈log_{√2} 1024⌉ + 1 = 21.
func TestRebuildBoundsDepth(t *testing.T) {
	tr := scapegoat.New[int](intCompare)
	for i := 1; i <= 1024; i++ {
		require.NoError(t, tr.Add(i))
	}
	bound := int(math.Ceil(math.Log(1024)/math.Log(1/(math.Sqrt2/2)))) + 1
	require.LessOrEqual(t, tr.MaxLeafDepth(), bound)
	require.Equal(t, 1024, tr.Size())
}

func TestFindInsertErase(t *testing.T) {
	tr := scapegoat.New[int](intCompare)
	require.NoError(t, tr.Add(5))
	require.NoError(t, tr.Add(3))
	require.NoError(t, tr.Add(8))

	ok, err := tr.Insert(3)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, 3, tr.Size())

	v, found := tr.Find(8)
	require.True(t, found)
	require.Equal(t, 8, *v)

	erased, err := tr.Erase(3)
	require.NoError(t, err)
	require.True(t, erased)
	require.False(t, tr.Contains(3))
	require.Equal(t, 2, tr.Size())
}

func TestOrderedIteration(t *testing.T) {
	tr := scapegoat.New[int](intCompare)
	for _, v := range []int{5, 2, 8, 1, 9, 3} {
		require.NoError(t, tr.Add(v))
	}
	it := tr.NewIterator()
	var got []int
	for v, ok := it.First(); ok; v, ok = it.Next() {
		got = append(got, *v)
	}
	require.NoError(t, it.Err())
	require.Equal(t, []int{1, 2, 3, 5, 8, 9}, got)

	var back []int
	for v, ok := it.Last(); ok; v, ok = it.Prev() {
		back = append(back, *v)
	}
	require.Equal(t, []int{9, 8, 5, 3, 2, 1}, back)
}

func TestCopyIndependence(t *testing.T) {
	tr := scapegoat.New[int](intCompare)
	_ = tr.Add(1)
	cp := tr.Copy()
	_ = cp.Add(2)
	require.Equal(t, 1, tr.Size())
	require.Equal(t, 2, cp.Size())
	require.True(t, tr.Equal(tr.Copy()))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	tr := scapegoat.New[int](intCompare)
	for _, v := range []int{5, 2, 8, 1, 9, 3} {
		require.NoError(t, tr.Add(v))
	}
	var buf bytes.Buffer
	require.NoError(t, tr.Save(&buf, nil))

	loaded, err := scapegoat.Load[int](&buf, intCompare, nil)
	require.NoError(t, err)
	require.True(t, tr.Equal(loaded))
}

func TestRebuildOnShrink(t *testing.T) {
	tr := scapegoat.New[int](intCompare)
	for i := 1; i <= 100; i++ {
		require.NoError(t, tr.Add(i))
	}
	for i := 1; i <= 80; i++ {
		_, err := tr.Erase(i)
		require.NoError(t, err)
	}
	require.Equal(t, 20, tr.Size())
	bound := int(math.Ceil(math.Log(20)/math.Log(1/(math.Sqrt2/2)))) + 1
	require.LessOrEqual(t, tr.MaxLeafDepth(), bound)
}
