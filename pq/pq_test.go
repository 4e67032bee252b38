package pq_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jnavia/gccl/pq"
)

// TestExtractionOrder is the §8.2.3 end-to-end scenario.
func TestExtractionOrder(t *testing.T) {
	q := pq.New[byte]()
	_, err := q.Insert(5, 'a')
	require.NoError(t, err)
	_, err = q.Insert(1, 'b')
	require.NoError(t, err)
	_, err = q.Insert(3, 'c')
	require.NoError(t, err)
	_, err = q.Insert(2, 'd')
	require.NoError(t, err)

	var keys []int64
	var vals []byte
	for q.Size() > 0 {
		v, k, err := q.Pop()
		require.NoError(t, err)
		keys = append(keys, k)
		vals = append(vals, v)
	}
	require.Equal(t, []int64{1, 2, 3, 5}, keys)
	require.Equal(t, []byte{'b', 'd', 'c', 'a'}, vals)
}

func TestMinPropertyHolds(t *testing.T) {
	q := pq.New[int]()
	keys := []int64{9, 4, 7, 1, 12, 3, 8, 2}
	for i, k := range keys {
		_, err := q.Insert(k, i)
		require.NoError(t, err)
	}
	var popped []int64
	for q.Size() > 0 {
		_, k, err := q.Pop()
		require.NoError(t, err)
		if len(popped) > 0 {
			require.GreaterOrEqual(t, k, popped[len(popped)-1])
		}
		popped = append(popped, k)
	}
}

func TestDecreaseKey(t *testing.T) {
	q := pq.New[string]()
	_, _ = q.Insert(10, "ten")
	h, _ := q.Insert(20, "twenty")
	_, _ = q.Insert(5, "five")

	require.NoError(t, q.DecreaseKey(h, 1))
	v, k, err := q.Front()
	require.NoError(t, err)
	require.Equal(t, int64(1), k)
	require.Equal(t, "twenty", v)
}

func TestUnion(t *testing.T) {
	a := pq.New[int]()
	_, _ = a.Insert(3, 3)
	b := pq.New[int]()
	_, _ = b.Insert(1, 1)
	_, _ = b.Insert(2, 2)

	require.NoError(t, a.Union(b))
	require.Equal(t, 3, a.Size())
	require.Equal(t, 0, b.Size())
	_, k, _ := a.Front()
	require.Equal(t, int64(1), k)
}

func TestCopyIndependence(t *testing.T) {
	a := pq.New[int]()
	_, _ = a.Insert(1, 1)
	c := a.Copy()
	_, _ = c.Insert(2, 2)
	require.Equal(t, 1, a.Size())
	require.Equal(t, 2, c.Size())
}
