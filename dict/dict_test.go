package dict_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jnavia/gccl/dict"
)

// TestAddReplaceErase is the §8.2.2 end-to-end scenario.
func TestAddReplaceErase(t *testing.T) {
	d := dict.New[int32](16)

	n, err := d.Add([]byte("alpha"), 1)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	n, err = d.Add([]byte("alpha"), 2)
	require.NoError(t, err)
	require.Equal(t, 0, n)
	v, ok := d.Get([]byte("alpha"))
	require.True(t, ok)
	require.Equal(t, int32(2), v)

	n, err = d.Insert([]byte("alpha"), 3)
	require.NoError(t, err)
	require.Equal(t, 0, n)
	v, _ = d.Get([]byte("alpha"))
	require.Equal(t, int32(2), v)

	n, err = d.Replace([]byte("alpha"), 4)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	v, _ = d.Get([]byte("alpha"))
	require.Equal(t, int32(4), v)

	n, err = d.Erase([]byte("alpha"))
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.False(t, d.Contains([]byte("alpha")))
	require.Equal(t, 0, d.Size())
}

func TestReplaceMissingIsNotFound(t *testing.T) {
	d := dict.New[int32](16)
	_, err := d.Replace([]byte("x"), 1)
	require.Error(t, err)
}

func TestIteratorCoversEveryKey(t *testing.T) {
	d := dict.New[int32](16)
	want := map[string]int32{"a": 1, "b": 2, "c": 3}
	for k, v := range want {
		_, _ = d.Add([]byte(k), v)
	}
	got := map[string]int32{}
	it := d.NewIterator()
	for kv, ok := it.First(); ok; kv, ok = it.Next() {
		got[string(kv.Key)] = kv.Val
	}
	require.NoError(t, it.Err())
	require.Equal(t, want, got)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	d := dict.New[int32](16)
	_, _ = d.Add([]byte("one"), 1)
	_, _ = d.Add([]byte("two"), 2)

	var buf bytes.Buffer
	require.NoError(t, d.Save(&buf, nil))

	loaded, err := dict.Load[int32](&buf, 16, nil)
	require.NoError(t, err)
	require.True(t, d.Equal(loaded))
}

func TestWideDictionary(t *testing.T) {
	d := dict.NewWide[int32](16)
	key := []uint16{'h', 'i'}
	n, err := d.Add(key, 42)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	v, ok := d.Get(key)
	require.True(t, ok)
	require.Equal(t, int32(42), v)
}
