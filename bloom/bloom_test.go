package bloom_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jnavia/gccl/bloom"
)

// TestNoFalseNegatives is the §8.2.6 end-to-end scenario.
func TestNoFalseNegatives(t *testing.T) {
	f := bloom.New(1000, 0.01)
	var added [][]byte
	for i := 0; i < 1000; i++ {
		key := []byte(fmt.Sprintf("key-%d", i))
		require.NoError(t, f.Add(key))
		added = append(added, key)
	}
	for _, key := range added {
		require.True(t, f.Find(key))
	}
}

func TestFullWhenOverCapacity(t *testing.T) {
	f := bloom.New(4, 0.1)
	for i := 0; i < 4; i++ {
		require.NoError(t, f.Add([]byte{byte(i)}))
	}
	require.Error(t, f.Add([]byte{99}))
}

func TestClearResetsMembership(t *testing.T) {
	f := bloom.New(10, 0.05)
	require.NoError(t, f.Add([]byte("x")))
	require.True(t, f.Find([]byte("x")))
	require.NoError(t, f.Clear())
	require.Equal(t, 0, f.Size())
	require.False(t, f.Find([]byte("x")))
}

func TestCalculateSpaceIsPositive(t *testing.T) {
	want := bloom.CalculateSpace(1000, 0.01)
	require.Greater(t, want, 0)
}
