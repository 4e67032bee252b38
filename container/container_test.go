package container_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jnavia/gccl/container"
	"github.com/jnavia/gccl/list"
)

func TestAppendAcrossSequentialContainers(t *testing.T) {
	src := list.New[int](nil)
	for _, v := range []int{1, 2, 3} {
		_, err := src.PushBack(v)
		require.NoError(t, err)
	}
	dst := list.New[int](nil)
	_, err := dst.PushBack(0)
	require.NoError(t, err)

	n, err := container.Append[int](dst, src)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	var got []int
	dst.Each(func(v int) bool { got = append(got, v); return true })
	require.Equal(t, []int{0, 1, 2, 3}, got)
}

func TestClearerSatisfiedByList(t *testing.T) {
	var _ container.Clearer = list.New[int](nil)
}
