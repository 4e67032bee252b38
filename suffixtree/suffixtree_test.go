package suffixtree_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jnavia/gccl/suffixtree"
)

// TestMississippiSubstrings is the §8.2.4 end-to-end scenario.
func TestMississippiSubstrings(t *testing.T) {
	text, err := suffixtree.NewText([]byte("mississippi"))
	require.NoError(t, err)

	tr := suffixtree.New()
	require.NoError(t, tr.Build(text))

	require.Equal(t, 1, tr.Find([]byte("iss")))
	require.Equal(t, 2, tr.Find([]byte("ssi")))
	require.Equal(t, 0, tr.Find([]byte("mis")))
	require.Equal(t, suffixtree.NotFound, tr.Find([]byte("pie")))
}

func TestRejectsEmbeddedTerminator(t *testing.T) {
	_, err := suffixtree.NewText([]byte{'a', 0, 'b'})
	require.Error(t, err)
}

func TestEverySubstringIsFound(t *testing.T) {
	s := "banana"
	text, err := suffixtree.NewText([]byte(s))
	require.NoError(t, err)
	tr := suffixtree.New()
	require.NoError(t, tr.Build(text))

	for i := 0; i < len(s); i++ {
		for j := i + 1; j <= len(s); j++ {
			sub := s[i:j]
			require.True(t, tr.Contains([]byte(sub)), "expected %q to be found", sub)
		}
	}
	require.False(t, tr.Contains([]byte("xyz")))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	text, err := suffixtree.NewText([]byte("abracadabra"))
	require.NoError(t, err)
	tr := suffixtree.New()
	require.NoError(t, tr.Build(text))

	var buf bytes.Buffer
	require.NoError(t, tr.Save(&buf))

	loaded, err := suffixtree.Load(&buf)
	require.NoError(t, err)
	require.Equal(t, tr.Find([]byte("cad")), loaded.Find([]byte("cad")))
}
