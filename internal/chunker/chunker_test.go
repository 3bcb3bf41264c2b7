package chunker

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, contents string) *os.File {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "chunker-*.txt")
	require.NoError(t, err)
	_, err = f.WriteString(contents)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestBoundariesEmptyFile(t *testing.T) {
	f := writeTemp(t, "")

	bounds, err := Boundaries(f, 16, []byte("<|endoftext|>"))
	require.NoError(t, err)
	assert.Equal(t, []int64{0}, bounds)
}

func TestBoundariesStartsAtZeroEndsAtSize(t *testing.T) {
	contents := "hello<|endoftext|>world<|endoftext|>and more text here"
	f := writeTemp(t, contents)

	bounds, err := Boundaries(f, 4, []byte("<|endoftext|>"))
	require.NoError(t, err)

	require.NotEmpty(t, bounds)
	assert.EqualValues(t, 0, bounds[0])
	assert.EqualValues(t, len(contents), bounds[len(bounds)-1])
	assert.LessOrEqual(t, len(bounds)-1, 4)
}

func TestBoundariesAreAtMarkerOccurrencesOrEOF(t *testing.T) {
	marker := []byte("<|endoftext|>")
	contents := "aaaa<|endoftext|>bbbb<|endoftext|>cccc<|endoftext|>dddd"
	f := writeTemp(t, contents)

	bounds, err := Boundaries(f, 8, marker)
	require.NoError(t, err)

	raw, err := os.ReadFile(f.Name())
	require.NoError(t, err)

	for _, b := range bounds[1 : len(bounds)-1] {
		if int(b) == len(raw) {
			continue
		}
		require.True(t, int(b)+len(marker) <= len(raw))
		assert.Equal(t, marker, raw[b:int(b)+len(marker)])
	}
}

func TestBoundariesStrictlyIncreasing(t *testing.T) {
	f := writeTemp(t, "some text without any special token at all, just prose")

	bounds, err := Boundaries(f, 16, []byte("<|endoftext|>"))
	require.NoError(t, err)

	for i := 1; i < len(bounds); i++ {
		assert.Greater(t, bounds[i], bounds[i-1])
	}
}

func TestBoundariesRejectsNonPositiveChunkCount(t *testing.T) {
	f := writeTemp(t, "text")

	_, err := Boundaries(f, 0, []byte("<|endoftext|>"))
	assert.Error(t, err)
}

func TestBoundariesSingleChunk(t *testing.T) {
	contents := "no markers here, just a short file"
	f := writeTemp(t, contents)

	bounds, err := Boundaries(f, 1, []byte("<|endoftext|>"))
	require.NoError(t, err)
	assert.Equal(t, []int64{0, int64(len(contents))}, bounds)
}
