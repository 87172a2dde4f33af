package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocAndReset(t *testing.T) {
	a := New(Size(1, 4, 16))
	b1, err := a.Alloc(16)
	require.NoError(t, err)
	assert.Equal(t, 16, len(b1))
	assert.Equal(t, 16, a.Used())

	a.Reset()
	assert.Equal(t, 0, a.Used())
}

func TestAllocExhaustionReturnsOutOfMemory(t *testing.T) {
	a := New(Size(1, 1, 8))
	_, err := a.Alloc(8)
	require.NoError(t, err)
	_, err = a.Alloc(1)
	require.Error(t, err)
}
