package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSliceCache_GetPut(t *testing.T) {
	c := NewSliceCache[int](4)

	_, ok := c.Get("missing")
	assert.False(t, ok)

	in := []int{1, 2, 3}
	c.Put("a", in)
	in[0] = 99

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, []int{1, 2, 3}, got)

	got[1] = 42
	again, _ := c.Get("a")
	assert.Equal(t, []int{1, 2, 3}, again)
}

func TestSliceCache_EvictsOldest(t *testing.T) {
	c := NewSliceCache[string](2)
	c.Put("a", []string{"x"})
	c.Put("b", []string{"y"})
	c.Put("a", []string{"z"})
	c.Put("c", []string{"w"})

	assert.Equal(t, 2, c.Size())
	_, ok := c.Get("a")
	assert.False(t, ok)
	got, ok := c.Get("c")
	require.True(t, ok)
	assert.Equal(t, []string{"w"}, got)
}

func TestSliceCache_Disabled(t *testing.T) {
	c := NewSliceCache[int](0)
	c.Put("a", []int{1})
	assert.Equal(t, 0, c.Size())
}
