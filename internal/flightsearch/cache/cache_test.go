package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cloneSlice(v []int) []int {
	return append([]int(nil), v...)
}

func TestCache_GetSet(t *testing.T) {
	t.Parallel()

	c := New(cloneSlice, 0)
	_, ok := c.Get("missing")
	assert.False(t, ok)

	in := []int{1, 2, 3}
	c.Set("k", in, time.Minute)
	in[0] = 99

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, []int{1, 2, 3}, got)

	got[1] = 42
	again, _ := c.Get("k")
	assert.Equal(t, []int{1, 2, 3}, again)
}

func TestCache_Expires(t *testing.T) {
	t.Parallel()

	c := New[[]int](nil, 0)
	c.Set("k", []int{1}, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCache_NonPositiveTTLIsNotStored(t *testing.T) {
	t.Parallel()

	c := New(cloneSlice, 0)
	c.Set("k", []int{1}, 0)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestCache_Capacity(t *testing.T) {
	t.Parallel()

	c := New(cloneSlice, 1)
	c.Set("a", []int{1}, time.Minute)
	c.Set("b", []int{2}, time.Minute)

	_, ok := c.Get("a")
	assert.False(t, ok)
	got, ok := c.Get("b")
	require.True(t, ok)
	assert.Equal(t, []int{2}, got)
}
