package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemCache_SetGet(t *testing.T) {
	req := require.New(t)
	c := NewMemCache[int64, string](0, 0)
	defer c.Close()

	c.Set(1, "Alice")
	value, ok := c.Get(1)
	req.True(ok)
	req.Equal("Alice", value)

	_, ok = c.Get(2)
	req.False(ok)
}

func TestMemCache_Expiration(t *testing.T) {
	req := require.New(t)
	c := NewMemCache[string, int](10*time.Millisecond, 5*time.Millisecond)
	defer c.Close()

	c.Set("a", 1)
	_, ok := c.Get("a")
	req.True(ok)

	req.Eventually(func() bool {
		_, ok := c.Get("a")
		c.mu.RLock()
		defer c.mu.RUnlock()
		return !ok && len(c.items) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestMemCache_CloseTwice(t *testing.T) {
	req := require.New(t)
	c := NewMemCache[string, int](time.Minute, time.Millisecond)
	c.Close()
	c.Close()

	select {
	case <-c.stop:
	default:
		req.Fail("cleanup goroutine still running")
	}
	c.Set("a", 1)
	value, ok := c.Get("a")
	req.True(ok)
	req.Equal(1, value)
}
