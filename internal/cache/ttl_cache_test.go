package cache

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTTLCache_SetGet_NoTTL(t *testing.T) {
	c := NewTTLCache[string, bool]()
	c.Set("u-1|content_42", true, 0)

	v, ok := c.Get("u-1|content_42")
	require.True(t, ok)
	require.True(t, v)
	require.Equal(t, 1, c.Len())
}

func TestTTLCache_Expiry(t *testing.T) {
	c := NewTTLCache[string, string]()
	base := time.Now()
	c.now = func() time.Time { return base }

	c.Set("k", "v", time.Second)
	_, ok := c.Get("k")
	require.True(t, ok)

	base = base.Add(2 * time.Second)
	_, ok = c.Get("k")
	require.False(t, ok, "expected miss after expiry")
	require.Equal(t, 0, c.Len())

	c.PurgeExpired()
	c.mu.RLock()
	require.Empty(t, c.items)
	c.mu.RUnlock()
}

func TestTTLCache_DeleteFunc(t *testing.T) {
	c := NewTTLCache[string, bool]()
	c.Set("u-1|diary_7", true, 0)
	c.Set("u-2|diary_7", false, 0)
	c.Set("u-1|album_3", true, 0)

	n := c.DeleteFunc(func(k string) bool { return strings.HasSuffix(k, "|diary_7") })
	require.Equal(t, 2, n)
	require.Equal(t, 1, c.Len())

	c.Delete("u-1|album_3")
	require.Equal(t, 0, c.Len())
}

func TestTTLCache_Concurrent(t *testing.T) {
	c := NewTTLCache[int, int]()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for r := 0; r < 100; r++ {
				c.Set(i, r, time.Minute)
				_, _ = c.Get(i)
			}
		}(i)
	}
	wg.Wait()
	require.Equal(t, 50, c.Len())
}
