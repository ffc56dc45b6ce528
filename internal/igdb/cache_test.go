package igdb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResponseCache(t *testing.T) {
	t.Run("miss then hit", func(t *testing.T) {
		c := newResponseCache()
		_, ok := c.Get("games|fields id;")
		assert.False(t, ok)

		c.Set("games|fields id;", []byte(`[{"id":1}]`), time.Minute)
		payload, ok := c.Get("games|fields id;")
		assert.True(t, ok)
		assert.Equal(t, []byte(`[{"id":1}]`), payload)
	})

	t.Run("expired entry treated as absent", func(t *testing.T) {
		c := newResponseCache()
		c.Set("k", []byte("v"), 10*time.Millisecond)
		time.Sleep(20 * time.Millisecond)
		_, ok := c.Get("k")
		assert.False(t, ok)
		// 过期条目读取时被顺手清理
		assert.Equal(t, 0, c.Stats().Size)
	})

	t.Run("set overwrites same key", func(t *testing.T) {
		c := newResponseCache()
		c.Set("k", []byte("old"), time.Minute)
		c.Set("k", []byte("new"), time.Minute)
		payload, ok := c.Get("k")
		assert.True(t, ok)
		assert.Equal(t, []byte("new"), payload)
		assert.Equal(t, 1, c.Stats().Size)
	})

	t.Run("distinct keys are independent", func(t *testing.T) {
		c := newResponseCache()
		c.Set("games|a", []byte("1"), time.Minute)
		c.Set("games|b", []byte("2"), time.Minute)
		assert.Equal(t, 2, c.Stats().Size)
	})

	t.Run("clear is unconditional and idempotent", func(t *testing.T) {
		c := newResponseCache()
		c.Set("a", []byte("1"), time.Minute)
		c.Set("b", []byte("2"), time.Minute)
		c.Clear()
		assert.Equal(t, 0, c.Stats().Size)
		c.Clear() // 空缓存再清一次不报错
		assert.Equal(t, 0, c.Stats().Size)
	})

	t.Run("stats reports age and remaining ttl", func(t *testing.T) {
		c := newResponseCache()
		c.Set("k", []byte("v"), time.Minute)
		stats := c.Stats()
		assert.Equal(t, 1, stats.Size)
		assert.Len(t, stats.Entries, 1)
		assert.Equal(t, "k", stats.Entries[0].Key)
		assert.GreaterOrEqual(t, stats.Entries[0].AgeSec, 0.0)
		assert.Greater(t, stats.Entries[0].ExpiresIn, 0.0)
	})
}
