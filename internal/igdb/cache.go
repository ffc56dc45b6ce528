package igdb

import (
	"sync"
	"time"
)

// responseCache 进程级响应缓存。key=endpoint+查询体签名，value=原始响应payload。
// 仅按TTL过期与显式清空，不做容量淘汰——不同查询的数量在实践中很小。
// 缓存不是正确性机制，只是对限流上游的减压手段，读到的数据最多陈旧一个TTL窗口。
type responseCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	payload    []byte
	insertedAt time.Time
	ttl        time.Duration
}

// expired 过期判定：now - insertedAt >= ttl 即视为不存在
func (e cacheEntry) expired(now time.Time) bool {
	return now.Sub(e.insertedAt) >= e.ttl
}

func newResponseCache() *responseCache {
	return &responseCache{entries: make(map[string]cacheEntry)}
}

// Get 命中且未过期返回payload；过期条目等同缺失（顺手删除）
func (c *responseCache) Get(key string) ([]byte, bool) {
	now := time.Now()
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if entry.expired(now) {
		c.mu.Lock()
		// 二次检查：期间可能已被新条目覆盖
		if cur, ok := c.entries[key]; ok && cur.expired(time.Now()) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false
	}
	return entry.payload, true
}

// Set 写入或覆盖同key条目
func (c *responseCache) Set(key string, payload []byte, ttl time.Duration) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{payload: payload, insertedAt: time.Now(), ttl: ttl}
	c.mu.Unlock()
}

// Clear 无条件清空全部条目（幂等）
func (c *responseCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

// CacheStats 缓存自省信息
type CacheStats struct {
	Size    int              `json:"size"`
	Entries []CacheEntryInfo `json:"entries"`
}

// CacheEntryInfo 单条目信息（age/expires_in为秒）
type CacheEntryInfo struct {
	Key       string  `json:"key"`
	AgeSec    float64 `json:"age_sec"`
	ExpiresIn float64 `json:"expires_in_sec"`
}

// Stats 返回当前条目快照（含已过期未清理的条目，expires_in为负）
func (c *responseCache) Stats() CacheStats {
	now := time.Now()
	c.mu.RLock()
	defer c.mu.RUnlock()
	stats := CacheStats{Size: len(c.entries), Entries: make([]CacheEntryInfo, 0, len(c.entries))}
	for key, entry := range c.entries {
		age := now.Sub(entry.insertedAt)
		stats.Entries = append(stats.Entries, CacheEntryInfo{
			Key:       key,
			AgeSec:    age.Seconds(),
			ExpiresIn: (entry.ttl - age).Seconds(),
		})
	}
	return stats
}
