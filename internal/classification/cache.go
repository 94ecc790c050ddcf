package classification

import (
	"sync"
	"time"
)

type cacheEntry struct {
	expiry time.Time
	result Result
}

// resultCache holds recent classifier answers keyed by kind and text.
type resultCache struct {
	entries   map[string]cacheEntry
	stopCh    chan struct{}
	now       func() time.Time
	ttl       time.Duration
	mu        sync.RWMutex
	closeOnce sync.Once
}

func newResultCache(ttl, sweepEvery time.Duration) *resultCache {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	if sweepEvery == 0 {
		sweepEvery = ttl
	}

	cache := &resultCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}

	go cache.cleanup(sweepEvery)

	return cache
}

func cacheKey(kind Kind, text string) string {
	return string(kind) + "\x00" + text
}

func (c *resultCache) get(key string) (Result, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || c.now().After(entry.expiry) {
		return Result{}, false
	}
	return entry.result, true
}

func (c *resultCache) set(key string, result Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		result: result,
		expiry: c.now().Add(c.ttl),
	}
}

func (c *resultCache) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.purge()
		}
	}
}

func (c *resultCache) purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiry) {
			delete(c.entries, key)
		}
	}
}

func (c *resultCache) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine.
func (c *resultCache) Close() {
	c.closeOnce.Do(func() { close(c.stopCh) })
}
