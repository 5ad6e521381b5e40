package cache

import (
	"context"
	"sort"
	"sync"
	"time"
)

const (
	// DefaultMaxEntries 条目上限，满时先清理过期条目，仍满则淘汰最早到期的一批
	DefaultMaxEntries = 10000
	sweepInterval     = time.Minute
)

type entry struct {
	body      []byte
	expiresAt time.Time
}

// MemoryCache 进程内缓存，条目到期后视为不存在
type MemoryCache struct {
	mu         sync.RWMutex
	entries    map[string]entry
	now        func() time.Time
	maxEntries int
	lastSweep  time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries:    make(map[string]entry),
		now:        time.Now,
		maxEntries: DefaultMaxEntries,
		lastSweep:  time.Now(),
	}
}

// WithClock 替换时钟（测试用）
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	c.now = now
	c.lastSweep = now()
	return c
}

// WithMaxEntries 调整条目上限，n<=0 时保持默认值
func (c *MemoryCache) WithMaxEntries(n int) *MemoryCache {
	if n > 0 {
		c.maxEntries = n
	}
	return c
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		if cur, ok := c.entries[key]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}
	return e.body, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, body []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	cp := make([]byte, len(body))
	copy(cp, body)

	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	if now.Sub(c.lastSweep) >= sweepInterval {
		c.sweepLocked(now)
	}
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.sweepLocked(now)
		if len(c.entries) >= c.maxEntries {
			c.cullLocked()
		}
	}
	c.entries[key] = entry{body: cp, expiresAt: now.Add(ttl)}
	return nil
}

// sweepLocked 删除全部过期条目，调用方持有写锁
func (c *MemoryCache) sweepLocked(now time.Time) {
	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.lastSweep = now
}

// cullLocked 淘汰约三分之一条目，优先最早到期的
func (c *MemoryCache) cullLocked() {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return c.entries[keys[i]].expiresAt.Before(c.entries[keys[j]].expiresAt)
	})
	for _, k := range keys[:len(keys)/3+1] {
		delete(c.entries, k)
	}
}

func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.lastSweep = c.now()
	c.mu.Unlock()
	return nil
}

// Len 当前条目数（含尚未清理的过期条目）
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
