// Package cache stores whole rendered pages for a fixed time-to-live.
package cache

import (
	"context"
	"time"
)

// PageCache 整页缓存能力；实现可以是进程内 map 或外部缓存服务
type PageCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, body []byte, ttl time.Duration) error
	Clear(ctx context.Context) error
}
