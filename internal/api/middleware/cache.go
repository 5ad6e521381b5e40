package middleware

import (
	"bytes"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/yatube/internal/cache"
	"github.com/d60-Lab/yatube/pkg/logger"
)

type bodyRecorder struct {
	gin.ResponseWriter
	buf bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.buf.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.buf.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CachePage 缓存整页 GET 响应，key 为 prefix + 访问者 + RequestURI；缓存故障时直接走 handler
func CachePage(store cache.PageCache, ttl time.Duration, prefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}
		key := prefix + viewer(c) + ":" + c.Request.URL.RequestURI()
		ctx := c.Request.Context()

		body, ok, err := store.Get(ctx, key)
		if err != nil {
			logger.Warn("page cache get failed", zap.String("key", key), zap.Error(err))
		}
		if ok {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, "text/html; charset=utf-8", body)
			c.Abort()
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()
		c.Writer = rec.ResponseWriter

		if c.Writer.Status() != http.StatusOK || c.IsAborted() {
			return
		}
		if err := store.Set(ctx, key, rec.buf.Bytes(), ttl); err != nil {
			logger.Warn("page cache set failed", zap.String("key", key), zap.Error(err))
		}
	}
}

// viewer 页头随登录状态变化，按访问者区分缓存
func viewer(c *gin.Context) string {
	if u := CurrentUser(c); u != nil {
		return "u" + strconv.FormatUint(uint64(u.ID), 10)
	}
	return "anon"
}
