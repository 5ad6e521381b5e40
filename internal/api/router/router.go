package router

import (
	"strings"
	"time"

	"github.com/gin-contrib/gzip"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/yatube/internal/api/handler"
	"github.com/d60-Lab/yatube/internal/api/middleware"
	"github.com/d60-Lab/yatube/internal/cache"
	"github.com/d60-Lab/yatube/internal/service"
)

// IndexCachePrefix 首页缓存 key 前缀
const IndexCachePrefix = "index:"

// Deps 路由依赖
type Deps struct {
	Handler     *handler.Handler
	Auth        service.AuthService
	Renderer    render.HTMLRender
	PageCache   cache.PageCache
	IndexTTL    time.Duration
	LoginURL    string
	CookieName  string
	Secure      bool
	CSRFKey     []byte
	MaxBody     int64 // 写请求体上限，<=0 不限制
	MediaRoot   string
	MediaPrefix string

	// 以下为可选组件，零值时不挂载
	Gzip        bool
	Sentry      bool
	ServiceName string // 非空时启用 otelgin
	RateLimiter *middleware.IPRateLimiter
	Registry    *prometheus.Registry
}

// Setup 组装 gin 引擎
func Setup(d Deps) *gin.Engine {
	r := gin.New()
	r.HTMLRender = d.Renderer

	if d.ServiceName != "" {
		r.Use(otelgin.Middleware(d.ServiceName))
	}
	r.Use(middleware.RequestID(), middleware.AccessLog(), middleware.Recovery())
	if d.Sentry {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	if d.Registry != nil {
		r.Use(middleware.NewMetrics(d.Registry).Handler())
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}
	if d.Gzip {
		r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics", d.MediaPrefix})))
	}

	h := d.Handler
	r.GET("/healthz", h.Health)
	if d.MediaRoot != "" {
		media := r.Group(strings.TrimSuffix(d.MediaPrefix, "/"), func(c *gin.Context) {
			c.Header("X-Content-Type-Options", "nosniff")
		})
		media.Static("/", d.MediaRoot)
	}

	csrf := middleware.CSRF(d.CSRFKey, d.Secure)
	session := middleware.Session(d.Auth, d.CookieName)
	site := r.Group("/", middleware.BodyLimit(d.MaxBody), csrf, session)
	if d.RateLimiter != nil {
		site.Use(middleware.RateLimit(d.RateLimiter))
	}
	login := middleware.LoginRequired(d.LoginURL)

	site.GET("/", middleware.CachePage(d.PageCache, d.IndexTTL, IndexCachePrefix), h.Index)
	site.GET("/group/:slug/", h.GroupPosts)
	site.GET("/profile/:username/", h.Profile)
	site.GET("/profile/:username/follow/", login, h.ProfileFollow)
	site.GET("/profile/:username/unfollow/", login, h.ProfileUnfollow)
	site.GET("/posts/:id/", h.PostDetail)
	site.GET("/posts/:id/edit/", login, h.PostEdit)
	site.POST("/posts/:id/edit/", login, h.PostEdit)
	site.POST("/posts/:id/comment/", login, h.AddComment)
	site.GET("/create/", login, h.PostCreate)
	site.POST("/create/", login, h.PostCreate)
	site.GET("/follow/", login, h.FollowIndex)

	about := site.Group("/about")
	about.GET("/author/", h.AboutAuthor)
	about.GET("/tech/", h.AboutTech)

	auth := site.Group("/auth")
	auth.GET("/login/", h.Login)
	auth.POST("/login/", h.Login)
	auth.GET("/signup/", h.Signup)
	auth.POST("/signup/", h.Signup)
	auth.GET("/logout/", h.Logout)
	auth.POST("/logout/", h.Logout)

	// 404 页需要当前用户与 csrf token 渲染页头
	r.NoRoute(csrf, session, h.NotFound)
	return r
}
