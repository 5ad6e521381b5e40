// Package app wires repositories, services, handlers and the router into one engine.
package app

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/d60-Lab/yatube/config"
	"github.com/d60-Lab/yatube/internal/api/handler"
	"github.com/d60-Lab/yatube/internal/api/middleware"
	"github.com/d60-Lab/yatube/internal/api/router"
	"github.com/d60-Lab/yatube/internal/cache"
	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/internal/web"
	"github.com/d60-Lab/yatube/pkg/storage"
)

// bodyHeadroom 图片之外的表单字段与 multipart 边界
const bodyHeadroom = 1 << 20

// App 组装完成的应用
type App struct {
	Engine    *gin.Engine
	PageCache cache.PageCache
	Posts     service.PostService
	Relations service.RelationshipService
	Auth      service.AuthService
	Registry  *prometheus.Registry
}

// Options 运行期可选组件
type Options struct {
	PageCache cache.PageCache // 为空时按 cfg.Cache 构建
	Media     storage.Storage // 为空时使用本地磁盘
	Sentry    bool
}

func New(cfg *config.Config, db *gorm.DB, opts Options) (*App, error) {
	pageCache := opts.PageCache
	if pageCache == nil {
		var err error
		if pageCache, err = NewPageCache(cfg); err != nil {
			return nil, err
		}
	}
	media := opts.Media
	if media == nil {
		media = storage.NewLocal(cfg.Media.Root, cfg.Media.URLPrefix)
	}

	users := repository.NewUserRepository(db)
	posts := repository.NewPostRepository(db)
	postSvc := service.NewPostService(
		posts,
		repository.NewGroupRepository(db),
		users,
		repository.NewCommentRepository(db),
		media,
		cfg.Pagination.PerPage,
	)
	relSvc := service.NewRelationshipService(repository.NewFollowRepository(db), posts, cfg.Pagination.PerPage)
	authSvc := service.NewAuthService(users, cfg.Auth.Secret, cfg.Auth.SessionTTL)

	renderer, err := web.NewRenderer(web.FuncOptions{MediaURL: media.URL})
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	h := handler.New(postSvc, relSvc, authSvc, handler.Options{
		LoginURL:     cfg.Auth.LoginURL,
		CookieName:   cfg.Auth.CookieName,
		CookieSecure: cfg.Auth.Secure,
		MaxImageSize: cfg.Media.MaxSize,
	})

	deps := router.Deps{
		Handler:     h,
		Auth:        authSvc,
		Renderer:    renderer,
		PageCache:   pageCache,
		IndexTTL:    cfg.Cache.IndexTTL,
		LoginURL:    cfg.Auth.LoginURL,
		CookieName:  cfg.Auth.CookieName,
		Secure:      cfg.Auth.Secure,
		CSRFKey:     middleware.CSRFKey(cfg.Auth.Secret),
		MaxBody:     cfg.Media.MaxSize + bodyHeadroom,
		MediaRoot:   cfg.Media.Root,
		MediaPrefix: cfg.Media.URLPrefix,
		Gzip:        cfg.Server.Gzip,
		Sentry:      opts.Sentry,
		Registry:    reg,
	}
	if cfg.Tracing.Enabled {
		deps.ServiceName = cfg.Tracing.ServiceName
	}
	if cfg.RateLimit.Enabled {
		deps.RateLimiter = middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	return &App{
		Engine:    router.Setup(deps),
		PageCache: pageCache,
		Posts:     postSvc,
		Relations: relSvc,
		Auth:      authSvc,
		Registry:  reg,
	}, nil
}

// NewPageCache 按配置选择进程内或 redis 缓存
func NewPageCache(cfg *config.Config) (cache.PageCache, error) {
	switch cfg.Cache.Backend {
	case "memory":
		return cache.NewMemoryCache(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		return cache.NewRedisCache(client, cache.DefaultPrefix), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend %q", cfg.Cache.Backend)
	}
}
