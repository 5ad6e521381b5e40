package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/pkg/response"
)

// Options 视图层配置
type Options struct {
	LoginURL     string
	CookieName   string
	CookieSecure bool
	MaxImageSize int64
}

// Handler 全部页面视图
type Handler struct {
	postService service.PostService
	relService  service.RelationshipService
	authService service.AuthService
	opts        Options
}

func New(posts service.PostService, rel service.RelationshipService, auth service.AuthService, opts Options) *Handler {
	if opts.LoginURL == "" {
		opts.LoginURL = "/auth/login/"
	}
	if opts.CookieName == "" {
		opts.CookieName = "sessionid"
	}
	return &Handler{postService: posts, relService: rel, authService: auth, opts: opts}
}

// fail 把仓储错误映射为错误页
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		response.NotFound(c)
	case errors.Is(err, repository.ErrSelfFollow):
		response.BadRequest(c, "Нельзя подписаться на самого себя.")
	default:
		response.InternalError(c, err)
	}
}

// postID 解析路由中的帖子 id，非法值按不存在处理
func postID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) setSession(c *gin.Context, token string, ttl time.Duration) {
	c.SetCookie(h.opts.CookieName, token, int(ttl.Seconds()), "/", "", h.opts.CookieSecure, true)
}

func (h *Handler) clearSession(c *gin.Context) {
	c.SetCookie(h.opts.CookieName, "", -1, "/", "", h.opts.CookieSecure, true)
}
