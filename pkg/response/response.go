package response

import (
	"net/http"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/yatube/pkg/logger"
)

// gin 上下文中的公共 key，页面渲染时会合并进模板数据
const (
	KeyUser      = "user"
	KeyCSRFToken = "csrf_token"
	KeyRequestID = "request_id"
)

// 错误页模板
const (
	TemplateNotFound   = "core/404.html"
	TemplateForbidden  = "core/403.html"
	TemplateCSRF       = "core/403csrf.html"
	TemplateBadRequest = "core/400.html"
	TemplateServer     = "core/500.html"
	TemplateTooLarge   = "core/413.html"
	TemplateTooMany    = "core/429.html"
)

// Page 渲染页面，补齐 user/year/path/csrf_token
func Page(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	if _, ok := data["user"]; !ok {
		data["user"], _ = c.Get(KeyUser)
	}
	if _, ok := data["csrf_token"]; !ok {
		data["csrf_token"] = c.GetString(KeyCSRFToken)
	}
	data["year"] = time.Now().Year()
	data["path"] = c.Request.URL.Path
	c.HTML(status, name, data)
}

func NotFound(c *gin.Context) {
	Page(c, http.StatusNotFound, TemplateNotFound, nil)
	c.Abort()
}

func Forbidden(c *gin.Context) {
	Page(c, http.StatusForbidden, TemplateForbidden, nil)
	c.Abort()
}

func CSRFFailure(c *gin.Context, reason string) {
	logger.Warn("csrf check failed", zap.String("path", c.Request.URL.Path), zap.String("reason", reason))
	Page(c, http.StatusForbidden, TemplateCSRF, gin.H{"reason": reason})
	c.Abort()
}

func BadRequest(c *gin.Context, msg string) {
	Page(c, http.StatusBadRequest, TemplateBadRequest, gin.H{"message": msg})
	c.Abort()
}

// InternalError 记录日志并上报 sentry
func InternalError(c *gin.Context, err error) {
	logger.Error("request failed",
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", c.GetString(KeyRequestID)),
	)
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
	ServerError(c)
}

// ServerError 只渲染 500 页面
func ServerError(c *gin.Context) {
	Page(c, http.StatusInternalServerError, TemplateServer, nil)
	c.Abort()
}

func TooManyRequests(c *gin.Context) {
	Page(c, http.StatusTooManyRequests, TemplateTooMany, nil)
	c.Abort()
}

func RequestTooLarge(c *gin.Context) {
	Page(c, http.StatusRequestEntityTooLarge, TemplateTooLarge, nil)
	c.Abort()
}
