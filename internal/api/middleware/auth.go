package middleware

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/pkg/logger"
	"github.com/d60-Lab/yatube/pkg/response"
)

// Session 从 cookie 中解析当前用户；无效令牌视为匿名并清除 cookie
func Session(auth service.AuthService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}
		u, err := auth.UserFromToken(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, service.ErrInvalidToken) {
				logger.Warn("session lookup failed", zap.Error(err))
			}
			c.SetCookie(cookieName, "", -1, "/", "", false, true)
			c.Next()
			return
		}
		c.Set(response.KeyUser, u)
		c.Next()
	}
}

// CurrentUser 当前请求用户，匿名时为 nil
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(response.KeyUser)
	if !ok {
		return nil
	}
	u, _ := v.(*model.User)
	return u
}

// LoginRequired 匿名访问时重定向到登录页，next 保留原地址
func LoginRequired(loginURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) != nil {
			c.Next()
			return
		}
		c.Redirect(http.StatusFound, LoginRedirect(loginURL, c.Request.URL.RequestURI()))
		c.Abort()
	}
}

// LoginRedirect 拼接登录地址
func LoginRedirect(loginURL, next string) string {
	return loginURL + "?" + url.Values{"next": {next}}.Encode()
}
