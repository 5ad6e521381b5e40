package middleware

import (
	"context"
	"crypto/sha256"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"

	"github.com/d60-Lab/yatube/pkg/response"
)

const (
	CSRFCookieName = "csrftoken"
	CSRFFormField  = "csrfmiddlewaretoken"
	CSRFHeader     = "X-CSRFToken"
)

type ginContextKey struct{}

// CSRFKey 由会话密钥派生 32 字节的 cookie 签名密钥
func CSRFKey(secret string) []byte {
	sum := sha256.Sum256([]byte("csrf:" + secret))
	return sum[:]
}

// CSRF 基于 gorilla/csrf：cookie 保存签名后的真实 token，表单字段或请求头提交掩码 token
func CSRF(authKey []byte, secure bool) gin.HandlerFunc {
	protect := csrf.Protect(authKey,
		csrf.CookieName(CSRFCookieName),
		csrf.FieldName(CSRFFormField),
		csrf.RequestHeader(CSRFHeader),
		csrf.Path("/"),
		csrf.MaxAge(365*24*3600),
		csrf.Secure(secure),
		csrf.HttpOnly(true),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(csrfFailure)),
	)
	return func(c *gin.Context) {
		next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Set(response.KeyCSRFToken, csrf.Token(r))
			c.Next()
		})
		req := c.Request.WithContext(context.WithValue(c.Request.Context(), ginContextKey{}, c))
		if !secure {
			req = csrf.PlaintextHTTPRequest(req)
		}
		protect(next).ServeHTTP(c.Writer, req)
	}
}

func csrfFailure(w http.ResponseWriter, r *http.Request) {
	reason := "CSRF token missing or incorrect."
	switch err := csrf.FailureReason(r); {
	case errors.Is(err, csrf.ErrNoToken):
		reason = "CSRF token missing."
	case errors.Is(err, csrf.ErrBadToken), err == nil:
	default:
		reason = err.Error()
	}
	c, ok := r.Context().Value(ginContextKey{}).(*gin.Context)
	if !ok {
		http.Error(w, reason, http.StatusForbidden)
		return
	}
	response.CSRFFailure(c, reason)
}

// CSRFToken 当前请求的掩码 token
func CSRFToken(c *gin.Context) string { return c.GetString(response.KeyCSRFToken) }
