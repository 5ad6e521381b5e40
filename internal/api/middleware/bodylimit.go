package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/yatube/pkg/response"
)

const multipartMemory = 32 << 20

// BodyLimit 限制写请求体大小；需在 CSRF 之前注册，否则表单解析失败会被当作 token 缺失
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 {
			c.Next()
			return
		}
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		if c.Request.ContentLength > limit {
			response.RequestTooLarge(c)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

		// 长度未声明时只能在解析中发现超限
		var err error
		if c.ContentType() == gin.MIMEMultipartPOSTForm {
			err = c.Request.ParseMultipartForm(multipartMemory)
		} else {
			err = c.Request.ParseForm()
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.RequestTooLarge(c)
			return
		}
		c.Next()
	}
}
