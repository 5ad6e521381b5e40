package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/yatube/internal/form"
	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/pkg/response"
)

// Login 登录；成功后跳转到 next（仅允许站内地址）
func (h *Handler) Login(c *gin.Context) {
	f := form.NewLoginForm()
	if c.Request.Method != http.MethodPost {
		f.Next = c.Query("next")
		response.Page(c, http.StatusOK, "users/login.html", gin.H{"form": f})
		return
	}
	if !f.Bind(c) {
		response.Page(c, http.StatusOK, "users/login.html", gin.H{"form": f})
		return
	}
	user, err := h.authService.Authenticate(c.Request.Context(), f.Username, f.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		f.Errors.Add(form.NonFieldErrors, "Please enter a correct username and password.")
		response.Page(c, http.StatusOK, "users/login.html", gin.H{"form": f})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	token, err := h.authService.IssueToken(user)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.setSession(c, token, h.authService.TokenTTL())
	c.Redirect(http.StatusFound, safeNext(f.Next))
}

// Signup 注册并直接登录
func (h *Handler) Signup(c *gin.Context) {
	f := form.NewSignupForm()
	if c.Request.Method != http.MethodPost {
		response.Page(c, http.StatusOK, "users/signup.html", gin.H{"form": f})
		return
	}
	if !f.Bind(c) {
		response.Page(c, http.StatusOK, "users/signup.html", gin.H{"form": f})
		return
	}
	user, err := h.authService.Register(c.Request.Context(), f)
	if errors.Is(err, service.ErrUsernameTaken) {
		f.Errors.Add("username", "A user with that username already exists.")
		response.Page(c, http.StatusOK, "users/signup.html", gin.H{"form": f})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	token, err := h.authService.IssueToken(user)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.setSession(c, token, h.authService.TokenTTL())
	c.Redirect(http.StatusFound, "/")
}

func (h *Handler) Logout(c *gin.Context) {
	h.clearSession(c)
	c.Redirect(http.StatusFound, "/")
}

// safeNext 只接受以单个 / 开头的站内路径
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
