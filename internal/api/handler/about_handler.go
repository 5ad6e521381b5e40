package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/yatube/pkg/response"
)

func (h *Handler) AboutAuthor(c *gin.Context) {
	response.Page(c, http.StatusOK, "about/author.html", nil)
}

func (h *Handler) AboutTech(c *gin.Context) {
	response.Page(c, http.StatusOK, "about/tech.html", nil)
}

// NotFound 未匹配路由
func (h *Handler) NotFound(c *gin.Context) {
	response.NotFound(c)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
