package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/yatube/internal/api/middleware"
	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/pkg/response"
)

// FollowIndex 关注作者的帖子流
func (h *Handler) FollowIndex(c *gin.Context) {
	user := middleware.CurrentUser(c)
	page, err := h.relService.Feed(c.Request.Context(), user.ID, c.Query("page"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Page(c, http.StatusOK, "posts/follow.html", gin.H{"page_obj": page})
}

// ProfileFollow 关注作者；重复关注幂等，关注自己返回 400
func (h *Handler) ProfileFollow(c *gin.Context) {
	user := middleware.CurrentUser(c)
	author, ok := h.author(c)
	if !ok {
		return
	}
	if err := h.relService.Follow(c.Request.Context(), user.ID, author.ID); err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/follow/")
}

// ProfileUnfollow 取消关注；未关注时不报错
func (h *Handler) ProfileUnfollow(c *gin.Context) {
	user := middleware.CurrentUser(c)
	author, ok := h.author(c)
	if !ok {
		return
	}
	if err := h.relService.Unfollow(c.Request.Context(), user.ID, author.ID); err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/follow/")
}

func (h *Handler) author(c *gin.Context) (*model.User, bool) {
	author, err := h.postService.Author(c.Request.Context(), c.Param("username"))
	if err != nil {
		h.fail(c, err)
		return nil, false
	}
	return author, true
}
