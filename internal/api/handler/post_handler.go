package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/yatube/internal/api/middleware"
	"github.com/d60-Lab/yatube/internal/form"
	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/pkg/response"
)

// Index 首页：全部帖子（整页缓存在路由上配置）
func (h *Handler) Index(c *gin.Context) {
	page, err := h.postService.ListAll(c.Request.Context(), c.Query("page"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Page(c, http.StatusOK, "posts/index.html", gin.H{"page_obj": page})
}

// GroupPosts 分组页
func (h *Handler) GroupPosts(c *gin.Context) {
	group, page, err := h.postService.ListByGroup(c.Request.Context(), c.Param("slug"), c.Query("page"))
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Page(c, http.StatusOK, "posts/group_list.html", gin.H{"group": group, "page_obj": page})
}

// Profile 作者页，附带当前用户是否已关注
func (h *Handler) Profile(c *gin.Context) {
	ctx := c.Request.Context()
	author, page, err := h.postService.ListByAuthor(ctx, c.Param("username"), c.Query("page"))
	if err != nil {
		h.fail(c, err)
		return
	}
	following := false
	if u := middleware.CurrentUser(c); u != nil {
		if following, err = h.relService.IsFollowing(ctx, u.ID, author.ID); err != nil {
			h.fail(c, err)
			return
		}
	}
	response.Page(c, http.StatusOK, "posts/profile.html", gin.H{
		"author":      author,
		"page_obj":    page,
		"following":   following,
		"posts_count": page.Count,
	})
}

// PostDetail 帖子详情
func (h *Handler) PostDetail(c *gin.Context) {
	id, ok := postID(c)
	if !ok {
		response.NotFound(c)
		return
	}
	h.renderDetail(c, id, form.NewCommentForm())
}

func (h *Handler) renderDetail(c *gin.Context, id uint, f *form.CommentForm) {
	d, err := h.postService.Detail(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Page(c, http.StatusOK, "posts/post_detail.html", gin.H{
		"post":        d.Post,
		"posts_count": d.AuthorPosts,
		"comments":    d.Comments,
		"form":        f,
	})
}

// PostCreate GET 空表单；POST 校验后以当前用户为作者保存
func (h *Handler) PostCreate(c *gin.Context) {
	user := middleware.CurrentUser(c)
	f := h.newPostForm()
	if c.Request.Method != http.MethodPost {
		h.renderPostForm(c, f, nil)
		return
	}
	if !f.Bind(c, h.postService.GroupLookup()) {
		h.renderPostForm(c, f, nil)
		return
	}
	if _, err := h.postService.Create(c.Request.Context(), user, f); err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/profile/%s/", user.Username))
}

// PostEdit 仅作者可编辑，其他用户返回 403
func (h *Handler) PostEdit(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id, ok := postID(c)
	if !ok {
		response.NotFound(c)
		return
	}
	post, err := h.postService.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if post.AuthorID != user.ID {
		response.Forbidden(c)
		return
	}

	f := form.PostFormFrom(post)
	f.MaxImageSize = h.opts.MaxImageSize
	if c.Request.Method != http.MethodPost {
		h.renderPostForm(c, f, post)
		return
	}
	if !f.Bind(c, h.postService.GroupLookup()) {
		h.renderPostForm(c, f, post)
		return
	}
	if err := h.postService.Update(c.Request.Context(), post, f); err != nil {
		h.fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d/", post.ID))
}

// AddComment 无论表单是否有效都回到详情页
func (h *Handler) AddComment(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id, ok := postID(c)
	if !ok {
		response.NotFound(c)
		return
	}
	post, err := h.postService.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	f := form.NewCommentForm()
	if f.Bind(c) {
		if _, err := h.postService.AddComment(c.Request.Context(), post, user, f); err != nil {
			h.fail(c, err)
			return
		}
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d/", post.ID))
}

func (h *Handler) newPostForm() *form.PostForm {
	f := form.NewPostForm()
	f.MaxImageSize = h.opts.MaxImageSize
	return f
}

func (h *Handler) renderPostForm(c *gin.Context, f *form.PostForm, post *model.Post) {
	groups, err := h.postService.Groups(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	data := gin.H{"form": f, "groups": groups, "is_edit": post != nil}
	if post != nil {
		data["post_id"] = post.ID
	}
	response.Page(c, http.StatusOK, "posts/create_post.html", data)
}
