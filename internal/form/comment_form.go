package form

import "github.com/gin-gonic/gin"

// CommentForm 评论表单
type CommentForm struct {
	Text   string `form:"text" binding:"required,notblank"`
	Errors Errors `form:"-"`
}

func NewCommentForm() *CommentForm { return &CommentForm{Errors: Errors{}} }

func (f *CommentForm) Bind(c *gin.Context) bool {
	f.Errors = Errors{}
	if err := c.ShouldBind(f); err != nil {
		f.Errors.collect(err)
	}
	return f.Valid()
}

func (f *CommentForm) Valid() bool { return f.Errors.Empty() }
