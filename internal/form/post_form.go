package form

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/pkg/storage"
)

// DefaultMaxImageSize 上传图片大小上限
const DefaultMaxImageSize = 5 << 20

// GroupLookup 校验分组是否存在
type GroupLookup interface {
	GetByID(ctx context.Context, id uint) (*model.Group, error)
}

// PostForm 新建/编辑帖子：text 必填，group 和 image 可选
type PostForm struct {
	Text  string `form:"text" binding:"required,notblank"`
	Group string `form:"group" binding:"omitempty,numeric"`

	GroupID      *uint                 `form:"-"`
	Image        *multipart.FileHeader `form:"-"`
	CurrentImage string                `form:"-"`
	Errors       Errors                `form:"-"`

	MaxImageSize int64 `form:"-"`
}

func NewPostForm() *PostForm { return &PostForm{Errors: Errors{}} }

// PostFormFrom 用已有帖子预填表单
func PostFormFrom(p *model.Post) *PostForm {
	f := NewPostForm()
	f.Text = p.Text
	f.CurrentImage = p.Image
	if p.GroupID != nil {
		id := *p.GroupID
		f.GroupID = &id
		f.Group = strconv.FormatUint(uint64(id), 10)
	}
	return f
}

// Bind 解析并校验请求；返回是否有效
func (f *PostForm) Bind(c *gin.Context, groups GroupLookup) bool {
	f.Errors = Errors{}
	f.GroupID = nil
	if err := c.ShouldBind(f); err != nil {
		f.Errors.collect(err)
	}

	if f.Group != "" && !f.Errors.Has("group") {
		id, err := strconv.ParseUint(f.Group, 10, 64)
		if err == nil {
			_, err = groups.GetByID(c.Request.Context(), uint(id))
		}
		if err != nil {
			f.Errors.Add("group", "Select a valid choice. That choice is not one of the available choices.")
		} else {
			gid := uint(id)
			f.GroupID = &gid
		}
	}

	fh, err := c.FormFile("image")
	switch {
	case err == nil:
		f.Image = fh
		if msg := f.checkImage(fh); msg != "" {
			f.Errors.Add("image", msg)
		}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		f.Errors.Add("image", "The submitted file is invalid.")
	}
	return f.Valid()
}

func (f *PostForm) Valid() bool { return f.Errors.Empty() }

// SelectedGroup 模板中用于标记选中的分组
func (f *PostForm) SelectedGroup(id uint) bool {
	return f.Group != "" && f.Group == strconv.FormatUint(uint64(id), 10)
}

func (f *PostForm) checkImage(fh *multipart.FileHeader) string {
	limit := f.MaxImageSize
	if limit <= 0 {
		limit = DefaultMaxImageSize
	}
	if fh.Size > limit {
		return "The image is too large."
	}
	if fh.Size == 0 {
		return "The submitted file is empty."
	}
	file, err := fh.Open()
	if err != nil {
		return "The submitted file is invalid."
	}
	defer file.Close()

	if _, err := storage.DetectImage(file); err != nil {
		return "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	}
	return ""
}
