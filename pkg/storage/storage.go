package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ErrUnsupportedType 内容不是允许的图片格式
var ErrUnsupportedType = errors.New("storage: unsupported file type")

// ImageExtensions 允许保存的图片类型及落盘扩展名
var ImageExtensions = map[string]string{
	"image/gif":  ".gif",
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// DetectImage 按内容识别图片类型，返回扩展名；客户端文件名不参与判断
func DetectImage(r io.Reader) (string, error) {
	mtype, err := mimetype.DetectReader(r)
	if err != nil {
		return "", err
	}
	ext, ok := ImageExtensions[mtype.String()]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedType, mtype.String())
	}
	return ext, nil
}

// Storage 上传文件存储
type Storage interface {
	Save(ctx context.Context, dir string, fh *multipart.FileHeader) (string, error)
	Delete(ctx context.Context, name string) error
	URL(name string) string
}

// Local 本地磁盘存储，文件名使用 uuid 避免冲突
type Local struct {
	Root      string
	URLPrefix string
}

func NewLocal(root, urlPrefix string) *Local {
	if urlPrefix == "" {
		urlPrefix = "/media/"
	}
	if !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}
	return &Local{Root: root, URLPrefix: urlPrefix}
}

// Save 写入 Root/dir/<uuid><ext>，返回相对名称（如 posts/xxx.png）；ext 由内容决定
func (s *Local) Save(_ context.Context, dir string, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	ext, err := DetectImage(src)
	if err != nil {
		return "", err
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}
	name := path.Join(dir, uuid.NewString()+ext)

	full := filepath.Join(s.Root, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	dst, err := os.Create(full)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(full)
		return "", err
	}
	if err := dst.Close(); err != nil {
		return "", err
	}
	return name, nil
}

func (s *Local) Delete(_ context.Context, name string) error {
	if name == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.Root, filepath.FromSlash(name)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *Local) URL(name string) string {
	if name == "" {
		return ""
	}
	return s.URLPrefix + name
}
