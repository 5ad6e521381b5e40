package storage

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["image"][0]
}

func TestLocalSaveAndDelete(t *testing.T) {
	root := t.TempDir()
	s := NewLocal(root, "/media")
	ctx := context.Background()

	name, err := s.Save(ctx, "posts", fileHeader(t, "Small.GIF", []byte("GIF89a")))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "posts/"))
	assert.True(t, strings.HasSuffix(name, ".gif"))
	assert.Equal(t, "/media/"+name, s.URL(name))

	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(name)))
	require.NoError(t, err)
	assert.Equal(t, "GIF89a", string(data))

	require.NoError(t, s.Delete(ctx, name))
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(name)))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Delete(ctx, name))
	assert.Equal(t, "", s.URL(""))
}

func TestLocalSaveNamesFileByContent(t *testing.T) {
	root := t.TempDir()
	s := NewLocal(root, "/media")
	ctx := context.Background()

	png := append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), []byte("<script>alert(1)</script>")...)
	name, err := s.Save(ctx, "posts", fileHeader(t, "evil.html", png))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".png"), name)

	name, err = s.Save(ctx, "posts", fileHeader(t, "photo.png", []byte("<html><script>alert(1)</script></html>")))
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.Empty(t, name)

	entries, err := os.ReadDir(filepath.Join(root, "posts"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDetectImage(t *testing.T) {
	for _, tc := range []struct {
		content string
		ext     string
	}{
		{"GIF89a", ".gif"},
		{"\xff\xd8\xff\xe0\x00\x10JFIF\x00", ".jpg"},
		{"RIFF\x00\x00\x00\x00WEBPVP8 ", ".webp"},
	} {
		ext, err := DetectImage(strings.NewReader(tc.content))
		require.NoError(t, err)
		assert.Equal(t, tc.ext, ext)
	}

	_, err := DetectImage(strings.NewReader(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`))
	assert.ErrorIs(t, err, ErrUnsupportedType)
}
