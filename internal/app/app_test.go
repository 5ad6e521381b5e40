package app

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/yatube/config"
	"github.com/d60-Lab/yatube/internal/api/middleware"
	"github.com/d60-Lab/yatube/internal/cache"
	"github.com/d60-Lab/yatube/internal/form"
	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/internal/service"
	"github.com/d60-Lab/yatube/pkg/database"
)

// tinyGIF 1x1 透明 gif
var tinyGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00,
	0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0x21, 0xf9, 0x04, 0x01, 0x00, 0x00, 0x00,
	0x00, 0x2c, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02,
	0x44, 0x01, 0x00, 0x3b,
}

// recordingRenderer 记录每次渲染的模板与数据
type recordingRenderer struct {
	inner render.HTMLRender
	names []string
	data  []any
}

func (r *recordingRenderer) Instance(name string, data any) render.Render {
	r.names = append(r.names, name)
	r.data = append(r.data, data)
	return r.inner.Instance(name, data)
}

func (r *recordingRenderer) last() (string, gin.H) {
	if len(r.names) == 0 {
		return "", nil
	}
	h, _ := r.data[len(r.data)-1].(gin.H)
	return r.names[len(r.names)-1], h
}

type fixture struct {
	t     *testing.T
	app   *App
	db    *gorm.DB
	rec   *recordingRenderer
	now   time.Time
	cfg   *config.Config
	media string

	csrfCookie *http.Cookie
	csrfToken  string

	author *model.User // leo
	reader *model.User // kate
	other  *model.User // max
	cats   *model.Group
	dogs   *model.Group
	first  *model.Post
}

func setup(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	cfg, err := config.LoadFrom(viper.New())
	require.NoError(t, err)
	cfg.Server.Gzip = false
	cfg.RateLimit.Enabled = false
	cfg.Auth.Secret = "test-secret"
	cfg.Media.Root = t.TempDir()

	f := &fixture{t: t, db: db, cfg: cfg, media: cfg.Media.Root, now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	pc := cache.NewMemoryCache().WithClock(func() time.Time { return f.now })

	f.app, err = New(cfg, db, Options{PageCache: pc})
	require.NoError(t, err)
	f.rec = &recordingRenderer{inner: f.app.Engine.HTMLRender}
	f.app.Engine.HTMLRender = f.rec

	// 先取一次页面拿到签名 cookie 与掩码 token
	w := f.get("/about/tech/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.CSRFCookieName {
			f.csrfCookie = c
		}
	}
	require.NotNil(t, f.csrfCookie)
	_, data := f.rec.last()
	f.csrfToken, _ = data["csrf_token"].(string)
	require.NotEmpty(t, f.csrfToken)

	ctx := context.Background()
	f.author = f.signup("leo", "s3cret-pass")
	f.reader = f.signup("kate", "s3cret-pass")
	f.other = f.signup("max", "s3cret-pass")

	groups := repository.NewGroupRepository(db)
	f.cats = &model.Group{Title: "Cats", Slug: "cats", Description: "about cats"}
	f.dogs = &model.Group{Title: "Dogs", Slug: "dogs", Description: "about dogs"}
	require.NoError(t, groups.Create(ctx, f.cats))
	require.NoError(t, groups.Create(ctx, f.dogs))

	f.first = &model.Post{Text: "first post about cats", AuthorID: f.author.ID, GroupID: &f.cats.ID}
	require.NoError(t, repository.NewPostRepository(db).Create(ctx, f.first))
	return f
}

func (f *fixture) signup(username, password string) *model.User {
	f.t.Helper()
	u, err := f.app.Auth.Register(context.Background(), &form.SignupForm{Username: username, Password: password, Password2: password})
	require.NoError(f.t, err)
	return u
}

func (f *fixture) send(req *http.Request, user *model.User) *httptest.ResponseRecorder {
	f.t.Helper()
	if f.csrfCookie != nil {
		req.AddCookie(&http.Cookie{Name: f.csrfCookie.Name, Value: f.csrfCookie.Value})
	}
	if user != nil {
		token, err := f.app.Auth.IssueToken(user)
		require.NoError(f.t, err)
		req.AddCookie(&http.Cookie{Name: f.cfg.Auth.CookieName, Value: token})
	}
	f.rec.names, f.rec.data = nil, nil
	w := httptest.NewRecorder()
	f.app.Engine.ServeHTTP(w, req)
	return w
}

func (f *fixture) get(target string, user *model.User) *httptest.ResponseRecorder {
	return f.send(httptest.NewRequest(http.MethodGet, target, nil), user)
}

func (f *fixture) post(target string, user *model.User, values url.Values) *httptest.ResponseRecorder {
	if values == nil {
		values = url.Values{}
	}
	values.Set(middleware.CSRFFormField, f.csrfToken)
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return f.send(req, user)
}

func (f *fixture) count(m any, query string, args ...any) int64 {
	f.t.Helper()
	var n int64
	q := f.db.Model(m)
	if query != "" {
		q = q.Where(query, args...)
	}
	require.NoError(f.t, q.Count(&n).Error)
	return n
}

func pageItems(t *testing.T, data gin.H) []*model.Post {
	t.Helper()
	page, ok := data["page_obj"].(service.PostPage)
	require.True(t, ok, "page_obj missing")
	return page.Items
}

func TestPagesRenderExpectedTemplates(t *testing.T) {
	f := setup(t)
	edit := "/posts/" + itoa(f.first.ID) + "/edit/"
	detail := "/posts/" + itoa(f.first.ID) + "/"

	cases := []struct {
		path     string
		user     *model.User
		template string
	}{
		{"/", nil, "posts/index.html"},
		{"/group/cats/", nil, "posts/group_list.html"},
		{"/profile/leo/", nil, "posts/profile.html"},
		{detail, nil, "posts/post_detail.html"},
		{"/create/", f.author, "posts/create_post.html"},
		{edit, f.author, "posts/create_post.html"},
		{"/follow/", f.reader, "posts/follow.html"},
		{"/about/author/", nil, "about/author.html"},
		{"/about/tech/", nil, "about/tech.html"},
		{"/auth/login/", nil, "users/login.html"},
		{"/auth/signup/", nil, "users/signup.html"},
		{"/no/such/page/", nil, "core/404.html"},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			w := f.get(tc.path, tc.user)
			name, _ := f.rec.last()
			assert.Equal(t, tc.template, name)
			if tc.template == "core/404.html" {
				assert.Equal(t, http.StatusNotFound, w.Code)
			} else {
				assert.Equal(t, http.StatusOK, w.Code)
			}
		})
	}
}

func TestAnonymousIsRedirectedToLoginWithNext(t *testing.T) {
	f := setup(t)
	for _, path := range []string{
		"/create/",
		"/posts/" + itoa(f.first.ID) + "/edit/",
		"/follow/",
		"/profile/leo/follow/",
		"/profile/leo/unfollow/",
	} {
		w := f.get(path, nil)
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.Equal(t, "/auth/login/?next="+url.QueryEscape(path), w.Header().Get("Location"), path)
	}
}

func TestEditByNonAuthorIsForbidden(t *testing.T) {
	f := setup(t)
	path := "/posts/" + itoa(f.first.ID) + "/edit/"

	w := f.get(path, f.reader)
	assert.Equal(t, http.StatusForbidden, w.Code)
	name, _ := f.rec.last()
	assert.Equal(t, "core/403.html", name)

	w = f.post(path, f.reader, url.Values{"text": {"hijacked"}})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Location"))

	var p model.Post
	require.NoError(t, f.db.First(&p, f.first.ID).Error)
	assert.Equal(t, "first post about cats", p.Text)
}

func TestEditByAuthorRedirectsToDetail(t *testing.T) {
	f := setup(t)
	path := "/posts/" + itoa(f.first.ID) + "/edit/"

	w := f.post(path, f.author, url.Values{"text": {"edited"}, "group": {itoa(f.dogs.ID)}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/posts/"+itoa(f.first.ID)+"/", w.Header().Get("Location"))

	var p model.Post
	require.NoError(t, f.db.First(&p, f.first.ID).Error)
	assert.Equal(t, "edited", p.Text)
	require.NotNil(t, p.GroupID)
	assert.Equal(t, f.dogs.ID, *p.GroupID)
}

func TestEditWithInvalidFormRerenders(t *testing.T) {
	f := setup(t)
	w := f.post("/posts/"+itoa(f.first.ID)+"/edit/", f.author, url.Values{"text": {"   "}})
	assert.Equal(t, http.StatusOK, w.Code)
	name, data := f.rec.last()
	assert.Equal(t, "posts/create_post.html", name)
	assert.Equal(t, true, data["is_edit"])
	pf := data["form"].(*form.PostForm)
	assert.True(t, pf.Errors.Has("text"))
}

func TestCreatePostAppearsInListings(t *testing.T) {
	f := setup(t)

	w := f.post("/create/", f.other, url.Values{"text": {"brand new"}, "group": {itoa(f.cats.ID)}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/max/", w.Header().Get("Location"))
	assert.EqualValues(t, 2, f.count(&model.Post{}, ""))

	var created model.Post
	require.NoError(t, f.db.Where("text = ?", "brand new").First(&created).Error)
	assert.Equal(t, f.other.ID, created.AuthorID)

	for _, path := range []string{"/", "/group/cats/", "/profile/max/"} {
		f.get(path, nil)
		_, data := f.rec.last()
		items := pageItems(t, data)
		require.NotEmpty(t, items, path)
		assert.Equal(t, created.ID, items[0].ID, path)
	}

	f.get("/group/dogs/", nil)
	_, data := f.rec.last()
	assert.Empty(t, pageItems(t, data))
}

func TestCreatePostWithInvalidGroupRerenders(t *testing.T) {
	f := setup(t)
	w := f.post("/create/", f.author, url.Values{"text": {"x"}, "group": {"9999"}})
	assert.Equal(t, http.StatusOK, w.Code)
	_, data := f.rec.last()
	assert.True(t, data["form"].(*form.PostForm).Errors.Has("group"))
	assert.EqualValues(t, 1, f.count(&model.Post{}, ""))
}

func TestCreatePostWithImage(t *testing.T) {
	f := setup(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField(middleware.CSRFFormField, f.csrfToken))
	require.NoError(t, mw.WriteField("text", "with picture"))
	fw, err := mw.CreateFormFile("image", "small.gif")
	require.NoError(t, err)
	_, err = fw.Write(tinyGIF)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/create/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := f.send(req, f.author)
	require.Equal(t, http.StatusFound, w.Code)

	var p model.Post
	require.NoError(t, f.db.Where("text = ?", "with picture").First(&p).Error)
	require.True(t, strings.HasPrefix(p.Image, "posts/"))

	w = f.get("/media/"+p.Image, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, tinyGIF, w.Body.Bytes())

	f.get("/posts/"+itoa(p.ID)+"/", nil)
	_, data := f.rec.last()
	assert.Equal(t, p.Image, data["post"].(*model.Post).Image)
}

func TestCreatePostRejectsNonImage(t *testing.T) {
	f := setup(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField(middleware.CSRFFormField, f.csrfToken))
	require.NoError(t, mw.WriteField("text", "fake picture"))
	fw, err := mw.CreateFormFile("image", "notes.gif")
	require.NoError(t, err)
	_, err = io.WriteString(fw, "just some text")
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/create/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := f.send(req, f.author)
	assert.Equal(t, http.StatusOK, w.Code)
	_, data := f.rec.last()
	assert.True(t, data["form"].(*form.PostForm).Errors.Has("image"))
	assert.EqualValues(t, 0, f.count(&model.Post{}, "text = ?", "fake picture"))
}

func (f *fixture) upload(target string, user *model.User, fields map[string]string, filename string, content []byte) *httptest.ResponseRecorder {
	f.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(f.t, mw.WriteField(middleware.CSRFFormField, f.csrfToken))
	for k, v := range fields {
		require.NoError(f.t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("image", filename)
	require.NoError(f.t, err)
	_, err = fw.Write(content)
	require.NoError(f.t, err)
	require.NoError(f.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return f.send(req, user)
}

func TestUploadedImageIsNamedByContent(t *testing.T) {
	f := setup(t)

	payload := append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), []byte("<script>alert(document.cookie)</script>")...)
	w := f.upload("/create/", f.author, map[string]string{"text": "html in disguise"}, "evil.html", payload)
	require.Equal(t, http.StatusFound, w.Code)

	var p model.Post
	require.NoError(t, f.db.Where("text = ?", "html in disguise").First(&p).Error)
	assert.True(t, strings.HasSuffix(p.Image, ".png"), p.Image)

	w = f.get("/media/"+p.Image, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestOversizedUploadIsRejected(t *testing.T) {
	f := setup(t)

	huge := append(append([]byte(nil), tinyGIF...), bytes.Repeat([]byte{0}, int(f.cfg.Media.MaxSize)+2<<20)...)
	w := f.upload("/create/", f.author, map[string]string{"text": "too big"}, "big.gif", huge)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	name, _ := f.rec.last()
	assert.Equal(t, "core/413.html", name)
	assert.EqualValues(t, 0, f.count(&model.Post{}, "text = ?", "too big"))

	entries, _ := os.ReadDir(filepath.Join(f.media, "posts"))
	assert.Empty(t, entries)
}

func TestIndexCacheServesSameBodyUntilExpiry(t *testing.T) {
	f := setup(t)

	first := f.get("/", nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Empty(t, first.Header().Get("X-Cache"))

	require.NoError(t, f.db.Delete(&model.Post{}, f.first.ID).Error)

	second := f.get("/", nil)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())

	f.now = f.now.Add(f.cfg.Cache.IndexTTL + time.Second)
	third := f.get("/", nil)
	assert.Empty(t, third.Header().Get("X-Cache"))
	assert.NotEqual(t, first.Body.String(), third.Body.String())
	_, data := f.rec.last()
	assert.Empty(t, pageItems(t, data))
}

func TestIndexCacheClear(t *testing.T) {
	f := setup(t)

	first := f.get("/", nil)
	require.NoError(t, f.db.Delete(&model.Post{}, f.first.ID).Error)
	assert.Equal(t, first.Body.String(), f.get("/", nil).Body.String())

	require.NoError(t, f.app.PageCache.Clear(context.Background()))
	after := f.get("/", nil)
	assert.NotEqual(t, first.Body.String(), after.Body.String())
}

func TestIndexCacheIsPerPage(t *testing.T) {
	f := setup(t)
	f.get("/", nil)
	w := f.get("/?page=2", nil)
	assert.Empty(t, w.Header().Get("X-Cache"))
}

func TestFollowCreatesSingleEdge(t *testing.T) {
	f := setup(t)

	w := f.get("/profile/leo/follow/", f.reader)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/follow/", w.Header().Get("Location"))

	w = f.get("/profile/leo/follow/", f.reader)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.EqualValues(t, 1, f.count(&model.Follow{}, "user_id = ? AND author_id = ?", f.reader.ID, f.author.ID))

	f.get("/profile/leo/", f.reader)
	_, data := f.rec.last()
	assert.Equal(t, true, data["following"])

	w = f.get("/profile/leo/unfollow/", f.reader)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/follow/", w.Header().Get("Location"))
	assert.EqualValues(t, 0, f.count(&model.Follow{}, ""))
}

func TestSelfFollowIsRejected(t *testing.T) {
	f := setup(t)
	w := f.get("/profile/leo/follow/", f.author)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	name, _ := f.rec.last()
	assert.Equal(t, "core/400.html", name)
	assert.EqualValues(t, 0, f.count(&model.Follow{}, ""))
}

func TestFollowUnknownAuthor(t *testing.T) {
	f := setup(t)
	assert.Equal(t, http.StatusNotFound, f.get("/profile/nobody/follow/", f.reader).Code)
	assert.Equal(t, http.StatusNotFound, f.get("/profile/nobody/unfollow/", f.reader).Code)
}

func TestFeedShowsOnlyFollowedAuthors(t *testing.T) {
	f := setup(t)
	f.get("/profile/leo/follow/", f.reader)

	w := f.post("/create/", f.author, url.Values{"text": {"fresh from leo"}})
	require.Equal(t, http.StatusFound, w.Code)

	f.get("/follow/", f.reader)
	_, data := f.rec.last()
	items := pageItems(t, data)
	require.Len(t, items, 2)
	assert.Equal(t, "fresh from leo", items[0].Text)

	f.get("/follow/", f.other)
	_, data = f.rec.last()
	assert.Empty(t, pageItems(t, data))
}

func TestCommentRequiresLogin(t *testing.T) {
	f := setup(t)
	path := "/posts/" + itoa(f.first.ID) + "/comment/"

	w := f.post(path, nil, url.Values{"text": {"anonymous words"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/auth/login/?next="))
	assert.EqualValues(t, 0, f.count(&model.Comment{}, ""))

	w = f.post(path, f.reader, url.Values{"text": {"nice post"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/posts/"+itoa(f.first.ID)+"/", w.Header().Get("Location"))
	assert.EqualValues(t, 1, f.count(&model.Comment{}, "post_id = ?", f.first.ID))

	f.get("/posts/"+itoa(f.first.ID)+"/", nil)
	_, data := f.rec.last()
	comments := data["comments"].([]*model.Comment)
	require.Len(t, comments, 1)
	assert.Equal(t, "nice post", comments[0].Text)
	assert.Equal(t, "kate", comments[0].Author.Username)
}

func TestEmptyCommentIsIgnored(t *testing.T) {
	f := setup(t)
	w := f.post("/posts/"+itoa(f.first.ID)+"/comment/", f.reader, url.Values{"text": {"  "}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/posts/"+itoa(f.first.ID)+"/", w.Header().Get("Location"))
	assert.EqualValues(t, 0, f.count(&model.Comment{}, ""))
}

func TestUnknownObjectsReturn404(t *testing.T) {
	f := setup(t)
	for _, path := range []string{"/group/nope/", "/profile/nobody/", "/posts/9999/", "/posts/abc/"} {
		w := f.get(path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		name, data := f.rec.last()
		assert.Equal(t, "core/404.html", name, path)
		assert.Equal(t, path, data["path"], path)
	}
	assert.Equal(t, http.StatusNotFound, f.get("/posts/9999/edit/", f.author).Code)
	assert.Equal(t, http.StatusNotFound, f.post("/posts/9999/comment/", f.author, nil).Code)
}

func TestPostWithoutCSRFTokenIsRejected(t *testing.T) {
	f := setup(t)

	req := httptest.NewRequest(http.MethodPost, "/create/", strings.NewReader("text=sneaky"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := f.send(req, f.author)
	assert.Equal(t, http.StatusForbidden, w.Code)
	name, _ := f.rec.last()
	assert.Equal(t, "core/403csrf.html", name)
	assert.EqualValues(t, 0, f.count(&model.Post{}, "text = ?", "sneaky"))

	req = httptest.NewRequest(http.MethodPost, "/create/", strings.NewReader("text=via+header"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(middleware.CSRFHeader, f.csrfToken)
	w = f.send(req, f.author)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestSignupLoginLogout(t *testing.T) {
	f := setup(t)

	w := f.post("/auth/signup/", nil, url.Values{
		"username":  {"newbie"},
		"password1": {"long-enough"},
		"password2": {"long-enough"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	assert.NotEmpty(t, sessionCookie(w, f.cfg.Auth.CookieName))

	w = f.post("/auth/signup/", nil, url.Values{
		"username":  {"newbie"},
		"password1": {"long-enough"},
		"password2": {"long-enough"},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	_, data := f.rec.last()
	assert.True(t, data["form"].(*form.SignupForm).Errors.Has("username"))

	w = f.post("/auth/login/", nil, url.Values{"username": {"newbie"}, "password": {"wrong-pass"}})
	assert.Equal(t, http.StatusOK, w.Code)
	_, data = f.rec.last()
	assert.True(t, data["form"].(*form.LoginForm).Errors.Has(form.NonFieldErrors))

	w = f.post("/auth/login/", nil, url.Values{"username": {"newbie"}, "password": {"long-enough"}, "next": {"/follow/"}})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/follow/", w.Header().Get("Location"))
	token := sessionCookie(w, f.cfg.Auth.CookieName)
	require.NotEmpty(t, token)

	req := httptest.NewRequest(http.MethodGet, "/follow/", nil)
	req.AddCookie(&http.Cookie{Name: f.cfg.Auth.CookieName, Value: token})
	w = f.send(req, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = f.post("/auth/login/", nil, url.Values{"username": {"newbie"}, "password": {"long-enough"}, "next": {"//evil.example/"}})
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = f.get("/auth/logout/", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	for _, c := range w.Result().Cookies() {
		if c.Name == f.cfg.Auth.CookieName {
			assert.Negative(t, c.MaxAge)
		}
	}
}

func TestInvalidSessionIsAnonymous(t *testing.T) {
	f := setup(t)
	req := httptest.NewRequest(http.MethodGet, "/follow/", nil)
	req.AddCookie(&http.Cookie{Name: f.cfg.Auth.CookieName, Value: "garbage"})
	w := f.send(req, nil)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	f := setup(t)
	assert.Equal(t, http.StatusOK, f.get("/healthz", nil).Code)
	f.get("/", nil)

	w := f.get("/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
	assert.Contains(t, w.Body.String(), `route="/"`)
}

func TestPaginationOfIndex(t *testing.T) {
	f := setup(t)
	repo := repository.NewPostRepository(f.db)
	for i := 0; i < 12; i++ {
		require.NoError(t, repo.Create(context.Background(), &model.Post{Text: "filler", AuthorID: f.other.ID}))
	}

	f.get("/", nil)
	_, data := f.rec.last()
	assert.Len(t, pageItems(t, data), 10)

	f.get("/?page=2", nil)
	_, data = f.rec.last()
	assert.Len(t, pageItems(t, data), 3)

	f.get("/?page=99", nil)
	_, data = f.rec.last()
	assert.Len(t, pageItems(t, data), 3)
}

func sessionCookie(w *httptest.ResponseRecorder, name string) string {
	for _, c := range w.Result().Cookies() {
		if c.Name == name && c.MaxAge >= 0 {
			return c.Value
		}
	}
	return ""
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
