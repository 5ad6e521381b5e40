// Package web holds the HTML templates and the gin renderer built from them.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin/render"
)

//go:embed templates
var templatesFS embed.FS

// Renderer 每个页面模板独立解析（layout + includes + page），避免 block 名冲突
type Renderer struct {
	templates map[string]*template.Template
}

// FuncOptions 模板函数依赖
type FuncOptions struct {
	MediaURL func(name string) string
}

// NewRenderer 解析 templates/ 下全部页面
func NewRenderer(opts FuncOptions) (*Renderer, error) {
	if opts.MediaURL == nil {
		opts.MediaURL = func(name string) string { return "/media/" + name }
	}
	funcs := Funcs(opts)

	shared := []string{"templates/base.html"}
	includes, err := fs.Glob(templatesFS, "templates/includes/*.html")
	if err != nil {
		return nil, err
	}
	shared = append(shared, includes...)

	r := &Renderer{templates: make(map[string]*template.Template)}
	for _, dir := range []string{"posts", "core", "about", "users"} {
		pages, err := fs.Glob(templatesFS, path.Join("templates", dir, "*.html"))
		if err != nil {
			return nil, err
		}
		for _, page := range pages {
			files := append(append([]string{}, shared...), page)
			t, err := template.New("base.html").Funcs(funcs).ParseFS(templatesFS, files...)
			if err != nil {
				return nil, fmt.Errorf("parse %s: %w", page, err)
			}
			r.templates[strings.TrimPrefix(page, "templates/")] = t
		}
	}
	return r, nil
}

// Instance 实现 gin render.HTMLRender
func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.templates[name]
	if !ok {
		panic(fmt.Sprintf("web: template %q not found", name))
	}
	return render.HTML{Template: t, Name: "base", Data: data}
}

// Names 已注册的模板名
func (r *Renderer) Names() []string {
	names := make([]string, 0, len(r.templates))
	for n := range r.templates {
		names = append(names, n)
	}
	return names
}

// Funcs 模板函数
func Funcs(opts FuncOptions) template.FuncMap {
	return template.FuncMap{
		"media": opts.MediaURL,
		"date": func(t time.Time) string {
			return t.Format("2 January 2006")
		},
		"truncatewords": func(s string, n int) string {
			words := strings.Fields(s)
			if len(words) <= n {
				return strings.Join(words, " ")
			}
			return strings.Join(words[:n], " ") + " …"
		},
		"linebreaksbr": func(s string) template.HTML {
			esc := template.HTMLEscapeString(s)
			esc = strings.ReplaceAll(esc, "\r\n", "\n")
			return template.HTML(strings.ReplaceAll(esc, "\n", "<br>"))
		},
	}
}
