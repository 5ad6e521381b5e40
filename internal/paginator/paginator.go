// Package paginator slices ordered result sets into fixed-size pages.
//
// The requested page number comes straight from the query string. Any value
// that is absent, non-numeric or below 1 resolves to the first page; values
// past the end resolve to the last page. Resolving never fails.
package paginator

import (
	"strconv"
	"strings"
)

// DefaultPerPage 默认每页条数
const DefaultPerPage = 10

// Paginator 描述一个有序集合的分页方式
type Paginator struct {
	Count   int
	PerPage int
}

// New 创建分页器；perPage 非正时使用 DefaultPerPage
func New(count, perPage int) *Paginator {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if count < 0 {
		count = 0
	}
	return &Paginator{Count: count, PerPage: perPage}
}

// NumPages 总页数；空集合也有一页
func (p *Paginator) NumPages() int {
	if p.Count == 0 {
		return 1
	}
	return (p.Count + p.PerPage - 1) / p.PerPage
}

// Window 解析原始页码并返回对应窗口
func (p *Paginator) Window(raw string) Window {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		n = 1
	}
	return p.window(n)
}

func (p *Paginator) window(n int) Window {
	pages := p.NumPages()
	if n > pages {
		n = pages
	}
	offset := (n - 1) * p.PerPage
	limit := p.PerPage
	if rest := p.Count - offset; rest < limit {
		limit = rest
	}
	return Window{
		Number:   n,
		NumPages: pages,
		Count:    p.Count,
		PerPage:  p.PerPage,
		Offset:   offset,
		Limit:    limit,
	}
}

// Window 某一页在集合中的位置
type Window struct {
	Number   int
	NumPages int
	Count    int
	PerPage  int
	Offset   int
	Limit    int
}

func (w Window) HasPrevious() bool { return w.Number > 1 }
func (w Window) HasNext() bool     { return w.Number < w.NumPages }
func (w Window) HasOtherPages() bool {
	return w.HasPrevious() || w.HasNext()
}
func (w Window) PreviousNumber() int { return w.Number - 1 }
func (w Window) NextNumber() int     { return w.Number + 1 }

// Pages 1..NumPages，供模板渲染页码链接
func (w Window) Pages() []int {
	res := make([]int, w.NumPages)
	for i := range res {
		res[i] = i + 1
	}
	return res
}

// Page 一页数据
type Page[T any] struct {
	Window
	Items []T
}

// Len 本页条数
func (p Page[T]) Len() int { return len(p.Items) }

// NewPage 用数据库按 Window 取回的数据组装一页
func NewPage[T any](w Window, items []T) Page[T] {
	return Page[T]{Window: w, Items: items}
}

// Paginate 对内存中的有序序列分页
func Paginate[T any](items []T, perPage int, raw string) Page[T] {
	w := New(len(items), perPage).Window(raw)
	return Page[T]{Window: w, Items: items[w.Offset : w.Offset+w.Limit]}
}
