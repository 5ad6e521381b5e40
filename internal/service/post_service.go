package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/d60-Lab/yatube/internal/form"
	"github.com/d60-Lab/yatube/internal/model"
	"github.com/d60-Lab/yatube/internal/paginator"
	"github.com/d60-Lab/yatube/internal/repository"
	"github.com/d60-Lab/yatube/pkg/logger"
	"github.com/d60-Lab/yatube/pkg/storage"
)

// PostPage 一页帖子
type PostPage = paginator.Page[*model.Post]

// PostDetail 帖子详情页所需数据
type PostDetail struct {
	Post        *model.Post
	AuthorPosts int64
	Comments    []*model.Comment
}

// PostService 帖子、分组、评论的读写
type PostService interface {
	ListAll(ctx context.Context, rawPage string) (PostPage, error)
	ListByGroup(ctx context.Context, slug, rawPage string) (*model.Group, PostPage, error)
	ListByAuthor(ctx context.Context, username, rawPage string) (*model.User, PostPage, error)
	Author(ctx context.Context, username string) (*model.User, error)
	Get(ctx context.Context, id uint) (*model.Post, error)
	Detail(ctx context.Context, id uint) (*PostDetail, error)
	Create(ctx context.Context, author *model.User, f *form.PostForm) (*model.Post, error)
	Update(ctx context.Context, post *model.Post, f *form.PostForm) error
	AddComment(ctx context.Context, post *model.Post, author *model.User, f *form.CommentForm) (*model.Comment, error)
	Groups(ctx context.Context) ([]*model.Group, error)
	GroupLookup() form.GroupLookup
}

type postService struct {
	posts    repository.PostRepository
	groups   repository.GroupRepository
	users    repository.UserRepository
	comments repository.CommentRepository
	media    storage.Storage
	perPage  int
}

func NewPostService(
	posts repository.PostRepository,
	groups repository.GroupRepository,
	users repository.UserRepository,
	comments repository.CommentRepository,
	media storage.Storage,
	perPage int,
) PostService {
	if perPage < 1 {
		perPage = paginator.DefaultPerPage
	}
	return &postService{posts: posts, groups: groups, users: users, comments: comments, media: media, perPage: perPage}
}

func (s *postService) ListAll(ctx context.Context, rawPage string) (PostPage, error) {
	return pagePosts(ctx, s.posts, repository.PostFilter{}, s.perPage, rawPage)
}

func (s *postService) ListByGroup(ctx context.Context, slug, rawPage string) (*model.Group, PostPage, error) {
	g, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, PostPage{}, err
	}
	page, err := pagePosts(ctx, s.posts, repository.PostFilter{GroupID: g.ID}, s.perPage, rawPage)
	return g, page, err
}

func (s *postService) ListByAuthor(ctx context.Context, username, rawPage string) (*model.User, PostPage, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, PostPage{}, err
	}
	page, err := pagePosts(ctx, s.posts, repository.PostFilter{AuthorID: u.ID}, s.perPage, rawPage)
	return u, page, err
}

func (s *postService) Author(ctx context.Context, username string) (*model.User, error) {
	return s.users.GetByUsername(ctx, username)
}

func (s *postService) Get(ctx context.Context, id uint) (*model.Post, error) {
	return s.posts.GetByID(ctx, id)
}

func (s *postService) Detail(ctx context.Context, id uint) (*PostDetail, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cnt, err := s.posts.Count(ctx, repository.PostFilter{AuthorID: p.AuthorID})
	if err != nil {
		return nil, fmt.Errorf("count author posts: %w", err)
	}
	comments, err := s.comments.ListByPost(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return &PostDetail{Post: p, AuthorPosts: cnt, Comments: comments}, nil
}

// Create 作者固定为当前用户；图片先落盘，写库失败时回收
func (s *postService) Create(ctx context.Context, author *model.User, f *form.PostForm) (*model.Post, error) {
	p := &model.Post{
		Text:     strings.TrimSpace(f.Text),
		AuthorID: author.ID,
		GroupID:  f.GroupID,
	}
	if f.Image != nil {
		name, err := s.media.Save(ctx, "posts", f.Image)
		if err != nil {
			return nil, fmt.Errorf("save image: %w", err)
		}
		p.Image = name
	}
	if err := s.posts.Create(ctx, p); err != nil {
		s.discard(ctx, p.Image)
		return nil, fmt.Errorf("create post: %w", err)
	}
	p.Author = author
	logger.Info("post created", zap.Uint("post_id", p.ID), zap.String("author", author.Username))
	return p, nil
}

// Update 新图片替换旧图片；未上传时保留原图
func (s *postService) Update(ctx context.Context, post *model.Post, f *form.PostForm) error {
	oldImage := post.Image
	post.Text = strings.TrimSpace(f.Text)
	post.GroupID = f.GroupID
	if f.Image != nil {
		name, err := s.media.Save(ctx, "posts", f.Image)
		if err != nil {
			return fmt.Errorf("save image: %w", err)
		}
		post.Image = name
	}
	if err := s.posts.Update(ctx, post); err != nil {
		if post.Image != oldImage {
			s.discard(ctx, post.Image)
		}
		return fmt.Errorf("update post: %w", err)
	}
	if post.Image != oldImage {
		s.discard(ctx, oldImage)
	}
	logger.Info("post updated", zap.Uint("post_id", post.ID))
	return nil
}

func (s *postService) AddComment(ctx context.Context, post *model.Post, author *model.User, f *form.CommentForm) (*model.Comment, error) {
	c := &model.Comment{Text: strings.TrimSpace(f.Text), PostID: post.ID, AuthorID: author.ID}
	if err := s.comments.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	c.Author = author
	return c, nil
}

func (s *postService) Groups(ctx context.Context) ([]*model.Group, error) {
	return s.groups.List(ctx)
}

func (s *postService) GroupLookup() form.GroupLookup { return s.groups }

func (s *postService) discard(ctx context.Context, name string) {
	if name == "" {
		return
	}
	if err := s.media.Delete(ctx, name); err != nil {
		logger.Warn("discard image failed", zap.String("name", name), zap.Error(err))
	}
}

// pagePosts 先计数再按窗口取数
func pagePosts(ctx context.Context, repo repository.PostRepository, f repository.PostFilter, perPage int, rawPage string) (PostPage, error) {
	total, err := repo.Count(ctx, f)
	if err != nil {
		return PostPage{}, fmt.Errorf("count posts: %w", err)
	}
	w := paginator.New(int(total), perPage).Window(rawPage)
	if w.Limit == 0 {
		return paginator.NewPage(w, []*model.Post{}), nil
	}
	items, err := repo.List(ctx, f, w.Offset, w.Limit)
	if err != nil {
		return PostPage{}, fmt.Errorf("list posts: %w", err)
	}
	return paginator.NewPage(w, items), nil
}
