package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/yatube/internal/model"
)

// PostFilter 列表过滤条件，零值表示全部帖子
type PostFilter struct {
	AuthorID   uint
	GroupID    uint
	FollowerID uint // 仅返回该用户关注的作者的帖子
}

type PostRepository interface {
	Create(ctx context.Context, p *model.Post) error
	Update(ctx context.Context, p *model.Post) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*model.Post, error)
	Count(ctx context.Context, f PostFilter) (int64, error)
	List(ctx context.Context, f PostFilter, offset, limit int) ([]*model.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, p *model.Post) error {
	return translate(r.db.WithContext(ctx).Omit("Author", "Group").Create(p).Error)
}

// Update 只更新可编辑字段，created_at 保持不变
func (r *postRepository) Update(ctx context.Context, p *model.Post) error {
	return translate(r.db.WithContext(ctx).
		Model(&model.Post{ID: p.ID}).
		Select("text", "group_id", "image").
		Updates(map[string]any{"text": p.Text, "group_id": p.GroupID, "image": p.Image}).Error)
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&model.Post{}, id).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*model.Post, error) {
	var p model.Post
	if err := r.db.WithContext(ctx).Preload("Author").Preload("Group").First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *postRepository) Count(ctx context.Context, f PostFilter) (int64, error) {
	var cnt int64
	err := r.scope(ctx, f).Model(&model.Post{}).Count(&cnt).Error
	return cnt, err
}

// List 新帖在前，同一时刻按 id 倒序
func (r *postRepository) List(ctx context.Context, f PostFilter, offset, limit int) ([]*model.Post, error) {
	var res []*model.Post
	err := r.scope(ctx, f).
		Preload("Author").
		Preload("Group").
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&res).Error
	return res, err
}

func (r *postRepository) scope(ctx context.Context, f PostFilter) *gorm.DB {
	q := r.db.WithContext(ctx)
	if f.AuthorID != 0 {
		q = q.Where("author_id = ?", f.AuthorID)
	}
	if f.GroupID != 0 {
		q = q.Where("group_id = ?", f.GroupID)
	}
	if f.FollowerID != 0 {
		sub := r.db.WithContext(ctx).Model(&model.Follow{}).Select("author_id").Where("user_id = ?", f.FollowerID)
		q = q.Where("author_id IN (?)", sub)
	}
	return q
}
