package service

import (
	"context"

	"github.com/d60-Lab/yatube/internal/paginator"
	"github.com/d60-Lab/yatube/internal/repository"
)

// RelationshipService 关注关系与关注流
type RelationshipService interface {
	Follow(ctx context.Context, userID, authorID uint) error
	Unfollow(ctx context.Context, userID, authorID uint) error
	IsFollowing(ctx context.Context, userID, authorID uint) (bool, error)
	Feed(ctx context.Context, userID uint, rawPage string) (PostPage, error)
}

type relationshipService struct {
	followRepo repository.FollowRepository
	postRepo   repository.PostRepository
	perPage    int
}

func NewRelationshipService(followRepo repository.FollowRepository, postRepo repository.PostRepository, perPage int) RelationshipService {
	if perPage < 1 {
		perPage = paginator.DefaultPerPage
	}
	return &relationshipService{followRepo: followRepo, postRepo: postRepo, perPage: perPage}
}

// Follow 自我关注由存储层约束拒绝，返回 repository.ErrSelfFollow
func (s *relationshipService) Follow(ctx context.Context, userID, authorID uint) error {
	return s.followRepo.Create(ctx, userID, authorID)
}

// Unfollow 关系不存在时不报错
func (s *relationshipService) Unfollow(ctx context.Context, userID, authorID uint) error {
	return s.followRepo.Delete(ctx, userID, authorID)
}

func (s *relationshipService) IsFollowing(ctx context.Context, userID, authorID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	return s.followRepo.Exists(ctx, userID, authorID)
}

// Feed 关注作者的帖子，按时间倒序分页
func (s *relationshipService) Feed(ctx context.Context, userID uint, rawPage string) (PostPage, error) {
	return pagePosts(ctx, s.postRepo, repository.PostFilter{FollowerID: userID}, s.perPage, rawPage)
}
