package model

import (
	"time"
)

// Follow 关注关系（User 关注 Author）
type Follow struct {
	ID       uint  `gorm:"primaryKey"`
	UserID   uint  `gorm:"not null;index:idx_follow_user;uniqueIndex:idx_follow_pair;check:chk_follows_not_self,user_id <> author_id"`
	User     *User `gorm:"constraint:OnDelete:CASCADE;"`
	AuthorID uint  `gorm:"not null;index:idx_follow_author;uniqueIndex:idx_follow_pair"`
	Author   *User `gorm:"constraint:OnDelete:CASCADE;"`
	// 复合唯一键，避免重复关注
	// idx_follow_pair = (user_id, author_id)
	CreatedAt time.Time
}

func (Follow) TableName() string { return "follows" }
