package model

import "time"

// Comment 评论；帖子或作者删除时级联删除
type Comment struct {
	ID        uint      `gorm:"primaryKey"`
	Text      string    `gorm:"type:text;not null"`
	PostID    uint      `gorm:"not null;index:idx_comment_post"`
	Post      *Post     `gorm:"constraint:OnDelete:CASCADE;"`
	AuthorID  uint      `gorm:"not null"`
	Author    *User     `gorm:"constraint:OnDelete:CASCADE;"`
	CreatedAt time.Time
}

func (Comment) TableName() string { return "comments" }

func (c *Comment) String() string { return c.Text }
