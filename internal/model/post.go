package model

import "time"

// Post 帖子；作者删除时级联删除，分组删除时置空
type Post struct {
	ID        uint      `gorm:"primaryKey"`
	Text      string    `gorm:"type:text;not null"`
	AuthorID  uint      `gorm:"not null;index:idx_post_author"`
	Author    *User     `gorm:"constraint:OnDelete:CASCADE;"`
	GroupID   *uint     `gorm:"index:idx_post_group"`
	Group     *Group    `gorm:"constraint:OnDelete:SET NULL;"`
	Image     string    `gorm:"type:varchar(255)"`
	CreatedAt time.Time `gorm:"index:idx_post_created"`
}

func (Post) TableName() string { return "posts" }

// String 正文前 15 个字符
func (p *Post) String() string {
	r := []rune(p.Text)
	if len(r) > 15 {
		r = r[:15]
	}
	return string(r)
}

// HasImage 是否带图片
func (p *Post) HasImage() bool { return p.Image != "" }
