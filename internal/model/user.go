package model

import "time"

// User 站点用户（作者与读者共用）
type User struct {
	ID        uint      `gorm:"primaryKey"`
	Username  string    `gorm:"type:varchar(150);uniqueIndex;not null"`
	Email     string    `gorm:"type:varchar(254)"`
	Password  string    `gorm:"type:varchar(128);not null"` // bcrypt hash
	FirstName string    `gorm:"type:varchar(150)"`
	LastName  string    `gorm:"type:varchar(150)"`
	CreatedAt time.Time
}

func (User) TableName() string { return "users" }

// FullName 姓名，缺省时退回用户名
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Username
}

func (u *User) String() string { return u.Username }
