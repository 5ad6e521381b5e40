package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("record not found")
	// ErrSelfFollow 违反 chk_follows_not_self 约束
	ErrSelfFollow = errors.New("user and author must be different")
	// ErrDuplicate 违反唯一约束
	ErrDuplicate = errors.New("duplicate record")
)

// translate 把驱动层错误映射为仓储错误
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	}
	msg := strings.ToLower(err.Error())
	switch {
	// sqlite: "CHECK constraint failed"; postgres: "violates check constraint" (SQLSTATE 23514)
	case strings.Contains(msg, "check constraint"), strings.Contains(msg, "23514"):
		return ErrSelfFollow
	// sqlite: "UNIQUE constraint failed"; postgres: SQLSTATE 23505
	case strings.Contains(msg, "unique constraint"), strings.Contains(msg, "23505"):
		return ErrDuplicate
	}
	return err
}
