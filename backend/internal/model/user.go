package model

import "gorm.io/gorm"

// User 用户表 — 对应 users（由统一身份服务同步）
type User struct {
	UserID string `gorm:"type:uuid;primaryKey"                   json:"user_id"`
	Name   string `gorm:"type:varchar(100);not null"             json:"name"`
	Email  string `gorm:"type:varchar(255);not null"             json:"email"`
	Role   string `gorm:"type:varchar(20);not null;default:'student'" json:"role"`
	SoftDeleteModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// BeforeCreate 生成主键
func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.UserID)
	return nil
}
