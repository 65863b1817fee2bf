package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── 角色 ──

const (
	RoleAdmin      = "admin"
	RoleInstructor = "instructor"
	RoleStudent    = "student"
)

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string   `gorm:"type:uuid"                          json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:uuid"                          json:"updated_by,omitempty"`
}

// SoftDeleteModel 支持软删除的审计字段
// 删除只写入墓碑时间戳，所有默认查询自动过滤 deleted_at IS NULL
type SoftDeleteModel struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index"     json:"deleted_at,omitempty"`
	DeletedBy *string        `gorm:"type:uuid" json:"deleted_by,omitempty"`
}

// VersionedModel 支持乐观锁的模型
type VersionedModel struct {
	Version int `gorm:"not null;default:1" json:"version"`
}

// ensureID 主键为空时在应用侧生成 UUID（与数据库 gen_random_uuid() 默认值等价）
func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
