package model

import "gorm.io/gorm"

// Module 课程模块表 — 对应 modules
//
// order_index 只在同一课程未删除的模块间唯一，且只表达相对顺序：
// 删除模块后允许出现空洞，解锁逻辑按 "下一个更大的 order_index" 查找
type Module struct {
	ModuleID         string `gorm:"type:uuid;primaryKey"                                                   json:"module_id"`
	CourseID         string `gorm:"type:uuid;not null;uniqueIndex:idx_modules_course_order,where:deleted_at IS NULL" json:"course_id"`
	Title            string `gorm:"type:varchar(200);not null"                                             json:"title"`
	Description      string `gorm:"type:text;not null;default:''"                                          json:"description"`
	OrderIndex       int    `gorm:"not null;uniqueIndex:idx_modules_course_order,where:deleted_at IS NULL"  json:"order_index"`
	IsPublished      bool   `gorm:"not null;default:false"                                                 json:"is_published"`
	RequiresPrevious bool   `gorm:"not null;default:false"                                                 json:"requires_previous"`
	SoftDeleteModel
}

// TableName 指定表名
func (Module) TableName() string { return "modules" }

// BeforeCreate 生成主键
func (m *Module) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ModuleID)
	return nil
}
