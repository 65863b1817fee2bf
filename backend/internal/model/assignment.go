package model

import (
	"time"

	"gorm.io/gorm"
)

// Assignment 作业表 — 对应 assignments
type Assignment struct {
	AssignmentID string     `gorm:"type:uuid;primaryKey"              json:"assignment_id"`
	ModuleID     string     `gorm:"type:uuid;not null;index"          json:"module_id"`
	CourseID     string     `gorm:"type:uuid;not null;index"          json:"course_id"`
	Title        string     `gorm:"type:varchar(200);not null"        json:"title"`
	Description  string     `gorm:"type:text;not null;default:''"     json:"description"`
	DueAt        *time.Time `                                         json:"due_at,omitempty"`
	MaxPoints    float64    `gorm:"type:numeric(8,2);not null;default:100" json:"max_points"`
	IsPublished  bool       `gorm:"not null;default:false"            json:"is_published"`
	SoftDeleteModel

	// 关联
	Module *Module `gorm:"foreignKey:ModuleID;references:ModuleID" json:"module,omitempty"`
}

// TableName 指定表名
func (Assignment) TableName() string { return "assignments" }

// BeforeCreate 生成主键
func (a *Assignment) BeforeCreate(*gorm.DB) error {
	ensureID(&a.AssignmentID)
	return nil
}

// IsPastDue 判断指定时间是否已超过截止时间（无截止时间视为永不过期）
func (a *Assignment) IsPastDue(at time.Time) bool {
	return a.DueAt != nil && at.After(*a.DueAt)
}
