package model

import "time"

// ModuleProgress 学习者模块进度表 — 对应 module_progress
// completed_at 至多写入一次，写入后永不清除
type ModuleProgress struct {
	ModuleID    string     `gorm:"type:uuid;primaryKey"               json:"module_id"`
	UserID      string     `gorm:"type:uuid;primaryKey;index"         json:"user_id"`
	CompletedAt *time.Time `                                          json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName 指定表名
func (ModuleProgress) TableName() string { return "module_progress" }

// ModuleContentView 已浏览内容集合的成员 — 对应 module_content_views
// 三元组主键即集合语义：重复加入由 ON CONFLICT DO NOTHING 吸收
type ModuleContentView struct {
	ModuleID      string    `gorm:"type:uuid;primaryKey" json:"module_id"`
	UserID        string    `gorm:"type:uuid;primaryKey" json:"user_id"`
	ContentItemID string    `gorm:"type:uuid;primaryKey" json:"content_item_id"`
	ViewedAt      time.Time `gorm:"not null"             json:"viewed_at"`
}

// TableName 指定表名
func (ModuleContentView) TableName() string { return "module_content_views" }

// ModuleProgressRecord 进度行的领域视图：浏览集合 + 完成时间
type ModuleProgressRecord struct {
	ModuleID      string
	UserID        string
	ContentViewed map[string]struct{}
	CompletedAt   *time.Time
}

// NewModuleProgressRecord 零状态进度（无进度行时使用）
func NewModuleProgressRecord(moduleID, userID string) *ModuleProgressRecord {
	return &ModuleProgressRecord{
		ModuleID:      moduleID,
		UserID:        userID,
		ContentViewed: make(map[string]struct{}),
	}
}

// HasViewed 集合成员判断
func (r *ModuleProgressRecord) HasViewed(contentID string) bool {
	_, ok := r.ContentViewed[contentID]
	return ok
}

// ViewedCount 集合大小（不按内容当前发布状态过滤）
func (r *ModuleProgressRecord) ViewedCount() int {
	return len(r.ContentViewed)
}

// IsCompleted 是否已记录完成时间
func (r *ModuleProgressRecord) IsCompleted() bool {
	return r.CompletedAt != nil
}
