package model

import "gorm.io/gorm"

// 内容类型
const (
	ContentTypeText     = "text"
	ContentTypeDocument = "document"
	ContentTypeVideo    = "video"
	ContentTypeLink     = "link"
)

// ContentItem 模块内容表 — 对应 content_items
type ContentItem struct {
	ContentItemID string `gorm:"type:uuid;primaryKey"                         json:"content_item_id"`
	ModuleID      string `gorm:"type:uuid;not null;index"                     json:"module_id"`
	Title         string `gorm:"type:varchar(200);not null"                   json:"title"`
	ContentType   string `gorm:"type:varchar(20);not null;default:'text'"     json:"content_type"`
	Body          string `gorm:"type:text;not null;default:''"                json:"body"`
	URL           string `gorm:"column:url;type:varchar(1024);not null;default:''" json:"url"`
	OrderIndex    int    `gorm:"not null;default:0"                           json:"order_index"`
	IsPublished   bool   `gorm:"not null;default:false"                       json:"is_published"`
	SoftDeleteModel
}

// TableName 指定表名
func (ContentItem) TableName() string { return "content_items" }

// BeforeCreate 生成主键
func (c *ContentItem) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ContentItemID)
	return nil
}
