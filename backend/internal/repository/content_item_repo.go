package repository

import (
	"context"

	"gorm.io/gorm"

	"learnhub/backend/internal/model"
)

// ContentItemRepository 模块内容数据访问接口
type ContentItemRepository interface {
	Create(ctx context.Context, item *model.ContentItem) error
	GetByID(ctx context.Context, id string) (*model.ContentItem, error)
	ListByModule(ctx context.Context, moduleID string, publishedOnly bool) ([]model.ContentItem, error)
	// CountPublished 统计模块内已发布且未删除的内容数
	CountPublished(ctx context.Context, moduleID string) (int64, error)
	Update(ctx context.Context, item *model.ContentItem) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type contentItemRepo struct {
	db *gorm.DB
}

// NewContentItemRepo 创建 ContentItemRepository 实例
func NewContentItemRepo(db *gorm.DB) ContentItemRepository {
	return &contentItemRepo{db: db}
}

func (r *contentItemRepo) Create(ctx context.Context, item *model.ContentItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *contentItemRepo) GetByID(ctx context.Context, id string) (*model.ContentItem, error) {
	var item model.ContentItem
	err := r.db.WithContext(ctx).
		Where("content_item_id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *contentItemRepo) ListByModule(ctx context.Context, moduleID string, publishedOnly bool) ([]model.ContentItem, error) {
	var items []model.ContentItem
	query := r.db.WithContext(ctx).Where("module_id = ?", moduleID)
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}
	err := query.Order("order_index ASC, created_at ASC").Find(&items).Error
	return items, err
}

func (r *contentItemRepo) CountPublished(ctx context.Context, moduleID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ContentItem{}).
		Where("module_id = ? AND is_published = ?", moduleID, true).
		Count(&count).Error
	return count, err
}

func (r *contentItemRepo) Update(ctx context.Context, item *model.ContentItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *contentItemRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return softDelete(r.db.WithContext(ctx), &model.ContentItem{}, "content_item_id", id, deletedBy)
}
