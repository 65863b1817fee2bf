package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"learnhub/backend/internal/model"
)

// ProgressRepository 学习进度数据访问接口
//
// 两个写操作都是单条原子语句，并发调用不会丢失更新，也不会返回冲突错误。
type ProgressRepository interface {
	// Get 读取进度行及已浏览集合；无进度行时返回 gorm.ErrRecordNotFound
	Get(ctx context.Context, moduleID, userID string) (*model.ModuleProgressRecord, error)
	// AddContentView 原子地把内容加入已浏览集合（必要时创建进度行），返回是否为新加入
	AddContentView(ctx context.Context, moduleID, userID, contentID string, at time.Time) (bool, error)
	// MarkCompleted 仅当 completed_at 为空时写入，返回本次调用是否完成了状态迁移
	MarkCompleted(ctx context.Context, moduleID, userID string, at time.Time) (bool, error)
	// ListCompleted 返回学习者在给定模块中已完成的模块及完成时间
	ListCompleted(ctx context.Context, userID string, moduleIDs []string) (map[string]time.Time, error)
}

type progressRepo struct {
	db *gorm.DB
}

// NewProgressRepo 创建 ProgressRepository 实例
func NewProgressRepo(db *gorm.DB) ProgressRepository {
	return &progressRepo{db: db}
}

func (r *progressRepo) Get(ctx context.Context, moduleID, userID string) (*model.ModuleProgressRecord, error) {
	db := r.db.WithContext(ctx)

	var row model.ModuleProgress
	if err := db.Where("module_id = ? AND user_id = ?", moduleID, userID).First(&row).Error; err != nil {
		return nil, err
	}

	var contentIDs []string
	err := db.Model(&model.ModuleContentView{}).
		Where("module_id = ? AND user_id = ?", moduleID, userID).
		Pluck("content_item_id", &contentIDs).Error
	if err != nil {
		return nil, err
	}

	record := model.NewModuleProgressRecord(moduleID, userID)
	record.CompletedAt = row.CompletedAt
	for _, id := range contentIDs {
		record.ContentViewed[id] = struct{}{}
	}
	return record, nil
}

func (r *progressRepo) AddContentView(ctx context.Context, moduleID, userID, contentID string, at time.Time) (bool, error) {
	var added bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureProgressRow(tx, moduleID, userID, at); err != nil {
			return err
		}

		view := model.ModuleContentView{
			ModuleID:      moduleID,
			UserID:        userID,
			ContentItemID: contentID,
			ViewedAt:      at,
		}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&view)
		if result.Error != nil {
			return result.Error
		}
		added = result.RowsAffected == 1
		return nil
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

func (r *progressRepo) MarkCompleted(ctx context.Context, moduleID, userID string, at time.Time) (bool, error) {
	var transitioned bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 仅靠作业达到 100 的学习者可能还没有进度行
		if err := ensureProgressRow(tx, moduleID, userID, at); err != nil {
			return err
		}

		result := tx.Model(&model.ModuleProgress{}).
			Where("module_id = ? AND user_id = ? AND completed_at IS NULL", moduleID, userID).
			Updates(map[string]interface{}{
				"completed_at": at,
				"updated_at":   at,
			})
		if result.Error != nil {
			return result.Error
		}
		transitioned = result.RowsAffected == 1
		return nil
	})
	if err != nil {
		return false, err
	}
	return transitioned, nil
}

func (r *progressRepo) ListCompleted(ctx context.Context, userID string, moduleIDs []string) (map[string]time.Time, error) {
	completed := make(map[string]time.Time)
	if len(moduleIDs) == 0 {
		return completed, nil
	}
	var rows []model.ModuleProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND module_id IN ? AND completed_at IS NOT NULL", userID, moduleIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		completed[row.ModuleID] = *row.CompletedAt
	}
	return completed, nil
}

// ensureProgressRow 进度行不存在时创建，已存在则不做任何修改
func ensureProgressRow(tx *gorm.DB, moduleID, userID string, at time.Time) error {
	progress := model.ModuleProgress{
		ModuleID:  moduleID,
		UserID:    userID,
		CreatedAt: at,
		UpdatedAt: at,
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&progress).Error
}
