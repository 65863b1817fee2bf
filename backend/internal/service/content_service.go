package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"learnhub/backend/internal/dto"
	"learnhub/backend/internal/model"
	"learnhub/backend/internal/repository"
)

// ── 内容业务错误 ──

var ErrContentNotFound = errors.New("内容不存在")

// ContentService 模块内容业务接口
type ContentService interface {
	Create(ctx context.Context, moduleID string, req *dto.CreateContentRequest, callerID, callerRole string) (*dto.ContentResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ContentResponse, error)
	ListByModule(ctx context.Context, moduleID, callerID, callerRole string) ([]dto.ContentResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateContentRequest, callerID, callerRole string) (*dto.ContentResponse, error)
	Delete(ctx context.Context, id, callerID, callerRole string) error
	// GetInModule 校验内容属于该模块且已发布（学习端浏览前调用）
	GetInModule(ctx context.Context, moduleID, contentID string) (*model.ContentItem, error)
}

type contentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewContentService 创建 ContentService 实例
func NewContentService(repo *repository.Repository, logger *zap.Logger) ContentService {
	return &contentService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *contentService) Create(ctx context.Context, moduleID string, req *dto.CreateContentRequest, callerID, callerRole string) (*dto.ContentResponse, error) {
	if _, err := s.managedModule(ctx, moduleID, callerID, callerRole); err != nil {
		return nil, err
	}

	item := &model.ContentItem{
		ModuleID:    moduleID,
		Title:       req.Title,
		ContentType: req.ContentType,
		Body:        req.Body,
		URL:         req.URL,
		OrderIndex:  req.OrderIndex,
		IsPublished: req.IsPublished,
	}
	item.CreatedBy = &callerID
	item.UpdatedBy = &callerID

	if err := s.repo.Content.Create(ctx, item); err != nil {
		s.logger.Error("创建内容失败", zap.String("module_id", moduleID), zap.Error(err))
		return nil, err
	}
	return toContentResponse(item), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *contentService) GetByID(ctx context.Context, id string) (*dto.ContentResponse, error) {
	item, err := s.loadContent(ctx, id)
	if err != nil {
		return nil, err
	}
	return toContentResponse(item), nil
}

// ────────────────────── ListByModule ──────────────────────

func (s *contentService) ListByModule(ctx context.Context, moduleID, callerID, callerRole string) ([]dto.ContentResponse, error) {
	module, err := loadModule(ctx, s.repo, s.logger, moduleID)
	if err != nil {
		return nil, err
	}
	course, err := loadCourse(ctx, s.repo, s.logger, module.CourseID)
	if err != nil {
		return nil, err
	}

	items, err := s.repo.Content.ListByModule(ctx, moduleID, !canManageCourse(course, callerID, callerRole))
	if err != nil {
		s.logger.Error("列出内容失败", zap.String("module_id", moduleID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ContentResponse, 0, len(items))
	for i := range items {
		result = append(result, *toContentResponse(&items[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *contentService) Update(ctx context.Context, id string, req *dto.UpdateContentRequest, callerID, callerRole string) (*dto.ContentResponse, error) {
	item, err := s.loadContent(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.managedModule(ctx, item.ModuleID, callerID, callerRole); err != nil {
		return nil, err
	}

	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.ContentType != nil {
		item.ContentType = *req.ContentType
	}
	if req.Body != nil {
		item.Body = *req.Body
	}
	if req.URL != nil {
		item.URL = *req.URL
	}
	if req.OrderIndex != nil {
		item.OrderIndex = *req.OrderIndex
	}
	if req.IsPublished != nil {
		// 下架不清理学习者已浏览记录
		item.IsPublished = *req.IsPublished
	}
	item.UpdatedBy = &callerID

	if err := s.repo.Content.Update(ctx, item); err != nil {
		s.logger.Error("更新内容失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toContentResponse(item), nil
}

// ────────────────────── Delete ──────────────────────

func (s *contentService) Delete(ctx context.Context, id, callerID, callerRole string) error {
	item, err := s.loadContent(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.managedModule(ctx, item.ModuleID, callerID, callerRole); err != nil {
		return err
	}
	if err := s.repo.Content.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除内容失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── GetInModule ──────────────────────

func (s *contentService) GetInModule(ctx context.Context, moduleID, contentID string) (*model.ContentItem, error) {
	item, err := s.loadContent(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if item.ModuleID != moduleID || !item.IsPublished {
		return nil, ErrContentNotFound
	}
	return item, nil
}

// ── 辅助 ──

func (s *contentService) loadContent(ctx context.Context, id string) (*model.ContentItem, error) {
	item, err := s.repo.Content.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		s.logger.Error("查询内容失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return item, nil
}

func (s *contentService) managedModule(ctx context.Context, moduleID, callerID, callerRole string) (*model.Module, error) {
	module, err := loadModule(ctx, s.repo, s.logger, moduleID)
	if err != nil {
		return nil, err
	}
	if _, err := loadManagedCourse(ctx, s.repo, s.logger, module.CourseID, callerID, callerRole); err != nil {
		return nil, err
	}
	return module, nil
}

func toContentResponse(item *model.ContentItem) *dto.ContentResponse {
	return &dto.ContentResponse{
		ID:          item.ContentItemID,
		ModuleID:    item.ModuleID,
		Title:       item.Title,
		ContentType: item.ContentType,
		Body:        item.Body,
		URL:         item.URL,
		OrderIndex:  item.OrderIndex,
		IsPublished: item.IsPublished,
		CreatedAt:   formatTime(item.CreatedAt),
		UpdatedAt:   formatTime(item.UpdatedAt),
	}
}
