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

// ── 模块业务错误 ──

var ErrModuleOrderConflict = errors.New("同一课程内模块序号已被占用")

// ModuleService 课程模块业务接口
type ModuleService interface {
	Create(ctx context.Context, courseID string, req *dto.CreateModuleRequest, callerID, callerRole string) (*dto.ModuleResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ModuleResponse, error)
	ListByCourse(ctx context.Context, courseID, callerID, callerRole string) ([]dto.ModuleResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateModuleRequest, callerID, callerRole string) (*dto.ModuleResponse, error)
	Delete(ctx context.Context, id, callerID, callerRole string) error
}

type moduleService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewModuleService 创建 ModuleService 实例
func NewModuleService(repo *repository.Repository, logger *zap.Logger) ModuleService {
	return &moduleService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *moduleService) Create(ctx context.Context, courseID string, req *dto.CreateModuleRequest, callerID, callerRole string) (*dto.ModuleResponse, error) {
	if _, err := loadManagedCourse(ctx, s.repo, s.logger, courseID, callerID, callerRole); err != nil {
		return nil, err
	}

	var orderIndex int
	if req.OrderIndex != nil {
		orderIndex = *req.OrderIndex
	} else {
		maxIndex, err := s.repo.Module.MaxOrderIndex(ctx, courseID)
		if err != nil {
			s.logger.Error("查询模块最大序号失败", zap.String("course_id", courseID), zap.Error(err))
			return nil, err
		}
		orderIndex = maxIndex + 1
	}

	module := &model.Module{
		CourseID:         courseID,
		Title:            req.Title,
		Description:      req.Description,
		OrderIndex:       orderIndex,
		IsPublished:      req.IsPublished,
		RequiresPrevious: req.RequiresPrevious,
	}
	module.CreatedBy = &callerID
	module.UpdatedBy = &callerID

	if err := s.repo.Module.Create(ctx, module); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrModuleOrderConflict
		}
		s.logger.Error("创建模块失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	return toModuleResponse(module), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *moduleService) GetByID(ctx context.Context, id string) (*dto.ModuleResponse, error) {
	module, err := loadModule(ctx, s.repo, s.logger, id)
	if err != nil {
		return nil, err
	}
	return toModuleResponse(module), nil
}

// ────────────────────── ListByCourse ──────────────────────

func (s *moduleService) ListByCourse(ctx context.Context, courseID, callerID, callerRole string) ([]dto.ModuleResponse, error) {
	course, err := loadCourse(ctx, s.repo, s.logger, courseID)
	if err != nil {
		return nil, err
	}

	// 管理者可见草稿模块
	publishedOnly := !canManageCourse(course, callerID, callerRole)
	modules, err := s.repo.Module.ListByCourse(ctx, courseID, publishedOnly)
	if err != nil {
		s.logger.Error("列出模块失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ModuleResponse, 0, len(modules))
	for i := range modules {
		result = append(result, *toModuleResponse(&modules[i]))
	}
	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *moduleService) Update(ctx context.Context, id string, req *dto.UpdateModuleRequest, callerID, callerRole string) (*dto.ModuleResponse, error) {
	module, err := loadModule(ctx, s.repo, s.logger, id)
	if err != nil {
		return nil, err
	}
	if _, err := loadManagedCourse(ctx, s.repo, s.logger, module.CourseID, callerID, callerRole); err != nil {
		return nil, err
	}

	if req.Title != nil {
		module.Title = *req.Title
	}
	if req.Description != nil {
		module.Description = *req.Description
	}
	if req.OrderIndex != nil {
		module.OrderIndex = *req.OrderIndex
	}
	if req.IsPublished != nil {
		module.IsPublished = *req.IsPublished
	}
	if req.RequiresPrevious != nil {
		module.RequiresPrevious = *req.RequiresPrevious
	}
	module.UpdatedBy = &callerID

	if err := s.repo.Module.Update(ctx, module); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrModuleOrderConflict
		}
		s.logger.Error("更新模块失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toModuleResponse(module), nil
}

// ────────────────────── Delete ──────────────────────

// Delete 软删除；序号留下空洞，解锁按相对顺序查找不受影响
func (s *moduleService) Delete(ctx context.Context, id, callerID, callerRole string) error {
	module, err := loadModule(ctx, s.repo, s.logger, id)
	if err != nil {
		return err
	}
	if _, err := loadManagedCourse(ctx, s.repo, s.logger, module.CourseID, callerID, callerRole); err != nil {
		return err
	}
	if err := s.repo.Module.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除模块失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 辅助 ──

func toModuleResponse(module *model.Module) *dto.ModuleResponse {
	return &dto.ModuleResponse{
		ID:               module.ModuleID,
		CourseID:         module.CourseID,
		Title:            module.Title,
		Description:      module.Description,
		OrderIndex:       module.OrderIndex,
		IsPublished:      module.IsPublished,
		RequiresPrevious: module.RequiresPrevious,
		CreatedAt:        formatTime(module.CreatedAt),
		UpdatedAt:        formatTime(module.UpdatedAt),
	}
}
