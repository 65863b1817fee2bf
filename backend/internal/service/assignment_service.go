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

// ── 作业业务错误 ──

var (
	ErrAssignmentNotFound   = errors.New("作业不存在")
	ErrAssignmentDueInvalid = errors.New("截止时间格式错误，应为 RFC3339")
)

// AssignmentService 作业业务接口
type AssignmentService interface {
	Create(ctx context.Context, moduleID string, req *dto.CreateAssignmentRequest, callerID, callerRole string) (*dto.AssignmentResponse, error)
	GetByID(ctx context.Context, id string) (*dto.AssignmentResponse, error)
	ListByModule(ctx context.Context, moduleID, callerID, callerRole string) ([]dto.AssignmentResponse, error)
	ListByCourse(ctx context.Context, courseID, callerID, callerRole string) ([]dto.AssignmentResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateAssignmentRequest, callerID, callerRole string) (*dto.AssignmentResponse, error)
	Delete(ctx context.Context, id, callerID, callerRole string) error
}

type assignmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAssignmentService 创建 AssignmentService 实例
func NewAssignmentService(repo *repository.Repository, logger *zap.Logger) AssignmentService {
	return &assignmentService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *assignmentService) Create(ctx context.Context, moduleID string, req *dto.CreateAssignmentRequest, callerID, callerRole string) (*dto.AssignmentResponse, error) {
	module, err := loadModule(ctx, s.repo, s.logger, moduleID)
	if err != nil {
		return nil, err
	}
	if _, err := loadManagedCourse(ctx, s.repo, s.logger, module.CourseID, callerID, callerRole); err != nil {
		return nil, err
	}

	dueAt, ok := parseTimePtr(req.DueAt)
	if !ok {
		return nil, ErrAssignmentDueInvalid
	}

	assignment := &model.Assignment{
		ModuleID:    moduleID,
		CourseID:    module.CourseID,
		Title:       req.Title,
		Description: req.Description,
		DueAt:       dueAt,
		MaxPoints:   100,
		IsPublished: req.IsPublished,
	}
	if req.MaxPoints != nil {
		assignment.MaxPoints = *req.MaxPoints
	}
	assignment.CreatedBy = &callerID
	assignment.UpdatedBy = &callerID

	if err := s.repo.Assignment.Create(ctx, assignment); err != nil {
		s.logger.Error("创建作业失败", zap.String("module_id", moduleID), zap.Error(err))
		return nil, err
	}
	return toAssignmentResponse(assignment), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *assignmentService) GetByID(ctx context.Context, id string) (*dto.AssignmentResponse, error) {
	assignment, err := loadAssignment(ctx, s.repo, s.logger, id)
	if err != nil {
		return nil, err
	}
	return toAssignmentResponse(assignment), nil
}

// ────────────────────── ListByModule ──────────────────────

func (s *assignmentService) ListByModule(ctx context.Context, moduleID, callerID, callerRole string) ([]dto.AssignmentResponse, error) {
	module, err := loadModule(ctx, s.repo, s.logger, moduleID)
	if err != nil {
		return nil, err
	}
	course, err := loadCourse(ctx, s.repo, s.logger, module.CourseID)
	if err != nil {
		return nil, err
	}

	assignments, err := s.repo.Assignment.ListByModule(ctx, moduleID, !canManageCourse(course, callerID, callerRole))
	if err != nil {
		s.logger.Error("列出模块作业失败", zap.String("module_id", moduleID), zap.Error(err))
		return nil, err
	}
	return toAssignmentResponses(assignments), nil
}

// ────────────────────── ListByCourse ──────────────────────

func (s *assignmentService) ListByCourse(ctx context.Context, courseID, callerID, callerRole string) ([]dto.AssignmentResponse, error) {
	course, err := loadCourse(ctx, s.repo, s.logger, courseID)
	if err != nil {
		return nil, err
	}

	assignments, err := s.repo.Assignment.ListByCourse(ctx, courseID, !canManageCourse(course, callerID, callerRole))
	if err != nil {
		s.logger.Error("列出课程作业失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	return toAssignmentResponses(assignments), nil
}

// ────────────────────── Update ──────────────────────

func (s *assignmentService) Update(ctx context.Context, id string, req *dto.UpdateAssignmentRequest, callerID, callerRole string) (*dto.AssignmentResponse, error) {
	assignment, err := loadAssignment(ctx, s.repo, s.logger, id)
	if err != nil {
		return nil, err
	}
	if _, err := loadManagedCourse(ctx, s.repo, s.logger, assignment.CourseID, callerID, callerRole); err != nil {
		return nil, err
	}

	if req.Title != nil {
		assignment.Title = *req.Title
	}
	if req.Description != nil {
		assignment.Description = *req.Description
	}
	if req.ClearDueAt {
		assignment.DueAt = nil
	} else if req.DueAt != nil {
		dueAt, ok := parseTimePtr(req.DueAt)
		if !ok {
			return nil, ErrAssignmentDueInvalid
		}
		assignment.DueAt = dueAt
	}
	if req.MaxPoints != nil {
		assignment.MaxPoints = *req.MaxPoints
	}
	if req.IsPublished != nil {
		assignment.IsPublished = *req.IsPublished
	}
	assignment.UpdatedBy = &callerID

	if err := s.repo.Assignment.Update(ctx, assignment); err != nil {
		s.logger.Error("更新作业失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toAssignmentResponse(assignment), nil
}

// ────────────────────── Delete ──────────────────────

func (s *assignmentService) Delete(ctx context.Context, id, callerID, callerRole string) error {
	assignment, err := loadAssignment(ctx, s.repo, s.logger, id)
	if err != nil {
		return err
	}
	if _, err := loadManagedCourse(ctx, s.repo, s.logger, assignment.CourseID, callerID, callerRole); err != nil {
		return err
	}
	if err := s.repo.Assignment.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除作业失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 辅助 ──

func loadAssignment(ctx context.Context, repo *repository.Repository, logger *zap.Logger, id string) (*model.Assignment, error) {
	assignment, err := repo.Assignment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		logger.Error("查询作业失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return assignment, nil
}

func toAssignmentResponse(a *model.Assignment) *dto.AssignmentResponse {
	return &dto.AssignmentResponse{
		ID:          a.AssignmentID,
		ModuleID:    a.ModuleID,
		CourseID:    a.CourseID,
		Title:       a.Title,
		Description: a.Description,
		DueAt:       formatTimePtr(a.DueAt),
		MaxPoints:   a.MaxPoints,
		IsPublished: a.IsPublished,
		CreatedAt:   formatTime(a.CreatedAt),
		UpdatedAt:   formatTime(a.UpdatedAt),
	}
}

func toAssignmentResponses(assignments []model.Assignment) []dto.AssignmentResponse {
	result := make([]dto.AssignmentResponse, 0, len(assignments))
	for i := range assignments {
		result = append(result, *toAssignmentResponse(&assignments[i]))
	}
	return result
}
