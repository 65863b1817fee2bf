package service

import (
	"context"

	"go.uber.org/zap"

	"learnhub/backend/internal/dto"
	"learnhub/backend/internal/model"
	"learnhub/backend/internal/repository"
)

// CourseService 课程业务接口
type CourseService interface {
	Create(ctx context.Context, req *dto.CreateCourseRequest, callerID string) (*dto.CourseResponse, error)
	GetByID(ctx context.Context, id, callerID, callerRole string) (*dto.CourseResponse, error)
	List(ctx context.Context, req *dto.CourseListRequest, callerID, callerRole string) ([]dto.CourseResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateCourseRequest, callerID, callerRole string) (*dto.CourseResponse, error)
	Delete(ctx context.Context, id, callerID, callerRole string) error
}

type courseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *courseService) Create(ctx context.Context, req *dto.CreateCourseRequest, callerID string) (*dto.CourseResponse, error) {
	course := &model.Course{
		Title:       req.Title,
		Description: req.Description,
		OwnerID:     callerID,
		Credits:     req.Credits,
		IsPublished: req.IsPublished,
	}
	if course.Credits == 0 {
		course.Credits = 3
	}
	course.CreatedBy = &callerID
	course.UpdatedBy = &callerID

	if err := s.repo.Course.Create(ctx, course); err != nil {
		s.logger.Error("创建课程失败", zap.Error(err))
		return nil, err
	}

	return toCourseResponse(course), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *courseService) GetByID(ctx context.Context, id, callerID, callerRole string) (*dto.CourseResponse, error) {
	course, err := loadCourse(ctx, s.repo, s.logger, id)
	if err != nil {
		return nil, err
	}
	// 未发布课程对非管理者不可见
	if !course.IsPublished && !canManageCourse(course, callerID, callerRole) {
		return nil, ErrCourseNotFound
	}
	return toCourseResponse(course), nil
}

// ────────────────────── List ──────────────────────

func (s *courseService) List(ctx context.Context, req *dto.CourseListRequest, callerID, callerRole string) ([]dto.CourseResponse, int64, error) {
	filter := repository.CourseFilter{
		Offset: req.GetOffset(),
		Limit:  req.GetPageSize(),
	}
	switch {
	case req.Mine:
		filter.OwnerID = callerID
	case callerRole == model.RoleAdmin:
		// 管理员可见全部课程
	default:
		filter.OwnerID = callerID
		filter.PublishedOnly = true
	}

	courses, total, err := s.repo.Course.List(ctx, filter)
	if err != nil {
		s.logger.Error("列出课程失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		result = append(result, *toCourseResponse(&courses[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *courseService) Update(ctx context.Context, id string, req *dto.UpdateCourseRequest, callerID, callerRole string) (*dto.CourseResponse, error) {
	course, err := loadManagedCourse(ctx, s.repo, s.logger, id, callerID, callerRole)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Credits != nil {
		course.Credits = *req.Credits
	}
	if req.IsPublished != nil {
		course.IsPublished = *req.IsPublished
	}
	course.UpdatedBy = &callerID

	if err := s.repo.Course.Update(ctx, course); err != nil {
		s.logger.Error("更新课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toCourseResponse(course), nil
}

// ────────────────────── Delete ──────────────────────

func (s *courseService) Delete(ctx context.Context, id, callerID, callerRole string) error {
	if _, err := loadManagedCourse(ctx, s.repo, s.logger, id, callerID, callerRole); err != nil {
		return err
	}
	if err := s.repo.Course.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除课程失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 辅助 ──

func toCourseResponse(course *model.Course) *dto.CourseResponse {
	return &dto.CourseResponse{
		ID:          course.CourseID,
		Title:       course.Title,
		Description: course.Description,
		OwnerID:     course.OwnerID,
		Credits:     course.Credits,
		IsPublished: course.IsPublished,
		CreatedAt:   formatTime(course.CreatedAt),
		UpdatedAt:   formatTime(course.UpdatedAt),
	}
}
