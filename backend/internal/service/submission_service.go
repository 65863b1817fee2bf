package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"learnhub/backend/internal/dto"
	"learnhub/backend/internal/model"
	"learnhub/backend/internal/repository"
)

// ── 提交业务错误 ──

var ErrSubmissionNotFound = errors.New("提交记录不存在")

// SubmissionService 作业提交业务接口
type SubmissionService interface {
	// Submit 首次提交或重新提交，随后检测模块完成与解锁
	Submit(ctx context.Context, assignmentID string, req *dto.SubmitRequest, userID, userRole string) (*dto.SubmitResponse, error)
	GetMine(ctx context.Context, assignmentID, userID string) (*dto.SubmissionResponse, error)
	ListByAssignment(ctx context.Context, assignmentID, callerID, callerRole string) ([]dto.SubmissionResponse, error)
}

type submissionService struct {
	repo       *repository.Repository
	enrollment EnrollmentService
	progress   ProgressService
	logger     *zap.Logger
	now        func() time.Time
}

// NewSubmissionService 创建 SubmissionService 实例
func NewSubmissionService(repo *repository.Repository, enrollment EnrollmentService, progress ProgressService, logger *zap.Logger) SubmissionService {
	return &submissionService{
		repo:       repo,
		enrollment: enrollment,
		progress:   progress,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ────────────────────── Submit ──────────────────────

func (s *submissionService) Submit(ctx context.Context, assignmentID string, req *dto.SubmitRequest, userID, userRole string) (*dto.SubmitResponse, error) {
	assignment, err := loadAssignment(ctx, s.repo, s.logger, assignmentID)
	if err != nil {
		return nil, err
	}
	if !assignment.IsPublished {
		return nil, ErrAssignmentNotFound
	}
	if _, err := s.enrollment.CheckModuleAccess(ctx, assignment.ModuleID, userID, userRole); err != nil {
		return nil, err
	}

	now := s.now()
	sub := &model.Submission{
		AssignmentID: assignmentID,
		StudentID:    userID,
		Body:         req.Body,
		SubmittedAt:  now,
		IsLate:       assignment.IsPastDue(now),
		Attempt:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Submission.Upsert(ctx, sub); err != nil {
		s.logger.Error("保存作业提交失败",
			zap.String("assignment_id", assignmentID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}

	resp := &dto.SubmitResponse{Submission: *toSubmissionResponse(sub, nil)}

	// 提交已落库，完成检测失败只省略进度，由 /progress/check 补偿
	progress, err := s.progress.CheckAndUpdateModuleCompletion(ctx, assignment.ModuleID, userID)
	if err != nil {
		s.logger.Warn("提交后检测模块完成失败",
			zap.String("module_id", assignment.ModuleID),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return resp, nil
	}
	resp.Progress = progress
	return resp, nil
}

// ────────────────────── GetMine ──────────────────────

func (s *submissionService) GetMine(ctx context.Context, assignmentID, userID string) (*dto.SubmissionResponse, error) {
	sub, err := s.repo.Submission.GetByAssignmentAndStudent(ctx, assignmentID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		s.logger.Error("查询提交记录失败", zap.String("assignment_id", assignmentID), zap.Error(err))
		return nil, err
	}

	grade, err := s.repo.Grade.GetBySubmission(ctx, sub.SubmissionID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询评分失败", zap.String("submission_id", sub.SubmissionID), zap.Error(err))
		return nil, err
	}
	return toSubmissionResponse(sub, grade), nil
}

// ────────────────────── ListByAssignment ──────────────────────

func (s *submissionService) ListByAssignment(ctx context.Context, assignmentID, callerID, callerRole string) ([]dto.SubmissionResponse, error) {
	assignment, err := loadAssignment(ctx, s.repo, s.logger, assignmentID)
	if err != nil {
		return nil, err
	}
	if _, err := loadManagedCourse(ctx, s.repo, s.logger, assignment.CourseID, callerID, callerRole); err != nil {
		return nil, err
	}

	subs, err := s.repo.Submission.ListByAssignments(ctx, []string{assignmentID}, "")
	if err != nil {
		s.logger.Error("列出提交记录失败", zap.String("assignment_id", assignmentID), zap.Error(err))
		return nil, err
	}

	subIDs := make([]string, 0, len(subs))
	for _, sub := range subs {
		subIDs = append(subIDs, sub.SubmissionID)
	}
	grades, err := s.repo.Grade.ListBySubmissions(ctx, subIDs)
	if err != nil {
		s.logger.Error("查询评分失败", zap.String("assignment_id", assignmentID), zap.Error(err))
		return nil, err
	}
	gradeMap := make(map[string]*model.Grade, len(grades))
	for i := range grades {
		gradeMap[grades[i].SubmissionID] = &grades[i]
	}

	result := make([]dto.SubmissionResponse, 0, len(subs))
	for i := range subs {
		result = append(result, *toSubmissionResponse(&subs[i], gradeMap[subs[i].SubmissionID]))
	}
	return result, nil
}

// ── 辅助 ──

func toSubmissionResponse(sub *model.Submission, grade *model.Grade) *dto.SubmissionResponse {
	resp := &dto.SubmissionResponse{
		ID:           sub.SubmissionID,
		AssignmentID: sub.AssignmentID,
		StudentID:    sub.StudentID,
		Body:         sub.Body,
		SubmittedAt:  formatTime(sub.SubmittedAt),
		IsLate:       sub.IsLate,
		Attempt:      sub.Attempt,
	}
	if grade != nil {
		resp.Grade = toGradeResponse(grade)
	}
	return resp
}
