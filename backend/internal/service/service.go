package service

import (
	"go.uber.org/zap"

	"learnhub/backend/config"
	"learnhub/backend/internal/repository"
	pkglogger "learnhub/backend/pkg/logger"
)

// Service 所有 Service 的聚合入口
type Service struct {
	User       UserService
	Course     CourseService
	Module     ModuleService
	Content    ContentService
	Assignment AssignmentService
	Progress   ProgressService
	Enrollment EnrollmentService
	Submission SubmissionService
	Grade      GradeService
	Gradebook  GradebookService
	Calendar   CalendarService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	logger *zap.Logger,
) *Service {
	progress := NewProgressService(&cfg.Progress, repo, pkglogger.ForComponent(logger, "progress"))
	enrollment := NewEnrollmentService(repo, progress, pkglogger.ForComponent(logger, "enrollment"))

	return &Service{
		User:       NewUserService(repo, logger),
		Course:     NewCourseService(repo, logger),
		Module:     NewModuleService(repo, logger),
		Content:    NewContentService(repo, logger),
		Assignment: NewAssignmentService(repo, logger),
		Progress:   progress,
		Enrollment: enrollment,
		Submission: NewSubmissionService(repo, enrollment, progress, logger),
		Grade:      NewGradeService(repo, logger),
		Gradebook:  NewGradebookService(repo, pkglogger.ForComponent(logger, "gradebook")),
		Calendar:   NewCalendarService(repo, logger),
	}
}
