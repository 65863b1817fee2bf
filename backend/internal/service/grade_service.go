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
	pkgerrors "learnhub/backend/pkg/errors"
)

// ── 评分业务错误 ──

var (
	ErrGradePointsInvalid   = errors.New("分数超出作业满分范围")
	ErrGradeVersionRequired = errors.New("修改已有评分需提供 version")
)

// GradeService 评分与绩点业务接口
type GradeService interface {
	// GradeSubmission 首次评分直接创建；修改评分使用乐观锁
	GradeSubmission(ctx context.Context, submissionID string, req *dto.GradeRequest, callerID, callerRole string) (*dto.GradeResponse, error)
	CourseGrade(ctx context.Context, courseID, studentID, callerID, callerRole string) (*dto.CourseGradeResponse, error)
	// Transcript 学分加权 GPA，仅统计有已评分作业的课程
	Transcript(ctx context.Context, studentID string) (*dto.TranscriptResponse, error)
}

type gradeService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewGradeService 创建 GradeService 实例
func NewGradeService(repo *repository.Repository, logger *zap.Logger) GradeService {
	return &gradeService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ────────────────────── GradeSubmission ──────────────────────

func (s *gradeService) GradeSubmission(ctx context.Context, submissionID string, req *dto.GradeRequest, callerID, callerRole string) (*dto.GradeResponse, error) {
	sub, err := s.repo.Submission.GetByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		s.logger.Error("查询提交记录失败", zap.String("submission_id", submissionID), zap.Error(err))
		return nil, err
	}
	assignment, err := loadAssignment(ctx, s.repo, s.logger, sub.AssignmentID)
	if err != nil {
		return nil, err
	}
	if _, err := loadManagedCourse(ctx, s.repo, s.logger, assignment.CourseID, callerID, callerRole); err != nil {
		return nil, err
	}

	points := *req.Points
	if points < 0 || points > assignment.MaxPoints {
		return nil, ErrGradePointsInvalid
	}

	grade, err := s.repo.Grade.GetBySubmission(ctx, submissionID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		grade = &model.Grade{
			SubmissionID: submissionID,
			Points:       points,
			Feedback:     req.Feedback,
			GradedBy:     callerID,
			GradedAt:     s.now(),
		}
		if err := s.repo.Grade.Create(ctx, grade); err != nil {
			// 并发首次评分：另一方已创建
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, pkgerrors.ErrOptimisticLock
			}
			s.logger.Error("创建评分失败", zap.String("submission_id", submissionID), zap.Error(err))
			return nil, err
		}
	case err != nil:
		s.logger.Error("查询评分失败", zap.String("submission_id", submissionID), zap.Error(err))
		return nil, err
	default:
		if req.Version == nil {
			return nil, ErrGradeVersionRequired
		}
		grade.Version = *req.Version
		grade.Points = points
		grade.Feedback = req.Feedback
		grade.GradedBy = callerID
		grade.GradedAt = s.now()
		if err := s.repo.Grade.Update(ctx, grade); err != nil {
			if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
				s.logger.Error("更新评分失败", zap.String("submission_id", submissionID), zap.Error(err))
			}
			return nil, err
		}
	}

	return toGradeResponse(grade), nil
}

// ────────────────────── CourseGrade ──────────────────────

func (s *gradeService) CourseGrade(ctx context.Context, courseID, studentID, callerID, callerRole string) (*dto.CourseGradeResponse, error) {
	course, err := loadCourse(ctx, s.repo, s.logger, courseID)
	if err != nil {
		return nil, err
	}
	if studentID != callerID && !canManageCourse(course, callerID, callerRole) {
		return nil, ErrCourseForbidden
	}

	data, err := loadCourseGradeData(ctx, s.repo, courseID, studentID)
	if err != nil {
		s.logger.Error("加载课程成绩失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	return toCourseGradeResponse(course, data.scoreFor(studentID)), nil
}

// ────────────────────── Transcript ──────────────────────

func (s *gradeService) Transcript(ctx context.Context, studentID string) (*dto.TranscriptResponse, error) {
	enrollments, err := s.repo.Enrollment.ListByUser(ctx, studentID)
	if err != nil {
		s.logger.Error("查询选课记录失败", zap.String("user_id", studentID), zap.Error(err))
		return nil, err
	}

	courseIDs := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		if e.Role == model.RoleStudent {
			courseIDs = append(courseIDs, e.CourseID)
		}
	}
	courses, err := s.repo.Course.ListByIDs(ctx, courseIDs)
	if err != nil {
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}

	transcript := &dto.TranscriptResponse{
		UserID:  studentID,
		Courses: make([]dto.CourseGradeResponse, 0, len(courses)),
	}
	var weighted float64
	for i := range courses {
		data, err := loadCourseGradeData(ctx, s.repo, courses[i].CourseID, studentID)
		if err != nil {
			s.logger.Error("加载课程成绩失败", zap.String("course_id", courses[i].CourseID), zap.Error(err))
			return nil, err
		}
		cg := toCourseGradeResponse(&courses[i], data.scoreFor(studentID))
		transcript.Courses = append(transcript.Courses, *cg)

		if cg.GradePoints != nil && courses[i].Credits > 0 {
			weighted += *cg.GradePoints * float64(courses[i].Credits)
			transcript.TotalCredits += courses[i].Credits
		}
	}
	if transcript.TotalCredits > 0 {
		gpa := round2(weighted / float64(transcript.TotalCredits))
		transcript.GPA = &gpa
	}
	return transcript, nil
}

// ── 辅助 ──

func toGradeResponse(grade *model.Grade) *dto.GradeResponse {
	return &dto.GradeResponse{
		ID:           grade.GradeID,
		SubmissionID: grade.SubmissionID,
		Points:       grade.Points,
		Feedback:     grade.Feedback,
		GradedBy:     grade.GradedBy,
		GradedAt:     formatTime(grade.GradedAt),
		Version:      grade.Version,
	}
}

func toCourseGradeResponse(course *model.Course, score *courseScore) *dto.CourseGradeResponse {
	resp := &dto.CourseGradeResponse{
		CourseID:       course.CourseID,
		CourseTitle:    course.Title,
		Credits:        course.Credits,
		EarnedPoints:   round2(score.earned),
		PossiblePoints: round2(score.possible),
		GradedCount:    score.graded,
		Percentage:     score.percentage(),
	}
	if resp.Percentage != nil {
		letter, points := letterGrade(*resp.Percentage)
		resp.Letter = letter
		resp.GradePoints = &points
	}
	return resp
}
