package service

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"learnhub/backend/internal/model"
	"learnhub/backend/internal/repository"
)

// CalendarService 作业截止日历
type CalendarService interface {
	// CourseDeadlines 导出课程已发布作业的截止时间（iCalendar），返回内容与建议文件名
	CourseDeadlines(ctx context.Context, courseID, userID, userRole string) (string, string, error)
}

type calendarService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewCalendarService 创建 CalendarService 实例
func NewCalendarService(repo *repository.Repository, logger *zap.Logger) CalendarService {
	return &calendarService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *calendarService) CourseDeadlines(ctx context.Context, courseID, userID, userRole string) (string, string, error) {
	course, err := loadCourse(ctx, s.repo, s.logger, courseID)
	if err != nil {
		return "", "", err
	}

	learner := !canManageCourse(course, userID, userRole)
	if learner {
		if !course.IsPublished {
			return "", "", ErrCourseNotFound
		}
		if _, err := s.repo.Enrollment.Get(ctx, courseID, userID); err != nil {
			return "", "", ErrNotEnrolled
		}
	}

	assignments, err := s.repo.Assignment.ListByCourse(ctx, courseID, true)
	if err != nil {
		s.logger.Error("列出课程作业失败", zap.String("course_id", courseID), zap.Error(err))
		return "", "", err
	}

	// 学习者日历标注已提交的作业
	submitted := make(map[string]bool)
	if learner {
		ids := make([]string, 0, len(assignments))
		for _, a := range assignments {
			ids = append(ids, a.AssignmentID)
		}
		subs, err := s.repo.Submission.ListByAssignments(ctx, ids, userID)
		if err != nil {
			s.logger.Error("查询提交记录失败", zap.String("course_id", courseID), zap.Error(err))
			return "", "", err
		}
		for _, sub := range subs {
			submitted[sub.AssignmentID] = true
		}
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//learnhub//deadlines//CN")
	cal.SetXWRCalName(fmt.Sprintf("%s 作业截止", course.Title))
	cal.SetXWRTimezone("UTC")

	stamp := s.now()
	for i := range assignments {
		a := &assignments[i]
		if a.DueAt == nil {
			continue
		}
		addDeadlineEvent(cal, course, a, submitted[a.AssignmentID], stamp)
	}

	filename := fmt.Sprintf("%s_deadlines.ics", course.Title)
	return cal.Serialize(), filename, nil
}

func addDeadlineEvent(cal *ics.Calendar, course *model.Course, a *model.Assignment, done bool, stamp time.Time) {
	event := cal.AddEvent(a.AssignmentID + "@learnhub")
	event.SetDtStampTime(stamp)
	event.SetModifiedAt(a.UpdatedAt)
	event.SetStartAt(*a.DueAt)
	event.SetEndAt(*a.DueAt)

	summary := fmt.Sprintf("[%s] %s 截止", course.Title, a.Title)
	if done {
		summary += "（已提交）"
	}
	event.SetSummary(summary)

	desc := fmt.Sprintf("满分 %g", a.MaxPoints)
	if a.Module != nil {
		desc = fmt.Sprintf("模块：%s\n%s", a.Module.Title, desc)
	}
	event.SetDescription(desc)
}
