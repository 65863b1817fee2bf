package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"learnhub/backend/internal/model"
	"learnhub/backend/internal/repository"
)

// ── 跨模块业务错误 ──

var (
	ErrCourseNotFound  = errors.New("课程不存在")
	ErrCourseForbidden = errors.New("无权管理该课程")
	ErrModuleNotFound  = errors.New("模块不存在")
)

const timeLayout = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// parseTimePtr 解析 RFC3339 时间，空字符串返回 nil
func parseTimePtr(value *string) (*time.Time, bool) {
	if value == nil || *value == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, *value)
	if err != nil {
		return nil, false
	}
	t = t.UTC()
	return &t, true
}

// canManageCourse 课程创建者与管理员可管理课程
func canManageCourse(course *model.Course, callerID, callerRole string) bool {
	return callerRole == model.RoleAdmin || course.OwnerID == callerID
}

// loadCourse 查询课程并映射不存在错误
func loadCourse(ctx context.Context, repo *repository.Repository, logger *zap.Logger, courseID string) (*model.Course, error) {
	course, err := repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		logger.Error("查询课程失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	return course, nil
}

// loadManagedCourse 查询课程并校验调用者的管理权限
func loadManagedCourse(ctx context.Context, repo *repository.Repository, logger *zap.Logger, courseID, callerID, callerRole string) (*model.Course, error) {
	course, err := loadCourse(ctx, repo, logger, courseID)
	if err != nil {
		return nil, err
	}
	if !canManageCourse(course, callerID, callerRole) {
		return nil, ErrCourseForbidden
	}
	return course, nil
}

// loadModule 查询模块并映射不存在错误
func loadModule(ctx context.Context, repo *repository.Repository, logger *zap.Logger, moduleID string) (*model.Module, error) {
	module, err := repo.Module.GetByID(ctx, moduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrModuleNotFound
		}
		logger.Error("查询模块失败", zap.String("module_id", moduleID), zap.Error(err))
		return nil, err
	}
	return module, nil
}
