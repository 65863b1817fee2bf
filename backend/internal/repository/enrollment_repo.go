package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"learnhub/backend/internal/model"
)

// EnrollmentRepository 选课数据访问接口
type EnrollmentRepository interface {
	// Create 幂等选课，返回是否新建
	Create(ctx context.Context, enrollment *model.CourseEnrollment) (bool, error)
	Get(ctx context.Context, courseID, userID string) (*model.CourseEnrollment, error)
	ListByCourse(ctx context.Context, courseID, role string) ([]model.CourseEnrollment, error)
	ListByUser(ctx context.Context, userID string) ([]model.CourseEnrollment, error)
	Delete(ctx context.Context, courseID, userID string) error
}

type enrollmentRepo struct {
	db *gorm.DB
}

// NewEnrollmentRepo 创建 EnrollmentRepository 实例
func NewEnrollmentRepo(db *gorm.DB) EnrollmentRepository {
	return &enrollmentRepo{db: db}
}

func (r *enrollmentRepo) Create(ctx context.Context, enrollment *model.CourseEnrollment) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(enrollment)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *enrollmentRepo) Get(ctx context.Context, courseID, userID string) (*model.CourseEnrollment, error) {
	var enrollment model.CourseEnrollment
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *enrollmentRepo) ListByCourse(ctx context.Context, courseID, role string) ([]model.CourseEnrollment, error) {
	var enrollments []model.CourseEnrollment
	query := r.db.WithContext(ctx).
		Preload("User").
		Where("course_id = ?", courseID)
	if role != "" {
		query = query.Where("role = ?", role)
	}
	err := query.Order("enrolled_at ASC").Find(&enrollments).Error
	return enrollments, err
}

func (r *enrollmentRepo) ListByUser(ctx context.Context, userID string) ([]model.CourseEnrollment, error) {
	var enrollments []model.CourseEnrollment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("enrolled_at ASC").
		Find(&enrollments).Error
	return enrollments, err
}

func (r *enrollmentRepo) Delete(ctx context.Context, courseID, userID string) error {
	return r.db.WithContext(ctx).
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Delete(&model.CourseEnrollment{}).Error
}
