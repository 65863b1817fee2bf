package repository

import (
	"context"

	"gorm.io/gorm"

	"learnhub/backend/internal/model"
	pkgerrors "learnhub/backend/pkg/errors"
)

// GradeRepository 成绩数据访问接口
type GradeRepository interface {
	Create(ctx context.Context, grade *model.Grade) error
	GetBySubmission(ctx context.Context, submissionID string) (*model.Grade, error)
	// Update 乐观锁更新：grade.Version 为客户端读到的版本，成功后递增
	Update(ctx context.Context, grade *model.Grade) error
	ListBySubmissions(ctx context.Context, submissionIDs []string) ([]model.Grade, error)
}

type gradeRepo struct {
	db *gorm.DB
}

// NewGradeRepo 创建 GradeRepository 实例
func NewGradeRepo(db *gorm.DB) GradeRepository {
	return &gradeRepo{db: db}
}

func (r *gradeRepo) Create(ctx context.Context, grade *model.Grade) error {
	if grade.Version == 0 {
		grade.Version = 1
	}
	return r.db.WithContext(ctx).Create(grade).Error
}

func (r *gradeRepo) GetBySubmission(ctx context.Context, submissionID string) (*model.Grade, error) {
	var grade model.Grade
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		First(&grade).Error
	if err != nil {
		return nil, err
	}
	return &grade, nil
}

func (r *gradeRepo) Update(ctx context.Context, grade *model.Grade) error {
	oldVersion := grade.Version
	result := r.db.WithContext(ctx).
		Model(&model.Grade{}).
		Where("grade_id = ? AND version = ?", grade.GradeID, oldVersion).
		Updates(map[string]interface{}{
			"points":    grade.Points,
			"feedback":  grade.Feedback,
			"graded_by": grade.GradedBy,
			"graded_at": grade.GradedAt,
			"version":   oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	grade.Version = oldVersion + 1
	return nil
}

func (r *gradeRepo) ListBySubmissions(ctx context.Context, submissionIDs []string) ([]model.Grade, error) {
	if len(submissionIDs) == 0 {
		return nil, nil
	}
	var grades []model.Grade
	err := r.db.WithContext(ctx).
		Where("submission_id IN ?", submissionIDs).
		Find(&grades).Error
	return grades, err
}
