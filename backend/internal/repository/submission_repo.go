package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"learnhub/backend/internal/model"
)

// SubmissionRepository 作业提交数据访问接口
type SubmissionRepository interface {
	// Upsert 首次提交插入；重复提交覆盖内容并递增 attempt。返回后 sub 为数据库中的最新行
	Upsert(ctx context.Context, sub *model.Submission) error
	GetByID(ctx context.Context, id string) (*model.Submission, error)
	GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID string) (*model.Submission, error)
	// CountSubmitted 统计学生在给定作业集合中已提交的作业数（按作业去重）
	CountSubmitted(ctx context.Context, assignmentIDs []string, studentID string) (int64, error)
	// ListByAssignments studentID 为空时返回所有学生的提交
	ListByAssignments(ctx context.Context, assignmentIDs []string, studentID string) ([]model.Submission, error)
}

type submissionRepo struct {
	db *gorm.DB
}

// NewSubmissionRepo 创建 SubmissionRepository 实例
func NewSubmissionRepo(db *gorm.DB) SubmissionRepository {
	return &submissionRepo{db: db}
}

func (r *submissionRepo) Upsert(ctx context.Context, sub *model.Submission) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "assignment_id"}, {Name: "student_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"body":         gorm.Expr("excluded.body"),
				"submitted_at": gorm.Expr("excluded.submitted_at"),
				"is_late":      gorm.Expr("excluded.is_late"),
				"attempt":      gorm.Expr("submissions.attempt + 1"),
				"updated_at":   gorm.Expr("excluded.updated_at"),
			}),
		}).Create(sub).Error
		if err != nil {
			return err
		}

		// 冲突路径下 sub 持有的是未落库的新 ID，重新读取真实行
		return tx.Where("assignment_id = ? AND student_id = ?", sub.AssignmentID, sub.StudentID).
			First(sub).Error
	})
}

func (r *submissionRepo) GetByID(ctx context.Context, id string) (*model.Submission, error) {
	var sub model.Submission
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", id).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepo) GetByAssignmentAndStudent(ctx context.Context, assignmentID, studentID string) (*model.Submission, error) {
	var sub model.Submission
	err := r.db.WithContext(ctx).
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *submissionRepo) CountSubmitted(ctx context.Context, assignmentIDs []string, studentID string) (int64, error) {
	if len(assignmentIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Submission{}).
		Where("assignment_id IN ? AND student_id = ?", assignmentIDs, studentID).
		Distinct("assignment_id").
		Count(&count).Error
	return count, err
}

func (r *submissionRepo) ListByAssignments(ctx context.Context, assignmentIDs []string, studentID string) ([]model.Submission, error) {
	if len(assignmentIDs) == 0 {
		return nil, nil
	}
	var subs []model.Submission
	query := r.db.WithContext(ctx).Where("assignment_id IN ?", assignmentIDs)
	if studentID != "" {
		query = query.Where("student_id = ?", studentID)
	}
	err := query.Order("submitted_at ASC").Find(&subs).Error
	return subs, err
}
