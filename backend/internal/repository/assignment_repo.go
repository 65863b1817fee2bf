package repository

import (
	"context"

	"gorm.io/gorm"

	"learnhub/backend/internal/model"
)

// AssignmentRepository 作业数据访问接口
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *model.Assignment) error
	GetByID(ctx context.Context, id string) (*model.Assignment, error)
	ListByModule(ctx context.Context, moduleID string, publishedOnly bool) ([]model.Assignment, error)
	// ListByCourse 按模块顺序、截止时间排序，附带所属模块
	ListByCourse(ctx context.Context, courseID string, publishedOnly bool) ([]model.Assignment, error)
	// ListPublishedIDs 模块内已发布且未删除的作业 ID
	ListPublishedIDs(ctx context.Context, moduleID string) ([]string, error)
	Update(ctx context.Context, assignment *model.Assignment) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type assignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo 创建 AssignmentRepository 实例
func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) Create(ctx context.Context, assignment *model.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepo) GetByID(ctx context.Context, id string) (*model.Assignment, error) {
	var assignment model.Assignment
	err := r.db.WithContext(ctx).
		Where("assignment_id = ?", id).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepo) ListByModule(ctx context.Context, moduleID string, publishedOnly bool) ([]model.Assignment, error) {
	var assignments []model.Assignment
	query := r.db.WithContext(ctx).Where("module_id = ?", moduleID)
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}
	err := query.Order("due_at ASC, created_at ASC").Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepo) ListByCourse(ctx context.Context, courseID string, publishedOnly bool) ([]model.Assignment, error) {
	var assignments []model.Assignment
	query := r.db.WithContext(ctx).
		Joins("Module").
		Where("assignments.course_id = ?", courseID)
	if publishedOnly {
		query = query.Where("assignments.is_published = ?", true)
	}
	err := query.
		Order(`"Module"."order_index" ASC`).
		Order("assignments.due_at ASC").
		Order("assignments.created_at ASC").
		Find(&assignments).Error
	return assignments, err
}

func (r *assignmentRepo) ListPublishedIDs(ctx context.Context, moduleID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("module_id = ? AND is_published = ?", moduleID, true).
		Pluck("assignment_id", &ids).Error
	return ids, err
}

func (r *assignmentRepo) Update(ctx context.Context, assignment *model.Assignment) error {
	return r.db.WithContext(ctx).Omit("Module").Save(assignment).Error
}

func (r *assignmentRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return softDelete(r.db.WithContext(ctx), &model.Assignment{}, "assignment_id", id, deletedBy)
}
