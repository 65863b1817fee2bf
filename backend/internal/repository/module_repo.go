package repository

import (
	"context"

	"gorm.io/gorm"

	"learnhub/backend/internal/model"
)

// ModuleRepository 模块数据访问接口
type ModuleRepository interface {
	Create(ctx context.Context, module *model.Module) error
	GetByID(ctx context.Context, id string) (*model.Module, error)
	ListByCourse(ctx context.Context, courseID string, publishedOnly bool) ([]model.Module, error)
	// MaxOrderIndex 返回课程内未删除模块的最大 order_index；无模块时返回 -1
	MaxOrderIndex(ctx context.Context, courseID string) (int, error)
	// NextPublished 同课程内 order_index 严格大于给定值的最小已发布模块
	NextPublished(ctx context.Context, courseID string, orderIndex int) (*model.Module, error)
	// PrevPublished 同课程内 order_index 严格小于给定值的最大已发布模块
	PrevPublished(ctx context.Context, courseID string, orderIndex int) (*model.Module, error)
	Update(ctx context.Context, module *model.Module) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type moduleRepo struct {
	db *gorm.DB
}

// NewModuleRepo 创建 ModuleRepository 实例
func NewModuleRepo(db *gorm.DB) ModuleRepository {
	return &moduleRepo{db: db}
}

func (r *moduleRepo) Create(ctx context.Context, module *model.Module) error {
	return r.db.WithContext(ctx).Create(module).Error
}

func (r *moduleRepo) GetByID(ctx context.Context, id string) (*model.Module, error) {
	var module model.Module
	err := r.db.WithContext(ctx).
		Where("module_id = ?", id).
		First(&module).Error
	if err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *moduleRepo) ListByCourse(ctx context.Context, courseID string, publishedOnly bool) ([]model.Module, error) {
	var modules []model.Module
	query := r.db.WithContext(ctx).Where("course_id = ?", courseID)
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}
	err := query.Order("order_index ASC").Find(&modules).Error
	return modules, err
}

func (r *moduleRepo) MaxOrderIndex(ctx context.Context, courseID string) (int, error) {
	var maxIndex *int
	err := r.db.WithContext(ctx).
		Model(&model.Module{}).
		Where("course_id = ?", courseID).
		Select("MAX(order_index)").
		Scan(&maxIndex).Error
	if err != nil {
		return 0, err
	}
	if maxIndex == nil {
		return -1, nil
	}
	return *maxIndex, nil
}

func (r *moduleRepo) NextPublished(ctx context.Context, courseID string, orderIndex int) (*model.Module, error) {
	var module model.Module
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND order_index > ? AND is_published = ?", courseID, orderIndex, true).
		Order("order_index ASC").
		First(&module).Error
	if err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *moduleRepo) PrevPublished(ctx context.Context, courseID string, orderIndex int) (*model.Module, error) {
	var module model.Module
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND order_index < ? AND is_published = ?", courseID, orderIndex, true).
		Order("order_index DESC").
		First(&module).Error
	if err != nil {
		return nil, err
	}
	return &module, nil
}

func (r *moduleRepo) Update(ctx context.Context, module *model.Module) error {
	return r.db.WithContext(ctx).Save(module).Error
}

func (r *moduleRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return softDelete(r.db.WithContext(ctx), &model.Module{}, "module_id", id, deletedBy)
}
