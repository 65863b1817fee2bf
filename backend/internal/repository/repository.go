package repository

import (
	"time"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User       UserRepository
	Course     CourseRepository
	Enrollment EnrollmentRepository
	Module     ModuleRepository
	Content    ContentItemRepository
	Assignment AssignmentRepository
	Submission SubmissionRepository
	Grade      GradeRepository
	Progress   ProgressRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:       NewUserRepo(db),
		Course:     NewCourseRepo(db),
		Enrollment: NewEnrollmentRepo(db),
		Module:     NewModuleRepo(db),
		Content:    NewContentItemRepo(db),
		Assignment: NewAssignmentRepo(db),
		Submission: NewSubmissionRepo(db),
		Grade:      NewGradeRepo(db),
		Progress:   NewProgressRepo(db),
	}
}

// softDelete 写入墓碑时间戳，不物理删除
func softDelete(db *gorm.DB, model interface{}, pkColumn, id, deletedBy string) error {
	return db.Model(model).
		Where(pkColumn+" = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": time.Now().UTC(),
		}).Error
}
