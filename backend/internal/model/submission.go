package model

import (
	"time"

	"gorm.io/gorm"
)

// Submission 作业提交表 — 对应 submissions
// 每个 (assignment, student) 仅一行，重新提交覆盖内容并递增 attempt
type Submission struct {
	SubmissionID string    `gorm:"type:uuid;primaryKey"                                           json:"submission_id"`
	AssignmentID string    `gorm:"type:uuid;not null;uniqueIndex:idx_submissions_assignment_student" json:"assignment_id"`
	StudentID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_submissions_assignment_student;index" json:"student_id"`
	Body         string    `gorm:"type:text;not null;default:''"                                  json:"body"`
	SubmittedAt  time.Time `gorm:"not null"                                                       json:"submitted_at"`
	IsLate       bool      `gorm:"not null;default:false"                                         json:"is_late"`
	Attempt      int       `gorm:"not null;default:1"                                             json:"attempt"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"                             json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"                             json:"updated_at"`
}

// TableName 指定表名
func (Submission) TableName() string { return "submissions" }

// BeforeCreate 生成主键
func (s *Submission) BeforeCreate(*gorm.DB) error {
	ensureID(&s.SubmissionID)
	return nil
}

// Grade 成绩表 — 对应 grades（乐观锁）
type Grade struct {
	GradeID      string    `gorm:"type:uuid;primaryKey"                 json:"grade_id"`
	SubmissionID string    `gorm:"type:uuid;not null;uniqueIndex"       json:"submission_id"`
	Points       float64   `gorm:"type:numeric(8,2);not null"           json:"points"`
	Feedback     string    `gorm:"type:text;not null;default:''"        json:"feedback"`
	GradedBy     string    `gorm:"type:uuid;not null"                   json:"graded_by"`
	GradedAt     time.Time `gorm:"not null"                             json:"graded_at"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"   json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"   json:"updated_at"`
	VersionedModel
}

// TableName 指定表名
func (Grade) TableName() string { return "grades" }

// BeforeCreate 生成主键
func (g *Grade) BeforeCreate(*gorm.DB) error {
	ensureID(&g.GradeID)
	return nil
}
