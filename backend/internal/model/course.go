package model

import (
	"time"

	"gorm.io/gorm"
)

// Course 课程表 — 对应 courses
type Course struct {
	CourseID    string `gorm:"type:uuid;primaryKey"            json:"course_id"`
	Title       string `gorm:"type:varchar(200);not null"      json:"title"`
	Description string `gorm:"type:text;not null;default:''"   json:"description"`
	OwnerID     string `gorm:"type:uuid;not null;index"        json:"owner_id"`
	Credits     int    `gorm:"not null;default:3"              json:"credits"`
	IsPublished bool   `gorm:"not null;default:false"          json:"is_published"`
	SoftDeleteModel

	// 关联
	Owner *User `gorm:"foreignKey:OwnerID;references:UserID" json:"owner,omitempty"`
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// BeforeCreate 生成主键
func (c *Course) BeforeCreate(*gorm.DB) error {
	ensureID(&c.CourseID)
	return nil
}

// CourseEnrollment 选课表 — 对应 course_enrollments
type CourseEnrollment struct {
	CourseID   string `gorm:"type:uuid;primaryKey"                         json:"course_id"`
	UserID     string `gorm:"type:uuid;primaryKey;index"                   json:"user_id"`
	Role       string `gorm:"type:varchar(20);not null;default:'student'"  json:"role"` // student | instructor
	EnrolledAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"        json:"enrolled_at"`

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (CourseEnrollment) TableName() string { return "course_enrollments" }
