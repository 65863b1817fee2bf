package dto

// ── 作业模块 DTO ──

// CreateAssignmentRequest 创建作业请求
type CreateAssignmentRequest struct {
	Title       string   `json:"title"        binding:"required,min=1,max=200"`
	Description string   `json:"description"  binding:"omitempty,max=20000"`
	DueAt       *string  `json:"due_at"`                                 // RFC3339，例如 "2026-03-01T23:59:00Z"
	MaxPoints   *float64 `json:"max_points"   binding:"omitempty,gt=0"` // 默认 100
	IsPublished bool     `json:"is_published"`
}

// UpdateAssignmentRequest 更新作业请求
type UpdateAssignmentRequest struct {
	Title       *string  `json:"title"        binding:"omitempty,min=1,max=200"`
	Description *string  `json:"description"  binding:"omitempty,max=20000"`
	DueAt       *string  `json:"due_at"`
	ClearDueAt  bool     `json:"clear_due_at"` // 为 true 时移除截止时间
	MaxPoints   *float64 `json:"max_points"   binding:"omitempty,gt=0"`
	IsPublished *bool    `json:"is_published"`
}

// AssignmentResponse 作业信息响应
type AssignmentResponse struct {
	ID          string  `json:"id"`
	ModuleID    string  `json:"module_id"`
	CourseID    string  `json:"course_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueAt       *string `json:"due_at"`
	MaxPoints   float64 `json:"max_points"`
	IsPublished bool    `json:"is_published"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}
