package dto

// ── 课程模块 DTO ──

// CreateCourseRequest 创建课程请求
type CreateCourseRequest struct {
	Title       string `json:"title"        binding:"required,min=2,max=200"`
	Description string `json:"description"  binding:"omitempty,max=5000"`
	Credits     int    `json:"credits"      binding:"omitempty,min=1,max=20"`
	IsPublished bool   `json:"is_published"`
}

// UpdateCourseRequest 更新课程请求
type UpdateCourseRequest struct {
	Title       *string `json:"title"        binding:"omitempty,min=2,max=200"`
	Description *string `json:"description"  binding:"omitempty,max=5000"`
	Credits     *int    `json:"credits"      binding:"omitempty,min=1,max=20"`
	IsPublished *bool   `json:"is_published"`
}

// CourseListRequest 课程列表查询参数
type CourseListRequest struct {
	PaginationRequest
	Mine bool `form:"mine"` // 仅列出自己创建的课程
}

// CourseResponse 课程信息响应
type CourseResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OwnerID     string `json:"owner_id"`
	Credits     int    `json:"credits"`
	IsPublished bool   `json:"is_published"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}
