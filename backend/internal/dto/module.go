package dto

// ── 课程模块（章节）DTO ──

// CreateModuleRequest 创建模块请求
type CreateModuleRequest struct {
	Title            string `json:"title"             binding:"required,min=1,max=200"`
	Description      string `json:"description"       binding:"omitempty,max=5000"`
	OrderIndex       *int   `json:"order_index"       binding:"omitempty,min=0"` // 为空时追加到末尾
	IsPublished      bool   `json:"is_published"`
	RequiresPrevious bool   `json:"requires_previous"`
}

// UpdateModuleRequest 更新模块请求
type UpdateModuleRequest struct {
	Title            *string `json:"title"             binding:"omitempty,min=1,max=200"`
	Description      *string `json:"description"       binding:"omitempty,max=5000"`
	OrderIndex       *int    `json:"order_index"       binding:"omitempty,min=0"`
	IsPublished      *bool   `json:"is_published"`
	RequiresPrevious *bool   `json:"requires_previous"`
}

// ModuleResponse 模块信息响应
type ModuleResponse struct {
	ID               string `json:"id"`
	CourseID         string `json:"course_id"`
	Title            string `json:"title"`
	Description      string `json:"description"`
	OrderIndex       int    `json:"order_index"`
	IsPublished      bool   `json:"is_published"`
	RequiresPrevious bool   `json:"requires_previous"`
	CreatedAt        string `json:"created_at"`
	UpdatedAt        string `json:"updated_at"`
}
