package dto

// ── 模块内容 DTO ──

// CreateContentRequest 创建内容请求
type CreateContentRequest struct {
	Title       string `json:"title"        binding:"required,min=1,max=200"`
	ContentType string `json:"content_type" binding:"required,oneof=text document video link"`
	Body        string `json:"body"         binding:"omitempty,max=100000"`
	URL         string `json:"url"          binding:"omitempty,url,max=1024"`
	OrderIndex  int    `json:"order_index"  binding:"omitempty,min=0"`
	IsPublished bool   `json:"is_published"`
}

// UpdateContentRequest 更新内容请求
type UpdateContentRequest struct {
	Title       *string `json:"title"        binding:"omitempty,min=1,max=200"`
	ContentType *string `json:"content_type" binding:"omitempty,oneof=text document video link"`
	Body        *string `json:"body"         binding:"omitempty,max=100000"`
	URL         *string `json:"url"          binding:"omitempty,url,max=1024"`
	OrderIndex  *int    `json:"order_index"  binding:"omitempty,min=0"`
	IsPublished *bool   `json:"is_published"`
}

// ContentResponse 内容信息响应
type ContentResponse struct {
	ID          string `json:"id"`
	ModuleID    string `json:"module_id"`
	Title       string `json:"title"`
	ContentType string `json:"content_type"`
	Body        string `json:"body"`
	URL         string `json:"url,omitempty"`
	OrderIndex  int    `json:"order_index"`
	IsPublished bool   `json:"is_published"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}
