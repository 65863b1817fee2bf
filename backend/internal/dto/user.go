package dto

// ── 用户模块 DTO ──

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	Role string `form:"role" binding:"omitempty,oneof=admin instructor student"`
}

// SyncUserRequest 从统一身份服务同步用户
type SyncUserRequest struct {
	UserID string `json:"user_id" binding:"omitempty,uuid"`
	Name   string `json:"name"    binding:"required,min=1,max=100"`
	Email  string `json:"email"   binding:"required,email"`
	Role   string `json:"role"    binding:"required,oneof=admin instructor student"`
}

// UserResponse 用户信息响应
type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}
