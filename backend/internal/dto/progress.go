package dto

// ── 学习进度 DTO ──

// ModuleRef 模块简要引用（解锁通知用）
type ModuleRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ProgressResponse 模块进度响应
//
// IsComplete 按当前内容与作业实时计算；CompletedAt 是首次达到 100% 的时间，写入后不再清空。
// 完成后模块新增已发布内容时，会出现 is_complete=false 而 completed_at 非空，
// 解锁判断只看 CompletedAt。
type ProgressResponse struct {
	ModuleID         string     `json:"module_id"`
	Progress         int        `json:"progress"` // 0-100
	IsComplete       bool       `json:"is_complete"`
	ViewedCount      int        `json:"viewed_count"`
	TotalContent     int        `json:"total_content"`
	SubmittedCount   int        `json:"submitted_count"`
	TotalAssignments int        `json:"total_assignments"`
	CompletedAt      *string    `json:"completed_at"`
	UnlockedModule   *ModuleRef `json:"unlocked_module,omitempty"` // 本次调用触发解锁时返回
}

// UnlockStatusResponse 模块解锁状态
type UnlockStatusResponse struct {
	ModuleID             string  `json:"module_id"`
	IsUnlocked           bool    `json:"is_unlocked"`
	UnlockMessage        string  `json:"unlock_message,omitempty"`
	PrerequisiteModuleID *string `json:"prerequisite_module_id,omitempty"`
}

// OutlineModuleResponse 课程大纲中的单个模块
type OutlineModuleResponse struct {
	ID                   string  `json:"id"`
	Title                string  `json:"title"`
	OrderIndex           int     `json:"order_index"`
	RequiresPrevious     bool    `json:"requires_previous"`
	Progress             int     `json:"progress"`
	IsComplete           bool    `json:"is_complete"`
	IsUnlocked           bool    `json:"is_unlocked"`
	UnlockMessage        string  `json:"unlock_message,omitempty"`
	PrerequisiteModuleID *string `json:"prerequisite_module_id,omitempty"`
}

// CourseOutlineResponse 学习者视角的课程大纲
type CourseOutlineResponse struct {
	CourseID string                  `json:"course_id"`
	Title    string                  `json:"title"`
	Modules  []OutlineModuleResponse `json:"modules"`
}
