package dto

// ── 作业提交 DTO ──

// SubmitRequest 提交作业请求
type SubmitRequest struct {
	Body string `json:"body" binding:"required,max=100000"`
}

// SubmissionResponse 提交记录响应
type SubmissionResponse struct {
	ID           string         `json:"id"`
	AssignmentID string         `json:"assignment_id"`
	StudentID    string         `json:"student_id"`
	Body         string         `json:"body"`
	SubmittedAt  string         `json:"submitted_at"`
	IsLate       bool           `json:"is_late"`
	Attempt      int            `json:"attempt"`
	Grade        *GradeResponse `json:"grade,omitempty"`
}

// SubmitResponse 提交作业后的结果
// 完成检测失败时 Progress 为空，提交本身仍然有效
type SubmitResponse struct {
	Submission SubmissionResponse `json:"submission"`
	Progress   *ProgressResponse  `json:"progress,omitempty"`
}
