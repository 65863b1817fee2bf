package dto

// ── 选课 DTO ──

// EnrollRequest 选课请求；UserID 为空表示本人选课
type EnrollRequest struct {
	UserID string `json:"user_id" binding:"omitempty,uuid"`
	Role   string `json:"role"    binding:"omitempty,oneof=student instructor"`
}

// EnrollmentResponse 选课记录响应
type EnrollmentResponse struct {
	CourseID   string `json:"course_id"`
	UserID     string `json:"user_id"`
	UserName   string `json:"user_name,omitempty"`
	Email      string `json:"email,omitempty"`
	Role       string `json:"role"`
	EnrolledAt string `json:"enrolled_at"`
}
