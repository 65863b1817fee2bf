package dto

// ── 评分与绩点 DTO ──

// GradeRequest 评分请求
type GradeRequest struct {
	Points   *float64 `json:"points"   binding:"required,min=0"`
	Feedback string   `json:"feedback" binding:"omitempty,max=10000"`
	Version  *int     `json:"version"  binding:"omitempty,min=1"` // 修改已有评分时必填
}

// GradeResponse 评分响应
type GradeResponse struct {
	ID           string  `json:"id"`
	SubmissionID string  `json:"submission_id"`
	Points       float64 `json:"points"`
	Feedback     string  `json:"feedback"`
	GradedBy     string  `json:"graded_by"`
	GradedAt     string  `json:"graded_at"`
	Version      int     `json:"version"`
}

// CourseGradeResponse 单门课程成绩汇总
type CourseGradeResponse struct {
	CourseID       string   `json:"course_id"`
	CourseTitle    string   `json:"course_title"`
	Credits        int      `json:"credits"`
	EarnedPoints   float64  `json:"earned_points"`
	PossiblePoints float64  `json:"possible_points"`
	GradedCount    int      `json:"graded_count"`
	Percentage     *float64 `json:"percentage"`             // 无已评分作业时为空
	Letter         string   `json:"letter,omitempty"`       // A, A-, B+ ...
	GradePoints    *float64 `json:"grade_points,omitempty"` // 4.0 制
}

// TranscriptResponse 成绩单（学分加权 GPA）
type TranscriptResponse struct {
	UserID       string                `json:"user_id"`
	Courses      []CourseGradeResponse `json:"courses"`
	TotalCredits int                   `json:"total_credits"`
	GPA          *float64              `json:"gpa"`
}
