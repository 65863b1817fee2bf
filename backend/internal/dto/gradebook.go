package dto

// ── 成绩册 DTO ──

// 成绩册单元格状态
const (
	CellGraded    = "graded"
	CellSubmitted = "submitted"
	CellLate      = "late"
	CellMissing   = "missing"
	CellPending   = "pending"
)

// GradebookColumn 成绩册列（作业）
type GradebookColumn struct {
	AssignmentID string  `json:"assignment_id"`
	Title        string  `json:"title"`
	ModuleTitle  string  `json:"module_title"`
	DueAt        *string `json:"due_at"`
	MaxPoints    float64 `json:"max_points"`
}

// GradebookCell 成绩册单元格
type GradebookCell struct {
	AssignmentID string   `json:"assignment_id"`
	Status       string   `json:"status"`
	Points       *float64 `json:"points,omitempty"`
}

// GradebookRow 成绩册行（学生）
type GradebookRow struct {
	StudentID   string          `json:"student_id"`
	StudentName string          `json:"student_name"`
	Email       string          `json:"email"`
	Cells       []GradebookCell `json:"cells"`
	Percentage  *float64        `json:"percentage"`
	Letter      string          `json:"letter,omitempty"`
}

// GradebookResponse 课程成绩册
type GradebookResponse struct {
	CourseID    string            `json:"course_id"`
	CourseTitle string            `json:"course_title"`
	Columns     []GradebookColumn `json:"columns"`
	Rows        []GradebookRow    `json:"rows"`
}
