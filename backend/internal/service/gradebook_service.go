package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"learnhub/backend/internal/dto"
	"learnhub/backend/internal/model"
	"learnhub/backend/internal/repository"
)

// ── 成绩册业务错误 ──

var ErrExportGenerateFail = errors.New("生成 Excel 文件失败")

// GradebookService 成绩册业务接口
//
// 行为学生，列为已发布作业（按模块顺序、截止时间排序）。单元格状态：
//   - graded    已评分
//   - late      逾期提交、未评分
//   - submitted 按时提交、未评分
//   - missing   未提交且已过截止时间
//   - pending   未提交、未到截止时间
type GradebookService interface {
	Build(ctx context.Context, courseID, callerID, callerRole string) (*dto.GradebookResponse, error)
	// Export 导出为 Excel，以 bytes.Buffer 返回，由 Handler 设置下载响应头
	Export(ctx context.Context, courseID, callerID, callerRole string) (*bytes.Buffer, string, error)
}

type gradebookService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewGradebookService 创建 GradebookService 实例
func NewGradebookService(repo *repository.Repository, logger *zap.Logger) GradebookService {
	return &gradebookService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ────────────────────── Build ──────────────────────

func (s *gradebookService) Build(ctx context.Context, courseID, callerID, callerRole string) (*dto.GradebookResponse, error) {
	course, err := loadManagedCourse(ctx, s.repo, s.logger, courseID, callerID, callerRole)
	if err != nil {
		return nil, err
	}

	students, err := s.repo.Enrollment.ListByCourse(ctx, courseID, model.RoleStudent)
	if err != nil {
		s.logger.Error("列出课程学生失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	data, err := loadCourseGradeData(ctx, s.repo, courseID, "")
	if err != nil {
		s.logger.Error("加载课程成绩失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	book := &dto.GradebookResponse{
		CourseID:    course.CourseID,
		CourseTitle: course.Title,
		Columns:     make([]dto.GradebookColumn, 0, len(data.assignments)),
		Rows:        make([]dto.GradebookRow, 0, len(students)),
	}
	for _, a := range data.assignments {
		col := dto.GradebookColumn{
			AssignmentID: a.AssignmentID,
			Title:        a.Title,
			DueAt:        formatTimePtr(a.DueAt),
			MaxPoints:    a.MaxPoints,
		}
		if a.Module != nil {
			col.ModuleTitle = a.Module.Title
		}
		book.Columns = append(book.Columns, col)
	}

	now := s.now()
	for _, e := range students {
		row := dto.GradebookRow{
			StudentID: e.UserID,
			Cells:     make([]dto.GradebookCell, 0, len(data.assignments)),
		}
		if e.User != nil {
			row.StudentName = e.User.Name
			row.Email = e.User.Email
		}

		for i := range data.assignments {
			row.Cells = append(row.Cells, gradebookCell(data, &data.assignments[i], e.UserID, now))
		}

		score := data.scoreFor(e.UserID)
		row.Percentage = score.percentage()
		if row.Percentage != nil {
			row.Letter, _ = letterGrade(*row.Percentage)
		}
		book.Rows = append(book.Rows, row)
	}
	return book, nil
}

// ────────────────────── Export ──────────────────────

func (s *gradebookService) Export(ctx context.Context, courseID, callerID, callerRole string) (*bytes.Buffer, string, error) {
	book, err := s.Build(ctx, courseID, callerID, callerRole)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "成绩册"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	// 固定列：姓名 / 邮箱 / 百分比 / 等级，其后每个作业一列
	fixed := 4
	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, "B", "B", 28)
	f.SetColWidth(sheetName, "C", "D", 10)
	for i := range book.Columns {
		col := colName(fixed + i)
		f.SetColWidth(sheetName, col, col, 18)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	missingStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F8CBAD"}, Pattern: 1},
	})

	// 标题行
	lastCol := colName(fixed + len(book.Columns) - 1)
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s 成绩册", book.CourseTitle))
	f.MergeCell(sheetName, "A1", cell(lastCol, 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	row := 2
	f.SetCellValue(sheetName, cell("A", row), "姓名")
	f.SetCellValue(sheetName, cell("B", row), "邮箱")
	f.SetCellValue(sheetName, cell("C", row), "百分比")
	f.SetCellValue(sheetName, cell("D", row), "等级")
	for i, col := range book.Columns {
		f.SetCellValue(sheetName, cell(colName(fixed+i), row), fmt.Sprintf("%s (%g)", col.Title, col.MaxPoints))
	}
	f.SetCellStyle(sheetName, "A2", cell(lastCol, row), headerStyle)

	// 数据行
	row = 3
	for _, r := range book.Rows {
		f.SetCellValue(sheetName, cell("A", row), r.StudentName)
		f.SetCellValue(sheetName, cell("B", row), r.Email)
		if r.Percentage != nil {
			f.SetCellValue(sheetName, cell("C", row), *r.Percentage)
			f.SetCellValue(sheetName, cell("D", row), r.Letter)
		} else {
			f.SetCellValue(sheetName, cell("C", row), "-")
			f.SetCellValue(sheetName, cell("D", row), "-")
		}

		for i, c := range r.Cells {
			ref := cell(colName(fixed+i), row)
			f.SetCellValue(sheetName, ref, cellText(c))
			if c.Status == dto.CellMissing {
				f.SetCellStyle(sheetName, ref, ref, missingStyle)
			}
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("成绩册_%s.xlsx", book.CourseTitle)
	return buf, filename, nil
}

// ── 辅助函数 ──

func gradebookCell(data *courseGradeData, a *model.Assignment, studentID string, now time.Time) dto.GradebookCell {
	c := dto.GradebookCell{AssignmentID: a.AssignmentID}

	sub, ok := data.submissions[a.AssignmentID][studentID]
	switch {
	case !ok && a.IsPastDue(now):
		c.Status = dto.CellMissing
	case !ok:
		c.Status = dto.CellPending
	default:
		if grade, graded := data.grades[sub.SubmissionID]; graded {
			points := grade.Points
			c.Status = dto.CellGraded
			c.Points = &points
		} else if sub.IsLate {
			c.Status = dto.CellLate
		} else {
			c.Status = dto.CellSubmitted
		}
	}
	return c
}

var cellLabels = map[string]string{
	dto.CellSubmitted: "已提交",
	dto.CellLate:      "逾期提交",
	dto.CellMissing:   "缺交",
	dto.CellPending:   "-",
}

func cellText(c dto.GradebookCell) string {
	if c.Status == dto.CellGraded && c.Points != nil {
		return fmt.Sprintf("%g", *c.Points)
	}
	return cellLabels[c.Status]
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
