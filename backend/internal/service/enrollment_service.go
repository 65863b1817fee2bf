package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/mail"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"learnhub/backend/internal/dto"
	"learnhub/backend/internal/model"
	"learnhub/backend/internal/repository"
)

// ── 选课与访问控制业务错误 ──

var (
	ErrNotEnrolled   = errors.New("未选修该课程")
	ErrModuleLocked  = errors.New("模块尚未解锁")
	ErrEnrollInvalid = errors.New("只有课程管理者可以为他人选课或指定讲师角色")
)

// ModuleLockedError 模块未解锁，携带前置模块信息
type ModuleLockedError struct {
	Status *dto.UnlockStatusResponse
}

func (e *ModuleLockedError) Error() string {
	return e.Status.UnlockMessage
}

func (e *ModuleLockedError) Unwrap() error {
	return ErrModuleLocked
}

// EnrollmentService 选课、课程大纲与模块访问控制
type EnrollmentService interface {
	Enroll(ctx context.Context, courseID string, req *dto.EnrollRequest, callerID, callerRole string) (*dto.EnrollmentResponse, error)
	Unenroll(ctx context.Context, courseID, userID, callerID, callerRole string) error
	ListByCourse(ctx context.Context, courseID, callerID, callerRole string) ([]dto.EnrollmentResponse, error)
	ListMyCourses(ctx context.Context, userID string) ([]dto.CourseResponse, error)
	// CheckModuleVisible 课程与模块已发布且学习者已选课（不检查解锁）；课程管理者直接放行
	CheckModuleVisible(ctx context.Context, moduleID, userID, userRole string) (*model.Module, error)
	// CheckModuleAccess 在 CheckModuleVisible 基础上要求模块已解锁
	CheckModuleAccess(ctx context.Context, moduleID, userID, userRole string) (*model.Module, error)
	CourseOutline(ctx context.Context, courseID, userID, userRole string) (*dto.CourseOutlineResponse, error)
	ImportRoster(ctx context.Context, courseID string, reader io.Reader, callerID, callerRole string) (*dto.ImportResult, error)
}

type enrollmentService struct {
	repo     *repository.Repository
	progress ProgressService
	logger   *zap.Logger
}

// NewEnrollmentService 创建 EnrollmentService 实例
func NewEnrollmentService(repo *repository.Repository, progress ProgressService, logger *zap.Logger) EnrollmentService {
	return &enrollmentService{repo: repo, progress: progress, logger: logger}
}

// ────────────────────── Enroll ──────────────────────

func (s *enrollmentService) Enroll(ctx context.Context, courseID string, req *dto.EnrollRequest, callerID, callerRole string) (*dto.EnrollmentResponse, error) {
	course, err := loadCourse(ctx, s.repo, s.logger, courseID)
	if err != nil {
		return nil, err
	}
	manager := canManageCourse(course, callerID, callerRole)

	targetID := req.UserID
	if targetID == "" {
		targetID = callerID
	}
	role := req.Role
	if role == "" {
		role = model.RoleStudent
	}
	if !manager {
		if targetID != callerID || role != model.RoleStudent {
			return nil, ErrEnrollInvalid
		}
		if !course.IsPublished {
			return nil, ErrCourseNotFound
		}
	}

	user, err := s.repo.User.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", targetID), zap.Error(err))
		return nil, err
	}

	enrollment := &model.CourseEnrollment{CourseID: courseID, UserID: targetID, Role: role}
	created, err := s.repo.Enrollment.Create(ctx, enrollment)
	if err != nil {
		s.logger.Error("选课失败", zap.String("course_id", courseID), zap.String("user_id", targetID), zap.Error(err))
		return nil, err
	}

	// 重复选课视为成功，返回已有记录
	stored, err := s.repo.Enrollment.Get(ctx, courseID, targetID)
	if err != nil {
		s.logger.Error("查询选课记录失败", zap.String("course_id", courseID), zap.String("user_id", targetID), zap.Error(err))
		return nil, err
	}
	if created {
		s.logger.Info("学习者已选课", zap.String("course_id", courseID), zap.String("user_id", targetID))
	}

	stored.User = user
	return toEnrollmentResponse(stored), nil
}

// ────────────────────── Unenroll ──────────────────────

func (s *enrollmentService) Unenroll(ctx context.Context, courseID, userID, callerID, callerRole string) error {
	course, err := loadCourse(ctx, s.repo, s.logger, courseID)
	if err != nil {
		return err
	}
	if userID != callerID && !canManageCourse(course, callerID, callerRole) {
		return ErrCourseForbidden
	}

	if _, err := s.repo.Enrollment.Get(ctx, courseID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotEnrolled
		}
		s.logger.Error("查询选课记录失败", zap.Error(err))
		return err
	}

	// 学习进度保留，重新选课后继续有效
	if err := s.repo.Enrollment.Delete(ctx, courseID, userID); err != nil {
		s.logger.Error("退课失败", zap.String("course_id", courseID), zap.String("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── ListByCourse ──────────────────────

func (s *enrollmentService) ListByCourse(ctx context.Context, courseID, callerID, callerRole string) ([]dto.EnrollmentResponse, error) {
	if _, err := loadManagedCourse(ctx, s.repo, s.logger, courseID, callerID, callerRole); err != nil {
		return nil, err
	}

	enrollments, err := s.repo.Enrollment.ListByCourse(ctx, courseID, "")
	if err != nil {
		s.logger.Error("列出选课记录失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.EnrollmentResponse, 0, len(enrollments))
	for i := range enrollments {
		result = append(result, *toEnrollmentResponse(&enrollments[i]))
	}
	return result, nil
}

// ────────────────────── ListMyCourses ──────────────────────

func (s *enrollmentService) ListMyCourses(ctx context.Context, userID string) ([]dto.CourseResponse, error) {
	enrollments, err := s.repo.Enrollment.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询选课记录失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	ids := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		ids = append(ids, e.CourseID)
	}
	courses, err := s.repo.Course.ListByIDs(ctx, ids)
	if err != nil {
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		result = append(result, *toCourseResponse(&courses[i]))
	}
	return result, nil
}

// ────────────────────── CheckModuleAccess ──────────────────────

func (s *enrollmentService) CheckModuleVisible(ctx context.Context, moduleID, userID, userRole string) (*model.Module, error) {
	module, _, err := s.visibleModule(ctx, moduleID, userID, userRole)
	return module, err
}

func (s *enrollmentService) CheckModuleAccess(ctx context.Context, moduleID, userID, userRole string) (*model.Module, error) {
	module, manager, err := s.visibleModule(ctx, moduleID, userID, userRole)
	if err != nil || manager {
		return module, err
	}

	status, err := s.progress.IsModuleUnlocked(ctx, moduleID, userID, module.CourseID)
	if err != nil {
		return nil, err
	}
	if !status.IsUnlocked {
		return nil, &ModuleLockedError{Status: status}
	}
	return module, nil
}

// visibleModule 返回模块及调用者是否为课程管理者
// 草稿课程或草稿模块对学习者按不存在处理
func (s *enrollmentService) visibleModule(ctx context.Context, moduleID, userID, userRole string) (*model.Module, bool, error) {
	module, err := loadModule(ctx, s.repo, s.logger, moduleID)
	if err != nil {
		return nil, false, err
	}
	course, err := loadCourse(ctx, s.repo, s.logger, module.CourseID)
	if err != nil {
		return nil, false, err
	}
	if canManageCourse(course, userID, userRole) {
		return module, true, nil
	}
	if !course.IsPublished || !module.IsPublished {
		return nil, false, ErrModuleNotFound
	}
	if err := s.requireEnrollment(ctx, course.CourseID, userID); err != nil {
		return nil, false, err
	}
	return module, false, nil
}

// ────────────────────── CourseOutline ──────────────────────

func (s *enrollmentService) CourseOutline(ctx context.Context, courseID, userID, userRole string) (*dto.CourseOutlineResponse, error) {
	course, err := loadCourse(ctx, s.repo, s.logger, courseID)
	if err != nil {
		return nil, err
	}
	if !canManageCourse(course, userID, userRole) {
		if !course.IsPublished {
			return nil, ErrCourseNotFound
		}
		if err := s.requireEnrollment(ctx, courseID, userID); err != nil {
			return nil, err
		}
	}

	modules, err := s.repo.Module.ListByCourse(ctx, courseID, true)
	if err != nil {
		s.logger.Error("列出模块失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	ids := make([]string, 0, len(modules))
	for _, m := range modules {
		ids = append(ids, m.ModuleID)
	}
	completed, err := s.repo.Progress.ListCompleted(ctx, userID, ids)
	if err != nil {
		s.logger.Error("查询已完成模块失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	outline := &dto.CourseOutlineResponse{
		CourseID: course.CourseID,
		Title:    course.Title,
		Modules:  make([]dto.OutlineModuleResponse, 0, len(modules)),
	}
	for i, m := range modules {
		progress, err := s.progress.CalculateProgress(ctx, m.ModuleID, userID)
		if err != nil {
			return nil, err
		}

		item := dto.OutlineModuleResponse{
			ID:               m.ModuleID,
			Title:            m.Title,
			OrderIndex:       m.OrderIndex,
			RequiresPrevious: m.RequiresPrevious,
			Progress:         progress.Progress,
			IsComplete:       progress.IsComplete,
			IsUnlocked:       true,
		}
		// modules 已按 order_index 升序，前一项即前置模块
		if m.RequiresPrevious && i > 0 {
			prev := modules[i-1]
			if _, ok := completed[prev.ModuleID]; !ok {
				prevID := prev.ModuleID
				item.IsUnlocked = false
				item.UnlockMessage = lockedMessage(prev.Title)
				item.PrerequisiteModuleID = &prevID
			}
		}
		outline.Modules = append(outline.Modules, item)
	}
	return outline, nil
}

// ────────────────────── ImportRoster ──────────────────────

const maxImportRows = 1000

var (
	ErrImportNoData      = errors.New("Excel文件无数据行（第一行为表头）")
	ErrImportTooManyRows = fmt.Errorf("数据行数超过上限 %d 行", maxImportRows)
	ErrImportBadHeader   = errors.New("Excel表头缺少必要列（姓名/邮箱）")
)

// rosterRow 名单 Excel 解析后的单行数据
type rosterRow struct {
	Row   int
	Name  string
	Email string
}

// ImportRoster 按名单批量选课；邮箱不存在的用户以学生身份创建
func (s *enrollmentService) ImportRoster(ctx context.Context, courseID string, reader io.Reader, callerID, callerRole string) (*dto.ImportResult, error) {
	if _, err := loadManagedCourse(ctx, s.repo, s.logger, courseID, callerID, callerRole); err != nil {
		return nil, err
	}

	rows, err := parseRosterFile(reader)
	if err != nil {
		return nil, err
	}

	result := &dto.ImportResult{Total: len(rows)}
	fail := func(row int, reason string) {
		result.Failed++
		result.Errors = append(result.Errors, dto.ImportError{Row: row, Reason: reason})
	}

	for _, row := range rows {
		if row.Name == "" || row.Email == "" {
			fail(row.Row, "必填字段为空")
			continue
		}
		if _, err := mail.ParseAddress(row.Email); err != nil {
			fail(row.Row, fmt.Sprintf("邮箱格式错误: %s", row.Email))
			continue
		}

		user, err := s.repo.User.GetByEmail(ctx, row.Email)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = &model.User{Name: row.Name, Email: row.Email, Role: model.RoleStudent}
			user.CreatedBy = &callerID
			if err := s.repo.User.Create(ctx, user); err != nil {
				s.logger.Error("导入名单创建用户失败", zap.Int("row", row.Row), zap.Error(err))
				fail(row.Row, "创建用户失败")
				continue
			}
			result.Created++
		} else if err != nil {
			s.logger.Error("导入名单查询用户失败", zap.Int("row", row.Row), zap.Error(err))
			fail(row.Row, "查询用户失败")
			continue
		}

		created, err := s.repo.Enrollment.Create(ctx, &model.CourseEnrollment{
			CourseID: courseID,
			UserID:   user.UserID,
			Role:     model.RoleStudent,
		})
		if err != nil {
			s.logger.Error("导入名单选课失败", zap.Int("row", row.Row), zap.Error(err))
			fail(row.Row, "选课失败")
			continue
		}
		if created {
			result.Enrolled++
		}
	}

	s.logger.Info("名单导入完成",
		zap.String("course_id", courseID),
		zap.Int("total", result.Total),
		zap.Int("enrolled", result.Enrolled),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// parseRosterFile 解析名单 Excel（首个工作表，第一行为表头，列顺序不限）
func parseRosterFile(reader io.Reader) ([]rosterRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("无法解析Excel文件: %w", err)
	}
	defer f.Close()

	excelRows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}
	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	nameCol, emailCol := -1, -1
	for i, h := range excelRows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "姓名", "name":
			nameCol = i
		case "邮箱", "email", "e-mail":
			emailCol = i
		}
	}
	if nameCol < 0 || emailCol < 0 {
		return nil, ErrImportBadHeader
	}

	var rows []rosterRow
	for i := 1; i < len(excelRows); i++ {
		cells := excelRows[i]
		item := rosterRow{Row: i + 1}
		if nameCol < len(cells) {
			item.Name = strings.TrimSpace(cells[nameCol])
		}
		if emailCol < len(cells) {
			item.Email = strings.ToLower(strings.TrimSpace(cells[emailCol]))
		}
		// 跳过全空行
		if item.Name == "" && item.Email == "" {
			continue
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}
	return rows, nil
}

// ── 辅助 ──

func (s *enrollmentService) requireEnrollment(ctx context.Context, courseID, userID string) error {
	if _, err := s.repo.Enrollment.Get(ctx, courseID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotEnrolled
		}
		s.logger.Error("查询选课记录失败", zap.String("course_id", courseID), zap.String("user_id", userID), zap.Error(err))
		return err
	}
	return nil
}

func toEnrollmentResponse(e *model.CourseEnrollment) *dto.EnrollmentResponse {
	resp := &dto.EnrollmentResponse{
		CourseID:   e.CourseID,
		UserID:     e.UserID,
		Role:       e.Role,
		EnrolledAt: formatTime(e.EnrolledAt),
	}
	if e.User != nil {
		resp.UserName = e.User.Name
		resp.Email = e.User.Email
	}
	return resp
}
