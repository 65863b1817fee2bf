package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"learnhub/backend/internal/dto"
	"learnhub/backend/internal/service"
	"learnhub/backend/pkg/response"
)

// EnrollmentHandler 选课 HTTP 处理器
type EnrollmentHandler struct {
	enrollmentSvc service.EnrollmentService
}

// NewEnrollmentHandler 创建 EnrollmentHandler
func NewEnrollmentHandler(enrollmentSvc service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollmentSvc: enrollmentSvc}
}

// Enroll 选课（本人选课，或课程管理者为他人选课）
// POST /api/v1/courses/:id/enrollments
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	var req dto.EnrollRequest
	// 请求体可为空：本人以学生身份选课
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, 10001, "参数校验失败")
			return
		}
	}

	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	enrollment, err := h.enrollmentSvc.Enroll(c.Request.Context(), c.Param("id"), &req, callerID, role)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, enrollment)
}

// Unenroll 退课
// DELETE /api/v1/courses/:id/enrollments/:user_id
func (h *EnrollmentHandler) Unenroll(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.enrollmentSvc.Unenroll(c.Request.Context(), c.Param("id"), c.Param("user_id"), callerID, role); err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListEnrollments 课程选课名单
// GET /api/v1/courses/:id/enrollments
func (h *EnrollmentHandler) ListEnrollments(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, err := h.enrollmentSvc.ListByCourse(c.Request.Context(), c.Param("id"), callerID, role)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// ImportRoster 按 Excel 名单批量选课
// POST /api/v1/courses/:id/enrollments/import (multipart/form-data, field="file")
func (h *EnrollmentHandler) ImportRoster(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "请上传 Excel 名单文件")
		return
	}
	defer file.Close()

	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.enrollmentSvc.ImportRoster(c.Request.Context(), c.Param("id"), file, callerID, role)
	if err != nil {
		h.handleImportError(c, err)
		return
	}

	response.OK(c, result)
}

// MyCourses 当前用户已选课程
// GET /api/v1/me/courses
func (h *EnrollmentHandler) MyCourses(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	courses, err := h.enrollmentSvc.ListMyCourses(c.Request.Context(), userID)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, gin.H{"list": courses})
}

func (h *EnrollmentHandler) handleImportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrImportNoData):
		response.BadRequest(c, 15403, "Excel文件无数据行")
	case errors.Is(err, service.ErrImportTooManyRows):
		response.BadRequest(c, 15404, err.Error())
	case errors.Is(err, service.ErrImportBadHeader):
		response.BadRequest(c, 15405, "Excel表头缺少必要列（姓名/邮箱）")
	case errors.Is(err, service.ErrCourseNotFound), errors.Is(err, service.ErrCourseForbidden):
		handleCommonError(c, err)
	default:
		// 其余错误来自文件解析
		response.BadRequest(c, 15406, "无法解析Excel文件")
	}
}
