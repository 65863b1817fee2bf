package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"learnhub/backend/internal/service"
	"learnhub/backend/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ReportHandler 成绩册与截止日历 HTTP 处理器
type ReportHandler struct {
	gradebookSvc service.GradebookService
	calendarSvc  service.CalendarService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(gradebookSvc service.GradebookService, calendarSvc service.CalendarService) *ReportHandler {
	return &ReportHandler{gradebookSvc: gradebookSvc, calendarSvc: calendarSvc}
}

// GetGradebook 课程成绩册
// GET /api/v1/courses/:id/gradebook
func (h *ReportHandler) GetGradebook(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	book, err := h.gradebookSvc.Build(c.Request.Context(), c.Param("id"), callerID, role)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.OK(c, book)
}

// ExportGradebook 导出成绩册 Excel
// GET /api/v1/courses/:id/gradebook/export
func (h *ReportHandler) ExportGradebook(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	buf, filename, err := h.gradebookSvc.Export(c.Request.Context(), c.Param("id"), callerID, role)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.Attachment(c, filename, contentTypeXLSX, buf.Bytes())
}

// ExportDeadlines 导出课程作业截止日历（iCalendar）
// GET /api/v1/courses/:id/calendar.ics
func (h *ReportHandler) ExportDeadlines(c *gin.Context) {
	userID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	body, filename, err := h.calendarSvc.CourseDeadlines(c.Request.Context(), c.Param("id"), userID, role)
	if err != nil {
		h.handleReportError(c, err)
		return
	}

	response.Attachment(c, filename, contentTypeICS, []byte(body))
}

func (h *ReportHandler) handleReportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportGenerateFail):
		_ = c.Error(err)
		response.InternalError(c)
	default:
		handleCommonError(c, err)
	}
}
