package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"learnhub/backend/internal/dto"
	"learnhub/backend/internal/service"
	"learnhub/backend/pkg/response"
)

// SubmissionHandler 作业提交与评分 HTTP 处理器
type SubmissionHandler struct {
	submissionSvc service.SubmissionService
	gradeSvc      service.GradeService
}

// NewSubmissionHandler 创建 SubmissionHandler
func NewSubmissionHandler(submissionSvc service.SubmissionService, gradeSvc service.GradeService) *SubmissionHandler {
	return &SubmissionHandler{submissionSvc: submissionSvc, gradeSvc: gradeSvc}
}

// Submit 提交或重新提交作业，返回提交记录与最新模块进度
// POST /api/v1/assignments/:id/submissions
func (h *SubmissionHandler) Submit(c *gin.Context) {
	var req dto.SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.submissionSvc.Submit(c.Request.Context(), c.Param("id"), &req, userID, role)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, result)
}

// GetMySubmission 当前用户在该作业的提交记录
// GET /api/v1/assignments/:id/submissions/me
func (h *SubmissionHandler) GetMySubmission(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	sub, err := h.submissionSvc.GetMine(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, sub)
}

// ListSubmissions 作业全部提交（课程管理者）
// GET /api/v1/assignments/:id/submissions
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, err := h.submissionSvc.ListByAssignment(c.Request.Context(), c.Param("id"), callerID, role)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// GradeSubmission 评分 / 修改评分（修改时需携带 version）
// PUT /api/v1/submissions/:id/grade
func (h *SubmissionHandler) GradeSubmission(c *gin.Context) {
	var req dto.GradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	grade, err := h.gradeSvc.GradeSubmission(c.Request.Context(), c.Param("id"), &req, callerID, role)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, grade)
}

// GetCourseGrade 课程成绩（默认本人；课程管理者可通过 student_id 查询他人）
// GET /api/v1/courses/:id/grade?student_id=
func (h *SubmissionHandler) GetCourseGrade(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	studentID := c.DefaultQuery("student_id", callerID)
	grade, err := h.gradeSvc.CourseGrade(c.Request.Context(), c.Param("id"), studentID, callerID, role)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, grade)
}

// GetTranscript 当前用户成绩单与 GPA
// GET /api/v1/me/transcript
func (h *SubmissionHandler) GetTranscript(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	transcript, err := h.gradeSvc.Transcript(c.Request.Context(), userID)
	if err != nil {
		h.handleSubmissionError(c, err)
		return
	}

	response.OK(c, transcript)
}

func (h *SubmissionHandler) handleSubmissionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGradePointsInvalid):
		response.BadRequest(c, 15601, "分数超出作业满分范围")
	case errors.Is(err, service.ErrGradeVersionRequired):
		response.BadRequest(c, 15602, "修改已有评分需提供 version")
	default:
		handleCommonError(c, err)
	}
}
