package handler

import (
	"github.com/gin-gonic/gin"

	"learnhub/backend/internal/service"
	"learnhub/backend/pkg/response"
)

// LearningHandler 学习端 HTTP 处理器：进度、浏览记录与解锁状态
//
// 访问控制（选课、发布、解锁）在调用进度引擎前由 EnrollmentService 完成
type LearningHandler struct {
	progressSvc   service.ProgressService
	enrollmentSvc service.EnrollmentService
	contentSvc    service.ContentService
}

// NewLearningHandler 创建 LearningHandler
func NewLearningHandler(progressSvc service.ProgressService, enrollmentSvc service.EnrollmentService, contentSvc service.ContentService) *LearningHandler {
	return &LearningHandler{progressSvc: progressSvc, enrollmentSvc: enrollmentSvc, contentSvc: contentSvc}
}

// GetProgress 当前用户的模块进度
// GET /api/v1/modules/:id/progress
func (h *LearningHandler) GetProgress(c *gin.Context) {
	userID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	moduleID := c.Param("id")
	if _, err := h.enrollmentSvc.CheckModuleAccess(c.Request.Context(), moduleID, userID, role); err != nil {
		handleCommonError(c, err)
		return
	}

	progress, err := h.progressSvc.CalculateProgress(c.Request.Context(), moduleID, userID)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, progress)
}

// ViewContent 记录内容浏览，返回最新进度（首次完成时附带解锁的模块）
// POST /api/v1/modules/:id/contents/:content_id/view
func (h *LearningHandler) ViewContent(c *gin.Context) {
	userID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	moduleID := c.Param("id")
	contentID := c.Param("content_id")

	if _, err := h.enrollmentSvc.CheckModuleAccess(ctx, moduleID, userID, role); err != nil {
		handleCommonError(c, err)
		return
	}
	if _, err := h.contentSvc.GetInModule(ctx, moduleID, contentID); err != nil {
		handleCommonError(c, err)
		return
	}

	progress, err := h.progressSvc.MarkContentViewed(ctx, moduleID, userID, contentID)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, progress)
}

// CheckCompletion 重新检测模块完成状态（完成写入失败后的补偿入口）
// POST /api/v1/modules/:id/progress/check
func (h *LearningHandler) CheckCompletion(c *gin.Context) {
	userID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	moduleID := c.Param("id")
	if _, err := h.enrollmentSvc.CheckModuleAccess(c.Request.Context(), moduleID, userID, role); err != nil {
		handleCommonError(c, err)
		return
	}

	progress, err := h.progressSvc.CheckAndUpdateModuleCompletion(c.Request.Context(), moduleID, userID)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, progress)
}

// GetUnlockStatus 模块对当前用户的解锁状态（未解锁也返回 200）
// GET /api/v1/modules/:id/unlock-status?course_id=
func (h *LearningHandler) GetUnlockStatus(c *gin.Context) {
	userID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	moduleID := c.Param("id")
	if _, err := h.enrollmentSvc.CheckModuleVisible(c.Request.Context(), moduleID, userID, role); err != nil {
		handleCommonError(c, err)
		return
	}

	status, err := h.progressSvc.IsModuleUnlocked(c.Request.Context(), moduleID, userID, c.Query("course_id"))
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, status)
}

// GetNextModule 完成该模块后将解锁的模块（无则 data 为空）
// GET /api/v1/modules/:id/next
func (h *LearningHandler) GetNextModule(c *gin.Context) {
	userID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	moduleID := c.Param("id")
	if _, err := h.enrollmentSvc.CheckModuleVisible(c.Request.Context(), moduleID, userID, role); err != nil {
		handleCommonError(c, err)
		return
	}

	next, err := h.progressSvc.GetNextModuleToUnlock(c.Request.Context(), moduleID)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, next)
}

// GetOutline 课程大纲：每个已发布模块的进度与解锁状态
// GET /api/v1/courses/:id/outline
func (h *LearningHandler) GetOutline(c *gin.Context) {
	userID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	outline, err := h.enrollmentSvc.CourseOutline(c.Request.Context(), c.Param("id"), userID, role)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, outline)
}
