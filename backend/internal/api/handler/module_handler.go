package handler

import (
	"github.com/gin-gonic/gin"

	"learnhub/backend/internal/dto"
	"learnhub/backend/internal/service"
	"learnhub/backend/pkg/response"
)

// ModuleHandler 模块 HTTP 处理器（含模块下的内容与作业）
type ModuleHandler struct {
	moduleSvc     service.ModuleService
	contentSvc    service.ContentService
	assignmentSvc service.AssignmentService
	enrollmentSvc service.EnrollmentService
}

// NewModuleHandler 创建 ModuleHandler
func NewModuleHandler(
	moduleSvc service.ModuleService,
	contentSvc service.ContentService,
	assignmentSvc service.AssignmentService,
	enrollmentSvc service.EnrollmentService,
) *ModuleHandler {
	return &ModuleHandler{
		moduleSvc:     moduleSvc,
		contentSvc:    contentSvc,
		assignmentSvc: assignmentSvc,
		enrollmentSvc: enrollmentSvc,
	}
}

// GetModule 获取模块详情（学习者需已选课且模块已解锁）
// GET /api/v1/modules/:id
func (h *ModuleHandler) GetModule(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if _, err := h.enrollmentSvc.CheckModuleAccess(c.Request.Context(), id, callerID, role); err != nil {
		handleCommonError(c, err)
		return
	}

	module, err := h.moduleSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, module)
}

// UpdateModule 更新模块
// PUT /api/v1/modules/:id
func (h *ModuleHandler) UpdateModule(c *gin.Context) {
	var req dto.UpdateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	module, err := h.moduleSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID, role)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, module)
}

// DeleteModule 删除模块（软删除）
// DELETE /api/v1/modules/:id
func (h *ModuleHandler) DeleteModule(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.moduleSvc.Delete(c.Request.Context(), c.Param("id"), callerID, role); err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListContents 模块内容列表
// GET /api/v1/modules/:id/contents
func (h *ModuleHandler) ListContents(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if _, err := h.enrollmentSvc.CheckModuleAccess(c.Request.Context(), id, callerID, role); err != nil {
		handleCommonError(c, err)
		return
	}

	contents, err := h.contentSvc.ListByModule(c.Request.Context(), id, callerID, role)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, gin.H{"list": contents})
}

// CreateContent 创建模块内容
// POST /api/v1/modules/:id/contents
func (h *ModuleHandler) CreateContent(c *gin.Context) {
	var req dto.CreateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	content, err := h.contentSvc.Create(c.Request.Context(), c.Param("id"), &req, callerID, role)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.Created(c, content)
}

// ListAssignments 模块作业列表
// GET /api/v1/modules/:id/assignments
func (h *ModuleHandler) ListAssignments(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	id := c.Param("id")
	if _, err := h.enrollmentSvc.CheckModuleAccess(c.Request.Context(), id, callerID, role); err != nil {
		handleCommonError(c, err)
		return
	}

	assignments, err := h.assignmentSvc.ListByModule(c.Request.Context(), id, callerID, role)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, gin.H{"list": assignments})
}

// CreateAssignment 创建作业
// POST /api/v1/modules/:id/assignments
func (h *ModuleHandler) CreateAssignment(c *gin.Context) {
	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	assignment, err := h.assignmentSvc.Create(c.Request.Context(), c.Param("id"), &req, callerID, role)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.Created(c, assignment)
}
