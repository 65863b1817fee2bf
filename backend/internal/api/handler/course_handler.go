package handler

import (
	"github.com/gin-gonic/gin"

	"learnhub/backend/internal/dto"
	"learnhub/backend/internal/service"
	"learnhub/backend/pkg/response"
)

// CourseHandler 课程模块 HTTP 处理器
type CourseHandler struct {
	courseSvc     service.CourseService
	moduleSvc     service.ModuleService
	assignmentSvc service.AssignmentService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService, moduleSvc service.ModuleService, assignmentSvc service.AssignmentService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc, moduleSvc: moduleSvc, assignmentSvc: assignmentSvc}
}

// ListCourses 课程列表（已发布课程 + 本人创建的课程）
// GET /api/v1/courses
func (h *CourseHandler) ListCourses(c *gin.Context) {
	var req dto.CourseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	courses, total, err := h.courseSvc.List(c.Request.Context(), &req, callerID, role)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.OKPage(c, courses, total, req.GetPage(), req.GetPageSize())
}

// GetCourse 获取课程详情
// GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	course, err := h.courseSvc.GetByID(c.Request.Context(), c.Param("id"), callerID, role)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, course)
}

// CreateCourse 创建课程
// POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	course, err := h.courseSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.Created(c, course)
}

// UpdateCourse 更新课程
// PUT /api/v1/courses/:id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	course, err := h.courseSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID, role)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, course)
}

// DeleteCourse 删除课程（软删除）
// DELETE /api/v1/courses/:id
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.courseSvc.Delete(c.Request.Context(), c.Param("id"), callerID, role); err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListModules 课程模块列表（按 order_index 升序）
// GET /api/v1/courses/:id/modules
func (h *CourseHandler) ListModules(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	modules, err := h.moduleSvc.ListByCourse(c.Request.Context(), c.Param("id"), callerID, role)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, gin.H{"list": modules})
}

// CreateModule 创建模块
// POST /api/v1/courses/:id/modules
func (h *CourseHandler) CreateModule(c *gin.Context) {
	var req dto.CreateModuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	module, err := h.moduleSvc.Create(c.Request.Context(), c.Param("id"), &req, callerID, role)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.Created(c, module)
}

// ListAssignments 课程全部作业
// GET /api/v1/courses/:id/assignments
func (h *CourseHandler) ListAssignments(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	assignments, err := h.assignmentSvc.ListByCourse(c.Request.Context(), c.Param("id"), callerID, role)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, gin.H{"list": assignments})
}
