package handler

import (
	"github.com/gin-gonic/gin"

	"learnhub/backend/internal/dto"
	"learnhub/backend/internal/service"
	"learnhub/backend/pkg/response"
)

// ContentHandler 模块内容 HTTP 处理器（编辑端）
type ContentHandler struct {
	contentSvc service.ContentService
}

// NewContentHandler 创建 ContentHandler
func NewContentHandler(contentSvc service.ContentService) *ContentHandler {
	return &ContentHandler{contentSvc: contentSvc}
}

// GetContent 获取内容详情
// GET /api/v1/contents/:id
func (h *ContentHandler) GetContent(c *gin.Context) {
	content, err := h.contentSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, content)
}

// UpdateContent 更新内容
// PUT /api/v1/contents/:id
func (h *ContentHandler) UpdateContent(c *gin.Context) {
	var req dto.UpdateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	content, err := h.contentSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID, role)
	if err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, content)
}

// DeleteContent 删除内容（软删除）
// DELETE /api/v1/contents/:id
func (h *ContentHandler) DeleteContent(c *gin.Context) {
	callerID, role, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.contentSvc.Delete(c.Request.Context(), c.Param("id"), callerID, role); err != nil {
		handleCommonError(c, err)
		return
	}

	response.OK(c, nil)
}
