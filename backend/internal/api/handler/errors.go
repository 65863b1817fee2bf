package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"learnhub/backend/internal/service"
	pkgerrors "learnhub/backend/pkg/errors"
	"learnhub/backend/pkg/response"
)

// handleCommonError 处理跨模块共享的业务错误，未识别的错误按 500 处理
//
// 错误码分段：
//   - 10xxx 通用（参数、认证、限流、并发冲突）
//   - 11xxx 用户
//   - 15xxx 课程 / 模块 / 内容 / 作业 / 选课 / 提交 / 评分
func handleCommonError(c *gin.Context, err error) {
	var locked *service.ModuleLockedError
	switch {
	case errors.As(err, &locked):
		response.ErrorWithData(c, http.StatusForbidden, 15103, locked.Error(), locked.Status)
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 15001, "课程不存在")
	case errors.Is(err, service.ErrCourseForbidden):
		response.Forbidden(c, 15002, "无权管理该课程")
	case errors.Is(err, service.ErrModuleNotFound):
		response.NotFound(c, 15101, "模块不存在")
	case errors.Is(err, service.ErrModuleOrderConflict):
		response.Conflict(c, 15102, "同一课程内模块序号已被占用")
	case errors.Is(err, service.ErrContentNotFound):
		response.NotFound(c, 15201, "内容不存在")
	case errors.Is(err, service.ErrAssignmentNotFound):
		response.NotFound(c, 15301, "作业不存在")
	case errors.Is(err, service.ErrAssignmentDueInvalid):
		response.BadRequest(c, 15302, "截止时间格式无效")
	case errors.Is(err, service.ErrNotEnrolled):
		response.Forbidden(c, 15401, "未选修该课程")
	case errors.Is(err, service.ErrEnrollInvalid):
		response.Forbidden(c, 15402, "只有课程管理者可以为他人选课或指定讲师角色")
	case errors.Is(err, service.ErrSubmissionNotFound):
		response.NotFound(c, 15501, "提交记录不存在")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11001, "用户不存在")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 10005, "数据已被他人修改，请刷新后重试")
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
