package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"learnhub/backend/pkg/response"
	"learnhub/backend/pkg/telemetry"
)

// Recovery panic 恢复与错误上报中间件
// 捕获 panic 并返回 500；5xx 响应附带的 c.Errors 一并上报
func Recovery(reporter telemetry.Reporter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if recovered := recover(); recovered != nil {
				logger.Error("请求处理 panic",
					zap.Any("panic", recovered),
					zap.String("path", c.Request.URL.Path),
					zap.String("request_id", c.GetString(requestIDKey)),
					zap.Stack("stack"),
				)
				reporter.ReportPanic(c.Request.Context(), recovered, requestExtras(c))
				if !c.Writer.Written() {
					response.InternalError(c)
				}
				c.Abort()
			}
		}()

		c.Next()

		if c.Writer.Status() < 500 {
			return
		}
		for _, ginErr := range c.Errors.ByType(gin.ErrorTypePrivate) {
			reporter.ReportError(c.Request.Context(), ginErr.Err, requestExtras(c))
		}
	}
}

func requestExtras(c *gin.Context) map[string]interface{} {
	return map[string]interface{}{
		"request_id": c.GetString(requestIDKey),
		"method":     c.Request.Method,
		"route":      c.FullPath(),
		"user_id":    c.GetString("user_id"),
	}
}
