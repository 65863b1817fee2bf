package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"learnhub/backend/config"
	"learnhub/backend/internal/api/handler"
	"learnhub/backend/internal/api/middleware"
	"learnhub/backend/pkg/jwt"
	"learnhub/backend/pkg/redis"
	"learnhub/backend/pkg/telemetry"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil（未启用限流或 Redis 不可用）时学习端写接口不限流
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	reporter telemetry.Reporter,
	logger *zap.Logger,
) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(reporter, logger))
	r.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	limited := middleware.RateLimit(rdb, cfg.RateLimit.Limit, cfg.RateLimit.Window, logger)
	author := middleware.RoleAuth("admin", "instructor")

	// ── API v1（均需认证）──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr))
	{
		// 当前用户
		me := v1.Group("/me")
		{
			me.GET("/courses", h.Enrollment.MyCourses)
			me.GET("/transcript", h.Submission.GetTranscript)
		}

		// 用户模块（资料由身份服务同步）
		users := v1.Group("/users")
		{
			users.GET("/me", h.User.GetCurrentUser)
			users.POST("/sync", h.User.SyncUser) // admin 或本人（Service 层鉴权）
			users.GET("", middleware.RoleAuth("admin"), h.User.ListUsers)
			users.GET("/:id", author, h.User.GetUser)
		}

		// 课程模块
		courses := v1.Group("/courses")
		{
			courses.GET("", h.Course.ListCourses)
			courses.GET("/:id", h.Course.GetCourse)
			courses.POST("", author, h.Course.CreateCourse)
			courses.PUT("/:id", author, h.Course.UpdateCourse)
			courses.DELETE("/:id", author, h.Course.DeleteCourse)

			courses.GET("/:id/modules", h.Course.ListModules)
			courses.POST("/:id/modules", author, h.Course.CreateModule)
			courses.GET("/:id/assignments", h.Course.ListAssignments)

			// 学习进度与成绩
			courses.GET("/:id/outline", h.Learning.GetOutline)
			courses.GET("/:id/grade", h.Submission.GetCourseGrade)
			courses.GET("/:id/calendar.ics", h.Report.ExportDeadlines)

			// 选课（课程管理者鉴权在 Service 层）
			courses.POST("/:id/enrollments", limited, h.Enrollment.Enroll)
			courses.GET("/:id/enrollments", author, h.Enrollment.ListEnrollments)
			courses.POST("/:id/enrollments/import", author, h.Enrollment.ImportRoster)
			courses.DELETE("/:id/enrollments/:user_id", h.Enrollment.Unenroll)

			// 成绩册
			courses.GET("/:id/gradebook", author, h.Report.GetGradebook)
			courses.GET("/:id/gradebook/export", author, h.Report.ExportGradebook)
		}

		// 模块
		modules := v1.Group("/modules")
		{
			modules.GET("/:id", h.Module.GetModule)
			modules.PUT("/:id", author, h.Module.UpdateModule)
			modules.DELETE("/:id", author, h.Module.DeleteModule)

			modules.GET("/:id/contents", h.Module.ListContents)
			modules.POST("/:id/contents", author, h.Module.CreateContent)
			modules.GET("/:id/assignments", h.Module.ListAssignments)
			modules.POST("/:id/assignments", author, h.Module.CreateAssignment)

			// 学习端
			modules.GET("/:id/progress", h.Learning.GetProgress)
			modules.POST("/:id/progress/check", limited, h.Learning.CheckCompletion)
			modules.POST("/:id/contents/:content_id/view", limited, h.Learning.ViewContent)
			modules.GET("/:id/unlock-status", h.Learning.GetUnlockStatus)
			modules.GET("/:id/next", h.Learning.GetNextModule)
		}

		// 内容（编辑端）
		contents := v1.Group("/contents", author)
		{
			contents.GET("/:id", h.Content.GetContent)
			contents.PUT("/:id", h.Content.UpdateContent)
			contents.DELETE("/:id", h.Content.DeleteContent)
		}

		// 作业
		assignments := v1.Group("/assignments")
		{
			assignments.GET("/:id", author, h.Assignment.GetAssignment)
			assignments.PUT("/:id", author, h.Assignment.UpdateAssignment)
			assignments.DELETE("/:id", author, h.Assignment.DeleteAssignment)

			assignments.POST("/:id/submissions", limited, h.Submission.Submit)
			assignments.GET("/:id/submissions/me", h.Submission.GetMySubmission)
			assignments.GET("/:id/submissions", author, h.Submission.ListSubmissions)
		}

		// 评分
		v1.PUT("/submissions/:id/grade", author, h.Submission.GradeSubmission)
	}

	return r
}
