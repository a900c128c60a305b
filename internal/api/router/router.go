package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"hospitality-ops/backend/config"
	"hospitality-ops/backend/internal/api/handler"
	"hospitality-ops/backend/internal/api/middleware"
	"hospitality-ops/backend/internal/model"
	"hospitality-ops/backend/pkg/jwt"
	"hospitality-ops/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时 Token 黑名单与限流降级关闭
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	// 请求体出现未声明字段时直接 400
	binding.EnableDecoderDisallowUnknownFields = true

	var (
		blacklist middleware.TokenBlacklist
		limiter   middleware.Limiter
	)
	if rdb != nil {
		blacklist = rdb
		limiter = rdb
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimitBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	scheduler := middleware.RoleAuth(model.RoleAdmin, model.RoleManager)
	writeLimit := middleware.RateLimit(limiter, cfg.RateLimit.Requests, cfg.RateLimit.Window)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		auth.Use(writeLimit)
		{
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 门店模块
			locations := authorized.Group("/locations")
			{
				locations.GET("", h.Location.ListLocations)
				locations.GET("/:id", h.Location.GetLocation)
				locations.POST("", middleware.RoleAuth(model.RoleAdmin), writeLimit, h.Location.CreateLocation)
			}

			// 排班周模块
			rotas := authorized.Group("/rotas")
			{
				rotas.GET("", h.Rota.ListRotas)
				rotas.GET("/:id", h.Rota.GetRota)
				rotas.POST("", scheduler, writeLimit, h.Rota.CreateRota)
				rotas.PUT("/:id/status", scheduler, writeLimit, h.Rota.UpdateRotaStatus)
			}

			// 班次模块
			shifts := authorized.Group("/shifts")
			{
				shifts.GET("", h.Shift.ListShifts)
				shifts.POST("", scheduler, writeLimit, h.Shift.CreateShift)
				shifts.POST("/:id/assignments", scheduler, writeLimit, h.Assignment.CreateAssignment)
			}

			// 指派模块（员工可接受/拒绝自己的指派，Service 层鉴权）
			authorized.PUT("/assignments/:id/status", writeLimit, h.Assignment.UpdateAssignmentStatus)

			// 打卡模块
			timeclock := authorized.Group("/timeclock")
			{
				timeclock.POST("/events", writeLimit, h.Timeclock.RecordEvent)
				timeclock.GET("/events", h.Timeclock.ListEvents)
			}

			// 工时单模块（员工只能查看自己的工时单）
			timesheets := authorized.Group("/timesheets")
			{
				timesheets.GET("", h.Timesheet.ListTimesheets)
				timesheets.GET("/:id", h.Timesheet.GetTimesheet)
				timesheets.POST("", scheduler, writeLimit, h.Timesheet.GenerateTimesheet)
				timesheets.POST("/:id/approve", scheduler, writeLimit, h.Timesheet.ApproveTimesheet)
				timesheets.POST("/:id/lock", scheduler, writeLimit, h.Timesheet.LockTimesheet)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/timesheets", scheduler, h.Export.ExportTimesheets)
				export.GET("/my-shifts", h.Export.ExportMyShifts)
			}
		}
	}

	return r
}
