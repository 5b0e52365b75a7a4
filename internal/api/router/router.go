package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"lost-university/backend/config"
	"lost-university/backend/internal/api/handler"
	"lost-university/backend/internal/api/middleware"
	"lost-university/backend/pkg/jwt"
	"lost-university/backend/pkg/metrics"
	"lost-university/backend/pkg/redis"
)

// Deps 路由依赖；Redis 与 Metrics 可为 nil
type Deps struct {
	Config         *config.Config
	Handler        *handler.Handler
	Auth           middleware.Authenticator
	Redis          *redis.Client
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	Logger         *zap.Logger
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(d Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	cfg, h := d.Config, d.Handler

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Metrics(d.Metrics))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	if cfg.Server.BodyLimit > 0 {
		r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))
	}

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.Metrics.Enabled && d.MetricsHandler != nil {
		r.GET(cfg.Metrics.Path, gin.WrapH(d.MetricsHandler))
	}

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 学习计划（按会话缓存，无需认证）
		plans := v1.Group("/plans")
		plans.Use(middleware.Session(middleware.SessionOptions{
			CookieName: cfg.Session.CookieName,
			TTL:        cfg.Session.TTL,
			Secure:     cfg.Session.Secure,
		}))
		{
			plans.POST("/decode", h.Plan.Decode)
			plans.POST("/encode", h.Plan.Encode)
			plans.POST("/validate", h.Plan.Validate)
			plans.GET("/session", h.Plan.Session)
			plans.POST("/progress", h.Plan.Progress)
			plans.POST("/export", h.Plan.Export)
		}

		// 学期
		semesters := v1.Group("/semesters")
		{
			semesters.GET("", h.Semester.Range)
			semesters.GET("/current", h.Semester.GetCurrentSemester)
			semesters.GET("/next-possible", h.Semester.NextPossible)
		}

		// 模块目录（只读）
		v1.GET("/modules", h.Catalog.ListModules)
		v1.GET("/modules/:id", h.Catalog.GetModule)
		v1.GET("/categories", h.Catalog.ListCategories)
		v1.GET("/focuses", h.Catalog.ListFocuses)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(d.Auth))
		{
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.POST("/auth/revoke", h.Auth.Revoke)

			authorized.POST("/catalog/sync",
				middleware.RoleAuth(jwt.RoleAdmin),
				middleware.RateLimit(d.Redis, cfg.Catalog.SyncRateLimit, time.Minute, d.Logger),
				h.Catalog.Sync,
			)
		}
	}

	return r
}
