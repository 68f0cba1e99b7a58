package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Yvesthior/moncareme-agd/config"
	"github.com/Yvesthior/moncareme-agd/internal/api/handler"
	"github.com/Yvesthior/moncareme-agd/internal/api/middleware"
	"github.com/Yvesthior/moncareme-agd/pkg/jwt"
	"github.com/Yvesthior/moncareme-agd/pkg/metrics"
	"github.com/Yvesthior/moncareme-agd/pkg/response"
)

// Pinger 健康检查依赖（*sql.DB 实现）
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps 路由所需的基础设施依赖，可选项为 nil 时对应功能降级
type Deps struct {
	JWT       *jwt.Manager
	Blacklist middleware.TokenChecker
	Limiter   middleware.RateLimiter
	Metrics   metrics.Recorder
	DB        Pinger
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, deps Deps, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	rec := deps.Metrics
	if rec == nil {
		rec = metrics.New(nil)
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics(rec))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	if cfg.Server.BodyLimitBytes > 0 {
		r.Use(middleware.BodyLimit(cfg.Server.BodyLimitBytes))
	}

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		if deps.DB != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := deps.DB.PingContext(ctx); err != nil {
				logger.Warn("健康检查失败", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── Prometheus 指标 ──
	if mh := rec.Handler(); mh != nil {
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(mh))
	}

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, response.CodeRouteNotFound, "接口不存在")
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 所有业务路由均需认证
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(deps.JWT, deps.Blacklist, rec, logger))

		// 写接口限流
		limited := middleware.RateLimit(deps.Limiter, cfg.RateLimit.Requests, cfg.RateLimit.Window, rec)

		{
			// 认证模块
			authorized.POST("/auth/logout", h.Auth.Logout)

			// 功课目录
			authorized.GET("/exercises", h.Exercise.ListExercises)

			// 周记录模块
			entries := authorized.Group("/entries")
			{
				entries.GET("", h.Entry.ListEntries)
				entries.POST("", limited, h.Entry.CreateEntry)
				entries.POST("/create", limited, h.Entry.CreateEntry)
				entries.GET("/:id", h.Entry.GetEntry)
				entries.PUT("/:id", limited, h.Entry.UpdateEntry)
				entries.GET("/:id/export", limited, h.Entry.ExportEntry)
			}
		}
	}

	return r
}
