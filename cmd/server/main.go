package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"go.uber.org/zap"

	"github.com/Yvesthior/moncareme-agd/config"
	"github.com/Yvesthior/moncareme-agd/internal/api/handler"
	"github.com/Yvesthior/moncareme-agd/internal/api/middleware"
	"github.com/Yvesthior/moncareme-agd/internal/api/router"
	"github.com/Yvesthior/moncareme-agd/internal/catalog"
	"github.com/Yvesthior/moncareme-agd/internal/repository"
	"github.com/Yvesthior/moncareme-agd/internal/service"
	"github.com/Yvesthior/moncareme-agd/pkg/cache"
	"github.com/Yvesthior/moncareme-agd/pkg/database"
	"github.com/Yvesthior/moncareme-agd/pkg/jwt"
	applogger "github.com/Yvesthior/moncareme-agd/pkg/logger"
	"github.com/Yvesthior/moncareme-agd/pkg/metrics"
	"github.com/Yvesthior/moncareme-agd/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认查找 ./config/config.yaml）")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.Int("wakeup_space_day", cfg.Catalog.WakeupSpaceDay),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级为进程内黑名单，限流关闭）
	var (
		blacklist service.TokenBlacklist
		limiter   middleware.RateLimiter
	)
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单降级为进程内缓存，限流关闭", zap.Error(err))
		blacklist = cache.NewLocalBlacklist(&cfg.Cache, logger)
	} else {
		blacklist = rdb
		limiter = rdb
	}

	// 5. 初始化 JWT 管理器与功课目录
	jwtMgr := jwt.NewManager(&cfg.Auth)
	cat := catalog.New(cfg.Catalog.WakeupSpaceDay)
	rec := metrics.New(&cfg.Metrics)

	// 6. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(repo, cat, blacklist, logger)
	h := handler.NewHandler(svc)

	// 7. 初始化路由
	engine := router.Setup(cfg, h, router.Deps{
		JWT:       jwtMgr,
		Blacklist: blacklist,
		Limiter:   limiter,
		Metrics:   rec,
		DB:        sqlDB,
	}, logger)

	var rootHandler http.Handler = engine
	if cfg.Server.Gzip {
		rootHandler = gzhttp.GzipHandler(engine)
	}

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      rootHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	if err := sqlDB.Close(); err != nil {
		logger.Error("关闭数据库连接失败", zap.Error(err))
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
