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

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"lost-university/backend/config"
	"lost-university/backend/internal/api/handler"
	"lost-university/backend/internal/api/router"
	"lost-university/backend/internal/catalog"
	"lost-university/backend/internal/repository"
	"lost-university/backend/internal/service"
	"lost-university/backend/pkg/database"
	"lost-university/backend/pkg/jwt"
	applogger "lost-university/backend/pkg/logger"
	"lost-university/backend/pkg/metrics"
	"lost-university/backend/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	flag.Parse()

	// 0. 本地开发时从 .env 读取环境变量（文件不存在时忽略）
	_ = godotenv.Load()

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
		zap.String("studienordnung", cfg.Catalog.Studienordnung),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, logger)
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

	// 4. 连接 Redis（可选：连接失败时降级运行，会话缓存与吊销改用内存）
	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，会话缓存与 Token 吊销改用进程内存", zap.Error(err))
		rdb = nil
	}

	// 5. 指标与 JWT
	reg, m := metrics.NewRegistry()
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 6. 目录来源：本地文件优先，否则远程数据仓库
	store := catalog.NewStore()
	var (
		source     service.CatalogSource
		sourceName string
	)
	if cfg.Catalog.File != "" {
		source, sourceName = catalog.FileSource{Path: cfg.Catalog.File}, "file"
	} else {
		client := &http.Client{Timeout: cfg.Catalog.Timeout}
		source, sourceName = catalog.NewFetcher(cfg.Catalog.BaseURL, client, logger), "remote"
	}

	// 7. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(service.Deps{
		Config:     cfg,
		Repo:       repo,
		Store:      store,
		Source:     source,
		SourceName: sourceName,
		JWT:        jwtMgr,
		Redis:      rdb,
		Metrics:    m,
		Logger:     logger,
	})
	h := handler.NewHandler(svc)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 8. 加载目录
	loadCatalog(ctx, cfg, svc, store, logger)

	// 9. 初始化路由
	engine := router.Setup(router.Deps{
		Config:         cfg,
		Handler:        h,
		Auth:           svc.Auth,
		Redis:          rdb,
		Metrics:        m,
		MetricsHandler: metrics.HandlerFor(reg),
		Logger:         logger,
	})

	// 10. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 11. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	closeDB, _ := db.DB()
	if closeDB != nil {
		closeDB.Close()
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}

// loadCatalog 启动时加载目录：先用数据库中的上次同步结果预热，
// 再按配置从本地文件或远程数据仓库刷新。任一步失败都只记录日志。
func loadCatalog(ctx context.Context, cfg *config.Config, svc *service.Service, store *catalog.Store, logger *zap.Logger) {
	if n, err := svc.Catalog.Warm(ctx); err != nil {
		logger.Warn("从数据库预热目录失败", zap.Error(err))
	} else {
		logger.Info("目录已从数据库预热", zap.Int("modules", n))
	}

	if cfg.Catalog.File != "" {
		apply := func(cat *catalog.Catalog) {
			if err := svc.Catalog.Apply(ctx, cat, "", "file"); err != nil {
				logger.Error("写入目录文件失败", zap.String("path", cfg.Catalog.File), zap.Error(err))
			}
		}

		if !cfg.Catalog.Watch {
			cat, err := catalog.LoadFile(cfg.Catalog.File)
			if err != nil {
				logger.Error("加载目录文件失败", zap.String("path", cfg.Catalog.File), zap.Error(err))
				return
			}
			apply(cat)
			return
		}

		w, err := catalog.NewWatcher(cfg.Catalog.File, store, apply, logger)
		if err != nil {
			logger.Error("创建目录文件监听失败", zap.Error(err))
			return
		}
		if err := w.Reload(); err != nil {
			logger.Error("加载目录文件失败", zap.String("path", cfg.Catalog.File), zap.Error(err))
		}
		go w.Run(ctx)
		return
	}

	if !cfg.Catalog.SyncOnStart {
		return
	}
	syncCtx, cancel := context.WithTimeout(ctx, cfg.Catalog.Timeout*3)
	defer cancel()
	result, err := svc.Catalog.Sync(syncCtx, "", "startup")
	if err != nil {
		logger.Warn("启动时同步目录失败，继续使用数据库中的目录", zap.Error(err))
		return
	}
	logger.Info("目录同步完成",
		zap.String("source", result.Source),
		zap.Int("modules", result.Modules),
		zap.Int("categories", result.Categories),
		zap.Int("focuses", result.Focuses),
	)
}
