package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/MorseWayne/catalog_admin/internal/api"
	"github.com/MorseWayne/catalog_admin/internal/cache"
	"github.com/MorseWayne/catalog_admin/internal/config"
	"github.com/MorseWayne/catalog_admin/internal/database"
	"github.com/MorseWayne/catalog_admin/internal/limiter"
	"github.com/MorseWayne/catalog_admin/internal/logger"
	"github.com/MorseWayne/catalog_admin/internal/payload"
	"github.com/MorseWayne/catalog_admin/internal/repo"
	"github.com/MorseWayne/catalog_admin/internal/router"
	"github.com/MorseWayne/catalog_admin/internal/service"
)

// initConfigAndLogger 初始化配置和日志器
func initConfigAndLogger() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	lg, err := logger.New(cfg.App.Env, cfg.Log.Level, cfg.Log.Encoding, cfg.App.Name, cfg.App.Version)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, lg, nil
}

// initDatabase 连接数据库并在启动 HTTP 服务前执行迁移
func initDatabase(cfg *config.Config, lg *zap.Logger) (*database.DB, error) {
	db, err := database.New(cfg, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	lg.Info("using migrations directory", zap.String("path", cfg.Migrations.Dir))
	if err := db.RunMigrations(cfg.Migrations.Dir); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}
	return db, nil
}

// initCache 创建缓存。Redis 不可用时退回内存缓存
func initCache(cfg *config.Config, lg *zap.Logger) cache.Cache {
	if !cfg.Cache.Enabled {
		lg.Info("cache disabled")
		return cache.NewNullCache()
	}

	switch cfg.Cache.Type {
	case "redis":
		addr := cfg.Redis.Addr()
		redisCache, err := cache.NewRedisCache(addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			lg.Warn("failed to connect to Redis, falling back to memory cache", zap.Error(err))
			return cache.NewMemoryCache()
		}
		lg.Info("cache enabled", zap.String("type", "redis"), zap.String("addr", addr), zap.Duration("ttl", cfg.Cache.TTL))
		return redisCache
	case "memory":
		lg.Info("cache enabled", zap.String("type", "memory"), zap.Duration("ttl", cfg.Cache.TTL))
		return cache.NewMemoryCache()
	default:
		lg.Warn("unknown cache type, using memory cache", zap.String("type", cfg.Cache.Type))
		return cache.NewMemoryCache()
	}
}

// sessionStore 编辑会话必须真正保存，缓存关闭时单独使用内存缓存
func sessionStore(cfg *config.Config, c cache.Cache) cache.Cache {
	if !cfg.Cache.Enabled {
		return cache.NewMemoryCache()
	}
	return c
}

// initRateLimiter Redis 缓存可用时多实例共享令牌桶，否则使用进程内限流
func initRateLimiter(cfg *config.Config, c cache.Cache, lg *zap.Logger) limiter.Limiter {
	if !cfg.RateLimit.Enabled {
		lg.Info("rate limit disabled")
		return nil
	}
	lc := limiter.Config{
		Rate:      int64(cfg.RateLimit.Rate),
		Burst:     int64(cfg.RateLimit.Burst),
		Window:    cfg.RateLimit.Window,
		KeyPrefix: cfg.App.Name + ":limiter",
	}
	if rc, ok := c.(*cache.RedisCache); ok {
		if l, err := limiter.NewRedisLimiter(rc.Client(), lc); err == nil {
			lg.Info("rate limit enabled", zap.String("type", "redis"), zap.Int("rate", cfg.RateLimit.Rate), zap.Int("burst", cfg.RateLimit.Burst))
			return l
		}
	}
	l, err := limiter.NewMemoryLimiter(lc)
	if err != nil {
		lg.Warn("invalid rate limit settings, rate limit disabled", zap.Error(err))
		return nil
	}
	lg.Info("rate limit enabled", zap.String("type", "memory"), zap.Int("rate", cfg.RateLimit.Rate), zap.Int("burst", cfg.RateLimit.Burst))
	return l
}

// initDependencies 仓储 -> 服务 -> 处理器
func initDependencies(cfg *config.Config, db *database.DB, c cache.Cache, lg *zap.Logger) *router.Dependencies {
	var (
		productRepo = repo.NewProductRepository(db.DB)
		sizeRepo    = repo.NewSizeInventoryRepository(db.DB)
	)
	if cfg.Cache.Enabled {
		productRepo = repo.NewCachedProductRepository(productRepo, c, cfg.Cache.TTL, lg)
		sizeRepo = repo.NewCachedSizeInventoryRepository(sizeRepo, c, cfg.Cache.TTL, lg)
	}
	sessions := repo.NewEditSessionRepository(sessionStore(cfg, c), cfg.Catalog.SessionTTL)

	builder := payload.NewBuilder(payload.Options{
		DefaultCurrency:          cfg.Catalog.DefaultCurrency,
		FallbackShortDescription: cfg.Catalog.FallbackShortDescription,
		ShortDescriptionLimit:    cfg.Catalog.ShortDescriptionLimit,
	})
	syncService := service.NewInventorySyncService(sizeRepo, cfg.Catalog.InventoryConcurrency, lg)
	editor := service.NewProductEditorService(productRepo, sessions, syncService, builder, lg)

	return &router.Dependencies{
		EditorHandler:    api.NewEditorHandler(editor, lg),
		InventoryHandler: api.NewInventoryHandler(editor, lg),
		RateLimiter:      initRateLimiter(cfg, c, lg),
	}
}

// startServer 启动服务器，收到退出信号后优雅关闭
func startServer(cfg *config.Config, handler http.Handler, lg *zap.Logger) {
	addr := fmt.Sprintf(":%d", cfg.App.Port)
	lg.Info("server starting", zap.String("addr", addr))
	srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 5 * time.Second}

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server error", zap.Error(err))
		}
	case sig := <-quit:
		lg.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		lg.Error("server shutdown error", zap.Error(err))
	}
	lg.Info("server exited")
}

func main() {
	cfg, lg, err := initConfigAndLogger()
	if err != nil {
		log.Fatalf("failed to initialize config and logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	db, err := initDatabase(cfg, lg)
	if err != nil {
		lg.Fatal("failed to initialize database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			lg.Error("failed to close database connection", zap.Error(err))
		}
	}()

	c := initCache(cfg, lg)
	defer func() { _ = c.Close() }()

	deps := initDependencies(cfg, db, c, lg)
	handler := router.New().Setup(cfg, deps, lg)

	startServer(cfg, handler, lg)
}
