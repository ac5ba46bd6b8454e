// Package router 组装 gin 路由和 net/http 中间件链
package router

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MorseWayne/catalog_admin/internal/api"
	"github.com/MorseWayne/catalog_admin/internal/config"
	"github.com/MorseWayne/catalog_admin/internal/limiter"
	mw "github.com/MorseWayne/catalog_admin/internal/middleware"
	"github.com/MorseWayne/catalog_admin/internal/resp"
)

// Dependencies 路由所需的处理器
type Dependencies struct {
	EditorHandler    *api.EditorHandler
	InventoryHandler *api.InventoryHandler
	RateLimiter      limiter.Limiter // 为空时不限流
}

// Router 路由器接口
type Router interface {
	Setup(cfg *config.Config, deps *Dependencies, lg *zap.Logger) http.Handler
}

// GinRouter Gin路由器实现
type GinRouter struct {
	engine *gin.Engine
	deps   *Dependencies
	cfg    *config.Config
}

// New 创建新的路由器实例
func New() Router {
	return &GinRouter{}
}

// Setup 注册路由并套上中间件。
// 请求进入时依次经过 access log → timeout → recovery → request ID → rate limit → gin(CORS)
func (r *GinRouter) Setup(cfg *config.Config, deps *Dependencies, lg *zap.Logger) http.Handler {
	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.DebugMode)
	}

	r.engine = gin.New()
	r.engine.HandleMethodNotAllowed = true
	r.engine.Use(cors.New(corsConfig(cfg.CORS)))
	r.deps = deps
	r.cfg = cfg

	r.setupRoutes()

	var handler http.Handler = r.engine
	if deps.RateLimiter != nil {
		handler = limiter.RateLimit(limiter.MiddlewareConfig{
			Limiter: deps.RateLimiter,
			Skip:    skipRateLimit,
			Logger:  lg,
		})(handler)
	}
	handler = mw.RequestID(handler)
	handler = mw.Recovery(lg)(handler)
	handler = mw.Timeout(cfg.App.RequestTimeout)(handler)
	handler = mw.AccessLog(lg)(handler)
	return handler
}

// skipRateLimit 预检请求和健康检查不消耗令牌
func skipRateLimit(req *http.Request) bool {
	return req.Method == http.MethodOptions || req.URL.Path == "/healthz"
}

// corsConfig AllowedOrigins 包含 "*" 时允许任意来源
func corsConfig(c config.CORSConfig) cors.Config {
	cc := cors.Config{
		AllowMethods:  c.AllowedMethods,
		AllowHeaders:  c.AllowedHeaders,
		ExposeHeaders: []string{mw.HeaderRequestID, "Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		MaxAge:        12 * time.Hour,
	}
	if len(c.AllowedOrigins) == 0 || slices.Contains(c.AllowedOrigins, "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = c.AllowedOrigins
	}
	return cc
}

func (r *GinRouter) setupRoutes() {
	r.engine.GET("/healthz", r.wrapHandler(r.healthCheck))
	r.engine.NoRoute(r.wrapHandler(notFound))
	r.engine.NoMethod(r.wrapHandler(methodNotAllowed))

	admin := r.engine.Group("/api/v1/admin")
	{
		sessions := admin.Group("/product-sessions")
		{
			sessions.POST("", r.wrapHandler(r.deps.EditorHandler.OpenSession))
			sessions.GET("/:sid", r.wrapHandler(r.deps.EditorHandler.GetSession))
			sessions.DELETE("/:sid", r.wrapHandler(r.deps.EditorHandler.Discard))
			sessions.PUT("/:sid/draft", r.wrapHandler(r.deps.EditorHandler.UpdateDraft))
			sessions.POST("/:sid/sizes", r.wrapHandler(r.deps.EditorHandler.EditSize))
			sessions.GET("/:sid/preview", r.wrapHandler(r.deps.EditorHandler.Preview))
			sessions.POST("/:sid/submit", r.wrapHandler(r.deps.EditorHandler.Submit))
		}

		admin.GET("/products/:id/size-inventory", r.wrapHandler(r.deps.InventoryHandler.GetSizeInventory))
	}
}

// healthCheck 健康检查
func (r *GinRouter) healthCheck(w http.ResponseWriter, req *http.Request) {
	data := map[string]any{
		"status":  "ok",
		"version": r.cfg.App.Version,
	}
	resp.OK(w, data, mw.RequestIDFromContext(req.Context()), "")
}

func notFound(w http.ResponseWriter, r *http.Request) {
	resp.Error(w, http.StatusNotFound, resp.CodeNotFound, "route not found", mw.RequestIDFromContext(r.Context()), "")
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	resp.Error(w, http.StatusMethodNotAllowed, resp.CodeInvalidParam, "method not allowed", mw.RequestIDFromContext(r.Context()), "")
}

// wrapHandler 将标准的 http.HandlerFunc 包装为 gin.HandlerFunc，路径参数通过 r.PathValue 读取
func (r *GinRouter) wrapHandler(handler http.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, p := range c.Params {
			c.Request.SetPathValue(p.Key, p.Value)
		}
		handler(c.Writer, c.Request)
	}
}
