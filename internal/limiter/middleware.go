package limiter

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	mw "github.com/MorseWayne/catalog_admin/internal/middleware"
	"github.com/MorseWayne/catalog_admin/internal/resp"
)

// MiddlewareConfig 中间件配置
type MiddlewareConfig struct {
	Limiter      Limiter
	KeyGenerator func(*http.Request) string
	Skip         func(*http.Request) bool
	Logger       *zap.Logger
}

// ClientIPKey 按客户端 IP 限流
func ClientIPKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "admin:ip:" + host
}

// RateLimit 创建限流中间件。限流器出错时放行并记录告警
func RateLimit(config MiddlewareConfig) func(http.Handler) http.Handler {
	if config.KeyGenerator == nil {
		config.KeyGenerator = ClientIPKey
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if config.Skip != nil && config.Skip(r) {
				next.ServeHTTP(w, r)
				return
			}

			ctx, cancel := context.WithTimeout(r.Context(), time.Second)
			result, err := config.Limiter.Allow(ctx, config.KeyGenerator(r))
			cancel()
			if err != nil {
				config.Logger.Warn("rate limiter unavailable",
					zap.String("path", r.URL.Path),
					zap.String("request_id", mw.RequestIDFromContext(r.Context())),
					zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			setRateLimitHeaders(w, result)
			if !result.Allowed {
				resp.Error(w, http.StatusTooManyRequests, resp.CodeTooManyRequests,
					"too many requests", mw.RequestIDFromContext(r.Context()), "")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func setRateLimitHeaders(w http.ResponseWriter, result *LimitResult) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.FormatInt(result.Limit, 10))
	h.Set("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
	if !result.Allowed && result.RetryAfter > 0 {
		secs := int64((result.RetryAfter + time.Second - 1) / time.Second)
		h.Set("Retry-After", strconv.FormatInt(secs, 10))
	}
}
