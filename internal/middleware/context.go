// Package middleware 提供 net/http 中间件：请求 ID、panic 恢复、超时和访问日志。
package middleware

import (
	"context"
)

type contextKey string

const (
	contextKeyRequestID contextKey = "request_id"
)

// WithRequestID 将请求 ID 写入上下文
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID, id)
}

// RequestIDFromContext 从上下文中读取请求 ID，可能为空
func RequestIDFromContext(ctx context.Context) string {
	s, _ := ctx.Value(contextKeyRequestID).(string)
	return s
}
