// Package limiter 管理端接口的令牌桶限流
package limiter

import (
	"context"
	"errors"
	"time"
)

// LimitResult 单次限流检查的结果
type LimitResult struct {
	Allowed    bool
	Limit      int64         // 桶容量
	Remaining  int64         // 剩余令牌
	RetryAfter time.Duration // 被拒绝时建议的重试间隔
}

// Limiter 限流器接口
type Limiter interface {
	Allow(ctx context.Context, key string) (*LimitResult, error)
}

// Config 令牌桶参数：每个 Window 补充 Rate 个令牌，最多积攒 Burst 个
type Config struct {
	Rate      int64
	Burst     int64
	Window    time.Duration
	KeyPrefix string
}

func (c Config) validate() error {
	if c.Rate <= 0 || c.Burst <= 0 {
		return errors.New("limiter rate and burst must be positive")
	}
	if c.Window <= 0 {
		return errors.New("limiter window must be positive")
	}
	return nil
}

// perSecond 每秒补充的令牌数
func (c Config) perSecond() float64 {
	return float64(c.Rate) / c.Window.Seconds()
}
