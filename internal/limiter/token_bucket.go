package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// 令牌数按浮点保存，刷新时间精确到毫秒。返回 {是否放行, 剩余令牌, 重试毫秒}
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local window_ms = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])
local now = tonumber(ARGV[5])

local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
local tokens = tonumber(bucket[1]) or capacity
local last_refill = tonumber(bucket[2]) or now

local elapsed = math.max(0, now - last_refill)
tokens = math.min(capacity, tokens + elapsed * rate / window_ms)

local allowed = 0
local retry_after = 0
if tokens >= requested then
    tokens = tokens - requested
    allowed = 1
else
    retry_after = math.ceil((requested - tokens) * window_ms / rate)
end

redis.call('HSET', key, 'tokens', tokens, 'last_refill', now)
redis.call('PEXPIRE', key, math.max(window_ms * 2, math.ceil(capacity * window_ms / rate)))

return {allowed, math.floor(tokens), retry_after}
`)

// RedisLimiter 基于 Redis 的令牌桶，多实例共享同一个桶
type RedisLimiter struct {
	client redis.Scripter
	config Config
	now    func() time.Time
}

// NewRedisLimiter 创建 Redis 令牌桶限流器
func NewRedisLimiter(client redis.Scripter, config Config) (*RedisLimiter, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = "limiter:tb"
	}
	return &RedisLimiter{client: client, config: config, now: time.Now}, nil
}

// Allow 尝试取一个令牌
func (l *RedisLimiter) Allow(ctx context.Context, key string) (*LimitResult, error) {
	res, err := tokenBucketScript.Run(ctx, l.client,
		[]string{l.config.KeyPrefix + ":" + key},
		l.config.Burst,
		l.config.Rate,
		l.config.Window.Milliseconds(),
		1,
		l.now().UnixMilli(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("failed to execute token bucket script: %w", err)
	}
	if len(res) != 3 {
		return nil, fmt.Errorf("unexpected token bucket result: %v", res)
	}

	return &LimitResult{
		Allowed:    res[0] == 1,
		Limit:      l.config.Burst,
		Remaining:  res[1],
		RetryAfter: time.Duration(res[2]) * time.Millisecond,
	}, nil
}
