package limiter

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const idleBucketTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter 进程内令牌桶，Redis 不可用时使用
type MemoryLimiter struct {
	mu        sync.Mutex
	config    Config
	visitors  map[string]*visitor
	lastSweep time.Time
	now       func() time.Time
}

// NewMemoryLimiter 创建进程内限流器
func NewMemoryLimiter(config Config) (*MemoryLimiter, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &MemoryLimiter{
		config:   config,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}, nil
}

// Allow 尝试取一个令牌，被拒绝时不消耗令牌
func (m *MemoryLimiter) Allow(ctx context.Context, key string) (*LimitResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := m.now()
	lim := m.visitor(key, now)

	res := &LimitResult{Limit: m.config.Burst}
	r := lim.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		res.RetryAfter = delay
	} else {
		res.Allowed = true
	}
	if tokens := lim.TokensAt(now); tokens > 0 {
		res.Remaining = int64(tokens)
	}
	return res, nil
}

func (m *MemoryLimiter) visitor(key string, now time.Time) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastSweep) > idleBucketTTL {
		for k, v := range m.visitors {
			if now.Sub(v.lastSeen) > idleBucketTTL {
				delete(m.visitors, k)
			}
		}
		m.lastSweep = now
	}

	v, ok := m.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(m.config.perSecond()), int(m.config.Burst))}
		m.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}
