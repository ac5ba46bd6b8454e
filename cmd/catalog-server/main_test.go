package main

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/MorseWayne/catalog_admin/internal/cache"
	"github.com/MorseWayne/catalog_admin/internal/config"
	"github.com/MorseWayne/catalog_admin/internal/limiter"
)

func TestInitCache(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.CacheConfig
		want any
	}{
		{name: "disabled", cfg: config.CacheConfig{Enabled: false}, want: &cache.NullCache{}},
		{name: "memory", cfg: config.CacheConfig{Enabled: true, Type: "memory"}, want: &cache.MemoryCache{}},
		{name: "unknown type", cfg: config.CacheConfig{Enabled: true, Type: "memcached"}, want: &cache.MemoryCache{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := initCache(&config.Config{Cache: tt.cfg}, zap.NewNop())
			defer c.Close()

			switch tt.want.(type) {
			case *cache.NullCache:
				if _, ok := c.(*cache.NullCache); !ok {
					t.Errorf("initCache() = %T, want *cache.NullCache", c)
				}
			case *cache.MemoryCache:
				if _, ok := c.(*cache.MemoryCache); !ok {
					t.Errorf("initCache() = %T, want *cache.MemoryCache", c)
				}
			}
		})
	}
}

func TestSessionStore_UsesMemoryWhenCacheDisabled(t *testing.T) {
	null := cache.NewNullCache()

	got := sessionStore(&config.Config{Cache: config.CacheConfig{Enabled: false}}, null)
	if _, ok := got.(*cache.MemoryCache); !ok {
		t.Errorf("sessionStore() = %T, want *cache.MemoryCache", got)
	}

	mem := cache.NewMemoryCache()
	if got := sessionStore(&config.Config{Cache: config.CacheConfig{Enabled: true}}, mem); got != mem {
		t.Errorf("sessionStore() should reuse the shared cache when enabled")
	}
}

func TestInitRateLimiter(t *testing.T) {
	disabled := &config.Config{RateLimit: config.RateLimitConfig{Enabled: false}}
	if l := initRateLimiter(disabled, cache.NewMemoryCache(), zap.NewNop()); l != nil {
		t.Errorf("initRateLimiter() = %T, want nil when disabled", l)
	}

	enabled := &config.Config{
		App:       config.AppConfig{Name: "catalog-admin"},
		RateLimit: config.RateLimitConfig{Enabled: true, Rate: 5, Burst: 10, Window: time.Second},
	}
	if _, ok := initRateLimiter(enabled, cache.NewMemoryCache(), zap.NewNop()).(*limiter.MemoryLimiter); !ok {
		t.Errorf("initRateLimiter() should fall back to the in-process limiter without Redis")
	}
}
