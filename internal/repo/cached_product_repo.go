package repo

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/MorseWayne/catalog_admin/internal/cache"
	"github.com/MorseWayne/catalog_admin/internal/domain"
)

// CachedProductRepository 带缓存的商品仓储，写操作后删除缓存
type CachedProductRepository struct {
	repo   ProductRepository
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedProductRepository 创建带缓存的商品仓储
func NewCachedProductRepository(repo ProductRepository, c cache.Cache, ttl time.Duration, logger *zap.Logger) ProductRepository {
	return &CachedProductRepository{repo: repo, cache: c, ttl: ttl, logger: logger}
}

// Create 创建商品
func (r *CachedProductRepository) Create(ctx context.Context, id string, p *domain.ProductPayload) error {
	if err := r.repo.Create(ctx, id, p); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

// Update 更新商品
func (r *CachedProductRepository) Update(ctx context.Context, id string, p *domain.ProductPayload) error {
	if err := r.repo.Update(ctx, id, p); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

// GetByID 根据ID获取商品（带缓存）
func (r *CachedProductRepository) GetByID(ctx context.Context, id string) (*domain.ProductRecord, error) {
	key := productCacheKey(id)

	var rec domain.ProductRecord
	if err := r.cache.Get(ctx, key, &rec); err == nil {
		return &rec, nil
	}

	result, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, key, result, r.ttl); err != nil {
		r.logger.Warn("cache product failed", zap.String("product_id", id), zap.Error(err))
	}
	return result, nil
}

func (r *CachedProductRepository) invalidate(ctx context.Context, id string) {
	if err := r.cache.Del(ctx, productCacheKey(id)); err != nil {
		r.logger.Warn("invalidate product cache failed", zap.String("product_id", id), zap.Error(err))
	}
}

func productCacheKey(id string) string {
	return fmt.Sprintf("catalog:product:%s", id)
}
