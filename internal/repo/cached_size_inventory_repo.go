package repo

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/MorseWayne/catalog_admin/internal/cache"
	"github.com/MorseWayne/catalog_admin/internal/domain"
)

// CachedSizeInventoryRepository 缓存商品的尺码库存列表，任意写入后失效
type CachedSizeInventoryRepository struct {
	repo   SizeInventoryRepository
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedSizeInventoryRepository 创建带缓存的尺码库存仓储。
// 库存变化频繁，缓存时间取商品缓存的一半
func NewCachedSizeInventoryRepository(repo SizeInventoryRepository, c cache.Cache, ttl time.Duration, logger *zap.Logger) SizeInventoryRepository {
	return &CachedSizeInventoryRepository{repo: repo, cache: c, ttl: ttl / 2, logger: logger}
}

// ListByProductID 获取商品的尺码库存（带缓存）
func (r *CachedSizeInventoryRepository) ListByProductID(ctx context.Context, productID string) ([]domain.SizeInventory, error) {
	key := sizeInventoryCacheKey(productID)

	var list []domain.SizeInventory
	if err := r.cache.Get(ctx, key, &list); err == nil {
		return list, nil
	}

	result, err := r.repo.ListByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, key, result, r.ttl); err != nil {
		r.logger.Warn("cache size inventory failed", zap.String("product_id", productID), zap.Error(err))
	}
	return result, nil
}

// Create 创建尺码库存
func (r *CachedSizeInventoryRepository) Create(ctx context.Context, in domain.SizeInventoryInput) (*domain.SizeInventory, error) {
	inv, err := r.repo.Create(ctx, in)
	r.invalidate(ctx, in.ProductID)
	return inv, err
}

// Update 更新尺码库存
func (r *CachedSizeInventoryRepository) Update(ctx context.Context, id int64, version int, in domain.SizeInventoryInput) (*domain.SizeInventory, error) {
	inv, err := r.repo.Update(ctx, id, version, in)
	r.invalidate(ctx, in.ProductID)
	return inv, err
}

// invalidate 写入失败也删除缓存，失败时数据库状态未知
func (r *CachedSizeInventoryRepository) invalidate(ctx context.Context, productID string) {
	if err := r.cache.Del(ctx, sizeInventoryCacheKey(productID)); err != nil {
		r.logger.Warn("invalidate size inventory cache failed", zap.String("product_id", productID), zap.Error(err))
	}
}

func sizeInventoryCacheKey(productID string) string {
	return fmt.Sprintf("catalog:size_inventory:%s", productID)
}
