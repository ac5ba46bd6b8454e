package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MorseWayne/catalog_admin/internal/cache"
	"github.com/MorseWayne/catalog_admin/internal/domain"
	"github.com/MorseWayne/catalog_admin/internal/sizeinv"
)

// EditSession 一次商品编辑会话：草稿与尺码库存表分开保存，提交时才合并
type EditSession struct {
	ID        string               `json:"id"`
	ProductID string               `json:"productId,omitempty"` // 新建商品时为空，首次提交后写入
	PendingID string               `json:"pendingId,omitempty"` // 创建前预留的商品ID
	Draft     *domain.ProductDraft `json:"draft"`
	Sizes     sizeinv.State        `json:"sizes"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// EditSessionRepository 编辑会话存储
type EditSessionRepository interface {
	Create(ctx context.Context, s *EditSession) error
	Get(ctx context.Context, id string) (*EditSession, error)
	Save(ctx context.Context, s *EditSession) error
	Delete(ctx context.Context, id string) error
}

// cacheSessionRepo 会话保存在缓存中，每次保存刷新过期时间
type cacheSessionRepo struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewEditSessionRepository 创建编辑会话存储
func NewEditSessionRepository(c cache.Cache, ttl time.Duration) EditSessionRepository {
	return &cacheSessionRepo{cache: c, ttl: ttl}
}

// Create 会话ID已存在时返回 ErrDuplicate
func (r *cacheSessionRepo) Create(ctx context.Context, s *EditSession) error {
	ok, err := r.cache.SetNX(ctx, sessionCacheKey(s.ID), s, r.ttl)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	if !ok {
		return fmt.Errorf("session %s: %w", s.ID, ErrDuplicate)
	}
	return nil
}

// Get 会话不存在或已过期时返回 ErrNotFound
func (r *cacheSessionRepo) Get(ctx context.Context, id string) (*EditSession, error) {
	var s EditSession
	if err := r.cache.Get(ctx, sessionCacheKey(id), &s); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

// Save 覆盖保存会话
func (r *cacheSessionRepo) Save(ctx context.Context, s *EditSession) error {
	if err := r.cache.Set(ctx, sessionCacheKey(s.ID), s, r.ttl); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Delete 删除会话
func (r *cacheSessionRepo) Delete(ctx context.Context, id string) error {
	if err := r.cache.Del(ctx, sessionCacheKey(id)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func sessionCacheKey(id string) string {
	return fmt.Sprintf("catalog:session:%s", id)
}
