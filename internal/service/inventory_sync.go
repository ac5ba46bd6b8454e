package service

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/MorseWayne/catalog_admin/internal/domain"
	"github.com/MorseWayne/catalog_admin/internal/repo"
)

// SyncResult 单个尺码的持久化结果
type SyncResult struct {
	Size        string           `json:"size"`
	Op          domain.PersistOp `json:"op"`
	InventoryID int64            `json:"inventory_id,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// SyncReport 一次同步的汇总。Err 合并了所有失败，不参与序列化
type SyncReport struct {
	Created int          `json:"created"`
	Updated int          `json:"updated"`
	Failed  int          `json:"failed"`
	Results []SyncResult `json:"results"`
	Err     error        `json:"-"`
}

// OK 所有请求均成功
func (r *SyncReport) OK() bool { return r.Err == nil }

// InventorySyncService 把对账生成的请求写入尺码库存
type InventorySyncService interface {
	Apply(ctx context.Context, reqs []domain.SizeInventoryRequest) *SyncReport
	Snapshot(ctx context.Context, productID string) ([]domain.SizeInventory, error)
}

type inventorySyncService struct {
	repo        repo.SizeInventoryRepository
	concurrency int
	logger      *zap.Logger
}

// NewInventorySyncService 创建库存同步服务，concurrency 为同时执行的请求数上限
func NewInventorySyncService(r repo.SizeInventoryRepository, concurrency int, logger *zap.Logger) InventorySyncService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &inventorySyncService{repo: r, concurrency: concurrency, logger: logger}
}

// Apply 并发执行所有请求，单个失败不影响其他尺码
func (s *inventorySyncService) Apply(ctx context.Context, reqs []domain.SizeInventoryRequest) *SyncReport {
	results := make([]SyncResult, len(reqs))
	errs := make([]error, len(reqs))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, req := range reqs {
		g.Go(func() error {
			results[i] = SyncResult{Size: req.Body.Size, Op: req.Op}
			inv, err := s.apply(ctx, req)
			if err != nil {
				errs[i] = fmt.Errorf("%s size %q: %w", req.Op, req.Body.Size, err)
				results[i].Error = err.Error()
				return nil
			}
			results[i].InventoryID = inv.ID
			return nil
		})
	}
	_ = g.Wait()

	report := &SyncReport{Results: results}
	for i, r := range results {
		if errs[i] != nil {
			report.Failed++
			report.Err = multierr.Append(report.Err, errs[i])
			continue
		}
		switch r.Op {
		case domain.PersistCreate:
			report.Created++
		case domain.PersistUpdate:
			report.Updated++
		}
	}

	if report.Err != nil {
		s.logger.Warn("size inventory sync incomplete",
			zap.Int("created", report.Created),
			zap.Int("updated", report.Updated),
			zap.Int("failed", report.Failed),
			zap.Errors("errors", multierr.Errors(report.Err)))
	}
	return report
}

func (s *inventorySyncService) apply(ctx context.Context, req domain.SizeInventoryRequest) (*domain.SizeInventory, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch req.Op {
	case domain.PersistCreate:
		return s.repo.Create(ctx, req.Body)
	case domain.PersistUpdate:
		return s.repo.Update(ctx, req.InventoryID, req.Version, req.Body)
	default:
		return nil, fmt.Errorf("unknown op %q", req.Op)
	}
}

// Snapshot 读取商品当前的尺码库存
func (s *inventorySyncService) Snapshot(ctx context.Context, productID string) ([]domain.SizeInventory, error) {
	list, err := s.repo.ListByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list size inventory: %w", err)
	}
	return list, nil
}
