// Package service 实现商品编辑流程：会话中维护草稿和尺码库存表，提交时生成规范化载荷并同步库存。
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/MorseWayne/catalog_admin/internal/domain"
	"github.com/MorseWayne/catalog_admin/internal/payload"
	"github.com/MorseWayne/catalog_admin/internal/repo"
	"github.com/MorseWayne/catalog_admin/internal/sizeinv"
	"github.com/MorseWayne/catalog_admin/internal/validate"
)

// OpenSessionRequest 打开编辑会话；ProductID 为空表示新建商品
type OpenSessionRequest struct {
	ProductID    string        `json:"productId"`
	CostPrice    domain.Number `json:"costPrice"`
	SellingPrice domain.Number `json:"sellingPrice"`
}

// SessionView 返回给前端的会话状态
type SessionView struct {
	ID        string               `json:"id"`
	ProductID string               `json:"productId,omitempty"`
	Draft     *domain.ProductDraft `json:"draft"`
	Sizes     []sizeinv.Entry      `json:"sizes"`
	Defaults  sizeinv.Defaults     `json:"defaults"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// PreviewResult 提交前预览：将要发送的载荷、校验错误和库存请求
type PreviewResult struct {
	Payload  *domain.ProductPayload        `json:"payload"`
	Errors   []validate.FieldError         `json:"errors,omitempty"`
	Requests []domain.SizeInventoryRequest `json:"requests"`
}

// SubmitResult 提交结果。Inventory 有失败时会话保留，可再次提交
type SubmitResult struct {
	ProductID string                 `json:"productId"`
	Created   bool                   `json:"created"`
	Payload   *domain.ProductPayload `json:"payload"`
	Inventory *SyncReport            `json:"inventory"`
	Completed bool                   `json:"completed"`
}

// ProductEditorService 商品编辑业务接口
type ProductEditorService interface {
	Open(ctx context.Context, req OpenSessionRequest) (*SessionView, error)
	Get(ctx context.Context, sessionID string) (*SessionView, error)
	UpdateDraft(ctx context.Context, sessionID string, draft *domain.ProductDraft) (*SessionView, error)
	ApplySizeEdit(ctx context.Context, sessionID string, edit domain.SizeEditRequest) (*SessionView, error)
	Preview(ctx context.Context, sessionID string) (*PreviewResult, error)
	Submit(ctx context.Context, sessionID string) (*SubmitResult, error)
	Discard(ctx context.Context, sessionID string) error
	SizeInventory(ctx context.Context, productID string) ([]domain.SizeInventory, error)
}

type productEditorService struct {
	products repo.ProductRepository
	sessions repo.EditSessionRepository
	sync     InventorySyncService
	builder  *payload.Builder
	logger   *zap.Logger
	now      func() time.Time
}

// NewProductEditorService 创建商品编辑服务
func NewProductEditorService(
	products repo.ProductRepository,
	sessions repo.EditSessionRepository,
	sync InventorySyncService,
	builder *payload.Builder,
	logger *zap.Logger,
) ProductEditorService {
	return &productEditorService{
		products: products,
		sessions: sessions,
		sync:     sync,
		builder:  builder,
		logger:   logger,
		now:      time.Now,
	}
}

// Open 新建商品时草稿为空；编辑已有商品时从商品记录和库存快照初始化
func (s *productEditorService) Open(ctx context.Context, req OpenSessionRequest) (*SessionView, error) {
	productID := strings.TrimSpace(req.ProductID)
	draft := &domain.ProductDraft{}
	var existing []domain.SizeInventory

	if productID != "" {
		rec, err := s.products.GetByID(ctx, productID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, fmt.Errorf("product %s: %w", productID, ErrProductNotFound)
			}
			return nil, fmt.Errorf("failed to load product: %w", err)
		}
		if draft, err = payload.ToDraft(rec); err != nil {
			return nil, fmt.Errorf("failed to convert product: %w", err)
		}
		if existing, err = s.sync.Snapshot(ctx, productID); err != nil {
			return nil, err
		}
	}

	defaults := sizeinv.Defaults{
		CostPrice:    req.CostPrice.OrZero(),
		SellingPrice: req.SellingPrice.OrZero(),
	}
	if _, ok := req.SellingPrice.Float(); !ok {
		defaults.SellingPrice = draft.Price.OrZero()
	}
	table := sizeinv.Initialize(draft.AvailableSizes, existing, defaults)

	now := s.now()
	sess := &repo.EditSession{
		ID:        uuid.NewString(),
		ProductID: productID,
		Draft:     draft,
		Sizes:     table.State(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, err
	}

	s.logger.Info("edit session opened",
		zap.String("session_id", sess.ID),
		zap.String("product_id", productID),
		zap.Int("sizes", len(table.Entries())))
	return view(sess, table), nil
}

// Get 获取会话
func (s *productEditorService) Get(ctx context.Context, sessionID string) (*SessionView, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return view(sess, sizeinv.FromState(sess.Sizes)), nil
}

// UpdateDraft 替换草稿。新声明的尺码补进尺码表，已有行不受影响
func (s *productEditorService) UpdateDraft(ctx context.Context, sessionID string, draft *domain.ProductDraft) (*SessionView, error) {
	if draft == nil {
		return nil, payload.ErrNilDraft
	}
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	draft.ID = sess.ProductID
	table := sizeinv.FromState(sess.Sizes)
	if price, ok := draft.Price.Float(); ok {
		d := table.Defaults()
		d.SellingPrice = price
		table.SetDefaults(d)
	}
	table.AddSizes(draft.AvailableSizes)

	sess.Draft = draft
	if err := s.save(ctx, sess, table); err != nil {
		return nil, err
	}
	return view(sess, table), nil
}

// ApplySizeEdit 对尺码表执行一次编辑
func (s *productEditorService) ApplySizeEdit(ctx context.Context, sessionID string, edit domain.SizeEditRequest) (*SessionView, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	table := sizeinv.FromState(sess.Sizes)

	if err := applySizeEdit(table, edit); err != nil {
		return nil, err
	}
	if err := s.save(ctx, sess, table); err != nil {
		return nil, err
	}
	return view(sess, table), nil
}

func applySizeEdit(table *sizeinv.Table, edit domain.SizeEditRequest) error {
	switch edit.Action {
	case domain.SizeEditUpdate:
		field, ok := sizeinv.ParseField(edit.Field)
		if !ok {
			return fmt.Errorf("%w: unknown field %q", ErrInvalidSizeEdit, edit.Field)
		}
		value, ok := edit.Value.Float()
		if !ok {
			return fmt.Errorf("%w: value is not a number", ErrInvalidSizeEdit)
		}
		if !table.UpdateField(edit.Size, field, value) {
			return fmt.Errorf("%w: size %q not found", ErrInvalidSizeEdit, edit.Size)
		}
	case domain.SizeEditRename:
		if !table.RenameSize(edit.Size, edit.NewSize) {
			return fmt.Errorf("%w: cannot rename %q to %q", ErrInvalidSizeEdit, edit.Size, edit.NewSize)
		}
	case domain.SizeEditAdd:
		if !table.AddRow(edit.Size) {
			return fmt.Errorf("%w: size %q already exists", ErrInvalidSizeEdit, edit.Size)
		}
	case domain.SizeEditRemove:
		if !table.RemoveRow(edit.Size) {
			return fmt.Errorf("%w: size %q not found", ErrInvalidSizeEdit, edit.Size)
		}
	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidSizeEdit, edit.Action)
	}
	return nil
}

// Preview 生成载荷和持久化请求，不写入任何数据
func (s *productEditorService) Preview(ctx context.Context, sessionID string) (*PreviewResult, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	table := sizeinv.FromState(sess.Sizes)

	p, err := s.builder.Build(sess.Draft, table.Sizes())
	if err != nil {
		return nil, err
	}
	return &PreviewResult{
		Payload:  p,
		Errors:   validate.Payload(p),
		Requests: table.ToPersistenceRequests(meta(sess.ProductID, p)),
	}, nil
}

// Submit 保存商品并同步尺码库存。
// 新商品创建成功后立即把商品ID写回会话，重试时改为更新；库存全部成功后删除会话
func (s *productEditorService) Submit(ctx context.Context, sessionID string) (*SubmitResult, error) {
	sess, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	table := sizeinv.FromState(sess.Sizes)

	p, err := s.builder.Build(sess.Draft, table.Sizes())
	if err != nil {
		return nil, err
	}
	if fields := validate.Payload(p); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	result := &SubmitResult{Payload: p}
	if sess.ProductID == "" {
		if err := s.createProduct(ctx, sess, table, p); err != nil {
			return nil, err
		}
		result.Created = true
	} else if err := s.products.Update(ctx, sess.ProductID, p); err != nil {
		return nil, productError(err)
	}
	result.ProductID = sess.ProductID

	reqs := table.ToPersistenceRequests(meta(sess.ProductID, p))
	result.Inventory = s.sync.Apply(ctx, reqs)

	snapshot, err := s.sync.Snapshot(ctx, sess.ProductID)
	if err != nil {
		s.logger.Warn("refresh size inventory snapshot failed", zap.String("session_id", sess.ID), zap.Error(err))
	} else {
		table.Refresh(snapshot)
	}

	if result.Inventory.OK() && err == nil {
		result.Completed = true
		if err := s.sessions.Delete(ctx, sess.ID); err != nil {
			s.logger.Warn("delete submitted session failed", zap.String("session_id", sess.ID), zap.Error(err))
		}
	} else if err := s.save(ctx, sess, table); err != nil {
		return nil, err
	}

	s.logger.Info("product submitted",
		zap.String("session_id", sess.ID),
		zap.String("product_id", sess.ProductID),
		zap.Bool("created", result.Created),
		zap.Int("inventory_requests", len(reqs)),
		zap.Bool("completed", result.Completed))
	return result, nil
}

// createProduct 创建前先把商品ID预留在会话中。
// 之后任何一步失败，重试都沿用同一个ID：商品已存在则更新，不会再建第二个
func (s *productEditorService) createProduct(ctx context.Context, sess *repo.EditSession, table *sizeinv.Table, p *domain.ProductPayload) error {
	if sess.PendingID == "" {
		sess.PendingID = newProductID()
		if err := s.save(ctx, sess, table); err != nil {
			return err
		}
	}
	id := sess.PendingID

	_, err := s.products.GetByID(ctx, id)
	switch {
	case err == nil:
		err = s.products.Update(ctx, id, p)
	case errors.Is(err, repo.ErrNotFound):
		err = s.products.Create(ctx, id, p)
	default:
		return fmt.Errorf("failed to check product %s: %w", id, err)
	}
	if err != nil {
		return productError(err)
	}

	sess.ProductID = id
	sess.PendingID = ""
	sess.Draft.ID = id
	if err := s.save(ctx, sess, table); err != nil {
		s.logger.Error("product created but session not updated",
			zap.String("session_id", sess.ID),
			zap.String("product_id", id),
			zap.Error(err))
		return err
	}
	return nil
}

// Discard 丢弃会话
func (s *productEditorService) Discard(ctx context.Context, sessionID string) error {
	if _, err := s.load(ctx, sessionID); err != nil {
		return err
	}
	return s.sessions.Delete(ctx, sessionID)
}

// SizeInventory 查询商品已保存的尺码库存
func (s *productEditorService) SizeInventory(ctx context.Context, productID string) ([]domain.SizeInventory, error) {
	return s.sync.Snapshot(ctx, productID)
}

func (s *productEditorService) load(ctx context.Context, sessionID string) (*repo.EditSession, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("session %s: %w", sessionID, ErrSessionNotFound)
		}
		return nil, err
	}
	if sess.Draft == nil {
		sess.Draft = &domain.ProductDraft{}
	}
	return sess, nil
}

func (s *productEditorService) save(ctx context.Context, sess *repo.EditSession, table *sizeinv.Table) error {
	sess.Sizes = table.State()
	sess.UpdatedAt = s.now()
	return s.sessions.Save(ctx, sess)
}

func productError(err error) error {
	switch {
	case errors.Is(err, repo.ErrDuplicate):
		return fmt.Errorf("%w: %v", ErrDuplicateField, err)
	case errors.Is(err, repo.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrProductNotFound, err)
	default:
		return fmt.Errorf("failed to save product: %w", err)
	}
}

func view(sess *repo.EditSession, table *sizeinv.Table) *SessionView {
	return &SessionView{
		ID:        sess.ID,
		ProductID: sess.ProductID,
		Draft:     sess.Draft,
		Sizes:     table.Entries(),
		Defaults:  table.Defaults(),
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt,
	}
}

func meta(productID string, p *domain.ProductPayload) sizeinv.ProductMeta {
	return sizeinv.ProductMeta{ProductID: productID, ProductName: p.Name, SKU: p.SKU}
}

// newProductID 生成24位十六进制的商品ID
func newProductID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
}
