package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MorseWayne/catalog_admin/internal/cache"
	"github.com/MorseWayne/catalog_admin/internal/domain"
	"github.com/MorseWayne/catalog_admin/internal/payload"
	"github.com/MorseWayne/catalog_admin/internal/repo"
)

// Mock ProductRepository for testing
type mockProductRepository struct {
	records map[string]*domain.ProductRecord
	slugs   map[string]string
	creates int
	updates int
}

func newMockProductRepository() *mockProductRepository {
	return &mockProductRepository{
		records: make(map[string]*domain.ProductRecord),
		slugs:   make(map[string]string),
	}
}

func (m *mockProductRepository) Create(ctx context.Context, id string, p *domain.ProductPayload) error {
	if owner, exists := m.slugs[p.Slug]; exists && owner != id {
		return repo.ErrDuplicate
	}
	m.creates++
	m.put(id, p)
	return nil
}

func (m *mockProductRepository) Update(ctx context.Context, id string, p *domain.ProductPayload) error {
	if _, exists := m.records[id]; !exists {
		return repo.ErrNotFound
	}
	if owner, exists := m.slugs[p.Slug]; exists && owner != id {
		return repo.ErrDuplicate
	}
	m.updates++
	m.put(id, p)
	return nil
}

func (m *mockProductRepository) GetByID(ctx context.Context, id string) (*domain.ProductRecord, error) {
	rec, exists := m.records[id]
	if !exists {
		return nil, repo.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *mockProductRepository) put(id string, p *domain.ProductPayload) {
	rec := payload.RecordFromPayload(p)
	rec.ID = id
	m.records[id] = rec
	m.slugs[p.Slug] = id
}

// Mock SizeInventoryRepository for testing
type mockSizeInventoryRepository struct {
	mu       sync.Mutex
	rows     map[int64]*domain.SizeInventory
	nextID   int64
	failSize map[string]error
}

func newMockSizeInventoryRepository() *mockSizeInventoryRepository {
	return &mockSizeInventoryRepository{
		rows:     make(map[int64]*domain.SizeInventory),
		nextID:   1,
		failSize: make(map[string]error),
	}
}

func (m *mockSizeInventoryRepository) ListByProductID(ctx context.Context, productID string) ([]domain.SizeInventory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.SizeInventory
	for id := int64(1); id < m.nextID; id++ {
		if row, ok := m.rows[id]; ok && row.ProductID == productID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (m *mockSizeInventoryRepository) Create(ctx context.Context, in domain.SizeInventoryInput) (*domain.SizeInventory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failSize[in.Size]; err != nil {
		return nil, err
	}
	for _, row := range m.rows {
		if row.ProductID == in.ProductID && row.Size == in.Size {
			return nil, repo.ErrDuplicate
		}
	}
	row := fromInput(m.nextID, 1, in)
	m.rows[row.ID] = row
	m.nextID++
	cp := *row
	return &cp, nil
}

func (m *mockSizeInventoryRepository) Update(ctx context.Context, id int64, version int, in domain.SizeInventoryInput) (*domain.SizeInventory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.failSize[in.Size]; err != nil {
		return nil, err
	}
	row, ok := m.rows[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if row.Version != version {
		return nil, repo.ErrVersionConflict
	}
	updated := fromInput(id, version+1, in)
	m.rows[id] = updated
	cp := *updated
	return &cp, nil
}

func (m *mockSizeInventoryRepository) seed(rows ...domain.SizeInventory) {
	for _, r := range rows {
		row := r
		row.ID = m.nextID
		m.rows[row.ID] = &row
		m.nextID++
	}
}

func fromInput(id int64, version int, in domain.SizeInventoryInput) *domain.SizeInventory {
	return &domain.SizeInventory{
		ID:              id,
		ProductID:       in.ProductID,
		ProductName:     in.ProductName,
		SKU:             in.SKU,
		Size:            in.Size,
		CurrentStock:    in.CurrentStock,
		AvailableStock:  in.AvailableStock,
		ReorderPoint:    in.ReorderPoint,
		ReorderQuantity: in.ReorderQuantity,
		CostPrice:       in.CostPrice,
		SellingPrice:    in.SellingPrice,
		Version:         version,
	}
}

var errStorageDown = errors.New("storage unavailable")

type editorFixture struct {
	products  *mockProductRepository
	inventory *mockSizeInventoryRepository
	sessions  repo.EditSessionRepository
	service   ProductEditorService
}

func newEditorFixture() *editorFixture {
	products := newMockProductRepository()
	inventory := newMockSizeInventoryRepository()
	sessions := repo.NewEditSessionRepository(cache.NewMemoryCache(), time.Hour)
	svc := NewProductEditorService(
		products,
		sessions,
		NewInventorySyncService(inventory, 2, testLogger()),
		payload.NewBuilder(payload.DefaultOptions()),
		testLogger(),
	)
	return &editorFixture{products: products, inventory: inventory, sessions: sessions, service: svc}
}

// flakySessions 第 failOn 次 Save 返回错误，其余调用转给真实存储
type flakySessions struct {
	repo.EditSessionRepository
	saves  int
	failOn int
}

func (f *flakySessions) Save(ctx context.Context, s *repo.EditSession) error {
	f.saves++
	if f.saves == f.failOn {
		return errStorageDown
	}
	return f.EditSessionRepository.Save(ctx, s)
}
