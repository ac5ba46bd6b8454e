package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MorseWayne/catalog_admin/internal/domain"
)

// SizeInventoryRepository 定义尺码库存数据访问接口
type SizeInventoryRepository interface {
	ListByProductID(ctx context.Context, productID string) ([]domain.SizeInventory, error)
	Create(ctx context.Context, in domain.SizeInventoryInput) (*domain.SizeInventory, error)
	// Update 使用乐观锁，version 为调用方持有的版本号
	Update(ctx context.Context, id int64, version int, in domain.SizeInventoryInput) (*domain.SizeInventory, error)
}

type sizeInventoryRepo struct {
	db *sql.DB
}

// NewSizeInventoryRepository 创建尺码库存仓储实例
func NewSizeInventoryRepository(db *sql.DB) SizeInventoryRepository {
	return &sizeInventoryRepo{db: db}
}

const sizeInventoryColumns = `id, product_id, product_name, sku, size, current_stock, available_stock,
	reorder_point, reorder_quantity, cost_price, selling_price, version, created_at, updated_at`

// ListByProductID 按尺码写入顺序返回商品的全部尺码库存
func (r *sizeInventoryRepo) ListByProductID(ctx context.Context, productID string) ([]domain.SizeInventory, error) {
	query := `SELECT ` + sizeInventoryColumns + ` FROM size_inventory WHERE product_id = ? ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list size inventory: %w", err)
	}
	defer rows.Close()

	var out []domain.SizeInventory
	for rows.Next() {
		inv, err := scanSizeInventory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan size inventory: %w", err)
		}
		out = append(out, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate size inventory: %w", err)
	}
	return out, nil
}

// Create 创建尺码库存记录
func (r *sizeInventoryRepo) Create(ctx context.Context, in domain.SizeInventoryInput) (*domain.SizeInventory, error) {
	query := `
		INSERT INTO size_inventory (product_id, product_name, sku, size, current_stock, available_stock,
			reorder_point, reorder_quantity, cost_price, selling_price)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		in.ProductID, in.ProductName, in.SKU, in.Size,
		in.CurrentStock, in.AvailableStock, in.ReorderPoint, in.ReorderQuantity,
		in.CostPrice, in.SellingPrice,
	)
	if err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("size %q of product %s: %w", in.Size, in.ProductID, ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to create size inventory: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}
	return r.getByID(ctx, id)
}

// Update 使用乐观锁更新尺码库存
func (r *sizeInventoryRepo) Update(ctx context.Context, id int64, version int, in domain.SizeInventoryInput) (*domain.SizeInventory, error) {
	query := `
		UPDATE size_inventory
		SET product_name = ?, sku = ?, size = ?, current_stock = ?, available_stock = ?,
			reorder_point = ?, reorder_quantity = ?, cost_price = ?, selling_price = ?, version = version + 1
		WHERE id = ? AND version = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		in.ProductName, in.SKU, in.Size, in.CurrentStock, in.AvailableStock,
		in.ReorderPoint, in.ReorderQuantity, in.CostPrice, in.SellingPrice,
		id, version,
	)
	if err != nil {
		if isDuplicate(err) {
			return nil, fmt.Errorf("size %q of product %s: %w", in.Size, in.ProductID, ErrDuplicate)
		}
		return nil, fmt.Errorf("failed to update size inventory: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		if _, err := r.getByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("size inventory %d at version %d: %w", id, version, ErrVersionConflict)
	}
	return r.getByID(ctx, id)
}

func (r *sizeInventoryRepo) getByID(ctx context.Context, id int64) (*domain.SizeInventory, error) {
	query := `SELECT ` + sizeInventoryColumns + ` FROM size_inventory WHERE id = ?`

	inv, err := scanSizeInventory(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("size inventory %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get size inventory by id: %w", err)
	}
	return inv, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSizeInventory(row rowScanner) (*domain.SizeInventory, error) {
	inv := &domain.SizeInventory{}
	err := row.Scan(
		&inv.ID,
		&inv.ProductID,
		&inv.ProductName,
		&inv.SKU,
		&inv.Size,
		&inv.CurrentStock,
		&inv.AvailableStock,
		&inv.ReorderPoint,
		&inv.ReorderQuantity,
		&inv.CostPrice,
		&inv.SellingPrice,
		&inv.Version,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return inv, nil
}
