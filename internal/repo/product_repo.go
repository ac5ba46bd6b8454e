// Package repo 实现数据访问层：商品、尺码库存和编辑会话的存储。
package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/MorseWayne/catalog_admin/internal/domain"
)

var (
	ErrNotFound        = errors.New("repo: record not found")
	ErrDuplicate       = errors.New("repo: duplicate key")
	ErrVersionConflict = errors.New("repo: version conflict")
)

// mysqlDuplicateEntry MySQL 唯一键冲突错误码
const mysqlDuplicateEntry = 1062

// ProductRepository 定义商品数据访问接口
type ProductRepository interface {
	Create(ctx context.Context, id string, p *domain.ProductPayload) error
	Update(ctx context.Context, id string, p *domain.ProductPayload) error
	GetByID(ctx context.Context, id string) (*domain.ProductRecord, error)
}

// productRepo 规范化载荷整体存为 JSON 列，常用查询字段单独建列
type productRepo struct {
	db *sql.DB
}

// NewProductRepository 创建商品仓储实例
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepo{db: db}
}

// Create 创建商品
func (r *productRepo) Create(ctx context.Context, id string, p *domain.ProductPayload) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode product payload: %w", err)
	}

	query := `
		INSERT INTO products (id, name, slug, sku, type, status, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query, id, p.Name, p.Slug, nullString(p.SKU), string(p.Type), p.Status, doc)
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("failed to create product %s: %w", id, ErrDuplicate)
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update 整体替换商品载荷
func (r *productRepo) Update(ctx context.Context, id string, p *domain.ProductPayload) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode product payload: %w", err)
	}

	query := `
		UPDATE products
		SET name = ?, slug = ?, sku = ?, type = ?, status = ?, payload = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query, p.Name, p.Slug, nullString(p.SKU), string(p.Type), p.Status, doc, id)
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("failed to update product %s: %w", id, ErrDuplicate)
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		// MySQL 对内容未变化的 UPDATE 返回 0，需要区分记录不存在
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// GetByID 根据ID获取商品，返回后端记录形态
func (r *productRepo) GetByID(ctx context.Context, id string) (*domain.ProductRecord, error) {
	query := `SELECT payload, created_at, updated_at FROM products WHERE id = ?`

	var (
		doc                  []byte
		createdAt, updatedAt time.Time
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&doc, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("product %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product by id: %w", err)
	}

	var rec domain.ProductRecord
	if err := json.Unmarshal(doc, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode product %s: %w", id, err)
	}
	rec.ID = id
	rec.CreatedAt = &createdAt
	rec.UpdatedAt = &updatedAt
	return &rec, nil
}

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
