// Package sizeinv 维护商品编辑期间的尺码库存表，并把它与已持久化的库存快照对账。
//
// 工作表由声明的尺码和快照中已有的尺码合并而成，编辑操作只改动工作表；
// 生成持久化请求时按尺码匹配快照，已有记录生成 update，否则生成 create。
// 本包不做 I/O，同一快照下重复生成的请求完全相同。
package sizeinv

import (
	"math"
	"strings"

	"github.com/gosimple/slug"

	"github.com/MorseWayne/catalog_admin/internal/domain"
)

// Field 可编辑的库存字段
type Field string

const (
	FieldCurrentStock    Field = "currentStock"
	FieldAvailableStock  Field = "availableStock"
	FieldReorderPoint    Field = "reorderPoint"
	FieldReorderQuantity Field = "reorderQuantity"
	FieldCostPrice       Field = "costPrice"
	FieldSellingPrice    Field = "sellingPrice"
)

// ParseField 解析字段名
func ParseField(s string) (Field, bool) {
	switch f := Field(strings.TrimSpace(s)); f {
	case FieldCurrentStock, FieldAvailableStock, FieldReorderPoint,
		FieldReorderQuantity, FieldCostPrice, FieldSellingPrice:
		return f, true
	}
	return "", false
}

// isQuantity 数量类字段取整且不小于0
func (f Field) isQuantity() bool {
	return f != FieldCostPrice && f != FieldSellingPrice
}

// Entry 工作表中的一行
type Entry struct {
	Size            string  `json:"size"`
	CurrentStock    int     `json:"currentStock"`
	AvailableStock  int     `json:"availableStock"`
	ReorderPoint    int     `json:"reorderPoint"`
	ReorderQuantity int     `json:"reorderQuantity"`
	CostPrice       float64 `json:"costPrice"`
	SellingPrice    float64 `json:"sellingPrice"`
}

// Defaults 新尺码行使用的默认价格，通常来自表单上的商品成本价和售价
type Defaults struct {
	CostPrice    float64 `json:"costPrice"`
	SellingPrice float64 `json:"sellingPrice"`
}

// ProductMeta 生成持久化请求所需的商品信息
type ProductMeta struct {
	ProductID   string
	ProductName string
	SKU         string
}

// Table 尺码库存工作表
type Table struct {
	entries  []Entry
	snapshot []domain.SizeInventory
	index    map[string]int // size -> snapshot 下标，重复尺码取第一条
	defaults Defaults
}

// Initialize 合并声明尺码与已有库存：先按声明顺序，再追加只存在于库存中的尺码
func Initialize(declared []string, existing []domain.SizeInventory, defaults Defaults) *Table {
	t := &Table{defaults: defaults}
	t.Refresh(existing)

	seen := make(map[string]struct{}, len(declared)+len(existing))
	for _, size := range declared {
		size = strings.TrimSpace(size)
		if size == "" {
			continue
		}
		if _, ok := seen[size]; ok {
			continue
		}
		seen[size] = struct{}{}

		if rec, ok := t.lookup(size); ok {
			t.entries = append(t.entries, entryFromRecord(size, rec))
		} else {
			t.entries = append(t.entries, t.blank(size))
		}
	}

	for _, rec := range existing {
		size := strings.TrimSpace(rec.Size)
		if size == "" {
			continue
		}
		if _, ok := seen[size]; ok {
			continue
		}
		seen[size] = struct{}{}
		t.entries = append(t.entries, entryFromRecord(size, rec))
	}
	return t
}

// Refresh 替换用于匹配的快照，不改动工作表
func (t *Table) Refresh(snapshot []domain.SizeInventory) {
	t.snapshot = append([]domain.SizeInventory(nil), snapshot...)
	t.index = make(map[string]int, len(snapshot))
	for i, rec := range t.snapshot {
		size := strings.TrimSpace(rec.Size)
		if size == "" {
			continue
		}
		if _, ok := t.index[size]; !ok {
			t.index[size] = i
		}
	}
}

// UpdateField 修改某一行的字段，行或字段不存在时返回 false
func (t *Table) UpdateField(size string, field Field, value float64) bool {
	i := t.find(size)
	if i < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return false
	}

	e := &t.entries[i]
	if field.isQuantity() {
		q := int(math.Round(math.Max(value, 0)))
		switch field {
		case FieldCurrentStock:
			e.CurrentStock = q
		case FieldAvailableStock:
			e.AvailableStock = q
		case FieldReorderPoint:
			e.ReorderPoint = q
		case FieldReorderQuantity:
			e.ReorderQuantity = q
		default:
			return false
		}
		return true
	}

	switch field {
	case FieldCostPrice:
		e.CostPrice = value
	case FieldSellingPrice:
		e.SellingPrice = value
	default:
		return false
	}
	return true
}

// RenameSize 修改行的尺码名，常用于给新增的空白行命名。新名称已存在时拒绝
func (t *Table) RenameSize(from, to string) bool {
	to = strings.TrimSpace(to)
	if to == "" || t.find(to) >= 0 {
		return false
	}
	i := t.find(from)
	if i < 0 {
		return false
	}
	t.entries[i].Size = to
	return true
}

// AddBlankRow 追加一个未命名的行
func (t *Table) AddBlankRow() {
	t.entries = append(t.entries, t.blank(""))
}

// AddRow 追加指定尺码的行，尺码为空时等同 AddBlankRow，尺码已存在时返回 false
func (t *Table) AddRow(size string) bool {
	size = strings.TrimSpace(size)
	if size != "" && t.find(size) >= 0 {
		return false
	}
	t.entries = append(t.entries, t.blank(size))
	return true
}

// AddSizes 为新声明的尺码补充行，快照中已有的尺码沿用快照数据，返回新增行数
func (t *Table) AddSizes(sizes []string) int {
	added := 0
	for _, size := range sizes {
		size = strings.TrimSpace(size)
		if size == "" || t.find(size) >= 0 {
			continue
		}
		if rec, ok := t.lookup(size); ok {
			t.entries = append(t.entries, entryFromRecord(size, rec))
		} else {
			t.entries = append(t.entries, t.blank(size))
		}
		added++
	}
	return added
}

// SetDefaults 修改之后新增行使用的默认价格，已有行不变
func (t *Table) SetDefaults(d Defaults) {
	t.defaults = d
}

// RemoveRow 删除指定尺码的行
func (t *Table) RemoveRow(size string) bool {
	i := t.find(size)
	if i < 0 {
		return false
	}
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
	return true
}

// Entries 返回工作表副本
func (t *Table) Entries() []Entry {
	return append([]Entry(nil), t.entries...)
}

// Defaults 返回新行使用的默认价格
func (t *Table) Defaults() Defaults { return t.defaults }

// Sizes 返回提交时合并进商品载荷的尺码库存，跳过未命名的行
func (t *Table) Sizes() []domain.SizeStock {
	var out []domain.SizeStock
	for _, e := range t.entries {
		if e.Size == "" {
			continue
		}
		out = append(out, domain.SizeStock{Size: e.Size, Quantity: e.CurrentStock})
	}
	return out
}

// ToPersistenceRequests 按快照对账生成持久化请求，不修改工作表
func (t *Table) ToPersistenceRequests(meta ProductMeta) []domain.SizeInventoryRequest {
	var out []domain.SizeInventoryRequest
	seen := make(map[string]struct{}, len(t.entries))
	for _, e := range t.entries {
		if e.Size == "" {
			continue
		}
		if _, ok := seen[e.Size]; ok {
			continue
		}
		seen[e.Size] = struct{}{}

		body := domain.SizeInventoryInput{
			ProductID:       meta.ProductID,
			ProductName:     meta.ProductName,
			SKU:             sizeSKU(meta.SKU, e.Size),
			Size:            e.Size,
			CurrentStock:    e.CurrentStock,
			AvailableStock:  e.AvailableStock,
			ReorderPoint:    e.ReorderPoint,
			ReorderQuantity: e.ReorderQuantity,
			CostPrice:       e.CostPrice,
			SellingPrice:    e.SellingPrice,
		}

		rec, ok := t.lookup(e.Size)
		if !ok {
			out = append(out, domain.SizeInventoryRequest{Op: domain.PersistCreate, Body: body})
			continue
		}
		if rec.SKU != "" {
			body.SKU = rec.SKU
		}
		out = append(out, domain.SizeInventoryRequest{
			Op:          domain.PersistUpdate,
			InventoryID: rec.ID,
			Version:     rec.Version,
			Body:        body,
		})
	}
	return out
}

func (t *Table) find(size string) int {
	size = strings.TrimSpace(size)
	for i, e := range t.entries {
		if e.Size == size {
			return i
		}
	}
	return -1
}

func (t *Table) lookup(size string) (domain.SizeInventory, bool) {
	i, ok := t.index[size]
	if !ok {
		return domain.SizeInventory{}, false
	}
	return t.snapshot[i], true
}

func (t *Table) blank(size string) Entry {
	return Entry{
		Size:         size,
		CostPrice:    t.defaults.CostPrice,
		SellingPrice: t.defaults.SellingPrice,
	}
}

func entryFromRecord(size string, rec domain.SizeInventory) Entry {
	return Entry{
		Size:            size,
		CurrentStock:    rec.CurrentStock,
		AvailableStock:  rec.AvailableStock,
		ReorderPoint:    rec.ReorderPoint,
		ReorderQuantity: rec.ReorderQuantity,
		CostPrice:       rec.CostPrice,
		SellingPrice:    rec.SellingPrice,
	}
}

// sizeSKU 商品 SKU 加尺码后缀，尺码经 slug 转写为 ASCII，例如 "Age 6/7" -> "AGE-6-7"
func sizeSKU(base, size string) string {
	if base == "" {
		return ""
	}
	suffix := strings.ToUpper(slug.Make(size))
	if suffix == "" {
		return base
	}
	return base + "-" + suffix
}
