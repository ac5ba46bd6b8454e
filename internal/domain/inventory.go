package domain

import (
	"time"
)

// SizeInventory 表示某商品某个尺码的库存记录
type SizeInventory struct {
	ID              int64     `json:"id"`
	ProductID       string    `json:"product_id"`
	ProductName     string    `json:"product_name"`
	SKU             string    `json:"sku"`
	Size            string    `json:"size"`
	CurrentStock    int       `json:"current_stock"`   // 当前库存
	AvailableStock  int       `json:"available_stock"` // 可售库存
	ReorderPoint    int       `json:"reorder_point"`   // 补货提醒点
	ReorderQuantity int       `json:"reorder_quantity"`
	CostPrice       float64   `json:"cost_price"`
	SellingPrice    float64   `json:"selling_price"`
	Version         int       `json:"version"` // 乐观锁版本号
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// IsLowStock 判断是否低库存
func (i *SizeInventory) IsLowStock() bool {
	return i.CurrentStock <= i.ReorderPoint
}

// SizeInventoryInput 创建或更新尺码库存的请求体
type SizeInventoryInput struct {
	ProductID       string  `json:"product_id" validate:"required"`
	ProductName     string  `json:"product_name"`
	SKU             string  `json:"sku"`
	Size            string  `json:"size" validate:"required"`
	CurrentStock    int     `json:"current_stock" validate:"min=0"`
	AvailableStock  int     `json:"available_stock" validate:"min=0"`
	ReorderPoint    int     `json:"reorder_point" validate:"min=0"`
	ReorderQuantity int     `json:"reorder_quantity" validate:"min=0"`
	CostPrice       float64 `json:"cost_price"`
	SellingPrice    float64 `json:"selling_price"`
}

// PersistOp 持久化操作类型
type PersistOp string

const (
	PersistCreate PersistOp = "create"
	PersistUpdate PersistOp = "update"
)

// SizeInventoryRequest 尺码库存对账后生成的持久化请求
type SizeInventoryRequest struct {
	Op          PersistOp          `json:"op"`
	InventoryID int64              `json:"inventory_id,omitempty"` // 仅 update 时有值
	Version     int                `json:"version,omitempty"`      // 快照中的版本号
	Body        SizeInventoryInput `json:"body"`
}

// SizeEditAction 尺码表编辑动作
type SizeEditAction string

const (
	SizeEditUpdate SizeEditAction = "update"
	SizeEditRename SizeEditAction = "rename"
	SizeEditAdd    SizeEditAction = "add"
	SizeEditRemove SizeEditAction = "remove"
)

// SizeEditRequest 尺码表编辑请求
type SizeEditRequest struct {
	Action  SizeEditAction `json:"action" validate:"required,oneof=update rename add remove"`
	Size    string         `json:"size"`
	Field   string         `json:"field,omitempty"`
	Value   Number         `json:"value"`
	NewSize string         `json:"newSize,omitempty"`
}
