package api

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/MorseWayne/catalog_admin/internal/domain"
	"github.com/MorseWayne/catalog_admin/internal/middleware"
	"github.com/MorseWayne/catalog_admin/internal/resp"
	"github.com/MorseWayne/catalog_admin/internal/service"
)

// InventoryHandler 尺码库存查询处理器
type InventoryHandler struct {
	editor service.ProductEditorService
	logger *zap.Logger
}

// NewInventoryHandler 创建尺码库存处理器
func NewInventoryHandler(editor service.ProductEditorService, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{editor: editor, logger: logger}
}

// SizeInventoryResponse 商品尺码库存及低库存尺码
type SizeInventoryResponse struct {
	ProductID string                 `json:"product_id"`
	Items     []domain.SizeInventory `json:"items"`
	LowStock  []string               `json:"low_stock"`
}

// GetSizeInventory 获取商品已保存的尺码库存
// GET /api/v1/admin/products/{id}/size-inventory
func (h *InventoryHandler) GetSizeInventory(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	productID := strings.TrimSpace(r.PathValue("id"))
	if productID == "" {
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid product ID", reqID, "")
		return
	}

	items, err := h.editor.SizeInventory(r.Context(), productID)
	if err != nil {
		if middleware.HandleTimeout(w, r) {
			return
		}
		h.logger.Error("get size inventory failed", zap.String("request_id", reqID), zap.String("product_id", productID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, "get size inventory failed", reqID, "")
		return
	}

	out := SizeInventoryResponse{ProductID: productID, Items: items, LowStock: []string{}}
	if out.Items == nil {
		out.Items = []domain.SizeInventory{}
	}
	for i := range items {
		if items[i].IsLowStock() {
			out.LowStock = append(out.LowStock, items[i].Size)
		}
	}
	resp.OK(w, out, reqID, "")
}
