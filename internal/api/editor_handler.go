// Package api 提供商品编辑会话的 HTTP 处理器。
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/MorseWayne/catalog_admin/internal/domain"
	"github.com/MorseWayne/catalog_admin/internal/middleware"
	"github.com/MorseWayne/catalog_admin/internal/payload"
	"github.com/MorseWayne/catalog_admin/internal/resp"
	"github.com/MorseWayne/catalog_admin/internal/service"
	"github.com/MorseWayne/catalog_admin/internal/validate"
)

const maxBodyBytes = 1 << 20

// EditorHandler 商品编辑会话处理器
type EditorHandler struct {
	editor service.ProductEditorService
	logger *zap.Logger
}

// NewEditorHandler 创建编辑会话处理器
func NewEditorHandler(editor service.ProductEditorService, logger *zap.Logger) *EditorHandler {
	return &EditorHandler{editor: editor, logger: logger}
}

// OpenSession 打开编辑会话
// POST /api/v1/admin/product-sessions
func (h *EditorHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	var req service.OpenSessionRequest
	if r.ContentLength != 0 {
		if !h.decode(w, r, &req) {
			return
		}
	}

	view, err := h.editor.Open(r.Context(), req)
	if err != nil {
		h.fail(w, r, "open session failed", err)
		return
	}
	resp.WriteJSON(w, http.StatusCreated, resp.CodeOK, "success", view, reqID, "")
}

// GetSession 获取会话
// GET /api/v1/admin/product-sessions/{sid}
func (h *EditorHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.editor.Get(r.Context(), r.PathValue("sid"))
	if err != nil {
		h.fail(w, r, "get session failed", err)
		return
	}
	resp.OK(w, view, middleware.RequestIDFromContext(r.Context()), "")
}

// UpdateDraft 替换草稿
// PUT /api/v1/admin/product-sessions/{sid}/draft
func (h *EditorHandler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	var draft domain.ProductDraft
	if !h.decode(w, r, &draft) {
		return
	}

	view, err := h.editor.UpdateDraft(r.Context(), r.PathValue("sid"), &draft)
	if err != nil {
		h.fail(w, r, "update draft failed", err)
		return
	}
	resp.OK(w, view, middleware.RequestIDFromContext(r.Context()), "")
}

// EditSize 编辑尺码库存表
// POST /api/v1/admin/product-sessions/{sid}/sizes
func (h *EditorHandler) EditSize(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	var edit domain.SizeEditRequest
	if !h.decode(w, r, &edit) {
		return
	}
	if err := validate.Struct(&edit); err != nil {
		resp.WriteJSON(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid size edit", validate.Errors(err), reqID, "")
		return
	}

	view, err := h.editor.ApplySizeEdit(r.Context(), r.PathValue("sid"), edit)
	if err != nil {
		h.fail(w, r, "size edit failed", err)
		return
	}
	resp.OK(w, view, reqID, "")
}

// Preview 预览将要提交的载荷
// GET /api/v1/admin/product-sessions/{sid}/preview
func (h *EditorHandler) Preview(w http.ResponseWriter, r *http.Request) {
	result, err := h.editor.Preview(r.Context(), r.PathValue("sid"))
	if err != nil {
		h.fail(w, r, "preview failed", err)
		return
	}
	resp.OK(w, result, middleware.RequestIDFromContext(r.Context()), "")
}

// Submit 提交商品和尺码库存
// POST /api/v1/admin/product-sessions/{sid}/submit
func (h *EditorHandler) Submit(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.RequestIDFromContext(r.Context())

	result, err := h.editor.Submit(r.Context(), r.PathValue("sid"))
	if err != nil {
		h.fail(w, r, "submit failed", err)
		return
	}
	if !result.Completed {
		h.logger.Warn("submit incomplete",
			zap.String("request_id", reqID),
			zap.String("product_id", result.ProductID),
			zap.Error(result.Inventory.Err))
		resp.WriteJSON(w, resp.HTTPStatusFromCode(resp.CodePartialFailure), resp.CodePartialFailure,
			"product saved, some sizes failed; submit again to retry", result, reqID, "")
		return
	}
	resp.OK(w, result, reqID, "")
}

// Discard 丢弃会话
// DELETE /api/v1/admin/product-sessions/{sid}
func (h *EditorHandler) Discard(w http.ResponseWriter, r *http.Request) {
	if err := h.editor.Discard(r.Context(), r.PathValue("sid")); err != nil {
		h.fail(w, r, "discard session failed", err)
		return
	}
	resp.OK(w, nil, middleware.RequestIDFromContext(r.Context()), "")
}

func (h *EditorHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		reqID := middleware.RequestIDFromContext(r.Context())
		h.logger.Warn("invalid request body", zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, "invalid request body", reqID, "")
		return false
	}
	return true
}

// fail 把服务层错误映射为响应
func (h *EditorHandler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	reqID := middleware.RequestIDFromContext(r.Context())

	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		resp.WriteJSON(w, http.StatusUnprocessableEntity, resp.CodeValidationFailed, verr.Error(), verr.Fields, reqID, "")
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrProductNotFound):
		resp.Error(w, http.StatusNotFound, resp.CodeNotFound, err.Error(), reqID, "")
	case errors.Is(err, service.ErrInvalidSizeEdit), errors.Is(err, payload.ErrNilDraft):
		resp.Error(w, http.StatusBadRequest, resp.CodeInvalidParam, err.Error(), reqID, "")
	case errors.Is(err, service.ErrDuplicateField):
		resp.Error(w, http.StatusConflict, resp.CodeConflict, err.Error(), reqID, "")
	case middleware.HandleTimeout(w, r):
		h.logger.Warn(msg, zap.String("request_id", reqID), zap.Error(err))
	default:
		h.logger.Error(msg, zap.String("request_id", reqID), zap.Error(err))
		resp.Error(w, http.StatusInternalServerError, resp.CodeInternalError, msg, reqID, "")
	}
}
