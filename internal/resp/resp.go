// Package resp 定义统一的 JSON 响应格式与业务错误码。
package resp

import (
	"encoding/json"
	"net/http"
)

// 业务错误码
const (
	CodeOK               = 0
	CodeInvalidParam     = 10001
	CodeNotFound         = 10002
	CodeValidationFailed = 10003
	CodeConflict         = 10004
	CodeTooManyRequests  = 10005
	CodeInternalError    = 50000
	CodePartialFailure   = 50001 // 商品已保存，部分尺码库存写入失败
	CodeTimeout          = 50400
)

// Response 统一响应结构
type Response[T any] struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Data      T      `json:"data,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	TraceID   string `json:"trace_id,omitempty"`
}

// WriteJSON 写出统一格式的响应
func WriteJSON(w http.ResponseWriter, status, code int, msg string, data any, reqID, traceID string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response[any]{
		Code:      code,
		Message:   msg,
		Data:      data,
		RequestID: reqID,
		TraceID:   traceID,
	})
}

// OK 成功响应
func OK(w http.ResponseWriter, data any, reqID, traceID string) {
	WriteJSON(w, http.StatusOK, CodeOK, "success", data, reqID, traceID)
}

// Error 错误响应
func Error(w http.ResponseWriter, status, code int, msg, reqID, traceID string) {
	WriteJSON(w, status, code, msg, nil, reqID, traceID)
}

// HTTPStatusFromCode 业务错误码对应的 HTTP 状态码
func HTTPStatusFromCode(code int) int {
	switch code {
	case CodeOK:
		return http.StatusOK
	case CodeInvalidParam:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidationFailed:
		return http.StatusUnprocessableEntity
	case CodeConflict:
		return http.StatusConflict
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodePartialFailure:
		return http.StatusMultiStatus
	case CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
