package apiserver

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"social-go/internal/apperrors"
	"social-go/internal/config"
)

// handlerBase carries what every handler needs besides its services.
type handlerBase struct {
	paging  config.FeedConfig
	storage config.StorageConfig
	logger  *zap.Logger
}

func (h *handlerBase) fail(w http.ResponseWriter, r *http.Request, err error) {
	respondError(w, r, h.logger, err)
}

// ErrorResponse 是 API 错误响应的通用结构体。
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// MessageResponse is the body of mutations that return no entity.
type MessageResponse struct {
	Message string `json:"message"`
}

// writeJSONResponse 是一个辅助函数，用于发送 JSON 响应。
func writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		// 头部已发送，编码失败时无法再改写状态码
		_ = json.NewEncoder(w).Encode(data)
	}
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSONResponse(w, http.StatusOK, MessageResponse{Message: message})
}

// respondError maps err to its status and body. Internal causes are logged,
// never returned.
func respondError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	kind := apperrors.KindOf(err)
	status := apperrors.HTTPStatus(kind)
	if kind == apperrors.KindInternal {
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	writeJSONResponse(w, status, ErrorResponse{
		Error:   string(kind),
		Message: apperrors.PublicMessage(err),
		Fields:  apperrors.FieldsOf(err),
	})
}

// emptyIfNil keeps list endpoints from encoding null.
func emptyIfNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
