package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 是对外稳定的错误类别，直接出现在响应体的 "error" 字段中。
type Kind string

const (
	KindValidation   Kind = "validation_error"
	KindNotFound     Kind = "not_found"
	KindForbidden    Kind = "forbidden"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindInternal     Kind = "internal_error"
)

var statusByKind = map[Kind]int{
	KindValidation:   http.StatusUnprocessableEntity,
	KindNotFound:     http.StatusNotFound,
	KindForbidden:    http.StatusForbidden,
	KindConflict:     http.StatusConflict,
	KindUnauthorized: http.StatusUnauthorized,
	KindInternal:     http.StatusInternalServerError,
}

// AppError 定义应用错误结构。Message 面向调用方，Err 只用于日志。
type AppError struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches on Kind so callers can write errors.Is(err, apperrors.ErrNotFound).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// Sentinels for errors.Is checks. They carry no message.
var (
	ErrValidation   = &AppError{Kind: KindValidation}
	ErrNotFound     = &AppError{Kind: KindNotFound}
	ErrForbidden    = &AppError{Kind: KindForbidden}
	ErrConflict     = &AppError{Kind: KindConflict}
	ErrUnauthorized = &AppError{Kind: KindUnauthorized}
	ErrInternal     = &AppError{Kind: KindInternal}
)

// New 创建新的应用错误
func New(kind Kind, message string) *AppError {
	return &AppError{Kind: kind, Message: message}
}

// Wrap 包装已有错误
func Wrap(kind Kind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func Validation(message string) *AppError { return New(KindValidation, message) }

// ValidationFields carries per-field problems, e.g. from validator/v10.
func ValidationFields(message string, fields map[string]string) *AppError {
	return &AppError{Kind: KindValidation, Message: message, Fields: fields}
}

func NotFound(message string) *AppError     { return New(KindNotFound, message) }
func Forbidden(message string) *AppError    { return New(KindForbidden, message) }
func Conflict(message string) *AppError     { return New(KindConflict, message) }
func Unauthorized(message string) *AppError { return New(KindUnauthorized, message) }

// Internal wraps a storage or infrastructure failure.
func Internal(message string, err error) *AppError {
	return Wrap(KindInternal, message, err)
}

// KindOf returns the kind of the first AppError in err's chain.
// Anything else is internal.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// HTTPStatus maps a kind to its response status.
func HTTPStatus(kind Kind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// PublicMessage is the text that may be shown to callers.
// Internal errors never expose their cause.
func PublicMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Kind != KindInternal && appErr.Message != "" {
		return appErr.Message
	}
	return "Internal server error"
}

// FieldsOf returns per-field validation details, if any.
func FieldsOf(err error) map[string]string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Fields
	}
	return nil
}
