package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 业务错误分类，决定返回给客户端的HTTP状态码
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindAuth
	KindNotFound
	KindConflict
	KindMethodNotAllowed
	KindBadRequest
)

// Error 可直接映射为 {error: message} 响应的业务错误
type Error struct {
	Kind    Kind
	Message string
	Err     error // 底层错误，仅用于日志
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Status 返回错误对应的HTTP状态码
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation, KindConflict, KindBadRequest:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		return http.StatusInternalServerError
	}
}

// Validation 缺少必填字段
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Auth 凭证不匹配
func Auth(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

// NotFound 实体不存在或未知的 action
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict 唯一性冲突（如用户名已存在）
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

// MethodNotAllowed 不支持的HTTP方法
func MethodNotAllowed(message string) *Error {
	return &Error{Kind: KindMethodNotAllowed, Message: message}
}

// BadRequest 无法识别的请求组合
func BadRequest(message string) *Error {
	return &Error{Kind: KindBadRequest, Message: message}
}

// Internal 包装非预期的底层错误
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "internal server error", Err: err}
}

// From 提取错误链中的 *Error，非业务错误统一视为 Internal
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// Is 判断错误链中是否包含指定分类的业务错误
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
