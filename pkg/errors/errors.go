package errors

import (
	"errors"
	"fmt"
)

// ========== 错误码常量定义 ==========

// CodeSuccess 成功码
const (
	CodeSuccess = 200
)

// HTTP层错误码 (400-599)
const (
	CodeInvalidParam = 400
	CodeUnauthorized = 401
	CodeForbidden    = 403
	CodeNotFound     = 404
	CodeConflict     = 409
	CodeServerError  = 500
)

// ========== 业务错误类型 ==========

// Kind 业务错误类别
type Kind int

const (
	KindValidation             Kind = iota + 1 // 参数校验失败
	KindDuplicate                              // 唯一约束冲突
	KindPermissionDenied                       // 权限不足
	KindInvalidStateTransition                 // 非法状态流转
	KindNotFound                               // 资源不存在
	KindPersistence                            // 存储层失败
)

// AppError 带类别的业务错误
type AppError struct {
	Kind    Kind
	Message string
	Err     error // 底层错误，可为空
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// ========== 构造函数 ==========

// NewValidation 参数校验错误
func NewValidation(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NewDuplicate 唯一约束冲突错误
func NewDuplicate(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindDuplicate, Message: fmt.Sprintf(format, args...)}
}

// NewPermissionDenied 权限不足错误
func NewPermissionDenied(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindPermissionDenied, Message: fmt.Sprintf(format, args...)}
}

// NewInvalidStateTransition 非法状态流转错误
func NewInvalidStateTransition(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindInvalidStateTransition, Message: fmt.Sprintf(format, args...)}
}

// NewNotFound 资源不存在错误
func NewNotFound(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// NewPersistence 存储层错误，包装底层错误
func NewPersistence(err error) *AppError {
	return &AppError{Kind: KindPersistence, Message: "存储操作失败", Err: err}
}

// ========== 判定辅助 ==========

// KindOf 返回错误的业务类别，非AppError返回0
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return 0
}

func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}

func IsDuplicate(err error) bool {
	return KindOf(err) == KindDuplicate
}

func IsPermissionDenied(err error) bool {
	return KindOf(err) == KindPermissionDenied
}

func IsInvalidStateTransition(err error) bool {
	return KindOf(err) == KindInvalidStateTransition
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

func IsPersistence(err error) bool {
	return KindOf(err) == KindPersistence
}
