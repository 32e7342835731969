package domain

import (
	"errors"
	"fmt"
)

// 错误分类哨兵：service/repository 统一用这四类错误向上传递，
// HTTP 层只根据分类映射状态码，不感知存储细节
var (
	ErrInvalid  = errors.New("invalid")
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrInternal = errors.New("internal")
)

// Error 领域错误（kind + message）
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

// Is 支持 errors.Is(err, domain.ErrNotFound) 等判断
func (e *Error) Is(target error) bool { return target == e.kind }

func Invalidf(format string, args ...any) error {
	return &Error{kind: ErrInvalid, msg: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) error {
	return &Error{kind: ErrNotFound, msg: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...any) error {
	return &Error{kind: ErrConflict, msg: fmt.Sprintf(format, args...)}
}

// Internalf 内部错误：message 面向调用方，cause 只进日志
func Internalf(format string, args ...any) error {
	return &Error{kind: ErrInternal, msg: fmt.Sprintf(format, args...)}
}
