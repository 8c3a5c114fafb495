package splitter

import (
	"errors"
	"fmt"
)

// 拆分过程中的错误类型
const (
	ErrorTypeInputNotFound       = "INPUT_NOT_FOUND"       // 输入文件不存在
	ErrorTypeOutputDirUnwritable = "OUTPUT_DIR_UNWRITABLE" // 输出目录无法创建
	ErrorTypeLoad                = "LOAD_ERROR"            // 文档加载失败
	ErrorTypeSave                = "SAVE_ERROR"            // 单页保存失败
)

// 用于errors.Is判断的哨兵错误
var (
	ErrInputNotFound       = &Error{Type: ErrorTypeInputNotFound}
	ErrOutputDirUnwritable = &Error{Type: ErrorTypeOutputDirUnwritable}
	ErrLoad                = &Error{Type: ErrorTypeLoad}
	ErrSave                = &Error{Type: ErrorTypeSave}
)

// Error 拆分错误
type Error struct {
	Type    string // 错误类型
	Message string // 错误消息
	Path    string // 相关文件路径
	Page    int    // 相关页码，仅SAVE_ERROR使用
	Err     error  // 底层错误
}

// Error 实现error接口
func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Type
	}
	if e.Path != "" {
		msg = fmt.Sprintf("%s '%s'", msg, e.Path)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap 返回底层错误
func (e *Error) Unwrap() error {
	return e.Err
}

// Is 相同类型的错误视为相等
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// NewInputNotFoundError 创建输入文件不存在错误
func NewInputNotFoundError(path string, err error) *Error {
	return &Error{
		Type:    ErrorTypeInputNotFound,
		Message: "PDF file not found at",
		Path:    path,
		Err:     err,
	}
}

// NewOutputDirError 创建输出目录错误
func NewOutputDirError(path string, err error) *Error {
	return &Error{
		Type:    ErrorTypeOutputDirUnwritable,
		Message: "failed to prepare output directory",
		Path:    path,
		Err:     err,
	}
}

// NewLoadError 创建文档加载错误
func NewLoadError(path string, err error) *Error {
	return &Error{
		Type:    ErrorTypeLoad,
		Message: "failed to load PDF",
		Path:    path,
		Err:     err,
	}
}

// NewSaveError 创建单页保存错误
func NewSaveError(page int, path string, err error) *Error {
	return &Error{
		Type:    ErrorTypeSave,
		Message: fmt.Sprintf("failed to save page %d to", page),
		Path:    path,
		Page:    page,
		Err:     err,
	}
}

// IsType 判断错误链中是否包含指定类型的拆分错误
func IsType(err error, errorType string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Type == errorType
	}
	return false
}
