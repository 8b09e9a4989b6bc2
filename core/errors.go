package core

import (
	"errors"
	"fmt"
)

// DomainError 是领域层的统一错误类型。
//
// 使用场景：
//   - 评分解析错误：INVALID_INPUT（module=rating）
//   - 查询错误：NOT_FOUND（用户/菜系不存在）、INVALID_INPUT（limit 非法）
//   - 存储错误：NOT_FOUND, NOT_SUPPORTED
//
// errors.Is 按 Module + Code 匹配，便于对 fmt.Errorf("%w") 包装后的错误做判断。
type DomainError struct {
	Code    string // 错误代码（如 "NOT_FOUND", "INVALID_INPUT"）
	Message string // 错误消息
	Module  string // 模块名称（如 "rating", "query", "store"）
	Cause   error  // 底层错误，可为空
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is 让 errors.Is(err, ErrEntityNotFound) 对同模块同错误码的实例成立。
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Module == t.Module && e.Code == t.Code
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// Wrapf 基于哨兵错误派生一个带上下文的实例，保留 Module/Code。
func (e *DomainError) Wrapf(cause error, format string, args ...any) *DomainError {
	return &DomainError{
		Module:  e.Module,
		Code:    e.Code,
		Message: e.Message + ": " + fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// GetDomainError 从错误链中取出 DomainError，没有则返回 nil
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// 错误代码常量
const (
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeNotSupported  = "NOT_SUPPORTED"  // 操作不支持
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 输入无效
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误
)

// 模块名称常量
const (
	ModuleRating     = "rating"     // 评分聚合
	ModuleDataset    = "dataset"    // 数据加载
	ModuleQuery      = "query"      // 相似度 / 近邻 / 推荐查询
	ModuleSimilarity = "similarity" // 相似度度量
	ModuleFilter     = "filter"     // 结果过滤表达式
	ModuleStore      = "store"      // 存储模块
)

var (
	// ErrMalformedRating 评分字段无法解析为数值，整轮聚合中止
	ErrMalformedRating = NewDomainError(ModuleRating, ErrorCodeInvalidInput, "rating: malformed numeric field")

	// ErrMalformedRow CSV 行列数不足
	ErrMalformedRow = NewDomainError(ModuleDataset, ErrorCodeInvalidInput, "dataset: malformed row")

	// ErrEntityNotFound 目标用户/菜系不在评分视图中
	ErrEntityNotFound = NewDomainError(ModuleQuery, ErrorCodeNotFound, "query: entity not found")

	// ErrInvalidLimit 结果数量上限必须为正整数
	ErrInvalidLimit = NewDomainError(ModuleQuery, ErrorCodeInvalidInput, "query: limit must be a positive integer")

	// ErrUnknownModel 推荐模型名称无法识别
	ErrUnknownModel = NewDomainError(ModuleQuery, ErrorCodeInvalidInput, "query: unknown recommendation model")

	// ErrUnknownMetric 相似度度量名称无法识别
	ErrUnknownMetric = NewDomainError(ModuleSimilarity, ErrorCodeInvalidInput, "similarity: unknown metric")

	// ErrInvalidFilter 过滤表达式编译失败或返回值非布尔
	ErrInvalidFilter = NewDomainError(ModuleFilter, ErrorCodeInvalidInput, "filter: invalid expression")
)

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == ErrorCodeInvalidInput
	}
	return false
}
