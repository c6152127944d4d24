package xerr

import (
	"errors"
	"fmt"
)

// CodeError 自定义错误结构
type CodeError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error 实现 error 接口
func (e *CodeError) Error() string {
	return fmt.Sprintf("Code: %d, Message: %s", e.Code, e.Message)
}

// New 创建新的 CodeError
func New(code int, msg string) *CodeError {
	return &CodeError{Code: code, Message: msg}
}

// 常用通用错误码
const (
	OK                  = 200
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500

	// NetworkError 客户端传输层错误（请求未到达服务端）
	NetworkError = 0
)

// 常用预定义错误
var (
	ErrSuccess     = New(OK, "Success")
	ErrServerError = New(InternalServerError, "系统错误，请联系工作人员")
	ErrParam       = New(BadRequest, "参数错误")
	ErrNotFound    = New(NotFound, "资源不存在")
	ErrAuth        = New(Unauthorized, "未授权或登录已过期")
)

// CodeOf 提取错误码，非 CodeError 统一视为系统错误
func CodeOf(err error) int {
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return InternalServerError
}

func IsNetworkError(err error) bool { return CodeOf(err) == NetworkError }

func IsAuthError(err error) bool { return CodeOf(err) == Unauthorized }

func IsValidationError(err error) bool { return CodeOf(err) == BadRequest }

func IsNotFound(err error) bool { return CodeOf(err) == NotFound }

func IsServerError(err error) bool { return CodeOf(err) >= InternalServerError }
