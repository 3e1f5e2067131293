package errs

import (
	"errors"
	"strconv"

	pkgerr "github.com/pkg/errors"
)

// CodeError 业务错误：code + msg，detail 可叠加
type CodeError struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

func NewCodeError(code int, msg string) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  msg,
	}
}

func (e *CodeError) Error() string {
	s := strconv.Itoa(e.Code) + " " + e.Msg
	if e.Detail != "" {
		s += ": " + e.Detail
	}
	return s
}

func (e *CodeError) ECode() int   { return e.Code }
func (e *CodeError) EMsg() string { return e.Msg }

func (e *CodeError) Is(err error) bool {
	var ce *CodeError
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Code == e.Code
}

// WithDetail 叠加明细，返回新实例（原错误保持不变）
func (e *CodeError) WithDetail(detail string) *CodeError {
	d := detail
	if e.Detail != "" {
		d = e.Detail + ", " + detail
	}
	return &CodeError{
		Code:   e.Code,
		Msg:    e.Msg,
		Detail: d,
	}
}

// Wrap 附带调用栈（pkg/errors）
func (e *CodeError) Wrap() error {
	return pkgerr.WithStack(e)
}

// WrapMsg 包装底层错误并标注场景
func (e *CodeError) WrapMsg(err error, msg string) error {
	if err == nil {
		return pkgerr.WithStack(e.WithDetail(msg))
	}
	return pkgerr.Wrap(e.WithDetail(msg+": "+err.Error()), msg)
}

// CodeOf 提取错误码；非 CodeError 返回 ServerInternalError
func CodeOf(err error) int {
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ServerInternalError
}

// MsgOf 提取用户可见错误文案
func MsgOf(err error) string {
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce.Msg
	}
	return "internal error"
}
