package errors

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrTimeout              = errors.New("timeout")
	ErrConnectionClosed     = errors.New("连接已关闭")
	ErrNeedMore             = errors.New("需要更多数据")
	ErrMalformed            = errors.New("报文格式错误")
	ErrHTTP2Preface         = errors.New("不支持的 HTTP/2 连接前言")
	ErrHeaderTooLarge       = errors.New("报文首部超过缓冲区上限")
	ErrTooManyHeaders       = errors.New("标头行数超过上限")
	ErrInvalidContentLength = errors.New("无效的 Content-Length")
	ErrMalformedChunk       = errors.New("分块编码格式错误")
	ErrBodyOverflow         = errors.New("写入字节数超过声明的正文长度")
	ErrBodyIncomplete       = errors.New("写入字节数少于声明的正文长度")
	ErrPendingBodyTooLarge  = errors.New("未认领的正文超过暂存上限")
	ErrStreamClaimed        = errors.New("正文流已被认领")
	ErrTransferStarted      = errors.New("传输已开始")
	ErrTransferRole         = errors.New("传输角色不匹配")
)

type ErrorType uint64

// Error 表示一个带有错误类型和元信息的错误规范。
type Error struct {
	Err  error
	Type ErrorType
	Meta any
}

// 返回错误的消息字符串。
func (msg *Error) Error() string {
	return msg.Err.Error()
}

// JSON 返回可直接编码为 JSON 的错误描述。
func (msg *Error) JSON() any {
	jsonData := make(map[string]any)
	if msg.Meta != nil {
		value := reflect.ValueOf(msg.Meta)
		switch value.Kind() {
		case reflect.Struct:
			return msg.Meta
		case reflect.Map:
			for _, key := range value.MapKeys() {
				jsonData[key.String()] = value.MapIndex(key).Interface()
			}
		default:
			jsonData["meta"] = msg.Meta
		}
	}
	if _, ok := jsonData["error"]; !ok {
		jsonData["error"] = msg.Error()
	}
	return jsonData
}

func (msg *Error) Unwrap() error {
	return msg.Err
}

func (msg *Error) IsType(flags ErrorType) bool {
	return (msg.Type & flags) > 0
}

func (msg *Error) SetType(flags ErrorType) *Error {
	msg.Type = flags
	return msg
}

func (msg *Error) SetMeta(data any) *Error {
	msg.Meta = data
	return msg
}

const (
	// ErrorTypePrivate 表示一个私有的错误，不应出现在对端可见的响应中。
	ErrorTypePrivate ErrorType = 1 << iota
	// ErrorTypePublic 表示一个公开的错误。
	ErrorTypePublic
	// ErrorTypeAny 表示任何其他错误。
	ErrorTypeAny
)

var _ error = (*Error)(nil)

// New 新建一个指定错误和错误类型及元数据的自定义错误。
func New(err error, t ErrorType, meta any) *Error {
	return &Error{
		Err:  err,
		Type: t,
		Meta: meta,
	}
}

func NewPublic(err string) *Error {
	return New(errors.New(err), ErrorTypePublic, nil)
}

func NewPrivate(err string) *Error {
	return New(errors.New(err), ErrorTypePrivate, nil)
}

func Newf(t ErrorType, meta any, format string, v ...any) *Error {
	return New(fmt.Errorf(format, v...), t, meta)
}

func NewPublicf(format string, v ...any) *Error {
	return New(fmt.Errorf(format, v...), ErrorTypePublic, nil)
}

func NewPrivatef(format string, v ...any) *Error {
	return New(fmt.Errorf(format, v...), ErrorTypePrivate, nil)
}

// Wrapf 新建一个包裹 sentinel 的公开错误，errors.Is(err, sentinel) 成立。
func Wrapf(sentinel error, format string, v ...any) *Error {
	return New(fmt.Errorf("%w: "+format, append([]any{sentinel}, v...)...), ErrorTypePublic, nil)
}
