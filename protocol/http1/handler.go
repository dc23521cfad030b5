package http1

import (
	"errors"
	"strconv"

	errs "github.com/favbox/gust/common/errors"
	"github.com/favbox/gust/common/json"
	"github.com/favbox/gust/common/wlog"
	"github.com/favbox/gust/protocol"
	"github.com/favbox/gust/protocol/consts"
)

// Handler 接收连接上的报文与错误。
//
// 回调在连接的 I/O 协程中执行，不得阻塞；耗时的处理应转交其他协程，
// 并通过 Stream 与 Transfer 异步完成读取和回复。
type Handler interface {
	// OnIncoming 送达一个完整解析的报文首部。
	OnIncoming(msg *protocol.Message, stream *Stream, transfer *Transfer)

	// OnParseError 报告致命的解析错误，之后连接即被关闭。
	// 服务端可经 transfer 写出错误响应，回调返回后连接关闭。
	OnParseError(err error, transfer *Transfer)

	// OnTransportError 报告传输层错误。
	OnTransportError(err error)
}

// HandlerFuncs 以函数实现 Handler，为空的字段使用默认行为。
type HandlerFuncs struct {
	Incoming       func(msg *protocol.Message, stream *Stream, transfer *Transfer)
	ParseError     func(err error, transfer *Transfer)
	TransportError func(err error)
}

func (h HandlerFuncs) OnIncoming(msg *protocol.Message, stream *Stream, transfer *Transfer) {
	if h.Incoming == nil {
		stream.Close()
		return
	}
	h.Incoming(msg, stream, transfer)
}

func (h HandlerFuncs) OnParseError(err error, transfer *Transfer) {
	if h.ParseError == nil {
		DefaultParseErrorHandler(err, transfer)
		return
	}
	h.ParseError(err, transfer)
}

func (h HandlerFuncs) OnTransportError(err error) {
	if h.TransportError == nil {
		wlog.SystemLogger().Debugf("连接传输错误: %v", err)
		return
	}
	h.TransportError(err)
}

// DefaultParseErrorHandler 向服务端连接写出 400 响应，正文为 JSON 格式的错误描述。
//
// 首部超限时不回复，直接关闭连接。
func DefaultParseErrorHandler(err error, transfer *Transfer) {
	if transfer == nil || transfer.conn.role != roleServer || errors.Is(err, errs.ErrHeaderTooLarge) {
		return
	}

	var e *errs.Error
	if !errors.As(err, &e) || !e.IsType(errs.ErrorTypePublic) {
		e = errs.NewPublic(consts.StatusMessage(consts.StatusBadRequest))
	}
	body, merr := json.Marshal(e.JSON())
	if merr != nil {
		wlog.SystemLogger().Errorf("编码错误响应失败: %v", merr)
		return
	}

	var h protocol.Header
	h.Set(consts.HeaderContentType, consts.ValueJSONUTF8)
	h.Set(consts.HeaderContentLength, strconv.Itoa(len(body)))
	h.Set(consts.HeaderConnection, consts.ValueClose)
	w, rerr := transfer.Respond(consts.StatusBadRequest, &h)
	if rerr != nil {
		wlog.SystemLogger().Debugf("写出错误响应失败: %v", rerr)
		return
	}
	if _, werr := w.Write(body); werr == nil {
		werr = w.Finish()
		if werr != nil {
			wlog.SystemLogger().Debugf("写出错误响应失败: %v", werr)
		}
	}
}
