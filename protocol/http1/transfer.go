package http1

import (
	"sync/atomic"
	"time"

	errs "github.com/favbox/gust/common/errors"
	"github.com/favbox/gust/internal/bytesconv"
	"github.com/favbox/gust/internal/bytestr"
	"github.com/favbox/gust/network"
	"github.com/favbox/gust/protocol"
	"github.com/favbox/gust/protocol/consts"
)

// 测试中可替换。
var nowFunc = time.Now

// Transfer 是发送一个报文的句柄。
//
// 服务端的 Transfer 用于回复收到的请求，客户端的 Transfer 用于发出请求。
// Respond 或 Request 只能成功调用一次，之后正文经返回的 BodyWriter 写出。
type Transfer struct {
	conn *Conn
	// 正在回复的请求，为空表示回复一个无法解析的请求。
	peer    *protocol.Message
	started int32
}

// Respond 写出响应首部，返回正文写入器。仅服务端可用。
//
// h 不会被修改。未声明长度时自动使用分块编码，必要时补充 Date 与 Server 标头。
func (t *Transfer) Respond(status int, h *protocol.Header) (*BodyWriter, error) {
	if t.conn.role != roleServer {
		return nil, errs.ErrTransferRole
	}

	var hdr protocol.Header
	if h != nil {
		hdr = h.Clone()
	}
	var requestMethod string
	peerHTTP10 := false
	if t.peer != nil {
		requestMethod = t.peer.Method
		peerHTTP10 = !t.peer.ProtoAtLeast(1, 1)
	}

	framing, err := ResolveOutgoingResponse(requestMethod, status, peerHTTP10, &hdr)
	if err != nil {
		return nil, err
	}
	// 分帧无误才占用 Transfer，调用方可修正首部后重试
	if !atomic.CompareAndSwapInt32(&t.started, 0, 1) {
		return nil, errs.ErrTransferStarted
	}
	switch framing.Kind {
	case FramingChunked:
		appendChunked(&hdr)
	case FramingReadUntilClose:
		if !hdr.HasToken(consts.HeaderConnection, consts.ValueClose) {
			hdr.Set(consts.HeaderConnection, consts.ValueClose)
		}
	}
	if !t.conn.opts.NoDefaultDate && !hdr.Has(consts.HeaderDate) {
		hdr.Set(consts.HeaderDate, string(bytesconv.AppendHTTPDate(nil, nowFunc())))
	}
	if name := t.conn.opts.ServerName; name != "" && !hdr.Has(consts.HeaderServer) {
		hdr.Set(consts.HeaderServer, name)
	}

	head := append([]byte(nil), consts.StatusLine(status)...)
	head = hdr.AppendBytes(head)
	head = append(head, bytestr.StrCRLF...)
	if err = t.conn.out.write(func(w network.Writer) error { return copyTo(w, head) }); err != nil {
		return nil, err
	}
	return &BodyWriter{out: t.conn.out, framing: framing}, nil
}

// Request 写出请求首部，返回正文写入器。仅客户端可用。
//
// 请求方法会被记录，用于确定对应响应的分帧。
func (t *Transfer) Request(method, target string, h *protocol.Header) (*BodyWriter, error) {
	if t.conn.role != roleClient {
		return nil, errs.ErrTransferRole
	}

	var hdr protocol.Header
	if h != nil {
		hdr = h.Clone()
	}
	framing, err := ResolveOutgoingRequest(method, &hdr)
	if err != nil {
		return nil, err
	}
	if !atomic.CompareAndSwapInt32(&t.started, 0, 1) {
		return nil, errs.ErrTransferStarted
	}
	if framing.Kind == FramingChunked {
		appendChunked(&hdr)
	}
	if ua := t.conn.opts.UserAgent; ua != "" && !hdr.Has(consts.HeaderUserAgent) {
		hdr.Set(consts.HeaderUserAgent, ua)
	}

	head := make([]byte, 0, len(method)+len(target)+len(bytestr.StrHTTP11)+4)
	head = append(head, method...)
	head = append(head, ' ')
	head = append(head, target...)
	head = append(head, ' ')
	head = append(head, bytestr.StrHTTP11...)
	head = append(head, bytestr.StrCRLF...)
	head = hdr.AppendBytes(head)
	head = append(head, bytestr.StrCRLF...)

	// 先入队再写出，响应可能在写出后立即到达。
	t.conn.methods.push(method)
	if err = t.conn.out.write(func(w network.Writer) error { return copyTo(w, head) }); err != nil {
		return nil, err
	}
	return &BodyWriter{out: t.conn.out, framing: framing}, nil
}

// WriteContinue 写出 100 Continue 临时响应并刷新，须在 Respond 之前调用。
func (t *Transfer) WriteContinue() error {
	if t.conn.role != roleServer {
		return errs.ErrTransferRole
	}
	if atomic.LoadInt32(&t.started) != 0 {
		return errs.ErrTransferStarted
	}
	err := t.conn.out.write(func(w network.Writer) error {
		_, err := w.WriteBinary(bytestr.StrContinue100)
		return err
	})
	if err != nil {
		return err
	}
	return t.conn.out.flush()
}

// Started 判断首部是否已经写出。
func (t *Transfer) Started() bool {
	return atomic.LoadInt32(&t.started) != 0
}
