package http1

import (
	"bytes"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	errs "github.com/favbox/gust/common/errors"
	"github.com/favbox/gust/common/wlog"
	"github.com/favbox/gust/internal/nocopy"
	"github.com/favbox/gust/internal/stats"
	"github.com/favbox/gust/network"
	"github.com/favbox/gust/protocol"
	"github.com/favbox/gust/protocol/consts"
	"github.com/favbox/gust/protocol/http1/ext"
)

type role uint8

const (
	roleServer role = iota
	roleClient
)

func (r role) String() string {
	if r == roleClient {
		return "response"
	}
	return "request"
}

type connState uint8

const (
	// 正在累积并解析报文首部。
	stateParsing connState = iota
	// 正在把正文字节交给当前报文的读取端。
	stateStreaming
	// 连接已关闭，忽略之后的全部事件。
	stateClosed
)

func (s connState) String() string {
	switch s {
	case stateParsing:
		return "Parsing"
	case stateStreaming:
		return "Streaming"
	case stateClosed:
		return "Closed"
	}
	return "Unknown"
}

// Options 是连接的可选配置，零值字段取默认值。
type Options struct {
	// MaxHeaderBufferSize 是找到首部结束符之前允许累积的最大字节数。
	MaxHeaderBufferSize int
	// MaxHeaderCount 是单个报文允许的最大标头行数。
	MaxHeaderCount int
	// MaxPendingBodySize 是正文被认领前允许暂存的最大字节数。
	MaxPendingBodySize int
	// NoDefaultDate 为真时响应不自动补充 Date 标头。
	NoDefaultDate bool
	// ServerName 非空时作为响应的 Server 标头。
	ServerName string
	// UserAgent 非空时作为请求的 User-Agent 标头。
	UserAgent string
}

func (o *Options) applyDefaults() {
	if o.MaxHeaderBufferSize <= 0 {
		o.MaxHeaderBufferSize = consts.DefaultMaxHeaderBufferSize
	}
	if o.MaxHeaderCount <= 0 {
		o.MaxHeaderCount = consts.DefaultMaxHeaderCount
	}
	if o.MaxPendingBodySize <= 0 {
		o.MaxPendingBodySize = consts.DefaultMaxPendingBodySize
	}
}

// Conn 是一条 HTTP/1.x 连接的协议状态机，实现 network.Protocol。
//
// 传输器串行地送达事件，连接在 Parsing、Streaming 与 Closed 之间切换。
// 接收缓冲区、分帧与解码状态只由 I/O 协程访问，只有解码后的正文经 Stream 交给消费方。
type Conn struct {
	noCopy nocopy.NoCopy

	role    role
	handler Handler
	opts    Options
	out     *outbound

	state connState
	buf   []byte
	scan  ext.HeaderScanner
	body  *bodyReader
	rv    *rendezvous

	// 客户端按序记录已发出请求的方法。
	methods methodQueue
	closing int32
}

// NewServerConn 新建服务端连接，收到的每个请求经 handler 送达。
func NewServerConn(transport network.Conn, handler Handler, opts Options) *Conn {
	return newConn(roleServer, transport, handler, opts)
}

// NewClientConn 新建客户端连接，经 Transfer 发出请求，响应经 handler 送达。
func NewClientConn(transport network.Conn, handler Handler, opts Options) *Conn {
	return newConn(roleClient, transport, handler, opts)
}

func newConn(r role, transport network.Conn, handler Handler, opts Options) *Conn {
	opts.applyDefaults()
	stats.ConnOpened()
	return &Conn{
		role:    r,
		handler: handler,
		opts:    opts,
		out:     &outbound{conn: transport},
	}
}

// Transfer 返回一个用于发出新请求的句柄。仅客户端可用。
func (c *Conn) Transfer() (*Transfer, error) {
	if c.role != roleClient {
		return nil, errs.ErrTransferRole
	}
	return &Transfer{conn: c}, nil
}

// RemoteAddr 返回对端地址。
func (c *Conn) RemoteAddr() string {
	if addr := c.out.conn.RemoteAddr(); addr != nil {
		return addr.String()
	}
	return ""
}

// Close 关闭连接，可在任意协程调用。
func (c *Conn) Close() error {
	atomic.StoreInt32(&c.closing, 1)
	return c.out.close()
}

// OnData 实现 network.Protocol。
func (c *Conn) OnData(data []byte) {
	for {
		rest, again := c.step(data)
		if !again {
			return
		}
		data = rest
	}
}

// step 按当前状态处理 data，返回剩余字节以及是否需要在新状态下继续处理。
func (c *Conn) step(data []byte) (rest []byte, again bool) {
	if c.state != stateClosed && atomic.LoadInt32(&c.closing) == 1 {
		c.shutdown(errs.ErrConnectionClosed)
		return nil, false
	}

	switch c.state {
	case stateParsing:
		return c.parse(data)
	case stateStreaming:
		return c.stream(data)
	}
	wlog.SystemLogger().Debugf("连接已关闭，丢弃 %d 字节", len(data))
	return nil, false
}

func (c *Conn) parse(data []byte) ([]byte, bool) {
	c.buf = append(c.buf, data...)

	// 增量查找首部结束位置，完整的首部只解析一次
	end, err := c.scan.Scan(c.buf)
	if c.scan.Lines()-1 > c.opts.MaxHeaderCount {
		c.fail(errs.New(errs.ErrTooManyHeaders, errs.ErrorTypePublic,
			map[string]any{"limit": c.opts.MaxHeaderCount}), "too_many_headers")
		return nil, false
	}
	if err != nil {
		// 连接前言不含首部结束的空行之前就要识别出来
		if c.role == roleServer && bytes.HasPrefix(c.buf, prefacePrefix) {
			c.rejectPreface()
			return nil, false
		}
		return nil, c.checkBufferBound()
	}
	c.scan.Reset()

	var (
		msg *protocol.Message
		n   int
	)
	if c.role == roleServer {
		msg, n, err = ParseRequest(c.buf[:end])
	} else {
		msg, n, err = ParseResponse(c.buf[:end])
	}
	if err != nil {
		if errors.Is(err, errs.ErrHTTP2Preface) {
			c.rejectPreface()
			return nil, false
		}
		c.fail(err, "header")
		return nil, false
	}

	framing, err := c.resolve(msg)
	if err != nil {
		c.fail(err, "framing")
		return nil, false
	}

	// 剩余字节属于正文或下一个报文，缓冲区交由它们独占
	tail := c.buf[n:]
	c.buf = nil
	stats.MessageParsed(c.role.String())

	body := newBodyReader(framing)
	rv := newRendezvous(c.opts.MaxPendingBodySize)
	if body.done() {
		rv.finish(nil)
	} else {
		c.state = stateStreaming
		c.body, c.rv = body, rv
	}

	var transfer *Transfer
	if c.role == roleServer {
		transfer = &Transfer{conn: c, peer: msg}
	}
	c.handler.OnIncoming(msg, &Stream{rv: rv, framing: framing}, transfer)

	return tail, len(tail) > 0
}

func (c *Conn) rejectPreface() {
	stats.PrefaceRejected()
	wlog.SystemLogger().Debugf("拒绝 HTTP/2 连接前言, remote=%s", c.RemoteAddr())
	c.shutdown(nil)
}

func (c *Conn) resolve(msg *protocol.Message) (BodyFraming, error) {
	if c.role == roleServer {
		return ResolveRequest(&msg.Header)
	}
	method := c.methods.peek()
	if !consts.IsInformational(msg.StatusCode) {
		c.methods.pop()
	}
	return ResolveResponse(method, msg.StatusCode, &msg.Header)
}

// checkBufferBound 在首部仍不完整而缓冲区已达上限时关闭连接，返回值恒为 false。
func (c *Conn) checkBufferBound() bool {
	if len(c.buf) < c.opts.MaxHeaderBufferSize {
		return false
	}
	stats.HeaderTooLarge()
	c.fail(errs.New(errs.ErrHeaderTooLarge, errs.ErrorTypePublic,
		map[string]any{"size": len(c.buf), "limit": c.opts.MaxHeaderBufferSize}), "header_too_large")
	return false
}

func (c *Conn) stream(data []byte) ([]byte, bool) {
	if _, gone := c.rv.poll(); gone {
		// 消费方已放弃剩余正文，后续字节按新报文解析
		c.state = stateParsing
		c.body, c.rv = nil, nil
		return data, len(data) > 0
	}

	var deliverErr error
	n, err := c.body.feed(data, func(p []byte) {
		if deliverErr == nil {
			deliverErr = c.rv.deliver(p)
		}
	})
	if err == nil {
		err = deliverErr
	}
	if err != nil {
		c.rv.finish(err)
		c.fail(err, "body")
		return nil, false
	}
	if !c.body.done() {
		return nil, false
	}

	c.rv.finish(nil)
	c.state = stateParsing
	c.body, c.rv = nil, nil
	rest := data[n:]
	return rest, len(rest) > 0
}

// OnEndOfStream 实现 network.Protocol。
func (c *Conn) OnEndOfStream() {
	switch c.state {
	case stateClosed:
		return
	case stateStreaming:
		c.shutdown(c.body.finishEOF())
		return
	}
	if len(bytes.TrimSpace(c.buf)) > 0 {
		wlog.SystemLogger().Debugf("对端在首部不完整时关闭连接, buffered=%d, remote=%s", len(c.buf), c.RemoteAddr())
	}
	// 客户端仍有请求在等待响应
	if c.role == roleClient && c.methods.peek() != "" {
		c.handler.OnTransportError(io.ErrUnexpectedEOF)
	}
	c.shutdown(nil)
}

// OnError 实现 network.Protocol。
func (c *Conn) OnError(err error) {
	if c.state == stateClosed {
		return
	}
	stats.TransportError()
	c.handler.OnTransportError(err)
	c.shutdown(err)
}

// fail 处理致命的解析或分帧错误：通知处理器后关闭连接。
func (c *Conn) fail(err error, kind string) {
	stats.ParseError(kind)
	wlog.SystemLogger().Debugf("%s解析失败, remote=%s: %v", c.role, c.RemoteAddr(), err)
	var transfer *Transfer
	if c.role == roleServer && c.state == stateParsing {
		transfer = &Transfer{conn: c}
	}
	c.handler.OnParseError(err, transfer)
	c.shutdown(err)
}

// shutdown 进入 Closed 并关闭传输，正在读取的正文以 err 结束。
func (c *Conn) shutdown(err error) {
	if c.state == stateClosed {
		return
	}
	if c.state == stateStreaming {
		c.rv.finish(err)
	}
	c.state = stateClosed
	c.buf, c.body, c.rv = nil, nil, nil
	c.scan.Reset()
	stats.ConnClosed()
	if cerr := c.out.close(); cerr != nil {
		wlog.SystemLogger().Debugf("关闭连接出错: %v", cerr)
	}
}

// methodQueue 是客户端已发出但尚未收到响应的请求方法。
type methodQueue struct {
	mu      sync.Mutex
	methods []string
}

func (q *methodQueue) push(method string) {
	q.mu.Lock()
	q.methods = append(q.methods, method)
	q.mu.Unlock()
}

func (q *methodQueue) peek() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.methods) == 0 {
		return ""
	}
	return q.methods[0]
}

func (q *methodQueue) pop() {
	q.mu.Lock()
	if len(q.methods) > 0 {
		q.methods = q.methods[1:]
	}
	q.mu.Unlock()
}

var _ network.Protocol = (*Conn)(nil)
