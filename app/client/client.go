// Package client 提供基于单条 HTTP/1.x 连接的客户端。
//
// Dial 返回底层协议状态机，由调用方自行处理响应；
// Client 则按发送顺序把响应配对给请求，适合简单的请求-响应场景。
package client

import (
	"context"
	"sync"

	"github.com/favbox/gust/common/config"
	errs "github.com/favbox/gust/common/errors"
	"github.com/favbox/gust/common/wlog"
	"github.com/favbox/gust/network"
	"github.com/favbox/gust/network/dialer"
	"github.com/favbox/gust/protocol"
	"github.com/favbox/gust/protocol/consts"
	"github.com/favbox/gust/protocol/http1"
)

// Dial 连接到 addr，返回客户端协议状态机，收到的响应经 handler 送达。
func Dial(addr string, handler http1.Handler, opts ...config.ClientOption) (*http1.Conn, error) {
	return dial(addr, handler, nil, opts)
}

// dial 在连接开始接收数据之前调用 bind，使处理器从第一个事件起就能访问连接。
func dial(addr string, handler http1.Handler, bind func(*http1.Conn), opts []config.ClientOption) (*http1.Conn, error) {
	options := config.NewClientOptions(opts)
	d := options.Dialer
	if d == nil {
		d = dialer.DefaultDialer()
	}

	var conn *http1.Conn
	_, err := d.DialConnection("tcp", addr, options.DialTimeout, func(c network.Conn) network.Protocol {
		conn = http1.NewClientConn(c, handler, http1.Options{
			MaxHeaderBufferSize: options.MaxHeaderBufferSize,
			MaxHeaderCount:      options.MaxHeaderCount,
			MaxPendingBodySize:  options.MaxPendingBodySize,
			UserAgent:           options.Name,
		})
		if bind != nil {
			bind(conn)
		}
		return conn
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Response 是一个完整读取的响应。
type Response struct {
	*protocol.Message
	Body []byte
}

type call struct {
	resp *Response
	err  error
	done chan struct{}
}

func (c *call) finish(resp *Response, err error) {
	c.resp, c.err = resp, err
	close(c.done)
}

// Client 在一条连接上按序发送请求，并把响应依次配对给请求。
type Client struct {
	conn *http1.Conn

	// 保证请求写出的顺序与等待队列一致
	sendMu sync.Mutex

	mu      sync.Mutex
	waiters []*call
	err     error
}

// NewClient 连接到 addr 并返回客户端。
func NewClient(addr string, opts ...config.ClientOption) (*Client, error) {
	c := &Client{}
	_, err := dial(addr, c, func(conn *http1.Conn) { c.conn = conn }, opts)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Do 发送请求并等待完整的响应，直到 ctx 结束。h 与 body 可为空。
//
// 未设置 Content-Length 且 body 非空时，请求正文使用分块编码。
func (c *Client) Do(ctx context.Context, method, target string, h *protocol.Header, body []byte) (*Response, error) {
	cl := &call{done: make(chan struct{})}

	c.sendMu.Lock()
	if err := c.enqueue(cl); err != nil {
		c.sendMu.Unlock()
		return nil, err
	}
	err := c.send(method, target, h, body)
	c.sendMu.Unlock()
	if err != nil {
		c.fail(err)
		return nil, err
	}

	select {
	case <-cl.done:
		return cl.resp, cl.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) send(method, target string, h *protocol.Header, body []byte) error {
	tr, err := c.conn.Transfer()
	if err != nil {
		return err
	}
	w, err := tr.Request(method, target, h)
	if err != nil {
		return err
	}
	if _, err = w.Write(body); err != nil {
		return err
	}
	return w.Finish()
}

func (c *Client) enqueue(cl *call) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.waiters = append(c.waiters, cl)
	return nil
}

func (c *Client) dequeue() *call {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.waiters) == 0 {
		return nil
	}
	cl := c.waiters[0]
	c.waiters = c.waiters[1:]
	return cl
}

// fail 让全部等待中的请求以 err 结束，之后的请求直接返回 err。
func (c *Client) fail(err error) {
	c.mu.Lock()
	if c.err == nil {
		c.err = err
	}
	waiters := c.waiters
	c.waiters = nil
	c.mu.Unlock()

	for _, cl := range waiters {
		cl.finish(nil, err)
	}
	_ = c.conn.Close()
}

// Close 关闭连接，等待中的请求返回 ErrConnectionClosed。
func (c *Client) Close() error {
	c.fail(errs.ErrConnectionClosed)
	return nil
}

// OnIncoming 实现 http1.Handler。
func (c *Client) OnIncoming(msg *protocol.Message, stream *http1.Stream, _ *http1.Transfer) {
	// 临时响应之后还有最终响应
	if consts.IsInformational(msg.StatusCode) {
		stream.Close()
		return
	}
	cl := c.dequeue()
	if cl == nil {
		wlog.SystemLogger().Warnf("收到无对应请求的响应：%d %s", msg.StatusCode, msg.Reason)
		stream.Close()
		return
	}

	col := http1.NewCollector()
	if err := stream.Read(col); err != nil {
		col.Release()
		cl.finish(nil, err)
		return
	}
	go func() {
		defer col.Release()
		<-col.Done()
		if err := col.Err(); err != nil {
			cl.finish(nil, err)
			return
		}
		cl.finish(&Response{Message: msg, Body: append([]byte(nil), col.Bytes()...)}, nil)
	}()
}

// OnParseError 实现 http1.Handler。
func (c *Client) OnParseError(err error, _ *http1.Transfer) {
	c.fail(err)
}

// OnTransportError 实现 http1.Handler。
func (c *Client) OnTransportError(err error) {
	c.fail(err)
}

var _ http1.Handler = (*Client)(nil)
