package netpoll

import (
	"errors"
	"io"
	"net"
	"syscall"

	"github.com/cloudwego/netpoll"
	errs "github.com/favbox/gust/common/errors"
	"github.com/favbox/gust/common/wlog"
	"github.com/favbox/gust/network"
)

// Conn 实现基于 netpoll 的网络连接。
type Conn struct {
	c netpoll.Connection
}

var (
	_ network.Conn               = (*Conn)(nil)
	_ network.ErrorNormalization = (*Conn)(nil)
)

// ToGustError 统一连接关闭和读超时错误。
func (c *Conn) ToGustError(err error) error {
	if errors.Is(err, netpoll.ErrConnClosed) || errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ECONNRESET) {
		return errs.ErrConnectionClosed
	}
	if errors.Is(err, netpoll.ErrReadTimeout) {
		return errs.ErrTimeout
	}
	if errors.Is(err, netpoll.ErrEOF) {
		return io.EOF
	}
	return err
}

func (c *Conn) Malloc(n int) (buf []byte, err error) {
	return c.c.Writer().Malloc(n)
}

func (c *Conn) WriteBinary(b []byte) (n int, err error) {
	return c.c.Writer().WriteBinary(b)
}

func (c *Conn) Flush() error {
	return c.ToGustError(c.c.Writer().Flush())
}

func (c *Conn) Close() error {
	if !c.c.IsActive() {
		return nil
	}
	return c.c.Close()
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.c.RemoteAddr()
}

func newConn(c netpoll.Connection) *Conn {
	return &Conn{c: c}
}

// 读出连接中已就绪的全部字节并推送给协议引擎。
func (c *Conn) feed(proto network.Protocol) error {
	r := c.c.Reader()
	n := r.Len()
	if n == 0 {
		return nil
	}
	buf, err := r.Next(n)
	if err != nil {
		err = c.ToGustError(err)
		wlog.SystemLogger().Debugf("读取连接数据失败：remoteAddr=%s, error=%s", c.RemoteAddr(), err)
		proto.OnError(err)
		return err
	}
	proto.OnData(buf)
	return r.Release()
}

// 连接关闭时通知协议引擎，无论是对端关闭还是本端关闭。
func (c *Conn) watchClose(proto network.Protocol) {
	_ = c.c.AddCloseCallback(func(netpoll.Connection) error {
		proto.OnEndOfStream()
		return nil
	})
}
