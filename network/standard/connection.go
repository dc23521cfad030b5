package standard

import (
	"errors"
	"io"
	"net"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/bytedance/gopkg/lang/mcache"
	errs "github.com/favbox/gust/common/errors"
	"github.com/favbox/gust/network"
)

// Conn 实现基于 net 的网络连接：读循环推送数据，写入经缓冲后一次写出。
type Conn struct {
	c              net.Conn
	w              network.Writer
	readBufferSize int
	readTimeout    time.Duration
	closed         int32
}

var (
	_ network.Conn               = (*Conn)(nil)
	_ network.ErrorNormalization = (*Conn)(nil)
)

// ToGustError 统一连接关闭和超时错误。
func (c *Conn) ToGustError(err error) error {
	if errors.Is(err, syscall.EPIPE) || errors.Is(err, syscall.ENOTCONN) || errors.Is(err, net.ErrClosed) {
		return errs.ErrConnectionClosed
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errs.ErrTimeout
	}
	return err
}

func (c *Conn) Malloc(n int) (buf []byte, err error) {
	return c.w.Malloc(n)
}

func (c *Conn) WriteBinary(b []byte) (n int, err error) {
	return c.w.WriteBinary(b)
}

func (c *Conn) Flush() error {
	if err := c.w.Flush(); err != nil {
		return c.ToGustError(err)
	}
	return nil
}

// Close 关闭底层连接，仅首次调用生效。
func (c *Conn) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}
	return c.c.Close()
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.c.RemoteAddr()
}

func (c *Conn) isClosed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}

// 阻塞读取直到连接结束，读到的数据逐块推送给 proto。
func (c *Conn) serve(proto network.Protocol) {
	buf := mcache.Malloc(c.readBufferSize)
	defer mcache.Free(buf)

	for {
		if c.readTimeout > 0 {
			_ = c.c.SetReadDeadline(time.Now().Add(c.readTimeout))
		}
		n, err := c.c.Read(buf)
		if n > 0 {
			proto.OnData(buf[:n])
		}
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) || c.isClosed() {
			proto.OnEndOfStream()
		} else {
			proto.OnError(c.ToGustError(err))
		}
		_ = c.Close()
		return
	}
}

func newConn(c net.Conn, readBufferSize int, readTimeout time.Duration) *Conn {
	if readBufferSize <= 0 {
		readBufferSize = defaultReadBufferSize
	}
	return &Conn{
		c:              c,
		w:              network.NewWriter(c),
		readBufferSize: readBufferSize,
		readTimeout:    readTimeout,
	}
}
