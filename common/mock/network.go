// Package mock 提供用于测试协议引擎的内存连接。
package mock

import (
	"bytes"
	"net"
	"sync"

	"github.com/cloudwego/netpoll"
	errs "github.com/favbox/gust/common/errors"
	"github.com/favbox/gust/network"
)

// Conn 是记录全部写出数据的内存连接，可被并发使用。
//
// 写入的数据在 Flush 之后才出现在 Written 中，与真实传输一致。
type Conn struct {
	mu       sync.Mutex
	buf      bytes.Buffer
	zw       netpoll.ReadWriter
	wroteLen int
	flushes  int
	closes   int
	remote   net.Addr
}

// NewConn 新建内存连接。
func NewConn() *Conn {
	m := &Conn{remote: &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 40000}}
	m.zw = netpoll.NewReadWriter(&m.buf)
	return m
}

// --- 实现 network.Writer ---

func (m *Conn) Malloc(n int) (buf []byte, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wroteLen += n
	return m.zw.Malloc(n)
}

func (m *Conn) WriteBinary(b []byte) (n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, err = m.zw.WriteBinary(b)
	m.wroteLen += n
	return n, err
}

func (m *Conn) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushes++
	return m.zw.Flush()
}

// --- 实现 network.Conn ---

func (m *Conn) Close() error {
	m.mu.Lock()
	m.closes++
	m.mu.Unlock()
	return nil
}

func (m *Conn) RemoteAddr() net.Addr {
	return m.remote
}

// --- 其他扩展 ---

// Written 返回已刷新到连接的全部数据。
func (m *Conn) Written() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buf.String()
}

// WroteLen 返回写入缓冲区的字节数，含尚未刷新的部分。
func (m *Conn) WroteLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.wroteLen
}

// Flushes 返回 Flush 的调用次数。
func (m *Conn) Flushes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flushes
}

// Closed 判断连接是否被关闭过。
func (m *Conn) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes > 0
}

// CloseCount 返回 Close 的调用次数。
func (m *Conn) CloseCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

// BrokenConn 模拟对端已断开的连接，刷新总是失败。
type BrokenConn struct {
	*Conn
}

func (c *BrokenConn) Flush() error {
	return errs.ErrConnectionClosed
}

func NewBrokenConn() *BrokenConn {
	return &BrokenConn{NewConn()}
}

var _ network.Conn = (*Conn)(nil)
