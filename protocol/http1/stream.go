package http1

import (
	"sync"

	"github.com/favbox/gust/common/bytebufferpool"
)

// BodySink 接收正文数据。
//
// 回调按顺序且不会并发调用，OnData 的切片只在调用期间有效。
// OnEOF 与 OnError 至多调用其一，之后不再有回调。
type BodySink interface {
	OnData(p []byte)
	OnError(err error)
	OnEOF()
}

// Stream 是收到报文的正文读取端。
type Stream struct {
	rv      *rendezvous
	framing BodyFraming
}

// Framing 返回正文的分帧。
func (s *Stream) Framing() BodyFraming {
	return s.framing
}

// Read 认领正文，之后的数据依次交给 sink。每个正文只能认领一次，重复认领返回 ErrStreamClaimed。
//
// 认领前到达的数据会在 Read 返回前同步交给 sink。
func (s *Stream) Read(sink BodySink) error {
	return s.rv.claim(sink)
}

// Close 放弃剩余正文。
//
// 正文尚未结束时，连接上随后到达的字节将被当作新报文的开始解析。
func (s *Stream) Close() {
	s.rv.hangup()
}

// Collector 是把正文收集到内存中的 BodySink。
type Collector struct {
	mu   sync.Mutex
	buf  *bytebufferpool.ByteBuffer
	err  error
	done chan struct{}
}

// NewCollector 新建一个收集器，用完后调用 Release 归还缓冲区。
func NewCollector() *Collector {
	return &Collector{
		buf:  bytebufferpool.Get(),
		done: make(chan struct{}),
	}
}

func (c *Collector) OnData(p []byte) {
	c.mu.Lock()
	if c.buf != nil {
		c.buf.Write(p) //nolint:errcheck
	}
	c.mu.Unlock()
}

func (c *Collector) OnError(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
	close(c.done)
}

func (c *Collector) OnEOF() {
	close(c.done)
}

// Done 在正文结束或出错时关闭。
func (c *Collector) Done() <-chan struct{} {
	return c.done
}

// Bytes 返回已收集的正文，在 Release 之前有效。
func (c *Collector) Bytes() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.buf == nil {
		return nil
	}
	return c.buf.Bytes()
}

// Err 返回正文的错误，正文完整时为空。
func (c *Collector) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Release 将缓冲区归还到池中。
func (c *Collector) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.buf != nil {
		bytebufferpool.Put(c.buf)
		c.buf = nil
	}
}
