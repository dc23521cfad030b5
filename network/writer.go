package network

import (
	"io"
	"net"
	"sync"

	"github.com/bytedance/gopkg/lang/mcache"
)

// 小于该值的切片拷贝进 mcache 分配的缓冲区，否则直接引用。
const copyThreshold = 4 * 1024

// 写入器的一个缓冲段。
type segment struct {
	data     []byte
	borrowed bool // 引用调用方的切片，不归还 mcache
}

var segmentPool = sync.Pool{
	New: func() any {
		return &segment{}
	},
}

// 将多段缓冲在 Flush 时合并写出的写入器，底层为 net.Conn 时走 writev。
type bufferedWriter struct {
	segments []*segment
	vec      net.Buffers
	w        io.Writer
}

func (w *bufferedWriter) Malloc(length int) (buf []byte, err error) {
	// 尝试在最后一段的余量中分配
	if n := len(w.segments); n > 0 {
		last := w.segments[n-1]
		inUse := len(last.data)
		if !last.borrowed && cap(last.data)-inUse >= length {
			last.data = last.data[:inUse+length]
			return last.data[inUse:], nil
		}
	}

	s := segmentPool.Get().(*segment)
	s.data = mcache.Malloc(length)
	w.segments = append(w.segments, s)
	return s.data, nil
}

// WriteBinary 写入数据至缓存。大切片不拷贝，在 Flush 前 b 必须保持有效。
func (w *bufferedWriter) WriteBinary(b []byte) (length int, err error) {
	length = len(b)
	if length < copyThreshold {
		buf, _ := w.Malloc(length)
		copy(buf, b)
		return
	}

	s := segmentPool.Get().(*segment)
	s.borrowed = true
	s.data = b
	w.segments = append(w.segments, s)
	return
}

// Flush 将所有缓冲段写入底层数据流，无论成败都会释放缓冲。
func (w *bufferedWriter) Flush() (err error) {
	if len(w.segments) == 0 {
		return nil
	}
	w.vec = w.vec[:0]
	for _, s := range w.segments {
		if len(s.data) > 0 {
			w.vec = append(w.vec, s.data)
		}
	}
	vec := w.vec
	_, err = vec.WriteTo(w.w)
	w.release()
	return
}

func (w *bufferedWriter) release() {
	for _, s := range w.segments {
		if !s.borrowed {
			mcache.Free(s.data)
		}
		s.data = nil
		s.borrowed = false
		segmentPool.Put(s)
	}
	w.segments = w.segments[:0]
	for i := range w.vec {
		w.vec[i] = nil
	}
	w.vec = w.vec[:0]
}

// NewWriter 将 io.Writer 转为缓冲写入器。返回的写入器不是并发安全的。
func NewWriter(w io.Writer) Writer {
	return &bufferedWriter{
		w: w,
	}
}
