package http1

import (
	"io"
	"sync"

	errs "github.com/favbox/gust/common/errors"
	"github.com/favbox/gust/common/wlog"
	"github.com/favbox/gust/network"
	"github.com/favbox/gust/protocol/http1/ext"
)

// bodyReader 按分帧从连接字节中切出正文，只在连接的 I/O 协程中使用。
type bodyReader struct {
	framing   BodyFraming
	remaining uint64
	chunked   ext.ChunkDecoder
}

func newBodyReader(f BodyFraming) *bodyReader {
	return &bodyReader{framing: f, remaining: f.Length}
}

// done 判断正文是否已完整读取。
func (r *bodyReader) done() bool {
	switch r.framing.Kind {
	case FramingEmpty:
		return true
	case FramingSized:
		return r.remaining == 0
	case FramingChunked:
		return r.chunked.Done()
	}
	return false
}

// feed 解码 p 中属于正文的部分，解码出的数据交给 emit。
//
// 返回消耗的字节数，正文结束后的字节不会被消耗。
func (r *bodyReader) feed(p []byte, emit func([]byte)) (consumed int, err error) {
	switch r.framing.Kind {
	case FramingSized:
		n := uint64(len(p))
		if n > r.remaining {
			n = r.remaining
		}
		if n > 0 {
			emit(p[:n])
			r.remaining -= n
		}
		return int(n), nil
	case FramingChunked:
		return r.chunked.Decode(p, emit)
	case FramingReadUntilClose:
		if len(p) > 0 {
			emit(p)
		}
		return len(p), nil
	}
	return 0, nil
}

// finishEOF 在对端关闭时结束正文，只有以关闭界定的正文能就此完整。
func (r *bodyReader) finishEOF() error {
	if r.framing.Kind == FramingReadUntilClose || r.done() {
		return nil
	}
	return io.ErrUnexpectedEOF
}

var errWriterFinished = errs.NewPrivate("正文已写完")

// BodyWriter 按分帧写出一个报文的正文。
//
// Write 会拷贝数据，可在返回后复用 p。BodyWriter 不能被并发使用。
type BodyWriter struct {
	out     *outbound
	framing BodyFraming

	written  uint64
	finished bool
	// 一旦出错，后续写入都返回该错误。
	err error
}

// Framing 返回本正文的分帧。
func (w *BodyWriter) Framing() BodyFraming {
	return w.framing
}

// Written 返回已接受的正文字节数。
func (w *BodyWriter) Written() uint64 {
	return w.written
}

// Write 写入一段正文。
//
// 定长正文写超声明长度时返回 ErrBodyOverflow，本次数据不会写出，且写入器随之失效。
func (w *BodyWriter) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	if w.finished {
		return 0, errWriterFinished
	}
	if len(p) == 0 {
		return 0, nil
	}

	var err error
	switch w.framing.Kind {
	case FramingEmpty:
		err = errs.New(errs.ErrBodyOverflow, errs.ErrorTypePublic, map[string]any{"declared": 0, "attempted": len(p)})
	case FramingSized:
		if w.written+uint64(len(p)) > w.framing.Length {
			err = errs.New(errs.ErrBodyOverflow, errs.ErrorTypePublic,
				map[string]any{"declared": w.framing.Length, "attempted": w.written + uint64(len(p))})
			break
		}
		err = w.out.write(func(dst network.Writer) error { return copyTo(dst, p) })
	case FramingChunked:
		err = w.out.write(func(dst network.Writer) error { return ext.WriteChunk(dst, p) })
	default:
		err = w.out.write(func(dst network.Writer) error { return copyTo(dst, p) })
	}
	if err != nil {
		w.err = err
		return 0, err
	}
	w.written += uint64(len(p))
	return len(p), nil
}

// Flush 将已写入的数据发往对端。
func (w *BodyWriter) Flush() error {
	if w.err != nil {
		return w.err
	}
	return w.out.flush()
}

// Finish 结束正文并刷新。
//
// 分块正文写出结束块，以关闭界定的正文会关闭连接。
// 定长正文未写满时返回 ErrBodyIncomplete 并关闭连接，因为对端已无法正确分帧。
func (w *BodyWriter) Finish() error {
	if w.finished {
		return w.err
	}
	w.finished = true
	if w.err != nil {
		return w.err
	}

	switch w.framing.Kind {
	case FramingSized:
		if w.written < w.framing.Length {
			w.err = errs.New(errs.ErrBodyIncomplete, errs.ErrorTypePublic,
				map[string]any{"declared": w.framing.Length, "written": w.written})
			// 已写出的部分仍尽力送达，随后关闭连接
			if err := w.out.flush(); err != nil {
				wlog.SystemLogger().Debugf("刷新未写满的正文出错: %v", err)
			}
			if err := w.out.close(); err != nil {
				wlog.SystemLogger().Debugf("关闭连接出错: %v", err)
			}
			return w.err
		}
	case FramingChunked:
		if err := w.out.write(ext.WriteLastChunk); err != nil {
			w.err = err
			return err
		}
	}

	if err := w.out.flush(); err != nil {
		w.err = err
		return err
	}
	if w.framing.Kind == FramingReadUntilClose {
		return w.out.close()
	}
	return nil
}

func copyTo(w network.Writer, p []byte) error {
	buf, err := w.Malloc(len(p))
	if err != nil {
		return err
	}
	copy(buf, p)
	return nil
}

// outbound 串行化同一连接上的全部写入。
//
// 处理器协程写出响应的同时，I/O 协程可能写出错误响应。
type outbound struct {
	mu     sync.Mutex
	conn   network.Conn
	closed bool
}

func (o *outbound) write(f func(w network.Writer) error) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return errs.ErrConnectionClosed
	}
	return f(o.conn)
}

func (o *outbound) flush() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return errs.ErrConnectionClosed
	}
	return o.conn.Flush()
}

// close 关闭连接，重复调用无副作用。
func (o *outbound) close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return nil
	}
	o.closed = true
	return o.conn.Close()
}

func (o *outbound) isClosed() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.closed
}
