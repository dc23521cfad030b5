package http1

import (
	"errors"
	"io"
	"strings"
	"testing"

	errs "github.com/favbox/gust/common/errors"
	"github.com/favbox/gust/common/mock"
	"github.com/stretchr/testify/assert"
)

func feedAll(r *bodyReader, data []byte) (string, int, error) {
	var out strings.Builder
	n, err := r.feed(data, func(p []byte) { out.Write(p) })
	return out.String(), n, err
}

func TestBodyReaderSized(t *testing.T) {
	t.Parallel()

	r := newBodyReader(sized(5))
	assert.False(t, r.done())
	out, n, err := feedAll(r, []byte("hel"))
	assert.Nil(t, err)
	assert.Equal(t, "hel", out)
	assert.Equal(t, 3, n)
	assert.False(t, r.done())

	out, n, err = feedAll(r, []byte("loGET"))
	assert.Nil(t, err)
	assert.Equal(t, "lo", out)
	assert.Equal(t, 2, n)
	assert.True(t, r.done())

	assert.True(t, newBodyReader(sized(0)).done())
	assert.Equal(t, io.ErrUnexpectedEOF, newBodyReader(sized(1)).finishEOF())
	assert.Nil(t, r.finishEOF())
}

func TestBodyReaderChunked(t *testing.T) {
	t.Parallel()

	r := newBodyReader(framingChunked)
	out, n, err := feedAll(r, []byte("4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\nnext"))
	assert.Nil(t, err)
	assert.Equal(t, "Wikipedia", out)
	assert.Equal(t, len("4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n"), n)
	assert.True(t, r.done())

	r = newBodyReader(framingChunked)
	_, _, err = feedAll(r, []byte("zz\r\n"))
	assert.True(t, errors.Is(err, errs.ErrMalformedChunk))
	assert.Equal(t, io.ErrUnexpectedEOF, newBodyReader(framingChunked).finishEOF())
}

func TestBodyReaderEmptyAndUntilClose(t *testing.T) {
	t.Parallel()

	r := newBodyReader(framingEmpty)
	out, n, err := feedAll(r, []byte("abc"))
	assert.Nil(t, err)
	assert.Equal(t, "", out)
	assert.Equal(t, 0, n)
	assert.True(t, r.done())

	r = newBodyReader(framingReadUntilClose)
	out, n, err = feedAll(r, []byte("abc"))
	assert.Nil(t, err)
	assert.Equal(t, "abc", out)
	assert.Equal(t, 3, n)
	assert.False(t, r.done())
	assert.Nil(t, r.finishEOF())
}

func newTestWriter(f BodyFraming) (*BodyWriter, *mock.Conn) {
	conn := mock.NewConn()
	return &BodyWriter{out: &outbound{conn: conn}, framing: f}, conn
}

func TestBodyWriterSized(t *testing.T) {
	t.Parallel()

	w, conn := newTestWriter(sized(5))
	n, err := w.Write([]byte("hel"))
	assert.Nil(t, err)
	assert.Equal(t, 3, n)
	buf := []byte("lo")
	_, err = w.Write(buf)
	assert.Nil(t, err)
	buf[0] = 'X'
	assert.Nil(t, w.Finish())
	assert.Equal(t, "hello", conn.Written())
	assert.Equal(t, uint64(5), w.Written())
	assert.False(t, conn.Closed())

	// 重复结束无副作用
	assert.Nil(t, w.Finish())
	_, err = w.Write([]byte("x"))
	assert.Equal(t, errWriterFinished, err)
}

func TestBodyWriterSizedOverflow(t *testing.T) {
	t.Parallel()

	w, conn := newTestWriter(sized(3))
	_, err := w.Write([]byte("ab"))
	assert.Nil(t, err)
	n, err := w.Write([]byte("cd"))
	assert.Equal(t, 0, n)
	assert.True(t, errors.Is(err, errs.ErrBodyOverflow))

	// 写入器失效，溢出的数据不会写出
	_, err = w.Write([]byte("c"))
	assert.True(t, errors.Is(err, errs.ErrBodyOverflow))
	assert.True(t, errors.Is(w.Finish(), errs.ErrBodyOverflow))
	assert.NotContains(t, conn.Written(), "cd")
}

func TestBodyWriterSizedIncomplete(t *testing.T) {
	t.Parallel()

	w, conn := newTestWriter(sized(10))
	_, err := w.Write([]byte("abc"))
	assert.Nil(t, err)
	err = w.Finish()
	assert.True(t, errors.Is(err, errs.ErrBodyIncomplete))
	assert.True(t, conn.Closed())
	// 已写出的部分在关闭前刷新
	assert.Equal(t, "abc", conn.Written())
	assert.Equal(t, err, w.Finish())
}

func TestBodyWriterSizedIncompleteBrokenConn(t *testing.T) {
	t.Parallel()

	conn := mock.NewBrokenConn()
	w := &BodyWriter{out: &outbound{conn: conn}, framing: sized(4)}
	_, err := w.Write([]byte("ab"))
	assert.Nil(t, err)
	// 刷新失败不掩盖正文未写满的错误
	err = w.Finish()
	assert.True(t, errors.Is(err, errs.ErrBodyIncomplete))
	assert.True(t, conn.Closed())
}

func TestBodyWriterChunked(t *testing.T) {
	t.Parallel()

	w, conn := newTestWriter(framingChunked)
	for _, s := range []string{"Wiki", "", "pedia"} {
		_, err := w.Write([]byte(s))
		assert.Nil(t, err)
	}
	assert.Nil(t, w.Finish())
	assert.Equal(t, "4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n", conn.Written())
	assert.Nil(t, w.Finish())
	assert.Equal(t, 1, strings.Count(conn.Written(), "0\r\n\r\n"))
}

func TestBodyWriterEmpty(t *testing.T) {
	t.Parallel()

	w, conn := newTestWriter(framingEmpty)
	_, err := w.Write(nil)
	assert.Nil(t, err)
	_, err = w.Write([]byte("x"))
	assert.True(t, errors.Is(err, errs.ErrBodyOverflow))

	w, conn = newTestWriter(framingEmpty)
	assert.Nil(t, w.Finish())
	assert.Equal(t, "", conn.Written())
	assert.False(t, conn.Closed())
}

func TestBodyWriterUntilClose(t *testing.T) {
	t.Parallel()

	w, conn := newTestWriter(framingReadUntilClose)
	_, err := w.Write([]byte("stream"))
	assert.Nil(t, err)
	assert.Nil(t, w.Flush())
	assert.Equal(t, "stream", conn.Written())
	assert.Nil(t, w.Finish())
	assert.True(t, conn.Closed())
}

func TestBodyWriterBrokenConn(t *testing.T) {
	t.Parallel()

	conn := mock.NewBrokenConn()
	w := &BodyWriter{out: &outbound{conn: conn}, framing: sized(2)}
	_, err := w.Write([]byte("ab"))
	assert.Nil(t, err)
	assert.Equal(t, errs.ErrConnectionClosed, w.Finish())
}

func TestOutboundClosed(t *testing.T) {
	t.Parallel()

	conn := mock.NewConn()
	o := &outbound{conn: conn}
	assert.Nil(t, o.close())
	assert.Nil(t, o.close())
	assert.Equal(t, 1, conn.CloseCount())
	assert.True(t, o.isClosed())
	assert.Equal(t, errs.ErrConnectionClosed, o.flush())
	w := &BodyWriter{out: o, framing: framingChunked}
	_, err := w.Write([]byte("x"))
	assert.Equal(t, errs.ErrConnectionClosed, err)
}
