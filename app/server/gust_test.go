package server

import (
	"bufio"
	"context"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/favbox/gust/common/config"
	"github.com/favbox/gust/network/standard"
	"github.com/favbox/gust/protocol"
	"github.com/favbox/gust/protocol/consts"
	"github.com/favbox/gust/protocol/http1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoHandler 原样返回请求正文。
var echoHandler = http1.HandlerFuncs{
	Incoming: func(msg *protocol.Message, stream *http1.Stream, transfer *http1.Transfer) {
		go func() {
			col := http1.NewCollector()
			defer col.Release()
			if err := stream.Read(col); err != nil {
				return
			}
			<-col.Done()
			var h protocol.Header
			h.Set(consts.HeaderContentLength, strconv.Itoa(len(col.Bytes())))
			w, err := transfer.Respond(consts.StatusOK, &h)
			if err != nil {
				return
			}
			_, _ = w.Write(col.Bytes())
			_ = w.Finish()
		}()
	},
}

func waitListening(t *testing.T, addr string) net.Conn {
	var (
		conn net.Conn
		err  error
	)
	for i := 0; i < 100; i++ {
		if conn, err = net.Dial("tcp", addr); err == nil {
			return conn
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.Nil(t, err)
	return nil
}

func TestGustServe(t *testing.T) {
	t.Parallel()

	const addr = "127.0.0.1:10301"
	g := New(echoHandler,
		WithHostPorts(addr),
		WithTransport(standard.NewTransporter),
		WithServerName("gust-test"),
	)
	assert.Equal(t, "standard", g.GetTransporterName())

	errCh := make(chan error, 1)
	go func() { errCh <- g.Run() }()

	conn := waitListening(t, addr)
	br := bufio.NewReader(conn)
	for _, body := range []string{"hello", "", "pipelined"} {
		_, err := conn.Write([]byte("POST /echo HTTP/1.1\r\nHost: x\r\nContent-Length: " +
			strconv.Itoa(len(body)) + "\r\n\r\n" + body))
		require.Nil(t, err)

		resp, err := http.ReadResponse(br, nil)
		require.Nil(t, err)
		got, err := io.ReadAll(resp.Body)
		assert.Nil(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, body, string(got))
		assert.Equal(t, "gust-test", resp.Header.Get("Server"))
		assert.NotEmpty(t, resp.Header.Get("Date"))
	}
	assert.Nil(t, conn.Close())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.Nil(t, g.Shutdown(ctx))
	assert.Nil(t, <-errCh)
	assert.NotNil(t, g.Shutdown(ctx))
}

func TestGustMalformedRequest(t *testing.T) {
	t.Parallel()

	const addr = "127.0.0.1:10302"
	g := New(echoHandler, WithHostPorts(addr), WithTransport(standard.NewTransporter))
	go g.Run() //nolint:errcheck
	defer g.Close()

	conn := waitListening(t, addr)
	defer conn.Close()
	_, err := conn.Write([]byte("NOT A REQUEST\r\n\r\n"))
	require.Nil(t, err)
	out, err := io.ReadAll(conn)
	assert.Nil(t, err)
	assert.True(t, strings.HasPrefix(string(out), "HTTP/1.1 400 Bad Request\r\n"), string(out))
}

func TestGustHTTP2PrefaceClosed(t *testing.T) {
	t.Parallel()

	const addr = "127.0.0.1:10303"
	g := New(echoHandler, WithHostPorts(addr), WithTransport(standard.NewTransporter))
	go g.Run() //nolint:errcheck
	defer g.Close()

	conn := waitListening(t, addr)
	defer conn.Close()
	_, err := conn.Write([]byte("PRI * HTTP/2.0\r\n\r\nSM\r\n\r\n"))
	require.Nil(t, err)
	out, err := io.ReadAll(conn)
	assert.Nil(t, err)
	assert.Empty(t, out)
}

func TestGustRunInvalidOptions(t *testing.T) {
	t.Parallel()

	g := New(echoHandler, WithMaxHeaderBufferSize(10), WithTransport(standard.NewTransporter))
	assert.NotNil(t, g.Run())
	assert.Equal(t, errStatusNotRunning, g.Shutdown(context.Background()))
}

func TestGustSpinForcedExit(t *testing.T) {
	t.Parallel()

	const addr = "127.0.0.1:10304"
	g := New(echoHandler, WithHostPorts(addr), WithTransport(standard.NewTransporter))
	g.SetCustomSignalWaiter(func(errCh chan error) error {
		conn := waitListening(t, addr)
		conn.Close()
		return assert.AnError
	})

	done := make(chan struct{})
	go func() {
		g.Spin()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Spin did not return")
	}
}

func TestGustReload(t *testing.T) {
	g := New(echoHandler, WithTransport(standard.NewTransporter))
	g.reload(&config.FileOptions{})
	g.reload(&config.FileOptions{LogLevel: "nonsense"})
	g.reload(&config.FileOptions{LogLevel: "warn"})
	g.reload(&config.FileOptions{LogLevel: "info"})
}
