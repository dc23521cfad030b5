package netpoll

import (
	"context"
	"io"
	"net"
	"sync"
	"time"

	"github.com/cloudwego/netpoll"
	"github.com/favbox/gust/common/config"
	"github.com/favbox/gust/common/wlog"
	"github.com/favbox/gust/network"
)

var _ network.Transporter = (*transport)(nil)

func init() {
	// 禁用 netpoll 的日志
	netpoll.SetLoggerOutput(io.Discard)
}

type protocolKey struct{}

type transport struct {
	sync.RWMutex
	network          string
	addr             string
	keepAliveTimeout time.Duration
	readTimeout      time.Duration
	writeTimeout     time.Duration
	listener         net.Listener
	eventLoop        netpoll.EventLoop
	listenConfig     *net.ListenConfig
	onAccept         func(conn net.Conn) context.Context
}

// ListenAndServe 绑定监听地址并持续服务，除非出现错误或传输器关闭。
func (t *transport) ListenAndServe(onConnect network.OnConnect) (err error) {
	_ = network.UnlinkUdsFile(t.network, t.addr)
	t.Lock()
	if t.listenConfig != nil {
		t.listener, err = t.listenConfig.Listen(context.Background(), t.network, t.addr)
	} else {
		t.listener, err = net.Listen(t.network, t.addr)
	}
	t.Unlock()
	if err != nil {
		return err
	}

	opts := []netpoll.Option{
		netpoll.WithIdleTimeout(t.keepAliveTimeout),
		netpoll.WithOnPrepare(func(conn netpoll.Connection) context.Context {
			_ = conn.SetReadTimeout(t.readTimeout)
			if t.writeTimeout > 0 {
				_ = conn.SetWriteTimeout(t.writeTimeout)
			}
			// 此时连接尚未加入 epoll，适合做对端 IP 的黑名单检查
			if t.onAccept != nil {
				return t.onAccept(conn)
			}
			return context.Background()
		}),
		netpoll.WithOnConnect(func(ctx context.Context, conn netpoll.Connection) context.Context {
			c := newConn(conn)
			proto := onConnect(ctx, c)
			c.watchClose(proto)
			return context.WithValue(ctx, protocolKey{}, proto)
		}),
	}

	t.Lock()
	t.eventLoop, err = netpoll.NewEventLoop(func(ctx context.Context, conn netpoll.Connection) error {
		proto, ok := ctx.Value(protocolKey{}).(network.Protocol)
		if !ok {
			return nil
		}
		return newConn(conn).feed(proto)
	}, opts...)
	t.Unlock()
	if err != nil {
		return err
	}

	wlog.SystemLogger().Infof("HTTP服务器监听地址=%s", t.listener.Addr().String())
	t.RLock()
	eventLoop, listener := t.eventLoop, t.listener
	t.RUnlock()
	return eventLoop.Serve(listener)
}

// Close 强制传输器立即关闭（无超时等待）。
func (t *transport) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	return t.Shutdown(ctx)
}

// Shutdown 停止监听器并优雅关闭。将等待所有连接关闭，直到触达截止时间。
func (t *transport) Shutdown(ctx context.Context) error {
	defer func() {
		_ = network.UnlinkUdsFile(t.network, t.addr)
	}()
	t.RLock()
	eventLoop := t.eventLoop
	t.RUnlock()
	if eventLoop == nil {
		return nil
	}
	return eventLoop.Shutdown(ctx)
}

// NewTransporter 创建 netpoll 网络传输器。
func NewTransporter(options *config.Options) network.Transporter {
	return &transport{
		network:          options.Network,
		addr:             options.Addr,
		keepAliveTimeout: options.KeepAliveTimeout,
		readTimeout:      options.ReadTimeout,
		writeTimeout:     options.WriteTimeout,
		listenConfig:     options.ListenConfig,
		onAccept:         options.OnAccept,
	}
}
