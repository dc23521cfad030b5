package standard

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/favbox/gust/common/config"
	"github.com/favbox/gust/common/wlog"
	"github.com/favbox/gust/network"
	"github.com/favbox/gust/protocol/consts"
	"github.com/hashicorp/go-multierror"
)

const defaultReadBufferSize = consts.DefaultReadBufferSize

type transport struct {
	// 每次读取的缓冲区大小，未设置则使用默认值。
	readBufferSize int
	network        string
	addr           string
	readTimeout    time.Duration
	listenConfig   *net.ListenConfig
	onAccept       func(conn net.Conn) context.Context

	lock  sync.Mutex
	ln    net.Listener
	conns map[*Conn]struct{}
	wg    sync.WaitGroup
}

func (t *transport) ListenAndServe(onConnect network.OnConnect) (err error) {
	_ = network.UnlinkUdsFile(t.network, t.addr)
	t.lock.Lock()
	if t.listenConfig != nil {
		t.ln, err = t.listenConfig.Listen(context.Background(), t.network, t.addr)
	} else {
		t.ln, err = net.Listen(t.network, t.addr)
	}
	ln := t.ln
	shutdown := t.conns == nil
	t.lock.Unlock()
	if err != nil {
		return err
	}
	if shutdown {
		return ln.Close()
	}

	wlog.SystemLogger().Infof("HTTP服务器监听地址=%s", ln.Addr().String())
	for {
		conn, err := ln.Accept()
		if err != nil {
			if t.isShutdown() {
				return nil
			}
			wlog.SystemLogger().Errorf("接受连接失败：error=%s", err.Error())
			return err
		}

		ctx := context.Background()
		if t.onAccept != nil {
			ctx = t.onAccept(conn)
		}

		c := newConn(conn, t.readBufferSize, t.readTimeout)
		if !t.track(c) {
			_ = c.Close()
			return nil
		}
		go func() {
			defer t.untrack(c)
			c.serve(onConnect(ctx, c))
		}()
	}
}

func (t *transport) track(c *Conn) bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.conns == nil {
		return false
	}
	t.conns[c] = struct{}{}
	t.wg.Add(1)
	return true
}

func (t *transport) untrack(c *Conn) {
	t.lock.Lock()
	delete(t.conns, c)
	t.lock.Unlock()
	t.wg.Done()
}

func (t *transport) isShutdown() bool {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.conns == nil
}

func (t *transport) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()
	return t.Shutdown(ctx)
}

// Shutdown 关闭监听器，等待已有连接自行结束；截止时间到达后强制关闭剩余连接。
func (t *transport) Shutdown(ctx context.Context) error {
	defer func() {
		_ = network.UnlinkUdsFile(t.network, t.addr)
	}()

	var result *multierror.Error
	t.lock.Lock()
	if t.ln != nil {
		if err := t.ln.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	conns := t.conns
	t.conns = nil
	t.lock.Unlock()

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		for c := range conns {
			if err := c.Close(); err != nil {
				result = multierror.Append(result, err)
			}
		}
		<-done
	}
	return result.ErrorOrNil()
}

// NewTransporter 创建标准库网络传输器。
func NewTransporter(options *config.Options) network.Transporter {
	return &transport{
		readBufferSize: options.ReadBufferSize,
		network:        options.Network,
		addr:           options.Addr,
		readTimeout:    options.ReadTimeout,
		listenConfig:   options.ListenConfig,
		onAccept:       options.OnAccept,
		conns:          make(map[*Conn]struct{}),
	}
}
