package server

import (
	"context"
	"os"
	"os/signal"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/favbox/gust/common/config"
	"github.com/favbox/gust/common/errors"
	"github.com/favbox/gust/common/wlog"
	"github.com/favbox/gust/network"
	"github.com/favbox/gust/protocol/http1"
	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

const unknownTransporterName = "unknown"

const (
	statusInitialized uint32 = iota
	statusRunning
	statusShutdown
	statusClosed
)

var (
	errAlreadyRunning   = errors.NewPublic("服务已在运行中")
	errStatusNotRunning = errors.NewPublic("服务未在运行中")
)

// Gust 是 HTTP/1.x 服务端，为每个连接创建一个协议状态机。
//
// 组合了传输器、连接处理器和优雅退出函数。
type Gust struct {
	options   *config.Options
	handler   http1.Handler
	transport network.Transporter
	status    uint32

	// 停止配置文件监视
	mu        sync.Mutex
	stopWatch context.CancelFunc

	// 用于接收信息实现优雅退出
	signalWaiter func(err chan error) error
}

// New 创建一个 gust 服务实例，收到的请求经 handler 处理。
func New(handler http1.Handler, opts ...config.Option) *Gust {
	options := config.NewOptions(opts)
	if options.ReusePort && options.ListenConfig == nil {
		options.ListenConfig = network.ReusePortListenConfig()
	}
	g := &Gust{
		options:   options,
		handler:   handler,
		transport: defaultTransporter(options),
	}
	if options.TransporterNewer != nil {
		g.transport = options.TransporterNewer(options)
	}
	return g
}

// GetOptions 返回服务配置。
func (g *Gust) GetOptions() *config.Options {
	return g.options
}

// GetTransporterName 返回底层网络传输器的名称。
func (g *Gust) GetTransporterName() (tName string) {
	defer func() {
		if err := recover(); err != nil || tName == "" {
			tName = unknownTransporterName
		}
	}()
	t := reflect.ValueOf(g.transport).Type().String()
	return strings.Split(strings.TrimPrefix(t, "*"), ".")[0]
}

// Run 校验配置并持续提供服务，直到传输器关闭或出错。
//
// 配置了 ConfigFile 时，运行期间监视该文件并热加载日志级别。
func (g *Gust) Run() error {
	if err := g.options.Validate(); err != nil {
		return errors.New(err, errors.ErrorTypePublic, "配置校验失败")
	}
	if !atomic.CompareAndSwapUint32(&g.status, statusInitialized, statusRunning) {
		return errAlreadyRunning
	}
	defer atomic.StoreUint32(&g.status, statusClosed)
	wlog.SetLevel(g.options.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	eg, ctx := errgroup.WithContext(ctx)
	g.mu.Lock()
	g.stopWatch = cancel
	g.mu.Unlock()
	defer cancel()

	if path := g.options.ConfigFile; path != "" {
		eg.Go(func() error {
			return config.Watch(ctx, path, g.reload)
		})
	}

	wlog.SystemLogger().Infof("使用网络库=%s", g.GetTransporterName())
	err := g.transport.ListenAndServe(g.onConnect)
	cancel()
	if werr := eg.Wait(); werr != nil {
		err = multierror.Append(err, werr).ErrorOrNil()
	}
	return err
}

func (g *Gust) onConnect(ctx context.Context, conn network.Conn) network.Protocol {
	opt := http1.Options{
		MaxHeaderBufferSize: g.options.MaxHeaderBufferSize,
		MaxHeaderCount:      g.options.MaxHeaderCount,
		MaxPendingBodySize:  g.options.MaxPendingBodySize,
		NoDefaultDate:       g.options.NoDefaultDate,
	}
	if !g.options.NoDefaultServerHeader {
		opt.ServerName = g.options.ServerName
	}
	wlog.SystemLogger().Debugf("新连接 remote=%v", conn.RemoteAddr())
	return http1.NewServerConn(conn, g.handler, opt)
}

// 仅日志级别支持热加载，其余字段需重启生效。
func (g *Gust) reload(f *config.FileOptions) {
	if f.LogLevel == "" {
		return
	}
	lv, err := wlog.ParseLevel(f.LogLevel)
	if err != nil {
		wlog.SystemLogger().Warnf("忽略无效的日志级别：%s", f.LogLevel)
		return
	}
	wlog.SetLevel(lv)
	wlog.SystemLogger().Infof("日志级别已更新为 %s", f.LogLevel)
}

// Shutdown 优雅退出：停止配置监视，关闭监听器并等待连接结束，直到 ctx 结束。
func (g *Gust) Shutdown(ctx context.Context) error {
	if !atomic.CompareAndSwapUint32(&g.status, statusRunning, statusShutdown) {
		return errStatusNotRunning
	}

	var result *multierror.Error
	g.mu.Lock()
	if g.stopWatch != nil {
		g.stopWatch()
	}
	g.mu.Unlock()

	if err := g.transport.Shutdown(ctx); err != nil && err != ctx.Err() {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

// Close 立即关闭传输器。
func (g *Gust) Close() error {
	g.mu.Lock()
	if g.stopWatch != nil {
		g.stopWatch()
	}
	g.mu.Unlock()
	return g.transport.Close()
}

// Spin 运行服务器直至捕获 os.Signal 或 Run 返回错误。
// 支持优雅退出。
func (g *Gust) Spin() {
	errCh := make(chan error, 1)
	go func() {
		errCh <- g.Run()
	}()

	signalWaiter := defaultSignalWaiter
	if g.signalWaiter != nil {
		signalWaiter = g.signalWaiter
	}

	if err := signalWaiter(errCh); err != nil {
		wlog.SystemLogger().Errorf("收到退出信号：错误=%v", err)
		if err = g.Close(); err != nil {
			wlog.SystemLogger().Errorf("退出错误：%v", err)
		}
		return
	}

	wlog.SystemLogger().Infof("开始优雅退出，最多等待 %d 秒...", g.options.ExitWaitTimeout/time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), g.options.ExitWaitTimeout)
	defer cancel()

	if err := g.Shutdown(ctx); err != nil {
		wlog.SystemLogger().Errorf("退出错误：%v", err)
	}
}

// SetCustomSignalWaiter 设置自定义的信号等待者。
// 若默认的信号等待实现不符要求，则可以自定义。
// Gust 在 f 返回错误后会立即退出，否则它将优雅退出。
func (g *Gust) SetCustomSignalWaiter(f func(err chan error) error) {
	g.signalWaiter = f
}

// 信号等待者的默认实现。
// SIGTERM 立即退出。
// SIGHUP|SIGINT 触发优雅退出。
func defaultSignalWaiter(errCh chan error) error {
	signalToNotify := []os.Signal{
		syscall.SIGINT,
		syscall.SIGHUP,
		syscall.SIGTERM,
	}
	if signal.Ignored(syscall.SIGHUP) {
		signalToNotify = []os.Signal{
			syscall.SIGINT,
			syscall.SIGTERM,
		}
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, signalToNotify...)
	defer signal.Stop(signals)

	select {
	case sig := <-signals:
		switch sig {
		case syscall.SIGTERM:
			// 强制退出
			return errors.NewPublic(sig.String())
		case syscall.SIGHUP, syscall.SIGINT:
			wlog.SystemLogger().Infof("收到退出信号：%s", sig)
			// 优雅退出
			return nil
		}
	case err := <-errCh:
		// 出现错误，立即退出
		return err
	}

	return nil
}
