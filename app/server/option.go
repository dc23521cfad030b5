package server

import (
	"context"
	"net"
	"time"

	"github.com/favbox/gust/common/config"
	"github.com/favbox/gust/common/wlog"
	"github.com/favbox/gust/network"
)

// WithHostPorts 指定监听的地址和端口。默认值：":8888"。
func WithHostPorts(addr string) config.Option {
	return config.Option{F: func(o *config.Options) {
		o.Addr = addr
	}}
}

// WithNetwork 网络协议，可选：tcp，tcp4，tcp6，unix（unix domain socket）。
// 默认值：tcp。
func WithNetwork(nw string) config.Option {
	return config.Option{F: func(o *config.Options) {
		o.Network = nw
	}}
}

// WithReadTimeout 设置网络库读取数据超时时间。默认值 3 分钟。
//
// 当读超时时连接将关闭。
func WithReadTimeout(t time.Duration) config.Option {
	return config.Option{F: func(o *config.Options) {
		o.ReadTimeout = t
	}}
}

// WithWriteTimeout 设置网络库写入数据超时时间。默认值：无限长。
//
// 当写超时时连接将关闭。
func WithWriteTimeout(t time.Duration) config.Option {
	return config.Option{F: func(o *config.Options) {
		o.WriteTimeout = t
	}}
}

// WithKeepAliveTimeout 设置闲置连接的超时时间。
//
// 在大多数情况下，无需关心该选项。
// 默认值：1 分钟。
func WithKeepAliveTimeout(t time.Duration) config.Option {
	return config.Option{F: func(o *config.Options) {
		o.KeepAliveTimeout = t
	}}
}

// WithExitWaitTime 优雅退出的等待时间。
//
// 服务器会停止建立新连接，并等待已有连接结束。
// 当到达设定的时间关闭服务器。若所有连接均已关闭则可提前关闭。
//
// 默认值：5 秒。
func WithExitWaitTime(t time.Duration) config.Option {
	return config.Option{F: func(o *config.Options) {
		o.ExitWaitTimeout = t
	}}
}

// WithReadBufferSize 设置标准库传输器每次读取的缓冲大小。默认值：8KB。
func WithReadBufferSize(size int) config.Option {
	return config.Option{F: func(o *config.Options) {
		o.ReadBufferSize = size
	}}
}

// WithMaxHeaderBufferSize 设置未解析首部的缓冲上限。
//
// 在找到首部结束的空行之前累积到该值，连接即被关闭。默认值：8192 + 409600 字节。
func WithMaxHeaderBufferSize(size int) config.Option {
	return config.Option{F: func(o *config.Options) {
		o.MaxHeaderBufferSize = size
	}}
}

// WithMaxHeaderCount 设置单个请求允许的最大标头行数。默认值：100。
func WithMaxHeaderCount(count int) config.Option {
	return config.Option{F: func(o *config.Options) {
		o.MaxHeaderCount = count
	}}
}

// WithMaxPendingBodySize 设置正文被认领前允许暂存的最大字节数，超出即关闭连接。
// 默认值：4MB。
func WithMaxPendingBodySize(size int) config.Option {
	return config.Option{F: func(o *config.Options) {
		o.MaxPendingBodySize = size
	}}
}

// WithDisableDefaultDate 设置是否禁止自动添加 Date 标头。默认值：false。
func WithDisableDefaultDate(disable bool) config.Option {
	return config.Option{F: func(o *config.Options) {
		o.NoDefaultDate = disable
	}}
}

// WithDisableDefaultServerHeader 设置是否禁止自动添加 Server 标头。默认值：false。
func WithDisableDefaultServerHeader(disable bool) config.Option {
	return config.Option{F: func(o *config.Options) {
		o.NoDefaultServerHeader = disable
	}}
}

// WithServerName 设置 Server 标头的值。默认值："gust"。
func WithServerName(name string) config.Option {
	return config.Option{F: func(o *config.Options) {
		o.ServerName = name
	}}
}

// WithReusePort 设置监听套接字是否开启 SO_REUSEPORT。默认值：false。
func WithReusePort(b bool) config.Option {
	return config.Option{F: func(o *config.Options) {
		o.ReusePort = b
	}}
}

// WithListenConfig 设置监听器配置。如配置是否允许端口重用。
func WithListenConfig(l *net.ListenConfig) config.Option {
	return config.Option{F: func(o *config.Options) {
		o.ListenConfig = l
	}}
}

// WithTransport 更换网络传输器。默认值：netpoll.NewTransporter。
func WithTransport(transporter func(opts *config.Options) network.Transporter) config.Option {
	return config.Option{F: func(o *config.Options) {
		o.TransporterNewer = transporter
	}}
}

// WithLogLevel 设置系统日志级别。默认值：LevelInfo。
func WithLogLevel(lv wlog.Level) config.Option {
	return config.Option{F: func(o *config.Options) {
		o.LogLevel = lv
	}}
}

// WithConfigFile 设置运行期间监视的 JSON 配置文件，文件中的日志级别可热加载。
func WithConfigFile(path string) config.Option {
	return config.Option{F: func(o *config.Options) {
		o.ConfigFile = path
	}}
}

// WithOnAccept 设置在 netpoll 中新连接被接受但不能接收数据时的回调函数。
// 在 go net 中，它将在 Accept 之后立即被调用。
//
// 默认值：nil。
func WithOnAccept(fn func(conn net.Conn) context.Context) config.Option {
	return config.Option{F: func(o *config.Options) {
		o.OnAccept = fn
	}}
}
