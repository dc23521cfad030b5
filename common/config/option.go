package config

import (
	"context"
	"net"
	"time"

	vd "github.com/bytedance/go-tagexpr/v2/validator"
	"github.com/favbox/gust/common/wlog"
	"github.com/favbox/gust/network"
	"github.com/favbox/gust/protocol/consts"
)

const (
	defaultKeepAliveTimeout = 1 * time.Minute
	defaultReadTimeout      = 3 * time.Minute
	defaultWaitExitTimeout  = 5 * time.Second
	defaultNetwork          = "tcp"
	defaultAddr             = ":8888"
)

var validator = vd.New("vd")

// Option 是用于配置 Options 唯一结构体。
type Option struct {
	F func(o *Options)
}

// Options 是服务端配置项的结构体。
type Options struct {
	// KeepAliveTimeout 是闲置连接的超时时间，默认 1 分钟。
	KeepAliveTimeout time.Duration

	// ReadTimeout 是网络库读取的超时时间，默认 3 分钟，0 代表永不超时。
	ReadTimeout time.Duration

	// WriteTimeout 是网络库写入的超时时间，默认为 0，即永不超时。
	WriteTimeout time.Duration

	// ExitWaitTimeout 是优雅退出的等待时间，默认 5s。
	ExitWaitTimeout time.Duration

	Network string `vd:"$=='tcp'||$=='tcp4'||$=='tcp6'||$=='unix'"` // 网络协议，默认 "tcp"
	Addr    string `vd:"len($)>0"`                                   // 监听地址，默认 ":8888"

	// ReadBufferSize 是标准库传输器每次读取的缓冲大小，默认 8KB。
	ReadBufferSize int `vd:"$>0"`

	// MaxHeaderBufferSize 是未解析首部的缓冲上限，超出即关闭连接。
	MaxHeaderBufferSize int `vd:"$>=1024"`

	// MaxHeaderCount 是单个报文允许的最大标头行数，超出即关闭连接。
	MaxHeaderCount int `vd:"$>0"`

	// MaxPendingBodySize 是正文被认领前允许暂存的最大字节数。
	MaxPendingBodySize int `vd:"$>=0"`

	NoDefaultDate         bool   // 禁止响应头添加 Date 的默认字段值，默认否
	NoDefaultServerHeader bool   // 是否不要默认的服务器名称标头，默认否
	ServerName            string // Server 标头的值，默认 "gust"

	// ReusePort 为监听套接字开启 SO_REUSEPORT，ListenConfig 非空时忽略。
	ReusePort    bool
	ListenConfig *net.ListenConfig

	// LogLevel 是系统日志级别，默认 LevelInfo。
	LogLevel wlog.Level

	// ConfigFile 非空时，服务运行期间监视该文件并热加载日志级别。
	ConfigFile string

	// 在 netpoll 中，OnAccept 在连接加入 epoll 之前调用；在 go/net 中，在 Accept 之后立即调用。
	// 例如想检查对端IP是否在黑名单中，可使用 OnAccept。
	OnAccept func(conn net.Conn) context.Context

	// TransporterNewer 是传输器的自定义创建函数。
	TransporterNewer func(opt *Options) network.Transporter
}

// Apply 将指定的一组配置方法 opts 应用到配置项上。
func (o *Options) Apply(opts []Option) {
	for _, opt := range opts {
		opt.F(o)
	}
}

// Validate 校验配置项的取值范围。
func (o *Options) Validate() error {
	return validator.Validate(o)
}

// NewOptions 创建基于给定配置函数的配置项。
func NewOptions(opts []Option) *Options {
	options := &Options{
		KeepAliveTimeout:    defaultKeepAliveTimeout,
		ReadTimeout:         defaultReadTimeout,
		ExitWaitTimeout:     defaultWaitExitTimeout,
		Network:             defaultNetwork,
		Addr:                defaultAddr,
		ReadBufferSize:      consts.DefaultReadBufferSize,
		MaxHeaderBufferSize: consts.DefaultMaxHeaderBufferSize,
		MaxHeaderCount:      consts.DefaultMaxHeaderCount,
		MaxPendingBodySize:  consts.DefaultMaxPendingBodySize,
		ServerName:          consts.DefaultServerName,
		LogLevel:            wlog.LevelInfo,
	}
	options.Apply(opts)
	return options
}
