package config

import (
	"time"

	"github.com/favbox/gust/network"
	"github.com/favbox/gust/protocol/consts"
)

// ClientOption 是配置客户端选项的唯一结构体。
type ClientOption struct {
	F func(o *ClientOptions)
}

// ClientOptions 客户端连接选项结构体。
type ClientOptions struct {
	// 连接到服务器的超时时间，默认值 consts.DefaultDialTimeout
	DialTimeout time.Duration

	// 拨号器，若未设置，则使用全局默认拨号器。
	Dialer network.Dialer

	// 未解析响应首部的缓冲上限。
	MaxHeaderBufferSize int

	// 单个响应允许的最大标头行数。
	MaxHeaderCount int

	// 响应正文被认领前允许暂存的最大字节数。
	MaxPendingBodySize int

	// 客户端名称。用于 User-Agent 请求标头，为空则不添加。
	Name string
}

// Apply 将指定的一组配置方法 opts 应用到客户端选项上。
func (o *ClientOptions) Apply(opts []ClientOption) {
	for _, op := range opts {
		op.F(o)
	}
}

// NewClientOptions 创建基于给定配置函数的客户端选项。
func NewClientOptions(opts []ClientOption) *ClientOptions {
	options := &ClientOptions{
		DialTimeout:         consts.DefaultDialTimeout,
		MaxHeaderBufferSize: consts.DefaultMaxHeaderBufferSize,
		MaxHeaderCount:      consts.DefaultMaxHeaderCount,
		MaxPendingBodySize:  consts.DefaultMaxPendingBodySize,
	}
	options.Apply(opts)
	return options
}
