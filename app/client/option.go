package client

import (
	"time"

	"github.com/favbox/gust/common/config"
	"github.com/favbox/gust/network"
)

// WithDialTimeout 设置连接到服务器的超时时间。默认值：1 秒。
func WithDialTimeout(dialTimeout time.Duration) config.ClientOption {
	return config.ClientOption{F: func(o *config.ClientOptions) {
		o.DialTimeout = dialTimeout
	}}
}

// WithDialer 指定自定义拨号器。默认使用全局拨号器。
func WithDialer(d network.Dialer) config.ClientOption {
	return config.ClientOption{F: func(o *config.ClientOptions) {
		o.Dialer = d
	}}
}

// WithMaxHeaderBufferSize 设置未解析响应首部的缓冲上限。
func WithMaxHeaderBufferSize(size int) config.ClientOption {
	return config.ClientOption{F: func(o *config.ClientOptions) {
		o.MaxHeaderBufferSize = size
	}}
}

// WithMaxHeaderCount 设置单个响应允许的最大标头行数。
func WithMaxHeaderCount(count int) config.ClientOption {
	return config.ClientOption{F: func(o *config.ClientOptions) {
		o.MaxHeaderCount = count
	}}
}

// WithMaxPendingBodySize 设置响应正文被认领前允许暂存的最大字节数。
func WithMaxPendingBodySize(size int) config.ClientOption {
	return config.ClientOption{F: func(o *config.ClientOptions) {
		o.MaxPendingBodySize = size
	}}
}

// WithName 设置 User-Agent 请求标头的值。
func WithName(name string) config.ClientOption {
	return config.ClientOption{F: func(o *config.ClientOptions) {
		o.Name = name
	}}
}
