package network

import "context"

// Transporter 表示网络传输层接口。
type Transporter interface {
	// ListenAndServe 监听并为每个新连接调用 onConnect 获取其协议引擎。
	ListenAndServe(onConnect OnConnect) error

	// Close 立即关闭传输器。
	Close() error

	// Shutdown 平滑关闭传输器。
	Shutdown(ctx context.Context) error
}

// OnConnect 在连接建立后调用，返回驱动该连接的协议引擎。
type OnConnect func(ctx context.Context, conn Conn) Protocol
