package network

import (
	"net"
)

// Writer 用于缓冲写入。
type Writer interface {
	// Malloc 分配一块 n 字节的内存缓冲区来暂存数据。
	Malloc(n int) (buf []byte, err error)

	// WriteBinary 向用户缓冲区写入字节切片。注意：在成功刷新之前，b 应有效。
	WriteBinary(b []byte) (n int, err error)

	// Flush 向对端发送数据。
	Flush() error
}

// Conn 是协议引擎看到的连接：只写，可关闭。读取由传输器驱动，通过 Protocol 回调送达。
type Conn interface {
	Writer

	// Close 关闭连接。多次调用是安全的。
	Close() error

	// RemoteAddr 返回对端地址。
	RemoteAddr() net.Addr
}

// Protocol 是传输器向协议引擎推送事件的接口。
//
// 同一连接上的回调由传输器串行调用，且都不得阻塞。
type Protocol interface {
	// OnData 送达新读到的字节。b 只在本次调用期间有效，需保留的数据必须拷贝。
	OnData(b []byte)

	// OnEndOfStream 表示对端已关闭，之后不会再有数据。
	OnEndOfStream()

	// OnError 报告传输层错误，之后连接即被视为关闭。
	OnError(err error)
}

// ErrorNormalization 表示错误的规范化程序。
type ErrorNormalization interface {
	// ToGustError 将传输库的错误转为 gust 的错误。
	ToGustError(err error) error
}
