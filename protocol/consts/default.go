package consts

import "time"

const (
	// DefaultMaxHeaderBufferSize 是首部缓冲区的上限，在找到首部结束符之前达到该值即视为致命错误。
	DefaultMaxHeaderBufferSize = 8192 + 4096*100

	// DefaultMaxHeaderCount 是单个报文允许的最大标头行数。
	DefaultMaxHeaderCount = 100

	// DefaultMaxPendingBodySize 是正文被认领前允许暂存的最大字节数。
	DefaultMaxPendingBodySize = 4 * 1024 * 1024

	// DefaultReadBufferSize 是标准库传输器每次读取的缓冲大小。
	DefaultReadBufferSize = 8 * 1024

	// DefaultDialTimeout 用于拨号器建立 TCP 连接的超时时间。
	DefaultDialTimeout = 1 * time.Second

	// DefaultServerName 是响应中 Server 标头的默认值。
	DefaultServerName = "gust"
)
