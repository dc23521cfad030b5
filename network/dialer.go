package network

import (
	"time"
)

// NewProtocol 为拨号得到的连接创建协议引擎。
type NewProtocol func(conn Conn) Protocol

// Dialer 定义连接拨号器接口。
type Dialer interface {
	// DialConnection 拨打对端并开始把读到的数据推送给 newProtocol 创建的引擎。
	DialConnection(network, address string, timeout time.Duration, newProtocol NewProtocol) (Conn, error)
}
