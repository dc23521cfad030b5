package dialer

import (
	"time"

	"github.com/favbox/gust/network"
)

// 全局拨号器。
var defaultDialer network.Dialer

// SetDialer 设置全局默认拨号器。
func SetDialer(dialer network.Dialer) {
	defaultDialer = dialer
}

// DefaultDialer 返回全局拨号器。
func DefaultDialer() network.Dialer {
	return defaultDialer
}

// DialConnection 用全局拨号器拨打对端。
func DialConnection(nw, address string, timeout time.Duration, newProtocol network.NewProtocol) (network.Conn, error) {
	return defaultDialer.DialConnection(nw, address, timeout, newProtocol)
}
