package standard

import (
	"net"
	"time"

	"github.com/favbox/gust/network"
)

type dialer struct {
	readBufferSize int
}

// DialConnection 拨打对端，并在独立的协程中把读到的数据推送给 newProtocol 创建的引擎。
func (d *dialer) DialConnection(nw, address string, timeout time.Duration, newProtocol network.NewProtocol) (network.Conn, error) {
	conn, err := net.DialTimeout(nw, address, timeout)
	if err != nil {
		return nil, err
	}
	c := newConn(conn, d.readBufferSize, 0)
	go c.serve(newProtocol(c))
	return c, nil
}

// NewDialer 创建标准库拨号器。
func NewDialer() network.Dialer {
	return &dialer{readBufferSize: defaultReadBufferSize}
}
