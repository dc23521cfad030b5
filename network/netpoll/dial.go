package netpoll

import (
	"context"
	"time"

	"github.com/cloudwego/netpoll"
	"github.com/favbox/gust/network"
)

type dialer struct {
	netpoll.Dialer
}

// DialConnection 拨打对端，并把之后读到的数据推送给 newProtocol 创建的引擎。
func (d dialer) DialConnection(nw, address string, timeout time.Duration, newProtocol network.NewProtocol) (network.Conn, error) {
	connection, err := d.Dialer.DialConnection(nw, address, timeout)
	if err != nil {
		return nil, err
	}

	c := newConn(connection)
	proto := newProtocol(c)
	c.watchClose(proto)
	err = connection.SetOnRequest(func(ctx context.Context, conn netpoll.Connection) error {
		return c.feed(proto)
	})
	if err != nil {
		_ = connection.Close()
		return nil, err
	}
	return c, nil
}

// NewDialer 创建 netpoll 拨号器。
func NewDialer() network.Dialer {
	return dialer{Dialer: netpoll.NewDialer()}
}
