package dialer

import (
	"errors"
	"testing"
	"time"

	"github.com/favbox/gust/network"
	"github.com/stretchr/testify/assert"
)

func TestDialer(t *testing.T) {
	old := DefaultDialer()
	defer SetDialer(old)
	assert.NotNil(t, old)

	SetDialer(&mockDialer{})
	assert.Equal(t, &mockDialer{}, DefaultDialer())

	_, err := DialConnection("tcp", "127.0.0.1:0", time.Second, nil)
	assert.NotNil(t, err)
}

type mockDialer struct{}

func (m *mockDialer) DialConnection(nw, address string, timeout time.Duration, newProtocol network.NewProtocol) (network.Conn, error) {
	return nil, errors.New("方法尚未实现")
}
