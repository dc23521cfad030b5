package mock

import (
	"testing"

	errs "github.com/favbox/gust/common/errors"
	"github.com/stretchr/testify/assert"
)

func TestConn(t *testing.T) {
	t.Parallel()

	conn := NewConn()
	n, err := conn.WriteBinary([]byte("abc"))
	assert.Nil(t, err)
	assert.Equal(t, 3, n)

	buf, err := conn.Malloc(2)
	assert.Nil(t, err)
	copy(buf, "de")
	assert.Equal(t, 5, conn.WroteLen())
	assert.Equal(t, "", conn.Written())

	assert.Nil(t, conn.Flush())
	assert.Equal(t, "abcde", conn.Written())
	assert.Equal(t, 1, conn.Flushes())

	assert.False(t, conn.Closed())
	assert.Nil(t, conn.Close())
	assert.Nil(t, conn.Close())
	assert.True(t, conn.Closed())
	assert.Equal(t, 2, conn.CloseCount())
	assert.Equal(t, "127.0.0.1:40000", conn.RemoteAddr().String())
}

func TestBrokenConn(t *testing.T) {
	t.Parallel()

	conn := NewBrokenConn()
	_, err := conn.WriteBinary([]byte("abc"))
	assert.Nil(t, err)
	assert.Equal(t, errs.ErrConnectionClosed, conn.Flush())
	assert.Equal(t, "", conn.Written())
}
