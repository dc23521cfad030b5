package consts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "OK", StatusMessage(StatusOK))
	assert.Equal(t, "Not Found", StatusMessage(StatusNotFound))
	assert.Equal(t, unknownStatus, StatusMessage(99))
	assert.Equal(t, unknownStatus, StatusMessage(599))
	assert.Equal(t, unknownStatus, StatusMessage(299))
}

func TestStatusLine(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "HTTP/1.1 200 OK\r\n", string(StatusLine(StatusOK)))
	assert.Equal(t, "HTTP/1.1 431 Request Header Fields Too Large\r\n", string(StatusLine(StatusRequestHeaderFieldsTooLarge)))
	// 第二次命中缓存
	assert.Equal(t, "HTTP/1.1 200 OK\r\n", string(StatusLine(StatusOK)))
}

func TestIsInformational(t *testing.T) {
	t.Parallel()

	assert.True(t, IsInformational(StatusContinue))
	assert.True(t, IsInformational(199))
	assert.False(t, IsInformational(StatusOK))
	assert.False(t, IsInformational(99))
}
