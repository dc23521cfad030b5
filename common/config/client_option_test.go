package config

import (
	"testing"
	"time"

	"github.com/favbox/gust/protocol/consts"
	"github.com/stretchr/testify/assert"
)

func TestClientOptions(t *testing.T) {
	options := NewClientOptions([]ClientOption{})
	assert.Equal(t, consts.DefaultDialTimeout, options.DialTimeout)
	assert.Equal(t, consts.DefaultMaxHeaderBufferSize, options.MaxHeaderBufferSize)
	assert.Equal(t, consts.DefaultMaxHeaderCount, options.MaxHeaderCount)
	assert.Equal(t, consts.DefaultMaxPendingBodySize, options.MaxPendingBodySize)
	assert.Nil(t, options.Dialer)
	assert.Equal(t, "", options.Name)

	options.Apply([]ClientOption{
		{F: func(o *ClientOptions) { o.DialTimeout = 2 * time.Second }},
		{F: func(o *ClientOptions) { o.Name = "gust-client" }},
	})
	assert.Equal(t, 2*time.Second, options.DialTimeout)
	assert.Equal(t, "gust-client", options.Name)
}
