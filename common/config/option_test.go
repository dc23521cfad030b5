package config

import (
	"testing"
	"time"

	"github.com/favbox/gust/common/wlog"
	"github.com/favbox/gust/protocol/consts"
	"github.com/stretchr/testify/assert"
)

// TestDefaultOptions 使用默认值测试配置项
func TestDefaultOptions(t *testing.T) {
	options := NewOptions([]Option{})

	assert.Equal(t, defaultKeepAliveTimeout, options.KeepAliveTimeout)
	assert.Equal(t, defaultReadTimeout, options.ReadTimeout)
	assert.Equal(t, time.Duration(0), options.WriteTimeout)
	assert.Equal(t, defaultWaitExitTimeout, options.ExitWaitTimeout)
	assert.Equal(t, defaultNetwork, options.Network)
	assert.Equal(t, defaultAddr, options.Addr)
	assert.Equal(t, consts.DefaultReadBufferSize, options.ReadBufferSize)
	assert.Equal(t, 8192+4096*100, options.MaxHeaderBufferSize)
	assert.Equal(t, consts.DefaultMaxHeaderCount, options.MaxHeaderCount)
	assert.Equal(t, consts.DefaultMaxPendingBodySize, options.MaxPendingBodySize)
	assert.Equal(t, "gust", options.ServerName)
	assert.Equal(t, wlog.LevelInfo, options.LogLevel)
	assert.False(t, options.NoDefaultDate)
	assert.False(t, options.NoDefaultServerHeader)
	assert.False(t, options.ReusePort)
	assert.Nil(t, options.ListenConfig)
	assert.Nil(t, options.OnAccept)
	assert.Nil(t, options.TransporterNewer)
	assert.Nil(t, options.Validate())
}

// TestApplyCustomOptions 初始化后使用自定义值测试配置项应用函数
func TestApplyCustomOptions(t *testing.T) {
	options := NewOptions([]Option{})
	options.Apply([]Option{
		{F: func(o *Options) {
			o.Network = "unix"
		}},
	})
	assert.Equal(t, "unix", options.Network)
	assert.Nil(t, options.Validate())
}

func TestValidate(t *testing.T) {
	for name, f := range map[string]func(o *Options){
		"network":       func(o *Options) { o.Network = "udp" },
		"addr":          func(o *Options) { o.Addr = "" },
		"readBuffer":    func(o *Options) { o.ReadBufferSize = 0 },
		"headerBuffer":  func(o *Options) { o.MaxHeaderBufferSize = 100 },
		"pendingBuffer": func(o *Options) { o.MaxPendingBodySize = -1 },
		"headerCount":   func(o *Options) { o.MaxHeaderCount = 0 },
	} {
		options := NewOptions([]Option{{F: f}})
		assert.NotNil(t, options.Validate(), name)
	}
}
