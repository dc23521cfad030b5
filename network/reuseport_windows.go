//go:build windows

package network

import "net"

// ReusePortListenConfig 在 windows 上不设置套接字选项。
func ReusePortListenConfig() *net.ListenConfig {
	return &net.ListenConfig{}
}
