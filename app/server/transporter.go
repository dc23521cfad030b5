//go:build !windows

package server

import "github.com/favbox/gust/network/netpoll"

// 默认网络传输器，可经 WithTransport 替换为 standard.NewTransporter。
var defaultTransporter = netpoll.NewTransporter
