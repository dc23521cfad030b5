//go:build windows

package dialer

import "github.com/favbox/gust/network/standard"

func init() {
	// netpoll 不支持 windows，使用标准库拨号器
	defaultDialer = standard.NewDialer()
}
