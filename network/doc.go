// Package network 定义协议引擎与传输层之间的接口。
//
// 传输层负责套接字的读写，并以回调方式把字节推送给 Protocol，包括两种实现：
//  1. 高性能非阻塞库 netpoll 实现。
//  2. 标准库 standard 实现。
package network
