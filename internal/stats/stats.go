// Package stats 记录连接与报文解析的计数指标。
//
// 指标经 go-metrics 的全局实例上报，未调用 Setup 时全局实例使用空实现，记录开销可忽略。
package stats

import (
	"github.com/armon/go-metrics"
)

var (
	keyConnOpened      = []string{"gust", "conn", "opened"}
	keyConnClosed      = []string{"gust", "conn", "closed"}
	keyMessageParsed   = []string{"gust", "message", "parsed"}
	keyParseError      = []string{"gust", "parse", "error"}
	keyPrefaceRejected = []string{"gust", "parse", "preface_rejected"}
	keyHeaderTooLarge  = []string{"gust", "parse", "header_too_large"}
	keyTransportError  = []string{"gust", "transport", "error"}
)

// Setup 以 sink 替换全局指标实例。
func Setup(sink metrics.MetricSink) (*metrics.Metrics, error) {
	conf := metrics.DefaultConfig("")
	conf.EnableHostname = false
	conf.EnableRuntimeMetrics = false
	return metrics.NewGlobal(conf, sink)
}

// ConnOpened 记录一个新连接。
func ConnOpened() {
	metrics.IncrCounter(keyConnOpened, 1)
}

// ConnClosed 记录一个连接关闭。
func ConnClosed() {
	metrics.IncrCounter(keyConnClosed, 1)
}

// MessageParsed 记录一个完整解析的报文首部，role 为 "request" 或 "response"。
func MessageParsed(role string) {
	metrics.IncrCounterWithLabels(keyMessageParsed, 1, []metrics.Label{{Name: "role", Value: role}})
}

// ParseError 记录一次致命的解析或分帧错误。
func ParseError(kind string) {
	metrics.IncrCounterWithLabels(keyParseError, 1, []metrics.Label{{Name: "kind", Value: kind}})
}

// PrefaceRejected 记录一次被拒绝的 HTTP/2 连接前言。
func PrefaceRejected() {
	metrics.IncrCounter(keyPrefaceRejected, 1)
}

// HeaderTooLarge 记录一次首部超过缓冲上限。
func HeaderTooLarge() {
	metrics.IncrCounter(keyHeaderTooLarge, 1)
}

// TransportError 记录一次传输层错误。
func TransportError() {
	metrics.IncrCounter(keyTransportError, 1)
}
