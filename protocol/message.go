package protocol

import (
	"strconv"

	"github.com/favbox/gust/protocol/consts"
)

// Message 是解析完成的报文首部：起始行与标头集合。
//
// 请求报文填充 Method 和 Target，响应报文填充 StatusCode 和 Reason。
type Message struct {
	Method string
	Target string

	StatusCode int
	Reason     string

	ProtoMajor int
	ProtoMinor int

	Header Header

	// HeaderSize 是起始行与标头块（含结束空行）占用的字节数。
	HeaderSize int
}

// IsRequest 判断是否为请求报文。
func (m *Message) IsRequest() bool {
	return m.Method != ""
}

// Proto 返回协议版本，如 "HTTP/1.1"。
func (m *Message) Proto() string {
	switch {
	case m.ProtoMajor == 1 && m.ProtoMinor == 1:
		return consts.HTTP11
	case m.ProtoMajor == 1 && m.ProtoMinor == 0:
		return consts.HTTP10
	}
	return "HTTP/" + strconv.Itoa(m.ProtoMajor) + "." + strconv.Itoa(m.ProtoMinor)
}

// ProtoAtLeast 判断协议版本是否不低于 major.minor。
func (m *Message) ProtoAtLeast(major, minor int) bool {
	return m.ProtoMajor > major || m.ProtoMajor == major && m.ProtoMinor >= minor
}

// ConnectionClose 判断发送方是否要求在本报文后关闭连接。
//
// HTTP/1.1 默认长连接，除非声明 Connection: close；HTTP/1.0 默认短连接，除非声明 Connection: keep-alive。
func (m *Message) ConnectionClose() bool {
	if m.Header.HasToken(consts.HeaderConnection, consts.ValueClose) {
		return true
	}
	if !m.ProtoAtLeast(1, 1) {
		return !m.Header.HasToken(consts.HeaderConnection, consts.ValueKeepAlive)
	}
	return false
}

// MayContinue 判断请求是否带有 Expect: 100-continue，发送方在等待临时响应后才会发送正文。
func (m *Message) MayContinue() bool {
	return m.IsRequest() && m.ProtoAtLeast(1, 1) && m.Header.HasToken(consts.HeaderExpect, consts.Value100Continue)
}
