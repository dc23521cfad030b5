package http1

import (
	"bytes"
	"errors"

	errs "github.com/favbox/gust/common/errors"
	"github.com/favbox/gust/internal/bytesconv"
	"github.com/favbox/gust/protocol"
	"github.com/favbox/gust/protocol/http1/ext"
	"golang.org/x/net/http/httpguts"
	"golang.org/x/net/http2"
)

// HTTP/2 明文连接前言的起始部分，足以与任何 HTTP/1.x 请求行区分。
var prefacePrefix = []byte(http2.ClientPreface[:len("PRI * HTTP/2")])

var errPreface = errs.New(errs.ErrHTTP2Preface, errs.ErrorTypePrivate, nil)

// ParseRequest 从 buf 解析请求首部，返回报文和首部占用的字节数。
//
// 首部结束的空行未出现前返回 ErrNeedMore，调用方应保留 buf 并在追加数据后重试。
// buf 不会被修改，报文不引用 buf 的内存。
func ParseRequest(buf []byte) (*protocol.Message, int, error) {
	if len(buf) >= len(prefacePrefix) && bytes.HasPrefix(buf, prefacePrefix) {
		return nil, 0, errPreface
	}
	return parseMessage(buf, "请求行", parseRequestLine)
}

// ParseResponse 从 buf 解析响应首部，语义同 ParseRequest。
func ParseResponse(buf []byte) (*protocol.Message, int, error) {
	return parseMessage(buf, "状态行", parseStatusLine)
}

func parseMessage(buf []byte, firstLine string, parseFirst func(m *protocol.Message, line []byte) error) (*protocol.Message, int, error) {
	// 起始行之前的空行应被忽略，见 RFC 7230 3.5
	skip := ext.SkipEmptyLines(buf)
	n, err := ext.FindHeaderEnd(buf[skip:])
	if err != nil {
		return nil, 0, err
	}

	m := &protocol.Message{HeaderSize: skip + n}
	first := true
	err = ext.SplitLines(buf[skip:skip+n], func(line []byte) error {
		if first {
			first = false
			if err := parseFirst(m, line); err != nil {
				return ext.HeaderError(firstLine, err, line)
			}
			return nil
		}
		if err := parseHeaderLine(&m.Header, line); err != nil {
			return ext.HeaderError("标头", err, line)
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return m, m.HeaderSize, nil
}

// METHOD SP TARGET SP HTTP/x.y
func parseRequestLine(m *protocol.Message, line []byte) error {
	i := bytes.IndexByte(line, ' ')
	j := bytes.LastIndexByte(line, ' ')
	if i <= 0 || j == i {
		return errors.New("请求行应由方法、目标和协议版本组成")
	}
	method, target, version := line[:i], line[i+1:j], line[j+1:]
	if !httpguts.ValidHeaderFieldName(bytesconv.B2s(method)) {
		return errors.New("无效的请求方法")
	}
	if len(target) == 0 || !validTarget(target) {
		return errors.New("无效的请求目标")
	}
	major, minor, ok := parseVersion(version)
	if !ok {
		return errors.New("不支持的协议版本")
	}
	m.Method = string(method)
	m.Target = string(target)
	m.ProtoMajor, m.ProtoMinor = major, minor
	return nil
}

// HTTP/x.y SP 3DIGIT [SP reason]
func parseStatusLine(m *protocol.Message, line []byte) error {
	i := bytes.IndexByte(line, ' ')
	if i < 0 {
		return errors.New("状态行缺少状态码")
	}
	major, minor, ok := parseVersion(line[:i])
	if !ok {
		return errors.New("不支持的协议版本")
	}
	rest := line[i+1:]
	if len(rest) < 3 || len(rest) > 3 && rest[3] != ' ' {
		return errors.New("状态码应为三位数字")
	}
	status, err := bytesconv.ParseUint(rest[:3])
	if err != nil || status < 100 {
		return errors.New("状态码应为三位数字")
	}
	var reason []byte
	if len(rest) > 3 {
		reason = rest[4:]
	}
	if !httpguts.ValidHeaderFieldValue(bytesconv.B2s(reason)) {
		return errors.New("无效的原因短语")
	}
	m.StatusCode = status
	m.Reason = string(reason)
	m.ProtoMajor, m.ProtoMinor = major, minor
	return nil
}

// name ":" OWS value OWS
func parseHeaderLine(h *protocol.Header, line []byte) error {
	if line[0] == ' ' || line[0] == '\t' {
		return errors.New("不支持折叠的标头行")
	}
	i := bytes.IndexByte(line, ':')
	if i < 0 {
		return errors.New("标头缺少冒号")
	}
	// 名称与冒号之间的空白会被 ValidHeaderFieldName 拒绝，见 RFC 7230 3.2.4
	name := line[:i]
	if !httpguts.ValidHeaderFieldName(bytesconv.B2s(name)) {
		return errors.New("无效的标头名称")
	}
	value := bytes.Trim(line[i+1:], " \t")
	if !httpguts.ValidHeaderFieldValue(bytesconv.B2s(value)) {
		return errors.New("无效的标头值")
	}
	h.Add(string(name), string(value))
	return nil
}

// 仅接受 HTTP/1.x。
func parseVersion(b []byte) (major, minor int, ok bool) {
	if len(b) != len("HTTP/1.1") || !bytes.HasPrefix(b, []byte("HTTP/")) || b[6] != '.' {
		return 0, 0, false
	}
	if b[5] != '1' || b[7] < '0' || b[7] > '9' {
		return 0, 0, false
	}
	return 1, int(b[7] - '0'), true
}

func validTarget(b []byte) bool {
	for _, c := range b {
		if c <= ' ' || c == 0x7f {
			return false
		}
	}
	return true
}
