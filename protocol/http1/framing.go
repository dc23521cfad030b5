package http1

import (
	"strconv"
	"strings"

	errs "github.com/favbox/gust/common/errors"
	"github.com/favbox/gust/protocol"
	"github.com/favbox/gust/protocol/consts"
)

// FramingKind 是正文长度的界定方式。
type FramingKind uint8

const (
	// FramingEmpty 表示报文没有正文。
	FramingEmpty FramingKind = iota
	// FramingSized 表示正文恰好 Length 字节。
	FramingSized
	// FramingChunked 表示正文采用分块传输编码。
	FramingChunked
	// FramingReadUntilClose 表示正文持续到连接关闭。
	FramingReadUntilClose
)

func (k FramingKind) String() string {
	switch k {
	case FramingEmpty:
		return "Empty"
	case FramingSized:
		return "Sized"
	case FramingChunked:
		return "Chunked"
	case FramingReadUntilClose:
		return "ReadUntilClose"
	}
	return "Unknown(" + strconv.Itoa(int(k)) + ")"
}

// BodyFraming 描述一个报文的正文分帧。
type BodyFraming struct {
	Kind FramingKind
	// Length 仅在 Kind 为 FramingSized 时有效。
	Length uint64
}

var (
	framingEmpty          = BodyFraming{Kind: FramingEmpty}
	framingChunked        = BodyFraming{Kind: FramingChunked}
	framingReadUntilClose = BodyFraming{Kind: FramingReadUntilClose}
)

func sized(n uint64) BodyFraming {
	return BodyFraming{Kind: FramingSized, Length: n}
}

func (f BodyFraming) String() string {
	if f.Kind == FramingSized {
		return "Sized(" + strconv.FormatUint(f.Length, 10) + ")"
	}
	return f.Kind.String()
}

// ResolveRequest 确定收到的请求的正文分帧。
func ResolveRequest(h *protocol.Header) (BodyFraming, error) {
	return resolve(h, true)
}

// ResolveResponse 确定收到的响应的正文分帧，requestMethod 为该响应所对应请求的方法。
func ResolveResponse(requestMethod string, status int, h *protocol.Header) (BodyFraming, error) {
	if !responseHasBody(requestMethod, status) {
		return framingEmpty, nil
	}
	return resolve(h, false)
}

// 见 RFC 7230 3.3.3 第 1、2 条。
func responseHasBody(requestMethod string, status int) bool {
	switch {
	case requestMethod == consts.MethodHead:
		return false
	case consts.IsInformational(status):
		return false
	case status == consts.StatusNoContent, status == consts.StatusNotModified:
		return false
	case requestMethod == consts.MethodConnect && status >= 200 && status < 300:
		return false
	}
	return true
}

func resolve(h *protocol.Header, isRequest bool) (BodyFraming, error) {
	if te := h.Tokens(consts.HeaderTransferEncoding); len(te) > 0 {
		if strings.EqualFold(te[len(te)-1], consts.ValueChunked) {
			return framingChunked, nil
		}
		if isRequest {
			return BodyFraming{}, errs.Wrapf(errs.ErrMalformed, "请求的 Transfer-Encoding 未以 chunked 结尾: %q", h.Get(consts.HeaderTransferEncoding))
		}
		return framingReadUntilClose, nil
	}

	n, ok, err := contentLength(h)
	if err != nil {
		return BodyFraming{}, err
	}
	if ok {
		return sized(n), nil
	}
	if isRequest {
		return framingEmpty, nil
	}
	return framingReadUntilClose, nil
}

// contentLength 返回 Content-Length 的值，多个取值（含逗号分隔）必须完全一致。
func contentLength(h *protocol.Header) (n uint64, ok bool, err error) {
	for _, v := range h.Values(consts.HeaderContentLength) {
		for _, s := range strings.Split(v, ",") {
			s = strings.TrimSpace(s)
			m, perr := parseDecimal(s)
			if perr != nil {
				return 0, false, errs.Wrapf(errs.ErrInvalidContentLength, "%q", v)
			}
			if ok && m != n {
				return 0, false, errs.Wrapf(errs.ErrInvalidContentLength, "取值不一致 %d 与 %d", n, m)
			}
			n, ok = m, true
		}
	}
	return n, ok, nil
}

// 只接受十进制数字，不接受符号与空白。
func parseDecimal(s string) (uint64, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, strconv.ErrSyntax
		}
	}
	return strconv.ParseUint(s, 10, 64)
}

// ResolveOutgoingResponse 确定待发送响应的正文分帧。
//
// 未声明长度时，向 HTTP/1.1 对端使用分块编码，向 HTTP/1.0 对端则以关闭连接结束正文。
// 返回的分帧为 FramingChunked 而标头尚未以 chunked 结尾时，调用方需补充 Transfer-Encoding。
func ResolveOutgoingResponse(requestMethod string, status int, peerHTTP10 bool, h *protocol.Header) (BodyFraming, error) {
	if !responseHasBody(requestMethod, status) {
		return framingEmpty, nil
	}
	if te := h.Tokens(consts.HeaderTransferEncoding); len(te) > 0 {
		if strings.EqualFold(te[len(te)-1], consts.ValueChunked) {
			return framingChunked, nil
		}
		return framingReadUntilClose, nil
	}
	n, ok, err := contentLength(h)
	if err != nil {
		return BodyFraming{}, err
	}
	if ok {
		return sized(n), nil
	}
	if peerHTTP10 {
		return framingReadUntilClose, nil
	}
	return framingChunked, nil
}

// ResolveOutgoingRequest 确定待发送请求的正文分帧。
//
// GET 与 HEAD 请求不携带正文；其余方法未声明长度时使用分块编码。
func ResolveOutgoingRequest(method string, h *protocol.Header) (BodyFraming, error) {
	if te := h.Tokens(consts.HeaderTransferEncoding); len(te) > 0 {
		if strings.EqualFold(te[len(te)-1], consts.ValueChunked) {
			return framingChunked, nil
		}
		return BodyFraming{}, errs.Wrapf(errs.ErrMalformed, "请求的 Transfer-Encoding 未以 chunked 结尾: %q", h.Get(consts.HeaderTransferEncoding))
	}
	n, ok, err := contentLength(h)
	if err != nil {
		return BodyFraming{}, err
	}
	if ok {
		return sized(n), nil
	}
	if method == consts.MethodGet || method == consts.MethodHead {
		return framingEmpty, nil
	}
	return framingChunked, nil
}

// endsWithChunked 判断 Transfer-Encoding 是否已以 chunked 结尾。
func endsWithChunked(h *protocol.Header) bool {
	te := h.Tokens(consts.HeaderTransferEncoding)
	return len(te) > 0 && strings.EqualFold(te[len(te)-1], consts.ValueChunked)
}

// appendChunked 将 chunked 追加到 Transfer-Encoding 末尾，不覆盖已有编码。
func appendChunked(h *protocol.Header) {
	if endsWithChunked(h) {
		return
	}
	te := h.Tokens(consts.HeaderTransferEncoding)
	if len(te) == 0 {
		h.Set(consts.HeaderTransferEncoding, consts.ValueChunked)
		return
	}
	h.Set(consts.HeaderTransferEncoding, strings.Join(append(te, consts.ValueChunked), ", "))
}
