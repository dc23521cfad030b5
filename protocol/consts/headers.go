package consts

// 常用的标头名称。
const (
	HeaderContentLength    = "Content-Length"
	HeaderTransferEncoding = "Transfer-Encoding"
	HeaderConnection       = "Connection"
	HeaderDate             = "Date"
	HeaderServer           = "Server"
	HeaderHost             = "Host"
	HeaderExpect           = "Expect"
	HeaderContentType      = "Content-Type"
	HeaderUserAgent        = "User-Agent"
)

// 常用的标头取值。
const (
	ValueChunked      = "chunked"
	ValueClose        = "close"
	ValueKeepAlive    = "keep-alive"
	Value100Continue  = "100-continue"
	ValueJSONUTF8     = "application/json; charset=utf-8"
	ValuePlainTextUTF = "text/plain; charset=utf-8"
)

// HTTP 方法。
const (
	MethodGet     = "GET"
	MethodHead    = "HEAD"
	MethodPost    = "POST"
	MethodPut     = "PUT"
	MethodPatch   = "PATCH"
	MethodDelete  = "DELETE"
	MethodConnect = "CONNECT"
	MethodOptions = "OPTIONS"
	MethodTrace   = "TRACE"
)

// 协议版本。
const (
	HTTP10 = "HTTP/1.0"
	HTTP11 = "HTTP/1.1"
)
