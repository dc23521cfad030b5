// Package bytestr 定义编解码报文时常用的字节切片常量。
package bytestr

var (
	StrCRLF        = []byte("\r\n")
	StrCRLFCRLF    = []byte("\r\n\r\n")
	StrColonSpace  = []byte(": ")
	StrLastChunk   = []byte("0\r\n\r\n")
	StrHTTP10      = []byte("HTTP/1.0")
	StrHTTP11      = []byte("HTTP/1.1")
	StrChunked     = []byte("chunked")
	StrContinue100 = []byte("HTTP/1.1 100 Continue\r\n\r\n")
)
