package bytesconv

import (
	"net/http"
	"time"
	"unsafe"

	"github.com/favbox/gust/network"
)

const (
	lowerHex = "0123456789abcdef" // 小写的十六进制字符

	// 十六进制表示的 int64 最多 16 位，再多一位就会溢出为负数。
	maxHexIntChars = 15
)

// Hex2intTable 将十六进制字符映射为数值，非十六进制字符映射为 16。
var Hex2intTable [256]byte

// ToLowerTable 将 ASCII 大写字母映射为小写，其余字节保持不变。
var ToLowerTable [256]byte

func init() {
	for i := range Hex2intTable {
		c := byte(i)
		switch {
		case c >= '0' && c <= '9':
			Hex2intTable[i] = c - '0'
		case c >= 'a' && c <= 'f':
			Hex2intTable[i] = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			Hex2intTable[i] = c - 'A' + 10
		default:
			Hex2intTable[i] = 16
		}

		ToLowerTable[i] = c
		if c >= 'A' && c <= 'Z' {
			ToLowerTable[i] = c + 'a' - 'A'
		}
	}
}

// B2s 将字节切片转为字符串，且不分配内存。
//
// 注意：返回的字符串与 b 共享内存，b 之后不得再被修改。
func B2s(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(&b[0], len(b))
}

// S2b 将字符串转为字节切片，且不分配内存。返回的切片不可写。
func S2b(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

// EqualFold 判断 ASCII 字节切片 b 和字符串 s 在忽略大小写时是否相等。
func EqualFold(b []byte, s string) bool {
	if len(b) != len(s) {
		return false
	}
	for i := 0; i < len(b); i++ {
		if ToLowerTable[b[i]] != ToLowerTable[s[i]] {
			return false
		}
	}
	return true
}

// AppendUint 向 dst 追加正整数 n 并返回。
func AppendUint(dst []byte, n int) []byte {
	if n < 0 {
		panic("BUG：int 必须为正整数")
	}

	var b [20]byte
	buf := b[:]
	i := len(buf)
	var q int
	for n >= 10 {
		i--
		q = n / 10
		buf[i] = '0' + byte(n-q*10)
		n = q
	}
	i--
	buf[i] = '0' + byte(n)

	return append(dst, buf[i:]...)
}

// AppendHTTPDate 向 dst 追加 HTTP 兼容时间并返回。
func AppendHTTPDate(dst []byte, date time.Time) []byte {
	return date.UTC().AppendFormat(dst, http.TimeFormat)
}

// ParseUintBuf 解析 b 开头的十进制整数，n 为已解析的字节数。
func ParseUintBuf(b []byte) (v, n int, err error) {
	n = len(b)
	if n == 0 {
		return -1, 0, errEmptyInt
	}
	for i := 0; i < n; i++ {
		c := b[i]
		k := c - '0'
		if k > 9 {
			if i == 0 {
				return -1, i, errUnexpectedFirstChar
			}
			return v, i, nil
		}
		vNew := 10*v + int(k)
		// 测试溢出
		if vNew < v {
			return -1, i, errTooLongInt
		}
		v = vNew
	}
	return
}

// ParseUint 解析 b 中的十进制整数，b 必须全部由数字组成。
func ParseUint(b []byte) (int, error) {
	v, n, err := ParseUintBuf(b)
	if err != nil {
		return -1, err
	}
	if n != len(b) {
		return -1, errUnexpectedTrailingChar
	}
	return v, nil
}

// ParseHexUint 解析 b 中的十六进制整数，b 必须全部由十六进制字符组成。
func ParseHexUint(b []byte) (uint64, error) {
	if len(b) == 0 {
		return 0, errEmptyHexNum
	}
	if len(b) > maxHexIntChars {
		return 0, errTooLargeHexNum
	}
	var n uint64
	for _, c := range b {
		k := Hex2intTable[c]
		if k == 16 {
			return 0, errInvalidHexChar
		}
		n = n<<4 | uint64(k)
	}
	return n, nil
}

// AppendHexUint 向 dst 追加小写十六进制表示的 n。
func AppendHexUint(dst []byte, n uint64) []byte {
	var b [16]byte
	i := len(b)
	for {
		i--
		b[i] = lowerHex[n&0xf]
		n >>= 4
		if n == 0 {
			break
		}
	}
	return append(dst, b[i:]...)
}

// WriteHexInt 向 w 写入十六进制整数值 n。
func WriteHexInt(w network.Writer, n int) error {
	if n < 0 {
		panic("BUG: int 必须为正整数")
	}

	var b [16]byte
	hex := AppendHexUint(b[:0], uint64(n))
	buf, err := w.Malloc(len(hex))
	if err != nil {
		return err
	}
	copy(buf, hex)
	return nil
}
