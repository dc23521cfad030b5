package ext

import (
	"bytes"
	"fmt"
)

// BufferSnippet 返回字节切片的片段。
//
// 形如: <前缀 20 位>...<后缀 20 位>
//
// 若切片不足 40 位，则直接返回原始切片。
func BufferSnippet(b []byte) string {
	n := len(b)
	start := 20
	end := n - start
	if start >= end {
		start = n
		end = n
	}
	bStart, bEnd := b[:start], b[end:]
	if len(bEnd) == 0 {
		return fmt.Sprintf("%q", b)
	}
	return fmt.Sprintf("%q...%q", bStart, bEnd)
}

// SkipEmptyLines 返回 buf 开头完整空行（CRLF 或 LF）的字节数。
func SkipEmptyLines(buf []byte) int {
	n := 0
	for n < len(buf) {
		switch {
		case buf[n] == '\n':
			n++
		case buf[n] == '\r' && n+1 < len(buf) && buf[n+1] == '\n':
			n += 2
		default:
			return n
		}
	}
	return n
}

// FindHeaderEnd 返回首部块（含结束空行）的字节数。
//
// 行可以 CRLF 或单独的 LF 结尾。找不到结束空行时返回 ErrNeedMore。
func FindHeaderEnd(buf []byte) (int, error) {
	n := 0
	for {
		m := bytes.IndexByte(buf[n:], '\n')
		if m < 0 {
			return 0, errNeedMore
		}
		empty := m == 0 || m == 1 && buf[n] == '\r'
		n += m + 1
		if empty {
			return n, nil
		}
	}
}

// HeaderScanner 增量查找首部块的结束位置。
//
// 每次 Scan 从上次停下的位置继续，已扫描的字节不会被再次扫描，
// 因此首部被拆成任意多片送达时总扫描量仍与首部长度成正比。
type HeaderScanner struct {
	start int // 当前行的起始偏移
	pos   int // 此前的字节已确认扫描过
	lines int
}

// Scan 在 buf 中继续查找首部结束的空行，buf 须为上次调用时的 buf 追加新数据所得。
//
// 起始行之前的空行被跳过。找到时返回首部块（含前导空行与结束空行）的字节数，
// 否则返回 ErrNeedMore。
func (s *HeaderScanner) Scan(buf []byte) (int, error) {
	for {
		m := bytes.IndexByte(buf[s.pos:], '\n')
		if m < 0 {
			s.pos = len(buf)
			return 0, errNeedMore
		}
		n := s.pos + m - s.start
		empty := n == 0 || n == 1 && buf[s.start] == '\r'
		s.pos += m + 1
		s.start = s.pos
		if !empty {
			s.lines++
		} else if s.lines > 0 {
			return s.pos, nil
		}
	}
}

// Lines 返回已扫描的非空行数，含起始行。
func (s *HeaderScanner) Lines() int {
	return s.lines
}

// Reset 重置扫描位置，用于开始查找下一个报文的首部。
func (s *HeaderScanner) Reset() {
	s.start, s.pos, s.lines = 0, 0, 0
}

// SplitLines 将首部块按行拆分，去掉行尾的 CRLF 或 LF，不含结束空行。
func SplitLines(head []byte, f func(line []byte) error) error {
	for len(head) > 0 {
		m := bytes.IndexByte(head, '\n')
		if m < 0 {
			m = len(head)
		}
		line := head[:m]
		if len(line) > 0 && line[len(line)-1] == '\r' {
			line = line[:len(line)-1]
		}
		if len(line) == 0 {
			return nil
		}
		if err := f(line); err != nil {
			return err
		}
		if m == len(head) {
			return nil
		}
		head = head[m+1:]
	}
	return nil
}
