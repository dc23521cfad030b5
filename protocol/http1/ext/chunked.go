package ext

import (
	"bytes"

	errs "github.com/favbox/gust/common/errors"
	"github.com/favbox/gust/internal/bytesconv"
	"github.com/favbox/gust/internal/bytestr"
	"github.com/favbox/gust/network"
)

// 块大小行和挂车行的长度上限，超出视为格式错误。
const maxChunkLineSize = 4096

// ChunkState 是分块解码器的状态。
type ChunkState uint8

const (
	// ChunkAwaitingSize 等待块大小行。
	ChunkAwaitingSize ChunkState = iota
	// ChunkReadingData 读取块数据。
	ChunkReadingData
	// ChunkAwaitingDataCRLF 等待块数据之后的 CRLF。
	ChunkAwaitingDataCRLF
	// ChunkAwaitingFinalCRLF 已读到零长度块，丢弃挂车直到结束空行。
	ChunkAwaitingFinalCRLF
	// ChunkDone 正文结束，不再接受任何字节。
	ChunkDone
)

var chunkStateNames = [...]string{"AwaitingSize", "ReadingData", "AwaitingDataCRLF", "AwaitingFinalCRLF", "Done"}

func (s ChunkState) String() string {
	if int(s) < len(chunkStateNames) {
		return chunkStateNames[s]
	}
	return "Unknown"
}

// ChunkDecoder 是增量的分块传输编码解码器，状态可跨越任意切分的输入保持。
//
// 零值即处于 ChunkAwaitingSize 状态，可直接使用。
type ChunkDecoder struct {
	state     ChunkState
	remaining uint64
	line      []byte // 跨输入累积的未完成行
}

// State 返回当前状态。
func (d *ChunkDecoder) State() ChunkState {
	return d.state
}

// Remaining 返回当前块尚未读取的字节数。
func (d *ChunkDecoder) Remaining() uint64 {
	return d.remaining
}

// Done 判断正文是否已结束。
func (d *ChunkDecoder) Done() bool {
	return d.state == ChunkDone
}

// Reset 将解码器恢复为初始状态。
func (d *ChunkDecoder) Reset() {
	d.state = ChunkAwaitingSize
	d.remaining = 0
	d.line = d.line[:0]
}

// Decode 消费 p 中的分块编码，每段块数据以 p 的子切片回调 emit，返回消费的字节数。
//
// 正文结束后剩余的字节不会被消费。出错后解码器不可再用。
func (d *ChunkDecoder) Decode(p []byte, emit func(data []byte)) (consumed int, err error) {
	for consumed < len(p) && d.state != ChunkDone {
		rest := p[consumed:]
		switch d.state {
		case ChunkReadingData:
			n := len(rest)
			if uint64(n) > d.remaining {
				n = int(d.remaining)
			}
			emit(rest[:n])
			d.remaining -= uint64(n)
			consumed += n
			if d.remaining == 0 {
				d.state = ChunkAwaitingDataCRLF
			}
			continue
		}

		line, n, ok, err := d.readLine(rest)
		consumed += n
		if err != nil {
			return consumed, err
		}
		if !ok {
			return consumed, nil
		}

		switch d.state {
		case ChunkAwaitingSize:
			size, err := parseChunkSize(line)
			if err != nil {
				return consumed, err
			}
			if size == 0 {
				d.state = ChunkAwaitingFinalCRLF
			} else {
				d.state = ChunkReadingData
				d.remaining = size
			}
		case ChunkAwaitingDataCRLF:
			if len(line) != 0 {
				return consumed, errs.Wrapf(errs.ErrMalformedChunk, "块数据之后缺少 CRLF: %s", BufferSnippet(line))
			}
			d.state = ChunkAwaitingSize
		case ChunkAwaitingFinalCRLF:
			// 挂车行不做校验，直接丢弃
			if len(line) == 0 {
				d.state = ChunkDone
			}
		}
		d.line = d.line[:0]
	}
	return consumed, nil
}

// 读取一行（不含 CRLF）。行不完整时暂存并返回 ok=false。
func (d *ChunkDecoder) readLine(p []byte) (line []byte, n int, ok bool, err error) {
	i := bytes.IndexByte(p, '\n')
	if i < 0 {
		if len(d.line)+len(p) > maxChunkLineSize {
			return nil, len(p), false, errs.Wrapf(errs.ErrMalformedChunk, "行长度超过 %d 字节", maxChunkLineSize)
		}
		d.line = append(d.line, p...)
		return nil, len(p), false, nil
	}

	n = i + 1
	if len(d.line)+i > maxChunkLineSize {
		return nil, n, false, errs.Wrapf(errs.ErrMalformedChunk, "行长度超过 %d 字节", maxChunkLineSize)
	}
	if len(d.line) > 0 {
		d.line = append(d.line, p[:i]...)
		line = d.line
	} else {
		line = p[:i]
	}
	if len(line) == 0 || line[len(line)-1] != '\r' {
		return nil, n, false, errs.Wrapf(errs.ErrMalformedChunk, "行未以 CRLF 结尾: %s", BufferSnippet(line))
	}
	return line[:len(line)-1], n, true, nil
}

// 解析块大小行：十六进制数字，可选的 ";扩展" 和尾随空白。
func parseChunkSize(line []byte) (uint64, error) {
	if i := bytes.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}
	line = bytes.TrimRight(line, " \t")
	size, err := bytesconv.ParseHexUint(line)
	if err != nil {
		return 0, errs.Wrapf(errs.ErrMalformedChunk, "块大小 %q: %v", line, err)
	}
	return size, nil
}

// WriteChunk 将 b 作为一个分块写入 w，b 会被拷贝。
//
// 空切片不写入任何内容，因为零长度块表示正文结束。
func WriteChunk(w network.Writer, b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if err := bytesconv.WriteHexInt(w, len(b)); err != nil {
		return err
	}
	buf, err := w.Malloc(len(b) + 2*len(bytestr.StrCRLF))
	if err != nil {
		return err
	}
	n := copy(buf, bytestr.StrCRLF)
	n += copy(buf[n:], b)
	copy(buf[n:], bytestr.StrCRLF)
	return nil
}

// WriteLastChunk 写入零长度的结束块和结束空行。
func WriteLastChunk(w network.Writer) error {
	_, err := w.WriteBinary(bytestr.StrLastChunk)
	return err
}
