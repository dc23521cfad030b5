package bytebufferpool

// ByteBuffer 是可复用的字节缓冲区，经 Get 获取、Put 归还。
//
// 正文收集器用它累积解码后的正文字节，归还后内容不再有效。
type ByteBuffer struct {
	B []byte
}

// Write 追加 p，总是成功。
func (b *ByteBuffer) Write(p []byte) (int, error) {
	b.B = append(b.B, p...)
	return len(p), nil
}

// Bytes 返回已累积的字节，与缓冲区共享内存。
func (b *ByteBuffer) Bytes() []byte {
	return b.B
}

// Len 返回已累积的字节数。
func (b *ByteBuffer) Len() int {
	return len(b.B)
}

// Reset 清空内容，保留底层存储。
func (b *ByteBuffer) Reset() {
	b.B = b.B[:0]
}

func (b *ByteBuffer) String() string {
	return string(b.B)
}
