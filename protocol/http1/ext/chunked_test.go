package ext

import (
	"bytes"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	errs "github.com/favbox/gust/common/errors"
	"github.com/favbox/gust/network"
	"github.com/stretchr/testify/assert"
)

func createChunkedBody(body, rest []byte, trailer map[string]string, hasTrailer bool) []byte {
	var b []byte
	chunkSize := 1
	for len(body) > 0 {
		if chunkSize > len(body) {
			chunkSize = len(body)
		}
		b = append(b, []byte(fmt.Sprintf("%x\r\n", chunkSize))...)
		b = append(b, body[:chunkSize]...)
		b = append(b, []byte("\r\n")...)
		body = body[chunkSize:]
		chunkSize++
	}
	if hasTrailer {
		b = append(b, "0\r\n"...)
		for k, v := range trailer {
			b = append(b, k...)
			b = append(b, ": "...)
			b = append(b, v...)
			b = append(b, "\r\n"...)
		}
		b = append(b, "\r\n"...)
	}
	return append(b, rest...)
}

func createFixedBody(size int) []byte {
	b := make([]byte, size)
	for i := range b {
		b[i] = byte(i%10) + '0'
	}
	return b
}

// 按给定的切分大小逐段解码，返回正文、消费的总字节数和错误。
func decodeInPieces(d *ChunkDecoder, data []byte, piece int) ([]byte, int, error) {
	var body []byte
	total := 0
	for len(data) > 0 && !d.Done() {
		n := piece
		if n > len(data) {
			n = len(data)
		}
		consumed, err := d.Decode(data[:n], func(p []byte) {
			body = append(body, p...)
		})
		total += consumed
		if err != nil {
			return body, total, err
		}
		data = data[consumed:]
	}
	return body, total, nil
}

func TestChunkDecoderWikipedia(t *testing.T) {
	t.Parallel()

	data := []byte("4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n")
	var d ChunkDecoder
	body, n, err := decodeInPieces(&d, data, len(data))
	assert.Nil(t, err)
	assert.Equal(t, "Wikipedia", string(body))
	assert.Equal(t, len(data), n)
	assert.True(t, d.Done())
	assert.Equal(t, "Done", d.State().String())
}

func TestChunkDecoderFragmented(t *testing.T) {
	t.Parallel()

	body := createFixedBody(3000)
	rest := []byte("GET / HTTP/1.1\r\n\r\n")
	data := createChunkedBody(body, rest, map[string]string{"Foo": "bar"}, true)

	for _, piece := range []int{1, 2, 3, 7, 64, 1000, len(data)} {
		var d ChunkDecoder
		got, n, err := decodeInPieces(&d, data, piece)
		assert.Nil(t, err, piece)
		assert.Equal(t, body, got, piece)
		assert.True(t, d.Done(), piece)
		// 正文之后的字节不被消费
		assert.Equal(t, string(rest), string(data[n:]), piece)
	}
}

func TestChunkDecoderExtensionsAndWhitespace(t *testing.T) {
	t.Parallel()

	data := []byte("3;name=value\r\nabc\r\nA \t\r\n0123456789\r\n0;last\r\nX-Trailer: ignored\r\nBad trailer line\r\n\r\n")
	var d ChunkDecoder
	body, _, err := decodeInPieces(&d, data, 5)
	assert.Nil(t, err)
	assert.Equal(t, "abc0123456789", string(body))
	assert.True(t, d.Done())
}

func TestChunkDecoderDoneIsTerminal(t *testing.T) {
	t.Parallel()

	var d ChunkDecoder
	n, err := d.Decode([]byte("0\r\n\r\nmore"), func([]byte) { t.Fatal("不应有正文") })
	assert.Nil(t, err)
	assert.Equal(t, 5, n)

	n, err = d.Decode([]byte("1\r\na\r\n"), func([]byte) { t.Fatal("结束后不应再有正文") })
	assert.Nil(t, err)
	assert.Equal(t, 0, n)

	d.Reset()
	assert.Equal(t, ChunkAwaitingSize, d.State())
	assert.Equal(t, uint64(0), d.Remaining())
}

func TestChunkDecoderState(t *testing.T) {
	t.Parallel()

	var d ChunkDecoder
	_, err := d.Decode([]byte("a\r\n01234"), func([]byte) {})
	assert.Nil(t, err)
	assert.Equal(t, ChunkReadingData, d.State())
	assert.Equal(t, uint64(5), d.Remaining())

	_, err = d.Decode([]byte("56789\r"), func([]byte) {})
	assert.Nil(t, err)
	assert.Equal(t, ChunkAwaitingDataCRLF, d.State())

	_, err = d.Decode([]byte("\n0\r\nTrailer: x\r\n"), func([]byte) {})
	assert.Nil(t, err)
	assert.Equal(t, ChunkAwaitingFinalCRLF, d.State())
	assert.Equal(t, "AwaitingFinalCRLF", d.State().String())
}

func TestChunkDecoderMalformed(t *testing.T) {
	t.Parallel()

	for _, data := range []string{
		"zz\r\nabc\r\n",
		"\r\n",
		";ext\r\n",
		"-1\r\n",
		"3\nabc\r\n",
		"3\r\nabcX\r\n",
		"3\r\nabc\n",
		"1000000000000000\r\n",
		strings.Repeat("1", maxChunkLineSize+1),
		"0\r\n" + strings.Repeat("T", maxChunkLineSize+1) + "\r\n",
	} {
		var d ChunkDecoder
		_, _, err := decodeInPieces(&d, []byte(data), 3)
		assert.NotNil(t, err, data)
		assert.True(t, errors.Is(err, errs.ErrMalformedChunk), data)
	}
}

func TestWriteChunk(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	w := network.NewWriter(&out)
	assert.Nil(t, WriteChunk(w, []byte("Wiki")))
	assert.Nil(t, WriteChunk(w, nil))
	assert.Nil(t, WriteChunk(w, []byte("pedia")))
	assert.Nil(t, WriteLastChunk(w))
	assert.Nil(t, w.Flush())
	assert.Equal(t, "4\r\nWiki\r\n5\r\npedia\r\n0\r\n\r\n", out.String())
}

func TestChunkRoundTrip(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		var expected []byte
		var out bytes.Buffer
		w := network.NewWriter(&out)
		for j := r.Intn(10); j >= 0; j-- {
			p := make([]byte, r.Intn(5000))
			r.Read(p)
			expected = append(expected, p...)
			assert.Nil(t, WriteChunk(w, p))
		}
		assert.Nil(t, WriteLastChunk(w))
		assert.Nil(t, w.Flush())

		var d ChunkDecoder
		got, n, err := decodeInPieces(&d, out.Bytes(), 1+r.Intn(300))
		assert.Nil(t, err)
		assert.True(t, d.Done())
		assert.Equal(t, out.Len(), n)
		assert.True(t, bytes.Equal(expected, got))
	}
}
