package bytesconv

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/favbox/gust/network"
	"github.com/stretchr/testify/assert"
)

func TestB2sAndS2b(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", B2s(nil))
	assert.Equal(t, "gust", B2s([]byte("gust")))
	assert.Equal(t, []byte("gust"), S2b("gust"))
	assert.Equal(t, 0, len(S2b("")))
}

func TestEqualFold(t *testing.T) {
	t.Parallel()

	assert.True(t, EqualFold([]byte("Content-Length"), "content-length"))
	assert.True(t, EqualFold([]byte("TRANSFER-ENCODING"), "Transfer-Encoding"))
	assert.False(t, EqualFold([]byte("Content-Lengt"), "content-length"))
	assert.False(t, EqualFold([]byte("Content_Length"), "content-length"))
}

func TestAppendUint(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 9, 10, 99, 123456, 1<<31 - 1} {
		assert.Equal(t, fmt.Sprintf("%d", n), string(AppendUint(nil, n)))
	}
	assert.Panics(t, func() { AppendUint(nil, -1) })
}

func TestAppendHTTPDate(t *testing.T) {
	t.Parallel()

	d := time.Date(2026, 10, 18, 8, 30, 0, 0, time.FixedZone("CST", 8*3600))
	assert.Equal(t, "Sun, 18 Oct 2026 00:30:00 GMT", string(AppendHTTPDate(nil, d)))
}

func TestParseUint(t *testing.T) {
	t.Parallel()

	for _, v := range []struct {
		s      string
		expect int
		ok     bool
	}{
		{"0", 0, true},
		{"123", 123, true},
		{"1234567890", 1234567890, true},
		{"", -1, false},
		{"-1", -1, false},
		{"12a", -1, false},
		{" 1", -1, false},
		{"99999999999999999999999", -1, false},
	} {
		n, err := ParseUint([]byte(v.s))
		assert.Equal(t, v.expect, n, v.s)
		assert.Equal(t, v.ok, err == nil, v.s)
	}
}

func TestParseHexUint(t *testing.T) {
	t.Parallel()

	for _, v := range []struct {
		s      string
		expect uint64
		ok     bool
	}{
		{"0", 0, true},
		{"a", 10, true},
		{"F", 15, true},
		{"1f4", 500, true},
		{"000000000000010", 16, true},
		{"", 0, false},
		{"g", 0, false},
		{"1 ", 0, false},
		{"1000000000000000", 0, false},
	} {
		n, err := ParseHexUint([]byte(v.s))
		assert.Equal(t, v.expect, n, v.s)
		assert.Equal(t, v.ok, err == nil, v.s)
	}
}

func TestAppendHexUint(t *testing.T) {
	t.Parallel()

	for _, n := range []uint64{0, 1, 15, 16, 255, 4096, 1<<40 + 3} {
		assert.Equal(t, fmt.Sprintf("%x", n), string(AppendHexUint(nil, n)))
		v, err := ParseHexUint(AppendHexUint(nil, n))
		assert.Nil(t, err)
		assert.Equal(t, n, v)
	}
}

func TestWriteHexInt(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 10, 4096, 123456789} {
		var buf bytes.Buffer
		w := network.NewWriter(&buf)
		assert.Nil(t, WriteHexInt(w, n))
		assert.Nil(t, w.Flush())
		assert.Equal(t, fmt.Sprintf("%x", n), buf.String())
	}
}
