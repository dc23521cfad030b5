package http1

import (
	"errors"
	"strings"
	"testing"

	errs "github.com/favbox/gust/common/errors"
	"github.com/favbox/gust/common/json"
	"github.com/favbox/gust/common/mock"
	"github.com/favbox/gust/protocol"
	"github.com/stretchr/testify/assert"
)

func errorResponseBody(t *testing.T, out string) map[string]any {
	i := strings.Index(out, "\r\n\r\n")
	if !assert.True(t, i > 0, out) {
		t.FailNow()
	}
	var body map[string]any
	assert.Nil(t, json.Unmarshal([]byte(out[i+4:]), &body))
	return body
}

func TestDefaultParseErrorHandler(t *testing.T) {
	t.Parallel()

	transport := mock.NewConn()
	c := NewServerConn(transport, &recordHandler{}, Options{NoDefaultDate: true})
	DefaultParseErrorHandler(errs.Wrapf(errs.ErrMalformed, "坏请求"), &Transfer{conn: c})

	out := transport.Written()
	assert.True(t, strings.HasPrefix(out, "HTTP/1.1 400 Bad Request\r\n"))
	body := errorResponseBody(t, out)
	assert.Equal(t, errs.ErrMalformed.Error()+": 坏请求", body["error"])
}

func TestDefaultParseErrorHandlerHidesPrivateErrors(t *testing.T) {
	t.Parallel()

	transport := mock.NewConn()
	c := NewServerConn(transport, &recordHandler{}, Options{NoDefaultDate: true})
	DefaultParseErrorHandler(errors.New("内部细节"), &Transfer{conn: c})

	body := errorResponseBody(t, transport.Written())
	assert.Equal(t, "Bad Request", body["error"])
}

func TestDefaultParseErrorHandlerSilentCases(t *testing.T) {
	t.Parallel()

	transport := mock.NewConn()
	server := NewServerConn(transport, &recordHandler{}, Options{})
	DefaultParseErrorHandler(errs.New(errs.ErrHeaderTooLarge, errs.ErrorTypePublic, nil), &Transfer{conn: server})
	DefaultParseErrorHandler(errs.ErrMalformed, nil)

	client := NewClientConn(transport, &recordHandler{}, Options{})
	DefaultParseErrorHandler(errs.ErrMalformed, &Transfer{conn: client})
	assert.Equal(t, 0, transport.WroteLen())
}

func TestHandlerFuncs(t *testing.T) {
	t.Parallel()

	var (
		incoming  int
		parseErr  error
		transport error
	)
	h := HandlerFuncs{
		Incoming: func(msg *protocol.Message, stream *Stream, transfer *Transfer) {
			incoming++
			stream.Close()
		},
		ParseError:     func(err error, transfer *Transfer) { parseErr = err },
		TransportError: func(err error) { transport = err },
	}
	conn := mock.NewConn()
	c := NewServerConn(conn, h, Options{})
	c.OnData([]byte("GET / HTTP/1.1\r\n\r\n"))
	c.OnData([]byte("GET\r\n\r\n"))
	assert.Equal(t, 1, incoming)
	assert.True(t, errors.Is(parseErr, errs.ErrMalformed))
	assert.Equal(t, 0, conn.WroteLen())

	boom := errors.New("boom")
	h.OnTransportError(boom)
	assert.Equal(t, boom, transport)
}
