package http1

import (
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	errs "github.com/favbox/gust/common/errors"
	"github.com/stretchr/testify/assert"
)

// recordSink 记录全部回调，用于检查顺序。
type recordSink struct {
	mu     sync.Mutex
	events []string
	data   strings.Builder
}

func (s *recordSink) OnData(p []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, "data")
	s.data.Write(p)
}

func (s *recordSink) OnError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, "error:"+err.Error())
}

func (s *recordSink) OnEOF() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, "eof")
}

func (s *recordSink) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.String()
}

func (s *recordSink) Events() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

func TestRendezvousStashUntilClaim(t *testing.T) {
	t.Parallel()

	rv := newRendezvous(1024)
	src := []byte("hello")
	assert.Nil(t, rv.deliver(src))
	src[0] = 'j'
	assert.Nil(t, rv.deliver([]byte(" world")))
	state, gone := rv.poll()
	assert.Equal(t, statePaused, state)
	assert.False(t, gone)

	sink := &recordSink{}
	assert.Nil(t, rv.claim(sink))
	assert.Equal(t, "hello world", sink.String())
	state, _ = rv.poll()
	assert.Equal(t, stateReading, state)

	assert.Nil(t, rv.deliver([]byte("!")))
	rv.finish(nil)
	assert.Equal(t, "hello world!", sink.String())
	assert.Equal(t, []string{"data", "data", "data", "eof"}, sink.Events())
	state, _ = rv.poll()
	assert.Equal(t, stateDone, state)

	// 结束之后的数据和通知都被忽略
	assert.Nil(t, rv.deliver([]byte("late")))
	rv.finish(io.ErrUnexpectedEOF)
	assert.Equal(t, []string{"data", "data", "data", "eof"}, sink.Events())
}

func TestRendezvousFinishBeforeClaim(t *testing.T) {
	t.Parallel()

	rv := newRendezvous(1024)
	assert.Nil(t, rv.deliver([]byte("abc")))
	rv.finish(io.ErrUnexpectedEOF)

	sink := &recordSink{}
	assert.Nil(t, rv.claim(sink))
	assert.Equal(t, []string{"data", "error:" + io.ErrUnexpectedEOF.Error()}, sink.Events())
}

func TestRendezvousClaimOnce(t *testing.T) {
	t.Parallel()

	rv := newRendezvous(1024)
	assert.Nil(t, rv.claim(&recordSink{}))
	assert.Equal(t, errs.ErrStreamClaimed, rv.claim(&recordSink{}))
}

func TestRendezvousHangup(t *testing.T) {
	t.Parallel()

	rv := newRendezvous(1024)
	assert.Nil(t, rv.deliver([]byte("abc")))
	rv.hangup()
	_, gone := rv.poll()
	assert.True(t, gone)
	assert.Nil(t, rv.deliver([]byte("more")))
	assert.Equal(t, errs.ErrConnectionClosed, rv.claim(&recordSink{}))

	// 认领后放弃，不再回调
	rv = newRendezvous(1024)
	sink := &recordSink{}
	assert.Nil(t, rv.claim(sink))
	rv.hangup()
	assert.Nil(t, rv.deliver([]byte("x")))
	rv.finish(nil)
	assert.Empty(t, sink.Events())
}

func TestRendezvousPendingLimit(t *testing.T) {
	t.Parallel()

	rv := newRendezvous(4)
	assert.Nil(t, rv.deliver([]byte("abcd")))
	err := rv.deliver([]byte("e"))
	assert.True(t, errors.Is(err, errs.ErrPendingBodyTooLarge))

	// 认领后直达接收器，不受暂存上限约束
	sink := &recordSink{}
	assert.Nil(t, rv.claim(sink))
	assert.Nil(t, rv.deliver([]byte("0123456789")))
	assert.Equal(t, "abcd0123456789", sink.String())
}

func TestRendezvousConcurrentClaim(t *testing.T) {
	t.Parallel()

	const parts = 2000
	rv := newRendezvous(1 << 20)
	sink := &recordSink{}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < parts; i++ {
			assert.Nil(t, rv.deliver([]byte{byte('a' + i%26)}))
		}
		rv.finish(nil)
	}()
	assert.Nil(t, rv.claim(sink))
	wg.Wait()

	var want strings.Builder
	for i := 0; i < parts; i++ {
		want.WriteByte(byte('a' + i%26))
	}
	assert.Equal(t, want.String(), sink.String())
	events := sink.Events()
	assert.Equal(t, "eof", events[len(events)-1])
	assert.Equal(t, 1, strings.Count(strings.Join(events, ","), "eof"))
}

func TestCollector(t *testing.T) {
	t.Parallel()

	c := NewCollector()
	c.OnData([]byte("ab"))
	c.OnData([]byte("c"))
	select {
	case <-c.Done():
		t.Fatal("collector finished early")
	default:
	}
	c.OnEOF()
	<-c.Done()
	assert.Equal(t, "abc", string(c.Bytes()))
	assert.Nil(t, c.Err())
	c.Release()
	assert.Nil(t, c.Bytes())

	c = NewCollector()
	c.OnError(io.ErrUnexpectedEOF)
	<-c.Done()
	assert.Equal(t, io.ErrUnexpectedEOF, c.Err())
	c.Release()
}
