package http1

import (
	"sync"

	errs "github.com/favbox/gust/common/errors"
)

type streamState uint8

const (
	// 消费方尚未认领正文，到达的数据暂存在收件箱。
	statePaused streamState = iota
	// 消费方已认领，数据直接交给接收器。
	stateReading
	// 已向接收器交付结束或错误。
	stateDone
)

// rendezvous 连接 I/O 协程（生产方）与正文消费方。
//
// 锁内只做常数时间的状态切换，接收器回调都在锁外进行。
// 认领方先在 draining 标记下清空收件箱再切换为 stateReading，
// 期间生产方继续暂存，从而保证回调有序且不并发。
type rendezvous struct {
	mu sync.Mutex

	state    streamState
	sink     BodySink
	claimed  bool
	draining bool
	gone     bool

	inbox      [][]byte
	pending    int
	maxPending int

	// 生产方已结束，等待交付给接收器。
	finished bool
	finalErr error
}

func newRendezvous(maxPending int) *rendezvous {
	return &rendezvous{maxPending: maxPending}
}

// deliver 由生产方调用，交付一段解码后的正文。
//
// 暂存量超过上限时返回 ErrPendingBodyTooLarge。消费方已放弃时数据被丢弃。
func (r *rendezvous) deliver(p []byte) error {
	r.mu.Lock()
	if r.gone || r.state == stateDone {
		r.mu.Unlock()
		return nil
	}
	if r.state == stateReading && !r.draining {
		sink := r.sink
		r.mu.Unlock()
		sink.OnData(p)
		return nil
	}
	if r.pending+len(p) > r.maxPending {
		r.mu.Unlock()
		return errs.New(errs.ErrPendingBodyTooLarge, errs.ErrorTypePublic,
			map[string]any{"pending": r.pending + len(p), "limit": r.maxPending})
	}
	r.inbox = append(r.inbox, append([]byte(nil), p...))
	r.pending += len(p)
	r.mu.Unlock()
	return nil
}

// finish 由生产方调用，err 为空表示正文完整结束。只有第一次调用生效。
func (r *rendezvous) finish(err error) {
	r.mu.Lock()
	if r.gone || r.finished || r.state == stateDone {
		r.mu.Unlock()
		return
	}
	r.finished = true
	r.finalErr = err
	if r.state != stateReading || r.draining {
		r.mu.Unlock()
		return
	}
	r.state = stateDone
	sink := r.sink
	r.mu.Unlock()
	notify(sink, err)
}

// claim 由消费方调用，先交付暂存数据，再让后续数据直达 sink。
func (r *rendezvous) claim(sink BodySink) error {
	r.mu.Lock()
	if r.claimed {
		r.mu.Unlock()
		return errs.ErrStreamClaimed
	}
	if r.gone {
		r.mu.Unlock()
		return errs.ErrConnectionClosed
	}
	r.claimed = true
	r.draining = true
	r.sink = sink

	for {
		inbox := r.inbox
		r.inbox, r.pending = nil, 0
		if len(inbox) == 0 {
			r.draining = false
			if r.finished {
				r.state = stateDone
				err := r.finalErr
				r.mu.Unlock()
				notify(sink, err)
				return nil
			}
			r.state = stateReading
			r.mu.Unlock()
			return nil
		}
		r.mu.Unlock()

		for _, p := range inbox {
			sink.OnData(p)
		}

		r.mu.Lock()
		if r.gone {
			r.draining = false
			r.mu.Unlock()
			return nil
		}
	}
}

// hangup 由消费方调用，表示不再关心剩余正文。
func (r *rendezvous) hangup() {
	r.mu.Lock()
	r.gone = true
	r.inbox, r.pending = nil, 0
	r.mu.Unlock()
}

// poll 返回当前状态，以及消费方是否已放弃。
func (r *rendezvous) poll() (state streamState, gone bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state, r.gone
}

func notify(sink BodySink, err error) {
	if err != nil {
		sink.OnError(err)
		return
	}
	sink.OnEOF()
}
