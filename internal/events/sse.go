package events

import (
	"sync"
	"sync/atomic"

	"github.com/kelindar/event"
)

// Stream gathers every relay event for one SSE client into a single
// buffered channel. A client that falls behind loses events instead of
// building a backlog; Dropped reports how many.
type Stream struct {
	ch        chan any
	dropped   atomic.Uint64
	unsubs    []func()
	closeOnce sync.Once
}

// NewStream subscribes a stream buffering up to size events.
func NewStream(bus *Bus, size int) *Stream {
	s := &Stream{ch: make(chan any, size)}
	s.unsubs = []func(){
		subscribeStream[InputOpenedEvent](bus, s),
		subscribeStream[StatusEvent](bus, s),
		subscribeStream[PreviewEvent](bus, s),
		subscribeStream[FinishedEvent](bus, s),
		subscribeStream[MetricsEvent](bus, s),
	}
	return s
}

func subscribeStream[T Event](bus *Bus, s *Stream) func() {
	return event.Subscribe(bus.dispatcher, func(e T) {
		select {
		case s.ch <- e:
		default:
			s.dropped.Add(1)
		}
	})
}

// Events returns the channel the subscribed events arrive on. It is never
// closed.
func (s *Stream) Events() <-chan any {
	return s.ch
}

// Dropped returns the number of events lost to a full buffer.
func (s *Stream) Dropped() uint64 {
	return s.dropped.Load()
}

// Close unsubscribes the stream from the bus.
func (s *Stream) Close() {
	s.closeOnce.Do(func() {
		for _, unsub := range s.unsubs {
			unsub()
		}
	})
}
