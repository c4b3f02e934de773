package stt

import "sync"

const eventBufferSize = 64

// eventStream is the event channel shared by the engines. Emits after
// close are dropped instead of panicking.
type eventStream struct {
	ch   chan Event
	done chan struct{}

	mu     sync.RWMutex
	closed bool
	once   sync.Once
}

func newEventStream() *eventStream {
	return &eventStream{
		ch:   make(chan Event, eventBufferSize),
		done: make(chan struct{}),
	}
}

func (s *eventStream) emit(e Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return
	}
	select {
	case s.ch <- e:
	case <-s.done:
	}
}

func (s *eventStream) events() <-chan Event {
	return s.ch
}

func (s *eventStream) close() {
	s.once.Do(func() {
		close(s.done)

		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
	})
}
