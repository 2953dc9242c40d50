package scan

import "sync"

// Stream delivers scan events to the processing pipeline over a buffered
// channel. Publishing never blocks the producer: when the buffer is full the
// event is dropped and reported, matching the fire-and-continue contract of
// the scanning hardware (scans arrive far slower than processing).
type Stream struct {
	events chan Event

	mu     sync.Mutex
	closed bool

	// DroppedHook is invoked for every event discarded on a full buffer.
	DroppedHook func(Event)
}

// NewStream builds a stream with the given buffer size (minimum 1).
func NewStream(buffer int) *Stream {
	if buffer < 1 {
		buffer = 1
	}
	return &Stream{events: make(chan Event, buffer)}
}

// Publish offers an event to the pipeline. Returns false when the event was
// dropped (full buffer or closed stream).
func (s *Stream) Publish(ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.events <- ev:
		return true
	default:
		if s.DroppedHook != nil {
			s.DroppedHook(ev)
		}
		return false
	}
}

// Events exposes the receive side for the pipeline goroutine.
func (s *Stream) Events() <-chan Event {
	return s.events
}

// Close stops the stream; pending events remain readable until drained.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.events)
}
