package event

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// DefaultQueueSize is the queue capacity used when no option overrides it.
const DefaultQueueSize = 1024

// Errors returned by System.
var (
	// ErrQueueFull is returned by Fire when the queue has no free slot.
	// The event is dropped and counted in Stats.Dropped.
	ErrQueueFull = errors.New("event: queue full")

	// ErrHalted is returned by Fire and Launch after Halt.
	ErrHalted = errors.New("event: system halted")

	// ErrAlreadyLaunched is returned by a second Launch.
	ErrAlreadyLaunched = errors.New("event: dispatcher already launched")

	// ErrNilEvent is returned by Fire for a nil event.
	ErrNilEvent = errors.New("event: nil event")
)

// Callback handles one event on the dispatcher goroutine.
type Callback func(e *Event)

// Stats is a snapshot of dispatcher counters.
type Stats struct {
	// Fired counts events accepted by Fire.
	Fired uint64
	// Delivered counts events popped by the dispatcher, with or without callbacks.
	Delivered uint64
	// Dropped counts events rejected because the queue was full or halted.
	Dropped uint64
	// Panicked counts callbacks that panicked and were recovered.
	Panicked uint64
}

// Option configures a System.
type Option func(*System)

// WithQueueSize sets the queue capacity. Values below 1 are ignored.
func WithQueueSize(n int) Option {
	return func(s *System) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// System owns a callback table and one dispatcher goroutine.
// The zero value is not usable; call NewSystem.
type System struct {
	mu        sync.RWMutex
	callbacks map[Kind][]Callback

	queueSize int
	queue     chan *Event
	done      chan struct{}

	// life serializes Launch and Halt.
	life     sync.Mutex
	launched bool
	halted   atomic.Bool

	fired     atomic.Uint64
	delivered atomic.Uint64
	dropped   atomic.Uint64
	panicked  atomic.Uint64
}

// NewSystem creates an event system. The dispatcher is not running until Launch.
func NewSystem(opts ...Option) *System {
	s := &System{
		callbacks: make(map[Kind][]Callback),
		queueSize: DefaultQueueSize,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.queue = make(chan *Event, s.queueSize)
	return s
}

// Register appends cb to the callbacks of kind. Registering the same
// function twice delivers each event to it twice.
func (s *System) Register(kind Kind, cb Callback) {
	if cb == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.callbacks[kind] = append(s.callbacks[kind], cb)
}

// Fire queues e for dispatch and returns without waiting for delivery.
func (s *System) Fire(e *Event) error {
	if e == nil {
		return ErrNilEvent
	}
	if s.halted.Load() {
		s.dropped.Add(1)
		return ErrHalted
	}
	select {
	case s.queue <- e:
		s.fired.Add(1)
		return nil
	default:
		s.dropped.Add(1)
		slogger().Warn("event: queue full, dropping event", "kind", e.Kind.String())
		return ErrQueueFull
	}
}

// Launch starts the dispatcher goroutine.
func (s *System) Launch() error {
	s.life.Lock()
	defer s.life.Unlock()
	if s.halted.Load() {
		return ErrHalted
	}
	if s.launched {
		return ErrAlreadyLaunched
	}
	s.launched = true
	go s.dispatch()
	slogger().Debug("event: dispatcher launched", "queue", s.queueSize)
	return nil
}

// Halt stops the dispatcher and waits for it to exit. Events still queued
// behind the stop sentinel are not delivered. Halt is safe to call more
// than once, concurrently with Launch, and on a System that was never
// launched.
func (s *System) Halt() {
	s.life.Lock()
	defer s.life.Unlock()
	if s.halted.Swap(true) {
		return
	}
	if !s.launched {
		close(s.done)
		return
	}
	// Blocking send: the running dispatcher frees a slot.
	s.queue <- nil
	<-s.done
	slogger().Debug("event: dispatcher halted",
		"delivered", s.delivered.Load(), "dropped", s.dropped.Load())
}

// Done is closed once the dispatcher has exited after Halt.
func (s *System) Done() <-chan struct{} { return s.done }

// Pending returns the number of queued events not yet popped.
func (s *System) Pending() int { return len(s.queue) }

// Stats returns a snapshot of the dispatcher counters.
func (s *System) Stats() Stats {
	return Stats{
		Fired:     s.fired.Load(),
		Delivered: s.delivered.Load(),
		Dropped:   s.dropped.Load(),
		Panicked:  s.panicked.Load(),
	}
}

func (s *System) dispatch() {
	defer close(s.done)
	for e := range s.queue {
		if e == nil {
			return
		}
		s.delivered.Add(1)

		s.mu.RLock()
		cbs := s.callbacks[e.Kind]
		s.mu.RUnlock()

		for i, cb := range cbs {
			s.invoke(i, cb, e)
		}
	}
}

// invoke runs one callback, recovering a panic so the dispatcher survives.
func (s *System) invoke(index int, cb Callback, e *Event) {
	defer func() {
		if r := recover(); r != nil {
			s.panicked.Add(1)
			slogger().Error("event: callback panicked",
				"kind", e.Kind.String(), "callback", index, "panic", fmt.Sprint(r))
		}
	}()
	cb(e)
}
