package effect

import (
	"log/slog"
	"sync"

	"github.com/roach88/reflux/internal/clock"
)

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*schedulerConfig)

type schedulerConfig struct {
	logger  *slog.Logger
	metrics *Metrics
}

// WithLogger sets the logger used for scheduling diagnostics.
// Default: slog.Default().
func WithLogger(l *slog.Logger) SchedulerOption {
	return func(c *schedulerConfig) {
		c.logger = l
	}
}

// WithMetrics records scheduling activity in m.
func WithMetrics(m *Metrics) SchedulerOption {
	return func(c *schedulerConfig) {
		c.metrics = m
	}
}

// Scheduler runs effects against a clock and owns the cancellation registry.
//
// INVARIANTS:
//   - At most one active handle per cancellation key.
//   - Cancellation is synchronous: once Cancel (or a cancel-in-flight
//     replacement) returns, the cancelled work never delivers its action.
//   - Cancelling or restarting a key never touches other keys.
//
// Thread-safety: all methods are safe for concurrent use. Callbacks from the
// clock re-enter the scheduler through its mutex; the delivery function is
// always called with the mutex released.
type Scheduler[A any] struct {
	clock   clock.Clock
	logger  *slog.Logger
	metrics *Metrics

	mu       sync.Mutex
	registry map[CancelID]*handle
	inFlight map[*handle]struct{}
	closed   bool
}

// handle is one piece of scheduled work.
type handle struct {
	id        CancelID
	keyed     bool
	timer     clock.Timer
	cancelled bool
}

// NewScheduler creates a scheduler that times effects with clk.
func NewScheduler[A any](clk clock.Clock, opts ...SchedulerOption) *Scheduler[A] {
	cfg := schedulerConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Scheduler[A]{
		clock:    clk,
		logger:   cfg.logger,
		metrics:  cfg.metrics,
		registry: make(map[CancelID]*handle),
		inFlight: make(map[*handle]struct{}),
	}
}

// Run executes e, delivering any resulting actions through send.
//
//   - None: nothing.
//   - Send: send is called immediately. The store queues the action behind
//     the dispatch that produced it.
//   - Delay: a timer is started; on fire the registry entry is cleared and
//     the action delivered. With a key and cancel-in-flight, existing work
//     under the key is cancelled first. With a key and no cancel-in-flight,
//     the effect is dropped while work under the key is still pending.
//   - Cancel: the work under the key is stopped, if any.
//   - Merge: each child is run in order.
//
// Run does nothing after Close.
func (s *Scheduler[A]) Run(e Effect[A], send func(A)) {
	switch e.kind {
	case KindNone:
		return

	case KindMerge:
		for _, child := range e.children {
			s.Run(child, send)
		}

	case KindCancel:
		s.metrics.observeScheduled(KindCancel)
		s.Cancel(e.id)

	case KindSend:
		if s.isClosed() {
			return
		}
		s.metrics.observeScheduled(KindSend)
		send(e.action)

	case KindDelay:
		s.schedule(e, send)
	}
}

// schedule installs a timer for a Delay effect.
func (s *Scheduler[A]) schedule(e Effect[A], send func(A)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	if e.keyed {
		if existing, ok := s.registry[e.id]; ok {
			if !e.cancelInFlight {
				s.logger.Debug("effect dropped: key already in flight", "id", e.id)
				return
			}
			s.stopLocked(existing)
			s.logger.Debug("effect restarted", "id", e.id, "delay", e.delay)
		}
	}

	h := &handle{id: e.id, keyed: e.keyed}
	s.inFlight[h] = struct{}{}
	if e.keyed {
		s.registry[e.id] = h
	}

	action := e.action
	h.timer = s.clock.AfterFunc(e.delay, func() {
		s.fire(h, action, send)
	})

	s.metrics.observeScheduled(KindDelay)
	s.metrics.setInFlight(len(s.inFlight))
	s.logger.Debug("effect scheduled", "delay", e.delay, "keyed", e.keyed, "id", e.id)
}

// fire is the timer callback for h.
func (s *Scheduler[A]) fire(h *handle, action A, send func(A)) {
	s.mu.Lock()
	if h.cancelled {
		// A real timer can start its callback just as Stop is called.
		// The cancellation already happened; drop the delivery.
		s.mu.Unlock()
		return
	}

	if h.keyed {
		if current := s.registry[h.id]; current != h {
			s.mu.Unlock()
			panic(&InvariantError{
				Code:    ErrCodeStaleFire,
				Message: "timer fired for a key owned by other work",
				ID:      h.id,
			})
		}
		delete(s.registry, h.id)
	}
	delete(s.inFlight, h)
	s.metrics.observeFired()
	s.metrics.setInFlight(len(s.inFlight))
	s.mu.Unlock()

	send(action)
}

// Cancel stops the work registered under id. It is a no-op if nothing is
// in flight under id.
func (s *Scheduler[A]) Cancel(id CancelID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h, ok := s.registry[id]; ok {
		s.stopLocked(h)
		s.logger.Debug("effect cancelled", "id", id)
	}
}

// CancelAll stops every in-flight effect, keyed or not.
func (s *Scheduler[A]) CancelAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for h := range s.inFlight {
		s.stopLocked(h)
	}
}

// Close cancels everything and makes later Run calls no-ops.
func (s *Scheduler[A]) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.CancelAll()
}

// InFlight returns the number of delayed effects waiting to fire.
func (s *Scheduler[A]) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inFlight)
}

// Active reports whether work is in flight under id.
func (s *Scheduler[A]) Active(id CancelID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.registry[id]
	return ok
}

func (s *Scheduler[A]) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// stopLocked cancels h. Caller must hold s.mu.
func (s *Scheduler[A]) stopLocked(h *handle) {
	if h.cancelled {
		return
	}
	h.cancelled = true
	if h.timer != nil {
		h.timer.Stop()
	}
	if h.keyed && s.registry[h.id] == h {
		delete(s.registry, h.id)
	}
	delete(s.inFlight, h)
	s.metrics.observeCancelled()
	s.metrics.setInFlight(len(s.inFlight))
}
