package store

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/roach88/reflux/internal/clock"
	"github.com/roach88/reflux/internal/effect"
	"github.com/roach88/reflux/internal/reducer"
)

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("store: closed")

// StoreOf is the surface presentation code programs against. Both *Store
// and the child stores returned by Scope implement it.
type StoreOf[S, A any] interface {
	// State returns the current state snapshot.
	State() S

	// Send dispatches an action.
	Send(action A) error

	// Subscribe registers fn to receive every published snapshot.
	// The returned function unsubscribes; calling it more than once is safe.
	Subscribe(fn func(S)) (unsubscribe func())
}

// Option configures a Store.
type Option func(*config)

type config struct {
	clock   clock.Clock
	logger  *slog.Logger
	metrics *effect.Metrics
	onError func(action any, err error)
}

// WithClock sets the clock effects are timed with.
// Default: clock.Real{}. Tests pass a *clock.Virtual.
func WithClock(c clock.Clock) Option {
	return func(cfg *config) {
		cfg.clock = c
	}
}

// WithLogger sets the logger for dispatch and scheduling diagnostics.
// Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = l
	}
}

// WithMetrics records effect scheduling in m.
func WithMetrics(m *effect.Metrics) Option {
	return func(cfg *config) {
		cfg.metrics = m
	}
}

// WithErrorHandler receives reducer errors for actions whose sender has
// already returned: follow-up actions produced by effects, and actions
// queued behind another dispatch. The action is passed as given to Send.
func WithErrorHandler(fn func(action any, err error)) Option {
	return func(cfg *config) {
		cfg.onError = fn
	}
}

// Store owns application state and is the only place it changes.
//
// Actions are processed strictly one at a time. For each action the root
// reducer runs exactly once on a copy of the current state; on success the
// copy becomes the current state, every listener is notified synchronously
// with it, and only then is the reducer's effect handed to the scheduler.
// Effects reach the store again only by sending actions.
//
// Thread-safety model:
//   - Send: safe from any goroutine, including from listeners and effects.
//     A Send made while another dispatch is in progress is queued and
//     processed after it, in arrival order, and returns without waiting.
//   - State, Subscribe: safe from any goroutine.
//
// State values must treat contained slices and maps as immutable, or use
// copy-on-write containers such as identified.Array, so that snapshots
// handed to listeners never change afterwards.
type Store[S, A any] struct {
	reducer   reducer.Reducer[S, A]
	scheduler *effect.Scheduler[A]
	queue     *actionQueue[A]
	logger    *slog.Logger
	onError   func(action any, err error)

	mu        sync.RWMutex
	state     S
	listeners []*listener[S]
}

type listener[S any] struct {
	fn     func(S)
	active bool
}

// New creates a store holding initial and reducing with root.
func New[S, A any](initial S, root reducer.Reducer[S, A], opts ...Option) *Store[S, A] {
	cfg := config{
		clock:  clock.Real{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Store[S, A]{
		reducer: root,
		scheduler: effect.NewScheduler[A](cfg.clock,
			effect.WithLogger(cfg.logger),
			effect.WithMetrics(cfg.metrics),
		),
		queue:   newActionQueue[A](),
		logger:  cfg.logger,
		onError: cfg.onError,
		state:   initial,
	}
}

// State returns the current state snapshot.
func (s *Store[S, A]) State() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers fn to receive every state published from now on, in
// dispatch order. Listeners are called in subscription order.
func (s *Store[S, A]) Subscribe(fn func(S)) func() {
	l := &listener[S]{fn: fn, active: true}

	s.mu.Lock()
	s.listeners = append(s.listeners, l)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			l.active = false
			for i, candidate := range s.listeners {
				if candidate == l {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					break
				}
			}
		})
	}
}

// Send dispatches action.
//
// If no dispatch is in progress, Send processes action and then every action
// queued behind it (follow-ups from effects and listeners) before returning.
// The error returned is the reducer error for action itself, if any; the
// state is left unchanged and no listener is notified in that case. Errors
// for queued actions go to the error handler.
//
// If a dispatch is in progress, action is queued and Send returns nil at once.
func (s *Store[S, A]) Send(action A) error {
	drain, ok := s.queue.Enqueue(action)
	if !ok {
		return ErrClosed
	}
	if !drain {
		s.logger.Debug("action queued", "action", action, "pending", s.queue.Len())
		return nil
	}

	var first error
	for n := 0; ; n++ {
		next, ok := s.queue.Next()
		if !ok {
			return first
		}
		if err := s.process(next); err != nil {
			if n == 0 {
				first = err
			} else {
				s.reportError(next, err)
			}
		}
	}
}

// process runs one action through the reducer, publishes, and schedules.
// Called only by the goroutine currently draining the queue.
func (s *Store[S, A]) process(action A) error {
	s.mu.RLock()
	next := s.state
	s.mu.RUnlock()

	eff, err := s.reducer(&next, action)
	if err != nil {
		s.logger.Error("reducer failed", "action", action, "error", err)
		return err
	}

	s.mu.Lock()
	s.state = next
	listeners := make([]*listener[S], len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	s.logger.Debug("action processed", "action", action, "effect", eff.Kind().String())

	for _, l := range listeners {
		if s.isActive(l) {
			l.fn(next)
		}
	}

	s.scheduler.Run(eff, s.redispatch)
	return nil
}

// redispatch feeds an effect's action back into the store.
func (s *Store[S, A]) redispatch(action A) {
	if err := s.Send(action); err != nil {
		if errors.Is(err, ErrClosed) {
			s.logger.Debug("effect action dropped: store closed", "action", action)
			return
		}
		s.reportError(action, err)
	}
}

func (s *Store[S, A]) reportError(action A, err error) {
	if s.onError != nil {
		s.onError(action, err)
	}
}

func (s *Store[S, A]) isActive(l *listener[S]) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return l.active
}

// InFlight returns the number of delayed effects waiting to fire.
func (s *Store[S, A]) InFlight() int {
	return s.scheduler.InFlight()
}

// Close cancels every in-flight effect and rejects further actions.
func (s *Store[S, A]) Close() {
	s.queue.Close()
	s.scheduler.Close()
	s.logger.Debug("store closed")
}
