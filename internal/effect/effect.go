// Package effect describes deferred work produced by reducers and runs it.
//
// An Effect is a plain value. Reducers return one alongside their state
// change; the store hands it to a Scheduler, which turns it into timers on a
// clock.Clock and feeds the resulting actions back into the store. Effects
// never reference state: they carry actions, and every state change happens
// when one of those actions is dispatched.
//
// Cancellation is keyed. A delayed effect may carry a CancelID; the
// Scheduler keeps at most one active handle per key, and a Cancel effect (or
// a cancel-in-flight effect under the same key) stops it synchronously.
// Debounce is not a separate mechanism: it is a cancel-in-flight delay that
// callers re-issue under a stable key each time the trigger recurs.
package effect

import (
	"fmt"
	"time"
)

// CancelID identifies scheduled work for cancellation.
//
// Any comparable value works. Keys are compared with ==, so two keys of
// different dynamic types never match. Zero-size struct types make good
// private keys:
//
//	type sortDebounceID struct{}
type CancelID any

// ScopedID namespaces a key under a scope, typically an element identity.
// Two ScopedIDs are equal only when both the scope and the inner key are.
type ScopedID struct {
	Scope any
	ID    CancelID
}

// String renders the key for logs.
func (s ScopedID) String() string {
	return fmt.Sprintf("%v/%v", s.Scope, s.ID)
}

// Kind is the variant of an Effect.
type Kind int

const (
	// KindNone does nothing.
	KindNone Kind = iota
	// KindSend redispatches an action once the current dispatch finishes.
	KindSend
	// KindDelay redispatches an action after a delay, optionally under a key.
	KindDelay
	// KindCancel stops the work registered under a key.
	KindCancel
	// KindMerge runs several effects concurrently.
	KindMerge
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindSend:
		return "send"
	case KindDelay:
		return "delay"
	case KindCancel:
		return "cancel"
	case KindMerge:
		return "merge"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Effect is a description of zero or more deferred outcomes producing
// actions of type A. The zero value is None.
type Effect[A any] struct {
	kind           Kind
	action         A
	delay          time.Duration
	id             CancelID
	keyed          bool
	cancelInFlight bool
	children       []Effect[A]
}

// None returns the effect that does nothing.
func None[A any]() Effect[A] {
	return Effect[A]{}
}

// Send returns an effect that feeds action back into the store as soon as
// the dispatch that produced it has finished. It is never delivered
// synchronously from inside a reducer.
func Send[A any](action A) Effect[A] {
	return Effect[A]{kind: KindSend, action: action}
}

// Delay returns an effect that feeds action back into the store after d.
func Delay[A any](action A, d time.Duration) Effect[A] {
	return Effect[A]{kind: KindDelay, action: action, delay: d}
}

// Debounce returns a delayed effect under id that cancels any in-flight work
// with the same id. Re-issuing it restarts the window, so only the last call
// within any d-wide window fires.
func Debounce[A any](action A, d time.Duration, id CancelID) Effect[A] {
	return Delay(action, d).Cancellable(id, true)
}

// Cancel returns an effect that stops the work registered under id.
// Cancelling an id with nothing in flight is a no-op.
func Cancel[A any](id CancelID) Effect[A] {
	return Effect[A]{kind: KindCancel, id: id, keyed: true}
}

// Merge combines effects to run concurrently. Nested merges are flattened
// and None entries dropped.
func Merge[A any](effects ...Effect[A]) Effect[A] {
	var flat []Effect[A]
	for _, e := range effects {
		switch e.kind {
		case KindNone:
		case KindMerge:
			flat = append(flat, e.children...)
		default:
			flat = append(flat, e)
		}
	}

	switch len(flat) {
	case 0:
		return None[A]()
	case 1:
		return flat[0]
	default:
		return Effect[A]{kind: KindMerge, children: flat}
	}
}

// Cancellable attaches a cancellation key to every delayed effect within e.
// With cancelInFlight set, scheduling replaces any work already in flight
// under the same id. Send, Cancel and None effects are returned unchanged.
func (e Effect[A]) Cancellable(id CancelID, cancelInFlight bool) Effect[A] {
	switch e.kind {
	case KindDelay:
		e.id = id
		e.keyed = true
		e.cancelInFlight = cancelInFlight
		return e
	case KindMerge:
		children := make([]Effect[A], len(e.children))
		for i, c := range e.children {
			children[i] = c.Cancellable(id, cancelInFlight)
		}
		e.children = children
		return e
	default:
		return e
	}
}

// Kind returns the variant.
func (e Effect[A]) Kind() Kind {
	return e.kind
}

// IsNone reports whether e does nothing.
func (e Effect[A]) IsNone() bool {
	return e.kind == KindNone
}

// Action returns the action carried by a Send or Delay effect.
func (e Effect[A]) Action() (A, bool) {
	if e.kind == KindSend || e.kind == KindDelay {
		return e.action, true
	}
	var zero A
	return zero, false
}

// Duration returns the delay of a Delay effect, zero otherwise.
func (e Effect[A]) Duration() time.Duration {
	return e.delay
}

// ID returns the cancellation key, if any.
func (e Effect[A]) ID() (CancelID, bool) {
	return e.id, e.keyed
}

// CancelsInFlight reports whether scheduling e replaces in-flight work under
// its key.
func (e Effect[A]) CancelsInFlight() bool {
	return e.cancelInFlight
}

// Children returns the effects combined by a Merge.
func (e Effect[A]) Children() []Effect[A] {
	out := make([]Effect[A], len(e.children))
	copy(out, e.children)
	return out
}

// Map converts the actions produced by e with f. Keys are unchanged.
func Map[A, B any](e Effect[A], f func(A) B) Effect[B] {
	out := Effect[B]{
		kind:           e.kind,
		delay:          e.delay,
		id:             e.id,
		keyed:          e.keyed,
		cancelInFlight: e.cancelInFlight,
	}
	switch e.kind {
	case KindSend, KindDelay:
		out.action = f(e.action)
	case KindMerge:
		out.children = make([]Effect[B], len(e.children))
		for i, c := range e.children {
			out.children[i] = Map(c, f)
		}
	}
	return out
}

// Namespace rewrites every cancellation key k within e into
// ScopedID{Scope: scope, ID: k}. Work started by one scope can then only be
// cancelled by effects from the same scope.
func Namespace[A any](e Effect[A], scope any) Effect[A] {
	switch e.kind {
	case KindMerge:
		children := make([]Effect[A], len(e.children))
		for i, c := range e.children {
			children[i] = Namespace(c, scope)
		}
		e.children = children
	default:
		if e.keyed {
			e.id = ScopedID{Scope: scope, ID: e.id}
		}
	}
	return e
}

// String renders the effect for logs and test failures.
func (e Effect[A]) String() string {
	switch e.kind {
	case KindNone:
		return "none"
	case KindSend:
		return fmt.Sprintf("send(%v)", e.action)
	case KindDelay:
		if e.keyed {
			return fmt.Sprintf("delay(%v, %s, id=%v, cancelInFlight=%t)", e.action, e.delay, e.id, e.cancelInFlight)
		}
		return fmt.Sprintf("delay(%v, %s)", e.action, e.delay)
	case KindCancel:
		return fmt.Sprintf("cancel(%v)", e.id)
	case KindMerge:
		return fmt.Sprintf("merge(%d)", len(e.children))
	default:
		return e.kind.String()
	}
}
