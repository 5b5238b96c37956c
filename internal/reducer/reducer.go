// Package reducer defines the reducer contract and its composition operators.
//
// A Reducer applies an action to state in place and returns the effect the
// action produced. Reducers never block and never dispatch: follow-up work is
// returned as an effect and reaches the store through the scheduler.
//
// Composition:
//   - Combine runs several reducers over the same state and merges effects.
//   - Scope lifts a reducer over a child state/action into its parent.
//   - ForEach lifts a per-element reducer over an identified.Array.
//
// Addressing misses (an action for a case that does not match, or for an
// element that is gone) are no-ops with no effect. Errors are reserved for
// invalid input and broken invariants, and abort the whole reduction.
package reducer

import (
	"log/slog"

	"github.com/roach88/reflux/internal/effect"
)

// Reducer mutates state in response to action and returns the resulting
// effect. It must be deterministic in state and action.
type Reducer[S, A any] func(state *S, action A) (effect.Effect[A], error)

// Reduce calls r. It exists so reducers read naturally at call sites.
func (r Reducer[S, A]) Reduce(state *S, action A) (effect.Effect[A], error) {
	return r(state, action)
}

// Empty returns a reducer that changes nothing.
func Empty[S, A any]() Reducer[S, A] {
	return func(*S, A) (effect.Effect[A], error) {
		return effect.None[A](), nil
	}
}

// Combine runs each reducer, in declaration order, against the same state.
//
// Order matters for state mutation only: a later reducer sees the changes of
// an earlier one. Effects are merged and run concurrently. The first error
// stops the reduction and is returned; effects gathered so far are dropped.
func Combine[S, A any](reducers ...Reducer[S, A]) Reducer[S, A] {
	rs := make([]Reducer[S, A], len(reducers))
	copy(rs, reducers)

	return func(state *S, action A) (effect.Effect[A], error) {
		effects := make([]effect.Effect[A], 0, len(rs))
		for _, r := range rs {
			e, err := r(state, action)
			if err != nil {
				return effect.None[A](), err
			}
			effects = append(effects, e)
		}
		return effect.Merge(effects...), nil
	}
}

// Debug wraps r and logs every action and resulting effect at Debug level.
func Debug[S, A any](r Reducer[S, A], logger *slog.Logger) Reducer[S, A] {
	if logger == nil {
		logger = slog.Default()
	}
	return func(state *S, action A) (effect.Effect[A], error) {
		e, err := r(state, action)
		if err != nil {
			logger.Debug("reduce failed", "action", action, "error", err)
			return e, err
		}
		logger.Debug("reduced", "action", action, "effect", e.Kind().String())
		return e, nil
	}
}
