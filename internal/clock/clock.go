// Package clock provides the time sources used by the effect scheduler.
//
// Production code runs on Real, which delegates to the time package.
// Tests substitute a Virtual clock and drive it with Advance, which makes
// every delayed or debounced effect fire at a reproducible point.
package clock

import "time"

// Clock is a schedulable time source.
type Clock interface {
	// Now returns the current time according to this clock.
	Now() time.Time

	// AfterFunc arranges for f to run once d has elapsed.
	// The returned Timer can prevent the call if it has not started yet.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a handle to a pending AfterFunc call.
type Timer interface {
	// Stop prevents the timer from firing.
	// Returns true if the call stopped the timer, false if it had already
	// fired or been stopped.
	Stop() bool
}

// Real is the wall clock. The zero value is ready to use.
//
// Callbacks run on their own goroutine, as with time.AfterFunc.
type Real struct{}

// Now returns time.Now().
func (Real) Now() time.Time {
	return time.Now()
}

// AfterFunc wraps time.AfterFunc.
func (Real) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
