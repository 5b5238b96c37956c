package store

import "sync"

// actionQueue is a thread-safe FIFO of pending actions that also tracks
// which caller is draining it.
//
// The first Enqueue on an idle queue makes its caller the drainer. Every
// other Enqueue (re-entrant sends from listeners or effects, and sends from
// other goroutines) only appends. The drainer keeps calling Next until the
// queue is empty, at which point the queue goes idle again. This gives all
// actions a single total order without ever running two reductions at once.
//
// The queue is unbounded so cascading follow-up actions never block.
type actionQueue[A any] struct {
	mu       sync.Mutex
	actions  []A
	draining bool
	closed   bool
}

func newActionQueue[A any]() *actionQueue[A] {
	return &actionQueue[A]{
		actions: make([]A, 0, 16),
	}
}

// Enqueue appends a to the back of the queue.
//
// Returns drain=true if the caller must now drain the queue, and ok=false if
// the queue is closed (a is discarded).
func (q *actionQueue[A]) Enqueue(a A) (drain bool, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false, false
	}

	q.actions = append(q.actions, a)
	if q.draining {
		return false, true
	}
	q.draining = true
	return true, true
}

// Next removes and returns the front action.
// Returns false, and releases the drainer role, once the queue is empty.
func (q *actionQueue[A]) Next() (A, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.actions) == 0 {
		q.draining = false
		var zero A
		return zero, false
	}

	a := q.actions[0]

	// Clear the slot so the backing array does not pin the action.
	var zero A
	q.actions[0] = zero

	if len(q.actions) == 1 {
		q.actions = q.actions[:0]
	} else {
		q.actions = q.actions[1:]
	}

	return a, true
}

// Len returns the number of queued actions.
func (q *actionQueue[A]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.actions)
}

// Close rejects further actions. Actions already queued are still returned
// by Next.
func (q *actionQueue[A]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}
