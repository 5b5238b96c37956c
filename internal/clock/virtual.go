package clock

import (
	"container/heap"
	"fmt"
	"sync"
	"time"
)

// DefaultCascadeLimit bounds how many timers Run fires before it gives up.
// A callback that reschedules itself with a zero delay would otherwise
// never let Run return.
const DefaultCascadeLimit = 100_000

// Virtual is a manually advanced clock for deterministic tests.
//
// Time only moves when Advance or Run is called. Pending timers are kept in a
// min-heap ordered by deadline; timers with the same deadline fire in the
// order they were scheduled (FIFO), using a monotonically increasing
// scheduling sequence as the tie-breaker.
//
// Callbacks run synchronously on the goroutine calling Advance, with the
// clock's lock released, so a callback may schedule or stop other timers.
// Timers scheduled by a callback are fired by the same Advance call if their
// deadline falls inside the window.
//
// Thread-safety: all methods are safe for concurrent use.
type Virtual struct {
	mu     sync.Mutex
	now    time.Time
	seq    int64
	timers timerHeap
}

// NewVirtual creates a virtual clock that reads start until advanced.
func NewVirtual(start time.Time) *Virtual {
	return &Virtual{
		now:    start,
		timers: make(timerHeap, 0),
	}
}

// Now returns the current virtual time.
func (c *Virtual) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc schedules f at now+d. A negative d is treated as zero.
func (c *Virtual) AfterFunc(d time.Duration, f func()) Timer {
	if d < 0 {
		d = 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	t := &virtualTimer{
		clock: c,
		when:  c.now.Add(d),
		seq:   c.seq,
		fn:    f,
		index: -1,
	}
	heap.Push(&c.timers, t)
	return t
}

// Advance moves the clock forward by d, firing every timer whose deadline
// is at or before the new time.
//
// Timers fire in nondecreasing deadline order. Before each callback runs,
// Now reports that timer's deadline. When Advance returns, Now reports the
// original time plus d.
//
// Panics if d is negative.
func (c *Virtual) Advance(d time.Duration) {
	if d < 0 {
		panic(fmt.Sprintf("clock: cannot advance by negative duration %s", d))
	}

	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for c.fireNext(target) {
	}

	c.mu.Lock()
	if target.After(c.now) {
		c.now = target
	}
	c.mu.Unlock()
}

// Run fires pending timers until none remain, moving time forward to each
// deadline in turn.
//
// Panics after DefaultCascadeLimit fires, which indicates a timer that keeps
// rescheduling itself.
func (c *Virtual) Run() {
	for fired := 0; ; fired++ {
		if fired >= DefaultCascadeLimit {
			panic(fmt.Sprintf("clock: Run exceeded %d timer fires", DefaultCascadeLimit))
		}

		c.mu.Lock()
		if len(c.timers) == 0 {
			c.mu.Unlock()
			return
		}
		target := c.timers[0].when
		c.mu.Unlock()

		c.fireNext(target)
	}
}

// Pending returns the number of timers that have not fired or been stopped.
func (c *Virtual) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// fireNext pops and runs the earliest timer due at or before target.
// Returns false if no such timer exists.
func (c *Virtual) fireNext(target time.Time) bool {
	c.mu.Lock()
	if len(c.timers) == 0 || c.timers[0].when.After(target) {
		c.mu.Unlock()
		return false
	}

	t := heap.Pop(&c.timers).(*virtualTimer)
	if t.when.After(c.now) {
		c.now = t.when
	}
	fn := t.fn
	t.fn = nil
	c.mu.Unlock()

	fn()
	return true
}

// virtualTimer is a pending callback on a Virtual clock.
type virtualTimer struct {
	clock *Virtual
	when  time.Time
	seq   int64
	fn    func()
	index int // position in the heap, -1 once removed
}

// Stop removes the timer from the heap if it is still pending.
func (t *virtualTimer) Stop() bool {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()

	if t.index < 0 {
		return false
	}
	heap.Remove(&c.timers, t.index)
	t.fn = nil
	return true
}

// timerHeap is a min-heap of timers ordered by (when, seq).
type timerHeap []*virtualTimer

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].when.Equal(h[j].when) {
		return h[i].seq < h[j].seq
	}
	return h[i].when.Before(h[j].when)
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *timerHeap) Push(x any) {
	t := x.(*virtualTimer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil // release for GC
	t.index = -1
	*h = old[:n-1]
	return t
}
