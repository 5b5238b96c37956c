package store

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reflux/internal/clock"
	"github.com/roach88/reflux/internal/effect"
	"github.com/roach88/reflux/internal/identified"
	"github.com/roach88/reflux/internal/reducer"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Test domain: a counter with a log of processed actions.

type counter struct {
	Count int
	Fired int
	Log   []string
}

type act struct {
	Kind string
	N    int
}

var errRejected = errors.New("rejected")

type debounceKey struct{}

func counterReducer(state *counter, a act) (effect.Effect[act], error) {
	switch a.Kind {
	case "inc":
		state.Count += a.N
	case "chain":
		state.Count++
		return effect.Send(act{Kind: "inc", N: 10}), nil
	case "chain-fail":
		return effect.Send(act{Kind: "fail"}), nil
	case "debounce":
		return effect.Debounce(act{Kind: "fired"}, time.Second, debounceKey{}), nil
	case "delay":
		return effect.Delay(act{Kind: "fired"}, 500*time.Millisecond), nil
	case "cancel":
		return effect.Cancel[act](debounceKey{}), nil
	case "fired":
		state.Fired++
	case "fail":
		return effect.None[act](), errRejected
	}
	return effect.None[act](), nil
}

// logging records every processed action so tests can assert total order.
func logging(r reducer.Reducer[counter, act]) reducer.Reducer[counter, act] {
	return func(state *counter, a act) (effect.Effect[act], error) {
		e, err := r(state, a)
		if err != nil {
			return e, err
		}
		state.Log = append(state.Log, fmt.Sprintf("%s:%d", a.Kind, a.N))
		return e, nil
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T, opts ...Option) (*Store[counter, act], *clock.Virtual) {
	t.Helper()
	clk := clock.NewVirtual(epoch)
	opts = append([]Option{WithClock(clk), WithLogger(discardLogger())}, opts...)
	s := New(counter{}, logging(counterReducer), opts...)
	t.Cleanup(s.Close)
	return s, clk
}

func TestStore_SendUpdatesState(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.Send(act{Kind: "inc", N: 2}))
	require.NoError(t, s.Send(act{Kind: "inc", N: 3}))

	assert.Equal(t, 5, s.State().Count)
	assert.Equal(t, []string{"inc:2", "inc:3"}, s.State().Log)
}

func TestStore_ListenersNotifiedInOrder(t *testing.T) {
	s, _ := newTestStore(t)

	var seen []string
	s.Subscribe(func(c counter) { seen = append(seen, fmt.Sprintf("first:%d", c.Count)) })
	s.Subscribe(func(c counter) { seen = append(seen, fmt.Sprintf("second:%d", c.Count)) })

	require.NoError(t, s.Send(act{Kind: "inc", N: 1}))
	require.NoError(t, s.Send(act{Kind: "inc", N: 1}))

	assert.Equal(t, []string{"first:1", "second:1", "first:2", "second:2"}, seen)
}

func TestStore_PublishesEvenWhenUnchanged(t *testing.T) {
	s, _ := newTestStore(t)

	calls := 0
	s.Subscribe(func(counter) { calls++ })

	require.NoError(t, s.Send(act{Kind: "noop"}))
	assert.Equal(t, 1, calls)
}

func TestStore_UnsubscribeIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)

	var a, b int
	unsubA := s.Subscribe(func(counter) { a++ })
	s.Subscribe(func(counter) { b++ })

	require.NoError(t, s.Send(act{Kind: "inc", N: 1}))
	unsubA()
	unsubA()
	require.NoError(t, s.Send(act{Kind: "inc", N: 1}))

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b, "other subscribers unaffected")
}

func TestStore_ReducerErrorLeavesStateUnchanged(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Send(act{Kind: "inc", N: 4}))

	calls := 0
	s.Subscribe(func(counter) { calls++ })

	err := s.Send(act{Kind: "fail"})
	require.ErrorIs(t, err, errRejected)
	assert.Equal(t, 4, s.State().Count)
	assert.Equal(t, []string{"inc:4"}, s.State().Log)
	assert.Zero(t, calls, "listeners not notified on failure")
}

func TestStore_SendEffectIsProcessedAfterDispatch(t *testing.T) {
	s, _ := newTestStore(t)

	var counts []int
	s.Subscribe(func(c counter) { counts = append(counts, c.Count) })

	require.NoError(t, s.Send(act{Kind: "chain"}))

	assert.Equal(t, 11, s.State().Count, "follow-up processed before Send returns")
	assert.Equal(t, []int{1, 11}, counts)
	assert.Equal(t, []string{"chain:0", "inc:10"}, s.State().Log)
}

func TestStore_ReentrantSendFromListenerIsQueued(t *testing.T) {
	s, _ := newTestStore(t)

	var inner error
	var observed []int
	s.Subscribe(func(c counter) {
		observed = append(observed, c.Count)
		if c.Count == 1 {
			inner = s.Send(act{Kind: "inc", N: 100})
			// Still inside the first dispatch: nothing processed yet.
			observed = append(observed, s.State().Count)
		}
	})

	require.NoError(t, s.Send(act{Kind: "inc", N: 1}))
	require.NoError(t, inner)

	assert.Equal(t, []int{1, 1, 101}, observed)
	assert.Equal(t, 101, s.State().Count)
}

func TestStore_ListenerSendsPrecedeEffectSends(t *testing.T) {
	s, _ := newTestStore(t)

	s.Subscribe(func(c counter) {
		if len(c.Log) == 1 && c.Log[0] == "chain:0" {
			_ = s.Send(act{Kind: "inc", N: 1})
		}
	})

	require.NoError(t, s.Send(act{Kind: "chain"}))

	assert.Equal(t, []string{"chain:0", "inc:1", "inc:10"}, s.State().Log,
		"listeners run before the effect is handed to the scheduler")
}

func TestStore_FollowUpErrorGoesToHandler(t *testing.T) {
	var mu sync.Mutex
	var reported []error
	s, _ := newTestStore(t, WithErrorHandler(func(action any, err error) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, act{Kind: "fail"}, action)
		reported = append(reported, err)
	}))

	err := s.Send(act{Kind: "chain-fail"})
	require.NoError(t, err, "the caller's own action succeeded")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, reported, 1)
	assert.ErrorIs(t, reported[0], errRejected)
}

func TestStore_DelayedEffectFiresOnClock(t *testing.T) {
	s, clk := newTestStore(t)

	require.NoError(t, s.Send(act{Kind: "delay"}))
	assert.Equal(t, 1, s.InFlight())
	assert.Zero(t, s.State().Fired)

	clk.Advance(499 * time.Millisecond)
	assert.Zero(t, s.State().Fired)

	clk.Advance(time.Millisecond)
	assert.Equal(t, 1, s.State().Fired)
	assert.Zero(t, s.InFlight())
}

func TestStore_DebounceFiresOncePerWindow(t *testing.T) {
	s, clk := newTestStore(t)

	require.NoError(t, s.Send(act{Kind: "debounce"}))
	clk.Advance(500 * time.Millisecond)
	require.NoError(t, s.Send(act{Kind: "debounce"}))
	clk.Advance(500 * time.Millisecond)
	assert.Zero(t, s.State().Fired, "restarted window has not elapsed")

	clk.Advance(500 * time.Millisecond)
	assert.Equal(t, 1, s.State().Fired)

	clk.Advance(time.Hour)
	assert.Equal(t, 1, s.State().Fired, "never fires twice")
}

func TestStore_CancelStopsPendingEffect(t *testing.T) {
	s, clk := newTestStore(t)

	require.NoError(t, s.Send(act{Kind: "debounce"}))
	require.NoError(t, s.Send(act{Kind: "cancel"}))
	require.NoError(t, s.Send(act{Kind: "cancel"}))

	clk.Advance(time.Hour)
	assert.Zero(t, s.State().Fired)
}

func TestStore_DeterministicUnderVirtualClock(t *testing.T) {
	run := func() []string {
		s, clk := newTestStore(t)
		for i := 0; i < 3; i++ {
			require.NoError(t, s.Send(act{Kind: "debounce"}))
			require.NoError(t, s.Send(act{Kind: "delay"}))
			clk.Advance(700 * time.Millisecond)
		}
		clk.Run()
		return s.State().Log
	}

	assert.Equal(t, run(), run())
}

func TestStore_Close(t *testing.T) {
	s, clk := newTestStore(t)

	require.NoError(t, s.Send(act{Kind: "delay"}))
	s.Close()

	assert.ErrorIs(t, s.Send(act{Kind: "inc", N: 1}), ErrClosed)
	clk.Advance(time.Hour)
	assert.Zero(t, s.State().Fired, "in-flight effects cancelled")
	assert.Zero(t, s.InFlight())
}

func TestStore_ConcurrentSenders(t *testing.T) {
	s := New[counter, act](counter{}, counterReducer, WithLogger(discardLogger()))
	defer s.Close()

	const senders = 50
	var wg sync.WaitGroup
	wg.Add(senders)
	for i := 0; i < senders; i++ {
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Send(act{Kind: "inc", N: 1}))
		}()
	}
	wg.Wait()

	assert.Equal(t, senders, s.State().Count)
}

func TestStore_SnapshotsAreIndependent(t *testing.T) {
	type list struct {
		Items identified.Array[int, int]
	}
	identity := func(v int) int { return v }
	initial := list{Items: identified.New(identity)}

	appendReducer := func(state *list, v int) (effect.Effect[int], error) {
		return effect.None[int](), state.Items.Append(v)
	}

	s := New[list, int](initial, appendReducer, WithLogger(discardLogger()))
	defer s.Close()

	require.NoError(t, s.Send(1))
	snapshot := s.State()
	require.NoError(t, s.Send(2))

	assert.Equal(t, []int{1}, snapshot.Items.Values(), "earlier snapshot unchanged")
	assert.Equal(t, []int{1, 2}, s.State().Items.Values())

	err := s.Send(2)
	require.ErrorIs(t, err, identified.ErrDuplicateID)
	assert.Equal(t, []int{1, 2}, s.State().Items.Values())
}

func TestActionQueue_DrainerRole(t *testing.T) {
	q := newActionQueue[int]()

	drain, ok := q.Enqueue(1)
	require.True(t, ok)
	assert.True(t, drain, "first sender drains")

	drain, ok = q.Enqueue(2)
	require.True(t, ok)
	assert.False(t, drain, "queue already has a drainer")
	assert.Equal(t, 2, q.Len())

	for _, want := range []int{1, 2} {
		got, ok := q.Next()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok = q.Next()
	assert.False(t, ok)

	drain, _ = q.Enqueue(3)
	assert.True(t, drain, "role released once empty")

	q.Close()
	_, ok = q.Enqueue(4)
	assert.False(t, ok)
	got, ok := q.Next()
	require.True(t, ok, "queued actions survive close")
	assert.Equal(t, 3, got)
}
