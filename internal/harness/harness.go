package harness

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/roach88/reflux/internal/clock"
	"github.com/roach88/reflux/internal/effect"
	"github.com/roach88/reflux/internal/reducer"
	"github.com/roach88/reflux/internal/store"
	"github.com/roach88/reflux/internal/testutil"
	"github.com/roach88/reflux/internal/todos"
)

// Epoch is the virtual clock's start time for every scenario.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Option configures a scenario run.
type Option func(*config)

type config struct {
	logger *slog.Logger
	env    todos.Environment
}

// WithLogger routes store and scheduler logs to l. Runs are silent by default.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSortDelays overrides the post-toggle and post-move sort delays.
func WithSortDelays(sort, move time.Duration) Option {
	return func(c *config) {
		c.env.SortDelay = sort
		c.env.MoveSortDelay = move
	}
}

// Harness holds the state of one scenario run.
type Harness struct {
	store  *store.Store[todos.State, todos.Action]
	clock  *clock.Virtual
	logger *slog.Logger

	mu     sync.Mutex
	result *Result
}

// Run executes a scenario and returns the result.
//
// Each run gets a fresh store on a virtual clock starting at Epoch, and a
// sequential ID generator numbered after the highest seed, so identical
// scenarios produce identical traces.
//
// Execution flow:
// 1. Build the initial state from the seeds and filter
// 2. Execute steps in order (sends and clock advances)
// 3. Snapshot the final state
// 4. Evaluate assertions against trace and state
//
// Pending effects are not flushed; a scenario that wants them to fire
// advances the clock explicitly.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	cfg := config{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		env:    todos.DefaultEnvironment(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	initial, maxID, err := initialState(scenario)
	if err != nil {
		return nil, err
	}
	cfg.env.IDs = testutil.NewSequentialUUIDsAfter(maxID)

	h := &Harness{
		clock:  clock.NewVirtual(Epoch),
		logger: cfg.logger,
		result: NewResult(),
	}

	root := reducer.Combine[todos.State, todos.Action](h.record, todos.NewReducer(cfg.env))
	h.store = store.New(initial, root,
		store.WithClock(h.clock),
		store.WithLogger(cfg.logger),
		store.WithErrorHandler(h.effectFailed),
	)
	defer h.store.Close()

	for i, step := range scenario.Steps {
		if err := h.execute(i, step); err != nil {
			return nil, err
		}
	}

	state := h.store.State()
	h.result.State = snapshot(state, h.store.InFlight())

	for _, msg := range EvaluateAssertions(h.result, scenario.Assertions, state) {
		h.result.AddError(msg)
	}

	h.logger.Info("scenario finished",
		"scenario", scenario.Name,
		"pass", h.result.Pass,
		"trace_len", len(h.result.Trace),
	)
	return h.result, nil
}

// initialState seeds the todo list and returns the highest seed number.
func initialState(s *Scenario) (todos.State, uint64, error) {
	var maxID uint64
	seeds := make([]todos.Todo, 0, len(s.Initial))
	for _, seed := range s.Initial {
		seeds = append(seeds, todos.Todo{
			ID:          testutil.Seq(seed.ID),
			Description: seed.Description,
			IsComplete:  seed.Complete,
		})
		maxID = max(maxID, seed.ID)
	}

	state, err := todos.NewState(seeds...)
	if err != nil {
		return todos.State{}, 0, fmt.Errorf("initial: %w", err)
	}

	if s.Filter != "" {
		f, err := todos.ParseFilter(s.Filter)
		if err != nil {
			return todos.State{}, 0, fmt.Errorf("filter: %w", err)
		}
		state.Filter = f
	}
	return state, maxID, nil
}

// execute runs one step. Step failures are recorded on the result; only
// malformed steps are returned as errors.
func (h *Harness) execute(i int, step Step) error {
	if step.Advance != "" {
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return fmt.Errorf("step %d: advance: %w", i, err)
		}
		h.clock.Advance(d)
		h.logger.Debug("clock advanced", "step", i, "by", d, "elapsed", h.elapsed())
		return nil
	}

	action, err := DecodeAction(step.Send, step.Args)
	if err != nil {
		return fmt.Errorf("step %d: %w", i, err)
	}

	err = h.store.Send(action)
	switch {
	case step.ExpectError == "" && err != nil:
		h.addError(fmt.Sprintf("step %d (%s): unexpected error: %v", i, step.Send, err))
	case step.ExpectError != "" && err == nil:
		h.addError(fmt.Sprintf("step %d (%s): expected error containing %q, got none", i, step.Send, step.ExpectError))
	case step.ExpectError != "" && !strings.Contains(err.Error(), step.ExpectError):
		h.addError(fmt.Sprintf("step %d (%s): expected error containing %q, got %q", i, step.Send, step.ExpectError, err.Error()))
	}

	h.logger.Debug("step completed", "step", i, "action", step.Send, "error", err)
	return nil
}

// record is combined ahead of the application reducer so every processed
// action is traced, including ones the application reducer rejects.
func (h *Harness) record(_ *todos.State, action todos.Action) (effect.Effect[todos.Action], error) {
	name, args := EncodeAction(action)

	h.mu.Lock()
	h.result.AddTrace(h.elapsed().String(), name, args)
	h.mu.Unlock()

	return effect.None[todos.Action](), nil
}

// effectFailed records errors from actions dispatched by effects, which
// have no caller to return to.
func (h *Harness) effectFailed(action any, err error) {
	name := fmt.Sprintf("%T", action)
	if a, ok := action.(todos.Action); ok {
		name, _ = EncodeAction(a)
	}
	h.addError(fmt.Sprintf("effect action %s at %s: %v", name, h.elapsed(), err))
}

func (h *Harness) addError(msg string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.result.AddError(msg)
}

func (h *Harness) elapsed() time.Duration {
	return h.clock.Now().Sub(Epoch)
}

// snapshot renders the final state as plain values for assertions, golden
// files and CLI output.
func snapshot(s todos.State, pending int) map[string]any {
	list := make([]any, 0, s.Todos.Len())
	for _, t := range s.Todos.Values() {
		list = append(list, todoFields(t, len(list)))
	}
	return map[string]any{
		"filter":                   strings.ToLower(s.Filter.String()),
		"edit_mode":                s.EditMode.String(),
		"clear_completed_disabled": s.ClearCompletedDisabled(),
		"count":                    int64(s.Todos.Len()),
		"visible":                  int64(s.FilteredTodos().Len()),
		"pending_effects":          int64(pending),
		"todos":                    list,
	}
}

func todoFields(t todos.Todo, position int) map[string]any {
	return map[string]any{
		"id":          idValue(t.ID),
		"description": t.Description,
		"complete":    t.IsComplete,
		"position":    int64(position),
	}
}
