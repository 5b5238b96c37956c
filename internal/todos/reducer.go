package todos

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/reflux/internal/effect"
	"github.com/roach88/reflux/internal/reducer"
)

const (
	// DefaultSortDelay is how long a toggle waits for further toggles before
	// the list is re-sorted.
	DefaultSortDelay = time.Second

	// DefaultMoveSortDelay is how long after a manual move the list is
	// re-sorted.
	DefaultMoveSortDelay = 100 * time.Millisecond
)

// Environment holds the application's dependencies.
type Environment struct {
	IDs           IDGenerator
	SortDelay     time.Duration
	MoveSortDelay time.Duration
}

// DefaultEnvironment returns the production environment.
func DefaultEnvironment() Environment {
	return Environment{
		IDs:           UUIDv7Generator{},
		SortDelay:     DefaultSortDelay,
		MoveSortDelay: DefaultMoveSortDelay,
	}
}

func (env Environment) withDefaults() Environment {
	if env.IDs == nil {
		env.IDs = UUIDv7Generator{}
	}
	if env.SortDelay <= 0 {
		env.SortDelay = DefaultSortDelay
	}
	if env.MoveSortDelay <= 0 {
		env.MoveSortDelay = DefaultMoveSortDelay
	}
	return env
}

// sortDebounceID keys the post-toggle sort. It is shared by every row, so
// toggles on different todos restart the same window.
type sortDebounceID struct{}

func (sortDebounceID) String() string { return "sort-completed-todos" }

var todosLens = reducer.Lens[State, Todos]{
	Get: func(s *State) *Todos { return &s.Todos },
}

var todoCase = reducer.ElementCase[Action, uuid.UUID, RowAction]{
	Extract: func(a Action) (uuid.UUID, RowAction, bool) {
		ta, ok := a.(TodoAction)
		if !ok || ta.Action == nil {
			return uuid.Nil, nil, false
		}
		return ta.ID, ta.Action, true
	},
	Embed: func(id uuid.UUID, a RowAction) Action {
		return TodoAction{ID: id, Action: a}
	},
}

// NewReducer returns the root reducer: row actions first, then the list.
func NewReducer(env Environment) reducer.Reducer[State, Action] {
	env = env.withDefaults()
	return reducer.Combine(
		reducer.ForEach(reducer.Reducer[Todo, RowAction](rowReducer), todosLens, todoCase),
		listReducer(env),
	)
}

func listReducer(env Environment) reducer.Reducer[State, Action] {
	return func(state *State, action Action) (effect.Effect[Action], error) {
		switch a := action.(type) {
		case AddTodoTapped:
			if err := state.Todos.Insert(Todo{ID: env.IDs.Generate()}, 0); err != nil {
				return effect.None[Action](), fmt.Errorf("add todo: %w", err)
			}
			return effect.None[Action](), nil

		case ClearCompletedTapped:
			state.Todos.RemoveAll(func(t Todo) bool { return t.IsComplete })
			return effect.None[Action](), nil

		case Delete:
			if err := state.Todos.RemoveInView(state.FilteredTodos(), a.Offsets); err != nil {
				return effect.None[Action](), fmt.Errorf("delete: %w", err)
			}
			return effect.None[Action](), nil

		case EditModeChanged:
			state.EditMode = a.Mode
			return effect.None[Action](), nil

		case FilterPicked:
			state.Filter = a.Filter
			return effect.None[Action](), nil

		case Move:
			if err := move(state, a); err != nil {
				return effect.None[Action](), fmt.Errorf("move: %w", err)
			}
			return effect.Delay[Action](SortCompletedTodos{}, env.MoveSortDelay), nil

		case SortCompletedTodos:
			sortCompleted(&state.Todos)
			return effect.None[Action](), nil

		case TodoAction:
			if !state.Todos.Contains(a.ID) {
				return effect.None[Action](), nil
			}
			if _, ok := a.Action.(CheckBoxToggled); ok {
				return effect.Debounce[Action](SortCompletedTodos{}, env.SortDelay, sortDebounceID{}), nil
			}
			return effect.None[Action](), nil
		}

		return effect.None[Action](), nil
	}
}

// move applies a Move. Under the All filter offsets are storage offsets;
// otherwise they are remapped through the filtered view.
func move(state *State, a Move) error {
	if state.Filter == FilterAll {
		return state.Todos.Move(a.Source, a.Destination)
	}
	return state.Todos.MoveInView(state.FilteredTodos(), a.Source, a.Destination)
}

// sortCompleted stably orders incomplete todos before completed ones.
func sortCompleted(todos *Todos) {
	todos.Sort(func(x, y Todo) bool {
		return !x.IsComplete && y.IsComplete
	})
}
