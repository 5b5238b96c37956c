package todos

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/reflux/internal/identified"
)

// Filter selects which todos the list shows.
type Filter int

const (
	FilterAll Filter = iota
	FilterActive
	FilterCompleted
)

// Filters lists every filter in picker order.
var Filters = []Filter{FilterAll, FilterActive, FilterCompleted}

func (f Filter) String() string {
	switch f {
	case FilterAll:
		return "All"
	case FilterActive:
		return "Active"
	case FilterCompleted:
		return "Completed"
	default:
		return fmt.Sprintf("Filter(%d)", int(f))
	}
}

// Matches reports whether t is shown under f.
func (f Filter) Matches(t Todo) bool {
	switch f {
	case FilterActive:
		return !t.IsComplete
	case FilterCompleted:
		return t.IsComplete
	default:
		return true
	}
}

// ParseFilter parses a filter name, case-insensitively.
func ParseFilter(s string) (Filter, error) {
	for _, f := range Filters {
		if strings.EqualFold(s, f.String()) {
			return f, nil
		}
	}
	return FilterAll, fmt.Errorf("unknown filter %q (expected All, Active or Completed)", s)
}

func (f Filter) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *Filter) UnmarshalText(text []byte) error {
	parsed, err := ParseFilter(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// EditMode is the list's editing state.
type EditMode int

const (
	EditModeInactive EditMode = iota
	EditModeTransient
	EditModeActive
)

func (m EditMode) String() string {
	switch m {
	case EditModeInactive:
		return "inactive"
	case EditModeTransient:
		return "transient"
	case EditModeActive:
		return "active"
	default:
		return fmt.Sprintf("EditMode(%d)", int(m))
	}
}

// ParseEditMode parses an edit mode name, case-insensitively.
func ParseEditMode(s string) (EditMode, error) {
	for _, m := range []EditMode{EditModeInactive, EditModeTransient, EditModeActive} {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return EditModeInactive, fmt.Errorf("unknown edit mode %q (expected inactive, transient or active)", s)
}

func (m EditMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *EditMode) UnmarshalText(text []byte) error {
	parsed, err := ParseEditMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Todos is the list type held in State.
type Todos = identified.Array[uuid.UUID, Todo]

// State is the whole application state.
type State struct {
	EditMode EditMode
	Filter   Filter
	Todos    Todos
}

// NewState returns a state holding todos in order.
// Returns identified.ErrDuplicateID if two todos share an ID.
func NewState(todos ...Todo) (State, error) {
	list, err := identified.Of(todoID, todos...)
	if err != nil {
		return State{}, err
	}
	return State{Todos: list}, nil
}

// FilteredTodos returns the todos visible under the current filter.
func (s State) FilteredTodos() identified.View[uuid.UUID, Todo] {
	return s.Todos.Filter(s.Filter.Matches)
}

// ClearCompletedDisabled reports whether there is nothing to clear.
func (s State) ClearCompletedDisabled() bool {
	for _, t := range s.Todos.Values() {
		if t.IsComplete {
			return false
		}
	}
	return true
}

// ViewState is the slice of State the list chrome renders.
type ViewState struct {
	EditMode                       EditMode
	Filter                         Filter
	IsClearCompletedButtonDisabled bool
}

// View derives the ViewState of s.
func (s State) View() ViewState {
	return ViewState{
		EditMode:                       s.EditMode,
		Filter:                         s.Filter,
		IsClearCompletedButtonDisabled: s.ClearCompletedDisabled(),
	}
}
