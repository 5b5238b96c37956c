package todos

import "github.com/google/uuid"

// Action is any action the todo application accepts.
type Action interface {
	isAction()
}

// AddTodoTapped inserts a new empty todo at the top of the list.
type AddTodoTapped struct{}

// ClearCompletedTapped removes every completed todo.
type ClearCompletedTapped struct{}

// Delete removes the todos at Offsets. Offsets are positions in the
// filtered list the user sees.
type Delete struct {
	Offsets []int
}

// EditModeChanged sets the list's edit mode.
type EditModeChanged struct {
	Mode EditMode
}

// FilterPicked changes the filter.
type FilterPicked struct {
	Filter Filter
}

// Move reorders the todos at Source to before Destination. Both are
// positions in the filtered list the user sees.
type Move struct {
	Source      []int
	Destination int
}

// SortCompletedTodos moves completed todos after incomplete ones.
type SortCompletedTodos struct{}

// TodoAction addresses a RowAction to the todo with the given ID.
type TodoAction struct {
	ID     uuid.UUID
	Action RowAction
}

func (AddTodoTapped) isAction()        {}
func (ClearCompletedTapped) isAction() {}
func (Delete) isAction()               {}
func (EditModeChanged) isAction()      {}
func (FilterPicked) isAction()         {}
func (Move) isAction()                 {}
func (SortCompletedTodos) isAction()   {}
func (TodoAction) isAction()           {}
