// Package todos is the todo-list application built on the store runtime.
//
// The application state is a filterable, reorderable list of todos. Each
// todo row has its own small reducer (toggle, edit text) lifted over the
// list with reducer.ForEach; the app reducer handles list-level actions and
// keeps completed todos sorted after incomplete ones. Sorting after a toggle
// is debounced so rapid toggles settle before rows jump around.
package todos

import (
	"github.com/google/uuid"

	"github.com/roach88/reflux/internal/effect"
)

// Todo is one row of the list.
type Todo struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	IsComplete  bool      `json:"is_complete"`
}

func todoID(t Todo) uuid.UUID { return t.ID }

// RowAction is an action addressed to a single todo.
type RowAction interface {
	isRowAction()
}

// CheckBoxToggled flips the todo's completion.
type CheckBoxToggled struct{}

// TextFieldChanged replaces the todo's description.
type TextFieldChanged struct {
	Text string
}

func (CheckBoxToggled) isRowAction()  {}
func (TextFieldChanged) isRowAction() {}

// rowReducer applies a RowAction to one todo. Rows never schedule work of
// their own; the re-sort a toggle triggers is owned by the app reducer.
func rowReducer(state *Todo, action RowAction) (effect.Effect[RowAction], error) {
	switch a := action.(type) {
	case CheckBoxToggled:
		state.IsComplete = !state.IsComplete
	case TextFieldChanged:
		state.Description = a.Text
	}
	return effect.None[RowAction](), nil
}
