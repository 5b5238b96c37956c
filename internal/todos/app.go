package todos

import (
	"github.com/google/uuid"

	"github.com/roach88/reflux/internal/store"
)

// NewStore creates the application store.
func NewStore(initial State, env Environment, opts ...store.Option) *store.Store[State, Action] {
	return store.New(initial, NewReducer(env), opts...)
}

// Chrome scopes s to the list chrome: filter picker, edit button and
// clear-completed button.
func Chrome(s store.StoreOf[State, Action]) *store.Scoped[ViewState, Action] {
	return store.Scope(s, State.View, func(a Action) Action { return a })
}

// Rows returns one row store per todo visible under the current filter,
// in display order. Row sends are addressed by todo ID.
func Rows(s store.StoreOf[State, Action]) []*store.Element[uuid.UUID, Todo, RowAction] {
	return store.ForEach(s,
		func(st State) Todos { return st.Todos.Where(st.Filter.Matches) },
		todoCase.Embed,
	)
}
