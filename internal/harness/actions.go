package harness

import (
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/roach88/reflux/internal/testutil"
	"github.com/roach88/reflux/internal/todos"
)

// Action names used by scenario steps and trace events.
const (
	ActAddTodoTapped        = "addTodoTapped"
	ActClearCompletedTapped = "clearCompletedTapped"
	ActDelete               = "delete"
	ActEditModeChanged      = "editModeChanged"
	ActFilterPicked         = "filterPicked"
	ActMove                 = "move"
	ActSortCompletedTodos   = "sortCompletedTodos"
	ActTodo                 = "todo"

	RowCheckBoxToggled  = "checkBoxToggled"
	RowTextFieldChanged = "textFieldChanged"
)

// ActionNames lists every action a step may send.
var ActionNames = []string{
	ActAddTodoTapped,
	ActClearCompletedTapped,
	ActDelete,
	ActEditModeChanged,
	ActFilterPicked,
	ActMove,
	ActSortCompletedTodos,
	ActTodo,
}

// DecodeAction builds a todos action from a step's name and args.
// Todo IDs in args are small integers, the same numbers used for seeds.
func DecodeAction(name string, args map[string]any) (todos.Action, error) {
	a := argReader{action: name, args: args}

	var action todos.Action
	switch name {
	case ActAddTodoTapped:
		action = todos.AddTodoTapped{}
	case ActClearCompletedTapped:
		action = todos.ClearCompletedTapped{}
	case ActSortCompletedTodos:
		action = todos.SortCompletedTodos{}

	case ActDelete:
		action = todos.Delete{Offsets: a.integers("offsets")}

	case ActEditModeChanged:
		mode, err := todos.ParseEditMode(a.text("mode"))
		if err != nil && a.err == nil {
			a.err = fmt.Errorf("%s: %w", name, err)
		}
		action = todos.EditModeChanged{Mode: mode}

	case ActFilterPicked:
		f, err := todos.ParseFilter(a.text("filter"))
		if err != nil && a.err == nil {
			a.err = fmt.Errorf("%s: %w", name, err)
		}
		action = todos.FilterPicked{Filter: f}

	case ActMove:
		action = todos.Move{Source: a.integers("source"), Destination: a.integer("destination")}

	case ActTodo:
		id := testutil.Seq(uint64(a.integer("id")))
		switch row := a.text("action"); row {
		case RowCheckBoxToggled:
			action = todos.TodoAction{ID: id, Action: todos.CheckBoxToggled{}}
		case RowTextFieldChanged:
			action = todos.TodoAction{ID: id, Action: todos.TextFieldChanged{Text: a.optText("text")}}
		default:
			if a.err == nil {
				a.err = fmt.Errorf("%s: unknown row action %q", name, row)
			}
		}

	default:
		return nil, fmt.Errorf("unknown action %q (want one of %s)", name, strings.Join(ActionNames, ", "))
	}

	if a.err != nil {
		return nil, a.err
	}
	return action, nil
}

// EncodeAction is the inverse of DecodeAction, used for trace events.
// Args are nil for actions without payload.
func EncodeAction(action todos.Action) (string, map[string]any) {
	switch a := action.(type) {
	case todos.AddTodoTapped:
		return ActAddTodoTapped, nil
	case todos.ClearCompletedTapped:
		return ActClearCompletedTapped, nil
	case todos.SortCompletedTodos:
		return ActSortCompletedTodos, nil
	case todos.Delete:
		return ActDelete, map[string]any{"offsets": intList(a.Offsets)}
	case todos.EditModeChanged:
		return ActEditModeChanged, map[string]any{"mode": a.Mode.String()}
	case todos.FilterPicked:
		return ActFilterPicked, map[string]any{"filter": strings.ToLower(a.Filter.String())}
	case todos.Move:
		return ActMove, map[string]any{
			"source":      intList(a.Source),
			"destination": int64(a.Destination),
		}
	case todos.TodoAction:
		args := map[string]any{"id": idValue(a.ID)}
		switch row := a.Action.(type) {
		case todos.CheckBoxToggled:
			args["action"] = RowCheckBoxToggled
		case todos.TextFieldChanged:
			args["action"] = RowTextFieldChanged
			args["text"] = row.Text
		}
		return ActTodo, args
	}
	return fmt.Sprintf("%T", action), nil
}

// idValue renders sequential IDs as their number and any other ID as its
// string form.
func idValue(id uuid.UUID) any {
	if binary.BigEndian.Uint64(id[:8]) == 0 {
		return int64(binary.BigEndian.Uint64(id[8:]))
	}
	return id.String()
}

func intList(xs []int) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = int64(x)
	}
	return out
}

// argReader pulls typed values out of a decoded YAML or CUE map. The first
// failure is kept in err and later reads return zero values.
type argReader struct {
	action string
	args   map[string]any
	err    error
}

func (r *argReader) fail(key, format string, v ...any) {
	if r.err == nil {
		r.err = fmt.Errorf("%s: arg %q: %s", r.action, key, fmt.Sprintf(format, v...))
	}
}

func (r *argReader) lookup(key string) (any, bool) {
	v, ok := r.args[key]
	if !ok {
		keys := make([]string, 0, len(r.args))
		for k := range r.args {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		r.fail(key, "required (got %v)", keys)
	}
	return v, ok
}

func (r *argReader) text(key string) string {
	v, ok := r.lookup(key)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.fail(key, "want string, got %T", v)
	}
	return s
}

func (r *argReader) optText(key string) string {
	if _, ok := r.args[key]; !ok {
		return ""
	}
	return r.text(key)
}

func (r *argReader) integer(key string) int {
	v, ok := r.lookup(key)
	if !ok {
		return 0
	}
	n, ok := toInt64(v)
	if !ok {
		r.fail(key, "want integer, got %T", v)
	}
	return int(n)
}

func (r *argReader) integers(key string) []int {
	v, ok := r.lookup(key)
	if !ok {
		return nil
	}
	list, ok := v.([]any)
	if !ok {
		r.fail(key, "want list of integers, got %T", v)
		return nil
	}
	out := make([]int, 0, len(list))
	for i, elem := range list {
		n, ok := toInt64(elem)
		if !ok {
			r.fail(key, "[%d]: want integer, got %T", i, elem)
			return nil
		}
		out = append(out, int(n))
	}
	return out
}

// toInt64 accepts the integer shapes produced by yaml.v3 and CUE decoding.
// Floats are accepted only when integral.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case float64:
		if n == float64(int64(n)) {
			return int64(n), true
		}
	}
	return 0, false
}
