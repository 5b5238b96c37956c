package harness

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/roach88/reflux/internal/testutil"
	"github.com/roach88/reflux/internal/todos"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s %v\n", event.Seq, event.At, event.Action, event.Args)
		}
	}

	return buf.String()
}

// assertTraceContains checks if the trace contains an action matching
// the specified name and args (subset match).
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if event.Action == assertion.Action && matchArgs(event.Args, assertion.Args) {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("action %s with args %v", assertion.Action, assertion.Args),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks if actions appear in the specified order.
// Actions don't need to be consecutive (intervening actions are allowed),
// and a name may repeat: each expected entry must match a later event than
// the previous one.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	pos := 0
	prev := -1
	for i, want := range assertion.Actions {
		for pos < len(trace) && trace[pos].Action != want {
			pos++
		}
		if pos == len(trace) {
			actual := fmt.Sprintf("missing action: %s", want)
			if i > 0 {
				actual = fmt.Sprintf("%s not found after %s (pos %d)", want, assertion.Actions[i-1], prev+1)
			}
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("actions in order: %v", assertion.Actions),
				Actual:   actual,
				Trace:    trace,
			}
		}
		prev = pos
		pos++
	}
	return nil
}

// assertTraceCount checks if the action appears exactly the specified number of times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Action == assertion.Action {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Action),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertFinalOrder compares todo descriptions in list order.
func assertFinalOrder(state todos.State, assertion Assertion) error {
	var got []string
	if assertion.Visible {
		for _, t := range state.FilteredTodos().Values() {
			got = append(got, t.Description)
		}
	} else {
		for _, t := range state.Todos.Values() {
			got = append(got, t.Description)
		}
	}
	if got == nil {
		got = []string{}
	}

	if !reflect.DeepEqual(got, assertion.Order) {
		scope := "list"
		if assertion.Visible {
			scope = "visible list"
		}
		return &AssertionError{
			Type:     AssertFinalOrder,
			Expected: fmt.Sprintf("%s %q", scope, assertion.Order),
			Actual:   fmt.Sprintf("%q", got),
		}
	}
	return nil
}

// assertFinalState checks list-level fields, or one todo's fields when
// assertion.Todo is set, using subset semantics.
func assertFinalState(snap map[string]any, state todos.State, assertion Assertion) error {
	actual := snap
	subject := "state"
	if assertion.Todo != 0 {
		subject = fmt.Sprintf("todo %d", assertion.Todo)
		i, ok := state.Todos.Index(testutil.Seq(assertion.Todo))
		if !ok {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: subject + " to exist",
				Actual:   "todo not found",
			}
		}
		actual = todoFields(state.Todos.At(i), i)
	}

	for _, key := range sortedKeys(assertion.Expect) {
		want := assertion.Expect[key]
		got, exists := actual[key]
		if !exists {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("%s field %q to exist", subject, key),
				Actual:   fmt.Sprintf("fields: %v", sortedKeys(actual)),
			}
		}
		if !valuesEqual(got, want) {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("%s field %q = %v", subject, key, want),
				Actual:   fmt.Sprintf("%s field %q = %v", subject, key, got),
			}
		}
	}
	return nil
}

// matchArgs checks if actual args contain all expected args (subset match).
// Extra keys in actual are ignored.
func matchArgs(actual, expected map[string]any) bool {
	for key, want := range expected {
		got, exists := actual[key]
		if !exists || !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

// valuesEqual compares decoded scenario values with harness values.
// Integers compare by value regardless of Go type.
func valuesEqual(actual, expected any) bool {
	return reflect.DeepEqual(normalize(actual), normalize(expected))
}

func normalize(v any) any {
	if n, ok := toInt64(v); ok {
		return n
	}
	switch val := v.(type) {
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = normalize(elem)
		}
		return out
	case []string:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = elem
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = normalize(elem)
		}
		return out
	}
	return v
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EvaluateAssertions evaluates all assertions against the result and the
// final state. Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, state todos.State) []string {
	var errors []string

	snap := result.State
	if len(snap) == 0 {
		snap = snapshot(state, 0)
	}

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertFinalOrder:
			err = assertFinalOrder(state, assertion)
		case AssertFinalState:
			err = assertFinalState(snap, state, assertion)
		default:
			err = fmt.Errorf("unknown assertion type %q", assertion.Type)
		}

		if err != nil {
			errors = append(errors, fmt.Sprintf("assertion[%d]: %v", i, err))
		}
	}

	return errors
}
