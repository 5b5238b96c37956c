// Package harness runs scripted scenarios against the todo application.
//
// A scenario seeds the list, sends actions and advances a virtual clock,
// then asserts on the trace of processed actions and on the final state.
// Every run is deterministic: the clock starts at Epoch, todo IDs come from
// a sequential generator, and effects only fire when a step advances time.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: toggle_then_sort
//	description: "A toggled todo sinks after the sort delay"
//	initial:
//	  - { id: 1, description: Milk }
//	  - { id: 2, description: Eggs }
//	steps:
//	  - send: todo
//	    args: { id: 1, action: checkBoxToggled }
//	  - advance: 1s
//	assertions:
//	  - type: final_order
//	    order: [Eggs, Milk]
//	  - type: trace_count
//	    action: sortCompletedTodos
//	    count: 1
//
// Files ending in .cue use the same fields and are checked against the
// embedded CUE schema (schema.cue) before decoding.
//
// # Actions
//
// Steps name actions as addTodoTapped, clearCompletedTapped, delete
// {offsets}, editModeChanged {mode}, filterPicked {filter}, move {source,
// destination}, sortCompletedTodos and todo {id, action, text}. Todo IDs
// are the seed numbers; todos added during the run are numbered after the
// highest seed.
//
// # Assertion Types
//
//   - trace_contains: an action appears in the trace with matching args
//   - trace_order: actions appear in the given order
//   - trace_count: an action appears exactly N times
//   - final_order: todo descriptions in list (or visible) order
//   - final_state: list fields, or one todo's fields, match expected values
//
// # Golden Files
//
// RunWithGolden serializes the trace and final state as canonical JSON
// (RFC 8785 key order, NFC strings) and compares it with
// testdata/golden/<name>.golden using goldie.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/toggle_sort.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, msg := range result.Errors {
//	        fmt.Println(msg)
//	    }
//	}
package harness
