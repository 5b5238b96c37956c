package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/reflux/internal/todos"
)

// Scenario drives the todo application through a sequence of sends and
// clock advances, then asserts on the trace and the final state.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name" json:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description" json:"description"`

	// Initial seeds the todo list, top to bottom.
	Initial []Seed `yaml:"initial,omitempty" json:"initial,omitempty"`

	// Filter is the initial filter ("all", "active" or "completed").
	Filter string `yaml:"filter,omitempty" json:"filter,omitempty"`

	// Steps run in order on a virtual clock.
	Steps []Step `yaml:"steps" json:"steps"`

	// Assertions validate the final trace and state.
	// Supported types: trace_contains, trace_order, trace_count, final_order, final_state
	Assertions []Assertion `yaml:"assertions" json:"assertions"`
}

// Seed is one initial todo. ID is a small positive integer; the harness
// expands it to a sequential UUID and new todos are numbered after the
// highest seed.
type Seed struct {
	ID          uint64 `yaml:"id" json:"id"`
	Description string `yaml:"description" json:"description"`
	Complete    bool   `yaml:"complete,omitempty" json:"complete,omitempty"`
}

// Step is either a send or a clock advance.
type Step struct {
	// Send is the action name (see ActionNames).
	Send string `yaml:"send,omitempty" json:"send,omitempty"`

	// Args are the action's arguments.
	Args map[string]any `yaml:"args,omitempty" json:"args,omitempty"`

	// Advance moves the virtual clock forward by a Go duration ("1s", "250ms").
	Advance string `yaml:"advance,omitempty" json:"advance,omitempty"`

	// ExpectError makes the step pass only if Send fails with an error
	// containing this text.
	ExpectError string `yaml:"expect_error,omitempty" json:"expect_error,omitempty"`
}

// Assertion validates trace or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": action appears in the trace with matching args
	// - "trace_order": actions appear in the given order
	// - "trace_count": action appears exactly Count times
	// - "final_order": todo descriptions in list order equal Order
	// - "final_state": state fields (or one todo's fields) equal Expect
	Type string `yaml:"type" json:"type"`

	// Action is the action name (trace_contains, trace_count).
	Action string `yaml:"action,omitempty" json:"action,omitempty"`

	// Args are the expected arguments (trace_contains).
	// Subset match - only specified fields are validated.
	Args map[string]any `yaml:"args,omitempty" json:"args,omitempty"`

	// Count is the expected number of occurrences (trace_count).
	Count int `yaml:"count,omitempty" json:"count,omitempty"`

	// Actions is the expected action order (trace_order).
	Actions []string `yaml:"actions,omitempty" json:"actions,omitempty"`

	// Order is the expected description order (final_order).
	Order []string `yaml:"order,omitempty" json:"order,omitempty"`

	// Visible makes final_order compare the filtered list instead of the
	// whole list.
	Visible bool `yaml:"visible,omitempty" json:"visible,omitempty"`

	// Todo selects one todo by seed number (final_state). Zero selects
	// the list-level fields.
	Todo uint64 `yaml:"todo,omitempty" json:"todo,omitempty"`

	// Expect contains expected field values (final_state).
	// Subset match - only specified fields are validated.
	Expect map[string]any `yaml:"expect,omitempty" json:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalOrder    = "final_order"
	AssertFinalState    = "final_state"
)

// LoadScenario reads and parses a scenario file. Files ending in .cue are
// evaluated against the embedded CUE schema; everything else is YAML.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario *Scenario
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		scenario, err = ParseCUE(path, data)
	} else {
		scenario, err = ParseYAML(data)
	}
	if err != nil {
		return nil, err
	}
	return scenario, nil
}

// ParseYAML parses and validates a YAML scenario.
func ParseYAML(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if s.Filter != "" {
		if _, err := todos.ParseFilter(s.Filter); err != nil {
			return fmt.Errorf("filter: %w", err)
		}
	}

	seen := make(map[uint64]bool, len(s.Initial))
	for i, seed := range s.Initial {
		if seed.ID == 0 {
			return fmt.Errorf("initial[%d]: id must be a positive integer", i)
		}
		if seen[seed.ID] {
			return fmt.Errorf("initial[%d]: duplicate id %d", i, seed.ID)
		}
		seen[seed.ID] = true
	}

	for i, step := range s.Steps {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}

	return nil
}

func validateStep(step Step) error {
	switch {
	case step.Send != "" && step.Advance != "":
		return fmt.Errorf("send and advance are mutually exclusive")
	case step.Send != "":
		_, err := DecodeAction(step.Send, step.Args)
		return err
	case step.Advance != "":
		if len(step.Args) > 0 || step.ExpectError != "" {
			return fmt.Errorf("advance takes no args or expect_error")
		}
		d, err := time.ParseDuration(step.Advance)
		if err != nil {
			return fmt.Errorf("advance: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("advance: negative duration %s", step.Advance)
		}
		return nil
	default:
		return fmt.Errorf("one of send or advance is required")
	}
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertTraceContains:
		if a.Action == "" {
			return fmt.Errorf("trace_contains requires action")
		}
	case AssertTraceCount:
		if a.Action == "" {
			return fmt.Errorf("trace_count requires action")
		}
		if a.Count < 0 {
			return fmt.Errorf("trace_count requires a non-negative count")
		}
	case AssertTraceOrder:
		if len(a.Actions) < 2 {
			return fmt.Errorf("trace_order requires at least two actions")
		}
	case AssertFinalOrder:
		if a.Order == nil {
			return fmt.Errorf("final_order requires order (use [] for an empty list)")
		}
	case AssertFinalState:
		if len(a.Expect) == 0 {
			return fmt.Errorf("final_state requires expect")
		}
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}
