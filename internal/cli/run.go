package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/reflux/internal/harness"
	"github.com/roach88/reflux/internal/todos"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	SortDelay     time.Duration
	MoveSortDelay time.Duration
}

// RunOutput is the JSON payload of the run command.
type RunOutput struct {
	Scenario string               `json:"scenario"`
	Pass     bool                 `json:"pass"`
	Trace    []harness.TraceEvent `json:"trace"`
	State    map[string]any       `json:"state"`
	Errors   []string             `json:"errors,omitempty"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Run one scenario and print its trace",
		Long: `Run a YAML or CUE scenario on a virtual clock and print every processed
action followed by the final todo list.

Exit codes:
  0 - All assertions held
  1 - A step or assertion failed, or the scenario is invalid
  2 - Command error (file not found, etc.)

Example:
  reflux run ./scenarios/toggle_sort.yaml
  reflux run --format json --sort-delay 10ms ./scenarios/toggle_sort.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarioFile(opts, args[0], cmd)
		},
	}

	cmd.Flags().DurationVar(&opts.SortDelay, "sort-delay", todos.DefaultSortDelay, "debounce before completed todos sink")
	cmd.Flags().DurationVar(&opts.MoveSortDelay, "move-delay", todos.DefaultMoveSortDelay, "delay before sorting after a move")

	return cmd
}

func runScenarioFile(opts *RunOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		_ = formatter.Error(ErrCodeNotFound, fmt.Sprintf("scenario not found: %s", path), nil)
		return NewExitError(ExitCommandError, fmt.Sprintf("scenario not found: %s", path))
	}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		_ = formatter.Error(ErrCodeLoad, err.Error(), nil)
		return WrapExitError(ExitFailure, "failed to load scenario", err)
	}

	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	result, err := harness.Run(scenario,
		harness.WithLogger(logger),
		harness.WithSortDelays(opts.SortDelay, opts.MoveSortDelay),
	)
	if err != nil {
		_ = formatter.Error(ErrCodeRun, err.Error(), nil)
		return WrapExitError(ExitFailure, "scenario execution failed", err)
	}

	if formatter.JSON() {
		out := RunOutput{
			Scenario: scenario.Name,
			Pass:     result.Pass,
			Trace:    result.Trace,
			State:    result.State,
			Errors:   result.Errors,
		}
		var failure *CLIError
		if !result.Pass {
			failure = &CLIError{Code: ErrCodeFailed, Message: fmt.Sprintf("%d failure(s)", len(result.Errors))}
		}
		if err := formatter.Respond(out, failure); err != nil {
			return err
		}
	} else {
		writeRunText(formatter.Writer, scenario.Name, result)
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %s failed", scenario.Name))
	}
	return nil
}

func writeRunText(w io.Writer, name string, result *harness.Result) {
	fmt.Fprintf(w, "Scenario: %s\n", name)

	fmt.Fprintln(w, "Trace:")
	for _, ev := range result.Trace {
		fmt.Fprintf(w, "  [%d] %-6s %s%s\n", ev.Seq, ev.At, ev.Action, formatArgs(ev.Args))
	}

	fmt.Fprintln(w, "State:")
	s := result.State
	fmt.Fprintf(w, "  filter=%v edit_mode=%v count=%v visible=%v pending_effects=%v\n",
		s["filter"], s["edit_mode"], s["count"], s["visible"], s["pending_effects"])
	if list, ok := s["todos"].([]any); ok {
		for _, item := range list {
			todo, ok := item.(map[string]any)
			if !ok {
				continue
			}
			box := "[ ]"
			if complete, _ := todo["complete"].(bool); complete {
				box = "[x]"
			}
			fmt.Fprintf(w, "  %v. %s %v (id %v)\n", todo["position"], box, todo["description"], todo["id"])
		}
	}

	if result.Pass {
		fmt.Fprintf(w, "✓ %s passed\n", name)
		return
	}
	fmt.Fprintf(w, "✗ %s failed\n", name)
	for _, e := range result.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}

// formatArgs renders args as canonical JSON so the same trace always
// prints the same way.
func formatArgs(args map[string]any) string {
	if len(args) == 0 {
		return ""
	}
	data, err := harness.MarshalCanonical(args)
	if err != nil {
		return fmt.Sprintf(" %v", args)
	}
	return " " + string(data)
}
