package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/reflux/internal/harness"
)

// ValidationIssue describes one scenario file that failed to load.
type ValidationIssue struct {
	File    string `json:"file"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Files  int               `json:"files"`
	Errors []ValidationIssue `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario>...",
		Short: "Check scenario files without running them",
		Long: `Parse scenario files and check them against the scenario schema.

YAML files are decoded strictly (unknown fields are errors). CUE files are
unified with the built-in #Scenario definition. Every step's action must be
known and carry well-typed arguments.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			msg := fmt.Sprintf("scenario not found: %s", p)
			_ = formatter.Error(ErrCodeNotFound, msg, nil)
			return NewExitError(ExitCommandError, msg)
		}
	}

	result := ValidationResult{Valid: true, Files: len(paths)}
	for _, p := range paths {
		formatter.VerboseLog("validating %s", p)
		if _, err := harness.LoadScenario(p); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, issueFromError(p, err))
		}
	}

	if formatter.JSON() {
		var failure *CLIError
		if !result.Valid {
			failure = &CLIError{Code: ErrCodeInvalid, Message: result.Errors[0].Message}
		}
		if err := formatter.Respond(result, failure); err != nil {
			return err
		}
	} else if result.Valid {
		fmt.Fprintf(formatter.Writer, "✓ %d scenario(s) valid\n", result.Files)
	} else {
		fmt.Fprintln(formatter.Writer, "✗ Validation failed")
		fmt.Fprintln(formatter.Writer)
		for _, issue := range result.Errors {
			if issue.Line > 0 {
				fmt.Fprintf(formatter.Writer, "%s:%d\n", issue.File, issue.Line)
			} else {
				fmt.Fprintln(formatter.Writer, issue.File)
			}
			fmt.Fprintf(formatter.Writer, "  %s\n\n", issue.Message)
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	}
	return nil
}

// issueFromError keeps CUE field paths and positions when available.
func issueFromError(file string, err error) ValidationIssue {
	var schemaErr *harness.SchemaError
	if errors.As(err, &schemaErr) {
		issue := ValidationIssue{
			File:    file,
			Field:   schemaErr.Field,
			Message: schemaErr.Message,
		}
		if schemaErr.Pos.IsValid() {
			issue.Line = schemaErr.Pos.Line()
		}
		return issue
	}
	return ValidationIssue{File: file, Message: err.Error()}
}
