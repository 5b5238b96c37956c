package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeValidate(t *testing.T, format string, args ...string) (*bytes.Buffer, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func TestValidateValidScenarios(t *testing.T) {
	dir := t.TempDir()
	yamlPath := writeFile(t, dir, "sink.yaml", passingScenario)
	cuePath := writeFile(t, dir, "cue_add.cue", cueScenario)

	buf, err := executeValidate(t, "text", yamlPath, cuePath)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "✓ 2 scenario(s) valid")
}

func TestValidateFailingAssertionsStillValid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "stuck.yaml", failingScenario)

	_, err := executeValidate(t, "text", path)
	require.NoError(t, err)
}

func TestValidateValidScenariosJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "sink.yaml", passingScenario)

	buf, err := executeValidate(t, "json", path)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestValidateNonExistentFile(t *testing.T) {
	buf, err := executeValidate(t, "text", "/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, buf.String(), "not found")
}

func TestValidateMissingArgs(t *testing.T) {
	_, err := executeValidate(t, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg")
}

func TestValidateInvalidYAML(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{
			name:    "unknown field",
			content: passingScenario + "assertion: []\n",
			wantMsg: "assertion",
		},
		{
			name: "unknown action",
			content: `name: bad
description: unknown action
steps:
  - send: undo
assertions:
  - type: trace_count
    action: undo
`,
			wantMsg: `unknown action "undo"`,
		},
		{
			name: "send and advance",
			content: `name: bad
description: both kinds in one step
steps:
  - send: addTodoTapped
    advance: 1s
assertions:
  - type: trace_count
    action: addTodoTapped
    count: 1
`,
			wantMsg: "send",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "bad.yaml", tt.content)

			buf, err := executeValidate(t, "text", path)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, err.Error(), "validation failed")
			assert.Contains(t, buf.String(), "✗ Validation failed")
			assert.Contains(t, buf.String(), tt.wantMsg)
		})
	}
}

func TestValidateCUESchemaViolationJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.cue", `name:        "bad"
description: "seed ids start at one"
initial: [{id: 0, description: "zero"}]
steps: [{send: "addTodoTapped"}]
assertions: [{type: "trace_count", action: "addTodoTapped", count: 1}]
`)

	buf, err := executeValidate(t, "json", path)
	require.Error(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
		Error  *CLIError        `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Errors, 1)
	assert.Equal(t, path, resp.Data.Errors[0].File)
	assert.Contains(t, resp.Data.Errors[0].Field, "initial")
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeInvalid, resp.Error.Code)
}

func TestValidateReportsEveryBadFile(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.yaml", passingScenario)
	bad1 := writeFile(t, dir, "bad1.yaml", "name: x\n")
	bad2 := writeFile(t, dir, "bad2.cue", "name: 1\n")

	buf, err := executeValidate(t, "json", good, bad1, bad2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 error(s)")

	var resp struct {
		Data ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, 3, resp.Data.Files)
	require.Len(t, resp.Data.Errors, 2)
	assert.Equal(t, bad1, resp.Data.Errors[0].File)
	assert.Equal(t, bad2, resp.Data.Errors[1].File)
}
