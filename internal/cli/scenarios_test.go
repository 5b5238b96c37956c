package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const passingScenario = `name: sink
description: completed todo sinks after the debounce
initial:
  - { id: 1, description: Milk }
  - { id: 2, description: Eggs }
steps:
  - send: todo
    args: { id: 1, action: checkBoxToggled }
  - advance: 1s
assertions:
  - type: final_order
    order: [Eggs, Milk]
`

const failingScenario = `name: stuck
description: asserts an order that never happens
initial:
  - { id: 1, description: Milk }
  - { id: 2, description: Eggs }
steps:
  - send: todo
    args: { id: 1, action: checkBoxToggled }
assertions:
  - type: final_order
    order: [Eggs, Milk]
`

const fastSortScenario = `name: fast
description: sorts after a short custom delay
initial:
  - { id: 1, description: Milk }
  - { id: 2, description: Eggs }
steps:
  - send: todo
    args: { id: 1, action: checkBoxToggled }
  - advance: 10ms
assertions:
  - type: final_order
    order: [Eggs, Milk]
`

const cueScenario = `name:        "cue_add"
description: "adds one todo"
steps: [{send: "addTodoTapped"}]
assertions: [{type: "final_state", expect: {count: 1}}]
`

// writeFile writes content to dir/name and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
