package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const simpleSetPlan = `{
  "when": [
    {
      "if": {"type": "object"},
      "then": {
        "ops": [
          {"op": "set", "path": "/count", "value": {"literal": 1}}
        ]
      }
    }
  ]
}`

func TestValidate_ValidPlan(t *testing.T) {
	planPath := writeTemp(t, "plan.json", simpleSetPlan)
	out, err := executeCommand(t, "validate", planPath)
	require.NoError(t, err)
	assert.Contains(t, out, "valid")
}

func TestValidate_InvalidPlan(t *testing.T) {
	planPath := writeTemp(t, "plan.json", `{"when": []}`)
	_, err := executeCommand(t, "validate", planPath)
	require.Error(t, err)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, ExitFailure, exitErr.Code)
}

func TestValidate_UnreadableFile(t *testing.T) {
	_, err := executeCommand(t, "validate", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, ExitCommandError, exitErr.Code)
}

func TestTransform_AppliesPlanToContext(t *testing.T) {
	planPath := writeTemp(t, "plan.json", simpleSetPlan)
	ctxPath := writeTemp(t, "ctx.json", `{"event": {}, "state": {}}`)

	out, err := executeCommand(t, "--format", "json", "transform", planPath, "--context", ctxPath)
	require.NoError(t, err)
	assert.Contains(t, out, `"count": 1`)
	assert.Contains(t, out, `"traceId"`)
}

func TestTransform_RequiresContextFlag(t *testing.T) {
	planPath := writeTemp(t, "plan.json", simpleSetPlan)
	_, err := executeCommand(t, "transform", planPath)
	require.Error(t, err)
}

func TestReplay_AppliesPlanToEachContext(t *testing.T) {
	planPath := writeTemp(t, "plan.json", simpleSetPlan)
	contextsPath := writeTemp(t, "contexts.json", `[
		{"event": {}, "state": {}},
		{"event": {}, "state": {}}
	]`)

	out, err := executeCommand(t, "--format", "json", "replay", planPath, "--contexts", contextsPath)
	require.NoError(t, err)
	assert.Contains(t, out, `"index": 0`)
	assert.Contains(t, out, `"index": 1`)
}

func TestRootCommand_RejectsInvalidFormat(t *testing.T) {
	planPath := writeTemp(t, "plan.json", simpleSetPlan)
	_, err := executeCommand(t, "--format", "xml", "validate", planPath)
	require.Error(t, err)
}
