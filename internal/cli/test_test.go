package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const harnessScenarios = "../harness/testdata/scenarios"

const passingScenario = `name: tasm_demo
description: The demo compiles to tasm.
session_id: cli-test
target: tasm
steps:
  - compile: true
    expect:
      status: success
      artifact_contains: ["halt"]
`

const failingScenario = `name: wrong_expectation
description: Expects the demo to fail, which it does not.
session_id: cli-test
steps:
  - compile: true
    expect:
      status: failure
`

func writeScenarios(t *testing.T, files map[string]string) string {
	t.Helper()
	return writeWorkspace(t, files)
}

func TestTestCommandMissingArgs(t *testing.T) {
	_, _, err := execute(t, "test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	out, _, err := execute(t, "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "scenarios directory not found")
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	dir := t.TempDir()

	out, _, err := execute(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")

	out, _, err = execute(t, "--format", "json", "test", dir)
	require.NoError(t, err)
	var response CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "ok", response.Status)
}

func TestTestCommandHarnessFixtures(t *testing.T) {
	out, _, err := execute(t, "test", harnessScenarios)
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ demo_r1cs\n")
	assert.Contains(t, out, "✓ workspace_dir\n")
	assert.Contains(t, out, "0 failed")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommandFilter(t *testing.T) {
	out, _, err := execute(t, "--format", "json", "test", harnessScenarios, "--filter", "incompatible")
	require.NoError(t, err)

	var response struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, 1, response.Data.Total)
	require.Len(t, response.Data.Scenarios, 1)
	assert.Equal(t, "incompatible_pair", response.Data.Scenarios[0].Name)
	assert.True(t, response.Data.Scenarios[0].Pass)
}

func TestTestCommandFailure(t *testing.T) {
	dir := writeScenarios(t, map[string]string{
		"a_pass.yaml": passingScenario,
		"b_fail.yaml": failingScenario,
		"c_bad.yaml":  "name: bad\nsteps: []\nunknown_key: 1\n",
	})

	out, _, err := execute(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✓ tasm_demo\n")
	assert.Contains(t, out, "✗ wrong_expectation\n")
	assert.Contains(t, out, `expected status "failure", got "success"`)
	assert.Contains(t, out, "✗ c_bad.yaml\n")
	assert.Contains(t, out, "Test Summary: 1 passed, 2 failed, 3 total")

	out, _, err = execute(t, "--format", "json", "test", dir)
	require.Error(t, err)
	var response CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "error", response.Status)
	require.NotNil(t, response.Error)
	assert.Equal(t, ErrCodeTestFailed, response.Error.Code)
	assert.Equal(t, "2 scenario(s) failed", response.Error.Message)
}

func TestTestCommandGoldenFiles(t *testing.T) {
	dir := writeScenarios(t, map[string]string{"tasm_demo.yaml": passingScenario})
	goldenPath := filepath.Join(dir, "golden", "tasm_demo.golden")

	out, _, err := execute(t, "test", dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ tasm_demo (golden updated)")
	require.FileExists(t, goldenPath)

	// A second run compares against the snapshot just written.
	out, _, err = execute(t, "--format", "json", "test", dir)
	require.NoError(t, err)
	var response struct {
		Data TestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	require.Len(t, response.Data.Scenarios, 1)
	assert.Equal(t, "match", response.Data.Scenarios[0].Golden)

	require.NoError(t, os.WriteFile(goldenPath, []byte("{}"), 0644))
	out, _, err = execute(t, "test", dir)
	require.Error(t, err)
	assert.Contains(t, out, "trace does not match golden file")
}

func TestGoldenFilePath(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"/path/to/scenario.yaml", "/path/to/golden/scenario.golden"},
		{"/path/to/scenario.yml", "/path/to/golden/scenario.golden"},
		{"scenarios/test.yaml", "scenarios/golden/test.golden"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, goldenFilePath(tc.input))
	}
}
