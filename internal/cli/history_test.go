package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ashpad/internal/session"
)

func TestHistoryRecordsCompileRuns(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")

	_, _, err := execute(t, "compile", "--db", db)
	require.NoError(t, err)
	_, _, err = execute(t, "compile", "--db", db, "--target", "tasm", "--field", "alt_bn128")
	require.Error(t, err)

	out, _, err := execute(t, "history", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "SESSION")
	assert.Contains(t, out, "✓")
	assert.Contains(t, out, "✗ compatibility")

	out, _, err = execute(t, "--format", "json", "history", "--db", db, "--status", "failure")
	require.NoError(t, err)
	var response struct {
		Status string        `json:"status"`
		Data   HistoryOutput `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &response))
	assert.Equal(t, "ok", response.Status)
	require.Len(t, response.Data.Runs, 1)
	run := response.Data.Runs[0]
	assert.Equal(t, "tasm", run.Target)
	assert.Equal(t, "alt_bn128", run.Field)
	assert.Equal(t, session.StageCompatibility, run.Stage)
	assert.Equal(t, int64(1), run.Seq)
	assert.Equal(t, "tasm target must be compiled to the oxfoi field", run.StatusLine)
}

func TestHistoryStats(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	for range 2 {
		_, _, err := execute(t, "compile", "--db", db)
		require.NoError(t, err)
	}
	_, _, _ = execute(t, "compile", "--db", db, "-e", "let x = (")

	out, _, err := execute(t, "history", "--db", db, "--stats")
	require.NoError(t, err)
	assert.Contains(t, out, "STATUS")
	assert.Regexp(t, `success\s+-\s+2`, out)
	assert.Regexp(t, `failure\s+compilation\s+1`, out)
}

func TestHistoryErrors(t *testing.T) {
	out, _, err := execute(t, "history", "--db", filepath.Join(t.TempDir(), "missing.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E005]: database not found")

	db := filepath.Join(t.TempDir(), "runs.db")
	_, _, err = execute(t, "compile", "--db", db)
	require.NoError(t, err)
	out, _, err = execute(t, "history", "--db", db, "--status", "maybe")
	require.Error(t, err)
	assert.Contains(t, out, `unknown status "maybe"`)
}

func TestHistoryEmpty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "runs.db")
	_, _, err := execute(t, "compile", "--db", db)
	require.NoError(t, err)

	out, _, err := execute(t, "history", "--db", db, "--session", "nobody")
	require.NoError(t, err)
	assert.Contains(t, out, "No runs recorded.")
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "short", shortID("short"))
	assert.Equal(t, "a1b2c3d4e5f6", shortID("0192f0c4-7d2e-7000-8000-a1b2c3d4e5f6"))
}
