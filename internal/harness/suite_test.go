package harness

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func writeScenario(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestDiscover(t *testing.T) {
	paths, err := Discover("testdata/scenarios", "")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(paths), 5)
	assert.IsNonDecreasing(t, paths)

	paths, err = Discover("testdata/scenarios", "demo_")
	require.NoError(t, err)
	assert.Equal(t, []string{"testdata/scenarios/demo_r1cs.yaml", "testdata/scenarios/demo_tasm.yaml"}, paths)
}

func TestDiscover_SkipsOtherFiles(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "a.yaml", "")
	writeScenario(t, dir, "b.yml", "")
	writeScenario(t, dir, "notes.txt", "")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "c.yaml"), 0o755))

	paths, err := Discover(dir, "")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.yaml"), filepath.Join(dir, "b.yml")}, paths)
}

func TestDiscover_NotFound(t *testing.T) {
	_, err := Discover(t.TempDir(), "zzz")

	var notFound *ScenarioNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "zzz", notFound.Filter)
	assert.Contains(t, err.Error(), `no scenarios matching "zzz"`)

	_, err = Discover(filepath.Join(t.TempDir(), "missing"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading scenario directory")
}

func TestRunSuite_Fixtures(t *testing.T) {
	paths, err := Discover("testdata/scenarios", "")
	require.NoError(t, err)

	suite, err := RunSuite(context.Background(), paths, SuiteOptions{Parallel: 4, Logger: zaptest.NewLogger(t)})
	require.NoError(t, err)
	assert.Equal(t, len(paths), suite.Total)
	assert.Equal(t, len(paths), suite.Passed, "failures: %+v", suite.Failures)
	assert.Zero(t, suite.Failed)
	for i, out := range suite.Outcomes {
		assert.Equal(t, paths[i], out.Path, "outcomes keep discovery order")
	}
}

func TestRunSuite_ReportsFailures(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeScenario(t, dir, "1_pass.yaml", "name: pass\ndescription: d\nsteps:\n  - compile: true\n    expect:\n      status: success\n"),
		writeScenario(t, dir, "2_fail.yaml", "name: fail\ndescription: d\nsteps:\n  - compile: true\n    expect:\n      status: failure\n"),
		writeScenario(t, dir, "3_broken.yaml", "name: broken\nsteps: []\n"),
	}

	suite, err := RunSuite(context.Background(), paths, SuiteOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, suite.Total)
	assert.Equal(t, 1, suite.Passed)
	assert.Equal(t, 2, suite.Failed)

	require.Len(t, suite.Failures, 2)
	assert.Equal(t, "fail", suite.Failures[0].Scenario)
	assert.Contains(t, suite.Failures[0].Errors[0], `expected status "failure"`)
	assert.Empty(t, suite.Failures[1].Scenario, "unparseable scenarios have no name")
	assert.Contains(t, suite.Failures[1].Errors[0], "invalid scenario")
}

func TestRunSuite_Cancelled(t *testing.T) {
	paths, err := Discover("testdata/scenarios", "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = RunSuite(ctx, paths, SuiteOptions{Parallel: 1})
	assert.ErrorIs(t, err, context.Canceled)
}
