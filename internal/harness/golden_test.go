package harness

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGolden_UpdateThenAssert(t *testing.T) {
	dir := t.TempDir()
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)

	for _, path := range paths {
		s, err := LoadScenario(path)
		require.NoError(t, err)

		first := run(t, s)
		require.NoError(t, UpdateGolden(t, s.Name, first, dir))

		_, err = RunWithGolden(t, s, dir)
		require.NoError(t, err)

		_, err = os.Stat(filepath.Join(dir, s.Name+".golden"))
		assert.NoError(t, err)
	}
}

func TestSnapshot_CanonicalShape(t *testing.T) {
	result := &Result{
		SessionID: "s",
		Trace: []TraceEvent{
			{Seq: 1, Step: 0, Action: ActionCompile, Run: 1, States: []string{"idle", "done"}, Status: "success", Summary: "ok"},
			{Seq: 2, Step: 1, Action: ActionRemove, Arg: "entry.ash", Error: "the entry file cannot be removed"},
		},
	}

	data, err := Snapshot("shape", result)
	require.NoError(t, err)
	assert.Equal(t,
		`{"scenario_name":"shape","session_id":"s","trace":[`+
			`{"action":"compile","run":1,"seq":1,"states":["idle","done"],"status":"success","step":0,"summary":"ok"},`+
			`{"action":"remove","arg":"entry.ash","error":"the entry file cannot be removed","seq":2,"step":1}]}`,
		string(data))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded), "snapshots are valid JSON")
}

func TestSnapshot_Stable(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/incompatible_pair.yaml")
	require.NoError(t, err)

	a, err := Snapshot(s.Name, run(t, s))
	require.NoError(t, err)
	b, err := Snapshot(s.Name, run(t, s))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
	assert.Contains(t, string(a), `"stage":"compatibility"`)
}
