package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/ashpad/internal/digest"
)

// DefaultGoldenDir is where golden snapshots live by default.
const DefaultGoldenDir = "testdata/golden"

// Snapshot is the canonical JSON form of a scenario's trace: the same
// scenario always produces the same bytes.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	trace := make([]any, len(result.Trace))
	for i, ev := range result.Trace {
		m := map[string]any{
			"seq":    ev.Seq,
			"step":   ev.Step,
			"action": ev.Action,
		}
		optional := map[string]string{
			"arg":      ev.Arg,
			"status":   ev.Status,
			"stage":    ev.Stage,
			"summary":  ev.Summary,
			"message":  ev.Message,
			"artifact": ev.Artifact,
			"error":    ev.Error,
		}
		for k, v := range optional {
			if v != "" {
				m[k] = v
			}
		}
		if ev.Run > 0 {
			m["run"] = ev.Run
			m["states"] = ev.States
		}
		trace[i] = m
	}

	return digest.Marshal(map[string]any{
		"scenario_name": scenarioName,
		"session_id":    result.SessionID,
		"trace":         trace,
	})
}

// RunWithGolden executes a scenario and compares its snapshot with
// {dir}/{scenario.Name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
//
// An error is returned when the scenario cannot run; a mismatch fails t.
func RunWithGolden(t *testing.T, scenario *Scenario, dir string) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario, nil)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario.Name, result, dir)
}

// AssertGolden compares an existing result with its golden snapshot.
func AssertGolden(t *testing.T, scenarioName string, result *Result, dir string) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}
	golden(t, dir).Assert(t, scenarioName, data)
	return nil
}

// UpdateGolden writes a result's snapshot as the new golden file.
func UpdateGolden(t *testing.T, scenarioName string, result *Result, dir string) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}
	return golden(t, dir).Update(t, scenarioName, data)
}

func golden(t *testing.T, dir string) *goldie.Goldie {
	if dir == "" {
		dir = DefaultGoldenDir
	}
	return goldie.New(t,
		goldie.WithFixtureDir(dir),
		goldie.WithNameSuffix(".golden"),
	)
}
