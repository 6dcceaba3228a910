package harness

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ScenarioNotFoundError is returned when a scenario directory holds no
// scenario matching the filter.
type ScenarioNotFoundError struct {
	Dir    string
	Filter string
}

// Error implements the error interface.
func (e *ScenarioNotFoundError) Error() string {
	if e.Filter != "" {
		return fmt.Sprintf("no scenarios matching %q in %s", e.Filter, e.Dir)
	}
	return fmt.Sprintf("no scenarios in %s", e.Dir)
}

// Discover lists the .yaml and .yml files in dir whose base name contains
// filter, sorted by path.
func Discover(dir, filter string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading scenario directory: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			continue
		}
		if ext := filepath.Ext(name); ext != ".yaml" && ext != ".yml" {
			continue
		}
		if filter != "" && !strings.Contains(name, filter) {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	if len(paths) == 0 {
		return nil, &ScenarioNotFoundError{Dir: dir, Filter: filter}
	}
	sort.Strings(paths)
	return paths, nil
}

// SuiteOptions configures RunSuite.
type SuiteOptions struct {
	// Parallel bounds concurrent scenarios. Zero uses GOMAXPROCS.
	Parallel int
	Logger   *zap.Logger
}

// SuiteResult summarizes a suite run.
type SuiteResult struct {
	Total    int             `json:"total"`
	Passed   int             `json:"passed"`
	Failed   int             `json:"failed"`
	Outcomes []Outcome       `json:"outcomes"`
	Failures []FailureReport `json:"failures,omitempty"`
}

// Outcome is one scenario's result, in Discover order.
type Outcome struct {
	Path     string  `json:"path"`
	Scenario string  `json:"scenario,omitempty"`
	Result   *Result `json:"result,omitempty"`
	Err      string  `json:"error,omitempty"`
}

// FailureReport explains one failed scenario.
type FailureReport struct {
	Path     string   `json:"path"`
	Scenario string   `json:"scenario,omitempty"`
	Errors   []string `json:"errors"`
}

// RunSuite loads and runs every scenario in paths, each on its own session.
// A scenario that fails to load or run is reported as failed; only context
// cancellation aborts the suite.
func RunSuite(ctx context.Context, paths []string, opts SuiteOptions) (*SuiteResult, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	limit := opts.Parallel
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	outcomes := make([]Outcome, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, path := range paths {
		g.Go(func() error {
			out := Outcome{Path: path}
			scenario, err := LoadScenario(path)
			if err != nil {
				out.Err = err.Error()
				outcomes[i] = out
				return nil
			}
			out.Scenario = scenario.Name
			result, err := Run(gctx, scenario, log)
			if err != nil {
				if gctx.Err() != nil {
					return err
				}
				out.Err = err.Error()
			}
			out.Result = result
			outcomes[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	suite := &SuiteResult{Total: len(paths), Outcomes: outcomes}
	for _, out := range outcomes {
		switch {
		case out.Err != "":
			suite.Failed++
			suite.Failures = append(suite.Failures, FailureReport{
				Path:     out.Path,
				Scenario: out.Scenario,
				Errors:   []string{out.Err},
			})
		case !out.Result.Pass:
			suite.Failed++
			suite.Failures = append(suite.Failures, FailureReport{
				Path:     out.Path,
				Scenario: out.Scenario,
				Errors:   out.Result.Errors,
			})
		default:
			suite.Passed++
		}
	}
	log.Info("suite finished",
		zap.Int("total", suite.Total),
		zap.Int("passed", suite.Passed),
		zap.Int("failed", suite.Failed),
	)
	return suite, nil
}
