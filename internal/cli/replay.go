package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ashpad/internal/ash"
	"github.com/roach88/ashpad/internal/digest"
	"github.com/roach88/ashpad/internal/field"
	"github.com/roach88/ashpad/internal/history"
	"github.com/roach88/ashpad/internal/session"
	"github.com/roach88/ashpad/internal/workspace"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Session  string // optional - one session only
}

// ReplayRun is the replay of one recorded run.
type ReplayRun struct {
	Session       string `json:"session"`
	Seq           int64  `json:"seq"`
	Target        string `json:"target"`
	Field         string `json:"field"`
	ActiveFile    string `json:"active_file"`
	SingleFile    bool   `json:"single_file,omitempty"`
	Recorded      string `json:"recorded"`
	Replayed      string `json:"replayed"`
	Deterministic bool   `json:"deterministic"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Workspace        string      `json:"workspace"`
	Runs             []ReplayRun `json:"runs"`
	AllDeterministic bool        `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <workspace-dir>",
		Short: "Recompile recorded runs and verify determinism",
		Long: `Find every run in the history database that compiled exactly the files
now in <workspace-dir>, compile each one again with its recorded selection,
and check that the result is identical.

Exit codes:
  0 - Every matching run reproduced (or none matched)
  1 - At least one run produced a different result
  2 - Command error (database not found, etc.)

Examples:
  ashpad replay ./circuits --db runs.db
  ashpad replay ./circuits --db runs.db --session 0192f0c4-...`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "replay this session only")

	return cmd
}

func runReplay(opts *ReplayOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	loaded, err := LoadWorkspace(dir, WorkspaceFlags{})
	if err != nil {
		return loadFailure(formatter, err)
	}
	files := loaded.Workspace.Snapshot()
	wd, err := digest.Workspace(files)
	if err != nil {
		return formatter.fail(ErrCodeGeneric, "digesting workspace", err)
	}

	st, err := history.Open(opts.Database)
	if err != nil {
		return formatter.fail(ErrCodeHistory, "failed to open database", err)
	}
	defer st.Close()

	runs, err := st.Runs(cmd.Context(), history.Filter{Session: opts.Session, Workspace: wd})
	if err != nil {
		return formatter.fail(ErrCodeHistory, "reading history", err)
	}
	formatter.VerboseLog("Workspace %s matches %d recorded run(s)", wd, len(runs))

	result := ReplayResult{
		Workspace:        wd,
		Runs:             make([]ReplayRun, 0, len(runs)),
		AllDeterministic: true,
	}
	// Runs with the same selection over the same files share one compile.
	cache := make(map[string]string)
	for _, run := range runs {
		key := fmt.Sprintf("%s|%s|%s|%t", run.Target, run.Field, run.ActiveFile, run.SingleFile)
		replayed, ok := cache[key]
		if !ok {
			replayed, err = replayRun(files, run)
			if err != nil {
				return formatter.fail(ErrCodeGeneric, fmt.Sprintf("replaying run %d of %s", run.Seq, run.Session), err)
			}
			cache[key] = replayed
		}

		rr := ReplayRun{
			Session:       run.Session,
			Seq:           run.Seq,
			Target:        run.Target,
			Field:         run.Field,
			ActiveFile:    run.ActiveFile,
			SingleFile:    run.SingleFile,
			Recorded:      run.ResultDigest,
			Replayed:      replayed,
			Deterministic: replayed == run.ResultDigest,
		}
		if !rr.Deterministic {
			result.AllDeterministic = false
		}
		result.Runs = append(result.Runs, rr)
	}

	if formatter.JSON() {
		return outputReplayJSON(formatter, result)
	}
	return outputReplayText(formatter, result)
}

// replayRun compiles files with run's selection on a fresh session and
// returns the result digest.
func replayRun(files map[string]string, run session.Run) (string, error) {
	sess, err := session.New(session.Options{
		Workspace:  workspace.New(files),
		ActiveFile: run.ActiveFile,
		Target:     ash.Target(run.Target),
		Field:      field.Kind(run.Field),
		SingleFile: run.SingleFile,
	})
	if err != nil {
		return "", err
	}
	return session.ResultDigest(sess.TriggerRecompile())
}

func outputReplayJSON(formatter *OutputFormatter, result ReplayResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if !result.AllDeterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeGeneric,
			Message: "replayed results differ from recorded results",
		}
	}

	encoder := json.NewEncoder(formatter.Writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}
	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

func outputReplayText(formatter *OutputFormatter, result ReplayResult) error {
	w := formatter.Writer
	if len(result.Runs) == 0 {
		fmt.Fprintln(w, "No recorded runs match this workspace.")
		return nil
	}

	differ := 0
	for _, r := range result.Runs {
		mark := formatter.Pass()
		if !r.Deterministic {
			mark = formatter.Fail()
			differ++
		}
		fmt.Fprintf(w, "%s %s #%d %s (%s, %s)\n", mark, shortID(r.Session), r.Seq, r.ActiveFile, r.Target, r.Field)
		if !r.Deterministic && formatter.Verbose {
			fmt.Fprintf(w, "  recorded %s\n  replayed %s\n", r.Recorded, r.Replayed)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Replay Summary: %d reproduced, %d differ, %d total\n", len(result.Runs)-differ, differ, len(result.Runs))
	if differ > 0 {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}
