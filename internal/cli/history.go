package cli

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/ashpad/internal/history"
	"github.com/roach88/ashpad/internal/session"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	DB      string
	Session string
	Status  string
	Limit   int
	Stats   bool
}

// HistoryOutput is the JSON payload of the history command.
type HistoryOutput struct {
	Runs  []session.Run        `json:"runs,omitempty"`
	Stats []history.StageCount `json:"stats,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List runs recorded with --db",
		Long: `List the pipeline runs recorded in a history database, oldest first.

Examples:
  ashpad history --db runs.db
  ashpad history --db runs.db --status failure --limit 10
  ashpad history --db runs.db --stats`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "history database path (required)")
	cmd.Flags().StringVar(&opts.Session, "session", "", "only runs of this session id")
	cmd.Flags().StringVar(&opts.Status, "status", "", "only runs with this status (success|failure)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "only the most recent runs")
	cmd.Flags().BoolVar(&opts.Stats, "stats", false, "count runs per outcome instead of listing them")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	status := session.Status(opts.Status)
	if status != "" && status != session.StatusSuccess && status != session.StatusFailure {
		return formatter.fail(ErrCodeInvalidFlag, fmt.Sprintf("unknown status %q (expected success or failure)", opts.Status), nil)
	}
	// Opening creates the file, so a typo must not silently start a new database.
	if _, err := os.Stat(opts.DB); errors.Is(err, os.ErrNotExist) {
		return formatter.fail(ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.DB), nil)
	}

	store, err := history.Open(opts.DB)
	if err != nil {
		return formatter.fail(ErrCodeHistory, "opening history", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	if opts.Stats {
		stats, err := store.Stats(ctx)
		if err != nil {
			return formatter.fail(ErrCodeHistory, "reading history", err)
		}
		if formatter.JSON() {
			return formatter.Success(HistoryOutput{Stats: stats})
		}
		return writeStatsText(formatter, stats)
	}

	runs, err := store.Runs(ctx, history.Filter{
		Session: opts.Session,
		Status:  status,
		Limit:   opts.Limit,
	})
	if err != nil {
		return formatter.fail(ErrCodeHistory, "reading history", err)
	}
	formatter.VerboseLog("Read %d run(s) from %s", len(runs), opts.DB)
	if formatter.JSON() {
		return formatter.Success(HistoryOutput{Runs: runs})
	}
	return writeRunsText(formatter, runs)
}

func writeRunsText(formatter *OutputFormatter, runs []session.Run) error {
	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tRUN\tACTIVE\tTARGET\tFIELD\tSTATUS LINE\tRESULT")
	for _, r := range runs {
		mark := formatter.Pass()
		if r.Status != session.StatusSuccess {
			mark = formatter.Fail() + " " + string(r.Stage)
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			shortID(r.Session), r.Seq, r.ActiveFile, r.Target, r.Field, r.StatusLine, mark)
	}
	return tw.Flush()
}

func writeStatsText(formatter *OutputFormatter, stats []history.StageCount) error {
	if len(stats) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded.")
		return nil
	}
	tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tSTAGE\tRUNS")
	for _, c := range stats {
		stage := string(c.Stage)
		if stage == "" {
			stage = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\n", c.Status, stage, c.Runs)
	}
	return tw.Flush()
}

// shortID keeps the tail of a UUIDv7, which varies most between sessions.
func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[len(id)-12:]
}
