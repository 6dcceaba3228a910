package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/ashpad/internal/watch"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	WorkspaceFlags
	Debounce time.Duration
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch <workspace-dir>",
		Short: "Recompile a workspace directory whenever a file changes",
		Long: `Compile a workspace once, then watch its directory and recompile after
every change to a .ash, .ar1cs or .tasm file. Each run is printed; with
--format json every run is one JSON line.

Deleting entry.ash keeps its last text. Stop with Ctrl+C.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(opts, args[0], cmd)
		},
	}

	addWorkspaceFlags(cmd, &opts.WorkspaceFlags)
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", watch.DefaultDebounce, "quiet period before a changed file is reloaded")

	return cmd
}

func runWatch(opts *WatchOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	log := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	defer func() { _ = log.Sync() }()

	loaded, err := LoadWorkspace(dir, opts.WorkspaceFlags)
	if err != nil {
		return loadFailure(formatter, err)
	}
	sess, closeFn, err := loaded.OpenSession(log)
	if err != nil {
		return loadFailure(formatter, err)
	}
	defer func() { _ = closeFn() }()

	// Failed runs are part of the stream, not a reason to stop.
	_ = outputCompileResult(formatter, sess, sess.TriggerRecompile())

	w := watch.New(dir, sess, watch.Options{
		Debounce: opts.Debounce,
		Logger:   log,
		OnChange: func(c watch.Change) {
			if !formatter.JSON() {
				fmt.Fprintln(formatter.Writer)
				fmt.Fprintf(formatter.Writer, "-- %s\n", describeChange(c))
			}
			_ = outputCompileResult(formatter, sess, c.Result)
		},
	})
	formatter.VerboseLog("Watching %s (debounce %s)", dir, opts.Debounce)

	if err := w.Run(cmd.Context()); err != nil {
		return formatter.fail(ErrCodeLoadFailed, "watching workspace", err)
	}
	return nil
}

func describeChange(c watch.Change) string {
	var parts []string
	if len(c.Files) > 0 {
		parts = append(parts, "changed "+strings.Join(c.Files, ", "))
	}
	if len(c.Removed) > 0 {
		parts = append(parts, "removed "+strings.Join(c.Removed, ", "))
	}
	return strings.Join(parts, "; ")
}
