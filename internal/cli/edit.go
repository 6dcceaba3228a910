package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/ashpad/internal/tui"
)

// EditOptions holds flags for the edit command.
type EditOptions struct {
	*RootOptions
	WorkspaceFlags
}

// NewEditCommand creates the edit command.
func NewEditCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EditOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "edit [workspace-dir]",
		Short: "Open the terminal editor",
		Long: `Open a workspace in the terminal editor. The active file is on the left
and the latest compile result on the right; every keystroke recompiles.

Keys:
  ctrl+n / ctrl+p  next / previous file
  ctrl+t           toggle target
  ctrl+f           cycle field
  esc / ctrl+c     quit

Edits live in memory only; nothing is written back to disk.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runEdit(opts, dir, cmd)
		},
	}

	addWorkspaceFlags(cmd, &opts.WorkspaceFlags)

	return cmd
}

func runEdit(opts *EditOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if formatter.JSON() {
		return formatter.fail(ErrCodeInvalidFlag, "the editor has no json output", nil)
	}

	// The editor owns the terminal, so logs are only kept when verbose.
	logOut := io.Discard
	if opts.Verbose {
		logOut = cmd.ErrOrStderr()
	}
	log := newLogger(opts.RootOptions, logOut)
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

	if err := tui.Run(cmd.Context(), sess); err != nil {
		return formatter.fail(ErrCodeGeneric, "editor", err)
	}
	return nil
}
