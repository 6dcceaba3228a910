package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/ashpad/internal/session"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	WorkspaceFlags
	Expr string // source compiled alone in place of the active file
}

// CompileOutput is the JSON payload of a compile run.
type CompileOutput struct {
	Session    string            `json:"session"`
	Selection  session.Selection `json:"selection"`
	SingleFile bool              `json:"single_file,omitempty"`
	Result     session.Result    `json:"result"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile [workspace-dir]",
		Short: "Compile a workspace once and print the result",
		Long: `Compile the entry function of a workspace for the selected target and
field. Flags override the values in the directory's ashpad.cue.

Exit codes:
  0 - Compiled (and, for r1cs, witness built and verified)
  1 - The compile failed at some stage
  2 - Command error (bad flags, unreadable workspace, etc.)

Examples:
  ashpad compile
  ashpad compile ./circuits --target tasm
  ashpad compile --field curve25519 -e "return 3 * 4"
  ashpad compile ./circuits --db runs.db --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runCompile(opts, dir, cmd)
		},
	}

	addWorkspaceFlags(cmd, &opts.WorkspaceFlags)
	cmd.Flags().StringVarP(&opts.Expr, "expr", "e", "", "compile this source alone as the entry function")

	return cmd
}

func addWorkspaceFlags(cmd *cobra.Command, flags *WorkspaceFlags) {
	cmd.Flags().StringVar(&flags.Target, "target", "", "compilation target (r1cs|tasm)")
	cmd.Flags().StringVar(&flags.Field, "field", "", "prime field (oxfoi|curve25519|alt_bn128)")
	cmd.Flags().StringVar(&flags.Active, "active", "", "file opened as the editor buffer")
	cmd.Flags().StringVar(&flags.DB, "db", "", "record every run in this SQLite database")
	cmd.Flags().BoolVar(&flags.Single, "single-file", false, "compile the active file alone as the entry function")
}

func runCompile(opts *CompileOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	log := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	defer func() { _ = log.Sync() }()

	flags := opts.WorkspaceFlags
	if opts.Expr != "" {
		flags.Single = true
	}
	loaded, err := LoadWorkspace(dir, flags)
	if err != nil {
		return loadFailure(formatter, err)
	}
	formatter.VerboseLog("Loaded %d file(s); target %s, field %s, active %s",
		loaded.Workspace.Len(), loaded.Target, loaded.Field, loaded.Active)

	sess, closeFn, err := loaded.OpenSession(log)
	if err != nil {
		return loadFailure(formatter, err)
	}
	defer func() { _ = closeFn() }()

	if opts.Expr != "" {
		sess.SetActiveText(opts.Expr)
	}
	res := sess.TriggerRecompile()

	return outputCompileResult(formatter, sess, res)
}

// outputCompileResult prints one result. A failed result becomes an exit
// code 1 error.
func outputCompileResult(formatter *OutputFormatter, sess *session.Session, res session.Result) error {
	sel := sess.Selection()
	if formatter.JSON() {
		out := CompileOutput{
			Session:    sess.ID(),
			Selection:  sel,
			SingleFile: sess.SingleFile(),
			Result:     res,
		}
		if res.OK() {
			return formatter.SuccessWithTrace(out, sess.ID())
		}
		if err := formatter.ErrorWithTrace(ErrCodeCompileFailed, res.Message, out, sess.ID()); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%s failed", res.Stage))
	}

	writeResultText(formatter, sel, res)
	if !res.OK() {
		return NewExitError(ExitFailure, fmt.Sprintf("%s failed", res.Stage))
	}
	return nil
}

func writeResultText(formatter *OutputFormatter, sel session.Selection, res session.Result) {
	w := formatter.Writer
	label := fmt.Sprintf("%s (%s, %s)", sel.ActiveFile, sel.Target, sel.Field)
	if res.OK() {
		fmt.Fprintf(w, "%s %s\n", formatter.Pass(), label)
		fmt.Fprintln(w, res.Summary)
		fmt.Fprintln(w)
		fmt.Fprintln(w, strings.TrimRight(res.Artifact, "\n"))
		return
	}
	fmt.Fprintf(w, "%s %s: %s failed\n", formatter.Fail(), label, res.Stage)
	for _, line := range strings.Split(res.Message, "\n") {
		fmt.Fprintf(w, "  %s\n", line)
	}
}
