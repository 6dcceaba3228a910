package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/ashpad/internal/ash"
	"github.com/roach88/ashpad/internal/field"
	"github.com/roach88/ashpad/internal/session"
)

// MatrixEntry is one (target, field) combination.
type MatrixEntry struct {
	Target     ash.Target `json:"target"`
	Field      field.Kind `json:"field"`
	Compatible bool       `json:"compatible"`
	Reason     string     `json:"reason,omitempty"`
	Extensions []string   `json:"extensions"`
}

// NewMatrixCommand creates the matrix command.
func NewMatrixCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "matrix",
		Short:         "Show which targets compile over which fields",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatrix(rootOpts, cmd)
		},
	}
	return cmd
}

// Matrix evaluates every (target, field) pair.
func Matrix() []MatrixEntry {
	pairs := session.Pairs()
	out := make([]MatrixEntry, 0, len(pairs))
	for _, p := range pairs {
		e := MatrixEntry{
			Target:     p.Target,
			Field:      p.Field,
			Compatible: true,
			Extensions: session.ExtensionPriorities(p.Target),
		}
		if err := session.Validate(p.Target, p.Field); err != nil {
			e.Compatible = false
			e.Reason = err.Error()
		}
		out = append(out, e)
	}
	return out
}

func runMatrix(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	entries := Matrix()
	if formatter.JSON() {
		return formatter.Success(entries)
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TARGET\tFIELD\tRESOLVES\tOK")
	for _, e := range entries {
		mark := formatter.Pass()
		if !e.Compatible {
			mark = formatter.Fail() + " " + e.Reason
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Target, e.Field, "."+strings.Join(e.Extensions, " ."), mark)
	}
	return tw.Flush()
}
