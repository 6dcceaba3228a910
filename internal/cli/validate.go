package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/ashpad/internal/ash"
	"github.com/roach88/ashpad/internal/config"
	"github.com/roach88/ashpad/internal/field"
	"github.com/roach88/ashpad/internal/session"
	"github.com/roach88/ashpad/internal/workspace"
)

// ValidationError is one problem found in a workspace directory.
type ValidationError struct {
	File    string `json:"file"`
	Line    int    `json:"line,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Files  int               `json:"files"`
	Errors []ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <workspace-dir>",
		Short: "Check a workspace directory without compiling it",
		Long: `Check that a workspace directory can be opened: ashpad.cue satisfies the
project schema, its target is defined over its field, entry.ash exists and
every source file is named after a function.

Nothing is compiled; use compile for that.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return formatter.fail(ErrCodeNotFound, fmt.Sprintf("workspace directory not found: %s", dir), nil)
	}

	result, err := ValidateDir(dir)
	if err != nil {
		return formatter.fail(ErrCodeLoadFailed, "reading workspace", err)
	}
	formatter.VerboseLog("Checked %d source file(s) in %s", result.Files, dir)

	if len(result.Errors) > 0 {
		return outputValidationErrors(formatter, result)
	}
	if formatter.JSON() {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "%s Workspace valid (%d files)\n", formatter.Pass(), result.Files)
	return nil
}

// ValidateDir checks the manifest and file names of the workspace in dir.
func ValidateDir(dir string) (*ValidationResult, error) {
	result := &ValidationResult{}

	project, err := config.Load(dir)
	var cfgErr *config.Error
	switch {
	case errors.As(err, &cfgErr):
		line := 0
		if cfgErr.Pos.IsValid() {
			line = cfgErr.Pos.Line()
		}
		result.Errors = append(result.Errors, ValidationError{
			File:    config.FileName,
			Line:    line,
			Code:    ErrCodeConfigInvalid,
			Message: cfgErr.Message,
		})
	case err != nil:
		return nil, err
	default:
		if err := session.Validate(ash.Target(project.Target), field.Kind(project.Field)); err != nil {
			result.Errors = append(result.Errors, ValidationError{
				File:    config.FileName,
				Code:    ErrCodeIncompatible,
				Message: err.Error(),
			})
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && ash.IsSourceFile(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	result.Files = len(names)

	hasEntry := false
	for _, name := range names {
		if workspace.Normalize(name) == workspace.EntryFile {
			hasEntry = true
		}
		if !ash.IsFunctionName(name) {
			result.Errors = append(result.Errors, ValidationError{
				File:    name,
				Code:    ErrCodeBadFileName,
				Message: fmt.Sprintf("%q is not a valid function name", trimExt(name)),
			})
		}
	}
	if !hasEntry {
		result.Errors = append(result.Errors, ValidationError{
			File:    workspace.EntryFile,
			Code:    ErrCodeNoEntry,
			Message: "workspace has no entry file",
		})
	}

	result.Valid = len(result.Errors) == 0
	return result, nil
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}

// outputValidationErrors outputs every validation error.
func outputValidationErrors(formatter *OutputFormatter, result *ValidationResult) error {
	errs := result.Errors
	if formatter.JSON() {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintf(formatter.Writer, "%s Validation failed\n\n", formatter.Fail())
	for _, err := range errs {
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "%s:%d\n", err.File, err.Line)
		} else {
			fmt.Fprintln(formatter.Writer, err.File)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
