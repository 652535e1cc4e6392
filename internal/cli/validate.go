package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// ValidationIssue is one fixture problem, positioned when CUE knows where.
type ValidationIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Files    int               `json:"files"`
	Objects  int               `json:"objects"`
	Values   int               `json:"values"`
	Comments int               `json:"comments"`
	Errors   []ValidationIssue `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <fixtures-dir>",
		Short: "Validate trace fixtures without loading them",
		Long: `Validate CUE trace fixtures against the fixture schema.

Checks object paths, attribute value encodings and comment addresses
without touching a database. Faster than load for development feedback.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, fixturesDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	loadResult, loadErrors := LoadFixtures(fixturesDir, LoadModeCollectAll)

	// Directory-level failures (not found, no files) are command errors,
	// not validation findings.
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			if err := formatter.Error(loadErr.Code, loadErr.Message, nil); err != nil {
				return err
			}
			return NewExitError(ExitCommandError, loadErr.Message)
		}
		if err := formatter.Error(ErrCodeGeneric, loadErrors[0].Error(), nil); err != nil {
			return err
		}
		return NewExitError(ExitCommandError, loadErrors[0].Error())
	}

	result := ValidationResult{Valid: len(loadErrors) == 0}
	if loadResult != nil {
		result.Files = loadResult.FileCount
		if loadResult.Fixture != nil {
			result.Objects = len(loadResult.Fixture.Objects)
			result.Values = len(loadResult.Fixture.Values)
			result.Comments = len(loadResult.Fixture.Comments)
		}
	}
	for _, err := range loadErrors {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			issue := ValidationIssue{Code: loadErr.Code, Message: loadErr.Message}
			if loadErr.Pos.IsValid() {
				issue.File = loadErr.Pos.Filename()
				issue.Line = loadErr.Pos.Line()
			}
			result.Errors = append(result.Errors, issue)
			continue
		}
		result.Errors = append(result.Errors, ValidationIssue{Code: ErrCodeGeneric, Message: err.Error()})
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", result.Files, fixturesDir)

	if opts.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		if result.Valid {
			fmt.Fprintf(formatter.Writer, "valid: %d object(s), %d value(s), %d comment(s) in %d file(s)\n",
				result.Objects, result.Values, result.Comments, result.Files)
		} else {
			for _, issue := range result.Errors {
				if issue.File != "" {
					fmt.Fprintf(formatter.Writer, "%s:%d: [%s] %s\n", issue.File, issue.Line, issue.Code, issue.Message)
				} else {
					fmt.Fprintf(formatter.Writer, "[%s] %s\n", issue.Code, issue.Message)
				}
			}
		}
	}

	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%d validation error(s)", len(result.Errors)))
	}
	return nil
}
