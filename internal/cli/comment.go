package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timelens/timelens/internal/frame"
	"github.com/timelens/timelens/internal/path"
	"github.com/timelens/timelens/internal/store"
)

// CommentOptions holds flags shared by the comment subcommands.
type CommentOptions struct {
	*RootOptions
	Database string
	Frame    string
}

// CommentResult is the payload for comment get/set.
type CommentResult struct {
	Frame   string `json:"frame"`
	PC      string `json:"pc,omitempty"`
	Comment string `json:"comment,omitempty"`
	Present bool   `json:"present"`
}

// NewCommentCommand creates the comment command with get/set subcommands.
func NewCommentCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CommentOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Read or write a frame's comment",
		Long: `Read or write the comment attached to a frame.

The comment lives on the frame's program counter address, so frames
sharing a program counter share the comment.`,
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkPersistentFlagRequired("db")
	cmd.PersistentFlags().StringVar(&opts.Frame, "frame", "", "frame object path (required)")
	_ = cmd.MarkPersistentFlagRequired("frame")

	get := &cobra.Command{
		Use:           "get",
		Short:         "Print a frame's comment",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommentGet(opts, cmd)
		},
	}

	set := &cobra.Command{
		Use:           "set <text>",
		Short:         "Write a frame's comment",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCommentSet(opts, args[0], cmd)
		},
	}

	cmd.AddCommand(get)
	cmd.AddCommand(set)
	return cmd
}

// resolveFrame opens the database and finds the frame object.
func resolveFrame(opts *CommentOptions, cmd *cobra.Command) (*store.Store, *frame.Frame, error) {
	p, err := path.Parse(opts.Frame)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, fmt.Sprintf("frame path %q", opts.Frame), err)
	}

	s, err := store.Open(opts.Database)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "opening database", err)
	}

	g := s.LockRead()
	obj, err := s.ObjectByPath(cmd.Context(), p)
	g.Release()
	if err != nil {
		s.Close()
		return nil, nil, WrapExitError(ExitCommandError, "looking up frame", err)
	}
	if obj == nil {
		s.Close()
		return nil, nil, NewExitError(ExitFailure, fmt.Sprintf("no object at %s", opts.Frame))
	}
	if obj.Role != store.RoleFrame {
		s.Close()
		return nil, nil, NewExitError(ExitCommandError, fmt.Sprintf("%s is a %s, not a %s", opts.Frame, obj.Role, store.RoleFrame))
	}
	return s, frame.New(s, obj), nil
}

func runCommentGet(opts *CommentOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	s, f, err := resolveFrame(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	result := CommentResult{Frame: opts.Frame}
	if pc, ok, err := f.ProgramCounter(ctx, f.Object().MaxSnap()); err != nil {
		return WrapExitError(ExitCommandError, "reading program counter", err)
	} else if ok {
		result.PC = pc.String()
	}
	body, ok, err := f.Comment(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "reading comment", err)
	}
	result.Comment = body
	result.Present = ok

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	if !ok {
		fmt.Fprintln(formatter.Writer, "no comment")
		return nil
	}
	fmt.Fprintln(formatter.Writer, body)
	return nil
}

func runCommentSet(opts *CommentOptions, text string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	s, f, err := resolveFrame(opts, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := f.SetComment(cmd.Context(), text); err != nil {
		if errors.Is(err, frame.ErrNoProgramCounter) {
			if outErr := formatter.Error(ErrCodeGeneric, "frame has no program counter to attach the comment to", nil); outErr != nil {
				return outErr
			}
			return WrapExitError(ExitFailure, "setting comment", err)
		}
		return WrapExitError(ExitCommandError, "setting comment", err)
	}

	result := CommentResult{Frame: opts.Frame, Comment: text, Present: true}
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "comment set on %s\n", opts.Frame)
	return nil
}
