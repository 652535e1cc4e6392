package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/timelens/timelens/internal/frame"
	"github.com/timelens/timelens/internal/span"
	"github.com/timelens/timelens/internal/store"
)

// FramesOptions holds flags for the frames command.
type FramesOptions struct {
	*RootOptions
	Database string
	Stack    string
	Snap     int64
}

// FrameInfo is one frame row in the listing.
type FrameInfo struct {
	Path    string `json:"path"`
	Level   int64  `json:"level"`
	Stack   string `json:"stack"`
	MinSnap int64  `json:"min_snap"`
	MaxSnap int64  `json:"max_snap"`
	Snap    int64  `json:"snap"`
	PC      string `json:"pc,omitempty"`
	Comment string `json:"comment,omitempty"`
}

// FramesResult holds the complete listing.
type FramesResult struct {
	Trace  string      `json:"trace"`
	Space  string      `json:"space"`
	Frames []FrameInfo `json:"frames"`
}

// NewFramesCommand creates the frames command.
func NewFramesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FramesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "frames",
		Short: "List stack frames in a trace database",
		Long: `List frames with their level, owning stack, program counter and comment.

Without --snap the program counter is read at each frame's last
lifespan snap; with --snap it is read at that snap (frames whose
lifespan does not contain the snap are skipped).

Examples:
  timelens frames --db ./trace.db
  timelens frames --db ./trace.db --snap 5
  timelens frames --db ./trace.db --stack "Threads[0].Stack" --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFrames(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Stack, "stack", "", "restrict to frames owned by this stack path")
	cmd.Flags().Int64Var(&opts.Snap, "snap", 0, "snap to read program counters at")

	return cmd
}

func runFrames(opts *FramesOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	s, err := store.Open(opts.Database)
	if err != nil {
		if outErr := formatter.Error(ErrCodeNotFound, err.Error(), nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitCommandError, "opening database", err)
	}
	defer s.Close()

	ctx := cmd.Context()
	snapSet := cmd.Flags().Changed("snap")

	g := s.LockRead()
	objs, err := s.ObjectsByRole(ctx, store.RoleFrame)
	g.Release()
	if err != nil {
		return WrapExitError(ExitCommandError, "listing frames", err)
	}

	result := FramesResult{Trace: s.TraceToken(), Space: s.Space()}
	for _, obj := range objs {
		at := obj.MaxSnap()
		if snapSet {
			at = span.Snap(opts.Snap)
			if !obj.Lifespan().Contains(at) {
				continue
			}
		}

		f := frame.New(s, obj)
		stack, err := f.Stack(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("frame %s", obj.Path.String()), err)
		}
		if opts.Stack != "" && stack.Path.String() != opts.Stack {
			continue
		}
		level, err := f.Level()
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("frame %s", obj.Path.String()), err)
		}

		info := FrameInfo{
			Path:    obj.Path.String(),
			Level:   level,
			Stack:   stack.Path.String(),
			MinSnap: int64(obj.MinSnap()),
			MaxSnap: int64(obj.MaxSnap()),
			Snap:    int64(at),
		}
		if pc, ok, err := f.ProgramCounter(ctx, at); err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("frame %s", obj.Path.String()), err)
		} else if ok {
			info.PC = pc.String()
		}
		if body, ok, err := f.Comment(ctx); err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("frame %s", obj.Path.String()), err)
		} else if ok {
			info.Comment = body
		}
		result.Frames = append(result.Frames, info)
	}

	// Stable output: by stack, then level.
	sort.Slice(result.Frames, func(i, j int) bool {
		if result.Frames[i].Stack != result.Frames[j].Stack {
			return result.Frames[i].Stack < result.Frames[j].Stack
		}
		return result.Frames[i].Level < result.Frames[j].Level
	})

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	formatter.VerboseLog("trace %s space %s", result.Trace, result.Space)
	if len(result.Frames) == 0 {
		fmt.Fprintln(formatter.Writer, "no frames")
		return nil
	}
	for _, fi := range result.Frames {
		line := fmt.Sprintf("%s  level=%d  stack=%s  life=[%d,%d)", fi.Path, fi.Level, fi.Stack, fi.MinSnap, fi.MaxSnap)
		if fi.PC != "" {
			line += fmt.Sprintf("  pc@%d=%s", fi.Snap, fi.PC)
		}
		if fi.Comment != "" {
			line += fmt.Sprintf("  comment=%q", fi.Comment)
		}
		fmt.Fprintln(formatter.Writer, line)
	}
	return nil
}
