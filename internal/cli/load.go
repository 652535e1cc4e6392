package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timelens/timelens/internal/attr"
	"github.com/timelens/timelens/internal/path"
	"github.com/timelens/timelens/internal/store"
)

// LoadOptions holds flags for the load command.
type LoadOptions struct {
	*RootOptions
	Database string
}

// LoadSummary reports what a load run wrote.
type LoadSummary struct {
	Database string `json:"database"`
	Trace    string `json:"trace"`
	Space    string `json:"space"`
	Objects  int    `json:"objects"`
	Values   int    `json:"values"`
	Comments int    `json:"comments"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "load <fixtures-dir>",
		Short: "Seed a trace database from fixtures",
		Long: `Load CUE trace fixtures and write them into a trace database.

Creates the database if it does not exist. Objects are created with
their declared lifespans, then attribute values and address comments
are written over their spans.

Examples:
  timelens load ./fixtures --db ./trace.db
  timelens load ./fixtures --db ./trace.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runLoad(opts *LoadOptions, fixturesDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	loadResult, loadErrors := LoadFixtures(fixturesDir, LoadModeFailFast)
	if len(loadErrors) > 0 {
		err := loadErrors[0]
		if outErr := formatter.Error(ErrCodeLoadFailed, err.Error(), nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitCommandError, "loading fixtures", err)
	}
	fx := loadResult.Fixture

	var storeOpts []store.Option
	if fx.Trace.Token != "" {
		storeOpts = append(storeOpts, store.WithTraceToken(fx.Trace.Token))
	}
	if fx.Trace.Space != "" {
		storeOpts = append(storeOpts, store.WithSpace(fx.Trace.Space))
	}
	s, err := store.Open(opts.Database, storeOpts...)
	if err != nil {
		if outErr := formatter.Error(ErrCodeNotFound, err.Error(), nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitCommandError, "opening database", err)
	}
	defer s.Close()

	summary, err := seed(cmd.Context(), s, fx)
	if err != nil {
		if outErr := formatter.Error(ErrCodeGeneric, err.Error(), nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitCommandError, "seeding database", err)
	}
	summary.Database = opts.Database

	formatter.VerboseLog("Loaded %d CUE file(s) from %s", loadResult.FileCount, fixturesDir)

	if opts.Format == "json" {
		return formatter.Success(summary)
	}
	fmt.Fprintf(formatter.Writer, "loaded %d object(s), %d value(s), %d comment(s) into %s (trace %s, space %s)\n",
		summary.Objects, summary.Values, summary.Comments, summary.Database, summary.Trace, summary.Space)
	return nil
}

// seed writes one fixture into the store under a single write guard.
func seed(ctx context.Context, s *store.Store, fx *Fixture) (*LoadSummary, error) {
	g := s.LockWrite()
	defer g.Release()

	byPath := make(map[string]*store.Object, len(fx.Objects))
	for _, of := range fx.Objects {
		p, err := path.Parse(of.Path)
		if err != nil {
			return nil, fmt.Errorf("object %q: %w", of.Path, err)
		}
		obj, err := s.CreateObject(ctx, p, of.Role, of.Life.Span())
		if err != nil {
			return nil, fmt.Errorf("create %q: %w", of.Path, err)
		}
		byPath[of.Path] = obj
	}

	for _, vf := range fx.Values {
		obj := byPath[vf.Object]
		if obj == nil {
			return nil, fmt.Errorf("value references undeclared object %q", vf.Object)
		}
		v, err := attr.Decode(vf.Kind, vf.Value)
		if err != nil {
			return nil, fmt.Errorf("value %s.%s: %w", vf.Object, vf.Key, err)
		}
		if err := s.SetValue(ctx, obj, vf.Span.Span(), vf.Key, v); err != nil {
			return nil, fmt.Errorf("set %s.%s: %w", vf.Object, vf.Key, err)
		}
	}

	for _, cf := range fx.Comments {
		addr, err := attr.ParseAddress(cf.Address)
		if err != nil {
			return nil, fmt.Errorf("comment address %q: %w", cf.Address, err)
		}
		if err := s.SetComment(ctx, cf.Span.Span(), addr, cf.Kind, cf.Body); err != nil {
			return nil, fmt.Errorf("comment at %s: %w", cf.Address, err)
		}
	}

	return &LoadSummary{
		Trace:    s.TraceToken(),
		Space:    s.Space(),
		Objects:  len(fx.Objects),
		Values:   len(fx.Values),
		Comments: len(fx.Comments),
	}, nil
}
