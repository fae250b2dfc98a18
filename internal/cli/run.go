package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/docquery/internal/replay"
	"github.com/roach88/docquery/internal/store"
	"github.com/roach88/docquery/pkg/querybuilder"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Cosmos       CosmosOptions
	Database     string
	Record       bool
	Label        string
	PageSize     int
	Continuation string

	connect func(*CosmosOptions) (querybuilder.Container, error)
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return newRunCommand(&RunOptions{
		RootOptions: rootOpts,
		connect: func(o *CosmosOptions) (querybuilder.Container, error) {
			c, err := o.connect()
			if err != nil {
				return nil, err
			}
			return c, nil
		},
	})
}

func newRunCommand(opts *RunOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <definition>",
		Short: "Execute a query definition",
		Long: `Execute a query definition and print its items and total count.

By default responses are replayed from the recordings database. With
--record the live container is queried and every page is stored, so later
runs of the same query can be replayed offline.

Exit codes:
  0 - Query executed
  1 - Query failed (invalid definition, container error, not recorded)
  2 - Command error (database not found, missing connection settings)

Examples:
  docquery run ./queries/adults.yaml --db ./recordings.db
  docquery run ./queries/adults.yaml --db ./recordings.db --record \
    --cosmos-database people --cosmos-container persons
  docquery run ./queries/adults.cue --db ./recordings.db --page-size 25 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite recordings database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().BoolVar(&opts.Record, "record", false, "query the live container and record its responses")
	cmd.Flags().StringVar(&opts.Label, "label", "", "label for the recording session")
	cmd.Flags().IntVar(&opts.PageSize, "page-size", 0, "max items per page (0 leaves it to the container)")
	cmd.Flags().StringVar(&opts.Continuation, "continuation", "", "continuation token from an earlier run")
	opts.Cosmos.bindFlags(cmd)

	return cmd
}

func runQuery(cmd *cobra.Command, opts *RunOptions, path string) error {
	ctx := cmd.Context()

	logger, err := opts.newLogger(cmd.ErrOrStderr())
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid logger configuration", err)
	}

	b, _, err := loadBuilder(path, logger)
	if err != nil {
		return err
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	container, err := opts.container(ctx, st, logger)
	if err != nil {
		return err
	}

	var fetchOpts []querybuilder.FetchOption
	if opts.PageSize > 0 {
		fetchOpts = append(fetchOpts, querybuilder.WithPageSize(opts.PageSize))
	}
	if opts.Continuation != "" {
		fetchOpts = append(fetchOpts, querybuilder.WithContinuation(opts.Continuation))
	}

	result, err := b.GetAll(ctx, container, fetchOpts...)
	if err != nil {
		if errors.Is(err, store.ErrNotRecorded) {
			return WrapExitError(ExitFailure, "query has no recording (run again with --record)", err)
		}
		return WrapExitError(ExitFailure, "query failed", err)
	}

	f := opts.formatter(cmd)
	if f.Format == "json" {
		return f.Success(result)
	}
	text, err := formatResultText(result)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to format result", err)
	}
	return f.Success(text)
}

// container returns the Replayer, or a Recorder over the live container
// when recording.
func (o *RunOptions) container(ctx context.Context, st *store.Store, logger querybuilder.Logger) (querybuilder.Container, error) {
	if !o.Record {
		return replay.NewReplayer(st, replay.WithReplayerLogger(logger)), nil
	}

	live, err := o.connect(&o.Cosmos)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to connect", err)
	}

	rec, err := replay.NewRecorder(ctx, live, st,
		replay.WithLabel(o.Label),
		replay.WithRecorderLogger(logger),
	)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to start recording", err)
	}
	return rec, nil
}

// formatResultText prints one compact JSON item per line followed by a
// summary.
func formatResultText(result querybuilder.FetchResult[map[string]any]) (string, error) {
	var sb strings.Builder
	for _, item := range result.Items {
		line, err := json.Marshal(item)
		if err != nil {
			return "", err
		}
		sb.Write(line)
		sb.WriteString("\n")
	}

	fmt.Fprintf(&sb, "%d of %d items", result.Count, result.TotalCount)
	if result.HasMoreResults {
		fmt.Fprintf(&sb, "\ncontinuation: %s", result.ContinuationToken)
	}
	return sb.String(), nil
}
