package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/docquery/internal/logging"
	"github.com/roach88/docquery/pkg/querybuilder"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Logger  string // "slog" | "zerolog"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// ValidLoggers defines the allowed log backends.
var ValidLoggers = []string{"slog", "zerolog"}

// NewRootCommand creates the root command for the docquery CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

// Execute runs the CLI with args and returns the process exit code. Command
// errors are reported through an OutputFormatter in the selected format.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts := &RootOptions{}
	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.reported {
		return exitErr.Code
	}
	if !contains(ValidFormats, opts.Format) {
		opts.Format = "text"
	}
	_ = opts.formatter(cmd).Error(err)
	return GetExitCode(err)
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docquery",
		Short: "docquery - typed document queries",
		Long: `Render, run and record parameterized document-database queries.

Queries are declared in YAML, JSON or CUE definition files. Runs replay
recorded container responses from a SQLite database unless --record is
given, in which case the live container is queried and its pages stored.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			if !contains(ValidLoggers, opts.Logger) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid logger %q: must be one of %v", opts.Logger, ValidLoggers))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log rendered queries and results")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Logger, "logger", "slog", "log backend (slog|zerolog)")

	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewRecordingsCommand(opts))
	cmd.AddCommand(NewPatchCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// newLogger builds the querybuilder logger for a command. Logs go to w,
// which is stderr in normal use so they never mix with command output.
func (o *RootOptions) newLogger(w io.Writer) (querybuilder.Logger, error) {
	cfg := logging.Config{Level: "info", Format: "text", Output: w}
	if o.Verbose {
		cfg.Level = "verbose"
	}
	if o.Format == "json" {
		cfg.Format = "json"
	}

	if o.Logger == "zerolog" {
		zl, err := logging.NewZerolog(cfg)
		if err != nil {
			return nil, err
		}
		return logging.FromZerolog(zl), nil
	}

	sl, err := logging.NewSlog(cfg)
	if err != nil {
		return nil, err
	}
	return logging.FromSlog(sl), nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
