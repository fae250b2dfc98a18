package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/docquery/internal/querydef"
	"github.com/roach88/docquery/pkg/querybuilder"
)

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <definition>",
		Short: "Render a query definition without executing it",
		Long: `Render a query definition to query text and parameters.

The definition file may be YAML (.yaml, .yml), JSON (.json) or CUE (.cue).

Exit codes:
  0 - Query rendered
  1 - Definition is not a valid query
  2 - Command error (unreadable file, unknown format)

Examples:
  docquery render ./queries/adults.yaml
  docquery render ./queries/adults.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, rootOpts, args[0])
		},
	}
	return cmd
}

func runRender(cmd *cobra.Command, opts *RootOptions, path string) error {
	logger, err := opts.newLogger(cmd.ErrOrStderr())
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid logger configuration", err)
	}

	b, _, err := loadBuilder(path, logger)
	if err != nil {
		return err
	}

	spec, err := b.Query()
	if err != nil {
		return WrapExitError(ExitFailure, "invalid query definition", err)
	}

	f := opts.formatter(cmd)
	if f.Format == "json" {
		return f.Success(spec)
	}
	text, err := formatSpecText(spec)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to format parameters", err)
	}
	return f.Success(text)
}

// loadBuilder reads a definition and applies it to a fresh builder over
// untyped documents.
func loadBuilder(path string, logger querybuilder.Logger) (*querybuilder.Builder[map[string]any], *querydef.Definition, error) {
	def, err := querydef.Load(path)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to load definition", err)
	}

	b := querybuilder.New[map[string]any](querybuilder.WithLogger(logger))
	if err := querydef.Apply(def, b); err != nil {
		return nil, nil, WrapExitError(ExitFailure, "invalid query definition", err)
	}
	return b, def, nil
}

// formatSpecText prints the query followed by one "name = value" line per
// parameter, values in JSON.
func formatSpecText(spec querybuilder.QuerySpec) (string, error) {
	var sb strings.Builder
	sb.WriteString(spec.Query)
	if len(spec.Parameters) > 0 {
		sb.WriteString("\n\n")
	}
	for i, p := range spec.Parameters {
		v, err := json.Marshal(p.Value)
		if err != nil {
			return "", fmt.Errorf("parameter %s: %w", p.Name, err)
		}
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s = %s", p.Name, v)
	}
	return sb.String(), nil
}
