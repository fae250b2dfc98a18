package cli

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/roach88/docquery/pkg/querybuilder"
)

// patcher applies a patch document to one item.
type patcher interface {
	Patch(ctx context.Context, partitionKey, id string, req querybuilder.PatchRequest) (json.RawMessage, error)
}

// PatchOptions holds flags for the patch command.
type PatchOptions struct {
	*RootOptions
	Cosmos CosmosOptions
	Apply  bool
	ID     string

	connect func(*CosmosOptions) (patcher, error)
}

// PatchResult is the output of the patch command. Item is set when the
// patch was applied.
type PatchResult struct {
	Patch querybuilder.PatchRequest `json:"patch"`
	Item  json.RawMessage           `json:"item,omitempty"`
}

// NewPatchCommand creates the patch command.
func NewPatchCommand(rootOpts *RootOptions) *cobra.Command {
	return newPatchCommand(&PatchOptions{
		RootOptions: rootOpts,
		connect: func(o *CosmosOptions) (patcher, error) {
			c, err := o.connect()
			if err != nil {
				return nil, err
			}
			return c, nil
		},
	})
}

func newPatchCommand(opts *PatchOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patch <definition>",
		Short: "Build, and optionally apply, a definition's patch document",
		Long: `Build the patch document from the patch section of a definition.

With --apply the patch is sent to the live container for the item given by
--id and the updated item is printed.

Exit codes:
  0 - Patch built (and applied)
  1 - Invalid patch or container error
  2 - Command error

Examples:
  docquery patch ./queries/rename.yaml
  docquery patch ./queries/rename.yaml --apply --id 6f1c... --partition-key 6f1c... \
    --cosmos-database people --cosmos-container persons`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatch(cmd, opts, args[0])
		},
	}

	cmd.Flags().BoolVar(&opts.Apply, "apply", false, "send the patch to the live container")
	cmd.Flags().StringVar(&opts.ID, "id", "", "id of the item to patch (required with --apply)")
	opts.Cosmos.bindFlags(cmd)

	return cmd
}

func runPatch(cmd *cobra.Command, opts *PatchOptions, path string) error {
	logger, err := opts.newLogger(cmd.ErrOrStderr())
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid logger configuration", err)
	}

	b, def, err := loadBuilder(path, logger)
	if err != nil {
		return err
	}

	req, err := b.Patch(def.Patch...)
	if err != nil {
		return WrapExitError(ExitFailure, "invalid patch", err)
	}
	result := PatchResult{Patch: req}

	if opts.Apply {
		if opts.ID == "" {
			return NewExitError(ExitCommandError, "--id is required with --apply")
		}
		p, err := opts.connect(&opts.Cosmos)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to connect", err)
		}
		partitionKey := opts.Cosmos.PartitionKey
		if partitionKey == "" {
			partitionKey = opts.ID
		}

		logger.Info("Applying patch", "id", opts.ID, "operations", len(req.Operations))
		item, err := p.Patch(cmd.Context(), partitionKey, opts.ID, req)
		if err != nil {
			return WrapExitError(ExitFailure, "patch failed", err)
		}
		result.Item = item
	}

	f := opts.formatter(cmd)
	if f.Format == "json" {
		return f.Success(result)
	}

	out := any(result.Patch)
	if result.Item != nil {
		out = result.Item
	}
	text, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return WrapExitError(ExitFailure, "failed to format patch", err)
	}
	return f.Success(string(text))
}
