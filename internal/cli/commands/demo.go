package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/annotate/internal/cli/ui"
	"github.com/conduit-lang/annotate/internal/demo"
	"github.com/conduit-lang/annotate/runtime/decorator"
)

func newDemoCommand(opts *options) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Annotate a sample service and export its snapshot",
		Long: `Register metadata on the methods of a sample Service type and export
the resulting registry snapshot as JSON.`,
		Example: `  # Print the snapshot
  annotate demo

  # Write it to a file and inspect it
  annotate demo --out annotations.json
  annotate inspect annotations.json --member Service.Run`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := decorator.NewRegistry(decorator.WithLogger(opts.logger))
			if err := demo.Annotate(registry); err != nil {
				return fmt.Errorf("failed to annotate demo service: %w", err)
			}

			data, err := registry.Snapshot().Marshal()
			if err != nil {
				return err
			}

			if out == "" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}
			if err := os.WriteFile(out, append(data, '\n'), 0644); err != nil {
				return fmt.Errorf("failed to write snapshot: %w", err)
			}
			ui.WriteSuccess(cmd.OutOrStdout(), fmt.Sprintf("Snapshot written to %s", out), opts.noColor)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", "Write the snapshot to this file instead of stdout")
	return cmd
}
