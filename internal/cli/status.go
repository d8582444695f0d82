package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/steward/internal/wire"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show project status",
		Long: `Reconcile the derived cache and render the project status report.

The report is computed from the canonical YAML documents and STATUS.md is
rewritten alongside. Any Legacy Status Snapshot section in an existing
STATUS.md is preserved.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(func(c *wire.Container) error {
				report, err := c.Status.RenderStatus(context.Background())
				if err != nil {
					return err
				}
				fmt.Println(report)
				return nil
			})
		},
	}
}
