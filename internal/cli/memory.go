package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/steward/internal/wire"
)

// MemoryCmd returns the memory command
func MemoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Export and import cache packs",
		Long:  `Move the audit-event log and derived state between projects as checksummed packs.`,
	}

	cmd.AddCommand(memoryExportCmd())
	cmd.AddCommand(memoryImportCmd())

	return cmd
}

func memoryExportCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a cache pack",
		Long: `Export the audit-event log and derived state as a portable pack.

The destination may be a directory or a .zip file. Without --out the pack
is written under the runtime pack cache.

Examples:
  steward memory export
  steward memory export --out backup.zip`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(func(c *wire.Container) error {
				path, err := c.Packs.ExportCachePack(context.Background(), outPath)
				if err != nil {
					return err
				}
				fmt.Printf("Exported cache pack to %s\n", path)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "destination directory or .zip file")

	return cmd
}

func memoryImportCmd() *cobra.Command {
	var inPath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a cache pack",
		Long: `Import a cache pack created by memory export.

Events are appended to the audit log. Derived state always comes from the
local canonical documents, which remain the source of truth.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(func(c *wire.Container) error {
				result, err := c.Packs.ImportCachePack(context.Background(), inPath)
				if err != nil {
					return err
				}
				fmt.Println(result)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&inPath, "in", "", "pack directory or .zip file (required)")
	cmd.MarkFlagRequired("in")

	return cmd
}
