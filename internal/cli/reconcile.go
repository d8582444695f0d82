package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/steward/internal/wire"
)

// ReconcileCmd returns the reconcile command
func ReconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Sync the derived cache with canonical state",
		Long: `Bring the derived cache in sync with the canonical YAML documents.

A content hash over the canonical files gates the work: when nothing
changed since the last reconciliation the cache is left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(func(c *wire.Container) error {
				changed, err := c.Reconcile.Reconcile(context.Background())
				if err != nil {
					return err
				}
				if changed {
					fmt.Println(color.New(color.FgHiGreen).Sprint("✓"), "Cache reconciled from canonical state")
				} else {
					fmt.Println("Cache already up to date")
				}
				return nil
			})
		},
	}
}

// RehydrateCmd returns the rehydrate command
func RehydrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rehydrate",
		Short: "Rebuild the derived cache from scratch",
		Long: `Discard the entire derived cache, audit events included, and rebuild
it from the canonical YAML documents.

Use this when the cache is corrupt or has been tampered with. Canonical
state is never touched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(func(c *wire.Container) error {
				if err := c.Reconcile.Rehydrate(context.Background()); err != nil {
					return err
				}
				fmt.Println(color.New(color.FgHiGreen).Sprint("✓"), "Cache rebuilt from canonical state")
				return nil
			})
		},
	}
}
