package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/steward/internal/cli"
	"github.com/example/steward/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "steward",
		Short:   "steward - durable project and agent state for multi-worker orchestration",
		Version: version.String(),
		Long: `steward keeps the hand-edited canonical state of an orchestrated project
(team roster, task board, approvals, commands) reconciled into a fast local
cache, and maintains portable session memory with full-text recall.`,
	}

	rootCmd.AddCommand(cli.StatusCmd())
	rootCmd.AddCommand(cli.ReconcileCmd())
	rootCmd.AddCommand(cli.RehydrateCmd())
	rootCmd.AddCommand(cli.MemoryCmd())
	rootCmd.AddCommand(cli.SessionCmd())
	rootCmd.AddCommand(cli.WorkersCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
