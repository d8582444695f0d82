package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/steward/internal/wire"
	"github.com/example/steward/internal/workers"
)

// WorkersCmd returns the workers command
func WorkersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "Durable worker state",
		Long: `Manage the committed worker roster, checkpoints, and summaries.
These files travel with the repository, so a worker can resume on any
machine without the runtime directory.`,
	}

	cmd.AddCommand(workersListCmd())
	cmd.AddCommand(workersCheckpointCmd())
	cmd.AddCommand(workersResumeCmd())
	cmd.AddCommand(workersSummaryCmd())
	cmd.AddCommand(workersSyncCmd())

	return cmd
}

func workersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show the worker roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(func(c *wire.Container) error {
				roster, err := c.Workers.Roster(context.Background())
				if err != nil {
					return err
				}
				if len(roster) == 0 {
					fmt.Println("No workers in roster")
					return nil
				}
				for _, w := range roster {
					lastCp := w.LastCheckpointID
					if lastCp == "" {
						lastCp = "none"
					}
					fmt.Printf("%s %s/%s (%s, %s) last checkpoint: %s\n",
						color.New(color.FgHiBlue).Sprint(w.WorkerID),
						w.Role, w.Status, w.Provider, w.Model, lastCp)
				}
				return nil
			})
		},
	}
}

func workersCheckpointCmd() *cobra.Command {
	var (
		role      string
		provider  string
		completed []string
		pending   []string
		files     []string
		decisions []string
		next      string
	)

	cmd := &cobra.Command{
		Use:   "checkpoint <worker-id>",
		Short: "Write a worker checkpoint",
		Long: `Write a markdown checkpoint for a worker and stamp it in the roster.

Examples:
  steward workers checkpoint dev-1 --done "wired the cache repo" --next "add reconcile tests"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(func(c *wire.Container) error {
				id, err := c.Workers.SaveCheckpoint(context.Background(), args[0], workers.Checkpoint{
					Role:         role,
					Provider:     provider,
					Completed:    completed,
					Pending:      pending,
					FilesChanged: files,
					Decisions:    decisions,
					NextSteps:    next,
				})
				if err != nil {
					return err
				}
				fmt.Printf("Checkpoint %s saved for %s\n", id, args[0])
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "worker role")
	cmd.Flags().StringVar(&provider, "provider", "", "worker provider")
	cmd.Flags().StringArrayVar(&completed, "done", nil, "completed item (repeatable)")
	cmd.Flags().StringArrayVar(&pending, "pending", nil, "pending item (repeatable)")
	cmd.Flags().StringArrayVar(&files, "file", nil, "changed file (repeatable)")
	cmd.Flags().StringArrayVar(&decisions, "decision", nil, "decision made (repeatable)")
	cmd.Flags().StringVar(&next, "next", "", "resume instructions")

	return cmd
}

func workersResumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume <worker-id>",
		Short: "Show the latest checkpoint for a worker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(func(c *wire.Container) error {
				cp, err := c.Workers.Resume(context.Background(), args[0])
				if err != nil {
					return err
				}
				if cp == nil {
					fmt.Printf("No checkpoints for %s\n", args[0])
					return nil
				}
				fmt.Printf("Checkpoint %s (%s)\n", cp.CheckpointID, cp.Timestamp)
				printBullets("Completed", cp.Completed)
				printBullets("Pending", cp.Pending)
				printBullets("Files changed", cp.FilesChanged)
				printBullets("Decisions", cp.Decisions)
				if cp.ProgressSummary != "" {
					fmt.Printf("Progress: %s\n", cp.ProgressSummary)
				}
				if cp.NextSteps != "" {
					fmt.Printf("Next: %s\n", cp.NextSteps)
				}
				return nil
			})
		},
	}
}

func workersSummaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary <worker-id>",
		Short: "Show a worker summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(func(c *wire.Container) error {
				summary, err := c.Workers.WorkerSummary(context.Background(), args[0])
				if err != nil {
					return err
				}
				if summary == "" {
					fmt.Printf("No summary for %s\n", args[0])
					return nil
				}
				fmt.Println(strings.TrimRight(summary, "\n"))
				return nil
			})
		},
	}
}

func workersSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Sync runtime worker state to the committed roster",
		Long: `Project the runtime worker registry into the committed roster and
summaries so worker state survives outside this machine.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(func(c *wire.Container) error {
				result, err := c.Workers.SyncFromRuntime(context.Background())
				if err != nil {
					return err
				}
				fmt.Println(result)
				return nil
			})
		},
	}
}

func printBullets(label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Printf("%s:\n", label)
	for _, item := range items {
		fmt.Printf("  - %s\n", item)
	}
}
