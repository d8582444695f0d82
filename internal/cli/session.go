package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/steward/internal/ports/primary"
	"github.com/example/steward/internal/ports/secondary"
	"github.com/example/steward/internal/wire"
)

// SessionCmd returns the session command
func SessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Session memory operations",
		Long:  `Store, recall, search, and move session memory. All stored content passes through the redaction filter.`,
	}

	cmd.AddCommand(sessionExportCmd())
	cmd.AddCommand(sessionImportCmd())
	cmd.AddCommand(sessionPurgeCmd())
	cmd.AddCommand(sessionRememberCmd())
	cmd.AddCommand(sessionRecallCmd())
	cmd.AddCommand(sessionFactsCmd())
	cmd.AddCommand(sessionSummaryCmd())

	return cmd
}

func sessionExportCmd() *cobra.Command {
	var (
		outPath    string
		namespaces []string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a session memory pack",
		Long: `Export session memory as a portable, checksummed pack.

The destination may be a directory or a .zip file. Without --namespace
every namespace is exported; internal events are always included.

Examples:
  steward session export --out memory.zip
  steward session export --out ./pack --namespace default --namespace research`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(func(c *wire.Container) error {
				path, err := c.Packs.ExportSessionPack(context.Background(), outPath, namespaces)
				if err != nil {
					return err
				}
				fmt.Printf("Exported session pack to %s\n", path)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "destination directory or .zip file")
	cmd.Flags().StringArrayVar(&namespaces, "namespace", nil, "namespace filter (repeatable)")

	return cmd
}

func sessionImportCmd() *cobra.Command {
	var inPath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a session memory pack",
		Long: `Import a session memory pack created by session export.

Rows are appended; existing memory is never modified. The pack is fully
validated against its checksums before anything is written.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(func(c *wire.Container) error {
				counts, err := c.Packs.ImportSessionPack(context.Background(), inPath)
				if err != nil {
					return err
				}
				fmt.Printf("Imported %d messages, %d facts, %d summaries, %d events\n",
					counts["messages"], counts["facts"], counts["summaries"], counts["events"])
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&inPath, "in", "", "pack directory or .zip file (required)")
	cmd.MarkFlagRequired("in")

	return cmd
}

func sessionPurgeCmd() *cobra.Command {
	var (
		namespace     string
		olderThanDays int
	)

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Purge session memory",
		Long: `Delete session memory by namespace and/or age.

Without flags everything is purged. Summaries only honor the namespace
filter; an age-only purge leaves them in place.

Examples:
  steward session purge --namespace scratch
  steward session purge --older-than-days 30`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(func(c *wire.Container) error {
				result, err := c.Memory.Purge(context.Background(), primary.PurgeRequest{
					Namespace:     namespace,
					OlderThanDays: olderThanDays,
				})
				if err != nil {
					return err
				}
				fmt.Printf("Purged %d messages, %d facts, %d summaries\n",
					result.Messages, result.Facts, result.Summaries)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&namespace, "namespace", "", "limit the purge to one namespace")
	cmd.Flags().IntVar(&olderThanDays, "older-than-days", 0, "only purge rows older than this many days")

	return cmd
}

func sessionRememberCmd() *cobra.Command {
	var (
		session   string
		namespace string
		role      string
		fact      bool
	)

	cmd := &cobra.Command{
		Use:   "remember <content>",
		Short: "Store a message or fact",
		Long: `Store content in session memory. Secrets matching the redaction
patterns are replaced before the content is persisted.

Examples:
  steward session remember "decided to use WAL mode for both stores"
  steward session remember --fact "cache rebuilds are gated on the canonical hash"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(func(c *wire.Container) error {
				ctx := context.Background()
				sess, ns := resolveScope(c, session, namespace)

				if fact {
					id, err := c.Memory.RecordFact(ctx, primary.FactInput{
						SessionID: sess,
						Namespace: ns,
						Text:      args[0],
					})
					if err != nil {
						return err
					}
					fmt.Printf("Stored fact %d\n", id)
					return nil
				}

				id, err := c.Memory.Remember(ctx, sess, ns, role, args[0], nil)
				if err != nil {
					return err
				}
				fmt.Printf("Stored message %d\n", id)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&session, "session", "", "session id (defaults from config)")
	cmd.Flags().StringVar(&namespace, "namespace", "", "namespace (defaults from config)")
	cmd.Flags().StringVar(&role, "role", "user", "speaker tag stored with the message")
	cmd.Flags().BoolVar(&fact, "fact", false, "store as a fact instead of a message")

	return cmd
}

func sessionRecallCmd() *cobra.Command {
	var (
		session   string
		namespace string
		query     string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "recall",
		Short: "Recall recent or matching messages",
		Long: `List recent messages oldest-first, or search message content with
--query. Search ranks by relevance when full-text indexing is available
and falls back to substring matching otherwise.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(func(c *wire.Container) error {
				ctx := context.Background()
				sess, ns := resolveScope(c, session, namespace)

				var (
					messages []*secondary.MessageRecord
					err      error
				)
				if query != "" {
					messages, err = c.Memory.SearchMessages(ctx, sess, ns, query, limit)
				} else {
					messages, err = c.Memory.Recall(ctx, sess, ns, limit)
				}
				if err != nil {
					return err
				}

				if len(messages) == 0 {
					fmt.Println("No messages")
					return nil
				}
				for _, m := range messages {
					fmt.Printf("%s %s %s\n",
						color.New(color.Faint).Sprint(m.Timestamp),
						color.New(color.FgHiBlue).Sprintf("[%s]", m.Role),
						m.Content)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&session, "session", "", "session id (defaults from config)")
	cmd.Flags().StringVar(&namespace, "namespace", "", "namespace (defaults from config)")
	cmd.Flags().StringVar(&query, "query", "", "search message content instead of listing")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows to return")

	return cmd
}

func sessionFactsCmd() *cobra.Command {
	var (
		session   string
		namespace string
		query     string
		limit     int
		gc        bool
	)

	cmd := &cobra.Command{
		Use:   "facts",
		Short: "List or search active facts",
		Long: `List active facts ordered by importance then recency, or search
fact text with --query. --gc removes superseded facts first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(func(c *wire.Container) error {
				ctx := context.Background()
				sess, ns := resolveScope(c, session, namespace)

				if gc {
					removed, err := c.Memory.PurgeSuperseded(ctx, sess, ns)
					if err != nil {
						return err
					}
					fmt.Printf("Removed %d superseded facts\n", removed)
				}

				var (
					facts []*secondary.FactRecord
					err   error
				)
				if query != "" {
					facts, err = c.Memory.SearchFacts(ctx, sess, ns, query, limit)
				} else {
					facts, err = c.Memory.ActiveFacts(ctx, sess, ns, limit)
				}
				if err != nil {
					return err
				}

				if len(facts) == 0 {
					fmt.Println("No facts")
					return nil
				}
				for _, f := range facts {
					tags := ""
					if len(f.Tags) > 0 {
						tags = color.New(color.FgYellow).Sprintf(" [%s]", strings.Join(f.Tags, ", "))
					}
					fmt.Printf("%s (%d)%s %s\n",
						color.New(color.Faint).Sprintf("#%d", f.ID), f.Importance, tags, f.Text)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&session, "session", "", "session id (defaults from config)")
	cmd.Flags().StringVar(&namespace, "namespace", "", "namespace (defaults from config)")
	cmd.Flags().StringVar(&query, "query", "", "search fact text instead of listing")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows to return")
	cmd.Flags().BoolVar(&gc, "gc", false, "remove superseded facts first")

	return cmd
}

func sessionSummaryCmd() *cobra.Command {
	var (
		session   string
		namespace string
		scope     string
		write     string
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show or write the session summary",
		Long: `Show the current summary for the session, or replace it with --write.
Each (session, namespace, scope) triple holds at most one summary.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(func(c *wire.Container) error {
				ctx := context.Background()
				sess, ns := resolveScope(c, session, namespace)

				if write != "" {
					if _, err := c.Memory.WriteSummary(ctx, sess, ns, scope, write); err != nil {
						return err
					}
					fmt.Println("Summary updated")
					return nil
				}

				summary, err := c.Memory.Summary(ctx, sess, ns, scope)
				if err != nil {
					return err
				}
				if summary == nil {
					fmt.Println("No summary")
					return nil
				}
				fmt.Printf("%s\n\n%s\n",
					color.New(color.Faint).Sprintf("%s (%s)", summary.Timestamp, summary.Scope),
					summary.Text)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&session, "session", "", "session id (defaults from config)")
	cmd.Flags().StringVar(&namespace, "namespace", "", "namespace (defaults from config)")
	cmd.Flags().StringVar(&scope, "scope", "rolling", "summary scope")
	cmd.Flags().StringVar(&write, "write", "", "replace the summary with this text")

	return cmd
}

// resolveScope applies the configured defaults for session and namespace.
func resolveScope(c *wire.Container, session, namespace string) (string, string) {
	if session == "" {
		session = c.Config.DefaultSession
	}
	if namespace == "" {
		namespace = c.Config.DefaultNamespace
	}
	return session, namespace
}
