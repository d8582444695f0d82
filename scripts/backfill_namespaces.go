//go:build ignore
// +build ignore

package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// One-off backfill for memory stores created before namespaces existed.
// Rows written by early builds carry an empty namespace; queries now always
// filter on one, so those rows are invisible until they are backfilled.
//
// Usage: go run scripts/backfill_namespaces.go -db .steward_runtime/session/memory.db [-namespace default] [-dry-run]
func main() {
	dbPath := flag.String("db", "", "path to memory.db")
	namespace := flag.String("namespace", "default", "namespace to assign to empty rows")
	dryRun := flag.Bool("dry-run", false, "report counts without writing")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: backfill_namespaces -db <path> [-namespace <ns>] [-dry-run]")
		os.Exit(1)
	}

	conn, err := sql.Open("sqlite3", *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open db: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	for _, table := range []string{"messages", "facts", "summaries"} {
		var count int
		err := conn.QueryRow(
			fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE namespace = ''", table),
		).Scan(&count)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to count %s: %v\n", table, err)
			os.Exit(1)
		}

		if *dryRun {
			fmt.Printf("%s: %d rows with empty namespace\n", table, count)
			continue
		}

		result, err := conn.Exec(
			fmt.Sprintf("UPDATE %s SET namespace = ? WHERE namespace = ''", table),
			*namespace,
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to update %s: %v\n", table, err)
			os.Exit(1)
		}
		updated, _ := result.RowsAffected()
		fmt.Printf("%s: backfilled %d rows to namespace %q\n", table, updated, *namespace)
	}
}
