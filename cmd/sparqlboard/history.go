// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sigil-dev/sparqlboard/internal/store"
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded queries",
		Long: "List the queries recorded in the configured history store, newest first. " +
			"The default in-memory store only lives for one process; point storage.dsn at a file to keep history.",
		RunE: runHistory,
	}

	cmd.Flags().Int("limit", 20, "maximum entries to show")
	cmd.Flags().Int("offset", 0, "entries to skip")
	cmd.Flags().Bool("clear", false, "delete every recorded entry")

	return cmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := ensureStorageDir(cfg.Storage); err != nil {
		return err
	}
	hs, err := store.NewHistoryStore(&store.StorageConfig{
		Backend:      cfg.Storage.Backend,
		DSN:          cfg.Storage.DSN,
		HistoryLimit: cfg.Storage.HistoryLimit,
	})
	if err != nil {
		return err
	}
	defer func() { _ = hs.Close() }()

	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	if wipe, _ := cmd.Flags().GetBool("clear"); wipe {
		if err := hs.Clear(ctx); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(out, "History cleared.")
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")
	entries, err := hs.List(ctx, store.ListOpts{Limit: limit, Offset: offset})
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(out, "No queries recorded.")
		return nil
	}

	for _, e := range entries {
		_, _ = fmt.Fprintf(out, "%s  #%-4d %-6s %5d rows %5d nodes %8s  %s\n",
			e.CreatedAt.Local().Format(time.DateTime), e.Seq, e.Status, e.Rows, e.Nodes,
			e.Duration.Round(time.Millisecond), oneLine(e.Query, 60))
	}
	return nil
}

// oneLine collapses whitespace in s and truncates it to n runes.
func oneLine(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
